// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package device

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// maxFileSize is one byte short of the uint16 range, leaving room for
// the record terminator BASIC programs that treat a file as a stream
// of CRLF-terminated records rely on.
const maxFileSize = 65534

// FileOpenMode selects OPEN's access discipline.
type FileOpenMode int

const (
	FileInput FileOpenMode = iota
	FileOutput
	FileAppend
	FileRandom
)

// FileHandle is a single open file's read/write/seek surface, kept
// distinct from Device itself so the file store's buffering
// discipline (BASIC's FIELD/GET/PUT semantics expect in-place
// rewrites of a fixed-length record, which a raw stream write cannot
// do efficiently or safely) is visible at the type level.
type FileHandle interface {
	Len() (int64, error)
	Seek(pos int64) error
	Pos() (int64, error)
	Write(data []byte) error
	Read(data []byte) (int, error)
	Close() error
	IsOpen() bool
}

// fileOpenError reports that a file-handle operation ran against a
// handle that was never opened or has already been closed.
type fileOpenError struct{ op string }

func (e fileOpenError) Error() string { return "未打开文件" }

// fileTooLargeError reports a Write that would grow a file past
// maxFileSize.
type fileTooLargeError struct{ size int }

func (e fileTooLargeError) Error() string {
	return fmt.Sprintf("文件大小为 %d 字节，超出文件大小上限 %d", e.size, maxFileSize)
}

// hostFile is the reference FileHandle implementation: content is
// buffered entirely in memory while open, and flushed back to the
// backing host file only on Close, mirroring the original's
// DefaultFileHandle (random-access FIELD/GET/PUT rewrites are cheap
// against a Vec<u8>; they would be slow and crash-unsafe against a
// raw file each time).
type hostFile struct {
	file  *os.File
	data  []byte
	pos   int
	dirty bool
	open  bool

	aead cipher.AEAD // non-nil when this file's store has encryption enabled
}

// decrypt unwraps encrypt's nonce-prefixed ciphertext format.
// An empty (newly-created) file has no nonce to strip.
func (f *hostFile) decrypt(raw []byte) ([]byte, error) {
	if f.aead == nil || len(raw) == 0 {
		return raw, nil
	}
	ns := f.aead.NonceSize()
	if len(raw) < ns {
		return nil, fmt.Errorf("加密文件已损坏")
	}
	return f.aead.Open(nil, raw[:ns], raw[ns:], nil)
}

// encrypt applies a fresh random nonce, prefixed to the ciphertext the
// way decrypt expects to find it.
func (f *hostFile) encrypt(plain []byte) ([]byte, error) {
	if f.aead == nil {
		return plain, nil
	}
	nonce := make([]byte, f.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return f.aead.Seal(nonce, nonce, plain, nil), nil
}

func (f *hostFile) open_(osFile *os.File) error {
	if f.open {
		return fmt.Errorf("重复打开文件")
	}
	raw, err := io.ReadAll(osFile)
	if err != nil {
		return err
	}
	data, err := f.decrypt(raw)
	if err != nil {
		return fmt.Errorf("解密文件失败: %w", err)
	}
	f.file = osFile
	f.data = data
	f.pos = 0
	f.dirty = false
	f.open = true
	return nil
}

func (f *hostFile) Len() (int64, error) {
	return int64(len(f.data)), nil
}

func (f *hostFile) Seek(pos int64) error {
	if !f.open {
		return fileOpenError{"seek"}
	}
	if pos > int64(len(f.data)) {
		return fmt.Errorf("文件指针超出文件大小")
	}
	f.pos = int(pos)
	return nil
}

func (f *hostFile) Pos() (int64, error) {
	return int64(f.pos), nil
}

func (f *hostFile) Write(written []byte) error {
	if !f.open {
		return fileOpenError{"write"}
	}
	end := f.pos + len(written)
	if end > len(f.data) {
		if end > maxFileSize {
			return fileTooLargeError{end}
		}
		grown := make([]byte, end)
		copy(grown, f.data)
		f.data = grown
	}
	copy(f.data[f.pos:end], written)
	f.pos = end
	f.dirty = true
	return nil
}

func (f *hostFile) Read(buf []byte) (int, error) {
	if !f.open {
		return 0, fileOpenError{"read"}
	}
	n := len(buf)
	if f.pos+n > len(f.data) {
		n = len(f.data) - f.pos
	}
	copy(buf[:n], f.data[f.pos:f.pos+n])
	f.pos += n
	return n, nil
}

func (f *hostFile) Close() error {
	if !f.open {
		return fmt.Errorf("未打开文件，不能关闭文件")
	}
	if f.dirty {
		out, err := f.encrypt(f.data)
		if err != nil {
			return fmt.Errorf("加密文件失败: %w", err)
		}
		if _, err := f.file.Seek(0, io.SeekStart); err != nil {
			return err
		}
		if err := f.file.Truncate(int64(len(out))); err != nil {
			return err
		}
		if _, err := f.file.Write(out); err != nil {
			return err
		}
	}
	err := f.file.Close()
	f.open = false
	f.file = nil
	return err
}

func (f *hostFile) IsOpen() bool { return f.open }

// FileStore owns every file number a running program has OPENed,
// 1-based the way BASIC's `#1` file numbers are, and the directory
// new files are resolved against.
type FileStore struct {
	DataDir string
	handles map[int]*hostFile

	aead cipher.AEAD
}

// NewFileStore creates a FileStore rooted at the current directory;
// set DataDir before the first Open to change it.
func NewFileStore() *FileStore {
	return &FileStore{handles: make(map[int]*hostFile)}
}

// EnableEncryption turns on at-rest AEAD encryption for every file
// this store opens from now on, keyed by HKDF-SHA256 over deviceID —
// the machine profile's SecureFiles flag (config.MachineProps) is
// what a caller should gate this on.
func (s *FileStore) EnableEncryption(deviceID uuid.UUID) error {
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, deviceID[:], nil, []byte("gvbasic-file-store"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return fmt.Errorf("派生文件加密密钥失败: %w", err)
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return fmt.Errorf("初始化文件加密失败: %w", err)
	}
	s.aead = aead
	return nil
}

// Open implements OPEN: resolves name under DataDir and attaches a
// host file to fileNum, buffering its content in memory.
func (s *FileStore) Open(fileNum int, name string, mode FileOpenMode) error {
	flags := os.O_RDWR | os.O_CREATE
	if mode == FileOutput {
		flags |= os.O_TRUNC
	}
	path := filepath.Join(s.DataDir, name)
	osFile, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return err
	}
	h := &hostFile{aead: s.aead}
	if err := h.open_(osFile); err != nil {
		osFile.Close()
		return err
	}
	if mode == FileAppend {
		h.pos = len(h.data)
	}
	s.handles[fileNum] = h
	return nil
}

// Get returns the handle bound to fileNum, or ok=false if nothing is
// open under that number.
func (s *FileStore) Get(fileNum int) (FileHandle, bool) {
	h, ok := s.handles[fileNum]
	return h, ok
}

// Close closes and forgets fileNum.
func (s *FileStore) Close(fileNum int) error {
	h, ok := s.handles[fileNum]
	if !ok {
		return fileOpenError{"close"}
	}
	err := h.Close()
	delete(s.handles, fileNum)
	return err
}

// CloseAll closes every open file; vm.Machine.Restart calls it. Every
// handle is attempted even if an earlier one errors; the first error
// encountered is returned.
func (s *FileStore) CloseAll() error {
	var first error
	for num, h := range s.handles {
		if err := h.Close(); err != nil && first == nil {
			first = err
		}
		delete(s.handles, num)
	}
	return first
}

// Files exposes the device's file store to the VM's OPEN/CLOSE/FIELD/
// GET/PUT instruction handlers.
func (e *Emulator) Files() *FileStore { return e.files }
