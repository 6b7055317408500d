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
	"os"
	"testing"

	"github.com/google/uuid"
)

func TestFileStoreWriteReadCloseRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := &FileStore{DataDir: dir, handles: make(map[int]*hostFile)}

	if err := s.Open(1, "greeting.dat", FileOutput); err != nil {
		t.Fatalf("Open: %v", err)
	}
	h, ok := s.Get(1)
	if !ok {
		t.Fatal("Get after Open returned ok=false")
	}
	if !h.IsOpen() {
		t.Fatal("expected handle to be open")
	}
	if err := h.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	n, err := h.Len()
	if err != nil || n != 5 {
		t.Fatalf("Len() = (%d, %v), want (5, nil)", n, err)
	}
	if err := h.Seek(0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	buf := make([]byte, 5)
	read, err := h.Read(buf)
	if err != nil || read != 5 || string(buf) != "hello" {
		t.Fatalf("Read() = (%d, %v) buf=%q", read, err, buf)
	}
	if err := s.Close(1); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if h.IsOpen() {
		t.Fatal("expected handle closed after Close")
	}

	if err := s.Open(2, "greeting.dat", FileInput); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	h2, _ := s.Get(2)
	buf2 := make([]byte, 5)
	if n, err := h2.Read(buf2); err != nil || n != 5 || string(buf2) != "hello" {
		t.Fatalf("reread = (%d, %v) buf=%q, want hello", n, err, buf2)
	}
}

func TestFileHandleSeekPastEndErrors(t *testing.T) {
	dir := t.TempDir()
	s := &FileStore{DataDir: dir, handles: make(map[int]*hostFile)}
	if err := s.Open(1, "short.dat", FileOutput); err != nil {
		t.Fatalf("Open: %v", err)
	}
	h, _ := s.Get(1)
	h.Write([]byte("ab"))
	if err := h.Seek(100); err == nil {
		t.Fatal("expected Seek past end to error")
	}
}

func TestFileHandleWriteTooLargeErrors(t *testing.T) {
	dir := t.TempDir()
	s := &FileStore{DataDir: dir, handles: make(map[int]*hostFile)}
	if err := s.Open(1, "big.dat", FileOutput); err != nil {
		t.Fatalf("Open: %v", err)
	}
	h, _ := s.Get(1)
	if err := h.Write(make([]byte, maxFileSize)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := h.Write([]byte("x")); err == nil {
		t.Fatal("expected write past maxFileSize to error")
	}
}

func TestFileHandleOperationsOnUnopenedError(t *testing.T) {
	var h hostFile
	if _, err := h.Read(make([]byte, 1)); err == nil {
		t.Fatal("expected Read on unopened handle to error")
	}
	if err := h.Write([]byte("x")); err == nil {
		t.Fatal("expected Write on unopened handle to error")
	}
	if err := h.Close(); err == nil {
		t.Fatal("expected Close on unopened handle to error")
	}
	if h.IsOpen() {
		t.Fatal("expected IsOpen false for zero-value handle")
	}
}

func TestFileStoreCloseAllClosesEverything(t *testing.T) {
	dir := t.TempDir()
	s := &FileStore{DataDir: dir, handles: make(map[int]*hostFile)}
	s.Open(1, "a.dat", FileOutput)
	s.Open(2, "b.dat", FileOutput)
	if err := s.CloseAll(); err != nil {
		t.Fatalf("CloseAll: %v", err)
	}
	if _, ok := s.Get(1); ok {
		t.Fatal("expected file 1 forgotten after CloseAll")
	}
	if _, ok := s.Get(2); ok {
		t.Fatal("expected file 2 forgotten after CloseAll")
	}
}

func TestFileStoreEncryptionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore()
	s.DataDir = dir
	if err := s.EnableEncryption(uuid.New()); err != nil {
		t.Fatalf("EnableEncryption: %v", err)
	}
	if err := s.Open(1, "secret.dat", FileOutput); err != nil {
		t.Fatalf("Open: %v", err)
	}
	h, _ := s.Get(1)
	if err := h.Write([]byte("classified")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Close(1); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// The file on disk must not contain the plaintext.
	raw, err := os.ReadFile(dir + "/secret.dat")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(raw) == "classified" || bytesContain(raw, []byte("classified")) {
		t.Fatal("plaintext found in encrypted file on disk")
	}

	if err := s.Open(2, "secret.dat", FileInput); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	h2, _ := s.Get(2)
	buf := make([]byte, len("classified"))
	if n, err := h2.Read(buf); err != nil || n != len(buf) || string(buf) != "classified" {
		t.Fatalf("decrypted read = (%d, %v) buf=%q, want classified", n, err, buf)
	}
}

func bytesContain(haystack, needle []byte) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if string(haystack[i:i+len(needle)]) == string(needle) {
			return true
		}
	}
	return false
}
