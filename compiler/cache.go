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

package compiler

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/dchest/siphash"
)

// LineCache remembers the SipHash-2-4 digest Compile last saw for
// each line index, so a host re-compiling a document after a single
// line edit (Document.apply_edit) can skip Compile entirely when
// nothing hashed differently changed. The key is randomized per
// LineCache so a malicious document can't choose lines that collide
// it into skipping a real change.
type LineCache struct {
	k0, k1 uint64
	hashes []uint64
}

// NewLineCache creates an empty cache with a fresh random SipHash key.
func NewLineCache() *LineCache {
	var keyBuf [16]byte
	// crypto/rand never fails on any platform Go supports; a failure
	// here would mean the OS entropy source is gone, which nothing
	// downstream could recover from either.
	rand.Read(keyBuf[:])
	return &LineCache{
		k0: binary.LittleEndian.Uint64(keyBuf[:8]),
		k1: binary.LittleEndian.Uint64(keyBuf[8:]),
	}
}

func (c *LineCache) digest(line Line) uint64 {
	return siphash.Hash(c.k0, c.k1, []byte(line.Text))
}

// Changed reports which line indices hash differently than what the
// cache last recorded for that index (including every index past the
// previously-seen length), and updates the cache to match lines. A
// shorter lines slice than last time truncates the cache; recompiling
// from scratch after a line is deleted is the caller's job, this only
// tracks which individual lines need new bytecode.
func (c *LineCache) Changed(lines []Line) []int {
	var changed []int
	next := make([]uint64, len(lines))
	for i, line := range lines {
		h := c.digest(line)
		next[i] = h
		if i >= len(c.hashes) || c.hashes[i] != h {
			changed = append(changed, i)
		}
	}
	c.hashes = next
	return changed
}

// Reset discards all remembered digests, forcing the next Changed
// call to report every line, as after loading an unrelated document
// into the same cache.
func (c *LineCache) Reset() {
	c.hashes = nil
}
