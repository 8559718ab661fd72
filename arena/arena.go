// This file is part of anotherworld.
//
// anotherworld is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// anotherworld is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with anotherworld.  If not, see <https://www.gnu.org/licenses/>.

// Package arena implements the bump allocator backing every resource the
// manager loads. There is no per-resource free: a part change resets the
// high-water mark back to zero and the next load_part starts overwriting
// from the beginning, the same way the original interpreter manages its
// single ~1.75MiB work buffer.
package arena

import "github.com/anotherworld-vm/engine/errs"

// DefaultSize is 2MiB, above the ~1.75MiB work buffer the original
// interpreter uses for its largest part.
const DefaultSize = 1024 * 1024 * 2

// Arena is a fixed-size bump allocator. The zero value is not usable; use
// New.
type Arena struct {
	buf  []byte
	mark int
}

// New creates an Arena backed by a buffer of size bytes.
func New(size int) *Arena {
	return &Arena{buf: make([]byte, size)}
}

// Alloc reserves n bytes and returns a slice into the arena's backing
// array. The slice is valid until the next Reset.
func (a *Arena) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, errs.Errorf(errs.CorruptAsset, "negative allocation size")
	}
	if a.mark+n > len(a.buf) {
		return nil, errs.Errorf(errs.CorruptAsset, "arena exhausted")
	}
	b := a.buf[a.mark : a.mark+n : a.mark+n]
	a.mark += n
	return b, nil
}

// Reset moves the high-water mark back to zero, invalidating every slice
// previously returned by Alloc.
func (a *Arena) Reset() {
	a.mark = 0
}

// Used reports how many bytes are currently allocated.
func (a *Arena) Used() int {
	return a.mark
}

// Cap reports the arena's total capacity.
func (a *Arena) Cap() int {
	return len(a.buf)
}
