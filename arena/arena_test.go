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

package arena_test

import (
	"testing"

	"github.com/anotherworld-vm/engine/arena"
)

func TestAllocAndReset(t *testing.T) {
	a := arena.New(16)

	b1, err := a.Alloc(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b1) != 10 {
		t.Fatalf("got len %d, want 10", len(b1))
	}
	if a.Used() != 10 {
		t.Fatalf("got used %d, want 10", a.Used())
	}

	if _, err := a.Alloc(10); err == nil {
		t.Fatalf("expected exhaustion error")
	}

	a.Reset()
	if a.Used() != 0 {
		t.Fatalf("got used %d after reset, want 0", a.Used())
	}

	b2, err := a.Alloc(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b2) != 16 {
		t.Fatalf("got len %d, want 16", len(b2))
	}
}

func TestAllocNegativeSize(t *testing.T) {
	a := arena.New(16)
	if _, err := a.Alloc(-1); err == nil {
		t.Fatalf("expected error for negative size")
	}
}
