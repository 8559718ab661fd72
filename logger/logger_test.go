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

package logger_test

import (
	"strings"
	"testing"

	"github.com/anotherworld-vm/engine/logger"
)

func TestLogger(t *testing.T) {
	logger.Clear()
	w := &strings.Builder{}

	logger.Write(w)
	if w.String() != "" {
		t.Fatalf("expected empty log, got %q", w.String())
	}

	logger.Log(logger.Allow, "test", "this is a test")
	logger.Write(w)
	if w.String() != "test: this is a test\n" {
		t.Fatalf("unexpected entry: %q", w.String())
	}

	w.Reset()
	logger.Log(logger.Allow, "test2", "this is another test")
	logger.Write(w)
	want := "test: this is a test\ntest2: this is another test\n"
	if w.String() != want {
		t.Fatalf("got %q, want %q", w.String(), want)
	}

	w.Reset()
	logger.Tail(w, 1)
	if w.String() != "test2: this is another test\n" {
		t.Fatalf("unexpected tail: %q", w.String())
	}
}

func TestLoggerDeniesWhenNotAllowed(t *testing.T) {
	logger.Clear()
	w := &strings.Builder{}

	logger.Log(logger.Deny, "test", "should not appear")
	logger.Write(w)
	if w.String() != "" {
		t.Fatalf("expected suppressed entry, got %q", w.String())
	}
}

func TestLoggerDeduplicatesRepeats(t *testing.T) {
	logger.Clear()
	w := &strings.Builder{}

	for i := 0; i < 3; i++ {
		logger.Log(logger.Allow, "vm", "thread 3 yielded")
	}
	logger.Write(w)
	if w.String() != "vm: thread 3 yielded (repeat x3)\n" {
		t.Fatalf("unexpected dedup output: %q", w.String())
	}
}
