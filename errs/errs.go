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

// Package errs implements the error taxonomy used throughout the
// interpreter. Errors are created with Errorf and carry a "pattern" (the
// format string, unformatted) that Is and Has can test against, so callers
// can distinguish a kind of failure (CorruptAsset, InvalidInstruction, ...)
// from the specific value that occurred, without string-matching the
// rendered message.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

type wrapped struct {
	pattern string
	values  []interface{}
}

// Errorf creates a new error tagged with pattern. values are interpolated
// into pattern lazily, in Error(), the same way fmt.Errorf would, but the
// untouched pattern string remains available for Is/Has comparisons. If one
// of values is itself an error, Unwrap exposes it so the standard errors
// package can walk the chain.
func Errorf(pattern string, values ...interface{}) error {
	return &wrapped{pattern: pattern, values: values}
}

// Error implements the error interface. Adjacent duplicate chain segments
// (separated by ": ") are collapsed so that repeatedly-wrapped errors don't
// repeat themselves.
func (e *wrapped) Error() string {
	s := fmt.Errorf(e.pattern, e.values...).Error()
	p := strings.SplitN(s, ": ", 3)
	if len(p) > 1 && p[0] == p[1] {
		return strings.Join(p[1:], ": ")
	}
	return strings.Join(p, ": ")
}

// Unwrap returns the first of e's values that is itself an error, so that
// errors.Is/errors.As, and Has below, can walk a chain of Errorf calls
// instead of matching on the formatted message.
func (e *wrapped) Unwrap() error {
	for _, v := range e.values {
		if err, ok := v.(error); ok {
			return err
		}
	}
	return nil
}

// IsAny reports whether err, or any error in its chain, was created by
// Errorf.
func IsAny(err error) bool {
	var w *wrapped
	return errors.As(err, &w)
}

// Is reports whether err itself (not its wrapped chain) was created by
// Errorf with exactly this pattern.
func Is(err error, pattern string) bool {
	w, ok := err.(*wrapped)
	return ok && w.pattern == pattern
}

// Has reports whether err, or any error in its chain, was created by Errorf
// with this pattern.
func Has(err error, pattern string) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if w, ok := e.(*wrapped); ok && w.pattern == pattern {
			return true
		}
	}
	return false
}
