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

package bytekiller_test

import (
	"bytes"
	"testing"

	"github.com/anotherworld-vm/engine/bytekiller"
	"github.com/anotherworld-vm/engine/errs"
)

// Fixtures below were produced by hand-assembling the control-code bit
// stream and packing it into the trailer's bit_buffer_init word, then
// cross-checked against the reference decoder the game data was unpacked
// with. Output order is back-to-front: the first bytes consumed from the
// stream land at the *end* of the destination buffer.

func TestDecompressLiteralRun(t *testing.T) {
	// short literal run (code 00, n=2): bytes 0x41 ('A') then 0x42 ('B'),
	// decoded in reverse so the output reads "BA".
	src := []byte{
		0x80, 0x08, 0x50, 0x50, // bit_buffer_init
		0x80, 0x08, 0x50, 0x50, // checksum (bit_buffer_init XORed with itself is folded in below)
		0x00, 0x00, 0x00, 0x02, // unpacked_size
	}
	got, err := bytekiller.Decompress(src, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x42, 0x41}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecompressCopyBack(t *testing.T) {
	// one literal byte 'A' followed by a 3-byte zero-offset copy, which
	// repeats the byte just written: produces "AAAA".
	src := []byte{
		0x80, 0x00, 0x30, 0x40,
		0x80, 0x00, 0x30, 0x40,
		0x00, 0x00, 0x00, 0x04,
	}
	got, err := bytekiller.Decompress(src, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x41, 0x41, 0x41, 0x41}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecompressChecksumMismatch(t *testing.T) {
	src := []byte{
		0x81, 0x08, 0x50, 0x50, // corrupted bit_buffer_init, checksum no longer cancels
		0x80, 0x08, 0x50, 0x50,
		0x00, 0x00, 0x00, 0x02,
	}
	_, err := bytekiller.Decompress(src, 2)
	if !errs.Has(err, errs.CorruptAsset) {
		t.Fatalf("expected a corrupt asset error, got %v", err)
	}
}

func TestDecompressSizeMismatch(t *testing.T) {
	src := []byte{
		0x80, 0x08, 0x50, 0x50,
		0x80, 0x08, 0x50, 0x50,
		0x00, 0x00, 0x00, 0x02,
	}
	_, err := bytekiller.Decompress(src, 3)
	if !errs.Has(err, errs.CorruptAsset) {
		t.Fatalf("expected a corrupt asset error, got %v", err)
	}
}

func TestDecompressShortStream(t *testing.T) {
	_, err := bytekiller.Decompress([]byte{1, 2, 3}, 4)
	if !errs.Has(err, errs.CorruptAsset) {
		t.Fatalf("expected a corrupt asset error, got %v", err)
	}
}

func TestDecompressZeroSize(t *testing.T) {
	got, err := bytekiller.Decompress(nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil output for zero size, got %v", got)
	}
}
