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

// Package bytekiller implements the back-to-front LZ-style codec used to
// compress every resource bank in the shipped data files. Decoding reads
// 32-bit words from the end of the compressed buffer moving backward and
// writes decoded bytes from the end of the output buffer moving backward,
// the way the original interpreter's C++ unpacker does. Compression is
// intentionally not implemented: the original game data is already
// compressed and playback never needs to re-pack a resource.
package bytekiller

import "github.com/anotherworld-vm/engine/errs"

// state holds the mutable cursor and bit-buffer position used while
// decoding a single resource. Modelled as a per-call value (rather than a
// package-level global) so Decompress keeps no shared state between
// calls; the resource manager's update pass calls it one resource at a
// time.
type state struct {
	src      []byte
	dst      []byte
	srcPos   int // next byte to read, moving backward
	dstPos   int // next byte to write, moving backward
	chunk    uint32
	checksum uint32
	err      error
}

// Decompress decodes src (a ByteKiller-compressed resource payload,
// trailer included) into a buffer of exactly unpackedSize bytes.
//
// It returns errs.CorruptAsset if the trailer is missing, the checksum does
// not come out to zero, or the decode cursor underflows the source or
// destination buffers.
func Decompress(src []byte, unpackedSize int) ([]byte, error) {
	if unpackedSize <= 0 {
		return nil, nil
	}
	if len(src) < 12 {
		return nil, errs.Errorf(errs.CorruptAsset, errShort)
	}

	st := &state{
		src:    src,
		dst:    make([]byte, unpackedSize),
		srcPos: len(src) - 1,
		dstPos: unpackedSize - 1,
	}

	// the trailer occupies the final 12 bytes of src, laid out left to
	// right as bit_buffer_init (u32 BE) | checksum (u32 BE) | unpacked_size
	// (u32 BE) -- unpacked_size is the true last 4 bytes of the file.
	// fetchLong reads backward from the end, so it sees them in the
	// opposite order: unpacked_size first, then checksum, then
	// bit_buffer_init.
	declaredSize, err := st.fetchLong()
	if err != nil {
		return nil, errs.Errorf(errs.CorruptAsset, err)
	}
	if int(declaredSize) != unpackedSize {
		return nil, errs.Errorf(errs.CorruptAsset, errSizeMismatch)
	}

	st.checksum, err = st.fetchLong()
	if err != nil {
		return nil, errs.Errorf(errs.CorruptAsset, err)
	}

	st.chunk, err = st.fetchLong()
	if err != nil {
		return nil, errs.Errorf(errs.CorruptAsset, err)
	}
	st.checksum ^= st.chunk

	if err := st.run(); err != nil {
		return nil, errs.Errorf(errs.CorruptAsset, err)
	}

	if st.checksum != 0 {
		return nil, errs.Errorf(errs.CorruptAsset, errChecksum)
	}
	if st.dstPos != -1 {
		return nil, errs.Errorf(errs.CorruptAsset, errSizeMismatch)
	}

	return st.dst, nil
}

// run decodes control codes until the destination buffer is full.
//
// The control code is a 1- or 2-bit prefix: a leading 0 bit selects a
// 2-bit code (literal run, or a 2-byte copy); a leading 1 bit selects a
// 3-bit code (3-byte copy, 4-byte copy, an N-byte copy, or a long literal
// run). This exact grouping is the one the original C++ unpacker (and the
// project's Python reimplementation of it) uses; it does not subdivide
// evenly into the "1 0" / "1 1" / "1 0 0" description one might guess from
// the bit widths alone.
func (st *state) run() error {
	remaining := len(st.dst)
	for remaining > 0 {
		var code int
		if st.getBit() == 0 {
			code = st.getBitsInt(1) // 0b00 or 0b01
		} else {
			code = 4 | st.getBitsInt(2) // 0b100..0b111
		}

		var n int
		switch code {
		case 0x00: // literal run, short
			n = st.getBitsInt(3) + 1
			if err := st.copyLiteral(n); err != nil {
				return err
			}
		case 0x07: // literal run, long
			n = st.getBitsInt(8) + 9
			if err := st.copyLiteral(n); err != nil {
				return err
			}
		case 0x01: // copy 2 bytes, 8-bit offset
			n = 2
			if err := st.copyBack(st.getBitsInt(8), n); err != nil {
				return err
			}
		case 0x04: // copy 3 bytes, 9-bit offset
			n = 3
			if err := st.copyBack(st.getBitsInt(9), n); err != nil {
				return err
			}
		case 0x05: // copy 4 bytes, 10-bit offset
			n = 4
			if err := st.copyBack(st.getBitsInt(10), n); err != nil {
				return err
			}
		case 0x06: // copy N+1 bytes, 12-bit offset
			n = st.getBitsInt(8) + 1
			if err := st.copyBack(st.getBitsInt(12), n); err != nil {
				return err
			}
		default:
			return errs.Errorf(errUnsupportedCode)
		}

		if st.err != nil {
			return st.err
		}
		remaining -= n
	}
	return nil
}

// copyLiteral copies n bytes read 8 bits at a time from the compressed
// stream directly into the output.
func (st *state) copyLiteral(n int) error {
	for i := 0; i < n; i++ {
		st.writeByte(byte(st.getBitsInt(8)))
	}
	return st.err
}

// copyBack copies n bytes already present in the (partially decoded)
// output buffer, offset+1 positions ahead of the current write cursor.
func (st *state) copyBack(offset, n int) error {
	for i := 0; i < n; i++ {
		srcIndex := st.dstPos + offset + 1
		if srcIndex < 0 || srcIndex >= len(st.dst) {
			return errs.Errorf(errUnderflow)
		}
		st.writeByte(st.dst[srcIndex])
		if st.err != nil {
			return st.err
		}
	}
	return nil
}
