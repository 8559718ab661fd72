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

package audio

import "sync/atomic"

// InstrumentRef names the sample resource backing one of a track's 15
// instrument slots, plus its base volume (spec §3.5).
type InstrumentRef struct {
	ResourceID uint16
	Volume     uint8
}

// MusicTrack is a parsed music resource: 15 instrument slots, an event
// stream, and a pattern jump table (spec §3.5, §4.7).
//
// The event stream is 3 bytes per event:
//
//	byte0       byte1        byte2
//	iiii----    note/mark    channel override (taken mod 4; 0xFF = channel (i-1) mod 4)
//
// where the low nibble of byte0 (i) is the instrument index. Index 0 is
// reserved for a "set mark" event: byte1 is stored verbatim into
// VAR_MUSIC_MARK and byte2 is unused. Index 0xF (event0 == 0xFF) marks
// end-of-pattern: Patterns[Cursor] is expected to be followed by a
// pattern table entry giving the next pattern's byte offset, or
// endOfStream (0xFFFF) to stop. This 3-byte layout is not attested in
// any retrieved reference material (only decompressor/disassembler
// tooling survives in original_source/, not the music format), so it is
// a reconstruction consistent with spec §4.7's prose rather than a
// transcription; see DESIGN.md.
type MusicTrack struct {
	Patterns     []byte
	PatternTable []uint16 // byte offset into Patterns for each pattern index
	Instruments  [15]InstrumentRef

	pattern int
	cursor  int

	DelayTicks int
	Running    bool
}

// EndOfStream is the PatternTable sentinel meaning "no next pattern";
// reaching it stops the track.
const EndOfStream = 0xFFFF

// eventSetMark is the reserved instrument index for a "set mark" event.
const eventSetMark = 0
const eventEndOfPattern = 0x0F

// NewMusicTrack builds a track ready to run from the given pattern
// index, mirroring the MUSIC opcode's pos operand (spec §4.5.1).
func NewMusicTrack(patterns []byte, table []uint16, instruments [15]InstrumentRef, startPattern int, delay int) *MusicTrack {
	t := &MusicTrack{
		Patterns:     patterns,
		PatternTable: table,
		Instruments:  instruments,
		pattern:      startPattern,
		DelayTicks:   delay,
		Running:      true,
	}
	if startPattern >= 0 && startPattern < len(table) {
		t.cursor = int(table[startPattern])
	}
	return t
}

// Sequencer drives a MusicTrack's event stream on a delay-tick timer and
// resolves play-instrument events into mixer.Play calls (spec §4.7). It
// runs from the same audio-callback context as the Mixer; the only
// VM-visible effect is the atomic store to its mark register.
type Sequencer struct {
	mixer *Mixer
	track *MusicTrack
	mark  *uint32

	ticksUntilNext int
}

// NewSequencer creates a Sequencer that plays track's events through
// mixer, storing "set mark" events into *mark with a relaxed atomic
// store (spec §5's VAR_MUSIC_MARK contract).
func NewSequencer(mixer *Mixer, track *MusicTrack, mark *uint32) *Sequencer {
	return &Sequencer{mixer: mixer, track: track, mark: mark}
}

// Tick advances the sequencer by one tick, consuming an event once the
// delay counter reaches zero. The engine calls it once per audio render
// call, so a tick lasts one render block of the active audio sink.
func (s *Sequencer) Tick() {
	if s.track == nil || !s.track.Running {
		return
	}
	if s.ticksUntilNext > 0 {
		s.ticksUntilNext--
		return
	}

	s.step()
	s.ticksUntilNext = s.track.DelayTicks
}

func (s *Sequencer) step() {
	t := s.track
	if t.cursor+3 > len(t.Patterns) {
		t.Running = false
		return
	}

	b0 := t.Patterns[t.cursor]
	b1 := t.Patterns[t.cursor+1]
	b2 := t.Patterns[t.cursor+2]
	t.cursor += 3

	instrument := b0 & 0x0F
	switch {
	case b0 == 0xFF || instrument == eventEndOfPattern:
		s.advancePattern()
	case instrument == eventSetMark:
		if s.mark != nil {
			atomic.StoreUint32(s.mark, uint32(b1))
		}
	default:
		s.playInstrument(int(instrument), b1, b2)
	}
}

func (s *Sequencer) advancePattern() {
	t := s.track
	t.pattern++
	if t.pattern >= len(t.PatternTable) {
		t.Running = false
		return
	}
	next := t.PatternTable[t.pattern]
	if next == EndOfStream {
		t.Running = false
		return
	}
	t.cursor = int(next)
}

func (s *Sequencer) playInstrument(index int, note, channelOverride byte) {
	t := s.track
	if index < 1 || index > len(t.Instruments) {
		return
	}
	ref := t.Instruments[index-1]
	if ref.ResourceID == 0 {
		return
	}

	ch := uint8(index-1) % NumChannels
	if channelOverride != 0xFF {
		ch = channelOverride % NumChannels
	}

	freqIndex := note
	if s.mixer != nil {
		_ = s.mixer.Play(ref.ResourceID, freqIndex, ref.Volume, ch)
	}
}
