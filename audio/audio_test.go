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

package audio_test

import (
	"sync/atomic"
	"testing"

	"github.com/anotherworld-vm/engine/audio"
)

type fakeSource map[uint16][]byte

func (f fakeSource) Sample(id uint16) ([]byte, bool) {
	d, ok := f[id]
	return d, ok
}

func sampleResource(pcm []int8, loopLen uint16) []byte {
	out := make([]byte, 8+len(pcm))
	length := uint16(len(pcm))
	out[0] = byte(length >> 8)
	out[1] = byte(length)
	out[2] = byte(loopLen >> 8)
	out[3] = byte(loopLen)
	for i, v := range pcm {
		out[8+i] = byte(v)
	}
	return out
}

func TestPlayAndRenderProducesNonZeroOutput(t *testing.T) {
	src := fakeSource{0x10: sampleResource([]int8{127, -128, 64, -64}, 0)}
	m := audio.New(src)

	if err := m.Play(0x10, 0, 64, 0); err != nil {
		t.Fatalf("Play: %v", err)
	}

	out := make([]int16, 2*8)
	m.Render(out)

	nonZero := false
	for _, v := range out {
		if v != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatalf("expected some non-zero output frames")
	}
}

func TestPlayUnknownResourceErrors(t *testing.T) {
	m := audio.New(fakeSource{})
	if err := m.Play(0xBEEF, 0, 64, 0); err == nil {
		t.Fatalf("expected error for unknown resource")
	}
}

func TestPlayChannelOutOfRangeErrors(t *testing.T) {
	src := fakeSource{0x10: sampleResource([]int8{1, 2}, 0)}
	m := audio.New(src)
	if err := m.Play(0x10, 0, 64, 7); err == nil {
		t.Fatalf("expected error for out-of-range channel")
	}
}

func TestStopSilencesChannel(t *testing.T) {
	src := fakeSource{0x10: sampleResource([]int8{127, 127, 127, 127}, 0)}
	m := audio.New(src)
	_ = m.Play(0x10, 0, 64, 0)
	m.Stop(0)

	out := make([]int16, 2*4)
	m.Render(out)
	for _, v := range out {
		if v != 0 {
			t.Fatalf("expected silence after Stop, got %d", v)
		}
	}
}

func TestNonLoopingSampleExhaustsThenStaysSilent(t *testing.T) {
	src := fakeSource{0x10: sampleResource([]int8{10, 10}, 0)}
	m := audio.New(src)
	_ = m.Play(0x10, 39, 64, 0) // highest frequency index: few output frames per sample frame

	out := make([]int16, 2*50)
	m.Render(out)

	tail := out[len(out)-2:]
	if tail[0] != 0 || tail[1] != 0 {
		t.Fatalf("expected channel to have gone silent by the end of the buffer, got %v", tail)
	}
}

func TestSequencerSetMarkIsVisibleToReader(t *testing.T) {
	var mark uint32
	track := audio.NewMusicTrack(
		[]byte{
			0x00, 0x05, 0x00, // set mark = 5
			0xFF, 0x00, 0x00, // end of pattern
		},
		[]uint16{0, audio.EndOfStream},
		[15]audio.InstrumentRef{},
		0,
		0,
	)
	seq := audio.NewSequencer(audio.New(fakeSource{}), track, &mark)

	seq.Tick()
	if got := atomic.LoadUint32(&mark); got != 5 {
		t.Fatalf("got mark %d, want 5", got)
	}

	seq.Tick()
	if track.Running {
		t.Fatalf("expected track to stop after its pattern table ends")
	}
}

func TestSequencerPlaysInstrument(t *testing.T) {
	src := fakeSource{0x20: sampleResource([]int8{5, 5, 5, 5}, 0)}
	m := audio.New(src)

	var instruments [15]audio.InstrumentRef
	instruments[0] = audio.InstrumentRef{ResourceID: 0x20, Volume: 64}

	track := audio.NewMusicTrack(
		[]byte{
			0x01, 0x00, 0xFF, // play instrument 1, note 0, no channel override
			0xFF, 0x00, 0x00, // end of pattern
		},
		[]uint16{0, audio.EndOfStream},
		instruments,
		0,
		0,
	)
	var mark uint32
	seq := audio.NewSequencer(m, track, &mark)
	seq.Tick()

	out := make([]int16, 2*2)
	m.Render(out)
	if out[0] == 0 {
		t.Fatalf("expected the played instrument to produce non-zero output")
	}
}
