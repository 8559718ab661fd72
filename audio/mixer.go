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

// Package audio implements the four-channel sample mixer and music
// sequencer (spec §3.5, §4.6, §4.7). The mixer is designed to be driven
// from a backend's audio callback goroutine while play/stop/set_volume
// calls arrive from the engine thread; every mutable field is guarded by
// a single mutex so the two never race.
package audio

import "sync"

// SampleRate is the output sample rate the mixer renders at; freqTable
// entries are converted to a Q16.16 step against this rate.
const SampleRate = 44100

// NumChannels is the fixed channel count of the mixer (spec §3.5).
const NumChannels = 4

// Sample is raw 8-bit signed PCM plus its loop points (spec §3.5).
type Sample struct {
	Data      []int8
	LoopStart uint32
	LoopLen   uint32 // 0 means non-looping
}

// channel holds one voice's playback state, all in Q16.16 fixed point
// except Volume and Active.
type channel struct {
	sample   *Sample
	position uint32 // Q16.16
	step     uint32 // Q16.16
	volume   uint8  // 0..64
	active   bool
}

// SampleSource resolves a resource id to its raw, decompressed bytes
// (header + PCM payload). *resource.Manager satisfies this via its
// Sample method; the mixer is otherwise decoupled from the resource
// package so the two can be tested independently.
type SampleSource interface {
	Sample(id uint16) ([]byte, bool)
}

// Mixer implements the four-channel sample mixer of spec §4.6.
type Mixer struct {
	mu       sync.Mutex
	channels [NumChannels]channel
	source   SampleSource
}

// New creates a Mixer that resolves resource ids through source.
func New(source SampleSource) *Mixer {
	return &Mixer{source: source}
}

// Play resolves resourceID through the configured SampleSource, parses
// its 8-byte header (length:u16 BE, loop_len:u16 BE, reserved:u32)
// followed by 8-bit signed PCM, and arms channelIdx to play it at the
// rate named by freqIndex (spec §4.6). freqIndex is expected in
// 0..39; out-of-range indices are clamped to the table's last entry
// rather than treated as an error, since a corrupt music/sound event
// should degrade gracefully rather than abort playback of everything
// else.
func (m *Mixer) Play(resourceID uint16, freqIndex uint8, volume uint8, channelIdx uint8) error {
	if channelIdx >= NumChannels {
		return errChannelRange(channelIdx)
	}
	raw, ok := m.source.Sample(resourceID)
	if !ok {
		return errMissingSample(resourceID)
	}
	if len(raw) < 8 {
		return errShortSample(resourceID, len(raw))
	}

	length := uint32(raw[0])<<8 | uint32(raw[1])
	loopLen := uint32(raw[2])<<8 | uint32(raw[3])
	pcm := raw[8:]
	if uint32(len(pcm)) < length {
		length = uint32(len(pcm))
	}

	data := make([]int8, length)
	for i := range data {
		data[i] = int8(pcm[i])
	}

	sample := &Sample{Data: data, LoopStart: 0, LoopLen: loopLen}
	step := stepFor(freqIndex)

	if volume > 64 {
		volume = 64
	}

	m.mu.Lock()
	m.channels[channelIdx] = channel{
		sample:   sample,
		position: 0,
		step:     step,
		volume:   volume,
		active:   true,
	}
	m.mu.Unlock()
	return nil
}

// Stop silences channelIdx (spec §4.6's stop).
func (m *Mixer) Stop(channelIdx uint8) {
	if channelIdx >= NumChannels {
		return
	}
	m.mu.Lock()
	m.channels[channelIdx].active = false
	m.mu.Unlock()
}

// SetVolume clamps vol to 0..64 and applies it to channelIdx.
func (m *Mixer) SetVolume(channelIdx uint8, vol uint8) {
	if channelIdx >= NumChannels {
		return
	}
	if vol > 64 {
		vol = 64
	}
	m.mu.Lock()
	m.channels[channelIdx].volume = vol
	if vol == 0 {
		m.channels[channelIdx].active = false
	}
	m.mu.Unlock()
}

// Render fills out, a buffer of interleaved stereo i16 frames, by
// summing every active channel's current sample and advancing its
// position (spec §4.6's render). Both stereo lanes carry the same mono
// sum, matching the original hardware's mono sample channels panned to
// a stereo output device.
func (m *Mixer) Render(out []int16) {
	frames := len(out) / 2

	m.mu.Lock()
	defer m.mu.Unlock()

	for f := 0; f < frames; f++ {
		var sum int32
		for i := range m.channels {
			ch := &m.channels[i]
			if !ch.active || ch.sample == nil {
				continue
			}

			idx := ch.position >> 16
			if idx >= uint32(len(ch.sample.Data)) {
				ch.active = false
				continue
			}

			s := int32(ch.sample.Data[idx])
			sum += s * int32(ch.volume) / 64

			ch.position += ch.step
			if ch.position>>16 >= uint32(len(ch.sample.Data)) {
				if ch.sample.LoopLen > 0 {
					over := ch.position - uint32(len(ch.sample.Data))<<16
					ch.position = (ch.sample.LoopStart << 16) + over%(ch.sample.LoopLen<<16)
				} else {
					ch.active = false
				}
			}
		}

		sum *= 256 // scale 8-bit PCM range up into the i16 output range
		if sum > 32767 {
			sum = 32767
		} else if sum < -32768 {
			sum = -32768
		}

		out[f*2] = int16(sum)
		out[f*2+1] = int16(sum)
	}
}
