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

package sdl

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
)

// bufferFrames is the number of stereo sample-pairs rendered and queued
// per tick. gui/sdlaudio/audio.go picks its own bufferLength "through
// trial and error" for the same reason: short enough to avoid audible
// lag, long enough that refilling isn't computationally disruptive.
const bufferFrames = 2048

// Audio implements backend.AudioSink the way gui/sdlaudio/audio.go
// actually drives SDL: not a cgo audio callback (go-sdl2 makes that
// impractical to bind to directly) but a ticker goroutine that renders a
// fixed-size buffer and pushes it with QueueAudio, clearing anything still
// queued first so playback can't drift further and further behind.
type Audio struct {
	id   sdl.AudioDeviceID
	stop chan struct{}
	done chan struct{}
}

// Start opens the audio device and begins the render/queue ticker.
func (a *Audio) Start(sampleRateHz int, render func(out []int16)) error {
	spec := &sdl.AudioSpec{
		Freq:     int32(sampleRateHz),
		Format:   sdl.AUDIO_S16LSB,
		Channels: 2,
		Samples:  uint16(bufferFrames),
	}
	var obtained sdl.AudioSpec
	id, err := sdl.OpenAudioDevice("", false, spec, &obtained, 0)
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	a.id = id
	a.stop = make(chan struct{})
	a.done = make(chan struct{})

	interval := time.Duration(float64(bufferFrames)/float64(sampleRateHz)*1000) * time.Millisecond

	samples := make([]int16, bufferFrames*2)
	raw := make([]byte, bufferFrames*2*2)

	go func() {
		defer close(a.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-a.stop:
				return
			case <-ticker.C:
				render(samples)
				for i, s := range samples {
					binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
				}
				sdl.ClearQueuedAudio(a.id)
				_ = sdl.QueueAudio(a.id, raw)
			}
		}
	}()

	sdl.PauseAudioDevice(a.id, false)
	return nil
}

// Stop halts the ticker and closes the device.
func (a *Audio) Stop() error {
	if a.stop != nil {
		close(a.stop)
		<-a.done
	}
	sdl.CloseAudioDevice(a.id)
	return nil
}
