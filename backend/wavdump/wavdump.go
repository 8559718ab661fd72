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

// Package wavdump implements backend.AudioSink by rendering into an
// in-memory buffer and flushing it to a .wav file on Stop (spec §6.6's
// --record), the same buffer-then-flush-on-shutdown shape as
// wavwriter.WavWriter, aimed at go-audio/wav's stereo 16-bit encoder
// instead of youpy/go-wav's mono 8-bit one.
package wavdump

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// chunkFrames is how many stereo sample-pairs are rendered per tick,
// mirroring backend/sdl.Audio's own fixed render granularity.
const chunkFrames = 2048

// AudioSink buffers every rendered sample in memory and writes it out as
// a single .wav file when Stop is called -- suitable for capturing a
// bounded run, not for long unattended recording (same caveat
// wavwriter.WavWriter's doc comment carries).
type AudioSink struct {
	path       string
	sampleRate int

	mu     sync.Mutex
	buffer []int

	stop chan struct{}
	done chan struct{}
}

// New creates an AudioSink that will write to path on Stop.
func New(path string) *AudioSink {
	return &AudioSink{path: path}
}

// Start begins rendering into the in-memory buffer on a ticker, the same
// cadence backend/sdl.Audio uses for its QueueAudio ticker, so a run
// recorded with --record has the same block granularity as a live one.
func (a *AudioSink) Start(sampleRateHz int, render func(out []int16)) error {
	a.sampleRate = sampleRateHz
	a.stop = make(chan struct{})
	a.done = make(chan struct{})

	interval := time.Duration(float64(chunkFrames)/float64(sampleRateHz)*1000) * time.Millisecond
	samples := make([]int16, chunkFrames*2)

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
				a.mu.Lock()
				for _, s := range samples {
					a.buffer = append(a.buffer, int(s))
				}
				a.mu.Unlock()
			}
		}
	}()

	return nil
}

// Stop halts rendering and flushes everything buffered to a .wav file.
func (a *AudioSink) Stop() error {
	if a.stop != nil {
		close(a.stop)
		<-a.done
	}

	f, err := os.Create(a.path)
	if err != nil {
		return fmt.Errorf("wavdump: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, a.sampleRate, 16, 2, 1)

	a.mu.Lock()
	data := a.buffer
	a.mu.Unlock()

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: a.sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavdump: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavdump: %w", err)
	}
	return nil
}
