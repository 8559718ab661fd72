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

// Package headless implements backend.Backend and backend.AudioSink
// without any window, input device, or sound card: a fixed input script
// plus a recording of every presented frame, for exercising the engine
// from tests and for comparison/regression tooling.
package headless

import (
	"sync"

	"github.com/anotherworld-vm/engine/backend"
	"github.com/anotherworld-vm/engine/video"
)

// Backend is a scriptable backend.Backend: PollInput replays Inputs in
// order (holding the last one once exhausted), Present records every
// frame it's given, and time never advances on its own -- NowMs counts
// calls rather than wall-clock time, and SleepMs is a no-op, so a test
// driving Frame() in a loop runs at the speed of the test itself.
type Backend struct {
	mu sync.Mutex

	// Inputs is consumed one entry per PollInput call; once exhausted the
	// last entry (or a zero InputState) repeats.
	Inputs []backend.InputState

	Presented []PresentedFrame

	inputIdx int
	ticks    uint32
}

// PresentedFrame captures one Present call's arguments for inspection.
type PresentedFrame struct {
	Page    []byte
	Palette video.Palette
}

// New creates a Backend that will replay inputs in order.
func New(inputs ...backend.InputState) *Backend {
	return &Backend{Inputs: inputs}
}

func (b *Backend) NowMs() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ticks++
	return b.ticks
}

func (b *Backend) SleepMs(ms uint32) {}

func (b *Backend) PollInput() backend.InputState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.Inputs) == 0 {
		return backend.InputState{}
	}
	if b.inputIdx >= len(b.Inputs) {
		return b.Inputs[len(b.Inputs)-1]
	}
	in := b.Inputs[b.inputIdx]
	b.inputIdx++
	return in
}

func (b *Backend) Present(page []byte, palette video.Palette) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]byte, len(page))
	copy(cp, page)
	b.Presented = append(b.Presented, PresentedFrame{Page: cp, Palette: palette})
}

// AudioSink is a backend.AudioSink that calls render on demand (via
// Pump) rather than from a real device callback, so tests can drive the
// mixer deterministically.
type AudioSink struct {
	render func(out []int16)
}

func (a *AudioSink) Start(sampleRateHz int, render func(out []int16)) error {
	a.render = render
	return nil
}

func (a *AudioSink) Stop() error {
	a.render = nil
	return nil
}

// Pump renders n output frames (2*n int16 values, stereo) through
// whatever render function Start was given, returning the buffer.
func (a *AudioSink) Pump(n int) []int16 {
	out := make([]int16, n*2)
	if a.render != nil {
		a.render(out)
	}
	return out
}
