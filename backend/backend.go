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

// Package backend defines the seam between the engine and the outside
// world: presenting frames, polling input, and driving audio output
// (spec §6.6). Concrete implementations live in backend/sdl (a real
// window), backend/wavdump (audio captured to a .wav file), and
// backend/headless (a no-op stand-in for tests).
package backend

import "github.com/anotherworld-vm/engine/video"

// InputState is one frame's worth of polled input (spec §6.6).
type InputState struct {
	Mask   uint16
	Horz   int8
	Vert   int8
	Button bool
	Key    uint8
	Quit   bool
	Pause  bool
}

// Backend supplies timing, input, and video presentation to the engine
// (spec §6.6's now_ms/sleep_ms/poll_input/present, minus audio -- audio
// is its own narrower AudioSink seam since the engine can pair any
// Backend with any AudioSink, e.g. the SDL window with a --record
// AudioSink instead of the SDL one).
type Backend interface {
	NowMs() uint32
	SleepMs(ms uint32)
	PollInput() InputState
	Present(page []byte, palette video.Palette)
}

// AudioSink is the seam a concrete audio output implements: given the
// mixer's render function, it drives it on whatever schedule its device
// or file format requires (spec §6.6's start_audio/stop_audio).
type AudioSink interface {
	Start(sampleRateHz int, render func(out []int16)) error
	Stop() error
}
