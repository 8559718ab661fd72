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
	"github.com/veandco/go-sdl2/sdl"

	"github.com/anotherworld-vm/engine/backend"
)

// keyState tracks which directional/action keys are currently held,
// following gui/sdlwindows/platform.go's scancode-keyed approach to
// keyboard state rather than polling GetKeyboardState directly, since we
// also want Quit latched as a one-shot edge event (cleared by snapshot)
// and Pause toggled on each press, rather than either following the
// held-key level.
type keyState struct {
	left, right, up, down, action bool
	quit, pause                   bool
	lastKey                       uint8
}

func (k *keyState) apply(e *sdl.KeyboardEvent) {
	down := e.State == sdl.PRESSED
	switch e.Keysym.Scancode {
	case sdl.SCANCODE_LEFT:
		k.left = down
	case sdl.SCANCODE_RIGHT:
		k.right = down
	case sdl.SCANCODE_UP:
		k.up = down
	case sdl.SCANCODE_DOWN:
		k.down = down
	case sdl.SCANCODE_SPACE, sdl.SCANCODE_RETURN:
		k.action = down
	case sdl.SCANCODE_ESCAPE:
		if down {
			k.quit = true
		}
	case sdl.SCANCODE_P:
		if down {
			k.pause = !k.pause
		}
	}
	if down && e.Keysym.Scancode < 256 {
		k.lastKey = uint8(e.Keysym.Scancode)
	}
}

// snapshot converts the held-key state into one frame's backend.InputState.
func (k *keyState) snapshot() backend.InputState {
	var horz, vert int8
	switch {
	case k.left:
		horz = -1
	case k.right:
		horz = 1
	}
	switch {
	case k.up:
		vert = -1
	case k.down:
		vert = 1
	}

	in := backend.InputState{
		Horz:   horz,
		Vert:   vert,
		Button: k.action,
		Key:    k.lastKey,
		Quit:   k.quit,
		Pause:  k.pause,
	}
	k.quit = false
	return in
}
