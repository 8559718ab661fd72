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

// Package sdl implements backend.Backend and backend.AudioSink on top of
// veandco/go-sdl2: a scaled window presenting the 320x200 paletted
// framebuffer, keyboard polling, and QueueAudio-driven sound output.
package sdl

import (
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/anotherworld-vm/engine/backend"
	"github.com/anotherworld-vm/engine/video"
)

// scale is the integer window scale factor applied to the game's native
// 320x200 frame.
const scale = 3

// Window implements backend.Backend. Its constructor must run on the
// goroutine that will call PollInput/Present for the life of the window,
// mirroring gui/sdlwindows/platform.go's runtime.LockOSThread() pattern:
// SDL's window and event APIs are only safe from the thread that created
// the window.
type Window struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	pixels []byte // scratch RGB24 buffer, one Present call's worth

	keys keyState
}

// New creates and shows the game window. Call this from the goroutine
// that will drive the engine's frame loop.
func New(title string) (*Window, error) {
	runtime.LockOSThread()

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return nil, fmt.Errorf("sdl init: %w", err)
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		video.Width*scale, video.Height*scale, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGB24, sdl.TEXTUREACCESS_STREAMING, video.Width, video.Height)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("create texture: %w", err)
	}

	return &Window{
		window:   window,
		renderer: renderer,
		texture:  texture,
		pixels:   make([]byte, video.Width*video.Height*3),
	}, nil
}

// Close tears the window and its SDL resources down.
func (w *Window) Close() {
	w.texture.Destroy()
	w.renderer.Destroy()
	w.window.Destroy()
	sdl.Quit()
}

// NowMs implements backend.Backend using SDL's own millisecond ticker.
func (w *Window) NowMs() uint32 {
	return sdl.GetTicks()
}

// SleepMs implements backend.Backend.
func (w *Window) SleepMs(ms uint32) {
	sdl.Delay(ms)
}

// Present unpacks a 4bpp paletted page into RGB24 and blits it, scaled to
// fill the window (spec §6.6).
func (w *Window) Present(page []byte, palette video.Palette) {
	for i := 0; i < video.Width*video.Height; i += 2 {
		b := page[i/2]
		hi := (b >> 4) & 0x0F
		lo := b & 0x0F
		c0 := palette[hi]
		c1 := palette[lo]
		o := i * 3
		w.pixels[o+0], w.pixels[o+1], w.pixels[o+2] = c0.R, c0.G, c0.B
		w.pixels[o+3], w.pixels[o+4], w.pixels[o+5] = c1.R, c1.G, c1.B
	}

	if err := w.texture.Update(nil, w.pixels, video.Width*3); err != nil {
		return
	}
	w.renderer.Clear()
	w.renderer.Copy(w.texture, nil, nil)
	w.renderer.Present()
}

// PollInput drains the SDL event queue, updates key state, and returns
// this frame's InputState (spec §6.6).
func (w *Window) PollInput() backend.InputState {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			w.keys.quit = true
		case *sdl.KeyboardEvent:
			w.keys.apply(e)
		}
	}
	return w.keys.snapshot()
}
