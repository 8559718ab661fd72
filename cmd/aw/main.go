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

package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/anotherworld-vm/engine/backend"
	awsdl "github.com/anotherworld-vm/engine/backend/sdl"
	"github.com/anotherworld-vm/engine/backend/wavdump"
	"github.com/anotherworld-vm/engine/cliflags"
	"github.com/anotherworld-vm/engine/engine"
	"github.com/anotherworld-vm/engine/logger"
)

// #mainthread: SDL requires its window and event APIs to be driven from
// the thread that created the window, so main runs the whole engine loop
// itself rather than handing off to a goroutine (spec §6.6, §6.7).
func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := cliflags.Parse(os.Args[1:], os.Stderr)
	if err != nil {
		return 1
	}

	if cfg.DebugEngine || cfg.DebugVM || cfg.DebugVideo || cfg.DebugAudio || cfg.DebugResources || cfg.DebugBackend {
		logger.StderrEcho()
	}

	window, err := awsdl.New("Another World")
	if err != nil {
		fmt.Fprintf(os.Stderr, "aw: %v\n", err)
		return 1
	}
	defer window.Close()

	var sink backend.AudioSink
	if cfg.Record != "" {
		sink = wavdump.New(cfg.Record)
	} else {
		sink = &awsdl.Audio{}
	}

	eng, err := engine.New(cfg, window, sink)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aw: %v\n", err)
		return 1
	}

	if err := eng.Boot(); err != nil {
		fmt.Fprintf(os.Stderr, "aw: %v\n", err)
		return 1
	}
	defer sink.Stop()

	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)
	go func() {
		<-intChan
		os.Exit(0)
	}()

	if err := eng.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "aw: %v\n", err)
		logger.Tail(os.Stderr, 20)
		return 1
	}

	return 0
}
