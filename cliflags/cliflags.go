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

// Package cliflags is a small wrapper around the standard library flag
// package for the interpreter's single, flat command line (no sub-modes are
// needed: the interpreter has one mode of operation, unlike tools that
// offer run/test/debug sub-commands).
package cliflags

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// Config holds the parsed value of every command line flag the interpreter
// recognises (spec §6.7).
type Config struct {
	DataDir         string
	Part            int
	SkipProtection  bool
	Quiet           bool
	Record          string
	DebugEngine     bool
	DebugVM         bool
	DebugVideo      bool
	DebugAudio      bool
	DebugResources  bool
	DebugBackend    bool
}

// Parse parses args (normally os.Args[1:]) into a Config. output receives
// usage text if -h/--help is requested or parsing fails.
func Parse(args []string, output io.Writer) (Config, error) {
	fs := flag.NewFlagSet("anotherworld", flag.ContinueOnError)
	fs.SetOutput(output)

	cfg := Config{
		DataDir: "./share/another-world",
		Part:    1,
	}

	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "directory containing MEMLIST.BIN and BANK** files")
	fs.IntVar(&cfg.Part, "part", cfg.Part, "initial part to load (0..9)")
	fs.BoolVar(&cfg.SkipProtection, "skip-protection", false, "bypass the opening code-entry protection")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "disable log output")
	fs.StringVar(&cfg.Record, "record", "", "write mixed audio output to this .wav file instead of playing it on the live audio device")

	var debug string
	fs.StringVar(&debug, "debug", "", "comma separated subsystem logging: engine,vm,video,audio,resources,backend")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	for _, sys := range strings.Split(debug, ",") {
		switch strings.TrimSpace(sys) {
		case "engine":
			cfg.DebugEngine = true
		case "vm":
			cfg.DebugVM = true
		case "video":
			cfg.DebugVideo = true
		case "audio":
			cfg.DebugAudio = true
		case "resources":
			cfg.DebugResources = true
		case "backend":
			cfg.DebugBackend = true
		case "":
		default:
			return cfg, fmt.Errorf("unknown --debug subsystem %q", sys)
		}
	}

	if cfg.Part < 0 || cfg.Part > 9 {
		return cfg, fmt.Errorf("--part must be in 0..9, got %d", cfg.Part)
	}

	return cfg, nil
}
