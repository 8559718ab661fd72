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

package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/anotherworld-vm/engine/backend"
	"github.com/anotherworld-vm/engine/backend/headless"
	"github.com/anotherworld-vm/engine/cliflags"
)

// memlistRecord mirrors resource's own 20-byte MEMLIST layout (see
// resource/memlist_test.go's identical helper; duplicated here rather than
// exported across packages for a single test fixture).
func memlistRecord(state, typ, rank, bankID byte, offset uint32, packed, unpacked uint16) []byte {
	b := make([]byte, 20)
	b[0] = state
	b[1] = typ
	b[6] = rank
	b[7] = bankID
	b[8] = byte(offset >> 24)
	b[9] = byte(offset >> 16)
	b[10] = byte(offset >> 8)
	b[11] = byte(offset)
	b[14] = byte(packed >> 8)
	b[15] = byte(packed)
	b[18] = byte(unpacked >> 8)
	b[19] = byte(unpacked)
	return b
}

// writeFixtureDataDir builds a minimal MEMLIST.BIN/BANK00 pair with just
// enough real resources bound (ids 0x17-0x19, the Intro part's palette,
// bytecode, and cinematic bank) to boot and run one frame: every id below
// that is an untouched placeholder entry, since ids are assigned by
// position in the file (spec §6.1).
func writeFixtureDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	var memlist []byte
	for id := 0; id < 0x17; id++ {
		memlist = append(memlist, memlistRecord(0, 0, 0, 0, 0, 0, 0)...)
	}
	// 0x17: palette, 4 bytes at offset 0
	memlist = append(memlist, memlistRecord(0, 3 /*TypePalette*/, 1, 0, 0, 4, 4)...)
	// 0x18: bytecode, 1 byte (a lone YIELD) at offset 4
	memlist = append(memlist, memlistRecord(0, 4 /*TypeBytecode*/, 1, 0, 4, 1, 1)...)
	// 0x19: cinematic polygons, empty, at offset 5
	memlist = append(memlist, memlistRecord(0, 5 /*TypeCinematic*/, 1, 0, 5, 0, 0)...)
	memlist = append(memlist, memlistRecord(0xFF, 0, 0, 0, 0, 0, 0)...) // terminator

	if err := os.WriteFile(filepath.Join(dir, "MEMLIST.BIN"), memlist, 0o644); err != nil {
		t.Fatalf("write memlist: %v", err)
	}

	bank := []byte{0x00, 0x00, 0x00, 0x00, 0x06} // 4 palette bytes, then YIELD
	if err := os.WriteFile(filepath.Join(dir, "BANK00"), bank, 0o644); err != nil {
		t.Fatalf("write bank: %v", err)
	}
	return dir
}

func newTestEngine(t *testing.T, cfg cliflags.Config) (*Engine, *headless.Backend, *headless.AudioSink) {
	t.Helper()
	be := headless.New()
	sink := &headless.AudioSink{}
	e, err := New(cfg, be, sink)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e, be, sink
}

func TestBootLoadsDefaultPartAndRunsAFrame(t *testing.T) {
	cfg := cliflags.Config{DataDir: writeFixtureDataDir(t), Part: 1}
	e, _, _ := newTestEngine(t, cfg)

	if err := e.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}
	if len(e.vm.Bytecode) == 0 {
		t.Fatalf("expected bytecode bound after Boot")
	}

	quit, err := e.Frame()
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if quit {
		t.Fatalf("did not expect quit on a bare YIELD frame")
	}
	if halted, herr := e.vm.Halted(); halted {
		t.Fatalf("did not expect a fault, got %v", herr)
	}
}

func TestSkipProtectionSubstitutesIntro(t *testing.T) {
	cfg := cliflags.Config{DataDir: writeFixtureDataDir(t), Part: 0, SkipProtection: true}
	e, _, _ := newTestEngine(t, cfg)

	if err := e.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}
	if len(e.vm.Bytecode) != 1 {
		t.Fatalf("expected the Intro part's single-byte bytecode to be bound, got %d bytes", len(e.vm.Bytecode))
	}
}

func TestFramePollsQuit(t *testing.T) {
	cfg := cliflags.Config{DataDir: writeFixtureDataDir(t), Part: 1}
	be := headless.New(backend.InputState{Quit: true})
	sink := &headless.AudioSink{}
	e, err := New(cfg, be, sink)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	quit, err := e.Frame()
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if !quit {
		t.Fatalf("expected Frame to report quit when the backend does")
	}
}

func TestApplyInputSetsHeroRegisters(t *testing.T) {
	cfg := cliflags.Config{DataDir: writeFixtureDataDir(t), Part: 1}
	e, _, _ := newTestEngine(t, cfg)
	if err := e.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	e.applyInput(backend.InputState{Horz: -1, Vert: 1, Button: true, Key: 0x1B})

	if got := int16(e.vm.Reg(0xFC)); got != -1 { // VarHeroPosLeftRight
		t.Fatalf("got left/right=%d, want -1", got)
	}
	if got := e.vm.Reg(0xDA); got != 0x1B { // VarInputKey
		t.Fatalf("got key=%#x, want 0x1B", got)
	}
	if got := e.vm.Reg(0xFA); got != 1 { // VarHeroAction
		t.Fatalf("got action=%d, want 1", got)
	}
}

func TestTickRandomSeedChangesEachFrame(t *testing.T) {
	cfg := cliflags.Config{DataDir: writeFixtureDataDir(t), Part: 1}
	e, _, _ := newTestEngine(t, cfg)
	if err := e.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	first := e.vm.Reg(0x3C) // VarRandomSeed
	e.tickRandomSeed()
	second := e.vm.Reg(0x3C)
	if first == second {
		t.Fatalf("expected VarRandomSeed to change across ticks")
	}
}

func TestOnMusicStopRequestClearsSequencer(t *testing.T) {
	cfg := cliflags.Config{DataDir: writeFixtureDataDir(t), Part: 1}
	e, _, _ := newTestEngine(t, cfg)
	if err := e.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	e.onMusic(0, 0, 0)
	if e.seq.Load() != nil {
		t.Fatalf("expected onMusic(0, ...) to clear the sequencer")
	}
}

func TestOnMusicUnknownResourceLeavesSequencerUnset(t *testing.T) {
	cfg := cliflags.Config{DataDir: writeFixtureDataDir(t), Part: 1}
	e, _, _ := newTestEngine(t, cfg)
	if err := e.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	e.onMusic(0xBEEF, 0, 0)
	if e.seq.Load() != nil {
		t.Fatalf("expected an unloaded music resource id to leave the sequencer nil")
	}
}
