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

// Package resource implements the resource manager: it parses MEMLIST.BIN,
// loads and unpacks resource payloads from the BANK** files on demand, and
// binds the four resources a part needs (palette, bytecode, cinematic
// polygons, optional sub-cinematic polygons) to the rest of the engine.
package resource

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/anotherworld-vm/engine/arena"
	"github.com/anotherworld-vm/engine/bytekiller"
	"github.com/anotherworld-vm/engine/errs"
	"github.com/anotherworld-vm/engine/logger"
)

// Type identifies what kind of asset a resource holds (spec §3.1, §6.1).
type Type uint8

const (
	TypeSound        Type = 0
	TypeMusic        Type = 1
	TypeBitmap       Type = 2 // raw 320x200 4bpp frame, blitted to page 0 on load
	TypePalette      Type = 3
	TypeBytecode     Type = 4
	TypeCinematic    Type = 5 // polygon1, a.k.a. poly bank
	TypeSubCinematic Type = 6 // polygon2
)

func (t Type) String() string {
	switch t {
	case TypeSound:
		return "sound"
	case TypeMusic:
		return "music"
	case TypeBitmap:
		return "bitmap"
	case TypePalette:
		return "palette"
	case TypeBytecode:
		return "bytecode"
	case TypeCinematic:
		return "cinematic-polys"
	case TypeSubCinematic:
		return "sub-cinematic-polys"
	default:
		return fmt.Sprintf("type%02x", uint8(t))
	}
}

// LoadState is the lifecycle state of a single resource entry (spec §3.1).
type LoadState uint8

const (
	NotNeeded      LoadState = 0
	Loaded         LoadState = 1
	RequestedLoad  LoadState = 2
	RequestedPurge LoadState = 3
	// EndOfList is the MEMLIST terminator row's state byte, 0xFF, not the
	// next value after RequestedPurge (spec §3.1, §6.1).
	EndOfList LoadState = 0xFF
)

// Resource is one addressable asset described by a MEMLIST record.
type Resource struct {
	ID           uint16
	Type         Type
	Rank         uint8
	BankID       uint8
	BankOffset   uint32
	PackedSize   uint16
	UnpackedSize uint16
	State        LoadState

	// Data is the arena slice backing this resource while State == Loaded.
	// It is invalidated (but not zeroed) on the next InvalidateAll/Reset.
	Data []byte
}

// compressed reports whether the resource's payload needs ByteKiller
// decompression before use.
func (r *Resource) compressed() bool {
	return r.PackedSize != r.UnpackedSize
}

// Manager owns the MEMLIST table, the bank files backing it, and the arena
// resources are allocated from. It is used only from the engine thread
// (spec §5): the audio thread only ever reads pointers established before
// the most recent load_part.
type Manager struct {
	dataDir   string
	resources []Resource
	arena     *arena.Arena
	perm      logger.Permission

	// Bound, per spec §4.2 load_part: the four buffers the rest of the
	// engine reads from after a successful part load.
	Bytecode           []byte
	Palettes           []byte
	CinematicSegment   []byte
	SubCinematicSegment []byte
}

// New creates a Manager rooted at dataDir (the directory holding
// MEMLIST.BIN and the BANK** files, spec §6.7's --data flag).
func New(dataDir string, perm logger.Permission) *Manager {
	if perm == nil {
		perm = logger.Allow
	}
	return &Manager{
		dataDir: dataDir,
		arena:   arena.New(arena.DefaultSize),
		perm:    perm,
	}
}

// LoadMemList parses MEMLIST.BIN from dataDir (spec §4.2, §6.1).
func (m *Manager) LoadMemList() error {
	f, err := os.Open(filepath.Join(m.dataDir, "MEMLIST.BIN"))
	if err != nil {
		return errs.Errorf(errs.CorruptAsset, err)
	}
	defer f.Close()

	resources, err := parseMemList(f)
	if err != nil {
		return errs.Errorf(errs.CorruptAsset, err)
	}
	m.resources = resources
	logger.Logf(m.perm, "resources", "loaded memlist: %d entries", len(resources))
	return nil
}

// RequestLoad marks id for loading on the next Update (spec §4.2).
func (m *Manager) RequestLoad(id uint16) error {
	r := m.find(id)
	if r == nil {
		return errs.Errorf(errs.MissingResource, id)
	}
	if r.State != Loaded {
		r.State = RequestedLoad
	}
	return nil
}

// InvalidateAll marks every Loaded entry RequestedPurge and resets the
// arena's high-water mark (spec §4.2).
func (m *Manager) InvalidateAll() {
	for i := range m.resources {
		if m.resources[i].State == Loaded {
			m.resources[i].State = RequestedPurge
		}
	}
	m.arena.Reset()
}

// find returns a pointer to the entry with the given id, or nil.
func (m *Manager) find(id uint16) *Resource {
	for i := range m.resources {
		if m.resources[i].ID == id {
			return &m.resources[i]
		}
	}
	return nil
}

// bankPath returns the filesystem path of the bank file holding bankID.
func (m *Manager) bankPath(bankID uint8) string {
	return filepath.Join(m.dataDir, fmt.Sprintf("BANK%02X", bankID))
}

// Update loads every RequestedLoad entry, in id order, per spec §4.2.
// Bitmap-shaped resources (those bound directly to page 0 rather than kept
// resident) are handled by the caller via the onBitmap hook: Update invokes
// it with the decompressed bytes and then resets the entry to NotNeeded
// instead of retaining it in the arena.
func (m *Manager) Update(onBitmap func(r *Resource, data []byte) error) error {
	for i := range m.resources {
		r := &m.resources[i]
		if r.State != RequestedLoad {
			continue
		}
		data, err := m.readPayload(r)
		if err != nil {
			return errs.Errorf(errs.CorruptAsset, err)
		}

		if r.Type == TypeBitmap && onBitmap != nil {
			if err := onBitmap(r, data); err != nil {
				return errs.Errorf(errs.CorruptAsset, err)
			}
			r.State = NotNeeded
			continue
		}

		dst, err := m.arena.Alloc(len(data))
		if err != nil {
			return errs.Errorf(errs.CorruptAsset, err)
		}
		copy(dst, data)
		r.Data = dst
		r.State = Loaded
		logger.Logf(m.perm, "resources", "loaded resource 0x%04x (%s, %d bytes)", r.ID, r.Type, len(dst))
	}
	return nil
}

// readPayload reads the raw bank bytes for r and decompresses them if
// needed.
func (m *Manager) readPayload(r *Resource) ([]byte, error) {
	f, err := os.Open(m.bankPath(r.BankID))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Seek(int64(r.BankOffset), io.SeekStart); err != nil {
		return nil, err
	}

	raw := make([]byte, r.PackedSize)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, err
	}

	if !r.compressed() {
		return raw, nil
	}
	return bytekiller.Decompress(raw, int(r.UnpackedSize))
}

// LoadPart performs the full part-change sequence of spec §4.2:
// invalidate_all, request the part's four resources, update, then bind the
// loaded buffers.
func (m *Manager) LoadPart(partID uint16) error {
	ids, ok := PartResources(partID)
	if !ok {
		return errs.Errorf(errs.MissingResource, partID)
	}

	m.InvalidateAll()
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if err := m.RequestLoad(id); err != nil {
			return err
		}
	}
	if err := m.Update(nil); err != nil {
		return err
	}

	m.Palettes = m.dataOf(ids[0])
	m.Bytecode = m.dataOf(ids[1])
	m.CinematicSegment = m.dataOf(ids[2])
	if ids[3] != 0 {
		m.SubCinematicSegment = m.dataOf(ids[3])
	} else {
		m.SubCinematicSegment = nil
	}

	logger.Logf(m.perm, "resources", "loaded part 0x%04x", partID)
	return nil
}

// Sample returns the raw bytes of a loaded sound resource, satisfying
// audio.SampleSource. A sample must already be resident (requested via
// LOAD and picked up by a prior Update) before SOUND/MUSIC can play it,
// matching the original engine's two-step load-then-play sequencing.
func (m *Manager) Sample(id uint16) ([]byte, bool) {
	r := m.find(id)
	if r == nil || r.State != Loaded || r.Type != TypeSound {
		return nil, false
	}
	return r.Data, true
}

// MusicData returns the raw bytes of a loaded music resource. A music
// resource must already be resident (requested via LOAD and picked up by
// a prior Update) before MUSIC can start it -- the same two-step
// sequencing as Sample.
func (m *Manager) MusicData(id uint16) ([]byte, bool) {
	r := m.find(id)
	if r == nil || r.State != Loaded || r.Type != TypeMusic {
		return nil, false
	}
	return r.Data, true
}

func (m *Manager) dataOf(id uint16) []byte {
	if r := m.find(id); r != nil {
		return r.Data
	}
	return nil
}

// DumpAll writes a human-readable summary of every resource entry to w.
// Supplemental debugging feature (not part of the original interpreter's
// runtime); neither the engine nor cmd/aw calls it.
func (m *Manager) DumpAll(w io.Writer) {
	fmt.Fprintf(w, "%-6s %-20s %-4s %-6s %-10s %-10s %-14s\n", "id", "type", "bank", "rank", "packed", "unpacked", "state")
	for _, r := range m.resources {
		fmt.Fprintf(w, "0x%04x %-20s 0x%02x %-6d %-10d %-10d %-14d\n",
			r.ID, r.Type, r.BankID, r.Rank, r.PackedSize, r.UnpackedSize, r.State)
	}
}
