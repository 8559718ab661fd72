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

package errs

// Pattern constants for the error taxonomy. Each is passed as the pattern
// argument to Errorf at the point the condition is raised, and tested with
// Is/Has at the point it is handled. Fatal kinds (CorruptAsset,
// InvalidInstruction) propagate to the engine and abort the process;
// recoverable kinds (MissingResource, RasterizerClamp, AudioUnderrun) are
// logged and confined to their subsystem; BackendError propagates to the
// engine which exits cleanly without treating it as a VM fault.
const (
	// CorruptAsset: decompression checksum mismatch, short read, malformed
	// MEMLIST. Fatal at load time. Takes a single value, either an error or a
	// plain string describing what was wrong with the asset.
	CorruptAsset = "corrupt asset: %v"

	// InvalidInstruction: out-of-range pc, unknown opcode, stack
	// under/overflow. Fatal, carries pc and opcode context.
	InvalidInstruction = "invalid instruction at pc=0x%04x opcode=0x%02x"

	// MissingResource: LOAD of an unknown resource id. Logged, opcode
	// becomes a no-op.
	MissingResource = "missing resource 0x%04x"

	// RasterizerClamp: a polygon hierarchy nested deeper than the
	// rasterizer's depth bound. Logged by the VM, which carries on; the
	// branch past the bound is not drawn. (A flat polygon over the
	// 50-vertex limit is clamped and logged by the rasterizer directly,
	// without raising this error.) Takes a single string value.
	RasterizerClamp = "rasterizer clamp: %v"

	// AudioUnderrun: callback unable to fill the output buffer. Silence is
	// written, no state mutation.
	AudioUnderrun = "audio underrun: needed %d frames, produced %d"

	// BackendError: present/sleep/poll failure from the platform backend.
	BackendError = "backend error: %v"
)
