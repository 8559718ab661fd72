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

package audio

import (
	"fmt"

	"github.com/anotherworld-vm/engine/errs"
)

func errChannelRange(idx uint8) error {
	return errs.Errorf(errs.CorruptAsset, fmt.Sprintf("channel index %d out of range 0..%d", idx, NumChannels-1))
}

func errMissingSample(id uint16) error {
	return errs.Errorf(errs.MissingResource, id)
}

func errShortSample(id uint16, n int) error {
	return errs.Errorf(errs.CorruptAsset, fmt.Sprintf("sample resource 0x%04x too short for header: %d bytes", id, n))
}
