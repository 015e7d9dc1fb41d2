/*******************************************************************************
*
* Copyright 2016 Stefan Majewsky <majewsky@gmx.net>
*
* This file is part of Holo.
*
* Holo is free software: you can redistribute it and/or modify it under the
* terms of the GNU General Public License as published by the Free Software
* Foundation, either version 3 of the License, or (at your option) any later
* version.
*
* Holo is distributed in the hope that it will be useful, but WITHOUT ANY
* WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR
* A PARTICULAR PURPOSE. See the GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License along with
* Holo. If not, see <http://www.gnu.org/licenses/>.
*
*******************************************************************************/

package rpm

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/holocm/installkit/src/installkit/rpmver"
)

//Lead represents the RPM lead (the first header of an RPM file, before the
//actual header sections).
type Lead struct {
	Magic              [4]byte
	Version            [2]byte
	Type               uint16
	Architecture       uint16
	NameVersionRelease [66]byte
	OperatingSystem    uint16
	SignatureType      uint16
	Reserved           [16]byte
}

const leadSize = 96

var leadMagic = [4]byte{0xed, 0xab, 0xee, 0xdb}

//Source for this data: `grep arch_canon /usr/lib/rpm/rpmrc`
var archIDMap = map[string]uint16{
	"noarch":  0,
	"i686":    1,
	"x86_64":  1,
	"armv5tl": 12,
	"armv6hl": 12,
	"armv7hl": 12,
	"aarch64": 12,
}

//NewLead creates a lead for a binary package with the given name, version
//and architecture (e.g. "noarch" or "x86_64"). The epoch is not part of the
//lead.
func NewLead(name string, version rpmver.Version, arch string) (*Lead, error) {
	archID, ok := archIDMap[arch]
	if !ok {
		return nil, fmt.Errorf("unknown architecture %q", arch)
	}

	lead := &Lead{
		Magic:        leadMagic,
		Version:      [2]byte{0x03, 0x00},
		Type:         0, //binary package
		Architecture: archID,
		//NameVersionRelease initialized below
		OperatingSystem: 1, //Linux
		SignatureType:   5, //signature section follows
	}

	//initialize name-version-release string, but respect limited field size
	//(the last byte stays NUL, since it must be a NUL-terminated string)
	version.Epoch = ""
	copy(lead.NameVersionRelease[:65], name+"-"+version.String())

	return lead, nil
}

//NameVersionReleaseString returns the NUL-terminated name field as a string.
func (l *Lead) NameVersionReleaseString() string {
	field := l.NameVersionRelease[:]
	if idx := bytes.IndexByte(field, 0); idx >= 0 {
		field = field[:idx]
	}
	return string(field)
}

//ToBinary returns the binary encoding for this lead.
func (l *Lead) ToBinary() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, l)
	return buf.Bytes()
}

//DecodeLead reads a lead from the start of the given data.
func DecodeLead(data []byte) (*Lead, error) {
	if len(data) < leadSize {
		return nil, fmt.Errorf("%w: truncated lead", ErrMalformedHeader)
	}
	var lead Lead
	err := binary.Read(bytes.NewReader(data[:leadSize]), binary.BigEndian, &lead)
	if err != nil {
		return nil, err
	}
	if lead.Magic != leadMagic {
		return nil, fmt.Errorf("%w: not an RPM lead", ErrMalformedHeader)
	}
	return &lead, nil
}
