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

package packer

import (
	"fmt"
	"strings"
)

//Mode selects the archive format produced by CreateArchive.
type Mode int

const (
	//RawBzip2 compresses a single file with bzip2.
	RawBzip2 Mode = iota
	//TarBzip2 puts all files into a tar archive and compresses it with bzip2.
	TarBzip2
	//CpioBzip2 puts all files into a newc cpio archive (the format of RPM
	//payloads) and compresses it with bzip2.
	CpioBzip2
	//TarXZ puts all files into a tar archive and compresses it with xz.
	TarXZ
	//Ar puts all files into an uncompressed ar archive, under their basename.
	Ar
)

type modeInfo struct {
	name      string
	mimeType  string
	extension string
}

var modeInfos = map[Mode]modeInfo{
	RawBzip2:  {"raw-bzip2", "application/x-bzip2", ".bz2"},
	TarBzip2:  {"tar-bzip2", "application/x-bzip2", ".tar.bz2"},
	CpioBzip2: {"cpio-bzip2", "application/x-bzip2", ".cpio.bz2"},
	TarXZ:     {"tar-xz", "application/x-xz", ".tar.xz"},
	Ar:        {"ar", "application/x-archive", ".a"},
}

//Modes lists all supported modes.
var Modes = []Mode{RawBzip2, TarBzip2, CpioBzip2, TarXZ, Ar}

//ParseMode parses the names returned by Mode.String.
func ParseMode(name string) (Mode, error) {
	for mode, info := range modeInfos {
		if info.name == name {
			return mode, nil
		}
	}
	names := make([]string, 0, len(Modes))
	for _, mode := range Modes {
		names = append(names, mode.String())
	}
	return 0, fmt.Errorf("%w: %q (expected one of: %s)", ErrUnknownMode, name, strings.Join(names, ", "))
}

func (m Mode) info() (modeInfo, bool) {
	info, ok := modeInfos[m]
	return info, ok
}

//String returns a name like "tar-bzip2".
func (m Mode) String() string {
	if info, ok := m.info(); ok {
		return info.name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

//MimeType returns the MIME type of archives in this mode.
func (m Mode) MimeType() string {
	info, _ := m.info()
	return info.mimeType
}

//Extension returns the customary file name extension for archives in this
//mode, including the leading dot.
func (m Mode) Extension() string {
	info, _ := m.info()
	return info.extension
}

//SingleInput reports whether this mode accepts exactly one input file.
func (m Mode) SingleInput() bool {
	return m == RawBzip2
}
