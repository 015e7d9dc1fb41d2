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

package impl

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/blakesmith/ar"
	cpio "github.com/surma/gocpio"
)

//archiveEntry describes the current entry of an archive reader.
type archiveEntry struct {
	Description string
	IsRegular   bool
	IsSymlink   bool
}

//DumpTar dumps tar archives.
func DumpTar(data []byte) (string, error) {
	//use "archive/tar" package to read the tar archive
	tr := tar.NewReader(bytes.NewReader(data))
	var header *tar.Header

	return dumpArchiveGeneric(
		"POSIX tar archive", tr,
		func() (string, error) { //func gotoNextEntry
			var err error
			header, err = tr.Next()
			if err != nil {
				return "", err
			}
			return header.Name, nil
		},
		func(idx int) (archiveEntry, error) { //func describeEntry
			info := header.FileInfo()

			//recognize entry type
			var entry archiveEntry
			switch info.Mode() & os.ModeType {
			case os.ModeDir:
				entry.Description = "directory"
			case os.ModeSymlink:
				entry.Description = "symlink to " + header.Linkname
				return entry, nil
			case 0:
				entry.Description = "regular file"
				entry.IsRegular = true
			default:
				return entry, fmt.Errorf("tar entry %s has unrecognized file mode (%o)", header.Name, info.Mode())
			}

			//add metadata
			entry.Description += fmt.Sprintf(" (mode: %o, owner: %d, group: %d, mtime: %d)",
				info.Mode()&os.ModePerm, header.Uid, header.Gid, header.ModTime.Unix(),
			)
			return entry, nil
		},
	)
}

//DumpAr dumps ar archives.
func DumpAr(data []byte) (string, error) {
	//use "github.com/blakesmith/ar" package to read the ar archive
	rd := ar.NewReader(bytes.NewReader(data))
	var header *ar.Header

	return dumpArchiveGeneric(
		"ar archive", rd,
		func() (string, error) { //func gotoNextEntry
			var err error
			header, err = rd.Next()
			if err != nil {
				return "", err
			}
			return header.Name, nil
		},
		func(idx int) (archiveEntry, error) { //func describeEntry
			//the ar reader only understands plain files with short names, so
			//everything that it reads without failing is a regular file
			return archiveEntry{
				Description: fmt.Sprintf("regular file at archive position %d (mode: %o, owner: %d, group: %d, mtime: %d)",
					idx, header.Mode, header.Uid, header.Gid, header.ModTime.Unix(),
				),
				IsRegular: true,
			}, nil
		},
	)
}

//DumpCpio dumps cpio archives.
func DumpCpio(data []byte) (string, error) {
	//use "github.com/surma/gocpio" package to read the cpio archive
	cr := cpio.NewReader(bytes.NewReader(data))
	var header *cpio.Header

	return dumpArchiveGeneric(
		"cpio archive", cr,
		func() (string, error) { //func gotoNextEntry
			var err error
			header, err = cr.Next()
			if err != nil {
				return "", err
			}
			if header.IsTrailer() {
				return "", io.EOF
			}
			return header.Name, nil
		},
		func(idx int) (archiveEntry, error) { //func describeEntry
			var entry archiveEntry
			switch header.Type {
			case cpio.TYPE_SOCK:
				entry.Description = "socket"
			case cpio.TYPE_SYMLINK:
				entry.Description = "symlink"
				entry.IsSymlink = true
				return entry, nil
			case cpio.TYPE_REG:
				entry.Description = "regular file"
				entry.IsRegular = true
			case cpio.TYPE_BLK:
				entry.Description = "block special device"
			case cpio.TYPE_DIR:
				entry.Description = "directory"
			case cpio.TYPE_CHAR:
				entry.Description = "character special device"
			case cpio.TYPE_FIFO:
				entry.Description = "named pipe (FIFO)"
			default:
				return entry, fmt.Errorf("cpio entry %s has unrecognized type %o", header.Name, header.Type)
			}

			entry.Description += fmt.Sprintf(" (mode: %o, owner: %d, group: %d, mtime: %d)",
				header.Mode, header.Uid, header.Gid, header.Mtime,
			)
			return entry, nil
		},
	)
}

//The generic parts of DumpTar, DumpAr and DumpCpio.
func dumpArchiveGeneric(typeString string, reader io.Reader, gotoNextEntry func() (string, error), describeEntry func(idx int) (archiveEntry, error)) (string, error) {
	dumps := make(map[string]string)
	var names []string

	//iterate through the entries in the archive
	for idx := 0; ; idx++ {
		name, err := gotoNextEntry()
		if err == io.EOF {
			break //end of archive
		}
		if err != nil {
			return "", err
		}

		//get contents of entry
		data, err := io.ReadAll(reader)
		if err != nil {
			return "", err
		}

		entry, err := describeEntry(idx)
		if err != nil {
			return "", err
		}
		str := fmt.Sprintf(">> %s is %s", name, entry.Description)

		switch {
		case entry.IsRegular:
			dump, err := RecognizeAndDump(data)
			if err != nil {
				return "", err
			}
			str += ", content is " + dump
		case entry.IsSymlink:
			//`data` contains the symlink target
			str += " to " + string(data) + "\n"
		default:
			str += "\n"
		}

		//archives may contain the same name more than once
		if _, exists := dumps[name]; !exists {
			names = append(names, name)
		}
		dumps[name] += str
	}

	//dump entries ordered by name
	sort.Strings(names)
	var dump string
	for _, name := range names {
		dump += dumps[name]
	}
	if dump == "" {
		dump = "no entries\n"
	}

	return typeString + "\n" + Indent(dump), nil
}
