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

//Package impl contains the decoders behind dump-package. Each decoder
//renders one layer of the input and hands the contents of that layer back to
//RecognizeAndDump, so that nested formats (e.g. an RPM whose payload is a
//bzip2-compressed cpio archive) are unpacked recursively.
package impl

import (
	"bytes"
	"compress/bzip2"
	"encoding/hex"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ulikunitz/xz"
)

//Indent is a general-purpose helper function for pretty-printing of nested data.
func Indent(dump string) string {
	//indent the first line and all subsequent lines except for the trailing newline
	//(and also ensure a trailing newline, which means that in total we can
	//trim the trailing newline at the start, and put it back at the end)
	dump = strings.TrimSuffix(dump, "\n")
	indent := "    "
	dump = indent + strings.Replace(dump, "\n", "\n"+indent, -1)
	return dump + "\n"
}

//RecognizeAndDump converts binary input data into a readable dump (if it can
//recognize the data format).
func RecognizeAndDump(data []byte) (string, error) {
	if len(data) == 0 {
		return "empty file\n", nil
	}

	//is it BZip2-compressed?
	if bytes.HasPrefix(data, []byte("BZh")) {
		return dumpBZ2(data)
	}
	//is it XZ-compressed?
	if bytes.HasPrefix(data, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}) {
		return dumpXZ(data)
	}
	//is it a POSIX tar archive?
	if len(data) >= 512 && bytes.Equal(data[257:262], []byte("ustar")) {
		return DumpTar(data)
	}
	//is it an ar archive?
	if bytes.HasPrefix(data, []byte("!<arch>\n")) {
		return DumpAr(data)
	}
	//is it a cpio archive?
	if bytes.HasPrefix(data, []byte("070701")) {
		return DumpCpio(data)
	}
	//is it an RPM package?
	if bytes.HasPrefix(data, []byte{0xed, 0xab, 0xee, 0xdb}) {
		return DumpRpm(data)
	}
	//is it a bare RPM header structure?
	if bytes.HasPrefix(data, []byte{0x8e, 0xad, 0xe8, 0x01}) {
		return DumpRpmHeader(data)
	}

	if isText(data) {
		return "data as shown below\n" + Indent(string(data)), nil
	}
	return "binary data as shown below\n" + Indent(hex.Dump(data)), nil
}

func isText(data []byte) bool {
	return utf8.Valid(data) && bytes.IndexByte(data, 0x00) < 0
}

func dumpBZ2(data []byte) (string, error) {
	//use "compress/bzip2" package to decompress the data
	return dumpDecompressed("BZip2", bzip2.NewReader(bytes.NewReader(data)))
}

func dumpXZ(data []byte) (string, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return dumpDecompressed("XZ", r)
}

func dumpDecompressed(format string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	dump, err := RecognizeAndDump(data)
	return format + "-compressed " + dump, err
}
