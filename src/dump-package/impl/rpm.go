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
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/holocm/installkit/src/installkit/rpm"
)

//DumpRpm dumps RPM packages.
func DumpRpm(data []byte) (string, error) {
	pkg, err := rpm.DecodePackage(data)
	if err != nil {
		return "", err
	}

	leadDump := dumpRpmLead(pkg.Lead)
	signatureDump, err := dumpRpmHeader(pkg.Signature, "signature", rpmtagDictForSignatureHeader)
	if err != nil {
		return "", err
	}
	headerDump, err := dumpRpmHeader(pkg.Header, "header", rpmtagDictForMetadataHeader)
	if err != nil {
		return "", err
	}
	payloadDump, err := RecognizeAndDump(pkg.Payload)
	if err != nil {
		return "", err
	}

	return "RPM package\n" + Indent(leadDump) + Indent(signatureDump) + Indent(headerDump) + Indent(">> payload: "+payloadDump), nil
}

//DumpRpmHeader dumps a header structure that is not embedded in a package.
func DumpRpmHeader(data []byte) (string, error) {
	hdr, n, err := rpm.Decode(data)
	if err != nil {
		return "", err
	}
	dump, err := dumpRpmHeader(hdr, "header", rpmtagDictForMetadataHeader)
	if err != nil {
		return "", err
	}
	if n < len(data) {
		dump += fmt.Sprintf(">> %d trailing bytes\n", len(data)-n)
	}
	return "RPM header structure\n" + Indent(dump), nil
}

func dumpRpmLead(lead *rpm.Lead) string {
	lines := []string{
		fmt.Sprintf("RPM format version %d.%d", lead.Version[0], lead.Version[1]),
		fmt.Sprintf("Type: %d (0 = binary, 1 = source)", lead.Type),
		fmt.Sprintf("Architecture: %d (0 = noarch, 1 = x86, ...)", lead.Architecture),
		fmt.Sprintf("Name: %s", lead.NameVersionReleaseString()),
		fmt.Sprintf("Built for OS: %d (1 = Linux, ...)", lead.OperatingSystem),
		fmt.Sprintf("Signature type: %d", lead.SignatureType),
	}
	return ">> lead section:\n" + Indent(strings.Join(lines, "\n"))
}

func dumpRpmHeader(hdr *rpm.Header, sectionIdent string, tagDict map[uint32]string) (string, error) {
	identifier := fmt.Sprintf(">> %s section: %d entries, %d bytes of data\n",
		sectionIdent, len(hdr.Records), len(hdr.Data),
	)

	lines := make([]string, 0, len(hdr.Records))
	for _, record := range hdr.Records {
		value, err := hdr.Value(record)
		if err != nil {
			return "", err
		}

		//identify entry by looking up the tag name
		tagName, isKnownTag := tagDict[record.Tag]
		if isKnownTag {
			tagName = fmt.Sprintf("tag %d (%s)", record.Tag, tagName)
		} else {
			tagName = fmt.Sprintf("tag %d", record.Tag)
		}

		line := fmt.Sprintf("%s: %s, length %d\n", tagName, record.Type, record.Count)
		lines = append(lines, line+strings.TrimSuffix(Indent(formatValue(record.Type, value)), "\n"))
	}

	return identifier + Indent(strings.Join(lines, "\n")), nil
}

//formatValue renders a value as returned by rpm.Header.Value, one element
//per line.
func formatValue(t rpm.TagType, value interface{}) string {
	var sublines []string
	switch v := value.(type) {
	case nil:
		return "null"
	case []byte:
		if t == rpm.BinType {
			return strings.TrimSuffix(hex.Dump(v), "\n")
		}
		for _, c := range v {
			sublines = append(sublines, fmt.Sprintf("char: %c", rune(c)))
		}
	case []int8:
		for _, n := range v {
			sublines = append(sublines, fmt.Sprintf("int8: %d", n))
		}
	case []int16:
		for _, n := range v {
			sublines = append(sublines, fmt.Sprintf("int16: %d", n))
		}
	case []int32:
		for _, n := range v {
			sublines = append(sublines, fmt.Sprintf("int32: %d", n))
		}
	case []int64:
		for _, n := range v {
			sublines = append(sublines, fmt.Sprintf("int64: %d", n))
		}
	case string:
		if t == rpm.I18NStringType {
			return "translatable string: " + v
		}
		return "string: " + v
	case []string:
		for _, s := range v {
			sublines = append(sublines, "string: "+s)
		}
	default:
		return fmt.Sprintf("don't know how to format %T", value)
	}
	return strings.Join(sublines, "\n")
}

////////////////////////////////////////////////////////////////////////////////
// mappings of tag ID -> tag name (as extracted from /usr/include/rpm/rpmtag.h)

var rpmtagDictForSignatureHeader = map[uint32]string{
	62:   "HEADERSIGNATURES",
	267:  "DSA",
	268:  "RSA",
	269:  "SHA1",
	270:  "LONGSIZE",
	271:  "LONGARCHIVESIZE",
	273:  "SHA256",
	1000: "SIZE",
	1002: "PGP",
	1004: "MD5",
	1005: "GPG",
	1007: "PAYLOADSIZE",
	1008: "RESERVEDSPACE",
}

var rpmtagDictForMetadataHeader = map[uint32]string{
	63:   "HEADERIMMUTABLE",
	100:  "HEADERI18NTABLE",
	1000: "NAME",
	1001: "VERSION",
	1002: "RELEASE",
	1003: "EPOCH",
	1004: "SUMMARY",
	1005: "DESCRIPTION",
	1006: "BUILDTIME",
	1007: "BUILDHOST",
	1009: "SIZE",
	1010: "DISTRIBUTION",
	1011: "VENDOR",
	1014: "LICENSE",
	1015: "PACKAGER",
	1016: "GROUP",
	1020: "URL",
	1021: "OS",
	1022: "ARCH",
	1023: "PREIN",
	1024: "POSTIN",
	1025: "PREUN",
	1026: "POSTUN",
	1028: "FILESIZES",
	1030: "FILEMODES",
	1033: "FILERDEVS",
	1034: "FILEMTIMES",
	1035: "FILEDIGESTS",
	1036: "FILELINKTOS",
	1037: "FILEFLAGS",
	1039: "FILEUSERNAME",
	1040: "FILEGROUPNAME",
	1044: "SOURCERPM",
	1046: "ARCHIVESIZE",
	1047: "PROVIDENAME",
	1048: "REQUIREFLAGS",
	1049: "REQUIRENAME",
	1050: "REQUIREVERSION",
	1053: "CONFLICTFLAGS",
	1054: "CONFLICTNAME",
	1055: "CONFLICTVERSION",
	1064: "RPMVERSION",
	1085: "PREINPROG",
	1086: "POSTINPROG",
	1087: "PREUNPROG",
	1088: "POSTUNPROG",
	1090: "OBSOLETENAME",
	1095: "FILEDEVICES",
	1096: "FILEINODES",
	1097: "FILELANGS",
	1112: "PROVIDEFLAGS",
	1113: "PROVIDEVERSION",
	1114: "OBSOLETEFLAGS",
	1115: "OBSOLETEVERSION",
	1116: "DIRINDEXES",
	1117: "BASENAMES",
	1118: "DIRNAMES",
	1124: "PAYLOADFORMAT",
	1125: "PAYLOADCOMPRESSOR",
	1126: "PAYLOADFLAGS",
	1151: "PRETRANS",
	1152: "POSTTRANS",
	5011: "FILEDIGESTALGO",
}
