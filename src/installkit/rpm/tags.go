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

import "fmt"

//TagType is the data type of a header entry. [LSB,25.2.2.2.1]
type TagType uint32

//List of known values for IndexRecord.Type.
const (
	NullType        TagType = 0
	CharType        TagType = 1
	Int8Type        TagType = 2
	Int16Type       TagType = 3
	Int32Type       TagType = 4
	Int64Type       TagType = 5
	StringType      TagType = 6
	BinType         TagType = 7
	StringArrayType TagType = 8
	I18NStringType  TagType = 9
)

var tagTypeNames = map[TagType]string{
	NullType:        "NULL",
	CharType:        "CHAR",
	Int8Type:        "INT8",
	Int16Type:       "INT16",
	Int32Type:       "INT32",
	Int64Type:       "INT64",
	StringType:      "STRING",
	BinType:         "BIN",
	StringArrayType: "STRING_ARRAY",
	I18NStringType:  "I18NSTRING",
}

//String returns the name used for this type in [LSB], e.g. "STRING_ARRAY".
func (t TagType) String() string {
	if name, ok := tagTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TYPE(%d)", uint32(t))
}

//ParseTagType is the inverse of TagType.String.
func ParseTagType(name string) (TagType, error) {
	for t, n := range tagTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTagType, name)
}

//alignment is the boundary (relative to the start of the store) at which
//values of this type must be stored.
func (t TagType) alignment() int {
	switch t {
	case Int16Type:
		return 2
	case Int32Type:
		return 4
	case Int64Type:
		return 8
	default:
		return 1
	}
}

//List of known values for IndexRecord.Tag. [LSB, 25.2.2.2.2 ff.]
const (
	RpmtagHeaderSignatures  = 62   //type: BIN
	RpmtagHeaderImmutable   = 63   //type: BIN
	RpmtagHeaderI18NTable   = 100  //type: STRING_ARRAY
	RpmsigtagSize           = 1000 //type: INT32
	RpmsigtagPayloadSize    = 1007 //type: INT32
	RpmsigtagSHA1           = 269  //type: STRING
	RpmsigtagMD5            = 1004 //type: BIN
	RpmtagName              = 1000 //type: STRING
	RpmtagVersion           = 1001 //type: STRING
	RpmtagRelease           = 1002 //type: STRING
	RpmtagEpoch             = 1003 //type: INT32
	RpmtagSummary           = 1004 //type: I18NSTRING
	RpmtagDescription       = 1005 //type: I18NSTRING
	RpmtagBuildTime         = 1006 //type: INT32
	RpmtagSize              = 1009 //type: INT32
	RpmtagLicense           = 1014 //type: STRING
	RpmtagGroup             = 1016 //type: I18NSTRING
	RpmtagOs                = 1021 //type: STRING
	RpmtagArch              = 1022 //type: STRING
	RpmtagArchiveSize       = 1046 //type: INT32
	RpmtagRequireName       = 1049 //type: STRING_ARRAY
	RpmtagRequireFlags      = 1048 //type: INT32
	RpmtagRequireVersion    = 1050 //type: STRING_ARRAY
	RpmtagPayloadFormat     = 1124 //type: STRING
	RpmtagPayloadCompressor = 1125 //type: STRING
	RpmtagPayloadFlags      = 1126 //type: STRING
)
