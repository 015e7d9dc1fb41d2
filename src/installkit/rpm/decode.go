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
	"errors"
	"fmt"
)

//ErrMalformedHeader is returned by Decode when the input is not a valid
//header structure.
var ErrMalformedHeader = errors.New("malformed RPM header")

//Decode parses a header structure from the start of the given data. It
//returns the header and the number of bytes that it occupied, so that the
//caller can continue reading whatever follows it.
func Decode(data []byte) (*Header, int, error) {
	var rec headerRecord
	err := binary.Read(bytes.NewReader(data), binary.BigEndian, &rec)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: truncated header record", ErrMalformedHeader)
	}
	if rec.Magic != headerMagic {
		return nil, 0, fmt.Errorf("%w: saw magic 0x%x instead of 0x8eade8", ErrMalformedHeader, rec.Magic[:])
	}
	if rec.Version != headerVersion {
		return nil, 0, fmt.Errorf("%w: unsupported version %d", ErrMalformedHeader, rec.Version)
	}

	totalSize := uint64(headerRecordSize) + uint64(rec.IndexRecordCount)*indexRecordSize + uint64(rec.DataSize)
	if totalSize > uint64(len(data)) {
		return nil, 0, fmt.Errorf("%w: header declares %d bytes, but only %d are present",
			ErrMalformedHeader, totalSize, len(data))
	}

	hdr := &Header{Records: make([]IndexRecord, rec.IndexRecordCount)}
	indexStart := headerRecordSize
	indexEnd := indexStart + int(rec.IndexRecordCount)*indexRecordSize
	err = binary.Read(bytes.NewReader(data[indexStart:indexEnd]), binary.BigEndian, hdr.Records)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrMalformedHeader, err.Error())
	}
	hdr.Data = append([]byte(nil), data[indexEnd:int(totalSize)]...)

	for _, ir := range hdr.Records {
		if ir.Tag == RpmtagHeaderI18NTable && ir.Type == StringArrayType {
			hdr.hasI18NTable = true
		}
		_, err := hdr.rawValue(ir)
		if err != nil {
			return nil, 0, err
		}
	}

	return hdr, int(totalSize), nil
}

//rawValue returns the slice of the store that holds the value of the given
//record.
func (hdr *Header) rawValue(ir IndexRecord) ([]byte, error) {
	if uint64(ir.Offset) > uint64(len(hdr.Data)) {
		return nil, fmt.Errorf("%w: tag %d points outside the store (offset %d)", ErrMalformedHeader, ir.Tag, ir.Offset)
	}
	store := hdr.Data[ir.Offset:]

	var size uint64
	switch ir.Type {
	case NullType:
		size = 0
	case CharType, Int8Type, BinType:
		size = uint64(ir.Count)
	case Int16Type:
		size = uint64(ir.Count) * 2
	case Int32Type:
		size = uint64(ir.Count) * 4
	case Int64Type:
		size = uint64(ir.Count) * 8
	case StringType, I18NStringType, StringArrayType:
		for idx := uint32(0); idx < ir.Count; idx++ {
			end := bytes.IndexByte(store[size:], 0x00)
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated string in tag %d", ErrMalformedHeader, ir.Tag)
			}
			size += uint64(end) + 1
		}
	default:
		return nil, fmt.Errorf("%w: tag %d has unknown type %d", ErrMalformedHeader, ir.Tag, uint32(ir.Type))
	}

	if size > uint64(len(store)) {
		return nil, fmt.Errorf("%w: value of tag %d extends beyond the store", ErrMalformedHeader, ir.Tag)
	}
	return store[:size], nil
}

//Value decodes the value of the given record. Values are always returned in
//their slice form, i.e. nil for NullType, []byte for CharType and BinType,
//[]int8/[]int16/[]int32/[]int64 for the integer types, string for StringType
//and I18NStringType, and []string for StringArrayType.
func (hdr *Header) Value(ir IndexRecord) (interface{}, error) {
	raw, err := hdr.rawValue(ir)
	if err != nil {
		return nil, err
	}
	reader := bytes.NewReader(raw)

	switch ir.Type {
	case NullType:
		return nil, nil
	case CharType, BinType:
		return append([]byte(nil), raw...), nil
	case Int8Type:
		values := make([]int8, ir.Count)
		err = binary.Read(reader, binary.BigEndian, values)
		return values, err
	case Int16Type:
		values := make([]int16, ir.Count)
		err = binary.Read(reader, binary.BigEndian, values)
		return values, err
	case Int32Type:
		values := make([]int32, ir.Count)
		err = binary.Read(reader, binary.BigEndian, values)
		return values, err
	case Int64Type:
		values := make([]int64, ir.Count)
		err = binary.Read(reader, binary.BigEndian, values)
		return values, err
	case StringType, I18NStringType:
		return string(bytes.TrimSuffix(raw, []byte{0})), nil
	default: //StringArrayType (rawValue has rejected everything else)
		values := make([]string, 0, ir.Count)
		for _, str := range bytes.SplitAfter(raw, []byte{0}) {
			if len(str) > 0 {
				values = append(values, string(bytes.TrimSuffix(str, []byte{0})))
			}
		}
		return values, nil
	}
}

//Entries decodes all records of this header, in index order.
func (hdr *Header) Entries() ([]Entry, error) {
	entries := make([]Entry, 0, len(hdr.Records))
	for _, ir := range hdr.Records {
		value, err := hdr.Value(ir)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Tag: ir.Tag, Type: ir.Type, Value: value})
	}
	return entries, nil
}
