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

//Package rpm writes (and reads back) the header structures of the RPM
//package format.
//
//Documentation for the RPM file format:
//
//  [LSB] http://refspecs.linux-foundation.org/LSB_5.0.0/LSB-Core-generic/LSB-Core-generic/pkgformat.html
//  [RPM] http://www.rpm.org/max-rpm/s1-rpm-file-format-rpm-file-format.html
package rpm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	//ErrUnknownTagType is returned when an entry's value does not have the
	//shape required by its declared type, or when the type is unknown.
	ErrUnknownTagType = errors.New("value does not match tag type")
	//ErrOversizedEntry is returned when an entry (or the whole store) does not
	//fit into the 32-bit fields of the index.
	ErrOversizedEntry = errors.New("entry too large for RPM header")
)

//Header represents an RPM header structure (as used in the signature section
//and header section), as defined in [LSB, 25.2.2]. The zero value is an empty
//header.
type Header struct {
	Records      []IndexRecord
	Data         []byte
	hasI18NTable bool
}

//IndexRecord represents an index record in a RPM header structure, i.e.
//a single key-value entry. The actual value is stored in the associated
//Header.Data field. Defined in [LSB, 25.2.2.2].
type IndexRecord struct {
	Tag    uint32
	Type   TagType
	Offset uint32
	Count  uint32
}

//Entry is a tag with a value that has not been encoded yet. See Header.Add
//for which Go types are accepted as Value for each TagType.
type Entry struct {
	Tag   uint32
	Type  TagType
	Value interface{}
}

//Binary representation of the header record. [LSB,25.2.2.1]
type headerRecord struct {
	Magic            [3]byte
	Version          uint8
	Reserved         [4]byte
	IndexRecordCount uint32
	DataSize         uint32
}

var headerMagic = [3]byte{0x8E, 0xAD, 0xE8}

const (
	headerVersion    = 1
	headerRecordSize = 16
	indexRecordSize  = 16
)

//Encode serializes the given entries into a header structure, in the given
//order.
func Encode(entries []Entry) ([]byte, error) {
	var hdr Header
	for _, e := range entries {
		err := hdr.Add(e)
		if err != nil {
			return nil, err
		}
	}
	return hdr.ToBinary(), nil
}

//Add appends an entry to this header. The accepted values are:
//
//    NullType               nil
//    CharType               byte, []byte
//    Int8Type               int8, []int8, uint8, []uint8
//    Int16Type              int16, []int16, uint16, []uint16
//    Int32Type              int32, []int32, uint32, []uint32
//    Int64Type              int64, []int64, uint64, []uint64
//    StringType, I18NString string (without NUL bytes)
//    StringArrayType        []string (without NUL bytes)
//    BinType                []byte
//
//There is no implicit conversion between these; e.g. an int32 for a
//StringType entry fails with ErrUnknownTagType.
func (hdr *Header) Add(e Entry) error {
	payload, count, err := encodeValue(e.Type, e.Value)
	if err != nil {
		return fmt.Errorf("tag %d: %w", e.Tag, err)
	}

	//integers are stored at their natural boundary, relative to the start of
	//the store (not of the file!)
	offset := alignedLength(len(hdr.Data), e.Type.alignment())
	err = checkEntrySize(offset, len(payload), count)
	if err != nil {
		return fmt.Errorf("tag %d: %w", e.Tag, err)
	}
	for len(hdr.Data) < offset {
		hdr.Data = append(hdr.Data, 0x00)
	}

	hdr.Records = append(hdr.Records, IndexRecord{
		Tag:    e.Tag,
		Type:   e.Type,
		Offset: uint32(offset),
		Count:  uint32(count),
	})
	hdr.Data = append(hdr.Data, payload...)
	return nil
}

func checkEntrySize(offset, length, count int) error {
	if uint64(count) > math.MaxUint32 {
		return fmt.Errorf("%w: %d elements", ErrOversizedEntry, count)
	}
	if uint64(offset)+uint64(length) > math.MaxUint32 {
		return fmt.Errorf("%w: store would grow to %d bytes", ErrOversizedEntry, uint64(offset)+uint64(length))
	}
	return nil
}

func alignedLength(length, alignment int) int {
	if alignment <= 1 {
		return length
	}
	if rem := length % alignment; rem != 0 {
		return length + alignment - rem
	}
	return length
}

func encodeValue(t TagType, value interface{}) (payload []byte, count int, err error) {
	var buf bytes.Buffer
	writeInts := func(data interface{}, n int) ([]byte, int, error) {
		//cannot fail: buf is a bytes.Buffer and data is a fixed-size value
		binary.Write(&buf, binary.BigEndian, data)
		return buf.Bytes(), n, nil
	}
	mismatch := func() ([]byte, int, error) {
		return nil, 0, fmt.Errorf("%w: %s value cannot be %T", ErrUnknownTagType, t, value)
	}

	switch t {
	case NullType:
		if value != nil {
			return mismatch()
		}
		return nil, 1, nil

	case CharType:
		switch v := value.(type) {
		case byte:
			return []byte{v}, 1, nil
		case []byte:
			return append([]byte(nil), v...), len(v), nil
		}
		return mismatch()

	case Int8Type:
		switch v := value.(type) {
		case int8:
			return writeInts(v, 1)
		case []int8:
			return writeInts(v, len(v))
		case uint8:
			return []byte{v}, 1, nil
		case []uint8:
			return append([]byte(nil), v...), len(v), nil
		}
		return mismatch()

	case Int16Type:
		switch v := value.(type) {
		case int16:
			return writeInts(v, 1)
		case []int16:
			return writeInts(v, len(v))
		case uint16:
			return writeInts(v, 1)
		case []uint16:
			return writeInts(v, len(v))
		}
		return mismatch()

	case Int32Type:
		switch v := value.(type) {
		case int32:
			return writeInts(v, 1)
		case []int32:
			return writeInts(v, len(v))
		case uint32:
			return writeInts(v, 1)
		case []uint32:
			return writeInts(v, len(v))
		}
		return mismatch()

	case Int64Type:
		switch v := value.(type) {
		case int64:
			return writeInts(v, 1)
		case []int64:
			return writeInts(v, len(v))
		case uint64:
			return writeInts(v, 1)
		case []uint64:
			return writeInts(v, len(v))
		}
		return mismatch()

	case StringType, I18NStringType:
		str, ok := value.(string)
		if !ok {
			return mismatch()
		}
		if strings.IndexByte(str, 0) >= 0 {
			return nil, 0, fmt.Errorf("%w: %s value may not contain NUL bytes", ErrUnknownTagType, t)
		}
		return append([]byte(str), 0x00), 1, nil

	case StringArrayType:
		strs, ok := value.([]string)
		if !ok {
			return mismatch()
		}
		for _, str := range strs {
			if strings.IndexByte(str, 0) >= 0 {
				return nil, 0, fmt.Errorf("%w: %s value may not contain NUL bytes", ErrUnknownTagType, t)
			}
			buf.WriteString(str)
			buf.WriteByte(0x00)
		}
		return buf.Bytes(), len(strs), nil

	case BinType:
		data, ok := value.([]byte)
		if !ok {
			return mismatch()
		}
		return append([]byte(nil), data...), len(data), nil
	}

	return nil, 0, fmt.Errorf("%w: type %d", ErrUnknownTagType, uint32(t))
}

//ToBinary serializes this header as described in [LSB, 25.2.2]: the header
//record, then the index records, then the store.
func (hdr *Header) ToBinary() []byte {
	var buf bytes.Buffer
	buf.Grow(headerRecordSize + indexRecordSize*len(hdr.Records) + len(hdr.Data))

	binary.Write(&buf, binary.BigEndian, &headerRecord{
		Magic:            headerMagic,
		Version:          headerVersion,
		IndexRecordCount: uint32(len(hdr.Records)),
		DataSize:         uint32(len(hdr.Data)),
	})
	for _, ir := range hdr.Records {
		binary.Write(&buf, binary.BigEndian, &ir)
	}
	buf.Write(hdr.Data)

	return buf.Bytes()
}

//ToBinaryWithRegion is like ToBinary, but marks all entries as one region
//with the given tag (RpmtagHeaderImmutable for the header section,
//RpmtagHeaderSignatures for the signature section).
//
//A "region" is defined nowhere in [LSB] or [RPM], but rpm-org validates it.
//The index record for the region tag is at the *start* of the index record
//array, and its data is located at the *end* of the data area. The data is
//another index record that (using a negative offset into the data area)
//points back at the original index record.
func (hdr *Header) ToBinaryWithRegion(regionTag uint32) []byte {
	actualDataSize := uint32(len(hdr.Data))
	actualRecordCount := uint32(len(hdr.Records))

	sealed := Header{
		Records: make([]IndexRecord, 0, len(hdr.Records)+1),
		Data:    make([]byte, 0, len(hdr.Data)+indexRecordSize),
	}
	sealed.Records = append(sealed.Records, IndexRecord{
		Tag:    regionTag,
		Type:   BinType,
		Offset: actualDataSize,
		Count:  indexRecordSize,
	})
	sealed.Records = append(sealed.Records, hdr.Records...)

	var trailer bytes.Buffer
	binary.Write(&trailer, binary.BigEndian, &IndexRecord{
		Tag:    regionTag,
		Type:   BinType,
		Offset: -(actualRecordCount + 1) * indexRecordSize,
		Count:  indexRecordSize,
	})
	sealed.Data = append(append(sealed.Data, hdr.Data...), trailer.Bytes()...)

	return sealed.ToBinary()
}

//AddBinaryValue adds a value of type BinType to this header.
func (hdr *Header) AddBinaryValue(tag uint32, data []byte) error {
	return hdr.Add(Entry{Tag: tag, Type: BinType, Value: data})
}

//AddInt16Value adds a value of type Int16Type to this header.
func (hdr *Header) AddInt16Value(tag uint32, data []int16) error {
	//see AddStringArrayValue() for rationale
	if len(data) == 0 {
		return nil
	}
	return hdr.Add(Entry{Tag: tag, Type: Int16Type, Value: data})
}

//AddInt32Value adds a value of type Int32Type to this header.
func (hdr *Header) AddInt32Value(tag uint32, data []int32) error {
	//see AddStringArrayValue() for rationale
	if len(data) == 0 {
		return nil
	}
	return hdr.Add(Entry{Tag: tag, Type: Int32Type, Value: data})
}

//AddStringValue adds a value of type StringType or I18NStringType to this
//header.
func (hdr *Header) AddStringValue(tag uint32, data string, i18n bool) error {
	recordType := StringType
	if i18n {
		recordType = I18NStringType
		//I18N strings require an I18N table listing the available locales;
		//initialize that if needed
		if !hdr.hasI18NTable {
			err := hdr.AddStringArrayValue(RpmtagHeaderI18NTable, []string{"C"})
			if err != nil {
				return err
			}
			hdr.hasI18NTable = true
		}
	}
	return hdr.Add(Entry{Tag: tag, Type: recordType, Value: data})
}

//AddStringArrayValue adds a value of type StringArrayType to this header.
func (hdr *Header) AddStringArrayValue(tag uint32, data []string) error {
	//skip the tag entirely if it does not contain any data (even if the tag
	//may be listed as "required"); rpm rejects array tags with count 0 in
	//package headers
	if len(data) == 0 {
		return nil
	}
	return hdr.Add(Entry{Tag: tag, Type: StringArrayType, Value: data})
}
