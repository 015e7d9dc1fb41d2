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
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hexOf(data []byte) string {
	return fmt.Sprintf("%x", data)
}

func TestEncodeLayout(t *testing.T) {
	t.Parallel()

	blob, err := Encode([]Entry{
		{Tag: 100, Type: StringType, Value: "linux"},
		{Tag: RpmtagName, Type: StringType, Value: "pkg"},
		{Tag: RpmtagEpoch, Type: Int32Type, Value: int32(0)},
	})
	require.NoError(t, err)

	assert.Equal(t, []byte{0x8E, 0xAD, 0xE8}, blob[0:3])
	assert.Equal(t, byte(1), blob[3])
	assert.Equal(t, []byte{0, 0, 0, 0}, blob[4:8])
	indexCount := binary.BigEndian.Uint32(blob[8:12])
	storeLen := binary.BigEndian.Uint32(blob[12:16])
	assert.Equal(t, uint32(3), indexCount)
	assert.Equal(t, len(blob), 16+16*int(indexCount)+int(storeLen))

	//third index record is the INT32
	record := blob[16+2*16 : 16+3*16]
	assert.Equal(t, uint32(RpmtagEpoch), binary.BigEndian.Uint32(record[0:4]))
	assert.Equal(t, uint32(Int32Type), binary.BigEndian.Uint32(record[4:8]))
	offset := binary.BigEndian.Uint32(record[8:12])
	assert.Equal(t, uint32(0), offset%4)
	assert.Equal(t, uint32(12), offset)
	assert.Equal(t, uint32(16), storeLen)
}

func TestEncodeHex(t *testing.T) {
	t.Parallel()

	blob, err := Encode([]Entry{
		//5 bytes string (4 symbols + NUL)
		{Tag: RpmtagName, Type: StringType, Value: "abcd"},
		//int32 value must be aligned on a 4-byte boundary
		{Tag: 1116, Type: Int32Type, Value: []int32{1, 2, 3}},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"8eade80100000000000000020000001"+
			"4000003e80000000600000000000000010000045c000000040000000800000003"+
			"6162636400000000000000010000000200000003",
		hexOf(blob),
	)
}

func TestPadding(t *testing.T) {
	t.Parallel()

	var hdr Header
	require.NoError(t, hdr.Add(Entry{Tag: 1, Type: Int8Type, Value: int8(5)}))
	require.NoError(t, hdr.Add(Entry{Tag: 2, Type: Int16Type, Value: int16(7)}))
	require.NoError(t, hdr.Add(Entry{Tag: 3, Type: Int64Type, Value: []uint64{1}}))
	require.NoError(t, hdr.Add(Entry{Tag: 4, Type: BinType, Value: []byte{}}))
	require.NoError(t, hdr.Add(Entry{Tag: 5, Type: StringType, Value: ""}))

	assert.Equal(t, uint32(0), hdr.Records[0].Offset)
	assert.Equal(t, uint32(2), hdr.Records[1].Offset)
	assert.Equal(t, uint32(8), hdr.Records[2].Offset)
	assert.Equal(t, uint32(16), hdr.Records[3].Offset)
	assert.Equal(t, uint32(0), hdr.Records[3].Count)
	assert.Equal(t, uint32(16), hdr.Records[4].Offset)
	assert.Equal(t, uint32(1), hdr.Records[4].Count)
	assert.Equal(t, "0500000700000000000000000000000100", hexOf(hdr.Data))
}

func TestEncodeCounts(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		entry    Entry
		count    uint32
		expected string
	}{
		{Entry{Type: NullType}, 1, ""},
		{Entry{Type: CharType, Value: []byte{0xde, 0xad, 0xbe, 0xaf}}, 4, "deadbeaf"},
		{Entry{Type: CharType, Value: byte('x')}, 1, "78"},
		{Entry{Type: BinType, Value: []byte("binTagValue")}, 11, "62696e54616756616c7565"},
		{Entry{Type: StringArrayType, Value: []string{"str-1", "str-2", "str-3"}}, 3, "7374722d31007374722d32007374722d3300"},
		{Entry{Type: StringType, Value: "stringTagValue"}, 1, "737472696e6754616756616c756500"},
		{Entry{Type: I18NStringType, Value: "hi"}, 1, "686900"},
		{Entry{Type: Int8Type, Value: []int8{1, 2, 100, -66}}, 4, "010264be"},
		{Entry{Type: Int8Type, Value: []uint8{1, 255}}, 2, "01ff"},
		{Entry{Type: Int16Type, Value: []int16{1, 2, 100, -66}}, 4, "000100020064ffbe"},
		{Entry{Type: Int32Type, Value: []int32{1, 2, 100, -66}}, 4, "000000010000000200000064ffffffbe"},
		{Entry{Type: Int32Type, Value: uint32(0xdeadbeef)}, 1, "deadbeef"},
		{Entry{Type: Int64Type, Value: []int64{1, -66}}, 2, "0000000000000001ffffffffffffffbe"},
	}

	for _, tc := range testCases {
		var hdr Header
		require.NoError(t, hdr.Add(tc.entry), tc.entry.Type.String())
		assert.Equal(t, tc.count, hdr.Records[0].Count, tc.entry.Type.String())
		assert.Equal(t, tc.expected, hexOf(hdr.Data), tc.entry.Type.String())
	}
}

func TestEncodeRejectsMismatches(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{Type: StringType, Value: int32(5)},
		{Type: StringType, Value: []byte("bytes")},
		{Type: StringType, Value: "nul\x00inside"},
		{Type: StringArrayType, Value: "not an array"},
		{Type: StringArrayType, Value: []string{"a", "b\x00"}},
		{Type: Int32Type, Value: "5"},
		{Type: Int32Type, Value: 5},
		{Type: Int32Type, Value: []int16{1}},
		{Type: Int64Type, Value: int32(1)},
		{Type: Int16Type, Value: int32(1)},
		{Type: Int8Type, Value: int16(1)},
		{Type: CharType, Value: "c"},
		{Type: BinType, Value: "bytes"},
		{Type: NullType, Value: []int16{1}},
		{Type: TagType(42), Value: nil},
	}

	for _, e := range entries {
		_, err := Encode([]Entry{{Tag: RpmtagName, Type: StringType, Value: "ok"}, e})
		assert.ErrorIs(t, err, ErrUnknownTagType, "%s with %#v", e.Type, e.Value)
	}
}

func TestOversizedEntry(t *testing.T) {
	t.Parallel()
	if strconv.IntSize < 64 {
		t.Skip("cannot represent oversized counts on this platform")
	}

	limit := uint64(math.MaxUint32)
	assert.ErrorIs(t, checkEntrySize(0, 0, int(limit+1)), ErrOversizedEntry)
	assert.ErrorIs(t, checkEntrySize(int(limit-3), 8, 2), ErrOversizedEntry)
	assert.NoError(t, checkEntrySize(int(limit-8), 8, 2))
	assert.NoError(t, checkEntrySize(0, 0, int(limit)))
}

//Expected values from the header tests of tarantool/tt, which were obtained
//from its earlier Lua implementation.
func TestToBinaryWithRegion(t *testing.T) {
	t.Parallel()

	var hdr Header
	require.NoError(t, hdr.Add(Entry{Tag: RpmtagName, Type: StringType, Value: "name"}))
	require.NoError(t, hdr.Add(Entry{Tag: 1118, Type: StringArrayType, Value: []string{"name-1", "name-2"}}))
	require.NoError(t, hdr.Add(Entry{Tag: 1116, Type: Int32Type, Value: []int32{1, 2}}))
	require.NoError(t, hdr.Add(Entry{Tag: 1030, Type: Int16Type, Value: []int16{10, 20}}))
	assert.Equal(t,
		"8eade8010000000000000005000000300000003f000000070000002"+
			"000000010000003e80000000600000000000000010000045e00"+
			"00000800000005000000020000045c000000040000001400000"+
			"00200000406000000030000001c000000026e616d65006e616d"+
			"652d31006e616d652d3200000000000100000002000a0014000"+
			"0003f00000007ffffffb000000010",
		hexOf(hdr.ToBinaryWithRegion(RpmtagHeaderImmutable)),
	)

	hdr = Header{}
	require.NoError(t, hdr.AddStringValue(RpmtagName, "abcd", false))
	require.NoError(t, hdr.AddInt32Value(1116, []int32{1, 2, 3}))
	assert.Equal(t,
		"8eade8010000000000000003000000240000003f000000070000001"+
			"400000010000003e80000000600000000000000010000045c00"+
			"000004000000080000000361626364000000000000000100000"+
			"002000000030000003f00000007ffffffd000000010",
		hexOf(hdr.ToBinaryWithRegion(RpmtagHeaderImmutable)),
	)
}

func TestTypedHelpers(t *testing.T) {
	t.Parallel()

	var hdr Header
	require.NoError(t, hdr.AddStringValue(RpmtagSummary, "summary", true))
	require.NoError(t, hdr.AddStringValue(RpmtagDescription, "description", true))
	require.NoError(t, hdr.AddStringArrayValue(RpmtagRequireName, nil))
	require.NoError(t, hdr.AddInt32Value(RpmtagRequireFlags, nil))
	require.NoError(t, hdr.AddInt16Value(1030, nil))
	require.NoError(t, hdr.AddBinaryValue(RpmsigtagMD5, []byte{1, 2}))

	//the I18N table is added once, in front of the first translatable string
	require.Len(t, hdr.Records, 4)
	assert.Equal(t, uint32(RpmtagHeaderI18NTable), hdr.Records[0].Tag)
	assert.Equal(t, StringArrayType, hdr.Records[0].Type)
	assert.Equal(t, I18NStringType, hdr.Records[1].Type)
	assert.Equal(t, I18NStringType, hdr.Records[2].Type)
	assert.Equal(t, BinType, hdr.Records[3].Type)
}

func TestTagTypeNames(t *testing.T) {
	t.Parallel()

	for tt := NullType; tt <= I18NStringType; tt++ {
		parsed, err := ParseTagType(tt.String())
		require.NoError(t, err)
		assert.Equal(t, tt, parsed)
	}
	assert.Equal(t, "TYPE(42)", TagType(42).String())
	_, err := ParseTagType("FLOAT")
	assert.ErrorIs(t, err, ErrUnknownTagType)
}
