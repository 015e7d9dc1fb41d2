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

package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/apex/log"

	"github.com/holocm/installkit/src/installkit/rpm"
	"github.com/holocm/installkit/src/installkit/tsort"
)

//GraphDefinition only needs a nice exported name for the TOML parser to
//produce more meaningful error messages on malformed input data.
type GraphDefinition struct {
	Items []string
	Edge  []EdgeSection
}

//EdgeSection only needs a nice exported name for the TOML parser to produce
//more meaningful error messages on malformed input data.
type EdgeSection struct {
	Parent string
	Child  string
}

//HeaderDefinition only needs a nice exported name for the TOML parser to
//produce more meaningful error messages on malformed input data.
type HeaderDefinition struct {
	Entry []EntrySection
}

//EntrySection only needs a nice exported name for the TOML parser to produce
//more meaningful error messages on malformed input data.
type EntrySection struct {
	Tag   int64
	Type  string
	Value interface{} //shape depends on Type, see convertValue
}

//decodeDefinition decodes TOML into the given struct and reports keys that
//the struct does not know about. It returns false if the input could not be
//decoded at all.
func decodeDefinition(input io.Reader, target interface{}, ec *ErrorCollector) bool {
	md, err := toml.DecodeReader(input, target)
	if err != nil {
		ec.Add(err)
		return false
	}
	for _, key := range md.Undecoded() {
		ec.Addf("unknown key %q", key.String())
	}
	return true
}

//ParseGraphDefinition parses a graph definition from the given input.
//The operation is successful if the returned []error is empty.
func ParseGraphDefinition(input io.Reader) (*tsort.Graph[string], []error) {
	var def GraphDefinition
	var ec ErrorCollector
	if !decodeDefinition(input, &def, &ec) {
		return nil, ec.Errors
	}

	seen := make(map[string]bool, len(def.Items))
	for idx, item := range def.Items {
		if strings.TrimSpace(item) == "" {
			ec.Addf("items[%d] is empty", idx)
			continue
		}
		if seen[item] {
			log.Warnf("item %q is listed more than once", item)
		}
		seen[item] = true
	}

	edges := make([]tsort.Edge[string], 0, len(def.Edge))
	for idx, e := range def.Edge {
		if e.Parent == "" || e.Child == "" {
			ec.Addf("edge %d: parent and child must both be given", idx+1)
			continue
		}
		edges = append(edges, tsort.Edge[string]{Parent: e.Parent, Child: e.Child})
	}
	if len(ec.Errors) > 0 {
		return nil, ec.Errors
	}

	graph, err := tsort.New(def.Items, edges)
	if err != nil {
		return nil, []error{err}
	}
	log.Debugf("parsed graph with %d items and %d edges", len(graph.Items()), len(edges))
	return graph, nil
}

//ParseHeaderDefinition parses a header definition from the given input.
//The operation is successful if the returned []error is empty.
func ParseHeaderDefinition(input io.Reader) ([]rpm.Entry, []error) {
	var def HeaderDefinition
	var ec ErrorCollector
	if !decodeDefinition(input, &def, &ec) {
		return nil, ec.Errors
	}

	entries := make([]rpm.Entry, 0, len(def.Entry))
	for idx, section := range def.Entry {
		prefix := fmt.Sprintf("entry %d", idx+1)
		if section.Tag < 0 || section.Tag > math.MaxUint32 {
			ec.AddWithPrefix(prefix, fmt.Errorf("tag %d is out of range", section.Tag))
			continue
		}
		prefix = fmt.Sprintf("entry %d (tag %d)", idx+1, section.Tag)
		tagType, err := rpm.ParseTagType(strings.ToUpper(strings.TrimSpace(section.Type)))
		if err != nil {
			ec.AddWithPrefix(prefix, err)
			continue
		}
		value, err := convertValue(tagType, section.Value)
		if err != nil {
			ec.AddWithPrefix(prefix, err)
			continue
		}
		entries = append(entries, rpm.Entry{
			Tag:   uint32(section.Tag),
			Type:  tagType,
			Value: value,
		})
	}
	if len(ec.Errors) > 0 {
		return nil, ec.Errors
	}
	return entries, nil
}

//convertValue turns a TOML value into the Go type that rpm.Header.Add expects
//for the given tag type. Integers (and arrays of integers) are accepted for
//all integer types as long as they fit into the type's width, either as
//signed or as unsigned number. For CHAR and BIN, strings are also accepted
//and stored as their raw bytes.
func convertValue(t rpm.TagType, value interface{}) (interface{}, error) {
	switch t {
	case rpm.NullType:
		if value != nil {
			return nil, fmt.Errorf("%w: NULL entries cannot have a value", rpm.ErrUnknownTagType)
		}
		return nil, nil
	case rpm.CharType, rpm.BinType:
		if s, ok := value.(string); ok {
			return []byte(s), nil
		}
		return convertIntegers(t, value, 8, func(n []uint64) interface{} {
			result := make([]byte, len(n))
			for idx, v := range n {
				result[idx] = byte(v)
			}
			return result
		})
	case rpm.Int8Type:
		return convertIntegers(t, value, 8, func(n []uint64) interface{} {
			result := make([]uint8, len(n))
			for idx, v := range n {
				result[idx] = uint8(v)
			}
			return result
		})
	case rpm.Int16Type:
		return convertIntegers(t, value, 16, func(n []uint64) interface{} {
			result := make([]uint16, len(n))
			for idx, v := range n {
				result[idx] = uint16(v)
			}
			return result
		})
	case rpm.Int32Type:
		return convertIntegers(t, value, 32, func(n []uint64) interface{} {
			result := make([]uint32, len(n))
			for idx, v := range n {
				result[idx] = uint32(v)
			}
			return result
		})
	case rpm.Int64Type:
		return convertIntegers(t, value, 64, func(n []uint64) interface{} {
			return n
		})
	case rpm.StringType, rpm.I18NStringType:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("%w: %s entries need a string value", rpm.ErrUnknownTagType, t)
	case rpm.StringArrayType:
		switch v := value.(type) {
		case string:
			return []string{v}, nil
		case []interface{}:
			result := make([]string, len(v))
			for idx, elem := range v {
				s, ok := elem.(string)
				if !ok {
					return nil, fmt.Errorf("%w: element %d of STRING_ARRAY value is not a string", rpm.ErrUnknownTagType, idx)
				}
				result[idx] = s
			}
			return result, nil
		}
		return nil, fmt.Errorf("%w: STRING_ARRAY entries need a string or an array of strings", rpm.ErrUnknownTagType)
	default:
		return nil, fmt.Errorf("%w: %s", rpm.ErrUnknownTagType, t)
	}
}

//convertIntegers accepts an integer or an array of integers, checks that all
//of them fit into the given number of bits, and passes their two's
//complement representation to makeSlice.
func convertIntegers(t rpm.TagType, value interface{}, bits uint, makeSlice func([]uint64) interface{}) (interface{}, error) {
	var numbers []int64
	switch v := value.(type) {
	case int64:
		numbers = []int64{v}
	case []interface{}:
		numbers = make([]int64, len(v))
		for idx, elem := range v {
			n, ok := elem.(int64)
			if !ok {
				return nil, fmt.Errorf("%w: element %d of %s value is not an integer", rpm.ErrUnknownTagType, idx, t)
			}
			numbers[idx] = n
		}
	default:
		return nil, fmt.Errorf("%w: %s entries need an integer or an array of integers", rpm.ErrUnknownTagType, t)
	}

	result := make([]uint64, len(numbers))
	for idx, n := range numbers {
		if bits < 64 {
			lowest := -(int64(1) << (bits - 1))
			highest := int64(1)<<bits - 1
			if n < lowest || n > highest {
				return nil, fmt.Errorf("%w: value %d does not fit into %s", rpm.ErrUnknownTagType, n, t)
			}
		}
		result[idx] = uint64(n) & (math.MaxUint64 >> (64 - bits))
	}
	return makeSlice(result), nil
}
