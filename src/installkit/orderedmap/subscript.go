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

package orderedmap

import "fmt"

//This file contains the loosely-typed accessors, for callers that get their
//keys from decoded configuration data (where a subscript may be either a
//position or a key).

//Lookup returns the value at the given subscript: an integer selects a
//position, a string selects a key. Any other kind fails with ErrKeyKind.
func (m *Map[V]) Lookup(subscript interface{}) (V, error) {
	if idx, ok := asIndex(subscript); ok {
		_, value, err := m.At(idx)
		return value, err
	}
	if key, ok := subscript.(string); ok {
		return m.Get(key)
	}
	var zero V
	return zero, fmt.Errorf("%w: cannot look up by %T", ErrKeyKind, subscript)
}

//Assign is like Set, but takes a loosely-typed key. Integers are rejected
//with ErrKeyKind, since they would be indistinguishable from positions in
//Lookup.
func (m *Map[V]) Assign(key interface{}, value V) error {
	str, ok := key.(string)
	if !ok {
		return fmt.Errorf("%w: got %T", ErrKeyKind, key)
	}
	m.Set(str, value)
	return nil
}

func asIndex(subscript interface{}) (int, bool) {
	switch v := subscript.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		//values that do not fit into an int are out of range anyway
		if int64(int(v)) != v {
			return -1, true
		}
		return int(v), true
	case uint:
		if v > uint(maxInt) {
			return -1, true
		}
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		if uint64(v) > uint64(maxInt) {
			return -1, true
		}
		return int(v), true
	case uint64:
		if v > uint64(maxInt) {
			return -1, true
		}
		return int(v), true
	}
	return 0, false
}

const maxInt = int(^uint(0) >> 1)
