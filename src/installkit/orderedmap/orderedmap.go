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

//Package orderedmap provides a map from string keys to values that remembers
//insertion order, so that entries can also be addressed by position.
package orderedmap

import (
	"errors"
	"fmt"
)

var (
	//ErrKeyKind is returned when something other than a string is used as a
	//key, or something other than a string or integer is used for lookup.
	ErrKeyKind = errors.New("keys must be strings")
	//ErrMissingKey is returned when looking up a key that was never set.
	ErrMissingKey = errors.New("no such key")
	//ErrOutOfRange is returned when looking up a position outside [0, Len()).
	ErrOutOfRange = errors.New("index out of range")
)

type entry[V any] struct {
	key   string
	value V
}

//Map is an insertion-ordered map. The zero value is an empty map ready for
//use. A Map must not be used concurrently without external locking.
type Map[V any] struct {
	entries   []entry[V]
	positions map[string]int
}

//New returns an empty Map.
func New[V any]() *Map[V] {
	return &Map[V]{}
}

//Set binds the given value to the key. A new key is appended at the end; an
//existing key keeps its position and only has its value replaced.
func (m *Map[V]) Set(key string, value V) {
	if m.positions == nil {
		m.positions = make(map[string]int)
	}
	if idx, exists := m.positions[key]; exists {
		m.entries[idx].value = value
		return
	}
	m.positions[key] = len(m.entries)
	m.entries = append(m.entries, entry[V]{key, value})
}

//Get returns the value bound to the given key.
func (m *Map[V]) Get(key string) (V, error) {
	idx, exists := m.positions[key]
	if !exists {
		var zero V
		return zero, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	return m.entries[idx].value, nil
}

//Has reports whether the key is bound.
func (m *Map[V]) Has(key string) bool {
	_, exists := m.positions[key]
	return exists
}

//At returns the key and value of the entry at the given position, i.e. the
//entry that was inserted as the idx-th one (counting from 0).
func (m *Map[V]) At(idx int) (string, V, error) {
	if idx < 0 || idx >= len(m.entries) {
		var zero V
		return "", zero, fmt.Errorf("%w: %d (length is %d)", ErrOutOfRange, idx, len(m.entries))
	}
	e := m.entries[idx]
	return e.key, e.value, nil
}

//IndexOf returns the position of the given key.
func (m *Map[V]) IndexOf(key string) (int, error) {
	idx, exists := m.positions[key]
	if !exists {
		return -1, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	return idx, nil
}

//Delete removes the key. Entries after it move up by one position. Deleting
//a missing key is not an error.
func (m *Map[V]) Delete(key string) {
	idx, exists := m.positions[key]
	if !exists {
		return
	}
	delete(m.positions, key)
	m.entries = append(m.entries[:idx], m.entries[idx+1:]...)
	for pos := idx; pos < len(m.entries); pos++ {
		m.positions[m.entries[pos].key] = pos
	}
}

//Len returns the number of entries.
func (m *Map[V]) Len() int {
	return len(m.entries)
}

//Keys returns all keys in insertion order.
func (m *Map[V]) Keys() []string {
	keys := make([]string, len(m.entries))
	for idx, e := range m.entries {
		keys[idx] = e.key
	}
	return keys
}

//Values returns all values in insertion order.
func (m *Map[V]) Values() []V {
	values := make([]V, len(m.entries))
	for idx, e := range m.entries {
		values[idx] = e.value
	}
	return values
}

//Each calls fn for every entry in insertion order. Iteration stops at the
//first error, which is returned.
func (m *Map[V]) Each(fn func(idx int, key string, value V) error) error {
	for idx, e := range m.entries {
		if err := fn(idx, e.key, e.value); err != nil {
			return err
		}
	}
	return nil
}
