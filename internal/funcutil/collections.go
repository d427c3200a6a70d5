// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package funcutil contains generic collections and functional helpers.
package funcutil

// DefaultMap is a map that creates missing values on demand, and remembers the order in which keys were inserted.
// The zero DefaultMap is not usable; use NewDefaultMap.
type DefaultMap[K comparable, V any] struct {
	create func(K) V
	values map[K]V
	keys   []K
}

// NewDefaultMap returns an empty map where GetOrCreate(k) inserts create(k) when k is absent. create may be nil
// when values are only inserted with Put.
func NewDefaultMap[K comparable, V any](create func(K) V) *DefaultMap[K, V] {
	return &DefaultMap[K, V]{create: create, values: map[K]V{}}
}

// Get returns the value at k, and whether it is present
func (m *DefaultMap[K, V]) Get(k K) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

// GetOrCreate returns the value at k, creating it if k is absent.
// @mutates m
func (m *DefaultMap[K, V]) GetOrCreate(k K) V {
	if v, ok := m.values[k]; ok {
		return v
	}
	if m.create == nil {
		panic("funcutil: GetOrCreate on a DefaultMap without constructor")
	}
	v := m.create(k)
	// create may have inserted k itself
	if _, ok := m.values[k]; !ok {
		m.Put(k, v)
	}
	return m.values[k]
}

// Put sets the value at k.
// @mutates m
func (m *DefaultMap[K, V]) Put(k K, v V) {
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// Len returns the number of keys in the map
func (m *DefaultMap[K, V]) Len() int {
	return len(m.keys)
}

// Values returns the values in insertion order of their keys. The result is a fresh slice: the map can be modified
// while iterating over it.
func (m *DefaultMap[K, V]) Values() []V {
	values := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		values = append(values, m.values[k])
	}
	return values
}

// Filter returns the elements x of a such that f(x), in order
func Filter[T any](a []T, f func(T) bool) []T {
	var b []T
	for _, x := range a {
		if f(x) {
			b = append(b, x)
		}
	}
	return b
}
