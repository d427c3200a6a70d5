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

package fieldsens

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// ErrExcludedField is raised when a field that is part of the exclusions of an access path is appended to it.
var ErrExcludedField = errors.New("field is excluded from access path")

// PrefixTestResult is the three-valued result of AccessPath.IsPrefixOf. Values are ordered: NoPrefix <
// PotentialPrefix < GuaranteedPrefix.
type PrefixTestResult int

const (
	// NoPrefix means the access path cannot be a prefix of the other
	NoPrefix PrefixTestResult = iota
	// PotentialPrefix means the access path may be a prefix, depending on fields that are not known yet
	PotentialPrefix
	// GuaranteedPrefix means the access path is a prefix of the other
	GuaranteedPrefix
)

// AtLeast returns true if r is at least minimum
func (r PrefixTestResult) AtLeast(minimum PrefixTestResult) bool {
	return r >= minimum
}

func (r PrefixTestResult) String() string {
	switch r {
	case GuaranteedPrefix:
		return "GUARANTEED_PREFIX"
	case PotentialPrefix:
		return "POTENTIAL_PREFIX"
	default:
		return "NO_PREFIX"
	}
}

// AccessPath is an immutable sequence of field accesses, together with a set of excluded fields. The exclusions
// stand for "the next field is definitely not one of these" at the depth reached by the accesses.
// All the operations return new access paths.
type AccessPath[F constraints.Ordered] struct {
	accesses []F
	// exclusions is sorted and without duplicates
	exclusions []F
}

// NewAccessPath returns the access path with the accesses provided and no exclusions.
func NewAccessPath[F constraints.Ordered](accesses ...F) AccessPath[F] {
	return AccessPath[F]{accesses: slices.Clone(accesses)}
}

// Accesses returns a copy of the accesses of the path
func (a AccessPath[F]) Accesses() []F {
	return slices.Clone(a.accesses)
}

// Exclusions returns a copy of the exclusions of the path, in increasing order
func (a AccessPath[F]) Exclusions() []F {
	return slices.Clone(a.exclusions)
}

// Len returns the number of accesses in the path
func (a AccessPath[F]) Len() int {
	return len(a.accesses)
}

// IsAccessInExclusions returns true if field is excluded at the current depth
func (a AccessPath[F]) IsAccessInExclusions(field F) bool {
	_, found := slices.BinarySearch(a.exclusions, field)
	return found
}

// hasAllExclusionsOf returns true if the exclusions of a contain all the exclusions of b
func (a AccessPath[F]) hasAllExclusionsOf(b AccessPath[F]) bool {
	for _, x := range b.exclusions {
		if !a.IsAccessInExclusions(x) {
			return false
		}
	}
	return true
}

// Append returns a new access path with the fields appended. Extending a path makes the new suffix precise, so
// the exclusions of a are dropped.
// Panics with an error wrapping ErrExcludedField if the first field is in the exclusions of a.
func (a AccessPath[F]) Append(fields ...F) AccessPath[F] {
	if len(fields) == 0 {
		return a
	}
	if a.IsAccessInExclusions(fields[0]) {
		panic(fmt.Errorf("cannot append %v to %s: %w", fields[0], a, ErrExcludedField))
	}
	accesses := make([]F, 0, len(a.accesses)+len(fields))
	accesses = append(accesses, a.accesses...)
	accesses = append(accesses, fields...)
	return AccessPath[F]{accesses: accesses}
}

// Prepend returns a new access path with field as its first access.
func (a AccessPath[F]) Prepend(field F) AccessPath[F] {
	accesses := make([]F, 0, len(a.accesses)+1)
	accesses = append(accesses, field)
	accesses = append(accesses, a.accesses...)
	return AccessPath[F]{accesses: accesses, exclusions: a.exclusions}
}

// RemoveFirst returns a new access path without its first access. The exclusions are kept.
func (a AccessPath[F]) RemoveFirst() AccessPath[F] {
	if len(a.accesses) == 0 {
		return a
	}
	return AccessPath[F]{accesses: slices.Clone(a.accesses[1:]), exclusions: a.exclusions}
}

// AppendExcludedFieldReference returns a new access path where fields are added to the exclusions.
func (a AccessPath[F]) AppendExcludedFieldReference(fields ...F) AccessPath[F] {
	if len(fields) == 0 {
		return a
	}
	exclusions := make([]F, 0, len(a.exclusions)+len(fields))
	exclusions = append(exclusions, a.exclusions...)
	exclusions = append(exclusions, fields...)
	slices.Sort(exclusions)
	exclusions = slices.Compact(exclusions)
	return AccessPath[F]{accesses: a.accesses, exclusions: exclusions}
}

// CanRead returns true if the first access of the path is field
func (a AccessPath[F]) CanRead(field F) bool {
	return len(a.accesses) > 0 && a.accesses[0] == field
}

// HasEmptyAccessPath returns true if the path has no accesses. It may have exclusions.
func (a AccessPath[F]) HasEmptyAccessPath() bool {
	return len(a.accesses) == 0
}

// IsEmpty returns true if the path has no accesses and no exclusions.
func (a AccessPath[F]) IsEmpty() bool {
	return len(a.accesses) == 0 && len(a.exclusions) == 0
}

// IsPrefixOf tests whether a is a prefix of other.
//
// The comparison of exclusion sets at equal length is asymmetric: a path without exclusions is a prefix of
// anything, a path with exclusions is never a prefix of a path without, and otherwise the prefix is guaranteed
// only when all the exclusions of a are also exclusions of other.
func (a AccessPath[F]) IsPrefixOf(other AccessPath[F]) PrefixTestResult {
	if len(a.accesses) > len(other.accesses) {
		return NoPrefix
	}
	for i, x := range a.accesses {
		if x != other.accesses[i] {
			return NoPrefix
		}
	}
	if len(a.accesses) < len(other.accesses) {
		if a.IsAccessInExclusions(other.accesses[len(a.accesses)]) {
			return NoPrefix
		}
		return GuaranteedPrefix
	}
	if len(a.exclusions) == 0 {
		return GuaranteedPrefix
	}
	if len(other.exclusions) == 0 {
		return NoPrefix
	}
	if other.hasAllExclusionsOf(a) {
		return GuaranteedPrefix
	}
	// Either the exclusion sets intersect without containment, are disjoint, or the exclusions of a strictly
	// contain the ones of other: the more refined path may still be reached
	return PotentialPrefix
}

// DeltaTo returns the delta that transforms a into other. Panics if a is not at least a potential prefix of other.
func (a AccessPath[F]) DeltaTo(other AccessPath[F]) Delta[F] {
	prefix := a.IsPrefixOf(other)
	if !prefix.AtLeast(PotentialPrefix) {
		panic(fmt.Sprintf("assertion failed: %s is not a prefix of %s", a, other))
	}
	exclusions := slices.Clone(other.exclusions)
	if len(a.accesses) == len(other.accesses) {
		exclusions = append(exclusions, a.exclusions...)
		slices.Sort(exclusions)
		exclusions = slices.Compact(exclusions)
	}
	delta := Delta[F]{
		accesses:   slices.Clone(other.accesses[len(a.accesses):]),
		exclusions: exclusions,
	}
	applied := delta.ApplyTo(a)
	if prefix == GuaranteedPrefix && !other.Equal(applied) {
		panic(fmt.Sprintf("assertion failed: delta %s from %s gives %s instead of %s", delta, a, applied, other))
	}
	if prefix == PotentialPrefix && other.IsPrefixOf(applied) != GuaranteedPrefix {
		panic(fmt.Sprintf("assertion failed: delta %s from %s does not reach %s", delta, a, other))
	}
	return delta
}

// Equal returns true if a and b are structurally equal
func (a AccessPath[F]) Equal(b AccessPath[F]) bool {
	return slices.Equal(a.accesses, b.accesses) && slices.Equal(a.exclusions, b.exclusions)
}

// Key returns a string that uniquely identifies the structure of the access path. Use it to index maps by access
// path.
func (a AccessPath[F]) Key() string {
	var b strings.Builder
	writeKeyList(&b, a.accesses)
	b.WriteByte(';')
	writeKeyList(&b, a.exclusions)
	return b.String()
}

func writeKeyList[F constraints.Ordered](b *strings.Builder, fields []F) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		// Go-syntax representation quotes strings and leaves numbers bare: the encoding is unambiguous
		fmt.Fprintf(b, "%#v", f)
	}
}

// String returns a representation of the path of the form .f.g^{h,i}
func (a AccessPath[F]) String() string {
	var b strings.Builder
	for _, f := range a.accesses {
		fmt.Fprintf(&b, ".%v", f)
	}
	if len(a.exclusions) > 0 {
		b.WriteString("^{")
		for i, f := range a.exclusions {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%v", f)
		}
		b.WriteByte('}')
	}
	return b.String()
}

// Delta is the incremental transform between an access path and a more refined one: a suffix of accesses to
// append, and exclusions to merge in.
type Delta[F constraints.Ordered] struct {
	accesses   []F
	exclusions []F
}

// EmptyDelta returns the delta that does not change any access path
func EmptyDelta[F constraints.Ordered]() Delta[F] {
	return Delta[F]{}
}

// Accesses returns a copy of the accesses appended by the delta
func (d Delta[F]) Accesses() []F {
	return slices.Clone(d.accesses)
}

// Exclusions returns a copy of the exclusions merged in by the delta
func (d Delta[F]) Exclusions() []F {
	return slices.Clone(d.exclusions)
}

// IsEmpty returns true if applying the delta never changes an access path
func (d Delta[F]) IsEmpty() bool {
	return len(d.accesses) == 0 && len(d.exclusions) == 0
}

// CanBeAppliedTo returns true when the first access of the delta is not excluded in ap
func (d Delta[F]) CanBeAppliedTo(ap AccessPath[F]) bool {
	if len(d.accesses) > 0 {
		return !ap.IsAccessInExclusions(d.accesses[0])
	}
	return true
}

// ApplyTo returns ap with the delta applied
func (d Delta[F]) ApplyTo(ap AccessPath[F]) AccessPath[F] {
	return ap.Append(d.accesses...).AppendExcludedFieldReference(d.exclusions...)
}

// Key returns a string that uniquely identifies the delta
func (d Delta[F]) Key() string {
	return AccessPath[F](d).Key()
}

func (d Delta[F]) String() string {
	return "Δ" + AccessPath[F](d).String()
}
