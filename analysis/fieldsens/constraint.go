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
	"fmt"

	"golang.org/x/exp/constraints"
)

// Constraint is attached by flow functions to facts whose propagation requires a refinement of the access path that
// cannot be proven at the current precision.
type Constraint[F constraints.Ordered] interface {
	// ApplyToAccessPath returns the refinement of ap
	ApplyToAccessPath(ap AccessPath[F]) AccessPath[F]

	// CanBeAppliedTo returns false when ap can never be refined by the constraint
	CanBeAppliedTo(ap AccessPath[F]) bool

	String() string
}

// ReadFieldConstraint requires the access path to be refined with a read of Field
type ReadFieldConstraint[F constraints.Ordered] struct {
	Field F
}

// ApplyToAccessPath appends the field to ap
func (c ReadFieldConstraint[F]) ApplyToAccessPath(ap AccessPath[F]) AccessPath[F] {
	return ap.Append(c.Field)
}

// CanBeAppliedTo returns true when the field is not excluded in ap
func (c ReadFieldConstraint[F]) CanBeAppliedTo(ap AccessPath[F]) bool {
	return !ap.IsAccessInExclusions(c.Field)
}

func (c ReadFieldConstraint[F]) String() string {
	return fmt.Sprintf("^%v", c.Field)
}

// WriteFieldConstraint requires the access path to exclude Field, which has been overwritten
type WriteFieldConstraint[F constraints.Ordered] struct {
	Field F
}

// ApplyToAccessPath adds the field to the exclusions of ap
func (c WriteFieldConstraint[F]) ApplyToAccessPath(ap AccessPath[F]) AccessPath[F] {
	return ap.AppendExcludedFieldReference(c.Field)
}

// CanBeAppliedTo always returns true
func (c WriteFieldConstraint[F]) CanBeAppliedTo(AccessPath[F]) bool {
	return true
}

func (c WriteFieldConstraint[F]) String() string {
	return fmt.Sprintf("!%v", c.Field)
}

// DeltaConstraint requires the access path to be refined by a delta
type DeltaConstraint[F constraints.Ordered] struct {
	Delta Delta[F]
}

// NewDeltaConstraint returns the constraint refining accPathAtCaller into accPathAtCallee
func NewDeltaConstraint[F constraints.Ordered](accPathAtCaller, accPathAtCallee AccessPath[F]) DeltaConstraint[F] {
	return DeltaConstraint[F]{Delta: accPathAtCaller.DeltaTo(accPathAtCallee)}
}

// ApplyToAccessPath applies the delta to ap
func (c DeltaConstraint[F]) ApplyToAccessPath(ap AccessPath[F]) AccessPath[F] {
	return c.Delta.ApplyTo(ap)
}

// CanBeAppliedTo returns true when the delta can be applied to ap
func (c DeltaConstraint[F]) CanBeAppliedTo(ap AccessPath[F]) bool {
	return c.Delta.CanBeAppliedTo(ap)
}

func (c DeltaConstraint[F]) String() string {
	return c.Delta.String()
}
