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

	"golang.org/x/exp/constraints"
)

// ErrInvalidAccess is raised when a flow function reads or overwrites a field that the access path of the source
// fact cannot refer to
var ErrInvalidAccess = errors.New("invalid field access")

// AccessPathHandler is given to flow functions with each source fact. It exposes the access path of the fact, and
// builds the target facts, attaching the constraints required when the access path is not precise enough.
type AccessPathHandler[F constraints.Ordered, D, S, M comparable] struct {
	accessPath AccessPath[F]
	resolver   Resolver[F, D, S, M]
}

// NewAccessPathHandler returns a handler for a fact with access path ap owned by resolver
func NewAccessPathHandler[F constraints.Ordered, D, S, M comparable](ap AccessPath[F],
	resolver Resolver[F, D, S, M]) *AccessPathHandler[F, D, S, M] {
	return &AccessPathHandler[F, D, S, M]{accessPath: ap, resolver: resolver}
}

// AccessPath returns the access path of the source fact
func (h *AccessPathHandler[F, D, S, M]) AccessPath() AccessPath[F] {
	return h.accessPath
}

// IsPrefixOf compares the access path of the source fact with ap
func (h *AccessPathHandler[F, D, S, M]) IsPrefixOf(ap AccessPath[F]) PrefixTestResult {
	return h.accessPath.IsPrefixOf(ap)
}

// CanRead returns true if the access path of the source fact starts with field
func (h *AccessPathHandler[F, D, S, M]) CanRead(field F) bool {
	return h.accessPath.CanRead(field)
}

// MayCanRead returns true if field can be read, possibly after a refinement of the access path
func (h *AccessPathHandler[F, D, S, M]) MayCanRead(field F) bool {
	return h.accessPath.CanRead(field) ||
		(h.accessPath.HasEmptyAccessPath() && !h.accessPath.IsAccessInExclusions(field))
}

// MayBeEmpty returns true if the access path of the source fact has no access
func (h *AccessPathHandler[F, D, S, M]) MayBeEmpty() bool {
	return h.accessPath.HasEmptyAccessPath()
}

// Generate returns fact with the access path and the resolver of the source fact
func (h *AccessPathHandler[F, D, S, M]) Generate(fact D) ConstrainedFact[F, D, S, M] {
	return ConstrainedFact[F, D, S, M]{Fact: NewWrappedFact(fact, h.accessPath, h.resolver)}
}

// GenerateWithEmptyAccessPath returns fact with an empty access path. The fact is not rooted in the callers of the
// method: its refinements are decided by the zero handler of the analyzer.
func (h *AccessPathHandler[F, D, S, M]) GenerateWithEmptyAccessPath(fact D) ConstrainedFact[F, D, S, M] {
	zero := h.resolver.Analyzer().zeroCallEdgeResolver()
	return ConstrainedFact[F, D, S, M]{Fact: NewWrappedFact[F, D, S, M](fact, NewAccessPath[F](), zero)}
}

// ResultBuilder builds target facts from a transformation of the access path of the source fact
type ResultBuilder[F constraints.Ordered, D, S, M comparable] struct {
	build func(fact D) ConstrainedFact[F, D, S, M]
}

// Generate returns the target fact
func (b ResultBuilder[F, D, S, M]) Generate(fact D) ConstrainedFact[F, D, S, M] {
	return b.build(fact)
}

// Prepend returns a builder of facts whose access path is field followed by the access path of the source fact.
// This is the transformation of an assignment x.field = source.
func (h *AccessPathHandler[F, D, S, M]) Prepend(field F) ResultBuilder[F, D, S, M] {
	return ResultBuilder[F, D, S, M]{build: func(fact D) ConstrainedFact[F, D, S, M] {
		return ConstrainedFact[F, D, S, M]{Fact: NewWrappedFact(fact, h.accessPath.Prepend(field), h.resolver)}
	}}
}

// Read returns a builder of facts whose access path is the access path of the source fact after field. This is the
// transformation of an assignment x = source.field.
// When the access path of the source fact is empty, the target facts are constrained on a read of field, and will
// only be propagated if some caller is interested.
//
// Read panics with ErrInvalidAccess if field can never be read.
func (h *AccessPathHandler[F, D, S, M]) Read(field F) ResultBuilder[F, D, S, M] {
	if !h.MayCanRead(field) {
		panic(fmt.Errorf("read of %v on %s: %w", field, h.accessPath, ErrInvalidAccess))
	}
	if h.CanRead(field) {
		return ResultBuilder[F, D, S, M]{build: func(fact D) ConstrainedFact[F, D, S, M] {
			return ConstrainedFact[F, D, S, M]{Fact: NewWrappedFact(fact, h.accessPath.RemoveFirst(), h.resolver)}
		}}
	}
	return ResultBuilder[F, D, S, M]{build: func(fact D) ConstrainedFact[F, D, S, M] {
		return ConstrainedFact[F, D, S, M]{
			Fact:       NewWrappedFact(fact, NewAccessPath[F](), h.resolver),
			Constraint: ReadFieldConstraint[F]{Field: field},
		}
	}}
}

// Overwrite returns a builder of facts that survive the assignment source.field = x.
// When the access path of the source fact is empty, the target facts exclude field and are constrained on the
// write, so that they are only propagated if some caller is interested in a path other than field.
//
// Overwrite panics with ErrInvalidAccess if the access path starts with field: the fact does not survive the
// assignment, and the flow function must not generate it.
func (h *AccessPathHandler[F, D, S, M]) Overwrite(field F) ResultBuilder[F, D, S, M] {
	if h.CanRead(field) {
		panic(fmt.Errorf("overwrite of %v on %s: %w", field, h.accessPath, ErrInvalidAccess))
	}
	if !h.MayBeEmpty() || h.accessPath.IsAccessInExclusions(field) {
		return ResultBuilder[F, D, S, M]{build: h.Generate}
	}
	return ResultBuilder[F, D, S, M]{build: func(fact D) ConstrainedFact[F, D, S, M] {
		return ConstrainedFact[F, D, S, M]{
			Fact:       NewWrappedFact(fact, h.accessPath.AppendExcludedFieldReference(field), h.resolver),
			Constraint: WriteFieldConstraint[F]{Field: field},
		}
	}}
}
