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

// WrappedFact binds a fact to its access path and to the resolver that must be asked before the access path is
// refined further.
type WrappedFact[F constraints.Ordered, D, S, M comparable] struct {
	fact       D
	accessPath AccessPath[F]
	resolver   Resolver[F, D, S, M]
}

// NewWrappedFact returns a new wrapped fact
func NewWrappedFact[F constraints.Ordered, D, S, M comparable](fact D, accessPath AccessPath[F],
	resolver Resolver[F, D, S, M]) WrappedFact[F, D, S, M] {
	return WrappedFact[F, D, S, M]{fact: fact, accessPath: accessPath, resolver: resolver}
}

// Fact returns the fact
func (w WrappedFact[F, D, S, M]) Fact() D { return w.fact }

// AccessPath returns the access path of the fact
func (w WrappedFact[F, D, S, M]) AccessPath() AccessPath[F] { return w.accessPath }

// Resolver returns the resolver owning the fact
func (w WrappedFact[F, D, S, M]) Resolver() Resolver[F, D, S, M] { return w.resolver }

func (w WrappedFact[F, D, S, M]) String() string {
	return fmt.Sprintf("%v%s", w.fact, w.accessPath)
}

// wrappedFactKey identifies a wrapped fact by value, including its resolver
type wrappedFactKey[F constraints.Ordered, D, S, M comparable] struct {
	fact       D
	accessPath string
	resolver   Resolver[F, D, S, M]
}

func (w WrappedFact[F, D, S, M]) key() wrappedFactKey[F, D, S, M] {
	return wrappedFactKey[F, D, S, M]{fact: w.fact, accessPath: w.accessPath.Key(), resolver: w.resolver}
}

// WrappedFactAtStatement is a wrapped fact holding at some statement
type WrappedFactAtStatement[F constraints.Ordered, D, S, M comparable] struct {
	stmt S
	WrappedFact[F, D, S, M]
}

// NewWrappedFactAtStatement returns a new wrapped fact at stmt
func NewWrappedFactAtStatement[F constraints.Ordered, D, S, M comparable](stmt S,
	fact WrappedFact[F, D, S, M]) WrappedFactAtStatement[F, D, S, M] {
	return WrappedFactAtStatement[F, D, S, M]{stmt: stmt, WrappedFact: fact}
}

// Statement returns the statement where the fact holds
func (w WrappedFactAtStatement[F, D, S, M]) Statement() S { return w.stmt }

// Wrapped returns the wrapped fact
func (w WrappedFactAtStatement[F, D, S, M]) Wrapped() WrappedFact[F, D, S, M] { return w.WrappedFact }

// AsFactAtStatement drops the access path and the resolver
func (w WrappedFactAtStatement[F, D, S, M]) AsFactAtStatement() FactAtStatement[D, S] {
	return FactAtStatement[D, S]{Fact: w.fact, Stmt: w.stmt}
}

// canDeltaBeApplied returns true if delta can be applied to the access path of the fact
func (w WrappedFactAtStatement[F, D, S, M]) canDeltaBeApplied(delta Delta[F]) bool {
	return delta.CanBeAppliedTo(w.accessPath)
}

func (w WrappedFactAtStatement[F, D, S, M]) String() string {
	return fmt.Sprintf("%s @ %v", w.WrappedFact, w.stmt)
}

// reachKey identifies a fact at a statement by value, including its resolver
type reachKey[F constraints.Ordered, D, S, M comparable] struct {
	stmt S
	wrappedFactKey[F, D, S, M]
}

func (w WrappedFactAtStatement[F, D, S, M]) reachKey() reachKey[F, D, S, M] {
	return reachKey[F, D, S, M]{stmt: w.stmt, wrappedFactKey: w.WrappedFact.key()}
}

// FactAtStatement is a fact at a statement, without access path. It keys the join and return site resolvers.
type FactAtStatement[D, S comparable] struct {
	Fact D
	Stmt S
}

func (f FactAtStatement[D, S]) String() string {
	return fmt.Sprintf("%v @ %v", f.Fact, f.Stmt)
}

// ConstrainedFact is the result of a flow function: a wrapped fact, and the constraint its propagation requires.
// The constraint is nil when the fact can be propagated directly.
type ConstrainedFact[F constraints.Ordered, D, S, M comparable] struct {
	Fact       WrappedFact[F, D, S, M]
	Constraint Constraint[F]
}

func (c ConstrainedFact[F, D, S, M]) String() string {
	if c.Constraint == nil {
		return c.Fact.String()
	}
	return fmt.Sprintf("%s<%s>", c.Fact, c.Constraint)
}
