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

// ControlFlowJoinResolver merges the facts reaching a join statement with different access paths into one
// representative with an empty access path. Refinements of the representative are resolved against the resolvers
// of the merged facts.
type ControlFlowJoinResolver[F constraints.Ordered, D, S, M comparable] struct {
	*resolverTemplate[F, D, S, M, WrappedFact[F, D, S, M]]
	joinStmt   S
	propagated bool
	sourceFact D
}

func newControlFlowJoinResolver[F constraints.Ordered, D, S, M comparable](analyzer *PerAccessPathMethodAnalyzer[F, D, S, M],
	joinStmt S) *ControlFlowJoinResolver[F, D, S, M] {
	r := &ControlFlowJoinResolver[F, D, S, M]{joinStmt: joinStmt}
	r.resolverTemplate = newResolverTemplate[F, D, S, M, WrappedFact[F, D, S, M]](analyzer, r, NewAccessPath[F](), nil)
	return r
}

// JoinStmt returns the statement the resolver is attached to
func (r *ControlFlowJoinResolver[F, D, S, M]) JoinStmt() S {
	return r.joinStmt
}

func (r *ControlFlowJoinResolver[F, D, S, M]) accessPathOf(inc WrappedFact[F, D, S, M]) (AccessPath[F], bool) {
	return inc.accessPath, true
}

func (r *ControlFlowJoinResolver[F, D, S, M]) incomingKey(inc WrappedFact[F, D, S, M]) any {
	return inc.key()
}

func (r *ControlFlowJoinResolver[F, D, S, M]) processIncomingGuaranteedPrefix(inc WrappedFact[F, D, S, M]) {
	if r.propagated {
		r.analyzer.context.FactHandler.Merge(r.sourceFact, inc.fact)
		return
	}
	r.propagated = true
	r.sourceFact = inc.fact
	r.analyzer.processFlowFromJoinStmt(NewWrappedFactAtStatement(r.joinStmt,
		NewWrappedFact[F, D, S, M](inc.fact, NewAccessPath[F](), r)))
}

func (r *ControlFlowJoinResolver[F, D, S, M]) processIncomingPotentialPrefix(inc WrappedFact[F, D, S, M]) {
	delta := inc.accessPath.DeltaTo(r.resolvedAccessPath)
	inc.resolver.Resolve(DeltaConstraint[F]{Delta: delta}, &InterestFuncs[F, D, S, M]{
		OnInterest: func(_ *PerAccessPathMethodAnalyzer[F, D, S, M], resolver Resolver[F, D, S, M]) {
			r.addGrantedIncoming(NewWrappedFact(inc.fact, delta.ApplyTo(inc.accessPath), resolver))
		},
		OnResolvedEmpty: func() {
			r.canBeResolvedEmpty()
		},
	})
}

func (r *ControlFlowJoinResolver[F, D, S, M]) createNestedResolver(ap AccessPath[F]) incomingHandler[F, D, S, M, WrappedFact[F, D, S, M]] {
	nested := &ControlFlowJoinResolver[F, D, S, M]{joinStmt: r.joinStmt, propagated: true, sourceFact: r.sourceFact}
	nested.resolverTemplate = newResolverTemplate[F, D, S, M, WrappedFact[F, D, S, M]](r.analyzer, nested, ap,
		r.resolverTemplate)
	return nested
}

func (r *ControlFlowJoinResolver[F, D, S, M]) String() string {
	return fmt.Sprintf("<Join %v %s>", r.joinStmt, r.resolvedAccessPath)
}
