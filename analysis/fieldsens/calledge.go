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

// CallEdge is an edge from a fact at a call site in the caller to the source fact of the callee
type CallEdge[F constraints.Ordered, D, S, M comparable] struct {
	callerAnalyzer   *PerAccessPathMethodAnalyzer[F, D, S, M]
	factAtCallSite   WrappedFactAtStatement[F, D, S, M]
	calleeSourceFact WrappedFact[F, D, S, M]
}

// NewCallEdge returns a new call edge
func NewCallEdge[F constraints.Ordered, D, S, M comparable](callerAnalyzer *PerAccessPathMethodAnalyzer[F, D, S, M],
	factAtCallSite WrappedFactAtStatement[F, D, S, M], calleeSourceFact WrappedFact[F, D, S, M]) *CallEdge[F, D, S, M] {
	return &CallEdge[F, D, S, M]{
		callerAnalyzer:   callerAnalyzer,
		factAtCallSite:   factAtCallSite,
		calleeSourceFact: calleeSourceFact,
	}
}

// CallerAnalyzer returns the analyzer of the caller where the edge originates
func (e *CallEdge[F, D, S, M]) CallerAnalyzer() *PerAccessPathMethodAnalyzer[F, D, S, M] {
	return e.callerAnalyzer
}

// FactAtCallSite returns the fact of the caller at the call site
func (e *CallEdge[F, D, S, M]) FactAtCallSite() WrappedFactAtStatement[F, D, S, M] {
	return e.factAtCallSite
}

// CalleeSourceFact returns the fact the callee starts with
func (e *CallEdge[F, D, S, M]) CalleeSourceFact() WrappedFact[F, D, S, M] { return e.calleeSourceFact }

type callEdgeKey[F constraints.Ordered, D, S, M comparable] struct {
	caller     *PerAccessPathMethodAnalyzer[F, D, S, M]
	callSite   S
	siteFact   wrappedFactKey[F, D, S, M]
	calleeFact wrappedFactKey[F, D, S, M]
}

func (e *CallEdge[F, D, S, M]) key() callEdgeKey[F, D, S, M] {
	return callEdgeKey[F, D, S, M]{
		caller:     e.callerAnalyzer,
		callSite:   e.factAtCallSite.stmt,
		siteFact:   e.factAtCallSite.WrappedFact.key(),
		calleeFact: e.calleeSourceFact.key(),
	}
}

// registerInterestCallback asks the caller for the refinement of the fact at the call site that makes the callee
// source fact match the access path of interested. When the refinement is granted, interested receives the
// refined call edge. When the resolver of the fact at the call site cannot answer, the question is forwarded to
// the callers of the caller.
func (e *CallEdge[F, D, S, M]) registerInterestCallback(interested *PerAccessPathMethodAnalyzer[F, D, S, M]) {
	delta := e.calleeSourceFact.accessPath.DeltaTo(interested.accessPath)
	if !e.factAtCallSite.canDeltaBeApplied(delta) {
		return
	}
	constraint := DeltaConstraint[F]{Delta: delta}
	callback := &InterestFuncs[F, D, S, M]{}
	callback.OnInterest = func(analyzer *PerAccessPathMethodAnalyzer[F, D, S, M], resolver Resolver[F, D, S, M]) {
		calleeSource := NewWrappedFact(e.calleeSourceFact.fact, delta.ApplyTo(e.calleeSourceFact.accessPath), resolver)
		if interested.accessPath.IsPrefixOf(calleeSource.accessPath) != GuaranteedPrefix {
			panic(fmt.Sprintf("assertion failed: %s is not a guaranteed prefix of %s",
				interested.accessPath, calleeSource.accessPath))
		}
		site := e.factAtCallSite
		refinedSite := NewWrappedFactAtStatement(site.stmt,
			NewWrappedFact(site.fact, delta.ApplyTo(site.accessPath), resolver))
		interested.AddIncomingEdge(NewCallEdge(analyzer, refinedSite, calleeSource))
	}
	callback.OnResolvedEmpty = func() {
		e.callerAnalyzer.callEdgeResolver.Resolve(constraint, callback)
	}
	e.factAtCallSite.resolver.Resolve(constraint, callback)
}

func (e *CallEdge[F, D, S, M]) String() string {
	return fmt.Sprintf("[%s] %s -> %s", e.callerAnalyzer, e.factAtCallSite, e.calleeSourceFact)
}
