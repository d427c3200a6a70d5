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
	"github.com/awslabs/ar-go-fieldsens/internal/funcutil"
	"golang.org/x/exp/constraints"
)

// MethodAnalyzer dispatches the facts entering a method to the analyzer of their source fact
type MethodAnalyzer[F constraints.Ordered, D, S, M comparable] interface {
	// AddIncomingEdge adds a call edge from a caller of the method
	AddIncomingEdge(edge *CallEdge[F, D, S, M])

	// AddInitialSeed starts the analysis of fact at startPoint
	AddInitialSeed(startPoint S, fact D)

	// AddUnbalancedReturnFlow adds target, returning from a callee of the method at callSite, without matching
	// call edge
	AddUnbalancedReturnFlow(target WrappedFactAtStatement[F, D, S, M], callSite S)
}

// methodAnalyzerImpl groups the analyzers of a method by source fact
type methodAnalyzerImpl[F constraints.Ordered, D, S, M comparable] struct {
	method        M
	context       *Context[F, D, S, M]
	perSourceFact *funcutil.DefaultMap[D, *PerAccessPathMethodAnalyzer[F, D, S, M]]
}

func newMethodAnalyzerImpl[F constraints.Ordered, D, S, M comparable](method M,
	context *Context[F, D, S, M]) *methodAnalyzerImpl[F, D, S, M] {
	return &methodAnalyzerImpl[F, D, S, M]{
		method:  method,
		context: context,
		perSourceFact: funcutil.NewDefaultMap(func(fact D) *PerAccessPathMethodAnalyzer[F, D, S, M] {
			return newPerAccessPathMethodAnalyzer(method, fact, context, NewAccessPath[F](), nil)
		}),
	}
}

func (m *methodAnalyzerImpl[F, D, S, M]) AddIncomingEdge(edge *CallEdge[F, D, S, M]) {
	m.perSourceFact.GetOrCreate(edge.calleeSourceFact.fact).AddIncomingEdge(edge)
}

func (m *methodAnalyzerImpl[F, D, S, M]) AddInitialSeed(startPoint S, fact D) {
	m.perSourceFact.GetOrCreate(fact).AddInitialSeed(startPoint)
}

func (m *methodAnalyzerImpl[F, D, S, M]) AddUnbalancedReturnFlow(target WrappedFactAtStatement[F, D, S, M], _ S) {
	m.perSourceFact.GetOrCreate(m.context.ZeroValue).scheduleUnbalancedReturnEdgeTo(target)
}

// Synchronizer decides when the unbalanced returns of a solver paired with another solver are propagated
type Synchronizer[S comparable] interface {
	// SynchronizeReturn runs or delays job, the propagation of a fact originating at sourceStmt past the exit of
	// the method where it was seeded
	SynchronizeReturn(sourceStmt S, job func())
}

type sourceKey[D, S comparable] struct {
	fact       D
	sourceStmt S
}

// SourceStmtAnnotatedMethodAnalyzer groups the analyzers of a method by source fact and by the statement where
// the fact has been seeded. Unbalanced returns are handed to a Synchronizer, keyed by the statement the
// returning fact originates from.
type SourceStmtAnnotatedMethodAnalyzer[F constraints.Ordered, D, S, M comparable] struct {
	method       M
	context      *Context[F, D, S, M]
	synchronizer Synchronizer[S]
	sourceStmtOf func(D) S
	perSource    *funcutil.DefaultMap[sourceKey[D, S], *PerAccessPathMethodAnalyzer[F, D, S, M]]
}

// NewSourceStmtAnnotatedMethodAnalyzer returns the analyzer of method. sourceStmtOf returns the statement where a
// fact originates.
func NewSourceStmtAnnotatedMethodAnalyzer[F constraints.Ordered, D, S, M comparable](method M,
	context *Context[F, D, S, M], synchronizer Synchronizer[S],
	sourceStmtOf func(D) S) *SourceStmtAnnotatedMethodAnalyzer[F, D, S, M] {
	return &SourceStmtAnnotatedMethodAnalyzer[F, D, S, M]{
		method:       method,
		context:      context,
		synchronizer: synchronizer,
		sourceStmtOf: sourceStmtOf,
		perSource: funcutil.NewDefaultMap(func(k sourceKey[D, S]) *PerAccessPathMethodAnalyzer[F, D, S, M] {
			return newPerAccessPathMethodAnalyzer(method, k.fact, context, NewAccessPath[F](), nil)
		}),
	}
}

// AddIncomingEdge adds edge to the analyzer of its callee source fact, regardless of seed statements
func (m *SourceStmtAnnotatedMethodAnalyzer[F, D, S, M]) AddIncomingEdge(edge *CallEdge[F, D, S, M]) {
	var noStmt S
	m.perSource.GetOrCreate(sourceKey[D, S]{fact: edge.calleeSourceFact.fact, sourceStmt: noStmt}).
		AddIncomingEdge(edge)
}

// AddInitialSeed starts the analysis of fact at startPoint, in an analyzer specific to startPoint
func (m *SourceStmtAnnotatedMethodAnalyzer[F, D, S, M]) AddInitialSeed(startPoint S, fact D) {
	m.perSource.GetOrCreate(sourceKey[D, S]{fact: fact, sourceStmt: startPoint}).AddInitialSeed(startPoint)
}

// AddUnbalancedReturnFlow hands the propagation of target to the synchronizer
func (m *SourceStmtAnnotatedMethodAnalyzer[F, D, S, M]) AddUnbalancedReturnFlow(target WrappedFactAtStatement[F, D, S, M],
	_ S) {
	sourceStmt := m.sourceStmtOf(target.fact)
	m.synchronizer.SynchronizeReturn(sourceStmt, func() {
		key := sourceKey[D, S]{fact: m.context.ZeroValue, sourceStmt: sourceStmt}
		m.perSource.GetOrCreate(key).scheduleUnbalancedReturnEdgeTo(target)
	})
}
