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

// edgeResolver is the interface of the resolver of incoming call edges of an analyzer
type edgeResolver[F constraints.Ordered, D, S, M comparable] interface {
	incomingHandler[F, D, S, M, *CallEdge[F, D, S, M]]

	// applySummaries applies the summary exit to all the incoming call edges
	applySummaries(exit WrappedFactAtStatement[F, D, S, M])

	hasIncomingEdges() bool
}

// CallEdgeResolver resolves interest in the access path of the source fact of an analyzer by asking the callers,
// through the incoming call edges.
type CallEdgeResolver[F constraints.Ordered, D, S, M comparable] struct {
	*resolverTemplate[F, D, S, M, *CallEdge[F, D, S, M]]
}

func newCallEdgeResolver[F constraints.Ordered, D, S, M comparable](analyzer *PerAccessPathMethodAnalyzer[F, D, S, M],
	parent *CallEdgeResolver[F, D, S, M]) *CallEdgeResolver[F, D, S, M] {
	r := &CallEdgeResolver[F, D, S, M]{}
	var parentTemplate *resolverTemplate[F, D, S, M, *CallEdge[F, D, S, M]]
	if parent != nil {
		parentTemplate = parent.resolverTemplate
	}
	r.resolverTemplate = newResolverTemplate[F, D, S, M, *CallEdge[F, D, S, M]](analyzer, r,
		analyzer.accessPath, parentTemplate)
	return r
}

func (r *CallEdgeResolver[F, D, S, M]) accessPathOf(inc *CallEdge[F, D, S, M]) (AccessPath[F], bool) {
	return inc.calleeSourceFact.accessPath, true
}

func (r *CallEdgeResolver[F, D, S, M]) incomingKey(inc *CallEdge[F, D, S, M]) any {
	return inc.key()
}

func (r *CallEdgeResolver[F, D, S, M]) processIncomingGuaranteedPrefix(inc *CallEdge[F, D, S, M]) {
	r.analyzer.applySummaries(inc)
}

func (r *CallEdgeResolver[F, D, S, M]) processIncomingPotentialPrefix(inc *CallEdge[F, D, S, M]) {
	r.lock()
	inc.registerInterestCallback(r.analyzer)
	r.unlock()
}

func (r *CallEdgeResolver[F, D, S, M]) createNestedResolver(ap AccessPath[F]) incomingHandler[F, D, S, M, *CallEdge[F, D, S, M]] {
	return r.analyzer.createWithAccessPath(ap).callEdgeResolver
}

func (r *CallEdgeResolver[F, D, S, M]) applySummaries(exit WrappedFactAtStatement[F, D, S, M]) {
	for _, inc := range append([]*CallEdge[F, D, S, M](nil), r.incoming...) {
		r.analyzer.applySummary(inc, exit)
	}
}

func (r *CallEdgeResolver[F, D, S, M]) String() string {
	return fmt.Sprintf("<CallEdgeResolver %s>", r.resolvedAccessPath)
}
