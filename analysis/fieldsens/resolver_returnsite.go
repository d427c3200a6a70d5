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

// returnEdge is a fact of a callee returning to a return site of a caller.
// The access path of the edge, seen from the resolver at the return site, is
// callDelta(usedAccessPathOfIncResolver(incAccessPath)).
type returnEdge[F constraints.Ordered, D, S, M comparable] struct {
	incFact       D
	incAccessPath AccessPath[F]
	// incResolver is the resolver of the fact at the exit of the callee. It is nil once the edge has been resolved
	// in the caller.
	incResolver Resolver[F, D, S, M]
	// resolverAtCaller is the resolver of the fact at the call site. It is nil for unbalanced returns.
	resolverAtCaller Resolver[F, D, S, M]
	// callDelta is the refinement of the callee analyzer's access path into the callee source fact
	callDelta Delta[F]
	// usedAccessPathOfIncResolver is the refinement already obtained from incResolver or resolverAtCaller
	usedAccessPathOfIncResolver Delta[F]
}

func newReturnEdge[F constraints.Ordered, D, S, M comparable](fact WrappedFact[F, D, S, M],
	resolverAtCaller Resolver[F, D, S, M], callDelta Delta[F]) *returnEdge[F, D, S, M] {
	return &returnEdge[F, D, S, M]{
		incFact:                     fact.fact,
		incAccessPath:               fact.accessPath,
		incResolver:                 fact.resolver,
		resolverAtCaller:            resolverAtCaller,
		callDelta:                   callDelta,
		usedAccessPathOfIncResolver: EmptyDelta[F](),
	}
}

type returnEdgeKey[F constraints.Ordered, D, S, M comparable] struct {
	incFact          D
	incAccessPath    string
	incResolver      Resolver[F, D, S, M]
	resolverAtCaller Resolver[F, D, S, M]
	callDelta        string
	used             string
}

func (e *returnEdge[F, D, S, M]) key() returnEdgeKey[F, D, S, M] {
	return returnEdgeKey[F, D, S, M]{
		incFact:          e.incFact,
		incAccessPath:    e.incAccessPath.Key(),
		incResolver:      e.incResolver,
		resolverAtCaller: e.resolverAtCaller,
		callDelta:        e.callDelta.Key(),
		used:             e.usedAccessPathOfIncResolver.Key(),
	}
}

// accessPathInCallee returns the access path of the returning fact, refined by what has been used so far
func (e *returnEdge[F, D, S, M]) accessPathInCallee() AccessPath[F] {
	return e.usedAccessPathOfIncResolver.ApplyTo(e.incAccessPath)
}

// composedAccessPath returns the access path of the edge in the caller, and false if the call delta cannot be
// applied to it
func (e *returnEdge[F, D, S, M]) composedAccessPath() (AccessPath[F], bool) {
	inCallee := e.accessPathInCallee()
	if !e.callDelta.CanBeAppliedTo(inCallee) {
		return AccessPath[F]{}, false
	}
	return e.callDelta.ApplyTo(inCallee), true
}

// withUsed returns a copy of the edge where the access path of the returning fact has been refined into refined
func (e *returnEdge[F, D, S, M]) withUsed(refined AccessPath[F]) *returnEdge[F, D, S, M] {
	c := *e
	c.usedAccessPathOfIncResolver = e.incAccessPath.DeltaTo(refined)
	return &c
}

// refinedBy returns a copy of the edge whose composed access path is refined by delta, now owned by resolver.
// The call delta is folded into the access path of the copy, so that delta extends the composed path.
func (e *returnEdge[F, D, S, M]) refinedBy(delta Delta[F], resolver Resolver[F, D, S, M]) *returnEdge[F, D, S, M] {
	if e.callDelta.IsEmpty() {
		refined := e.withUsed(delta.ApplyTo(e.accessPathInCallee()))
		refined.incResolver = resolver
		return refined
	}
	composed, _ := e.composedAccessPath()
	return &returnEdge[F, D, S, M]{
		incFact:                     e.incFact,
		incAccessPath:               composed,
		incResolver:                 resolver,
		resolverAtCaller:            e.resolverAtCaller,
		callDelta:                   EmptyDelta[F](),
		usedAccessPathOfIncResolver: delta,
	}
}

func (e *returnEdge[F, D, S, M]) String() string {
	return fmt.Sprintf("%v%s (used %s, call delta %s, inc %v, caller %v)", e.incFact, e.incAccessPath,
		e.usedAccessPathOfIncResolver, e.callDelta, e.incResolver, e.resolverAtCaller)
}

// ReturnSiteResolver merges the facts returning to a return site of a caller into one representative, and
// resolves refinements of that representative by asking the callee's resolvers or the resolvers at the call
// site.
type ReturnSiteResolver[F constraints.Ordered, D, S, M comparable] struct {
	*resolverTemplate[F, D, S, M, *returnEdge[F, D, S, M]]
	returnSite S
	propagated bool
	sourceFact D
}

func newReturnSiteResolver[F constraints.Ordered, D, S, M comparable](analyzer *PerAccessPathMethodAnalyzer[F, D, S, M],
	returnSite S) *ReturnSiteResolver[F, D, S, M] {
	r := &ReturnSiteResolver[F, D, S, M]{returnSite: returnSite}
	r.resolverTemplate = newResolverTemplate[F, D, S, M, *returnEdge[F, D, S, M]](analyzer, r, NewAccessPath[F](), nil)
	return r
}

// ReturnSite returns the statement the resolver is attached to
func (r *ReturnSiteResolver[F, D, S, M]) ReturnSite() S {
	return r.returnSite
}

// addIncomingReturn adds the fact returning with the resolver of the call site and the call delta
func (r *ReturnSiteResolver[F, D, S, M]) addIncomingReturn(fact WrappedFact[F, D, S, M],
	resolverAtCaller Resolver[F, D, S, M], callDelta Delta[F]) {
	r.addIncoming(newReturnEdge(fact, resolverAtCaller, callDelta))
}

func (r *ReturnSiteResolver[F, D, S, M]) accessPathOf(inc *returnEdge[F, D, S, M]) (AccessPath[F], bool) {
	return inc.composedAccessPath()
}

func (r *ReturnSiteResolver[F, D, S, M]) incomingKey(inc *returnEdge[F, D, S, M]) any {
	return inc.key()
}

func (r *ReturnSiteResolver[F, D, S, M]) processIncomingGuaranteedPrefix(inc *returnEdge[F, D, S, M]) {
	if r.propagated {
		r.analyzer.context.FactHandler.Merge(r.sourceFact, inc.incFact)
		return
	}
	r.propagated = true
	r.sourceFact = inc.incFact
	r.analyzer.scheduleEdgeTo(NewWrappedFactAtStatement(r.returnSite,
		NewWrappedFact[F, D, S, M](inc.incFact, NewAccessPath[F](), r)))
}

func (r *ReturnSiteResolver[F, D, S, M]) processIncomingPotentialPrefix(inc *returnEdge[F, D, S, M]) {
	r.analyzer.log("return site %s: incoming potential prefix %s", r, inc)
	r.resolveViaDelta(inc)
}

func (r *ReturnSiteResolver[F, D, S, M]) createNestedResolver(ap AccessPath[F]) incomingHandler[F, D, S, M, *returnEdge[F, D, S, M]] {
	nested := &ReturnSiteResolver[F, D, S, M]{returnSite: r.returnSite, propagated: true, sourceFact: r.sourceFact}
	nested.resolverTemplate = newResolverTemplate[F, D, S, M, *returnEdge[F, D, S, M]](r.analyzer, nested, ap,
		r.resolverTemplate)
	return nested
}

// resolveViaDelta asks the resolver of the returning fact for the refinement of the composed access path into the
// resolved access path. The call site is asked when that resolver only forwards to the callers, or when it is
// resolved empty.
func (r *ReturnSiteResolver[F, D, S, M]) resolveViaDelta(inc *returnEdge[F, D, S, M]) {
	if isNilOrCallEdgeResolver(inc.incResolver) {
		r.resolveViaCallSite(inc)
		return
	}
	composed, ok := inc.composedAccessPath()
	if !ok {
		return
	}
	delta := composed.DeltaTo(r.resolvedAccessPath)
	inc.incResolver.Resolve(DeltaConstraint[F]{Delta: delta}, &InterestFuncs[F, D, S, M]{
		OnInterest: func(_ *PerAccessPathMethodAnalyzer[F, D, S, M], resolver Resolver[F, D, S, M]) {
			r.addGrantedIncoming(inc.refinedBy(delta, resolver))
		},
		OnResolvedEmpty: func() {
			r.resolveViaCallSite(inc)
		},
	})
}

// resolveViaCallSite asks the resolver of the fact at the call site. The resolver is resolved empty when there
// is no such resolver, or when it can only forward the question to the callers.
func (r *ReturnSiteResolver[F, D, S, M]) resolveViaCallSite(inc *returnEdge[F, D, S, M]) {
	composed, ok := inc.composedAccessPath()
	if !ok {
		return
	}
	switch prefix := r.resolvedAccessPath.IsPrefixOf(composed); {
	case prefix == GuaranteedPrefix:
		r.addGrantedIncoming(inc)
	case composed.IsPrefixOf(r.resolvedAccessPath).AtLeast(PotentialPrefix):
		if isNilOrCallEdgeResolver(inc.resolverAtCaller) {
			r.canBeResolvedEmpty()
			return
		}
		delta := composed.DeltaTo(r.resolvedAccessPath)
		inc.resolverAtCaller.Resolve(DeltaConstraint[F]{Delta: delta}, &InterestFuncs[F, D, S, M]{
			OnInterest: func(_ *PerAccessPathMethodAnalyzer[F, D, S, M], resolver Resolver[F, D, S, M]) {
				refined := &returnEdge[F, D, S, M]{
					incFact:          inc.incFact,
					incAccessPath:    inc.incAccessPath,
					resolverAtCaller: resolver,
					callDelta:        EmptyDelta[F](),
				}
				refined.usedAccessPathOfIncResolver = inc.incAccessPath.DeltaTo(delta.ApplyTo(composed))
				r.addGrantedIncoming(refined)
			},
			OnResolvedEmpty: func() {
				r.canBeResolvedEmpty()
			},
		})
	}
}

func (r *ReturnSiteResolver[F, D, S, M]) String() string {
	return fmt.Sprintf("<ReturnSiteResolver %v %s>", r.returnSite, r.resolvedAccessPath)
}

// isNilOrCallEdgeResolver returns true if resolver is nil or a resolver of incoming call edges that is not a zero
// resolver
func isNilOrCallEdgeResolver[F constraints.Ordered, D, S, M comparable](resolver Resolver[F, D, S, M]) bool {
	switch resolver.(type) {
	case nil:
		return true
	case *CallEdgeResolver[F, D, S, M]:
		return true
	default:
		return false
	}
}
