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

	"github.com/awslabs/ar-go-fieldsens/internal/funcutil"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// incomingHandler is implemented by the resolvers built on a resolverTemplate. I is the type of incoming edges the
// resolver accumulates.
type incomingHandler[F constraints.Ordered, D, S, M comparable, I any] interface {
	Resolver[F, D, S, M]

	// accessPathOf returns the access path an incoming edge carries. It returns false when the edge cannot be
	// compared with the resolved access path.
	accessPathOf(inc I) (AccessPath[F], bool)

	// incomingKey returns a comparable value identifying inc
	incomingKey(inc I) any

	processIncomingGuaranteedPrefix(inc I)

	processIncomingPotentialPrefix(inc I)

	createNestedResolver(ap AccessPath[F]) incomingHandler[F, D, S, M, I]

	template() *resolverTemplate[F, D, S, M, I]
}

// resolverTemplate implements the bookkeeping common to all resolvers: recording incoming edges whose access path
// is guaranteed to be refined by the resolved access path, and memoizing nested resolvers for refinements.
type resolverTemplate[F constraints.Ordered, D, S, M comparable, I any] struct {
	resolverState[F, D, S, M]

	handler incomingHandler[F, D, S, M, I]

	// parent is the less refined resolver this one specializes, nil for roots
	parent *resolverTemplate[F, D, S, M, I]

	resolvedAccessPath AccessPath[F]

	// nestedResolvers are indexed by AccessPath.Key
	nestedResolvers *funcutil.DefaultMap[string, incomingHandler[F, D, S, M, I]]

	// exclusionHierarchy is shared among resolvers that only differ by exclusions, so that excluding g then f
	// yields the same resolver as excluding f then g
	exclusionHierarchy *funcutil.DefaultMap[string, incomingHandler[F, D, S, M, I]]

	incoming     []I
	incomingKeys map[any]bool

	recursionLock bool
}

func newResolverTemplate[F constraints.Ordered, D, S, M comparable, I any](
	analyzer *PerAccessPathMethodAnalyzer[F, D, S, M],
	handler incomingHandler[F, D, S, M, I],
	resolvedAccessPath AccessPath[F],
	parent *resolverTemplate[F, D, S, M, I]) *resolverTemplate[F, D, S, M, I] {
	t := &resolverTemplate[F, D, S, M, I]{
		resolverState: resolverState[F, D, S, M]{
			analyzer: analyzer,
			self:     handler,
		},
		handler:            handler,
		parent:             parent,
		resolvedAccessPath: resolvedAccessPath,
		nestedResolvers:    funcutil.NewDefaultMap[string, incomingHandler[F, D, S, M, I]](nil),
		incomingKeys:       map[any]bool{},
	}
	if parent == nil || len(resolvedAccessPath.exclusions) == 0 {
		t.exclusionHierarchy = funcutil.NewDefaultMap[string, incomingHandler[F, D, S, M, I]](nil)
	} else {
		t.exclusionHierarchy = parent.exclusionHierarchy
	}
	return t
}

func (t *resolverTemplate[F, D, S, M, I]) template() *resolverTemplate[F, D, S, M, I] {
	return t
}

// ResolvedAccessPath returns the access path the resolver is responsible for
func (t *resolverTemplate[F, D, S, M, I]) ResolvedAccessPath() AccessPath[F] {
	return t.resolvedAccessPath
}

// Interest gives interest
func (t *resolverTemplate[F, D, S, M, I]) Interest() {
	t.giveInterest()
}

// isLocked returns true if the resolver or one of its ancestors is locked
func (t *resolverTemplate[F, D, S, M, I]) isLocked() bool {
	for cur := t; cur != nil; cur = cur.parent {
		if cur.recursionLock {
			return true
		}
	}
	return false
}

// lock locks the resolver and its ancestors
func (t *resolverTemplate[F, D, S, M, I]) lock() {
	for cur := t; cur != nil; cur = cur.parent {
		cur.recursionLock = true
	}
}

// unlock unlocks the resolver and its ancestors
func (t *resolverTemplate[F, D, S, M, I]) unlock() {
	for cur := t; cur != nil; cur = cur.parent {
		cur.recursionLock = false
	}
}

// recordIncoming records inc, and returns false if it was already recorded
func (t *resolverTemplate[F, D, S, M, I]) recordIncoming(inc I) bool {
	k := t.handler.incomingKey(inc)
	if t.incomingKeys[k] {
		return false
	}
	t.incomingKeys[k] = true
	t.incoming = append(t.incoming, inc)
	return true
}

func (t *resolverTemplate[F, D, S, M, I]) hasIncomingEdges() bool {
	return len(t.incoming) > 0
}

// addIncoming processes a new incoming edge. Edges whose access path is refined by the resolved access path are
// recorded, give interest and are propagated to the nested resolvers. Edges that may be refined into the resolved
// access path are handed to the resolver-specific processing.
func (t *resolverTemplate[F, D, S, M, I]) addIncoming(inc I) {
	incAccessPath, ok := t.handler.accessPathOf(inc)
	if !ok {
		return
	}
	if t.resolvedAccessPath.IsPrefixOf(incAccessPath) == GuaranteedPrefix {
		if !t.recordIncoming(inc) {
			return
		}
		t.analyzer.log("incoming edge %v at %s", inc, t.handler)
		t.handler.Interest()
		for _, nested := range t.nestedResolvers.Values() {
			nested.template().addIncoming(inc)
		}
		t.handler.processIncomingGuaranteedPrefix(inc)
	} else if incAccessPath.IsPrefixOf(t.resolvedAccessPath).AtLeast(PotentialPrefix) {
		t.handler.processIncomingPotentialPrefix(inc)
	}
}

// Resolve registers callback on the nested resolver for the refinement of the resolved access path by
// constraint. Nothing happens if the constraint cannot be applied, or if the resolver is locked.
func (t *resolverTemplate[F, D, S, M, I]) Resolve(constraint Constraint[F], callback InterestCallback[F, D, S, M]) {
	t.analyzer.log("resolve %s at %s", constraint, t.handler)
	if !constraint.CanBeAppliedTo(t.resolvedAccessPath) || t.isLocked() {
		return
	}
	refined := constraint.ApplyToAccessPath(t.resolvedAccessPath)
	nested := t.getOrCreateNestedResolver(refined)
	if !nested.ResolvedAccessPath().Equal(refined) {
		panic(fmt.Sprintf("assertion failed: nested resolver of %s for %s resolves %s",
			t.handler, refined, nested.ResolvedAccessPath()))
	}
	nested.registerCallback(callback)
}

// getOrCreateNestedResolver returns the resolver of refined. A new resolver is seeded with all the incoming edges
// recorded so far.
func (t *resolverTemplate[F, D, S, M, I]) getOrCreateNestedResolver(refined AccessPath[F]) incomingHandler[F, D, S, M, I] {
	if t.resolvedAccessPath.Equal(refined) {
		return t.handler
	}
	key := refined.Key()
	if nested, ok := t.nestedResolvers.Get(key); ok {
		return nested
	}
	if delta := t.resolvedAccessPath.DeltaTo(refined); len(delta.accesses) > 1 {
		panic(fmt.Sprintf("assertion failed: %s refines %s by more than one access", refined, t.resolvedAccessPath))
	}
	if shared, ok := t.exclusionHierarchy.Get(key); ok {
		return shared
	}
	nested := t.handler.createNestedResolver(refined)
	if len(t.resolvedAccessPath.exclusions) > 0 || len(refined.exclusions) > 0 {
		t.exclusionHierarchy.Put(key, nested)
	}
	t.nestedResolvers.Put(key, nested)
	for _, inc := range slices.Clone(t.incoming) {
		nested.template().addIncoming(inc)
	}
	return nested
}

// addGrantedIncoming records an incoming edge that has been refined by a resolution granted elsewhere, gives
// interest, and propagates the edge to the nested resolvers.
func (t *resolverTemplate[F, D, S, M, I]) addGrantedIncoming(inc I) {
	recorded := t.recordIncoming(inc)
	t.handler.Interest()
	if recorded {
		for _, nested := range t.nestedResolvers.Values() {
			nested.template().addIncoming(inc)
		}
	}
}
