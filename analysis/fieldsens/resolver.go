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
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Resolver lazily determines whether some consumer is interested in a refinement of an access path.
//
// Interest is a monotonic state: once given, it is never retracted. Independently, a resolver can be resolved
// empty, which means no further refinement is possible through it and the question must be asked elsewhere.
type Resolver[F constraints.Ordered, D, S, M comparable] interface {
	// Resolve registers callback on the resolver of the refinement of the resolved access path by constraint.
	// The callback may be called synchronously.
	Resolve(constraint Constraint[F], callback InterestCallback[F, D, S, M])

	// Interest marks the resolver as interested, and notifies all the callbacks waiting for interest
	Interest()

	// ResolvedAccessPath returns the access path the resolver is responsible for
	ResolvedAccessPath() AccessPath[F]

	// Analyzer returns the analyzer owning the resolver
	Analyzer() *PerAccessPathMethodAnalyzer[F, D, S, M]

	// IsInterestGiven returns true once the resolver is interested
	IsInterestGiven() bool

	// IsResolvedEmpty returns true once the resolver has been resolved empty
	IsResolvedEmpty() bool

	String() string

	registerCallback(callback InterestCallback[F, D, S, M])
}

// InterestCallback is notified of the outcome of a resolution. Each method is called at most once per
// registration.
type InterestCallback[F constraints.Ordered, D, S, M comparable] interface {
	// Interest is called when resolver, owned by analyzer, becomes interested
	Interest(analyzer *PerAccessPathMethodAnalyzer[F, D, S, M], resolver Resolver[F, D, S, M])

	// CanBeResolvedEmpty is called when the resolution cannot be answered by the resolver
	CanBeResolvedEmpty()
}

// InterestFuncs implements InterestCallback with functions. Nil functions are ignored.
type InterestFuncs[F constraints.Ordered, D, S, M comparable] struct {
	OnInterest      func(analyzer *PerAccessPathMethodAnalyzer[F, D, S, M], resolver Resolver[F, D, S, M])
	OnResolvedEmpty func()
}

// Interest calls OnInterest
func (f *InterestFuncs[F, D, S, M]) Interest(analyzer *PerAccessPathMethodAnalyzer[F, D, S, M],
	resolver Resolver[F, D, S, M]) {
	if f.OnInterest != nil {
		f.OnInterest(analyzer, resolver)
	}
}

// CanBeResolvedEmpty calls OnResolvedEmpty
func (f *InterestFuncs[F, D, S, M]) CanBeResolvedEmpty() {
	if f.OnResolvedEmpty != nil {
		f.OnResolvedEmpty()
	}
}

// resolverState implements the two state axes of a resolver and the queue of callbacks
type resolverState[F constraints.Ordered, D, S, M comparable] struct {
	analyzer *PerAccessPathMethodAnalyzer[F, D, S, M]

	// self is the concrete resolver, handed to the callbacks
	self Resolver[F, D, S, M]

	interest      bool
	resolvedEmpty bool

	// callbacks waiting for at least one of the two transitions, in registration order
	callbacks []InterestCallback[F, D, S, M]
}

// Analyzer returns the analyzer owning the resolver
func (r *resolverState[F, D, S, M]) Analyzer() *PerAccessPathMethodAnalyzer[F, D, S, M] {
	return r.analyzer
}

// IsInterestGiven returns true once the resolver is interested
func (r *resolverState[F, D, S, M]) IsInterestGiven() bool {
	return r.interest
}

// IsResolvedEmpty returns true once the resolver has been resolved empty
func (r *resolverState[F, D, S, M]) IsResolvedEmpty() bool {
	return r.resolvedEmpty
}

// giveInterest performs the interest transition
func (r *resolverState[F, D, S, M]) giveInterest() {
	if r.interest {
		return
	}
	r.analyzer.log("interest given by %s", r.self)
	r.interest = true
	for _, callback := range slices.Clone(r.callbacks) {
		callback.Interest(r.analyzer, r.self)
	}
	if r.resolvedEmpty {
		r.callbacks = nil
	}
}

// canBeResolvedEmpty performs the resolved-empty transition
func (r *resolverState[F, D, S, M]) canBeResolvedEmpty() {
	if r.resolvedEmpty {
		return
	}
	r.analyzer.log("%s resolved empty", r.self)
	r.resolvedEmpty = true
	for _, callback := range slices.Clone(r.callbacks) {
		callback.CanBeResolvedEmpty()
	}
	if r.interest {
		r.callbacks = nil
	}
}

func (r *resolverState[F, D, S, M]) registerCallback(callback InterestCallback[F, D, S, M]) {
	interested, empty := r.interest, r.resolvedEmpty
	if !interested || !empty {
		r.callbacks = append(r.callbacks, callback)
	}
	if interested {
		callback.Interest(r.analyzer, r.self)
	}
	if empty {
		callback.CanBeResolvedEmpty()
	}
}
