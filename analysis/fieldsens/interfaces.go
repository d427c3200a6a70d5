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
)

// ICFG is the interprocedural control flow graph the solver runs on. S is the type of statements, M the type of
// methods.
type ICFG[S, M comparable] interface {
	// SuccsOf returns the intraprocedural successors of stmt
	SuccsOf(stmt S) []S

	// PredsOf returns the intraprocedural predecessors of stmt
	PredsOf(stmt S) []S

	// IsCallStmt returns true if stmt is a call
	IsCallStmt(stmt S) bool

	// IsExitStmt returns true if stmt exits its method
	IsExitStmt(stmt S) bool

	// IsStartPoint returns true if stmt is a start point of its method
	IsStartPoint(stmt S) bool

	// StartPointsOf returns the start points of method
	StartPointsOf(method M) []S

	// CalleesOfCallAt returns the methods called at the call statement
	CalleesOfCallAt(call S) []M

	// ReturnSitesOfCallAt returns the statements where execution resumes after the call
	ReturnSitesOfCallAt(call S) []S

	// CallersOf returns the call statements calling method
	CallersOf(method M) []S

	// MethodOf returns the method containing stmt
	MethodOf(stmt S) M
}

// Validator is implemented by collaborators that can check their own consistency before a solver runs on them.
type Validator interface {
	Validate() error
}

// FlowFunction computes the facts generated from a source fact. The handler gives access to the access path of the
// source fact, and builds the results.
type FlowFunction[F constraints.Ordered, D, S, M comparable] interface {
	ComputeTargets(source D, handler *AccessPathHandler[F, D, S, M]) []ConstrainedFact[F, D, S, M]
}

// FlowFunctionFunc adapts a function to the FlowFunction interface
type FlowFunctionFunc[F constraints.Ordered, D, S, M comparable] func(source D,
	handler *AccessPathHandler[F, D, S, M]) []ConstrainedFact[F, D, S, M]

// ComputeTargets calls f
func (f FlowFunctionFunc[F, D, S, M]) ComputeTargets(source D,
	handler *AccessPathHandler[F, D, S, M]) []ConstrainedFact[F, D, S, M] {
	return f(source, handler)
}

// FlowFunctions is the factory of flow functions, per kind of edge.
type FlowFunctions[F constraints.Ordered, D, S, M comparable] interface {
	// NormalFlowFunction returns the flow function of intraprocedural edges out of curr
	NormalFlowFunction(curr S) FlowFunction[F, D, S, M]

	// CallFlowFunction returns the flow function mapping facts at callStmt into the callee
	CallFlowFunction(callStmt S, callee M) FlowFunction[F, D, S, M]

	// ReturnFlowFunction returns the flow function mapping facts at the exit of the callee back to returnSite.
	// When a fact returns past its seed from a method that has no caller, callSite and returnSite are the zero
	// value of S.
	ReturnFlowFunction(callSite S, callee M, exitStmt S, returnSite S) FlowFunction[F, D, S, M]

	// CallToReturnFlowFunction returns the flow function of facts that flow over the call, from callSite to
	// returnSite
	CallToReturnFlowFunction(callSite S, returnSite S) FlowFunction[F, D, S, M]
}

// FactMergeHandler is notified when facts are merged, and when a fact returns into its calling context.
type FactMergeHandler[D any] interface {
	// Merge is called when current reaches a point where previous has already been propagated
	Merge(previous D, current D)

	// RestoreCallingContext is called on the fact returning to a return site, with the fact that held at the call
	// site
	RestoreCallingContext(atReturnSite D, atCallSite D)
}

// NoopMergeHandler is a FactMergeHandler that ignores all notifications
type NoopMergeHandler[D any] struct{}

// Merge does nothing
func (NoopMergeHandler[D]) Merge(D, D) {}

// RestoreCallingContext does nothing
func (NoopMergeHandler[D]) RestoreCallingContext(D, D) {}

// ZeroHandler decides which access paths may be generated from facts with an empty access path that are not rooted
// in a caller (see AccessPathHandler.GenerateWithEmptyAccessPath).
type ZeroHandler[F constraints.Ordered] interface {
	ShouldGenerateAccessPath(ap AccessPath[F]) bool
}

// ZeroHandlerFunc adapts a predicate to the ZeroHandler interface
type ZeroHandlerFunc[F constraints.Ordered] func(ap AccessPath[F]) bool

// ShouldGenerateAccessPath calls f
func (f ZeroHandlerFunc[F]) ShouldGenerateAccessPath(ap AccessPath[F]) bool {
	return f(ap)
}

// MaxLengthZeroHandler accepts every access path with at most Max accesses. If Max <= 0, all access paths are
// accepted.
type MaxLengthZeroHandler[F constraints.Ordered] struct {
	Max int
}

// ShouldGenerateAccessPath returns true if the length of ap does not exceed the maximum
func (z MaxLengthZeroHandler[F]) ShouldGenerateAccessPath(ap AccessPath[F]) bool {
	return z.Max <= 0 || ap.Len() <= z.Max
}
