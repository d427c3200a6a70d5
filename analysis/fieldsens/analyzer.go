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
)

// PerAccessPathMethodAnalyzer computes the facts reachable in one method from one source fact, for one access path
// of the source fact. Analyzers of more precise access paths are created on demand, when a caller shows interest
// in a refinement of the access path.
type PerAccessPathMethodAnalyzer[F constraints.Ordered, D, S, M comparable] struct {
	method     M
	sourceFact D
	accessPath AccessPath[F]
	context    *Context[F, D, S, M]
	parent     *PerAccessPathMethodAnalyzer[F, D, S, M]
	zeroSource bool

	callEdgeResolver edgeResolver[F, D, S, M]
	// zeroResolver owns the facts generated with an empty access path
	zeroResolver *ZeroCallEdgeResolver[F, D, S, M]

	// reachable maps the facts scheduled so far to their first scheduled copy
	reachable      map[reachKey[F, D, S, M]]WrappedFactAtStatement[F, D, S, M]
	reachableOrder []WrappedFactAtStatement[F, D, S, M]

	summaries    []WrappedFactAtStatement[F, D, S, M]
	summaryKeys  map[reachKey[F, D, S, M]]bool
	returnSites  *funcutil.DefaultMap[FactAtStatement[D, S], *ReturnSiteResolver[F, D, S, M]]
	flowJoins    *funcutil.DefaultMap[FactAtStatement[D, S], *ControlFlowJoinResolver[F, D, S, M]]
	jobsExecuted int
}

func newPerAccessPathMethodAnalyzer[F constraints.Ordered, D, S, M comparable](method M, sourceFact D,
	context *Context[F, D, S, M], accessPath AccessPath[F],
	parent *PerAccessPathMethodAnalyzer[F, D, S, M]) *PerAccessPathMethodAnalyzer[F, D, S, M] {
	var noMethod M
	if method == noMethod {
		panic(fmt.Errorf("analyzer of %v: %w", sourceFact, ErrNilMethod))
	}
	a := &PerAccessPathMethodAnalyzer[F, D, S, M]{
		method:      method,
		sourceFact:  sourceFact,
		accessPath:  accessPath,
		context:     context,
		parent:      parent,
		zeroSource:  sourceFact == context.ZeroValue,
		reachable:   map[reachKey[F, D, S, M]]WrappedFactAtStatement[F, D, S, M]{},
		summaryKeys: map[reachKey[F, D, S, M]]bool{},
	}
	a.returnSites = funcutil.NewDefaultMap(func(k FactAtStatement[D, S]) *ReturnSiteResolver[F, D, S, M] {
		return newReturnSiteResolver(a, k.Stmt)
	})
	a.flowJoins = funcutil.NewDefaultMap(func(k FactAtStatement[D, S]) *ControlFlowJoinResolver[F, D, S, M] {
		return newControlFlowJoinResolver(a, k.Stmt)
	})
	switch {
	case parent == nil && a.zeroSource:
		a.callEdgeResolver = newZeroCallEdgeResolver(a, context.ZeroHandler)
	case parent == nil:
		a.callEdgeResolver = newCallEdgeResolver[F, D, S, M](a, nil)
	default:
		a.callEdgeResolver = newCallEdgeResolver(a, parent.callEdgeResolver.(*CallEdgeResolver[F, D, S, M]))
	}
	context.register(a)
	return a
}

// Method returns the method analyzed
func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) Method() M { return a.method }

// SourceFact returns the fact the method is analyzed from
func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) SourceFact() D { return a.sourceFact }

// AccessPath returns the access path of the source fact
func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) AccessPath() AccessPath[F] { return a.accessPath }

// Parent returns the analyzer of the less precise access path this analyzer refines, or nil
func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) Parent() *PerAccessPathMethodAnalyzer[F, D, S, M] {
	return a.parent
}

// Summaries returns the facts that reached an exit statement of the method
func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) Summaries() []WrappedFactAtStatement[F, D, S, M] {
	return append([]WrappedFactAtStatement[F, D, S, M](nil), a.summaries...)
}

// Reachable returns the facts scheduled by the analyzer, in scheduling order
func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) Reachable() []WrappedFactAtStatement[F, D, S, M] {
	return append([]WrappedFactAtStatement[F, D, S, M](nil), a.reachableOrder...)
}

// CallEdgeResolver returns the resolver of the incoming call edges of the analyzer
func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) CallEdgeResolver() Resolver[F, D, S, M] {
	return a.callEdgeResolver
}

// zeroCallEdgeResolver returns the resolver of the facts generated with an empty access path in the analyzer.
// Analyzers of the zero fact use their call edge resolver.
func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) zeroCallEdgeResolver() *ZeroCallEdgeResolver[F, D, S, M] {
	if z, ok := a.callEdgeResolver.(*ZeroCallEdgeResolver[F, D, S, M]); ok {
		return z
	}
	if a.zeroResolver == nil {
		a.zeroResolver = newZeroCallEdgeResolver(a, a.context.ZeroHandler)
	}
	return a.zeroResolver
}

func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) String() string {
	return fmt.Sprintf("%v; %v%s", a.method, a.sourceFact, a.accessPath)
}

func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) log(format string, args ...any) {
	if a.context.Logger.LogsTrace() {
		a.context.Logger.Tracef("[%s: %s]", a, fmt.Sprintf(format, args...))
	}
}

func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) wrappedSource() WrappedFact[F, D, S, M] {
	return NewWrappedFact[F, D, S, M](a.sourceFact, a.accessPath, a.callEdgeResolver)
}

// createWithAccessPath returns a new analyzer of the same method and source fact, for ap
func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) createWithAccessPath(ap AccessPath[F]) *PerAccessPathMethodAnalyzer[F, D, S, M] {
	return newPerAccessPathMethodAnalyzer(a.method, a.sourceFact, a.context, ap, a)
}

// isBootStrapped returns true once the method has been entered. Analyzers of refined access paths never start
// at the start points: they continue the propagation where the refinement has been requested.
func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) isBootStrapped() bool {
	return a.callEdgeResolver.hasIncomingEdges() || !a.accessPath.IsEmpty()
}

func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) bootstrapAtMethodStartPoints() {
	a.callEdgeResolver.Interest()
	source := a.wrappedSource()
	for _, startPoint := range a.context.ICFG.StartPointsOf(a.method) {
		target := NewWrappedFactAtStatement(startPoint, source)
		if _, ok := a.reachable[target.reachKey()]; !ok {
			a.scheduleEdgeTo(target)
		}
	}
}

// AddIncomingEdge adds an edge from a caller. The first edge starts the analysis of the method.
func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) AddIncomingEdge(edge *CallEdge[F, D, S, M]) {
	if a.isBootStrapped() {
		a.context.FactHandler.Merge(a.sourceFact, edge.calleeSourceFact.fact)
	} else {
		a.bootstrapAtMethodStartPoints()
	}
	a.callEdgeResolver.template().addIncoming(edge)
}

// AddInitialSeed starts the analysis at stmt
func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) AddInitialSeed(stmt S) {
	a.log("initial seed at %v", stmt)
	a.scheduleEdgeTo(NewWrappedFactAtStatement(stmt, a.wrappedSource()))
}

// scheduleEdgeTo schedules the processing of fact, unless it has already been scheduled. In that case, the fact
// is merged with the scheduled copy.
func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) scheduleEdgeTo(fact WrappedFactAtStatement[F, D, S, M]) {
	key := fact.reachKey()
	if previous, ok := a.reachable[key]; ok {
		a.log("merging %s", fact)
		a.context.FactHandler.Merge(previous.fact, fact.fact)
		return
	}
	a.log("edge to %s", fact)
	a.reachable[key] = fact
	a.reachableOrder = append(a.reachableOrder, fact)
	a.context.Scheduler.Schedule(func() { a.processJob(fact) })
}

func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) scheduleEdgeToAll(targets []S, fact WrappedFact[F, D, S, M]) {
	for _, target := range targets {
		a.scheduleEdgeTo(NewWrappedFactAtStatement(target, fact))
	}
}

func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) processJob(fact WrappedFactAtStatement[F, D, S, M]) {
	a.jobsExecuted++
	icfg := a.context.ICFG
	if icfg.IsCallStmt(fact.stmt) {
		a.processCall(fact)
		return
	}
	if icfg.IsExitStmt(fact.stmt) {
		a.processExit(fact)
	}
	if len(icfg.SuccsOf(fact.stmt)) > 0 {
		a.processNormalFlow(fact)
	}
}

// isLoopStart returns true if the facts at stmt must be merged by a join resolver before being propagated
func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) isLoopStart(stmt S) bool {
	numPreds := len(a.context.ICFG.PredsOf(stmt))
	return (a.context.ICFG.IsStartPoint(stmt) && numPreds > 0) || numPreds > 1
}

func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) joinAt(fact WrappedFactAtStatement[F, D, S, M]) {
	a.flowJoins.GetOrCreate(fact.AsFactAtStatement()).addIncoming(fact.WrappedFact)
}

// processFlowFromJoinStmt propagates the representative of a join resolver
func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) processFlowFromJoinStmt(fact WrappedFactAtStatement[F, D, S, M]) {
	if a.context.ICFG.IsCallStmt(fact.stmt) {
		a.processNonJoiningCallToReturnFlow(fact)
	} else {
		a.processNormalNonJoiningFlow(fact)
	}
}

func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) processCall(fact WrappedFactAtStatement[F, D, S, M]) {
	icfg := a.context.ICFG
	for _, callee := range icfg.CalleesOfCallAt(fact.stmt) {
		flow := a.context.FlowFunctions.CallFlowFunction(fact.stmt, callee)
		targets := flow.ComputeTargets(fact.fact, NewAccessPathHandler(fact.accessPath, fact.resolver))
		if len(targets) == 0 {
			continue
		}
		calleeAnalyzer := a.context.Analyzer(callee)
		for _, target := range targets {
			a.warnIgnoredConstraint("call", target)
			calleeAnalyzer.AddIncomingEdge(NewCallEdge(a, fact, target.Fact))
		}
	}
	a.processCallToReturnEdge(fact)
}

func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) processCallToReturnEdge(fact WrappedFactAtStatement[F, D, S, M]) {
	if a.isLoopStart(fact.stmt) {
		a.joinAt(fact)
	} else {
		a.processNonJoiningCallToReturnFlow(fact)
	}
}

func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) processNonJoiningCallToReturnFlow(fact WrappedFactAtStatement[F, D, S, M]) {
	for _, returnSite := range a.context.ICFG.ReturnSitesOfCallAt(fact.stmt) {
		flow := a.context.FlowFunctions.CallToReturnFlowFunction(fact.stmt, returnSite)
		targets := flow.ComputeTargets(fact.fact, NewAccessPathHandler(fact.accessPath, fact.resolver))
		a.propagateTargets([]S{returnSite}, targets)
	}
}

func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) processNormalFlow(fact WrappedFactAtStatement[F, D, S, M]) {
	if a.isLoopStart(fact.stmt) {
		a.joinAt(fact)
	} else {
		a.processNormalNonJoiningFlow(fact)
	}
}

func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) processNormalNonJoiningFlow(fact WrappedFactAtStatement[F, D, S, M]) {
	successors := a.context.ICFG.SuccsOf(fact.stmt)
	flow := a.context.FlowFunctions.NormalFlowFunction(fact.stmt)
	targets := flow.ComputeTargets(fact.fact, NewAccessPathHandler(fact.accessPath, fact.resolver))
	a.propagateTargets(successors, targets)
}

// propagateTargets schedules the targets of an intraprocedural flow at each of the successors. A constrained
// target is first resolved against its own resolver; if that resolver cannot answer, the callers are asked through
// the call edge resolver of the method.
func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) propagateTargets(successors []S, targets []ConstrainedFact[F, D, S, M]) {
	for _, target := range targets {
		if target.Constraint == nil {
			a.scheduleEdgeToAll(successors, target.Fact)
			continue
		}
		target := target
		callback := &InterestFuncs[F, D, S, M]{}
		callback.OnInterest = func(analyzer *PerAccessPathMethodAnalyzer[F, D, S, M], resolver Resolver[F, D, S, M]) {
			analyzer.scheduleEdgeToAll(successors,
				NewWrappedFact(target.Fact.fact, target.Fact.accessPath, resolver))
		}
		callback.OnResolvedEmpty = func() {
			a.callEdgeResolver.Resolve(target.Constraint, callback)
		}
		target.Fact.resolver.Resolve(target.Constraint, callback)
	}
}

func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) warnIgnoredConstraint(kind string, target ConstrainedFact[F, D, S, M]) {
	if target.Constraint != nil {
		a.context.Logger.Debugf("[%s] constraint %s of %s flow target %s is not resolved", a, target.Constraint,
			kind, target.Fact)
	}
}

func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) processExit(fact WrappedFactAtStatement[F, D, S, M]) {
	key := fact.reachKey()
	if a.summaryKeys[key] {
		panic(fmt.Sprintf("assertion failed: exit fact %s already processed by %s", fact, a))
	}
	a.summaryKeys[key] = true
	a.summaries = append(a.summaries, fact)

	a.callEdgeResolver.applySummaries(fact)

	if !a.context.FollowReturnsPastSeeds || !a.zeroSource {
		return
	}
	icfg := a.context.ICFG
	callSites := icfg.CallersOf(a.method)
	for _, callSite := range callSites {
		callerAnalyzer := a.context.Analyzer(icfg.MethodOf(callSite))
		for _, returnSite := range icfg.ReturnSitesOfCallAt(callSite) {
			flow := a.context.FlowFunctions.ReturnFlowFunction(callSite, a.method, fact.stmt, returnSite)
			targets := flow.ComputeTargets(fact.fact, NewAccessPathHandler(fact.accessPath, fact.resolver))
			for _, target := range targets {
				a.warnIgnoredConstraint("return", target)
				callerAnalyzer.AddUnbalancedReturnFlow(NewWrappedFactAtStatement(returnSite, target.Fact), callSite)
			}
		}
	}
	// Without callers, the return flow function is still invoked for its side effects
	if len(callSites) == 0 {
		var noStmt S
		flow := a.context.FlowFunctions.ReturnFlowFunction(noStmt, a.method, fact.stmt, noStmt)
		flow.ComputeTargets(fact.fact, NewAccessPathHandler(fact.accessPath, fact.resolver))
	}
}

// applySummaries applies all the summaries collected so far to edge
func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) applySummaries(edge *CallEdge[F, D, S, M]) {
	for _, summary := range a.Summaries() {
		a.applySummary(edge, summary)
	}
}

// applySummary returns the exit fact to the return sites of the call edge
func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) applySummary(edge *CallEdge[F, D, S, M], exit WrappedFactAtStatement[F, D, S, M]) {
	callSite := edge.factAtCallSite.stmt
	for _, returnSite := range a.context.ICFG.ReturnSitesOfCallAt(callSite) {
		flow := a.context.FlowFunctions.ReturnFlowFunction(callSite, a.method, exit.stmt, returnSite)
		targets := flow.ComputeTargets(exit.fact, NewAccessPathHandler(exit.accessPath, exit.resolver))
		for _, target := range targets {
			a.warnIgnoredConstraint("return", target)
			a.context.FactHandler.RestoreCallingContext(target.Fact.fact, edge.factAtCallSite.fact)
			a.scheduleReturnEdge(edge, target.Fact, returnSite)
		}
	}
}

// scheduleReturnEdge adds fact to the return site resolver of the caller, with the refinement the callee source
// fact has with respect to the access path of the analyzer
func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) scheduleReturnEdge(edge *CallEdge[F, D, S, M], fact WrappedFact[F, D, S, M],
	returnSite S) {
	delta := a.accessPath.DeltaTo(edge.calleeSourceFact.accessPath)
	resolver := edge.callerAnalyzer.returnSites.GetOrCreate(FactAtStatement[D, S]{Fact: fact.fact, Stmt: returnSite})
	resolver.addIncomingReturn(fact, edge.factAtCallSite.resolver, delta)
}

// scheduleUnbalancedReturnEdgeTo adds a fact returning to a caller without a matching call edge
func (a *PerAccessPathMethodAnalyzer[F, D, S, M]) scheduleUnbalancedReturnEdgeTo(fact WrappedFactAtStatement[F, D, S, M]) {
	resolver := a.returnSites.GetOrCreate(fact.AsFactAtStatement())
	resolver.addIncomingReturn(fact.WrappedFact, nil, EmptyDelta[F]())
}
