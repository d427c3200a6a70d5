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

// Package icfg implements an interprocedural control flow graph built statement by statement. It is the ICFG of
// choice to test flow functions, or to solve problems whose program representation is not Go SSA.
package icfg

import (
	"errors"
	"fmt"

	"github.com/awslabs/ar-go-fieldsens/internal/graphutil"
)

// ErrInvalidGraph is returned by Validate when the graph is not consistent
var ErrInvalidGraph = errors.New("invalid ICFG")

// Graph is an interprocedural control flow graph over statements S and methods M.
// The return sites of a call are its intraprocedural successors.
type Graph[S, M comparable] struct {
	stmts       *graphutil.Digraph[S]
	methods     *graphutil.Digraph[M] // the call graph
	methodOf    map[S]M
	startPoints map[M][]S
	exits       map[S]bool
	calls       map[S][]M
	callers     map[M][]S
}

// New returns an empty graph
func New[S, M comparable]() *Graph[S, M] {
	return &Graph[S, M]{
		stmts:       graphutil.NewDigraph[S](),
		methods:     graphutil.NewDigraph[M](),
		methodOf:    map[S]M{},
		startPoints: map[M][]S{},
		exits:       map[S]bool{},
		calls:       map[S][]M{},
		callers:     map[M][]S{},
	}
}

// AddMethod adds method with a straight line body: each statement is followed by the next one, the first one is
// the start point of the method and the last one its exit.
func (g *Graph[S, M]) AddMethod(method M, stmts ...S) {
	g.methods.AddNode(method)
	for i, stmt := range stmts {
		g.AddStmt(method, stmt)
		if i > 0 {
			g.AddEdge(stmts[i-1], stmt)
		}
	}
	if len(stmts) > 0 {
		g.SetStartPoint(stmts[0])
		g.SetExit(stmts[len(stmts)-1])
	}
}

// AddStmt adds stmt to method
func (g *Graph[S, M]) AddStmt(method M, stmt S) {
	g.methods.AddNode(method)
	g.stmts.AddNode(stmt)
	g.methodOf[stmt] = method
}

// AddEdge adds an intraprocedural edge
func (g *Graph[S, M]) AddEdge(from, to S) {
	g.stmts.AddEdge(from, to)
}

// SetStartPoint marks stmt as a start point of its method
func (g *Graph[S, M]) SetStartPoint(stmt S) {
	method := g.methodOf[stmt]
	for _, s := range g.startPoints[method] {
		if s == stmt {
			return
		}
	}
	g.startPoints[method] = append(g.startPoints[method], stmt)
}

// SetExit marks stmt as an exit of its method
func (g *Graph[S, M]) SetExit(stmt S) {
	g.exits[stmt] = true
}

// AddCall marks call as a call to each of the callees
func (g *Graph[S, M]) AddCall(call S, callees ...M) {
	caller := g.methodOf[call]
	if _, ok := g.calls[call]; !ok {
		g.calls[call] = nil
	}
	for _, callee := range callees {
		g.calls[call] = append(g.calls[call], callee)
		g.callers[callee] = append(g.callers[callee], call)
		g.methods.AddEdge(caller, callee)
	}
}

// Methods returns the methods of the graph, in insertion order
func (g *Graph[S, M]) Methods() []M {
	return g.methods.Nodes()
}

// SuccsOf returns the intraprocedural successors of stmt
func (g *Graph[S, M]) SuccsOf(stmt S) []S { return g.stmts.Successors(stmt) }

// PredsOf returns the intraprocedural predecessors of stmt
func (g *Graph[S, M]) PredsOf(stmt S) []S { return g.stmts.Predecessors(stmt) }

// IsCallStmt returns true if stmt has been added as a call
func (g *Graph[S, M]) IsCallStmt(stmt S) bool {
	_, ok := g.calls[stmt]
	return ok
}

// IsExitStmt returns true if stmt is an exit of its method
func (g *Graph[S, M]) IsExitStmt(stmt S) bool { return g.exits[stmt] }

// IsStartPoint returns true if stmt is a start point of its method
func (g *Graph[S, M]) IsStartPoint(stmt S) bool {
	method, ok := g.methodOf[stmt]
	if !ok {
		return false
	}
	for _, s := range g.startPoints[method] {
		if s == stmt {
			return true
		}
	}
	return false
}

// StartPointsOf returns the start points of method
func (g *Graph[S, M]) StartPointsOf(method M) []S { return g.startPoints[method] }

// CalleesOfCallAt returns the callees of call
func (g *Graph[S, M]) CalleesOfCallAt(call S) []M { return g.calls[call] }

// ReturnSitesOfCallAt returns the successors of call
func (g *Graph[S, M]) ReturnSitesOfCallAt(call S) []S { return g.stmts.Successors(call) }

// CallersOf returns the calls to method
func (g *Graph[S, M]) CallersOf(method M) []S { return g.callers[method] }

// MethodOf returns the method of stmt, or the zero value of M if stmt is unknown
func (g *Graph[S, M]) MethodOf(stmt S) M { return g.methodOf[stmt] }

// RecursiveMethods returns the methods that may call themselves, directly or not, in insertion order
func (g *Graph[S, M]) RecursiveMethods() []M {
	return g.methods.Cyclic()
}

// Validate returns an error wrapping ErrInvalidGraph if a method has no start point, if an edge leaves a method,
// if a method is called but has no statement, or if a statement cannot be reached from the start points of its
// method.
func (g *Graph[S, M]) Validate() error {
	var errs []error
	hasStmts := map[M]bool{}
	for _, stmt := range g.stmts.Nodes() {
		method, ok := g.methodOf[stmt]
		if !ok {
			errs = append(errs, fmt.Errorf("statement %v has no method: %w", stmt, ErrInvalidGraph))
			continue
		}
		hasStmts[method] = true
		for _, succ := range g.stmts.Successors(stmt) {
			if g.methodOf[succ] != method {
				errs = append(errs, fmt.Errorf("edge %v -> %v leaves method %v: %w", stmt, succ, method,
					ErrInvalidGraph))
			}
		}
	}
	for _, method := range g.methods.Nodes() {
		if !hasStmts[method] {
			// methods without body are external: they are never entered
			continue
		}
		starts := g.startPoints[method]
		if len(starts) == 0 {
			errs = append(errs, fmt.Errorf("method %v has no start point: %w", method, ErrInvalidGraph))
			continue
		}
		reached := g.stmts.Reachable(starts)
		for _, stmt := range g.stmts.Nodes() {
			if g.methodOf[stmt] == method && !reached[stmt] {
				errs = append(errs, fmt.Errorf("statement %v is unreachable in %v: %w", stmt, method,
					ErrInvalidGraph))
			}
		}
	}
	return errors.Join(errs...)
}

// Backwards returns the reversed graph. The start points of the reversed graph are the exits of the graph, and
// the return sites of a call are its predecessors.
func (g *Graph[S, M]) Backwards() *Backward[S, M] {
	return &Backward[S, M]{g: g}
}

// Backward is the reversed view of a Graph
type Backward[S, M comparable] struct {
	g *Graph[S, M]
}

// SuccsOf returns the predecessors of stmt in the graph
func (b *Backward[S, M]) SuccsOf(stmt S) []S { return b.g.PredsOf(stmt) }

// PredsOf returns the successors of stmt in the graph
func (b *Backward[S, M]) PredsOf(stmt S) []S { return b.g.SuccsOf(stmt) }

// IsCallStmt returns true if stmt is a call
func (b *Backward[S, M]) IsCallStmt(stmt S) bool { return b.g.IsCallStmt(stmt) }

// IsExitStmt returns true if stmt is a start point in the graph
func (b *Backward[S, M]) IsExitStmt(stmt S) bool { return b.g.IsStartPoint(stmt) }

// IsStartPoint returns true if stmt is an exit in the graph
func (b *Backward[S, M]) IsStartPoint(stmt S) bool { return b.g.IsExitStmt(stmt) }

// StartPointsOf returns the exits of method in the graph
func (b *Backward[S, M]) StartPointsOf(method M) []S {
	var exits []S
	for _, stmt := range b.g.stmts.Nodes() {
		if b.g.exits[stmt] && b.g.methodOf[stmt] == method {
			exits = append(exits, stmt)
		}
	}
	return exits
}

// CalleesOfCallAt returns the callees of call
func (b *Backward[S, M]) CalleesOfCallAt(call S) []M { return b.g.CalleesOfCallAt(call) }

// ReturnSitesOfCallAt returns the predecessors of call in the graph
func (b *Backward[S, M]) ReturnSitesOfCallAt(call S) []S { return b.g.PredsOf(call) }

// CallersOf returns the calls to method
func (b *Backward[S, M]) CallersOf(method M) []S { return b.g.CallersOf(method) }

// MethodOf returns the method of stmt
func (b *Backward[S, M]) MethodOf(stmt S) M { return b.g.MethodOf(stmt) }
