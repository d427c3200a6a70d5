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
	"errors"
	"fmt"

	"github.com/awslabs/ar-go-fieldsens/analysis/config"
	"github.com/awslabs/ar-go-fieldsens/internal/funcutil"
	"golang.org/x/exp/constraints"
)

var (
	// ErrNilMethod is raised when a statement does not belong to any method. The zero value of the method type is
	// never a valid method.
	ErrNilMethod = errors.New("statement without method")

	// ErrInvalidProblem is returned when a problem lacks one of its collaborators
	ErrInvalidProblem = errors.New("invalid problem")
)

// Seed is a set of facts holding at a statement before the analysis starts
type Seed[D, S comparable] struct {
	Stmt  S
	Facts []D
}

// Problem is a field-sensitive dataflow problem
type Problem[F constraints.Ordered, D, S, M comparable] struct {
	ICFG          ICFG[S, M]
	FlowFunctions FlowFunctions[F, D, S, M]
	InitialSeeds  []Seed[D, S]

	// ZeroValue is the fact that holds everywhere. Its analyzers can follow returns past the seeds.
	ZeroValue D

	// ZeroHandler decides the refinements of facts generated with an empty access path. If nil, the access paths
	// are bounded by the max-access-path-length option.
	ZeroHandler ZeroHandler[F]
}

// Solver is a field-sensitive IFDS solver
type Solver[F constraints.Ordered, D, S, M comparable] struct {
	context *Context[F, D, S, M]
	logger  *config.LogGroup
	seeds   int
}

// Result is a fact that reached a statement
type Result[F constraints.Ordered, D, S, M comparable] struct {
	// Method, SourceFact and AnalyzerAccessPath identify the analyzer that reached the fact
	Method             M
	SourceFact         D
	AnalyzerAccessPath AccessPath[F]

	Stmt       S
	Fact       D
	AccessPath AccessPath[F]
}

func (r Result[F, D, S, M]) String() string {
	return fmt.Sprintf("%v%s @ %v [%v; %v%s]", r.Fact, r.AccessPath, r.Stmt, r.Method, r.SourceFact,
		r.AnalyzerAccessPath)
}

// NewSolver returns a solver of problem, with its initial seeds submitted. factHandler, debugger and scheduler may
// be nil, in which case merges are ignored, nothing is notified, and the solver uses its own scheduler. cfg may be
// nil, in which case the default configuration is used.
func NewSolver[F constraints.Ordered, D, S, M comparable](problem Problem[F, D, S, M], factHandler FactMergeHandler[D],
	debugger Debugger[S, M], scheduler *Scheduler, cfg *config.Config) (*Solver[F, D, S, M], error) {
	return newSolver(problem, factHandler, debugger, scheduler, cfg, nil)
}

func newSolver[F constraints.Ordered, D, S, M comparable](problem Problem[F, D, S, M], factHandler FactMergeHandler[D],
	debugger Debugger[S, M], scheduler *Scheduler, cfg *config.Config,
	newMethodAnalyzer func(*Context[F, D, S, M], M) MethodAnalyzer[F, D, S, M]) (*Solver[F, D, S, M], error) {
	if problem.ICFG == nil {
		return nil, fmt.Errorf("problem without ICFG: %w", ErrInvalidProblem)
	}
	if problem.FlowFunctions == nil {
		return nil, fmt.Errorf("problem without flow functions: %w", ErrInvalidProblem)
	}
	if v, ok := problem.ICFG.(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("invalid ICFG: %w", err)
		}
	}
	var noMethod M
	for _, seed := range problem.InitialSeeds {
		if problem.ICFG.MethodOf(seed.Stmt) == noMethod {
			return nil, fmt.Errorf("seed at %v: %w", seed.Stmt, ErrNilMethod)
		}
	}
	if cfg == nil {
		cfg = config.NewDefault()
	}
	if factHandler == nil {
		factHandler = NoopMergeHandler[D]{}
	}
	if debugger == nil {
		debugger = NullDebugger[S, M]{}
	}
	if scheduler == nil {
		scheduler = NewScheduler()
	}
	zeroHandler := problem.ZeroHandler
	if zeroHandler == nil {
		zeroHandler = MaxLengthZeroHandler[F]{Max: cfg.MaxAccessPathLength}
	}
	if newMethodAnalyzer == nil {
		newMethodAnalyzer = func(c *Context[F, D, S, M], method M) MethodAnalyzer[F, D, S, M] {
			return newMethodAnalyzerImpl(method, c)
		}
	}

	logger := config.NewLogGroup(cfg)
	context := &Context[F, D, S, M]{
		ICFG:                   problem.ICFG,
		Scheduler:              scheduler,
		FlowFunctions:          problem.FlowFunctions,
		ZeroValue:              problem.ZeroValue,
		FollowReturnsPastSeeds: cfg.FollowReturnsPastSeeds,
		FactHandler:            factHandler,
		ZeroHandler:            zeroHandler,
		Logger:                 logger,
		Debugger:               debugger,
	}
	context.methodAnalyzers = funcutil.NewDefaultMap(func(method M) MethodAnalyzer[F, D, S, M] {
		return newMethodAnalyzer(context, method)
	})
	debugger.SetICFG(problem.ICFG)

	s := &Solver[F, D, S, M]{context: context, logger: logger}
	for _, seed := range problem.InitialSeeds {
		s.AddInitialSeed(seed.Stmt, seed.Facts...)
	}
	return s, nil
}

// SetLogger replaces the logger of the solver and its analyzers
func (s *Solver[F, D, S, M]) SetLogger(logger *config.LogGroup) {
	s.logger = logger
	s.context.Logger = logger
}

// AddInitialSeed submits facts at stmt. Seeds can be added after the solver has run; the next call to Solve
// propagates them.
//
// AddInitialSeed panics with ErrNilMethod if stmt does not belong to a method.
func (s *Solver[F, D, S, M]) AddInitialSeed(stmt S, facts ...D) {
	method := s.context.ICFG.MethodOf(stmt)
	var noMethod M
	if method == noMethod {
		panic(fmt.Errorf("seed at %v: %w", stmt, ErrNilMethod))
	}
	for _, fact := range facts {
		s.seeds++
		s.logger.Debugf("initial seed %v at %v in %v", fact, stmt, method)
		s.context.Debugger.InitialSeed(stmt)
		s.context.Analyzer(method).AddInitialSeed(stmt, fact)
	}
}

// Solve runs the scheduler until all the jobs have been processed
func (s *Solver[F, D, S, M]) Solve() {
	before := s.context.Scheduler.Executed()
	s.context.Scheduler.RunAndAwaitCompletion()
	s.logger.Infof("solved %d seeds: %d jobs, %d analyzers", s.seeds,
		s.context.Scheduler.Executed()-before, len(s.context.analyzers))
}

// Analyzers returns every analyzer created by the solver
func (s *Solver[F, D, S, M]) Analyzers() []*PerAccessPathMethodAnalyzer[F, D, S, M] {
	return s.context.Analyzers()
}

// Results returns all the facts reached, per analyzer in creation order, and in scheduling order in each analyzer
func (s *Solver[F, D, S, M]) Results() []Result[F, D, S, M] {
	var results []Result[F, D, S, M]
	for _, a := range s.context.analyzers {
		for _, fact := range a.reachableOrder {
			results = append(results, Result[F, D, S, M]{
				Method:             a.method,
				SourceFact:         a.sourceFact,
				AnalyzerAccessPath: a.accessPath,
				Stmt:               fact.stmt,
				Fact:               fact.fact,
				AccessPath:         fact.accessPath,
			})
		}
	}
	return results
}

// ReachableAt returns the facts reached at stmt
func (s *Solver[F, D, S, M]) ReachableAt(stmt S) []Result[F, D, S, M] {
	return funcutil.Filter(s.Results(), func(r Result[F, D, S, M]) bool { return r.Stmt == stmt })
}

// Summaries returns the exit facts of method for source fact, for all the access paths of the source fact
func (s *Solver[F, D, S, M]) Summaries(method M, sourceFact D) []WrappedFactAtStatement[F, D, S, M] {
	var summaries []WrappedFactAtStatement[F, D, S, M]
	for _, a := range s.context.analyzers {
		if a.method == method && a.sourceFact == sourceFact {
			summaries = append(summaries, a.summaries...)
		}
	}
	return summaries
}
