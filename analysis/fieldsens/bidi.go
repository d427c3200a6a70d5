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
	"github.com/awslabs/ar-go-fieldsens/analysis/config"
	"golang.org/x/exp/constraints"
)

// BiDiSolver pairs a forward and a backward solver on one scheduler. A fact leaving its seeded method in one
// direction only propagates into the callers once the other direction has also left the method from the same
// source statement.
type BiDiSolver[F constraints.Ordered, D, S, M comparable] struct {
	forward   *Solver[F, D, S, M]
	backward  *Solver[F, D, S, M]
	scheduler *Scheduler

	forwardSync  *synchronizer[S]
	backwardSync *synchronizer[S]
}

// NewBiDiSolver returns the pair of solvers of forward and backward. sourceStmtOf returns the statement where a
// fact originates; it is used to match the unbalanced returns of both directions.
// The configuration usually sets follow-returns-past-seeds, since otherwise no unbalanced return is synchronized.
func NewBiDiSolver[F constraints.Ordered, D, S, M comparable](forward, backward Problem[F, D, S, M],
	factHandler FactMergeHandler[D], debugger Debugger[S, M], scheduler *Scheduler, cfg *config.Config,
	sourceStmtOf func(D) S) (*BiDiSolver[F, D, S, M], error) {
	if scheduler == nil {
		scheduler = NewScheduler()
	}
	b := &BiDiSolver[F, D, S, M]{
		scheduler:    scheduler,
		forwardSync:  newSynchronizer[S](),
		backwardSync: newSynchronizer[S](),
	}
	b.forwardSync.other = b.backwardSync
	b.backwardSync.other = b.forwardSync

	annotated := func(sync *synchronizer[S]) func(*Context[F, D, S, M], M) MethodAnalyzer[F, D, S, M] {
		return func(c *Context[F, D, S, M], method M) MethodAnalyzer[F, D, S, M] {
			return NewSourceStmtAnnotatedMethodAnalyzer[F, D, S, M](method, c, sync, sourceStmtOf)
		}
	}
	var err error
	b.forward, err = newSolver(forward, factHandler, debugger, scheduler, cfg, annotated(b.forwardSync))
	if err != nil {
		return nil, err
	}
	b.backward, err = newSolver(backward, factHandler, debugger, scheduler, cfg, annotated(b.backwardSync))
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Forward returns the forward solver
func (b *BiDiSolver[F, D, S, M]) Forward() *Solver[F, D, S, M] { return b.forward }

// Backward returns the backward solver
func (b *BiDiSolver[F, D, S, M]) Backward() *Solver[F, D, S, M] { return b.backward }

// Solve runs both directions until the shared scheduler is empty
func (b *BiDiSolver[F, D, S, M]) Solve() {
	before := b.scheduler.Executed()
	b.scheduler.RunAndAwaitCompletion()
	b.forward.logger.Infof("bidirectional solve: %d jobs, %d paused in forward direction, %d in backward direction",
		b.scheduler.Executed()-before, b.forwardSync.paused(), b.backwardSync.paused())
}

// PausedReturns returns the number of unbalanced returns of each direction waiting for the other direction
func (b *BiDiSolver[F, D, S, M]) PausedReturns() (forward int, backward int) {
	return b.forwardSync.paused(), b.backwardSync.paused()
}

// synchronizer tracks the source statements whose facts have left their method in one direction
type synchronizer[S comparable] struct {
	leakedSources map[S]bool
	pausedJobs    map[S][]func()
	other         *synchronizer[S]
}

func newSynchronizer[S comparable]() *synchronizer[S] {
	return &synchronizer[S]{leakedSources: map[S]bool{}, pausedJobs: map[S][]func(){}}
}

// SynchronizeReturn runs job if the other direction has leaked sourceStmt, together with all the jobs the other
// direction paused at sourceStmt. Otherwise, job is paused until the other direction leaks sourceStmt.
func (s *synchronizer[S]) SynchronizeReturn(sourceStmt S, job func()) {
	s.leakedSources[sourceStmt] = true
	if !s.other.leakedSources[sourceStmt] {
		s.pausedJobs[sourceStmt] = append(s.pausedJobs[sourceStmt], job)
		return
	}
	job()
	paused := s.other.pausedJobs[sourceStmt]
	delete(s.other.pausedJobs, sourceStmt)
	for _, pausedJob := range paused {
		pausedJob()
	}
}

func (s *synchronizer[S]) paused() int {
	n := 0
	for _, jobs := range s.pausedJobs {
		n += len(jobs)
	}
	return n
}
