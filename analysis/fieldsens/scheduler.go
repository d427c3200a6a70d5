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

// Scheduler is the worklist of the solvers. Jobs are run in last-in first-out order, which explores the program
// depth-first. Several solvers may share a scheduler.
type Scheduler struct {
	worklist []func()
	executed int
}

// NewScheduler returns an empty scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Schedule adds job to the worklist
func (s *Scheduler) Schedule(job func()) {
	s.worklist = append(s.worklist, job)
}

// RunAndAwaitCompletion runs the most recently scheduled job until the worklist is empty, including the jobs
// scheduled by the jobs run.
func (s *Scheduler) RunAndAwaitCompletion() {
	for len(s.worklist) > 0 {
		last := len(s.worklist) - 1
		job := s.worklist[last]
		s.worklist[last] = nil
		s.worklist = s.worklist[:last]
		job()
		s.executed++
	}
}

// Pending returns the number of jobs waiting in the worklist
func (s *Scheduler) Pending() int {
	return len(s.worklist)
}

// Executed returns the number of jobs run so far
func (s *Scheduler) Executed() int {
	return s.executed
}
