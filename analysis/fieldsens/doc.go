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

/*
Package fieldsens implements a field-sensitive IFDS solver.

Facts are tracked together with an [AccessPath]: the sequence of fields of the fact that is of interest, and the
fields that are known not to be. Analyzers of methods start with the least precise access path, and flow functions
that need more precision than available return facts with a [Constraint]. The constraint is resolved lazily: a
[Resolver] is asked whether some caller is interested in the refinement, and the fact is only propagated when
interest is given. Methods are summarized once per source fact and access path, and summaries are replayed to every
call edge.

A [Solver] is built from a [Problem], which provides the interprocedural control flow graph ([ICFG]), the
[FlowFunctions] and the initial seeds:

	solver, err := fieldsens.NewSolver(problem, nil, nil, nil, cfg)
	if err != nil {
		return err
	}
	solver.Solve()
	for _, result := range solver.Results() {
		...
	}

A [BiDiSolver] pairs a forward and a backward solver, synchronizing the facts returning past their seeds.

The solvers are single-threaded: a solver and its scheduler must not be used concurrently.
*/
package fieldsens
