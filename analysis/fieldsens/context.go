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
	"github.com/awslabs/ar-go-fieldsens/internal/funcutil"
	"golang.org/x/exp/constraints"
)

// Context holds the state shared by all the analyzers of a solver. It is built once per solver, and lives as long
// as the solver.
type Context[F constraints.Ordered, D, S, M comparable] struct {
	ICFG                   ICFG[S, M]
	Scheduler              *Scheduler
	FlowFunctions          FlowFunctions[F, D, S, M]
	ZeroValue              D
	FollowReturnsPastSeeds bool
	FactHandler            FactMergeHandler[D]
	ZeroHandler            ZeroHandler[F]
	Logger                 *config.LogGroup
	Debugger               Debugger[S, M]

	methodAnalyzers *funcutil.DefaultMap[M, MethodAnalyzer[F, D, S, M]]

	// analyzers contains every analyzer created, in creation order
	analyzers []*PerAccessPathMethodAnalyzer[F, D, S, M]
}

// Analyzer returns the analyzer of method
func (c *Context[F, D, S, M]) Analyzer(method M) MethodAnalyzer[F, D, S, M] {
	return c.methodAnalyzers.GetOrCreate(method)
}

// Analyzers returns all the analyzers created so far, in creation order
func (c *Context[F, D, S, M]) Analyzers() []*PerAccessPathMethodAnalyzer[F, D, S, M] {
	return append([]*PerAccessPathMethodAnalyzer[F, D, S, M](nil), c.analyzers...)
}

func (c *Context[F, D, S, M]) register(a *PerAccessPathMethodAnalyzer[F, D, S, M]) {
	c.analyzers = append(c.analyzers, a)
}
