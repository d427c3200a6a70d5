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

	"github.com/awslabs/ar-go-fieldsens/analysis/config"
	"github.com/awslabs/ar-go-fieldsens/internal/formatutil"
)

// Debugger is notified of the set up of a solver
type Debugger[S, M comparable] interface {
	// SetICFG is called once, when the solver is created
	SetICFG(icfg ICFG[S, M])

	// InitialSeed is called for every seed submitted to the solver
	InitialSeed(stmt S)
}

// NullDebugger ignores all notifications
type NullDebugger[S, M comparable] struct{}

// SetICFG does nothing
func (NullDebugger[S, M]) SetICFG(ICFG[S, M]) {}

// InitialSeed does nothing
func (NullDebugger[S, M]) InitialSeed(S) {}

// LoggingDebugger logs the notifications at debug level
type LoggingDebugger[S, M comparable] struct {
	logger *config.LogGroup
	colors formatutil.Colorizer
	seeds  int
}

// NewLoggingDebugger returns a debugger logging to logger. Statements are colored when colors is enabled.
func NewLoggingDebugger[S, M comparable](logger *config.LogGroup, colors formatutil.Colorizer) *LoggingDebugger[S, M] {
	return &LoggingDebugger[S, M]{logger: logger, colors: colors}
}

// SetICFG logs the type of the ICFG
func (d *LoggingDebugger[S, M]) SetICFG(icfg ICFG[S, M]) {
	d.logger.Debugf("solving on %s", d.colors.Bold(fmt.Sprintf("%T", icfg)))
}

// InitialSeed logs the seed statement
func (d *LoggingDebugger[S, M]) InitialSeed(stmt S) {
	d.seeds++
	d.logger.Debugf("seed #%d at %s", d.seeds, d.colors.Cyan(stmt))
}

// Seeds returns the number of seeds notified
func (d *LoggingDebugger[S, M]) Seeds() int {
	return d.seeds
}
