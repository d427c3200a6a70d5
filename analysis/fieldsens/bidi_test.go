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

package fieldsens_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-fieldsens/analysis/config"
	"github.com/awslabs/ar-go-fieldsens/analysis/fieldsens"
	"github.com/google/go-cmp/cmp"
)

// newBiDiSolver returns a solver where the zero fact seeded at s2 in foo generates t, which returns to main in
// both directions
func newBiDiSolver(t *testing.T) *fieldsens.BiDiSolver[string, string, string, string] {
	t.Helper()
	g := callFoo()
	flows := testFlows{
		normal: map[string]flowFunc{"s2": func(source string, h *handler) []target {
			if source == "0" {
				return []target{h.Generate("0"), h.Generate("t")}
			}
			return identity(source, h)
		}},
		ret: map[string]flowFunc{"foo": rename("t", "t")},
	}
	cfg := config.NewDefault()
	cfg.FollowReturnsPastSeeds = true
	sourceStmtOf := func(fact string) string {
		if fact == "t" {
			return "s2"
		}
		return ""
	}
	b, err := fieldsens.NewBiDiSolver[string, string, string, string](
		problem{ICFG: g, FlowFunctions: flows, ZeroValue: "0"},
		problem{ICFG: g.Backwards(), FlowFunctions: flows, ZeroValue: "0"},
		nil, nil, nil, cfg, sourceStmtOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return b
}

func TestBiDiReturnsWaitForBothDirections(t *testing.T) {
	tests := []struct {
		name         string
		forwardFirst bool
	}{
		{"forward first", true},
		{"backward first", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBiDiSolver(t)
			first, second := b.Forward(), b.Backward()
			if !tt.forwardFirst {
				first, second = second, first
			}

			first.AddInitialSeed("s2", "0")
			b.Solve()
			expectReached(t, b.Forward(), "m3")
			expectReached(t, b.Backward(), "m1")
			fw, bw := b.PausedReturns()
			if fw+bw != 1 || (fw == 1) != tt.forwardFirst {
				t.Errorf("got %d forward and %d backward paused returns", fw, bw)
			}

			second.AddInitialSeed("s2", "0")
			b.Solve()
			b.Solve()
			expectReached(t, b.Forward(), "m3", "t @ m3 [main; 0]")
			expectReached(t, b.Backward(), "m1", "t @ m1 [main; 0]")
			if fw, bw := b.PausedReturns(); fw != 0 || bw != 0 {
				t.Errorf("got %d forward and %d backward paused returns", fw, bw)
			}
		})
	}
}

func TestBiDiFactsStayWithinTheirDirection(t *testing.T) {
	b := newBiDiSolver(t)
	b.Forward().AddInitialSeed("s2", "0")
	b.Backward().AddInitialSeed("s2", "0")
	b.Solve()
	expectReached(t, b.Forward(), "s3", "0 @ s3 [foo; 0]", "t @ s3 [foo; 0]")
	expectReached(t, b.Forward(), "s1")
	expectReached(t, b.Backward(), "s1", "0 @ s1 [foo; 0]", "t @ s1 [foo; 0]")
	expectReached(t, b.Backward(), "s3")
}

func TestTraceLogging(t *testing.T) {
	cfg := config.NewDefault()
	cfg.LogLevel = int(config.TraceLevel)
	logger := config.NewLogGroup(cfg)
	var buf bytes.Buffer
	logger.SetAllOutput(&buf)

	g := callFoo()
	s := newTestSolver(t, problem{
		ICFG:          g,
		FlowFunctions: testFlows{normal: map[string]flowFunc{"s1": load("x", "y", "f")}},
		InitialSeeds:  []seed{{Stmt: "s1", Facts: []string{"x"}}},
		ZeroValue:     "0",
	}, nil, cfg)
	s.SetLogger(logger)
	s.Solve()

	out := buf.String()
	for _, msg := range []string{"[foo; x: resolve ^f at <CallEdgeResolver >]", "solved 1 seeds"} {
		if !strings.Contains(out, msg) {
			t.Errorf("expected %q in the logs:\n%s", msg, out)
		}
	}
	if diff := cmp.Diff([]string{"x @ s1 [foo; x]"}, reached(s, "s1")); diff != "" {
		t.Errorf("facts at s1 mismatch (-want +got):\n%s", diff)
	}
}
