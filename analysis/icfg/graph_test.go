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

package icfg_test

import (
	"errors"
	"testing"

	"github.com/awslabs/ar-go-fieldsens/analysis/fieldsens"
	"github.com/awslabs/ar-go-fieldsens/analysis/icfg"
	"github.com/google/go-cmp/cmp"
)

var (
	_ fieldsens.ICFG[string, string] = (*icfg.Graph[string, string])(nil)
	_ fieldsens.ICFG[string, string] = (*icfg.Backward[string, string])(nil)
	_ fieldsens.Validator            = (*icfg.Graph[string, string])(nil)
)

// main: m1 -> m2 (call foo) -> m3
// foo: f1 -> f2
func callGraph() *icfg.Graph[string, string] {
	g := icfg.New[string, string]()
	g.AddMethod("main", "m1", "m2", "m3")
	g.AddMethod("foo", "f1", "f2")
	g.AddCall("m2", "foo")
	return g
}

func TestGraphQueries(t *testing.T) {
	g := callGraph()
	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"succs", g.SuccsOf("m1"), []string{"m2"}},
		{"preds", g.PredsOf("m3"), []string{"m2"}},
		{"call", g.IsCallStmt("m2"), true},
		{"not call", g.IsCallStmt("m1"), false},
		{"exit", g.IsExitStmt("f2"), true},
		{"start", g.IsStartPoint("f1"), true},
		{"not start", g.IsStartPoint("f2"), false},
		{"start points", g.StartPointsOf("main"), []string{"m1"}},
		{"callees", g.CalleesOfCallAt("m2"), []string{"foo"}},
		{"return sites", g.ReturnSitesOfCallAt("m2"), []string{"m3"}},
		{"callers", g.CallersOf("foo"), []string{"m2"}},
		{"method", g.MethodOf("f2"), "foo"},
		{"methods", g.Methods(), []string{"main", "foo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBackwards(t *testing.T) {
	b := callGraph().Backwards()
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"succs", b.SuccsOf("m3"), []string{"m2"}},
		{"preds", b.PredsOf("m1"), []string{"m2"}},
		{"exit", b.IsExitStmt("f1"), true},
		{"start", b.IsStartPoint("f2"), true},
		{"start points", b.StartPointsOf("main"), []string{"m3"}},
		{"return sites", b.ReturnSitesOfCallAt("m2"), []string{"m1"}},
		{"callers", b.CallersOf("foo"), []string{"m2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		g := callGraph()
		g.AddStmt("main", "dead")
		if err := g.Validate(); !errors.Is(err, icfg.ErrInvalidGraph) {
			t.Errorf("expected invalid graph, got %v", err)
		}
	})
	t.Run("edge across methods", func(t *testing.T) {
		g := callGraph()
		g.AddEdge("m3", "f1")
		if err := g.Validate(); !errors.Is(err, icfg.ErrInvalidGraph) {
			t.Errorf("expected invalid graph, got %v", err)
		}
	})
	t.Run("no start point", func(t *testing.T) {
		g := callGraph()
		g.AddStmt("bar", "b1")
		if err := g.Validate(); !errors.Is(err, icfg.ErrInvalidGraph) {
			t.Errorf("expected invalid graph, got %v", err)
		}
	})
	t.Run("external callee", func(t *testing.T) {
		g := callGraph()
		g.AddCall("f1", "ext")
		if err := g.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestRecursiveMethods(t *testing.T) {
	g := callGraph()
	g.AddMethod("bar", "b1", "b2")
	g.AddCall("f1", "bar")
	g.AddCall("b1", "foo")
	if diff := cmp.Diff([]string{"foo", "bar"}, g.RecursiveMethods()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
