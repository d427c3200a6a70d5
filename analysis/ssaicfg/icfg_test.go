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

package ssaicfg_test

import (
	"testing"

	"github.com/awslabs/ar-go-fieldsens/analysis/fieldsens"
	"github.com/awslabs/ar-go-fieldsens/analysis/ssaicfg"
	"github.com/awslabs/ar-go-fieldsens/internal/analysistest"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/go/ssa"
)

const source = `package p

type pair struct {
	a, b int
}

func get(p *pair) int { return p.b }

func id(x int) int { return x }

func rec(n int) int {
	if n == 0 {
		return 0
	}
	return rec(n - 1)
}

func main() {
	a := id(1) // @Mark(call)
	if a > 0 {
		a = id(a) // @Mark(call)
	}
	rec(a)
}
`

type (
	instr    = ssa.Instruction
	function = *ssa.Function
)

var _ fieldsens.ICFG[instr, function] = (*ssaicfg.ICFG)(nil)

func loadSource(t *testing.T, mode ssaicfg.CallgraphMode) *analysistest.Source {
	return analysistest.BuildSource(t, "p", source, mode)
}

func callsTo(f, callee *ssa.Function) []instr {
	var calls []instr
	for _, i := range ssaicfg.Instructions(f) {
		if c, ok := i.(*ssa.Call); ok && c.Call.StaticCallee() == callee {
			calls = append(calls, i)
		}
	}
	return calls
}

func returns(f *ssa.Function) []instr {
	var rets []instr
	for _, i := range ssaicfg.Instructions(f) {
		if _, ok := i.(*ssa.Return); ok {
			rets = append(rets, i)
		}
	}
	return rets
}

func TestICFG(t *testing.T) {
	for _, mode := range []ssaicfg.CallgraphMode{ssaicfg.StaticAnalysis, ssaicfg.ClassHierarchyAnalysis} {
		t.Run(mode.String(), func(t *testing.T) {
			prog := loadSource(t, mode)
			g := prog.ICFG
			main, id := prog.Function("main"), prog.Function("id")
			if main == nil || id == nil {
				t.Fatalf("missing functions")
			}
			if err := g.Validate(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			starts := g.StartPointsOf(main)
			if len(starts) != 1 || !g.IsStartPoint(starts[0]) || g.MethodOf(starts[0]) != main {
				t.Errorf("unexpected start points %v", starts)
			}

			calls := callsTo(main, id)
			if len(calls) != 2 {
				t.Fatalf("expected 2 calls to id, got %d", len(calls))
			}
			var positions []analysistest.LPos
			for _, call := range calls {
				positions = append(positions, prog.PosOf(call))
			}
			if diff := cmp.Diff(prog.Marks()["call"], positions); diff != "" {
				t.Errorf("call positions mismatch (-want +got):\n%s", diff)
			}
			for _, call := range calls {
				if !g.IsCallStmt(call) {
					t.Errorf("%v should be a call", call)
				}
				if diff := cmp.Diff([]function{id}, g.CalleesOfCallAt(call)); diff != "" {
					t.Errorf("callees mismatch (-want +got):\n%s", diff)
				}
				for _, rs := range g.ReturnSitesOfCallAt(call) {
					found := false
					for _, p := range g.PredsOf(rs) {
						found = found || p == call
					}
					if !found {
						t.Errorf("%v is not a predecessor of its return site %v", call, rs)
					}
				}
			}
			if n := len(g.CallersOf(id)); n != 2 {
				t.Errorf("expected 2 callers of id, got %d", n)
			}
			for _, ret := range returns(id) {
				if !g.IsExitStmt(ret) || len(g.SuccsOf(ret)) != 0 {
					t.Errorf("%v should exit id", ret)
				}
			}
			if diff := cmp.Diff([]function{prog.Function("rec")}, g.RecursiveFunctions()); diff != "" {
				t.Errorf("recursive functions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type identity struct{}

func identityFlow() fieldsens.FlowFunction[string, string, instr, function] {
	return fieldsens.FlowFunctionFunc[string, string, instr, function](
		func(source string, h *fieldsens.AccessPathHandler[string, string, instr, function]) []fieldsens.ConstrainedFact[string, string, instr, function] {
			return []fieldsens.ConstrainedFact[string, string, instr, function]{h.Generate(source)}
		})
}

func (identity) NormalFlowFunction(instr) fieldsens.FlowFunction[string, string, instr, function] {
	return identityFlow()
}

func (identity) CallFlowFunction(instr, function) fieldsens.FlowFunction[string, string, instr, function] {
	return identityFlow()
}

func (identity) ReturnFlowFunction(_ instr, _ function, _ instr,
	_ instr) fieldsens.FlowFunction[string, string, instr, function] {
	return identityFlow()
}

func (identity) CallToReturnFlowFunction(instr, instr) fieldsens.FlowFunction[string, string, instr, function] {
	return identityFlow()
}

func TestSolveOnSSA(t *testing.T) {
	prog := loadSource(t, ssaicfg.ClassHierarchyAnalysis)
	main := prog.Function("main")
	solver, err := fieldsens.NewSolver[string, string, instr, function](
		fieldsens.Problem[string, string, instr, function]{
			ICFG:          prog.ICFG,
			FlowFunctions: identity{},
			InitialSeeds: []fieldsens.Seed[string, instr]{
				{Stmt: prog.ICFG.StartPointsOf(main)[0], Facts: []string{"zero"}},
			},
			ZeroValue: "zero",
		}, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	solver.Solve()

	for _, name := range []string{"main", "id", "rec"} {
		for _, ret := range returns(prog.Function(name)) {
			if len(solver.ReachableAt(ret)) == 0 {
				t.Errorf("return %v of %s not reached", ret, name)
			}
		}
	}
	if len(solver.Summaries(prog.Function("id"), "zero")) == 0 {
		t.Errorf("expected a summary of id")
	}
}

func TestFieldAccesses(t *testing.T) {
	prog := loadSource(t, ssaicfg.StaticAnalysis)
	get := prog.Function("get")
	accesses := ssaicfg.FieldAccesses(get)
	if len(accesses) != 1 {
		t.Fatalf("expected one field access in get, got %d", len(accesses))
	}
	for i, access := range accesses {
		if _, ok := i.(*ssa.FieldAddr); !ok {
			t.Errorf("expected a field address, got %v", i)
		}
		if access.Name != "b" || !access.Addr || access.Base != get.Params[0] {
			t.Errorf("unexpected access %+v", access)
		}
	}
	if n := len(ssaicfg.FieldAccesses(prog.Function("main"))); n != 0 {
		t.Errorf("expected no field access in main, got %d", n)
	}
}
