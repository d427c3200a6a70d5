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

package ssaicfg

import (
	"fmt"
	"go/token"
	"os"
	"sort"

	"github.com/awslabs/ar-go-fieldsens/internal/analysisutil"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/cha"
	"golang.org/x/tools/go/callgraph/rta"
	"golang.org/x/tools/go/callgraph/static"
	"golang.org/x/tools/go/callgraph/vta"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// PkgLoadMode is the loading mode of LoadProgram
const PkgLoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedTypesSizes

// CallgraphMode selects the algorithm resolving the callees of the ICFG
type CallgraphMode int

const (
	StaticAnalysis         CallgraphMode = iota // StaticAnalysis only resolves static calls (under-approximating)
	ClassHierarchyAnalysis                      // ClassHierarchyAnalysis is a coarse over-approximation
	RapidTypeAnalysis                           // RapidTypeAnalysis starts from the init and main functions
	VariableTypeAnalysis                        // VariableTypeAnalysis refines the static call graph
)

func (mode CallgraphMode) String() string {
	switch mode {
	case StaticAnalysis:
		return "static"
	case ClassHierarchyAnalysis:
		return "cha"
	case RapidTypeAnalysis:
		return "rta"
	case VariableTypeAnalysis:
		return "vta"
	}
	return fmt.Sprintf("CallgraphMode(%d)", int(mode))
}

// ComputeCallgraph computes the call graph of prog using the mode
func (mode CallgraphMode) ComputeCallgraph(prog *ssa.Program) (*callgraph.Graph, error) {
	switch mode {
	case StaticAnalysis:
		return static.CallGraph(prog), nil
	case ClassHierarchyAnalysis:
		return cha.CallGraph(prog), nil
	case RapidTypeAnalysis:
		roots := entryPoints(prog)
		if len(roots) == 0 {
			return nil, fmt.Errorf("rta: no main package")
		}
		return rta.Analyze(roots, true).CallGraph, nil
	case VariableTypeAnalysis:
		return vta.CallGraph(ssautil.AllFunctions(prog), cha.CallGraph(prog)), nil
	}
	return nil, fmt.Errorf("unsupported call graph mode %s", mode)
}

// Program is a loaded program and its ICFG
type Program struct {
	SSA       *ssa.Program
	Packages  []*ssa.Package
	Callgraph *callgraph.Graph
	ICFG      *ICFG
}

// LoadProgram loads the packages matching patterns (see packages.Load), builds their SSA form and the ICFG of the
// call graph computed with mode. If platform is not empty, the packages are loaded with GOOS=platform.
func LoadProgram(config *packages.Config, platform string, buildmode ssa.BuilderMode, mode CallgraphMode,
	patterns ...string) (*Program, error) {
	if config == nil {
		config = &packages.Config{Mode: PkgLoadMode, Fset: token.NewFileSet()}
	}
	if platform != "" {
		config.Env = append(os.Environ(), fmt.Sprintf("GOOS=%s", platform))
	}
	initial, err := packages.Load(config, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	if len(initial) == 0 {
		return nil, fmt.Errorf("no packages")
	}
	if n := packages.PrintErrors(initial); n > 0 {
		return nil, fmt.Errorf("%d errors found in packages", n)
	}
	prog, pkgs := ssautil.AllPackages(initial, buildmode)
	for i, p := range pkgs {
		if p == nil {
			return nil, fmt.Errorf("cannot build SSA for package %s", initial[i])
		}
	}
	prog.Build()
	return FromSSA(prog, pkgs, mode)
}

// FromSSA returns the program with the ICFG of the call graph of prog computed with mode. prog must be built.
func FromSSA(prog *ssa.Program, pkgs []*ssa.Package, mode CallgraphMode) (*Program, error) {
	cg, err := mode.ComputeCallgraph(prog)
	if err != nil {
		return nil, err
	}
	cg.DeleteSyntheticNodes()
	return &Program{SSA: prog, Packages: pkgs, Callgraph: cg, ICFG: New(cg)}, nil
}

// Function returns the function named name in the packages of the program, or nil
func (p *Program) Function(name string) *ssa.Function {
	for _, pkg := range p.Packages {
		if pkg == nil {
			continue
		}
		if f := pkg.Func(name); f != nil {
			return f
		}
	}
	return nil
}

func entryPoints(prog *ssa.Program) []*ssa.Function {
	var roots []*ssa.Function
	for _, m := range ssautil.MainPackages(prog.AllPackages()) {
		for _, name := range []string{"init", "main"} {
			if f := m.Func(name); f != nil {
				roots = append(roots, f)
			}
		}
	}
	return roots
}

func sortFunctions(funcs []*ssa.Function) {
	sort.Slice(funcs, func(i, j int) bool { return funcs[i].String() < funcs[j].String() })
}

// Instructions returns the instructions of f, in block order
func Instructions(f *ssa.Function) []ssa.Instruction {
	var instrs []ssa.Instruction
	for _, b := range f.Blocks {
		instrs = append(instrs, b.Instrs...)
	}
	return instrs
}

// FieldAccesses returns the field selections of f, indexed by the instruction performing them
func FieldAccesses(f *ssa.Function) map[ssa.Instruction]analysisutil.FieldAccess {
	accesses := map[ssa.Instruction]analysisutil.FieldAccess{}
	for _, i := range Instructions(f) {
		if access, ok := analysisutil.FieldAccessOf(i); ok {
			accesses[i] = access
		}
	}
	return accesses
}
