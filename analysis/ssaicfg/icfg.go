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

// Package ssaicfg implements the interprocedural control flow graph of a Go program in SSA form. Statements are
// SSA instructions and methods are SSA functions; the call edges are given by a call graph.
package ssaicfg

import (
	"fmt"

	"github.com/awslabs/ar-go-fieldsens/internal/graphutil"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/ssa"
)

// ICFG is the interprocedural control flow graph of the functions of a call graph
type ICFG struct {
	cg *callgraph.Graph
}

// New returns the ICFG of the functions of cg
func New(cg *callgraph.Graph) *ICFG {
	return &ICFG{cg: cg}
}

// SuccsOf returns the instructions executed after instr: the next instruction in its block, or the first
// instruction of each successor block.
func (g *ICFG) SuccsOf(instr ssa.Instruction) []ssa.Instruction {
	block := instr.Block()
	if block == nil {
		return nil
	}
	if i := indexOf(block, instr); i >= 0 && i+1 < len(block.Instrs) {
		return []ssa.Instruction{block.Instrs[i+1]}
	}
	var succs []ssa.Instruction
	for _, s := range block.Succs {
		if len(s.Instrs) > 0 {
			succs = append(succs, s.Instrs[0])
		}
	}
	return succs
}

// PredsOf returns the instructions executed just before instr
func (g *ICFG) PredsOf(instr ssa.Instruction) []ssa.Instruction {
	block := instr.Block()
	if block == nil {
		return nil
	}
	if i := indexOf(block, instr); i > 0 {
		return []ssa.Instruction{block.Instrs[i-1]}
	}
	var preds []ssa.Instruction
	for _, p := range block.Preds {
		if len(p.Instrs) > 0 {
			preds = append(preds, p.Instrs[len(p.Instrs)-1])
		}
	}
	return preds
}

// IsCallStmt returns true if instr is a call, a go or a defer instruction
func (g *ICFG) IsCallStmt(instr ssa.Instruction) bool {
	_, ok := instr.(ssa.CallInstruction)
	return ok
}

// IsExitStmt returns true if instr is a return or a panic
func (g *ICFG) IsExitStmt(instr ssa.Instruction) bool {
	switch instr.(type) {
	case *ssa.Return, *ssa.Panic:
		return true
	}
	return false
}

// IsStartPoint returns true if instr is the first instruction of its function
func (g *ICFG) IsStartPoint(instr ssa.Instruction) bool {
	f := instr.Parent()
	return f != nil && len(f.Blocks) > 0 && len(f.Blocks[0].Instrs) > 0 && f.Blocks[0].Instrs[0] == instr
}

// StartPointsOf returns the first instruction of f, or nothing if f has no body
func (g *ICFG) StartPointsOf(f *ssa.Function) []ssa.Instruction {
	if f == nil || len(f.Blocks) == 0 || len(f.Blocks[0].Instrs) == 0 {
		return nil
	}
	return []ssa.Instruction{f.Blocks[0].Instrs[0]}
}

// CalleesOfCallAt returns the functions called at call according to the call graph
func (g *ICFG) CalleesOfCallAt(call ssa.Instruction) []*ssa.Function {
	site, ok := call.(ssa.CallInstruction)
	if !ok {
		return nil
	}
	node := g.cg.Nodes[call.Parent()]
	if node == nil {
		return nil
	}
	var callees []*ssa.Function
	seen := map[*ssa.Function]bool{}
	for _, edge := range node.Out {
		if edge.Site == site && !seen[edge.Callee.Func] {
			seen[edge.Callee.Func] = true
			callees = append(callees, edge.Callee.Func)
		}
	}
	return callees
}

// ReturnSitesOfCallAt returns the successors of call
func (g *ICFG) ReturnSitesOfCallAt(call ssa.Instruction) []ssa.Instruction {
	return g.SuccsOf(call)
}

// CallersOf returns the call sites of f according to the call graph
func (g *ICFG) CallersOf(f *ssa.Function) []ssa.Instruction {
	node := g.cg.Nodes[f]
	if node == nil {
		return nil
	}
	var callers []ssa.Instruction
	for _, edge := range node.In {
		if edge.Site != nil {
			callers = append(callers, edge.Site)
		}
	}
	return callers
}

// MethodOf returns the function of instr
func (g *ICFG) MethodOf(instr ssa.Instruction) *ssa.Function {
	return instr.Parent()
}

// Validate returns an error if a function of the call graph has instructions outside of a block
func (g *ICFG) Validate() error {
	for f := range g.cg.Nodes {
		if f == nil {
			continue
		}
		for _, block := range f.Blocks {
			for _, instr := range block.Instrs {
				if instr.Block() != block {
					return fmt.Errorf("instruction %s of %s is not in its block", instr, f)
				}
			}
		}
	}
	return nil
}

// RecursiveFunctions returns the functions of the call graph that may call themselves, sorted by name
func (g *ICFG) RecursiveFunctions() []*ssa.Function {
	d := graphutil.NewDigraph[*ssa.Function]()
	for f, node := range g.cg.Nodes {
		if f == nil {
			continue
		}
		d.AddNode(f)
		for _, edge := range node.Out {
			d.AddEdge(f, edge.Callee.Func)
		}
	}
	rec := d.Cyclic()
	sortFunctions(rec)
	return rec
}

func indexOf(block *ssa.BasicBlock, instr ssa.Instruction) int {
	for i, x := range block.Instrs {
		if x == instr {
			return i
		}
	}
	return -1
}
