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

// Package analysistest contains helpers to build small programs from source in tests and to read the expectations
// annotated in their comments.
package analysistest

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"regexp"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-fieldsens/analysis/ssaicfg"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// MarkRegex matches annotations of the form "@Mark(id1, id2, id3)"
var MarkRegex = regexp.MustCompile(`//.*@Mark\(((?:\s*\w+\s*,?)+)\)`)

// LPos is a position without its column.
type LPos struct {
	Filename string
	Line     int
}

func (p LPos) String() string {
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

// RemoveColumn drops the column of pos.
func RemoveColumn(pos token.Position) LPos {
	return LPos{Line: pos.Line, Filename: pos.Filename}
}

// Source is a single-file program built for a test.
type Source struct {
	*ssaicfg.Program
	File *ast.File
}

// BuildSource type-checks the single file src of package pkgName and builds its SSA form and ICFG with the call
// graph computed by mode. The test fails if any step fails.
func BuildSource(t *testing.T, pkgName string, src string, mode ssaicfg.CallgraphMode) *Source {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, pkgName+".go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	pkg, _, err := ssautil.BuildPackage(&types.Config{Importer: importer.Default()}, fset,
		types.NewPackage(pkgName, ""), []*ast.File{f}, ssa.SanityCheckFunctions)
	if err != nil {
		t.Fatalf("failed to build SSA: %v", err)
	}
	prog, err := ssaicfg.FromSSA(pkg.Prog, []*ssa.Package{pkg}, mode)
	if err != nil {
		t.Fatalf("failed to compute call graph: %v", err)
	}
	return &Source{Program: prog, File: f}
}

// Marks returns, for each identifier appearing in a "@Mark" annotation, the positions of the annotating comments.
func (s *Source) Marks() map[string][]LPos {
	marks := map[string][]LPos{}
	for _, group := range s.File.Comments {
		for _, c := range group.List {
			a := MarkRegex.FindStringSubmatch(c.Text)
			if len(a) <= 1 {
				continue
			}
			pos := RemoveColumn(s.SSA.Fset.Position(c.Pos()))
			for _, ident := range strings.Split(a[1], ",") {
				id := strings.TrimSpace(ident)
				marks[id] = append(marks[id], pos)
			}
		}
	}
	return marks
}

// PosOf returns the position of the instruction i, without column.
func (s *Source) PosOf(i ssa.Instruction) LPos {
	return RemoveColumn(s.SSA.Fset.Position(i.Pos()))
}
