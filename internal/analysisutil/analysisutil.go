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

// Package analysisutil contains utility functions to read field accesses out of SSA instructions.
package analysisutil

import (
	"go/types"

	"golang.org/x/tools/go/ssa"
)

// FieldAccess is a field selection performed by an instruction.
type FieldAccess struct {
	// Base is the struct or pointer-to-struct the field is selected from
	Base ssa.Value
	// Name is the name of the field, or "?" if it cannot be determined
	Name string
	// Addr is true when the instruction computes the address of the field (ssa.FieldAddr)
	Addr bool
}

// FieldAccessOf returns the field access performed by i. ok is false if i is neither a *ssa.FieldAddr nor a
// *ssa.Field.
func FieldAccessOf(i ssa.Instruction) (access FieldAccess, ok bool) {
	switch x := i.(type) {
	case *ssa.FieldAddr:
		return FieldAccess{Base: x.X, Name: FieldAddrFieldName(x), Addr: true}, true
	case *ssa.Field:
		return FieldAccess{Base: x.X, Name: FieldFieldName(x)}, true
	default:
		return FieldAccess{}, false
	}
}

// FieldAddrFieldName finds the name of a field access in ssa.FieldAddr
// if it cannot find a proper field name, returns "?"
func FieldAddrFieldName(fieldAddr *ssa.FieldAddr) string {
	return fieldNameOf(fieldAddr.X.Type().Underlying(), fieldAddr.Field)
}

// FieldFieldName finds the name of a field access in ssa.Field
// if it cannot find a proper field name, returns "?"
func FieldFieldName(field *ssa.Field) string {
	return fieldNameOf(field.X.Type().Underlying(), field.Field)
}

func fieldNameOf(t types.Type, i int) string {
	switch typ := t.(type) {
	case *types.Pointer:
		return fieldNameOf(typ.Elem().Underlying(), i)
	case *types.Struct:
		if 0 <= i && i < typ.NumFields() {
			return typ.Field(i).Name()
		}
		return "?"
	default:
		return "?"
	}
}
