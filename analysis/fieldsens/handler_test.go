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
	"errors"
	"testing"

	"github.com/awslabs/ar-go-fieldsens/analysis/fieldsens"
)

type (
	handler = fieldsens.AccessPathHandler[string, string, string, string]
	target  = fieldsens.ConstrainedFact[string, string, string, string]
)

func newHandler(p path) *handler {
	return fieldsens.NewAccessPathHandler[string, string, string, string](p, nil)
}

func expectInvalidAccess(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.Is(err, fieldsens.ErrInvalidAccess) {
			t.Errorf("expected ErrInvalidAccess, got %v", err)
		}
	}()
	f()
}

func TestHandlerTargets(t *testing.T) {
	tests := []struct {
		name           string
		build          func() target
		wantPath       string
		wantConstraint fieldsens.Constraint[string]
	}{
		{"generate", func() target { return newHandler(ap("f")).Generate("y") }, ".f", nil},
		{"prepend", func() target { return newHandler(ap("g")).Prepend("f").Generate("y") }, ".f.g", nil},
		{"read", func() target { return newHandler(ap("f", "g")).Read("f").Generate("y") }, ".g", nil},
		{"deferred read", func() target { return newHandler(ap()).Read("f").Generate("y") }, "",
			fieldsens.ReadFieldConstraint[string]{Field: "f"}},
		{"deferred read with exclusions", func() target { return newHandler(excl(ap(), "g")).Read("f").Generate("y") },
			"", fieldsens.ReadFieldConstraint[string]{Field: "f"}},
		{"overwrite other field", func() target { return newHandler(ap("g")).Overwrite("f").Generate("y") }, ".g", nil},
		{"overwrite excluded field", func() target { return newHandler(excl(ap(), "f")).Overwrite("f").Generate("y") },
			"^{f}", nil},
		{"deferred overwrite", func() target { return newHandler(ap()).Overwrite("f").Generate("y") }, "^{f}",
			fieldsens.WriteFieldConstraint[string]{Field: "f"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.build()
			if got.Fact.Fact() != "y" {
				t.Errorf("got fact %v", got.Fact.Fact())
			}
			if p := got.Fact.AccessPath().String(); p != tt.wantPath {
				t.Errorf("got access path %q, want %q", p, tt.wantPath)
			}
			if got.Constraint != tt.wantConstraint {
				t.Errorf("got constraint %v, want %v", got.Constraint, tt.wantConstraint)
			}
		})
	}
}

func TestHandlerInvalidAccesses(t *testing.T) {
	t.Run("read other field", func(t *testing.T) {
		expectInvalidAccess(t, func() { newHandler(ap("g")).Read("f") })
	})
	t.Run("read excluded field", func(t *testing.T) {
		expectInvalidAccess(t, func() { newHandler(excl(ap(), "f")).Read("f") })
	})
	t.Run("overwrite read field", func(t *testing.T) {
		expectInvalidAccess(t, func() { newHandler(ap("f")).Overwrite("f") })
	})
}

func TestHandlerQueries(t *testing.T) {
	h := newHandler(excl(ap(), "g"))
	if !h.MayBeEmpty() || h.CanRead("f") || !h.MayCanRead("f") || h.MayCanRead("g") {
		t.Errorf("wrong queries on %s", h.AccessPath())
	}
	if h.IsPrefixOf(ap("f")) != fieldsens.GuaranteedPrefix {
		t.Errorf("%s should be a prefix of .f", h.AccessPath())
	}
	h = newHandler(ap("f"))
	if h.MayBeEmpty() || !h.CanRead("f") || h.MayCanRead("g") {
		t.Errorf("wrong queries on %s", h.AccessPath())
	}
}
