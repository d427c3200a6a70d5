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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestControlFlowJoinRefinement(t *testing.T) {
	tests := []struct {
		name         string
		answer       string
		incoming     AccessPath[string]
		wantInterest int
		wantEmpty    int
		wantGranted  []string
	}{
		{"merged fact resolver grants", "interest", NewAccessPath[string](), 1, 0, []string{".f"}},
		{"merged fact resolver is empty", "empty", NewAccessPath[string](), 0, 1, nil},
		{"merged fact already refined", "empty", NewAccessPath("f", "g"), 1, 0, []string{".f.g"}},
		{"merged fact on another field", "interest", NewAccessPath("g"), 0, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContext()
			a := newPerAccessPathMethodAnalyzer[string, string, string, string]("main", "a", c,
				NewAccessPath[string](), nil)
			stub := newStubResolver(a, tt.answer)
			j := newControlFlowJoinResolver(a, "s4")
			cnt := &counter{}
			j.Resolve(ReadFieldConstraint[string]{Field: "f"}, cnt.callback())
			nested := j.getOrCreateNestedResolver(NewAccessPath("f"))
			nested.template().addIncoming(NewWrappedFact[string, string, string, string]("x", tt.incoming, stub))

			if cnt.interest != tt.wantInterest || cnt.empty != tt.wantEmpty {
				t.Errorf("got %d interest and %d empty calls, want %d and %d", cnt.interest, cnt.empty,
					tt.wantInterest, tt.wantEmpty)
			}
			var granted []string
			for _, inc := range nested.template().incoming {
				granted = append(granted, inc.accessPath.String())
				if tt.answer == "interest" && inc.resolver != stub {
					t.Errorf("granted fact %s should be owned by the merged fact resolver", inc)
				}
			}
			if diff := cmp.Diff(tt.wantGranted, granted); diff != "" {
				t.Errorf("facts granted to %s (-want +got):\n%s", nested, diff)
			}
		})
	}
}
