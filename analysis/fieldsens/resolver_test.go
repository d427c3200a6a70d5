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

	"github.com/awslabs/ar-go-fieldsens/analysis/config"
	"github.com/google/go-cmp/cmp"
)

type counter struct {
	interest int
	empty    int
}

func (c *counter) callback() *InterestFuncs[string, string, string, string] {
	return &InterestFuncs[string, string, string, string]{
		OnInterest: func(*PerAccessPathMethodAnalyzer[string, string, string, string], Resolver[string, string, string, string]) {
			c.interest++
		},
		OnResolvedEmpty: func() { c.empty++ },
	}
}

func newTestContext() *Context[string, string, string, string] {
	return &Context[string, string, string, string]{
		Scheduler:   NewScheduler(),
		ZeroValue:   "0",
		FactHandler: NoopMergeHandler[string]{},
		ZeroHandler: MaxLengthZeroHandler[string]{},
		Logger:      config.NewLogGroup(config.NewDefault()),
		Debugger:    NullDebugger[string, string]{},
	}
}

func newTestResolver() (*Context[string, string, string, string], *CallEdgeResolver[string, string, string, string]) {
	c := newTestContext()
	a := newPerAccessPathMethodAnalyzer[string, string, string, string]("m", "x", c, NewAccessPath[string](), nil)
	return c, a.callEdgeResolver.(*CallEdgeResolver[string, string, string, string])
}

func TestInterestFiresOnce(t *testing.T) {
	_, r := newTestResolver()
	before, after := &counter{}, &counter{}
	r.registerCallback(before.callback())
	if before.interest != 0 {
		t.Fatalf("callback called before interest")
	}
	r.Interest()
	r.Interest()
	if before.interest != 1 {
		t.Errorf("queued callback called %d times, want 1", before.interest)
	}
	cb := after.callback()
	r.registerCallback(cb)
	r.registerCallback(cb)
	if after.interest != 2 {
		t.Errorf("callback registered twice after interest called %d times, want 2", after.interest)
	}
	if !r.IsInterestGiven() || r.IsResolvedEmpty() {
		t.Errorf("unexpected state: interest %v, empty %v", r.IsInterestGiven(), r.IsResolvedEmpty())
	}
	if before.empty+after.empty != 0 {
		t.Errorf("resolved empty callbacks should not be called")
	}
}

func TestResolvedEmptyFiresOnce(t *testing.T) {
	_, r := newTestResolver()
	c := &counter{}
	r.registerCallback(c.callback())
	r.canBeResolvedEmpty()
	r.canBeResolvedEmpty()
	if c.empty != 1 || c.interest != 0 {
		t.Errorf("got %d empty and %d interest calls, want 1 and 0", c.empty, c.interest)
	}
	// both axes can be reached
	r.Interest()
	if c.interest != 1 {
		t.Errorf("queued callback should be notified of interest after empty")
	}
	late := &counter{}
	r.registerCallback(late.callback())
	if late.interest != 1 || late.empty != 1 {
		t.Errorf("late callback got %d interest and %d empty calls, want 1 and 1", late.interest, late.empty)
	}
	if len(r.callbacks) != 0 {
		t.Errorf("callbacks should be released once both transitions happened")
	}
}

func TestNestedResolversAreMemoized(t *testing.T) {
	c, r := newTestResolver()
	read := ReadFieldConstraint[string]{Field: "f"}
	r.Resolve(read, (&counter{}).callback())
	r.Resolve(read, (&counter{}).callback())
	// resolving the access path itself does not create a resolver
	r.Resolve(DeltaConstraint[string]{Delta: EmptyDelta[string]()}, (&counter{}).callback())

	var paths []string
	for _, a := range c.Analyzers() {
		paths = append(paths, a.AccessPath().String())
	}
	if diff := cmp.Diff([]string{"", ".f"}, paths); diff != "" {
		t.Errorf("analyzers mismatch (-want +got):\n%s", diff)
	}
}

func TestExclusionHierarchyIsShared(t *testing.T) {
	c, r := newTestResolver()
	writeF, writeG := WriteFieldConstraint[string]{Field: "f"}, WriteFieldConstraint[string]{Field: "g"}
	nested := func(from *CallEdgeResolver[string, string, string, string],
		constraint Constraint[string]) *CallEdgeResolver[string, string, string, string] {
		return from.getOrCreateNestedResolver(constraint.ApplyToAccessPath(from.resolvedAccessPath)).(*CallEdgeResolver[string, string, string, string])
	}
	fg := nested(nested(r, writeF), writeG)
	gf := nested(nested(r, writeG), writeF)
	if fg != gf {
		t.Errorf("%s and %s should be the same resolver", fg, gf)
	}
	if n := len(c.Analyzers()); n != 4 {
		t.Errorf("expected 4 analyzers, got %d", n)
	}
	if got := fg.ResolvedAccessPath().String(); got != "^{f,g}" {
		t.Errorf("got %q", got)
	}
}

func TestLockedResolverDoesNotResolve(t *testing.T) {
	c, r := newTestResolver()
	r.lock()
	r.Resolve(ReadFieldConstraint[string]{Field: "f"}, (&counter{}).callback())
	if n := len(c.Analyzers()); n != 1 {
		t.Errorf("locked resolver created nested analyzers")
	}
	r.unlock()
	if r.isLocked() {
		t.Errorf("resolver still locked")
	}
}

func TestZeroResolver(t *testing.T) {
	tests := []struct {
		name    string
		handler ZeroHandler[string]
		depth   int
		want    int
	}{
		{"unbounded", MaxLengthZeroHandler[string]{}, 3, 1},
		{"bounded", MaxLengthZeroHandler[string]{Max: 2}, 3, 0},
		{"within bound", MaxLengthZeroHandler[string]{Max: 2}, 2, 1},
		{"rejecting", ZeroHandlerFunc[string](func(AccessPath[string]) bool { return false }), 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContext()
			a := newPerAccessPathMethodAnalyzer[string, string, string, string]("m", "0", c, NewAccessPath[string](), nil)
			z := newZeroCallEdgeResolver(a, tt.handler)
			fields := make([]string, tt.depth)
			for i := range fields {
				fields[i] = "f"
			}
			cnt := &counter{}
			z.Resolve(DeltaConstraint[string]{Delta: NewAccessPath[string]().DeltaTo(NewAccessPath(fields...))},
				cnt.callback())
			if cnt.interest != tt.want || cnt.empty != 0 {
				t.Errorf("got %d interest and %d empty calls, want %d and 0", cnt.interest, cnt.empty, tt.want)
			}
			if len(c.Analyzers()) != 1 {
				t.Errorf("zero resolver should not create analyzers")
			}
		})
	}
}

// stubResolver answers every resolution the same way, and records the refinements it has been asked for
type stubResolver struct {
	resolverState[string, string, string, string]
	answer string
	asked  []string
}

func newStubResolver(a *PerAccessPathMethodAnalyzer[string, string, string, string], answer string) *stubResolver {
	s := &stubResolver{answer: answer}
	s.resolverState = resolverState[string, string, string, string]{analyzer: a, self: s}
	return s
}

func (s *stubResolver) Resolve(constraint Constraint[string], callback InterestCallback[string, string, string, string]) {
	s.asked = append(s.asked, constraint.ApplyToAccessPath(NewAccessPath[string]()).String())
	switch s.answer {
	case "interest":
		callback.Interest(s.analyzer, s)
	case "empty":
		callback.CanBeResolvedEmpty()
	}
}

func (s *stubResolver) Interest() { s.giveInterest() }

func (s *stubResolver) ResolvedAccessPath() AccessPath[string] { return NewAccessPath[string]() }

func (s *stubResolver) String() string { return "<stub " + s.answer + ">" }

func TestZeroResolverIsSharedByAnalyzer(t *testing.T) {
	c := newTestContext()
	a := newPerAccessPathMethodAnalyzer[string, string, string, string]("m", "x", c, NewAccessPath[string](), nil)
	z := a.zeroCallEdgeResolver()
	if z != a.zeroCallEdgeResolver() {
		t.Errorf("zero resolver of %s is not reused", a)
	}
	zero := newPerAccessPathMethodAnalyzer[string, string, string, string]("m", "0", c, NewAccessPath[string](), nil)
	if Resolver[string, string, string, string](zero.zeroCallEdgeResolver()) != zero.CallEdgeResolver() {
		t.Errorf("analyzer of the zero fact should use its call edge resolver")
	}
	h := NewAccessPathHandler[string, string, string, string](NewAccessPath("f"), a.callEdgeResolver)
	first, second := h.GenerateWithEmptyAccessPath("z"), h.GenerateWithEmptyAccessPath("z")
	if first.Fact.key() != second.Fact.key() {
		t.Errorf("facts generated with an empty access path differ: %s and %s", first.Fact, second.Fact)
	}
}
