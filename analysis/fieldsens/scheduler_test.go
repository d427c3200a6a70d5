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
	"testing"

	"github.com/awslabs/ar-go-fieldsens/analysis/fieldsens"
	"github.com/google/go-cmp/cmp"
)

func TestSchedulerIsLIFO(t *testing.T) {
	s := fieldsens.NewScheduler()
	var order []int
	s.Schedule(func() { order = append(order, 1) })
	s.Schedule(func() {
		order = append(order, 2)
		s.Schedule(func() { order = append(order, 4) })
	})
	s.Schedule(func() { order = append(order, 3) })
	if s.Pending() != 3 {
		t.Errorf("expected 3 pending jobs, got %d", s.Pending())
	}
	s.RunAndAwaitCompletion()
	if diff := cmp.Diff([]int{3, 2, 4, 1}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if s.Pending() != 0 || s.Executed() != 4 {
		t.Errorf("got %d pending and %d executed jobs", s.Pending(), s.Executed())
	}
	s.RunAndAwaitCompletion()
	if s.Executed() != 4 {
		t.Errorf("running an empty scheduler should not execute jobs")
	}
}
