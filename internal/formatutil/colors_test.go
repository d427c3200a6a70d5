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

package formatutil

import (
	"bytes"
	"strings"
	"testing"
)

func TestColorizer(t *testing.T) {
	tests := []struct {
		name    string
		c       Colorizer
		colored bool
	}{
		{"disabled", NewColorizer(false), false},
		{"enabled", NewColorizer(true), true},
		{"buffer", ForWriter(&bytes.Buffer{}), false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for _, s := range []string{test.c.Bold("x"), test.c.Red("x"), test.c.Cyan("x"), test.c.Faint("x")} {
				if strings.Contains(s, "\033[") != test.colored {
					t.Errorf("unexpected coloring of %q", s)
				}
				if !strings.Contains(s, "x") {
					t.Errorf("colored string %q lost its contents", s)
				}
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	s := NewColorizer(true).Green("ok")
	if strings.Contains(Sanitize(s), "\033") {
		t.Errorf("escape sequence left in %q", Sanitize(s))
	}
}

func TestIndent(t *testing.T) {
	if got := Indent("a\n\nb", 2); got != "  a\n\n  b" {
		t.Errorf("unexpected indentation %q", got)
	}
}
