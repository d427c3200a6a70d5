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

// Package formatutil manipulates string colors and other formatting operations.
package formatutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	bold    = "\033[1m%s\033[0m"
	faint   = "\033[2m%s\033[0m"
	red     = "\033[1;31m%s\033[0m"
	green   = "\033[1;32m%s\033[0m"
	yellow  = "\033[1;33m%s\033[0m"
	magenta = "\033[1;35m%s\033[0m"
	cyan    = "\033[1;36m%s\033[0m"
)

// Colorizer colors strings when its output is a terminal
type Colorizer struct {
	enabled bool
}

// NewColorizer returns a colorizer that colors strings iff enabled
func NewColorizer(enabled bool) Colorizer {
	return Colorizer{enabled: enabled}
}

// ForWriter returns a colorizer that colors strings iff w is a terminal
func ForWriter(w io.Writer) Colorizer {
	if f, ok := w.(*os.File); ok {
		return Colorizer{enabled: term.IsTerminal(int(f.Fd()))}
	}
	return Colorizer{}
}

// Enabled returns true if the colorizer colors strings
func (c Colorizer) Enabled() bool {
	return c.enabled
}

func (c Colorizer) color(format string, args []any) string {
	s := fmt.Sprint(args...)
	if !c.enabled {
		return s
	}
	return fmt.Sprintf(format, s)
}

func (c Colorizer) Bold(args ...any) string    { return c.color(bold, args) }
func (c Colorizer) Faint(args ...any) string   { return c.color(faint, args) }
func (c Colorizer) Red(args ...any) string     { return c.color(red, args) }
func (c Colorizer) Green(args ...any) string   { return c.color(green, args) }
func (c Colorizer) Yellow(args ...any) string  { return c.color(yellow, args) }
func (c Colorizer) Magenta(args ...any) string { return c.color(magenta, args) }
func (c Colorizer) Cyan(args ...any) string    { return c.color(cyan, args) }

// Sanitize is a simple sanitizer that removes all escape sequences
func Sanitize(s string) string {
	r := fmt.Sprintf("%q", s)
	if len(r) >= 2 {
		return r[1 : len(r)-1]
	}
	return r
}

// SanitizeRepr is a simple sanitizer that removes all escape sequences from the string representation of an object
func SanitizeRepr(s fmt.Stringer) string {
	return Sanitize(s.String())
}

// Indent prefixes every line of s with n spaces
func Indent(s string, n int) string {
	prefix := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
