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

package config

import "errors"

const (
	// DefaultMaxAccessPathLength is the default bound on the access paths generated from empty access paths.
	// 0 means that access paths are not bounded.
	DefaultMaxAccessPathLength = 0
)

// ErrInvalidOption is returned when a configuration file sets an option to a value outside its domain
var ErrInvalidOption = errors.New("invalid option")
