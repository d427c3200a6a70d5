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

/*
Package config provides a simple way to manage the configuration of the solvers.

Use [LoadFile](filename) to load a configuration from a specific filename, or [Load](filename, contents) when the
contents are already in memory.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file should be in yaml format. The top-level fields can be any of the fields defined in the Config
struct type. For example, a valid config file is as follows:

	options:
	  log-level: 5
	  follow-returns-past-seeds: true
	  max-access-path-length: 3

# Logging

[NewLogGroup] returns the leveled loggers used by the solvers. The levels go from [ErrLevel] to [TraceLevel]; at
[TraceLevel], the solvers log every propagation, which is only useful on small problems.
*/
package config
