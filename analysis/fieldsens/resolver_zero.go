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

import "golang.org/x/exp/constraints"

// ZeroCallEdgeResolver is the call edge resolver of analyzers of the zero fact, and the resolver of facts generated
// with an empty access path. It stores nothing: resolution is decided immediately by a ZeroHandler, and never
// creates nested resolvers.
type ZeroCallEdgeResolver[F constraints.Ordered, D, S, M comparable] struct {
	*CallEdgeResolver[F, D, S, M]
	zeroHandler ZeroHandler[F]
}

func newZeroCallEdgeResolver[F constraints.Ordered, D, S, M comparable](analyzer *PerAccessPathMethodAnalyzer[F, D, S, M],
	zeroHandler ZeroHandler[F]) *ZeroCallEdgeResolver[F, D, S, M] {
	z := &ZeroCallEdgeResolver[F, D, S, M]{CallEdgeResolver: &CallEdgeResolver[F, D, S, M]{}, zeroHandler: zeroHandler}
	z.resolverTemplate = newResolverTemplate[F, D, S, M, *CallEdge[F, D, S, M]](analyzer, z, NewAccessPath[F](), nil)
	return z
}

// Resolve gives interest immediately when the zero handler accepts the access path the constraint generates
func (z *ZeroCallEdgeResolver[F, D, S, M]) Resolve(constraint Constraint[F], callback InterestCallback[F, D, S, M]) {
	if z.zeroHandler.ShouldGenerateAccessPath(constraint.ApplyToAccessPath(NewAccessPath[F]())) {
		callback.Interest(z.analyzer, z)
	}
}

// Interest does nothing: zero facts do not need to be asked for
func (z *ZeroCallEdgeResolver[F, D, S, M]) Interest() {}

func (z *ZeroCallEdgeResolver[F, D, S, M]) String() string {
	return "<ZeroCallEdgeResolver>"
}
