// Copyright 2025 The IDP Authors
// This file is part of IDP.
//
// IDP is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// IDP is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with IDP. If not, see <http://www.gnu.org/licenses/>.

package relation

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledgerplum/idp/seal"
)

// QueryResult is the outcome of resolving one path segment of a fragment
// query against a FragmentQueryable body.
type QueryResult struct {
	// Value, when Forward is false, is the final answer: a seal naming a
	// Plum directly.
	Value seal.PlumHeadSeal
	// Forward, when true, means the query isn't finished: keep resolving
	// Rest against the Plum named by Target.
	Forward bool
	Target  seal.PlumHeadSeal
	Rest    string
}

// FragmentQueryable is implemented by structured body types that expose
// named children addressable via a "/"-separated path string.
type FragmentQueryable interface {
	// FragmentQuerySingleSegment resolves the first path segment of
	// queryStr against self (whose own head seal is selfHeadSeal, needed
	// to answer the empty-string self-query), returning either a terminal
	// Value or an instruction to continue the query against Target with
	// the remaining path Rest.
	FragmentQuerySingleSegment(selfHeadSeal seal.PlumHeadSeal, queryStr string) (QueryResult, error)
}

// UnknownFragmentSegment means the first path segment of a fragment query
// doesn't name a child this body type exposes.
type UnknownFragmentSegment struct {
	BodyType string
	Segment  string
}

func (e *UnknownFragmentSegment) Error() string {
	return fmt.Sprintf("relation: %s has no fragment-queryable child named %q", e.BodyType, e.Segment)
}

// FragmentQueryableBodyOpaque means the Plum at the current query position
// isn't one of the registered FragmentQueryable body types, so the query
// can't proceed past it.
type FragmentQueryableBodyOpaque struct {
	ContentClass string
}

func (e *FragmentQueryableBodyOpaque) Error() string {
	return fmt.Sprintf("relation: content class %q is not fragment-queryable", e.ContentClass)
}

// Resolver loads a Plum body (already deserialized into a FragmentQueryable)
// given its head seal, dispatching on content class. Implemented by
// whatever package wires storage + codec together (typically datacache).
type Resolver interface {
	LoadFragmentQueryable(ctx context.Context, head seal.PlumHeadSeal) (FragmentQueryable, error)
}

// FragmentQuery resolves a full "/"-separated path starting at
// startingHeadSeal by repeatedly calling FragmentQuerySingleSegment and
// following ForwardQueryTo instructions, terminating either at a Value or
// an error. Each hop's remaining query string is strictly shorter than the
// one before it, which is what guarantees termination.
func FragmentQuery(ctx context.Context, resolver Resolver, startingHeadSeal seal.PlumHeadSeal, queryStr string) (seal.PlumHeadSeal, error) {
	currentHeadSeal := startingHeadSeal
	currentQueryStr := queryStr
	for {
		queryable, err := resolver.LoadFragmentQueryable(ctx, currentHeadSeal)
		if err != nil {
			return seal.PlumHeadSeal{}, err
		}
		result, err := queryable.FragmentQuerySingleSegment(currentHeadSeal, currentQueryStr)
		if err != nil {
			return seal.PlumHeadSeal{}, err
		}
		if !result.Forward {
			return result.Value, nil
		}
		if len(result.Rest) >= len(currentQueryStr) {
			return seal.PlumHeadSeal{}, fmt.Errorf("relation: fragment query did not make progress at %q", currentQueryStr)
		}
		currentHeadSeal = result.Target
		currentQueryStr = result.Rest
	}
}

// splitFirstSegment splits a "/"-separated query string into its first
// segment and the rest (without the separating slash). An empty query
// string has no first segment.
func splitFirstSegment(queryStr string) (first, rest string, hasRest bool) {
	idx := strings.IndexByte(queryStr, '/')
	if idx < 0 {
		return queryStr, "", false
	}
	return queryStr[:idx], queryStr[idx+1:], true
}
