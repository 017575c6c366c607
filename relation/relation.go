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

// Package relation computes the transitive closure of a Plum's outgoing
// relation edges, and implements the two built-in relation-bearing body
// types (BranchNode, DirNode) along with the fragment-query mechanism used
// to address into them by path.
package relation

import (
	"context"
	"errors"

	"github.com/ledgerplum/idp/plum"
	"github.com/ledgerplum/idp/seal"
	"github.com/ledgerplum/idp/storage"
)

// Relational is implemented by any body type that can report its own
// direct (non-transitive) outgoing relations, filtered by mask. It backs
// the Relations component that accompanies such a Plum's Head.
type Relational interface {
	AccumulateRelationsNonrecursive(relations map[seal.PlumHeadSeal]plum.RelationFlags, mask plum.RelationFlags)
}

// Lookup is the read-side collaborator AccumulatedRelationsRecursive needs:
// given a Plum's head seal, return its Relations component, or (nil, nil)
// if that Plum has no Relations component at all. Implemented by
// storage.Store, whose RelationsFor returns a *storage.PlumHeadNotFound for
// a head it never stored at all; AccumulatedRelationsRecursive treats that
// case as a skipped edge rather than a propagated error, since a closure
// walk routinely reaches seals a given store doesn't have.
type Lookup interface {
	RelationsFor(ctx context.Context, head seal.PlumHeadSeal) (*plum.Relations, error)
}

// AccumulatedRelationsRecursive walks the relation graph reachable from
// root, masking every edge's flags against mask, and returns the full set
// of reached seals together with the union of masked flags under which
// each was reached.
//
// The mask argument passed to every recursive step is always the
// ORIGINAL caller-supplied mask, never the intersection computed at the
// current node: a relation type that only ever sets CONTENT_DEPENDENCY
// (e.g. DirNode) does not narrow the mask for its own children, so a
// caller asking for the full mask still gets METADATA_DEPENDENCY edges
// further down the graph. This mirrors the reference closure walk this
// package is grounded on.
func AccumulatedRelationsRecursive(ctx context.Context, lookup Lookup, root seal.PlumHeadSeal, mask plum.RelationFlags) (map[seal.PlumHeadSeal]plum.RelationFlags, error) {
	visited := make(map[seal.PlumHeadSeal]plum.RelationFlags)
	onStack := make(map[seal.PlumHeadSeal]bool)
	if err := accumulateRecursive(ctx, lookup, root, mask, visited, onStack); err != nil {
		return nil, err
	}
	return visited, nil
}

// accumulateRecursive guards against cycles with two sets: visited (nodes
// whose direct relations have already been fully expanded -- a plain memo,
// handling diamonds) and onStack (nodes on the current DFS path -- catches
// a cycle that loops back to an ancestor, including one that loops all the
// way back to root, before that ancestor's own call has had a chance to
// populate visited for it).
func accumulateRecursive(ctx context.Context, lookup Lookup, head seal.PlumHeadSeal, mask plum.RelationFlags, visited map[seal.PlumHeadSeal]plum.RelationFlags, onStack map[seal.PlumHeadSeal]bool) error {
	if _, ok := visited[head]; ok {
		return nil
	}
	if onStack[head] {
		return nil
	}
	onStack[head] = true
	defer delete(onStack, head)

	relations, err := lookup.RelationsFor(ctx, head)
	if err != nil {
		var notFound *storage.PlumHeadNotFound
		if errors.As(err, &notFound) {
			// The edge points at a seal this Lookup never stored -- skip it
			// rather than aborting the whole walk, so a caller still gets
			// the reachable subset of the closure.
			return nil
		}
		return err
	}
	if relations == nil {
		return nil
	}

	direct := make(map[seal.PlumHeadSeal]plum.RelationFlags)
	for _, m := range relations.Mappings {
		masked := mask & m.Flags
		if masked == plum.RelationNone {
			continue
		}
		direct[m.Target] |= masked
	}

	for target, flags := range direct {
		// Recurse with the caller's original mask, not the intersection
		// computed here -- see doc comment above.
		if err := accumulateRecursive(ctx, lookup, target, mask, visited, onStack); err != nil {
			return err
		}
		visited[target] |= flags
	}
	return nil
}
