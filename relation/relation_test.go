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

package relation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerplum/idp/plum"
	"github.com/ledgerplum/idp/relation"
	"github.com/ledgerplum/idp/seal"
	"github.com/ledgerplum/idp/storage"
)

func sealFor(b byte) seal.PlumHeadSeal {
	var digest [seal.Size]byte
	digest[0] = b
	return seal.PlumHeadSeal{Seal: seal.FromSHA256(digest)}
}

type fakeLookup map[seal.PlumHeadSeal]*plum.Relations

func (f fakeLookup) RelationsFor(_ context.Context, head seal.PlumHeadSeal) (*plum.Relations, error) {
	return f[head], nil
}

func TestAccumulatedRelationsRecursiveSimpleChain(t *testing.T) {
	a, b, c := sealFor(1), sealFor(2), sealFor(3)
	lookup := fakeLookup{
		a: {Mappings: []plum.RelationMapping{{Target: b, Flags: plum.RelationContentDependency}}},
		b: {Mappings: []plum.RelationMapping{{Target: c, Flags: plum.RelationMetadataDependency}}},
	}

	closure, err := relation.AccumulatedRelationsRecursive(context.Background(), lookup, a, plum.RelationAll)
	require.NoError(t, err)
	require.Len(t, closure, 2)
	require.Equal(t, plum.RelationContentDependency, closure[b])
	require.Equal(t, plum.RelationMetadataDependency, closure[c])
}

func TestAccumulatedRelationsRecursiveMaskFiltersEdges(t *testing.T) {
	a, b := sealFor(1), sealFor(2)
	lookup := fakeLookup{
		a: {Mappings: []plum.RelationMapping{{Target: b, Flags: plum.RelationMetadataDependency}}},
	}

	closure, err := relation.AccumulatedRelationsRecursive(context.Background(), lookup, a, plum.RelationContentDependency)
	require.NoError(t, err)
	require.Empty(t, closure)
}

func TestAccumulatedRelationsRecursiveMaskPreservedThroughRecursion(t *testing.T) {
	// a --METADATA--> b --CONTENT--> c
	// Even though b only exposes METADATA_DEPENDENCY to a, the caller's
	// full mask still lets b's own CONTENT_DEPENDENCY edge to c through.
	a, b, c := sealFor(1), sealFor(2), sealFor(3)
	lookup := fakeLookup{
		a: {Mappings: []plum.RelationMapping{{Target: b, Flags: plum.RelationMetadataDependency}}},
		b: {Mappings: []plum.RelationMapping{{Target: c, Flags: plum.RelationContentDependency}}},
	}

	closure, err := relation.AccumulatedRelationsRecursive(context.Background(), lookup, a, plum.RelationAll)
	require.NoError(t, err)
	require.Contains(t, closure, c)
	require.Equal(t, plum.RelationContentDependency, closure[c])
}

func TestAccumulatedRelationsRecursiveTerminatesOnCycleThroughRoot(t *testing.T) {
	a, b, c := sealFor(1), sealFor(2), sealFor(3)
	lookup := fakeLookup{
		a: {Mappings: []plum.RelationMapping{{Target: b, Flags: plum.RelationAll}}},
		b: {Mappings: []plum.RelationMapping{{Target: c, Flags: plum.RelationAll}}},
		c: {Mappings: []plum.RelationMapping{{Target: a, Flags: plum.RelationAll}}},
	}

	done := make(chan struct{})
	var closure map[seal.PlumHeadSeal]plum.RelationFlags
	var err error
	go func() {
		closure, err = relation.AccumulatedRelationsRecursive(context.Background(), lookup, a, plum.RelationAll)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("AccumulatedRelationsRecursive did not terminate on a cycle through root")
	}
	require.NoError(t, err)
	require.Contains(t, closure, b)
	require.Contains(t, closure, c)
}

func TestAccumulatedRelationsRecursiveMissingRelationsSkipped(t *testing.T) {
	a, b := sealFor(1), sealFor(2)
	lookup := fakeLookup{
		a: {Mappings: []plum.RelationMapping{{Target: b, Flags: plum.RelationAll}}},
		// b intentionally absent from lookup.
	}

	closure, err := relation.AccumulatedRelationsRecursive(context.Background(), lookup, a, plum.RelationAll)
	require.NoError(t, err)
	require.Contains(t, closure, b)
}

// storeBackedLookup mimics storage.Store's RelationsFor contract: a head
// never stored at all is PlumHeadNotFound, distinct from a stored head with
// no Relations component (nil, nil).
type storeBackedLookup map[seal.PlumHeadSeal]*plum.Relations

func (f storeBackedLookup) RelationsFor(_ context.Context, head seal.PlumHeadSeal) (*plum.Relations, error) {
	relations, ok := f[head]
	if !ok {
		return nil, &storage.PlumHeadNotFound{Seal: head}
	}
	return relations, nil
}

func TestAccumulatedRelationsRecursiveUnknownHeadEdgeSkipped(t *testing.T) {
	a, b, c := sealFor(1), sealFor(2), sealFor(3)
	lookup := storeBackedLookup{
		a: {Mappings: []plum.RelationMapping{
			{Target: b, Flags: plum.RelationAll},
			{Target: c, Flags: plum.RelationAll},
		}},
		c: {},
		// b intentionally never stored: RelationsFor(b) returns
		// PlumHeadNotFound, not (nil, nil).
	}

	closure, err := relation.AccumulatedRelationsRecursive(context.Background(), lookup, a, plum.RelationAll)
	require.NoError(t, err)
	require.Contains(t, closure, b)
	require.Contains(t, closure, c)
}

func TestClosureMonotonicity(t *testing.T) {
	a, b, c := sealFor(1), sealFor(2), sealFor(3)
	lookup := fakeLookup{
		a: {Mappings: []plum.RelationMapping{
			{Target: b, Flags: plum.RelationContentDependency},
			{Target: c, Flags: plum.RelationMetadataDependency},
		}},
	}

	full, err := relation.AccumulatedRelationsRecursive(context.Background(), lookup, a, plum.RelationAll)
	require.NoError(t, err)
	contentOnly, err := relation.AccumulatedRelationsRecursive(context.Background(), lookup, a, plum.RelationContentDependency)
	require.NoError(t, err)

	for k := range contentOnly {
		require.Contains(t, full, k)
	}
}

func TestBranchNodeFragmentQuerySelf(t *testing.T) {
	self := sealFor(1)
	metadata := sealFor(2)
	n := &relation.BranchNode{Metadata: metadata}

	result, err := n.FragmentQuerySingleSegment(self, "")
	require.NoError(t, err)
	require.False(t, result.Forward)
	require.Equal(t, self, result.Value)
}

func TestBranchNodeFragmentQueryMetadataForward(t *testing.T) {
	self := sealFor(1)
	metadata := sealFor(2)
	n := &relation.BranchNode{Metadata: metadata}

	result, err := n.FragmentQuerySingleSegment(self, "metadata")
	require.NoError(t, err)
	require.False(t, result.Forward)
	require.Equal(t, metadata, result.Value)

	result, err = n.FragmentQuerySingleSegment(self, "metadata/stuff")
	require.NoError(t, err)
	require.True(t, result.Forward)
	require.Equal(t, metadata, result.Target)
	require.Equal(t, "stuff", result.Rest)
}

func TestBranchNodeFragmentQueryMissingAncestorErrors(t *testing.T) {
	n := &relation.BranchNode{Metadata: sealFor(2)}
	_, err := n.FragmentQuerySingleSegment(sealFor(1), "ancestor")
	require.Error(t, err)
}

func TestDirNodeFragmentQuerySelfAndEntries(t *testing.T) {
	self := sealFor(1)
	child := sealFor(2)
	n := &relation.DirNode{Entries: map[string]seal.PlumHeadSeal{"a.txt": child}}

	result, err := n.FragmentQuerySingleSegment(self, "")
	require.NoError(t, err)
	require.Equal(t, self, result.Value)

	result, err = n.FragmentQuerySingleSegment(self, "/")
	require.NoError(t, err)
	require.Equal(t, self, result.Value)

	result, err = n.FragmentQuerySingleSegment(self, "a.txt")
	require.NoError(t, err)
	require.False(t, result.Forward)
	require.Equal(t, child, result.Value)

	_, err = n.FragmentQuerySingleSegment(self, "nonexistent")
	require.Error(t, err)
}

func TestDirNodeFragmentQueryForwardsNestedPath(t *testing.T) {
	self := sealFor(1)
	child := sealFor(2)
	n := &relation.DirNode{Entries: map[string]seal.PlumHeadSeal{"dir0": child}}

	result, err := n.FragmentQuerySingleSegment(self, "dir0/stuff/and/things")
	require.NoError(t, err)
	require.True(t, result.Forward)
	require.Equal(t, child, result.Target)
	require.Equal(t, "stuff/and/things", result.Rest)
}

func TestMemoizedLookupServesFromCache(t *testing.T) {
	a, b := sealFor(1), sealFor(2)
	calls := 0
	base := countingLookup{
		inner: fakeLookup{a: {Mappings: []plum.RelationMapping{{Target: b, Flags: plum.RelationAll}}}},
		calls: &calls,
	}
	memo, err := relation.NewMemoizedLookup(base, 16)
	require.NoError(t, err)

	_, err = memo.RelationsFor(context.Background(), a)
	require.NoError(t, err)
	_, err = memo.RelationsFor(context.Background(), a)
	require.NoError(t, err)

	require.Equal(t, 1, calls)
}

type countingLookup struct {
	inner fakeLookup
	calls *int
}

func (c countingLookup) RelationsFor(ctx context.Context, head seal.PlumHeadSeal) (*plum.Relations, error) {
	*c.calls++
	return c.inner.RelationsFor(ctx, head)
}
