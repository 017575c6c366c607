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
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/ledgerplum/idp/plum"
	"github.com/ledgerplum/idp/seal"
)

// MemoizedLookup wraps a Lookup with a bounded LRU cache of the direct
// Relations component per head seal. Closure computation (the replication
// sender, in particular) repeatedly re-walks overlapping subtrees across
// many Push calls, so caching the direct-edges lookup -- unlike the
// Plum *values* the Datacache holds, which must never be evicted -- is
// safe to bound and evict: a cache miss just costs a re-fetch from
// storage, never a correctness problem, since Relations is immutable once
// sealed.
type MemoizedLookup struct {
	lookup Lookup
	mu     sync.Mutex
	cache  *simplelru.LRU[seal.PlumHeadSeal, *plum.Relations]
}

// NewMemoizedLookup wraps lookup with an LRU cache holding up to size
// entries.
func NewMemoizedLookup(lookup Lookup, size int) (*MemoizedLookup, error) {
	cache, err := simplelru.NewLRU[seal.PlumHeadSeal, *plum.Relations](size, nil)
	if err != nil {
		return nil, err
	}
	return &MemoizedLookup{lookup: lookup, cache: cache}, nil
}

// RelationsFor implements Lookup, serving from cache when possible.
func (m *MemoizedLookup) RelationsFor(ctx context.Context, head seal.PlumHeadSeal) (*plum.Relations, error) {
	m.mu.Lock()
	if cached, ok := m.cache.Get(head); ok {
		m.mu.Unlock()
		return cached, nil
	}
	m.mu.Unlock()

	relations, err := m.lookup.RelationsFor(ctx, head)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.cache.Add(head, relations)
	m.mu.Unlock()
	return relations, nil
}
