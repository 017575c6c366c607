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

package datacache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ledgerplum/idp/plum"
	"github.com/ledgerplum/idp/seal"
	"github.com/ledgerplum/idp/storage"
)

// Puller is the subset of the replication client Datacache needs: pull the
// Plum named by headSeal from a remote peer into local storage. The Plums it
// depends on are not fetched with it. Defined here (rather than importing package replication) so
// replication.Client can satisfy it without a dependency cycle.
type Puller interface {
	Pull(ctx context.Context, host string, port int, headSeal seal.PlumHeadSeal) error
}

// Datacache is the process-wide cache of deserialized Plum bodies, keyed by
// seal. It holds type-erased shared handles; PlumRef[T] is the typed
// accessor on top of it. Multiple concurrent loads of the same seal
// collapse into a single underlying fetch+decode via singleflight.
type Datacache struct {
	store  storage.Store
	puller Puller // nil means no remote fetch is possible
	logger *zap.Logger

	mu     sync.RWMutex
	values map[seal.PlumHeadSeal]any

	group singleflight.Group
}

// New constructs a Datacache backed by store. puller may be nil, in which
// case Remote URIs whose Plum isn't already local fail rather than attempt
// a fetch. A nil logger falls back to zap.NewNop().
func New(store storage.Store, puller Puller, logger *zap.Logger) *Datacache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Datacache{
		store:  store,
		puller: puller,
		logger: logger,
		values: make(map[seal.PlumHeadSeal]any),
	}
}

// ErrDatacacheNotInitialized is returned by Default when SetDefault was
// never called: a reference depending on the process-singleton cache
// should fail loudly rather than silently construct one.
var ErrDatacacheNotInitialized = errors.New("datacache: process-singleton Datacache not initialized")

var (
	defaultMu    sync.RWMutex
	defaultCache *Datacache
)

// SetDefault installs dc as the process-wide singleton. Call once at
// program start.
func SetDefault(dc *Datacache) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultCache = dc
}

// Default returns the process-wide singleton, or ErrDatacacheNotInitialized
// if SetDefault was never called.
func Default() (*Datacache, error) {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	if defaultCache == nil {
		return nil, ErrDatacacheNotInitialized
	}
	return defaultCache, nil
}

// RemoteHasNotPlum means a Remote PlumURI could not be satisfied even after
// an attempted pull.
type RemoteHasNotPlum struct{ Seal seal.PlumHeadSeal }

func (e *RemoteHasNotPlum) Error() string {
	return fmt.Sprintf("datacache: remote does not have plum %s", e.Seal)
}

// ErrNoPullerConfigured means a Remote PlumURI's Plum wasn't found locally and
// this Datacache has no Puller to ask a peer for it.
var ErrNoPullerConfigured = errors.New("datacache: remote reference requires a Puller, none configured")

// clearCachedValue removes the mapping for seal; existing shared handles
// held by callers remain valid (the underlying pointer isn't touched, only
// the cache's own reference to it).
func (dc *Datacache) clearCachedValue(s seal.PlumHeadSeal) {
	dc.mu.Lock()
	delete(dc.values, s)
	dc.mu.Unlock()
}

// ClearCachedValue removes the cached value for the given seal, if any.
func (dc *Datacache) ClearCachedValue(s seal.PlumHeadSeal) { dc.clearCachedValue(s) }

// ClearCache removes every cached value.
func (dc *Datacache) ClearCache() {
	dc.mu.Lock()
	dc.values = make(map[seal.PlumHeadSeal]any)
	dc.mu.Unlock()
}

// loadFromStore loads the Plum named by headSeal from local storage only.
func (dc *Datacache) loadFromStore(ctx context.Context, headSeal seal.PlumHeadSeal) (*plum.Plum, error) {
	var p *plum.Plum
	err := dc.store.WithTx(ctx, func(tx storage.Tx) error {
		loaded, err := tx.LoadPlum(ctx, headSeal)
		p = loaded
		return err
	})
	return p, err
}

// loadPlum assembles the Plum named by uri, pulling from the configured
// Puller first if it's a Remote URI whose Plum isn't already local.
func (dc *Datacache) loadPlum(ctx context.Context, uri PlumURI) (*plum.Plum, error) {
	p, err := dc.loadFromStore(ctx, uri.HeadSeal)
	if err == nil {
		return p, nil
	}
	var notFound *storage.PlumHeadNotFound
	if !errors.As(err, &notFound) {
		return nil, err
	}
	if uri.IsLocal() {
		return nil, err
	}
	if dc.puller == nil {
		return nil, ErrNoPullerConfigured
	}
	if pullErr := dc.puller.Pull(ctx, uri.Host, uri.Port, uri.HeadSeal); pullErr != nil {
		return nil, pullErr
	}
	p, err = dc.loadFromStore(ctx, uri.HeadSeal)
	if err != nil {
		if errors.As(err, &notFound) {
			return nil, &RemoteHasNotPlum{Seal: uri.HeadSeal}
		}
		return nil, err
	}
	return p, nil
}

// loadAndDecode implements the single-flight-guarded load+decode path
// shared by every PlumRef[T]. decode turns the loaded Plum's body content
// into a *T; the resulting pointer is installed in the cache (so that two
// PlumRefs dereferencing the same seal observe pointer-identical values)
// and returned.
func loadAndDecode[T any](ctx context.Context, dc *Datacache, uri PlumURI, decode func(*plum.Plum) (*T, error)) (*T, error) {
	dc.mu.RLock()
	if cached, ok := dc.values[uri.HeadSeal]; ok {
		dc.mu.RUnlock()
		return cached.(*T), nil
	}
	dc.mu.RUnlock()

	result, err, _ := dc.group.Do(uri.HeadSeal.String(), func() (any, error) {
		dc.mu.RLock()
		if cached, ok := dc.values[uri.HeadSeal]; ok {
			dc.mu.RUnlock()
			return cached, nil
		}
		dc.mu.RUnlock()

		p, err := dc.loadPlum(ctx, uri)
		if err != nil {
			return nil, err
		}
		if err := p.Verify(); err != nil {
			return nil, err
		}
		value, err := decode(p)
		if err != nil {
			return nil, err
		}

		dc.mu.Lock()
		if existing, ok := dc.values[uri.HeadSeal]; ok {
			dc.mu.Unlock()
			return existing, nil
		}
		dc.values[uri.HeadSeal] = value
		dc.mu.Unlock()
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*T), nil
}
