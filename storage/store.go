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

// Package storage defines the transactional persistence contract for
// Plums and mutable named Paths. The sqlite subpackage is the one
// reference implementation, but callers should code against this
// interface.
package storage

import (
	"context"

	"github.com/ledgerplum/idp/plum"
	"github.com/ledgerplum/idp/seal"
)

// PathState is a mutable named pointer: a path string and the head seal
// of the Plum it currently points to, plus the row's insertion/last-update
// timestamps for display.
type PathState struct {
	Path                  string
	CurrentStateHeadSeal  seal.PlumHeadSeal
	RowInsertedAtUnixNano int64
	RowUpdatedAtUnixNano  int64
}

// Tx is a single transaction's view of the store. All operations issued
// against it observe a linear order and either all commit or all roll
// back together.
type Tx interface {
	// StorePlumBody inserts body if its seal isn't already present
	// (content-addressed dedup); a pre-existing row with the same seal is
	// not an error.
	StorePlumBody(ctx context.Context, body *plum.Body) (seal.PlumBodySeal, error)
	// StorePlumMetadata inserts metadata if its seal isn't already
	// present.
	StorePlumMetadata(ctx context.Context, metadata *plum.Metadata) (seal.PlumMetadataSeal, error)
	// StorePlumRelations inserts relations (and its mapping rows) if its
	// seal isn't already present.
	StorePlumRelations(ctx context.Context, relations *plum.Relations) (seal.PlumRelationsSeal, error)
	// StorePlumHead inserts head if its seal isn't already present.
	StorePlumHead(ctx context.Context, head *plum.Head) (seal.PlumHeadSeal, error)
	// StorePlum stores all present components of p and returns its Head
	// seal. It does not call p.Verify(); callers that need that guarantee
	// should call it themselves first.
	StorePlum(ctx context.Context, p *plum.Plum) (seal.PlumHeadSeal, error)

	// LoadPlumHead returns PlumHeadNotFound if absent.
	LoadPlumHead(ctx context.Context, s seal.PlumHeadSeal) (*plum.Head, error)
	// LoadPlumBody returns PlumBodyNotFound if absent.
	LoadPlumBody(ctx context.Context, s seal.PlumBodySeal) (*plum.Body, error)
	// LoadPlumMetadata returns PlumMetadataNotFound if absent.
	LoadPlumMetadata(ctx context.Context, s seal.PlumMetadataSeal) (*plum.Metadata, error)
	// LoadPlumRelations returns PlumRelationsNotFound if absent.
	LoadPlumRelations(ctx context.Context, s seal.PlumRelationsSeal) (*plum.Relations, error)
	// LoadPlum assembles the full Plum named by headSeal, loading
	// whichever components the Head declares present.
	LoadPlum(ctx context.Context, headSeal seal.PlumHeadSeal) (*plum.Plum, error)

	// RelationsFor implements relation.Lookup: it returns the Relations
	// component belonging to the Plum named by headSeal, or (nil, nil) if
	// that Plum's Head declares no Relations at all. Unlike LoadPlum, an
	// unknown head seal IS an error (PlumHeadNotFound); only an absent
	// Relations component on a known head yields (nil, nil).
	RelationsFor(ctx context.Context, headSeal seal.PlumHeadSeal) (*plum.Relations, error)

	// GetPathState returns PathNotFound if path doesn't exist.
	GetPathState(ctx context.Context, path string) (*PathState, error)
	// CreatePathState inserts a new path row, failing if it already
	// exists.
	CreatePathState(ctx context.Context, path string, headSeal seal.PlumHeadSeal) error
	// UpdatePathState overwrites an existing path row's current state,
	// failing with PathNotFound if it doesn't exist.
	UpdatePathState(ctx context.Context, path string, headSeal seal.PlumHeadSeal) error
	// DeletePathState soft-deletes path: the row is tombstoned rather than
	// removed, so GetPathState/UpdatePathState/ListPathStates no longer
	// surface it and a plain CreatePathState can't resurrect it under a
	// new owner. Fails with PathNotFound if path doesn't exist or is
	// already deleted.
	DeletePathState(ctx context.Context, path string) error
	// ListPathStates returns every non-deleted path's current state,
	// ordered by path, for display.
	ListPathStates(ctx context.Context) ([]PathState, error)
}

// Store opens transactions. Implementations give read-committed
// semantics: operations within one Tx observe a linear order, but
// concurrent Txs only see each other's effects once committed.
type Store interface {
	// WithTx runs fn inside a single transaction, committing if fn
	// returns nil and rolling back otherwise (including on panic, which
	// is re-raised after rollback).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// RelationsFor is a convenience that opens its own transaction; it
	// exists so Store itself satisfies relation.Lookup
	// without callers having to open a Tx by hand for simple reads.
	RelationsFor(ctx context.Context, headSeal seal.PlumHeadSeal) (*plum.Relations, error)

	// Close releases the underlying connection(s).
	Close() error
}
