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
	"sync/atomic"

	"github.com/ledgerplum/idp/codec"
	"github.com/ledgerplum/idp/plum"
)

// Decoder turns a Plum's body content into a *T. Most callers want
// DecodeContentClass, which additionally checks the body's declared
// content class.
type Decoder[T any] func(content plum.Content) (*T, error)

// DecodeContentClass builds a Decoder that rejects a body whose declared
// ContentClass doesn't match expectedClass before attempting to deserialize
// it, then decodes with codec.DecodeValueFromContent.
func DecodeContentClass[T any](expectedClass string) Decoder[T] {
	return func(content plum.Content) (*T, error) {
		var value T
		if err := codec.DecodeValueFromContent(content, expectedClass, &value); err != nil {
			return nil, err
		}
		return &value, nil
	}
}

// PlumRef is a typed, lazy, cacheable handle for a Plum's deserialized body.
// It never owns the underlying value; the Datacache does. Two PlumRefs
// constructed with the same URI against the same Datacache dereference to
// pointer-identical values once both have succeeded, per the cache identity
// contract.
type PlumRef[T any] struct {
	uri     PlumURI
	dc      *Datacache
	decoder Decoder[T]

	// cached is the PlumRef's own fast-path handle: once a dereference has
	// succeeded, later calls skip the Datacache's lock and singleflight
	// group entirely -- an optimization over always asking the cache, not
	// a second source of truth (the Datacache's map is authoritative;
	// ClearCachedValue only ever forgets the cache's own reference, never
	// rewrites this pointer).
	cached atomic.Pointer[T]
}

// NewPlumRef builds a PlumRef over uri, backed by dc, decoding the Plum
// body with decoder.
func NewPlumRef[T any](uri PlumURI, dc *Datacache, decoder Decoder[T]) *PlumRef[T] {
	return &PlumRef[T]{uri: uri, dc: dc, decoder: decoder}
}

// URI returns the PlumURI this ref was constructed with.
func (r *PlumRef[T]) URI() PlumURI { return r.uri }

// Value dereferences the ref: if a fast-path handle is already cached it is
// returned directly; otherwise the Datacache is consulted (and, for Remote
// URIs whose Plum isn't local, a pull is attempted) and the decoded value is
// cached for subsequent calls.
func (r *PlumRef[T]) Value(ctx context.Context) (*T, error) {
	if v := r.cached.Load(); v != nil {
		return v, nil
	}

	v, err := loadAndDecode(ctx, r.dc, r.uri, func(p *plum.Plum) (*T, error) {
		return r.decoder(plum.Content{Metadata: bodyContentMetadata(p), Bytes: p.Body.Content})
	})
	if err != nil {
		return nil, err
	}
	r.cached.Store(v)
	return v, nil
}

func bodyContentMetadata(p *plum.Plum) plum.ContentMetadata {
	return plum.ContentMetadata{
		Length:   p.Body.ContentLength,
		Class:    p.Body.ContentClass,
		Format:   p.Body.ContentFormat,
		Encoding: p.Body.ContentEncoding,
	}
}
