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

package plum

import (
	"fmt"

	"github.com/ledgerplum/idp/seal"
)

// Builder assembles a verified Plum from its content, relations and
// metadata pieces, computing the three component seals and the Head in the
// right order so callers never have to get the wiring wrong by hand.
//
// The zero value is ready to use; call the With* methods to set fields, then
// Build. Relations default to an empty (but present) mapping list, which is
// different from omitting Relations entirely -- use WithoutRelations for
// that.
type Builder struct {
	headNonce        Nonce
	headNoncePresent bool

	metadataNonce          Nonce
	metadataNoncePresent   bool
	createdAtUnixNano      int64
	createdAtPresent       bool
	includeBodyContentMeta bool
	additionalContent      []byte

	relationsNonce        Nonce
	relationsNoncePresent bool
	mappings              []RelationMapping
	relationsOmitted      bool

	bodyNonce        Nonce
	bodyNoncePresent bool
	content          *Content

	ownerID        string
	ownerIDPresent bool
}

// NewBuilder returns a Builder with the defaults matching the upstream
// reference builder: body content metadata is copied into Metadata by
// default, and Relations is present (possibly with zero mappings) unless
// WithoutRelations is called.
func NewBuilder() *Builder {
	return &Builder{includeBodyContentMeta: true}
}

// WithHeadNonce sets the Head's own nonce.
func (b *Builder) WithHeadNonce(n Nonce) *Builder {
	b.headNonce, b.headNoncePresent = n, true
	return b
}

// WithMetadataNonce sets the Metadata component's nonce.
func (b *Builder) WithMetadataNonce(n Nonce) *Builder {
	b.metadataNonce, b.metadataNoncePresent = n, true
	return b
}

// WithCreatedAt sets the creation timestamp recorded in Metadata.
func (b *Builder) WithCreatedAt(unixNano int64) *Builder {
	b.createdAtUnixNano, b.createdAtPresent = unixNano, true
	return b
}

// WithoutBodyContentMetadata suppresses the copy of the Body's
// ContentMetadata that would otherwise be recorded in Metadata, letting
// Metadata be looked up without implicitly revealing the Body's shape.
func (b *Builder) WithoutBodyContentMetadata() *Builder {
	b.includeBodyContentMeta = false
	return b
}

// WithAdditionalMetadataContent attaches arbitrary extra bytes to Metadata.
func (b *Builder) WithAdditionalMetadataContent(content []byte) *Builder {
	b.additionalContent = content
	return b
}

// WithRelationsNonce sets the Relations component's nonce.
func (b *Builder) WithRelationsNonce(n Nonce) *Builder {
	b.relationsNonce, b.relationsNoncePresent = n, true
	return b
}

// WithRelationMapping appends a fully-formed RelationMapping.
func (b *Builder) WithRelationMapping(m RelationMapping) *Builder {
	b.mappings = append(b.mappings, m)
	return b
}

// WithoutRelations omits the Relations component entirely, distinct from an
// empty mapping list (which still produces a Relations component and a
// RelationsSeal in the Head).
func (b *Builder) WithoutRelations() *Builder {
	b.relationsOmitted = true
	return b
}

// WithBodyNonce sets the Body component's nonce.
func (b *Builder) WithBodyNonce(n Nonce) *Builder {
	b.bodyNonce, b.bodyNoncePresent = n, true
	return b
}

// WithContent sets the Body's content. This is required; Build fails
// without it.
func (b *Builder) WithContent(content Content) *Builder {
	b.content = &content
	return b
}

// WithOwnerID sets the Head's owner id, the DID that a signed ownership
// chain must resolve to in order to authorize mutations gated on this Plum.
func (b *Builder) WithOwnerID(ownerID string) *Builder {
	b.ownerID, b.ownerIDPresent = ownerID, true
	return b
}

// Build assembles and seals a Plum from the accumulated fields, validating
// that content was supplied. The returned Plum's Verify() call is
// guaranteed to succeed, since the seals are derived from the same
// component values being returned.
func (b *Builder) Build() (*Plum, error) {
	if b.content == nil {
		return nil, fmt.Errorf("plum: Builder.Build: no body content supplied; call WithContent first")
	}

	body := Body{
		Nonce:           nonceOrNil(b.bodyNonce, b.bodyNoncePresent),
		ContentLength:   b.content.Metadata.Length,
		ContentClass:    b.content.Metadata.Class,
		ContentFormat:   b.content.Metadata.Format,
		ContentEncoding: b.content.Metadata.Encoding,
		Content:         b.content.Bytes,
	}
	bodySeal := body.Seal()

	var relations *Relations
	var relationsSealPtr *seal.PlumRelationsSeal
	if !b.relationsOmitted {
		relations = &Relations{
			Nonce:    nonceOrNil(b.relationsNonce, b.relationsNoncePresent),
			Source:   bodySeal,
			Mappings: b.mappings,
		}
		rs := relations.Seal()
		relationsSealPtr = &rs
	}

	var bodyContentMetadata *ContentMetadata
	if b.includeBodyContentMeta {
		cm := b.content.Metadata
		bodyContentMetadata = &cm
	}

	metadata := Metadata{
		Nonce:               nonceOrNil(b.metadataNonce, b.metadataNoncePresent),
		CreatedAtUnixNano:   b.createdAtUnixNano,
		CreatedAtPresent:    b.createdAtPresent,
		BodyContentMetadata: bodyContentMetadata,
		AdditionalContent:   b.additionalContent,
	}
	metadataSeal := metadata.Seal()

	head := Head{
		Nonce:             nonceOrNil(b.headNonce, b.headNoncePresent),
		MetadataSeal:      metadataSeal,
		BodySeal:          bodySeal,
		OwnerID:           b.ownerID,
		OwnerIDPresent:    b.ownerIDPresent,
		CreatedAtUnixNano: b.createdAtUnixNano,
		CreatedAtPresent:  b.createdAtPresent,
	}
	head.RelationsSeal = relationsSealPtr

	return &Plum{
		Head:      head,
		Metadata:  metadata,
		Relations: relations,
		Body:      body,
	}, nil
}

func nonceOrNil(n Nonce, present bool) Nonce {
	if !present {
		return nil
	}
	return n
}
