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

// Package replication implements the push/pull wire protocol: a
// hand-written gRPC service description (no protoc step -- message structs
// carry msgpack/json struct tags and travel over a custom gRPC codec), plus
// a Server backed by storage.Store and a Client that drives both RPCs.
package replication

import (
	"fmt"

	"github.com/ledgerplum/idp/plum"
	"github.com/ledgerplum/idp/seal"
)

// wireSeal is the on-the-wire shape of any of the four Seal subtypes: a
// raw digest plus the algorithm tag, so a future non-SHA-256 algorithm
// doesn't need a wire schema change.
type wireSeal struct {
	Algorithm uint8  `codec:"algorithm" json:"algorithm"`
	Digest    []byte `codec:"digest" json:"digest"`
}

func sealToWire(s seal.Seal) wireSeal {
	return wireSeal{Algorithm: uint8(s.Algorithm), Digest: s.Bytes()}
}

func sealFromWire(w wireSeal) (seal.Seal, error) {
	return seal.FromBytes(seal.Algorithm(w.Algorithm), w.Digest)
}

func headSealToWire(s seal.PlumHeadSeal) wireSeal      { return sealToWire(s.Seal) }
func bodySealToWire(s seal.PlumBodySeal) wireSeal      { return sealToWire(s.Seal) }
func metadataSealToWire(s seal.PlumMetadataSeal) wireSeal { return sealToWire(s.Seal) }
func relationsSealToWire(s seal.PlumRelationsSeal) wireSeal { return sealToWire(s.Seal) }

func headSealFromWire(w wireSeal) (seal.PlumHeadSeal, error) {
	s, err := sealFromWire(w)
	return seal.PlumHeadSeal{Seal: s}, err
}

func bodySealFromWire(w wireSeal) (seal.PlumBodySeal, error) {
	s, err := sealFromWire(w)
	return seal.PlumBodySeal{Seal: s}, err
}

func metadataSealFromWire(w wireSeal) (seal.PlumMetadataSeal, error) {
	s, err := sealFromWire(w)
	return seal.PlumMetadataSeal{Seal: s}, err
}

func relationsSealFromWire(w wireSeal) (seal.PlumRelationsSeal, error) {
	s, err := sealFromWire(w)
	return seal.PlumRelationsSeal{Seal: s}, err
}

// wireHead is plum.Head's wire shape.
type wireHead struct {
	Nonce             []byte    `codec:"nonce,omitempty" json:"nonce,omitempty"`
	MetadataSeal      wireSeal  `codec:"metadata_seal" json:"metadata_seal"`
	RelationsSeal     *wireSeal `codec:"relations_seal,omitempty" json:"relations_seal,omitempty"`
	BodySeal          wireSeal  `codec:"body_seal" json:"body_seal"`
	OwnerID           string    `codec:"owner_id,omitempty" json:"owner_id,omitempty"`
	OwnerIDPresent    bool      `codec:"owner_id_present" json:"owner_id_present"`
	CreatedAtUnixNano int64     `codec:"created_at_unix_nano,omitempty" json:"created_at_unix_nano,omitempty"`
	CreatedAtPresent  bool      `codec:"created_at_present" json:"created_at_present"`
	MetadataBlob      []byte    `codec:"metadata_blob,omitempty" json:"metadata_blob,omitempty"`
}

func headToWire(h *plum.Head) (wireHead, error) {
	w := wireHead{
		Nonce:             h.Nonce,
		MetadataSeal:      metadataSealToWire(h.MetadataSeal),
		BodySeal:          bodySealToWire(h.BodySeal),
		OwnerID:           h.OwnerID,
		OwnerIDPresent:    h.OwnerIDPresent,
		CreatedAtUnixNano: h.CreatedAtUnixNano,
		CreatedAtPresent:  h.CreatedAtPresent,
		MetadataBlob:      h.MetadataBlob,
	}
	if h.RelationsSeal != nil {
		rs := relationsSealToWire(*h.RelationsSeal)
		w.RelationsSeal = &rs
	}
	return w, nil
}

func headFromWire(w wireHead) (*plum.Head, error) {
	metadataSeal, err := metadataSealFromWire(w.MetadataSeal)
	if err != nil {
		return nil, fmt.Errorf("replication: decoding head metadata seal: %w", err)
	}
	bodySeal, err := bodySealFromWire(w.BodySeal)
	if err != nil {
		return nil, fmt.Errorf("replication: decoding head body seal: %w", err)
	}
	h := &plum.Head{
		Nonce:             plum.Nonce(w.Nonce),
		MetadataSeal:      metadataSeal,
		BodySeal:          bodySeal,
		OwnerID:           w.OwnerID,
		OwnerIDPresent:    w.OwnerIDPresent,
		CreatedAtUnixNano: w.CreatedAtUnixNano,
		CreatedAtPresent:  w.CreatedAtPresent,
		MetadataBlob:      w.MetadataBlob,
	}
	if w.RelationsSeal != nil {
		rs, err := relationsSealFromWire(*w.RelationsSeal)
		if err != nil {
			return nil, fmt.Errorf("replication: decoding head relations seal: %w", err)
		}
		h.RelationsSeal = &rs
	}
	return h, nil
}

// wireBody is plum.Body's wire shape.
type wireBody struct {
	Nonce           []byte `codec:"nonce,omitempty" json:"nonce,omitempty"`
	ContentLength   uint64 `codec:"content_length" json:"content_length"`
	ContentClass    string `codec:"content_class" json:"content_class"`
	ContentFormat   string `codec:"content_format" json:"content_format"`
	ContentEncoding string `codec:"content_encoding" json:"content_encoding"`
	Content         []byte `codec:"content" json:"content"`
}

func bodyToWire(b *plum.Body) wireBody {
	return wireBody{
		Nonce:           b.Nonce,
		ContentLength:   b.ContentLength,
		ContentClass:    b.ContentClass,
		ContentFormat:   b.ContentFormat,
		ContentEncoding: b.ContentEncoding,
		Content:         b.Content,
	}
}

func bodyFromWire(w wireBody) *plum.Body {
	return &plum.Body{
		Nonce:           plum.Nonce(w.Nonce),
		ContentLength:   w.ContentLength,
		ContentClass:    w.ContentClass,
		ContentFormat:   w.ContentFormat,
		ContentEncoding: w.ContentEncoding,
		Content:         w.Content,
	}
}

// wireContentMetadata mirrors plum.ContentMetadata.
type wireContentMetadata struct {
	Length   uint64 `codec:"length" json:"length"`
	Class    string `codec:"class" json:"class"`
	Format   string `codec:"format" json:"format"`
	Encoding string `codec:"encoding" json:"encoding"`
}

// wireMetadata mirrors plum.Metadata.
type wireMetadata struct {
	Nonce               []byte                `codec:"nonce,omitempty" json:"nonce,omitempty"`
	CreatedAtUnixNano    int64                 `codec:"created_at_unix_nano,omitempty" json:"created_at_unix_nano,omitempty"`
	CreatedAtPresent     bool                  `codec:"created_at_present" json:"created_at_present"`
	BodyContentMetadata  *wireContentMetadata  `codec:"body_content_metadata,omitempty" json:"body_content_metadata,omitempty"`
	AdditionalContent    []byte                `codec:"additional_content,omitempty" json:"additional_content,omitempty"`
}

func metadataToWire(m *plum.Metadata) wireMetadata {
	w := wireMetadata{
		Nonce:             m.Nonce,
		CreatedAtUnixNano: m.CreatedAtUnixNano,
		CreatedAtPresent:  m.CreatedAtPresent,
		AdditionalContent: m.AdditionalContent,
	}
	if m.BodyContentMetadata != nil {
		w.BodyContentMetadata = &wireContentMetadata{
			Length:   m.BodyContentMetadata.Length,
			Class:    m.BodyContentMetadata.Class,
			Format:   m.BodyContentMetadata.Format,
			Encoding: m.BodyContentMetadata.Encoding,
		}
	}
	return w
}

func metadataFromWire(w wireMetadata) *plum.Metadata {
	m := &plum.Metadata{
		Nonce:             plum.Nonce(w.Nonce),
		CreatedAtUnixNano: w.CreatedAtUnixNano,
		CreatedAtPresent:  w.CreatedAtPresent,
		AdditionalContent: w.AdditionalContent,
	}
	if w.BodyContentMetadata != nil {
		m.BodyContentMetadata = &plum.ContentMetadata{
			Length:   w.BodyContentMetadata.Length,
			Class:    w.BodyContentMetadata.Class,
			Format:   w.BodyContentMetadata.Format,
			Encoding: w.BodyContentMetadata.Encoding,
		}
	}
	return m
}

// wireRelationMapping mirrors plum.RelationMapping.
type wireRelationMapping struct {
	Target wireSeal `codec:"target" json:"target"`
	Flags  uint32   `codec:"flags" json:"flags"`
}

// wireRelations mirrors plum.Relations.
type wireRelations struct {
	Nonce    []byte                `codec:"nonce,omitempty" json:"nonce,omitempty"`
	Source   wireSeal              `codec:"source" json:"source"`
	Mappings []wireRelationMapping `codec:"mappings" json:"mappings"`
}

func relationsToWire(r *plum.Relations) wireRelations {
	mappings := make([]wireRelationMapping, len(r.Mappings))
	for i, m := range r.Mappings {
		mappings[i] = wireRelationMapping{Target: headSealToWire(m.Target), Flags: uint32(m.Flags)}
	}
	return wireRelations{Nonce: r.Nonce, Source: bodySealToWire(r.Source), Mappings: mappings}
}

func relationsFromWire(w wireRelations) (*plum.Relations, error) {
	source, err := bodySealFromWire(w.Source)
	if err != nil {
		return nil, fmt.Errorf("replication: decoding relations source seal: %w", err)
	}
	mappings := make([]plum.RelationMapping, len(w.Mappings))
	for i, m := range w.Mappings {
		target, err := headSealFromWire(m.Target)
		if err != nil {
			return nil, fmt.Errorf("replication: decoding relation mapping target: %w", err)
		}
		mappings[i] = plum.RelationMapping{Target: target, Flags: plum.RelationFlags(m.Flags)}
	}
	return &plum.Relations{Nonce: plum.Nonce(w.Nonce), Source: source, Mappings: mappings}, nil
}

// WirePlum is the on-the-wire shape of a whole plum.Plum.
type WirePlum struct {
	Head      wireHead       `codec:"head" json:"head"`
	Metadata  wireMetadata   `codec:"metadata" json:"metadata"`
	Relations *wireRelations `codec:"relations,omitempty" json:"relations,omitempty"`
	Body      wireBody       `codec:"body" json:"body"`
}

// PlumToWire converts p to its wire representation.
func PlumToWire(p *plum.Plum) (WirePlum, error) {
	head, err := headToWire(&p.Head)
	if err != nil {
		return WirePlum{}, err
	}
	w := WirePlum{
		Head:     head,
		Metadata: metadataToWire(&p.Metadata),
		Body:     bodyToWire(&p.Body),
	}
	if p.Relations != nil {
		r := relationsToWire(p.Relations)
		w.Relations = &r
	}
	return w, nil
}

// PlumFromWire converts w back to a plum.Plum. The caller is responsible
// for calling Verify on the result before trusting it.
func PlumFromWire(w WirePlum) (*plum.Plum, error) {
	head, err := headFromWire(w.Head)
	if err != nil {
		return nil, err
	}
	p := &plum.Plum{
		Head:     *head,
		Metadata: *metadataFromWire(w.Metadata),
		Body:     *bodyFromWire(w.Body),
	}
	if w.Relations != nil {
		relations, err := relationsFromWire(*w.Relations)
		if err != nil {
			return nil, err
		}
		p.Relations = relations
	}
	return p, nil
}

// PushRequest is the oneof { ShouldISendThisPlum(seal), HereHaveAPlum(plum) }
// request variant of the Push RPC.
type PushRequest struct {
	ShouldISendThisPlum *wireSeal `codec:"should_i_send_this_plum,omitempty" json:"should_i_send_this_plum,omitempty"`
	HereHaveAPlum       *WirePlum `codec:"here_have_a_plum,omitempty" json:"here_have_a_plum,omitempty"`
}

// PushResponse is the oneof { SendThisPlum(seal), DontSendThisPlum(seal), Ok }
// response variant of the Push RPC.
type PushResponse struct {
	SendThisPlum     *wireSeal `codec:"send_this_plum,omitempty" json:"send_this_plum,omitempty"`
	DontSendThisPlum *wireSeal `codec:"dont_send_this_plum,omitempty" json:"dont_send_this_plum,omitempty"`
	Ok               bool      `codec:"ok,omitempty" json:"ok,omitempty"`
}

// PullRequest is IWantThisPlum(seal).
type PullRequest struct {
	IWantThisPlum wireSeal `codec:"i_want_this_plum" json:"i_want_this_plum"`
}

// PullResponse is the oneof { Plum(plum), IDontHaveThisPlum(seal) } response
// variant of the Pull RPC.
type PullResponse struct {
	Plum              *WirePlum `codec:"plum,omitempty" json:"plum,omitempty"`
	IDontHaveThisPlum *wireSeal `codec:"i_dont_have_this_plum,omitempty" json:"i_dont_have_this_plum,omitempty"`
}
