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

package sig

import (
	"context"

	"github.com/ledgerplum/idp/codec"
	"github.com/ledgerplum/idp/plum"
	"github.com/ledgerplum/idp/seal"
	"github.com/ledgerplum/idp/storage"
)

// contentOf reassembles the plum.Content a Body was built from, the
// reverse of what Builder.WithContent flattens onto the Body's fields.
func contentOf(b *plum.Body) plum.Content {
	return plum.Content{
		Metadata: plum.ContentMetadata{
			Length:   b.ContentLength,
			Class:    b.ContentClass,
			Format:   b.ContentFormat,
			Encoding: b.ContentEncoding,
		},
		Bytes: b.Content,
	}
}

// LoadPlumSig loads and decodes the PlumSig stored at headSeal.
func LoadPlumSig(ctx context.Context, tx storage.Tx, headSeal seal.PlumHeadSeal) (*PlumSig, error) {
	p, err := tx.LoadPlum(ctx, headSeal)
	if err != nil {
		return nil, err
	}
	var s PlumSig
	if err := codec.DecodeValueFromContent(contentOf(&p.Body), PlumSigContentClass, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadOwnedData loads and decodes the OwnedData stored at headSeal.
func LoadOwnedData(ctx context.Context, tx storage.Tx, headSeal seal.PlumHeadSeal) (*OwnedData, error) {
	p, err := tx.LoadPlum(ctx, headSeal)
	if err != nil {
		return nil, err
	}
	var d OwnedData
	if err := codec.DecodeValueFromContent(contentOf(&p.Body), OwnedDataContentClass, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// BuildPlumSigPlum encodes a PlumSig as a Plum, ready to be stored. It
// additionally records a content-dependency relation mapping onto the signed
// Plum (s.Content.Plum), matching what AccumulateRelationsNonrecursive would produce.
func BuildPlumSigPlum(s *PlumSig) (*plum.Plum, error) {
	content, err := codec.EncodeValueToContent(s, PlumSigContentClass, codec.FormatJSON, codec.EncodingIdentity)
	if err != nil {
		return nil, err
	}
	return plum.NewBuilder().
		WithContent(content).
		WithRelationMapping(plum.RelationMapping{Target: s.Content.Plum, Flags: plum.RelationContentDependency}).
		Build()
}

// BuildOwnedDataPlum encodes an OwnedData as a Plum, ready to be stored.
func BuildOwnedDataPlum(d *OwnedData) (*plum.Plum, error) {
	content, err := codec.EncodeValueToContent(d, OwnedDataContentClass, codec.FormatJSON, codec.EncodingIdentity)
	if err != nil {
		return nil, err
	}
	return plum.NewBuilder().
		WithContent(content).
		WithRelationMapping(plum.RelationMapping{Target: d.Data, Flags: plum.RelationContentDependency}).
		Build()
}
