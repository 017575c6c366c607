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

import "github.com/ledgerplum/idp/seal"

// Head is the component whose seal is the identifier of an entire Plum. It
// references the three other components by seal and optionally carries an
// owner id, a creation timestamp, and a raw metadata blob copy.
type Head struct {
	Nonce Nonce // nil means absent

	MetadataSeal  seal.PlumMetadataSeal   // always present
	RelationsSeal *seal.PlumRelationsSeal // nil means absent
	BodySeal      seal.PlumBodySeal       // always present

	OwnerID           string // empty-but-present vs absent distinguished by OwnerIDPresent
	OwnerIDPresent    bool
	CreatedAtUnixNano int64
	CreatedAtPresent  bool
	MetadataBlob      []byte // nil means absent
}

// Seal computes the PlumHeadSeal of h. The hashed order is fixed: optional
// head nonce, the three component seals in the order metadata -> relations
// -> body (metadata and body are mandatory, relations optional), optional
// owner id, optional created-at, optional metadata blob.
func (h *Head) Seal() seal.PlumHeadSeal {
	ch := seal.NewCanonicalHasher()
	ch.OptionalBytes(h.Nonce, h.Nonce != nil)

	ch.SealBytes(h.MetadataSeal.Digest)

	ch.Present(h.RelationsSeal != nil)
	if h.RelationsSeal != nil {
		ch.SealBytes(h.RelationsSeal.Digest)
	}

	ch.SealBytes(h.BodySeal.Digest)

	ch.Present(h.OwnerIDPresent)
	if h.OwnerIDPresent {
		ch.String(h.OwnerID)
	}

	ch.Present(h.CreatedAtPresent)
	if h.CreatedAtPresent {
		ch.Int64(h.CreatedAtUnixNano)
	}

	ch.OptionalBytes(h.MetadataBlob, h.MetadataBlob != nil)

	return seal.PlumHeadSeal{Seal: ch.Sum()}
}
