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

// Metadata is the side-channel component of a Plum: a creation
// timestamp, a copy of the body's content metadata (for indexing without
// loading the body), and arbitrary additional bytes.
type Metadata struct {
	Nonce                  Nonce  // nil means absent
	CreatedAtUnixNano      int64  // only meaningful when CreatedAtPresent
	CreatedAtPresent       bool
	BodyContentMetadata    *ContentMetadata // nil means absent
	AdditionalContent      []byte           // nil means absent
}

// Seal computes the PlumMetadataSeal of m: optional nonce, optional
// creation time, optional copy of the body content metadata (class/format
// /encoding/length), optional additional content bytes.
func (m *Metadata) Seal() seal.PlumMetadataSeal {
	h := seal.NewCanonicalHasher()
	h.OptionalBytes(m.Nonce, m.Nonce != nil)

	h.Present(m.CreatedAtPresent)
	if m.CreatedAtPresent {
		h.Int64(m.CreatedAtUnixNano)
	}

	h.Present(m.BodyContentMetadata != nil)
	if m.BodyContentMetadata != nil {
		h.Uint64(m.BodyContentMetadata.Length)
		h.String(m.BodyContentMetadata.Class)
		h.String(m.BodyContentMetadata.Format)
		h.String(m.BodyContentMetadata.Encoding)
	}

	h.OptionalBytes(m.AdditionalContent, m.AdditionalContent != nil)

	return seal.PlumMetadataSeal{Seal: h.Sum()}
}
