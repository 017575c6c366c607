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

// Body is the content-carrying component of a Plum: a length, a content
// class/format/encoding triple, and the raw (possibly encoded) bytes.
type Body struct {
	Nonce           Nonce // nil means absent
	ContentLength   uint64
	ContentClass    string
	ContentFormat   string
	ContentEncoding string
	Content         []byte
}

// Seal computes the PlumBodySeal of b. The hashed order is fixed: optional
// body nonce, content length, content class (format+encoding are NOT part
// of the seal -- they only affect how Content is decoded, not its identity),
// then the content bytes themselves.
func (b *Body) Seal() seal.PlumBodySeal {
	h := seal.NewCanonicalHasher()
	h.OptionalBytes(b.Nonce, b.Nonce != nil)
	h.Uint64(b.ContentLength)
	h.String(b.ContentClass)
	h.Bytes(b.Content)
	return seal.PlumBodySeal{Seal: h.Sum()}
}
