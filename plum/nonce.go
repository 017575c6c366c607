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

// Package plum implements the four-part content-addressed object (Head,
// Metadata, Relations, Body) and the verification predicate that ties them
// together.
package plum

import "github.com/google/uuid"

// Nonce is an opaque byte string carried by any Plum component to defeat
// dictionary attacks on predictable content and to differentiate otherwise-
// identical Plums. A nil Nonce and an empty-but-non-nil Nonce hash
// differently (see seal.CanonicalHasher.OptionalBytes), so a zero-length
// nonce is a meaningful, distinct value from "no nonce".
type Nonce []byte

// NewNonce generates a fresh 16-byte random nonce.
func NewNonce() Nonce {
	id := uuid.New()
	return Nonce(id[:])
}
