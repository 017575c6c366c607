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
	"crypto/elliptic"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// secp256k1Curve returns the elliptic.Curve implementation backing
// secp256k1 JWKs. jwx/v2's EC key handling already pulls this package in
// (it's how a jwa.Secp256k1 JWK's ecdsa.PublicKey.Curve gets populated),
// so this is reusing a dependency already present rather than adding one.
func secp256k1Curve() elliptic.Curve {
	return secp256k1.S256()
}
