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

	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/ledgerplum/idp/plum"
	"github.com/ledgerplum/idp/seal"
)

// PlumSigContentClass is the Body.ContentClass value identifying a
// serialized PlumSig.
const PlumSigContentClass = "idp.ledgerplum.plum_sig"

// PlumSig is a Plum body type: a signature over a PlumSigContent. The
// signature is a detached JWS whose kid names the signer as a DID
// fragment URL.
type PlumSig struct {
	Content   PlumSigContent `json:"content" codec:"content"`
	Signature JWS            `json:"signature" codec:"signature"`
}

// NewPlumSig signs content with signerPrivJWK, which must carry a kid
// that is a DID fragment URL.
func NewPlumSig(content PlumSigContent, signerPrivJWK jwk.Key) (*PlumSig, error) {
	digest := content.Hash()
	signature, err := signJWS(signerPrivJWK, digest.Bytes())
	if err != nil {
		return nil, err
	}
	return &PlumSig{Content: content, Signature: signature}, nil
}

// VerifyAgainstKnownSigner verifies the signature using signerPubJWK
// directly, additionally requiring its kid to match the JWS's. No DID
// resolution is performed.
func (s *PlumSig) VerifyAgainstKnownSigner(signerPubJWK jwk.Key) error {
	digest := s.Content.Hash()
	return verifyAgainstKnownSigner(s.Signature, digest.Bytes(), signerPubJWK)
}

// VerifyAndExtractSigner verifies the signature by resolving its kid's DID
// through resolver, returning the signer's DID fragment URL.
func (s *PlumSig) VerifyAndExtractSigner(ctx context.Context, resolver Resolver) (DIDURL, error) {
	digest := s.Content.Hash()
	return verifyAndExtractSigner(ctx, s.Signature, digest.Bytes(), resolver)
}

// AccumulateRelationsNonrecursive implements relation.Relational: the
// signed Plum is a content dependency, arguably a distinct "signed
// dependency" kind that this build doesn't distinguish from a plain
// content dependency.
func (s *PlumSig) AccumulateRelationsNonrecursive(relations map[seal.PlumHeadSeal]plum.RelationFlags, mask plum.RelationFlags) {
	if mask&plum.RelationContentDependency != plum.RelationNone {
		relations[s.Content.Plum] |= plum.RelationContentDependency
	}
}
