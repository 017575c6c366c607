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
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
)

// JWS is a compact-serialized JSON Web Signature over a detached payload:
// the payload itself never travels inside the JWS string, since the
// caller (PlumSig) always already holds it and would otherwise be
// carrying it twice.
type JWS string

// MissingKid means a JWS's protected header has no "kid" claim, so there
// is no way to identify its signer.
type MissingKid struct{}

func (*MissingKid) Error() string { return "sig: JWS protected header is missing a kid claim" }

// KidNotDIDFragmentURL means a JWS's kid claim failed to parse as a DID
// fragment URL, or parsed without a fragment.
type KidNotDIDFragmentURL struct {
	Kid string
	Err error
}

func (e *KidNotDIDFragmentURL) Error() string {
	return fmt.Sprintf("sig: JWS kid %q is not a DID fragment URL: %v", e.Kid, e.Err)
}

func (e *KidNotDIDFragmentURL) Unwrap() error { return e.Err }

// KeyMismatch means a known-signer verification succeeded cryptographically
// but the JWS's kid doesn't match the kid of the key the caller supplied.
type KeyMismatch struct {
	JWSKid, KeyKid string
}

func (e *KeyMismatch) Error() string {
	return fmt.Sprintf("sig: JWS kid %q does not match supplied key's kid %q", e.JWSKid, e.KeyKid)
}

// JWSVerifyFailed wraps the underlying cryptographic verification failure.
type JWSVerifyFailed struct{ Err error }

func (e *JWSVerifyFailed) Error() string { return fmt.Sprintf("sig: JWS verification failed: %v", e.Err) }
func (e *JWSVerifyFailed) Unwrap() error { return e.Err }

// signJWS signs payload (detached) with privJWK, requiring privJWK to
// carry a kid so the signer can later be identified from the JWS alone.
func signJWS(privJWK jwk.Key, payload []byte) (JWS, error) {
	if privJWK.KeyID() == "" {
		return "", fmt.Errorf("sig: signing key is missing its kid (must be a DID fragment URL)")
	}
	alg, err := algorithmForKey(privJWK)
	if err != nil {
		return "", err
	}
	compact, err := jws.Sign(nil, jws.WithKey(alg, privJWK), jws.WithDetachedPayload(payload))
	if err != nil {
		return "", fmt.Errorf("sig: signing JWS: %w", err)
	}
	return JWS(compact), nil
}

// algorithmForKey derives the JWS signature algorithm for key, preferring
// an explicit "alg" if the key carries one, and otherwise deriving it from
// the key's type and curve.
func algorithmForKey(key jwk.Key) (jwa.SignatureAlgorithm, error) {
	if alg, ok := key.Algorithm(); ok {
		if sa, ok := alg.(jwa.SignatureAlgorithm); ok && sa != "" {
			return sa, nil
		}
	}
	switch key.KeyType() {
	case jwa.OKP:
		return jwa.EdDSA, nil
	case jwa.EC:
		v, ok := key.Get("crv")
		if !ok {
			return "", fmt.Errorf("sig: EC key is missing its crv parameter")
		}
		crv, ok := v.(jwa.EllipticCurveAlgorithm)
		if !ok {
			return "", fmt.Errorf("sig: EC key's crv parameter has unexpected type %T", v)
		}
		switch crv {
		case jwa.P256:
			return jwa.ES256, nil
		case jwa.P384:
			return jwa.ES384, nil
		case jwa.P521:
			return jwa.ES512, nil
		case jwa.Secp256k1:
			return jwa.ES256K, nil
		default:
			return "", fmt.Errorf("sig: unsupported EC curve %s", crv)
		}
	default:
		return "", fmt.Errorf("sig: unsupported key type %s for JWS signing", key.KeyType())
	}
}

// extractKid parses j's protected header and returns its kid claim as a
// DID fragment URL.
func extractKid(j JWS) (DIDURL, error) {
	msg, err := jws.Parse([]byte(j))
	if err != nil {
		return DIDURL{}, fmt.Errorf("sig: parsing JWS: %w", err)
	}
	sigs := msg.Signatures()
	if len(sigs) == 0 {
		return DIDURL{}, &MissingKid{}
	}
	kidVal, ok := sigs[0].ProtectedHeaders().Get(jws.KeyIDKey)
	if !ok {
		return DIDURL{}, &MissingKid{}
	}
	kid, ok := kidVal.(string)
	if !ok || kid == "" {
		return DIDURL{}, &MissingKid{}
	}
	didURL, err := ParseDIDURL(kid)
	if err != nil {
		return DIDURL{}, &KidNotDIDFragmentURL{Kid: kid, Err: err}
	}
	if !didURL.HasFragment() {
		return DIDURL{}, &KidNotDIDFragmentURL{Kid: kid, Err: fmt.Errorf("no fragment component")}
	}
	return didURL, nil
}

// verifyAgainstKnownSigner verifies j over payload using signerPubJWK
// directly, additionally requiring the JWS's kid to equal signerPubJWK's
// own kid. No DID resolution is performed, so the caller is responsible
// for having obtained signerPubJWK from a source it already trusts.
func verifyAgainstKnownSigner(j JWS, payload []byte, signerPubJWK jwk.Key) error {
	jwsKid, err := extractKid(j)
	if err != nil {
		return err
	}
	keyKid := signerPubJWK.KeyID()
	if jwsKid.String() != keyKid {
		return &KeyMismatch{JWSKid: jwsKid.String(), KeyKid: keyKid}
	}

	alg, err := algorithmForKey(signerPubJWK)
	if err != nil {
		return err
	}
	if _, err := jws.Verify([]byte(j), jws.WithKey(alg, signerPubJWK), jws.WithDetachedPayload(payload)); err != nil {
		return &JWSVerifyFailed{Err: err}
	}
	return nil
}

// verifyAndExtractSigner verifies j over payload by resolving its kid's
// DID through resolver, returning the signer's DID fragment URL on
// success.
func verifyAndExtractSigner(ctx context.Context, j JWS, payload []byte, resolver Resolver) (DIDURL, error) {
	jwsKid, err := extractKid(j)
	if err != nil {
		return DIDURL{}, err
	}

	signerPubJWK, err := resolver.ResolveVerificationKey(ctx, jwsKid)
	if err != nil {
		return DIDURL{}, err
	}

	alg, err := algorithmForKey(signerPubJWK)
	if err != nil {
		return DIDURL{}, err
	}
	if _, err := jws.Verify([]byte(j), jws.WithKey(alg, signerPubJWK), jws.WithDetachedPayload(payload)); err != nil {
		return DIDURL{}, &JWSVerifyFailed{Err: err}
	}
	return jwsKid, nil
}
