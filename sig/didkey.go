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
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"fmt"
	"math/big"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// Multicodec prefixes for the two public key types this build signs with,
// per https://github.com/multiformats/multicodec's table. did:key encodes
// a public key as multibase(base58-btc, multicodec-prefix || raw-key-bytes).
const (
	multicodecSecp256k1Pub uint64 = 0xe7
	multicodecEd25519Pub   uint64 = 0xed
)

// base58btcAlphabet is the Bitcoin/IPFS base58 alphabet (no 0, O, I, l).
const base58btcAlphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

func base58Encode(b []byte) string {
	zero := base58btcAlphabet[0]

	leadingZeros := 0
	for _, c := range b {
		if c != 0 {
			break
		}
		leadingZeros++
	}

	n := new(big.Int).SetBytes(b)
	base := big.NewInt(58)
	mod := new(big.Int)
	var out []byte
	for n.Sign() > 0 {
		n.DivMod(n, base, mod)
		out = append(out, base58btcAlphabet[mod.Int64()])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	prefix := make([]byte, leadingZeros)
	for i := range prefix {
		prefix[i] = zero
	}
	return string(prefix) + string(out)
}

// InvalidMultibase means a string claiming to be a did:key multibase
// identifier couldn't be decoded.
type InvalidMultibase struct {
	Value  string
	Reason string
}

func (e *InvalidMultibase) Error() string {
	return fmt.Sprintf("sig: invalid multibase value %q: %s", e.Value, e.Reason)
}

func base58Decode(s string) ([]byte, error) {
	lookup := [256]int{}
	for i := range lookup {
		lookup[i] = -1
	}
	for i, c := range []byte(base58btcAlphabet) {
		lookup[c] = i
	}

	leadingZeros := 0
	for _, c := range s {
		if byte(c) != base58btcAlphabet[0] {
			break
		}
		leadingZeros++
	}

	n := new(big.Int)
	base := big.NewInt(58)
	for _, c := range []byte(s) {
		v := lookup[c]
		if v < 0 {
			return nil, &InvalidMultibase{Value: s, Reason: "character outside base58btc alphabet"}
		}
		n.Mul(n, base)
		n.Add(n, big.NewInt(int64(v)))
	}

	body := n.Bytes()
	out := make([]byte, leadingZeros+len(body))
	copy(out[leadingZeros:], body)
	return out, nil
}

// appendUvarint appends v as an unsigned LEB128 varint, the encoding
// multicodec prefixes use.
func appendUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// readUvarint decodes a LEB128 varint from the front of buf, returning the
// value and the number of bytes consumed.
func readUvarint(buf []byte) (uint64, int, error) {
	var v uint64
	for i, b := range buf {
		v |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return v, i + 1, nil
		}
		if i >= 9 {
			return 0, 0, fmt.Errorf("sig: multicodec varint too long")
		}
	}
	return 0, 0, fmt.Errorf("sig: multicodec varint truncated")
}

// rawPublicKeyBytes extracts the raw (uncompressed-for-Ed25519,
// compressed-for-EC) public key bytes from a jwx public key, along with the
// multicodec prefix identifying its type.
func rawPublicKeyBytes(pub jwk.Key) ([]byte, uint64, error) {
	var raw any
	if err := pub.Raw(&raw); err != nil {
		return nil, 0, fmt.Errorf("sig: extracting raw public key: %w", err)
	}
	switch key := raw.(type) {
	case *ecdsa.PublicKey:
		if key.Curve != secp256k1Curve() {
			return nil, 0, fmt.Errorf("sig: unsupported EC curve for did:key (only secp256k1 is supported)")
		}
		return elliptic.MarshalCompressed(key.Curve, key.X, key.Y), multicodecSecp256k1Pub, nil
	case ed25519.PublicKey:
		return []byte(key), multicodecEd25519Pub, nil
	default:
		return nil, 0, fmt.Errorf("sig: unsupported public key type %T for did:key", raw)
	}
}

// DIDKeyFromJWK derives the did:key DID (no fragment) identifying pub.
func DIDKeyFromJWK(pub jwk.Key) (DIDURL, error) {
	raw, codec, err := rawPublicKeyBytes(pub)
	if err != nil {
		return DIDURL{}, err
	}
	prefixed := appendUvarint(nil, codec)
	prefixed = append(prefixed, raw...)
	multibase := "z" + base58Encode(prefixed)
	return DIDURL{Method: "key", MethodSpecificID: multibase}, nil
}

// WithKeyFragment returns primary (a did:key DID with no fragment) turned
// into the DID fragment URL a did:key verification method is always
// addressed by: the fragment equal to the DID's own multibase
// identifier, per the upstream convention of using the key's own encoding
// as its own key id within its DID document.
func WithKeyFragment(primary DIDURL) DIDURL {
	return primary.WithFragment(primary.MethodSpecificID)
}

// publicKeyFromDIDKeyID decodes the method-specific-id of a did:key DIDURL
// back into the jwx public key it names.
func publicKeyFromDIDKeyID(id string) (jwk.Key, error) {
	if len(id) == 0 || id[0] != 'z' {
		return nil, &InvalidMultibase{Value: id, Reason: "did:key method-specific-id must start with the base58-btc multibase prefix 'z'"}
	}
	decoded, err := base58Decode(id[1:])
	if err != nil {
		return nil, err
	}
	codec, n, err := readUvarint(decoded)
	if err != nil {
		return nil, err
	}
	raw := decoded[n:]

	switch codec {
	case multicodecEd25519Pub:
		if len(raw) != ed25519.PublicKeySize {
			return nil, &InvalidMultibase{Value: id, Reason: "unexpected ed25519 public key length"}
		}
		return jwk.FromRaw(ed25519.PublicKey(raw))
	case multicodecSecp256k1Pub:
		x, y := elliptic.UnmarshalCompressed(secp256k1Curve(), raw)
		if x == nil {
			return nil, &InvalidMultibase{Value: id, Reason: "invalid compressed secp256k1 point"}
		}
		return jwk.FromRaw(&ecdsa.PublicKey{Curve: secp256k1Curve(), X: x, Y: y})
	default:
		return nil, &InvalidMultibase{Value: id, Reason: fmt.Sprintf("unsupported multicodec prefix 0x%x", codec)}
	}
}
