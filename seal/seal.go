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

// Package seal implements the canonical hashing contract that makes every
// Plum component verifiable: a fixed-width, domain-separated digest over a
// documented field order that must never change once deployed.
package seal

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Algorithm identifies the hash family backing a Seal's digest. Sealed
// values are 32 bytes wide regardless of algorithm, so new algorithm
// families can be introduced without changing the wire width.
type Algorithm uint8

const (
	// AlgorithmSHA256 is the only algorithm in use today.
	AlgorithmSHA256 Algorithm = iota
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmSHA256:
		return "sha256"
	default:
		return fmt.Sprintf("algorithm(%d)", uint8(a))
	}
}

// Size is the width in bytes of every Seal's digest.
const Size = sha256.Size

// Seal is an opaque, fixed-width cryptographic digest naming a Plum or one
// of its components. It is the base type underlying the four named,
// type-distinct subtypes (PlumHeadSeal, PlumBodySeal, PlumRelationsSeal,
// PlumMetadataSeal); application code should use those, not Seal directly.
type Seal struct {
	Algorithm Algorithm
	Digest    [Size]byte
}

// FromSHA256 wraps a raw 32-byte SHA-256 digest as a Seal.
func FromSHA256(digest [Size]byte) Seal {
	return Seal{Algorithm: AlgorithmSHA256, Digest: digest}
}

// IsZero reports whether s is the zero-value Seal (never a valid digest,
// useful as a sentinel for "no seal computed yet").
func (s Seal) IsZero() bool {
	return s.Algorithm == AlgorithmSHA256 && s.Digest == [Size]byte{}
}

// Bytes returns the raw digest bytes.
func (s Seal) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, s.Digest[:])
	return b
}

// String renders the seal as its algorithm name followed by the hex digest,
// e.g. "sha256:deadbeef...".
func (s Seal) String() string {
	return s.Algorithm.String() + ":" + hex.EncodeToString(s.Digest[:])
}

// Equal reports whether two seals name the same digest under the same
// algorithm.
func (s Seal) Equal(other Seal) bool {
	return s.Algorithm == other.Algorithm && s.Digest == other.Digest
}

// Less gives seals a total order (ascending digest bytes, ties broken by
// algorithm) so that relation mappings can be sorted into canonical form
// before hashing, per the relations-seal contract.
func (s Seal) Less(other Seal) bool {
	for i := range s.Digest {
		if s.Digest[i] != other.Digest[i] {
			return s.Digest[i] < other.Digest[i]
		}
	}
	return s.Algorithm < other.Algorithm
}

// ErrInvalidSealLength is returned by FromBytes when given a byte slice that
// isn't exactly Size bytes long.
var ErrInvalidSealLength = errors.New("seal: digest must be exactly 32 bytes")

// FromBytes builds a Seal from a raw digest slice under the given
// algorithm, failing if the slice isn't the expected width.
func FromBytes(alg Algorithm, b []byte) (Seal, error) {
	if len(b) != Size {
		return Seal{}, fmt.Errorf("%w: got %d", ErrInvalidSealLength, len(b))
	}
	var s Seal
	s.Algorithm = alg
	copy(s.Digest[:], b)
	return s, nil
}

// ErrUnknownAlgorithm is returned by Parse when given a string naming an
// algorithm other than "sha256".
var ErrUnknownAlgorithm = errors.New("seal: unknown algorithm")

// Parse is the inverse of String: it accepts "sha256:<hex>" and rejects
// anything else, including a bare hex digest with no algorithm prefix.
func Parse(s string) (Seal, error) {
	alg, hexDigest, ok := strings.Cut(s, ":")
	if !ok {
		return Seal{}, fmt.Errorf("seal: malformed seal string %q, want \"algorithm:hex\"", s)
	}
	if alg != AlgorithmSHA256.String() {
		return Seal{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
	digest, err := hex.DecodeString(hexDigest)
	if err != nil {
		return Seal{}, fmt.Errorf("seal: invalid hex digest: %w", err)
	}
	return FromBytes(AlgorithmSHA256, digest)
}
