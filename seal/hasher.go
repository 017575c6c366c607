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

package seal

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"
)

// CanonicalHasher accumulates a domain-separated, little-endian, documented
// field order into a running digest. Every caller of this type is computing
// one of the four component seals; the specific sequence of calls for each
// is fixed permanently by the component's own constructor (see
// plum.Head.Seal, plum.Body.Seal, etc.) and must never be reordered or
// reinterpreted, since doing so would silently invalidate every seal
// computed so far.
//
// The three rules this type exists to make impossible to get wrong:
//  1. Every optional field writes a one-byte presence tag (0x00 absent,
//     0x01 present) before anything else.
//  2. Every integer is written little-endian.
//  3. Every variable-length byte string is length-prefixed with a u64 LE
//     count; every container (array, sorted map) is likewise length-prefixed
//     before its elements.
type CanonicalHasher struct {
	h hash.Hash
}

// NewCanonicalHasher starts a new canonical hash accumulation using the
// current default algorithm (SHA-256).
func NewCanonicalHasher() *CanonicalHasher {
	return &CanonicalHasher{h: sha256.New()}
}

// Present writes the domain-separation tag byte for an optional field.
func (c *CanonicalHasher) Present(present bool) *CanonicalHasher {
	if present {
		c.h.Write([]byte{0x01})
	} else {
		c.h.Write([]byte{0x00})
	}
	return c
}

// Uint32 writes v as 4 little-endian bytes.
func (c *CanonicalHasher) Uint32(v uint32) *CanonicalHasher {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	c.h.Write(buf[:])
	return c
}

// Uint64 writes v as 8 little-endian bytes.
func (c *CanonicalHasher) Uint64(v uint64) *CanonicalHasher {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	c.h.Write(buf[:])
	return c
}

// Int64 writes v as 8 little-endian bytes (used for unix-nanosecond
// timestamps, which are signed).
func (c *CanonicalHasher) Int64(v int64) *CanonicalHasher {
	return c.Uint64(uint64(v))
}

// Bytes writes an 8-byte little-endian length prefix followed by b.
func (c *CanonicalHasher) Bytes(b []byte) *CanonicalHasher {
	c.Uint64(uint64(len(b)))
	c.h.Write(b)
	return c
}

// OptionalBytes writes the presence tag, and if present, the length-prefixed
// bytes. This is the standard way to feed an Option<Vec<u8>>-shaped field
// into the hash: absent and present-empty hash differently, since the tag
// byte differs even though the length prefix would otherwise both be zero.
func (c *CanonicalHasher) OptionalBytes(b []byte, present bool) *CanonicalHasher {
	c.Present(present)
	if present {
		c.Bytes(b)
	}
	return c
}

// String writes a length-prefixed UTF-8 string.
func (c *CanonicalHasher) String(s string) *CanonicalHasher {
	return c.Bytes([]byte(s))
}

// SealBytes writes the fixed-width digest bytes of a seal, unprefixed (seals
// are always exactly Size bytes, so no length prefix is needed).
func (c *CanonicalHasher) SealBytes(digest [Size]byte) *CanonicalHasher {
	c.h.Write(digest[:])
	return c
}

// ArrayLen writes the u64 LE length prefix for a container of n elements;
// callers then hash each element in turn.
func (c *CanonicalHasher) ArrayLen(n int) *CanonicalHasher {
	return c.Uint64(uint64(n))
}

// Sum finalizes the hash and returns it as a Seal under the default
// algorithm.
func (c *CanonicalHasher) Sum() Seal {
	var digest [Size]byte
	copy(digest[:], c.h.Sum(nil))
	return FromSHA256(digest)
}
