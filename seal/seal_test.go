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

package seal_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerplum/idp/seal"
)

func TestCanonicalHasherDeterministic(t *testing.T) {
	build := func() seal.Seal {
		return seal.NewCanonicalHasher().
			Present(true).
			Bytes([]byte("nonce")).
			Uint64(42).
			String("hello").
			Sum()
	}
	a := build()
	b := build()
	require.True(t, a.Equal(b))
}

func TestCanonicalHasherAbsentPresentEmptyDiffer(t *testing.T) {
	absent := seal.NewCanonicalHasher().OptionalBytes(nil, false).Sum()
	presentEmpty := seal.NewCanonicalHasher().OptionalBytes(nil, true).Sum()
	require.False(t, absent.Equal(presentEmpty))
}

func TestCanonicalHasherFieldOrderMatters(t *testing.T) {
	a := seal.NewCanonicalHasher().Uint32(1).Uint32(2).Sum()
	b := seal.NewCanonicalHasher().Uint32(2).Uint32(1).Sum()
	require.False(t, a.Equal(b))
}

func TestSealLess(t *testing.T) {
	lo, err := seal.FromBytes(seal.AlgorithmSHA256, make([]byte, seal.Size))
	require.NoError(t, err)
	hiBytes := make([]byte, seal.Size)
	hiBytes[seal.Size-1] = 1
	hi, err := seal.FromBytes(seal.AlgorithmSHA256, hiBytes)
	require.NoError(t, err)
	require.True(t, lo.Less(hi))
	require.False(t, hi.Less(lo))
}

func TestFromBytesInvalidLength(t *testing.T) {
	_, err := seal.FromBytes(seal.AlgorithmSHA256, []byte{1, 2, 3})
	require.ErrorIs(t, err, seal.ErrInvalidSealLength)
}
