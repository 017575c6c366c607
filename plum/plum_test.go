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

package plum_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerplum/idp/plum"
)

func contentFor(bytes []byte) plum.Content {
	return plum.Content{
		Metadata: plum.ContentMetadata{
			Length:   uint64(len(bytes)),
			Class:    "application/octet-stream",
			Format:   "utf-8",
			Encoding: "identity",
		},
		Bytes: bytes,
	}
}

func TestBuilderBuildsVerifiablePlum(t *testing.T) {
	p, err := plum.NewBuilder().
		WithContent(contentFor([]byte("hello world"))).
		Build()
	require.NoError(t, err)
	require.NoError(t, p.Verify())
}

func TestBuilderRequiresContent(t *testing.T) {
	_, err := plum.NewBuilder().Build()
	require.Error(t, err)
}

func TestBuilderWithoutRelationsOmitsRelationsSeal(t *testing.T) {
	p, err := plum.NewBuilder().
		WithContent(contentFor([]byte("x"))).
		WithoutRelations().
		Build()
	require.NoError(t, err)
	require.Nil(t, p.Head.RelationsSeal)
	require.Nil(t, p.Relations)
	require.NoError(t, p.Verify())
}

func TestBuilderEmptyRelationsListSealsDeterministically(t *testing.T) {
	build := func() *plum.Plum {
		p, err := plum.NewBuilder().WithContent(contentFor([]byte("x"))).Build()
		require.NoError(t, err)
		return p
	}
	a, b := build(), build()
	require.True(t, a.Relations.Seal().Equal(b.Relations.Seal().Seal))
	require.True(t, a.Head.RelationsSeal.Equal(b.Head.RelationsSeal.Seal))
}

func TestBuilderZeroLengthBodyContentPermitted(t *testing.T) {
	p, err := plum.NewBuilder().WithContent(contentFor(nil)).Build()
	require.NoError(t, err)
	require.NoError(t, p.Verify())
	require.Equal(t, uint64(0), p.Body.ContentLength)
}

func TestBuilderNonceLengthZeroVsAbsentDiffer(t *testing.T) {
	absent, err := plum.NewBuilder().WithContent(contentFor([]byte("x"))).Build()
	require.NoError(t, err)

	present, err := plum.NewBuilder().
		WithContent(contentFor([]byte("x"))).
		WithBodyNonce(plum.Nonce{}).
		Build()
	require.NoError(t, err)

	require.False(t, absent.Body.Seal().Equal(present.Body.Seal().Seal))
}

func TestBuilderWithRelationMapping(t *testing.T) {
	target, err := plum.NewBuilder().WithContent(contentFor([]byte("target"))).Build()
	require.NoError(t, err)

	source, err := plum.NewBuilder().
		WithContent(contentFor([]byte("source"))).
		WithRelationMapping(plum.RelationMapping{
			Target: target.HeadSeal(),
			Flags:  plum.RelationContentDependency,
		}).
		Build()
	require.NoError(t, err)
	require.NoError(t, source.Verify())
	require.Len(t, source.Relations.Mappings, 1)
	require.True(t, source.Relations.Mappings[0].Flags.Has(plum.RelationContentDependency))
}

func TestVerifyDetectsBodyTampering(t *testing.T) {
	p, err := plum.NewBuilder().WithContent(contentFor([]byte("original"))).Build()
	require.NoError(t, err)

	p.Body.Content = []byte("tampered")
	err = p.Verify()
	require.Error(t, err)
	var mismatch *plum.BodySealMismatch
	require.ErrorAs(t, err, &mismatch)
}

func TestVerifyDetectsExpectedRelationsMissing(t *testing.T) {
	p, err := plum.NewBuilder().WithContent(contentFor([]byte("x"))).Build()
	require.NoError(t, err)

	p.Relations = nil
	err = p.Verify()
	require.Error(t, err)
	var missing *plum.ExpectedRelationsMissing
	require.ErrorAs(t, err, &missing)
}

func TestVerifyDetectsUnexpectedRelationsPresent(t *testing.T) {
	p, err := plum.NewBuilder().
		WithContent(contentFor([]byte("x"))).
		WithoutRelations().
		Build()
	require.NoError(t, err)

	p.Relations = &plum.Relations{Source: p.Body.Seal()}
	err = p.Verify()
	require.Error(t, err)
	var unexpected *plum.UnexpectedRelationsPresent
	require.ErrorAs(t, err, &unexpected)
}

func TestVerifyDetectsMetadataTampering(t *testing.T) {
	p, err := plum.NewBuilder().WithContent(contentFor([]byte("x"))).Build()
	require.NoError(t, err)

	p.Metadata.AdditionalContent = []byte("injected")
	err = p.Verify()
	require.Error(t, err)
	var mismatch *plum.MetadataSealMismatch
	require.ErrorAs(t, err, &mismatch)
}

func TestWithOwnerIDRecordedOnHead(t *testing.T) {
	p, err := plum.NewBuilder().
		WithContent(contentFor([]byte("x"))).
		WithOwnerID("did:example:123").
		Build()
	require.NoError(t, err)
	require.True(t, p.Head.OwnerIDPresent)
	require.Equal(t, "did:example:123", p.Head.OwnerID)
}
