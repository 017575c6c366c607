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

package pathgov_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/require"

	"github.com/ledgerplum/idp/codec"
	"github.com/ledgerplum/idp/pathgov"
	"github.com/ledgerplum/idp/plum"
	"github.com/ledgerplum/idp/seal"
	"github.com/ledgerplum/idp/sig"
	"github.com/ledgerplum/idp/storage"
	"github.com/ledgerplum/idp/storage/sqlite"
)

const testContentClass = "application/x.idp.test.leaf"

type testLeaf struct {
	Value int `json:"value"`
}

func buildLeafPlum(t *testing.T, value int) *plum.Plum {
	t.Helper()
	content, err := codec.EncodeValueToContent(testLeaf{Value: value}, testContentClass, codec.FormatJSON, codec.EncodingIdentity)
	require.NoError(t, err)
	p, err := plum.NewBuilder().WithContent(content).Build()
	require.NoError(t, err)
	return p
}

type identity struct {
	priv jwk.Key
	did  sig.DIDURL
}

func generateIdentity(t *testing.T) identity {
	t.Helper()
	priv, err := ecdsa.GenerateKey(secp256k1.S256(), rand.Reader)
	require.NoError(t, err)
	privJWK, err := jwk.FromRaw(priv)
	require.NoError(t, err)
	pubJWK, err := jwk.FromRaw(&priv.PublicKey)
	require.NoError(t, err)
	primary, err := sig.DIDKeyFromJWK(pubJWK)
	require.NoError(t, err)
	did := sig.WithKeyFragment(primary)
	require.NoError(t, privJWK.Set(jwk.KeyIDKey, did.String()))
	return identity{priv: privJWK, did: did}
}

func openTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := sqlite.OpenInMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// storeGenesisLink builds and stores a genesis PlumSig/OwnedData pair for
// owner over data, returning the PlumSig's head seal. A PlumSigContent
// names the head seal of the OwnedData it attests to, so the OwnedData
// Plum is built (and its head seal computed) before the PlumSig that
// points at it.
func storeGenesisLink(t *testing.T, store storage.Store, owner identity, data *plum.Plum) seal.PlumHeadSeal {
	t.Helper()
	ctx := context.Background()

	ownedData := sig.NewOwnedData(owner.did.Primary().String(), data.HeadSeal(), nil)
	ownedDataPlum, err := sig.BuildOwnedDataPlum(&ownedData)
	require.NoError(t, err)

	content := sig.NewPlumSigContent(ownedDataPlum.HeadSeal(), nil)
	plumSig, err := sig.NewPlumSig(content, owner.priv)
	require.NoError(t, err)
	plumSigPlum, err := sig.BuildPlumSigPlum(plumSig)
	require.NoError(t, err)

	var plumSigSeal seal.PlumHeadSeal
	require.NoError(t, store.WithTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.StorePlum(ctx, data); err != nil {
			return err
		}
		if _, err := tx.StorePlum(ctx, ownedDataPlum); err != nil {
			return err
		}
		var err error
		plumSigSeal, err = tx.StorePlum(ctx, plumSigPlum)
		return err
	}))
	return plumSigSeal
}

func TestCreateEstablishesPath(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	resolver := sig.KeyResolver{}

	owner := generateIdentity(t)
	data := buildLeafPlum(t, 1)
	genesisSeal := storeGenesisLink(t, store, owner, data)

	require.NoError(t, store.WithTx(ctx, func(tx storage.Tx) error {
		return pathgov.Create(ctx, tx, resolver, "/widgets/1", genesisSeal)
	}))

	require.NoError(t, store.WithTx(ctx, func(tx storage.Tx) error {
		ps, err := tx.GetPathState(ctx, "/widgets/1")
		require.NoError(t, err)
		require.True(t, ps.CurrentStateHeadSeal.Equal(genesisSeal.Seal))
		return nil
	}))
}

func TestCreateRejectsExistingPath(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	resolver := sig.KeyResolver{}

	owner := generateIdentity(t)
	data := buildLeafPlum(t, 2)
	genesisSeal := storeGenesisLink(t, store, owner, data)

	require.NoError(t, store.WithTx(ctx, func(tx storage.Tx) error {
		return pathgov.Create(ctx, tx, resolver, "/widgets/2", genesisSeal)
	}))

	err := store.WithTx(ctx, func(tx storage.Tx) error {
		return pathgov.Create(ctx, tx, resolver, "/widgets/2", genesisSeal)
	})
	require.Error(t, err)
	var alreadyExists *pathgov.PathAlreadyExists
	require.ErrorAs(t, err, &alreadyExists)
}

func TestCreateRejectsWrongSigner(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	resolver := sig.KeyResolver{}

	owner := generateIdentity(t)
	impostor := generateIdentity(t)
	data := buildLeafPlum(t, 3)

	ownedData := sig.NewOwnedData(owner.did.Primary().String(), data.HeadSeal(), nil)
	ownedDataPlum, err := sig.BuildOwnedDataPlum(&ownedData)
	require.NoError(t, err)

	content := sig.NewPlumSigContent(ownedDataPlum.HeadSeal(), nil)
	// Signed by impostor, but the OwnedData claims owner as the owner.
	plumSig, err := sig.NewPlumSig(content, impostor.priv)
	require.NoError(t, err)
	plumSigPlum, err := sig.BuildPlumSigPlum(plumSig)
	require.NoError(t, err)

	var plumSigSeal seal.PlumHeadSeal
	require.NoError(t, store.WithTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.StorePlum(ctx, data); err != nil {
			return err
		}
		if _, err := tx.StorePlum(ctx, ownedDataPlum); err != nil {
			return err
		}
		var err error
		plumSigSeal, err = tx.StorePlum(ctx, plumSigPlum)
		return err
	}))

	err = store.WithTx(ctx, func(tx storage.Tx) error {
		return pathgov.Create(ctx, tx, resolver, "/widgets/3", plumSigSeal)
	})
	require.Error(t, err)
	var signerMismatch *pathgov.SignerIsNotOwner
	require.ErrorAs(t, err, &signerMismatch)
}

// TestUpdateTransfersOwnership walks a path through a genesis Create and
// then an Update that both changes the pointed-at data and transfers
// ownership to a new owner, authorized by the outgoing owner's signature.
func TestUpdateTransfersOwnership(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	resolver := sig.KeyResolver{}

	alice := generateIdentity(t)
	bob := generateIdentity(t)

	dataV1 := buildLeafPlum(t, 10)
	genesisSeal := storeGenesisLink(t, store, alice, dataV1)
	require.NoError(t, store.WithTx(ctx, func(tx storage.Tx) error {
		return pathgov.Create(ctx, tx, resolver, "/widgets/4", genesisSeal)
	}))

	var genesisOwnedDataSeal seal.PlumHeadSeal
	require.NoError(t, store.WithTx(ctx, func(tx storage.Tx) error {
		genesisPlumSig, err := sig.LoadPlumSig(ctx, tx, genesisSeal)
		require.NoError(t, err)
		genesisOwnedDataSeal = genesisPlumSig.Content.Plum
		return nil
	}))

	dataV2 := buildLeafPlum(t, 20)
	transferOwnedData := sig.NewOwnedData(bob.did.Primary().String(), dataV2.HeadSeal(), &genesisOwnedDataSeal)
	transferOwnedDataPlum, err := sig.BuildOwnedDataPlum(&transferOwnedData)
	require.NoError(t, err)

	transferContent := sig.NewPlumSigContent(transferOwnedDataPlum.HeadSeal(), &genesisSeal)
	// Alice (the current owner) signs, transferring ownership to Bob.
	transferPlumSig, err := sig.NewPlumSig(transferContent, alice.priv)
	require.NoError(t, err)
	transferPlumSigPlum, err := sig.BuildPlumSigPlum(transferPlumSig)
	require.NoError(t, err)

	var transferSeal seal.PlumHeadSeal
	require.NoError(t, store.WithTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.StorePlum(ctx, dataV2); err != nil {
			return err
		}
		if _, err := tx.StorePlum(ctx, transferOwnedDataPlum); err != nil {
			return err
		}
		var err error
		transferSeal, err = tx.StorePlum(ctx, transferPlumSigPlum)
		return err
	}))

	require.NoError(t, store.WithTx(ctx, func(tx storage.Tx) error {
		return pathgov.Update(ctx, tx, resolver, "/widgets/4", transferSeal)
	}))

	require.NoError(t, store.WithTx(ctx, func(tx storage.Tx) error {
		ps, err := tx.GetPathState(ctx, "/widgets/4")
		require.NoError(t, err)
		require.True(t, ps.CurrentStateHeadSeal.Equal(transferSeal.Seal))
		return nil
	}))
}

func TestUpdateRejectsUnauthorizedTransfer(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	resolver := sig.KeyResolver{}

	alice := generateIdentity(t)
	bob := generateIdentity(t)

	dataV1 := buildLeafPlum(t, 11)
	genesisSeal := storeGenesisLink(t, store, alice, dataV1)
	require.NoError(t, store.WithTx(ctx, func(tx storage.Tx) error {
		return pathgov.Create(ctx, tx, resolver, "/widgets/5", genesisSeal)
	}))

	var genesisOwnedDataSeal seal.PlumHeadSeal
	require.NoError(t, store.WithTx(ctx, func(tx storage.Tx) error {
		genesisPlumSig, err := sig.LoadPlumSig(ctx, tx, genesisSeal)
		require.NoError(t, err)
		genesisOwnedDataSeal = genesisPlumSig.Content.Plum
		return nil
	}))

	dataV2 := buildLeafPlum(t, 21)
	forgedOwnedData := sig.NewOwnedData(bob.did.Primary().String(), dataV2.HeadSeal(), &genesisOwnedDataSeal)
	forgedOwnedDataPlum, err := sig.BuildOwnedDataPlum(&forgedOwnedData)
	require.NoError(t, err)

	// Bob signs a "transfer" to himself, but Bob was never authorized --
	// Alice is still the current owner.
	forgedContent := sig.NewPlumSigContent(forgedOwnedDataPlum.HeadSeal(), &genesisSeal)
	forgedPlumSig, err := sig.NewPlumSig(forgedContent, bob.priv)
	require.NoError(t, err)
	forgedPlumSigPlum, err := sig.BuildPlumSigPlum(forgedPlumSig)
	require.NoError(t, err)

	var forgedSeal seal.PlumHeadSeal
	require.NoError(t, store.WithTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.StorePlum(ctx, dataV2); err != nil {
			return err
		}
		if _, err := tx.StorePlum(ctx, forgedOwnedDataPlum); err != nil {
			return err
		}
		var err error
		forgedSeal, err = tx.StorePlum(ctx, forgedPlumSigPlum)
		return err
	}))

	err = store.WithTx(ctx, func(tx storage.Tx) error {
		return pathgov.Update(ctx, tx, resolver, "/widgets/5", forgedSeal)
	})
	require.Error(t, err)
	var signerMismatch *pathgov.SignerIsNotOwner
	require.ErrorAs(t, err, &signerMismatch)
}

func TestDeleteRemovesPathForOwner(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	resolver := sig.KeyResolver{}

	alice := generateIdentity(t)
	data := buildLeafPlum(t, 30)
	genesisSeal := storeGenesisLink(t, store, alice, data)
	require.NoError(t, store.WithTx(ctx, func(tx storage.Tx) error {
		return pathgov.Create(ctx, tx, resolver, "/widgets/6", genesisSeal)
	}))

	require.NoError(t, store.WithTx(ctx, func(tx storage.Tx) error {
		return pathgov.Delete(ctx, tx, resolver, "/widgets/6", alice.did.Primary().String())
	}))

	err := store.WithTx(ctx, func(tx storage.Tx) error {
		_, err := tx.GetPathState(ctx, "/widgets/6")
		return err
	})
	var notFound *storage.PathNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestDeleteRejectsNonOwner(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	resolver := sig.KeyResolver{}

	alice := generateIdentity(t)
	mallory := generateIdentity(t)
	data := buildLeafPlum(t, 31)
	genesisSeal := storeGenesisLink(t, store, alice, data)
	require.NoError(t, store.WithTx(ctx, func(tx storage.Tx) error {
		return pathgov.Create(ctx, tx, resolver, "/widgets/7", genesisSeal)
	}))

	err := store.WithTx(ctx, func(tx storage.Tx) error {
		return pathgov.Delete(ctx, tx, resolver, "/widgets/7", mallory.did.Primary().String())
	})
	require.Error(t, err)
	var signerMismatch *pathgov.SignerIsNotOwner
	require.ErrorAs(t, err, &signerMismatch)

	require.NoError(t, store.WithTx(ctx, func(tx storage.Tx) error {
		_, err := tx.GetPathState(ctx, "/widgets/7")
		return err
	}))
}
