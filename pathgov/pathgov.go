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

// Package pathgov implements the privileged operations that mutate a
// path's PathState under the PlumSig/OwnedData ownership-chain rules: a
// path can only be created with a genesis (no-previous) signed link, and
// can only be updated by a link that correctly chains off the path's
// current state and is signed by the current owner.
package pathgov

import (
	"context"
	"errors"

	"github.com/ledgerplum/idp/seal"
	"github.com/ledgerplum/idp/sig"
	"github.com/ledgerplum/idp/storage"
)

// Create establishes path for the first time, pointed at the PlumSig named
// by plumSigHeadSeal. That PlumSig and its OwnedData must both be genesis
// links (no previous pointers), its signer must equal the OwnedData's
// declared owner, and the OwnedData's data Plum must already be stored.
func Create(ctx context.Context, tx storage.Tx, resolver sig.Resolver, path string, plumSigHeadSeal seal.PlumHeadSeal) error {
	if _, err := tx.GetPathState(ctx, path); err == nil {
		return &PathAlreadyExists{Path: path}
	} else {
		var notFound *storage.PathNotFound
		if !errors.As(err, &notFound) {
			return err
		}
	}

	plumSig, err := sig.LoadPlumSig(ctx, tx, plumSigHeadSeal)
	if err != nil {
		return err
	}
	if plumSig.Content.PreviousPlumSig != nil {
		return &MissingGenesisOnCreate{Reason: "PlumSig has a previous_plum_sig"}
	}

	signerDID, err := plumSig.VerifyAndExtractSigner(ctx, resolver)
	if err != nil {
		return err
	}
	signer := signerDID.Primary().String()

	ownedData, err := sig.LoadOwnedData(ctx, tx, plumSig.Content.Plum)
	if err != nil {
		return err
	}
	if ownedData.PreviousOwnedData != nil {
		return &MissingGenesisOnCreate{Reason: "OwnedData has a previous_owned_data"}
	}
	if signer != ownedData.Owner {
		return &SignerIsNotOwner{Signer: signer, Owner: ownedData.Owner}
	}

	if _, err := tx.LoadPlumHead(ctx, ownedData.Data); err != nil {
		var headNotFound *storage.PlumHeadNotFound
		if errors.As(err, &headNotFound) {
			return &PlumMustAlreadyExist{Seal: ownedData.Data}
		}
		return err
	}

	return tx.CreatePathState(ctx, path, plumSigHeadSeal)
}

// Update advances path from its current PlumSig to the one named by
// newPlumSigHeadSeal. The new link must chain off the path's current
// state on both the PlumSig and OwnedData sides, and must be signed by
// whoever owns the path's *current* OwnedData (the diagonal rule: an
// ownership transfer is authorized by the outgoing owner, not the
// incoming one).
func Update(ctx context.Context, tx storage.Tx, resolver sig.Resolver, path string, newPlumSigHeadSeal seal.PlumHeadSeal) error {
	currentPathState, err := tx.GetPathState(ctx, path)
	if err != nil {
		return err
	}

	currentPlumSig, err := sig.LoadPlumSig(ctx, tx, currentPathState.CurrentStateHeadSeal)
	if err != nil {
		return err
	}
	currentOwnedData, err := sig.LoadOwnedData(ctx, tx, currentPlumSig.Content.Plum)
	if err != nil {
		return err
	}
	if _, err := currentPlumSig.VerifyAndExtractSigner(ctx, resolver); err != nil {
		return err
	}

	newPlumSig, err := sig.LoadPlumSig(ctx, tx, newPlumSigHeadSeal)
	if err != nil {
		return err
	}
	newSignerDID, err := newPlumSig.VerifyAndExtractSigner(ctx, resolver)
	if err != nil {
		return err
	}
	newSigner := newSignerDID.Primary().String()

	newOwnedData, err := sig.LoadOwnedData(ctx, tx, newPlumSig.Content.Plum)
	if err != nil {
		return err
	}

	if newSigner != currentOwnedData.Owner {
		return &SignerIsNotOwner{Signer: newSigner, Owner: currentOwnedData.Owner}
	}

	if newPlumSig.Content.PreviousPlumSig == nil {
		return &UnexpectedGenesisOnUpdate{Reason: "new PlumSig has no previous_plum_sig"}
	}
	if newOwnedData.PreviousOwnedData == nil {
		return &UnexpectedGenesisOnUpdate{Reason: "new OwnedData has no previous_owned_data"}
	}
	if !newPlumSig.Content.PreviousPlumSig.Equal(currentPathState.CurrentStateHeadSeal.Seal) {
		return &PreviousPointerMismatch{Reason: "new PlumSig's previous_plum_sig does not match the path's current state"}
	}
	if !newOwnedData.PreviousOwnedData.Equal(currentPlumSig.Content.Plum.Seal) {
		return &PreviousPointerMismatch{Reason: "new OwnedData's previous_owned_data does not match the current PlumSig's signed Plum"}
	}

	return tx.UpdatePathState(ctx, path, newPlumSigHeadSeal)
}

// Delete soft-deletes path. Semantics for deletion are not fully settled
// upstream; this repo requires the same authority Update would need -- the
// current chain must verify and requesterDID must equal the current
// OwnedData's owner -- so a path can't be tombstoned out from under its
// owner by anyone else.
func Delete(ctx context.Context, tx storage.Tx, resolver sig.Resolver, path string, requesterDID string) error {
	currentPathState, err := tx.GetPathState(ctx, path)
	if err != nil {
		return err
	}

	currentPlumSig, err := sig.LoadPlumSig(ctx, tx, currentPathState.CurrentStateHeadSeal)
	if err != nil {
		return err
	}
	currentOwnedData, err := sig.LoadOwnedData(ctx, tx, currentPlumSig.Content.Plum)
	if err != nil {
		return err
	}
	if _, err := currentPlumSig.VerifyAndExtractSigner(ctx, resolver); err != nil {
		return err
	}
	if requesterDID != currentOwnedData.Owner {
		return &SignerIsNotOwner{Signer: requesterDID, Owner: currentOwnedData.Owner}
	}

	return tx.DeletePathState(ctx, path)
}
