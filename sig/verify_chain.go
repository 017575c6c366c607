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

	"github.com/ledgerplum/idp/seal"
	"github.com/ledgerplum/idp/storage"
)

// GenesisOwnerMismatch means a chain's genesis PlumSig (no previous
// pointers at all) was signed by someone other than the OwnedData's
// declared owner.
type GenesisOwnerMismatch struct {
	Signer, Owner string
}

func (e *GenesisOwnerMismatch) Error() string {
	return fmt.Sprintf("sig: genesis PlumSig signer %q does not match OwnedData owner %q", e.Signer, e.Owner)
}

// PreviousLinkMismatch means a non-genesis link's previous_plum_sig does not
// attest to the same OwnedData the link's own previous_owned_data names.
type PreviousLinkMismatch struct {
	PreviousPlumSigPlum seal.PlumHeadSeal
	PreviousOwnedData   seal.PlumHeadSeal
}

func (e *PreviousLinkMismatch) Error() string {
	return fmt.Sprintf("sig: previous_plum_sig's content.plum %s does not match previous_owned_data %s", e.PreviousPlumSigPlum, e.PreviousOwnedData)
}

// TransferSignerMismatch means a non-genesis link's signer is not the
// owner recorded by the previous OwnedData in the chain -- i.e. it was
// signed by someone other than whoever owned the path at that point.
type TransferSignerMismatch struct {
	Signer, PreviousOwner string
}

func (e *TransferSignerMismatch) Error() string {
	return fmt.Sprintf("sig: signer %q does not match previous owner %q", e.Signer, e.PreviousOwner)
}

// AsymmetricPreviousPointers means exactly one of {previous_plum_sig,
// previous_owned_data} was present where the chain requires both or
// neither: a structurally malformed link.
type AsymmetricPreviousPointers struct {
	Tip seal.PlumHeadSeal
}

func (e *AsymmetricPreviousPointers) Error() string {
	return fmt.Sprintf("sig: link at %s has exactly one of previous_plum_sig/previous_owned_data set", e.Tip)
}

// VerifyChain walks backward from the PlumSig at tip through its paired
// OwnedData chain, verifying every link's signature and every cross-link
// invariant:
//
//   - The tip's PlumSig signature must verify against the signer resolved
//     by resolver.
//   - If both previous pointers are absent, this is the chain's genesis:
//     the signer must equal the OwnedData's own owner.
//   - If both previous pointers are present, the previous PlumSig's
//     content.plum must equal the current link's previous_owned_data, and
//     the signer of the current link must equal the previous OwnedData's
//     owner (the "diagonal" rule: a transfer is authorized by the
//     *previous* owner, not the new one).
//   - Exactly one pointer present is a structural error.
//
// It returns nil once the genesis link is reached with no error found along
// the way. tip names a PlumSig, not an OwnedData: a PlumSig's content.plum
// is the head seal of the OwnedData it attests to, so the pair is always
// loaded together starting from the PlumSig side.
func VerifyChain(ctx context.Context, tx storage.Tx, resolver Resolver, tip seal.PlumHeadSeal) error {
	plumSig, err := LoadPlumSig(ctx, tx, tip)
	if err != nil {
		return err
	}
	ownedData, err := LoadOwnedData(ctx, tx, plumSig.Content.Plum)
	if err != nil {
		return err
	}

	for {
		signerDID, err := plumSig.VerifyAndExtractSigner(ctx, resolver)
		if err != nil {
			return err
		}
		signer := signerDID.Primary().String()

		switch {
		case plumSig.Content.PreviousPlumSig == nil && ownedData.PreviousOwnedData == nil:
			if signer != ownedData.Owner {
				return &GenesisOwnerMismatch{Signer: signer, Owner: ownedData.Owner}
			}
			return nil

		case plumSig.Content.PreviousPlumSig != nil && ownedData.PreviousOwnedData != nil:
			previousPlumSig, err := LoadPlumSig(ctx, tx, *plumSig.Content.PreviousPlumSig)
			if err != nil {
				return err
			}
			if !previousPlumSig.Content.Plum.Equal(ownedData.PreviousOwnedData.Seal) {
				return &PreviousLinkMismatch{
					PreviousPlumSigPlum: previousPlumSig.Content.Plum,
					PreviousOwnedData:   *ownedData.PreviousOwnedData,
				}
			}
			previousOwnedData, err := LoadOwnedData(ctx, tx, *ownedData.PreviousOwnedData)
			if err != nil {
				return err
			}
			if signer != previousOwnedData.Owner {
				return &TransferSignerMismatch{Signer: signer, PreviousOwner: previousOwnedData.Owner}
			}
			plumSig, ownedData = previousPlumSig, previousOwnedData

		default:
			return &AsymmetricPreviousPointers{Tip: plumSig.Content.Plum}
		}
	}
}
