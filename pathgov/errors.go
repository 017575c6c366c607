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

package pathgov

import (
	"fmt"

	"github.com/ledgerplum/idp/seal"
)

// PathAlreadyExists means Create was called for a path that already has a
// PathState row.
type PathAlreadyExists struct{ Path string }

func (e *PathAlreadyExists) Error() string {
	return fmt.Sprintf("pathgov: path %q already exists", e.Path)
}

// PlumMustAlreadyExist means an OwnedData names a data Plum that hasn't
// been stored yet: ownership can only be asserted over something that
// already exists.
type PlumMustAlreadyExist struct{ Seal seal.PlumHeadSeal }

func (e *PlumMustAlreadyExist) Error() string {
	return fmt.Sprintf("pathgov: OwnedData's data Plum %s does not exist", e.Seal)
}

// SignerIsNotOwner means a PlumSig's verified signer does not match the
// owner that authorizes the mutation it's proposing: for Create, the new
// OwnedData's own owner; for Update, the current OwnedData's owner.
type SignerIsNotOwner struct {
	Signer, Owner string
}

func (e *SignerIsNotOwner) Error() string {
	return fmt.Sprintf("pathgov: signer %q is not owner %q", e.Signer, e.Owner)
}

// PreviousPointerMismatch means an Update's new PlumSig/OwnedData previous
// pointers don't line up with the path's current state: the new PlumSig's
// previous_plum_sig must equal the current state's head seal, and the new
// OwnedData's previous_owned_data must equal the current PlumSig's signed
// Plum.
type PreviousPointerMismatch struct {
	Reason string
}

func (e *PreviousPointerMismatch) Error() string {
	return fmt.Sprintf("pathgov: previous pointer mismatch: %s", e.Reason)
}

// UnexpectedGenesisOnUpdate means Update was given a PlumSig/OwnedData pair
// with no previous pointers: every update must chain off the path's
// existing state, so a genesis-shaped pair can never be a valid update.
type UnexpectedGenesisOnUpdate struct{ Reason string }

func (e *UnexpectedGenesisOnUpdate) Error() string {
	return fmt.Sprintf("pathgov: update requires a previous pointer: %s", e.Reason)
}

// MissingGenesisOnCreate means Create was given a PlumSig/OwnedData pair
// that already carries a previous pointer: a freshly created path can only
// start from a genesis link, never one that claims to chain off something
// earlier.
type MissingGenesisOnCreate struct{ Reason string }

func (e *MissingGenesisOnCreate) Error() string {
	return fmt.Sprintf("pathgov: create requires a genesis (no previous pointer): %s", e.Reason)
}
