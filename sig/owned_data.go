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
	"github.com/ledgerplum/idp/plum"
	"github.com/ledgerplum/idp/seal"
)

// OwnedDataContentClass is the Body.ContentClass value identifying a
// serialized OwnedData.
const OwnedDataContentClass = "idp.ledgerplum.owned_data"

// OwnedData records, for a single path in the path-governed namespace, who
// currently owns it (a DID string) and what data Plum it currently points
// at. PreviousOwnedData links back to the OwnedData this one supersedes,
// turning a sequence of OwnedData Plums into an ownership-transfer chain
// mirrored by a parallel chain of PlumSigs (see VerifyChain).
type OwnedData struct {
	Owner             string             `json:"owner" codec:"owner"`
	Data              seal.PlumHeadSeal  `json:"data" codec:"data"`
	PreviousOwnedData *seal.PlumHeadSeal `json:"previous_owned_data,omitempty" codec:"previous_owned_data,omitempty"`
}

// NewOwnedData builds an OwnedData for owner pointing at data, optionally
// superseding previousOwnedData.
func NewOwnedData(owner string, data seal.PlumHeadSeal, previousOwnedData *seal.PlumHeadSeal) OwnedData {
	return OwnedData{Owner: owner, Data: data, PreviousOwnedData: previousOwnedData}
}

// AccumulateRelationsNonrecursive implements relation.Relational: the owned
// data Plum is a content dependency of the OwnedData record.
func (d *OwnedData) AccumulateRelationsNonrecursive(relations map[seal.PlumHeadSeal]plum.RelationFlags, mask plum.RelationFlags) {
	if mask&plum.RelationContentDependency != plum.RelationNone {
		relations[d.Data] |= plum.RelationContentDependency
	}
}
