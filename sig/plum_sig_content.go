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

// PlumSigContent is the signed payload of a PlumSig: the Plum being
// attested to, and optionally a link to a previous PlumSig turning this
// one into a node in a microledger.
type PlumSigContent struct {
	Nonce           plum.Nonce         `json:"nonce" codec:"nonce"`
	Plum            seal.PlumHeadSeal  `json:"plum" codec:"plum"`
	PreviousPlumSig *seal.PlumHeadSeal `json:"previous_plum_sig,omitempty" codec:"previous_plum_sig,omitempty"`
}

// NewPlumSigContent builds a PlumSigContent with a freshly generated
// nonce.
func NewPlumSigContent(p seal.PlumHeadSeal, previousPlumSig *seal.PlumHeadSeal) PlumSigContent {
	return PlumSigContent{Nonce: plum.NewNonce(), Plum: p, PreviousPlumSig: previousPlumSig}
}

// Hash computes the canonical digest that gets signed. The hashed field
// order -- nonce, then plum, then previous_plum_sig -- must never change:
// every PlumSig signature ever produced is over this exact sequence.
func (c *PlumSigContent) Hash() seal.Seal {
	h := seal.NewCanonicalHasher()
	h.OptionalBytes(c.Nonce, c.Nonce != nil)
	h.SealBytes(c.Plum.Digest)
	h.Present(c.PreviousPlumSig != nil)
	if c.PreviousPlumSig != nil {
		h.SealBytes(c.PreviousPlumSig.Digest)
	}
	return h.Sum()
}
