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

package plum

import "github.com/ledgerplum/idp/seal"

// Plum is the atomic, hash-identified storage object: a Head referencing
// three components by seal, plus the components themselves. Relations is
// optional -- not every Plum depends on anything else.
type Plum struct {
	Head      Head
	Metadata  Metadata
	Relations *Relations // nil means this Plum has no Relations component
	Body      Body
}

// HeadSeal returns the seal identifying the whole Plum (the Head's own
// seal).
func (p *Plum) HeadSeal() seal.PlumHeadSeal {
	return p.Head.Seal()
}

// Verify recomputes the Body, Relations and Metadata component seals
// and compares them against what the Head declares, returning a structured
// error on the first mismatch found. It does not recompute or check the
// Head's own seal -- that's the caller's identifier for this Plum, not
// something Verify can second-guess.
func (p *Plum) Verify() error {
	computedBodySeal := p.Body.Seal()
	if !computedBodySeal.Equal(p.Head.BodySeal.Seal) {
		return &BodySealMismatch{Computed: computedBodySeal, Expected: p.Head.BodySeal}
	}

	if err := p.verifyRelations(); err != nil {
		return err
	}
	if err := p.verifyMetadata(); err != nil {
		return err
	}
	return nil
}

func (p *Plum) verifyRelations() error {
	switch {
	case p.Head.RelationsSeal == nil && p.Relations == nil:
		return nil
	case p.Head.RelationsSeal != nil && p.Relations == nil:
		return &ExpectedRelationsMissing{Expected: *p.Head.RelationsSeal}
	case p.Head.RelationsSeal == nil && p.Relations != nil:
		return &UnexpectedRelationsPresent{Computed: p.Relations.Seal()}
	default:
		computed := p.Relations.Seal()
		if !computed.Equal(p.Head.RelationsSeal.Seal) {
			return &RelationsSealMismatch{Computed: computed, Expected: *p.Head.RelationsSeal}
		}
		return nil
	}
}

func (p *Plum) verifyMetadata() error {
	computed := p.Metadata.Seal()
	if !computed.Equal(p.Head.MetadataSeal.Seal) {
		return &MetadataSealMismatch{Computed: computed, Expected: p.Head.MetadataSeal}
	}
	return nil
}
