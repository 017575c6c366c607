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

import (
	"fmt"

	"github.com/ledgerplum/idp/seal"
)

// BodySealMismatch means the Body component's computed seal doesn't match
// the one declared in the Head.
type BodySealMismatch struct {
	Computed, Expected seal.PlumBodySeal
}

func (e *BodySealMismatch) Error() string {
	return fmt.Sprintf("plum: body seal mismatch: computed %s, expected %s", e.Computed, e.Expected)
}

// RelationsSealMismatch means the Relations component's computed seal
// doesn't match the one declared in the Head.
type RelationsSealMismatch struct {
	Computed, Expected seal.PlumRelationsSeal
}

func (e *RelationsSealMismatch) Error() string {
	return fmt.Sprintf("plum: relations seal mismatch: computed %s, expected %s", e.Computed, e.Expected)
}

// MetadataSealMismatch means the Metadata component's computed seal doesn't
// match the one declared in the Head.
type MetadataSealMismatch struct {
	Computed, Expected seal.PlumMetadataSeal
}

func (e *MetadataSealMismatch) Error() string {
	return fmt.Sprintf("plum: metadata seal mismatch: computed %s, expected %s", e.Computed, e.Expected)
}

// ExpectedRelationsMissing means the Head declares a RelationsSeal but no
// Relations component was supplied for verification.
type ExpectedRelationsMissing struct {
	Expected seal.PlumRelationsSeal
}

func (e *ExpectedRelationsMissing) Error() string {
	return fmt.Sprintf("plum: head declares relations seal %s but no relations component was supplied", e.Expected)
}

// UnexpectedRelationsPresent means a Relations component was supplied but
// the Head declares no RelationsSeal.
type UnexpectedRelationsPresent struct {
	Computed seal.PlumRelationsSeal
}

func (e *UnexpectedRelationsPresent) Error() string {
	return fmt.Sprintf("plum: relations component %s supplied but head declares no relations seal", e.Computed)
}

