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

package storage

import (
	"fmt"

	"github.com/ledgerplum/idp/seal"
)

// PlumHeadNotFound means no row exists for the given Head seal.
type PlumHeadNotFound struct{ Seal seal.PlumHeadSeal }

func (e *PlumHeadNotFound) Error() string { return fmt.Sprintf("storage: plum head not found: %s", e.Seal) }

// PlumBodyNotFound means no row exists for the given Body seal.
type PlumBodyNotFound struct{ Seal seal.PlumBodySeal }

func (e *PlumBodyNotFound) Error() string { return fmt.Sprintf("storage: plum body not found: %s", e.Seal) }

// PlumRelationsNotFound means no row exists for the given Relations seal.
type PlumRelationsNotFound struct{ Seal seal.PlumRelationsSeal }

func (e *PlumRelationsNotFound) Error() string {
	return fmt.Sprintf("storage: plum relations not found: %s", e.Seal)
}

// PlumMetadataNotFound means no row exists for the given Metadata seal.
type PlumMetadataNotFound struct{ Seal seal.PlumMetadataSeal }

func (e *PlumMetadataNotFound) Error() string {
	return fmt.Sprintf("storage: plum metadata not found: %s", e.Seal)
}

// PathNotFound means no row exists in path_states for the given path.
type PathNotFound struct{ Path string }

func (e *PathNotFound) Error() string { return fmt.Sprintf("storage: path not found: %q", e.Path) }

// InvalidValueInDB means a row was found but a column's value couldn't be
// interpreted as the Go type it's supposed to represent (wrong length seal
// bytes, unparseable timestamp, etc).
type InvalidValueInDB struct {
	Table, Column, Reason string
}

func (e *InvalidValueInDB) Error() string {
	return fmt.Sprintf("storage: invalid value in %s.%s: %s", e.Table, e.Column, e.Reason)
}
