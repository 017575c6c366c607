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

package seal

// PlumHeadSeal identifies a whole Plum: the hash of its Head, which in turn
// references the three component seals below.
type PlumHeadSeal struct{ Seal }

// PlumBodySeal identifies a Plum's Body component.
type PlumBodySeal struct{ Seal }

// PlumRelationsSeal identifies a Plum's Relations component.
type PlumRelationsSeal struct{ Seal }

// PlumMetadataSeal identifies a Plum's Metadata component. Present since the
// later schema revision that added a metadata component seal to the Head.
type PlumMetadataSeal struct{ Seal }

func (s PlumHeadSeal) String() string      { return "PlumHeadSeal(" + s.Seal.String() + ")" }
func (s PlumBodySeal) String() string      { return "PlumBodySeal(" + s.Seal.String() + ")" }
func (s PlumRelationsSeal) String() string { return "PlumRelationsSeal(" + s.Seal.String() + ")" }
func (s PlumMetadataSeal) String() string  { return "PlumMetadataSeal(" + s.Seal.String() + ")" }

// ParsePlumHeadSeal parses the plain "algorithm:hex" form (as produced by
// Seal.String, not PlumHeadSeal.String's wrapped form) into a PlumHeadSeal.
// This is the form command-line flags and config files carry, since a Plum
// reference in those contexts is unambiguous without the type-name wrapper.
func ParsePlumHeadSeal(s string) (PlumHeadSeal, error) {
	inner, err := Parse(s)
	if err != nil {
		return PlumHeadSeal{}, err
	}
	return PlumHeadSeal{Seal: inner}, nil
}
