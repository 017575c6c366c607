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

import "fmt"

// RelationFlags is a bitset labeling an outgoing edge in the relation graph.
// New flags may be added at higher bit positions without breaking wire
// compatibility; existing positions must never be reassigned.
type RelationFlags uint32

const (
	// RelationNone carries no flags.
	RelationNone RelationFlags = 0
	// RelationContentDependency marks an edge where the target's Body is
	// required to make sense of the source.
	RelationContentDependency RelationFlags = 1 << 0
	// RelationMetadataDependency marks an edge where only the target's
	// Metadata is required.
	RelationMetadataDependency RelationFlags = 1 << 1

	// RelationAll is the union of every flag defined today. Replication
	// closures default to this mask.
	RelationAll = RelationContentDependency | RelationMetadataDependency

	// relationKnownMask is every bit position reserved so far; used to
	// reject raw wire values with unknown high bits set defensively, should
	// future code choose to validate strictly.
	relationKnownMask = RelationAll
)

// Has reports whether every bit set in mask is also set in f.
func (f RelationFlags) Has(mask RelationFlags) bool {
	return f&mask == mask
}

// Intersects reports whether f and mask share any set bit.
func (f RelationFlags) Intersects(mask RelationFlags) bool {
	return f&mask != 0
}

func (f RelationFlags) String() string {
	if f == RelationNone {
		return "NONE"
	}
	s := ""
	if f.Has(RelationContentDependency) {
		s += "CONTENT_DEPENDENCY|"
	}
	if f.Has(RelationMetadataDependency) {
		s += "METADATA_DEPENDENCY|"
	}
	if rest := f &^ relationKnownMask; rest != 0 {
		s += fmt.Sprintf("UNKNOWN(%#x)|", uint32(rest))
	}
	if s == "" {
		return fmt.Sprintf("RelationFlags(%#x)", uint32(f))
	}
	return s[:len(s)-1]
}
