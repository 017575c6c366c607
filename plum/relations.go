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
	"sort"

	"github.com/ledgerplum/idp/seal"
)

// RelationMapping is one outgoing edge: the seal of the target Plum's Head,
// and the flags labeling the kind(s) of dependency.
type RelationMapping struct {
	Target seal.PlumHeadSeal
	Flags  RelationFlags
}

// Relations is the component listing a Plum's outgoing edges. Seal hashes
// the mappings sorted by Target seal (ascending), via SortedMappings, which
// sorts a copy and leaves the receiver's slice in insertion order.
type Relations struct {
	Nonce  Nonce // nil means absent
	Source seal.PlumBodySeal
	// Mappings need not be pre-sorted by the caller; Seal and
	// SortedMappings sort a copy.
	Mappings []RelationMapping
}

// SortedMappings returns a copy of r.Mappings sorted ascending by Target
// seal, which is the canonical form required before hashing.
func (r *Relations) SortedMappings() []RelationMapping {
	out := make([]RelationMapping, len(r.Mappings))
	copy(out, r.Mappings)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Target.Less(out[j].Target.Seal)
	})
	return out
}

// Seal computes the PlumRelationsSeal of r: optional nonce, the source
// Plum's body seal, then the length-prefixed, canonically-sorted sequence
// of (target seal, flags) mappings.
func (r *Relations) Seal() seal.PlumRelationsSeal {
	mappings := r.SortedMappings()

	h := seal.NewCanonicalHasher()
	h.OptionalBytes(r.Nonce, r.Nonce != nil)
	h.SealBytes(r.Source.Digest)
	h.ArrayLen(len(mappings))
	for _, m := range mappings {
		h.SealBytes(m.Target.Digest)
		h.Uint32(uint32(m.Flags))
	}
	return seal.PlumRelationsSeal{Seal: h.Sum()}
}
