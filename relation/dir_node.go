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

package relation

import (
	"github.com/ledgerplum/idp/plum"
	"github.com/ledgerplum/idp/seal"
)

// DirNodeContentClass is the Body.ContentClass value identifying a
// serialized DirNode.
const DirNodeContentClass = "idp.ledgerplum.dir_node"

// DirNode models a named fan-out of children, analogous to a filesystem
// directory: entry name to child Plum seal.
type DirNode struct {
	Entries map[string]seal.PlumHeadSeal `json:"entries" codec:"entries"`
}

// AccumulateRelationsNonrecursive implements Relational. Every entry is a
// content dependency; DirNode carries no metadata-only edges.
func (n *DirNode) AccumulateRelationsNonrecursive(relations map[seal.PlumHeadSeal]plum.RelationFlags, mask plum.RelationFlags) {
	if mask&plum.RelationContentDependency == plum.RelationNone {
		return
	}
	for _, target := range n.Entries {
		relations[target] |= plum.RelationContentDependency
	}
}

// FragmentQuerySingleSegment implements FragmentQueryable. "" and "/" both
// mean self; any other first segment must name a known entry, after which
// the rest of the path (if any) is forwarded to that entry.
func (n *DirNode) FragmentQuerySingleSegment(selfHeadSeal seal.PlumHeadSeal, queryStr string) (QueryResult, error) {
	if queryStr == "" || queryStr == "/" {
		return QueryResult{Value: selfHeadSeal}, nil
	}

	first, rest, hasRest := splitFirstSegment(queryStr)
	target, ok := n.Entries[first]
	if !ok {
		return QueryResult{}, &UnknownFragmentSegment{BodyType: "DirNode", Segment: first}
	}
	return forwardOrValue(target, rest, hasRest), nil
}
