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

// BranchNodeContentClass is the Body.ContentClass value identifying a
// serialized BranchNode.
const BranchNodeContentClass = "idp.ledgerplum.branch_node"

// BranchNode models one version in a linear, ancestor-linked history:
// optionally an ancestor version (also a BranchNode), a required metadata
// Plum, optional content, and optional forward/backward diffs against the
// ancestor.
type BranchNode struct {
	Ancestor  *seal.PlumHeadSeal `json:"ancestor,omitempty" codec:"ancestor,omitempty"`
	Height    uint64             `json:"height" codec:"height"`
	Metadata  seal.PlumHeadSeal  `json:"metadata" codec:"metadata"`
	Content   *seal.PlumHeadSeal `json:"content,omitempty" codec:"content,omitempty"`
	PosiDiff  *seal.PlumHeadSeal `json:"posi_diff,omitempty" codec:"posi_diff,omitempty"`
	NegaDiff  *seal.PlumHeadSeal `json:"nega_diff,omitempty" codec:"nega_diff,omitempty"`
}

// AccumulateRelationsNonrecursive implements Relational. Ancestor and
// Metadata are metadata dependencies; Content and both diffs are content
// dependencies.
func (n *BranchNode) AccumulateRelationsNonrecursive(relations map[seal.PlumHeadSeal]plum.RelationFlags, mask plum.RelationFlags) {
	if mask&plum.RelationMetadataDependency != plum.RelationNone {
		if n.Ancestor != nil {
			relations[*n.Ancestor] |= plum.RelationMetadataDependency
		}
		relations[n.Metadata] |= plum.RelationMetadataDependency
	}
	if mask&plum.RelationContentDependency != plum.RelationNone {
		for _, s := range []*seal.PlumHeadSeal{n.Content, n.PosiDiff, n.NegaDiff} {
			if s != nil {
				relations[*s] |= plum.RelationContentDependency
			}
		}
	}
}

// FragmentQuerySingleSegment implements FragmentQueryable. Recognized
// first segments: "" (self), "ancestor", "content", "metadata". Only
// "metadata" is guaranteed present; the others error if unset.
func (n *BranchNode) FragmentQuerySingleSegment(selfHeadSeal seal.PlumHeadSeal, queryStr string) (QueryResult, error) {
	if queryStr == "" {
		return QueryResult{Value: selfHeadSeal}, nil
	}

	first, rest, hasRest := splitFirstSegment(queryStr)
	switch first {
	case "ancestor":
		if n.Ancestor == nil {
			return QueryResult{}, &UnknownFragmentSegment{BodyType: "BranchNode", Segment: first}
		}
		return forwardOrValue(*n.Ancestor, rest, hasRest), nil
	case "content":
		if n.Content == nil {
			return QueryResult{}, &UnknownFragmentSegment{BodyType: "BranchNode", Segment: first}
		}
		return forwardOrValue(*n.Content, rest, hasRest), nil
	case "metadata":
		return forwardOrValue(n.Metadata, rest, hasRest), nil
	default:
		return QueryResult{}, &UnknownFragmentSegment{BodyType: "BranchNode", Segment: first}
	}
}

func forwardOrValue(target seal.PlumHeadSeal, rest string, hasRest bool) QueryResult {
	if !hasRest {
		return QueryResult{Value: target}
	}
	return QueryResult{Forward: true, Target: target, Rest: rest}
}
