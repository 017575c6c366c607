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

// Package sig implements the signed-ownership-chain primitives: DID URL
// parsing, a pluggable DID resolver (did:key only by default), JWS
// signing/verification over detached payloads, and the PlumSig/OwnedData
// pair that lets a chain of signatures express transferable ownership of a
// Plum.
package sig

import (
	"fmt"
	"strings"
)

// DIDURL is a parsed `did:<method>:<method-specific-id>[#<fragment>]`, per
// https://www.w3.org/TR/did-core/#did-url-syntax. Only the subset this
// package needs is modeled: no path or query components.
type DIDURL struct {
	Method           string
	MethodSpecificID string
	Fragment         string // empty means no fragment
}

// HasFragment reports whether d names a specific verification method
// (e.g. a signing key) rather than just the DID document as a whole.
func (d DIDURL) HasFragment() bool { return d.Fragment != "" }

// Primary returns d with its fragment stripped, i.e. just the DID.
func (d DIDURL) Primary() DIDURL {
	return DIDURL{Method: d.Method, MethodSpecificID: d.MethodSpecificID}
}

// WithFragment returns a copy of d (its fragment discarded) with fragment
// attached.
func (d DIDURL) WithFragment(fragment string) DIDURL {
	return DIDURL{Method: d.Method, MethodSpecificID: d.MethodSpecificID, Fragment: fragment}
}

// String renders d back to its `did:method:id[#fragment]` form.
func (d DIDURL) String() string {
	s := "did:" + d.Method + ":" + d.MethodSpecificID
	if d.Fragment != "" {
		s += "#" + d.Fragment
	}
	return s
}

// Equal reports whether two DIDURLs name the same method, id, and
// fragment.
func (d DIDURL) Equal(other DIDURL) bool {
	return d.Method == other.Method && d.MethodSpecificID == other.MethodSpecificID && d.Fragment == other.Fragment
}

// InvalidDIDURL means a string failed to parse as a DID URL.
type InvalidDIDURL struct {
	Value  string
	Reason string
}

func (e *InvalidDIDURL) Error() string {
	return fmt.Sprintf("sig: invalid DID URL %q: %s", e.Value, e.Reason)
}

// ParseDIDURL parses s as a DID URL. It accepts both a bare DID
// ("did:key:z...") and a DID fragment URL ("did:key:z...#z...").
func ParseDIDURL(s string) (DIDURL, error) {
	primary, fragment, _ := strings.Cut(s, "#")

	parts := strings.SplitN(primary, ":", 3)
	if len(parts) != 3 || parts[0] != "did" {
		return DIDURL{}, &InvalidDIDURL{Value: s, Reason: "expected did:<method>:<method-specific-id>"}
	}
	if parts[1] == "" || parts[2] == "" {
		return DIDURL{}, &InvalidDIDURL{Value: s, Reason: "method and method-specific-id must be non-empty"}
	}

	return DIDURL{Method: parts[1], MethodSpecificID: parts[2], Fragment: fragment}, nil
}
