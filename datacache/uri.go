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

// Package datacache implements the lazy reference/cache layer: PlumURI
// parsing, the process-wide Datacache singleton with per-seal single-flight
// loading, and the typed PlumRef handle.
package datacache

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/ledgerplum/idp/seal"
)

// DefaultPort is the conventional gRPC port a Remote PlumURI assumes absent
// an explicit one.
const DefaultPort = 50051

// PlumURI names a Plum either by local seal alone, or by seal plus the peer
// that holds it.
type PlumURI struct {
	HeadSeal seal.PlumHeadSeal
	Host     string // empty means Local
	Port     int    // only meaningful when Host != ""
}

// IsLocal reports whether u names a Plum assumed to already live in local
// storage.
func (u PlumURI) IsLocal() bool { return u.Host == "" }

// Scheme reports the transport scheme a Remote URI's host implies: plain
// http for loopback/any-interface addresses (useful for local development
// clusters), https otherwise.
func (u PlumURI) Scheme() string {
	switch u.Host {
	case "localhost", "127.0.0.1", "0.0.0.0":
		return "http"
	default:
		return "https"
	}
}

// String renders u in the idp:///<hex-seal> or idp://host[:port]/<hex-seal>
// form.
func (u PlumURI) String() string {
	hexSeal := hex.EncodeToString(u.HeadSeal.Digest[:])
	if u.IsLocal() {
		return "idp:///" + hexSeal
	}
	if u.Port == DefaultPort || u.Port == 0 {
		return fmt.Sprintf("idp://%s/%s", u.Host, hexSeal)
	}
	return fmt.Sprintf("idp://%s:%d/%s", u.Host, u.Port, hexSeal)
}

// Local builds a Local PlumURI.
func Local(s seal.PlumHeadSeal) PlumURI { return PlumURI{HeadSeal: s} }

// Remote builds a Remote PlumURI at the default port.
func Remote(host string, s seal.PlumHeadSeal) PlumURI {
	return PlumURI{HeadSeal: s, Host: host, Port: DefaultPort}
}

// RemoteOnPort builds a Remote PlumURI at an explicit port.
func RemoteOnPort(host string, port int, s seal.PlumHeadSeal) PlumURI {
	return PlumURI{HeadSeal: s, Host: host, Port: port}
}

// InvalidURI reports a PlumURI string that doesn't match the idp:// grammar.
type InvalidURI struct {
	URI    string
	Reason string
}

func (e *InvalidURI) Error() string { return fmt.Sprintf("datacache: invalid PlumURI %q: %s", e.URI, e.Reason) }

// ParseURI parses a string of the form "idp:///<hex-seal>" (local) or
// "idp://<host>[:<port>]/<hex-seal>" (remote).
func ParseURI(raw string) (PlumURI, error) {
	const prefix = "idp://"
	if !strings.HasPrefix(raw, prefix) {
		return PlumURI{}, &InvalidURI{URI: raw, Reason: "missing idp:// scheme"}
	}
	rest := raw[len(prefix):]

	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return PlumURI{}, &InvalidURI{URI: raw, Reason: "missing /<hex-seal> path"}
	}
	authority, hexSeal := rest[:slash], rest[slash+1:]

	digest, err := hex.DecodeString(hexSeal)
	if err != nil {
		return PlumURI{}, &InvalidURI{URI: raw, Reason: "seal is not valid hex: " + err.Error()}
	}
	s, err := seal.FromBytes(seal.AlgorithmSHA256, digest)
	if err != nil {
		return PlumURI{}, &InvalidURI{URI: raw, Reason: err.Error()}
	}
	headSeal := seal.PlumHeadSeal{Seal: s}

	if authority == "" {
		return Local(headSeal), nil
	}

	host, portStr, found := strings.Cut(authority, ":")
	if !found {
		return Remote(host, headSeal), nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return PlumURI{}, &InvalidURI{URI: raw, Reason: "invalid port: " + err.Error()}
	}
	return RemoteOnPort(host, port, headSeal), nil
}
