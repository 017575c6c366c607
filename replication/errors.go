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

package replication

import (
	"fmt"

	"github.com/ledgerplum/idp/seal"
)

// RemoteHasNotPlum means a Pull's target peer does not have the requested
// Plum (the peer replied IDontHaveThisPlum).
type RemoteHasNotPlum struct{ Seal seal.PlumHeadSeal }

func (e *RemoteHasNotPlum) Error() string {
	return fmt.Sprintf("replication: remote does not have plum: %s", e.Seal)
}

// RemoteUnreachable wraps a transport-level failure (dial, stream broken,
// deadline exceeded) reaching a peer.
type RemoteUnreachable struct {
	Host string
	Port int
	Err  error
}

func (e *RemoteUnreachable) Error() string {
	return fmt.Sprintf("replication: remote unreachable %s:%d: %v", e.Host, e.Port, e.Err)
}

func (e *RemoteUnreachable) Unwrap() error { return e.Err }

// ProtocolViolation means a peer sent a message that doesn't fit the
// expected request/response shape at this point in the exchange (e.g. a
// PushRequest with neither oneof variant set).
type ProtocolViolation struct{ Reason string }

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("replication: protocol violation: %s", e.Reason)
}
