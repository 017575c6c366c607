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
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ledgerplum/idp/plum"
	"github.com/ledgerplum/idp/relation"
	"github.com/ledgerplum/idp/seal"
	"github.com/ledgerplum/idp/storage"
)

// relationLookupCacheSize bounds the MemoizedLookup each Client wraps its
// store in: Push's closure walk repeatedly re-visits overlapping subtrees
// across calls, and a miss just costs a re-fetch since Relations never
// changes once sealed.
const relationLookupCacheSize = 4096

// Client drives Push and Pull against one peer. It satisfies
// datacache.Puller structurally (its Pull method has the matching
// signature), so a *Client can be handed to datacache.New directly without
// either package importing the other.
type Client struct {
	conn   *grpc.ClientConn
	api    *clientAPI
	store  storage.Store
	lookup relation.Lookup
	logger *zap.Logger
	host   string
	port   int
}

// Dial connects to host:port over an insecure gRPC channel (this protocol
// has no TLS story of its own; deployments that need transport security
// terminate it in front of the listener) and wraps the connection in a
// Client backed by store for both the local closure walk (Push) and the
// landing zone for pulled Plums (Pull).
func Dial(ctx context.Context, host string, port int, store storage.Store, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	target := fmt.Sprintf("%s:%d", host, port)
	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	)
	if err != nil {
		return nil, &RemoteUnreachable{Host: host, Port: port, Err: err}
	}
	lookup, err := relation.NewMemoizedLookup(store, relationLookupCacheSize)
	if err != nil {
		return nil, fmt.Errorf("replication: building relation lookup cache: %w", err)
	}
	return &Client{
		conn:   conn,
		api:    newClientAPI(conn),
		store:  store,
		lookup: lookup,
		logger: logger,
		host:   host,
		port:   port,
	}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

// Push replicates root and everything it transitively depends on
// (RelationAll mask) to the peer. It computes the closure locally, then
// drives the bidirectional Push stream with the probe-then-send
// minimization spec describes as preferred: for every seal in the closure
// it first asks ShouldISendThisPlum and only transmits the full Plum body
// when the peer actually lacks it.
func (c *Client) Push(ctx context.Context, root seal.PlumHeadSeal) error {
	closure, err := relation.AccumulatedRelationsRecursive(ctx, c.lookup, root, plum.RelationAll)
	if err != nil {
		return fmt.Errorf("replication: computing push closure: %w", err)
	}

	seals := make([]seal.PlumHeadSeal, 0, len(closure)+1)
	seals = append(seals, root)
	for s := range closure {
		seals = append(seals, s)
	}

	stream, err := c.api.push(ctx)
	if err != nil {
		return &RemoteUnreachable{Host: c.host, Port: c.port, Err: err}
	}

	for _, s := range seals {
		if err := c.pushOne(ctx, stream, s); err != nil {
			return err
		}
	}

	if err := stream.CloseSend(); err != nil {
		return &RemoteUnreachable{Host: c.host, Port: c.port, Err: err}
	}
	return nil
}

func (c *Client) pushOne(ctx context.Context, stream IndoorDataPlumbing_PushClient, s seal.PlumHeadSeal) error {
	ws := headSealToWire(s)
	if err := stream.Send(&PushRequest{ShouldISendThisPlum: &ws}); err != nil {
		return &RemoteUnreachable{Host: c.host, Port: c.port, Err: err}
	}
	resp, err := stream.Recv()
	if err != nil {
		return &RemoteUnreachable{Host: c.host, Port: c.port, Err: err}
	}

	switch {
	case resp.DontSendThisPlum != nil:
		return nil
	case resp.SendThisPlum != nil:
		// fall through to send the full Plum below
	default:
		return &ProtocolViolation{Reason: "PushResponse to a probe carried neither send_this_plum nor dont_send_this_plum"}
	}

	var p *plum.Plum
	err = c.store.WithTx(ctx, func(tx storage.Tx) error {
		loaded, loadErr := tx.LoadPlum(ctx, s)
		p = loaded
		return loadErr
	})
	if err != nil {
		return fmt.Errorf("replication: loading %s to push: %w", s, err)
	}

	wp, err := PlumToWire(p)
	if err != nil {
		return err
	}
	if err := stream.Send(&PushRequest{HereHaveAPlum: &wp}); err != nil {
		return &RemoteUnreachable{Host: c.host, Port: c.port, Err: err}
	}
	ackResp, err := stream.Recv()
	if err != nil {
		return &RemoteUnreachable{Host: c.host, Port: c.port, Err: err}
	}
	if !ackResp.Ok {
		return &ProtocolViolation{Reason: "peer did not acknowledge a pushed plum"}
	}
	return nil
}

// Pull fetches headSeal from the peer (ignoring host/port, which name the
// Client's own fixed remote) and stores it locally. Only that one Plum is
// transferred; the Plums it depends on are not pulled. It satisfies
// datacache.Puller's signature exactly so a *Client can be passed directly
// as the puller collaborator.
func (c *Client) Pull(ctx context.Context, host string, port int, headSeal seal.PlumHeadSeal) error {
	ws := headSealToWire(headSeal)
	stream, err := c.api.pull(ctx, &PullRequest{IWantThisPlum: ws})
	if err != nil {
		return &RemoteUnreachable{Host: host, Port: port, Err: err}
	}

	resp, err := stream.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &ProtocolViolation{Reason: "pull stream closed without a response"}
		}
		return &RemoteUnreachable{Host: host, Port: port, Err: err}
	}

	if resp.IDontHaveThisPlum != nil {
		return &RemoteHasNotPlum{Seal: headSeal}
	}
	if resp.Plum == nil {
		return &ProtocolViolation{Reason: "PullResponse carried neither plum nor i_dont_have_this_plum"}
	}

	p, err := PlumFromWire(*resp.Plum)
	if err != nil {
		return err
	}
	if err := p.Verify(); err != nil {
		return &ProtocolViolation{Reason: "pulled plum failed verification: " + err.Error()}
	}

	return c.store.WithTx(ctx, func(tx storage.Tx) error {
		_, err := tx.StorePlum(ctx, p)
		return err
	})
}
