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
	"io"

	"go.uber.org/zap"

	"github.com/ledgerplum/idp/plum"
	"github.com/ledgerplum/idp/storage"
)

// Server answers Push and Pull RPCs against a local Store. It never
// initiates a connection itself; Client is the initiating side.
type Server struct {
	store  storage.Store
	logger *zap.Logger
}

// NewServer builds a Server backed by store. A nil logger installs a no-op
// one.
func NewServer(store storage.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{store: store, logger: logger}
}

// Push implements ServerAPI: it answers ShouldISendThisPlum probes and
// accepts HereHaveAPlum pushes until the peer closes the send side.
func (s *Server) Push(stream IndoorDataPlumbing_PushServer) error {
	ctx := stream.Context()
	for {
		req, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch {
		case req.ShouldISendThisPlum != nil:
			resp, err := s.handleProbe(ctx, *req.ShouldISendThisPlum)
			if err != nil {
				return err
			}
			if err := stream.Send(resp); err != nil {
				return err
			}
		case req.HereHaveAPlum != nil:
			if err := s.handlePush(ctx, *req.HereHaveAPlum); err != nil {
				return err
			}
			if err := stream.Send(&PushResponse{Ok: true}); err != nil {
				return err
			}
		default:
			return &ProtocolViolation{Reason: "PushRequest carried neither should_i_send_this_plum nor here_have_a_plum"}
		}
	}
}

func (s *Server) handleProbe(ctx context.Context, ws wireSeal) (*PushResponse, error) {
	headSeal, err := headSealFromWire(ws)
	if err != nil {
		return nil, err
	}

	var present bool
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		_, loadErr := tx.LoadPlumHead(ctx, headSeal)
		if loadErr == nil {
			present = true
			return nil
		}
		var notFound *storage.PlumHeadNotFound
		if errors.As(loadErr, &notFound) {
			present = false
			return nil
		}
		return loadErr
	})
	if err != nil {
		return nil, err
	}

	if present {
		return &PushResponse{DontSendThisPlum: &ws}, nil
	}
	return &PushResponse{SendThisPlum: &ws}, nil
}

func (s *Server) handlePush(ctx context.Context, wp WirePlum) error {
	p, err := PlumFromWire(wp)
	if err != nil {
		return err
	}
	if err := p.Verify(); err != nil {
		return &ProtocolViolation{Reason: "pushed plum failed verification: " + err.Error()}
	}
	return s.store.WithTx(ctx, func(tx storage.Tx) error {
		_, err := tx.StorePlum(ctx, p)
		return err
	})
}

// Pull implements ServerAPI: it answers a single IWantThisPlum request with
// either the Plum itself or IDontHaveThisPlum.
func (s *Server) Pull(req *PullRequest, stream IndoorDataPlumbing_PullServer) error {
	ctx := stream.Context()
	headSeal, err := headSealFromWire(req.IWantThisPlum)
	if err != nil {
		return err
	}

	var p *plum.Plum
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		loaded, loadErr := tx.LoadPlum(ctx, headSeal)
		if loadErr != nil {
			return loadErr
		}
		p = loaded
		return nil
	})

	var notFound *storage.PlumHeadNotFound
	if errors.As(err, &notFound) {
		return stream.Send(&PullResponse{IDontHaveThisPlum: &req.IWantThisPlum})
	}
	if err != nil {
		return err
	}

	wp, err := PlumToWire(p)
	if err != nil {
		return err
	}
	return stream.Send(&PullResponse{Plum: &wp})
}
