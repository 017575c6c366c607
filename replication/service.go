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

	"google.golang.org/grpc"
)

// serviceName matches the service path a protoc-gen-go-grpc run would have
// produced, had this module gone through a .proto file instead of the
// hand-written wire types in wire.go.
const serviceName = "idp.IndoorDataPlumbing"

// ServerAPI is the interface a Push/Pull implementation must satisfy; it is
// the hand-written equivalent of a generated UnimplementedXxxServer
// embedding target.
type ServerAPI interface {
	Push(stream IndoorDataPlumbing_PushServer) error
	Pull(req *PullRequest, stream IndoorDataPlumbing_PullServer) error
}

// IndoorDataPlumbing_PushServer is the server's view of the bidirectional
// Push stream.
type IndoorDataPlumbing_PushServer interface {
	Send(*PushResponse) error
	Recv() (*PushRequest, error)
	grpc.ServerStream
}

// IndoorDataPlumbing_PullServer is the server's view of the server-streaming
// Pull RPC.
type IndoorDataPlumbing_PullServer interface {
	Send(*PullResponse) error
	grpc.ServerStream
}

type indoorDataPlumbingPushServer struct{ grpc.ServerStream }

func (x *indoorDataPlumbingPushServer) Send(m *PushResponse) error { return x.ServerStream.SendMsg(m) }
func (x *indoorDataPlumbingPushServer) Recv() (*PushRequest, error) {
	m := new(PushRequest)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

type indoorDataPlumbingPullServer struct{ grpc.ServerStream }

func (x *indoorDataPlumbingPullServer) Send(m *PullResponse) error { return x.ServerStream.SendMsg(m) }

func pushHandler(srv any, stream grpc.ServerStream) error {
	return srv.(ServerAPI).Push(&indoorDataPlumbingPushServer{stream})
}

func pullHandler(srv any, stream grpc.ServerStream) error {
	m := new(PullRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(ServerAPI).Pull(m, &indoorDataPlumbingPullServer{stream})
}

// serviceDesc is the hand-written equivalent of the _ServiceDesc a protoc
// plugin would emit.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ServerAPI)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Push",
			Handler:       pushHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
		{
			StreamName:    "Pull",
			Handler:       pullHandler,
			ServerStreams: true,
		},
	},
	Metadata: "idp/replication.proto",
}

// RegisterServerAPI registers impl against s, the way a generated
// RegisterIndoorDataPlumbingServer function would.
func RegisterServerAPI(s grpc.ServiceRegistrar, impl ServerAPI) {
	s.RegisterService(&serviceDesc, impl)
}

// clientAPI is the hand-written equivalent of a generated client stub.
type clientAPI struct {
	cc grpc.ClientConnInterface
}

func newClientAPI(cc grpc.ClientConnInterface) *clientAPI {
	return &clientAPI{cc: cc}
}

// IndoorDataPlumbing_PushClient is the client's view of the bidirectional
// Push stream.
type IndoorDataPlumbing_PushClient interface {
	Send(*PushRequest) error
	Recv() (*PushResponse, error)
	grpc.ClientStream
}

type indoorDataPlumbingPushClient struct{ grpc.ClientStream }

func (x *indoorDataPlumbingPushClient) Send(m *PushRequest) error { return x.ClientStream.SendMsg(m) }
func (x *indoorDataPlumbingPushClient) Recv() (*PushResponse, error) {
	m := new(PushResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *clientAPI) push(ctx context.Context, opts ...grpc.CallOption) (IndoorDataPlumbing_PushClient, error) {
	stream, err := c.cc.NewStream(ctx, &serviceDesc.Streams[0], serviceName+"/Push", opts...)
	if err != nil {
		return nil, err
	}
	return &indoorDataPlumbingPushClient{stream}, nil
}

// IndoorDataPlumbing_PullClient is the client's view of the server-streaming
// Pull RPC.
type IndoorDataPlumbing_PullClient interface {
	Recv() (*PullResponse, error)
	grpc.ClientStream
}

type indoorDataPlumbingPullClient struct{ grpc.ClientStream }

func (x *indoorDataPlumbingPullClient) Recv() (*PullResponse, error) {
	m := new(PullResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *clientAPI) pull(ctx context.Context, in *PullRequest, opts ...grpc.CallOption) (IndoorDataPlumbing_PullClient, error) {
	stream, err := c.cc.NewStream(ctx, &serviceDesc.Streams[1], serviceName+"/Pull", opts...)
	if err != nil {
		return nil, err
	}
	x := &indoorDataPlumbingPullClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
