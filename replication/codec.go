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
	mh "github.com/ugorji/go/codec"
	"google.golang.org/grpc/encoding"
)

// codecName is registered with grpc/encoding and selected via
// grpc.CallContentSubtype / the server's default codec, replacing the
// usual protobuf wire codec. There is no .proto file in this module --
// the request/response structs in wire.go carry "codec" struct tags read
// directly by this msgpack codec, the same pairing codec.Serialize /
// codec.Deserialize use for FormatMsgpack plum bodies.
const codecName = "proto"

var mpHandle = &mh.MsgpackHandle{}

type msgpackCodec struct{}

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf []byte
	enc := mh.NewEncoderBytes(&buf, mpHandle)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf, nil
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	dec := mh.NewDecoderBytes(data, mpHandle)
	return dec.Decode(v)
}

func (msgpackCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(msgpackCodec{})
}
