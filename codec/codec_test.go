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

package codec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerplum/idp/codec"
)

type widget struct {
	Name  string `json:"name" codec:"name"`
	Count int    `json:"count" codec:"count"`
}

func TestSerializeDeserializeJSONRoundTrip(t *testing.T) {
	w := widget{Name: "bolt", Count: 7}
	data, err := codec.Serialize(w, codec.FormatJSON)
	require.NoError(t, err)

	var got widget
	require.NoError(t, codec.Deserialize(data, codec.FormatJSON, &got))
	require.Equal(t, w, got)
}

func TestSerializeDeserializeMsgpackRoundTrip(t *testing.T) {
	w := widget{Name: "nut", Count: 3}
	data, err := codec.Serialize(w, codec.FormatMsgpack)
	require.NoError(t, err)

	var got widget
	require.NoError(t, codec.Deserialize(data, codec.FormatMsgpack, &got))
	require.Equal(t, w, got)
}

func TestSerializeUnsupportedFormat(t *testing.T) {
	_, err := codec.Serialize(widget{}, "yaml")
	require.Error(t, err)
	var unsupported *codec.UnsupportedFormat
	require.ErrorAs(t, err, &unsupported)
}

func TestSerializeBytesCharsetASCIIRejectsNonASCII(t *testing.T) {
	_, err := codec.SerializeBytes([]byte("héllo"), codec.FormatCharsetUSASCII)
	require.Error(t, err)
}

func TestSerializeBytesRawPassesThrough(t *testing.T) {
	data := []byte{0x00, 0xff, 0x10}
	out, err := codec.SerializeBytes(data, codec.FormatNone)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestEncodeDecodeChainIdentity(t *testing.T) {
	data := []byte("no transformation")
	wire, err := codec.EncodeChain(data, codec.EncodingIdentity)
	require.NoError(t, err)
	require.Equal(t, data, wire)

	back, err := codec.DecodeChain(wire, codec.EncodingIdentity)
	require.NoError(t, err)
	require.Equal(t, data, back)
}

func TestEncodeDecodeChainGzip(t *testing.T) {
	data := []byte("compress me compress me compress me")
	wire, err := codec.EncodeChain(data, codec.EncodingGzip)
	require.NoError(t, err)
	require.NotEqual(t, data, wire)

	back, err := codec.DecodeChain(wire, codec.EncodingGzip)
	require.NoError(t, err)
	require.Equal(t, data, back)
}

func TestEncodeDecodeChainMultipleCodecsAppliedInOrder(t *testing.T) {
	data := []byte("layered compression test payload, layered compression test payload")
	wire, err := codec.EncodeChain(data, "deflate,gzip")
	require.NoError(t, err)

	back, err := codec.DecodeChain(wire, "deflate,gzip")
	require.NoError(t, err)
	require.Equal(t, data, back)
}

func TestNormalizeEncodingTrimsWhitespace(t *testing.T) {
	require.Equal(t, "deflate,gzip", codec.NormalizeEncoding(" deflate , gzip "))
}

func TestEncodeDecodeValueToContentRoundTrip(t *testing.T) {
	w := widget{Name: "washer", Count: 42}
	content, err := codec.EncodeValueToContent(w, "widget", codec.FormatMsgpack, "gzip")
	require.NoError(t, err)
	require.Equal(t, "widget", content.Metadata.Class)
	require.Equal(t, uint64(len(content.Bytes)), content.Metadata.Length)

	var got widget
	require.NoError(t, codec.DecodeValueFromContent(content, "widget", &got))
	require.Equal(t, w, got)
}

func TestDecodeValueFromContentClassMismatch(t *testing.T) {
	content, err := codec.EncodeValueToContent(widget{Name: "a"}, "widget", codec.FormatJSON, codec.EncodingIdentity)
	require.NoError(t, err)

	var got widget
	err = codec.DecodeValueFromContent(content, "gadget", &got)
	require.Error(t, err)
	var mismatch *codec.ContentClassMismatch
	require.ErrorAs(t, err, &mismatch)
}

func TestEncodeDecodeBytesToContentRoundTrip(t *testing.T) {
	data := []byte("raw payload bytes")
	content, err := codec.EncodeBytesToContent(data, "blob", codec.FormatNone, codec.EncodingDeflate)
	require.NoError(t, err)

	back, err := codec.DecodeBytesFromContent(content, "blob")
	require.NoError(t, err)
	require.Equal(t, data, back)
}
