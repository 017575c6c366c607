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

// Package codec implements the reversible serialize-then-encode pipeline
// that turns a typed value into a plum.Content and back: a format names how
// the value's bytes were produced (raw, a charset-constrained string, JSON,
// msgpack), and a comma-separated encoding chain names zero or more
// compression codecs layered on top.
package codec

import (
	"unicode/utf8"

	mh "github.com/ugorji/go/codec"
)

// The recognized ContentFormat values. FormatNone means the payload is
// treated as opaque bytes with no further interpretation.
const (
	FormatNone           = ""
	FormatJSON           = "json"
	FormatMsgpack        = "msgpack"
	FormatCharsetUSASCII = "charset=us-ascii"
	FormatCharsetUTF8    = "charset=utf-8"
)

var mpHandle = &mh.MsgpackHandle{}

// SerializeBytes writes a raw []byte payload according to format.
// FormatNone passes the bytes through unchanged; the charset formats
// reinterpret data as text (validating ASCII-ness for
// FormatCharsetUSASCII) and otherwise pass through unchanged, since a
// string's encoding IS its byte representation.
func SerializeBytes(data []byte, format string) ([]byte, error) {
	switch format {
	case FormatNone:
		return data, nil
	case FormatCharsetUSASCII:
		if !isASCII(data) {
			return nil, &UnsupportedFormat{Format: format, Reason: "content is not valid US-ASCII"}
		}
		return data, nil
	case FormatCharsetUTF8:
		if !utf8.Valid(data) {
			return nil, &UnsupportedFormat{Format: format, Reason: "content is not valid UTF-8"}
		}
		return data, nil
	default:
		return nil, &UnsupportedFormat{Format: format}
	}
}

// DeserializeBytes is the inverse of SerializeBytes.
func DeserializeBytes(data []byte, format string) ([]byte, error) {
	return SerializeBytes(data, format)
}

// Serialize marshals v using the serde-style format named by format (only
// FormatJSON and FormatMsgpack are structured formats; anything else is an
// UnsupportedFormat error here -- callers with raw []byte or string values
// should use SerializeBytes instead).
func Serialize(v any, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return jsonMarshal(v)
	case FormatMsgpack:
		var buf []byte
		enc := mh.NewEncoderBytes(&buf, mpHandle)
		if err := enc.Encode(v); err != nil {
			return nil, &DeserializationFailed{Format: format, Err: err}
		}
		return buf, nil
	default:
		return nil, &UnsupportedFormat{Format: format}
	}
}

// Deserialize unmarshals data into v (which must be a pointer) using the
// serde-style format named by format.
func Deserialize(data []byte, format string, v any) error {
	switch format {
	case FormatJSON:
		return jsonUnmarshal(data, v)
	case FormatMsgpack:
		dec := mh.NewDecoderBytes(data, mpHandle)
		if err := dec.Decode(v); err != nil {
			return &DeserializationFailed{Format: format, Err: err}
		}
		return nil
	default:
		return &UnsupportedFormat{Format: format}
	}
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c > 0x7f {
			return false
		}
	}
	return true
}
