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

package codec

import (
	"bytes"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

// The recognized ContentEncoding codec names, usable individually or
// chained as a comma-separated list (e.g. "deflate,gzip").
const (
	EncodingIdentity = "identity"
	EncodingDeflate  = "deflate"
	EncodingGzip     = "gzip"
)

// NormalizeEncoding splits a comma-separated ContentEncoding string on
// commas, trims surrounding whitespace from each codec name, and rejoins
// them. An empty string normalizes to itself (no codecs).
func NormalizeEncoding(encoding string) string {
	if encoding == "" {
		return ""
	}
	parts := strings.Split(encoding, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, ",")
}

func splitCodecs(encoding string) []string {
	normalized := NormalizeEncoding(encoding)
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, ",")
}

// EncodeChain applies the codecs named in encoding, in listed order, to
// formatted (the already-format-serialized bytes), returning the final
// wire bytes. "" and "identity" codecs are no-ops.
func EncodeChain(formatted []byte, encoding string) ([]byte, error) {
	data := formatted
	for _, codecName := range splitCodecs(encoding) {
		encoded, err := encodeOne(data, codecName)
		if err != nil {
			return nil, err
		}
		data = encoded
	}
	return data, nil
}

// DecodeChain is the inverse of EncodeChain: it undoes the codecs named in
// encoding in REVERSE of their listed order, since the last-applied codec
// is the outermost layer of the wire bytes and must be peeled off first.
func DecodeChain(wire []byte, encoding string) ([]byte, error) {
	codecs := splitCodecs(encoding)
	data := wire
	for i := len(codecs) - 1; i >= 0; i-- {
		decoded, err := decodeOne(data, codecs[i])
		if err != nil {
			return nil, err
		}
		data = decoded
	}
	return data, nil
}

func encodeOne(data []byte, codecName string) ([]byte, error) {
	switch codecName {
	case "", EncodingIdentity:
		return data, nil
	case EncodingDeflate:
		var buf bytes.Buffer
		w, err := flate.NewWriter(&buf, flate.DefaultCompression)
		if err != nil {
			return nil, &UnsupportedEncoding{Encoding: codecName, Err: err}
		}
		if _, err := w.Write(data); err != nil {
			return nil, &UnsupportedEncoding{Encoding: codecName, Err: err}
		}
		if err := w.Close(); err != nil {
			return nil, &UnsupportedEncoding{Encoding: codecName, Err: err}
		}
		return buf.Bytes(), nil
	case EncodingGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, &UnsupportedEncoding{Encoding: codecName, Err: err}
		}
		if err := w.Close(); err != nil {
			return nil, &UnsupportedEncoding{Encoding: codecName, Err: err}
		}
		return buf.Bytes(), nil
	default:
		return nil, &UnsupportedEncoding{Encoding: codecName}
	}
}

func decodeOne(data []byte, codecName string) ([]byte, error) {
	switch codecName {
	case "", EncodingIdentity:
		return data, nil
	case EncodingDeflate:
		r := flate.NewReader(bytes.NewReader(data))
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, &UnsupportedEncoding{Encoding: codecName, Err: err}
		}
		return out, nil
	case EncodingGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, &UnsupportedEncoding{Encoding: codecName, Err: err}
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, &UnsupportedEncoding{Encoding: codecName, Err: err}
		}
		return out, nil
	default:
		return nil, &UnsupportedEncoding{Encoding: codecName}
	}
}
