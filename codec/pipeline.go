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

import "github.com/ledgerplum/idp/plum"

// EncodeBytesToContent serializes data as raw bytes (FormatNone) or a
// charset-constrained string (FormatCharsetUSASCII/FormatCharsetUTF8),
// then runs the result through the encoding chain, producing a
// plum.Content ready to embed in a Plum's Body.
func EncodeBytesToContent(data []byte, class, format, encoding string) (plum.Content, error) {
	formatted, err := SerializeBytes(data, format)
	if err != nil {
		return plum.Content{}, err
	}
	wire, err := EncodeChain(formatted, NormalizeEncoding(encoding))
	if err != nil {
		return plum.Content{}, err
	}
	return plum.Content{
		Metadata: plum.ContentMetadata{
			Length:   uint64(len(wire)),
			Class:    class,
			Format:   format,
			Encoding: NormalizeEncoding(encoding),
		},
		Bytes: wire,
	}, nil
}

// DecodeBytesFromContent is the inverse of EncodeBytesToContent. expectedClass,
// when non-empty, is checked against content.Metadata.Class before decoding.
func DecodeBytesFromContent(content plum.Content, expectedClass string) ([]byte, error) {
	if expectedClass != "" && content.Metadata.Class != expectedClass {
		return nil, &ContentClassMismatch{Expected: expectedClass, Actual: content.Metadata.Class}
	}
	formatted, err := DecodeChain(content.Bytes, content.Metadata.Encoding)
	if err != nil {
		return nil, err
	}
	return DeserializeBytes(formatted, content.Metadata.Format)
}

// EncodeValueToContent serializes v using a structured format (FormatJSON
// or FormatMsgpack), then runs the result through the encoding chain,
// producing a plum.Content ready to embed in a Plum's Body.
func EncodeValueToContent(v any, class, format, encoding string) (plum.Content, error) {
	formatted, err := Serialize(v, format)
	if err != nil {
		return plum.Content{}, err
	}
	wire, err := EncodeChain(formatted, NormalizeEncoding(encoding))
	if err != nil {
		return plum.Content{}, err
	}
	return plum.Content{
		Metadata: plum.ContentMetadata{
			Length:   uint64(len(wire)),
			Class:    class,
			Format:   format,
			Encoding: NormalizeEncoding(encoding),
		},
		Bytes: wire,
	}, nil
}

// DecodeValueFromContent is the inverse of EncodeValueToContent. v must be
// a pointer. expectedClass, when non-empty, is checked against
// content.Metadata.Class before decoding.
func DecodeValueFromContent(content plum.Content, expectedClass string, v any) error {
	if expectedClass != "" && content.Metadata.Class != expectedClass {
		return &ContentClassMismatch{Expected: expectedClass, Actual: content.Metadata.Class}
	}
	formatted, err := DecodeChain(content.Bytes, content.Metadata.Encoding)
	if err != nil {
		return err
	}
	return Deserialize(formatted, content.Metadata.Format, v)
}
