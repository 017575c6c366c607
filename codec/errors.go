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

import "fmt"

// UnsupportedFormat means content_format doesn't name a format this build
// knows how to (de)serialize.
type UnsupportedFormat struct {
	Format string
	Reason string // optional extra detail, e.g. "content is not valid UTF-8"
}

func (e *UnsupportedFormat) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("codec: unsupported format %q: %s", e.Format, e.Reason)
	}
	return fmt.Sprintf("codec: unsupported format %q", e.Format)
}

// UnsupportedEncoding means a codec name in content_encoding isn't
// recognized, or the recognized codec's (de)compressor itself failed.
type UnsupportedEncoding struct {
	Encoding string
	Err      error
}

func (e *UnsupportedEncoding) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("codec: encoding %q failed: %v", e.Encoding, e.Err)
	}
	return fmt.Sprintf("codec: unsupported encoding %q", e.Encoding)
}

func (e *UnsupportedEncoding) Unwrap() error { return e.Err }

// DeserializationFailed wraps an underlying format-specific
// marshal/unmarshal error (json, msgpack) with the format name that was in
// use.
type DeserializationFailed struct {
	Format string
	Err    error
}

func (e *DeserializationFailed) Error() string {
	return fmt.Sprintf("codec: %s (de)serialization failed: %v", e.Format, e.Err)
}

func (e *DeserializationFailed) Unwrap() error { return e.Err }

// ContentClassMismatch means the content_class recorded on a Content
// doesn't match what the caller expected to decode.
type ContentClassMismatch struct {
	Expected, Actual string
}

func (e *ContentClassMismatch) Error() string {
	return fmt.Sprintf("codec: content class mismatch: expected %q, got %q", e.Expected, e.Actual)
}
