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

package plum

// ContentMetadata describes the shape of a Content payload: its length, its
// MIME-like class, the declared serialization format, and the (possibly
// empty) chain of encodings applied on top of it.
type ContentMetadata struct {
	Length   uint64
	Class    string
	Format   string
	Encoding string
}

// Content pairs a ContentMetadata with the bytes it describes. It is
// produced from a typed value by serializing with the declared format and
// then running the result through the encoding chain in forward order; see
// package codec.
type Content struct {
	Metadata ContentMetadata
	Bytes    []byte
}
