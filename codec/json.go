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

import "encoding/json"

// JSON is handled through stdlib encoding/json rather than the ugorji/go
// codec JSON handle: the latter is pulled in here purely for msgpack, and
// introducing a second JSON implementation alongside it would just be two
// ways to do the same thing for no benefit.
func jsonMarshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, &DeserializationFailed{Format: FormatJSON, Err: err}
	}
	return b, nil
}

func jsonUnmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &DeserializationFailed{Format: FormatJSON, Err: err}
	}
	return nil
}
