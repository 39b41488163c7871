/*
 * MIT License
 *
 * Copyright (c) 2022-2026 Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package statestore

import "encoding/json"

// Serializer converts actor state payloads to and from their stored form.
// Implementations must be safe for concurrent use.
type Serializer interface {
	// Serialize renders the payload to its stored form.
	Serialize(payload any) ([]byte, error)
	// Deserialize populates the payload from its stored form.
	Deserialize(data []byte, payload any) error
}

// jsonSerializer stores payloads as JSON documents.
type jsonSerializer struct{}

// enforce compilation error
var _ Serializer = jsonSerializer{}

// NewJSONSerializer returns the default JSON serializer.
func NewJSONSerializer() Serializer {
	return jsonSerializer{}
}

func (jsonSerializer) Serialize(payload any) ([]byte, error) {
	return json.Marshal(payload)
}

func (jsonSerializer) Deserialize(data []byte, payload any) error {
	return json.Unmarshal(data, payload)
}
