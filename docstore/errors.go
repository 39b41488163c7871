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

package docstore

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreClosed is returned when an operation is attempted after the store
	// has been closed.
	ErrStoreClosed = errors.New("docstore: store is closed")

	// ErrKeyNotFound is returned by a Bucket when no document exists for the
	// given document id.
	ErrKeyNotFound = errors.New("docstore: key not found")

	// ErrKeyExists is returned by a Bucket when an insert targets a document
	// id that is already taken.
	ErrKeyExists = errors.New("docstore: key already exists")

	// ErrVersionMismatch is returned by a Bucket when a conditional mutation
	// carries a version token that no longer matches the stored document, or
	// targets a document that has been removed since the token was issued.
	ErrVersionMismatch = errors.New("docstore: version token mismatch")

	// ErrNoVersion is returned when a delete is attempted without a version
	// token. Deleting a document that was never read is a caller error.
	ErrNoVersion = errors.New("docstore: no version token held for document")

	// ErrDocumentIDTooLong is returned when the derived document id exceeds
	// the maximum length supported by the document store.
	ErrDocumentIDTooLong = errors.New("docstore: document id exceeds 250 bytes")
)

// ConflictError reports an optimistic concurrency violation: either the
// caller's version token went stale, or a document unexpectedly already
// existed on a create. The caller decides whether to re-read and retry; the
// store never retries on its own.
type ConflictError struct {
	// StaleToken is the version token the caller supplied. Empty on a failed
	// create.
	StaleToken string
	// CurrentToken is the document's current version token when it could be
	// obtained, otherwise empty.
	CurrentToken string
}

// enforce compilation error
var _ error = (*ConflictError)(nil)

// Error implements the error interface
func (e *ConflictError) Error() string {
	return fmt.Sprintf("docstore: concurrency conflict: stale token=%q current token=%q", e.StaleToken, e.CurrentToken)
}

// Is makes the conflict matchable with errors.Is(err, ErrVersionMismatch)
func (e *ConflictError) Is(target error) bool {
	return target == ErrVersionMismatch
}
