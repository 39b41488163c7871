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
	"context"
	"time"
)

// Bucket is the narrow capability the store requires from the document
// database: point operations keyed by document id, each reporting the
// document's new CAS value, plus a tag-field scan. Implementations must be
// safe for concurrent use.
//
// Error contract: point operations report conditions with the package
// sentinels (ErrKeyNotFound, ErrKeyExists, ErrVersionMismatch) and surface
// everything else verbatim as a transport failure.
type Bucket interface {
	// Get reads a document and its current CAS value.
	Get(ctx context.Context, id string) ([]byte, uint64, error)
	// Insert creates a document that must not exist yet.
	Insert(ctx context.Context, id string, body []byte, expiry time.Duration) (uint64, error)
	// Replace overwrites a document only if its CAS value still matches cas.
	Replace(ctx context.Context, id string, body []byte, cas uint64, expiry time.Duration) (uint64, error)
	// Upsert overwrites a document unconditionally, creating it when absent.
	Upsert(ctx context.Context, id string, body []byte, expiry time.Duration) (uint64, error)
	// Remove deletes a document only if its CAS value still matches cas.
	Remove(ctx context.Context, id string, cas uint64) error
	// SelectIDs returns the ids of all documents matching the filter.
	SelectIDs(ctx context.Context, filter Filter) ([]string, error)
	// DeleteWhere removes all documents matching the filter in one bulk
	// operation. Partial deletion is possible and reported once at the end.
	DeleteWhere(ctx context.Context, filter Filter) error
	// Close releases the underlying connection. It must be idempotent.
	Close(ctx context.Context) error
}
