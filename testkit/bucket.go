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

// Package testkit provides an in-memory docstore.Bucket with real CAS
// semantics, so the storage protocol can be exercised without a running
// Couchbase cluster.
package testkit

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/tochemey/goakt-couchbase/docstore"
)

// ErrBucketClosed is returned once the bucket has been closed.
var ErrBucketClosed = errors.New("testkit: bucket is closed")

type document struct {
	body      []byte
	cas       uint64
	expiresAt time.Time
}

func (d *document) expired(now time.Time) bool {
	return !d.expiresAt.IsZero() && now.After(d.expiresAt)
}

// tags is the subset of the persisted document shape the scan filter
// evaluates against.
type tags struct {
	DocType    string    `json:"docType"`
	DocSubType string    `json:"docSubType"`
	OwnerHash  uint64    `json:"actorHash"`
	Status     *int32    `json:"status"`
	AliveTime  time.Time `json:"aliveTime"`
}

// Bucket is an in-memory implementation of docstore.Bucket. Every mutation
// advances a monotonic CAS counter; expiry is honored lazily on access. Safe
// for concurrent use.
type Bucket struct {
	mu      sync.RWMutex
	docs    map[string]*document
	lastCas uint64
	closed  bool
}

// enforce compilation error
var _ docstore.Bucket = (*Bucket)(nil)

// NewBucket creates an empty in-memory bucket.
func NewBucket() *Bucket {
	return &Bucket{docs: make(map[string]*document)}
}

// Get implements docstore.Bucket
func (b *Bucket) Get(_ context.Context, id string) ([]byte, uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, 0, ErrBucketClosed
	}

	doc, ok := b.docs[id]
	if !ok || doc.expired(time.Now()) {
		return nil, 0, docstore.ErrKeyNotFound
	}
	body := make([]byte, len(doc.body))
	copy(body, doc.body)
	return body, doc.cas, nil
}

// Insert implements docstore.Bucket
func (b *Bucket) Insert(_ context.Context, id string, body []byte, expiry time.Duration) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, ErrBucketClosed
	}

	if doc, ok := b.docs[id]; ok && !doc.expired(time.Now()) {
		return 0, docstore.ErrKeyExists
	}
	return b.put(id, body, expiry), nil
}

// Replace implements docstore.Bucket
func (b *Bucket) Replace(_ context.Context, id string, body []byte, cas uint64, expiry time.Duration) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, ErrBucketClosed
	}

	doc, ok := b.docs[id]
	if !ok || doc.expired(time.Now()) || doc.cas != cas {
		return 0, docstore.ErrVersionMismatch
	}
	return b.put(id, body, expiry), nil
}

// Upsert implements docstore.Bucket
func (b *Bucket) Upsert(_ context.Context, id string, body []byte, expiry time.Duration) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, ErrBucketClosed
	}
	return b.put(id, body, expiry), nil
}

// Remove implements docstore.Bucket
func (b *Bucket) Remove(_ context.Context, id string, cas uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBucketClosed
	}

	doc, ok := b.docs[id]
	if !ok || doc.expired(time.Now()) || doc.cas != cas {
		return docstore.ErrVersionMismatch
	}
	delete(b.docs, id)
	return nil
}

// SelectIDs implements docstore.Bucket
func (b *Bucket) SelectIDs(_ context.Context, filter docstore.Filter) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBucketClosed
	}

	var ids []string
	now := time.Now()
	for id, doc := range b.docs {
		if doc.expired(now) {
			continue
		}
		if b.matches(doc, filter) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// DeleteWhere implements docstore.Bucket
func (b *Bucket) DeleteWhere(_ context.Context, filter docstore.Filter) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBucketClosed
	}

	now := time.Now()
	for id, doc := range b.docs {
		if doc.expired(now) {
			delete(b.docs, id)
			continue
		}
		if b.matches(doc, filter) {
			delete(b.docs, id)
		}
	}
	return nil
}

// Close implements docstore.Bucket
func (b *Bucket) Close(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Size returns the number of live documents. Test helper.
func (b *Bucket) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	count := 0
	now := time.Now()
	for _, doc := range b.docs {
		if !doc.expired(now) {
			count++
		}
	}
	return count
}

func (b *Bucket) put(id string, body []byte, expiry time.Duration) uint64 {
	b.lastCas++
	stored := make([]byte, len(body))
	copy(stored, body)
	doc := &document{body: stored, cas: b.lastCas}
	if expiry > 0 {
		doc.expiresAt = time.Now().Add(expiry)
	}
	b.docs[id] = doc
	return doc.cas
}

func (b *Bucket) matches(doc *document, filter docstore.Filter) bool {
	var fields tags
	if err := json.Unmarshal(doc.body, &fields); err != nil {
		// opaque state payloads are not scan-visible
		return false
	}
	return filter.Matches(fields.DocType, fields.DocSubType, fields.OwnerHash, fields.Status, fields.AliveTime)
}
