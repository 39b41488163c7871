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
	"errors"
	"strconv"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/goakt-couchbase/log"
)

// readManyConcurrency bounds the fan-out of batched reads.
const readManyConcurrency = 16

// Store provides single-document CRUD with optimistic concurrency on top of
// a Bucket, hiding the vendor API from the repositories. The version token is
// the decimal rendering of the document's CAS value; an empty token means no
// version is known.
//
// A Store holds no mutable state besides the closed flag and is safe for
// concurrent use. Closing it releases the underlying connection; operations
// after Close fail fast with ErrStoreClosed.
type Store struct {
	bucket   Bucket
	expiries map[string]time.Duration
	logger   log.Logger
	closed   atomic.Bool
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithExpiries sets the per-collection time-to-live table. Only useful with
// NewWithBucket; New derives the table from its config.
func WithExpiries(expiries map[string]time.Duration) Option {
	return func(s *Store) { s.expiries = expiries }
}

// New validates the given config, connects to Couchbase and returns a ready
// Store. Configuration failures are reported before any connection attempt.
func New(ctx context.Context, config *Config, opts ...Option) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	bucket, err := NewCouchbaseBucket(ctx, config)
	if err != nil {
		return nil, err
	}

	store := NewWithBucket(bucket, opts...)
	store.expiries = config.expiries()
	store.logger.Infof("connected to couchbase bucket=(%s)", config.BucketName)
	return store, nil
}

// NewWithBucket wraps an existing Bucket capability. This is the seam used by
// tests and by callers bringing their own connection.
func NewWithBucket(bucket Bucket, opts ...Option) *Store {
	store := &Store{
		bucket:   bucket,
		expiries: map[string]time.Duration{},
		logger:   log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Read fetches the document stored under (collection, key). When no document
// exists it returns (nil, "", nil); absence is not an error. Transport
// failures are propagated, never folded into absence.
func (s *Store) Read(ctx context.Context, collection, key string) ([]byte, string, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, "", err
	}

	id, err := DocumentID(collection, key)
	if err != nil {
		return nil, "", err
	}
	return s.readID(ctx, id)
}

// ReadMany fetches the given document ids with bounded concurrency. Ids whose
// document vanished between listing and fetching are logged and skipped; any
// transport failure aborts the batch.
func (s *Store) ReadMany(ctx context.Context, ids []string) ([]*Document, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	documents := make([]*Document, len(ids))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(readManyConcurrency)

	for i, id := range ids {
		group.Go(func() error {
			body, cas, err := s.bucket.Get(groupCtx, id)
			switch {
			case errors.Is(err, ErrKeyNotFound):
				s.logger.Warnf("document=(%s) disappeared between listing and fetching", id)
				return nil
			case err != nil:
				return err
			}
			documents[i] = &Document{ID: id, Body: body, Version: formatToken(cas)}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := make([]*Document, 0, len(documents))
	for _, document := range documents {
		if document != nil {
			out = append(out, document)
		}
	}
	return out, nil
}

// Write persists body under (collection, key). A parseable version token
// requests a conditional update; an empty (or unparseable) token requests a
// create. Both races fail with *ConflictError. On success the new version
// token is returned and must be kept for the next write.
func (s *Store) Write(ctx context.Context, collection, key string, body []byte, version string) (string, error) {
	if err := s.ensureOpen(); err != nil {
		return "", err
	}

	id, err := DocumentID(collection, key)
	if err != nil {
		return "", err
	}
	expiry := s.expiries[collection]

	if cas, ok := parseToken(version); ok {
		newCas, err := s.bucket.Replace(ctx, id, body, cas, expiry)
		if err != nil {
			if errors.Is(err, ErrVersionMismatch) {
				return "", s.conflict(ctx, id, version)
			}
			return "", err
		}
		return formatToken(newCas), nil
	}

	newCas, err := s.bucket.Insert(ctx, id, body, expiry)
	if err != nil {
		if errors.Is(err, ErrKeyExists) {
			return "", s.conflict(ctx, id, version)
		}
		return "", err
	}
	return formatToken(newCas), nil
}

// Upsert persists body under (collection, key) unconditionally, last write
// wins. This bypasses the optimistic concurrency rule and exists solely for
// advisory records such as heartbeats; everything else goes through Write.
func (s *Store) Upsert(ctx context.Context, collection, key string, body []byte) (string, error) {
	if err := s.ensureOpen(); err != nil {
		return "", err
	}

	id, err := DocumentID(collection, key)
	if err != nil {
		return "", err
	}

	cas, err := s.bucket.Upsert(ctx, id, body, s.expiries[collection])
	if err != nil {
		return "", err
	}
	return formatToken(cas), nil
}

// Delete removes the document stored under (collection, key). The version
// token must match the document's current version; deleting without a token
// from a prior read or write fails fast with ErrNoVersion.
func (s *Store) Delete(ctx context.Context, collection, key, version string) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	id, err := DocumentID(collection, key)
	if err != nil {
		return err
	}

	cas, ok := parseToken(version)
	if !ok {
		return ErrNoVersion
	}

	if err := s.bucket.Remove(ctx, id, cas); err != nil {
		if errors.Is(err, ErrVersionMismatch) {
			return s.conflict(ctx, id, version)
		}
		return err
	}
	return nil
}

// SelectIDs returns the ids of all documents matching the filter. The scan is
// not linearizable with concurrent point writes; callers must treat the
// result as recent, not as a snapshot.
func (s *Store) SelectIDs(ctx context.Context, filter Filter) ([]string, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	return s.bucket.SelectIDs(ctx, filter)
}

// DeleteWhere removes every document matching the filter as one bulk
// operation. Some matching documents may survive a partial failure; the
// outcome is reported once, not per row.
func (s *Store) DeleteWhere(ctx context.Context, filter Filter) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	return s.bucket.DeleteWhere(ctx, filter)
}

// Close releases the underlying connection. It is idempotent; only the first
// call reaches the bucket.
func (s *Store) Close(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.bucket.Close(ctx)
}

func (s *Store) ensureOpen() error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return nil
}

func (s *Store) readID(ctx context.Context, id string) ([]byte, string, error) {
	body, cas, err := s.bucket.Get(ctx, id)
	switch {
	case errors.Is(err, ErrKeyNotFound):
		return nil, "", nil
	case err != nil:
		return nil, "", err
	}
	return body, formatToken(cas), nil
}

// conflict builds the ConflictError for a failed conditional mutation,
// fetching the document's current token on a best effort basis.
func (s *Store) conflict(ctx context.Context, id, stale string) error {
	current := ""
	if _, cas, err := s.bucket.Get(ctx, id); err == nil {
		current = formatToken(cas)
	}
	return &ConflictError{StaleToken: stale, CurrentToken: current}
}

// parseToken reports whether the token carries a usable CAS value. A token
// that does not parse is treated the same as an absent one, matching the
// database's notion of "no version known".
func parseToken(token string) (uint64, bool) {
	if token == "" {
		return 0, false
	}
	cas, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return 0, false
	}
	return cas, true
}

func formatToken(cas uint64) string {
	return strconv.FormatUint(cas, 10)
}
