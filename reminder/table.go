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

// Package reminder persists per-actor scheduled reminder records, with hash
// band scans over the reminder ring and a short-lived read-through cache for
// full listings.
package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/atomic"

	"github.com/tochemey/goakt-couchbase/docstore"
	"github.com/tochemey/goakt-couchbase/log"
)

// Collection is the collection tag under which reminder rows are stored.
// Reminder names are unique within it.
const Collection = "reminders"

// listCacheWindow is how long a full listing stays served from cache. The
// cache is best effort: callers needing strong freshness must not use
// ListAll.
const listCacheWindow = 500 * time.Millisecond

// listSnapshot is an immutable full listing. The cache slot holds at most one
// and is swapped atomically, so readers never observe a half-built list.
type listSnapshot struct {
	takenAt time.Time
	entries []*Entry
}

// Table is the reminder repository. Safe for concurrent use; the only state
// it keeps between calls is the listing cache.
type Table struct {
	store  *docstore.Store
	logger log.Logger
	cache  atomic.Pointer[listSnapshot]
}

// Option configures a Table at construction time.
type Option func(*Table)

// WithLogger sets the table logger.
func WithLogger(logger log.Logger) Option {
	return func(t *Table) { t.logger = logger }
}

// NewTable creates a reminder table on top of the given document store.
func NewTable(store *docstore.Store, opts ...Option) *Table {
	table := &Table{
		store:  store,
		logger: log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(table)
	}
	return table
}

// Upsert persists the entry using whatever version token it currently
// carries; an empty token creates the row. On success the entry's token is
// advanced and the hash field is recomputed from the owner reference.
func (t *Table) Upsert(ctx context.Context, entry *Entry) (string, error) {
	doc := toDocument(entry)
	id, err := docstore.DocumentID(Collection, entry.Name)
	if err != nil {
		return "", err
	}
	doc.ID = id

	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("reminder: encoding reminder=(%s): %w", entry.Name, err)
	}

	version, err := t.store.Write(ctx, Collection, entry.Name, body, entry.Version)
	if err != nil {
		return "", err
	}
	entry.Version = version
	return version, nil
}

// ReadOne fetches a single reminder with its version token. It returns nil
// when no such reminder exists.
func (t *Table) ReadOne(ctx context.Context, owner, name string) (*Entry, error) {
	body, version, err := t.store.Read(ctx, Collection, name)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}
	return decodeEntry(body, version)
}

// Delete removes a reminder conditioned on the given version token. With
// force set, a conflict falls back to re-reading the row for a fresh token
// and deleting that revision instead. The fallback deliberately weakens
// consistency and exists for administrative cleanup only.
func (t *Table) Delete(ctx context.Context, owner, name, version string, force bool) error {
	err := t.store.Delete(ctx, Collection, name, version)
	if err == nil {
		return nil
	}

	var conflict *docstore.ConflictError
	if !errors.As(err, &conflict) || !force {
		return err
	}

	t.logger.Warnf("force deleting reminder=(%s) owner=(%s) past a version conflict", name, owner)
	_, current, err := t.store.Read(ctx, Collection, name)
	if err != nil {
		return err
	}
	if current == "" {
		// already gone
		return nil
	}
	return t.store.Delete(ctx, Collection, name, current)
}

// ListAll returns every reminder row. Because the listing fans out into one
// fetch per id, results are cached for a short window; callers within that
// window may observe a list that predates their own writes.
func (t *Table) ListAll(ctx context.Context) ([]*Entry, error) {
	if snapshot := t.cache.Load(); snapshot != nil && time.Since(snapshot.takenAt) <= listCacheWindow {
		return snapshot.entries, nil
	}

	entries, err := t.scan(ctx, nil)
	if err != nil {
		return nil, err
	}

	// concurrent refreshes race on the slot; last writer wins, which is fine
	// for a best effort cache
	t.cache.Store(&listSnapshot{takenAt: time.Now(), entries: entries})
	return entries, nil
}

// ListInRange returns the reminders whose owner hash falls strictly inside
// (begin, end).
func (t *Table) ListInRange(ctx context.Context, begin, end uint64) ([]*Entry, error) {
	return t.scan(ctx, &docstore.HashBand{Begin: begin, End: end})
}

// ListOutsideRange returns the reminders whose owner hash falls strictly
// outside [begin, end]. This is the wraparound form: a node's responsibility
// band may wrap past the end of the ring.
func (t *Table) ListOutsideRange(ctx context.Context, begin, end uint64) ([]*Entry, error) {
	return t.scan(ctx, &docstore.HashBand{Begin: begin, End: end, Outside: true})
}

// DeleteAll removes every reminder row in one bulk operation.
func (t *Table) DeleteAll(ctx context.Context) error {
	return t.store.DeleteWhere(ctx, docstore.Filter{
		DocType:    docstore.DocType,
		DocSubType: docstore.SubTypeReminder,
	})
}

// scan lists matching ids then fetches the documents individually. Rows
// vanishing between the two steps are skipped by the store.
func (t *Table) scan(ctx context.Context, band *docstore.HashBand) ([]*Entry, error) {
	ids, err := t.store.SelectIDs(ctx, docstore.Filter{
		DocType:    docstore.DocType,
		DocSubType: docstore.SubTypeReminder,
		Band:       band,
	})
	if err != nil {
		return nil, err
	}

	documents, err := t.store.ReadMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, len(documents))
	for _, doc := range documents {
		entry, err := decodeEntry(doc.Body, doc.Version)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func decodeEntry(body []byte, version string) (*Entry, error) {
	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("reminder: decoding reminder row: %w", err)
	}
	return doc.toEntry(version), nil
}
