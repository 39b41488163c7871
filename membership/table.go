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

// Package membership maintains cluster membership as one document per node,
// using the document store's version tokens to arbitrate concurrent updates.
// Races are resolved by last successful conditional write; losers must
// re-read and retry, which is the caller's responsibility.
package membership

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/tochemey/goakt-couchbase/docstore"
	"github.com/tochemey/goakt-couchbase/log"
)

// Collection is the collection tag under which membership rows are stored.
const Collection = docstore.SubTypeMembership

// TableVersion is the sentinel version of the membership table as a whole.
// It never increments: the store offers no table-wide transaction, so there
// is nothing to tie a real counter to.
const TableVersion int32 = 0

// defaultStaleThreshold is how long a dead node's row may outlive its last
// heartbeat before Cleanup garbage-collects it.
const defaultStaleThreshold = 20 * time.Minute

// Table is the membership repository. Insert and Update report conflicts as
// plain false, matching the runtime's boolean membership protocol; every
// other operation uses the store's error taxonomy. Safe for concurrent use.
type Table struct {
	store  *docstore.Store
	logger log.Logger
}

// Option configures a Table at construction time.
type Option func(*Table)

// WithLogger sets the table logger.
func WithLogger(logger log.Logger) Option {
	return func(t *Table) { t.logger = logger }
}

// NewTable creates a membership table on top of the given document store.
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

// Insert creates the row for a new node. It returns false when a row for the
// node address already exists; a duplicate registration is an expected
// outcome of the membership protocol, not an error. Transport failures are
// returned as errors.
func (t *Table) Insert(ctx context.Context, entry *Entry) (bool, error) {
	body, err := encodeEntry(entry)
	if err != nil {
		return false, err
	}

	if _, err := t.store.Write(ctx, Collection, entry.Address, body, ""); err != nil {
		var conflict *docstore.ConflictError
		if errors.As(err, &conflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Update overwrites a node's row conditioned on the given version token. It
// returns false when the token went stale, leaving the stored row unchanged;
// the caller must re-read before deciding to retry.
func (t *Table) Update(ctx context.Context, entry *Entry, version string) (bool, error) {
	body, err := encodeEntry(entry)
	if err != nil {
		return false, err
	}

	if _, err := t.store.Write(ctx, Collection, entry.Address, body, version); err != nil {
		var conflict *docstore.ConflictError
		if errors.As(err, &conflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReadRow fetches one node's row with its version token. It returns nil when
// no row exists for the address.
func (t *Table) ReadRow(ctx context.Context, address string) (*Row, error) {
	body, version, err := t.store.Read(ctx, Collection, address)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}
	return decodeRow(body, version)
}

// ReadAll fetches every membership row. The listing and the per-row fetches
// are not linearizable with concurrent updates; the result is recent, not a
// snapshot. The returned table version is always the sentinel TableVersion.
func (t *Table) ReadAll(ctx context.Context) (*TableData, error) {
	ids, err := t.store.SelectIDs(ctx, docstore.Filter{
		DocType:    docstore.DocType,
		DocSubType: docstore.SubTypeMembership,
	})
	if err != nil {
		return nil, err
	}

	documents, err := t.store.ReadMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	rows := make([]*Row, 0, len(documents))
	for _, document := range documents {
		row, err := decodeRow(document.Body, document.Version)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return &TableData{Rows: rows, Version: TableVersion}, nil
}

// UpdateAliveTime refreshes only the heartbeat timestamp of a node's row,
// without a version check. Heartbeats are advisory and frequent, so last
// write wins here; this is the documented exception to the optimistic
// concurrency rule everywhere else in this module.
func (t *Table) UpdateAliveTime(ctx context.Context, entry *Entry) error {
	body, _, err := t.store.Read(ctx, Collection, entry.Address)
	if err != nil {
		return err
	}
	if body == nil {
		return fmt.Errorf("membership: no row for node=(%s)", entry.Address)
	}

	var stored registration
	if err := json.Unmarshal(body, &stored); err != nil {
		return fmt.Errorf("membership: decoding row for node=(%s): %w", entry.Address, err)
	}
	stored.AliveTime = entry.AliveTime

	updated, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("membership: encoding row for node=(%s): %w", entry.Address, err)
	}
	_, err = t.store.Upsert(ctx, Collection, entry.Address, updated)
	return err
}

// DeleteAll removes every membership row. Used when tearing down a
// deployment.
func (t *Table) DeleteAll(ctx context.Context) error {
	return t.store.DeleteWhere(ctx, docstore.Filter{
		DocType:    docstore.DocType,
		DocSubType: docstore.SubTypeMembership,
	})
}

// Cleanup garbage-collects rows of dead nodes whose last heartbeat is older
// than the given threshold; a non-positive threshold falls back to the
// default of twenty minutes. The deletion runs as one bulk operation: some
// matching rows may survive a partial failure, which the next pass picks up.
func (t *Table) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if olderThan <= 0 {
		olderThan = defaultStaleThreshold
	}
	deadStatus := int32(Dead)
	cutoff := time.Now().Add(-olderThan)

	t.logger.Infof("cleaning up dead nodes not seen since=(%s)", cutoff.Format(time.RFC3339))
	return t.store.DeleteWhere(ctx, docstore.Filter{
		DocType:     docstore.DocType,
		DocSubType:  docstore.SubTypeMembership,
		Status:      &deadStatus,
		AliveBefore: &cutoff,
	})
}

// Gateways derives the externally reachable gateway addresses from the
// current table: active nodes advertising a proxy port, with that port
// substituted into their internal address. Nodes without a proxy port do not
// accept client traffic and are skipped.
func (t *Table) Gateways(ctx context.Context) ([]string, error) {
	tableData, err := t.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	var gateways []string
	for _, row := range tableData.Rows {
		entry := row.Entry
		if entry.Status != Active || entry.ProxyPort == 0 {
			continue
		}
		gateway, err := gatewayURI(entry)
		if err != nil {
			return nil, err
		}
		gateways = append(gateways, gateway)
	}
	return gateways, nil
}

// gatewayURI substitutes the proxy port into the node's internal address.
func gatewayURI(entry *Entry) (string, error) {
	host, _, err := net.SplitHostPort(entry.Address)
	if err != nil {
		return "", fmt.Errorf("membership: invalid node address=(%s): %w", entry.Address, err)
	}
	return "tcp://" + net.JoinHostPort(host, strconv.Itoa(entry.ProxyPort)), nil
}

// encodeEntry marshals the persisted row shape, stamping the derived document
// id into the body the way the scans expect it.
func encodeEntry(entry *Entry) ([]byte, error) {
	id, err := docstore.DocumentID(Collection, entry.Address)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(toRegistration(entry, id))
	if err != nil {
		return nil, fmt.Errorf("membership: encoding row for node=(%s): %w", entry.Address, err)
	}
	return body, nil
}

func decodeRow(body []byte, version string) (*Row, error) {
	var stored registration
	if err := json.Unmarshal(body, &stored); err != nil {
		return nil, fmt.Errorf("membership: decoding row: %w", err)
	}
	return &Row{Entry: stored.toEntry(), Version: version}, nil
}
