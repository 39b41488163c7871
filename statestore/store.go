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

// Package statestore adapts actor state load, save and clear calls onto the
// versioned document store. One document per (state type, actor id) pair, the
// state type doubling as the collection tag so per-type expiry applies.
package statestore

import (
	"context"
	"fmt"

	"github.com/tochemey/goakt-couchbase/docstore"
	"github.com/tochemey/goakt-couchbase/log"
)

// StateStore persists actor state snapshots with optimistic concurrency.
// A conflict from a concurrent writer propagates to the caller unchanged;
// the store never retries or merges on its own.
type StateStore struct {
	store      *docstore.Store
	serializer Serializer
	logger     log.Logger
}

// Option configures a StateStore at construction time.
type Option func(*StateStore)

// WithSerializer overrides the default JSON serializer.
func WithSerializer(serializer Serializer) Option {
	return func(s *StateStore) { s.serializer = serializer }
}

// WithLogger sets the state store logger.
func WithLogger(logger log.Logger) Option {
	return func(s *StateStore) { s.logger = logger }
}

// New creates a StateStore on top of the given document store.
func New(store *docstore.Store, opts ...Option) *StateStore {
	stateStore := &StateStore{
		store:      store,
		serializer: NewJSONSerializer(),
		logger:     log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(stateStore)
	}
	return stateStore
}

// Load populates state from the document stored under (stateType, actorID)
// and records its version token on the container. When no document exists the
// container is left untouched, so a fresh actor keeps its initial state. A
// payload that exists but cannot be deserialized is an error, never silently
// treated as absent.
func (s *StateStore) Load(ctx context.Context, stateType, actorID string, state *State) error {
	body, version, err := s.store.Read(ctx, stateType, actorID)
	if err != nil {
		return err
	}
	if body == nil {
		return nil
	}

	if err := s.serializer.Deserialize(body, state.Payload); err != nil {
		return fmt.Errorf("statestore: deserializing state type=(%s) actor=(%s): %w", stateType, actorID, err)
	}
	state.Version = version
	return nil
}

// Save persists the container's payload using its current version token and
// stores the new token back onto the container. A *docstore.ConflictError
// means another writer won; the caller decides whether to re-read and retry.
func (s *StateStore) Save(ctx context.Context, stateType, actorID string, state *State) error {
	body, err := s.serializer.Serialize(state.Payload)
	if err != nil {
		return fmt.Errorf("statestore: serializing state type=(%s) actor=(%s): %w", stateType, actorID, err)
	}

	version, err := s.store.Write(ctx, stateType, actorID, body, state.Version)
	if err != nil {
		return err
	}
	state.Version = version
	return nil
}

// Remove deletes the stored document using the container's current version
// token. A container that never held a record has no meaningful token, so the
// call fails fast with docstore.ErrNoVersion instead of silently succeeding
// against an arbitrary revision.
func (s *StateStore) Remove(ctx context.Context, stateType, actorID string, state *State) error {
	if state.Version == "" {
		return docstore.ErrNoVersion
	}
	if err := s.store.Delete(ctx, stateType, actorID, state.Version); err != nil {
		return err
	}
	state.Version = ""
	return nil
}
