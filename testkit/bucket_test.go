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

package testkit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/goakt-couchbase/docstore"
)

func TestBucket(t *testing.T) {
	t.Run("testInsertGet", func(t *testing.T) {
		ctx := context.TODO()
		bucket := NewBucket()

		cas, err := bucket.Insert(ctx, "doc-1", []byte(`{"value":1}`), 0)
		require.NoError(t, err)
		require.NotZero(t, cas)

		body, got, err := bucket.Get(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, cas, got)
		assert.JSONEq(t, `{"value":1}`, string(body))
	})
	t.Run("testInsertExisting", func(t *testing.T) {
		ctx := context.TODO()
		bucket := NewBucket()

		_, err := bucket.Insert(ctx, "doc-1", []byte(`{}`), 0)
		require.NoError(t, err)
		_, err = bucket.Insert(ctx, "doc-1", []byte(`{}`), 0)
		assert.ErrorIs(t, err, docstore.ErrKeyExists)
	})
	t.Run("testGetMissing", func(t *testing.T) {
		ctx := context.TODO()
		bucket := NewBucket()

		_, _, err := bucket.Get(ctx, "doc-1")
		assert.ErrorIs(t, err, docstore.ErrKeyNotFound)
	})
	t.Run("testReplaceAdvancesCas", func(t *testing.T) {
		ctx := context.TODO()
		bucket := NewBucket()

		first, err := bucket.Insert(ctx, "doc-1", []byte(`{"value":1}`), 0)
		require.NoError(t, err)

		second, err := bucket.Replace(ctx, "doc-1", []byte(`{"value":2}`), first, 0)
		require.NoError(t, err)
		assert.Greater(t, second, first)

		// the old cas no longer matches
		_, err = bucket.Replace(ctx, "doc-1", []byte(`{"value":3}`), first, 0)
		assert.ErrorIs(t, err, docstore.ErrVersionMismatch)
	})
	t.Run("testReplaceMissing", func(t *testing.T) {
		ctx := context.TODO()
		bucket := NewBucket()

		_, err := bucket.Replace(ctx, "doc-1", []byte(`{}`), 1, 0)
		assert.ErrorIs(t, err, docstore.ErrVersionMismatch)
	})
	t.Run("testUpsertIgnoresCas", func(t *testing.T) {
		ctx := context.TODO()
		bucket := NewBucket()

		_, err := bucket.Upsert(ctx, "doc-1", []byte(`{"value":1}`), 0)
		require.NoError(t, err)
		cas, err := bucket.Upsert(ctx, "doc-1", []byte(`{"value":2}`), 0)
		require.NoError(t, err)

		body, got, err := bucket.Get(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, cas, got)
		assert.JSONEq(t, `{"value":2}`, string(body))
	})
	t.Run("testRemove", func(t *testing.T) {
		ctx := context.TODO()
		bucket := NewBucket()

		cas, err := bucket.Insert(ctx, "doc-1", []byte(`{}`), 0)
		require.NoError(t, err)

		require.ErrorIs(t, bucket.Remove(ctx, "doc-1", cas+1), docstore.ErrVersionMismatch)
		require.NoError(t, bucket.Remove(ctx, "doc-1", cas))
		_, _, err = bucket.Get(ctx, "doc-1")
		assert.ErrorIs(t, err, docstore.ErrKeyNotFound)
	})
	t.Run("testExpiry", func(t *testing.T) {
		ctx := context.TODO()
		bucket := NewBucket()

		_, err := bucket.Insert(ctx, "doc-1", []byte(`{}`), time.Nanosecond)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)

		_, _, err = bucket.Get(ctx, "doc-1")
		assert.ErrorIs(t, err, docstore.ErrKeyNotFound)
		assert.Zero(t, bucket.Size())

		// an expired row does not block a fresh insert
		_, err = bucket.Insert(ctx, "doc-1", []byte(`{}`), 0)
		assert.NoError(t, err)
	})
	t.Run("testSelectIDsFiltersOnTags", func(t *testing.T) {
		ctx := context.TODO()
		bucket := NewBucket()

		_, err := bucket.Insert(ctx, "doc-1", []byte(`{"docType":"goakt","docSubType":"reminder","actorHash":50}`), 0)
		require.NoError(t, err)
		_, err = bucket.Insert(ctx, "doc-2", []byte(`{"docType":"goakt","docSubType":"reminder","actorHash":90}`), 0)
		require.NoError(t, err)
		_, err = bucket.Insert(ctx, "doc-3", []byte(`{"docType":"other","docSubType":"reminder","actorHash":50}`), 0)
		require.NoError(t, err)
		// opaque payloads without tag fields never match
		_, err = bucket.Insert(ctx, "doc-4", []byte(`"opaque"`), 0)
		require.NoError(t, err)

		ids, err := bucket.SelectIDs(ctx, docstore.Filter{
			DocType:    "goakt",
			DocSubType: "reminder",
			Band:       &docstore.HashBand{Begin: 20, End: 80},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"doc-1"}, ids)
	})
	t.Run("testDeleteWhere", func(t *testing.T) {
		ctx := context.TODO()
		bucket := NewBucket()

		_, err := bucket.Insert(ctx, "doc-1", []byte(`{"docType":"goakt","docSubType":"reminder"}`), 0)
		require.NoError(t, err)
		_, err = bucket.Insert(ctx, "doc-2", []byte(`{"docType":"goakt","docSubType":"membership"}`), 0)
		require.NoError(t, err)

		require.NoError(t, bucket.DeleteWhere(ctx, docstore.Filter{DocType: "goakt", DocSubType: "reminder"}))
		assert.Equal(t, 1, bucket.Size())
		_, _, err = bucket.Get(ctx, "doc-2")
		assert.NoError(t, err)
	})
	t.Run("testClosedBucket", func(t *testing.T) {
		ctx := context.TODO()
		bucket := NewBucket()
		require.NoError(t, bucket.Close(ctx))

		_, _, err := bucket.Get(ctx, "doc-1")
		assert.ErrorIs(t, err, ErrBucketClosed)
		_, err = bucket.Insert(ctx, "doc-1", []byte(`{}`), 0)
		assert.ErrorIs(t, err, ErrBucketClosed)
	})
}
