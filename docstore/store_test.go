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

package docstore_test

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/goakt-couchbase/docstore"
	"github.com/tochemey/goakt-couchbase/testkit"
)

func TestStore(t *testing.T) {
	t.Run("testRoundTrip", func(t *testing.T) {
		ctx := context.TODO()
		store := docstore.NewWithBucket(testkit.NewBucket())

		key := uuid.NewString()
		body := []byte(`{"balance":42}`)

		token, err := store.Write(ctx, "accounts", key, body, "")
		require.NoError(t, err)
		require.NotEmpty(t, token)
		_, err = strconv.ParseUint(token, 10, 64)
		assert.NoError(t, err)

		got, gotToken, err := store.Read(ctx, "accounts", key)
		require.NoError(t, err)
		assert.JSONEq(t, string(body), string(got))
		assert.Equal(t, token, gotToken)
	})
	t.Run("testReadMissing", func(t *testing.T) {
		ctx := context.TODO()
		store := docstore.NewWithBucket(testkit.NewBucket())

		body, token, err := store.Read(ctx, "accounts", uuid.NewString())
		require.NoError(t, err)
		assert.Nil(t, body)
		assert.Empty(t, token)
	})
	t.Run("testStaleWriteConflicts", func(t *testing.T) {
		ctx := context.TODO()
		store := docstore.NewWithBucket(testkit.NewBucket())
		key := uuid.NewString()

		stale, err := store.Write(ctx, "accounts", key, []byte(`{"n":1}`), "")
		require.NoError(t, err)

		// first writer advances the document
		fresh, err := store.Write(ctx, "accounts", key, []byte(`{"n":2}`), stale)
		require.NoError(t, err)

		// second writer still holds the stale token
		_, err = store.Write(ctx, "accounts", key, []byte(`{"n":3}`), stale)
		require.Error(t, err)
		var conflict *docstore.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, stale, conflict.StaleToken)
		assert.Equal(t, fresh, conflict.CurrentToken)
		assert.ErrorIs(t, err, docstore.ErrVersionMismatch)
	})
	t.Run("testConcurrentStaleWritesOneWinner", func(t *testing.T) {
		ctx := context.TODO()
		store := docstore.NewWithBucket(testkit.NewBucket())
		key := uuid.NewString()

		token, err := store.Write(ctx, "accounts", key, []byte(`{"n":0}`), "")
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = store.Write(ctx, "accounts", key, []byte(`{"n":1}`), token)
			}()
		}
		wg.Wait()

		successes := 0
		conflicts := 0
		for _, err := range errs {
			var conflict *docstore.ConflictError
			switch {
			case err == nil:
				successes++
			case assert.ErrorAs(t, err, &conflict):
				conflicts++
			}
		}
		assert.Equal(t, 1, successes)
		assert.Equal(t, 1, conflicts)
	})
	t.Run("testConcurrentCreatesOneWinner", func(t *testing.T) {
		ctx := context.TODO()
		store := docstore.NewWithBucket(testkit.NewBucket())
		key := uuid.NewString()

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = store.Write(ctx, "accounts", key, []byte(`{"n":1}`), "")
			}()
		}
		wg.Wait()

		successes := 0
		conflicts := 0
		for _, err := range errs {
			var conflict *docstore.ConflictError
			switch {
			case err == nil:
				successes++
			case assert.ErrorAs(t, err, &conflict):
				conflicts++
			}
		}
		assert.Equal(t, 1, successes)
		assert.Equal(t, 1, conflicts)
	})
	t.Run("testDeleteRequiresMatchingToken", func(t *testing.T) {
		ctx := context.TODO()
		store := docstore.NewWithBucket(testkit.NewBucket())
		key := uuid.NewString()

		stale, err := store.Write(ctx, "accounts", key, []byte(`{"n":1}`), "")
		require.NoError(t, err)
		fresh, err := store.Write(ctx, "accounts", key, []byte(`{"n":2}`), stale)
		require.NoError(t, err)

		var conflict *docstore.ConflictError
		err = store.Delete(ctx, "accounts", key, stale)
		require.ErrorAs(t, err, &conflict)

		require.NoError(t, store.Delete(ctx, "accounts", key, fresh))
		body, token, err := store.Read(ctx, "accounts", key)
		require.NoError(t, err)
		assert.Nil(t, body)
		assert.Empty(t, token)
	})
	t.Run("testDeleteWithoutTokenFailsFast", func(t *testing.T) {
		ctx := context.TODO()
		store := docstore.NewWithBucket(testkit.NewBucket())

		err := store.Delete(ctx, "accounts", uuid.NewString(), "")
		assert.ErrorIs(t, err, docstore.ErrNoVersion)
	})
	t.Run("testExpiryApplied", func(t *testing.T) {
		ctx := context.TODO()
		bucket := testkit.NewBucket()
		store := docstore.NewWithBucket(bucket, docstore.WithExpiries(map[string]time.Duration{
			"ephemeral": time.Nanosecond,
		}))

		key := uuid.NewString()
		_, err := store.Write(ctx, "ephemeral", key, []byte(`{}`), "")
		require.NoError(t, err)

		time.Sleep(time.Millisecond)
		body, _, err := store.Read(ctx, "ephemeral", key)
		require.NoError(t, err)
		assert.Nil(t, body)
	})
	t.Run("testReadMany", func(t *testing.T) {
		ctx := context.TODO()
		store := docstore.NewWithBucket(testkit.NewBucket())

		var ids []string
		for i := 0; i < 5; i++ {
			key := uuid.NewString()
			_, err := store.Write(ctx, "accounts", key, []byte(`{"n":`+strconv.Itoa(i)+`}`), "")
			require.NoError(t, err)
			id, err := docstore.DocumentID("accounts", key)
			require.NoError(t, err)
			ids = append(ids, id)
		}
		// a vanished id is skipped, not an error
		ids = append(ids, "accounts_"+uuid.NewString())

		documents, err := store.ReadMany(ctx, ids)
		require.NoError(t, err)
		assert.Len(t, documents, 5)
		for _, document := range documents {
			assert.NotEmpty(t, document.Version)
			assert.NotEmpty(t, document.Body)
		}
	})
	t.Run("testCloseIsIdempotent", func(t *testing.T) {
		ctx := context.TODO()
		store := docstore.NewWithBucket(testkit.NewBucket())

		require.NoError(t, store.Close(ctx))
		require.NoError(t, store.Close(ctx))
	})
	t.Run("testFailsFastAfterClose", func(t *testing.T) {
		ctx := context.TODO()
		store := docstore.NewWithBucket(testkit.NewBucket())
		require.NoError(t, store.Close(ctx))

		_, _, err := store.Read(ctx, "accounts", "k")
		assert.ErrorIs(t, err, docstore.ErrStoreClosed)
		_, err = store.Write(ctx, "accounts", "k", []byte(`{}`), "")
		assert.ErrorIs(t, err, docstore.ErrStoreClosed)
		err = store.Delete(ctx, "accounts", "k", "1")
		assert.ErrorIs(t, err, docstore.ErrStoreClosed)
	})
}
