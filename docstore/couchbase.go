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
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/couchbase/gocb/v2"
	"github.com/flowchartsman/retry"
)

// connectMaxRetries is the number of attempts made to reach the bucket before
// giving up during startup.
const connectMaxRetries = 5

// couchbaseBucket implements Bucket on top of the Couchbase SDK. Point
// operations go through the KV service; scans are translated to N1QL.
type couchbaseBucket struct {
	cluster    *gocb.Cluster
	collection *gocb.Collection
	bucketName string
}

// enforce compilation error
var _ Bucket = (*couchbaseBucket)(nil)

// NewCouchbaseBucket connects to the Couchbase cluster described by the given
// config and returns a Bucket bound to its default collection. The config
// must have been validated beforehand.
func NewCouchbaseBucket(ctx context.Context, config *Config) (Bucket, error) {
	cluster, err := gocb.Connect(strings.Join(config.Servers, ","), gocb.ClusterOptions{
		Authenticator: gocb.PasswordAuthenticator{
			Username: config.Username,
			Password: config.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("docstore: connecting to couchbase: %w", err)
	}

	bucket := cluster.Bucket(config.BucketName)

	// the bucket may still be warming up right after cluster provisioning,
	// so the readiness wait is retried with backoff
	retrier := retry.NewRetrier(connectMaxRetries, 100*time.Millisecond, config.waitTimeout())
	if err := retrier.RunContext(ctx, func(context.Context) error {
		return bucket.WaitUntilReady(config.waitTimeout(), nil)
	}); err != nil {
		_ = cluster.Close(nil)
		return nil, fmt.Errorf("docstore: waiting for bucket %s: %w", config.BucketName, err)
	}

	return &couchbaseBucket{
		cluster:    cluster,
		collection: bucket.DefaultCollection(),
		bucketName: config.BucketName,
	}, nil
}

// Get implements Bucket
func (b *couchbaseBucket) Get(ctx context.Context, id string) ([]byte, uint64, error) {
	result, err := b.collection.Get(id, &gocb.GetOptions{Context: ctx})
	if err != nil {
		if errors.Is(err, gocb.ErrDocumentNotFound) {
			return nil, 0, ErrKeyNotFound
		}
		return nil, 0, fmt.Errorf("docstore: get %s: %w", id, err)
	}

	var body json.RawMessage
	if err := result.Content(&body); err != nil {
		return nil, 0, fmt.Errorf("docstore: get %s: %w", id, err)
	}
	return body, uint64(result.Cas()), nil
}

// Insert implements Bucket
func (b *couchbaseBucket) Insert(ctx context.Context, id string, body []byte, expiry time.Duration) (uint64, error) {
	result, err := b.collection.Insert(id, json.RawMessage(body), &gocb.InsertOptions{
		Expiry:  expiry,
		Context: ctx,
	})
	if err != nil {
		if errors.Is(err, gocb.ErrDocumentExists) {
			return 0, ErrKeyExists
		}
		return 0, fmt.Errorf("docstore: insert %s: %w", id, err)
	}
	return uint64(result.Cas()), nil
}

// Replace implements Bucket
func (b *couchbaseBucket) Replace(ctx context.Context, id string, body []byte, cas uint64, expiry time.Duration) (uint64, error) {
	result, err := b.collection.Replace(id, json.RawMessage(body), &gocb.ReplaceOptions{
		Cas:     gocb.Cas(cas),
		Expiry:  expiry,
		Context: ctx,
	})
	if err != nil {
		switch {
		case errors.Is(err, gocb.ErrCasMismatch),
			errors.Is(err, gocb.ErrDocumentExists),
			errors.Is(err, gocb.ErrDocumentNotFound):
			return 0, ErrVersionMismatch
		default:
			return 0, fmt.Errorf("docstore: replace %s: %w", id, err)
		}
	}
	return uint64(result.Cas()), nil
}

// Upsert implements Bucket
func (b *couchbaseBucket) Upsert(ctx context.Context, id string, body []byte, expiry time.Duration) (uint64, error) {
	result, err := b.collection.Upsert(id, json.RawMessage(body), &gocb.UpsertOptions{
		Expiry:  expiry,
		Context: ctx,
	})
	if err != nil {
		return 0, fmt.Errorf("docstore: upsert %s: %w", id, err)
	}
	return uint64(result.Cas()), nil
}

// Remove implements Bucket
func (b *couchbaseBucket) Remove(ctx context.Context, id string, cas uint64) error {
	_, err := b.collection.Remove(id, &gocb.RemoveOptions{
		Cas:     gocb.Cas(cas),
		Context: ctx,
	})
	if err != nil {
		switch {
		case errors.Is(err, gocb.ErrCasMismatch),
			errors.Is(err, gocb.ErrDocumentNotFound):
			return ErrVersionMismatch
		default:
			return fmt.Errorf("docstore: remove %s: %w", id, err)
		}
	}
	return nil
}

// SelectIDs implements Bucket
func (b *couchbaseBucket) SelectIDs(ctx context.Context, filter Filter) ([]string, error) {
	statement, params := b.buildQuery(fmt.Sprintf("SELECT META().id AS id FROM `%s`", b.bucketName), filter)
	result, err := b.cluster.Query(statement, b.queryOptions(ctx, params))
	if err != nil {
		return nil, fmt.Errorf("docstore: select ids: %w", err)
	}

	var ids []string
	for result.Next() {
		var row struct {
			ID string `json:"id"`
		}
		if err := result.Row(&row); err != nil {
			return nil, fmt.Errorf("docstore: select ids: %w", err)
		}
		ids = append(ids, row.ID)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("docstore: select ids: %w", err)
	}
	return ids, nil
}

// DeleteWhere implements Bucket
func (b *couchbaseBucket) DeleteWhere(ctx context.Context, filter Filter) error {
	statement, params := b.buildQuery(fmt.Sprintf("DELETE FROM `%s`", b.bucketName), filter)
	result, err := b.cluster.Query(statement, b.queryOptions(ctx, params))
	if err != nil {
		return fmt.Errorf("docstore: delete by filter: %w", err)
	}
	// a DELETE returns no rows; draining surfaces late failures
	for result.Next() {
	}
	if err := result.Err(); err != nil {
		return fmt.Errorf("docstore: delete by filter: %w", err)
	}
	return nil
}

// Close implements Bucket
func (b *couchbaseBucket) Close(context.Context) error {
	if err := b.cluster.Close(nil); err != nil {
		return fmt.Errorf("docstore: closing couchbase cluster: %w", err)
	}
	return nil
}

// buildQuery appends the filter's WHERE clause to the given prefix.
func (b *couchbaseBucket) buildQuery(prefix string, filter Filter) (string, map[string]any) {
	var clause strings.Builder
	clause.WriteString(prefix)
	clause.WriteString(fmt.Sprintf(" WHERE %s = $doctype AND %s = $subtype", FieldDocType, FieldDocSubType))

	params := map[string]any{
		"doctype": filter.DocType,
		"subtype": filter.DocSubType,
	}

	if filter.Band != nil {
		if filter.Band.Outside {
			clause.WriteString(fmt.Sprintf(" AND (%s < $begin OR %s > $end)", FieldOwnerHash, FieldOwnerHash))
		} else {
			clause.WriteString(fmt.Sprintf(" AND %s > $begin AND %s < $end", FieldOwnerHash, FieldOwnerHash))
		}
		params["begin"] = filter.Band.Begin
		params["end"] = filter.Band.End
	}

	if filter.Status != nil {
		clause.WriteString(fmt.Sprintf(" AND %s = $status", FieldStatus))
		params["status"] = *filter.Status
	}

	if filter.AliveBefore != nil {
		clause.WriteString(fmt.Sprintf(" AND STR_TO_MILLIS(%s) < $alivebefore", FieldAliveTime))
		params["alivebefore"] = filter.AliveBefore.UnixMilli()
	}

	return clause.String(), params
}

func (b *couchbaseBucket) queryOptions(ctx context.Context, params map[string]any) *gocb.QueryOptions {
	return &gocb.QueryOptions{
		NamedParameters: params,
		ScanConsistency: gocb.QueryScanConsistencyRequestPlus,
		Context:         ctx,
	}
}
