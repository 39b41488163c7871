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
	"fmt"

	"github.com/tochemey/goakt-couchbase/internal/validation"
)

// DocType tags every scan-visible document persisted by this module. Table
// scans within a shared bucket filter on both DocType and the record kind's
// sub type.
const DocType = "goakt"

// Record kind sub types. Together with DocType they scope table-wide scans.
const (
	SubTypeMembership = "membership"
	SubTypeReminder   = "reminder"
)

// Tag field names of the persisted document shape. The query builder and the
// record kinds' JSON schemas must agree on these.
const (
	FieldDocType    = "docType"
	FieldDocSubType = "docSubType"
	FieldID         = "id"
	FieldStatus     = "status"
	FieldAliveTime  = "aliveTime"
	FieldOwnerHash  = "actorHash"
)

// maxDocumentIDLength is the upper bound the document store puts on keys.
const maxDocumentIDLength = 250

// Document is a single versioned record returned by batched reads.
type Document struct {
	// ID is the full document id, collection tag included.
	ID string
	// Body is the raw JSON payload. The store never interprets its contents.
	Body []byte
	// Version is the document's version token at read time.
	Version string
}

// DocumentID derives the document id for a (collection, key) pair. The
// derivation is deterministic and collision free for distinct pairs.
func DocumentID(collection, key string) (string, error) {
	if err := validation.New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("collection", collection)).
		AddValidator(validation.NewEmptyStringValidator("key", key)).
		Validate(); err != nil {
		return "", err
	}

	id := collection + "_" + key
	if len(id) > maxDocumentIDLength {
		return "", fmt.Errorf("%w: %s", ErrDocumentIDTooLong, id)
	}
	return id, nil
}
