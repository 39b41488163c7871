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

package reminder

import (
	"time"

	"github.com/tochemey/goakt-couchbase/docstore"
)

// Entry is one scheduled reminder owned by an actor. The runtime fires it
// every Period starting at StartAt; this module only persists the record.
type Entry struct {
	// Owner is the owning actor's opaque reference.
	Owner string
	// Name identifies the reminder within the table.
	Name string
	// Period is the firing interval.
	Period time.Duration
	// StartAt is the first firing time.
	StartAt time.Time
	// Version is the version token of the backing document, empty for an
	// entry that has never been persisted. Managed by the table.
	Version string
}

// document is the persisted shape of an Entry.
type document struct {
	DocType    string    `json:"docType"`
	DocSubType string    `json:"docSubType"`
	ID         string    `json:"id"`
	Owner      string    `json:"actorRef"`
	OwnerHash  uint64    `json:"actorHash"`
	Name       string    `json:"reminderName"`
	Period     int64     `json:"period"`
	StartAt    time.Time `json:"startAt"`
}

func toDocument(entry *Entry) *document {
	return &document{
		DocType:    docstore.DocType,
		DocSubType: docstore.SubTypeReminder,
		Owner:      entry.Owner,
		OwnerHash:  Hash(entry.Owner),
		Name:       entry.Name,
		Period:     int64(entry.Period),
		StartAt:    entry.StartAt,
	}
}

func (d *document) toEntry(version string) *Entry {
	return &Entry{
		Owner:   d.Owner,
		Name:    d.Name,
		Period:  time.Duration(d.Period),
		StartAt: d.StartAt,
		Version: version,
	}
}
