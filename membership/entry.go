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

package membership

import (
	"time"

	"github.com/tochemey/goakt-couchbase/docstore"
)

// Suspicion records one node suspecting another of being dead.
type Suspicion struct {
	// Address of the suspecting node.
	Address string
	// Timestamp of when the suspicion was raised.
	Timestamp time.Time
}

// Entry is one cluster node's membership record. The table keeps a single
// document per node address; Address is the node's internal host:port
// endpoint and doubles as the record key.
type Entry struct {
	Address   string
	Host      string
	Status    Status
	ProxyPort int
	StartTime time.Time
	// AliveTime is the node's last heartbeat. It is advisory and updated
	// without a version check.
	AliveTime  time.Time
	Suspicions []Suspicion
}

// Row pairs an entry with the version token of its backing document.
type Row struct {
	Entry   *Entry
	Version string
}

// TableData is a full-table read. Version is always the sentinel
// TableVersion: every membership mutation is a single-document operation and
// no table-wide counter exists.
type TableData struct {
	Rows    []*Row
	Version int32
}

// registration is the persisted document shape of an Entry.
type registration struct {
	DocType    string         `json:"docType"`
	DocSubType string         `json:"docSubType"`
	ID         string         `json:"id"`
	Address    string         `json:"address"`
	Host       string         `json:"host"`
	Status     int32          `json:"status"`
	ProxyPort  int            `json:"proxyPort"`
	StartTime  time.Time      `json:"startTime"`
	AliveTime  time.Time      `json:"aliveTime"`
	Suspicions []suspicionDoc `json:"suspicions"`
}

type suspicionDoc struct {
	Address   string    `json:"address"`
	Timestamp time.Time `json:"timestamp"`
}

func toRegistration(entry *Entry, id string) *registration {
	suspicions := make([]suspicionDoc, 0, len(entry.Suspicions))
	for _, suspicion := range entry.Suspicions {
		suspicions = append(suspicions, suspicionDoc{Address: suspicion.Address, Timestamp: suspicion.Timestamp})
	}
	return &registration{
		DocType:    docstore.DocType,
		DocSubType: docstore.SubTypeMembership,
		ID:         id,
		Address:    entry.Address,
		Host:       entry.Host,
		Status:     int32(entry.Status),
		ProxyPort:  entry.ProxyPort,
		StartTime:  entry.StartTime,
		AliveTime:  entry.AliveTime,
		Suspicions: suspicions,
	}
}

func (r *registration) toEntry() *Entry {
	suspicions := make([]Suspicion, 0, len(r.Suspicions))
	for _, suspicion := range r.Suspicions {
		suspicions = append(suspicions, Suspicion{Address: suspicion.Address, Timestamp: suspicion.Timestamp})
	}
	return &Entry{
		Address:    r.Address,
		Host:       r.Host,
		Status:     Status(r.Status),
		ProxyPort:  r.ProxyPort,
		StartTime:  r.StartTime,
		AliveTime:  r.AliveTime,
		Suspicions: suspicions,
	}
}
