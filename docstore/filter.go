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

import "time"

// HashBand restricts a scan to documents whose owner hash falls inside a band
// of the hash ring.
type HashBand struct {
	// Begin and End bound the band exclusively: Begin < hash < End.
	Begin uint64
	End   uint64
	// Outside inverts the band for wraparound ranges on the ring:
	// hash < Begin OR hash > End.
	Outside bool
}

// Filter is a structured predicate over a record's tag fields. It is the only
// query surface the store exposes; the vendor adapter translates it to the
// database's query language.
type Filter struct {
	// DocType and DocSubType scope the scan to one record kind. Both are
	// required: a shared bucket may hold foreign documents.
	DocType    string
	DocSubType string
	// Band, when set, restricts matches by the stored owner hash field.
	Band *HashBand
	// Status, when set, restricts matches by the stored status field.
	Status *int32
	// AliveBefore, when set, matches only documents whose alive timestamp is
	// older than the given instant.
	AliveBefore *time.Time
}

// Matches reports whether the given tag values satisfy the filter. The vendor
// adapter pushes the predicate down to the database instead; this in-process
// evaluation backs stores without a query engine.
func (f Filter) Matches(docType, docSubType string, hash uint64, status *int32, aliveTime time.Time) bool {
	if docType != f.DocType || docSubType != f.DocSubType {
		return false
	}
	if f.Band != nil {
		if f.Band.Outside {
			if hash >= f.Band.Begin && hash <= f.Band.End {
				return false
			}
		} else if hash <= f.Band.Begin || hash >= f.Band.End {
			return false
		}
	}
	if f.Status != nil {
		if status == nil || *status != *f.Status {
			return false
		}
	}
	if f.AliveBefore != nil && !aliveTime.Before(*f.AliveBefore) {
		return false
	}
	return true
}
