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
	"sort"
	"time"

	"github.com/tochemey/goakt-couchbase/internal/validation"
)

// defaultWaitTimeout bounds the initial bucket readiness wait.
const defaultWaitTimeout = 10 * time.Second

// Config carries the settings required to reach the document store. All
// validation happens once at startup; a store is never constructed from an
// invalid config.
type Config struct {
	// Servers lists the cluster endpoints, e.g. ["couchbase://node1:11210"].
	Servers []string
	// BucketName is the bucket holding every record kind of this module.
	BucketName string
	// Username and Password authenticate against the cluster.
	Username string
	Password string
	// WaitTimeout bounds the initial bucket readiness wait. Defaults to ten
	// seconds when unset.
	WaitTimeout time.Duration
	// Expiries optionally maps a collection tag to a document time-to-live,
	// given as a Go duration string ("30m", "72h"). Collections without an
	// entry never expire.
	Expiries map[string]string
}

// Validate checks the configuration and reports every violation at once, so
// an operator fixes all of them in one pass.
func (c *Config) Validate() error {
	chain := validation.New(validation.AllErrors()).
		AddValidator(validation.NewEmptyStringValidator("BucketName", c.BucketName)).
		AddAssertion(len(c.Servers) > 0, "the [Servers] list is required")

	for i, server := range c.Servers {
		chain.AddValidator(validation.NewEmptyStringValidator(fmt.Sprintf("Servers[%d]", i), server))
	}

	for _, collection := range sortedCollections(c.Expiries) {
		raw := c.Expiries[collection]
		_, err := time.ParseDuration(raw)
		chain.AddAssertion(err == nil, fmt.Sprintf("expiry value %q for collection [%s] is not a valid duration", raw, collection))
	}

	return chain.Validate()
}

// expiries returns the parsed per-collection time-to-live table. Validate
// must have passed beforehand.
func (c *Config) expiries() map[string]time.Duration {
	out := make(map[string]time.Duration, len(c.Expiries))
	for collection, raw := range c.Expiries {
		expiry, err := time.ParseDuration(raw)
		if err != nil {
			continue
		}
		out[collection] = expiry
	}
	return out
}

func (c *Config) waitTimeout() time.Duration {
	if c.WaitTimeout <= 0 {
		return defaultWaitTimeout
	}
	return c.WaitTimeout
}

// sortedCollections keeps validation output deterministic.
func sortedCollections(expiries map[string]string) []string {
	collections := make([]string, 0, len(expiries))
	for collection := range expiries {
		collections = append(collections, collection)
	}
	sort.Strings(collections)
	return collections
}
