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

// Status represents a node's position in the membership lifecycle. The normal
// walk is Joining, Active, then ShuttingDown or Stopping on a clean exit; a
// crashed node goes from Active straight to Dead once its heartbeat passes
// the cleanup threshold.
type Status int32

const (
	// Joining indicates a node that has announced itself but is not serving yet.
	Joining Status = iota
	// Active indicates a node serving traffic.
	Active
	// ShuttingDown indicates a node draining its work before stopping.
	ShuttingDown
	// Stopping indicates a node in the final phase of a clean exit.
	Stopping
	// Dead indicates a node that has left, cleanly or not.
	Dead
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case Joining:
		return "Joining"
	case Active:
		return "Active"
	case ShuttingDown:
		return "ShuttingDown"
	case Stopping:
		return "Stopping"
	case Dead:
		return "Dead"
	default:
		return "Unknown"
	}
}
