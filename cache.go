// Copyright 2021. Silvano DAL ZILIO.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package sdd

import "sort"

// dateInUse packs a 31-bit LRU access date and an in_use bit in a single
// uint32, exactly as described in §4.5/Design Notes ("model this directly as
// a u32 packing date and flag; do not rely on external locking").
type dateInUse uint32

const inUseBit dateInUse = 1 << 31
const dateMask dateInUse = inUseBit - 1

func (d dateInUse) inUse() bool    { return d&inUseBit != 0 }
func (d dateInUse) date() uint32   { return uint32(d & dateMask) }
func withDate(d dateInUse, date uint32) dateInUse {
	return (d & inUseBit) | dateInUse(date&uint32(dateMask))
}
func clearInUse(d dateInUse) dateInUse { return d &^ inUseBit }
func setInUse(d dateInUse) dateInUse   { return d | inUseBit }

// cacheEntry is a unit of information stored in an operation cache: a
// memoized result plus the packed access date/in_use state (§4.5).
type cacheEntry[R any] struct {
	result R
	state  dateInUse
}

// opCache is a hash-set of (operation, result) entries, generic over the
// operation key K and result type R, with LRU-style cleanup on overflow
// (§4.5). It backs the evaluation cache, the rewrite cache, and the
// diagram-algebra caches (diagramops.go), mirroring the family of
// applycache/itecache/quantcache/replacecache types the teacher keeps
// separate in cache.go, unified here since our Context is generic over the
// operation shape rather than a fixed enum of BDD operators.
type opCache[K comparable, R any] struct {
	entries    map[K]*cacheEntry[R]
	limit      int
	globalDate uint32
}

// newOpCache creates a cache whose cleanup threshold is reached at
// limit*0.85 entries (§4.5).
func newOpCache[K comparable, R any](limit int) *opCache[K, R] {
	if limit <= 0 {
		limit = _DEFAULTCACHESIZE
	}
	return &opCache[K, R]{entries: make(map[K]*cacheEntry[R], limit), limit: limit}
}

// get probes the cache; on hit it bumps the entry's access date and returns
// the memoized result.
func (c *opCache[K, R]) get(key K) (R, bool) {
	e, ok := c.entries[key]
	if !ok {
		var zero R
		return zero, false
	}
	c.globalDate++
	e.state = withDate(e.state, c.globalDate)
	return e.result, true
}

// compute looks up key; on miss it marks a pending in_use entry (so a
// cleanup triggered by a deeper, recursive call cannot evict the slot this
// call is about to fill), calls fn, and on success commits the result and
// clears in_use before the optional cleanup pass runs. On error the pending
// entry is dropped and the cache is left untouched, per the propagation
// policy in §4.5/§7: evaluation errors are never cached.
func (c *opCache[K, R]) compute(key K, fn func() (R, error)) (R, error) {
	if v, ok := c.get(key); ok {
		return v, nil
	}
	pending := &cacheEntry[R]{state: setInUse(0)}
	c.entries[key] = pending
	result, err := fn()
	if err != nil {
		delete(c.entries, key)
		var zero R
		return zero, err
	}
	c.globalDate++
	pending.result = result
	pending.state = clearInUse(withDate(0, c.globalDate))
	c.cleanup()
	return result, nil
}

// cleanup implements the §4.5 policy: triggered once the table holds at
// least limit*0.85 entries. If the not-in-use entries are fewer than half
// the limit, delete them all; otherwise partition them by access date and
// delete the older half. Remaining dates (and the global date) reset to 0.
func (c *opCache[K, R]) cleanup() {
	threshold := int(float64(c.limit) * 0.85)
	if len(c.entries) < threshold {
		return
	}
	type candidate struct {
		key  K
		date uint32
	}
	notInUse := make([]candidate, 0, len(c.entries))
	for k, e := range c.entries {
		if !e.state.inUse() {
			notInUse = append(notInUse, candidate{k, e.state.date()})
		}
	}
	if len(notInUse) < c.limit/2 {
		for _, cand := range notInUse {
			delete(c.entries, cand.key)
		}
	} else {
		sort.Slice(notInUse, func(i, j int) bool { return notInUse[i].date < notInUse[j].date })
		half := len(notInUse) / 2
		for _, cand := range notInUse[:half] {
			delete(c.entries, cand.key)
		}
	}
	for _, e := range c.entries {
		e.state = clearInUseKeep(e.state)
	}
	c.globalDate = 0
}

func clearInUseKeep(d dateInUse) dateInUse {
	// reset the date to zero, keep the in_use bit as-is
	return d & inUseBit
}

// len reports the number of entries currently cached (for tests/stats).
func (c *opCache[K, R]) len() int { return len(c.entries) }

// clear empties the cache entirely. Caches may be cleared at any time
// without affecting correctness, only performance (§5).
func (c *opCache[K, R]) clear() {
	c.entries = make(map[K]*cacheEntry[R], c.limit)
	c.globalDate = 0
}
