//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package cuckoo implements the cuckoo-hash-indexed sender database
// layout used by the labeled-HE PSI path (spec §4.5.2): hash_func_count
// hash functions map fingerprints into bins of capacity
// max_items_per_bin, so that later HE plaintext packing can treat
// each bin as one polynomial. Grounded on the bucket/seed/stash shape
// of other_examples/Optable-match__cuckoohash.go, completed into a
// working insert-with-eviction cuckoo table (the retrieved file was
// only a type declaration, not a working implementation).
package cuckoo

import (
	"fmt"

	"github.com/markkurossi/fuzzypsi/fingerprint"
	"github.com/markkurossi/fuzzypsi/fperr"
)

// ReinsertLimit bounds the eviction chain length attempted before an
// item is pushed to the overflow stash.
const ReinsertLimit = 200

// Item is one fingerprint tracked in the table, tagged with the
// caller's opaque payload (a sender-item index, typically).
type Item struct {
	FP      fingerprint.Fingerprint
	Payload int
}

// Bin is one cuckoo table bin: up to Capacity items.
type Bin struct {
	Items []Item
}

// Table is a cuckoo-hash-indexed structure mapping fingerprints to
// bins with hashFuncCount hash functions (spec §4.5.2).
type Table struct {
	bins          []Bin
	capacity      int
	hashFuncCount int
	seeds         []uint64
	stash         []Item
}

// New creates an empty table with bucketCount bins, capacity items
// per bin, and hashFuncCount independent hash functions seeded from
// seed (deterministic given the same seed, matching the teacher
// corpus's habit of seeding pseudo-random structures explicitly for
// reproducibility).
func New(bucketCount, capacity, hashFuncCount int, seed uint64) (*Table, error) {
	if bucketCount <= 0 || capacity <= 0 {
		return nil, fperr.Newf(fperr.ParameterInvalid, "cuckoo.New",
			"bucketCount=%d capacity=%d must be positive", bucketCount, capacity)
	}
	if hashFuncCount < 2 || hashFuncCount > 4 {
		return nil, fperr.Newf(fperr.ParameterInvalid, "cuckoo.New",
			"hashFuncCount=%d out of {2,3,4}", hashFuncCount)
	}
	t := &Table{
		bins:          make([]Bin, bucketCount),
		capacity:      capacity,
		hashFuncCount: hashFuncCount,
		seeds:         make([]uint64, hashFuncCount),
	}
	mix := splitmix64(seed)
	for i := range t.seeds {
		t.seeds[i] = mix()
	}
	return t, nil
}

// BucketCount returns the number of bins in the table.
func (t *Table) BucketCount() int { return len(t.bins) }

// Capacity returns the per-bin item capacity.
func (t *Table) Capacity() int { return t.capacity }

// Bin returns bin i's current contents.
func (t *Table) Bin(i int) Bin { return t.bins[i] }

// Stash returns items that could not be placed within ReinsertLimit
// evictions (spec allows a small stash per the teacher table's own
// stashSize convention; callers typically size bucketCount so the
// stash stays empty).
func (t *Table) Stash() []Item { return t.stash }

func splitmix64(seed uint64) func() uint64 {
	state := seed
	return func() uint64 {
		state += 0x9E3779B97F4A7C15
		z := state
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		return z ^ (z >> 31)
	}
}

// hashIndex computes the bucket index for fp under hash function i.
func (t *Table) hashIndex(fp fingerprint.Fingerprint, i int) int {
	h := fp.D0 ^ t.seeds[i]
	h ^= (fp.D1 + t.seeds[i]) * 0x9E3779B97F4A7C15
	h ^= h >> 33
	h *= 0xFF51AFD7ED558CCD
	h ^= h >> 33
	return int(h % uint64(len(t.bins)))
}

// Candidates returns the hashFuncCount candidate bin indices for fp.
func (t *Table) Candidates(fp fingerprint.Fingerprint) []int {
	out := make([]int, t.hashFuncCount)
	for i := range out {
		out[i] = t.hashIndex(fp, i)
	}
	return out
}

// Insert places item into the table, evicting existing items along a
// cuckoo chain of at most ReinsertLimit steps if every candidate bin
// is full. Items that cannot be placed land in the overflow stash.
func (t *Table) Insert(item Item) {
	cur := item
	for step := 0; step < ReinsertLimit; step++ {
		candidates := t.Candidates(cur.FP)
		for _, idx := range candidates {
			bin := &t.bins[idx]
			if len(bin.Items) < t.capacity {
				bin.Items = append(bin.Items, cur)
				return
			}
		}
		// Every candidate bin is full: evict one occupant of the
		// first candidate bin and continue placing it.
		idx := candidates[0]
		bin := &t.bins[idx]
		evictSlot := int(uint64(cur.FP.D0+cur.FP.D1) % uint64(len(bin.Items)))
		evicted := bin.Items[evictSlot]
		bin.Items[evictSlot] = cur
		cur = evicted
	}
	t.stash = append(t.stash, cur)
}

// Lookup reports whether fp is present in the table (and its
// payload), checking exactly the hashFuncCount candidate bins plus
// the stash.
func (t *Table) Lookup(fp fingerprint.Fingerprint) (Item, bool) {
	for _, idx := range t.Candidates(fp) {
		for _, it := range t.bins[idx].Items {
			if it.FP.Equal(fp) {
				return it, true
			}
		}
	}
	for _, it := range t.stash {
		if it.FP.Equal(fp) {
			return it, true
		}
	}
	return Item{}, false
}

func (t *Table) String() string {
	return fmt.Sprintf("cuckoo.Table{bins=%d capacity=%d hashFuncCount=%d stash=%d}",
		len(t.bins), t.capacity, t.hashFuncCount, len(t.stash))
}
