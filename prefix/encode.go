//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package prefix

import (
	"math/big"
	"strings"
)

// Prefix is a wildcard prefix string over {0,1,*} of length exactly
// k, where all '*' characters form a contiguous suffix (spec §3).
type Prefix string

// Wildcards returns the number of trailing '*' characters in p.
func (p Prefix) Wildcards() int {
	s := string(p)
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '*'; i-- {
		n++
	}
	return n
}

// toPrefix renders block as a k-character wildcard prefix: the top
// k-w bits of base in binary, followed by w '*' characters.
func toPrefix(base *big.Int, k, w int) Prefix {
	var sb strings.Builder
	sb.Grow(k)
	for i := k - 1; i >= w; i-- {
		if base.Bit(i) == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	for i := 0; i < w; i++ {
		sb.WriteByte('*')
	}
	return Prefix(sb.String())
}

// WildcardBudget returns W = floor(log2(2*delta-1)) + 1, the minimal
// number of trailing wildcard bits such that a W-wildcard aligned
// block is guaranteed to cover every neighborhood of radius delta
// (spec §4.2).
func WildcardBudget(delta int) int {
	if delta <= 0 {
		return 0
	}
	n := big.NewInt(int64(2*delta - 1))
	// floor(log2(n)) = n.BitLen()-1 for n >= 1.
	return n.BitLen() - 1 + 1
}

// SenderPrefixes returns the sequence of W+1 wildcard-suffixed
// prefixes obtained by progressively replacing v's low 0..W bits with
// '*' (spec §4.2, sender mode). W = WildcardBudget(delta).
func SenderPrefixes(v *big.Int, delta, k int) []Prefix {
	w := WildcardBudget(delta)
	if w > k {
		w = k
	}
	out := make([]Prefix, 0, w+1)
	masked := new(big.Int).Set(v)
	clearMask := new(big.Int)
	for wc := 0; wc <= w; wc++ {
		if wc > 0 {
			// Clear bit wc-1 so masked always has its low wc bits zero.
			clearMask.SetInt64(1)
			clearMask.Lsh(clearMask, uint(wc-1))
			masked.AndNot(masked, clearMask)
		}
		out = append(out, toPrefix(masked, k, wc))
	}
	return out
}

// ReceiverPrefixes returns the minimal prefix cover of v's
// delta-neighborhood [max(0,v-delta), min(2^k-1, v+delta)] (spec
// §4.2, receiver mode), computed via Decompose.
func ReceiverPrefixes(v *big.Int, delta, k int) []Prefix {
	lo := new(big.Int).Sub(v, big.NewInt(int64(delta)))
	if lo.Sign() < 0 {
		lo.SetInt64(0)
	}
	hi := new(big.Int).Add(v, big.NewInt(int64(delta)))
	max := new(big.Int).Lsh(one, uint(k))
	max.Sub(max, one)
	if hi.Cmp(max) > 0 {
		hi.Set(max)
	}

	blocks := Decompose(lo, hi, k)
	out := make([]Prefix, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, toPrefix(b.Base, k, b.W))
	}
	return out
}

// Match reports whether a and b, two equal-length wildcard prefixes,
// denote overlapping sets: every position must agree where neither
// side is '*'.
func Match(a, b Prefix) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if a[i] == '*' || b[i] == '*' {
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// batchJob pairs an input index with its computed prefixes, used to
// preserve input order across the worker pool.
type batchJob struct {
	idx    int
	prefix []Prefix
}

// SenderPrefixesBatch computes SenderPrefixes for every value in vs,
// spreading the work across config's worker pool (spec §5).
func SenderPrefixesBatch(vs []*big.Int, delta, k int, workers int) [][]Prefix {
	return runBatch(vs, workers, func(v *big.Int) []Prefix {
		return SenderPrefixes(v, delta, k)
	})
}

// ReceiverPrefixesBatch computes ReceiverPrefixes for every value in
// vs, spreading the work across config's worker pool (spec §5).
func ReceiverPrefixesBatch(vs []*big.Int, delta, k int, workers int) [][]Prefix {
	return runBatch(vs, workers, func(v *big.Int) []Prefix {
		return ReceiverPrefixes(v, delta, k)
	})
}

func runBatch(vs []*big.Int, workers int, fn func(*big.Int) []Prefix) [][]Prefix {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(vs) {
		workers = len(vs)
	}
	out := make([][]Prefix, len(vs))
	if workers <= 1 {
		for i, v := range vs {
			out[i] = fn(v)
		}
		return out
	}

	jobs := make(chan int)
	results := make(chan batchJob)
	done := make(chan struct{})

	for w := 0; w < workers; w++ {
		go func() {
			for idx := range jobs {
				results <- batchJob{idx: idx, prefix: fn(vs[idx])}
			}
		}()
	}
	go func() {
		for i := range vs {
			jobs <- i
		}
		close(jobs)
	}()
	go func() {
		for range vs {
			r := <-results
			out[r.idx] = r.prefix
		}
		close(done)
	}()
	<-done
	return out
}
