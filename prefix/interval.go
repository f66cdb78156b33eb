//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package prefix implements the interval decomposer (spec §4.1) and
// the sender/receiver prefix encoders (spec §4.2) that reduce
// "distance within delta" to exact equality of binary prefixes with
// wildcard suffixes. Grounded on the decompose_interval and
// generate_element_prefixes/generate_neighborhood_prefixes routines
// in original_source/getprefix/prefix.cpp and ip_prefix.cpp, using
// math/big for the values themselves (the teacher's own vole package
// works over *big.Int field elements the same way) so that k=32
// (IPv4) and k=128 (IPv6) share one implementation.
package prefix

import "math/big"

// Block is one term of a minimal binary-prefix cover: the half-open
// interval [Base, Base+2^W).
type Block struct {
	Base *big.Int
	W    int
}

var one = big.NewInt(1)

// Decompose returns the unique minimal cover of the closed interval
// [lo, hi] (0 <= lo <= hi < 2^k) by aligned power-of-two blocks, in
// left-to-right order. It is the empty slice if lo > hi.
//
// At each step the algorithm picks the largest w <= k such that lo's
// low w bits are zero and lo+2^w-1 <= hi (spec §4.1); this is the
// canonical greedy decomposition, dominant by an exchange argument.
func Decompose(lo, hi *big.Int, k int) []Block {
	if lo.Cmp(hi) > 0 {
		return nil
	}

	var blocks []Block
	cur := new(big.Int).Set(lo)

	for cur.Cmp(hi) <= 0 {
		w := largestAlignedWidth(cur, hi, k)
		blocks = append(blocks, Block{Base: new(big.Int).Set(cur), W: w})

		step := new(big.Int).Lsh(one, uint(w))
		cur.Add(cur, step)
	}
	return blocks
}

// largestAlignedWidth finds the largest w in [0,k] such that base's
// low w bits are zero and base+2^w-1 <= hi.
func largestAlignedWidth(base, hi *big.Int, k int) int {
	trailing := trailingZeros(base, k)
	w := trailing
	for w > 0 {
		blockEnd := new(big.Int).Lsh(one, uint(w))
		blockEnd.Sub(blockEnd, one)
		blockEnd.Add(blockEnd, base)
		if blockEnd.Cmp(hi) <= 0 {
			break
		}
		w--
	}
	return w
}

// trailingZeros counts the number of trailing zero bits in base,
// capped at k (a base of exactly zero has k trailing zeros: the
// whole [0, 2^k) space is aligned).
func trailingZeros(base *big.Int, k int) int {
	if base.Sign() == 0 {
		return k
	}
	n := 0
	for n < k && base.Bit(n) == 0 {
		n++
	}
	return n
}
