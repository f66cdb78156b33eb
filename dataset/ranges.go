//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package dataset

import "math/big"

// Range is one entry of a weighted-range table: a (network, mask,
// weight) triple used by the sampler to draw values that look like a
// realistic allocation rather than uniform noise (spec §6).
type Range struct {
	// Network is the base value of the range (already masked).
	Network *big.Int
	// Bits is the number of low-order bits free to vary within the
	// range (host bits): the range spans [Network, Network+2^Bits).
	Bits int
	// Weight is this range's relative sampling weight.
	Weight int
}

func ip4(a, b, c, d byte) *big.Int {
	v := uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d)
	return new(big.Int).SetUint64(uint64(v))
}

// IPv4Ranges is the canonical weighted range table for k=32 dataset
// synthesis, grounded on original_source/getprefix/ip_gen.cpp's
// enterprise/geographic subnet tables (translated here into
// (network, host-bits, weight) form rather than hard-coded per
// call, per SPEC_FULL.md §4.4).
var IPv4Ranges = []Range{
	{Network: ip4(218, 0, 0, 0), Bits: 24, Weight: 25},
	{Network: ip4(222, 0, 0, 0), Bits: 24, Weight: 20},
	{Network: ip4(8, 8, 8, 0), Bits: 8, Weight: 5},
	{Network: ip4(18, 0, 0, 0), Bits: 24, Weight: 8},
	{Network: ip4(192, 168, 1, 0), Bits: 8, Weight: 15},
	{Network: ip4(10, 0, 0, 0), Bits: 16, Weight: 12},
	{Network: ip4(172, 16, 0, 0), Bits: 12, Weight: 10},
	{Network: ip4(202, 96, 0, 0), Bits: 16, Weight: 5},
}

// ip6 builds a 128 bit network value from its hex prefix (the fixed,
// non-host bits, most-significant first) left-shifted so that
// exactly bits low bits remain free for the host portion.
func ip6(prefixHex string, bits int) *big.Int {
	v, ok := new(big.Int).SetString(prefixHex, 16)
	if !ok {
		panic("dataset: bad IPv6 prefix literal " + prefixHex)
	}
	return v.Lsh(v, uint(bits))
}

// IPv6Ranges is the canonical weighted range table for k=128 dataset
// synthesis, grounded on original_source/getprefix/ipv6_gen.cpp's
// /64 and /48 allocation blocks: each entry's Bits is the number of
// free host bits below the network's prefix length (128-Bits).
var IPv6Ranges = []Range{
	// 2001:db8::/64 - documentation block, 64 host bits.
	{Network: ip6("20010db800000000", 64), Bits: 64, Weight: 20},
	// 2400:cb00::/32 - 96 host bits.
	{Network: ip6("2400cb00", 96), Bits: 96, Weight: 15},
	// 2606:4700::/32 - 96 host bits.
	{Network: ip6("26064700", 96), Bits: 96, Weight: 15},
	// fd00::/8 unique local address space, 120 host bits.
	{Network: ip6("fd", 120), Bits: 120, Weight: 25},
	// 2a03:2880::/32 (social network ASN-flavored), 96 host bits.
	{Network: ip6("2a032880", 96), Bits: 96, Weight: 25},
}
