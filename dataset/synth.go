//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package dataset implements the fuzzy PSI dataset synthesizer
// (spec §4.4): sampling sender and receiver tables from a weighted
// range distribution with a targeted intersection count and an
// optional neighborhood-disjoint constraint on the receiver side.
// Grounded on original_source/getprefix/ip_gen.cpp's
// generate_enterprise_ips/generate_geographic_ips weighted-subnet
// sampling and ip_gendisjoint.cpp's overlap-rejection loop, extended
// with an IPv6 (k=128) range table per ipv6_gen.cpp.
package dataset

import (
	"fmt"
	"io"
	"math/big"
	"sort"

	"github.com/markkurossi/fuzzypsi/env"
	"github.com/markkurossi/fuzzypsi/fperr"
)

// MaxAttempts bounds the rejection-sampling loop before Synthesize
// gives up and reports the achieved count (spec §4.4).
const MaxAttempts = 1_000_000

// Params configures one synthesis run.
type Params struct {
	// NX is the size of the sender set X.
	NX int
	// NY is the size of the receiver set Y.
	NY int
	// Delta is the match radius.
	Delta int
	// T is the target number of Y values with a sender within Delta.
	T int
	// Disjoint requires the delta-neighborhoods of all Y values to be
	// pairwise disjoint.
	Disjoint bool
	// K is the value width in bits (32 for IPv4, 128 for IPv6).
	K int
	// Ranges is the weighted range table to sample from. Defaults to
	// IPv4Ranges when K==32 and IPv6Ranges when K==128 if left nil.
	Ranges []Range
}

// Result is the output of Synthesize: the two tables plus the
// achieved (possibly partial) match count.
type Result struct {
	X       []*big.Int
	Y       []*big.Int
	Matched int
}

// interval is a closed [lo, hi] window used to track placed
// neighborhoods under Disjoint mode.
type interval struct{ lo, hi *big.Int }

func (a interval) overlaps(b interval) bool {
	return a.lo.Cmp(b.hi) <= 0 && b.lo.Cmp(a.hi) <= 0
}

// weightedSampler draws values from a Range table proportionally to
// each range's Weight, rejecting duplicates against a caller-supplied
// seen set.
type weightedSampler struct {
	ranges []Range
	total  int
	rand   io.Reader
}

func newWeightedSampler(ranges []Range, rnd io.Reader) *weightedSampler {
	total := 0
	for _, r := range ranges {
		total += r.Weight
	}
	return &weightedSampler{ranges: ranges, total: total, rand: rnd}
}

// draw returns one candidate value from the weighted range table.
func (s *weightedSampler) draw() (*big.Int, error) {
	pick, err := randIntn(s.rand, s.total)
	if err != nil {
		return nil, err
	}
	var chosen Range
	for _, r := range s.ranges {
		if pick < r.Weight {
			chosen = r
			break
		}
		pick -= r.Weight
	}
	offset, err := randBig(s.rand, chosen.Bits)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Or(chosen.Network, offset), nil
}

func randIntn(rnd io.Reader, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	v, err := randBig(rnd, bitLen(n)+8)
	if err != nil {
		return 0, err
	}
	m := new(big.Int).Mod(v, big.NewInt(int64(n)))
	return int(m.Int64()), nil
}

func bitLen(n int) int {
	return big.NewInt(int64(n)).BitLen()
}

func randBig(rnd io.Reader, bits int) (*big.Int, error) {
	if bits <= 0 {
		return big.NewInt(0), nil
	}
	nbytes := (bits + 7) / 8
	buf := make([]byte, nbytes)
	if _, err := io.ReadFull(rnd, buf); err != nil {
		return nil, err
	}
	v := new(big.Int).SetBytes(buf)
	mask := new(big.Int).Lsh(one, uint(bits))
	mask.Sub(mask, one)
	return v.And(v, mask), nil
}

var one = big.NewInt(1)

// Synthesize draws a sender set X and a receiver set Y such that
// exactly Result.Matched (== Params.T on success) values of Y have a
// sender within Delta of them, and (under Disjoint) all Y windows are
// pairwise non-overlapping (spec §4.4).
func Synthesize(config *env.Config, p Params) (*Result, error) {
	if p.NX < 0 || p.NY < 0 || p.Delta < 0 || p.T < 0 || p.T > p.NY {
		return nil, fperr.Newf(fperr.ParameterInvalid, "dataset.Synthesize",
			"invalid parameters NX=%d NY=%d delta=%d T=%d", p.NX, p.NY, p.Delta, p.T)
	}
	ranges := p.Ranges
	if ranges == nil {
		switch p.K {
		case 128:
			ranges = IPv6Ranges
		default:
			ranges = IPv4Ranges
		}
	}
	sampler := newWeightedSampler(ranges, config.GetRandom())

	xSet := make(map[string]*big.Int)
	xList := make([]*big.Int, 0, p.NX)
	for attempts := 0; len(xList) < p.NX; attempts++ {
		if attempts >= MaxAttempts {
			return nil, fperr.Newf(fperr.Internal, "dataset.Synthesize",
				"could not draw %d distinct X values after %d attempts", p.NX, MaxAttempts)
		}
		v, err := sampler.draw()
		if err != nil {
			return nil, fperr.New(fperr.Internal, "dataset.Synthesize", err)
		}
		key := v.String()
		if _, dup := xSet[key]; dup {
			continue
		}
		xSet[key] = v
		xList = append(xList, v)
	}
	sort.Slice(xList, func(i, j int) bool { return xList[i].Cmp(xList[j]) < 0 })

	ySet := make(map[string]*big.Int)
	yList := make([]*big.Int, 0, p.NY)
	var placed []interval

	tryPlace := func(v *big.Int) bool {
		key := v.String()
		if _, dup := ySet[key]; dup {
			return false
		}
		if p.Disjoint {
			win := neighborhood(v, p.Delta, p.K)
			for _, existing := range placed {
				if win.overlaps(existing) {
					return false
				}
			}
			placed = append(placed, win)
		}
		ySet[key] = v
		yList = append(yList, v)
		return true
	}

	matched := 0
	for attempts := 0; matched < p.T; attempts++ {
		if attempts >= MaxAttempts {
			return &Result{X: xList, Y: sortedValues(yList), Matched: matched}, nil
		}
		v, err := sampler.draw()
		if err != nil {
			return nil, fperr.New(fperr.Internal, "dataset.Synthesize", err)
		}
		if !hasNeighbor(xList, v, p.Delta) {
			continue
		}
		if tryPlace(v) {
			matched++
		}
	}

	for attempts := 0; len(yList) < p.NY; attempts++ {
		if attempts >= MaxAttempts {
			break
		}
		v, err := sampler.draw()
		if err != nil {
			return nil, fperr.New(fperr.Internal, "dataset.Synthesize", err)
		}
		if hasNeighbor(xList, v, p.Delta) {
			continue
		}
		tryPlace(v)
	}

	return &Result{X: xList, Y: sortedValues(yList), Matched: matched}, nil
}

func sortedValues(vs []*big.Int) []*big.Int {
	out := make([]*big.Int, len(vs))
	copy(out, vs)
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}

// neighborhood returns the closed window [v-delta, v+delta] clamped
// to [0, 2^k-1].
func neighborhood(v *big.Int, delta, k int) interval {
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
	return interval{lo: lo, hi: hi}
}

// hasNeighbor reports whether any value in xs lies within delta of v.
// xs must be sorted ascending.
func hasNeighbor(xs []*big.Int, v *big.Int, delta int) bool {
	d := big.NewInt(int64(delta))
	lo := new(big.Int).Sub(v, d)
	hi := new(big.Int).Add(v, d)
	i := sort.Search(len(xs), func(i int) bool { return xs[i].Cmp(lo) >= 0 })
	return i < len(xs) && xs[i].Cmp(hi) <= 0
}

func (r Result) String() string {
	return fmt.Sprintf("dataset{|X|=%d |Y|=%d matched=%d}", len(r.X), len(r.Y), r.Matched)
}
