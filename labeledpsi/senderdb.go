//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package labeledpsi

import (
	"math/big"
	"math/bits"

	"github.com/markkurossi/fuzzypsi/cuckoo"
	"github.com/markkurossi/fuzzypsi/fingerprint"
	"github.com/markkurossi/fuzzypsi/fperr"
	"github.com/markkurossi/fuzzypsi/heparams"
)

// SenderDB is the cuckoo-hash-indexed sender database (spec §4.5.2):
// every table bin holds, for each of felts_per_item lanes, the monic
// polynomial whose roots are that lane's field-element encoding of
// the bin's items. A query point matches an item only when all
// felts_per_item lane polynomials evaluate to zero at that item's
// lane values simultaneously, since every lane's polynomial is built
// from the bin's items in the same order.
type SenderDB struct {
	table    *cuckoo.Table
	params   *heparams.File
	binPolys [][][]uint64 // [bin][lane][coefficient, ascending degree]
}

// BuildSenderDB inserts items into a fresh cuckoo table sized by
// params and computes each bin's per-lane root polynomials. seed
// fixes the table's hash functions; both parties must agree on it out
// of band (spec §4.5.2 leaves this to session setup).
func BuildSenderDB(params *heparams.File, items []fingerprint.Fingerprint, seed uint64) (*SenderDB, error) {
	tp := params.TableParams
	table, err := cuckoo.New(tp.TableSize, tp.MaxItemsPerBin, tp.HashFuncCount, seed)
	if err != nil {
		return nil, fperr.New(fperr.Internal, "labeledpsi.BuildSenderDB", err)
	}
	for i, fp := range items {
		table.Insert(cuckoo.Item{FP: fp, Payload: i})
	}
	if stash := table.Stash(); len(stash) > 0 {
		return nil, fperr.Newf(fperr.CapacityExceeded, "labeledpsi.BuildSenderDB",
			"%d items overflowed into the cuckoo stash, widen table_size or max_items_per_bin", len(stash))
	}

	feltsPerItem := params.ItemParams.FeltsPerItem
	q := params.SealParams.PlainModulus
	binPolys := make([][][]uint64, tp.TableSize)
	for b := 0; b < tp.TableSize; b++ {
		bin := table.Bin(b)
		rootsPerLane := make([][]uint64, feltsPerItem)
		for _, it := range bin.Items {
			felts := fpToFelts(it.FP, params)
			for l := 0; l < feltsPerItem; l++ {
				rootsPerLane[l] = append(rootsPerLane[l], felts[l])
			}
		}
		lanes := make([][]uint64, feltsPerItem)
		for l := 0; l < feltsPerItem; l++ {
			lanes[l] = polyFromRoots(rootsPerLane[l], q)
		}
		binPolys[b] = lanes
	}
	return &SenderDB{table: table, params: params, binPolys: binPolys}, nil
}

// Table exposes the underlying cuckoo table so a receiver can build a
// matching shadow table (same params and seed) to compute candidate
// bins without inserting its own items into the sender's structure.
func (db *SenderDB) Table() *cuckoo.Table { return db.table }

// BinDegree returns the degree of bin b's lane polynomials (every
// lane in a bin shares one degree: the bin's item count).
func (db *SenderDB) BinDegree(b int) int {
	if len(db.binPolys[b]) == 0 {
		return 0
	}
	return len(db.binPolys[b][0]) - 1
}

// BinPolynomial returns bin b's lane l root polynomial, ascending
// degree, unpadded.
func (db *SenderDB) BinPolynomial(b, l int) []uint64 {
	return db.binPolys[b][l]
}

// fpToFelts encodes fp as felts_per_item field elements mod q, each
// carrying floor(log2(q)) bits of fp's 128 bit value, least
// significant chunk first (spec §4.5.1's item_bit_count packing).
func fpToFelts(fp fingerprint.Fingerprint, params *heparams.File) []uint64 {
	q := params.SealParams.PlainModulus
	feltBits := uint(bits.Len64(q) - 1)
	feltsPerItem := params.ItemParams.FeltsPerItem

	value := new(big.Int).Lsh(new(big.Int).SetUint64(fp.D1), 64)
	value.Or(value, new(big.Int).SetUint64(fp.D0))
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), feltBits), big.NewInt(1))

	out := make([]uint64, feltsPerItem)
	for i := 0; i < feltsPerItem; i++ {
		chunk := new(big.Int).And(value, mask)
		out[i] = chunk.Uint64() % q
		value.Rsh(value, feltBits)
	}
	return out
}

// polyFromRoots builds the monic polynomial (x-r_0)(x-r_1)...(x-r_k-1)
// mod q, ascending degree. An empty root list yields the constant
// polynomial [1], which no query value can zero.
func polyFromRoots(roots []uint64, q uint64) []uint64 {
	coeffs := []uint64{1 % q}
	for _, r := range roots {
		next := make([]uint64, len(coeffs)+1)
		for i := range next {
			var fromLower, fromSelf uint64
			if i > 0 {
				fromLower = coeffs[i-1]
			}
			if i < len(coeffs) {
				fromSelf = mulmod(coeffs[i], r%q, q)
			}
			next[i] = submod(fromLower, fromSelf, q)
		}
		coeffs = next
	}
	return coeffs
}

func submod(a, b, q uint64) uint64 {
	a %= q
	b %= q
	if a >= b {
		return a - b
	}
	return q + a - b
}

// padPoly zero-extends coeffs (ascending degree) up to degree, which
// changes none of its roots or values: the added high-order
// coefficients are all zero.
func padPoly(coeffs []uint64, degree int) []uint64 {
	out := make([]uint64, degree+1)
	copy(out, coeffs)
	return out
}
