//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package heparams implements labeled-HE parameter selection (spec
// §4.5.1) and the JSON file format it is persisted in (spec §6). The
// batched-HE scheme itself is out of scope (spec §1); this package
// only picks and validates the numeric knobs that would be handed to
// it, grounded on the shape of the parameter files under
// original_source/APSI__Test.
package heparams

import (
	"bytes"
	"encoding/json"
	"math/big"

	"github.com/markkurossi/fuzzypsi/fperr"
)

// TableParams describes the cuckoo-hashed sender database layout.
type TableParams struct {
	HashFuncCount  int `json:"hash_func_count"`
	TableSize      int `json:"table_size"`
	MaxItemsPerBin int `json:"max_items_per_bin"`
}

// ItemParams describes how fingerprints are packed into field
// elements.
type ItemParams struct {
	FeltsPerItem int `json:"felts_per_item"`
}

// QueryParams describes the windowed-power query optimization.
type QueryParams struct {
	PSLowDegree  int   `json:"ps_low_degree"`
	QueryPowers  []int `json:"query_powers"`
}

// SealParams describes the batched-HE scheme's ring and modulus
// choice (named after the library the original pack's PSI sources
// build against).
type SealParams struct {
	PlainModulus      uint64 `json:"plain_modulus"`
	PolyModulusDegree int    `json:"poly_modulus_degree"`
	CoeffModulusBits  []int  `json:"coeff_modulus_bits"`
}

// File is the on-disk JSON representation of Π (spec §6): exactly
// these four fields, no more.
type File struct {
	TableParams TableParams `json:"table_params"`
	ItemParams  ItemParams  `json:"item_params"`
	QueryParams QueryParams `json:"query_params"`
	SealParams  SealParams  `json:"seal_params"`
}

// tier is one row of the §4.5.1 deterministic selection table.
type tier struct {
	maxSenderItems int // inclusive upper bound, 0 means "no upper bound"
	n              int
	coeffBits      []int
	q              uint64
}

var tiers = []tier{
	{maxSenderItems: 1 << 14, n: 4096, coeffBits: []int{40, 32, 32, 40}, q: 40961},
	{maxSenderItems: 1 << 16, n: 8192, coeffBits: []int{50, 35, 35, 50}, q: 65537},
	{maxSenderItems: 1 << 18, n: 16384, coeffBits: []int{50, 40, 40, 50}, q: 114689},
	{maxSenderItems: 0, n: 32768, coeffBits: []int{60, 50, 50, 60}, q: 786433},
}

const defaultFeltsPerItem = 8

// Select computes Π from |S| (sender set size) and |R| (receiver set
// size) following the §4.5.1 deterministic table, adjusting q up to
// the next prime congruent to 1 mod 2n, sizing the table to
// 1.05*|S| rounded up to a multiple of bundle_size, and widening
// felts_per_item if the resulting item bit budget falls outside
// [80,128].
func Select(senderItems, receiverItems int) (*File, error) {
	if senderItems <= 0 {
		return nil, fperr.Newf(fperr.ParameterInvalid, "heparams.Select",
			"sender item count must be positive, got %d", senderItems)
	}

	var chosen tier
	for _, t := range tiers {
		if t.maxSenderItems == 0 || senderItems <= t.maxSenderItems {
			chosen = t
			break
		}
	}

	// Adjust q upward to the smallest prime congruent to 1 mod 2n
	// such that some felts_per_item in {4,8,16,32} lands
	// item_bit_count = felts_per_item * floor(log2(q)) in [80,128]
	// (spec §4.5.1's "adjust q upward" step, folded together with
	// its "adjust felts_per_item and recompute" step: not every
	// prime congruent to 1 mod 2n admits a fitting felts_per_item,
	// so the search widens over both at once).
	q, feltsPerItem, err := findFittingModulus(chosen.q, chosen.n)
	if err != nil {
		return nil, err
	}

	bundleSize := chosen.n / feltsPerItem
	tableSize := ceilToMultiple(int(float64(senderItems)*1.05)+1, bundleSize)

	f := &File{
		TableParams: TableParams{
			HashFuncCount:  3,
			TableSize:      tableSize,
			MaxItemsPerBin: 64,
		},
		ItemParams: ItemParams{FeltsPerItem: feltsPerItem},
		QueryParams: QueryParams{
			PSLowDegree: 0,
			QueryPowers: []int{1},
		},
		SealParams: SealParams{
			PlainModulus:      q,
			PolyModulusDegree: chosen.n,
			CoeffModulusBits:  chosen.coeffBits,
		},
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks Π against the invariants named in spec §4.5.1/§6/§8
// (invariant 6): q prime and q ≡ 1 (mod 2n),
// felts_per_item*floor(log2(q)) in [80,128], table_size a multiple of n/felts_per_item, table_size
// >= 1.05*sender items is left to the caller (Validate has no sender
// count to check against once loaded from a file).
func (f *File) Validate() error {
	tp, ip, qp, sp := f.TableParams, f.ItemParams, f.QueryParams, f.SealParams

	if tp.HashFuncCount < 2 || tp.HashFuncCount > 4 {
		return fperr.Newf(fperr.ParameterInvalid, "heparams.Validate",
			"hash_func_count=%d out of {2,3,4}", tp.HashFuncCount)
	}
	if tp.MaxItemsPerBin < 1 || tp.MaxItemsPerBin > 4096 {
		return fperr.Newf(fperr.ParameterInvalid, "heparams.Validate",
			"max_items_per_bin=%d out of [1,4096]", tp.MaxItemsPerBin)
	}
	switch ip.FeltsPerItem {
	case 4, 8, 16, 32:
	default:
		return fperr.Newf(fperr.ParameterInvalid, "heparams.Validate",
			"felts_per_item=%d not in {4,8,16,32}", ip.FeltsPerItem)
	}
	switch sp.PolyModulusDegree {
	case 2048, 4096, 8192, 16384, 32768:
	default:
		return fperr.Newf(fperr.ParameterInvalid, "heparams.Validate",
			"poly_modulus_degree=%d not a supported ring size", sp.PolyModulusDegree)
	}
	if len(sp.CoeffModulusBits) < 2 || len(sp.CoeffModulusBits) > 6 {
		return fperr.Newf(fperr.ParameterInvalid, "heparams.Validate",
			"coeff_modulus_bits has %d entries, want 2-6", len(sp.CoeffModulusBits))
	}
	for _, b := range sp.CoeffModulusBits {
		if b < 30 || b > 60 {
			return fperr.Newf(fperr.ParameterInvalid, "heparams.Validate",
				"coeff_modulus_bits entry %d out of [30,60]", b)
		}
	}
	if !isProbablePrime(sp.PlainModulus) {
		return fperr.Newf(fperr.ParameterInvalid, "heparams.Validate",
			"plain_modulus=%d is not prime", sp.PlainModulus)
	}
	twoN := uint64(2 * sp.PolyModulusDegree)
	if sp.PlainModulus%twoN != 1 {
		return fperr.Newf(fperr.ParameterInvalid, "heparams.Validate",
			"plain_modulus=%d not congruent to 1 mod 2n=%d", sp.PlainModulus, twoN)
	}
	itemBits := ip.FeltsPerItem * (bitLenUint64(sp.PlainModulus) - 1)
	if itemBits < 80 || itemBits > 128 {
		return fperr.Newf(fperr.ParameterInvalid, "heparams.Validate",
			"item_bit_count=%d out of [80,128]", itemBits)
	}
	bundleSize := sp.PolyModulusDegree / ip.FeltsPerItem
	if bundleSize == 0 || tp.TableSize%bundleSize != 0 {
		return fperr.Newf(fperr.ParameterInvalid, "heparams.Validate",
			"table_size=%d not a multiple of bundle_size=%d", tp.TableSize, bundleSize)
	}
	if tp.TableSize < 1 {
		return fperr.Newf(fperr.ParameterInvalid, "heparams.Validate",
			"table_size=%d must be >= 1", tp.TableSize)
	}
	if len(qp.QueryPowers) == 0 {
		return fperr.New(fperr.ParameterInvalid, "heparams.Validate",
			errEmptyQueryPowers)
	}
	hasOne := false
	for _, p := range qp.QueryPowers {
		if p == 1 {
			hasOne = true
			break
		}
	}
	if !hasOne {
		return fperr.New(fperr.ParameterInvalid, "heparams.Validate",
			errQueryPowersMissingOne)
	}
	if qp.PSLowDegree < 0 {
		return fperr.Newf(fperr.ParameterInvalid, "heparams.Validate",
			"ps_low_degree=%d must be >= 0", qp.PSLowDegree)
	}
	return nil
}

var (
	errEmptyQueryPowers      = fperr.Newf(fperr.ParameterInvalid, "heparams", "query_powers must be non-empty")
	errQueryPowersMissingOne = fperr.Newf(fperr.ParameterInvalid, "heparams", "query_powers must contain 1")
)

// Marshal renders f as canonical JSON (spec §6's file format).
func (f *File) Marshal() ([]byte, error) {
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fperr.New(fperr.Internal, "heparams.Marshal", err)
	}
	return b, nil
}

// Unmarshal parses a §6 parameter file, rejecting unknown top-level
// fields, and validates the result.
func Unmarshal(data []byte) (*File, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fperr.New(fperr.InvalidInput, "heparams.Unmarshal", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// maxModulusSearch bounds the joint prime/felts_per_item search in
// findFittingModulus.
const maxModulusSearch = 1_000_000

// findFittingModulus finds the smallest prime q >= start congruent to
// 1 mod 2n for which some felts_per_item in {4,8,16,32} lands
// item_bit_count = felts_per_item * floor(log2(q)) in [80,128], and
// returns that (q, felts_per_item) pair.
func findFittingModulus(start uint64, n int) (uint64, int, error) {
	twoN := uint64(2 * n)
	q := start
	if rem := q % twoN; rem != 1 {
		if rem <= 1 {
			q += 1 - rem
		} else {
			q += twoN + 1 - rem
		}
	}

	for tries := 0; tries < maxModulusSearch; tries++ {
		if isProbablePrime(q) {
			bits := bitLenUint64(q) - 1
			for _, felts := range [...]int{defaultFeltsPerItem, 4, 16, 32} {
				if b := felts * bits; b >= 80 && b <= 128 {
					return q, felts, nil
				}
			}
		}
		q += twoN
	}
	return 0, 0, fperr.Newf(fperr.ParameterInvalid, "heparams.Select",
		"no plain_modulus congruent to 1 mod %d fits item_bit_count into [80,128] within %d candidates",
		twoN, maxModulusSearch)
}

func isProbablePrime(n uint64) bool {
	if n < 2 {
		return false
	}
	return new(big.Int).SetUint64(n).ProbablyPrime(20)
}

func bitLenUint64(v uint64) int {
	return new(big.Int).SetUint64(v).BitLen()
}

func ceilToMultiple(v, m int) int {
	if m <= 0 {
		return v
	}
	if v%m == 0 {
		return v
	}
	return v + (m - v%m)
}
