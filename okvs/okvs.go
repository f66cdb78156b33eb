//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package okvs implements a banded oblivious key-value store over
// GF(2^128): Encode(keys, values) produces a vector P such that
// Decode(key, P) recovers the matching value for every encoded key,
// while decoding an unencoded key yields a pseudorandom element. The
// band structure lets both operations run in time linear in the band
// length rather than the table size.
package okvs

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"sort"

	"github.com/markkurossi/fuzzypsi/fingerprint"
	"github.com/markkurossi/fuzzypsi/fperr"
	"github.com/markkurossi/fuzzypsi/gf128"
)

// DefaultBandLength is used by NewParams when the caller does not
// need to tune the band width directly.
const DefaultBandLength = 224

// Params fixes the table size and band width for one OKVS instance.
// Size and BandLength must be agreed by both encoder and decoder.
type Params struct {
	Size       int
	BandLength int
}

// NewParams derives OKVS parameters for nItems keys, sizing the table
// to spec's 1.27x load factor and a band wide enough that banded
// Gaussian elimination succeeds with overwhelming probability.
func NewParams(nItems int) Params {
	if nItems < 1 {
		nItems = 1
	}
	size := ceilDiv(nItems*127, 100)
	band := DefaultBandLength
	if size <= band {
		size = band + nItems
	}
	return Params{Size: size, BandLength: band}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Validate reports whether p describes a usable banded table.
func (p Params) Validate() error {
	if p.BandLength < 1 {
		return fperr.Newf(fperr.ParameterInvalid, "okvs.Params", "band length must be positive")
	}
	if p.Size <= p.BandLength {
		return fperr.Newf(fperr.ParameterInvalid, "okvs.Params", "size must exceed band length")
	}
	return nil
}

// row is one item's contribution to the banded linear system: value
// = sum(coeffs[k] * P[start+k]) for k in [0, len(coeffs)).
type row struct {
	start  int
	coeffs []gf128.Elt
	value  gf128.Elt
}

// deriveRow expands a key (plus the instance seed) into its band
// placement and coefficient vector via an AES-CTR keystream keyed
// directly by the key bytes, in the style of otext/prg.go and
// vole/prg.go's label-to-field-element expansion.
func deriveRow(key fingerprint.Fingerprint, seed uint64, p Params) (row, error) {
	kb := key.Bytes()
	var seedBytes [8]byte
	binary.LittleEndian.PutUint64(seedBytes[:], seed)

	keyMaterial := make([]byte, 0, 24)
	keyMaterial = append(keyMaterial, kb[:]...)
	keyMaterial = append(keyMaterial, seedBytes[:]...)

	block, err := aes.NewCipher(keyMaterial)
	if err != nil {
		return row{}, fperr.New(fperr.Internal, "okvs.deriveRow", err)
	}
	var iv [16]byte
	stream := cipher.NewCTR(block, iv[:])

	buf := make([]byte, 8+p.BandLength*16)
	stream.XORKeyStream(buf, buf)

	maxStart := p.Size - p.BandLength + 1
	start := int(binary.LittleEndian.Uint64(buf[:8]) % uint64(maxStart))

	coeffs := make([]gf128.Elt, p.BandLength)
	for i := 0; i < p.BandLength; i++ {
		off := 8 + i*16
		coeffs[i] = gf128.FromBytes(buf[off : off+16])
	}
	return row{start: start, coeffs: coeffs, value: gf128.Elt{}}, nil
}

// Encode solves for the table P satisfying Decode(keys[i], P) ==
// values[i] for every i, using banded Gaussian elimination. It
// returns EncodingFailure if the banded matrix is singular for this
// seed; the caller should retry with a fresh seed.
func Encode(keys []fingerprint.Fingerprint, values []gf128.Elt, seed uint64, p Params) ([]gf128.Elt, error) {
	if len(keys) != len(values) {
		return nil, fperr.Newf(fperr.InvalidInput, "okvs.Encode", "keys and values length mismatch")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	rows := make([]row, len(keys))
	for i, k := range keys {
		r, err := deriveRow(k, seed, p)
		if err != nil {
			return nil, err
		}
		r.value = values[i]
		rows[i] = r
	}

	sortRowsByStart(rows)

	pivots := make(map[int]row)
	for _, r := range rows {
		band := append([]gf128.Elt(nil), r.coeffs...)
		value := r.value
		start := r.start

		pivoted := false
		for c := start; c < start+p.BandLength; c++ {
			idx := c - start
			if band[idx].IsZero() {
				continue
			}
			pr, ok := pivots[c]
			if !ok {
				pivots[c] = row{start: c, coeffs: band[idx:], value: value}
				pivoted = true
				break
			}

			factor := gf128.Mul(band[idx], gf128.Inverse(pr.coeffs[0]))
			for k := 0; k < len(pr.coeffs) && c+k-start < p.BandLength; k++ {
				band[c+k-start] = gf128.Add(band[c+k-start], gf128.Mul(factor, pr.coeffs[k]))
			}
			value = gf128.Add(value, gf128.Mul(factor, pr.value))
		}
		if !pivoted {
			return nil, fperr.Newf(fperr.EncodingFailure, "okvs.Encode", "banded matrix is singular for this seed")
		}
	}

	table := make([]gf128.Elt, p.Size)
	for c := p.Size - 1; c >= 0; c-- {
		pr, ok := pivots[c]
		if !ok {
			continue
		}
		acc := pr.value
		for k := 1; k < len(pr.coeffs); k++ {
			if pr.coeffs[k].IsZero() {
				continue
			}
			acc = gf128.Add(acc, gf128.Mul(pr.coeffs[k], table[c+k]))
		}
		table[c] = gf128.Mul(acc, gf128.Inverse(pr.coeffs[0]))
	}
	return table, nil
}

// Decode reconstructs the value associated with key from the encoded
// table P. For keys never presented to Encode, the result is
// pseudorandom.
func Decode(key fingerprint.Fingerprint, table []gf128.Elt, seed uint64, p Params) (gf128.Elt, error) {
	if len(table) != p.Size {
		return gf128.Elt{}, fperr.Newf(fperr.InvalidInput, "okvs.Decode", "table size does not match params")
	}
	r, err := deriveRow(key, seed, p)
	if err != nil {
		return gf128.Elt{}, err
	}
	var acc gf128.Elt
	for i, c := range r.coeffs {
		if c.IsZero() {
			continue
		}
		acc = gf128.Add(acc, gf128.Mul(c, table[r.start+i]))
	}
	return acc, nil
}

// sortRowsByStart orders rows by ascending band start so that banded
// elimination only ever needs to look forward.
func sortRowsByStart(rows []row) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].start < rows[j].start })
}
