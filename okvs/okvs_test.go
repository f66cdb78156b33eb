//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package okvs

import (
	"crypto/rand"
	"testing"

	"github.com/markkurossi/fuzzypsi/fingerprint"
	"github.com/markkurossi/fuzzypsi/gf128"
)

func randomKeys(t *testing.T, n int) []fingerprint.Fingerprint {
	t.Helper()
	out := make([]fingerprint.Fingerprint, n)
	var buf [16]byte
	for i := range out {
		if _, err := rand.Read(buf[:]); err != nil {
			t.Fatalf("rand.Read: %v", err)
		}
		out[i] = fingerprint.FromBytes(buf[:])
	}
	return out
}

func randomElts(t *testing.T, n int) []gf128.Elt {
	t.Helper()
	out := make([]gf128.Elt, n)
	var buf [16]byte
	for i := range out {
		if _, err := rand.Read(buf[:]); err != nil {
			t.Fatalf("rand.Read: %v", err)
		}
		out[i] = gf128.FromBytes(buf[:])
	}
	return out
}

func encodeWithRetry(t *testing.T, keys []fingerprint.Fingerprint, values []gf128.Elt, p Params) ([]gf128.Elt, uint64) {
	t.Helper()
	for seed := uint64(0); seed < 8; seed++ {
		table, err := Encode(keys, values, seed, p)
		if err == nil {
			return table, seed
		}
	}
	t.Fatalf("failed to encode within retry budget")
	return nil, 0
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	const n = 300
	keys := randomKeys(t, n)
	values := randomElts(t, n)
	p := NewParams(n)

	table, seed := encodeWithRetry(t, keys, values, p)
	if len(table) != p.Size {
		t.Fatalf("table size = %d, want %d", len(table), p.Size)
	}

	for i, k := range keys {
		got, err := Decode(k, table, seed, p)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if !got.Equal(values[i]) {
			t.Fatalf("key %d: decode mismatch", i)
		}
	}
}

func TestDecodeNonMemberIsNotAValue(t *testing.T) {
	const n = 200
	keys := randomKeys(t, n)
	values := randomElts(t, n)
	p := NewParams(n)

	table, seed := encodeWithRetry(t, keys, values, p)

	outside := randomKeys(t, 32)
	collisions := 0
	for _, k := range outside {
		got, err := Decode(k, table, seed, p)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		for _, v := range values {
			if got.Equal(v) {
				collisions++
			}
		}
	}
	if collisions > 1 {
		t.Fatalf("unexpectedly many collisions with encoded values: %d", collisions)
	}
}

func TestEncodeRejectsLengthMismatch(t *testing.T) {
	keys := randomKeys(t, 4)
	values := randomElts(t, 3)
	if _, err := Encode(keys, values, 0, NewParams(4)); err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
}

func TestParamsValidate(t *testing.T) {
	bad := Params{Size: 10, BandLength: 20}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error when band length exceeds size")
	}

	good := NewParams(1000)
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecodeRejectsWrongTableSize(t *testing.T) {
	keys := randomKeys(t, 10)
	values := randomElts(t, 10)
	p := NewParams(10)
	table, seed := encodeWithRetry(t, keys, values, p)

	_, err := Decode(keys[0], table[:len(table)-1], seed, p)
	if err == nil {
		t.Fatal("expected error for mismatched table size")
	}
}
