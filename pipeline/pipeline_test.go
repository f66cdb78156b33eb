//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package pipeline

import (
	"crypto/rand"
	"math/big"
	"sort"
	"testing"

	"github.com/markkurossi/fuzzypsi/env"
)

func bigs(vs ...int64) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = big.NewInt(v)
	}
	return out
}

func matchStrings(ms []Match) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.X.String() + "," + m.Y.String()
	}
	sort.Strings(out)
	return out
}

func TestRunLocalSpecScenario1(t *testing.T) {
	x := bigs(1000, 2000)
	y := bigs(1025, 1100, 5000)
	got := matchStrings(RunLocal(x, y, 50))
	want := []string{"1000,1025"}
	if len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRunLocalSpecScenario2(t *testing.T) {
	x := bigs(100)
	y := bigs(90, 110, 111)
	got := matchStrings(RunLocal(x, y, 10))
	want := []string{"100,110", "100,90"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRunLocalSpecScenario3(t *testing.T) {
	x := bigs(0)
	y := bigs(0, 1, 2)
	got := matchStrings(RunLocal(x, y, 1))
	want := []string{"0,0", "0,1"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRunLocalEmptyX(t *testing.T) {
	got := RunLocal(nil, bigs(1, 2, 3), 50)
	if len(got) != 0 {
		t.Fatalf("expected no matches with empty X, got %v", got)
	}
}

func TestLabeledHEMatchesGroundTruth(t *testing.T) {
	config := &env.Config{Rand: rand.Reader}
	const delta = 50
	const k = 32

	x := bigs(1000, 2000, 9000)
	y := bigs(1025, 1100, 5000, 8990)

	got := matchStrings(RunLocal(x, y, delta))
	psiGot, err := RunLabeledHE(config, x, y, delta, k)
	if err != nil {
		t.Fatalf("RunLabeledHE: %v", err)
	}
	psiStrings := matchStrings(psiGot)

	if len(got) != len(psiStrings) {
		t.Fatalf("labeled-HE result %v does not match ground truth %v", psiStrings, got)
	}
	for i := range got {
		if got[i] != psiStrings[i] {
			t.Fatalf("labeled-HE result %v does not match ground truth %v", psiStrings, got)
		}
	}
}

func TestOKVSMatchesGroundTruth(t *testing.T) {
	config := &env.Config{Rand: rand.Reader}
	const delta = 10
	const k = 32

	x := bigs(100, 500)
	y := bigs(90, 110, 111, 505)

	got := matchStrings(RunLocal(x, y, delta))
	psiGot, err := RunOKVS(config, x, y, delta, k)
	if err != nil {
		t.Fatalf("RunOKVS: %v", err)
	}
	psiStrings := matchStrings(psiGot)

	if len(got) != len(psiStrings) {
		t.Fatalf("OKVS result %v does not match ground truth %v", psiStrings, got)
	}
	for i := range got {
		if got[i] != psiStrings[i] {
			t.Fatalf("OKVS result %v does not match ground truth %v", psiStrings, got)
		}
	}
}
