//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package dataset

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/markkurossi/fuzzypsi/env"
)

// detReader is a deterministic io.Reader over math/rand, used so
// tests are reproducible without touching crypto/rand.
type detReader struct {
	r *rand.Rand
}

func (d *detReader) Read(p []byte) (int, error) {
	return d.r.Read(p)
}

func newConfig(seed int64) *env.Config {
	return &env.Config{Rand: &detReader{r: rand.New(rand.NewSource(seed))}}
}

func TestSynthesizeMatchCount(t *testing.T) {
	config := newConfig(1)
	res, err := Synthesize(config, Params{NX: 2000, NY: 200, Delta: 50, T: 40, K: 32})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if res.Matched != 40 {
		t.Fatalf("Matched = %d, want 40", res.Matched)
	}
	if len(res.Y) != 200 {
		t.Fatalf("len(Y) = %d, want 200", len(res.Y))
	}

	// Verify exactly T of Y have an X within delta.
	got := 0
	for _, y := range res.Y {
		if hasNeighbor(res.X, y, 50) {
			got++
		}
	}
	if got != 40 {
		t.Errorf("recount: %d values of Y have a neighbor in X, want 40", got)
	}
}

func TestSynthesizeUniqueValues(t *testing.T) {
	config := newConfig(2)
	res, err := Synthesize(config, Params{NX: 500, NY: 100, Delta: 10, T: 20, K: 32})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	seen := map[string]bool{}
	for _, x := range res.X {
		if seen[x.String()] {
			t.Fatalf("duplicate X value %s", x)
		}
		seen[x.String()] = true
	}
	seen = map[string]bool{}
	for _, y := range res.Y {
		if seen[y.String()] {
			t.Fatalf("duplicate Y value %s", y)
		}
		seen[y.String()] = true
	}
}

func TestSynthesizeSortedAscending(t *testing.T) {
	config := newConfig(3)
	res, err := Synthesize(config, Params{NX: 300, NY: 50, Delta: 5, T: 10, K: 32})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	for i := 1; i < len(res.X); i++ {
		if res.X[i-1].Cmp(res.X[i]) >= 0 {
			t.Fatalf("X not strictly ascending at index %d", i)
		}
	}
	for i := 1; i < len(res.Y); i++ {
		if res.Y[i-1].Cmp(res.Y[i]) >= 0 {
			t.Fatalf("Y not strictly ascending at index %d", i)
		}
	}
}

func TestSynthesizeDisjointNeighborhoods(t *testing.T) {
	config := newConfig(4)
	res, err := Synthesize(config, Params{NX: 1 << 12, NY: 40, Delta: 50, T: 20, Disjoint: true, K: 32})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	windows := make([]interval, len(res.Y))
	for i, y := range res.Y {
		windows[i] = neighborhood(y, 50, 32)
	}
	for i := 0; i < len(windows); i++ {
		for j := i + 1; j < len(windows); j++ {
			if windows[i].overlaps(windows[j]) {
				t.Errorf("windows %d and %d overlap: [%s,%s] vs [%s,%s]",
					i, j, windows[i].lo, windows[i].hi, windows[j].lo, windows[j].hi)
			}
		}
	}
}

func TestSynthesizeInvalidParams(t *testing.T) {
	config := newConfig(5)
	_, err := Synthesize(config, Params{NX: 10, NY: 5, Delta: 1, T: 6, K: 32})
	if err == nil {
		t.Fatalf("expected error when T > NY")
	}
}

func TestSynthesizeIPv6(t *testing.T) {
	config := newConfig(6)
	res, err := Synthesize(config, Params{NX: 500, NY: 50, Delta: 100, T: 10, K: 128})
	if err != nil {
		t.Fatalf("Synthesize (IPv6): %v", err)
	}
	if res.Matched != 10 {
		t.Fatalf("Matched = %d, want 10", res.Matched)
	}
	max := new(big.Int).Lsh(one, 128)
	for _, x := range res.X {
		if x.Sign() < 0 || x.Cmp(max) >= 0 {
			t.Fatalf("X value %s out of 128-bit range", x)
		}
	}
}
