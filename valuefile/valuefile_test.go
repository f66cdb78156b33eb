//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package valuefile

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
)

func bigs(vs ...int64) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = big.NewInt(v)
	}
	return out
}

func TestWriteReadValuesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "values.txt")
	want := bigs(1000, 2000, 9000)

	if err := WriteValues(path, want); err != nil {
		t.Fatalf("WriteValues: %v", err)
	}
	got, err := ReadValues(path)
	if err != nil {
		t.Fatalf("ReadValues: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Cmp(want[i]) != 0 {
			t.Fatalf("value %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReadValuesIgnoresBlankAndCommentLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "values.txt")
	content := "# a comment\n\n1000\n  \n#2000\n3000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writeRaw: %v", err)
	}
	got, err := ReadValues(path)
	if err != nil {
		t.Fatalf("ReadValues: %v", err)
	}
	want := bigs(1000, 3000)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i].Cmp(want[i]) != 0 {
			t.Fatalf("value %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReadValuesRejectsGarbageLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "values.txt")
	if err := os.WriteFile(path, []byte("1000\nnotanumber\n"), 0o644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
	if _, err := ReadValues(path); err == nil {
		t.Fatalf("expected an error for a non-decimal line")
	}
}

func TestWriteResultOneBasedIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.txt")
	if err := WriteResult(path, bigs(1025, 5000)); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("os.ReadFile: %v", err)
	}
	if want := "1 1025\n2 5000\n"; string(raw) != want {
		t.Fatalf("result file = %q, want %q", raw, want)
	}
	got, err := ReadValues(path)
	if err == nil {
		t.Fatalf("expected ReadValues to reject the '<idx> <value>' result format, got %v", got)
	}
}
