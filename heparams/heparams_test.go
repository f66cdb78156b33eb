//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package heparams

import "testing"

func TestSelectAllTiers(t *testing.T) {
	sizes := []int{1000, 1 << 15, 1 << 17, 1 << 19}
	for _, s := range sizes {
		f, err := Select(s, s)
		if err != nil {
			t.Fatalf("Select(%d): %v", s, err)
		}
		if err := f.Validate(); err != nil {
			t.Errorf("Select(%d) produced invalid params: %v", s, err)
		}
		if f.TableParams.TableSize < s {
			t.Errorf("Select(%d): table_size=%d smaller than sender set", s, f.TableParams.TableSize)
		}
	}
}

func TestSelectRejectsNonPositive(t *testing.T) {
	if _, err := Select(0, 10); err == nil {
		t.Fatalf("expected error for senderItems=0")
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	f, err := Select(50000, 1000)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	data, err := f.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.SealParams.PlainModulus != f.SealParams.PlainModulus {
		t.Errorf("round trip changed plain_modulus: %d != %d", got.SealParams.PlainModulus, f.SealParams.PlainModulus)
	}
}

func TestUnmarshalRejectsUnknownFields(t *testing.T) {
	f, err := Select(1000, 1000)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	data, _ := f.Marshal()
	// Corrupt: append a stray top-level field.
	bad := append([]byte(nil), data[:len(data)-1]...)
	bad = append(bad, []byte(`,"extra_field":1}`)...)
	if _, err := Unmarshal(bad); err == nil {
		t.Errorf("expected error for unknown top-level field")
	}
}

func TestValidateRejectsBadCongruence(t *testing.T) {
	f, err := Select(1000, 1000)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	f.SealParams.PlainModulus += 2 // break congruence, still keep it plausible-prime-ish
	if err := f.Validate(); err == nil {
		t.Errorf("expected Validate to reject broken congruence")
	}
}

func TestValidateRejectsBadFeltsPerItem(t *testing.T) {
	f, err := Select(1000, 1000)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	f.ItemParams.FeltsPerItem = 3
	if err := f.Validate(); err == nil {
		t.Errorf("expected Validate to reject felts_per_item=3")
	}
}

func TestValidateRejectsMissingQueryPowerOne(t *testing.T) {
	f, err := Select(1000, 1000)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	f.QueryParams.QueryPowers = []int{2, 4}
	if err := f.Validate(); err == nil {
		t.Errorf("expected Validate to reject query_powers without 1")
	}
}
