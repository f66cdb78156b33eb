//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gf128

import (
	"math/rand"
	"testing"
)

func randElt(r *rand.Rand) Elt {
	return Elt{Hi: r.Uint64(), Lo: r.Uint64()}
}

func TestAddSelfInverse(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		a := randElt(r)
		if !Add(a, a).IsZero() {
			t.Fatalf("a+a != 0 for %v", a)
		}
	}
}

func TestMulIdentity(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 100; i++ {
		a := randElt(r)
		if !Mul(a, One).Equal(a) {
			t.Fatalf("a*1 != a for %v", a)
		}
		if !Mul(a, Zero).IsZero() {
			t.Fatalf("a*0 != 0 for %v", a)
		}
	}
}

func TestMulCommutative(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		a, b := randElt(r), randElt(r)
		if !Mul(a, b).Equal(Mul(b, a)) {
			t.Fatalf("multiplication not commutative for %v, %v", a, b)
		}
	}
}

func TestMulDistributesOverAdd(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	for i := 0; i < 50; i++ {
		a, b, c := randElt(r), randElt(r), randElt(r)
		lhs := Mul(a, Add(b, c))
		rhs := Add(Mul(a, b), Mul(a, c))
		if !lhs.Equal(rhs) {
			t.Fatalf("distributivity failed for %v, %v, %v", a, b, c)
		}
	}
}

func TestMulXMatchesMulByTwo(t *testing.T) {
	two := Elt{Lo: 2}
	r := rand.New(rand.NewSource(5))
	for i := 0; i < 100; i++ {
		a := randElt(r)
		if !MulX(a).Equal(Mul(a, two)) {
			t.Fatalf("MulX(%v) != a*2", a)
		}
	}
}

func TestInverse(t *testing.T) {
	r := rand.New(rand.NewSource(6))
	for i := 0; i < 50; i++ {
		a := randElt(r)
		if a.IsZero() {
			continue
		}
		inv := Inverse(a)
		if !Mul(a, inv).Equal(One) {
			t.Fatalf("a * a^-1 != 1 for %v", a)
		}
	}
}

func TestInverseOfZero(t *testing.T) {
	if !Inverse(Zero).IsZero() {
		t.Fatalf("Inverse(0) should be 0 by convention")
	}
}

func TestBytesRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		a := randElt(r)
		b := a.Bytes()
		got := FromBytes(b[:])
		if !got.Equal(a) {
			t.Fatalf("Bytes/FromBytes round trip failed for %v", a)
		}
	}
}

func TestBitMatchesShift(t *testing.T) {
	a := Elt{Lo: 0b1011, Hi: 0}
	want := []bool{true, true, false, true}
	for i, w := range want {
		if a.Bit(i) != w {
			t.Errorf("Bit(%d) = %v, want %v", i, a.Bit(i), w)
		}
	}
	hiElt := Elt{Hi: 1}
	if !hiElt.Bit(64) {
		t.Errorf("Bit(64) of Hi=1 should be set")
	}
}
