//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package gf128 implements arithmetic in the binary field GF(2^128)
// with reduction polynomial x^128 + x^7 + x^2 + x + 1, the same
// modulus used by AES-GCM's authentication field. It backs the
// OKVS/VOLE PSI back-end (okvs, vole, okvspsi packages), which needs
// field multiplication and inversion over full 128-bit fingerprints
// rather than the fixed-width XOR-only labels used by the garbling
// primitives in ot.Label.
package gf128

import "encoding/binary"

// Elt is an element of GF(2^128), stored as two 64-bit words in the
// same bit order as ot.Label: Hi holds bits [127:64], Lo holds bits
// [63:0], and bit i is the coefficient of x^i.
type Elt struct {
	Hi uint64
	Lo uint64
}

// Zero is the additive identity.
var Zero = Elt{}

// One is the multiplicative identity (the coefficient of x^0).
var One = Elt{Lo: 1}

// Add returns a+b, which in GF(2^n) is XOR.
func Add(a, b Elt) Elt {
	return Elt{Hi: a.Hi ^ b.Hi, Lo: a.Lo ^ b.Lo}
}

// Equal reports whether a and b are the same field element.
func (a Elt) Equal(b Elt) bool {
	return a.Hi == b.Hi && a.Lo == b.Lo
}

// IsZero reports whether a is the additive identity.
func (a Elt) IsZero() bool {
	return a.Hi == 0 && a.Lo == 0
}

// Bytes serializes a in big-endian order (Hi then Lo). Fingerprints
// use their own little-endian layout (fingerprint.Fingerprint.Bytes).
func (a Elt) Bytes() [16]byte {
	var out [16]byte
	binary.BigEndian.PutUint64(out[0:8], a.Hi)
	binary.BigEndian.PutUint64(out[8:16], a.Lo)
	return out
}

// FromBytes parses a big-endian 16-byte encoding produced by Bytes.
func FromBytes(b []byte) Elt {
	return Elt{
		Hi: binary.BigEndian.Uint64(b[0:8]),
		Lo: binary.BigEndian.Uint64(b[8:16]),
	}
}

// Bit returns bit i (0 = coefficient of x^0) of a.
func (a Elt) Bit(i int) bool {
	if i < 64 {
		return (a.Lo>>uint(i))&1 == 1
	}
	return (a.Hi>>uint(i-64))&1 == 1
}

// clmul64 computes the 128-bit carryless (polynomial) product of two
// 64-bit values, split into low and high 64-bit halves. Grounded on
// the bit-at-a-time carryless multiply used by ot/gf128.go's
// clmul64, extended here to feed a full modular reduction.
func clmul64(a, b uint64) (lo, hi uint64) {
	for i := 0; i < 64; i++ {
		if (b>>uint(i))&1 != 0 {
			if i == 0 {
				lo ^= a
			} else {
				lo ^= a << uint(i)
				hi ^= a >> uint(64-i)
			}
		}
	}
	return lo, hi
}

// clmul128 computes the 256-bit carryless product of two 128-bit
// elements as four 64-bit limbs (r0 lowest .. r3 highest).
func clmul128(a, b Elt) (r0, r1, r2, r3 uint64) {
	loLo, loHi := clmul64(a.Lo, b.Lo)
	hiLo, hiHi := clmul64(a.Hi, b.Hi)
	midLo, midHi := clmul64(a.Lo^a.Hi, b.Lo^b.Hi)
	// midLo/midHi currently hold (a.Lo^a.Hi)*(b.Lo^b.Hi); the standard
	// Karatsuba combination step subtracts (==XORs) the lo/hi partial
	// products to recover the cross term a.Lo*b.Hi ^ a.Hi*b.Lo.
	midLo ^= loLo ^ hiLo
	midHi ^= loHi ^ hiHi

	r0 = loLo
	r1 = loHi ^ midLo
	r2 = hiLo ^ midHi
	r3 = hiHi
	return
}

// reduce folds a 256-bit carryless product (r0..r3, r0 lowest) modulo
// x^128 + x^7 + x^2 + x + 1 into a 128-bit field element. This uses
// the standard GCM-style reduction: the two high limbs are folded
// down by the reduction polynomial's low-degree terms in two passes,
// top limb first.
func reduce(r0, r1, r2, r3 uint64) Elt {
	// x^128 = x^7+x^2+x+1, so bit (128+s) of the 256-bit product folds
	// into bits [s, s+7] of the result. Fold the top limb (bits
	// 192-255) first: any overflow it produces lands in limbs[2]
	// (bits 128-191), which is folded in the second pass.
	const poly = 0x87
	limbs := [4]uint64{r0, r1, r2, r3}

	for w := 3; w >= 2; w-- {
		h := limbs[w]
		limbs[w] = 0
		for b := 0; b < 64; b++ {
			if (h>>uint(b))&1 == 0 {
				continue
			}
			shift := (w-2)*64 + b
			limbIdx := shift / 64
			bitOff := uint(shift % 64)
			limbs[limbIdx] ^= poly << bitOff
			if bitOff != 0 {
				limbs[limbIdx+1] ^= poly >> (64 - bitOff)
			}
		}
	}
	return Elt{Lo: limbs[0], Hi: limbs[1]}
}

// Mul returns a*b in GF(2^128).
func Mul(a, b Elt) Elt {
	r0, r1, r2, r3 := clmul128(a, b)
	return reduce(r0, r1, r2, r3)
}

// MulX returns a*x, i.e. a shifted up by one bit position and reduced
// modulo the field polynomial. This is the "doubling" step used to
// combine a run of bit-correlated OT outputs into a single VOLE
// correlation over the full field (see package vole).
func MulX(a Elt) Elt {
	carry := a.Hi >> 63
	hi := (a.Hi << 1) | (a.Lo >> 63)
	lo := a.Lo << 1
	if carry != 0 {
		// x^128 = x^7+x^2+x+1
		lo ^= 0x87
	}
	return Elt{Hi: hi, Lo: lo}
}

// Pow returns a^n by repeated squaring.
func Pow(a Elt, n uint64) Elt {
	result := One
	base := a
	for n > 0 {
		if n&1 == 1 {
			result = Mul(result, base)
		}
		base = Mul(base, base)
		n >>= 1
	}
	return result
}

// Inverse returns a^-1 for a != Zero, using Fermat's little theorem:
// a^(2^128-2) = a^-1 in GF(2^128).
func Inverse(a Elt) Elt {
	if a.IsZero() {
		return Zero
	}
	// 2^128-2 = 0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFE
	result := One
	sq := a
	// Bit 0 of the exponent is 0, all other 127 bits are 1.
	sq = Mul(sq, sq) // a^2, corresponds to bit 1
	for bit := 1; bit < 128; bit++ {
		result = Mul(result, sq)
		sq = Mul(sq, sq)
	}
	return result
}
