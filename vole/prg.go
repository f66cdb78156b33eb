//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package vole

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/markkurossi/fuzzypsi/gf128"
	"github.com/markkurossi/fuzzypsi/ot"
)

// expandLabel derives a pseudorandom GF(2^128) field element from an
// IKNP OT label, using the label bytes as an AES-128 key and a zero
// IV counter-mode keystream, matching the AES-CTR PRG style of
// otext/prg.go's prgAESCTR (label -> pseudorandom bytes).
func expandLabel(l ot.LabelData) gf128.Elt {
	block, err := aes.NewCipher(l[:])
	if err != nil {
		panic(err)
	}
	var iv [16]byte
	stream := cipher.NewCTR(block, iv[:])
	var buf [16]byte
	stream.XORKeyStream(buf[:], buf[:])
	return gf128.FromBytes(buf[:])
}
