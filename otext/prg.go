//
// Copyright (c) 2025 Markku Rossi
//
// All rights reserved.
//

// Package otext implements the IKNP OT extension: from a handful of
// package ot base transfers it derandomizes millions of derived OTs,
// which vole.Sender/vole.Receiver consume to build the GF(2^128)
// correlation the C6 OKVS-PSI back-end runs on.
package otext

import (
	"crypto/aes"
	"crypto/cipher"
)

// prgAESCTR expands key (an IKNP seed label) into len(out) pseudorandom
// bytes by XORing an AES-CTR keystream over out in place.
func prgAESCTR(key []byte, out []byte) {
	block, err := aes.NewCipher(key)
	if err != nil {
		panic(err)
	}

	var iv [16]byte
	stream := cipher.NewCTR(block, iv[:])

	stream.XORKeyStream(out[:], out[:])
}
