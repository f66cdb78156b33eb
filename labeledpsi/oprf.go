//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package labeledpsi

import (
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"io"
	"math/big"

	"github.com/markkurossi/fuzzypsi/fingerprint"
)

// curve is the group the OPRF is defined over, matching the P256
// choice already made by ot.CO for its curve-based base OT.
func curve() elliptic.Curve {
	return elliptic.P256()
}

// Key is the sender's private OPRF key.
type Key struct {
	k *big.Int
}

// NewKey draws a fresh random OPRF key.
func NewKey(r io.Reader) (*Key, error) {
	k, err := rand.Int(r, curve().Params().N)
	if err != nil {
		return nil, err
	}
	return &Key{k: k}, nil
}

// hashToPoint maps arbitrary data to a curve point by hashing it to a
// scalar and multiplying the group generator by that scalar. Every
// scalar multiple of the generator is a valid point, so this avoids
// the quadratic-residue search a general hash-to-curve needs while
// still landing in the same group the OPRF operates over.
func hashToPoint(data []byte) (x, y *big.Int) {
	h := sha256.Sum256(data)
	s := new(big.Int).SetBytes(h[:])
	s.Mod(s, curve().Params().N)
	return curve().ScalarBaseMult(s.Bytes())
}

// point is a curve point plus its blinding factor, kept by the
// receiver between the blind and unblind steps.
type point struct {
	x, y  *big.Int
	blind *big.Int
}

// blindItem hides fp behind a fresh random exponent, returning the point
// to send to the sender and the local state needed to unblind the
// sender's answer.
func blindItem(r io.Reader, fp fingerprint.Fingerprint) (point, error) {
	b := fp.Bytes()
	hx, hy := hashToPoint(b[:])
	blind, err := rand.Int(r, curve().Params().N)
	if err != nil {
		return point{}, err
	}
	bx, by := curve().ScalarMult(hx, hy, blind.Bytes())
	return point{x: bx, y: by, blind: blind}, nil
}

// evaluate applies the sender's private key to a blinded point.
func (k *Key) evaluate(x, y *big.Int) (ex, ey *big.Int) {
	return curve().ScalarMult(x, y, k.k.Bytes())
}

// unblind removes p's blinding factor from the sender's evaluated
// point, yielding the deterministic OPRF output F_k(fp).
func unblind(p point, ex, ey *big.Int) (fx, fy *big.Int) {
	inv := new(big.Int).ModInverse(p.blind, curve().Params().N)
	return curve().ScalarMult(ex, ey, inv.Bytes())
}

// outputFingerprint folds an OPRF output point down to a 128-bit
// fingerprint via the same truncated-SHA-256 construction the plain
// item fingerprinter uses, so OPRF outputs and item fingerprints share
// the wire representation the rest of the pipeline expects.
func outputFingerprint(x, y *big.Int) fingerprint.Fingerprint {
	marshaled := elliptic.Marshal(curve(), x, y)
	return fingerprint.New(string(marshaled))
}

// marshalPoint / unmarshalPoint frame a curve point for the wire.
func marshalPoint(x, y *big.Int) []byte {
	return elliptic.Marshal(curve(), x, y)
}

func unmarshalPoint(data []byte) (x, y *big.Int, ok bool) {
	x, y = elliptic.Unmarshal(curve(), data)
	return x, y, x != nil
}
