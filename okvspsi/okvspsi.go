//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package okvspsi implements the OKVS/VOLE PSI back-end (§4.6): a
// two-party protocol that reduces private set intersection to one
// Band-OKVS encoding and one VOLE correlation, with per-item cost
// dominated by a handful of GF(2^128) operations rather than a
// homomorphic ciphertext evaluation.
//
// Receiver encodes its fingerprints into an OKVS table P (value at
// key k is k itself), masks a VOLE share A with P, and sends A' = A
// XOR P. Sender combines A' with its VOLE share (B, Delta) into K = B
// XOR Delta*A', decodes K under each of its own fingerprints s to get
// m_s = Decode(s, K) XOR Delta*s, and returns {m_s}. Receiver decodes
// its VOLE share C under each of its own fingerprints r to get m_r =
// Decode(r, C); r is in the intersection iff m_r equals some m_s.
package okvspsi

import (
	"encoding/binary"
	"io"

	"github.com/markkurossi/fuzzypsi/env"
	"github.com/markkurossi/fuzzypsi/fingerprint"
	"github.com/markkurossi/fuzzypsi/fperr"
	"github.com/markkurossi/fuzzypsi/gf128"
	"github.com/markkurossi/fuzzypsi/okvs"
	"github.com/markkurossi/fuzzypsi/ot"
	"github.com/markkurossi/fuzzypsi/vole"
	"github.com/markkurossi/fuzzypsi/wire"
)

// Receiver drives the receiver side of the OKVS/VOLE PSI protocol.
type Receiver struct {
	conn   *wire.Conn
	vole   *vole.Sender
	config *env.Config
}

// Sender drives the sender side of the OKVS/VOLE PSI protocol.
type Sender struct {
	conn   *wire.Conn
	vole   *vole.Receiver
	delta  gf128.Elt
	config *env.Config
}

// NewReceiver runs base-OT setup for the receiver's VOLE role (the
// party contributing the private input vector A) over conn.
func NewReceiver(config *env.Config, base ot.OT, conn *wire.Conn) (*Receiver, error) {
	v, err := vole.NewSender(base, conn, config.GetRandom())
	if err != nil {
		return nil, fperr.New(fperr.ProtocolMismatch, "okvspsi.NewReceiver", err)
	}
	return &Receiver{conn: conn, vole: v, config: config}, nil
}

// NewSender runs base-OT setup for the sender's VOLE role (the party
// holding the private correlation scalar Delta) over conn.
func NewSender(config *env.Config, base ot.OT, conn *wire.Conn) (*Sender, error) {
	delta, err := randomElt(config.GetRandom())
	if err != nil {
		return nil, fperr.New(fperr.Internal, "okvspsi.NewSender", err)
	}
	v, err := vole.NewReceiver(base, conn, config.GetRandom(), delta)
	if err != nil {
		return nil, fperr.New(fperr.ProtocolMismatch, "okvspsi.NewSender", err)
	}
	return &Sender{conn: conn, vole: v, delta: delta, config: config}, nil
}

func randomElt(r io.Reader) (gf128.Elt, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return gf128.Elt{}, err
	}
	return gf128.FromBytes(buf[:]), nil
}

func fpElt(fp fingerprint.Fingerprint) gf128.Elt {
	b := fp.Bytes()
	return gf128.FromBytes(b[:])
}

// Run executes the receiver side for the fingerprint set items,
// returning the subset present in the sender's set.
func (rc *Receiver) Run(items []fingerprint.Fingerprint) ([]fingerprint.Fingerprint, error) {
	// Overlapping neighborhoods repeat prefixes, and so fingerprints;
	// each distinct key enters the OKVS once.
	seen := make(map[fingerprint.Fingerprint]bool, len(items))
	var keys []fingerprint.Fingerprint
	for _, fp := range items {
		if !seen[fp] {
			seen[fp] = true
			keys = append(keys, fp)
		}
	}
	params := okvs.NewParams(len(keys))
	values := make([]gf128.Elt, len(keys))
	for i, fp := range keys {
		values[i] = fpElt(fp)
	}

	kRetry := rc.config.GetKRetry()
	var table []gf128.Elt
	var seed uint64
	var encErr error
	for attempt := 0; attempt < kRetry; attempt++ {
		seed = uint64(attempt)
		table, encErr = okvs.Encode(keys, values, seed, params)
		if encErr == nil {
			break
		}
		if kind, ok := fperr.KindOf(encErr); !ok || kind != fperr.EncodingFailure {
			return nil, encErr
		}
	}
	if encErr != nil {
		return nil, fperr.Newf(fperr.EncodingFailure, "okvspsi.Receiver.Run",
			"okvs encode failed after %d attempts", kRetry)
	}

	a := make([]gf128.Elt, params.Size)
	rnd := rc.config.GetRandom()
	for i := range a {
		e, err := randomElt(rnd)
		if err != nil {
			return nil, fperr.New(fperr.Internal, "okvspsi.Receiver.Run", err)
		}
		a[i] = e
	}

	aPrime := make([]gf128.Elt, params.Size)
	for i := range aPrime {
		aPrime[i] = gf128.Add(a[i], table[i])
	}

	if err := rc.conn.SendFrame(wire.TagVoleAPrime, encodeAPrime(params, seed, aPrime)); err != nil {
		return nil, fperr.New(fperr.ProtocolMismatch, "okvspsi.Receiver.Run", err)
	}

	c, err := rc.vole.Extend(a)
	if err != nil {
		return nil, err
	}

	_, payload, err := rc.conn.RecvFrame(wire.TagResultPackage)
	if err != nil {
		return nil, fperr.New(fperr.ProtocolMismatch, "okvspsi.Receiver.Run", err)
	}
	ms, err := decodeEltSlice(payload)
	if err != nil {
		return nil, err
	}

	senderSet := make(map[[16]byte]struct{}, len(ms))
	for _, m := range ms {
		senderSet[m.Bytes()] = struct{}{}
	}

	var matched []fingerprint.Fingerprint
	for i, fp := range items {
		mr, err := okvs.Decode(fp, c, seed, params)
		if err != nil {
			return nil, err
		}
		if _, ok := senderSet[mr.Bytes()]; ok {
			matched = append(matched, items[i])
		}
	}
	return matched, nil
}

// Run executes the sender side for the fingerprint set items.
func (s *Sender) Run(items []fingerprint.Fingerprint) error {
	_, payload, err := s.conn.RecvFrame(wire.TagVoleAPrime)
	if err != nil {
		return fperr.New(fperr.ProtocolMismatch, "okvspsi.Sender.Run", err)
	}
	params, seed, aPrime, err := decodeAPrime(payload)
	if err != nil {
		return err
	}

	b, err := s.vole.Extend(len(aPrime))
	if err != nil {
		return err
	}
	if len(b) != len(aPrime) {
		return fperr.Newf(fperr.ProtocolMismatch, "okvspsi.Sender.Run",
			"vole extend length %d does not match A' length %d", len(b), len(aPrime))
	}

	k := make([]gf128.Elt, len(b))
	for i := range k {
		k[i] = gf128.Add(b[i], gf128.Mul(s.delta, aPrime[i]))
	}

	ms := make([]gf128.Elt, len(items))
	for i, item := range items {
		d, err := okvs.Decode(item, k, seed, params)
		if err != nil {
			return err
		}
		ms[i] = gf128.Add(d, gf128.Mul(s.delta, fpElt(item)))
	}

	if err := s.conn.SendFrame(wire.TagResultPackage, encodeEltSlice(ms)); err != nil {
		return fperr.New(fperr.ProtocolMismatch, "okvspsi.Sender.Run", err)
	}
	return nil
}

// --- wire encoding of the A' and result-package messages ---

func encodeAPrime(p okvs.Params, seed uint64, values []gf128.Elt) []byte {
	buf := make([]byte, 4+4+8, 16+len(values)*16)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(p.Size))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.BandLength))
	binary.LittleEndian.PutUint64(buf[8:16], seed)
	return append(buf, encodeEltSlice(values)...)
}

func decodeAPrime(data []byte) (okvs.Params, uint64, []gf128.Elt, error) {
	if len(data) < 16 {
		return okvs.Params{}, 0, nil, fperr.Newf(fperr.Truncated, "okvspsi.decodeAPrime",
			"header truncated: got %d bytes", len(data))
	}
	p := okvs.Params{
		Size:       int(binary.LittleEndian.Uint32(data[0:4])),
		BandLength: int(binary.LittleEndian.Uint32(data[4:8])),
	}
	seed := binary.LittleEndian.Uint64(data[8:16])
	values, err := decodeEltSlice(data[16:])
	if err != nil {
		return okvs.Params{}, 0, nil, err
	}
	if len(values) != p.Size {
		return okvs.Params{}, 0, nil, fperr.Newf(fperr.Truncated, "okvspsi.decodeAPrime",
			"expected %d elements, got %d", p.Size, len(values))
	}
	return p, seed, values, nil
}

func encodeEltSlice(values []gf128.Elt) []byte {
	out := make([]byte, len(values)*16)
	for i, v := range values {
		b := v.Bytes()
		copy(out[i*16:], b[:])
	}
	return out
}

func decodeEltSlice(data []byte) ([]gf128.Elt, error) {
	if len(data)%16 != 0 {
		return nil, fperr.Newf(fperr.Truncated, "okvspsi.decodeEltSlice",
			"payload length %d is not a multiple of 16", len(data))
	}
	out := make([]gf128.Elt, len(data)/16)
	for i := range out {
		out[i] = gf128.FromBytes(data[i*16 : i*16+16])
	}
	return out, nil
}
