//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package pipeline implements the pipeline coordinator (spec §4.7):
// C2 (prefix encoding) -> C3 (fingerprinting) -> C5/C6 (PSI back-end)
// -> exact-distance post-filter, composed into single-party session
// drivers plus same-process convenience runners used by the tests,
// which compare them against ground truth without a real two-party
// session.
package pipeline

import (
	"encoding/binary"
	"io"
	"sort"
	"sync"

	"math/big"

	"github.com/markkurossi/fuzzypsi/env"
	"github.com/markkurossi/fuzzypsi/fingerprint"
	"github.com/markkurossi/fuzzypsi/fperr"
	"github.com/markkurossi/fuzzypsi/heparams"
	"github.com/markkurossi/fuzzypsi/ot"
	"github.com/markkurossi/fuzzypsi/prefix"
	"github.com/markkurossi/fuzzypsi/psi"
	"github.com/markkurossi/fuzzypsi/wire"
)

// SessionID is a random identifier for a pipeline run. Nothing in this
// package sends it to the peer or writes it to logs or reports.
type SessionID uint64

// NewSessionID draws a fresh random session identifier from r.
func NewSessionID(r io.Reader) (SessionID, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return SessionID(binary.LittleEndian.Uint64(buf[:])), nil
}

// Match is one bit-exact fuzzy-match pair surviving the post-filter.
type Match struct {
	X *big.Int
	Y *big.Int
}

// EncodedSet is one party's C2-encoded, C3-fingerprinted values, with
// the reverse map from fingerprint index back to originating value
// index needed to translate a PSI match set back to ids (spec §4.7).
type EncodedSet struct {
	Fingerprints []fingerprint.Fingerprint
	origin       []int
}

// EncodeSender runs C2 in sender (wildcard-extension) mode followed
// by C3 over values.
func EncodeSender(config *env.Config, values []*big.Int, delta, k int) EncodedSet {
	lists := prefix.SenderPrefixesBatch(values, delta, k, config.GetWorkers())
	return flatten(config, lists)
}

// EncodeReceiver runs C2 in receiver (neighborhood-decomposition)
// mode followed by C3 over values.
func EncodeReceiver(config *env.Config, values []*big.Int, delta, k int) EncodedSet {
	lists := prefix.ReceiverPrefixesBatch(values, delta, k, config.GetWorkers())
	return flatten(config, lists)
}

func flatten(config *env.Config, lists [][]prefix.Prefix) EncodedSet {
	var strs []string
	var origin []int
	for i, ps := range lists {
		for _, p := range ps {
			strs = append(strs, string(p))
			origin = append(origin, i)
		}
	}
	fps := fingerprint.Batch(strs, config.GetWorkers())
	return EncodedSet{Fingerprints: fps, origin: origin}
}

// ReverseMap translates a PSI match set back to the sorted set of
// originating value indices (spec §4.7's "reverse-map matched
// fingerprints to receiver ids").
func (e EncodedSet) ReverseMap(matched []fingerprint.Fingerprint) []int {
	set := make(map[fingerprint.Fingerprint]bool, len(matched))
	for _, m := range matched {
		set[m] = true
	}
	seen := make(map[int]bool)
	var idx []int
	for i, fp := range e.Fingerprints {
		if !set[fp] {
			continue
		}
		origin := e.origin[i]
		if !seen[origin] {
			seen[origin] = true
			idx = append(idx, origin)
		}
	}
	sort.Ints(idx)
	return idx
}

// SenderRun drives the sender side of one PSI session over opts.Conn:
// encode+fingerprint values, then hand them to the selected back-end.
// The sender learns nothing about the intersection.
func SenderRun(config *env.Config, values []*big.Int, delta, k int, protocol psi.Protocol, opts psi.Options) error {
	if protocol == psi.ProtocolOKVS {
		if opts.BaseOT == nil {
			return fperr.Newf(fperr.ParameterInvalid, "pipeline.SenderRun", "OKVS protocol requires a base OT")
		}
		if err := opts.BaseOT.InitReceiver(opts.Conn); err != nil {
			return fperr.New(fperr.ProtocolMismatch, "pipeline.SenderRun", err)
		}
	}
	enc := EncodeSender(config, values, delta, k)
	s, err := psi.NewSender(protocol, opts)
	if err != nil {
		return err
	}
	return s.Run(enc.Fingerprints)
}

// ReceiverRun drives the receiver side of one PSI session over
// opts.Conn, returning the subset of values present in the sender's
// set (before the exact-distance post-filter of PostFilter).
func ReceiverRun(config *env.Config, values []*big.Int, delta, k int, protocol psi.Protocol, opts psi.Options) ([]*big.Int, error) {
	if protocol == psi.ProtocolOKVS {
		if opts.BaseOT == nil {
			return nil, fperr.Newf(fperr.ParameterInvalid, "pipeline.ReceiverRun", "OKVS protocol requires a base OT")
		}
		if err := opts.BaseOT.InitSender(opts.Conn); err != nil {
			return nil, fperr.New(fperr.ProtocolMismatch, "pipeline.ReceiverRun", err)
		}
	}
	enc := EncodeReceiver(config, values, delta, k)
	r, err := psi.NewReceiver(protocol, opts)
	if err != nil {
		return nil, err
	}
	matched, err := r.Run(enc.Fingerprints)
	if err != nil {
		return nil, err
	}
	idx := enc.ReverseMap(matched)
	out := make([]*big.Int, len(idx))
	for i, ix := range idx {
		out[i] = values[ix]
	}
	return out, nil
}

// PostFilter applies spec §4.7's exact-distance post-filter: emit
// (x, y) for every x in x and y in yHat with |x-y| <= delta. yHat is
// typically the candidate set ReceiverRun returned; x and yHat need
// not be sorted.
func PostFilter(x, yHat []*big.Int, delta int) []Match {
	xs := sortedCopy(x)
	d := big.NewInt(int64(delta))
	var out []Match
	for _, y := range yHat {
		lo := new(big.Int).Sub(y, d)
		hi := new(big.Int).Add(y, d)
		i := sort.Search(len(xs), func(i int) bool { return xs[i].Cmp(lo) >= 0 })
		for ; i < len(xs) && xs[i].Cmp(hi) <= 0; i++ {
			out = append(out, Match{X: xs[i], Y: y})
		}
	}
	return out
}

// RunLocal computes the ground-truth fuzzy intersection directly,
// without any PSI back-end: every (x, y) with |x-y| <= delta. Used
// for offline dry runs and as the oracle testable properties check
// PSI-mediated results against.
func RunLocal(x, y []*big.Int, delta int) []Match {
	return PostFilter(x, y, delta)
}

func sortedCopy(vs []*big.Int) []*big.Int {
	out := make([]*big.Int, len(vs))
	copy(out, vs)
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}

// RunLabeledHE runs a full two-party session over an in-process pipe
// using the labeled-HE back-end (C5), returning the post-filtered
// exact fuzzy intersection. Both parties run in this call, which is
// the shape the end-to-end tests need; a real
// deployment instead runs SenderRun and ReceiverRun as two separate
// processes joined by a real network wire.Conn.
func RunLabeledHE(config *env.Config, x, y []*big.Int, delta, k int) ([]Match, error) {
	params, err := heparams.Select(len(x), len(y))
	if err != nil {
		return nil, err
	}
	c0, c1 := wire.Pipe()

	var wg sync.WaitGroup
	wg.Add(2)
	var sendErr, recvErr error
	var yHat []*big.Int

	go func() {
		defer wg.Done()
		sendErr = SenderRun(config, x, delta, k, psi.ProtocolLabeledHE,
			psi.Options{Config: config, Conn: c1, HEParams: params})
	}()
	go func() {
		defer wg.Done()
		yHat, recvErr = ReceiverRun(config, y, delta, k, psi.ProtocolLabeledHE,
			psi.Options{Config: config, Conn: c0, HEParams: params})
	}()
	wg.Wait()

	if sendErr != nil {
		return nil, sendErr
	}
	if recvErr != nil {
		return nil, recvErr
	}
	return PostFilter(x, yHat, delta), nil
}

// RunOKVS runs a full two-party session over an in-process pipe using
// the OKVS/VOLE back-end (C6), returning the post-filtered exact
// fuzzy intersection. See RunLabeledHE for the same in-process-vs-real-
// deployment caveat.
func RunOKVS(config *env.Config, x, y []*big.Int, delta, k int) ([]Match, error) {
	c0, c1 := wire.Pipe()
	oti0 := ot.NewCO()
	oti1 := ot.NewCO()

	var wg sync.WaitGroup
	wg.Add(2)
	var sendErr, recvErr error
	var yHat []*big.Int

	go func() {
		defer wg.Done()
		sendErr = SenderRun(config, x, delta, k, psi.ProtocolOKVS,
			psi.Options{Config: config, Conn: c1, BaseOT: oti1})
	}()
	go func() {
		defer wg.Done()
		yHat, recvErr = ReceiverRun(config, y, delta, k, psi.ProtocolOKVS,
			psi.Options{Config: config, Conn: c0, BaseOT: oti0})
	}()
	wg.Wait()

	if sendErr != nil {
		return nil, sendErr
	}
	if recvErr != nil {
		return nil, recvErr
	}
	return PostFilter(x, yHat, delta), nil
}
