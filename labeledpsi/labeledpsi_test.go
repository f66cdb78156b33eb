//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package labeledpsi

import (
	"crypto/rand"
	"sort"
	"sync"
	"testing"

	"github.com/markkurossi/fuzzypsi/env"
	"github.com/markkurossi/fuzzypsi/fingerprint"
	"github.com/markkurossi/fuzzypsi/heparams"
	"github.com/markkurossi/fuzzypsi/wire"
)

func randomFP(t *testing.T) fingerprint.Fingerprint {
	t.Helper()
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	return fingerprint.FromBytes(buf[:])
}

func runProtocol(t *testing.T, params *heparams.File, receiverItems, senderItems []fingerprint.Fingerprint) []fingerprint.Fingerprint {
	t.Helper()
	config := &env.Config{Rand: rand.Reader}
	c0, c1 := wire.Pipe()

	var wg sync.WaitGroup
	wg.Add(2)

	var matched []fingerprint.Fingerprint
	var recvErr, sendErr error

	go func() {
		defer wg.Done()
		rc := NewReceiver(config, params, c0)
		matched, recvErr = rc.Run(receiverItems)
	}()
	go func() {
		defer wg.Done()
		s, err := NewSender(config, params, c1)
		if err != nil {
			sendErr = err
			return
		}
		sendErr = s.Run(senderItems)
	}()

	wg.Wait()
	if recvErr != nil {
		t.Fatalf("receiver: %v", recvErr)
	}
	if sendErr != nil {
		t.Fatalf("sender: %v", sendErr)
	}
	return matched
}

func TestLabeledPSIIntersection(t *testing.T) {
	const nCommon = 6
	const nReceiverOnly = 5
	const nSenderOnly = 20

	common := make([]fingerprint.Fingerprint, nCommon)
	for i := range common {
		common[i] = randomFP(t)
	}
	receiverItems := append([]fingerprint.Fingerprint{}, common...)
	for i := 0; i < nReceiverOnly; i++ {
		receiverItems = append(receiverItems, randomFP(t))
	}
	senderItems := append([]fingerprint.Fingerprint{}, common...)
	for i := 0; i < nSenderOnly; i++ {
		senderItems = append(senderItems, randomFP(t))
	}

	params, err := heparams.Select(len(senderItems), len(receiverItems))
	if err != nil {
		t.Fatalf("heparams.Select: %v", err)
	}

	matched := runProtocol(t, params, receiverItems, senderItems)

	want := make(map[string]bool, len(common))
	for _, fp := range common {
		want[fp.String()] = true
	}
	got := make([]string, len(matched))
	for i, fp := range matched {
		got[i] = fp.String()
	}
	sort.Strings(got)
	for _, s := range got {
		if !want[s] {
			t.Fatalf("unexpected match %s not in common set", s)
		}
		delete(want, s)
	}
	if len(want) != 0 {
		t.Fatalf("%d common items were not reported as matched", len(want))
	}
}

func TestLabeledPSIEmptyIntersection(t *testing.T) {
	receiverItems := make([]fingerprint.Fingerprint, 5)
	for i := range receiverItems {
		receiverItems[i] = randomFP(t)
	}
	senderItems := make([]fingerprint.Fingerprint, 20)
	for i := range senderItems {
		senderItems[i] = randomFP(t)
	}

	params, err := heparams.Select(len(senderItems), len(receiverItems))
	if err != nil {
		t.Fatalf("heparams.Select: %v", err)
	}

	matched := runProtocol(t, params, receiverItems, senderItems)
	if len(matched) != 0 {
		t.Fatalf("expected no matches, got %d", len(matched))
	}
}

func TestPolyFromRootsHasNoRootsWhenEmpty(t *testing.T) {
	q := uint64(65537)
	coeffs := polyFromRoots(nil, q)
	if len(coeffs) != 1 || coeffs[0] != 1 {
		t.Fatalf("empty root list should yield constant [1], got %v", coeffs)
	}
}

func TestPolyFromRootsEvaluatesToZeroAtRoots(t *testing.T) {
	q := uint64(65537)
	roots := []uint64{3, 17, 401}
	coeffs := polyFromRoots(roots, q)
	for _, r := range roots {
		acc := uint64(0)
		for d := len(coeffs) - 1; d >= 0; d-- {
			acc = addmod(mulmod(acc, r, q), coeffs[d], q)
		}
		if acc != 0 {
			t.Fatalf("polynomial does not vanish at root %d: got %d", r, acc)
		}
	}
}
