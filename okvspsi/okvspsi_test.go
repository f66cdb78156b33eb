//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package okvspsi

import (
	"crypto/rand"
	"sort"
	"sync"
	"testing"

	"github.com/markkurossi/fuzzypsi/env"
	"github.com/markkurossi/fuzzypsi/fingerprint"
	"github.com/markkurossi/fuzzypsi/ot"
	"github.com/markkurossi/fuzzypsi/wire"
)

func randomFingerprint(t *testing.T) fingerprint.Fingerprint {
	t.Helper()
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	return fingerprint.FromBytes(buf[:])
}

func fpString(fp fingerprint.Fingerprint) string {
	return fp.String()
}

func TestOKVSPSIIntersection(t *testing.T) {
	config := &env.Config{Rand: rand.Reader}

	const nCommon = 15
	const nReceiverOnly = 10
	const nSenderOnly = 12

	common := make([]fingerprint.Fingerprint, nCommon)
	for i := range common {
		common[i] = randomFingerprint(t)
	}

	receiverItems := append([]fingerprint.Fingerprint{}, common...)
	for i := 0; i < nReceiverOnly; i++ {
		receiverItems = append(receiverItems, randomFingerprint(t))
	}
	senderItems := append([]fingerprint.Fingerprint{}, common...)
	for i := 0; i < nSenderOnly; i++ {
		senderItems = append(senderItems, randomFingerprint(t))
	}

	c0, c1 := wire.Pipe()
	oti0 := ot.NewCO()
	oti1 := ot.NewCO()

	var wg sync.WaitGroup
	wg.Add(2)

	var matched []fingerprint.Fingerprint
	var recvErr, sendErr error

	go func() {
		defer wg.Done()
		if err := oti0.InitSender(c0); err != nil {
			recvErr = err
			return
		}
		rc, err := NewReceiver(config, oti0, c0)
		if err != nil {
			recvErr = err
			return
		}
		matched, recvErr = rc.Run(receiverItems)
	}()

	go func() {
		defer wg.Done()
		if err := oti1.InitReceiver(c1); err != nil {
			sendErr = err
			return
		}
		s, err := NewSender(config, oti1, c1)
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

	if len(matched) != len(common) {
		t.Fatalf("matched %d items, want %d", len(matched), len(common))
	}

	want := make(map[string]bool, len(common))
	for _, fp := range common {
		want[fpString(fp)] = true
	}
	got := make([]string, len(matched))
	for i, fp := range matched {
		got[i] = fpString(fp)
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

func TestOKVSPSIEmptyIntersection(t *testing.T) {
	config := &env.Config{Rand: rand.Reader}

	receiverItems := make([]fingerprint.Fingerprint, 8)
	for i := range receiverItems {
		receiverItems[i] = randomFingerprint(t)
	}
	senderItems := make([]fingerprint.Fingerprint, 8)
	for i := range senderItems {
		senderItems[i] = randomFingerprint(t)
	}

	c0, c1 := wire.Pipe()
	oti0 := ot.NewCO()
	oti1 := ot.NewCO()

	var wg sync.WaitGroup
	wg.Add(2)

	var matched []fingerprint.Fingerprint
	var recvErr, sendErr error

	go func() {
		defer wg.Done()
		if err := oti0.InitSender(c0); err != nil {
			recvErr = err
			return
		}
		rc, err := NewReceiver(config, oti0, c0)
		if err != nil {
			recvErr = err
			return
		}
		matched, recvErr = rc.Run(receiverItems)
	}()

	go func() {
		defer wg.Done()
		if err := oti1.InitReceiver(c1); err != nil {
			sendErr = err
			return
		}
		s, err := NewSender(config, oti1, c1)
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
	if len(matched) != 0 {
		t.Fatalf("expected no matches, got %d", len(matched))
	}
}
