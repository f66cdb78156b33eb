//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package psi is the capability boundary selecting between the two
// PSI back-ends the pipeline can run: labeled-HE (spec §4.5, C5) and
// OKVS/VOLE (spec §4.6, C6). Callers pick a Protocol and get back a
// Sender/Receiver pair without needing to know either back-end's
// internal wiring.
package psi

import (
	"errors"

	"github.com/markkurossi/fuzzypsi/env"
	"github.com/markkurossi/fuzzypsi/fingerprint"
	"github.com/markkurossi/fuzzypsi/heparams"
	"github.com/markkurossi/fuzzypsi/labeledpsi"
	"github.com/markkurossi/fuzzypsi/okvspsi"
	"github.com/markkurossi/fuzzypsi/ot"
	"github.com/markkurossi/fuzzypsi/wire"
)

// Protocol selects a PSI back-end.
type Protocol byte

const (
	ProtocolUnsupported Protocol = iota
	ProtocolLabeledHE
	ProtocolOKVS
)

// ErrUnsupportedProtocol is returned by NewSender/NewReceiver for an
// unrecognized or zero-value Protocol.
var ErrUnsupportedProtocol = errors.New("psi: unsupported protocol")

func (p Protocol) String() string {
	switch p {
	case ProtocolLabeledHE:
		return "labeled-he"
	case ProtocolOKVS:
		return "okvs-vole"
	default:
		return "unsupported"
	}
}

// Sender is the sender side of either back-end: it contributes its
// item set and, on success, has revealed nothing about which items
// matched (only the receiver learns the intersection).
type Sender interface {
	Run(items []fingerprint.Fingerprint) error
}

// Receiver is the receiver side of either back-end: Run returns the
// subset of items present in the sender's set.
type Receiver interface {
	Run(items []fingerprint.Fingerprint) ([]fingerprint.Fingerprint, error)
}

// Options carries every back-end-specific dependency a Sender or
// Receiver might need; callers fill in only the fields the chosen
// Protocol actually uses.
type Options struct {
	Config *env.Config
	Conn   *wire.Conn

	// BaseOT is required for ProtocolOKVS.
	BaseOT ot.OT

	// HEParams is required for ProtocolLabeledHE.
	HEParams *heparams.File
}

// NewSender constructs the sender side of protocol.
func NewSender(protocol Protocol, opts Options) (Sender, error) {
	switch protocol {
	case ProtocolOKVS:
		return okvspsi.NewSender(opts.Config, opts.BaseOT, opts.Conn)
	case ProtocolLabeledHE:
		return labeledpsi.NewSender(opts.Config, opts.HEParams, opts.Conn)
	default:
		return nil, ErrUnsupportedProtocol
	}
}

// NewReceiver constructs the receiver side of protocol.
func NewReceiver(protocol Protocol, opts Options) (Receiver, error) {
	switch protocol {
	case ProtocolOKVS:
		return okvspsi.NewReceiver(opts.Config, opts.BaseOT, opts.Conn)
	case ProtocolLabeledHE:
		return labeledpsi.NewReceiver(opts.Config, opts.HEParams, opts.Conn), nil
	default:
		return nil, ErrUnsupportedProtocol
	}
}
