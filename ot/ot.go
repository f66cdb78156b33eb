//
// ot.go
//
// Copyright (c) 2023 Markku Rossi
//
// All rights reserved.

// Package ot implements the base 1-out-of-2 oblivious transfer used
// to bootstrap the IKNP extension in package otext. Fuzzy PSI never
// calls package ot directly for the millions of OTs a real query
// needs (that is otext's job); ot only ever runs a handful of base
// transfers to seed the extension.
package ot

// OT defines the base 1-out-of-2 oblivious transfer protocol. The
// sender uses Send to offer a []Wire array where each wire carries a
// zero and a one Label. The receiver calls Receive with a []bool
// array of selection bits. Callers must ensure the []Wire and []bool
// array lengths match.
type OT interface {
	// InitSender initializes the OT sender.
	InitSender(io IO) error

	// InitReceiver initializes the OT receiver.
	InitReceiver(io IO) error

	// Send sends the wire labels with OT.
	Send(wires []Wire) error

	// Receive receives the wire labels with OT based on the flag values.
	Receive(flags []bool, result []Label) error
}
