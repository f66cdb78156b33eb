//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package vole implements a two-party Vector Oblivious Linear
// Evaluation correlation over GF(2^128): after Extend, the sender
// holds a random vector C and the receiver holds B, such that for
// every instance i, B[i] = C[i] + Delta*A[i] (addition and
// multiplication in GF(2^128)), where A is the sender's private
// input vector and Delta is the receiver's private scalar.
//
// The correlation is built directly on top of the teacher's IKNP OT
// extension (otext.IKNPSender/IKNPReceiver), not on a sublinear-
// communication (silent) VOLE construction - the LPN-based silent
// variant is an out-of-scope external collaborator; what is
// implemented here is the two-party VOLE correlation itself, derived
// from bit-decomposing Delta and, for each bit plane, running one
// batch of derandomized IKNP OTs offering (r, r+x^p*A[i]) for a fresh
// random r per plane, so that the receiver's XOR-sum of its chosen
// shares across all 128 planes equals C[i]+Delta*A[i], where C[i] is
// the sender's XOR-sum of its r values. This is grounded on the correlated-OT-to-VOLE
// reduction used throughout okvspsi/vole in original_source, adapted
// to the teacher's actual otext API (see DESIGN.md: the teacher's own
// vole package and tests reference an otext.IKNPExt type that does
// not exist anywhere in the retrieved sources; this package is
// rewritten against the IKNPSender/IKNPReceiver types that do).
package vole
