//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package vole

import (
	"io"

	"github.com/markkurossi/fuzzypsi/fperr"
	"github.com/markkurossi/fuzzypsi/gf128"
	"github.com/markkurossi/fuzzypsi/ot"
	"github.com/markkurossi/fuzzypsi/otext"
	"github.com/markkurossi/fuzzypsi/wire"
)

// Sender holds the sender side of the correlation: after Extend, C[i]
// is sender's random mask for VOLE instance i.
type Sender struct {
	iknp *otext.IKNPSender
	conn *wire.Conn
	rand io.Reader
}

// Receiver holds the receiver side: after Extend, B[i] satisfies
// B[i] = C[i] + Delta*A[i].
type Receiver struct {
	iknp  *otext.IKNPReceiver
	conn  *wire.Conn
	delta gf128.Elt
}

// NewSender runs the IKNP base OT setup for the sender side of the
// correlation.
func NewSender(base ot.OT, conn *wire.Conn, r io.Reader) (*Sender, error) {
	iknp, err := otext.NewIKNPSender(base, conn, r)
	if err != nil {
		return nil, fperr.New(fperr.ProtocolMismatch, "vole.NewSender", err)
	}
	return &Sender{iknp: iknp, conn: conn, rand: r}, nil
}

// NewReceiver runs the IKNP base OT setup for the receiver side of
// the correlation. delta is the receiver's private VOLE scalar,
// fixed for the lifetime of this Receiver.
func NewReceiver(base ot.OT, conn *wire.Conn, r io.Reader, delta gf128.Elt) (*Receiver, error) {
	iknp, err := otext.NewIKNPReceiver(base, conn, r)
	if err != nil {
		return nil, fperr.New(fperr.ProtocolMismatch, "vole.NewReceiver", err)
	}
	return &Receiver{iknp: iknp, conn: conn, delta: delta}, nil
}

// deltaFlags expands delta's 128 bits into a flags vector of length
// m*128 by repeating the bit pattern once per VOLE instance, so a
// single IKNP Expand call produces every (instance, bit-plane) OT at
// once instead of re-running IKNP's base-OT-derived seed 128 times.
func deltaFlags(delta gf128.Elt, m int) []bool {
	flags := make([]bool, m*128)
	for i := 0; i < m; i++ {
		for p := 0; p < 128; p++ {
			flags[i*128+p] = delta.Bit(p)
		}
	}
	return flags
}

// Extend produces m VOLE instances from sender inputs a: returns C
// such that the receiver's corresponding Extend call yields B with
// B[i] = C[i] + Delta*a[i] for every i.
func (s *Sender) Extend(a []gf128.Elt) ([]gf128.Elt, error) {
	m := len(a)
	if m == 0 {
		return nil, nil
	}
	wires, err := s.iknp.Expand(m * 128)
	if err != nil {
		return nil, fperr.New(fperr.ProtocolMismatch, "vole.Sender.Extend", err)
	}

	c := make([]gf128.Elt, m)
	masks := make([]byte, 0, m*128*32)
	for i := 0; i < m; i++ {
		shift := a[i]
		for p := 0; p < 128; p++ {
			w := wires[i*128+p]
			var ld0, ld1 ot.LabelData
			w.L0.GetData(&ld0)
			w.L1.GetData(&ld1)
			pad0 := expandLabel(ld0)
			pad1 := expandLabel(ld1)

			r, err := randomElt(s.rand)
			if err != nil {
				return nil, fperr.New(fperr.Internal, "vole.Sender.Extend", err)
			}
			c[i] = gf128.Add(c[i], r)

			m0 := gf128.Add(r, pad0)
			m1 := gf128.Add(gf128.Add(r, shift), pad1)
			b0 := m0.Bytes()
			b1 := m1.Bytes()
			masks = append(masks, b0[:]...)
			masks = append(masks, b1[:]...)

			shift = gf128.MulX(shift)
		}
	}

	if err := s.conn.SendFrame(wire.TagVoleMasks, masks); err != nil {
		return nil, fperr.New(fperr.ProtocolMismatch, "vole.Sender.Extend", err)
	}
	return c, nil
}

// Extend produces m VOLE instances for the receiver side, returning
// B such that B[i] = C[i] + Delta*A[i] where C, A came from the
// matching Sender.Extend call.
func (r *Receiver) Extend(m int) ([]gf128.Elt, error) {
	if m == 0 {
		return nil, nil
	}
	flags := deltaFlags(r.delta, m)
	labels, err := r.iknp.Expand(flags)
	if err != nil {
		return nil, fperr.New(fperr.ProtocolMismatch, "vole.Receiver.Extend", err)
	}

	_, payload, err := r.conn.RecvFrame(wire.TagVoleMasks)
	if err != nil {
		return nil, fperr.New(fperr.ProtocolMismatch, "vole.Receiver.Extend", err)
	}
	if len(payload) != m*128*32 {
		return nil, fperr.Newf(fperr.Truncated, "vole.Receiver.Extend",
			"expected %d mask bytes, got %d", m*128*32, len(payload))
	}

	b := make([]gf128.Elt, m)
	for i := 0; i < m; i++ {
		for p := 0; p < 128; p++ {
			idx := i*128 + p
			var ld ot.LabelData
			labels[idx].GetData(&ld)
			pad := expandLabel(ld)

			off := idx * 32
			var chosen gf128.Elt
			if flags[idx] {
				chosen = gf128.FromBytes(payload[off+16 : off+32])
			} else {
				chosen = gf128.FromBytes(payload[off : off+16])
			}
			b[i] = gf128.Add(b[i], gf128.Add(chosen, pad))
		}
	}
	return b, nil
}

func randomElt(r io.Reader) (gf128.Elt, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return gf128.Elt{}, err
	}
	return gf128.FromBytes(buf[:]), nil
}
