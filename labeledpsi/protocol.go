//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package labeledpsi implements the labeled-HE PSI back-end (spec
// §4.5): OPRF pre-hashing, a cuckoo-hashed sender database of monic
// root polynomials, and a batched-HE query/response phase that
// evaluates those polynomials at receiver-supplied points without
// revealing which points are being tested. See heengine.go for why
// the HE layer itself is a plaintext stand-in.
package labeledpsi

import (
	"encoding/binary"
	"math/big"

	"github.com/markkurossi/fuzzypsi/cuckoo"
	"github.com/markkurossi/fuzzypsi/env"
	"github.com/markkurossi/fuzzypsi/fingerprint"
	"github.com/markkurossi/fuzzypsi/fperr"
	"github.com/markkurossi/fuzzypsi/heparams"
	"github.com/markkurossi/fuzzypsi/wire"
)

// cuckooSeed is the fixed public seed both parties use to derive the
// sender database's cuckoo hash functions (spec §4.5.2 treats the
// table layout as public; only its contents are private).
const cuckooSeed = 0xF9515A17C6C1E0AD

// pointSize is the fixed wire size of an uncompressed P256 point
// (1 tag byte + 2*32 coordinate bytes), letting point lists be framed
// without a per-point length prefix.
const pointSize = 65

// Receiver drives the receiver side of the labeled-HE PSI protocol.
type Receiver struct {
	conn   *wire.Conn
	params *heparams.File
	config *env.Config
}

// Sender drives the sender side of the labeled-HE PSI protocol.
type Sender struct {
	conn   *wire.Conn
	params *heparams.File
	config *env.Config
	key    *Key
}

// NewReceiver prepares the receiver side of the protocol. params must
// equal the sender's params (spec §6's Π file, agreed out of band).
func NewReceiver(config *env.Config, params *heparams.File, conn *wire.Conn) *Receiver {
	return &Receiver{conn: conn, params: params, config: config}
}

// NewSender prepares the sender side, drawing a fresh OPRF key.
func NewSender(config *env.Config, params *heparams.File, conn *wire.Conn) (*Sender, error) {
	key, err := NewKey(config.GetRandom())
	if err != nil {
		return nil, fperr.New(fperr.Internal, "labeledpsi.NewSender", err)
	}
	return &Sender{conn: conn, params: params, config: config, key: key}, nil
}

// Run executes the receiver side for items, returning the subset
// present in the sender's set.
func (rc *Receiver) Run(items []fingerprint.Fingerprint) ([]fingerprint.Fingerprint, error) {
	blinds := make([]point, len(items))
	req := make([]byte, 4+len(items)*pointSize)
	binary.LittleEndian.PutUint32(req[0:4], uint32(len(items)))
	for i, fp := range items {
		p, err := blindItem(rc.config.GetRandom(), fp)
		if err != nil {
			return nil, fperr.New(fperr.Internal, "labeledpsi.Receiver.Run", err)
		}
		blinds[i] = p
		copy(req[4+i*pointSize:], marshalPoint(p.x, p.y))
	}
	if err := rc.conn.SendFrame(wire.TagOPRFRequest, req); err != nil {
		return nil, fperr.New(fperr.ProtocolMismatch, "labeledpsi.Receiver.Run", err)
	}

	_, resp, err := rc.conn.RecvFrame(wire.TagOPRFResponse)
	if err != nil {
		return nil, fperr.New(fperr.ProtocolMismatch, "labeledpsi.Receiver.Run", err)
	}
	evaluated, err := decodePoints(resp, len(items))
	if err != nil {
		return nil, err
	}

	oprfItems := make([]fingerprint.Fingerprint, len(items))
	for i := range items {
		fx, fy := unblind(blinds[i], evaluated[i][0], evaluated[i][1])
		oprfItems[i] = outputFingerprint(fx, fy)
	}

	tp := rc.params.TableParams
	shadow, err := cuckoo.New(tp.TableSize, tp.MaxItemsPerBin, tp.HashFuncCount, cuckooSeed)
	if err != nil {
		return nil, fperr.New(fperr.Internal, "labeledpsi.Receiver.Run", err)
	}

	feltsPerItem := rc.params.ItemParams.FeltsPerItem
	n := rc.params.SealParams.PolyModulusDegree
	q := rc.params.SealParams.PlainModulus
	bundleSize := n / feltsPerItem
	numBundles := tp.TableSize / bundleSize

	matched := make(map[int]bool)

	for h := 0; h < tp.HashFuncCount; h++ {
		binToItem := make(map[int]int, len(items))
		for i, fp := range oprfItems {
			bin := shadow.Candidates(fp)[h]
			binToItem[bin] = i
		}

		var requests int
		for bundleIdx := 0; bundleIdx < numBundles; bundleIdx++ {
			for j := 0; j < bundleSize; j++ {
				if _, ok := binToItem[bundleIdx*bundleSize+j]; ok {
					requests++
					break
				}
			}
		}
		header := make([]byte, 4)
		binary.LittleEndian.PutUint32(header, uint32(requests))
		if err := rc.conn.SendFrame(wire.TagQueryResponseHeader, header); err != nil {
			return nil, fperr.New(fperr.ProtocolMismatch, "labeledpsi.Receiver.Run", err)
		}

		for bundleIdx := 0; bundleIdx < numBundles; bundleIdx++ {
			localAssign := make(map[int]int)
			slots := make([]uint64, n)
			for j := 0; j < bundleSize; j++ {
				itemIdx, ok := binToItem[bundleIdx*bundleSize+j]
				if !ok {
					continue
				}
				localAssign[j] = itemIdx
				felts := fpToFelts(oprfItems[itemIdx], rc.params)
				for l := 0; l < feltsPerItem; l++ {
					slots[j*feltsPerItem+l] = felts[l]
				}
			}
			if len(localAssign) == 0 {
				continue
			}

			if err := rc.conn.SendFrame(wire.TagQueryRequest,
				encodeQueryRequest(bundleIdx, slots)); err != nil {
				return nil, fperr.New(fperr.ProtocolMismatch, "labeledpsi.Receiver.Run", err)
			}

			_, payload, err := rc.conn.RecvFrame(wire.TagResultPackage)
			if err != nil {
				return nil, fperr.New(fperr.ProtocolMismatch, "labeledpsi.Receiver.Run", err)
			}
			_, result, err := decodeQueryRequest(payload, n)
			if err != nil {
				return nil, err
			}

			for j, itemIdx := range localAssign {
				allZero := true
				for l := 0; l < feltsPerItem; l++ {
					if result[j*feltsPerItem+l]%q != 0 {
						allZero = false
						break
					}
				}
				if allZero {
					matched[itemIdx] = true
				}
			}
		}
	}

	var out []fingerprint.Fingerprint
	for i, fp := range items {
		if matched[i] {
			out = append(out, fp)
		}
	}
	return out, nil
}

// Run executes the sender side for items.
func (s *Sender) Run(items []fingerprint.Fingerprint) error {
	_, req, err := s.conn.RecvFrame(wire.TagOPRFRequest)
	if err != nil {
		return fperr.New(fperr.ProtocolMismatch, "labeledpsi.Sender.Run", err)
	}
	if len(req) < 4 {
		return fperr.Newf(fperr.Truncated, "labeledpsi.Sender.Run", "OPRF request truncated")
	}
	count := int(binary.LittleEndian.Uint32(req[0:4]))
	blinded, err := decodePoints(req[4:], count)
	if err != nil {
		return err
	}

	resp := make([]byte, count*pointSize)
	for i, p := range blinded {
		ex, ey := s.key.evaluate(p[0], p[1])
		copy(resp[i*pointSize:], marshalPoint(ex, ey))
	}
	if err := s.conn.SendFrame(wire.TagOPRFResponse, resp); err != nil {
		return fperr.New(fperr.ProtocolMismatch, "labeledpsi.Sender.Run", err)
	}

	oprfItems := make([]fingerprint.Fingerprint, len(items))
	for i, fp := range items {
		b := fp.Bytes()
		hx, hy := hashToPoint(b[:])
		ex, ey := s.key.evaluate(hx, hy)
		oprfItems[i] = outputFingerprint(ex, ey)
	}

	db, err := BuildSenderDB(s.params, oprfItems, cuckooSeed)
	if err != nil {
		return err
	}

	engine := NewEngine(s.params.SealParams.PlainModulus)
	feltsPerItem := s.params.ItemParams.FeltsPerItem
	n := s.params.SealParams.PolyModulusDegree
	bundleSize := n / feltsPerItem

	for h := 0; h < s.params.TableParams.HashFuncCount; h++ {
		_, header, err := s.conn.RecvFrame(wire.TagQueryResponseHeader)
		if err != nil {
			return fperr.New(fperr.ProtocolMismatch, "labeledpsi.Sender.Run", err)
		}
		if len(header) < 4 {
			return fperr.Newf(fperr.Truncated, "labeledpsi.Sender.Run", "query header truncated")
		}
		requests := int(binary.LittleEndian.Uint32(header))

		for r := 0; r < requests; r++ {
			_, payload, err := s.conn.RecvFrame(wire.TagQueryRequest)
			if err != nil {
				return fperr.New(fperr.ProtocolMismatch, "labeledpsi.Sender.Run", err)
			}
			bundleIdx, slots, err := decodeQueryRequest(payload, n)
			if err != nil {
				return err
			}

			maxDegree := 0
			for j := 0; j < bundleSize; j++ {
				if d := db.BinDegree(bundleIdx*bundleSize + j); d > maxDegree {
					maxDegree = d
				}
			}
			coeffMatrix := make([][]uint64, maxDegree+1)
			for d := range coeffMatrix {
				coeffMatrix[d] = make([]uint64, n)
			}
			for j := 0; j < bundleSize; j++ {
				bin := bundleIdx*bundleSize + j
				for l := 0; l < feltsPerItem; l++ {
					padded := padPoly(db.BinPolynomial(bin, l), maxDegree)
					for d := 0; d <= maxDegree; d++ {
						coeffMatrix[d][j*feltsPerItem+l] = padded[d]
					}
				}
			}

			query := engine.Encrypt(slots)
			result := engine.EvaluateBundle(query, coeffMatrix)

			if err := s.conn.SendFrame(wire.TagResultPackage,
				encodeQueryRequest(bundleIdx, engine.Decrypt(result))); err != nil {
				return fperr.New(fperr.ProtocolMismatch, "labeledpsi.Sender.Run", err)
			}
		}
	}
	return nil
}

// --- wire encoding helpers ---

func decodePoints(data []byte, count int) ([][2]*big.Int, error) {
	if len(data) < count*pointSize {
		return nil, fperr.Newf(fperr.Truncated, "labeledpsi.decodePoints",
			"expected %d points (%d bytes), got %d bytes", count, count*pointSize, len(data))
	}
	out := make([][2]*big.Int, count)
	for i := 0; i < count; i++ {
		x, y, ok := unmarshalPoint(data[i*pointSize : (i+1)*pointSize])
		if !ok {
			return nil, fperr.Newf(fperr.ProtocolMismatch, "labeledpsi.decodePoints",
				"point %d does not unmarshal to a valid curve point", i)
		}
		out[i] = [2]*big.Int{x, y}
	}
	return out, nil
}

func encodeQueryRequest(bundleIdx int, slots []uint64) []byte {
	buf := make([]byte, 4+8*len(slots))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(bundleIdx))
	for i, s := range slots {
		binary.LittleEndian.PutUint64(buf[4+i*8:], s)
	}
	return buf
}

func decodeQueryRequest(data []byte, n int) (int, []uint64, error) {
	if len(data) != 4+8*n {
		return 0, nil, fperr.Newf(fperr.Truncated, "labeledpsi.decodeQueryRequest",
			"expected %d bytes for %d slots, got %d", 4+8*n, n, len(data))
	}
	bundleIdx := int(binary.LittleEndian.Uint32(data[0:4]))
	slots := make([]uint64, n)
	for i := range slots {
		slots[i] = binary.LittleEndian.Uint64(data[4+i*8:])
	}
	return bundleIdx, slots, nil
}
