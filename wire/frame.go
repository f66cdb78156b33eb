//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package wire

import "fmt"

// Tag identifies the payload carried by a framed protocol message.
type Tag byte

// Protocol message tags. The two-party state machines in labeledpsi
// and okvspsi each exchange frames in a fixed order of their own (not
// the numeric order below); any tag received out of the expected
// order is a fatal protocol error.
const (
	TagOPRFRequest        Tag = 0x01
	TagOPRFResponse       Tag = 0x02
	TagQueryRequest       Tag = 0x10
	TagQueryResponseHeader Tag = 0x11
	TagResultPackage      Tag = 0x12
	TagVoleAPrime         Tag = 0x20
	TagVoleMasks          Tag = 0x21
)

func (t Tag) String() string {
	switch t {
	case TagOPRFRequest:
		return "OPRF-Request"
	case TagOPRFResponse:
		return "OPRF-Response"
	case TagQueryRequest:
		return "Query-Request"
	case TagQueryResponseHeader:
		return "Query-Response-Header"
	case TagResultPackage:
		return "Result-Package"
	case TagVoleAPrime:
		return "Vole-A-Prime"
	case TagVoleMasks:
		return "Vole-Masks"
	default:
		return fmt.Sprintf("Tag(%#02x)", byte(t))
	}
}

// SendFrame writes a tagged, length-prefixed frame: the 4-byte
// length prefix and 1-byte tag are handled here; SendData already
// framed val's own length so the wire shape is:
//
//	uint32(len(tag)+len(val)) | tag | val
//
// matching the length-prefix-then-tag layout of spec §6.
func (c *Conn) SendFrame(tag Tag, payload []byte) error {
	framed := make([]byte, 1+len(payload))
	framed[0] = byte(tag)
	copy(framed[1:], payload)
	if err := c.SendData(framed); err != nil {
		return err
	}
	return c.Flush()
}

// RecvFrame reads one tagged frame and checks that its tag is one of
// the expected tags (in the order the caller's state machine allows).
// An empty expected list accepts any tag.
func (c *Conn) RecvFrame(expected ...Tag) (Tag, []byte, error) {
	framed, err := c.ReceiveData()
	if err != nil {
		return 0, nil, err
	}
	if len(framed) < 1 {
		return 0, nil, fmt.Errorf("wire: empty frame")
	}
	tag := Tag(framed[0])
	if len(expected) > 0 {
		ok := false
		for _, e := range expected {
			if e == tag {
				ok = true
				break
			}
		}
		if !ok {
			return tag, nil, fmt.Errorf("wire: unexpected tag %s, want %v",
				tag, expected)
		}
	}
	return tag, framed[1:], nil
}
