// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package iot

import (
	"encoding/binary"

	"github.com/luxfi/ids"

	"github.com/luxfi/iot/wire"
)

// PacketKind distinguishes the three things a datagram on the wire can
// carry: a protocol request, a protocol response, or a raw signed
// object (a primary page or a data object, forwarded unsolicited to
// subscribers).
type PacketKind uint8

const (
	PacketRequest PacketKind = iota
	PacketResponse
	PacketObject
)

// Packet is the outermost envelope exchanged between engines. FromId
// names the sending service; requests and responses are not signed
// objects in their own right, so the engine has no other way to learn
// who it is talking to before a peer's primary page has been seen.
type Packet struct {
	Kind      PacketKind
	FromId    ids.ID
	RequestId uint32
	Request   Request
	Response  Response
	Object    *wire.Object
}

func (p Packet) Encode(buf []byte) (int, error) {
	if len(buf) < 1+32+4 {
		return 0, wire.ErrOverrun
	}
	buf[0] = byte(p.Kind)
	copy(buf[1:], p.FromId[:])
	binary.LittleEndian.PutUint32(buf[33:], p.RequestId)
	off := 37

	var n int
	var err error
	switch p.Kind {
	case PacketRequest:
		n, err = p.Request.encode(buf[off:])
	case PacketResponse:
		n, err = p.Response.encode(buf[off:])
	case PacketObject:
		n, err = p.Object.Encode(buf[off:])
	}
	if err != nil {
		return 0, err
	}
	return off + n, nil
}

// DecodePacket parses a Packet from buf.
func DecodePacket(buf []byte) (Packet, int, error) {
	if len(buf) < 1+32+4 {
		return Packet{}, 0, wire.ErrOverrun
	}
	p := Packet{Kind: PacketKind(buf[0])}
	copy(p.FromId[:], buf[1:33])
	p.RequestId = binary.LittleEndian.Uint32(buf[33:])
	off := 37

	var n int
	var err error
	switch p.Kind {
	case PacketRequest:
		p.Request, n, err = decodeRequest(buf[off:])
	case PacketResponse:
		p.Response, n, err = decodeResponse(buf[off:])
	case PacketObject:
		p.Object, n, err = wire.Decode(buf[off:])
	default:
		return Packet{}, 0, ErrUnsupported
	}
	if err != nil {
		return Packet{}, 0, err
	}
	return p, off + n, nil
}
