// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package iot implements the engine: the cooperative, single-threaded
// core that owns a service's identity, publishes its signed data
// stream, and exchanges discovery/subscribe/publish traffic with peers
// over a comms.Comms transport (spec.md §5).
package iot

import (
	"encoding/binary"

	"github.com/luxfi/ids"

	"github.com/luxfi/iot/endpoint"
	"github.com/luxfi/iot/wire"
)

// RequestKind enumerates the engine's request protocol operations.
type RequestKind uint8

const (
	ReqHello RequestKind = iota
	ReqPing
	ReqDiscover
	ReqQuery
	ReqSubscribe
	ReqUnsubscribe
)

// Request is the engine's protocol request envelope. Not every field
// is meaningful for every Kind: Filter applies only to ReqDiscover, Id
// applies to ReqQuery/ReqSubscribe/ReqUnsubscribe, and PubKeyRequest
// applies to ReqDiscover and ReqSubscribe — the two request kinds whose
// response can carry a freshly learned public key (spec.md §6).
type Request struct {
	Kind          RequestKind
	Id            ids.ID
	Filter        endpoint.Info
	PubKeyRequest bool
}

func (r Request) encode(buf []byte) (int, error) {
	if len(buf) < 1 {
		return 0, wire.ErrOverrun
	}
	buf[0] = byte(r.Kind)
	off := 1

	switch r.Kind {
	case ReqQuery, ReqUnsubscribe:
		if len(buf) < off+32 {
			return 0, wire.ErrOverrun
		}
		copy(buf[off:], r.Id[:])
		off += 32
	case ReqSubscribe:
		if len(buf) < off+32+1 {
			return 0, wire.ErrOverrun
		}
		copy(buf[off:], r.Id[:])
		off += 32
		buf[off] = boolByte(r.PubKeyRequest)
		off++
	case ReqDiscover:
		if len(buf) < off+1 {
			return 0, wire.ErrOverrun
		}
		buf[off] = boolByte(r.PubKeyRequest)
		off++
		n := r.Filter.EncodeLen()
		if len(buf) < off+2+n {
			return 0, wire.ErrOverrun
		}
		binary.LittleEndian.PutUint16(buf[off:], uint16(n))
		off += 2
		if _, err := r.Filter.Encode(buf[off : off+n]); err != nil {
			return 0, err
		}
		off += n
	}

	return off, nil
}

func decodeRequest(buf []byte) (Request, int, error) {
	if len(buf) < 1 {
		return Request{}, 0, wire.ErrOverrun
	}
	r := Request{Kind: RequestKind(buf[0])}
	off := 1

	switch r.Kind {
	case ReqQuery, ReqUnsubscribe:
		if len(buf) < off+32 {
			return Request{}, 0, wire.ErrOverrun
		}
		copy(r.Id[:], buf[off:off+32])
		off += 32
	case ReqSubscribe:
		if len(buf) < off+32+1 {
			return Request{}, 0, wire.ErrOverrun
		}
		copy(r.Id[:], buf[off:off+32])
		off += 32
		r.PubKeyRequest = buf[off] == 1
		off++
	case ReqDiscover:
		if len(buf) < off+1+2 {
			return Request{}, 0, wire.ErrOverrun
		}
		r.PubKeyRequest = buf[off] == 1
		off++
		n := int(binary.LittleEndian.Uint16(buf[off:]))
		off += 2
		if len(buf) < off+n {
			return Request{}, 0, wire.ErrOverrun
		}
		info, err := endpoint.DecodeInfo(buf[off:off+n], 0)
		if err != nil {
			return Request{}, 0, err
		}
		r.Filter = info
		off += n
	}

	return r, off, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// Status is the outcome carried by a RespStatus response.
type Status uint8

const (
	StatusOk Status = iota
	StatusInvalidRequest
)

// ResponseKind enumerates the engine's protocol response variants.
type ResponseKind uint8

const (
	RespOk ResponseKind = iota
	RespStatus
	RespPage
)

// Response is the engine's protocol response envelope. PublicKey is set
// only on a RespOk answering a request that carried PubKeyRequest; per
// spec.md §4.4.6, any response carrying a public key updates the
// sender's stored key and address on receipt (handleResponse).
type Response struct {
	Kind      ResponseKind
	Status    Status
	Page      *wire.Object
	PublicKey []byte
}

func (r Response) encode(buf []byte) (int, error) {
	if len(buf) < 1 {
		return 0, wire.ErrOverrun
	}
	buf[0] = byte(r.Kind)
	off := 1

	switch r.Kind {
	case RespOk:
		n := len(r.PublicKey)
		if len(buf) < off+2+n {
			return 0, wire.ErrOverrun
		}
		binary.LittleEndian.PutUint16(buf[off:], uint16(n))
		off += 2
		copy(buf[off:], r.PublicKey)
		off += n
	case RespStatus:
		if len(buf) < off+1 {
			return 0, wire.ErrOverrun
		}
		buf[off] = byte(r.Status)
		off++
	case RespPage:
		n, err := r.Page.Encode(buf[off:])
		if err != nil {
			return 0, err
		}
		off += n
	}

	return off, nil
}

func decodeResponse(buf []byte) (Response, int, error) {
	if len(buf) < 1 {
		return Response{}, 0, wire.ErrOverrun
	}
	r := Response{Kind: ResponseKind(buf[0])}
	off := 1

	switch r.Kind {
	case RespOk:
		if len(buf) < off+2 {
			return Response{}, 0, wire.ErrOverrun
		}
		n := int(binary.LittleEndian.Uint16(buf[off:]))
		off += 2
		if len(buf) < off+n {
			return Response{}, 0, wire.ErrOverrun
		}
		if n > 0 {
			r.PublicKey = append([]byte(nil), buf[off:off+n]...)
		}
		off += n
	case RespStatus:
		if len(buf) < off+1 {
			return Response{}, 0, wire.ErrOverrun
		}
		r.Status = Status(buf[off])
		off++
	case RespPage:
		page, n, err := wire.Decode(buf[off:])
		if err != nil {
			return Response{}, 0, err
		}
		r.Page = page
		off += n
	}

	return r, off, nil
}
