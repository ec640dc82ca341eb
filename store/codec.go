// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"encoding/binary"
	"net"

	"github.com/luxfi/ids"
	"golang.org/x/crypto/ed25519"

	"github.com/luxfi/iot/wire"
)

// The encodings below are internal persistence plumbing private to a
// Store backend, not the wire protocol between services, so they use
// encoding/binary directly rather than the bespoke endpoint codec.

func encodeKeys(k wire.Keys) []byte {
	buf := make([]byte, 0, 1+len(k.Public)+1+len(k.Private)+1+wire.SecretKeyLen)
	buf = appendBytes(buf, k.Public)
	buf = appendBytes(buf, k.Private)
	if k.Secret != nil {
		buf = append(buf, 1)
		buf = append(buf, k.Secret[:]...)
	} else {
		buf = append(buf, 0)
	}
	return buf
}

func decodeKeys(buf []byte) (wire.Keys, error) {
	pub, rest, err := readBytes(buf)
	if err != nil {
		return wire.Keys{}, err
	}
	priv, rest, err := readBytes(rest)
	if err != nil {
		return wire.Keys{}, err
	}
	if len(rest) < 1 {
		return wire.Keys{}, ErrNotFound
	}
	k := wire.Keys{Public: ed25519.PublicKey(pub)}
	if len(priv) > 0 {
		k.Private = ed25519.PrivateKey(priv)
	}
	if rest[0] == 1 {
		if len(rest) < 1+wire.SecretKeyLen {
			return wire.Keys{}, ErrNotFound
		}
		var s [wire.SecretKeyLen]byte
		copy(s[:], rest[1:1+wire.SecretKeyLen])
		k.Secret = &s
	}
	return k, nil
}

func appendBytes(buf []byte, b []byte) []byte {
	var l [2]byte
	binary.LittleEndian.PutUint16(l[:], uint16(len(b)))
	buf = append(buf, l[:]...)
	return append(buf, b...)
}

func readBytes(buf []byte) (val, rest []byte, err error) {
	if len(buf) < 2 {
		return nil, nil, ErrNotFound
	}
	l := int(binary.LittleEndian.Uint16(buf))
	if len(buf) < 2+l {
		return nil, nil, ErrNotFound
	}
	return buf[2 : 2+l], buf[2+l:], nil
}

func encodeObjectInfo(info ObjectInfo) []byte {
	buf := make([]byte, 4+4+1+wire.SignatureLen+1+wire.SignatureLen)
	binary.LittleEndian.PutUint32(buf[0:], info.Chain.Version)
	binary.LittleEndian.PutUint32(buf[4:], info.Chain.DataIndex)
	off := 8
	if info.Chain.LastSig != nil {
		buf[off] = 1
		copy(buf[off+1:], info.Chain.LastSig[:])
	}
	off += 1 + wire.SignatureLen
	if info.PrimarySig != nil {
		buf[off] = 1
		copy(buf[off+1:], info.PrimarySig[:])
	}
	return buf
}

func decodeObjectInfo(buf []byte) (ObjectInfo, error) {
	want := 4 + 4 + 1 + wire.SignatureLen + 1 + wire.SignatureLen
	if len(buf) < want {
		return ObjectInfo{}, ErrNotFound
	}
	c := wire.Chain{
		Version:   binary.LittleEndian.Uint32(buf[0:]),
		DataIndex: binary.LittleEndian.Uint32(buf[4:]),
	}
	off := 8
	if buf[off] == 1 {
		var sig wire.Signature
		copy(sig[:], buf[off+1:off+1+wire.SignatureLen])
		c.LastSig = &sig
	}
	off += 1 + wire.SignatureLen

	var primarySig *wire.Signature
	if buf[off] == 1 {
		var sig wire.Signature
		copy(sig[:], buf[off+1:off+1+wire.SignatureLen])
		primarySig = &sig
	}

	return ObjectInfo{Chain: c, PrimarySig: primarySig}, nil
}

func encodePeer(p Peer) []byte {
	buf := make([]byte, 0, 64+len(p.PublicKey))
	buf = append(buf, p.Id[:]...)
	buf = appendBytes(buf, p.PublicKey)

	if p.Addr != nil {
		buf = append(buf, 1)
		ip4 := p.Addr.IP.To4()
		buf = append(buf, ip4...)
		var port [2]byte
		binary.LittleEndian.PutUint16(port[:], uint16(p.Addr.Port))
		buf = append(buf, port[:]...)
	} else {
		buf = append(buf, 0)
	}

	flags := byte(0)
	if p.Subscriber {
		flags |= 1
	}
	buf = append(buf, flags, byte(p.Subscribed))

	var scratch [4 + 4 + 8 + 8]byte
	binary.LittleEndian.PutUint32(scratch[0:], p.RequestId)
	binary.LittleEndian.PutUint64(scratch[4:], uint64(p.LastSeen))
	binary.LittleEndian.PutUint64(scratch[12:], uint64(p.LastRenewed))
	buf = append(buf, scratch[:]...)

	return buf
}

func decodePeer(buf []byte) (Peer, error) {
	if len(buf) < 32 {
		return Peer{}, ErrNotFound
	}
	var p Peer
	copy(p.Id[:], buf[:32])
	rest := buf[32:]

	pub, rest, err := readBytes(rest)
	if err != nil {
		return Peer{}, err
	}
	if len(pub) > 0 {
		p.PublicKey = pub
	}

	if len(rest) < 1 {
		return Peer{}, ErrNotFound
	}
	hasAddr := rest[0]
	rest = rest[1:]
	if hasAddr == 1 {
		if len(rest) < 4+2 {
			return Peer{}, ErrNotFound
		}
		ip := net.IPv4(rest[0], rest[1], rest[2], rest[3])
		port := int(binary.LittleEndian.Uint16(rest[4:6]))
		p.Addr = &net.UDPAddr{IP: ip, Port: port}
		rest = rest[6:]
	}

	if len(rest) < 2+16 {
		return Peer{}, ErrNotFound
	}
	p.Subscriber = rest[0] == 1
	p.Subscribed = SubscribeState(rest[1])
	rest = rest[2:]
	p.RequestId = binary.LittleEndian.Uint32(rest[0:])
	p.LastSeen = int64(binary.LittleEndian.Uint64(rest[4:]))
	p.LastRenewed = int64(binary.LittleEndian.Uint64(rest[12:]))

	return p, nil
}

func idKey(prefix string, id ids.ID) []byte {
	k := make([]byte, 0, len(prefix)+32)
	k = append(k, prefix...)
	k = append(k, id[:]...)
	return k
}

func pageKey(id ids.ID, sig wire.Signature) []byte {
	k := make([]byte, 0, len("page:")+32+1+wire.SignatureLen)
	k = append(k, "page:"...)
	k = append(k, id[:]...)
	k = append(k, ':')
	k = append(k, sig[:]...)
	return k
}
