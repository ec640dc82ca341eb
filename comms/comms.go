// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package comms is the engine's transport boundary: a small
// non-blocking interface the cooperative tick loop polls for inbound
// datagrams, plus unicast and broadcast sends. UDP is the default
// transport (spec.md §1); the interface itself is transport-agnostic so
// a host can substitute another datagram medium.
package comms

import "net"

// Comms is the datagram transport the engine drives from its tick
// loop. Every method must return promptly; Recv in particular must
// never block waiting for a datagram.
type Comms interface {
	// Recv copies the next pending datagram into buf, or returns
	// ok=false if none is currently available.
	Recv(buf []byte) (n int, addr net.Addr, ok bool, err error)
	// Send unicasts data to addr.
	Send(addr net.Addr, data []byte) error
	// Broadcast sends data to the local network's broadcast address.
	Broadcast(data []byte) error
	// LocalAddr reports the address Comms is bound to.
	LocalAddr() net.Addr
	Close() error
}
