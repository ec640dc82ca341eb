// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package comms

import "net"

// Sent records one outbound datagram captured by Mock, for assertions
// in engine tests.
type Sent struct {
	Addr net.Addr
	Data []byte
}

type queued struct {
	addr net.Addr
	data []byte
}

// Mock is an in-memory Comms test double. Inbound datagrams are queued
// with Deliver; outbound unicasts and broadcasts are captured in Sent
// and Broadcasts for inspection.
type Mock struct {
	Addr       net.Addr
	inbound    []queued
	Sent       []Sent
	Broadcasts [][]byte
	closed     bool
}

var _ Comms = (*Mock)(nil)

// NewMock constructs a Mock transport bound to the given local address.
func NewMock(addr net.Addr) *Mock {
	return &Mock{Addr: addr}
}

// Deliver queues data as though it had just arrived from addr.
func (m *Mock) Deliver(addr net.Addr, data []byte) {
	m.inbound = append(m.inbound, queued{addr: addr, data: append([]byte(nil), data...)})
}

func (m *Mock) Recv(buf []byte) (int, net.Addr, bool, error) {
	if len(m.inbound) == 0 {
		return 0, nil, false, nil
	}
	next := m.inbound[0]
	m.inbound = m.inbound[1:]
	n := copy(buf, next.data)
	return n, next.addr, true, nil
}

func (m *Mock) Send(addr net.Addr, data []byte) error {
	m.Sent = append(m.Sent, Sent{Addr: addr, Data: append([]byte(nil), data...)})
	return nil
}

func (m *Mock) Broadcast(data []byte) error {
	m.Broadcasts = append(m.Broadcasts, append([]byte(nil), data...))
	return nil
}

func (m *Mock) LocalAddr() net.Addr { return m.Addr }

func (m *Mock) Close() error {
	m.closed = true
	return nil
}
