// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package comms

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMockDeliverAndRecv(t *testing.T) {
	m := NewMock(&net.UDPAddr{Port: 10100})
	from := &net.UDPAddr{IP: net.IPv4(10, 0, 0, 2), Port: 10100}

	buf := make([]byte, 16)
	_, _, ok, err := m.Recv(buf)
	require.NoError(t, err)
	require.False(t, ok)

	m.Deliver(from, []byte("hello"))
	n, addr, ok, err := m.Recv(buf)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hello", string(buf[:n]))
	require.Equal(t, from, addr)
}

func TestMockSendAndBroadcastCapture(t *testing.T) {
	m := NewMock(&net.UDPAddr{Port: 10100})
	to := &net.UDPAddr{IP: net.IPv4(10, 0, 0, 3), Port: 10100}

	require.NoError(t, m.Send(to, []byte("ping")))
	require.Len(t, m.Sent, 1)
	require.Equal(t, "ping", string(m.Sent[0].Data))

	require.NoError(t, m.Broadcast([]byte("discover")))
	require.Len(t, m.Broadcasts, 1)
}
