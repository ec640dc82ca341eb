// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package comms

import (
	"errors"
	"net"
	"time"
)

// DefaultAddr is the default bind address for the UDP transport.
const DefaultAddr = "0.0.0.0:10100"

// pollDeadline bounds how long a single Recv call may wait for a
// datagram before reporting none available. It is short enough to keep
// the tick loop responsive; each Recv reads at most one datagram.
const pollDeadline = time.Millisecond

// UDP is the default Comms transport.
type UDP struct {
	conn      *net.UDPConn
	broadcast *net.UDPAddr
}

var _ Comms = (*UDP)(nil)

// Listen binds a UDP transport at addr (host:port). An empty addr binds
// DefaultAddr.
func Listen(addr string) (*UDP, error) {
	if addr == "" {
		addr = DefaultAddr
	}
	laddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp4", laddr)
	if err != nil {
		return nil, err
	}

	bcast, err := broadcastAddr(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &UDP{conn: conn, broadcast: bcast}, nil
}

// broadcastAddr derives the broadcast address for the interface the
// listener is bound on: the host portion of its IPv4 address set to all
// ones, per the Open Question resolved in SPEC_FULL.md §9. A listener on
// 0.0.0.0 uses the first non-loopback IPv4 interface address; when no
// interface address matches, the global broadcast address is used.
func broadcastAddr(conn *net.UDPConn) (*net.UDPAddr, error) {
	local := conn.LocalAddr().(*net.UDPAddr)
	port := local.Port

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipnet.IP.To4()
			if ip4 == nil {
				continue
			}
			if local.IP.IsUnspecified() {
				if ip4.IsLoopback() {
					continue
				}
			} else if !ip4.Equal(local.IP) {
				continue
			}
			return hostBroadcast(ip4, ipnet.Mask, port)
		}
	}
	return &net.UDPAddr{IP: net.IPv4bcast, Port: port}, nil
}

func hostBroadcast(ip net.IP, mask net.IPMask, port int) (*net.UDPAddr, error) {
	ip4 := ip.To4()
	if ip4 == nil || len(mask) < net.IPv4len {
		return nil, errors.New("comms: not an IPv4 address")
	}
	mask = mask[len(mask)-net.IPv4len:]
	bcast := make(net.IP, net.IPv4len)
	for i := range bcast {
		bcast[i] = ip4[i] | ^mask[i]
	}
	return &net.UDPAddr{IP: bcast, Port: port}, nil
}

func (u *UDP) Recv(buf []byte) (int, net.Addr, bool, error) {
	if err := u.conn.SetReadDeadline(time.Now().Add(pollDeadline)); err != nil {
		return 0, nil, false, err
	}
	n, addr, err := u.conn.ReadFromUDP(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return 0, nil, false, nil
		}
		return 0, nil, false, err
	}
	return n, addr, true, nil
}

func (u *UDP) Send(addr net.Addr, data []byte) error {
	_, err := u.conn.WriteTo(data, addr)
	return err
}

func (u *UDP) Broadcast(data []byte) error {
	_, err := u.conn.WriteTo(data, u.broadcast)
	return err
}

func (u *UDP) LocalAddr() net.Addr { return u.conn.LocalAddr() }

func (u *UDP) Close() error { return u.conn.Close() }
