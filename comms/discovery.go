// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package comms

import (
	"context"
	"fmt"

	"github.com/grandcat/zeroconf"
)

// serviceType is the mDNS service name nodes advertise under when
// local-network auto-discovery is enabled. This is strictly an
// auxiliary convenience on top of the engine's own Discover protocol
// operation: it only helps peers find an address to dial, it never
// substitutes for the signed discovery/subscribe/publish exchange.
const serviceType = "_iot-engine._udp"

// Advertiser publishes this node's UDP endpoint over mDNS so peers on
// the same network segment can find it without a pre-shared address.
type Advertiser struct {
	server *zeroconf.Server
}

// Advertise registers instance (typically the service id) at port over
// mDNS. Call Shutdown to stop advertising.
func Advertise(instance string, port int) (*Advertiser, error) {
	server, err := zeroconf.Register(instance, serviceType, "local.", port, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("comms: mdns advertise: %w", err)
	}
	return &Advertiser{server: server}, nil
}

func (a *Advertiser) Shutdown() {
	a.server.Shutdown()
}

// Discover browses for peers advertising serviceType for the duration
// of ctx, invoking onFound for each entry as it is resolved.
func Discover(ctx context.Context, onFound func(*zeroconf.ServiceEntry)) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("comms: mdns resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	go func() {
		for e := range entries {
			onFound(e)
		}
	}()

	return resolver.Browse(ctx, serviceType, "local.", entries)
}
