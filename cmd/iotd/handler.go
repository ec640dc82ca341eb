// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/luxfi/ids"

	clientiot "github.com/luxfi/iot/client/iot"
	"github.com/luxfi/iot/comms"
	"github.com/luxfi/iot/endpoint"
	engineiot "github.com/luxfi/iot/engine/iot"
	"github.com/luxfi/iot/store"
	"github.com/luxfi/iot/wire"
)

// adminHandler adapts a running Engine to client/iot's Handler
// interface. Every method here runs on the engine's own goroutine, via
// Server.Drain in the main tick loop, so it never races Tick.
type adminHandler struct {
	engine     *engineiot.Engine
	store      store.Store
	listenPort int
	advertiser *comms.Advertiser
}

var _ clientiot.Handler = (*adminHandler)(nil)

// adminBufferLen bounds a single encoded object the admin Info op may
// return; large enough for any primary page within spec.md's size budget.
const adminBufferLen = 4096

func (h *adminHandler) Create() (ids.ID, error) {
	return h.engine.Id(), nil
}

func (h *adminHandler) Register(descriptors []endpoint.Descriptor) error {
	info, err := endpoint.NewInfo(0, descriptors...)
	if err != nil {
		return err
	}
	return h.engine.SetInfo(info)
}

func (h *adminHandler) Publish(data []endpoint.Data) error {
	set, err := endpoint.NewDataSet(0, data...)
	if err != nil {
		return err
	}
	_, err = h.engine.Publish(set)
	return err
}

func (h *adminHandler) Locate(id ids.ID) (clientiot.PeerSummary, bool, error) {
	p, err := h.store.GetPeer(id)
	if err == store.ErrNotFound {
		return clientiot.PeerSummary{}, false, nil
	}
	if err != nil {
		return clientiot.PeerSummary{}, false, err
	}
	return peerSummary(p), true, nil
}

func (h *adminHandler) Info() ([]byte, error) {
	page := h.engine.Primary()
	if page == nil {
		return nil, fmt.Errorf("no primary page published yet")
	}
	buf := make([]byte, adminBufferLen)
	n, err := page.Encode(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (h *adminHandler) List() ([]clientiot.PeerSummary, error) {
	peers, err := h.store.Peers()
	if err != nil {
		return nil, err
	}
	out := make([]clientiot.PeerSummary, len(peers))
	for i, p := range peers {
		out[i] = peerSummary(p)
	}
	return out, nil
}

func (h *adminHandler) Subscribe(id ids.ID, addr string) error {
	udpAddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return err
	}
	return h.engine.Subscribe(id, udpAddr)
}

func (h *adminHandler) Unsubscribe(id ids.ID) error {
	return h.engine.Unsubscribe(id)
}

// Query triggers a live query to peer id and returns immediately: the
// engine is cooperative and non-blocking, so the page itself arrives on
// a later tick as an EventDiscovered event and must be retrieved with a
// follow-up Locate or List call.
func (h *adminHandler) Query(id ids.ID) ([]byte, error) {
	p, err := h.store.GetPeer(id)
	if err != nil {
		return nil, err
	}
	if p.Addr == nil {
		return nil, fmt.Errorf("no known address for peer %s", id)
	}
	if err := h.engine.Query(id, p.Addr); err != nil {
		return nil, err
	}
	return nil, nil
}

func (h *adminHandler) Discover(filter []endpoint.Descriptor) ([]clientiot.PeerSummary, error) {
	info, err := endpoint.NewInfo(0, filter...)
	if err != nil {
		return nil, err
	}
	if _, err := h.engine.Discover(info, false); err != nil {
		return nil, err
	}
	return h.List()
}

func (h *adminHandler) NsRegister(namespace string) error {
	if h.advertiser != nil {
		h.advertiser.Shutdown()
	}
	adv, err := comms.Advertise(namespace, h.listenPort)
	if err != nil {
		return err
	}
	h.advertiser = adv
	return nil
}

func (h *adminHandler) NsSearch(namespace string) ([]clientiot.PeerSummary, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var found []clientiot.PeerSummary
	err := comms.Discover(ctx, func(entry *zeroconf.ServiceEntry) {
		if namespace != "" && entry.Instance != namespace {
			return
		}
		found = append(found, clientiot.PeerSummary{
			Addr: fmt.Sprintf("%s:%d", entry.HostName, entry.Port),
		})
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (h *adminHandler) GenKeys() (pub, priv []byte, err error) {
	keys, err := wire.GenerateKeys()
	if err != nil {
		return nil, nil, err
	}
	return []byte(keys.Public), []byte(keys.Private), nil
}

func peerSummary(p store.Peer) clientiot.PeerSummary {
	addr := ""
	if p.Addr != nil {
		addr = p.Addr.String()
	}
	return clientiot.PeerSummary{
		Id:         p.Id,
		Addr:       addr,
		Subscriber: p.Subscriber,
		Subscribed: p.Subscribed.String(),
	}
}
