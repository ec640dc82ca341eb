// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package iot

import (
	"net"

	"github.com/luxfi/ids"

	"github.com/luxfi/iot/endpoint"
	iotmetrics "github.com/luxfi/iot/metrics/iot"
	"github.com/luxfi/iot/store"
	"github.com/luxfi/iot/wire"
)

// handleRequest answers an inbound protocol request, mirroring the
// original engine's request table: Hello/Ping are always answered,
// Query/Subscribe/Unsubscribe only act on this engine's own id, and
// Discover answers only when the requested filter overlaps our
// descriptors. fromId is the requester's own service id, carried in the
// packet envelope since a request is not itself a signed object.
func (e *Engine) handleRequest(fromId ids.ID, reqId uint32, req Request, addr net.Addr) (Event, error) {
	switch req.Kind {
	case ReqHello, ReqPing:
		return noEvent(), e.sendResponse(reqId, Response{Kind: RespOk}, addr)

	case ReqDiscover:
		if !discoverMatches(e.info, req.Filter) {
			return noEvent(), nil
		}
		return noEvent(), e.sendResponse(reqId, Response{Kind: RespPage, Page: e.primary}, addr)

	case ReqQuery:
		if req.Id != e.svc.Id {
			return noEvent(), e.sendResponse(reqId, Response{Kind: RespStatus, Status: StatusInvalidRequest}, addr)
		}
		return noEvent(), e.sendResponse(reqId, Response{Kind: RespPage, Page: e.primary}, addr)

	case ReqSubscribe:
		if req.Id != e.svc.Id {
			return noEvent(), e.sendResponse(reqId, Response{Kind: RespStatus, Status: StatusInvalidRequest}, addr)
		}
		return e.acceptSubscriber(fromId, reqId, addr, true, req.PubKeyRequest)

	case ReqUnsubscribe:
		if req.Id != e.svc.Id {
			return noEvent(), e.sendResponse(reqId, Response{Kind: RespStatus, Status: StatusInvalidRequest}, addr)
		}
		return e.acceptSubscriber(fromId, reqId, addr, false, false)

	default:
		return noEvent(), e.sendResponse(reqId, Response{Kind: RespStatus, Status: StatusInvalidRequest}, addr)
	}
}

// discoverMatches implements the permissive OR-match: a request matches
// when any descriptor it asks for is present in ours, or when the
// filter is empty (a bare "who's out there" probe).
func discoverMatches(mine, filter endpoint.Info) bool {
	if len(filter.Descriptors) == 0 {
		return true
	}
	for _, d := range filter.Descriptors {
		if mine.Contains(d) {
			return true
		}
	}
	return false
}

func (e *Engine) acceptSubscriber(fromId ids.ID, reqId uint32, addr net.Addr, subscribe, pubKeyRequest bool) (Event, error) {
	udpAddr, ok := addr.(*net.UDPAddr)
	if !ok {
		return noEvent(), ErrUnsupported
	}

	p, err := e.store.GetPeer(fromId)
	if err != nil && err != store.ErrNotFound {
		return noEvent(), err
	}
	p.Id = fromId
	p.Addr = udpAddr
	p.Subscriber = subscribe
	p.LastSeen = e.now().Unix()
	if subscribe {
		p.LastRenewed = p.LastSeen
	}

	if err := e.store.UpdatePeer(p); err != nil {
		return noEvent(), err
	}

	resp := Response{Kind: RespOk}
	if pubKeyRequest {
		resp.PublicKey = e.svc.Keys.Public
	}
	if err := e.sendResponse(reqId, resp, addr); err != nil {
		return noEvent(), err
	}

	e.refreshGauges()

	kind := EventSubscriberAdded
	if !subscribe {
		kind = EventSubscriberRemoved
	}
	return Event{Kind: kind, PeerId: p.Id}, nil
}

// refreshGauges recomputes the peer-count gauges from the store. It is
// a no-op when no metrics are configured.
func (e *Engine) refreshGauges() {
	if e.metrics == nil {
		return
	}
	peers, err := e.store.Peers()
	if err != nil {
		return
	}
	var known, subscribers, subscriptions float64
	for _, p := range peers {
		known++
		if p.Subscriber {
			subscribers++
		}
		if p.Subscribed == store.SubscribeSubscribed {
			subscriptions++
		}
	}
	e.metrics.PeersKnown.Set(known)
	e.metrics.SubscribersActive.Set(subscribers)
	e.metrics.SubscriptionsOut.Set(subscriptions)
}

// handleResponse stores any public key the response carries on the
// sender's peer record (with its address), then correlates the response
// with the request that triggered it via RequestId, advancing the peer
// subscription state machine or recording a discovered page.
func (e *Engine) handleResponse(fromId ids.ID, reqId uint32, resp Response, addr net.Addr) (Event, error) {
	if len(resp.PublicKey) > 0 {
		sender, err := e.store.GetPeer(fromId)
		if err != nil && err != store.ErrNotFound {
			return noEvent(), err
		}
		sender.Id = fromId
		sender.PublicKey = resp.PublicKey
		if udpAddr, ok := addr.(*net.UDPAddr); ok {
			sender.Addr = udpAddr
		}
		if err := e.store.UpdatePeer(sender); err != nil {
			return noEvent(), err
		}
	}

	peers, err := e.store.Peers()
	if err != nil {
		return noEvent(), err
	}

	for _, p := range peers {
		if p.RequestId != reqId {
			continue
		}

		switch {
		case p.Subscribed == store.SubscribeSubscribing && resp.Kind == RespOk:
			p.Subscribed = store.SubscribeSubscribed
			p.LastRenewed = e.now().Unix()
			if len(resp.PublicKey) > 0 {
				p.PublicKey = resp.PublicKey
			}
			if err := e.store.UpdatePeer(p); err != nil {
				return noEvent(), err
			}
			e.refreshGauges()
			return Event{Kind: EventSubscribedTo, PeerId: p.Id}, nil

		case p.Subscribed == store.SubscribeUnsubscribing && resp.Kind == RespOk:
			p.Subscribed = store.SubscribeNone
			if err := e.store.UpdatePeer(p); err != nil {
				return noEvent(), err
			}
			e.refreshGauges()
			return Event{Kind: EventUnsubscribedTo, PeerId: p.Id}, nil
		}
	}

	if resp.Kind == RespPage && resp.Page != nil {
		return e.learnPage(resp.Page, addr)
	}

	return noEvent(), nil
}

// handlePage processes an unsolicited signed object: a primary page
// (from discovery or a direct query reply sent as an object) or a data
// object forwarded by a service we are subscribed to.
func (e *Engine) handlePage(obj *wire.Object, addr net.Addr) (Event, error) {
	if obj.Id == e.svc.Id {
		return noEvent(), nil
	}

	if obj.Kind == wire.KindPrimary {
		return e.learnPage(obj, addr)
	}

	peer, err := e.store.GetPeer(obj.Id)
	if err != nil {
		if err == store.ErrNotFound {
			return noEvent(), nil
		}
		return noEvent(), err
	}
	if peer.Subscribed != store.SubscribeSubscribed {
		return noEvent(), nil
	}
	if len(peer.PublicKey) == 0 {
		e.log.Debug("handlePage: dropping data object from peer with no known key", "peer", obj.Id)
		e.dropped(iotmetrics.ReasonUnknownPeer)
		return noEvent(), nil
	}
	if err := obj.Verify(peer.PublicKey); err != nil {
		e.log.Debug("handlePage: bad signature", "peer", obj.Id, "err", err)
		e.dropped(iotmetrics.ReasonBadSignature)
		return noEvent(), nil
	}

	if e.store.Flags().Has(store.Pages) {
		if err := e.store.StorePage(obj.Id, obj.Signature, obj); err != nil {
			return noEvent(), err
		}
	}

	return Event{Kind: EventReceivedData, PeerId: obj.Id, Object: obj}, nil
}

func (e *Engine) learnPage(obj *wire.Object, addr net.Addr) (Event, error) {
	if obj.PublicKey == nil {
		e.log.Debug("learnPage: dropping primary page with no embedded key", "peer", obj.Id)
		e.dropped(iotmetrics.ReasonUnknownPeer)
		return noEvent(), nil
	}
	if err := obj.Verify(obj.PublicKey); err != nil {
		e.log.Debug("learnPage: bad signature", "peer", obj.Id, "err", err)
		e.dropped(iotmetrics.ReasonBadSignature)
		return noEvent(), nil
	}

	peer, err := e.store.GetPeer(obj.Id)
	if err != nil && err != store.ErrNotFound {
		return noEvent(), err
	}
	peer.Id = obj.Id
	peer.PublicKey = obj.PublicKey
	if udpAddr, ok := addr.(*net.UDPAddr); ok {
		peer.Addr = udpAddr
	}
	if err := e.store.UpdatePeer(peer); err != nil {
		return noEvent(), err
	}

	if e.store.Flags().Has(store.Pages) {
		if err := e.store.StorePage(obj.Id, obj.Signature, obj); err != nil {
			return noEvent(), err
		}
	}

	return Event{Kind: EventDiscovered, PeerId: obj.Id, Object: obj}, nil
}

// houseKeep runs once per Tick call that found nothing to receive: it
// expires stale inbound subscribers and renews outbound subscriptions
// that are due, per the lease rules resolved in SPEC_FULL.md.
func (e *Engine) houseKeep() (Event, error) {
	now := e.now().Unix()
	lease := int64(e.leaseInterval.Seconds())

	peers, err := e.store.Peers()
	if err != nil {
		return noEvent(), err
	}

	for _, p := range peers {
		if p.Subscriber && now-p.LastRenewed > 3*lease {
			p.Subscriber = false
			if err := e.store.UpdatePeer(p); err != nil {
				return noEvent(), err
			}
			e.refreshGauges()
			return Event{Kind: EventSubscriberRemoved, PeerId: p.Id}, nil
		}

		if p.Subscribed == store.SubscribeSubscribed && now-p.LastRenewed >= lease && p.Addr != nil {
			reqId := e.allocRequestId()
			p.RequestId = reqId
			p.LastRenewed = now
			if err := e.store.UpdatePeer(p); err != nil {
				return noEvent(), err
			}
			if err := e.sendRequest(reqId, Request{Kind: ReqSubscribe, Id: p.Id}, p.Addr); err != nil {
				return noEvent(), err
			}
			return noEvent(), nil
		}
	}

	return noEvent(), nil
}
