// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package iot

import (
	"net"
	"time"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/iot/comms"
	"github.com/luxfi/iot/endpoint"
	iotlog "github.com/luxfi/iot/log"
	iotmetrics "github.com/luxfi/iot/metrics/iot"
	"github.com/luxfi/iot/store"
	"github.com/luxfi/iot/wire"
)

// DefaultLeaseInterval is how often an outbound subscription must be
// renewed, and a third of how long an inbound subscriber may go silent
// before being dropped, per the Open Question resolved in
// SPEC_FULL.md §4.4 (subscriber lease expiry).
const DefaultLeaseInterval = 5 * time.Minute

// DefaultBufferSize is the receive buffer used by Tick, sized for
// embedded targets per spec.md's size budget.
const DefaultBufferSize = 512

// Now lets the engine's housekeeping clock be substituted in tests;
// production callers leave it nil and get time.Now.
type Now func() time.Time

// Config bundles an Engine's fixed parameters.
type Config struct {
	Store         store.Store
	Comms         comms.Comms
	Info          endpoint.Info
	InfoMaxLen    int
	DataMaxLen    int
	LeaseInterval time.Duration
	BufferSize    int
	Log           log.Logger
	Now           Now
	Metrics       *iotmetrics.Metrics
}

// Engine is the cooperative, single-threaded core that owns a service's
// identity, its published data stream, and its peer/subscription state.
// Every exported method except Tick is expected to be called from the
// same goroutine that drives Tick; the type does no internal locking.
type Engine struct {
	svc   *wire.Service
	store store.Store
	comms comms.Comms
	log   log.Logger
	now   Now

	info       endpoint.Info
	infoMaxLen int
	dataMaxLen int

	primary       *wire.Object
	leaseInterval time.Duration
	bufSize       int
	metrics       *iotmetrics.Metrics

	nextReqId uint32
}

// New constructs an Engine, loading (or generating) its identity and
// chain position from cfg.Store, and publishing a fresh primary page
// only if cfg.Info differs from the one already on record.
func New(cfg Config) (*Engine, error) {
	if cfg.LeaseInterval == 0 {
		cfg.LeaseInterval = DefaultLeaseInterval
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	if cfg.Log == nil {
		cfg.Log = iotlog.NoLog{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	keys, err := cfg.Store.GetIdent()
	if err == store.ErrNotFound {
		keys, err = wire.GenerateKeys()
		if err != nil {
			return nil, err
		}
		if err := keys.GenerateSecret(); err != nil {
			return nil, err
		}
		if err := cfg.Store.SetIdent(keys); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	svc, err := wire.NewService(keys)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		svc:           svc,
		store:         cfg.Store,
		comms:         cfg.Comms,
		log:           cfg.Log,
		now:           cfg.Now,
		info:          cfg.Info,
		infoMaxLen:    cfg.InfoMaxLen,
		dataMaxLen:    cfg.DataMaxLen,
		leaseInterval: cfg.LeaseInterval,
		bufSize:       cfg.BufferSize,
		metrics:       cfg.Metrics,
	}

	last, err := cfg.Store.GetLast()
	if err == nil {
		svc.Restore(last.Chain)
	} else if err != store.ErrNotFound {
		return nil, err
	}

	if err := e.ensurePrimary(last); err != nil {
		return nil, err
	}

	return e, nil
}

// ensurePrimary reuses the cached primary page when its descriptors
// already match e.info, and mints a fresh one otherwise.
func (e *Engine) ensurePrimary(last store.ObjectInfo) error {
	if last.PrimarySig != nil {
		cached, err := e.store.FetchPage(e.svc.Id, *last.PrimarySig)
		if err == nil {
			existing, err := wire.DecodeInfoBody(cached, e.svc.Keys.Secret, e.infoMaxLen)
			if err == nil && existing.Equal(e.info) {
				e.primary = cached
				return nil
			}
		} else if err != store.ErrNotFound {
			return err
		}
	}

	page, err := e.svc.PublishPrimary(e.info)
	if err != nil {
		return err
	}
	e.primary = page

	if e.store.Flags().Has(store.Pages) {
		if err := e.store.StorePage(e.svc.Id, page.Signature, page); err != nil {
			return err
		}
	}

	sig := page.Signature
	return e.store.SetLast(store.ObjectInfo{Chain: e.svc.Chain, PrimarySig: &sig})
}

// Id is this engine's service identifier.
func (e *Engine) Id() ids.ID { return e.svc.Id }

// SetInfo updates the descriptor set this engine advertises, minting and
// persisting a fresh primary page only if info differs from the one
// already published.
func (e *Engine) SetInfo(info endpoint.Info) error {
	e.info = info
	return e.ensurePrimary(store.ObjectInfo{Chain: e.svc.Chain, PrimarySig: primarySigOf(e.primary)})
}

// Primary returns the currently published primary page.
func (e *Engine) Primary() *wire.Object { return e.primary }

func (e *Engine) dropped(reason string) {
	if e.metrics != nil {
		e.metrics.DatagramsDropped.WithLabelValues(reason).Inc()
	}
}

func (e *Engine) allocRequestId() uint32 {
	e.nextReqId++
	return e.nextReqId
}

// Publish mints a new data object carrying set, storing it and sending
// it to every peer subscribed to us whose address is known.
func (e *Engine) Publish(set endpoint.DataSet) (wire.Signature, error) {
	obj, err := e.svc.PublishData(set)
	if err != nil {
		return wire.Signature{}, err
	}
	if e.metrics != nil {
		e.metrics.ObjectsPublished.Inc()
	}

	if e.store.Flags().Has(store.Pages) {
		if err := e.store.StorePage(e.svc.Id, obj.Signature, obj); err != nil {
			return wire.Signature{}, err
		}
	}
	if err := e.store.SetLast(store.ObjectInfo{Chain: e.svc.Chain, PrimarySig: primarySigOf(e.primary)}); err != nil {
		return wire.Signature{}, err
	}

	peers, err := e.store.Peers()
	if err != nil {
		return wire.Signature{}, err
	}

	pkt := Packet{Kind: PacketObject, FromId: e.svc.Id, Object: obj}
	buf := make([]byte, e.bufSize)
	n, err := pkt.Encode(buf)
	if err != nil {
		return wire.Signature{}, err
	}

	for _, p := range peers {
		if !p.Subscriber || p.Addr == nil {
			continue
		}
		if err := e.comms.Send(p.Addr, buf[:n]); err != nil {
			e.log.Warn("publish: send to subscriber failed", "peer", p.Id, "err", err)
			continue
		}
		if e.metrics != nil {
			e.metrics.DatagramsOut.Inc()
		}
	}

	return obj.Signature, nil
}

func primarySigOf(primary *wire.Object) *wire.Signature {
	if primary == nil {
		return nil
	}
	sig := primary.Signature
	return &sig
}

// Subscribe requests updates from the peer id, reachable at addr. The
// subscription is renewed automatically by Tick's housekeeping pass
// every LeaseInterval until Unsubscribe is called.
func (e *Engine) Subscribe(id ids.ID, addr *net.UDPAddr) error {
	peer, err := e.store.GetPeer(id)
	if err != nil && err != store.ErrNotFound {
		return err
	}
	peer.Id = id
	peer.Addr = addr
	needKey := len(peer.PublicKey) == 0

	reqId := e.allocRequestId()
	peer.Subscribed = store.SubscribeSubscribing
	peer.RequestId = reqId
	peer.LastRenewed = e.now().Unix()

	if err := e.store.UpdatePeer(peer); err != nil {
		return err
	}

	return e.sendRequest(reqId, Request{Kind: ReqSubscribe, Id: id, PubKeyRequest: needKey}, addr)
}

// Unsubscribe asks peer id to stop forwarding updates to us.
func (e *Engine) Unsubscribe(id ids.ID) error {
	peer, err := e.store.GetPeer(id)
	if err != nil {
		return err
	}
	if peer.Addr == nil {
		return store.ErrNotFound
	}

	reqId := e.allocRequestId()
	peer.Subscribed = store.SubscribeUnsubscribing
	peer.RequestId = reqId

	if err := e.store.UpdatePeer(peer); err != nil {
		return err
	}

	return e.sendRequest(reqId, Request{Kind: ReqUnsubscribe, Id: id}, peer.Addr)
}

// Discover broadcasts a filter, inviting any service whose descriptors
// overlap it to reply with their primary page. The OR-match semantics
// are spec.md §5's permissive discovery rule: any one matching
// descriptor is enough.
func (e *Engine) Discover(filter endpoint.Info, pubKeyRequest bool) (uint32, error) {
	reqId := e.allocRequestId()
	req := Request{Kind: ReqDiscover, Filter: filter, PubKeyRequest: pubKeyRequest}

	pkt := Packet{Kind: PacketRequest, FromId: e.svc.Id, RequestId: reqId, Request: req}
	buf := make([]byte, e.bufSize)
	n, err := pkt.Encode(buf)
	if err != nil {
		return 0, err
	}
	if err := e.comms.Broadcast(buf[:n]); err != nil {
		return 0, err
	}
	return reqId, nil
}

// Query asks peer id, reachable at addr, to send its primary page. The
// reply arrives on a later Tick as an EventDiscovered event; Query
// itself does not block waiting for it.
func (e *Engine) Query(id ids.ID, addr *net.UDPAddr) error {
	reqId := e.allocRequestId()
	return e.sendRequest(reqId, Request{Kind: ReqQuery, Id: id}, addr)
}

func (e *Engine) sendRequest(reqId uint32, req Request, addr net.Addr) error {
	pkt := Packet{Kind: PacketRequest, FromId: e.svc.Id, RequestId: reqId, Request: req}
	buf := make([]byte, e.bufSize)
	n, err := pkt.Encode(buf)
	if err != nil {
		return err
	}
	if err := e.comms.Send(addr, buf[:n]); err != nil {
		return err
	}
	if e.metrics != nil {
		e.metrics.DatagramsOut.Inc()
	}
	return nil
}

func (e *Engine) sendResponse(reqId uint32, resp Response, addr net.Addr) error {
	pkt := Packet{Kind: PacketResponse, FromId: e.svc.Id, RequestId: reqId, Response: resp}
	buf := make([]byte, e.bufSize)
	n, err := pkt.Encode(buf)
	if err != nil {
		return err
	}
	if err := e.comms.Send(addr, buf[:n]); err != nil {
		return err
	}
	if e.metrics != nil {
		e.metrics.DatagramsOut.Inc()
	}
	return nil
}

// Tick drives the engine: it polls comms for one inbound datagram and
// dispatches it, or performs housekeeping (lease expiry, subscription
// renewal) when nothing arrived. It never blocks.
func (e *Engine) Tick() (Event, error) {
	buf := make([]byte, e.bufSize)
	n, addr, ok, err := e.comms.Recv(buf)
	if err != nil {
		e.log.Warn("tick: recv failed", "err", err)
		return noEvent(), nil
	}
	if !ok {
		return e.houseKeep()
	}

	pkt, _, err := DecodePacket(buf[:n])
	if err != nil {
		e.log.Debug("tick: dropping malformed packet", "from", addr, "err", err)
		e.dropped(iotmetrics.ReasonMalformed)
		return noEvent(), nil
	}

	if e.metrics != nil {
		e.metrics.DatagramsIn.Inc()
	}

	if pkt.FromId == e.svc.Id {
		e.dropped(iotmetrics.ReasonSelf)
		return noEvent(), nil
	}

	switch pkt.Kind {
	case PacketRequest:
		return e.handleRequest(pkt.FromId, pkt.RequestId, pkt.Request, addr)
	case PacketResponse:
		return e.handleResponse(pkt.FromId, pkt.RequestId, pkt.Response, addr)
	case PacketObject:
		return e.handlePage(pkt.Object, addr)
	default:
		e.log.Debug("tick: dropping unsupported packet", "from", addr)
		return noEvent(), nil
	}
}
