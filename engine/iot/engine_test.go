// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package iot

import (
	"net"
	"testing"
	"time"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/iot/comms"
	"github.com/luxfi/iot/endpoint"
	"github.com/luxfi/iot/store"
	"github.com/luxfi/iot/wire"
)

func newTestEngine(t *testing.T, info endpoint.Info) (*Engine, *comms.Mock) {
	t.Helper()
	mock := comms.NewMock(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 10100})
	e, err := New(Config{
		Store: store.NewMemory(),
		Comms: mock,
		Info:  info,
	})
	require.NoError(t, err)
	return e, mock
}

func peerAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4(10, 0, 0, 9), Port: 10100}
}

func peerFixture(t *testing.T) ids.ID {
	t.Helper()
	keys, err := wire.GenerateKeys()
	require.NoError(t, err)
	id, err := keys.Id()
	require.NoError(t, err)
	return id
}

func TestHandleHelloAndPing(t *testing.T) {
	e, mock := newTestEngine(t, endpoint.Info{})
	from := peerAddr()
	fromId := peerFixture(t)

	for _, kind := range []RequestKind{ReqHello, ReqPing} {
		ev, err := e.handleRequest(fromId, 1, Request{Kind: kind}, from)
		require.NoError(t, err)
		require.Equal(t, EventNone, ev.Kind)
	}

	require.Len(t, mock.Sent, 2)
	for _, s := range mock.Sent {
		pkt, _, err := DecodePacket(s.Data)
		require.NoError(t, err)
		require.Equal(t, PacketResponse, pkt.Kind)
		require.Equal(t, RespOk, pkt.Response.Kind)
	}
}

func TestHandleSubscribeMarksSubscriber(t *testing.T) {
	e, mock := newTestEngine(t, endpoint.Info{})
	from := peerAddr()
	fromId := peerFixture(t)

	ev, err := e.handleRequest(fromId, 5, Request{Kind: ReqSubscribe, Id: e.Id()}, from)
	require.NoError(t, err)
	require.Equal(t, EventSubscriberAdded, ev.Kind)

	require.Len(t, mock.Sent, 1)
	pkt, _, err := DecodePacket(mock.Sent[0].Data)
	require.NoError(t, err)
	require.Equal(t, RespOk, pkt.Response.Kind)

	p, err := e.store.GetPeer(fromId)
	require.NoError(t, err)
	require.True(t, p.Subscriber)
}

func TestHandleUnsubscribeClearsSubscriber(t *testing.T) {
	e, _ := newTestEngine(t, endpoint.Info{})
	from := peerAddr()
	fromId := peerFixture(t)

	_, err := e.handleRequest(fromId, 5, Request{Kind: ReqSubscribe, Id: e.Id()}, from)
	require.NoError(t, err)

	ev, err := e.handleRequest(fromId, 6, Request{Kind: ReqUnsubscribe, Id: e.Id()}, from)
	require.NoError(t, err)
	require.Equal(t, EventSubscriberRemoved, ev.Kind)

	p, err := e.store.GetPeer(fromId)
	require.NoError(t, err)
	require.False(t, p.Subscriber)
}

func TestHandleSubscribeWrongIdIsInvalid(t *testing.T) {
	e, mock := newTestEngine(t, endpoint.Info{})
	from := peerAddr()
	fromId := peerFixture(t)

	_, err := e.handleRequest(fromId, 5, Request{Kind: ReqSubscribe}, from)
	require.NoError(t, err)

	pkt, _, err := DecodePacket(mock.Sent[0].Data)
	require.NoError(t, err)
	require.Equal(t, RespStatus, pkt.Response.Kind)
	require.Equal(t, StatusInvalidRequest, pkt.Response.Status)
}

func TestHandleDiscoverMatchesOnOverlap(t *testing.T) {
	info, err := endpoint.NewInfo(0, endpoint.NewDescriptor(endpoint.Temperature, endpoint.R))
	require.NoError(t, err)
	e, mock := newTestEngine(t, info)
	from := peerAddr()
	fromId := peerFixture(t)

	filter, err := endpoint.NewInfo(0, endpoint.NewDescriptor(endpoint.Temperature, endpoint.R))
	require.NoError(t, err)

	ev, err := e.handleRequest(fromId, 9, Request{Kind: ReqDiscover, Filter: filter}, from)
	require.NoError(t, err)
	require.Equal(t, EventNone, ev.Kind)
	require.Len(t, mock.Sent, 1)

	pkt, _, err := DecodePacket(mock.Sent[0].Data)
	require.NoError(t, err)
	require.Equal(t, RespPage, pkt.Response.Kind)
	require.Equal(t, e.Id(), pkt.Response.Page.Id)
}

func TestHandleDiscoverNoMatchIsSilent(t *testing.T) {
	info, err := endpoint.NewInfo(0, endpoint.NewDescriptor(endpoint.Humidity, endpoint.R))
	require.NoError(t, err)
	e, mock := newTestEngine(t, info)
	from := peerAddr()
	fromId := peerFixture(t)

	filter, err := endpoint.NewInfo(0, endpoint.NewDescriptor(endpoint.Temperature, endpoint.R))
	require.NoError(t, err)

	_, err = e.handleRequest(fromId, 9, Request{Kind: ReqDiscover, Filter: filter}, from)
	require.NoError(t, err)
	require.Empty(t, mock.Sent)
}

func TestPublishForwardsToSubscribers(t *testing.T) {
	e, mock := newTestEngine(t, endpoint.Info{})
	from := peerAddr()
	fromId := peerFixture(t)

	_, err := e.handleRequest(fromId, 1, Request{Kind: ReqSubscribe, Id: e.Id()}, from)
	require.NoError(t, err)
	mock.Sent = nil

	set, err := endpoint.NewDataSet(0, endpoint.NewData(endpoint.Float32Value(21.5)))
	require.NoError(t, err)

	sig, err := e.Publish(set)
	require.NoError(t, err)
	require.NotZero(t, sig)

	require.Len(t, mock.Sent, 1)
	pkt, _, err := DecodePacket(mock.Sent[0].Data)
	require.NoError(t, err)
	require.Equal(t, PacketObject, pkt.Kind)
	require.Equal(t, e.Id(), pkt.Object.Id)
}

func TestSubscribeThenResponseTransitionsToSubscribed(t *testing.T) {
	e, mock := newTestEngine(t, endpoint.Info{})
	to := peerAddr()
	peerId := peerFixture(t)

	require.NoError(t, e.Subscribe(peerId, to))
	require.Len(t, mock.Sent, 1)

	reqPkt, _, err := DecodePacket(mock.Sent[0].Data)
	require.NoError(t, err)

	ev, err := e.handleResponse(peerId, reqPkt.RequestId, Response{Kind: RespOk}, to)
	require.NoError(t, err)
	require.Equal(t, EventSubscribedTo, ev.Kind)

	p, err := e.store.GetPeer(peerId)
	require.NoError(t, err)
	require.Equal(t, store.SubscribeSubscribed, p.Subscribed)
}

func TestSelfAddressedDatagramIsIgnored(t *testing.T) {
	e, mock := newTestEngine(t, endpoint.Info{})

	// A broadcast heard back arrives from the interface address, not
	// comms.LocalAddr()'s bound 0.0.0.0 — the drop must key on the
	// packet's sender id, not the source address.
	from := peerAddr()
	pkt := Packet{Kind: PacketRequest, FromId: e.Id(), RequestId: 1, Request: Request{Kind: ReqDiscover}}
	buf := make([]byte, 512)
	n, err := pkt.Encode(buf)
	require.NoError(t, err)
	mock.Deliver(from, buf[:n])

	ev, err := e.Tick()
	require.NoError(t, err)
	require.Equal(t, EventNone, ev.Kind)

	peers, err := e.store.Peers()
	require.NoError(t, err)
	require.Empty(t, peers)
}

func TestHouseKeepExpiresStaleSubscriber(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	cur := start
	clock := func() time.Time { return cur }

	mock := comms.NewMock(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 10100})
	st := store.NewMemory()
	e, err := New(Config{Store: st, Comms: mock, Now: clock, LeaseInterval: time.Minute})
	require.NoError(t, err)

	from := peerAddr()
	fromId := peerFixture(t)
	_, err = e.handleRequest(fromId, 1, Request{Kind: ReqSubscribe, Id: e.Id()}, from)
	require.NoError(t, err)

	cur = start.Add(4 * time.Minute)
	ev, err := e.houseKeep()
	require.NoError(t, err)
	require.Equal(t, EventSubscriberRemoved, ev.Kind)

	p, err := e.store.GetPeer(fromId)
	require.NoError(t, err)
	require.False(t, p.Subscriber)
}

// TestSubscribeLearnsKeyThenAcceptsData exercises the pub-key-request
// flow end to end: Subscribe asks for the peer's key since none is on
// file, the ack carries it, and a subsequent data object from that peer
// verifies instead of being dropped as unknown.
func TestSubscribeLearnsKeyThenAcceptsData(t *testing.T) {
	e, mock := newTestEngine(t, endpoint.Info{})
	peerAddrVal := peerAddr()

	peerKeys, err := wire.GenerateKeys()
	require.NoError(t, err)
	peerSvc, err := wire.NewService(peerKeys)
	require.NoError(t, err)

	require.NoError(t, e.Subscribe(peerSvc.Id, peerAddrVal))
	require.Len(t, mock.Sent, 1)

	reqPkt, _, err := DecodePacket(mock.Sent[0].Data)
	require.NoError(t, err)
	require.True(t, reqPkt.Request.PubKeyRequest)

	ev2, err := e.handleResponse(peerSvc.Id, reqPkt.RequestId, Response{Kind: RespOk, PublicKey: peerKeys.Public}, peerAddrVal)
	require.NoError(t, err)
	require.Equal(t, EventSubscribedTo, ev2.Kind)

	p, err := e.store.GetPeer(peerSvc.Id)
	require.NoError(t, err)
	require.Equal(t, []byte(peerKeys.Public), []byte(p.PublicKey))

	set, err := endpoint.NewDataSet(0, endpoint.NewData(endpoint.Float32Value(21.5)))
	require.NoError(t, err)
	obj, err := peerSvc.PublishData(set)
	require.NoError(t, err)

	ev3, err := e.handlePage(obj, peerAddrVal)
	require.NoError(t, err)
	require.Equal(t, EventReceivedData, ev3.Kind)
}
