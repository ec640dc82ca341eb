// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package iot

import (
	"testing"
	"time"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/iot/endpoint"
	iotlog "github.com/luxfi/iot/log"
)

type fakeHandler struct {
	peers []PeerSummary
}

func (f *fakeHandler) Create() (ids.ID, error)                          { return ids.ID{1, 2, 3}, nil }
func (f *fakeHandler) Register(descriptors []endpoint.Descriptor) error { return nil }
func (f *fakeHandler) Publish(data []endpoint.Data) error               { return nil }
func (f *fakeHandler) Locate(id ids.ID) (PeerSummary, bool, error) {
	for _, p := range f.peers {
		if p.Id == id {
			return p, true, nil
		}
	}
	return PeerSummary{}, false, nil
}
func (f *fakeHandler) Info() ([]byte, error)                  { return []byte("page"), nil }
func (f *fakeHandler) List() ([]PeerSummary, error)           { return f.peers, nil }
func (f *fakeHandler) Subscribe(id ids.ID, addr string) error { return nil }
func (f *fakeHandler) Unsubscribe(id ids.ID) error            { return nil }
func (f *fakeHandler) Query(id ids.ID) ([]byte, error)        { return []byte("remote-page"), nil }
func (f *fakeHandler) Discover(filter []endpoint.Descriptor) ([]PeerSummary, error) {
	return f.peers, nil
}
func (f *fakeHandler) NsRegister(namespace string) error { return nil }
func (f *fakeHandler) NsSearch(namespace string) ([]PeerSummary, error) {
	return f.peers, nil
}
func (f *fakeHandler) GenKeys() (pub, priv []byte, err error) {
	return []byte{1}, []byte{2}, nil
}

func startServer(t *testing.T, h Handler) (*Server, string) {
	t.Helper()
	srv, err := Listen("tcp", "127.0.0.1:0", iotlog.NoLog{})
	require.NoError(t, err)
	go srv.Accept()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if srv.Drain(h) {
				continue
			}
			select {
			case <-time.After(time.Millisecond):
			case <-done:
				return
			}
		}
	}()
	t.Cleanup(func() { srv.Close() })

	return srv, srv.ln.Addr().String()
}

func TestClientServerRoundTrip(t *testing.T) {
	h := &fakeHandler{peers: []PeerSummary{{Id: ids.ID{9}, Addr: "10.0.0.5:10100", Subscriber: true}}}
	_, addr := startServer(t, h)

	c, err := Dial("tcp", addr)
	require.NoError(t, err)
	defer c.Close()

	id, err := c.Create()
	require.NoError(t, err)
	require.Equal(t, ids.ID{1, 2, 3}, id)

	page, err := c.Info()
	require.NoError(t, err)
	require.Equal(t, []byte("page"), page)

	peers, err := c.List()
	require.NoError(t, err)
	require.Len(t, peers, 1)
	require.Equal(t, ids.ID{9}, peers[0].Id)

	p, err := c.Locate(ids.ID{9})
	require.NoError(t, err)
	require.Equal(t, "10.0.0.5:10100", p.Addr)

	pub, priv, err := c.GenKeys()
	require.NoError(t, err)
	require.Equal(t, []byte{1}, pub)
	require.Equal(t, []byte{2}, priv)
}

func TestClientLocateUnknownPeerErrors(t *testing.T) {
	h := &fakeHandler{}
	_, addr := startServer(t, h)

	c, err := Dial("tcp", addr)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Locate(ids.ID{42})
	require.Error(t, err)
}
