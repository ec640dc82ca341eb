// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"sync"

	"github.com/luxfi/ids"

	"github.com/luxfi/iot/wire"
)

// Memory is a map-backed Store, suitable for tests and for hosts with
// no durable storage of their own.
type Memory struct {
	mu    sync.Mutex
	ident *wire.Keys
	last  *ObjectInfo
	peers map[ids.ID]Peer
	pages map[ids.ID]map[wire.Signature]*wire.Object
}

var _ Store = (*Memory)(nil)

// NewMemory constructs an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		peers: make(map[ids.ID]Peer),
		pages: make(map[ids.ID]map[wire.Signature]*wire.Object),
	}
}

func (m *Memory) Flags() Flags { return All }

func (m *Memory) GetIdent() (wire.Keys, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ident == nil {
		return wire.Keys{}, ErrNotFound
	}
	return *m.ident, nil
}

func (m *Memory) SetIdent(k wire.Keys) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ident = &k
	return nil
}

func (m *Memory) GetLast() (ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return ObjectInfo{}, ErrNotFound
	}
	return *m.last, nil
}

func (m *Memory) SetLast(info ObjectInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = &info
	return nil
}

func (m *Memory) GetPeer(id ids.ID) (Peer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.peers[id]
	if !ok {
		return Peer{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) UpdatePeer(p Peer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.peers[p.Id] = p
	return nil
}

func (m *Memory) Peers() ([]Peer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Peer, 0, len(m.peers))
	for _, p := range m.peers {
		out = append(out, p)
	}
	return out, nil
}

func (m *Memory) StorePage(id ids.ID, sig wire.Signature, page *wire.Object) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byId, ok := m.pages[id]
	if !ok {
		byId = make(map[wire.Signature]*wire.Object)
		m.pages[id] = byId
	}
	byId[sig] = page
	return nil
}

func (m *Memory) FetchPage(id ids.ID, sig wire.Signature) (*wire.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byId, ok := m.pages[id]
	if !ok {
		return nil, ErrNotFound
	}
	p, ok := byId[sig]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *Memory) Close() error { return nil }
