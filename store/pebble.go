// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"bytes"

	"github.com/cockroachdb/pebble"
	"github.com/luxfi/ids"

	"github.com/luxfi/iot/wire"
)

// Pebble is an embedded-KV-backed Store for hosts that need their
// identity, chain position, and peer table to survive a restart. The
// original engine modeled this with sled's tree-per-namespace API;
// pebble has no native notion of trees, so namespaces here are plain
// byte-string key prefixes over a single keyspace, grouped below.
type Pebble struct {
	db *pebble.DB
}

var _ Store = (*Pebble)(nil)

const (
	nsIdent = "ident"
	nsLast  = "last"
	nsPeer  = "peer:"
	nsPage  = "page:"
)

// OpenPebble opens (creating if absent) a pebble-backed Store rooted at
// dir.
func OpenPebble(dir string) (*Pebble, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Pebble{db: db}, nil
}

func (p *Pebble) Flags() Flags { return All }

func (p *Pebble) get(key []byte) ([]byte, error) {
	v, closer, err := p.db.Get(key)
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, closer.Close()
}

func (p *Pebble) set(key, value []byte) error {
	return p.db.Set(key, value, pebble.Sync)
}

func (p *Pebble) GetIdent() (wire.Keys, error) {
	v, err := p.get([]byte(nsIdent))
	if err != nil {
		return wire.Keys{}, err
	}
	return decodeKeys(v)
}

func (p *Pebble) SetIdent(k wire.Keys) error {
	return p.set([]byte(nsIdent), encodeKeys(k))
}

func (p *Pebble) GetLast() (ObjectInfo, error) {
	v, err := p.get([]byte(nsLast))
	if err != nil {
		return ObjectInfo{}, err
	}
	return decodeObjectInfo(v)
}

func (p *Pebble) SetLast(info ObjectInfo) error {
	return p.set([]byte(nsLast), encodeObjectInfo(info))
}

func (p *Pebble) GetPeer(id ids.ID) (Peer, error) {
	v, err := p.get(idKey(nsPeer, id))
	if err != nil {
		return Peer{}, err
	}
	return decodePeer(v)
}

func (p *Pebble) UpdatePeer(peer Peer) error {
	return p.set(idKey(nsPeer, peer.Id), encodePeer(peer))
}

func (p *Pebble) Peers() ([]Peer, error) {
	lower := []byte(nsPeer)
	upper := append(append([]byte{}, lower...), 0xff)

	iter, err := p.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var peers []Peer
	for iter.First(); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), lower) {
			continue
		}
		peer, err := decodePeer(iter.Value())
		if err != nil {
			return nil, err
		}
		peers = append(peers, peer)
	}
	return peers, iter.Error()
}

func (p *Pebble) StorePage(id ids.ID, sig wire.Signature, page *wire.Object) error {
	buf := make([]byte, 4096)
	n, err := page.Encode(buf)
	if err != nil {
		return err
	}
	return p.set(pageKey(id, sig), buf[:n])
}

func (p *Pebble) FetchPage(id ids.ID, sig wire.Signature) (*wire.Object, error) {
	v, err := p.get(pageKey(id, sig))
	if err != nil {
		return nil, err
	}
	obj, _, err := wire.Decode(v)
	return obj, err
}

func (p *Pebble) Close() error {
	return p.db.Close()
}
