// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package store defines the pluggable persistence boundary the engine
// uses for identity keys, the service's own chain position, the peer
// table, and a cache of received pages. It mirrors the capability-gated
// Store trait of the engine this module replaces: a host can back it
// with an in-memory map or an embedded KV store depending on what the
// target can afford.
package store

import (
	"errors"
	"net"

	"github.com/luxfi/ids"

	"github.com/luxfi/iot/wire"
)

// Flags advertises which capabilities a Store implementation provides.
// A host that only needs to relay data, for instance, can skip PAGES.
type Flags uint8

const (
	Keys Flags = 1 << iota
	Sigs
	Pages

	All = Keys | Sigs | Pages
)

func (f Flags) Has(c Flags) bool { return f&c == c }

// ErrNotFound is returned by lookups that find nothing on record.
var ErrNotFound = errors.New("store: not found")

// SubscribeState is this side's view of a subscription to a given peer,
// mirroring the engine's peer state machine (spec.md §5).
type SubscribeState uint8

const (
	SubscribeNone SubscribeState = iota
	SubscribeSubscribing
	SubscribeSubscribed
	SubscribeUnsubscribing
)

func (s SubscribeState) String() string {
	switch s {
	case SubscribeNone:
		return "none"
	case SubscribeSubscribing:
		return "subscribing"
	case SubscribeSubscribed:
		return "subscribed"
	case SubscribeUnsubscribing:
		return "unsubscribing"
	default:
		return "unknown"
	}
}

// Peer is the engine's record of another node: its address, its
// advertised public key (once known), whether it subscribes to us, and
// our subscription state toward it.
type Peer struct {
	Id         ids.ID
	PublicKey  []byte
	Addr       *net.UDPAddr
	Subscriber bool
	Subscribed SubscribeState
	// RequestId correlates a pending Subscribing/Unsubscribing state
	// with the request that initiated it, so a late or mismatched
	// response cannot be mistaken for the real one.
	RequestId uint32
	// LastRenewed drives subscriber lease expiry and subscription
	// renewal (the 3xLeaseInterval rule recorded in DESIGN.md's Open
	// Question decisions). LastSeen records when the peer last sent a
	// subscribe or unsubscribe request.
	LastSeen    int64
	LastRenewed int64
}

// ObjectInfo records where the service's own chain currently stands, so
// a restart can continue it instead of starting over. PrimarySig is
// kept distinct from Chain.LastSig because the latter advances with
// every published data object, while the engine needs the primary
// page's own signature to fetch it back out of the page cache on
// startup (see the primary-regeneration Open Question in SPEC_FULL.md).
type ObjectInfo struct {
	Chain      wire.Chain
	PrimarySig *wire.Signature
}

// Store is the persistence boundary the engine depends on. Every method
// is safe to call from the engine's single-threaded tick loop only; no
// internal locking is implied or required.
type Store interface {
	Flags() Flags

	// GetIdent and SetIdent persist this service's own signing keys.
	GetIdent() (wire.Keys, error)
	SetIdent(wire.Keys) error

	// GetLast and SetLast persist this service's chain position.
	GetLast() (ObjectInfo, error)
	SetLast(ObjectInfo) error

	// GetPeer, UpdatePeer and Peers manage the peer table.
	GetPeer(id ids.ID) (Peer, error)
	UpdatePeer(Peer) error
	Peers() ([]Peer, error)

	// StorePage and FetchPage cache signed objects (primary pages and
	// data objects, this service's own and its peers') per owner id,
	// keyed by signature.
	StorePage(id ids.ID, sig wire.Signature, page *wire.Object) error
	FetchPage(id ids.ID, sig wire.Signature) (*wire.Object, error)

	Close() error
}
