// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package iot

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/iot/wire"
)

// EventKind enumerates what Tick observed on a given call.
type EventKind uint8

const (
	// EventNone is returned when a tick produced no externally visible
	// change: nothing arrived, or the housekeeping pass made no change
	// worth surfacing.
	EventNone EventKind = iota
	EventSubscribedTo
	EventUnsubscribedTo
	EventSubscriberAdded
	EventSubscriberRemoved
	EventDiscovered
	EventReceivedData
)

// Event is the result of one Tick call.
type Event struct {
	Kind   EventKind
	PeerId ids.ID
	Object *wire.Object
}

func noEvent() Event { return Event{Kind: EventNone} }
