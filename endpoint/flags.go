// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package endpoint

// Flags is a bitset describing how an endpoint may be accessed.
type Flags uint16

const (
	R  Flags = 0b01
	W  Flags = 0b10
	RW       = R | W
)

func (f Flags) Has(o Flags) bool { return f&o == o }

func (f Flags) String() string {
	switch {
	case f.Has(RW):
		return "RW"
	case f.Has(R):
		return "R"
	case f.Has(W):
		return "W"
	default:
		return "-"
	}
}
