// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package endpoint implements the IoT engine's data model: endpoint
// kinds, flags, descriptors, values, and the Info/Data containers built
// from them.
package endpoint

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the type of measurement or actuation an endpoint exposes.
type Kind uint16

const (
	Temperature Kind = 1
	Humidity    Kind = 2
	Pressure    Kind = 3
	CO2         Kind = 4
	State       Kind = 5
	Brightness  Kind = 6
	Colour      Kind = 7
)

type kindInfo struct {
	name string
	unit string
}

var knownKinds = map[Kind]kindInfo{
	Temperature: {"temperature", "C"},
	Humidity:    {"humidity", "%RH"},
	Pressure:    {"pressure", "kPa"},
	CO2:         {"co2", "ppm"},
	State:       {"state", ""},
	Brightness:  {"brightness", "%"},
	Colour:      {"colour", "rgb"},
}

// Name returns the display name of the kind, or "unknown" for an
// unrecognised numeric code.
func (k Kind) Name() string {
	if i, ok := knownKinds[k]; ok {
		return i.name
	}
	return "unknown"
}

// Unit returns the unit string for the kind, empty for unrecognised codes.
func (k Kind) Unit() string {
	if i, ok := knownKinds[k]; ok {
		return i.unit
	}
	return ""
}

// Known reports whether this is one of the canonical endpoint kinds
// rather than an opaque numeric variant.
func (k Kind) Known() bool {
	_, ok := knownKinds[k]
	return ok
}

func (k Kind) String() string {
	if i, ok := knownKinds[k]; ok {
		if i.unit != "" {
			return fmt.Sprintf("%s (%s)", i.name, i.unit)
		}
		return i.name
	}
	return fmt.Sprintf("unknown(%d)", uint16(k))
}

// ParseKind parses a kind from its display name or, failing that, from a
// raw numeric code, mirroring the CLI-facing parser in the original
// implementation.
func ParseKind(src string) (Kind, error) {
	s := strings.ToLower(strings.TrimSpace(src))

	for k, i := range knownKinds {
		if i.name == s {
			return k, nil
		}
	}

	if v, err := strconv.ParseUint(s, 10, 16); err == nil {
		return Kind(v), nil
	}

	return 0, fmt.Errorf("endpoint: unrecognised kind %q", src)
}
