// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package iot

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/luxfi/iot/endpoint"
)

// descriptorEntry is the JSON shape of one line in a descriptors file:
// a human-readable endpoint kind name and its access flags.
type descriptorEntry struct {
	Kind  string `json:"kind"`
	Flags string `json:"flags"`
}

// LoadDescriptors parses the descriptor set a node advertises in its
// primary page from a JSON file, e.g.:
//
//	[{"kind": "temperature", "flags": "r"}, {"kind": "brightness", "flags": "rw"}]
func LoadDescriptors(path string) ([]endpoint.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read descriptors %s: %w", path, err)
	}

	var entries []descriptorEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("config: parse descriptors %s: %w", path, err)
	}

	out := make([]endpoint.Descriptor, 0, len(entries))
	for _, e := range entries {
		kind, err := endpoint.ParseKind(e.Kind)
		if err != nil {
			return nil, fmt.Errorf("config: descriptor kind %q: %w", e.Kind, err)
		}
		flags, err := parseFlags(e.Flags)
		if err != nil {
			return nil, fmt.Errorf("config: descriptor flags %q: %w", e.Flags, err)
		}
		out = append(out, endpoint.NewDescriptor(kind, flags))
	}

	return out, nil
}

func parseFlags(s string) (endpoint.Flags, error) {
	switch s {
	case "r":
		return endpoint.R, nil
	case "w":
		return endpoint.W, nil
	case "rw", "wr":
		return endpoint.RW, nil
	default:
		return 0, fmt.Errorf("unknown flags %q, want one of r, w, rw", s)
	}
}
