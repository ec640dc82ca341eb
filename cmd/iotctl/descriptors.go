// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/luxfi/iot/endpoint"
)

// parseDescriptors parses a comma-separated list of kind:flags pairs,
// e.g. "temperature:r,brightness:rw".
func parseDescriptors(s string) ([]endpoint.Descriptor, error) {
	if s == "" {
		return nil, nil
	}
	var out []endpoint.Descriptor
	for _, entry := range strings.Split(s, ",") {
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("descriptor %q: want kind:flags", entry)
		}
		kind, err := endpoint.ParseKind(parts[0])
		if err != nil {
			return nil, err
		}
		flags, err := parseFlags(parts[1])
		if err != nil {
			return nil, err
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

// parseData parses a comma-separated list of kind:value pairs into data
// entries, e.g. "temperature:21.5,brightness:80".
func parseData(s string) ([]endpoint.Data, error) {
	if s == "" {
		return nil, nil
	}
	var out []endpoint.Data
	for _, entry := range strings.Split(s, ",") {
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("data %q: want kind:value", entry)
		}
		f, err := strconv.ParseFloat(parts[1], 32)
		if err != nil {
			return nil, fmt.Errorf("data %q: %w", entry, err)
		}
		out = append(out, endpoint.NewData(endpoint.Float32Value(float32(f))))
	}
	return out, nil
}
