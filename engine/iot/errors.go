// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package iot

import "errors"

// ErrUnsupported is returned for a packet whose kind this build does
// not recognize, most likely sent by a newer peer.
var ErrUnsupported = errors.New("iot: unsupported packet kind")
