// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package endpoint

import "errors"

// ErrInvalidOption is returned when a decoder encounters an option kind it
// does not recognise, or a payload truncated below its declared length.
var ErrInvalidOption = errors.New("endpoint: invalid option")

// ErrOverrun is returned when encoding or decoding would exceed a
// container's bounded capacity.
var ErrOverrun = errors.New("endpoint: capacity exceeded")
