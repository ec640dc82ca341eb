// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package endpoint

import "encoding/binary"

// All multi-byte integers in the wire format are little-endian. Packing
// bytes is the one place this package reaches for the standard library
// rather than a pack dependency: the format is bespoke-TLV by design
// (spec.md §1 lists "a general-purpose serialization framework" as a
// non-goal), and encoding/binary.LittleEndian is exactly the primitive
// every other codec in the retrieval pack builds on internally.
var le = binary.LittleEndian
