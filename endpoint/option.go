// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package endpoint

// Option-kind identifiers, authoritative per the wire format table: every
// encoded item is a 4-byte header (kind u16 LE, payload_len u16 LE)
// followed by payload_len bytes, all little-endian.
const (
	optDescriptor  uint16 = 0x8001
	optBoolFalse   uint16 = 0x8002
	optBoolTrue    uint16 = 0x8003
	optFloat32     uint16 = 0x8004
	optInt32       uint16 = 0x8005
	optString      uint16 = 0x8006
	optBytes       uint16 = 0x8007
	optRgb         uint16 = 0x8008
	optHeaderLen          = 4
	descriptorLen  uint16 = 4
)

func putHeader(buf []byte, kind, payloadLen uint16) {
	le.PutUint16(buf[0:2], kind)
	le.PutUint16(buf[2:4], payloadLen)
}
