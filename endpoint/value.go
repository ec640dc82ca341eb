// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package endpoint

import (
	"fmt"
	"math"
)

// ValueKind discriminates the tagged union held by Value.
type ValueKind uint8

const (
	ValueBool ValueKind = iota
	ValueInt32
	ValueFloat32
	ValueText
	ValueBytes
	ValueRgb
)

// MaxTextLen and MaxBytesLen bound the variable-length payloads, matching
// spec.md §8's "text <=64, bytes <=64" testable property; hosted targets
// may raise these by assigning larger values, embedded targets should not.
var (
	MaxTextLen  = 64
	MaxBytesLen = 64
)

// Value is a tagged union of the primitive types an endpoint can carry.
// Exactly one of the fields is meaningful, selected by Kind.
type Value struct {
	Kind  ValueKind
	Bool  bool
	I32   int32
	F32   float32
	Text  string
	Bytes []byte
	R, G, B byte
}

func BoolValue(v bool) Value    { return Value{Kind: ValueBool, Bool: v} }
func Int32Value(v int32) Value  { return Value{Kind: ValueInt32, I32: v} }
func Float32Value(v float32) Value { return Value{Kind: ValueFloat32, F32: v} }
func TextValue(v string) Value  { return Value{Kind: ValueText, Text: v} }
func BytesValue(v []byte) Value { return Value{Kind: ValueBytes, Bytes: v} }
func RgbValue(r, g, b byte) Value { return Value{Kind: ValueRgb, R: r, G: g, B: b} }

// Equal reports whether two values carry the same kind and payload. Value
// is not comparable with == because of its slice field.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueBool:
		return v.Bool == o.Bool
	case ValueInt32:
		return v.I32 == o.I32
	case ValueFloat32:
		return v.F32 == o.F32
	case ValueText:
		return v.Text == o.Text
	case ValueBytes:
		if len(v.Bytes) != len(o.Bytes) {
			return false
		}
		for i := range v.Bytes {
			if v.Bytes[i] != o.Bytes[i] {
				return false
			}
		}
		return true
	case ValueRgb:
		return v.R == o.R && v.G == o.G && v.B == o.B
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case ValueBool:
		return fmt.Sprintf("%v", v.Bool)
	case ValueInt32:
		return fmt.Sprintf("%d", v.I32)
	case ValueFloat32:
		return fmt.Sprintf("%.02f", v.F32)
	case ValueText:
		return v.Text
	case ValueBytes:
		return fmt.Sprintf("%02x", v.Bytes)
	case ValueRgb:
		return fmt.Sprintf("#%02x%02x%02x", v.R, v.G, v.B)
	default:
		return "<invalid>"
	}
}

// EncodeLen returns the number of bytes Encode will write.
func (v Value) EncodeLen() (int, error) {
	switch v.Kind {
	case ValueBool:
		return optHeaderLen, nil
	case ValueInt32, ValueFloat32, ValueRgb:
		return optHeaderLen + 4, nil
	case ValueText:
		return optHeaderLen + len(v.Text), nil
	case ValueBytes:
		return optHeaderLen + len(v.Bytes), nil
	default:
		return 0, ErrInvalidOption
	}
}

// Encode writes the option-framed value to buf.
func (v Value) Encode(buf []byte) (int, error) {
	n, err := v.EncodeLen()
	if err != nil {
		return 0, err
	}
	if len(buf) < n {
		return 0, ErrOverrun
	}

	switch v.Kind {
	case ValueBool:
		if v.Bool {
			putHeader(buf, optBoolTrue, 0)
		} else {
			putHeader(buf, optBoolFalse, 0)
		}
	case ValueInt32:
		putHeader(buf, optInt32, 4)
		le.PutUint32(buf[4:8], uint32(v.I32))
	case ValueFloat32:
		putHeader(buf, optFloat32, 4)
		le.PutUint32(buf[4:8], math.Float32bits(v.F32))
	case ValueText:
		if len(v.Text) > MaxTextLen {
			return 0, ErrOverrun
		}
		putHeader(buf, optString, uint16(len(v.Text)))
		copy(buf[4:], v.Text)
	case ValueBytes:
		if len(v.Bytes) > MaxBytesLen {
			return 0, ErrOverrun
		}
		putHeader(buf, optBytes, uint16(len(v.Bytes)))
		copy(buf[4:], v.Bytes)
	case ValueRgb:
		putHeader(buf, optRgb, 4)
		u := uint32(v.R)<<16 | uint32(v.G)<<8 | uint32(v.B)
		le.PutUint32(buf[4:8], u)
	default:
		return 0, ErrInvalidOption
	}

	return n, nil
}

// DecodeValue reads one option-framed value from buf.
func DecodeValue(buf []byte) (Value, int, error) {
	if len(buf) < optHeaderLen {
		return Value{}, 0, ErrInvalidOption
	}

	kind := le.Uint16(buf[0:2])
	payloadLen := int(le.Uint16(buf[2:4]))
	total := optHeaderLen + payloadLen

	if len(buf) < total {
		return Value{}, 0, ErrInvalidOption
	}

	switch kind {
	case optBoolFalse:
		return Value{Kind: ValueBool, Bool: false}, optHeaderLen, nil
	case optBoolTrue:
		return Value{Kind: ValueBool, Bool: true}, optHeaderLen, nil
	case optInt32:
		if payloadLen != 4 {
			return Value{}, 0, ErrInvalidOption
		}
		return Value{Kind: ValueInt32, I32: int32(le.Uint32(buf[4:8]))}, total, nil
	case optFloat32:
		if payloadLen != 4 {
			return Value{}, 0, ErrInvalidOption
		}
		return Value{Kind: ValueFloat32, F32: math.Float32frombits(le.Uint32(buf[4:8]))}, total, nil
	case optString:
		if payloadLen > MaxTextLen {
			return Value{}, 0, ErrOverrun
		}
		return Value{Kind: ValueText, Text: string(buf[4:total])}, total, nil
	case optBytes:
		if payloadLen > MaxBytesLen {
			return Value{}, 0, ErrOverrun
		}
		b := make([]byte, payloadLen)
		copy(b, buf[4:total])
		return Value{Kind: ValueBytes, Bytes: b}, total, nil
	case optRgb:
		if payloadLen != 4 {
			return Value{}, 0, ErrInvalidOption
		}
		u := le.Uint32(buf[4:8])
		return Value{Kind: ValueRgb, R: byte(u >> 16), G: byte(u >> 8), B: byte(u)}, total, nil
	default:
		return Value{}, 0, ErrInvalidOption
	}
}
