// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package endpoint

import "fmt"

// Descriptor declares one endpoint a service exposes: its kind and
// whether it is readable, writable, or both.
type Descriptor struct {
	Kind  Kind
	Flags Flags
}

// NewDescriptor builds a descriptor.
func NewDescriptor(kind Kind, flags Flags) Descriptor {
	return Descriptor{Kind: kind, Flags: flags}
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s [%s]", d.Kind, d.Flags)
}

// EncodeLen returns the number of bytes Encode will write.
func (d Descriptor) EncodeLen() int { return optHeaderLen + int(descriptorLen) }

// Encode writes the option-framed descriptor to buf, returning the number
// of bytes written.
func (d Descriptor) Encode(buf []byte) (int, error) {
	n := d.EncodeLen()
	if len(buf) < n {
		return 0, ErrOverrun
	}

	putHeader(buf, optDescriptor, descriptorLen)
	le.PutUint16(buf[4:6], uint16(d.Kind))
	le.PutUint16(buf[6:8], uint16(d.Flags))

	return n, nil
}

// DecodeDescriptor reads one option-framed descriptor from buf, returning
// the decoded value and the number of bytes consumed.
func DecodeDescriptor(buf []byte) (Descriptor, int, error) {
	if len(buf) < optHeaderLen {
		return Descriptor{}, 0, ErrInvalidOption
	}

	kind := le.Uint16(buf[0:2])
	payloadLen := le.Uint16(buf[2:4])

	if kind != optDescriptor || payloadLen != descriptorLen {
		return Descriptor{}, 0, ErrInvalidOption
	}

	total := optHeaderLen + int(payloadLen)
	if len(buf) < total {
		return Descriptor{}, 0, ErrInvalidOption
	}

	d := Descriptor{
		Kind:  Kind(le.Uint16(buf[4:6])),
		Flags: Flags(le.Uint16(buf[6:8])),
	}

	return d, total, nil
}

// DecodeDescriptors decodes a concatenation of option-framed descriptors,
// halting when the input is exhausted. It rejects trailing bytes that do
// not form a complete descriptor, per the codec's "decoders must reject
// unknown option kinds rather than silently skipping" contract.
func DecodeDescriptors(buf []byte, max int) ([]Descriptor, error) {
	var out []Descriptor

	for len(buf) > 0 {
		if max > 0 && len(out) >= max {
			return nil, ErrOverrun
		}

		d, n, err := DecodeDescriptor(buf)
		if err != nil {
			return nil, err
		}

		out = append(out, d)
		buf = buf[n:]
	}

	return out, nil
}

// EncodeDescriptors concatenates the encodings of a descriptor sequence.
func EncodeDescriptors(ds []Descriptor, buf []byte) (int, error) {
	off := 0
	for _, d := range ds {
		n, err := d.Encode(buf[off:])
		if err != nil {
			return 0, err
		}
		off += n
	}
	return off, nil
}
