// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package endpoint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeDescriptor(t *testing.T) {
	descriptors := []Descriptor{
		NewDescriptor(Temperature, R),
		NewDescriptor(Pressure, W),
		NewDescriptor(Humidity, RW),
		NewDescriptor(Kind(0xbeef), R),
	}

	for _, d := range descriptors {
		buf := make([]byte, 64)
		n, err := d.Encode(buf)
		require.NoError(t, err)

		got, consumed, err := DecodeDescriptor(buf[:n])
		require.NoError(t, err)
		require.Equal(t, n, consumed)
		require.Equal(t, d, got)
	}
}

func TestDecodeDescriptorsSequence(t *testing.T) {
	ds := []Descriptor{
		NewDescriptor(Temperature, R),
		NewDescriptor(Pressure, R),
		NewDescriptor(Humidity, RW),
	}

	buf := make([]byte, 256)
	n, err := EncodeDescriptors(ds, buf)
	require.NoError(t, err)

	got, err := DecodeDescriptors(buf[:n], 0)
	require.NoError(t, err)
	require.Equal(t, ds, got)
}

func TestDecodeDescriptorRejectsUnknownKind(t *testing.T) {
	buf := []byte{0xff, 0xff, 0x04, 0x00, 0, 0, 0, 0}
	_, _, err := DecodeDescriptor(buf)
	require.ErrorIs(t, err, ErrInvalidOption)
}

func TestDecodeDescriptorsOverrun(t *testing.T) {
	ds := []Descriptor{
		NewDescriptor(Temperature, R),
		NewDescriptor(Pressure, R),
		NewDescriptor(Humidity, RW),
	}
	buf := make([]byte, 256)
	n, err := EncodeDescriptors(ds, buf)
	require.NoError(t, err)

	_, err = DecodeDescriptors(buf[:n], 2)
	require.ErrorIs(t, err, ErrOverrun)
}
