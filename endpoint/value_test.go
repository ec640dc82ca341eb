// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package endpoint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeValue(t *testing.T) {
	values := []Value{
		BoolValue(true),
		BoolValue(false),
		Int32Value(-42),
		Float32Value(27.3),
		TextValue("hello"),
		BytesValue([]byte{1, 2, 3, 4}),
		RgbValue(10, 20, 30),
	}

	for _, v := range values {
		buf := make([]byte, 128)
		n, err := v.Encode(buf)
		require.NoError(t, err)

		got, consumed, err := DecodeValue(buf[:n])
		require.NoError(t, err)
		require.Equal(t, n, consumed)
		require.True(t, v.Equal(got), "expected %v got %v", v, got)
	}
}

func TestValueTextOverrun(t *testing.T) {
	v := TextValue(string(make([]byte, MaxTextLen+1)))
	buf := make([]byte, 256)
	_, err := v.Encode(buf)
	require.ErrorIs(t, err, ErrOverrun)
}

func TestDecodeValueUnknownKind(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x00, 0x00}
	_, _, err := DecodeValue(buf)
	require.ErrorIs(t, err, ErrInvalidOption)
}

func TestDataSetRoundTrip(t *testing.T) {
	ds, err := NewDataSet(0,
		NewData(Float32Value(27.3)),
		NewData(Float32Value(1016.2)),
		NewData(Float32Value(59.6)),
	)
	require.NoError(t, err)

	buf := make([]byte, 256)
	n, err := ds.Encode(buf)
	require.NoError(t, err)

	got, err := DecodeDataSet(buf[:n], 0)
	require.NoError(t, err)
	require.True(t, ds.Equal(got))
}
