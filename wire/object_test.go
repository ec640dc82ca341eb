// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/iot/endpoint"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	keys, err := GenerateKeys()
	require.NoError(t, err)
	svc, err := NewService(keys)
	require.NoError(t, err)
	return svc
}

func TestObjectEncodeDecodeRoundTrip(t *testing.T) {
	svc := newTestService(t)

	info, err := endpoint.NewInfo(0, endpoint.NewDescriptor(endpoint.Temperature, endpoint.R))
	require.NoError(t, err)

	obj, err := svc.PublishPrimary(info)
	require.NoError(t, err)

	buf := make([]byte, 512)
	n, err := obj.Encode(buf)
	require.NoError(t, err)

	got, consumed, err := Decode(buf[:n])
	require.NoError(t, err)
	require.Equal(t, n, consumed)
	require.Equal(t, obj.Id, got.Id)
	require.Equal(t, obj.Signature, got.Signature)
	require.NoError(t, got.Verify(svc.Keys.Public))
}

func TestPublishDataChainsFromPrimary(t *testing.T) {
	svc := newTestService(t)

	info, err := endpoint.NewInfo(0, endpoint.NewDescriptor(endpoint.Temperature, endpoint.R))
	require.NoError(t, err)
	primary, err := svc.PublishPrimary(info)
	require.NoError(t, err)

	set, err := endpoint.NewDataSet(0, endpoint.NewData(endpoint.Float32Value(27.3)))
	require.NoError(t, err)
	data, err := svc.PublishData(set)
	require.NoError(t, err)

	require.True(t, VerifyChain(primary, data))
	require.NoError(t, data.Verify(svc.Keys.Public))

	second, err := svc.PublishData(set)
	require.NoError(t, err)
	require.True(t, VerifyChain(data, second))
	require.False(t, VerifyChain(primary, second))
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	svc := newTestService(t)
	set, err := endpoint.NewDataSet(0, endpoint.NewData(endpoint.BoolValue(true)))
	require.NoError(t, err)

	obj, err := svc.PublishData(set)
	require.NoError(t, err)
	obj.Signature[0] ^= 0xff

	require.ErrorIs(t, obj.Verify(svc.Keys.Public), ErrBadSignature)
}

func TestEncryptedBodyRoundTrip(t *testing.T) {
	keys, err := GenerateKeys()
	require.NoError(t, err)
	require.NoError(t, keys.GenerateSecret())
	svc, err := NewService(keys)
	require.NoError(t, err)

	set, err := endpoint.NewDataSet(0, endpoint.NewData(endpoint.Int32Value(-7)))
	require.NoError(t, err)

	obj, err := svc.PublishData(set)
	require.NoError(t, err)
	plainLen, err := set.EncodeLen()
	require.NoError(t, err)
	plain := make([]byte, plainLen)
	_, err = set.Encode(plain)
	require.NoError(t, err)
	require.NotEqual(t, plain, obj.Body) // body is sealed, not plaintext

	decoded, err := DecodeDataBody(obj, svc.Keys.Secret, 0)
	require.NoError(t, err)
	require.True(t, set.Equal(decoded))

	_, err = DecodeDataBody(obj, nil, 0)
	require.Error(t, err)
}

func TestPublishPrimaryWithoutPrivateKeyFails(t *testing.T) {
	keys, err := GenerateKeys()
	require.NoError(t, err)
	keys.Private = nil
	svc, err := NewService(keys)
	require.NoError(t, err)

	_, err = svc.PublishPrimary(endpoint.Info{})
	require.ErrorIs(t, err, ErrNoPrivateKey)
}
