// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"net"
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/iot/endpoint"
	"github.com/luxfi/iot/wire"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	pdb, err := OpenPebble(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = pdb.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"pebble": pdb,
	}
}

func TestStoreIdentRoundTrip(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			keys, err := wire.GenerateKeys()
			require.NoError(t, err)
			require.NoError(t, keys.GenerateSecret())

			require.NoError(t, s.SetIdent(keys))
			got, err := s.GetIdent()
			require.NoError(t, err)
			require.Equal(t, keys.Public, got.Public)
			require.Equal(t, keys.Private, got.Private)
			require.Equal(t, *keys.Secret, *got.Secret)
		})
	}
}

func TestStoreLastRoundTrip(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			var sig wire.Signature
			sig[0] = 0x42
			info := ObjectInfo{Chain: wire.Chain{Version: 3, DataIndex: 7, LastSig: &sig}}

			require.NoError(t, s.SetLast(info))
			got, err := s.GetLast()
			require.NoError(t, err)
			require.Equal(t, info.Chain.Version, got.Chain.Version)
			require.Equal(t, info.Chain.DataIndex, got.Chain.DataIndex)
			require.Equal(t, *info.Chain.LastSig, *got.Chain.LastSig)
		})
	}
}

func TestStorePeerRoundTrip(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			keys, err := wire.GenerateKeys()
			require.NoError(t, err)
			id, err := keys.Id()
			require.NoError(t, err)

			peer := Peer{
				Id:         id,
				PublicKey:  keys.Public,
				Addr:       &net.UDPAddr{IP: net.IPv4(10, 0, 0, 5), Port: 10100},
				Subscriber: true,
				Subscribed: SubscribeSubscribed,
				RequestId:  99,
			}
			require.NoError(t, s.UpdatePeer(peer))

			got, err := s.GetPeer(id)
			require.NoError(t, err)
			require.Equal(t, peer.Id, got.Id)
			require.Equal(t, peer.Subscriber, got.Subscriber)
			require.Equal(t, peer.Subscribed, got.Subscribed)
			require.Equal(t, peer.Addr.IP.To4(), got.Addr.IP.To4())
			require.Equal(t, peer.Addr.Port, got.Addr.Port)

			all, err := s.Peers()
			require.NoError(t, err)
			require.Len(t, all, 1)

			_, err = s.GetPeer(ids.ID{})
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStorePageRoundTrip(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			keys, err := wire.GenerateKeys()
			require.NoError(t, err)
			svc, err := wire.NewService(keys)
			require.NoError(t, err)

			info, err := endpoint.NewInfo(0, endpoint.NewDescriptor(endpoint.Temperature, endpoint.R))
			require.NoError(t, err)
			page, err := svc.PublishPrimary(info)
			require.NoError(t, err)

			require.NoError(t, s.StorePage(svc.Id, page.Signature, page))
			got, err := s.FetchPage(svc.Id, page.Signature)
			require.NoError(t, err)
			require.Equal(t, page.Signature, got.Signature)

			_, err = s.FetchPage(svc.Id, wire.Signature{})
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}
