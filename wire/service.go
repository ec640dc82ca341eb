// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/iot/endpoint"
)

// Chain tracks a service's position in its own signature chain: the
// version of its primary page and the running index of data objects
// published since. It is restored from a Store on startup and advanced
// by Service as new objects are published.
type Chain struct {
	Version   uint32
	DataIndex uint32
	LastSig   *Signature
}

// Service is a local identity that can mint and verify chained, signed
// objects. It corresponds to the "per-service crypto identity" of
// spec.md §3: an ed25519 keypair, an optional symmetric secret for
// private sections, and the chain position needed to link each new
// object to the one before it.
type Service struct {
	Keys  Keys
	Id    ids.ID
	Chain Chain
}

// NewService derives a Service's identity from keys.
func NewService(keys Keys) (*Service, error) {
	id, err := keys.Id()
	if err != nil {
		return nil, err
	}
	return &Service{Keys: keys, Id: id}, nil
}

// Restore sets the chain position loaded from a Store, so that newly
// published objects continue the existing chain instead of restarting
// it.
func (s *Service) Restore(c Chain) { s.Chain = c }

// PublishPrimary mints a new primary page carrying info. Per the
// restart Open Question resolved in SPEC_FULL.md §4 (Open Questions),
// callers only invoke this when info differs from the page already on
// record; every call bumps the page version and starts a fresh data
// chain beneath it.
func (s *Service) PublishPrimary(info endpoint.Info) (*Object, error) {
	if s.Keys.Private == nil {
		return nil, ErrNoPrivateKey
	}

	bodyLen := info.EncodeLen()
	plain := make([]byte, bodyLen)
	if _, err := info.Encode(plain); err != nil {
		return nil, err
	}

	body, err := sealSection(s.Keys.Secret, plain)
	if err != nil {
		return nil, err
	}

	o := &Object{
		Id:        s.Id,
		Kind:      KindPrimary,
		Index:     s.Chain.Version,
		PublicKey: s.Keys.Public,
		Body:      body,
	}
	if err := o.sign(s.Keys.Private); err != nil {
		return nil, err
	}

	s.Chain.Version++
	s.Chain.DataIndex = 0
	sig := o.Signature
	s.Chain.LastSig = &sig

	return o, nil
}

// PublishData mints a new data object carrying set, chained from the
// most recently published object (primary page or prior data object).
func (s *Service) PublishData(set endpoint.DataSet) (*Object, error) {
	if s.Keys.Private == nil {
		return nil, ErrNoPrivateKey
	}

	bodyLen, err := set.EncodeLen()
	if err != nil {
		return nil, err
	}
	plain := make([]byte, bodyLen)
	if _, err := set.Encode(plain); err != nil {
		return nil, err
	}

	body, err := sealSection(s.Keys.Secret, plain)
	if err != nil {
		return nil, err
	}

	o := &Object{
		Id:      s.Id,
		Kind:    KindData,
		Index:   s.Chain.DataIndex,
		PrevSig: s.Chain.LastSig,
		Body:    body,
	}
	if err := o.sign(s.Keys.Private); err != nil {
		return nil, err
	}

	s.Chain.DataIndex++
	sig := o.Signature
	s.Chain.LastSig = &sig

	return o, nil
}

// OpenBody decrypts (if needed) and returns o's plaintext body, using
// secret when o's owner has one configured. A nil secret is valid for
// objects whose owner never enabled private bodies.
func OpenBody(o *Object, secret *[SecretKeyLen]byte) ([]byte, error) {
	return openSection(secret, o.Body)
}

// DecodeInfoBody decodes a primary page's body as an endpoint.Info
// container, after opening any encryption.
func DecodeInfoBody(o *Object, secret *[SecretKeyLen]byte, maxLen int) (endpoint.Info, error) {
	plain, err := OpenBody(o, secret)
	if err != nil {
		return endpoint.Info{}, err
	}
	return endpoint.DecodeInfo(plain, maxLen)
}

// DecodeDataBody decodes a data object's body as an endpoint.DataSet,
// after opening any encryption.
func DecodeDataBody(o *Object, secret *[SecretKeyLen]byte, maxLen int) (endpoint.DataSet, error) {
	plain, err := OpenBody(o, secret)
	if err != nil {
		return endpoint.DataSet{}, err
	}
	return endpoint.DecodeDataSet(plain, maxLen)
}

// VerifyChain checks that child is a legitimate continuation of parent:
// child's previous-signature must equal parent's signature, per the
// chain-continuity invariant in spec.md §3.
func VerifyChain(parent, child *Object) bool {
	if child.PrevSig == nil {
		return false
	}
	return *child.PrevSig == parent.Signature
}
