// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wire implements the minimal collaborator the IoT engine needs
// from an external DSF-style crypto/wire core: service identity, chained
// signed objects, and their wire framing. The retrieval pack's own
// crypto packages (crypto/bls, crypto/database) are non-functional
// stubs in this snapshot, so signing and encryption here are built
// directly on golang.org/x/crypto, a real dependency already pulled in
// transitively by the teacher's module graph (see DESIGN.md).
package wire

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"github.com/luxfi/ids"
	"golang.org/x/crypto/ed25519"
)

// SecretKeyLen is the size of the symmetric key used to encrypt private
// options and object bodies.
const SecretKeyLen = 32

// Keys holds a service's signing keypair and optional symmetric secret.
type Keys struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey // nil for a peer-only (verify-only) key set
	Secret  *[SecretKeyLen]byte
}

// ErrNoPrivateKey is returned when an operation needing the private key
// (signing) is attempted on a peer-only key set.
var ErrNoPrivateKey = errors.New("wire: no private key")

// GenerateKeys creates a fresh signing keypair. The symmetric secret is
// left unset; callers that want encrypted bodies call GenerateSecret.
func GenerateKeys() (Keys, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Keys{}, err
	}
	return Keys{Public: pub, Private: priv}, nil
}

// GenerateSecret populates a fresh symmetric secret key on k.
func (k *Keys) GenerateSecret() error {
	var s [SecretKeyLen]byte
	if _, err := rand.Read(s[:]); err != nil {
		return err
	}
	k.Secret = &s
	return nil
}

// Id derives the service identifier by hashing the public key, per
// spec.md §3's "stable identifier derived by hashing the public key".
func (k Keys) Id() (ids.ID, error) {
	sum := sha256.Sum256(k.Public)
	return ids.ToID(sum[:])
}

// KeySource resolves the keys associated with a peer id, used to verify
// inbound object signatures and decrypt their private sections.
type KeySource interface {
	Keys(id ids.ID) (Keys, bool)
}
