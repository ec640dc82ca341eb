// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import (
	"crypto/rand"
	"encoding/binary"
	"errors"

	"github.com/luxfi/ids"
	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/nacl/secretbox"
)

// Kind distinguishes a service's primary (descriptor) page from its
// data objects.
type Kind uint8

const (
	KindPrimary Kind = iota
	KindData
)

// SignatureLen is the size of an ed25519 detached signature.
const SignatureLen = ed25519.SignatureSize

// Signature is a detached object signature, and doubles as the object's
// content address.
type Signature [SignatureLen]byte

var (
	// ErrOverrun is returned when a buffer is too small to hold the
	// encoded object, or when decoding runs past the end of one.
	ErrOverrun = errors.New("wire: buffer overrun")
	// ErrBadSignature is returned when an object fails signature
	// verification.
	ErrBadSignature = errors.New("wire: signature verification failed")
	// ErrUnknownPeer is returned when no key is on file for an object's
	// claimed owner, and the object itself carries no embedded key.
	ErrUnknownPeer = errors.New("wire: unknown peer")
	// ErrNoSecret is returned when a sealed section does not open with
	// the given secret. A nil secret is not an error: the section's bytes
	// are returned as they are.
	ErrNoSecret = errors.New("wire: no secret key for encrypted section")
)

const nonceLen = 24

// Object is a single signed, chained record: a service's primary page or
// one of its data objects. Its public options travel in the clear; its
// private options and body are encrypted whenever the owning service has
// a symmetric secret configured.
type Object struct {
	Id        ids.ID
	Kind      Kind
	Index     uint32
	PrevSig   *Signature
	PublicKey ed25519.PublicKey // present on primary pages and key-request replies
	Public    []byte            // cleartext public options
	Private   []byte            // possibly-encrypted private options
	Body      []byte            // possibly-encrypted body (Info or DataSet encoding)
	Signature Signature
}

// encodeHeader writes the portion of the wire encoding that is covered
// by the signature (everything but the trailing signature itself) and
// returns its length.
func (o *Object) encodeHeader(buf []byte) (int, error) {
	need := 32 + 1 + 4 + 1 + 1 + 2 + len(o.Public) + 2 + len(o.Private) + 2 + len(o.Body)
	if o.PrevSig != nil {
		need += SignatureLen
	}
	if o.PublicKey != nil {
		need += ed25519.PublicKeySize
	}
	if len(buf) < need {
		return 0, ErrOverrun
	}

	off := 0
	copy(buf[off:], o.Id[:])
	off += 32
	buf[off] = byte(o.Kind)
	off++
	binary.LittleEndian.PutUint32(buf[off:], o.Index)
	off += 4

	if o.PrevSig != nil {
		buf[off] = 1
		off++
		copy(buf[off:], o.PrevSig[:])
		off += SignatureLen
	} else {
		buf[off] = 0
		off++
	}

	if o.PublicKey != nil {
		buf[off] = 1
		off++
		copy(buf[off:], o.PublicKey)
		off += ed25519.PublicKeySize
	} else {
		buf[off] = 0
		off++
	}

	off += putSection(buf[off:], o.Public)
	off += putSection(buf[off:], o.Private)
	off += putSection(buf[off:], o.Body)

	return off, nil
}

func putSection(buf []byte, section []byte) int {
	binary.LittleEndian.PutUint16(buf, uint16(len(section)))
	copy(buf[2:], section)
	return 2 + len(section)
}

func getSection(buf []byte) ([]byte, int, error) {
	if len(buf) < 2 {
		return nil, 0, ErrOverrun
	}
	l := int(binary.LittleEndian.Uint16(buf))
	if len(buf) < 2+l {
		return nil, 0, ErrOverrun
	}
	return buf[2 : 2+l], 2 + l, nil
}

// Encode writes the full wire representation of o, including its
// trailing signature, into buf and returns the number of bytes written.
func (o *Object) Encode(buf []byte) (int, error) {
	n, err := o.encodeHeader(buf)
	if err != nil {
		return 0, err
	}
	if len(buf) < n+SignatureLen {
		return 0, ErrOverrun
	}
	copy(buf[n:], o.Signature[:])
	return n + SignatureLen, nil
}

// Decode parses an Object from buf. The signature is captured but not
// verified here; callers verify separately once they know which key to
// verify against (see Verify).
func Decode(buf []byte) (*Object, int, error) {
	if len(buf) < 32+1+4+1+1 {
		return nil, 0, ErrOverrun
	}
	o := &Object{}
	off := 0

	var id ids.ID
	copy(id[:], buf[off:off+32])
	o.Id = id
	off += 32

	o.Kind = Kind(buf[off])
	off++

	o.Index = binary.LittleEndian.Uint32(buf[off:])
	off += 4

	hasPrev := buf[off]
	off++
	if hasPrev == 1 {
		if len(buf) < off+SignatureLen {
			return nil, 0, ErrOverrun
		}
		var sig Signature
		copy(sig[:], buf[off:off+SignatureLen])
		o.PrevSig = &sig
		off += SignatureLen
	}

	hasKey := buf[off]
	off++
	if hasKey == 1 {
		if len(buf) < off+ed25519.PublicKeySize {
			return nil, 0, ErrOverrun
		}
		key := make([]byte, ed25519.PublicKeySize)
		copy(key, buf[off:off+ed25519.PublicKeySize])
		o.PublicKey = key
		off += ed25519.PublicKeySize
	}

	pub, n, err := getSection(buf[off:])
	if err != nil {
		return nil, 0, err
	}
	o.Public = pub
	off += n

	priv, n, err := getSection(buf[off:])
	if err != nil {
		return nil, 0, err
	}
	o.Private = priv
	off += n

	body, n, err := getSection(buf[off:])
	if err != nil {
		return nil, 0, err
	}
	o.Body = body
	off += n

	if len(buf) < off+SignatureLen {
		return nil, 0, ErrOverrun
	}
	copy(o.Signature[:], buf[off:off+SignatureLen])
	off += SignatureLen

	return o, off, nil
}

// sign computes and stores the object's signature, using priv over the
// header encoding.
func (o *Object) sign(priv ed25519.PrivateKey) error {
	buf := make([]byte, objectScratchLen(o))
	n, err := o.encodeHeader(buf)
	if err != nil {
		return err
	}
	copy(o.Signature[:], ed25519.Sign(priv, buf[:n]))
	return nil
}

// Verify checks o's signature against pub.
func (o *Object) Verify(pub ed25519.PublicKey) error {
	buf := make([]byte, objectScratchLen(o))
	n, err := o.encodeHeader(buf)
	if err != nil {
		return err
	}
	if !ed25519.Verify(pub, buf[:n], o.Signature[:]) {
		return ErrBadSignature
	}
	return nil
}

func objectScratchLen(o *Object) int {
	n := 32 + 1 + 4 + 1 + 1 + 2 + len(o.Public) + 2 + len(o.Private) + 2 + len(o.Body)
	if o.PrevSig != nil {
		n += SignatureLen
	}
	if o.PublicKey != nil {
		n += ed25519.PublicKeySize
	}
	return n
}

// sealSection encrypts plaintext with secret, prefixing a fresh random
// nonce, when secret is non-nil. A nil secret passes plaintext through
// unchanged, matching spec.md's "possibly-encrypted" language.
func sealSection(secret *[SecretKeyLen]byte, plaintext []byte) ([]byte, error) {
	if secret == nil {
		return plaintext, nil
	}
	var nonce [nonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}
	sealed := secretbox.Seal(nonce[:], plaintext, &nonce, secret)
	return sealed, nil
}

func openSection(secret *[SecretKeyLen]byte, section []byte) ([]byte, error) {
	if secret == nil {
		return section, nil
	}
	if len(section) < nonceLen {
		return nil, ErrOverrun
	}
	var nonce [nonceLen]byte
	copy(nonce[:], section[:nonceLen])
	plain, ok := secretbox.Open(nil, section[nonceLen:], &nonce, secret)
	if !ok {
		return nil, ErrNoSecret
	}
	return plain, nil
}
