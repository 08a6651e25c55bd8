// Package crypto computes the canonical event hash and verifies/produces
// Schnorr signatures over secp256k1, per NIP-01. It is pure: no I/O, no
// global state.
package crypto

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"github.com/lzcers/ksana-relay/encoders/event"
	"github.com/lzcers/ksana-relay/encoders/kind"
	"github.com/lzcers/ksana-relay/encoders/tags"
	"github.com/lzcers/ksana-relay/encoders/timestamp"
)

// ErrHashMismatch is returned by Verify when the event's declared Id does
// not equal the SHA-256 of its canonical pre-image.
var ErrHashMismatch = errors.New("crypto: hash mismatch")

// ErrSignatureInvalid is returned by Verify when the Schnorr signature does
// not validate against the event's pubkey and Id.
var ErrSignatureInvalid = errors.New("crypto: signature invalid")

// Verify checks an event's identity and authenticity: that Id equals
// SHA-256(canonical(...)), and that Sig is a valid Schnorr signature over
// that digest under Pubkey.
func Verify(e *event.E) (err error) {
	want, err := e.ComputeId()
	if err != nil {
		return err
	}
	if !bytesEqual(want, e.Id) {
		return ErrHashMismatch
	}
	pk, err := schnorr.ParsePubKey(e.Pubkey)
	if err != nil {
		return ErrSignatureInvalid
	}
	sig, err := schnorr.ParseSignature(e.Sig)
	if err != nil {
		return ErrSignatureInvalid
	}
	if !sig.Verify(e.Id, pk) {
		return ErrSignatureInvalid
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Sign computes the Id and Sig for an as-yet-unsigned event, given a
// secp256k1 private key. It is a test/bench helper — production signing
// happens client-side, outside this relay.
func Sign(
	priv *btcec.PrivateKey, pubkey []byte, createdAt timestamp.T, k kind.T,
	tg tags.T, content string,
) (id, sig []byte, err error) {
	id, err = event.Hash(pubkey, createdAt, k, tg, content)
	if err != nil {
		return nil, nil, err
	}
	s, err := schnorr.Sign(priv, id)
	if err != nil {
		return nil, nil, err
	}
	return id, s.Serialize(), nil
}
