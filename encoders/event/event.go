// Package event is the codec for nostr events: the wire JSON form, the
// canonical pre-image that is hashed to produce Id, and the methods used to
// compute/verify that hash.
package event

import (
	"encoding/json"
	"fmt"

	"github.com/minio/sha256-simd"

	"github.com/lzcers/ksana-relay/encoders/hex"
	"github.com/lzcers/ksana-relay/encoders/kind"
	"github.com/lzcers/ksana-relay/encoders/tags"
	"github.com/lzcers/ksana-relay/encoders/timestamp"
)

const (
	idLen  = 32
	pkLen  = 32
	sigLen = 64
)

// E is a nostr event: a signed, immutable record of an action or message.
type E struct {
	Id        []byte
	Pubkey    []byte
	CreatedAt timestamp.T
	Kind      kind.T
	Tags      tags.T
	Content   string
	Sig       []byte
}

// S is an ordered slice of events.
type S []*E

// wire is the JSON shape of an event as it appears on the wire: hex strings
// for the binary fields, a bare number for kind and created_at.
type wire struct {
	Id        string      `json:"id"`
	Pubkey    string      `json:"pubkey"`
	CreatedAt timestamp.T `json:"created_at"`
	Kind      kind.T      `json:"kind"`
	Tags      tags.T      `json:"tags"`
	Content   string      `json:"content"`
	Sig       string      `json:"sig"`
}

// MarshalJSON renders the event in its wire form.
func (e *E) MarshalJSON() ([]byte, error) {
	w := wire{
		Id:        hex.Enc(e.Id),
		Pubkey:    hex.Enc(e.Pubkey),
		CreatedAt: e.CreatedAt,
		Kind:      e.Kind,
		Tags:      e.Tags,
		Content:   e.Content,
		Sig:       hex.Enc(e.Sig),
	}
	if w.Tags == nil {
		w.Tags = tags.T{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses the wire form of an event, enforcing the fixed hex
// lengths of Id, Pubkey and Sig.
func (e *E) UnmarshalJSON(b []byte) (err error) {
	var w wire
	if err = json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("malformed event: %w", err)
	}
	var id, pk, sig []byte
	if id, err = hex.DecLen(w.Id, idLen); err != nil {
		return fmt.Errorf("malformed event id: %w", err)
	}
	if pk, err = hex.DecLen(w.Pubkey, pkLen); err != nil {
		return fmt.Errorf("malformed event pubkey: %w", err)
	}
	if sig, err = hex.DecLen(w.Sig, sigLen); err != nil {
		return fmt.Errorf("malformed event sig: %w", err)
	}
	e.Id = id
	e.Pubkey = pk
	e.CreatedAt = w.CreatedAt
	e.Kind = w.Kind
	e.Tags = w.Tags
	e.Content = w.Content
	e.Sig = sig
	return nil
}

// canonical renders the pre-image string that is SHA-256-hashed to produce
// Id: [0,<pubkey>,<created_at>,<kind>,<tags>,<content>], each field emitted
// through this same package's standard JSON serializer.
func canonical(
	pubkey []byte, createdAt timestamp.T, k kind.T, tg tags.T, content string,
) (b []byte, err error) {
	pkJSON, err := json.Marshal(hex.Enc(pubkey))
	if err != nil {
		return nil, err
	}
	caJSON, err := json.Marshal(createdAt)
	if err != nil {
		return nil, err
	}
	kJSON, err := json.Marshal(k)
	if err != nil {
		return nil, err
	}
	if tg == nil {
		tg = tags.T{}
	}
	tJSON, err := json.Marshal(tg)
	if err != nil {
		return nil, err
	}
	cJSON, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 64+len(tJSON)+len(content))
	out = append(out, "[0,"...)
	out = append(out, pkJSON...)
	out = append(out, ',')
	out = append(out, caJSON...)
	out = append(out, ',')
	out = append(out, kJSON...)
	out = append(out, ',')
	out = append(out, tJSON...)
	out = append(out, ',')
	out = append(out, cJSON...)
	out = append(out, ']')
	return out, nil
}

// Canonical returns this event's canonical pre-image string.
func (e *E) Canonical() ([]byte, error) {
	return canonical(e.Pubkey, e.CreatedAt, e.Kind, e.Tags, e.Content)
}

// Hash computes SHA-256 of the canonical pre-image for the given fields,
// without requiring a constructed E (used both by E.ComputeId and by
// signing helpers that build an event bottom-up).
func Hash(
	pubkey []byte, createdAt timestamp.T, k kind.T, tg tags.T, content string,
) (id []byte, err error) {
	pre, err := canonical(pubkey, createdAt, k, tg, content)
	if err != nil {
		return nil, err
	}
	h := sha256.Sum256(pre)
	return h[:], nil
}

// ComputeId returns the SHA-256 hash this event's Id ought to equal.
func (e *E) ComputeId() (id []byte, err error) {
	return Hash(e.Pubkey, e.CreatedAt, e.Kind, e.Tags, e.Content)
}

// IdString returns the event's Id as lower-case hex.
func (e *E) IdString() string { return hex.Enc(e.Id) }

// PubkeyString returns the event's Pubkey as lower-case hex.
func (e *E) PubkeyString() string { return hex.Enc(e.Pubkey) }

// Serialize renders the event as minified wire-form JSON.
func (e *E) Serialize() []byte {
	b, _ := json.Marshal(e)
	return b
}
