// Package filter is the Filter type: a conjunction of membership and
// time-window predicates over event fields, as sent in a REQ envelope.
package filter

import (
	"encoding/json"

	"github.com/lzcers/ksana-relay/encoders/hex"
	"github.com/lzcers/ksana-relay/encoders/kind"
	"github.com/lzcers/ksana-relay/encoders/timestamp"
)

// T is a single nostr filter. An empty list means "match any"; a nil bound
// means "unbounded".
type T struct {
	Ids     [][]byte
	Authors [][]byte
	Kinds   []kind.T
	E       [][]byte
	P       [][]byte
	Since   *timestamp.T
	Until   *timestamp.T
	Limit   *int
}

// New returns an empty filter (matches any event).
func New() *T { return &T{} }

type wire struct {
	Ids     []string     `json:"ids,omitempty"`
	Authors []string     `json:"authors,omitempty"`
	Kinds   []kind.T     `json:"kinds,omitempty"`
	E       []string     `json:"#e,omitempty"`
	P       []string     `json:"#p,omitempty"`
	Since   *timestamp.T `json:"since,omitempty"`
	Until   *timestamp.T `json:"until,omitempty"`
	Limit   *int         `json:"limit,omitempty"`
}

func hexSlice(bs [][]byte) []string {
	if len(bs) == 0 {
		return nil
	}
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = hex.Enc(b)
	}
	return out
}

func byteSlice(ss []string, n int) (out [][]byte, err error) {
	if len(ss) == 0 {
		return nil, nil
	}
	out = make([][]byte, len(ss))
	for i, s := range ss {
		if out[i], err = hex.DecLen(s, n); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// MarshalJSON renders the filter, omitting absent/empty fields and using
// the #e/#p keys for tag filters.
func (t *T) MarshalJSON() ([]byte, error) {
	return json.Marshal(wire{
		Ids:     hexSlice(t.Ids),
		Authors: hexSlice(t.Authors),
		Kinds:   t.Kinds,
		E:       hexSlice(t.E),
		P:       hexSlice(t.P),
		Since:   t.Since,
		Until:   t.Until,
		Limit:   t.Limit,
	})
}

// UnmarshalJSON parses a filter, validating hex lengths of id/author/tag
// references.
func (t *T) UnmarshalJSON(b []byte) (err error) {
	var w wire
	if err = json.Unmarshal(b, &w); err != nil {
		return err
	}
	var n T
	if n.Ids, err = byteSlice(w.Ids, 32); err != nil {
		return err
	}
	if n.Authors, err = byteSlice(w.Authors, 32); err != nil {
		return err
	}
	if n.E, err = byteSlice(w.E, 32); err != nil {
		return err
	}
	if n.P, err = byteSlice(w.P, 32); err != nil {
		return err
	}
	n.Kinds = w.Kinds
	n.Since = w.Since
	n.Until = w.Until
	n.Limit = w.Limit
	*t = n
	return nil
}
