// Package matcher decides whether an event satisfies a filter, and whether
// it satisfies any filter in a set.
//
// #e and #p match against the event's own Id and Pubkey, not against its
// tags — this reproduces the legacy relay semantics this system is modeled
// on, rather than the NIP-01 tag-reference semantics. See DESIGN.md for the
// resolution of this Open Question.
package matcher

import (
	"bytes"

	"github.com/lzcers/ksana-relay/encoders/event"
	"github.com/lzcers/ksana-relay/encoders/filter"
)

func containsBytes(list [][]byte, want []byte) bool {
	for _, b := range list {
		if bytes.Equal(b, want) {
			return true
		}
	}
	return false
}

// Matches reports whether ev satisfies f.
func Matches(ev *event.E, f *filter.T) bool {
	if len(f.Ids) > 0 && !containsBytes(f.Ids, ev.Id) {
		return false
	}
	if len(f.Authors) > 0 && !containsBytes(f.Authors, ev.Pubkey) {
		return false
	}
	if len(f.Kinds) > 0 {
		found := false
		for _, k := range f.Kinds {
			if k.Equal(ev.Kind) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.E) > 0 && !containsBytes(f.E, ev.Id) {
		return false
	}
	if len(f.P) > 0 && !containsBytes(f.P, ev.Pubkey) {
		return false
	}
	if f.Since != nil && ev.CreatedAt <= *f.Since {
		return false
	}
	if f.Until != nil && ev.CreatedAt >= *f.Until {
		return false
	}
	return true
}

// Any reports whether ev satisfies at least one filter in fs.
func Any(ev *event.E, fs []*filter.T) bool {
	for _, f := range fs {
		if Matches(ev, f) {
			return true
		}
	}
	return false
}
