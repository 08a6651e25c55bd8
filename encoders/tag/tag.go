// Package tag is the Tag tagged union: a nostr tag is a JSON array whose
// first element names the variant. Unrecognized tags round-trip losslessly
// through the Other fallback.
package tag

import "encoding/json"

// Kind identifies which variant a T holds.
type Kind int

const (
	KindEmpty Kind = iota
	KindEvent
	KindPubkey
	KindRelay
	KindChallenge
	KindSubject
	KindOther
)

// T is a single nostr tag.
type T struct {
	Kind Kind

	// Event fields (Kind == KindEvent).
	EventId              string
	RecommendedRelayURL  string
	Marker               string
	hasRecommendedRelay  bool
	hasMarker            bool

	// Pubkey fields (Kind == KindPubkey).
	Pubkey   string
	Petname  string
	hasPetname bool

	// Relay/Challenge/Subject fields (Kind == KindRelay/KindChallenge/KindSubject).
	Value string

	// Other fallback (Kind == KindOther): Name is the first element, Data
	// the trailing elements, in original order.
	Name string
	Data []string
}

// Event builds an "e" tag.
func Event(id string) T { return T{Kind: KindEvent, EventId: id} }

// EventWithRelay builds an "e" tag carrying a recommended relay URL.
func EventWithRelay(id, relay string) T {
	return T{
		Kind: KindEvent, EventId: id, RecommendedRelayURL: relay,
		hasRecommendedRelay: true,
	}
}

// Pubkey builds a "p" tag.
func Pubkey(pk string) T { return T{Kind: KindPubkey, Pubkey: pk} }

// Relay builds a "relay" tag.
func Relay(url string) T { return T{Kind: KindRelay, Value: url} }

// Challenge builds a "challenge" tag.
func Challenge(c string) T { return T{Kind: KindChallenge, Value: c} }

// Subject builds a "subject" tag.
func Subject(s string) T { return T{Kind: KindSubject, Value: s} }

// TagName returns the tag's own identifying name ("e", "p", "relay",
// "challenge", "subject", or the Other tag's Name).
func (t T) TagName() string {
	switch t.Kind {
	case KindEvent:
		return "e"
	case KindPubkey:
		return "p"
	case KindRelay:
		return "relay"
	case KindChallenge:
		return "challenge"
	case KindSubject:
		return "subject"
	case KindOther:
		return t.Name
	default:
		return ""
	}
}

// MarshalJSON renders the tag as a JSON array of strings, dispatching on Kind.
func (t T) MarshalJSON() ([]byte, error) {
	var elems []string
	switch t.Kind {
	case KindEmpty:
		elems = []string{}
	case KindEvent:
		elems = []string{"e", t.EventId}
		if t.hasRecommendedRelay {
			elems = append(elems, t.RecommendedRelayURL)
			if t.hasMarker {
				elems = append(elems, t.Marker)
			}
		} else if t.hasMarker {
			elems = append(elems, "", t.Marker)
		}
	case KindPubkey:
		elems = []string{"p", t.Pubkey}
		if t.hasRecommendedRelay || t.RecommendedRelayURL != "" || t.hasPetname {
			elems = append(elems, t.RecommendedRelayURL)
		}
		if t.hasPetname {
			elems = append(elems, t.Petname)
		}
	case KindRelay:
		elems = []string{"relay", t.Value}
	case KindChallenge:
		elems = []string{"challenge", t.Value}
	case KindSubject:
		elems = []string{"subject", t.Value}
	case KindOther:
		elems = append([]string{t.Name}, t.Data...)
	}
	return json.Marshal(elems)
}

// UnmarshalJSON parses a JSON array of strings into the appropriate variant,
// preserving unrecognized tags and trailing fields via Other.
func (t *T) UnmarshalJSON(b []byte) (err error) {
	var elems []string
	if err = json.Unmarshal(b, &elems); err != nil {
		return err
	}
	if len(elems) == 0 {
		*t = T{Kind: KindEmpty}
		return nil
	}
	name := elems[0]
	rest := elems[1:]
	switch name {
	case "e":
		if len(rest) == 0 {
			*t = T{Kind: KindOther, Name: name}
			return nil
		}
		n := T{Kind: KindEvent, EventId: rest[0]}
		if len(rest) > 1 {
			n.RecommendedRelayURL = rest[1]
			n.hasRecommendedRelay = true
		}
		if len(rest) > 2 {
			n.Marker = rest[2]
			n.hasMarker = true
		}
		*t = n
	case "p":
		if len(rest) == 0 {
			*t = T{Kind: KindOther, Name: name}
			return nil
		}
		n := T{Kind: KindPubkey, Pubkey: rest[0]}
		if len(rest) > 1 {
			n.RecommendedRelayURL = rest[1]
			n.hasRecommendedRelay = true
		}
		if len(rest) > 2 {
			n.Petname = rest[2]
			n.hasPetname = true
		}
		*t = n
	case "relay":
		v := ""
		if len(rest) > 0 {
			v = rest[0]
		}
		*t = T{Kind: KindRelay, Value: v}
	case "challenge":
		v := ""
		if len(rest) > 0 {
			v = rest[0]
		}
		*t = T{Kind: KindChallenge, Value: v}
	case "subject":
		if len(rest) == 0 {
			*t = T{Kind: KindOther, Name: name}
			return nil
		}
		*t = T{Kind: KindSubject, Value: rest[0]}
	default:
		data := append([]string{}, rest...)
		*t = T{Kind: KindOther, Name: name, Data: data}
	}
	return nil
}
