// Package envelope codecs the client<->relay wire messages: JSON arrays
// whose first element names the variant (§4.1). Decoding fails with
// ErrMalformed for anything that doesn't match one of the known shapes.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lzcers/ksana-relay/encoders/event"
	"github.com/lzcers/ksana-relay/encoders/filter"
)

// ErrMalformed is returned by Decode for any frame that doesn't match one of
// the known envelope shapes: wrong tag string, missing positional element,
// or an element of the wrong arity/type.
var ErrMalformed = errors.New("envelope: malformed frame")

func malformed(reason string) error {
	return fmt.Errorf("%w: %s", ErrMalformed, reason)
}

// Client label constants.
const (
	LabelEvent = "EVENT"
	LabelReq   = "REQ"
	LabelClose = "CLOSE"
	LabelAuth  = "AUTH"
)

// Relay label constants.
const (
	LabelNotice = "NOTICE"
)

// ClientMessage is the decoded form of any client->relay frame.
type ClientMessage struct {
	Label string

	// EVENT, AUTH
	Event *event.E

	// REQ
	Subscription string
	Filters      []*filter.T

	// CLOSE
	CloseSubscription string
}

// DecodeClient parses a client->relay frame.
func DecodeClient(raw []byte) (msg ClientMessage, err error) {
	var arr []json.RawMessage
	if err = json.Unmarshal(raw, &arr); err != nil {
		return msg, malformed(err.Error())
	}
	if len(arr) < 1 {
		return msg, malformed("empty envelope")
	}
	var label string
	if err = json.Unmarshal(arr[0], &label); err != nil {
		return msg, malformed("first element is not a string")
	}
	switch label {
	case LabelEvent, LabelAuth:
		if len(arr) < 2 {
			return msg, malformed(label + " missing event element")
		}
		ev := &event.E{}
		if err = json.Unmarshal(arr[1], ev); err != nil {
			return msg, malformed(err.Error())
		}
		msg.Label = label
		msg.Event = ev
		return msg, nil
	case LabelReq:
		if len(arr) < 2 {
			return msg, malformed("REQ missing subscription id")
		}
		var subID string
		if err = json.Unmarshal(arr[1], &subID); err != nil {
			return msg, malformed("REQ subscription id is not a string")
		}
		filters := make([]*filter.T, 0, len(arr)-2)
		for _, raw := range arr[2:] {
			f := filter.New()
			if err = json.Unmarshal(raw, f); err != nil {
				return msg, malformed(err.Error())
			}
			filters = append(filters, f)
		}
		msg.Label = label
		msg.Subscription = subID
		msg.Filters = filters
		return msg, nil
	case LabelClose:
		if len(arr) < 2 {
			return msg, malformed("CLOSE missing subscription id")
		}
		var subID string
		if err = json.Unmarshal(arr[1], &subID); err != nil {
			return msg, malformed("CLOSE subscription id is not a string")
		}
		msg.Label = label
		msg.CloseSubscription = subID
		return msg, nil
	default:
		return msg, malformed("unknown label " + label)
	}
}

// EncodeEvent renders ["EVENT", <subscription_id>, <event>].
func EncodeEvent(subID string, ev *event.E) ([]byte, error) {
	return json.Marshal([]interface{}{"EVENT", subID, ev})
}

// EncodeNotice renders ["NOTICE", <message>].
func EncodeNotice(message string) ([]byte, error) {
	return json.Marshal([]interface{}{"NOTICE", message})
}

// EncodeAuthChallenge renders ["AUTH", <challenge>].
func EncodeAuthChallenge(challenge string) ([]byte, error) {
	return json.Marshal([]interface{}{"AUTH", challenge})
}
