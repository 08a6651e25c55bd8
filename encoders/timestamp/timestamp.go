// Package timestamp is the Unixtime type of the wire codec: a signed 64-bit
// count of seconds since the epoch. Negative values decode without error;
// whether they are acceptable is a policy decision made by the caller (the
// NIP-42 freshness check in particular rejects implausible values).
package timestamp

import (
	"strconv"
	"time"
)

// T is a nostr unix timestamp, in seconds.
type T int64

// Now returns the current time as a T.
func Now() T { return T(time.Now().Unix()) }

// FromUnix wraps a raw unix-seconds value.
func FromUnix(i int64) T { return T(i) }

// I64 returns the timestamp as a plain int64.
func (t T) I64() int64 { return int64(t) }

// Time converts the timestamp to a time.Time in UTC.
func (t T) Time() time.Time { return time.Unix(int64(t), 0).UTC() }

// MarshalJSON renders the timestamp as a bare JSON number, matching the
// canonical encoding used both on the wire and in the hashed pre-image.
func (t T) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(t), 10)), nil
}

// UnmarshalJSON parses a bare JSON number into T.
func (t *T) UnmarshalJSON(b []byte) (err error) {
	i, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*t = T(i)
	return nil
}
