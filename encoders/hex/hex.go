// Package hex wraps encoding/hex with the fixed-length checks the wire codec
// needs for Id (32 bytes), PublicKey (32 bytes) and Signature (64 bytes).
package hex

import (
	"encoding/hex"
	"fmt"
)

// Enc lower-case hex-encodes b.
func Enc(b []byte) string { return hex.EncodeToString(b) }

// Dec decodes a lower-case hex string into raw bytes.
func Dec(s string) ([]byte, error) { return hex.DecodeString(s) }

// DecLen decodes s, requiring the result to be exactly n bytes long.
func DecLen(s string, n int) (b []byte, err error) {
	if len(s) != 2*n {
		return nil, fmt.Errorf(
			"invalid hex length: got %d chars, want %d", len(s), 2*n,
		)
	}
	return hex.DecodeString(s)
}
