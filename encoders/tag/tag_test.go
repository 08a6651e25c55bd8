package tag

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventTagRoundTrip(t *testing.T) {
	tg := Event("abc123")
	b, err := json.Marshal(tg)
	require.NoError(t, err)
	require.JSONEq(t, `["e","abc123"]`, string(b))

	var out T
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, tg, out)
}

func TestEventWithRelayTagRoundTrip(t *testing.T) {
	tg := EventWithRelay("abc123", "wss://relay.example")
	b, err := json.Marshal(tg)
	require.NoError(t, err)
	require.JSONEq(t, `["e","abc123","wss://relay.example"]`, string(b))

	var out T
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, tg, out)
}

func TestPubkeyTagWithPetnameRoundTrip(t *testing.T) {
	var tg T
	require.NoError(t, json.Unmarshal([]byte(`["p","deadbeef","wss://relay.example","alice"]`), &tg))
	require.Equal(t, KindPubkey, tg.Kind)
	require.Equal(t, "deadbeef", tg.Pubkey)
	require.Equal(t, "wss://relay.example", tg.RecommendedRelayURL)
	require.Equal(t, "alice", tg.Petname)

	b, err := json.Marshal(tg)
	require.NoError(t, err)
	require.JSONEq(t, `["p","deadbeef","wss://relay.example","alice"]`, string(b))
}

func TestUnknownTagRoundTripsViaOther(t *testing.T) {
	var tg T
	require.NoError(t, json.Unmarshal([]byte(`["nonce","1234","21"]`), &tg))
	require.Equal(t, KindOther, tg.Kind)
	require.Equal(t, "nonce", tg.TagName())

	b, err := json.Marshal(tg)
	require.NoError(t, err)
	require.JSONEq(t, `["nonce","1234","21"]`, string(b))
}

func TestChallengeTag(t *testing.T) {
	tg := Challenge("xyz")
	require.Equal(t, "challenge", tg.TagName())
	b, err := json.Marshal(tg)
	require.NoError(t, err)
	require.JSONEq(t, `["challenge","xyz"]`, string(b))
}
