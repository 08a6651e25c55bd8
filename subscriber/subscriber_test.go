package subscriber

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/stretchr/testify/require"

	"github.com/lzcers/ksana-relay/crypto"
	"github.com/lzcers/ksana-relay/encoders/event"
	"github.com/lzcers/ksana-relay/encoders/kind"
	"github.com/lzcers/ksana-relay/encoders/tag"
	"github.com/lzcers/ksana-relay/encoders/tags"
	"github.com/lzcers/ksana-relay/encoders/timestamp"
)

func authEvent(t *testing.T, ca timestamp.T, challenge, relay string) *event.E {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	pk := schnorr.SerializePubKey(priv.PubKey())

	tg := tags.T{tag.Challenge(challenge), tag.Relay(relay)}
	id, sig, err := crypto.Sign(priv, pk, ca, kind.Auth, tg, "")
	require.NoError(t, err)
	return &event.E{Id: id, Pubkey: pk, CreatedAt: ca, Kind: kind.Auth, Tags: tg, Sig: sig}
}

func TestCheckAuthAcceptsFreshMatchingEvent(t *testing.T) {
	s := &S{cfg: Config{Challenge: "chal1", RelayURL: "wss://relay.example"}}
	ev := authEvent(t, timestamp.Now(), "chal1", "wss://relay.example")
	require.True(t, s.checkAuth(ev))
}

func TestCheckAuthRejectsWrongChallenge(t *testing.T) {
	s := &S{cfg: Config{Challenge: "chal1", RelayURL: "wss://relay.example"}}
	ev := authEvent(t, timestamp.Now(), "wrong", "wss://relay.example")
	require.False(t, s.checkAuth(ev))
}

func TestCheckAuthRejectsStaleEvent(t *testing.T) {
	s := &S{cfg: Config{Challenge: "chal1", RelayURL: "wss://relay.example"}}
	stale := timestamp.FromUnix(timestamp.Now().I64() - int64(AuthFreshness/time.Second) - 60)
	ev := authEvent(t, stale, "chal1", "wss://relay.example")
	require.False(t, s.checkAuth(ev))
}

func TestCheckAuthRejectsFarFutureEvent(t *testing.T) {
	// The corrected, signed freshness comparison must reject events far in
	// the future just as it rejects stale ones, unlike an unsigned
	// underflow that would wrap around and accept them.
	s := &S{cfg: Config{Challenge: "chal1", RelayURL: "wss://relay.example"}}
	future := timestamp.FromUnix(timestamp.Now().I64() + int64(AuthFreshness/time.Second) + 60)
	ev := authEvent(t, future, "chal1", "wss://relay.example")
	require.False(t, s.checkAuth(ev))
}

func TestCheckAuthIsHostCaseInsensitive(t *testing.T) {
	s := &S{cfg: Config{Challenge: "chal1", RelayURL: "wss://Relay.Example"}}
	ev := authEvent(t, timestamp.Now(), "chal1", "wss://relay.example")
	require.True(t, s.checkAuth(ev))
}

func TestSameHost(t *testing.T) {
	require.True(t, sameHost("wss://relay.example", "wss://RELAY.EXAMPLE/"))
	require.False(t, sameHost("wss://relay.example", "wss://other.example"))
}
