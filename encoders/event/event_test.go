package event

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/stretchr/testify/require"

	"github.com/lzcers/ksana-relay/encoders/kind"
	"github.com/lzcers/ksana-relay/encoders/tags"
	"github.com/lzcers/ksana-relay/encoders/timestamp"
)

func signedEvent(t *testing.T, content string) *E {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	pk := schnorr.SerializePubKey(priv.PubKey())

	ca := timestamp.FromUnix(1700000000)
	k := kind.TextNote
	tg := tags.T{}

	id, err := Hash(pk, ca, k, tg, content)
	require.NoError(t, err)
	sig, err := schnorr.Sign(priv, id)
	require.NoError(t, err)

	return &E{
		Id: id, Pubkey: pk, CreatedAt: ca, Kind: k, Tags: tg,
		Content: content, Sig: sig.Serialize(),
	}
}

func TestComputeIdMatchesHash(t *testing.T) {
	ev := signedEvent(t, "hello world")
	id, err := ev.ComputeId()
	require.NoError(t, err)
	require.Equal(t, ev.Id, id)
}

func TestRoundTripJSON(t *testing.T) {
	ev := signedEvent(t, "round trip me")
	b, err := ev.MarshalJSON()
	require.NoError(t, err)

	var out E
	require.NoError(t, out.UnmarshalJSON(b))
	require.Equal(t, ev.Id, out.Id)
	require.Equal(t, ev.Pubkey, out.Pubkey)
	require.Equal(t, ev.Content, out.Content)
	require.Equal(t, ev.Sig, out.Sig)
}

func TestUnmarshalRejectsShortId(t *testing.T) {
	raw := []byte(`{"id":"ab","pubkey":"` + encHex(32) + `","created_at":1,"kind":1,"tags":[],"content":"","sig":"` + encHex(64) + `"}`)
	var out E
	require.Error(t, out.UnmarshalJSON(raw))
}

func encHex(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += "ab"
	}
	return s
}
