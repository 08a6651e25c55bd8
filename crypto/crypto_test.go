package crypto

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/stretchr/testify/require"

	"github.com/lzcers/ksana-relay/encoders/event"
	"github.com/lzcers/ksana-relay/encoders/kind"
	"github.com/lzcers/ksana-relay/encoders/tags"
	"github.com/lzcers/ksana-relay/encoders/timestamp"
)

func TestSignThenVerify(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	pk := schnorr.SerializePubKey(priv.PubKey())

	ca := timestamp.FromUnix(1700000000)
	k := kind.TextNote
	tg := tags.T{}
	content := "gm"

	id, sig, err := Sign(priv, pk, ca, k, tg, content)
	require.NoError(t, err)

	ev := &event.E{Id: id, Pubkey: pk, CreatedAt: ca, Kind: k, Tags: tg, Content: content, Sig: sig}
	require.NoError(t, Verify(ev))
}

func TestVerifyRejectsTamperedContent(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	pk := schnorr.SerializePubKey(priv.PubKey())

	ca := timestamp.FromUnix(1700000000)
	k := kind.TextNote
	tg := tags.T{}

	id, sig, err := Sign(priv, pk, ca, k, tg, "original")
	require.NoError(t, err)

	ev := &event.E{Id: id, Pubkey: pk, CreatedAt: ca, Kind: k, Tags: tg, Content: "tampered", Sig: sig}
	require.ErrorIs(t, Verify(ev), ErrHashMismatch)
}
