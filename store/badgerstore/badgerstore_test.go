package badgerstore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lzcers/ksana-relay/encoders/event"
	"github.com/lzcers/ksana-relay/encoders/kind"
	"github.com/lzcers/ksana-relay/encoders/tag"
	"github.com/lzcers/ksana-relay/encoders/tags"
	"github.com/lzcers/ksana-relay/encoders/timestamp"
)

func openTemp(t *testing.T) *D {
	dir, err := os.MkdirTemp("", "badgerstore-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	d, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func newEvent(id, pubkey byte, content string) *event.E {
	return &event.E{
		Id: fill(id), Pubkey: fill(pubkey), CreatedAt: timestamp.FromUnix(1000),
		Kind: kind.TextNote, Tags: tags.T{tag.Pubkey("friend")}, Content: content,
		Sig: fill(0xAA),
	}
}

func fill(b byte) []byte {
	out := make([]byte, 32)
	for i := range out {
		out[i] = b
	}
	return out
}

func TestSaveAndLoadAll(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	ev := newEvent(1, 2, "hello")
	require.NoError(t, d.Save(ctx, ev))

	loaded, err := d.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, ev.Content, loaded[0].Content)
	require.Equal(t, ev.Pubkey, loaded[0].Pubkey)
}

func TestDeleteRequiresMatchingPubkey(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	ev := newEvent(1, 2, "hello")
	require.NoError(t, d.Save(ctx, ev))

	n, err := d.Delete(ctx, ev.Id, fill(9))
	require.NoError(t, err)
	require.Equal(t, 0, n, "delete by the wrong pubkey should remove nothing")

	n, err = d.Delete(ctx, ev.Id, ev.Pubkey)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	loaded, err := d.LoadAll(ctx)
	require.NoError(t, err)
	require.Empty(t, loaded)
}
