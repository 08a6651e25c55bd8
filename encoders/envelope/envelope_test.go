package envelope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeReq(t *testing.T) {
	msg, err := DecodeClient([]byte(`["REQ","sub1",{"kinds":[1]}]`))
	require.NoError(t, err)
	require.Equal(t, LabelReq, msg.Label)
	require.Equal(t, "sub1", msg.Subscription)
	require.Len(t, msg.Filters, 1)
}

func TestDecodeClose(t *testing.T) {
	msg, err := DecodeClient([]byte(`["CLOSE","sub1"]`))
	require.NoError(t, err)
	require.Equal(t, LabelClose, msg.Label)
	require.Equal(t, "sub1", msg.CloseSubscription)
}

func TestDecodeUnknownLabelFails(t *testing.T) {
	_, err := DecodeClient([]byte(`["BOGUS"]`))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeEmptyArrayFails(t *testing.T) {
	_, err := DecodeClient([]byte(`[]`))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestEncodeNotice(t *testing.T) {
	b, err := EncodeNotice("hello")
	require.NoError(t, err)
	require.JSONEq(t, `["NOTICE","hello"]`, string(b))
}

func TestEncodeAuthChallenge(t *testing.T) {
	b, err := EncodeAuthChallenge("chal123")
	require.NoError(t, err)
	require.JSONEq(t, `["AUTH","chal123"]`, string(b))
}
