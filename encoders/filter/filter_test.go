package filter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lzcers/ksana-relay/encoders/kind"
)

func TestUnmarshalBasicFilter(t *testing.T) {
	raw := []byte(`{"kinds":[1],"limit":10}`)
	f := New()
	require.NoError(t, json.Unmarshal(raw, f))
	require.Len(t, f.Kinds, 1)
	require.True(t, f.Kinds[0].Equal(kind.TextNote))
	require.NotNil(t, f.Limit)
	require.Equal(t, 10, *f.Limit)
}

func TestUnmarshalTagFilters(t *testing.T) {
	hex32 := ""
	for i := 0; i < 32; i++ {
		hex32 += "ab"
	}
	raw := `{"#e":["` + hex32 + `"],"#p":["` + hex32 + `"]}`
	f := New()
	require.NoError(t, json.Unmarshal([]byte(raw), f))
	require.Len(t, f.E, 1)
	require.Len(t, f.P, 1)
}

func TestUnmarshalRejectsBadHexLength(t *testing.T) {
	f := New()
	require.Error(t, json.Unmarshal([]byte(`{"ids":["ab"]}`), f))
}

func TestMarshalOmitsAbsentFields(t *testing.T) {
	f := New()
	b, err := json.Marshal(f)
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(b))
}
