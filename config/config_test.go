package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddrFormatsHostAndPort(t *testing.T) {
	c := &C{Listen: "127.0.0.1", Port: 9002}
	require.Equal(t, "127.0.0.1:9002", c.Addr())
}

func TestNewFillsDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	require.NotEmpty(t, cfg.DataDir)
	require.NotEmpty(t, cfg.DatabaseURL)
	require.NotEmpty(t, cfg.AuthChallenge, "a random challenge should be generated when unset")
	require.Equal(t, 9002, cfg.Port)
}
