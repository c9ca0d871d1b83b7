package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"nsigner.lol/config/keyvalue"
)

func TestDefaults(t *testing.T) {
	profile := t.TempDir()
	t.Setenv("PROFILE", profile)
	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, "nsigner", cfg.AppName)
	require.Equal(t, "btcec", cfg.Backend)
	require.Equal(t, "system", cfg.Random)
	require.Equal(t, "base64", cfg.KeyEncoding)
	require.Equal(t, "ratel", cfg.Store)
	require.Equal(t, filepath.Join(profile, "db"), cfg.DataDir)
}

func TestEnvFile(t *testing.T) {
	profile := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(profile, ".env"), []byte(
		"export STORE=memory\nexport BACKEND=secp256k1\nexport LOG_LEVEL=trace\n"), 0600))
	t.Setenv("PROFILE", profile)
	t.Setenv("LOG_LEVEL", "error")
	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, profile, cfg.Profile)
	require.Equal(t, "memory", cfg.Store)
	require.Equal(t, "secp256k1", cfg.Backend)
	// the process environment wins over the file
	require.Equal(t, "error", cfg.LogLevel)
	// defaults still apply to what neither sets
	require.Equal(t, "base64", cfg.KeyEncoding)
}

func TestPrintedEnvLoadsBack(t *testing.T) {
	profile := t.TempDir()
	t.Setenv("PROFILE", profile)
	t.Setenv("KEY_ENCODING", "sealed")
	t.Setenv("SEAL_PASSPHRASE", "do not print me")
	cfg, err := New()
	require.NoError(t, err)
	var buf bytes.Buffer
	keyvalue.PrintEnv(*cfg, &buf)
	require.False(t, strings.Contains(buf.String(), "do not print me"))
	require.Contains(t, buf.String(), "export KEY_ENCODING=sealed\n")
	require.NoError(t, os.WriteFile(cfg.EnvPath(), buf.Bytes(), 0600))
	os.Unsetenv("KEY_ENCODING")
	again, err := New()
	require.NoError(t, err)
	require.Equal(t, "sealed", again.KeyEncoding)
}

func TestPrintHelp(t *testing.T) {
	var buf bytes.Buffer
	PrintHelp(&C{AppName: "nsigner", Profile: "/p"}, &buf)
	require.Contains(t, buf.String(), "SEAL_PASSPHRASE")
	require.Contains(t, buf.String(), "/p/.env")
}
