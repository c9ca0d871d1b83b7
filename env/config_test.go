package env

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := `#!/usr/bin/env bash
# comment
export LOG_LEVEL=debug
STORE = ratel

VAULT_ADDR="http://127.0.0.1:8200"
SEAL_PASSPHRASE='a=b c'
not a pair
EMPTY=
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	env, err := GetEnv(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Env{
		"LOG_LEVEL":       "debug",
		"STORE":           "ratel",
		"VAULT_ADDR":      "http://127.0.0.1:8200",
		"SEAL_PASSPHRASE": "a=b c",
		"EMPTY":           "",
	}
	if len(env) != len(want) {
		t.Fatalf("got %v", env)
	}
	for k, v := range want {
		if got, ok := env.LookupEnv(k); !ok || got != v {
			t.Errorf("%s: got %q want %q", k, got, v)
		}
	}
}

func TestGetEnvMissing(t *testing.T) {
	if _, err := GetEnv(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestFromOSOverrides(t *testing.T) {
	t.Setenv("NSIGNER_TEST_VAR", "from-os")
	env := Env{"NSIGNER_TEST_VAR": "from-file", "OTHER": "kept"}.FromOS()
	if env["NSIGNER_TEST_VAR"] != "from-os" || env["OTHER"] != "kept" {
		t.Fatalf("got %v", env)
	}
}
