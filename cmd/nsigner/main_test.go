package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"nsigner.lol"
	"nsigner.lol/event"
	"nsigner.lol/p256k/btcec"
	"nsigner.lol/random"
)

const (
	oneHex  = "0000000000000000000000000000000000000000000000000000000000000001"
	gHex    = "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	gNpub   = "npub10xlxvlhemja6c4dqv22uapctqupfhlxm9h8z3k2e72q4k9hcz7vqpkge6d"
	onesSec = "nsec1qyqszqgpqyqszqgpqyqszqgpqyqszqgpqyqszqgpqyqszqgpqyqstywftw"
)

func setup(t *testing.T) {
	t.Setenv("PROFILE", t.TempDir())
	t.Setenv("STORE", "ratel")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DB_LOG_LEVEL", "error")
	t.Setenv("RANDOM", "frand")
	t.Setenv("BACKEND", "btcec")
	t.Setenv("KEY_ENCODING", "hex")
}

type result struct {
	code           int
	stdout, stderr string
}

func exec(stdin string, argv ...string) (r result) {
	var out, errOut bytes.Buffer
	r.code = run(context.Background(), argv, strings.NewReader(stdin), &out, &errOut)
	r.stdout, r.stderr = out.String(), errOut.String()
	return
}

func decode(t *testing.T, s string) (o output) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(s), &o), s)
	return
}

func TestLifecycle(t *testing.T) {
	setup(t)
	r := exec("", "create", "--scope", "bob")
	require.Equal(t, 0, r.code, r.stderr)
	bob := decode(t, r.stdout)
	require.Equal(t, "bob", bob.Scope)
	require.True(t, strings.HasPrefix(bob.Npub, "npub1"))
	require.NotEmpty(t, bob.CreatedAt)

	r = exec("", "import", "-s", "alice", oneHex)
	require.Equal(t, 0, r.code, r.stderr)
	alice := decode(t, r.stdout)
	require.Equal(t, gHex, alice.PublicKey)
	require.Equal(t, gNpub, alice.Npub)

	r = exec("", "pubkey", "-s", "alice", "-i", alice.ID)
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, gHex, decode(t, r.stdout).PublicKey)

	// alice writes to bob by npub, bob reads it by hex
	r = exec("hello bob\n", "encrypt", "-s", "alice", "-i", alice.ID, "-p", bob.Npub)
	require.Equal(t, 0, r.code, r.stderr)
	payload := strings.TrimSpace(r.stdout)
	require.Contains(t, payload, "?iv=")
	r = exec("", "decrypt", "-s", "bob", "-i", bob.ID, "-p", gHex, payload)
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "hello bob\n", r.stdout)

	r = exec(`{"created_at":1700000000,"kind":1,"tags":[["t","x"]],"content":"gm"}`,
		"sign", "-s", "alice", "-i", alice.ID)
	require.Equal(t, 0, r.code, r.stderr)
	ev := event.New()
	require.NoError(t, ev.UnmarshalJSON([]byte(strings.TrimSpace(r.stdout))))
	require.Equal(t, gHex, ev.PubKeyString())
	valid, err := ev.Verify(btcec.New(random.Frand{}, nil))
	require.NoError(t, err)
	require.True(t, valid)

	r = exec("", "list", "-s", "alice")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, alice.ID, decode(t, r.stdout).ID)

	r = exec("", "delete", "-s", "alice", "-i", alice.ID)
	require.Equal(t, 0, r.code, r.stderr)
	r = exec("", "delete", "-s", "alice", "-i", alice.ID)
	require.Equal(t, 0, r.code, r.stderr)
	r = exec("", "pubkey", "-s", "alice", "-i", alice.ID)
	require.Equal(t, 1, r.code)
	require.Contains(t, r.stderr, "credential not found")
}

func TestImportNsecFromStdin(t *testing.T) {
	setup(t)
	r := exec(onesSec+"\n", "import", "-s", "carol")
	require.Equal(t, 0, r.code, r.stderr)
	require.Len(t, decode(t, r.stdout).PublicKey, 64)
	r = exec("nsec1notvalid", "import", "-s", "carol")
	require.Equal(t, 1, r.code)
	require.Contains(t, r.stderr, "invalid input")
}

func TestErrors(t *testing.T) {
	setup(t)
	r := exec("", "import", "-s", "carol", "nothex")
	require.Equal(t, 1, r.code)
	require.Contains(t, r.stderr, "invalid argument")
	// an out of range key is not reported in detail
	r = exec("", "import", "-s", "carol", strings.Repeat("0", 64))
	require.Equal(t, 1, r.code)
	require.Equal(t, "error: operation failed\n", r.stderr)
	r = exec("", "decrypt", "-s", "carol", "-i", "x", "-p", gHex,
		"AAAA?iv="+strings.Repeat("A", 25))
	require.Equal(t, 1, r.code)
	require.Contains(t, r.stderr, "invalid argument")
	r = exec("", "sign", "-s", "carol", "-i", "x")
	require.Equal(t, 1, r.code)
	r = exec("", "create")
	require.Equal(t, 2, r.code)
	r = exec("", "frobnicate")
	require.Equal(t, 2, r.code)
	r = exec("")
	require.Equal(t, 2, r.code)
}

func TestVersionAndEnv(t *testing.T) {
	setup(t)
	r := exec("", "version")
	require.Equal(t, 0, r.code)
	require.Equal(t, nsigner.Version+"\n", r.stdout)
	t.Setenv("SEAL_PASSPHRASE", "secret words")
	r = exec("", "env")
	require.Equal(t, 0, r.code, r.stderr)
	require.Contains(t, r.stdout, "export STORE=ratel\n")
	require.NotContains(t, r.stdout, "secret words")
	r = exec("", "--help")
	require.Equal(t, 0, r.code)
	require.Contains(t, r.stdout, "encrypt")
}
