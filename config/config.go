// Package config is the nsigner configuration, loaded from the environment and
// from a .env file in the profile directory.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"go-simpler.org/env"

	"nsigner.lol/chk"
	envfile "nsigner.lol/env"
)

// C is the configuration of the nsigner engine and CLI.
type C struct {
	AppName         string `env:"APP_NAME" default:"nsigner"`
	Profile         string `env:"PROFILE" usage:"root path for all other path configurations (based on APP_NAME and the XDG data directory)"`
	LogLevel        string `env:"LOG_LEVEL" default:"info" usage:"debug level: fatal error warn info debug trace"`
	Backend         string `env:"BACKEND" default:"btcec" usage:"crypto backend: btcec secp256k1 noscrypt"`
	LibPath         string `env:"LIB_PATH" usage:"path of the native library for the secp256k1 and noscrypt backends, searched for when empty"`
	Random          string `env:"RANDOM" default:"system" usage:"random source: system frand fallback"`
	KeyEncoding     string `env:"KEY_ENCODING" default:"base64" usage:"how secret keys are stored: base64 hex nsec sealed"`
	SealPassphrase  string `env:"SEAL_PASSPHRASE" secret:"true" usage:"passphrase for the sealed key encoding"`
	Store           string `env:"STORE" default:"ratel" usage:"secret store: memory ratel vault awssm"`
	DataDir         string `env:"DATA_DIR" usage:"ratel database directory, PROFILE/db when empty"`
	DBLogLevel      string `env:"DB_LOG_LEVEL" default:"warn" usage:"ratel database log level"`
	DBEncryptionKey string `env:"DB_ENCRYPTION_KEY" secret:"true" usage:"hex AES key (16, 24 or 32 bytes) encrypting the ratel database at rest"`
	VaultAddr       string `env:"VAULT_ADDR" usage:"vault server address"`
	VaultToken      string `env:"VAULT_TOKEN" secret:"true" usage:"vault token"`
	VaultMount      string `env:"VAULT_MOUNT" default:"secret" usage:"vault kv version 2 mount"`
	VaultPrefix     string `env:"VAULT_PREFIX" default:"nsigner" usage:"path prefix under the vault mount"`
	AWSRegion       string `env:"AWS_REGION" usage:"aws region, the aws default configuration when empty"`
	AWSSecretPrefix string `env:"AWS_SECRET_PREFIX" default:"nsigner" usage:"name prefix of the aws secrets"`
	Pprof           string `env:"PPROF" usage:"write a cpu, memory or trace profile to the profile directory"`
}

// New loads the configuration. Variables in the process environment take
// precedence over the .env file in the profile directory, which takes
// precedence over the defaults.
func New() (cfg *C, err error) {
	cfg = &C{}
	if err = env.Load(cfg, nil); chk.T(err) {
		return
	}
	if cfg.Profile == "" {
		cfg.Profile = filepath.Join(xdg.DataHome, cfg.AppName)
	}
	envPath := cfg.EnvPath()
	if _, err = os.Stat(envPath); err == nil {
		var e envfile.Env
		if e, err = envfile.GetEnv(envPath); chk.T(err) {
			return
		}
		profile := cfg.Profile
		*cfg = C{}
		if err = env.Load(cfg, &env.Options{Source: e.FromOS()}); chk.E(err) {
			return
		}
		if cfg.Profile == "" {
			cfg.Profile = profile
		}
	}
	err = nil
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(cfg.Profile, "db")
	}
	return
}

// EnvPath is the .env file loaded from the profile directory.
func (cfg *C) EnvPath() string { return filepath.Join(cfg.Profile, ".env") }

// PrintHelp outputs a help text listing the configuration options and default
// values to a provided io.Writer (usually os.Stderr or os.Stdout).
func PrintHelp(cfg *C, printer io.Writer) {
	_, _ = fmt.Fprintf(printer,
		"Environment variables that configure %s:\n\n", cfg.AppName)
	env.Usage(cfg, printer, nil)
	_, _ = fmt.Fprintf(printer,
		"\n.env file found at the PROFILE path will be automatically "+
			"loaded for configuration.\nenvironment overrides it and "+
			"you can also edit the file to set configuration options\n\n"+
			"use the command 'env' to print out the current configuration to the terminal\n\n"+
			"set the environment using\n\n\t%s env>%s\n\n", os.Args[0], cfg.EnvPath())
}
