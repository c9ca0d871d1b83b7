// Command nsigner is a command line front end to the credential engine:
// create, import and delete identities, sign events and encrypt or decrypt
// NIP-04 notes, with the secret store and crypto backend chosen by the
// environment (see `nsigner env`).
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/pkg/profile"

	"nsigner.lol"
	"nsigner.lol/app"
	"nsigner.lol/config"
	"nsigner.lol/config/keyvalue"
	"nsigner.lol/credential"
)

// Target names a stored credential.
type Target struct {
	Scope string `arg:"-s,--scope,required" help:"user scope the credential belongs to"`
	ID    string `arg:"-i,--id,required" help:"credential id"`
}

type CreateCmd struct {
	Scope string `arg:"-s,--scope,required" help:"user scope to create the credential in"`
}

type ImportCmd struct {
	Scope  string `arg:"-s,--scope,required" help:"user scope to import the credential into"`
	Secret string `arg:"positional" help:"hex or nsec secret key, read from stdin when omitted"`
}

type ListCmd struct {
	Scope string `arg:"-s,--scope,required" help:"user scope to list"`
}

type SignCmd struct {
	Target
	File string `arg:"-f,--file" help:"event json to sign, stdin when omitted"`
}

type EncryptCmd struct {
	Target
	Peer    string `arg:"-p,--peer,required" help:"recipient public key, hex or npub"`
	Message string `arg:"positional" help:"message, stdin when omitted"`
}

type DecryptCmd struct {
	Target
	Peer    string `arg:"-p,--peer,required" help:"sender public key, hex or npub"`
	Payload string `arg:"positional" help:"ciphertext?iv=IV payload, stdin when omitted"`
}

type Args struct {
	Create  *CreateCmd  `arg:"subcommand:create" help:"generate a new identity"`
	Import  *ImportCmd  `arg:"subcommand:import" help:"import an existing secret key as a new identity"`
	Delete  *Target     `arg:"subcommand:delete" help:"delete an identity"`
	Pubkey  *Target     `arg:"subcommand:pubkey" help:"print the public key of an identity"`
	List    *ListCmd    `arg:"subcommand:list" help:"list the identities in a scope"`
	Sign    *SignCmd    `arg:"subcommand:sign" help:"sign a nostr event"`
	Encrypt *EncryptCmd `arg:"subcommand:encrypt" help:"encrypt a NIP-04 note"`
	Decrypt *DecryptCmd `arg:"subcommand:decrypt" help:"decrypt a NIP-04 note"`
	Env     *struct{}   `arg:"subcommand:env" help:"print the configuration as a shell script"`
	Version *struct{}   `arg:"subcommand:version" help:"print the version"`
}

func (Args) Description() string {
	return "nsigner issues and operates per-user nostr identities\n"
}

func (Args) Epilogue() string {
	return "configuration is read from the environment and PROFILE/.env, " +
		"'nsigner env' prints it and 'nsigner env --help' lists the variables"
}

func main() { os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)) }

// run executes one command and returns the process exit code.
func run(c context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var args Args
	p, err := arg.NewParser(arg.Config{Program: "nsigner"}, &args)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}
	if err = p.Parse(argv); err != nil {
		switch {
		case errors.Is(err, arg.ErrHelp):
			_ = p.WriteHelpForSubcommand(stdout, p.SubcommandNames()...)
			if args.Env != nil {
				_, _ = fmt.Fprintln(stdout)
				var cfg *config.C
				if cfg, err = config.New(); err == nil {
					config.PrintHelp(cfg, stdout)
				}
			}
			return 0
		default:
			p.WriteUsage(stderr)
			_, _ = fmt.Fprintln(stderr, "error:", err)
			return 2
		}
	}
	if args.Version != nil {
		_, _ = fmt.Fprintln(stdout, nsigner.Version)
		return 0
	}
	if p.Subcommand() == nil {
		p.WriteHelp(stderr)
		return 2
	}
	var cfg *config.C
	if cfg, err = config.New(); chk.E(err) {
		_, _ = fmt.Fprintln(stderr, "error: loading configuration:", err)
		return 1
	}
	if args.Env != nil {
		keyvalue.PrintEnv(*cfg, stdout)
		return 0
	}
	switch strings.ToLower(cfg.Pprof) {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.Profile),
			profile.NoShutdownHook).Stop()
	case "mem", "memory":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(cfg.Profile),
			profile.NoShutdownHook).Stop()
	case "trace":
		defer profile.Start(profile.TraceProfile, profile.ProfilePath(cfg.Profile),
			profile.NoShutdownHook).Stop()
	default:
		log.W.F("unknown PPROF profile %q, not profiling", cfg.Pprof)
	}
	var a *app.T
	if a, err = app.New(c, cfg); err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	defer func() { chk.E(a.Close()) }()
	cmd := &commands{e: a.Engine, stdin: stdin, stdout: stdout}
	switch {
	case args.Create != nil:
		err = cmd.create(c, args.Create)
	case args.Import != nil:
		err = cmd.importKey(c, args.Import)
	case args.Delete != nil:
		err = cmd.delete(c, args.Delete)
	case args.Pubkey != nil:
		err = cmd.pubkey(c, args.Pubkey)
	case args.List != nil:
		err = cmd.list(c, args.List)
	case args.Sign != nil:
		err = cmd.sign(c, args.Sign)
	case args.Encrypt != nil:
		err = cmd.encrypt(c, args.Encrypt)
	case args.Decrypt != nil:
		err = cmd.decrypt(c, args.Decrypt)
	}
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", userError(err))
		return 1
	}
	return 0
}

// userError keeps caller mistakes specific and collapses every other failure
// into one message.
func userError(err error) error {
	switch {
	case errors.Is(err, credential.ErrInvalidArgument), errors.Is(err, errInput):
		return err
	case errors.Is(err, credential.ErrNotFound):
		return credential.ErrNotFound
	}
	return credential.Failed(err)
}
