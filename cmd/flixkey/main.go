package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mkrupp/myflix/internal/svc/authsvc"
)

type keyConfig struct {
	Out    string
	Bits   int
	Secret bool
}

func parseConfig(fs *flag.FlagSet, args []string) (keyConfig, error) {
	var cfg keyConfig

	fs.StringVar(&cfg.Out, "out", "var/keys/signing.pem", "path of the RSA private key to create")
	fs.IntVar(&cfg.Bits, "bits", authsvc.DefaultKeySize, "RSA key size")
	fs.BoolVar(&cfg.Secret, "secret", false, "print a random HMAC signing secret instead of writing an RSA key")

	if err := fs.Parse(args); err != nil {
		return keyConfig{}, fmt.Errorf("parse flags: %w", err)
	}

	return cfg, nil
}

func run(cfg keyConfig, out io.Writer) error {
	if cfg.Secret {
		secret := make([]byte, authsvc.MinSecretLength)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("read random: %w", err)
		}

		_, err := fmt.Fprintln(out, base64.RawURLEncoding.EncodeToString(secret))

		return err //nolint:wrapcheck
	}

	key, err := authsvc.GeneratePrivateKey(cfg.Bits)
	if err != nil {
		return fmt.Errorf("generate private key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Out), 0o700); err != nil {
		return fmt.Errorf("create key dir: %w", err)
	}

	if err := authsvc.WritePrivateKey(cfg.Out, key); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}

	_, err = fmt.Fprintf(out, "wrote %d-bit signing key to %s\n", cfg.Bits, cfg.Out)

	return err //nolint:wrapcheck
}

func main() {
	cfg, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(cfg, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
