package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

const SecretKeyBytesLen = 32

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err) // nolint:errcheck
		os.Exit(1)
	}
}

// Print random hex encoded secret suitable for SECRET_KEY
func run(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("gensecret", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	size := fs.IntP("bytes", "b", SecretKeyBytesLen, "Secret length in bytes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *size < 16 {
		return fmt.Errorf("secret of %d bytes is too weak, at least 16 expected", *size)
	}

	b := make([]byte, *size)
	if _, err := rand.Read(b); err != nil {
		return err
	}

	_, err := fmt.Fprintln(stdout, hex.EncodeToString(b))
	return err
}
