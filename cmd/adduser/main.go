package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/nkiryanov/moneytracker/internal/apperrors"
	"github.com/nkiryanov/moneytracker/internal/db"
	"github.com/nkiryanov/moneytracker/internal/repository/postgres"
	"github.com/nkiryanov/moneytracker/internal/service/auth"
	"github.com/nkiryanov/moneytracker/internal/service/user"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Getenv, os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err) // nolint:errcheck
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, getenv func(string) string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("adduser", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.StringP("user", "u", "", "Username")
	password := fs.StringP("password", "p", "", "Password (optional, will prompt if omitted)")
	dsn := fs.StringP("database", "d", getenv("DATABASE_URI"), "Database connection string")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" || *dsn == "" {
		fmt.Fprintln(stdout, "Usage: adduser --user <username> [--password <password>] [--database <dsn>]") // nolint:errcheck
		fs.PrintDefaults()
		return errors.New("missing required flags: user, database")
	}

	if *password == "" {
		fmt.Fprint(stdout, "Password: ") // nolint:errcheck
		var err error
		*password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout) // nolint:errcheck
	}

	pool, err := db.ConnectAndMigrate(ctx, *dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer pool.Close()

	users, err := user.NewService(auth.DefaultHasher, postgres.NewStorage(pool))
	if err != nil {
		return err
	}

	// Same rules as registration over HTTP
	u, err := users.Register(ctx, *username, *password)
	switch {
	case err == nil:
		fmt.Fprintf(stdout, "User %s created successfully with ID %d\n", u.Username, u.ID) // nolint:errcheck
		return nil
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		return fmt.Errorf("user %s already exists", *username)
	default:
		return fmt.Errorf("failed to create user: %w", err)
	}
}

func readPassword(stdin io.Reader) (string, error) {
	// Check if stdin is a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Not a terminal: pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
