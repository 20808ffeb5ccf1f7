// Command zoltarctl is the operator tool for a zoltarand deployment:
// it manages the JWT signing secret in the OS keychain and mints
// bearer tokens for players, the admin and the operator.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ubitquity/Zoltaran-Speaks/internal/auth"
	"github.com/ubitquity/Zoltaran-Speaks/internal/secrets"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: zoltarctl [flags] <command>

commands:
  secret set        read a signing secret from stdin and store it
  secret generate   generate, store and print a fresh signing secret
  secret delete     remove the stored signing secret
  token <account>   mint a bearer token for an account
`)
	flag.PrintDefaults()
}

func main() {
	var (
		keyringService = flag.String("keyring-service", "zoltaran-speaks", "keychain service name")
		secretsFile    = flag.String("secrets-file", "", "fallback secrets file when no OS keyring is available")
		role           = flag.String("role", "player", "token role: player, admin or operator")
		ttl            = flag.Duration("ttl", 24*time.Hour, "token lifetime")
	)
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ks := secrets.NewStore(*keyringService, *secretsFile)

	var err error
	switch args[0] {
	case "secret":
		if len(args) != 2 {
			usage()
			os.Exit(2)
		}
		err = runSecret(ks, args[1])
	case "token":
		if len(args) != 2 {
			usage()
			os.Exit(2)
		}
		err = runToken(ks, args[1], *role, *ttl)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "zoltarctl: %v\n", err)
		os.Exit(1)
	}
}

func runSecret(ks *secrets.Store, sub string) error {
	switch sub {
	case "set":
		fmt.Fprint(os.Stderr, "signing secret: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read secret: %w", err)
		}
		return ks.SetSigningSecret(strings.TrimSpace(line))
	case "generate":
		if _, err := ks.SigningSecret(); err == nil {
			return errors.New("a signing secret already exists; delete it first")
		}
		secret, err := ks.EnsureSigningSecret()
		if err != nil {
			return err
		}
		fmt.Println(secret)
		return nil
	case "delete":
		return ks.Delete()
	default:
		return fmt.Errorf("unknown secret command %q", sub)
	}
}

func runToken(ks *secrets.Store, account, role string, ttl time.Duration) error {
	var r auth.Role
	switch role {
	case "player":
		r = auth.RolePlayer
	case "admin":
		r = auth.RoleAdmin
	case "operator":
		r = auth.RoleOperator
	default:
		return fmt.Errorf("unknown role %q", role)
	}

	secret, err := ks.SigningSecret()
	if err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			return errors.New("no signing secret stored; run 'zoltarctl secret generate' first")
		}
		return err
	}

	j := auth.JWT{Secret: []byte(secret), TokenTTL: ttl}
	token, expiresAt, err := j.Sign(account, r)
	if err != nil {
		return err
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.Format(time.RFC3339))
	return nil
}
