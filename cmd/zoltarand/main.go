// Command zoltarand runs the wish game service: the commit-reveal
// engine, its SQLite store and the HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ubitquity/Zoltaran-Speaks/internal/api"
	"github.com/ubitquity/Zoltaran-Speaks/internal/auth"
	"github.com/ubitquity/Zoltaran-Speaks/internal/ledger"
	"github.com/ubitquity/Zoltaran-Speaks/internal/secrets"
	"github.com/ubitquity/Zoltaran-Speaks/internal/store"
	"github.com/ubitquity/Zoltaran-Speaks/internal/wish"
)

func main() {
	var (
		addr           = flag.String("addr", ":8080", "listen address")
		dbPath         = flag.String("db", "zoltaran.db", "path to sqlite database")
		tokenTTL       = flag.Duration("token-ttl", 24*time.Hour, "lifetime of issued bearer tokens")
		relayURL       = flag.String("relay-url", "", "ledger relay base URL; empty logs transfers instead of sending them")
		treasuryAcct   = flag.String("treasury-account", "zoltartreas", "ledger account transfers are sent from")
		keyringService = flag.String("keyring-service", "zoltaran-speaks", "keychain service name for the signing secret")
		secretsFile    = flag.String("secrets-file", "", "fallback secrets file when no OS keyring is available")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[ZOLTARAND] ", log.LstdFlags)

	// The signing secret comes from the environment, the OS keychain,
	// or is generated on first run.
	secret := os.Getenv("ZOLTARAND_JWT_SECRET")
	if secret == "" {
		ks := secrets.NewStore(*keyringService, *secretsFile)
		var err error
		secret, err = ks.EnsureSigningSecret()
		if err != nil {
			logger.Fatalf("signing secret unavailable: %v", err)
		}
	}

	db, err := store.NewSQLite(*dbPath)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatalf("migrate database: %v", err)
	}

	var transfer wish.TokenTransfer
	if *relayURL != "" {
		transfer = ledger.NewClient(ledger.Config{
			BaseURL: *relayURL,
			APIKey:  os.Getenv("ZOLTARAND_RELAY_KEY"),
			From:    *treasuryAcct,
		})
	} else {
		logger.Printf("no relay configured, transfers will be logged only")
		transfer = ledger.NewDryRun()
	}

	svc := wish.NewService(db, transfer, wish.RandomEntropy{})
	tokens := auth.JWT{Secret: []byte(secret), TokenTTL: *tokenTTL}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           api.NewServer(svc, tokens).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Printf("listening addr=%s db=%s", *addr, *dbPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Printf("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("shutdown error: %v", err)
	}
}
