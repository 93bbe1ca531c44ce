// Command koreclient runs one checkout against a KoreConnect backend:
// build a cart from flags, submit it, then track the order to a
// terminal status.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/Kishore-028/KoreConnect/internal/auth"
	"github.com/Kishore-028/KoreConnect/internal/cart"
	"github.com/Kishore-028/KoreConnect/internal/catalog"
	"github.com/Kishore-028/KoreConnect/internal/checkout"
	"github.com/Kishore-028/KoreConnect/internal/rest"
	"github.com/Kishore-028/KoreConnect/internal/tracker"
	"github.com/Kishore-028/KoreConnect/pkg/logger"
)

type Config struct {
	BackendURL     string        `env:"BACKEND_URL" envDefault:"http://localhost:8080"`
	BearerToken    string        `env:"BEARER_TOKEN"`
	JWTSecret      string        `env:"JWT_SECRET"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
	PollInterval   time.Duration `env:"POLL_INTERVAL" envDefault:"2s"`
}

func main() {
	itemID := flag.String("item", "masala-dosa", "menu item id to order")
	qty := flag.Int("qty", 1, "quantity")
	orderID := flag.String("order", "", "track an existing order instead of checking out")
	flag.Parse()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	if cfg.BearerToken == "" {
		log.Fatal("BEARER_TOKEN is required")
	}

	slogger := logger.New()

	creds, err := buildCredentials(cfg)
	if err != nil {
		log.Fatalf("failed to acquire credentials: %v", err)
	}

	client := rest.NewClient(cfg.BackendURL, creds,
		rest.WithTimeout(cfg.RequestTimeout),
		rest.WithLogger(slogger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	id := *orderID
	if id == "" {
		id, err = runCheckout(ctx, client, slogger, *itemID, *qty)
		if err != nil {
			log.Fatalf("checkout failed: %v", err)
		}
	}

	track := tracker.New(client,
		tracker.WithInterval(cfg.PollInterval),
		tracker.WithLogger(slogger),
	)
	orders, errs := track.Track(ctx, id)
	for {
		select {
		case order, ok := <-orders:
			if !ok {
				return
			}
			slogger.Info("order status", "order_id", order.ID, "status", order.Status)
			if order.Status.IsTerminal() {
				return
			}
		case trackErr, ok := <-errs:
			if !ok {
				return
			}
			slogger.Error("tracking stopped", "error", trackErr)
			os.Exit(1)
		}
	}
}

func buildCredentials(cfg Config) (auth.CredentialProvider, error) {
	if cfg.JWTSecret == "" {
		return auth.Static{Token: cfg.BearerToken, User: auth.Identity{UserID: "local", Role: auth.RoleUser}}, nil
	}
	provider := auth.NewTokenProvider([]byte(cfg.JWTSecret))
	if err := provider.Acquire(cfg.BearerToken); err != nil {
		return nil, err
	}
	return provider, nil
}

func runCheckout(ctx context.Context, client *rest.Client, slogger *slog.Logger, itemID string, qty int) (string, error) {
	index, err := catalog.Fetch(ctx, client)
	if err != nil {
		return "", err
	}

	store := cart.NewStore("local-session")
	if err := store.AddOrUpdate(itemID, qty); err != nil {
		return "", err
	}

	attempt := checkout.NewAttempt()
	payload, err := attempt.Build(store.Snapshot(), index)
	if err != nil {
		return "", err
	}

	submitter := checkout.NewSubmitter(client, store)
	order, err := submitter.Submit(ctx, payload)
	if err != nil {
		return "", err
	}

	slogger.Info("order placed", "order_id", order.ID, "subtotal", order.Payload.Subtotal.String())
	return order.ID, nil
}
