package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kevinvillajim/bcommerce-checkout/internal/apiclient"
	"github.com/kevinvillajim/bcommerce-checkout/internal/cart"
	"github.com/kevinvillajim/bcommerce-checkout/internal/checkout"
	"github.com/kevinvillajim/bcommerce-checkout/internal/config"
	"github.com/kevinvillajim/bcommerce-checkout/internal/httpapi"
	"github.com/kevinvillajim/bcommerce-checkout/internal/kvstore"
	"github.com/kevinvillajim/bcommerce-checkout/internal/logger"
	"github.com/kevinvillajim/bcommerce-checkout/internal/notify"
	"github.com/kevinvillajim/bcommerce-checkout/internal/paymentlink"
	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
	"github.com/kevinvillajim/bcommerce-checkout/internal/qrpay"
	"github.com/kevinvillajim/bcommerce-checkout/internal/repository"
	"github.com/kevinvillajim/bcommerce-checkout/internal/seller"
	"github.com/kevinvillajim/bcommerce-checkout/internal/verification"
	"github.com/kevinvillajim/bcommerce-checkout/internal/widget"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	pruneInterval   = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Service: "storefront",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("storefront stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is empty")
	}

	if cfg.MigrationsEnabled {
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("repository.RunMigrations: %w", err)
		}
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("pgxpool.New: %w", err)
	}
	defer pool.Close()

	kv, closeKV, err := newKVStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeKV()

	api, err := apiclient.New(apiclient.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Token:   cfg.APIToken,
		Logger:  log,
	})
	if err != nil {
		return fmt.Errorf("apiclient.New: %w", err)
	}

	carts, err := cart.NewStore(repository.NewCart(pool), kv, cfg.MaxItemQuantity, log)
	if err != nil {
		return fmt.Errorf("cart.NewStore: %w", err)
	}

	sellers, err := seller.NewResolver(api, api, seller.NewCache(), cfg.DefaultSellerID, log)
	if err != nil {
		return fmt.Errorf("seller.NewResolver: %w", err)
	}

	orchestrator, err := checkout.NewOrchestrator(carts, sellers, api, cfg.TaxRate, log)
	if err != nil {
		return fmt.Errorf("checkout.NewOrchestrator: %w", err)
	}

	inbox := notify.NewInbox(0, log)

	verifier, err := verification.NewVerifier(api, verification.VerifierOptions{
		SandboxCodes:  cfg.SandboxCodes,
		ConsumedCodes: cfg.ConsumedCodes,
	}, log)
	if err != nil {
		return fmt.Errorf("verification.NewVerifier: %w", err)
	}

	reconciler, err := verification.NewReconciler(carts, inbox, inbox, verification.ReconcilerOptions{
		SuccessRedirectDelay: cfg.SuccessRedirectDelay,
		FailureRedirectDelay: cfg.FailureRedirectDelay,
	}, log)
	if err != nil {
		return fmt.Errorf("verification.NewReconciler: %w", err)
	}

	sessions, err := verification.NewSessionStore(kv, cfg.PaymentProvider)
	if err != nil {
		return fmt.Errorf("verification.NewSessionStore: %w", err)
	}

	verifications, err := verification.NewService(verifier, reconciler, sessions, cfg.SimulationEnabled, log)
	if err != nil {
		return fmt.Errorf("verification.NewService: %w", err)
	}

	poller, err := qrpay.NewPoller(api, qrpay.Options{
		Interval:  cfg.QRPollInterval,
		Expiry:    cfg.QRExpiry,
		Retention: cfg.QRRetention,
	}, log)
	if err != nil {
		return fmt.Errorf("qrpay.NewPoller: %w", err)
	}

	watcher, err := qrpay.NewWatcher(poller, inbox, log)
	if err != nil {
		return fmt.Errorf("qrpay.NewWatcher: %w", err)
	}

	links, err := paymentlink.NewService(repository.NewPaymentLink(pool), cfg.Currency, cfg.PaymentLinkTTL, log)
	if err != nil {
		return fmt.Errorf("paymentlink.NewService: %w", err)
	}

	host := widget.NewMemoryHost()
	widgets := widget.NewRegistry(widget.RegistryOptions{
		Grace:   cfg.WidgetGrace,
		IdleTTL: cfg.WidgetIdleTTL,
	})

	router, err := httpapi.NewRouter(httpapi.Deps{
		BaseContext:  ctx,
		Carts:        carts,
		Products:     api,
		Checkout:     orchestrator,
		Payments:     api,
		Verification: verifications,
		Widgets:      widgets,
		WidgetHost:   host,
		WidgetDeps: widget.Deps{
			Host:        host,
			Verifier:    verifier,
			Sessions:    sessions,
			Notifier:    inbox,
			VerifyDelay: cfg.VerifyDelay,
			Logger:      log,
		},
		QR:             watcher,
		PaymentLinks:   links,
		Inbox:          inbox,
		Currency:       cfg.Currency,
		JWTSecret:      []byte(cfg.JWTSecret),
		RequestTimeout: cfg.APITimeout * 2,
		Logger:         log,
	})
	if err != nil {
		return fmt.Errorf("httpapi.NewRouter: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	changes, unsubscribe := carts.Subscribe()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("storefront listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("srv.ListenAndServe: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		for change := range changes {
			log.Debug("cart changed",
				"owner", change.Owner.Key(),
				"items", change.Cart.ItemCount(),
				"total", change.Cart.Total.StringFixed(2))
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
			}

			if n := widgets.Prune() + watcher.Prune(); n > 0 {
				log.Debug("pruned finished payment attempts", "count", n)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)

		widgets.CloseAll()
		watcher.StopAll()
		unsubscribe()

		if err != nil {
			return fmt.Errorf("srv.Shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// newKVStore uses Redis when REDIS_ADDR is set and memory otherwise.
func newKVStore(ctx context.Context, cfg config.Config) (port.KVStore, func(), error) {
	if cfg.RedisAddr == "" {
		return kvstore.NewMemory(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis.Ping: %w", err)
	}

	return kvstore.NewRedis(client, cfg.SessionTTL), func() { _ = client.Close() }, nil
}
