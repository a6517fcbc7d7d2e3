package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/sangkips/tableside-api/internal/infrastructure/database"
	"github.com/sangkips/tableside-api/internal/infrastructure/messaging"
	"github.com/sangkips/tableside-api/internal/presentation/http/middleware"
	"github.com/sangkips/tableside-api/internal/presentation/http/routes"
	"github.com/sangkips/tableside-api/pkg/apperror"
	"github.com/sangkips/tableside-api/pkg/payment"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, c, true)
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.log

	if a.db != nil && c.Bool("migrate") {
		if err := database.AutoMigrate(a.db, log); err != nil {
			return err
		}
		if err := database.SeedDefaultData(a.db, a.cfg.Seed, log); err != nil {
			log.Warn("failed to seed default data", zap.Error(err))
		}
	}

	if a.cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	rateLimiter := middleware.NewOutletRateLimiter(middleware.RateLimiterConfigFor(
		a.cfg.RateLimit.Requests,
		a.cfg.RateLimit.Window(),
	))
	defer rateLimiter.Close()

	router := routes.Setup(a.handlers(), &routes.Deps{
		JWTManager:      a.jwt,
		Cfg:             a.cfg,
		Logger:          log,
		OutletRepo:      a.storage.outlets,
		IdempotencyRepo: a.storage.idempotency,
		RateLimiter:     rateLimiter,
	})

	port := a.cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server starting", zap.String("port", port), zap.String("storage", a.cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return a.payments.RunSweeper(gctx, a.cfg.Payment.SweepInterval, a.cfg.Payment.SweepAfter)
	})

	g.Go(func() error {
		return purgeIdempotencyKeys(gctx, a.storage.idempotency, time.Hour, log)
	})

	if a.broker != nil {
		consumer := messaging.NewConsumer(a.broker, log, a.cfg.RabbitMQ.PaymentsQueue, a.cfg.App.Name, a.cfg.RabbitMQ.Prefetch)
		g.Go(func() error {
			if err := consumer.StartConsuming(gctx, paymentEventHandler(a)); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("payment event consumer stopped", zap.Error(err))
			}
			return nil
		})
	}

	err = g.Wait()
	a.poller.Wait()
	log.Info("server stopped")
	return err
}

// paymentEventHandler applies provider events delivered over RabbitMQ.
// Events that can never apply are dropped instead of requeued.
func paymentEventHandler(a *application) messaging.MessageHandler {
	return func(ctx context.Context, body []byte) error {
		var ev payment.Event
		if err := json.Unmarshal(body, &ev); err != nil {
			return messaging.Permanent(fmt.Errorf("decode payment event: %w", err))
		}
		outcome, err := a.payments.HandleEvent(ctx, ev)
		if err != nil {
			switch apperror.KindOf(err) {
			case apperror.KindNotFound, apperror.KindValidation:
				return messaging.Permanent(err)
			}
			return err
		}
		a.log.Info("payment event applied",
			zap.String("event_id", ev.ID),
			zap.String("order_id", outcome.OrderID.String()),
			zap.String("status", string(outcome.Status)))
		return nil
	}
}

func purgeIdempotencyKeys(ctx context.Context, repo repository.IdempotencyRepository, interval time.Duration, log *zap.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Warn("idempotency key purge failed", zap.Error(err))
				}
				continue
			}
			if n > 0 {
				log.Info("expired idempotency keys purged", zap.Int64("count", n))
			}
		}
	}
}

func migrate(c *cli.Context) error {
	a, err := bootstrap(c.Context, c, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.db == nil {
		a.log.Info("memory storage needs no migration")
		return nil
	}
	if err := database.AutoMigrate(a.db, a.log); err != nil {
		return err
	}
	return database.SeedDefaultData(a.db, a.cfg.Seed, a.log)
}

func reconcile(c *cli.Context) error {
	a, err := bootstrap(c.Context, c, false)
	if err != nil {
		return err
	}
	defer a.Close()

	olderThan := time.Now().Add(-c.Duration("older-than"))
	n, err := a.payments.Sweep(c.Context, olderThan, c.Int("limit"))
	if err != nil {
		return err
	}
	a.log.Info("reconciliation finished", zap.Int("settled", n))
	return nil
}
