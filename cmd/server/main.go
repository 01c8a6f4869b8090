// Command server runs the leadgate HTTP API.
//
// @title                       leadgate API
// @version                     1.0
// @description                 Contact form intake and lead administration behind JWT bearer authentication.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	_ "github.com/contactdesk/leadgate/docs"
	"github.com/contactdesk/leadgate/internal/api"
	"github.com/contactdesk/leadgate/internal/api/handler"
	"github.com/contactdesk/leadgate/internal/core/domain"
	"github.com/contactdesk/leadgate/internal/core/ports"
	"github.com/contactdesk/leadgate/internal/core/service"
	"github.com/contactdesk/leadgate/internal/infrastructure/config"
	redisstore "github.com/contactdesk/leadgate/internal/infrastructure/db/redis"
	"github.com/contactdesk/leadgate/internal/infrastructure/notify"
	"github.com/contactdesk/leadgate/internal/infrastructure/queue"
	"github.com/contactdesk/leadgate/pkg/logger"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "leadgate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "leadgate",
		Env:     cfg.Env,
	})

	initCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	st, err := openStore(initCtx, cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("store close")
		}
	}()

	checks := map[string]handler.DependencyCheck{"store": st.ping}

	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redisstore.Connect(initCtx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// --- Notifications ---
	dispatcher, closeSenders, err := newDispatcher(cfg, rdb, logger.Component("notify"))
	if err != nil {
		return err
	}
	defer closeSenders()

	// --- Core services ---
	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, service.WithIssuer(cfg.Auth.Issuer))
	auth := service.NewAuthService(st.users, tokens, cfg.Auth.BcryptCost, logger.Component("auth"))
	leads := service.NewLeadService(st.leads, dispatcher, logger.Component("leads"))

	if cfg.Seed.Enabled {
		seeder := service.NewSeeder(auth, !cfg.IsDevelopment(), logger.Component("seed"))
		if err := seeder.Seed(initCtx, seedAccounts(cfg)); err != nil {
			return fmt.Errorf("seed accounts: %w", err)
		}
	}

	deps := api.Deps{
		Log:              log,
		Auth:             auth,
		Leads:            leads,
		Tokens:           tokens,
		Identities:       auth,
		HealthChecks:     checks,
		ContactRateLimit: cfg.Contact.RateLimit,
	}
	if rdb != nil && cfg.Contact.RateLimit > 0 {
		deps.ContactLimiterStore = redisstore.NewRateLimitStore(rdb, "contact", cfg.Contact.RateLimit, time.Minute)
	}

	e, err := api.NewRouter(deps)
	if err != nil {
		return err
	}
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workerCtx)

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			stopWorkers()
			dispatcher.Wait()
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}

	stopWorkers()
	dispatcher.Wait()
	log.Info().Msg("stopped")
	return nil
}

// newDispatcher wires the senders that are configured. The returned func
// closes them once the workers are done.
func newDispatcher(cfg *config.Config, rdb *goredis.Client, log zerolog.Logger) (*queue.Dispatcher, func(), error) {
	opts := []queue.Option{queue.WithSendTimeout(cfg.Notify.SendTimeout)}
	closers := []func() error{}

	if cfg.SMTP.Host != "" {
		mailer, err := notify.NewMailer(notify.SMTPConfig{
			Host:       cfg.SMTP.Host,
			Port:       cfg.SMTP.Port,
			Username:   cfg.SMTP.Username,
			Password:   cfg.SMTP.Password,
			From:       cfg.SMTP.From,
			AdminEmail: cfg.SMTP.AdminEmail,
			TLS:        cfg.SMTP.TLS,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("mailer: %w", err)
		}
		opts = append(opts,
			queue.WithSender(ports.NotifyAdmin, mailer),
			queue.WithSender(ports.NotifyVisitor, mailer),
		)
	} else {
		log.Info().Msg("SMTP_HOST not set, mail notifications disabled")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publisher := notify.NewEventPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		opts = append(opts, queue.WithSender(ports.NotifyEvent, publisher))
		closers = append(closers, publisher.Close)
	} else {
		log.Info().Msg("KAFKA_BROKERS not set, lead events disabled")
	}

	if rdb != nil {
		opts = append(opts, queue.WithGuard(redisstore.NewNotificationGuard(rdb)))
	}

	d := queue.NewDispatcher(cfg.Notify.Workers, log, opts...)
	return d, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn().Err(err).Msg("close sender")
			}
		}
	}, nil
}

func seedAccounts(cfg *config.Config) []service.SeedAccount {
	return []service.SeedAccount{
		{
			Username:        cfg.Seed.AdminUsername,
			Password:        cfg.Seed.AdminPassword,
			Role:            domain.RoleAdmin,
			DefaultPassword: cfg.Seed.AdminPassword == "admin123",
		},
		{
			Username:        cfg.Seed.UserUsername,
			Password:        cfg.Seed.UserPassword,
			Role:            domain.RoleUser,
			DefaultPassword: cfg.Seed.UserPassword == "user123",
		},
	}
}
