package main

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/contactdesk/leadgate/internal/core/ports"
	"github.com/contactdesk/leadgate/internal/infrastructure/config"
	mongostore "github.com/contactdesk/leadgate/internal/infrastructure/db/mongo"
	"github.com/contactdesk/leadgate/internal/infrastructure/db/sqlstore"
)

// store is the selected persistence backend.
type store struct {
	users ports.UserRepository
	leads ports.LeadRepository
	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	switch cfg.Store.Driver {
	case sqlstore.DriverSQLite, sqlstore.DriverPostgres:
		db, err := sqlstore.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", cfg.Store.Driver).Msg("sql store ready")
		return &store{
			users: sqlstore.NewUserRepository(db),
			leads: sqlstore.NewLeadRepository(db),
			ping:  func(ctx context.Context) error { return sqlstore.Ping(ctx, db) },
			close: func(context.Context) error { return sqlstore.Close(db) },
		}, nil

	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		users := mongostore.NewUserRepository(db)
		leads := mongostore.NewLeadRepository(db)
		if err := mongostore.EnsureIndexes(ctx, users, leads); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo store ready")
		return &store{
			users: users,
			leads: leads,
			ping:  func(ctx context.Context) error { return mongostore.Ping(ctx, db) },
			close: client.Disconnect,
		}, nil
	}
}
