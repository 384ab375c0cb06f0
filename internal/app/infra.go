package app

import (
	"context"
	"database/sql"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/Aryan3212/yelpcamp/internal/config"
	"github.com/Aryan3212/yelpcamp/internal/db"
	"github.com/Aryan3212/yelpcamp/internal/redis"
)

type Infra struct {
	DB    *db.DB
	Redis *redis.Client
}

// setupInfra connects the durable stores. Any failure here is fatal:
// the process never reaches the listener with an unreachable store.
func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := db.RunMigration(ctx, sqlDB); err != nil {
		return nil, err
	}

	slog.Info("database ready")

	redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}

	slog.Info("redis ready")

	return &Infra{
		DB:    &db.DB{DB: sqlDB},
		Redis: redisClient,
	}, nil
}

// Close releases the store connections in reverse dependency order.
func (i *Infra) Close() error {
	err := i.Redis.Close()
	if derr := i.DB.Close(); derr != nil {
		err = derr
	}
	return err
}
