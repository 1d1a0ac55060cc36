package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"ecomdemo/datagen/config"
)

type DBClient struct {
	DB *sql.DB
}

func NewPostgresDB(ctx context.Context, cfg config.PostgresConfig) (*DBClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("error opening database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database (ping failed): %w", err)
	}

	log.Info().Msg("connected to PostgreSQL")
	return &DBClient{DB: db}, nil
}

func (c *DBClient) Close() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing PostgreSQL connection")
			return
		}
		log.Debug().Msg("PostgreSQL connection closed")
	}
}
