package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"ecomdemo/datagen/models"
)

var (
	ErrAnalystNotFound = errors.New("analyst not found")
	ErrAnalystExists   = errors.New("analyst already exists")
)

const uniqueViolation = "23505"

type AnalystStore struct {
	db *sql.DB
}

func NewAnalystStore(db *sql.DB) *AnalystStore {
	return &AnalystStore{db: db}
}

func (s *AnalystStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analysts (
			id              SERIAL PRIMARY KEY,
			email           TEXT NOT NULL UNIQUE,
			hashed_password BYTEA NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure analysts table: %w", err)
	}
	return nil
}

func (s *AnalystStore) CreateAnalyst(ctx context.Context, email string, hashedPassword []byte) (*models.Analyst, error) {
	analyst := &models.Analyst{}
	query := `
		INSERT INTO analysts (email, hashed_password)
		VALUES ($1, $2)
		RETURNING id, email, created_at, updated_at;
	`
	err := s.db.QueryRowContext(ctx, query, email, hashedPassword).Scan(
		&analyst.ID,
		&analyst.Email,
		&analyst.CreatedAt,
		&analyst.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", ErrAnalystExists, email)
		}
		return nil, fmt.Errorf("failed to create analyst: %w", err)
	}

	log.Info().Int("id", analyst.ID).Str("email", analyst.Email).Msg("analyst created")
	return analyst, nil
}

func (s *AnalystStore) GetAnalystByEmail(ctx context.Context, email string) (*models.Analyst, error) {
	analyst := &models.Analyst{}
	query := `
		SELECT id, email, hashed_password, created_at, updated_at
		FROM analysts
		WHERE email = $1;
	`
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&analyst.ID,
		&analyst.Email,
		&analyst.HashedPassword,
		&analyst.CreatedAt,
		&analyst.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrAnalystNotFound, email)
		}
		return nil, fmt.Errorf("failed to get analyst by email: %w", err)
	}
	return analyst, nil
}
