package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openspace/seating-engine/pkg/models"
)

// schemaSQL is compiled into the binary at build time so schema init works
// inside the runtime image, which does not ship .sql files.
//
//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when a session id has no stored record.
var ErrNotFound = errors.New("seating session not found")

type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect initializes the connection pool to PostgreSQL using pgx.
func Connect(connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping failed: %v", err)
	}

	log.Println("Successfully connected to PostgreSQL for session storage")
	return &PostgresStore{pool: pool}, nil
}

// Close gracefully closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping verifies the store is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// InitSchema executes the embedded schema.sql DDL statements.
func (s *PostgresStore) InitSchema() error {
	_, err := s.pool.Exec(context.Background(), schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema migrations: %v", err)
	}

	log.Println("Seating session schema initialized")
	return nil
}

// SaveSession persists one finished arrangement: the uploaded workbook
// bytes plus the seating plan as JSON. Saving the same id again upserts.
func (s *PostgresStore) SaveSession(ctx context.Context, sessionID string, workbook []byte, plan models.SeatingPlan, status string) error {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to encode seating plan: %v", err)
	}

	sql := `
		INSERT INTO seating_sessions (session_id, uploaded_file, seating_plan, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id) DO UPDATE SET
			uploaded_file = EXCLUDED.uploaded_file,
			seating_plan = EXCLUDED.seating_plan,
			status = EXCLUDED.status;
	`
	_, err = s.pool.Exec(ctx, sql, sessionID, workbook, planJSON, status)
	if err != nil {
		return fmt.Errorf("failed to insert seating session: %v", err)
	}
	return nil
}

// GetSession loads a stored arrangement by id.
func (s *PostgresStore) GetSession(ctx context.Context, sessionID string) (*models.SessionRecord, error) {
	sql := `
		SELECT session_id, uploaded_file, seating_plan, status, created_at
		FROM seating_sessions
		WHERE session_id = $1;
	`
	var rec models.SessionRecord
	var planJSON []byte
	err := s.pool.QueryRow(ctx, sql, sessionID).Scan(
		&rec.SessionID, &rec.UploadedFile, &planJSON, &rec.Status, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(planJSON, &rec.Plan); err != nil {
		return nil, fmt.Errorf("stored seating plan is corrupt: %v", err)
	}
	return &rec, nil
}

// DeleteSession removes a stored arrangement. ErrNotFound when nothing
// matched.
func (s *PostgresStore) DeleteSession(ctx context.Context, sessionID string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM seating_sessions WHERE session_id = $1`, sessionID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSessions returns recent sessions, newest first, with the total count
// for pagination.
func (s *PostgresStore) ListSessions(ctx context.Context, page, limit int) ([]models.SessionInfo, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	var totalCount int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM seating_sessions`).Scan(&totalCount); err != nil {
		return nil, 0, err
	}

	sql := `
		SELECT session_id, status,
			(SELECT COUNT(*) FROM jsonb_object_keys(seating_plan)) AS tables,
			created_at
		FROM seating_sessions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2;
	`
	rows, err := s.pool.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sessions := make([]models.SessionInfo, 0)
	for rows.Next() {
		var info models.SessionInfo
		if err := rows.Scan(&info.SessionID, &info.Status, &info.Tables, &info.CreatedAt); err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, info)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return sessions, totalCount, nil
}
