package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cbodonnell/yahtzee/pkg/log"
	"github.com/cbodonnell/yahtzee/pkg/repositories/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgUniqueViolation is the SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects to the database and applies the migrations.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (Repository, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	var username string
	var database string
	err = pool.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to query database: %v", err)
	}
	log.Info("Connected to %s as %s", database, username)

	scripts, err := readMigrations("postgres")
	if err != nil {
		pool.Close()
		return nil, err
	}
	for i, script := range scripts {
		if _, err := pool.Exec(ctx, script); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to execute migration %d: %v", i+1, err)
		}
	}

	return &PostgresRepository{
		pool: pool,
	}, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) FindUser(ctx context.Context, username string) (*models.User, error) {
	q := `
	SELECT username, high_score FROM users WHERE username = $1;
	`
	user := &models.User{}
	if err := r.pool.QueryRow(ctx, q, username).Scan(&user.Username, &user.HighScore); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan user: %v", err)
	}

	return user, nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, username string) (*models.User, error) {
	q := `
	INSERT INTO users (username, high_score, created_at) VALUES ($1, 0, $2);
	`
	if _, err := r.pool.Exec(ctx, q, username, time.Now().UnixMilli()); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, &ErrUserExists{Username: username}
		}
		return nil, fmt.Errorf("failed to insert user: %v", err)
	}

	return &models.User{Username: username}, nil
}

func (r *PostgresRepository) UpdateHighScore(ctx context.Context, username string, score int) error {
	q := `
	UPDATE users SET high_score = $1 WHERE username = $2;
	`
	tag, err := r.pool.Exec(ctx, q, score, username)
	if err != nil {
		return fmt.Errorf("failed to update high score: %v", err)
	}
	if tag.RowsAffected() == 0 {
		return &ErrNotFound{}
	}

	return nil
}

func (r *PostgresRepository) GetRecords(ctx context.Context, key string) ([]models.Record, error) {
	q := `
	SELECT player, score FROM records WHERE record_key = $1 ORDER BY rank ASC;
	`
	rows, err := r.pool.Query(ctx, q, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %v", err)
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		var record models.Record
		if err := rows.Scan(&record.Player, &record.Score); err != nil {
			return nil, fmt.Errorf("failed to scan record: %v", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %v", err)
	}

	return records, nil
}

func (r *PostgresRepository) SetRecords(ctx context.Context, key string, records []models.Record) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM records WHERE record_key = $1;`, key); err != nil {
		return fmt.Errorf("failed to clear records: %v", err)
	}

	batch := &pgx.Batch{}
	for rank, record := range records {
		batch.Queue(`INSERT INTO records (record_key, rank, player, score) VALUES ($1, $2, $3, $4);`,
			key, rank, record.Player, record.Score)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert records: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (r *PostgresRepository) AppendLog(ctx context.Context, entries []string) error {
	batchID := uuid.New()
	now := time.Now().UnixMilli()

	rows := make([][]any, 0, len(entries))
	for i, entry := range entries {
		rows = append(rows, []any{batchID, i, entry, now})
	}

	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"transcript_logs"},
		[]string{"batch_id", "position", "entry", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy log entries: %v", err)
	}

	return nil
}

func (r *PostgresRepository) SaveSnapshot(ctx context.Context, data []byte) error {
	q := `
	INSERT INTO session_snapshots (id, data, updated_at) VALUES (1, $1, $2)
	ON CONFLICT (id) DO UPDATE SET data = $1, updated_at = $2;
	`
	if _, err := r.pool.Exec(ctx, q, data, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to save snapshot: %v", err)
	}

	return nil
}

func (r *PostgresRepository) LoadSnapshot(ctx context.Context) ([]byte, error) {
	q := `
	SELECT data FROM session_snapshots WHERE id = 1;
	`
	var data []byte
	if err := r.pool.QueryRow(ctx, q).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan snapshot: %v", err)
	}

	return data, nil
}
