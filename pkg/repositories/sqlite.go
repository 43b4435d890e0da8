package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cbodonnell/yahtzee/pkg/repositories/models"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	// :memory: databases exist per connection
	db.SetMaxOpenConns(1)

	scripts, err := readMigrations("sqlite")
	if err != nil {
		db.Close()
		return nil, err
	}
	for i, script := range scripts {
		if _, err := db.ExecContext(ctx, script); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute migration %d: %v", i+1, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) FindUser(ctx context.Context, username string) (*models.User, error) {
	q := `
	SELECT username, high_score FROM users WHERE username = ?;
	`
	user := &models.User{}
	if err := r.db.QueryRowContext(ctx, q, username).Scan(&user.Username, &user.HighScore); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan user: %v", err)
	}

	return user, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, username string) (*models.User, error) {
	q := `
	INSERT INTO users (username, high_score, created_at) VALUES (?, 0, ?);
	`
	if _, err := r.db.ExecContext(ctx, q, username, time.Now().UnixMilli()); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return nil, &ErrUserExists{Username: username}
		}
		return nil, fmt.Errorf("failed to insert user: %v", err)
	}

	return &models.User{Username: username}, nil
}

func (r *SQLiteRepository) UpdateHighScore(ctx context.Context, username string, score int) error {
	q := `
	UPDATE users SET high_score = ? WHERE username = ?;
	`
	res, err := r.db.ExecContext(ctx, q, score, username)
	if err != nil {
		return fmt.Errorf("failed to update high score: %v", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %v", err)
	}
	if n == 0 {
		return &ErrNotFound{}
	}

	return nil
}

func (r *SQLiteRepository) GetRecords(ctx context.Context, key string) ([]models.Record, error) {
	q := `
	SELECT player, score FROM records WHERE record_key = ? ORDER BY rank ASC;
	`
	rows, err := r.db.QueryContext(ctx, q, key)
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

func (r *SQLiteRepository) SetRecords(ctx context.Context, key string, records []models.Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE record_key = ?;`, key); err != nil {
		return fmt.Errorf("failed to clear records: %v", err)
	}

	for rank, record := range records {
		q := `
		INSERT INTO records (record_key, rank, player, score) VALUES (?, ?, ?, ?);
		`
		if _, err := tx.ExecContext(ctx, q, key, rank, record.Player, record.Score); err != nil {
			return fmt.Errorf("failed to insert record: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) AppendLog(ctx context.Context, entries []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	batchID := uuid.NewString()
	now := time.Now().UnixMilli()
	for i, entry := range entries {
		q := `
		INSERT INTO transcript_logs (batch_id, position, entry, created_at) VALUES (?, ?, ?, ?);
		`
		if _, err := tx.ExecContext(ctx, q, batchID, i, entry, now); err != nil {
			return fmt.Errorf("failed to insert log entry: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, data []byte) error {
	q := `
	INSERT OR REPLACE INTO session_snapshots (id, data, updated_at) VALUES (1, ?, ?);
	`
	if _, err := r.db.ExecContext(ctx, q, data, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to save snapshot: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) LoadSnapshot(ctx context.Context) ([]byte, error) {
	q := `
	SELECT data FROM session_snapshots WHERE id = 1;
	`
	var data []byte
	if err := r.db.QueryRowContext(ctx, q).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan snapshot: %v", err)
	}

	return data, nil
}
