package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the reservation record in a local database. A row
// version column is the conflict token; Save bumps it only when the caller's
// version still matches.
type SQLiteStore struct {
	db               *sql.DB
	mu               sync.Mutex
	defaultRecipient string
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath, defaultRecipient string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, defaultRecipient: defaultRecipient}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS reservation_settings (
			id            INTEGER PRIMARY KEY CHECK (id = 1),
			reserved_date TEXT NOT NULL DEFAULT '',
			emails        TEXT NOT NULL DEFAULT '[]',
			version       INTEGER NOT NULL DEFAULT 1
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Load returns the persisted record and its version token. Before the first
// save the default record is returned with an empty token.
func (s *SQLiteStore) Load(ctx context.Context) (Settings, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		reservedDate string
		emailsJSON   string
		version      int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT reserved_date, emails, version FROM reservation_settings WHERE id = 1`,
	).Scan(&reservedDate, &emailsJSON, &version)
	if err == sql.ErrNoRows {
		return Default(s.defaultRecipient).Normalize(), "", nil
	}
	if err != nil {
		return Settings{}, "", fmt.Errorf("load settings: %w", err)
	}

	var emails []string
	if err := json.Unmarshal([]byte(emailsJSON), &emails); err != nil {
		return Settings{}, "", fmt.Errorf("load settings: parse emails: %w", err)
	}

	rec := Settings{ReservedDate: reservedDate, Emails: emails}
	return rec.Normalize(), strconv.FormatInt(version, 10), nil
}

// Save writes the record. An empty token inserts the initial row; a non-empty
// token must match the current version or the write fails with ErrConflict.
// The successor token is returned on success.
func (s *SQLiteStore) Save(ctx context.Context, rec Settings, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec = rec.Normalize()
	emailsJSON, err := json.Marshal(rec.Emails)
	if err != nil {
		return "", fmt.Errorf("save settings: encode emails: %w", err)
	}

	if token == "" {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO reservation_settings (id, reserved_date, emails, version)
			 VALUES (1, ?, ?, 1)
			 ON CONFLICT (id) DO NOTHING`,
			rec.ReservedDate, string(emailsJSON),
		)
		if err != nil {
			return "", fmt.Errorf("save settings: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return "", fmt.Errorf("save settings: %w", err)
		}
		if n == 0 {
			// A row already exists, so the empty token is stale.
			return "", ErrConflict
		}
		return "1", nil
	}

	version, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return "", fmt.Errorf("save settings: invalid token %q: %w", token, err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE reservation_settings
		 SET reserved_date = ?, emails = ?, version = version + 1
		 WHERE id = 1 AND version = ?`,
		rec.ReservedDate, string(emailsJSON), version,
	)
	if err != nil {
		return "", fmt.Errorf("save settings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("save settings: %w", err)
	}
	if n == 0 {
		return "", ErrConflict
	}

	return strconv.FormatInt(version+1, 10), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
