// Package sqlite is the single-file database backend of storage.Store.
// Documents are kept as JSON blobs keyed the same way the file store keys
// its files.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/storage"
	"github.com/Tiliavir/daylog/internal/timecalc"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements storage.Store on SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

var _ storage.Store = (*Store)(nil)

// Open opens the database at path and runs migrations.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Store{db: db, path: path, logger: logger.Named("sqlite")}, nil
}

func migrate(db *sql.DB) error {
	goose.SetLogger(log.New(io.Discard, "", 0))
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return goose.Up(db, "migrations")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// transaction executes fn within a transaction.
func (s *Store) transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func checkLogKey(uid, date string) error {
	if err := storage.ValidateKey(uid); err != nil {
		return err
	}
	if _, err := timecalc.ParseDate(date); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidKey, err)
	}
	return nil
}

func (s *Store) GetLog(ctx context.Context, uid, date string) (model.DayLog, error) {
	if err := checkLogKey(uid, date); err != nil {
		return model.DayLog{}, err
	}
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM day_logs WHERE user_id = ? AND date = ?`, uid, date).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DayLog{}, storage.ErrNotFound
	}
	if err != nil {
		return model.DayLog{}, fmt.Errorf("failed to get log: %w", err)
	}
	var l model.DayLog
	if err := json.Unmarshal([]byte(doc), &l); err != nil {
		return model.DayLog{}, fmt.Errorf("corrupt log %s: %w", date, err)
	}
	l.Date = date
	return l, nil
}

func putLog(ctx context.Context, tx *sql.Tx, uid string, l model.DayLog) error {
	doc, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to encode log: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO day_logs (user_id, date, doc) VALUES (?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET doc = excluded.doc`,
		uid, l.Date, string(doc))
	if err != nil {
		return fmt.Errorf("failed to save log %s: %w", l.Date, err)
	}
	return nil
}

func (s *Store) PutLog(ctx context.Context, uid string, l model.DayLog) error {
	return s.BatchPutLogs(ctx, uid, []model.DayLog{l})
}

func (s *Store) DeleteLog(ctx context.Context, uid, date string) error {
	if err := checkLogKey(uid, date); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM day_logs WHERE user_id = ? AND date = ?`, uid, date); err != nil {
		return fmt.Errorf("failed to delete log: %w", err)
	}
	return nil
}

func (s *Store) QueryLogs(ctx context.Context, uid, from, to string) ([]model.DayLog, error) {
	if err := checkLogKey(uid, from); err != nil {
		return nil, err
	}
	if err := checkLogKey(uid, to); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, doc FROM day_logs
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date`, uid, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	logs := []model.DayLog{}
	for rows.Next() {
		var date, doc string
		if err := rows.Scan(&date, &doc); err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		var l model.DayLog
		if err := json.Unmarshal([]byte(doc), &l); err != nil {
			return nil, fmt.Errorf("corrupt log %s: %w", date, err)
		}
		l.Date = date
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// BatchPutLogs writes all records in one transaction.
func (s *Store) BatchPutLogs(ctx context.Context, uid string, logs []model.DayLog) error {
	for _, l := range logs {
		if err := checkLogKey(uid, l.Date); err != nil {
			return err
		}
	}
	return s.transaction(ctx, func(tx *sql.Tx) error {
		for _, l := range logs {
			if err := putLog(ctx, tx, uid, l); err != nil {
				return err
			}
		}
		return nil
	})
}

// WatchLogs watches the database directory; every commit touches the
// database file or its WAL.
func (s *Store) WatchLogs(ctx context.Context, uid, from, to string, fn func([]model.DayLog)) error {
	if err := checkLogKey(uid, from); err != nil {
		return err
	}
	base := filepath.Base(s.path)
	isDB := func(name string) bool { return strings.HasPrefix(filepath.Base(name), base) }
	load := func(ctx context.Context) ([]model.DayLog, error) { return s.QueryLogs(ctx, uid, from, to) }
	return storage.Watch(ctx, s.logger, []string{filepath.Dir(s.path)}, isDB, load, fn)
}

func (s *Store) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Store) AddProjects(ctx context.Context, names []string) ([]model.Project, error) {
	names, err := storage.NormalizeProjectNames(names)
	if err != nil {
		return nil, err
	}
	var created []model.Project
	err = s.transaction(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		for _, n := range names {
			var exists int
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM projects WHERE name = ?`, n).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check project: %w", err)
			}
			if exists > 0 {
				return fmt.Errorf("%w: %q", storage.ErrDuplicateProject, n)
			}
			p := model.Project{ID: uuid.New().String(), Name: n, CreatedAt: now}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO projects (id, name, created_at) VALUES (?, ?, ?)`,
				p.ID, p.Name, p.CreatedAt); err != nil {
				return fmt.Errorf("failed to create project: %w", err)
			}
			created = append(created, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) GetShare(ctx context.Context, id string) (model.ShareSnapshot, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM shares WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ShareSnapshot{}, storage.ErrNotFound
	}
	if err != nil {
		return model.ShareSnapshot{}, fmt.Errorf("failed to get share: %w", err)
	}
	var sh model.ShareSnapshot
	if err := json.Unmarshal([]byte(doc), &sh); err != nil {
		return model.ShareSnapshot{}, fmt.Errorf("corrupt share %s: %w", id, err)
	}
	return sh, nil
}

func (s *Store) PutShare(ctx context.Context, sh model.ShareSnapshot) error {
	if err := storage.ValidateKey(sh.ID); err != nil {
		return err
	}
	doc, err := json.Marshal(sh)
	if err != nil {
		return fmt.Errorf("failed to encode share: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO shares (id, owner_id, doc) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET owner_id = excluded.owner_id, doc = excluded.doc`,
		sh.ID, sh.OwnerID, string(doc))
	if err != nil {
		return fmt.Errorf("failed to save share: %w", err)
	}
	return nil
}
