package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/timecalc"
)

const lockRetryDelay = 50 * time.Millisecond

// FileStore keeps every document as a human-readable JSON file under base:
//
//	users/<uid>/logs/YYYY/MM/DD.json
//	projects/<id>.json
//	shares/<id>.json
//
// Writes from separate processes are serialized with a lock file.
type FileStore struct {
	base   string
	mu     sync.Mutex
	lock   *flock.Flock
	logger *zap.Logger
}

// NewFileStore opens (creating if needed) a file store rooted at base.
func NewFileStore(base string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(base, 0o700); err != nil {
		return nil, fmt.Errorf("storage error creating %s: %w", base, err)
	}
	return &FileStore{
		base:   base,
		lock:   flock.New(filepath.Join(base, ".daylog.lock")),
		logger: logger.Named("filestore"),
	}, nil
}

// Close releases the lock file if still held.
func (s *FileStore) Close() error {
	return s.lock.Close()
}

// withLock runs fn holding both the in-process mutex and the lock file.
func (s *FileStore) withLock(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("storage error acquiring lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("storage error: lock %s not acquired", s.lock.Path())
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("releasing lock", zap.Error(err))
		}
	}()
	return fn()
}

func (s *FileStore) logsDir(uid string) string {
	return filepath.Join(s.base, "users", uid, "logs")
}

// logPath returns the path for the given date's JSON file.
func (s *FileStore) logPath(uid string, t time.Time) string {
	return filepath.Join(s.logsDir(uid), t.Format("2006"), t.Format("01"), t.Format("02")+".json")
}

func (s *FileStore) projectPath(id string) string {
	return filepath.Join(s.base, "projects", id+".json")
}

func (s *FileStore) sharePath(id string) string {
	return filepath.Join(s.base, "shares", id+".json")
}

// readJSON decodes path into v. Missing files yield ErrNotFound; corrupt
// files are backed up and reported.
func readJSON(path string, v any) error {
	err := decodeJSON(path, v)
	if !errors.Is(err, errCorrupt) {
		return err
	}
	backupPath := path + ".corrupt"
	_ = os.Rename(path, backupPath)
	return fmt.Errorf("%w (backed up to %s)", err, backupPath)
}

var errCorrupt = errors.New("corrupt JSON")

// decodeJSON is readJSON without the backup: a corrupt file stays in place
// and keeps failing.
func decodeJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("storage error reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w in %s: %v", errCorrupt, path, err)
	}
	return nil
}

// stageJSON writes v to a temp file next to path and returns the temp path.
func stageJSON(path string, v any) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("storage error creating directories: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("storage error creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("storage error writing temp file: %w", err)
	}
	return tmp.Name(), nil
}

// writeJSON atomically writes v to path: write to temp file then rename.
func writeJSON(path string, v any) error {
	tmpPath, err := stageJSON(path, v)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

func (s *FileStore) resolveLog(uid, date string) (string, error) {
	if err := ValidateKey(uid); err != nil {
		return "", err
	}
	t, err := timecalc.ParseDate(date)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return s.logPath(uid, t), nil
}

func (s *FileStore) GetLog(_ context.Context, uid, date string) (model.DayLog, error) {
	path, err := s.resolveLog(uid, date)
	if err != nil {
		return model.DayLog{}, err
	}
	var l model.DayLog
	if err := readJSON(path, &l); err != nil {
		return model.DayLog{}, err
	}
	l.Date = date
	return l, nil
}

func (s *FileStore) PutLog(ctx context.Context, uid string, log model.DayLog) error {
	path, err := s.resolveLog(uid, log.Date)
	if err != nil {
		return err
	}
	return s.withLock(ctx, func() error {
		return writeJSON(path, log)
	})
}

func (s *FileStore) DeleteLog(ctx context.Context, uid, date string) error {
	path, err := s.resolveLog(uid, date)
	if err != nil {
		return err
	}
	return s.withLock(ctx, func() error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("storage error deleting %s: %w", path, err)
		}
		return nil
	})
}

// QueryLogs loads every record in [from, to] inclusive.
func (s *FileStore) QueryLogs(ctx context.Context, uid, from, to string) ([]model.DayLog, error) {
	if err := ValidateKey(uid); err != nil {
		return nil, err
	}
	dates, err := timecalc.DateRange(from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	logs := []model.DayLog{}
	for _, d := range dates {
		l, err := s.GetLog(ctx, uid, d)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, nil
}

// BatchPutLogs stages every record before renaming any of them into place,
// so encoding or disk-full failures leave the store untouched.
func (s *FileStore) BatchPutLogs(ctx context.Context, uid string, logs []model.DayLog) error {
	paths := make([]string, len(logs))
	for i, l := range logs {
		p, err := s.resolveLog(uid, l.Date)
		if err != nil {
			return err
		}
		paths[i] = p
	}
	return s.withLock(ctx, func() error {
		staged := make([]string, 0, len(logs))
		cleanup := func() {
			for _, tmp := range staged {
				_ = os.Remove(tmp)
			}
		}
		for i, l := range logs {
			tmp, err := stageJSON(paths[i], l)
			if err != nil {
				cleanup()
				return err
			}
			staged = append(staged, tmp)
		}
		for i, tmp := range staged {
			if err := os.Rename(tmp, paths[i]); err != nil {
				cleanup()
				return fmt.Errorf("storage error committing batch: %w", err)
			}
		}
		return nil
	})
}

// WatchLogs watches the month directories covering [from, to].
func (s *FileStore) WatchLogs(ctx context.Context, uid, from, to string, fn func([]model.DayLog)) error {
	if err := ValidateKey(uid); err != nil {
		return err
	}
	dates, err := timecalc.DateRange(from, to)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	var dirs []string
	seen := map[string]bool{}
	for _, d := range dates {
		t, _ := timecalc.ParseDate(d)
		dir := filepath.Dir(s.logPath(uid, t))
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	isLog := func(name string) bool { return strings.HasSuffix(name, ".json") }
	load := func(ctx context.Context) ([]model.DayLog, error) { return s.QueryLogs(ctx, uid, from, to) }
	return Watch(ctx, s.logger, dirs, isLog, load, fn)
}

func (s *FileStore) ListProjects(_ context.Context) ([]model.Project, error) {
	dir := filepath.Join(s.base, "projects")
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []model.Project{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error listing projects: %w", err)
	}
	projects := []model.Project{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		var p model.Project
		if err := readJSON(filepath.Join(dir, e.Name()), &p); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

func (s *FileStore) AddProjects(ctx context.Context, names []string) ([]model.Project, error) {
	names, err := NormalizeProjectNames(names)
	if err != nil {
		return nil, err
	}
	var created []model.Project
	err = s.withLock(ctx, func() error {
		existing, err := s.ListProjects(ctx)
		if err != nil {
			return err
		}
		for _, p := range existing {
			for _, n := range names {
				if p.Name == n {
					return fmt.Errorf("%w: %q", ErrDuplicateProject, n)
				}
			}
		}
		now := time.Now().UTC()
		for _, n := range names {
			p := model.Project{ID: uuid.NewString(), Name: n, CreatedAt: now}
			if err := writeJSON(s.projectPath(p.ID), p); err != nil {
				return err
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

func (s *FileStore) DeleteProject(ctx context.Context, id string) error {
	if err := ValidateKey(id); err != nil {
		return err
	}
	return s.withLock(ctx, func() error {
		err := os.Remove(s.projectPath(id))
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("storage error deleting project %s: %w", id, err)
		}
		return nil
	})
}

func (s *FileStore) GetShare(_ context.Context, id string) (model.ShareSnapshot, error) {
	if err := ValidateKey(id); err != nil {
		return model.ShareSnapshot{}, err
	}
	// Anonymous readers never move a corrupt snapshot aside.
	var sh model.ShareSnapshot
	if err := decodeJSON(s.sharePath(id), &sh); err != nil {
		return model.ShareSnapshot{}, err
	}
	return sh, nil
}

func (s *FileStore) PutShare(ctx context.Context, share model.ShareSnapshot) error {
	if err := ValidateKey(share.ID); err != nil {
		return err
	}
	return s.withLock(ctx, func() error {
		return writeJSON(s.sharePath(share.ID), share)
	})
}
