// Package daylog persists day logs and the shared project list on top of a
// storage.Store, enforcing the rule that an empty day is no entry at all.
package daylog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Tiliavir/daylog/internal/logging"
	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/reconcile"
	"github.com/Tiliavir/daylog/internal/storage"
	"github.com/Tiliavir/daylog/internal/timecalc"
)

// Validation errors for the duplicate action.
var (
	ErrEmptyTarget = errors.New("target date is required")
	ErrSameDate    = errors.New("target date is the source date")
)

// Service is the persistence contract for day logs.
type Service struct {
	store  storage.Store
	logger *zap.Logger
}

// NewService returns a Service writing through store.
func NewService(store storage.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger.Named("daylog")}
}

// Get returns the log for date. A missing log is returned as an empty record
// for that date with found=false.
func (s *Service) Get(ctx context.Context, uid, date string) (log model.DayLog, found bool, err error) {
	l, err := s.store.GetLog(ctx, uid, date)
	if errors.Is(err, storage.ErrNotFound) {
		return model.DayLog{Date: date, UserID: uid}, false, nil
	}
	if err != nil {
		s.logger.Error("loading log", logging.UserID(uid), logging.Date(date), zap.Error(err))
		return model.DayLog{}, false, err
	}
	return l, true, nil
}

// Edit opens a detached edit draft for date.
func (s *Service) Edit(ctx context.Context, uid, date string) (*reconcile.Editor, error) {
	l, _, err := s.Get(ctx, uid, date)
	if err != nil {
		return nil, err
	}
	return reconcile.Open(date, l), nil
}

// Save fully overwrites the log for log.Date, or deletes it when the log is
// empty. It reports whether a record remains stored.
func (s *Service) Save(ctx context.Context, uid string, log model.DayLog) (bool, error) {
	l := normalize(uid, log)
	if l.IsEmpty() {
		return false, s.Delete(ctx, uid, l.Date)
	}
	if err := s.store.PutLog(ctx, uid, l); err != nil {
		s.logger.Error("saving log", logging.UserID(uid), logging.Date(l.Date), zap.Error(err))
		return false, fmt.Errorf("saving %s: %w", l.Date, err)
	}
	return true, nil
}

// normalize returns a detached copy of log owned by uid, with a trimmed
// description and each project listed once.
func normalize(uid string, log model.DayLog) model.DayLog {
	l := log.Clone()
	l.Description = strings.TrimSpace(l.Description)
	l.UserID = uid
	if len(l.Projects) > 0 {
		l.Projects = model.UniqueProjects(l.Projects)
	}
	return l
}

// Commit saves an edit draft.
func (s *Service) Commit(ctx context.Context, uid string, e *reconcile.Editor) (bool, error) {
	return s.Save(ctx, uid, e.DayLog())
}

// Delete removes the log for date. Deleting a missing log succeeds.
func (s *Service) Delete(ctx context.Context, uid, date string) error {
	if err := s.store.DeleteLog(ctx, uid, date); err != nil {
		s.logger.Error("deleting log", logging.UserID(uid), logging.Date(date), zap.Error(err))
		return fmt.Errorf("deleting %s: %w", date, err)
	}
	return nil
}

// Month returns the logs of m in date order.
func (s *Service) Month(ctx context.Context, uid string, m timecalc.Month) ([]model.DayLog, error) {
	from, to := m.Range()
	logs, err := s.store.QueryLogs(ctx, uid, from, to)
	if err != nil {
		s.logger.Error("querying month", logging.UserID(uid), logging.Month(m.String()), zap.Error(err))
		return nil, fmt.Errorf("loading %s: %w", m, err)
	}
	return logs, nil
}

// Duplicate copies the full record of from (maps included) onto to,
// replacing whatever to held.
func (s *Service) Duplicate(ctx context.Context, uid, from, to string) (model.DayLog, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return model.DayLog{}, ErrEmptyTarget
	}
	if _, err := timecalc.ParseDate(to); err != nil {
		return model.DayLog{}, err
	}
	if to == from {
		return model.DayLog{}, ErrSameDate
	}
	src, err := s.store.GetLog(ctx, uid, from)
	if err != nil {
		return model.DayLog{}, fmt.Errorf("loading %s: %w", from, err)
	}
	dup := src.Clone()
	dup.Date = to
	if _, err := s.Save(ctx, uid, dup); err != nil {
		return model.DayLog{}, err
	}
	return dup, nil
}

// Import commits logs in one batch. Empty logs are dropped and a date
// repeated in logs keeps its last record; the number of records written is
// returned.
func (s *Service) Import(ctx context.Context, uid string, logs []model.DayLog) (int, error) {
	batch := make([]model.DayLog, 0, len(logs))
	pos := map[string]int{}
	for _, l := range logs {
		l = normalize(uid, l)
		if l.IsEmpty() {
			continue
		}
		if i, ok := pos[l.Date]; ok {
			batch[i] = l
			continue
		}
		pos[l.Date] = len(batch)
		batch = append(batch, l)
	}
	if len(batch) == 0 {
		return 0, nil
	}
	if err := s.store.BatchPutLogs(ctx, uid, batch); err != nil {
		s.logger.Error("importing logs", logging.UserID(uid), zap.Int("count", len(batch)), zap.Error(err))
		return 0, fmt.Errorf("importing %d logs: %w", len(batch), err)
	}
	return len(batch), nil
}
