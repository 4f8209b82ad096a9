// Package share publishes frozen, time-boxed, read-only snapshots of one
// month of day logs.
package share

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Tiliavir/daylog/internal/logging"
	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/storage"
	"github.com/Tiliavir/daylog/internal/timecalc"
)

// Invalid share states. Fetch never returns data alongside them.
var (
	ErrNotFound = errors.New("share not found")
	ErrExpired  = errors.New("share link has expired")
	ErrDisabled = errors.New("share link has been disabled")
)

// ErrNotOwner is returned when revoking someone else's share.
var ErrNotOwner = errors.New("share belongs to another user")

// namespace scopes share ids derived from user and month.
var namespace = uuid.MustParse("6f1c2a7e-1d64-4f0a-9b1e-5d3c8a2f4e10")

// ID returns the share id of uid's month. Regenerating a share for the same
// month overwrites the same snapshot.
func ID(uid string, m timecalc.Month) string {
	return uuid.NewSHA1(namespace, []byte(uid+"/"+m.String())).String()
}

// Service creates, revokes and fetches snapshots.
type Service struct {
	store  storage.Store
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewService returns a Service whose snapshots live for ttl.
func NewService(store storage.Store, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, ttl: ttl, now: time.Now, logger: logger.Named("share")}
}

// Create freezes uid's logs for m into an active snapshot.
func (s *Service) Create(ctx context.Context, uid, userName string, m timecalc.Month) (model.ShareSnapshot, error) {
	from, to := m.Range()
	logs, err := s.store.QueryLogs(ctx, uid, from, to)
	if err != nil {
		s.logger.Error("loading month for share", logging.UserID(uid), logging.Month(m.String()), zap.Error(err))
		return model.ShareSnapshot{}, fmt.Errorf("loading %s: %w", m, err)
	}
	now := s.now().UTC()
	snap := model.ShareSnapshot{
		ID:        ID(uid, m),
		OwnerID:   uid,
		Logs:      logs,
		Year:      m.Year,
		Month:     int(m.Month),
		MonthName: m.MonthName(),
		UserName:  userName,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		IsActive:  true,
	}
	if err := s.store.PutShare(ctx, snap); err != nil {
		s.logger.Error("saving share", logging.ShareID(snap.ID), zap.Error(err))
		return model.ShareSnapshot{}, fmt.Errorf("saving share: %w", err)
	}
	return snap, nil
}

// Revoke disables the snapshot id owned by uid.
func (s *Service) Revoke(ctx context.Context, uid, id string) error {
	snap, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if snap.OwnerID != uid {
		return ErrNotOwner
	}
	snap.IsActive = false
	if err := s.store.PutShare(ctx, snap); err != nil {
		s.logger.Error("revoking share", logging.ShareID(id), zap.Error(err))
		return fmt.Errorf("revoking share: %w", err)
	}
	return nil
}

// Fetch returns a valid snapshot. Expiry is checked before the active flag.
func (s *Service) Fetch(ctx context.Context, id string) (model.ShareSnapshot, error) {
	snap, err := s.load(ctx, id)
	if err != nil {
		return model.ShareSnapshot{}, err
	}
	if snap.Expired(s.now()) {
		return model.ShareSnapshot{}, ErrExpired
	}
	if !snap.IsActive {
		return model.ShareSnapshot{}, ErrDisabled
	}
	return snap, nil
}

func (s *Service) load(ctx context.Context, id string) (model.ShareSnapshot, error) {
	snap, err := s.store.GetShare(ctx, id)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
		return model.ShareSnapshot{}, ErrNotFound
	}
	if err != nil {
		s.logger.Error("loading share", logging.ShareID(id), zap.Error(err))
		return model.ShareSnapshot{}, fmt.Errorf("loading share: %w", err)
	}
	return snap, nil
}

// Month is the snapshot's month.
func Month(snap model.ShareSnapshot) timecalc.Month {
	return timecalc.Month{Year: snap.Year, Month: time.Month(snap.Month)}
}
