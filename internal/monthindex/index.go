// Package monthindex keeps an in-memory copy of one month of day logs,
// refreshed from a live store subscription.
package monthindex

import (
	"context"
	"sort"
	"sync"

	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/storage"
	"github.com/Tiliavir/daylog/internal/timecalc"
)

// Index maps date -> DayLog for one month. It is safe for concurrent use.
type Index struct {
	month timecalc.Month

	mu      sync.RWMutex
	logs    map[string]model.DayLog
	version int
	updates chan struct{}
}

// New returns an empty index for m.
func New(m timecalc.Month) *Index {
	return &Index{
		month:   m,
		logs:    map[string]model.DayLog{},
		updates: make(chan struct{}, 1),
	}
}

// Month returns the indexed month.
func (x *Index) Month() timecalc.Month { return x.month }

// Replace swaps in a full snapshot. Logs outside the month are ignored.
func (x *Index) Replace(logs []model.DayLog) {
	next := make(map[string]model.DayLog, len(logs))
	for _, l := range logs {
		if x.month.Contains(l.Date) {
			next[l.Date] = l.Clone()
		}
	}
	x.mu.Lock()
	x.logs = next
	x.version++
	x.mu.Unlock()

	select {
	case x.updates <- struct{}{}:
	default:
	}
}

// Updates signals (coalesced) after every Replace.
func (x *Index) Updates() <-chan struct{} { return x.updates }

// Version counts the snapshots applied so far.
func (x *Index) Version() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.version
}

// Get returns a detached copy of the log for date.
func (x *Index) Get(date string) (model.DayLog, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	l, ok := x.logs[date]
	if !ok {
		return model.DayLog{}, false
	}
	return l.Clone(), true
}

// Logs returns detached copies of every indexed log in date order.
func (x *Index) Logs() []model.DayLog {
	x.mu.RLock()
	out := make([]model.DayLog, 0, len(x.logs))
	for _, l := range x.logs {
		out = append(out, l.Clone())
	}
	x.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Len is the number of days with an entry.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.logs)
}

// Subscribe feeds the index from store until ctx is done.
func (x *Index) Subscribe(ctx context.Context, store storage.Store, uid string) error {
	from, to := x.month.Range()
	return store.WatchLogs(ctx, uid, from, to, x.Replace)
}
