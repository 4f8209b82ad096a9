package model

import "time"

// ShareSnapshot is a frozen, read-only copy of one month of logs.
type ShareSnapshot struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Logs      []DayLog  `json:"logs"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	MonthName string    `json:"monthName"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsActive  bool      `json:"isActive"`
}

// Expired reports whether the snapshot is past its expiry at now.
func (s ShareSnapshot) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && s.ExpiresAt.Before(now)
}
