package models

import "time"

// Link represents one shortening of a URL together with its lifecycle flags
// and click counters.
type Link struct {
	// ID is the unique identifier for the link record.
	ID int64
	// ShortCode is the fixed-length alphanumeric code appended to the
	// service's base URL. It is unique across all links and never reused.
	ShortCode string
	// OriginalURL is the full-length URL the short code resolves to.
	OriginalURL string
	// Active reports whether the link still redirects. It is flipped off by
	// manual deactivation or by the expiration sweeper.
	Active bool
	// Stale is set only by the expiration sweeper, so an inactive link can
	// still be told apart from a manually deactivated one in storage.
	Stale bool
	// ClickStats holds the traffic counters owned by this link.
	ClickStats
	// ExpiresAt is the moment after which the sweeper deactivates the link.
	ExpiresAt time.Time
	// CreatedAt is the timestamp indicating when the link was created.
	CreatedAt time.Time
}

// ClickStats counts traffic for exactly one link. The record is created in
// the same transaction as its link and never exists independently.
type ClickStats struct {
	// HourlyClicks is the number of redirects since the last hourly reset.
	HourlyClicks int64
	// DailyClicks is the number of redirects since the last daily reset.
	DailyClicks int64
}

// User is an authentication identity that owns created links.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
