package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dkolesnikov/linkcut/internal/database"
	"github.com/dkolesnikov/linkcut/internal/models"
)

type linkRecord struct {
	ID           int64     `db:"id"`
	ShortCode    string    `db:"short_code"`
	OriginalURL  string    `db:"original_url"`
	IsActive     bool      `db:"is_active"`
	IsStale      bool      `db:"is_stale"`
	HourlyClicks int64     `db:"hourly_clicks"`
	DailyClicks  int64     `db:"daily_clicks"`
	ExpiresAt    time.Time `db:"expires_at"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r *linkRecord) toLink() *models.Link {
	return &models.Link{
		ID:          r.ID,
		ShortCode:   r.ShortCode,
		OriginalURL: r.OriginalURL,
		Active:      r.IsActive,
		Stale:       r.IsStale,
		ClickStats: models.ClickStats{
			HourlyClicks: r.HourlyClicks,
			DailyClicks:  r.DailyClicks,
		},
		ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt,
	}
}

// LinkRepository persists links and their click counters in PostgreSQL.
type LinkRepository struct {
	db *sqlx.DB
}

func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{
		db: db,
	}
}

// CodeExists reports whether a link with the given short code is already
// stored. It is a read-only check; uniqueness is ultimately enforced by the
// constraint on links.short_code.
func (r *LinkRepository) CodeExists(ctx context.Context, shortCode string) (bool, error) {
	const op = "database.postgres.LinkRepository.CodeExists"

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM links WHERE short_code = $1)`

	if err := r.db.GetContext(ctx, &exists, query, shortCode); err != nil {
		return false, fmt.Errorf("%s: failed to check short code: %w", op, err)
	}

	return exists, nil
}

// Create inserts a link and its zeroed click stats row in one transaction.
// A duplicate short code maps to database.ErrCodeExists.
func (r *LinkRepository) Create(ctx context.Context, shortCode, originalURL string, expiresAt time.Time) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.Create"

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	rec := new(linkRecord)
	query := `INSERT INTO links(short_code, original_url, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, short_code, original_url, is_active, is_stale, expires_at, created_at`

	err = tx.QueryRowxContext(ctx, query, shortCode, originalURL, expiresAt).StructScan(rec)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to create link record: %w", op, err)
	}

	query = `INSERT INTO click_stats(link_id) VALUES ($1)`

	if _, err := tx.ExecContext(ctx, query, rec.ID); err != nil {
		return nil, fmt.Errorf("%s: failed to create click stats record: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return rec.toLink(), nil
}

// GetByCode retrieves a link with its click counters by short code.
func (r *LinkRepository) GetByCode(ctx context.Context, shortCode string) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.GetByCode"

	rec := new(linkRecord)
	query := `SELECT l.id, l.short_code, l.original_url, l.is_active, l.is_stale,
			s.hourly_clicks, s.daily_clicks, l.expires_at, l.created_at
		FROM links l
		JOIN click_stats s ON s.link_id = l.id
		WHERE l.short_code = $1`

	err := r.db.GetContext(ctx, rec, query, shortCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get link record: %w", op, err)
	}

	return rec.toLink(), nil
}

// IncrementClicks bumps both click counters of a link by one in a single
// atomic update.
func (r *LinkRepository) IncrementClicks(ctx context.Context, linkID int64) error {
	const op = "database.postgres.LinkRepository.IncrementClicks"

	query := `UPDATE click_stats
		SET hourly_clicks = hourly_clicks + 1, daily_clicks = daily_clicks + 1
		WHERE link_id = $1`

	res, err := r.db.ExecContext(ctx, query, linkID)
	if err != nil {
		return fmt.Errorf("%s: failed to increment clicks: %w", op, err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}
	if count == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
	}

	return nil
}

// SetActive flips the active flag of a link. Writing the same value again is
// not an error, so deactivation stays idempotent. The stale flag is left
// untouched.
func (r *LinkRepository) SetActive(ctx context.Context, shortCode string, active bool) error {
	const op = "database.postgres.LinkRepository.SetActive"

	query := `UPDATE links SET is_active = $1 WHERE short_code = $2`

	res, err := r.db.ExecContext(ctx, query, active, shortCode)
	if err != nil {
		return fmt.Errorf("%s: failed to update link record: %w", op, err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}
	if count == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
	}

	return nil
}

// DeactivateExpired deactivates every active link whose expiry has passed,
// marking it stale, as one bulk update. It returns the number of links swept.
func (r *LinkRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	const op = "database.postgres.LinkRepository.DeactivateExpired"

	query := `UPDATE links
		SET is_active = FALSE, is_stale = TRUE
		WHERE expires_at <= $1 AND is_active`

	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to deactivate expired links: %w", op, err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}

	return count, nil
}

// ResetHourlyClicks zeroes the hourly counter on all click stats rows.
func (r *LinkRepository) ResetHourlyClicks(ctx context.Context) (int64, error) {
	const op = "database.postgres.LinkRepository.ResetHourlyClicks"

	query := `UPDATE click_stats SET hourly_clicks = 0`

	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to reset hourly clicks: %w", op, err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}

	return count, nil
}

// ResetDailyClicks zeroes the daily counter on all click stats rows.
func (r *LinkRepository) ResetDailyClicks(ctx context.Context) (int64, error) {
	const op = "database.postgres.LinkRepository.ResetDailyClicks"

	query := `UPDATE click_stats SET daily_clicks = 0`

	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to reset daily clicks: %w", op, err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}

	return count, nil
}

// List returns links filtered by the active flag, newest first.
func (r *LinkRepository) List(ctx context.Context, active bool, limit, offset int) ([]models.Link, error) {
	const op = "database.postgres.LinkRepository.List"

	var recs []linkRecord
	query := `SELECT l.id, l.short_code, l.original_url, l.is_active, l.is_stale,
			s.hourly_clicks, s.daily_clicks, l.expires_at, l.created_at
		FROM links l
		JOIN click_stats s ON s.link_id = l.id
		WHERE l.is_active = $1
		ORDER BY l.created_at DESC
		LIMIT $2 OFFSET $3`

	if err := r.db.SelectContext(ctx, &recs, query, active, limit, offset); err != nil {
		return nil, fmt.Errorf("%s: failed to list link records: %w", op, err)
	}

	links := make([]models.Link, 0, len(recs))
	for _, rec := range recs {
		links = append(links, *rec.toLink())
	}

	return links, nil
}
