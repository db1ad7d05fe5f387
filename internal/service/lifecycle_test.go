package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkolesnikov/linkcut/internal/database"
	"github.com/dkolesnikov/linkcut/internal/models"
)

// fakeLinkRepo is a minimal in-memory LinkRepository for end-to-end
// lifecycle tests of the service layer.
type fakeLinkRepo struct {
	nextID int64
	links  map[string]*models.Link
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[string]*models.Link)}
}

func (r *fakeLinkRepo) CodeExists(_ context.Context, shortCode string) (bool, error) {
	_, ok := r.links[shortCode]
	return ok, nil
}

func (r *fakeLinkRepo) Create(_ context.Context, shortCode, originalURL string, expiresAt time.Time) (*models.Link, error) {
	if _, ok := r.links[shortCode]; ok {
		return nil, database.ErrCodeExists
	}

	r.nextID++
	link := &models.Link{
		ID:          r.nextID,
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		Active:      true,
		ExpiresAt:   expiresAt,
		CreatedAt:   time.Now(),
	}
	r.links[shortCode] = link

	cp := *link
	return &cp, nil
}

func (r *fakeLinkRepo) GetByCode(_ context.Context, shortCode string) (*models.Link, error) {
	link, ok := r.links[shortCode]
	if !ok {
		return nil, database.ErrLinkNotFound
	}

	cp := *link
	return &cp, nil
}

func (r *fakeLinkRepo) IncrementClicks(_ context.Context, linkID int64) error {
	for _, link := range r.links {
		if link.ID == linkID {
			link.HourlyClicks++
			link.DailyClicks++
			return nil
		}
	}
	return database.ErrLinkNotFound
}

func (r *fakeLinkRepo) SetActive(_ context.Context, shortCode string, active bool) error {
	link, ok := r.links[shortCode]
	if !ok {
		return database.ErrLinkNotFound
	}
	link.Active = active
	return nil
}

func (r *fakeLinkRepo) List(_ context.Context, active bool, limit, offset int) ([]models.Link, error) {
	var links []models.Link
	for _, link := range r.links {
		if link.Active == active {
			links = append(links, *link)
		}
	}
	return links, nil
}

func TestLinkService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLinkRepo()
	svc := NewLinkService(repo, 6, 7*24*time.Hour)

	link, err := svc.ShortenURL(ctx, "https://example.com")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9]{6}$`), link.ShortCode)
	assert.True(t, link.Active)
	assert.False(t, link.Stale)

	// Three resolutions record three clicks on both counters.
	for i := 0; i < 3; i++ {
		resolved, err := svc.ResolveShortCode(ctx, link.ShortCode)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", resolved.OriginalURL)
	}

	stats, err := svc.GetLinkStats(ctx, link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.HourlyClicks)
	assert.Equal(t, int64(3), stats.DailyClicks)

	// Deactivation is idempotent and blocks further resolutions.
	require.NoError(t, svc.DeactivateLink(ctx, link.ShortCode))
	require.NoError(t, svc.DeactivateLink(ctx, link.ShortCode))

	_, err = svc.ResolveShortCode(ctx, link.ShortCode)
	assert.ErrorIs(t, err, ErrLinkGone)

	// The dropped resolution must not record a click.
	stats, err = svc.GetLinkStats(ctx, link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.HourlyClicks)

	// New codes never collide with tracked ones.
	other, err := svc.ShortenURL(ctx, "https://example.org")
	require.NoError(t, err)
	assert.NotEqual(t, link.ShortCode, other.ShortCode)
}
