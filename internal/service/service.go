package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkolesnikov/linkcut/internal/metrics"
	"github.com/dkolesnikov/linkcut/internal/models"
)

// ErrLinkGone is returned when a link exists but no longer redirects,
// whether it was deactivated manually or swept as expired. The two cases
// collapse into one signal on the redirect path.
var ErrLinkGone = errors.New("link is deactivated or expired")

// LinkRepository defines the storage operations the link service relies on.
type LinkRepository interface {
	// CodeExists reports whether a short code is already stored.
	CodeExists(ctx context.Context, shortCode string) (bool, error)

	// Create persists a link with a zeroed click stats record as one atomic
	// unit. It fails with database.ErrCodeExists on a duplicate short code.
	Create(ctx context.Context, shortCode, originalURL string, expiresAt time.Time) (*models.Link, error)

	// GetByCode retrieves a link with its click counters.
	// Fails with database.ErrLinkNotFound if the code is unknown.
	GetByCode(ctx context.Context, shortCode string) (*models.Link, error)

	// IncrementClicks bumps both click counters of a link by one atomically.
	IncrementClicks(ctx context.Context, linkID int64) error

	// SetActive flips the active flag. Idempotent on repeated writes.
	SetActive(ctx context.Context, shortCode string, active bool) error

	// List returns links filtered by the active flag, newest first.
	List(ctx context.Context, active bool, limit, offset int) ([]models.Link, error)
}

// LinkService implements the short-code lifecycle: generation, creation,
// redirect resolution with click accounting, and deactivation.
type LinkService struct {
	repo    LinkRepository
	gen     *codeGenerator
	linkTTL time.Duration
}

// NewLinkService creates a LinkService producing codes of codeLength
// characters and links that expire linkTTL after creation.
func NewLinkService(repo LinkRepository, codeLength int, linkTTL time.Duration) *LinkService {
	return &LinkService{
		repo:    repo,
		gen:     newCodeGenerator(codeLength, repo),
		linkTTL: linkTTL,
	}
}

// ShortenURL generates a unique short code and persists the link. Generation
// and creation are deliberately not atomic as a pair: a concurrent request
// can win the same code between the check and the insert, in which case the
// unique constraint fires and database.ErrCodeExists propagates to the
// caller, who may retry generation once.
func (s *LinkService) ShortenURL(ctx context.Context, originalURL string) (*models.Link, error) {
	const op = "service.LinkService.ShortenURL"

	shortCode, err := s.gen.Generate(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
	}

	link, err := s.repo.Create(ctx, shortCode, originalURL, time.Now().UTC().Add(s.linkTTL))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
	}

	metrics.LinksCreated.Inc()

	return link, nil
}

// ResolveShortCode returns the link behind a short code after recording the
// click. Inactive links fail with ErrLinkGone. If the increment fails the
// whole resolution fails, so a successful return always means the click was
// durably recorded.
func (s *LinkService) ResolveShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	const op = "service.LinkService.ResolveShortCode"

	link, err := s.repo.GetByCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	if !link.Active {
		return nil, fmt.Errorf("%s: %w", op, ErrLinkGone)
	}

	if err := s.repo.IncrementClicks(ctx, link.ID); err != nil {
		return nil, fmt.Errorf("%s: failed to record click: %w", op, err)
	}

	link.HourlyClicks++
	link.DailyClicks++

	metrics.Redirects.Inc()

	return link, nil
}

// DeactivateLink disables a link so it no longer redirects. The stale flag
// is not touched; that distinction belongs to the sweeper. Deactivating an
// already inactive link succeeds.
func (s *LinkService) DeactivateLink(ctx context.Context, shortCode string) error {
	const op = "service.LinkService.DeactivateLink"

	if err := s.repo.SetActive(ctx, shortCode, false); err != nil {
		return fmt.Errorf("%s: failed to deactivate link: %w", op, err)
	}

	return nil
}

// GetLinkStats retrieves a link with its click counters without recording
// a click.
func (s *LinkService) GetLinkStats(ctx context.Context, shortCode string) (*models.Link, error) {
	const op = "service.LinkService.GetLinkStats"

	link, err := s.repo.GetByCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get link stats: %w", op, err)
	}

	return link, nil
}

// ListLinks returns created links filtered by the active flag.
func (s *LinkService) ListLinks(ctx context.Context, active bool, limit, offset int) ([]models.Link, error) {
	const op = "service.LinkService.ListLinks"

	links, err := s.repo.List(ctx, active, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list links: %w", op, err)
	}

	return links, nil
}
