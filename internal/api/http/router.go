package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"

	"github.com/dkolesnikov/linkcut/internal/metrics"
	"github.com/dkolesnikov/linkcut/internal/models"
	"github.com/dkolesnikov/linkcut/pkg/middleware/recoverer"
)

// LinkService defines the short-code lifecycle operations exposed over HTTP.
type LinkService interface {
	// ShortenURL generates a unique short code for the original URL and
	// persists the link with zeroed click counters.
	ShortenURL(ctx context.Context, originalURL string) (*models.Link, error)

	// ResolveShortCode returns the link behind a short code after recording
	// the click. Inactive or expired links fail with service.ErrLinkGone.
	ResolveShortCode(ctx context.Context, shortCode string) (*models.Link, error)

	// DeactivateLink disables a link so it no longer redirects. Idempotent.
	DeactivateLink(ctx context.Context, shortCode string) error

	// GetLinkStats retrieves a link with its click counters without
	// recording a click.
	GetLinkStats(ctx context.Context, shortCode string) (*models.Link, error)

	// ListLinks returns created links filtered by the active flag.
	ListLinks(ctx context.Context, active bool, limit, offset int) ([]models.Link, error)
}

// AuthService defines the authentication operations exposed over HTTP.
type AuthService interface {
	// Register creates a new user with a hashed password.
	Register(ctx context.Context, email, password string) (*models.User, error)

	// Login verifies the credentials and returns a signed token.
	Login(ctx context.Context, email, password string) (string, error)

	// VerifyToken validates a token and returns the user ID it was issued for.
	VerifyToken(token string) (int64, error)
}

func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// NewRouter initializes and returns a new HTTP router with all routes and middleware configured.
func NewRouter(logger *httplog.Logger, linkSvc LinkService, authSvc AuthService) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))

	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/{shortCode}", handleRedirect(linkSvc))

	r.Route("/api/v1", func(r chi.Router) {
		validate := getValidate()

		r.Get("/ping", handlePing)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handleRegister(authSvc, validate))
			r.Post("/login", handleLogin(authSvc, validate))
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth(authSvc))

			r.Post("/shorten", handleShortenURL(linkSvc, validate))

			r.Route("/shorten/{shortCode}", func(r chi.Router) {
				r.Get("/stats", handleGetLinkStats(linkSvc))
				r.Patch("/deactivate", handleDeactivateLink(linkSvc))
			})

			r.Get("/links", handleListLinks(linkSvc))
		})
	})

	return r
}
