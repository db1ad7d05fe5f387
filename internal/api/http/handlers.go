package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/dkolesnikov/linkcut/internal/database"
	"github.com/dkolesnikov/linkcut/internal/metrics"
	"github.com/dkolesnikov/linkcut/internal/models"
	"github.com/dkolesnikov/linkcut/internal/service"
	"github.com/dkolesnikov/linkcut/pkg/response"
)

// handlePing handles health check requests to ensure the server is running.
func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "pong")
}

// shortenRequest represents the request payload for creating a short link.
type shortenRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// linkResponse represents the response payload for a link operation.
type linkResponse struct {
	ID           int64     `json:"id"`
	ShortCode    string    `json:"short_code"`
	URL          string    `json:"url"`
	Active       bool      `json:"active"`
	Stale        bool      `json:"stale"`
	HourlyClicks int64     `json:"hourly_clicks"`
	DailyClicks  int64     `json:"daily_clicks"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// toLinkResponse converts a link model from the business layer into a response payload.
func toLinkResponse(link *models.Link) linkResponse {
	return linkResponse{
		ID:           link.ID,
		ShortCode:    link.ShortCode,
		URL:          link.OriginalURL,
		Active:       link.Active,
		Stale:        link.Stale,
		HourlyClicks: link.HourlyClicks,
		DailyClicks:  link.DailyClicks,
		ExpiresAt:    link.ExpiresAt,
		CreatedAt:    link.CreatedAt,
	}
}

// handleShortenURL handles POST requests to shorten a URL.
//
// The request must contain a valid URL. A duplicate-code race on insert is
// retried with one fresh generation round; a second conflict surfaces as 409.
// Generation exhaustion surfaces as 503 since it signals keyspace pressure.
func handleShortenURL(svc LinkService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleShortenURL"
	const successMsg = "The URL has been shortened successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req shortenRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		link, err := svc.ShortenURL(r.Context(), req.URL)
		if errors.Is(err, database.ErrCodeExists) {
			link, err = svc.ShortenURL(r.Context(), req.URL)
		}
		if err != nil {
			switch {
			case errors.Is(err, database.ErrCodeExists):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.ShortCodeConflictResponse)
			case errors.Is(err, service.ErrCodeGenerationExhausted):
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, response.GenerationExhaustedResponse)
			default:
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ServerErrorResponse)
			}
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, toLinkResponse(link)))
	}
}

// handleRedirect handles GET requests on a short code and redirects to the
// original URL with 303 See Other. Unknown codes return 404; deactivated or
// expired links return 410 without distinguishing the two.
func handleRedirect(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		link, err := svc.ResolveShortCode(r.Context(), shortCode)
		if err != nil {
			switch {
			case errors.Is(err, database.ErrLinkNotFound):
				metrics.RedirectErrors.WithLabelValues("not_found").Inc()

				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
			case errors.Is(err, service.ErrLinkGone):
				metrics.RedirectErrors.WithLabelValues("gone").Inc()

				render.Status(r, http.StatusGone)
				render.JSON(w, r, response.LinkGoneResponse)
			default:
				metrics.RedirectErrors.WithLabelValues("internal").Inc()

				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ServerErrorResponse)
			}
			return
		}

		http.Redirect(w, r, link.OriginalURL, http.StatusSeeOther)
	}
}

// handleDeactivateLink handles PATCH requests to deactivate a link.
//
// Once deactivated, the link no longer redirects. Deactivating an already
// inactive link succeeds as well.
func handleDeactivateLink(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleDeactivateLink"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		err := svc.DeactivateLink(r.Context(), shortCode)
		if err != nil {
			if errors.Is(err, database.ErrLinkNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.NoContent(w, r)
	}
}

// handleGetLinkStats handles GET requests to retrieve usage statistics for a link.
func handleGetLinkStats(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleGetLinkStats"
	const successMsg = "The link statistics retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		link, err := svc.GetLinkStats(r.Context(), shortCode)
		if err != nil {
			if errors.Is(err, database.ErrLinkNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toLinkResponse(link)))
	}
}

// handleListLinks handles GET requests to list created links with optional
// activity filtering and pagination.
func handleListLinks(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleListLinks"
	const successMsg = "The links retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		active := true
		if v := r.URL.Query().Get("active"); v != "" {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.BadRequestResponse)
				return
			}
			active = parsed
		}

		limit := parseQueryInt(r, "limit", 10)
		offset := parseQueryInt(r, "offset", 0)

		links, err := svc.ListLinks(r.Context(), active, limit, offset)
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		data := make([]linkResponse, 0, len(links))
		for i := range links {
			data = append(data, toLinkResponse(&links[i]))
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, data))
	}
}

func parseQueryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		return fallback
	}

	return parsed
}
