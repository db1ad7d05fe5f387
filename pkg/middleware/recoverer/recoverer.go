package recoverer

import (
	"log/slog"
	"net/http"

	"github.com/dkolesnikov/linkcut/pkg/middleware"
	"github.com/dkolesnikov/linkcut/pkg/render"
	"github.com/dkolesnikov/linkcut/pkg/response"
)

// New returns a middleware that recovers from handler panics, logs them and
// responds with the server error envelope.
func New(logger *slog.Logger) middleware.Middleware {
	const op = "middleware.recoverer.New"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error(
						"something went wrong, panic occuried",
						slog.Group(op, slog.Any("err", err)),
					)

					render.JSON(w, http.StatusInternalServerError, response.ServerErrorResponse) //nolint:errcheck
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
