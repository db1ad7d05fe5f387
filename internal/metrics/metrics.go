package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LinksCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linkcut_links_created_total",
		Help: "Total links created.",
	})
	Redirects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linkcut_redirects_total",
		Help: "Total successful redirects.",
	})
	RedirectErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linkcut_redirect_errors_total",
		Help: "Failed redirect resolutions by reason.",
	}, []string{"reason"})
	LinksExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linkcut_links_expired_total",
		Help: "Links deactivated by the expiration sweeper.",
	})
	ClicksReset = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linkcut_clicks_reset_total",
		Help: "Click counter rows zeroed by the reset jobs, by window.",
	}, []string{"window"})
)

func init() {
	prometheus.MustRegister(LinksCreated, Redirects, RedirectErrors, LinksExpired, ClicksReset)
}

// Handler exposes the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
