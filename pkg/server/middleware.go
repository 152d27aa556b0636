package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var (
	noRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskcatalog_http_requests_total",
		Help: "The total number of handled http requests by route",
	}, []string{"route"})
	noThrottled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskcatalog_http_throttled_total",
		Help: "The total number of requests rejected by the rate limiter",
	})
)

func counted(route string, next http.Handler) http.Handler {
	counter := noRequests.WithLabelValues(route)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counter.Inc()
		next.ServeHTTP(w, r)
	})
}

// RateLimited rejects requests with 429 once limiter runs out of tokens. A
// nil limiter lets everything through.
func RateLimited(limiter *rate.Limiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			noThrottled.Inc()
			w.Header().Set("Retry-After", "1")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
