package adapthttp

import (
	"net/http"
	"strconv"
	"time"

	"tickets/internal/app"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tickets_http_requests_total",
		Help: "HTTP requests by path and status.",
	}, []string{"path", "status"})
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tickets_http_request_duration_seconds",
		Help:    "HTTP request latency by path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
	transfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tickets_transfers_total",
		Help: "Transfer outcomes: sent, clamped or exhausted.",
	}, []string{"outcome"})
	ticketsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tickets_sent_total",
		Help: "Tickets delivered after clamping.",
	})
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		requestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(sw.status)).Inc()
		requestDuration.WithLabelValues(r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func observeTransfer(res app.TransferResult, requested int64) {
	switch {
	case !res.Succeeded:
		transfersTotal.WithLabelValues("exhausted").Inc()
	case res.SentAmount < requested:
		transfersTotal.WithLabelValues("clamped").Inc()
	default:
		transfersTotal.WithLabelValues("sent").Inc()
	}
	ticketsSent.Add(float64(res.SentAmount))
}
