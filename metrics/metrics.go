package metrics

import (
	"net/http"
	"strconv"

	"walkintovoid/apperror"

	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "walkintovoid"

// Metrics holds the collectors; each instance owns its registry so tests can
// build as many servers as they like.
type Metrics struct {
	Registry         *prometheus.Registry
	OtpRequests      *prometheus.CounterVec
	OtpVerifications *prometheus.CounterVec
	ViewIncrements   *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		OtpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_requests_total",
			Help:      "Registration codes requested, by result.",
		}, []string{"result"}),
		OtpVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_verifications_total",
			Help:      "Registration code verifications, by result.",
		}, []string{"result"}),
		ViewIncrements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "post_view_increments_total",
			Help:      "Background post view increments, by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method and status.",
		}, []string{"method", "status"}),
	}
	m.Registry.MustRegister(
		m.OtpRequests,
		m.OtpVerifications,
		m.ViewIncrements,
		m.httpRequests,
		prometheus.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware counts every request once it has been written.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
	})
}

// Result labels a counter increment with the outcome of an operation.
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	return apperror.KindOf(err).String()
}
