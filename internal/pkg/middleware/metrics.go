package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Métricas de requisição HTTP expostas em /metrics.
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gocatalog_http_requests_total",
			Help: "Total de requisições HTTP processadas, por rota, método e status.",
		},
		[]string{"path", "method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gocatalog_http_request_duration_seconds",
			Help:    "Duração das requisições HTTP em segundos, por rota e método.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
)

// statusRecorder captura o status code escrito pelo handler para a métrica.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Metrics envolve um handler registrando contagem e duração das requisições.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		// O ServeMux preenche r.Pattern ao rotear; usamos o padrão da rota
		// como label para manter a cardinalidade das séries limitada (um
		// path cru carregaria cada UUID de produto para dentro da métrica).
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
