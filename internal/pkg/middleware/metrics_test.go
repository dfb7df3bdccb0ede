package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// TestMetrics_LabelsByRoutePattern garante que a métrica é rotulada pelo
// PADRÃO da rota (preenchido pelo ServeMux em r.Pattern), e não pelo path
// cru — um path cru criaria uma série nova por UUID de produto.
func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/products/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := Metrics(mux)

	// Duas requisições com paths diferentes sob o mesmo padrão de rota.
	for _, id := range []string{"0b2f77aa-1111-4f3c-9c0e-aaaaaaaaaaaa", "0b2f77aa-2222-4f3c-9c0e-bbbbbbbbbbbb"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/products/"+id, nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	// Ambas devem cair na MESMA série: a do padrão da rota.
	patternSeries := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/v1/products/", http.MethodGet, "200"))
	assert.Equal(t, float64(2), patternSeries)

	rawPathSeries := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/v1/products/0b2f77aa-1111-4f3c-9c0e-aaaaaaaaaaaa", http.MethodGet, "200"))
	assert.Equal(t, float64(0), rawPathSeries)
}

// TestMetrics_UnmatchedRoute cobre requisições que não casam com nenhuma rota:
// o label vira "unmatched" em vez de propagar o path arbitrário do cliente.
func TestMetrics_UnmatchedRoute(t *testing.T) {
	handler := Metrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/qualquer/coisa", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	unmatched := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("unmatched", http.MethodGet, "404"))
	assert.Equal(t, float64(1), unmatched)
}
