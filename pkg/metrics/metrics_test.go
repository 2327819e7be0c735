package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.SearchQueriesTotal.WithLabelValues(ResultHit).Inc()
	m.SearchQueriesTotal.WithLabelValues(ResultZeroResult).Add(2)
	m.DocsRemovedTotal.WithLabelValues("duplicate").Add(4)
	m.IndexDocuments.Set(5)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(ResultHit)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(ResultZeroResult)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.DocsRemovedTotal.WithLabelValues("duplicate")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.IndexDocuments))

	// A second set of collectors on a fresh registry must not collide.
	NewWithRegistry(prometheus.NewRegistry())
}

func TestHandlerServesRegistry(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())
	m.IndexTerms.Set(12)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "index_terms 12")
}
