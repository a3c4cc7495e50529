package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservePass(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.ObservePass(PassOutcome{Files: 5, CacheHits: 3, Diagnostics: 2, Duration: 40 * time.Millisecond})
	r.ObservePass(PassOutcome{Files: 5, CacheHits: 5, Failed: true})

	assert.InDelta(t, 1, testutil.ToFloat64(r.passes.WithLabelValues("ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.passes.WithLabelValues("error")), 0)
	assert.InDelta(t, 8, testutil.ToFloat64(r.files.WithLabelValues("true")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(r.files.WithLabelValues("false")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(r.diagnostics), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(r.lastErrors), 0)
}

func TestNilRecorder(t *testing.T) {
	t.Parallel()

	var r *Recorder
	assert.NotPanics(t, func() { r.ObservePass(PassOutcome{Files: 1}) })
}

func TestHandler(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.ObservePass(PassOutcome{Files: 1})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "hbslint_build_passes_total"))
}
