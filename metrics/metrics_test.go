package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Observe(t *testing.T) {
	m := New("test")
	m.ObserveGeneration("platform", "success", time.Second)
	m.ObserveGeneration("platform", "success", 0)
	m.ObserveQuotaDenied("anonymous")
	m.ObservePDFRender("corporate", "success")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.generations.WithLabelValues("platform", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quotaDenied.WithLabelValues("anonymous")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pdfRenders.WithLabelValues("corporate", "success")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveGeneration("user", "success", time.Second)
		m.ObserveQuotaDenied("account")
		m.ObservePDFRender("minimal", "failed")
	})
}
