package metrics

import (
	"testing"

	"smartstore-backend/internal/catalog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector(t *testing.T) {
	c := New()
	reg := prometheus.NewRegistry()
	c.Register(reg)

	c.ObserveClassification(catalog.Result{Slug: catalog.SlugTablet, Source: catalog.SourceKeyword})
	c.ObserveClassification(catalog.Result{Slug: catalog.SlugTablet, Source: catalog.SourceKeyword})
	c.ObserveClassification(catalog.Result{Source: catalog.SourceNone})
	c.BranchSwitch("denied")
	c.ImportRow("created")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.classifications.WithLabelValues("tablet", "keyword")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.classifications.WithLabelValues("uncategorized", "none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.branchSwitches.WithLabelValues("denied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.importedRows.WithLabelValues("created")))
}
