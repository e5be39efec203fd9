package metrics

import (
	"smartstore-backend/internal/catalog"

	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	classifications *prometheus.CounterVec
	branchSwitches  *prometheus.CounterVec
	importedRows    *prometheus.CounterVec
}

func New() *Collector {
	c := &Collector{}

	c.classifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smartstore",
		Name:      "product_classifications_total",
		Help:      "Product category classifications by resulting slug and rule source",
	}, []string{"slug", "source"})

	c.branchSwitches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smartstore",
		Name:      "branch_switches_total",
		Help:      "Active branch switch requests by outcome (applied|unchanged|denied)",
	}, []string{"outcome"})

	c.importedRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smartstore",
		Name:      "warehouse_import_rows_total",
		Help:      "Warehouse import rows by result (created|updated|skipped)",
	}, []string{"result"})

	return c
}

func (c *Collector) Register(reg prometheus.Registerer) {
	reg.MustRegister(
		c.classifications,
		c.branchSwitches,
		c.importedRows,
	)
}

func (c *Collector) ObserveClassification(res catalog.Result) {
	slug := string(res.Slug)
	if slug == "" {
		slug = "uncategorized"
	}
	c.classifications.WithLabelValues(slug, string(res.Source)).Inc()
}

// BranchSwitch satisfies branchctx.Recorder.
func (c *Collector) BranchSwitch(outcome string) {
	c.branchSwitches.WithLabelValues(outcome).Inc()
}

func (c *Collector) ImportRow(result string) {
	c.importedRows.WithLabelValues(result).Inc()
}
