package histogram

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus series exposing the divergence and
// per-template match counters described in §4.9.
type Metrics struct {
	JSDScore          prometheus.Gauge
	TemplateMatches   *prometheus.CounterVec
	TemplateRelChange *prometheus.GaugeVec

	collectors []prometheus.Collector
	registerer prometheus.Registerer
}

// NewMetrics registers the histogram metrics against reg. instanceName
// distinguishes multiple matcher instances scraped by the same target.
func NewMetrics(reg prometheus.Registerer, instanceName string) *Metrics {
	jsdScore := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "templatematch_jsd_score",
		Help:        "Jensen-Shannon divergence, in nats, between the current and baseline template distributions",
		ConstLabels: prometheus.Labels{"instance": instanceName},
	})

	templateMatches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "templatematch_template_matches_total",
		Help:        "Total number of lines matched per template id",
		ConstLabels: prometheus.Labels{"instance": instanceName},
	}, []string{"template_id"})

	templateRelChange := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        "templatematch_template_relative_change",
		Help:        "Relative change in percent of a template's share of traffic versus the baseline window",
		ConstLabels: prometheus.Labels{"instance": instanceName},
	}, []string{"template_id"})

	collectors := []prometheus.Collector{jsdScore, templateMatches, templateRelChange}
	reg.MustRegister(collectors...)

	return &Metrics{
		JSDScore:          jsdScore,
		TemplateMatches:   templateMatches,
		TemplateRelChange: templateRelChange,
		collectors:        collectors,
		registerer:        reg,
	}
}

// Unregister removes all histogram metrics from the registry. Must be
// called before re-registering (e.g. in a restarted test instance) to
// avoid duplicate-registration panics.
func (m *Metrics) Unregister() {
	if m.registerer == nil {
		return
	}
	for _, c := range m.collectors {
		m.registerer.Unregister(c)
	}
}

// Observe records the result of one divergence computation: the JSD
// score gauge plus per-template relative-change gauges from the
// contribution decomposition (§4.9).
func (m *Metrics) Observe(jsd float64, contributions []Contribution) {
	m.JSDScore.Set(jsd)
	for _, c := range contributions {
		m.TemplateRelChange.WithLabelValues(templateIDLabel(c.TemplateID)).Set(c.RelativeChange)
	}
}

// RecordMatch increments the per-template match counter. Called once
// per matched line (§4.9 "counts feed a histogram").
func (m *Metrics) RecordMatch(templateID uint64) {
	m.TemplateMatches.WithLabelValues(templateIDLabel(templateID)).Inc()
}

func templateIDLabel(id uint64) string {
	return strconv.FormatUint(id, 10)
}
