package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	PersonsRegistered   prometheus.Counter
	EntriesPosted       prometheus.Counter
	ReportLinesIngested prometheus.Counter
	ReportLineFailures  prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		PersonsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "paybook_persons_registered_total",
			Help: "Total number of persons registered",
		}),
		EntriesPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "paybook_ledger_entries_posted_total",
			Help: "Total number of ledger entries written",
		}),
		ReportLinesIngested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "paybook_report_lines_ingested_total",
			Help: "Total number of settlement report lines posted",
		}),
		ReportLineFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "paybook_report_line_failures_total",
			Help: "Total number of settlement report lines rejected",
		}),
	}
}

// IncPersonsRegistered increments the registered-persons counter by 1.
func (m *Metrics) IncPersonsRegistered() {
	if m != nil {
		m.PersonsRegistered.Inc()
	}
}

// AddEntriesPosted adds n to the posted-entries counter.
func (m *Metrics) AddEntriesPosted(n int) {
	if m != nil {
		m.EntriesPosted.Add(float64(n))
	}
}

// IncReportLine records one processed report line.
func (m *Metrics) IncReportLine(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.ReportLinesIngested.Inc()
	} else {
		m.ReportLineFailures.Inc()
	}
}
