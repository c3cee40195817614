// Package metrics counts what a run did. A run is a short batch job, so nothing is scraped:
// the counters are written once, at exit, in the prometheus text format for node-exporter's textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run holds one run's metrics in its own registry.
type Run struct {
	Registry           *prometheus.Registry
	Discovered         *prometheus.GaugeVec   // samples found, by output
	ExtractionFailures *prometheus.CounterVec // samples rendered with placeholder metadata, by output
	Rendered           *prometheus.GaugeVec   // items written, by output
	Skipped            *prometheus.CounterVec // outputs skipped for missing input, by output
}

// New registers a fresh set of metrics.
func New() *Run {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Run{
		Discovered: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "samplesite_samples_discovered",
			Help: "Samples found in the samples directory.",
		}, []string{"output"}),
		ExtractionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "samplesite_extraction_failures_total",
			Help: "Samples that could not be read and were rendered with placeholder metadata.",
		}, []string{"output"}),
		Rendered: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "samplesite_items_rendered",
			Help: "Items written to a generated document.",
		}, []string{"output"}),
		Skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "samplesite_outputs_skipped_total",
			Help: "Outputs not generated because their input was missing.",
		}, []string{"output"}),
		Registry: reg,
	}
}

// WriteTextfile writes every metric to path in the prometheus text format.
func (r *Run) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.Registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
