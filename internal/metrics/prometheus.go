package metrics

import (
	"os"
	"path/filepath"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/wavecast/prebuild/internal/paths"
)

const namespace = "prebuild"

// A [Recorder] backed by Prometheus collectors.
type PrometheusRecorder struct {
	registry      *prom.Registry
	stageDuration *prom.HistogramVec
	stageResults  *prom.CounterVec
	buildDuration prom.Histogram
}

// Creates a [PrometheusRecorder] and registers its collectors with reg.
//
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	pr := &PrometheusRecorder{
		registry: reg,
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total duration of a run",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.buildDuration)

	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result Result) {
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

// Returns the registry holding the recorder's collectors.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.registry
}

// Writes the registry in the text exposition format.
//
// The file is replaced atomically, so a textfile collector never reads a
// partial write. Parent directories are created.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return err
	}
	return prom.WriteToTextfile(path, p.registry)
}
