// Package metrics holds the Prometheus collectors of the photo pipeline. A nil
// *Pipeline is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Pipeline struct {
	Compressions    *prometheus.CounterVec
	ArtifactBytes   prometheus.Histogram
	Uploads         *prometheus.CounterVec
	Registrations   *prometheus.CounterVec
	RegisteredItems prometheus.Counter
}

// NewPipeline creates the collectors and registers them with reg when reg is
// not nil.
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	p := &Pipeline{
		Compressions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compressions_total",
			Help:      "Compressed photographs by outcome.",
		}, []string{"outcome"}),
		ArtifactBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "artifact_bytes",
			Help:      "Size of produced artifacts.",
			Buckets:   prometheus.ExponentialBuckets(16*1024, 2, 8),
		}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Artifact uploads to object storage by result.",
		}, []string{"result"}),
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Batch registration calls by result.",
		}, []string{"result"}),
		RegisteredItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registered_items_total",
			Help:      "Uploaded photographs registered with the backend.",
		}),
	}

	if reg != nil {
		reg.MustRegister(p.Compressions, p.ArtifactBytes, p.Uploads, p.Registrations, p.RegisteredItems)
	}

	return p
}

func (p *Pipeline) ObserveCompression(outcome string, size int) {
	if p == nil {
		return
	}

	p.Compressions.WithLabelValues(outcome).Inc()
	p.ArtifactBytes.Observe(float64(size))
}

func (p *Pipeline) ObserveUpload(err error) {
	if p == nil {
		return
	}

	p.Uploads.WithLabelValues(resultLabel(err)).Inc()
}

func (p *Pipeline) ObserveRegistration(items int, err error) {
	if p == nil {
		return
	}

	p.Registrations.WithLabelValues(resultLabel(err)).Inc()
	if err == nil {
		p.RegisteredItems.Add(float64(items))
	}
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}

	return "ok"
}

const namespace = "inspectphoto"
