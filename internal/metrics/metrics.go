// Package metrics holds the Prometheus collectors for the publish pipeline and notification fan-out.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline counts publish and notification outcomes. A nil *Pipeline is valid and records nothing.
type Pipeline struct {
	publishTotal      *prometheus.CounterVec
	notificationTotal *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Pipeline, error) {
	p := &Pipeline{
		publishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "story_asset_publish_total",
				Help: "Publish pipeline executions by asset category, asset source and result.",
			},
			[]string{"category", "source", "result"},
		),
		notificationTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "story_notifications_total",
				Help: "Follower notification attempts by outcome.",
			},
			[]string{"outcome"},
		),
	}
	for _, c := range []prometheus.Collector{p.publishTotal, p.notificationTotal} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ObservePublish records one pipeline run.
func (p *Pipeline) ObservePublish(category, source, result string) {
	if p == nil {
		return
	}
	p.publishTotal.WithLabelValues(category, source, result).Inc()
}

// ObserveNotification records one recipient attempt.
func (p *Pipeline) ObserveNotification(outcome string) {
	if p == nil {
		return
	}
	p.notificationTotal.WithLabelValues(outcome).Inc()
}
