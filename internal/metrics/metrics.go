package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector tracks operational counters for Prometheus scraping. A nil
// Collector is valid and records nothing, so services can run without
// metrics in tests.
type Collector struct {
	sessionsCreated prometheus.Counter
	sosTriggered    prometheus.Counter
	poiFailures     prometheus.Counter
	samplesRecorded prometheus.Counter
}

// NewCollector registers the application counters on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "safewalk_tracking_sessions_created_total",
			Help: "Number of location sharing sessions created.",
		}),
		sosTriggered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "safewalk_sos_alerts_total",
			Help: "Number of SOS alerts triggered.",
		}),
		poiFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "safewalk_poi_lookup_failures_total",
			Help: "Number of failed nearby-place lookups.",
		}),
		samplesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "safewalk_location_samples_total",
			Help: "Number of location samples recorded.",
		}),
	}

	reg.MustRegister(
		c.sessionsCreated,
		c.sosTriggered,
		c.poiFailures,
		c.samplesRecorded,
	)
	return c
}

func (c *Collector) RecordSessionCreated() {
	if c == nil {
		return
	}
	c.sessionsCreated.Inc()
}

func (c *Collector) RecordSOSTriggered() {
	if c == nil {
		return
	}
	c.sosTriggered.Inc()
}

func (c *Collector) RecordPOIFailure() {
	if c == nil {
		return
	}
	c.poiFailures.Inc()
}

func (c *Collector) RecordSampleRecorded() {
	if c == nil {
		return
	}
	c.samplesRecorded.Inc()
}
