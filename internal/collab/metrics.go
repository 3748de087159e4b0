package collab

import "github.com/prometheus/client_golang/prometheus"

var (
	collabConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "codestudio_collab_connections",
			Help: "Current number of active collaboration connections.",
		},
	)
	collabRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "codestudio_collab_rooms",
			Help: "Current number of active collaboration rooms.",
		},
	)
	collabEventsDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "codestudio_collab_events_delivered_total",
			Help: "Total collaboration events delivered to clients.",
		},
	)
)

func init() {
	prometheus.MustRegister(collabConnections, collabRooms, collabEventsDelivered)
}

func incConnections() {
	collabConnections.Inc()
}

func decConnections() {
	collabConnections.Dec()
}

func setRooms(count int) {
	collabRooms.Set(float64(count))
}

func addDelivered(count int) {
	collabEventsDelivered.Add(float64(count))
}
