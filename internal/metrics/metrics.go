package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "presence_active_rooms",
		Help: "Number of worlds with a live room",
	})

	ActiveParticipants = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "presence_active_participants",
		Help: "Number of live participants across all rooms",
	})

	Joins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presence_joins_total",
		Help: "Total number of admitted joins",
	})

	Reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presence_reconnects_total",
		Help: "Total number of joins absorbed as silent reconnections",
	})

	Denials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "presence_denials_total",
		Help: "Total number of refused joins",
	}, []string{"code"})

	StaleDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presence_stale_epoch_drops_total",
		Help: "Total number of leave/avatar messages ignored as stale",
	})

	Evictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presence_grace_evictions_total",
		Help: "Total number of participants evicted after the grace window",
	})

	DroppedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presence_dropped_frames_total",
		Help: "Total number of outbound frames dropped on backpressure",
	})
)
