package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "healthwatch_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	readingsIngested *prometheus.CounterVec
	readingsDropped  *prometheus.CounterVec
	ingestLatency    *prometheus.HistogramVec

	alarmEvents *prometheus.CounterVec

	broadcastSends    *prometheus.CounterVec
	connectedChannels *prometheus.GaugeVec

	reminderChecks prometheus.Counter
	reminderFires  prometheus.Counter

	bucketSeals prometheus.Counter
	storeErrors *prometheus.CounterVec
)

// Init registers observability metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		readingsIngested = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "readings_ingested_total",
				Help: "Total ingested vital readings by result",
			},
			[]string{"result"},
		)
		readingsDropped = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "readings_dropped_total",
				Help: "Total dropped readings by reason",
			},
			[]string{"reason"},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "Reading ingest latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		alarmEvents = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alarm_events_total",
				Help: "Total alarm lifecycle events by type",
			},
			[]string{"event"},
		)

		broadcastSends = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "broadcast_sends_total",
				Help: "Total channel sends by audience and result",
			},
			[]string{"audience", "result"},
		)
		connectedChannels = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "connected_channels",
				Help: "Currently connected channels by audience",
			},
			[]string{"audience"},
		)

		reminderChecks = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "reminder_checks_total",
				Help: "Total reminder scheduler passes",
			},
		)
		reminderFires = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "reminder_fires_total",
				Help: "Total medicine alarms fired",
			},
		)

		bucketSeals = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "minute_buckets_sealed_total",
				Help: "Total minute buckets sealed into the rolling window",
			},
		)
		storeErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "store_errors_total",
				Help: "Total durable store failures by operation",
			},
			[]string{"op"},
		)

		prometheus.MustRegister(
			readingsIngested,
			readingsDropped,
			ingestLatency,
			alarmEvents,
			broadcastSends,
			connectedChannels,
			reminderChecks,
			reminderFires,
			bucketSeals,
			storeErrors,
		)
	})
}

// ObserveIngest records one ingest pass and its duration.
func ObserveIngest(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if readingsIngested != nil {
		readingsIngested.WithLabelValues(result).Inc()
	}
	if ingestLatency != nil {
		ingestLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncReadingDropped increments the dropped-reading counter.
func IncReadingDropped(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if readingsDropped != nil {
		readingsDropped.WithLabelValues(reason).Inc()
	}
}

// IncAlarmEvent increments alarm lifecycle counters.
func IncAlarmEvent(event string) {
	if event == "" {
		event = "unknown"
	}
	if alarmEvents != nil {
		alarmEvents.WithLabelValues(event).Inc()
	}
}

// IncBroadcast counts one channel send.
func IncBroadcast(audience, result string) {
	if result == "" {
		result = resultSuccess
	}
	if broadcastSends != nil {
		broadcastSends.WithLabelValues(audience, result).Inc()
	}
}

// SetConnectedChannels sets the live channel gauge for an audience.
func SetConnectedChannels(audience string, count int) {
	if connectedChannels != nil {
		connectedChannels.WithLabelValues(audience).Set(float64(count))
	}
}

// IncReminderCheck counts one scheduler pass.
func IncReminderCheck() {
	if reminderChecks != nil {
		reminderChecks.Inc()
	}
}

// IncReminderFired counts one fired medicine alarm.
func IncReminderFired() {
	if reminderFires != nil {
		reminderFires.Inc()
	}
}

// IncBucketSealed counts one sealed minute bucket.
func IncBucketSealed() {
	if bucketSeals != nil {
		bucketSeals.Inc()
	}
}

// IncStoreError counts one durable-store failure.
func IncStoreError(op string) {
	if op == "" {
		op = "unknown"
	}
	if storeErrors != nil {
		storeErrors.WithLabelValues(op).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
