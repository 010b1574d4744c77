package logger

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// QueueCollector exposes AsyncSink counters as Prometheus metrics,
// reading the atomic snapshots on demand when /metrics is scraped.
type QueueCollector struct {
	mu     sync.RWMutex
	queues map[string]*AsyncSink

	processedDesc   *prometheus.Desc
	blockedDesc     *prometheus.Desc
	writeErrorsDesc *prometheus.Desc
	droppedDesc     *prometheus.Desc
	depthDesc       *prometheus.Desc
	capacityDesc    *prometheus.Desc
}

// NewQueueCollector creates a collector with no registered queues.
func NewQueueCollector() *QueueCollector {
	return &QueueCollector{
		queues: make(map[string]*AsyncSink),
		processedDesc: prometheus.NewDesc(
			"log_queue_processed_total",
			"Number of entries written to the wrapped sink",
			[]string{"queue"},
			nil,
		),
		blockedDesc: prometheus.NewDesc(
			"log_queue_blocked_total",
			"Number of entries that hit the block timeout and were written synchronously",
			[]string{"queue"},
			nil,
		),
		writeErrorsDesc: prometheus.NewDesc(
			"log_queue_write_errors_total",
			"Number of entries the wrapped sink failed to write",
			[]string{"queue"},
			nil,
		),
		droppedDesc: prometheus.NewDesc(
			"log_queue_dropped_total",
			"Number of entries dropped by overflow policy, by level",
			[]string{"queue", "level"},
			nil,
		),
		depthDesc: prometheus.NewDesc(
			"log_queue_depth",
			"Current number of entries waiting in the queue",
			[]string{"queue"},
			nil,
		),
		capacityDesc: prometheus.NewDesc(
			"log_queue_capacity",
			"Configured queue capacity",
			[]string{"queue"},
			nil,
		),
	}
}

// Register adds a queue under the given name, replacing any previous
// queue registered with the same name.
func (c *QueueCollector) Register(name string, sink *AsyncSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queues[name] = sink
}

// Describe sends the metric descriptors to the provided channel.
func (c *QueueCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.processedDesc
	ch <- c.blockedDesc
	ch <- c.writeErrorsDesc
	ch <- c.droppedDesc
	ch <- c.depthDesc
	ch <- c.capacityDesc
}

// Collect snapshots every registered queue and sends current values.
func (c *QueueCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for name, sink := range c.queues {
		snap := sink.Stats()

		ch <- prometheus.MustNewConstMetric(
			c.processedDesc,
			prometheus.CounterValue,
			float64(snap.Processed),
			name,
		)
		ch <- prometheus.MustNewConstMetric(
			c.blockedDesc,
			prometheus.CounterValue,
			float64(snap.Blocked),
			name,
		)
		ch <- prometheus.MustNewConstMetric(
			c.writeErrorsDesc,
			prometheus.CounterValue,
			float64(snap.WriteErrors),
			name,
		)
		for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
			ch <- prometheus.MustNewConstMetric(
				c.droppedDesc,
				prometheus.CounterValue,
				float64(snap.Dropped[level]),
				name,
				levelString(level),
			)
		}
		ch <- prometheus.MustNewConstMetric(
			c.depthDesc,
			prometheus.GaugeValue,
			float64(len(sink.queue)),
			name,
		)
		ch <- prometheus.MustNewConstMetric(
			c.capacityDesc,
			prometheus.GaugeValue,
			float64(cap(sink.queue)),
			name,
		)
	}
}
