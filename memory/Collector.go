package memory

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Snapshotter is anything that can report a consistent snapshot of
// memory counters
type Snapshotter interface {
	Snapshot() State
}

// Collector exports the counters of a memory as prometheus gauges.
// All gauges are read from a single Snapshot per collection.
type Collector struct {
	memory Snapshotter

	bufferIndex *prometheus.Desc
	size        *prometheus.Desc
	capacity    *prometheus.Desc
	episodes    *prometheus.Desc
}

// NewCollector returns a new Collector for the argument memory. The
// namespace prefixes every metric name.
func NewCollector(namespace string, m Snapshotter) *Collector {
	name := func(n string) string {
		return prometheus.BuildFQName(namespace, "memory", n)
	}

	return &Collector{
		memory: m,
		bufferIndex: prometheus.NewDesc(name("buffer_index"),
			"Number of timesteps ever written to the memory", nil, nil),
		size: prometheus.NewDesc(name("size"),
			"Number of timesteps holding valid data", nil, nil),
		capacity: prometheus.NewDesc(name("capacity"),
			"Maximum number of timesteps held", nil, nil),
		episodes: prometheus.NewDesc(name("episodes"),
			"Number of episodes ever completed", nil, nil),
	}
}

// Describe implements the prometheus.Collector interface
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.bufferIndex
	ch <- c.size
	ch <- c.capacity
	ch <- c.episodes
}

// Collect implements the prometheus.Collector interface
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.memory.Snapshot()

	ch <- prometheus.MustNewConstMetric(c.bufferIndex, prometheus.GaugeValue,
		float64(s.BufferIndex))
	ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue,
		float64(s.Size()))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue,
		float64(s.Capacity))
	ch <- prometheus.MustNewConstMetric(c.episodes, prometheus.GaugeValue,
		float64(s.EpisodeCount))
}
