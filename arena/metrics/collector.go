// Package metrics exports allocator occupancy and operation counters to Prometheus.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshuapare/arenakit/arena"
)

var _ prometheus.Collector = &Collector{}

var (
	pagesDesc = prometheus.NewDesc(
		"arena_pages",
		"Number of arena pages in each state.",
		[]string{"state"}, nil,
	)
	sizeDesc = prometheus.NewDesc(
		"arena_size_bytes",
		"Total size of the arena.",
		nil, nil,
	)
	inUseDesc = prometheus.NewDesc(
		"arena_bytes_in_use",
		"Sum of the size classes of all live allocations.",
		nil, nil,
	)
	opsDesc = prometheus.NewDesc(
		"arena_operations_total",
		"Allocator calls by operation.",
		[]string{"op"}, nil,
	)
	failuresDesc = prometheus.NewDesc(
		"arena_operation_failures_total",
		"Allocator calls that returned an error, by operation.",
		[]string{"op"}, nil,
	)
	reallocDesc = prometheus.NewDesc(
		"arena_reallocs_total",
		"Successful reallocations by outcome.",
		[]string{"outcome"}, nil,
	)
	releasesDesc = prometheus.NewDesc(
		"arena_page_releases_total",
		"Pages returned to free, by what held them.",
		[]string{"kind"}, nil,
	)
)

// Collector reads an allocator on every scrape.
//
// The allocator is not safe for concurrent use, so scrapes take mu, which must be the
// same lock the owner holds around its own allocator calls. A nil mu means the caller
// guarantees scrapes never overlap allocator use.
type Collector struct {
	mu sync.Locker
	a  *arena.Allocator
}

// NewCollector returns a collector for a.
func NewCollector(a *arena.Allocator, mu sync.Locker) *Collector {
	return &Collector{mu: mu, a: a}
}

func (c *Collector) Describe(descs chan<- *prometheus.Desc) {
	descs <- pagesDesc
	descs <- sizeDesc
	descs <- inUseDesc
	descs <- opsDesc
	descs <- failuresDesc
	descs <- reallocDesc
	descs <- releasesDesc
}

func (c *Collector) Collect(metrics chan<- prometheus.Metric) {
	if c.mu != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
	}
	s := c.a.Stats()
	cfg := c.a.Config()

	gauge := func(d *prometheus.Desc, v int, labels ...string) {
		metrics <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v), labels...)
	}
	counter := func(d *prometheus.Desc, v int, labels ...string) {
		metrics <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}

	gauge(pagesDesc, s.FreePages, arena.PageFree.String())
	gauge(pagesDesc, s.DividedPages, arena.PageDivided.String())
	gauge(pagesDesc, s.SpanPages, arena.PageSpan.String())
	gauge(sizeDesc, cfg.ArenaSize())
	gauge(inUseDesc, s.BytesInUse)

	counter(opsDesc, s.AllocCalls, "alloc")
	counter(opsDesc, s.FreeCalls, "free")
	counter(opsDesc, s.ReallocCalls, "realloc")
	counter(failuresDesc, s.AllocFailures, "alloc")
	counter(failuresDesc, s.FreeFailures, "free")
	counter(failuresDesc, s.ReallocFailures, "realloc")
	counter(reallocDesc, s.ReallocInPlace, "in_place")
	counter(reallocDesc, s.ReallocMoved, "moved")
	counter(releasesDesc, s.Coalesces, "divided")
	counter(releasesDesc, s.SpanReleases, "span")
}
