// Package metrics provides lightweight in-process counters for netmcp.
// There is no exposition endpoint: the stdio transport owns stdout, so
// counters surface through the server_stats tool instead.
package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Collector is the process-wide metrics collector.
var Collector = NewCollector()

// MetricsCollector aggregates named counters and gauges.
type MetricsCollector struct {
	counters  sync.Map // name -> *Counter
	gauges    sync.Map // name -> *Gauge
	startTime time.Time
}

func NewCollector() *MetricsCollector {
	return &MetricsCollector{startTime: time.Now()}
}

// Uptime returns how long the collector has been running.
func (c *MetricsCollector) Uptime() time.Duration {
	return time.Since(c.startTime)
}

// Counter is a monotonically increasing counter.
type Counter struct {
	name  string
	help  string
	value atomic.Int64
}

func (c *Counter) Inc()         { c.value.Add(1) }
func (c *Counter) Add(n int64)  { c.value.Add(n) }
func (c *Counter) Value() int64 { return c.value.Load() }

// Gauge is a value that can go up and down.
type Gauge struct {
	name  string
	help  string
	value atomic.Int64
}

func (g *Gauge) Set(v int64)  { g.value.Store(v) }
func (g *Gauge) Inc()         { g.value.Add(1) }
func (g *Gauge) Dec()         { g.value.Add(-1) }
func (g *Gauge) Value() int64 { return g.value.Load() }

// Counter returns or creates a counter with the given name.
func (c *MetricsCollector) Counter(name, help string) *Counter {
	if v, ok := c.counters.Load(name); ok {
		return v.(*Counter)
	}
	ctr := &Counter{name: name, help: help}
	actual, _ := c.counters.LoadOrStore(name, ctr)
	return actual.(*Counter)
}

// Gauge returns or creates a gauge with the given name.
func (c *MetricsCollector) Gauge(name, help string) *Gauge {
	if v, ok := c.gauges.Load(name); ok {
		return v.(*Gauge)
	}
	g := &Gauge{name: name, help: help}
	actual, _ := c.gauges.LoadOrStore(name, g)
	return actual.(*Gauge)
}

// Metric is one entry of a Snapshot.
type Metric struct {
	Name  string `json:"name"`
	Help  string `json:"help"`
	Value int64  `json:"value"`
}

// Snapshot returns all current values sorted by name, plus uptime.
func (c *MetricsCollector) Snapshot() (uptime time.Duration, values []Metric) {
	c.counters.Range(func(_, v any) bool {
		ctr := v.(*Counter)
		values = append(values, Metric{Name: ctr.name, Help: ctr.help, Value: ctr.Value()})
		return true
	})
	c.gauges.Range(func(_, v any) bool {
		g := v.(*Gauge)
		values = append(values, Metric{Name: g.name, Help: g.help, Value: g.Value()})
		return true
	})
	sort.Slice(values, func(i, j int) bool { return values[i].Name < values[j].Name })
	return c.Uptime(), values
}

// Pre-defined metrics used across the pipeline.
var (
	RunsTotal       = Collector.Counter("netmcp_runs_total", "Total dispatched batches")
	DevicesTotal    = Collector.Counter("netmcp_devices_total", "Total per-device executions dispatched")
	FailuresTotal   = Collector.Counter("netmcp_device_failures_total", "Total per-device failures")
	TimeoutsTotal   = Collector.Counter("netmcp_batch_timeouts_total", "Total whole-batch timeouts")
	SecurityRejects = Collector.Counter("netmcp_security_rejections_total", "Total denylist rejections")
	ToolCallsTotal  = Collector.Counter("netmcp_tool_calls_total", "Total MCP tool invocations")
)
