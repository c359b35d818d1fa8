// Package stats records launch counters and latencies in a go-metrics
// registry behind a small StatsReceiver interface, so callers can scope
// names per launcher and render everything as JSON without importing
// go-metrics themselves.
package stats

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
)

// Clock used by Latency. Replaced in tests.
var Time StatsTime = DefaultStatsTime()

// Instrument constructors, replaceable in tests.
var NewCounter func() Counter = newMetricCounter
var NewLatency func() Latency = newLatency

// StatsReceiver hands out named instruments. Names are '/'-joined scope
// elements; a '/' inside an element is written as "_SLASH_".
//
//	stat.Scope("slurm").Counter("launcherExecuteCounter")
//	// is the same instrument as
//	stat.Counter("slurm", "launcherExecuteCounter")
type StatsReceiver interface {
	Scope(scope ...string) StatsReceiver

	// Precision sets the unit Latency values are rendered in. Anything
	// below 1ns means 1ns.
	Precision(time.Duration) StatsReceiver

	Counter(name ...string) Counter
	Latency(name ...string) Latency

	// Render marshals every instrument as a flat JSON object.
	Render(pretty bool) []byte
}

// DefaultStatsReceiver returns a receiver backed by a fresh registry.
func DefaultStatsReceiver() StatsReceiver {
	return &defaultStatsReceiver{
		registry:  newLaunchRegistry(),
		precision: time.Nanosecond,
	}
}

type defaultStatsReceiver struct {
	registry  *launchRegistry
	precision time.Duration
	scope     []string
}

func (s *defaultStatsReceiver) Scope(scope ...string) StatsReceiver {
	return &defaultStatsReceiver{s.registry, s.precision, s.scoped(scope...)}
}

func (s *defaultStatsReceiver) Precision(precision time.Duration) StatsReceiver {
	if precision < 1 {
		precision = 1
	}
	return &defaultStatsReceiver{s.registry, precision, s.scope}
}

func (s *defaultStatsReceiver) Counter(name ...string) Counter {
	return s.registry.GetOrRegister(s.scopedName(name...), NewCounter).(Counter)
}

func (s *defaultStatsReceiver) Latency(name ...string) Latency {
	// go-metrics only calls factories of its own instrument types, so build eagerly.
	return s.registry.GetOrRegister(s.scopedName(name...), NewLatency().Precision(s.precision)).(Latency)
}

func (s *defaultStatsReceiver) Render(pretty bool) []byte {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(s.registry.flatten(), "", "  ")
	} else {
		b, err = json.Marshal(s.registry.flatten())
	}
	if err != nil {
		// flatten only produces numbers.
		panic("stats: registry cannot be marshaled: " + err.Error())
	}
	return b
}

// scoped returns a new slice so sibling scopes never share a backing array.
func (s *defaultStatsReceiver) scoped(scope ...string) []string {
	out := make([]string, 0, len(s.scope)+len(scope))
	out = append(out, s.scope...)
	for _, elem := range scope {
		out = append(out, strings.Replace(elem, "/", "_SLASH_", -1))
	}
	return out
}

func (s *defaultStatsReceiver) scopedName(name ...string) string {
	return strings.Join(s.scoped(name...), "/")
}

// NilStatsReceiver discards everything.
func NilStatsReceiver(scope ...string) StatsReceiver {
	return &nilStatsReceiver{}
}

type nilStatsReceiver struct{}

func (s *nilStatsReceiver) Scope(scope ...string) StatsReceiver             { return s }
func (s *nilStatsReceiver) Precision(precision time.Duration) StatsReceiver { return s }
func (s *nilStatsReceiver) Counter(name ...string) Counter {
	return &metricCounter{&metrics.NilCounter{}}
}
func (s *nilStatsReceiver) Latency(name ...string) Latency { return &nilLatency{} }
func (s *nilStatsReceiver) Render(pretty bool) []byte     { return []byte{} }

// Counter counts events such as launches and failures.
type Counter interface {
	Capture() Counter
	Clear()
	Count() int64
	Inc(int64)
}

type metricCounter struct{ metrics.Counter }

func (m *metricCounter) Capture() Counter { return &metricCounter{m.Snapshot()} }
func newMetricCounter() Counter           { return &metricCounter{metrics.NewCounter()} }

// Latency samples how long something took, e.g. a launched command.
type Latency interface {
	Capture() Latency
	Time() Latency // returns self
	Stop()
	GetPrecision() time.Duration
	Precision(time.Duration) Latency // returns self
}

type metricLatency struct {
	metrics.Histogram
	start     time.Time
	precision time.Duration
}

func newLatency() Latency {
	return &metricLatency{Histogram: metrics.NewHistogram(metrics.NewUniformSample(1000)), precision: time.Nanosecond}
}

func (l *metricLatency) Time() Latency { l.start = Time.Now(); return l }
func (l *metricLatency) Stop()         { l.Update(Time.Since(l.start).Nanoseconds()) }
func (l *metricLatency) Capture() Latency {
	return &metricLatency{l.Histogram.Snapshot(), l.start, l.precision}
}
func (l *metricLatency) GetPrecision() time.Duration { return l.precision }
func (l *metricLatency) Precision(p time.Duration) Latency {
	if p < 1 {
		p = 1
	}
	l.precision = p
	return l
}

type nilLatency struct{}

func (l *nilLatency) Time() Latency                   { return l }
func (l *nilLatency) Stop()                           {}
func (l *nilLatency) Capture() Latency                { return l }
func (l *nilLatency) GetPrecision() time.Duration     { return 0 }
func (l *nilLatency) Precision(time.Duration) Latency { return l }

// launchRegistry renders instruments Finagle style: counters by name,
// latencies as name.avg, name.count, name.p99 and so on.
type launchRegistry struct {
	metrics.Registry
}

func newLaunchRegistry() *launchRegistry {
	return &launchRegistry{metrics.NewRegistry()}
}

var (
	percentiles      = []float64{0.5, 0.9, 0.95, 0.99, 0.999, 0.9999}
	percentileLabels = []string{"p50", "p90", "p95", "p99", "p999", "p9999"}
)

func (r *launchRegistry) flatten() map[string]interface{} {
	data := make(map[string]interface{})
	r.Each(func(name string, i interface{}) {
		switch stat := i.(type) {
		case Counter:
			data[name] = stat.Count()
		case Latency:
			l := stat.Capture().(*metricLatency)
			addLatency(data, name, l, l.GetPrecision())
		default:
			log.Info("Unrecognized stats instrument: ", name, i)
		}
	})
	return data
}

func addLatency(data map[string]interface{}, name string, h metrics.Histogram, precision time.Duration) {
	f64p := float64(precision)
	i64p := int64(precision)
	data[name+".avg"] = h.Mean() / f64p
	data[name+".count"] = h.Count()
	data[name+".max"] = h.Max() / i64p
	data[name+".min"] = h.Min() / i64p
	data[name+".sum"] = h.Sum() / i64p
	for i, p := range h.Percentiles(percentiles) {
		data[name+"."+percentileLabels[i]] = p / f64p
	}
}
