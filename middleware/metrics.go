package middleware

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/gin-gonic/gin"
)

// Latencies are recorded in microseconds between 1µs and one minute.
const (
	minLatencyMicros = 1
	maxLatencyMicros = int64(time.Minute / time.Microsecond)
	sigFigs          = 3
)

// RouteStats summarizes the latency of one route.
type RouteStats struct {
	Route  string  `json:"route"`
	Count  int64   `json:"count"`
	MeanMs float64 `json:"mean_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
	MaxMs  float64 `json:"max_ms"`
}

// LatencyRecorder keeps one histogram per "METHOD /route" key.
type LatencyRecorder struct {
	mu     sync.Mutex
	routes map[string]*hdrhistogram.Histogram
}

func NewLatencyRecorder() *LatencyRecorder {
	return &LatencyRecorder{routes: make(map[string]*hdrhistogram.Histogram)}
}

// Middleware records the latency of every request that matched a route.
func (l *LatencyRecorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if route := c.FullPath(); route != "" {
			l.Record(c.Request.Method+" "+route, time.Since(start))
		}
	}
}

// Record adds one observation. Values outside the histogram range are
// clamped.
func (l *LatencyRecorder) Record(key string, d time.Duration) {
	v := d.Microseconds()
	if v < minLatencyMicros {
		v = minLatencyMicros
	}
	if v > maxLatencyMicros {
		v = maxLatencyMicros
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.routes[key]
	if !ok {
		h = hdrhistogram.New(minLatencyMicros, maxLatencyMicros, sigFigs)
		l.routes[key] = h
	}
	_ = h.RecordValue(v)
}

// Snapshot returns stats for every route, sorted by route.
func (l *LatencyRecorder) Snapshot() []RouteStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := make([]RouteStats, 0, len(l.routes))
	for route, h := range l.routes {
		stats = append(stats, RouteStats{
			Route:  route,
			Count:  h.TotalCount(),
			MeanMs: h.Mean() / 1000,
			P50Ms:  float64(h.ValueAtQuantile(50)) / 1000,
			P95Ms:  float64(h.ValueAtQuantile(95)) / 1000,
			P99Ms:  float64(h.ValueAtQuantile(99)) / 1000,
			MaxMs:  float64(h.Max()) / 1000,
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Route < stats[j].Route })
	return stats
}
