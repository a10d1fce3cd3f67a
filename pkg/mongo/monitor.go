package mongo

import (
	"context"
	"runtime"
	"time"

	"github.com/shopflow/shopflow-backend/pkg/logger"
)

// Monitor periodically pings the connection and logs memory pressure. It is
// operational tooling only; request handling never waits on it.
type Monitor struct {
	client *Client
	logg   *logger.Logger
	period time.Duration
}

func NewMonitor(client *Client, logg *logger.Logger, period time.Duration) *Monitor {
	if period <= 0 {
		period = 5 * time.Second
	}
	return &Monitor{client: client, logg: logg, period: period}
}

// Run blocks until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

func (m *Monitor) check(ctx context.Context) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	fields := map[string]any{
		"heap_alloc_mb": stats.HeapAlloc / 1024 / 1024,
		"goroutines":    runtime.NumGoroutine(),
	}

	pingCtx, cancel := context.WithTimeout(ctx, m.period)
	err := m.client.Ping(pingCtx)
	cancel()

	if m.logg == nil {
		return
	}
	logCtx := m.logg.WithFields(ctx, fields)
	if err != nil {
		m.logg.Error(logCtx, "mongo.health_check_failed", err)
		return
	}
	m.logg.Info(logCtx, "mongo.health_check")
}
