package scanner

import (
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// LoadMonitor samples system CPU and memory pressure so the scan worker
// pool can back off when the host is busy. Samples are cached briefly to
// keep the hot path cheap.
type LoadMonitor struct {
	mu          sync.Mutex
	cpuUsage    float64
	memoryUsage float64
	sampledAt   time.Time
	ttl         time.Duration
}

// NewLoadMonitor creates a load monitor with a 3 second sample cache.
func NewLoadMonitor() *LoadMonitor {
	return &LoadMonitor{ttl: 3 * time.Second}
}

func (m *LoadMonitor) sample() {
	if time.Since(m.sampledAt) < m.ttl {
		return
	}
	m.sampledAt = time.Now()

	// Non-blocking percentage since the previous call; errors leave the
	// previous sample in place.
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		m.cpuUsage = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		m.memoryUsage = vm.UsedPercent
	}
}

// LoadScore returns a 0-100 score where higher means more loaded, weighing
// CPU over memory.
func (m *LoadMonitor) LoadScore() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sample()

	score := m.cpuUsage*0.7 + m.memoryUsage*0.3
	if score > 100 {
		score = 100
	}
	return int(score)
}

// RecommendedWorkers shrinks the base worker bound to half (never below
// one) while the load score sits at or above the given ceiling.
func (m *LoadMonitor) RecommendedWorkers(base, loadScoreLimit int) int {
	if base < 1 {
		base = 1
	}
	if loadScoreLimit <= 0 || m.LoadScore() < loadScoreLimit {
		return base
	}

	reduced := base / 2
	if reduced < 1 {
		reduced = 1
	}
	return reduced
}
