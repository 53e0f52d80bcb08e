package collector

import (
	"sync"
	"time"
)

// cache durations
const (
	ModelCacheDuration       = 24 * time.Hour
	TemperatureCacheDuration = 5 * time.Second
)

// CPU Time Statistics
type CPUTimes struct {
	Total uint64
	Idle  uint64
}

// CPUCache holds CPU facts that are expensive or noisy to re-read, plus the
// previous /proc/stat reading used for usage deltas.
type CPUCache struct {
	// static info (rarely changes)
	model     string
	cores     int
	modelTime time.Time

	// Temperature cache (changes frequently but can be cached briefly)
	temperature     float64
	temperatureTime time.Time

	previousTimes CPUTimes
	hasPrevious   bool
	lastUsage     float64

	mutex sync.RWMutex
}

func NewCPUCache() *CPUCache {
	return &CPUCache{}
}

func (c *CPUCache) IsModelCacheValid() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.model != "" && time.Since(c.modelTime) < ModelCacheDuration
}

func (c *CPUCache) IsTemperatureCacheValid() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.temperature != 0 && time.Since(c.temperatureTime) < TemperatureCacheDuration
}

func (c *CPUCache) GetCachedModel() (string, int) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.model, c.cores
}

func (c *CPUCache) SetCachedModel(model string, cores int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.model = model
	c.cores = cores
	c.modelTime = time.Now()
}

func (c *CPUCache) GetCachedTemperature() float64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.temperature
}

func (c *CPUCache) SetCachedTemperature(temp float64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.temperature = temp
	c.temperatureTime = time.Now()
}

// Advance records a new cumulative reading and returns the usage over the
// interval since the previous one. The first reading has no interval, so
// usage since boot is returned instead.
func (c *CPUCache) Advance(cur CPUTimes) float64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	prev, ok := c.previousTimes, c.hasPrevious
	c.previousTimes = cur
	c.hasPrevious = true

	if !ok {
		c.lastUsage = usageOf(cur.Total, cur.Idle)
		return c.lastUsage
	}
	if cur.Total <= prev.Total {
		// No time elapsed between readings; repeat the last value.
		return c.lastUsage
	}
	idle := uint64(0)
	if cur.Idle > prev.Idle {
		idle = cur.Idle - prev.Idle
	}
	c.lastUsage = usageOf(cur.Total-prev.Total, idle)
	return c.lastUsage
}

func usageOf(total, idle uint64) float64 {
	if total == 0 {
		return 0
	}
	if idle > total {
		idle = total
	}
	return float64(total-idle) / float64(total) * 100
}
