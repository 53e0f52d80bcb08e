package collector

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"

	"github.com/prabalesh/aideck/internal/models"
)

func (s *StatsCollector) getCPUStats(ctx context.Context) models.CPUInfo {
	model, cores := s.getCPUInfo(ctx)
	return models.CPUInfo{
		Model:       model,
		Cores:       cores,
		Usage:       s.getCPUUsage(ctx),
		Temperature: s.getCPUTemperature(),
	}
}

func (s *StatsCollector) getCPUInfo(ctx context.Context) (string, int) {
	if s.cpuCache.IsModelCacheValid() {
		return s.cpuCache.GetCachedModel()
	}

	model, cores := "Unknown CPU", 0
	if content, err := os.ReadFile(filepath.Join(s.procRoot, "cpuinfo")); err == nil {
		model, cores = parseCPUInfo(string(content))
	} else if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		model = infos[0].ModelName
	}
	if cores == 0 {
		if n, err := cpu.CountsWithContext(ctx, true); err == nil {
			cores = n
		}
	}

	s.cpuCache.SetCachedModel(model, cores)
	return model, cores
}

// parseCPUInfo returns the model name and the number of logical processors
// listed in /proc/cpuinfo.
func parseCPUInfo(content string) (string, int) {
	modelName := "Unknown CPU"
	cores := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "processor") {
			cores++
		} else if strings.HasPrefix(line, "model name") && modelName == "Unknown CPU" {
			if parts := strings.SplitN(line, ":", 2); len(parts) == 2 {
				modelName = strings.TrimSpace(parts[1])
			}
		}
	}
	return modelName, cores
}

func (s *StatsCollector) getCPUTemperature() float64 {
	if s.cpuCache.IsTemperatureCacheValid() {
		return s.cpuCache.GetCachedTemperature()
	}

	// Try different temperature sensor paths
	tempPaths := []string{
		"/sys/class/thermal/thermal_zone0/temp",
		"/sys/class/hwmon/hwmon0/temp1_input",
		"/sys/class/hwmon/hwmon1/temp1_input",
	}

	for _, path := range tempPaths {
		if content, err := os.ReadFile(path); err == nil {
			if temp, ok := parseTemperature(string(content)); ok {
				s.cpuCache.SetCachedTemperature(temp)
				return temp
			}
		}
	}
	return 0
}

// parseTemperature reads a sysfs sensor value. Sensors usually report
// millidegrees.
func parseTemperature(content string) (float64, bool) {
	temp, err := strconv.ParseFloat(strings.TrimSpace(content), 64)
	if err != nil {
		return 0, false
	}
	if temp > 1000 {
		return temp / 1000.0, true
	}
	return temp, true
}

func (s *StatsCollector) getCPUUsage(ctx context.Context) float64 {
	content, err := os.ReadFile(filepath.Join(s.procRoot, "stat"))
	if err != nil {
		if percents, perr := cpu.PercentWithContext(ctx, 0, false); perr == nil && len(percents) > 0 {
			return percents[0]
		}
		return 0
	}

	for _, line := range strings.Split(string(content), "\n") {
		if strings.HasPrefix(line, "cpu ") {
			times, ok := parseCPULine(line)
			if !ok {
				return 0
			}
			return s.cpuCache.Advance(times)
		}
	}
	return 0
}

// parseCPULine reads the cumulative jiffies of one /proc/stat cpu line.
func parseCPULine(line string) (CPUTimes, bool) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return CPUTimes{}, false
	}

	// user, nice, system, idle, iowait, irq, softirq
	var times []uint64
	for i := 1; i < len(fields) && i < 8; i++ {
		if val, err := strconv.ParseUint(fields[i], 10, 64); err == nil {
			times = append(times, val)
		}
	}
	if len(times) < 4 {
		return CPUTimes{}, false
	}

	var total, idle uint64
	for i, t := range times {
		total += t
		if i == 3 || i == 4 { // idle and iowait
			idle += t
		}
	}
	return CPUTimes{Total: total, Idle: idle}, true
}
