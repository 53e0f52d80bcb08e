// Package collector samples the host the reference backend runs on.
package collector

import (
	"context"
	"os/exec"

	"github.com/prabalesh/aideck/internal/models"
)

// CommandRunner runs an external probe and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// StatsCollector reads CPU and memory from /proc (falling back to gopsutil
// elsewhere), storage through gopsutil and GPU through nvidia-smi.
type StatsCollector struct {
	procRoot string
	diskPath string
	run      CommandRunner
	cpuCache *CPUCache
}

func NewStatsCollector(diskPath string) *StatsCollector {
	if diskPath == "" {
		diskPath = "/"
	}
	return &StatsCollector{
		procRoot: "/proc",
		diskPath: diskPath,
		run:      execCommand,
		cpuCache: NewCPUCache(),
	}
}

// SystemInfo builds the full hardware snapshot.
func (s *StatsCollector) SystemInfo(ctx context.Context) models.SystemInfo {
	return models.SystemInfo{
		CPU:     s.getCPUStats(ctx),
		Memory:  s.getMemoryStats(ctx),
		GPU:     s.getGPUStats(ctx).GPUInfo,
		Storage: s.getStorageStats(ctx),
	}
}

// Usage returns the three percentages pushed on the telemetry feed.
func (s *StatsCollector) Usage(ctx context.Context) (cpu, memory, gpu float64) {
	cpu = s.getCPUUsage(ctx)
	mem := s.getMemoryStats(ctx)
	memory = models.UsedPercent(mem.Used, mem.Total)
	gpu = s.getGPUStats(ctx).Utilization
	return cpu, memory, gpu
}

func execCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
