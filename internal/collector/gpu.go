package collector

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/prabalesh/aideck/internal/models"
)

const gpuProbeTimeout = 2 * time.Second

// GPUStats is the first GPU reported by nvidia-smi.
type GPUStats struct {
	models.GPUInfo
	Utilization float64
}

var gpuQuery = []string{
	"--query-gpu=name,utilization.gpu,memory.total,memory.used,temperature.gpu",
	"--format=csv,noheader,nounits",
}

func (s *StatsCollector) getGPUStats(ctx context.Context) GPUStats {
	probeCtx, cancel := context.WithTimeout(ctx, gpuProbeTimeout)
	defer cancel()

	out, err := s.run(probeCtx, "nvidia-smi", gpuQuery...)
	if err != nil {
		return GPUStats{GPUInfo: models.GPUInfo{Model: "Not detected"}}
	}
	stats, ok := parseNvidiaSMI(string(out))
	if !ok {
		return GPUStats{GPUInfo: models.GPUInfo{Model: "Not detected"}}
	}
	return stats
}

// parseNvidiaSMI reads the first CSV row of the gpuQuery output. Memory is
// reported in MiB.
func parseNvidiaSMI(out string) (GPUStats, bool) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return GPUStats{}, false
	}
	fields := strings.Split(lines[0], ",")
	if len(fields) < 5 {
		return GPUStats{}, false
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	num := func(s string) float64 {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return v
	}
	const mib = 1024 * 1024
	return GPUStats{
		GPUInfo: models.GPUInfo{
			Model: fields[0],
			Memory: models.GPUMemoryInfo{
				Total: uint64(num(fields[2])) * mib,
				Used:  uint64(num(fields[3])) * mib,
			},
			Temperature: num(fields[4]),
		},
		Utilization: num(fields[1]),
	}, true
}
