package collector

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/mem"

	"github.com/prabalesh/aideck/internal/models"
)

func (s *StatsCollector) getMemoryStats(ctx context.Context) models.MemoryInfo {
	content, err := os.ReadFile(filepath.Join(s.procRoot, "meminfo"))
	if err != nil {
		vm, verr := mem.VirtualMemoryWithContext(ctx)
		if verr != nil {
			return models.MemoryInfo{}
		}
		return models.MemoryInfo{Total: vm.Total, Used: vm.Used, Free: vm.Available}
	}
	return parseMemInfo(string(content))
}

// parseMemInfo derives total/used/free bytes from /proc/meminfo. Used is
// total minus available so page cache is not counted as used.
func parseMemInfo(content string) models.MemoryInfo {
	memInfo := make(map[string]uint64)
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			key := strings.TrimSuffix(fields[0], ":")
			value, err := strconv.ParseUint(fields[1], 10, 64)
			if err == nil {
				memInfo[key] = value * 1024 // Convert from KB to bytes
			}
		}
	}

	total := memInfo["MemTotal"]
	available, ok := memInfo["MemAvailable"]
	if !ok {
		available = memInfo["MemFree"]
	}
	if available > total {
		available = total
	}
	return models.MemoryInfo{
		Total: total,
		Used:  total - available,
		Free:  available,
	}
}
