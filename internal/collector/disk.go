package collector

import (
	"context"

	"github.com/shirou/gopsutil/v4/disk"

	"github.com/prabalesh/aideck/internal/models"
)

func (s *StatsCollector) getStorageStats(ctx context.Context) models.StorageInfo {
	usage, err := disk.UsageWithContext(ctx, s.diskPath)
	if err != nil || usage == nil {
		return models.StorageInfo{}
	}
	return models.StorageInfo{
		Total: usage.Total,
		Used:  usage.Used,
		Free:  usage.Free,
	}
}
