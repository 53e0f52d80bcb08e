package models

// SystemStats is one push sample from the system_stats feed. Each sample
// replaces the previous one entirely.
type SystemStats struct {
	CPUUsage          float64 `json:"cpu_usage"`
	MemoryUsage       float64 `json:"memory_usage"`
	GPUUsage          float64 `json:"gpu_usage"`
	ActiveModel       string  `json:"active_model"`
	RequestsPerMinute int     `json:"requests_per_minute"`
}

// SystemInfo is the pulled hardware snapshot served by /api/system/info.
type SystemInfo struct {
	CPU     CPUInfo     `json:"cpu"`
	Memory  MemoryInfo  `json:"memory"`
	GPU     GPUInfo     `json:"gpu"`
	Storage StorageInfo `json:"storage"`
}

type CPUInfo struct {
	Model       string  `json:"model"`
	Cores       int     `json:"cores"`
	Usage       float64 `json:"usage"`
	Temperature float64 `json:"temperature"`
}

type MemoryInfo struct {
	Total uint64 `json:"total"`
	Used  uint64 `json:"used"`
	Free  uint64 `json:"free"`
}

type GPUInfo struct {
	Model       string        `json:"model"`
	Memory      GPUMemoryInfo `json:"memory"`
	Temperature float64       `json:"temperature"`
}

type GPUMemoryInfo struct {
	Total uint64 `json:"total"`
	Used  uint64 `json:"used"`
}

type StorageInfo struct {
	Total uint64 `json:"total"`
	Used  uint64 `json:"used"`
	Free  uint64 `json:"free"`
}

// UsedPercent returns used/total*100, treating a zero total as 1.
func UsedPercent(used, total uint64) float64 {
	if total == 0 {
		total = 1
	}
	return float64(used) / float64(total) * 100
}
