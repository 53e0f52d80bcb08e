package telemetry

import "github.com/prabalesh/aideck/internal/models"

// DefaultWindow is the number of samples kept for charting.
const DefaultWindow = 10

// LabelLayout formats the client wall-clock time used as the chart axis.
const LabelLayout = "15:04:05"

// Window keeps the most recent samples as three parallel series sharing one
// label axis. All series are appended and trimmed together, so they always
// have the same length.
type Window struct {
	size   int
	labels []string
	cpu    []float64
	memory []float64
	gpu    []float64
}

func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindow
	}
	return &Window{size: size}
}

// Push appends one sample and evicts the oldest once the window is full.
func (w *Window) Push(label string, s models.SystemStats) {
	w.labels = trim(append(w.labels, label), w.size)
	w.cpu = trim(append(w.cpu, s.CPUUsage), w.size)
	w.memory = trim(append(w.memory, s.MemoryUsage), w.size)
	w.gpu = trim(append(w.gpu, s.GPUUsage), w.size)
}

func (w *Window) Len() int {
	return len(w.labels)
}

func (w *Window) Size() int {
	return w.size
}

func (w *Window) Labels() []string {
	return append([]string(nil), w.labels...)
}

// Series returns copies of the CPU, memory and GPU series in arrival order.
func (w *Window) Series() (cpu, memory, gpu []float64) {
	return append([]float64(nil), w.cpu...),
		append([]float64(nil), w.memory...),
		append([]float64(nil), w.gpu...)
}

// Reset empties the window.
func (w *Window) Reset() {
	w.labels, w.cpu, w.memory, w.gpu = nil, nil, nil, nil
}

func trim[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	// Copy down so the backing array does not grow without bound.
	out := s[:n]
	copy(out, s[len(s)-n:])
	return out
}
