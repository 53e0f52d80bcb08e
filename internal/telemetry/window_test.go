package telemetry

import (
	"fmt"
	"testing"

	"github.com/prabalesh/aideck/internal/models"
)

func TestWindowKeepsMostRecentInArrivalOrder(t *testing.T) {
	for pushes := 0; pushes <= 25; pushes++ {
		w := NewWindow(DefaultWindow)
		for i := 0; i < pushes; i++ {
			w.Push(fmt.Sprintf("t%d", i), models.SystemStats{
				CPUUsage:    float64(i),
				MemoryUsage: float64(i) + 0.5,
				GPUUsage:    float64(i) + 0.25,
			})
		}

		want := min(10, pushes)
		cpu, mem, gpu := w.Series()
		labels := w.Labels()
		if w.Len() != want || len(cpu) != want || len(mem) != want || len(gpu) != want || len(labels) != want {
			t.Fatalf("pushes=%d: lengths cpu=%d mem=%d gpu=%d labels=%d, want %d",
				pushes, len(cpu), len(mem), len(gpu), len(labels), want)
		}
		first := pushes - want
		for i := 0; i < want; i++ {
			if cpu[i] != float64(first+i) || mem[i] != float64(first+i)+0.5 || gpu[i] != float64(first+i)+0.25 {
				t.Fatalf("pushes=%d: sample %d out of order: cpu=%v", pushes, i, cpu)
			}
			if labels[i] != fmt.Sprintf("t%d", first+i) {
				t.Fatalf("pushes=%d: label %d = %s", pushes, i, labels[i])
			}
		}
	}
}

func TestWindowSeriesAreCopies(t *testing.T) {
	w := NewWindow(3)
	w.Push("a", models.SystemStats{CPUUsage: 1})
	cpu, _, _ := w.Series()
	cpu[0] = 99
	again, _, _ := w.Series()
	if again[0] != 1 {
		t.Fatalf("window mutated through returned slice")
	}
}

func TestWindowReset(t *testing.T) {
	w := NewWindow(0)
	if w.Size() != DefaultWindow {
		t.Fatalf("expected default size, got %d", w.Size())
	}
	w.Push("a", models.SystemStats{})
	w.Reset()
	if w.Len() != 0 {
		t.Fatalf("expected empty window after reset")
	}
}
