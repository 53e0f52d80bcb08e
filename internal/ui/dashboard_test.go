package ui

import (
	"testing"
	"time"

	"github.com/prabalesh/aideck/internal/models"
)

func TestDashboardDropsStatsAfterUnmount(t *testing.T) {
	deps := newTestDeps(t, "http://127.0.0.1:1")
	d := newDashboard(deps, 7)
	d.Mount()

	d.Update(statsMsg{gen: 7, stats: models.SystemStats{CPUUsage: 10, ActiveModel: "mistral"}})
	if d.window.Len() != 1 || d.latest.CPUUsage != 10 {
		t.Fatalf("expected one sample, got len=%d latest=%+v", d.window.Len(), d.latest)
	}

	d.Update(statsMsg{gen: 6, stats: models.SystemStats{CPUUsage: 99}})
	if d.window.Len() != 1 {
		t.Fatalf("sample from another mount was applied")
	}

	d.Unmount()
	d.Update(statsMsg{gen: 7, stats: models.SystemStats{CPUUsage: 20}})
	if d.window.Len() != 1 || d.latest.CPUUsage != 10 {
		t.Fatalf("state changed after unmount: len=%d latest=%+v", d.window.Len(), d.latest)
	}
	labels := d.window.Labels()
	if labels[0] != "15:04:05" {
		t.Fatalf("unexpected label %q", labels[0])
	}
}

func TestDashboardStreamsFromBackend(t *testing.T) {
	ts := startBackend(t, 20*time.Millisecond)
	deps := newTestDeps(t, ts.URL)
	d := newDashboard(deps, 1)

	opened, ok := runOne(t, d.Mount()).(channelOpenedMsg)
	if !ok || opened.err != nil {
		t.Fatalf("expected open subscription, got %#v", opened)
	}
	wait := d.Update(opened)
	if wait == nil {
		t.Fatalf("expected a wait command after opening")
	}

	for i := 0; i < 3; i++ {
		msg := runOne(t, wait)
		stats, ok := msg.(statsMsg)
		if !ok {
			t.Fatalf("expected statsMsg, got %#v", msg)
		}
		wait = d.Update(stats)
	}
	if d.window.Len() != 3 {
		t.Fatalf("expected 3 samples, got %d", d.window.Len())
	}
	if d.latest.ActiveModel != "mistral" || d.latest.CPUUsage != 45 {
		t.Fatalf("unexpected latest sample: %+v", d.latest)
	}

	d.Unmount()
	if _, ok := runOne(t, wait).(channelClosedMsg); !ok {
		t.Fatalf("expected subscription to end after unmount")
	}
}

func TestDashboardUnmountBeforeDialCompletes(t *testing.T) {
	ts := startBackend(t, time.Hour)
	deps := newTestDeps(t, ts.URL)
	d := newDashboard(deps, 1)

	cmd := d.Mount()
	d.Unmount()

	msg := runOne(t, cmd)
	if cmd := d.Update(msg); cmd != nil {
		t.Fatalf("expected no follow-up command after unmount, got %#v", msg)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.channel != nil {
		t.Fatalf("subscription attached to an unmounted screen")
	}
}

func TestSparklinePinsOutOfRangeValues(t *testing.T) {
	got := sparkline([]float64{-5, 0, 50, 100, 150})
	if got != "▁▁▄██" {
		t.Fatalf("unexpected sparkline %q", got)
	}
}
