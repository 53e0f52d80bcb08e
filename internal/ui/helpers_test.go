package ui

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/prabalesh/aideck/internal/api"
	"github.com/prabalesh/aideck/internal/backend"
	"github.com/prabalesh/aideck/internal/config"
	"github.com/prabalesh/aideck/internal/logging"
	"github.com/prabalesh/aideck/internal/models"
	"github.com/prabalesh/aideck/internal/store"
	"github.com/prabalesh/aideck/internal/telemetry"
)

func newTestDeps(t *testing.T, baseURL string) *Deps {
	t.Helper()
	streamURL, err := telemetry.StreamURL(baseURL)
	if err != nil {
		t.Fatalf("StreamURL failed: %v", err)
	}
	return &Deps{
		API:             api.NewClient(baseURL, 2*time.Second),
		StreamURL:       streamURL,
		Logger:          logging.Discard(),
		PollInterval:    time.Hour,
		NotificationTTL: 10 * time.Millisecond,
		ChartWindow:     telemetry.DefaultWindow,
		Models:          store.New[[]models.Model](),
		Config:          store.New[models.Config](),
		Now: func() time.Time {
			return time.Date(2025, 2, 23, 15, 4, 5, 0, time.UTC)
		},
	}
}

type staticSampler struct{}

func (staticSampler) SystemInfo(ctx context.Context) models.SystemInfo {
	return models.SystemInfo{
		CPU:    models.CPUInfo{Model: "AMD Ryzen 9 5950X", Cores: 16, Usage: 45, Temperature: 65},
		Memory: models.MemoryInfo{Total: 32 << 30, Used: 16 << 30, Free: 16 << 30},
	}
}

func (staticSampler) Usage(ctx context.Context) (float64, float64, float64) {
	return 45, 50, 30
}

// startBackend runs a reference backend pushing stats every interval.
func startBackend(t *testing.T, interval time.Duration) *httptest.Server {
	t.Helper()
	state, err := backend.NewState(50, "")
	if err != nil {
		t.Fatalf("NewState failed: %v", err)
	}
	cfg := config.DefaultServer()
	cfg.StatsInterval = interval
	srv := backend.NewServer(cfg, state, staticSampler{}, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Run(ctx)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})
	return ts
}

// runCmd executes cmd and flattens batches, returning every message in order.
func runCmd(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("command did not complete")
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(t, c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func runOne(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	msgs := runCmd(t, cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d: %#v", len(msgs), msgs)
	}
	return msgs[0]
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyCtrlS = tea.KeyMsg{Type: tea.KeyCtrlS}
)
