package ui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/prabalesh/aideck/internal/api"
	"github.com/prabalesh/aideck/internal/models"
	"github.com/prabalesh/aideck/internal/store"
)

// Deps is everything a screen needs from the outside. The stores are shared
// across mounts; screens acquire them on mount and release them on unmount.
type Deps struct {
	API             *api.Client
	StreamURL       string
	Logger          *slog.Logger
	PollInterval    time.Duration
	NotificationTTL time.Duration
	ChartWindow     int
	Models          *store.Store[[]models.Model]
	Config          *store.Store[models.Config]
	Now             func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// screen is one routed view. A screen instance lives for exactly one mount:
// Mount starts its async work and Unmount stops it for good. Results that
// arrive after Unmount, or that were issued by another mount, are dropped.
type screen interface {
	Mount() tea.Cmd
	Unmount()
	Update(msg tea.Msg) tea.Cmd
	View(width int) string
	// Capturing reports whether a text field owns the keyboard, in which case
	// global shortcuts other than ctrl+c are not applied.
	Capturing() bool
	KeyBindings() []key.Binding
}

// generation identifies one mount. Async messages carry the generation of
// the mount that issued them.
type generation uint64
