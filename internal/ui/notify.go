package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type noticeKind int

const (
	noticeSuccess noticeKind = iota
	noticeError
)

// notifyMsg asks the app to show a banner.
type notifyMsg struct {
	kind noticeKind
	text string
}

type dismissNoticeMsg struct {
	id int
}

func notify(kind noticeKind, text string) tea.Cmd {
	return func() tea.Msg { return notifyMsg{kind: kind, text: text} }
}

// notifier holds at most one banner. A newer banner replaces the older one,
// and a dismissal only removes the banner it was scheduled for.
type notifier struct {
	ttl    time.Duration
	nextID int
	active *notice
}

type notice struct {
	id   int
	kind noticeKind
	text string
}

func (n *notifier) show(kind noticeKind, text string) tea.Cmd {
	n.nextID++
	id := n.nextID
	n.active = &notice{id: id, kind: kind, text: text}
	return tea.Tick(n.ttl, func(time.Time) tea.Msg {
		return dismissNoticeMsg{id: id}
	})
}

func (n *notifier) dismiss(id int) {
	if n.active != nil && n.active.id == id {
		n.active = nil
	}
}

func (n *notifier) view() string {
	if n.active == nil {
		return ""
	}
	if n.active.kind == noticeError {
		return ErrorBannerStyle.Render("✗ " + n.active.text)
	}
	return SuccessBannerStyle.Render("✓ " + n.active.text)
}
