package ui

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prabalesh/aideck/internal/api"
	"github.com/prabalesh/aideck/internal/models"
)

type registryServer struct {
	mu       sync.Mutex
	gets     int
	posts    []map[string]any
	failPost bool
}

func (s *registryServer) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		switch {
		case r.Method == http.MethodGet && r.URL.Path == api.PathModels:
			s.gets++
			_, _ = w.Write([]byte(`[{"id":"mistral","name":"Mistral","type":"local","status":"active"},{"id":"gpt4","name":"GPT-4","type":"cloud","status":"available"}]`))
		case r.Method == http.MethodPost && r.URL.Path == api.PathConfig:
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			s.posts = append(s.posts, body)
			if s.failPost {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(`{"status":"success"}`))
		default:
			http.NotFound(w, r)
		}
	})
}

func (s *registryServer) getCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

func mountModels(t *testing.T, rs *registryServer) *modelsScreen {
	t.Helper()
	ts := httptest.NewServer(rs.handler(t))
	t.Cleanup(ts.Close)

	m := newModelsScreen(newTestDeps(t, ts.URL), 1)
	m.Update(runOne(t, m.Mount()))
	if len(m.list) != 2 {
		t.Fatalf("expected 2 models after mount, got %d", len(m.list))
	}
	t.Cleanup(m.Unmount)
	return m
}

func TestConfigureModelClosesDialogAndRefreshesOnce(t *testing.T) {
	rs := &registryServer{}
	m := mountModels(t, rs)

	m.Update(keyEnter)
	if m.dialog == nil || m.dialog.config.Name != "Mistral" || m.dialog.apiKey.Value() != "" {
		t.Fatalf("dialog not opened with model defaults: %+v", m.dialog)
	}
	m.Update(keySpace)
	if m.dialog.config.Type != models.ModelCloud {
		t.Fatalf("expected type cloud after toggle, got %s", m.dialog.config.Type)
	}
	m.Update(keyTab)
	m.Update(keyRunes("sk-1"))

	saved := runOne(t, m.Update(keyEnter))
	refresh := m.Update(saved)
	if m.dialog != nil {
		t.Fatalf("dialog still open after successful save")
	}
	if refresh == nil {
		t.Fatalf("expected a list refresh after saving")
	}
	m.Update(runOne(t, refresh))

	if got := rs.getCount(); got != 2 {
		t.Fatalf("expected exactly one extra list request, got %d total", got)
	}
	if len(rs.posts) != 1 {
		t.Fatalf("expected one submission, got %d", len(rs.posts))
	}
	body := rs.posts[0]
	if body["model"] != "mistral" || body["name"] != "Mistral" || body["type"] != "cloud" || body["apiKey"] != "sk-1" {
		t.Fatalf("unexpected submission: %+v", body)
	}
}

func TestConfigureModelFailureKeepsDialogOpen(t *testing.T) {
	rs := &registryServer{failPost: true}
	m := mountModels(t, rs)

	m.Update(keyEnter)
	saved := runOne(t, m.Update(keyEnter))
	if cmd := m.Update(saved); cmd != nil {
		t.Fatalf("expected no refresh after a failed save")
	}
	if m.dialog == nil || m.dialog.err == "" || m.dialog.saving {
		t.Fatalf("expected dialog open with an error, got %+v", m.dialog)
	}
	if got := rs.getCount(); got != 1 {
		t.Fatalf("list refreshed after a failed save: %d requests", got)
	}
	if _, present := rs.posts[0]["apiKey"]; present {
		t.Fatalf("local model submission carried an api key: %+v", rs.posts[0])
	}
}

func TestDialogCancelDiscardsEdits(t *testing.T) {
	rs := &registryServer{}
	m := mountModels(t, rs)

	m.Update(keyEnter)
	m.Update(keySpace)
	if cmd := m.Update(keyEsc); cmd != nil {
		t.Fatalf("cancel should not issue commands")
	}
	if m.dialog != nil {
		t.Fatalf("dialog still open after cancel")
	}
	if len(rs.posts) != 0 {
		t.Fatalf("cancel submitted the dialog")
	}

	m.Update(keyEnter)
	if m.dialog.config.Type != models.ModelLocal {
		t.Fatalf("reopened dialog kept discarded edits: %+v", m.dialog.config)
	}
}

func TestTypeToggleKeepsKeyBuffer(t *testing.T) {
	d := newModelDialog(models.Model{ID: "gpt4", Name: "GPT-4", Type: models.ModelCloud})
	d.keyFocus = true
	d.apiKey.Focus()
	d.apiKey.SetValue("abc")

	d.toggleType()
	if d.config.Type != models.ModelLocal || d.keyFocus {
		t.Fatalf("expected local type with focus on type field, got %+v focus=%v", d.config, d.keyFocus)
	}
	if got := d.submission().Payload().APIKey; got != "" {
		t.Fatalf("local payload carried api key %q", got)
	}

	d.toggleType()
	if got := d.submission().APIKey; got != "abc" {
		t.Fatalf("key buffer lost across type changes: %q", got)
	}
}

func TestModelListFailureKeepsRegistry(t *testing.T) {
	rs := &registryServer{}
	m := mountModels(t, rs)

	m.Update(modelsLoadedMsg{gen: 1, seq: m.deps.Models.Begin(), err: errors.New("down")})
	if len(m.list) != 2 {
		t.Fatalf("registry changed after failed fetch: %+v", m.list)
	}

	newer := m.deps.Models.Begin()
	older := newer - 1
	m.Update(modelsLoadedMsg{gen: 1, seq: newer, list: []models.Model{{ID: "a"}}})
	m.Update(modelsLoadedMsg{gen: 1, seq: older, list: []models.Model{{ID: "b"}, {ID: "c"}}})
	if len(m.list) != 1 || m.list[0].ID != "a" {
		t.Fatalf("older response overwrote newer one: %+v", m.list)
	}
}

func TestModelsReleaseStoreOnUnmount(t *testing.T) {
	rs := &registryServer{}
	ts := httptest.NewServer(rs.handler(t))
	defer ts.Close()

	deps := newTestDeps(t, ts.URL)
	m := newModelsScreen(deps, 1)
	msg := runOne(t, m.Mount())
	if deps.Models.Refs() != 1 {
		t.Fatalf("expected one holder, got %d", deps.Models.Refs())
	}
	m.Unmount()
	m.Update(msg)
	if len(m.list) != 0 {
		t.Fatalf("result applied after unmount")
	}
	if deps.Models.Refs() != 0 {
		t.Fatalf("store still held after unmount")
	}
	if _, ok := deps.Models.Get(); ok {
		t.Fatalf("store kept a value with no holders")
	}
}
