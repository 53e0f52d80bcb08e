package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prabalesh/aideck/internal/models"
)

func TestListModels(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathModels || r.Method != http.MethodGet {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Fatalf("missing request id header")
		}
		_, _ = w.Write([]byte(`[{"id":"mistral","name":"Mistral","type":"local","status":"active"},{"id":"gpt4","name":"GPT-4","type":"cloud","status":"available"}]`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 2*time.Second)
	list, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(list) != 2 || list[1].Type != models.ModelCloud || list[0].Status != models.StatusActive {
		t.Fatalf("unexpected models: %+v", list)
	}
}

func TestConfigureModelDropsKeyForLocalModels(t *testing.T) {
	var bodies []map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathConfig || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("missing content type")
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		bodies = append(bodies, body)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 2*time.Second)
	if err := client.ConfigureModel(context.Background(), models.ModelConfig{Model: "llama2", Name: "LLaMA-2", Type: models.ModelLocal, APIKey: "leftover"}); err != nil {
		t.Fatalf("ConfigureModel local failed: %v", err)
	}
	if err := client.ConfigureModel(context.Background(), models.ModelConfig{Model: "gpt4", Name: "GPT-4", Type: models.ModelCloud, APIKey: "sk-test"}); err != nil {
		t.Fatalf("ConfigureModel cloud failed: %v", err)
	}

	if _, ok := bodies[0]["apiKey"]; ok {
		t.Fatalf("local model payload must not carry apiKey: %v", bodies[0])
	}
	if bodies[0]["model"] != "llama2" || bodies[0]["type"] != "local" {
		t.Fatalf("unexpected local payload: %v", bodies[0])
	}
	if bodies[1]["apiKey"] != "sk-test" {
		t.Fatalf("cloud payload must carry apiKey: %v", bodies[1])
	}
}

func TestSaveConfigSendsWholeDocument(t *testing.T) {
	var got models.Config
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	cfg := models.DefaultConfig()
	cfg.AIBackend = models.BackendHybrid
	cfg.APIKeys.Anthropic = "ak"
	cfg.SystemSettings.PerformanceMode = models.ModePowerSaving

	client := NewClient(ts.URL, 2*time.Second)
	if err := client.SaveConfig(context.Background(), cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if got != cfg {
		t.Fatalf("expected whole document, got %+v", got)
	}
}

func TestStatusErrorCarriesCodeAndBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend exploded", http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 2*time.Second)
	_, err := client.GetConfig(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if StatusCode(err) != http.StatusInternalServerError {
		t.Fatalf("unexpected status code from %v", err)
	}
	if !strings.Contains(err.Error(), "backend exploded") {
		t.Fatalf("expected body snippet in %v", err)
	}
	if IsTransport(err) {
		t.Fatalf("status error must not be classified as transport")
	}
}

func TestTransportError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := client.GetSystemInfo(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestDecodeSystemInfoAndLogs(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathSystemInfo:
			_, _ = w.Write([]byte(`{"cpu":{"model":"AMD Ryzen 9 5950X","cores":16,"usage":45,"temperature":65},"memory":{"total":34359738368,"used":17179869184,"free":17179869184},"gpu":{"model":"NVIDIA RTX 4090","memory":{"total":25769803776,"used":8589934592},"temperature":70},"storage":{"total":1099511627776,"used":549755813888,"free":549755813888}}`))
		case PathSystemLogs:
			_, _ = w.Write([]byte(`[{"timestamp":"2025-02-23 15:00:00","level":"info","message":"System started successfully","source":"system"}]`))
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	client := NewClient(ts.URL+"/", 2*time.Second)
	info, err := client.GetSystemInfo(context.Background())
	if err != nil {
		t.Fatalf("GetSystemInfo failed: %v", err)
	}
	if info.CPU.Cores != 16 || info.GPU.Memory.Used != 8589934592 || info.Storage.Total != 1099511627776 {
		t.Fatalf("unexpected info: %+v", info)
	}
	logs, err := client.GetSystemLogs(context.Background())
	if err != nil {
		t.Fatalf("GetSystemLogs failed: %v", err)
	}
	if len(logs) != 1 || logs[0].Level != models.LevelInfo {
		t.Fatalf("unexpected logs: %+v", logs)
	}
}
