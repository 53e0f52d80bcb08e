package sysinfo

import (
	"reflect"
	"testing"

	"github.com/prabalesh/aideck/internal/models"
)

func sampleLogs() []models.LogEntry {
	return []models.LogEntry{
		{Timestamp: "2025-02-23 15:00:00", Level: models.LevelInfo, Message: "System started successfully", Source: "system"},
		{Timestamp: "2025-02-23 15:01:00", Level: models.LevelInfo, Message: "Loaded Mistral model", Source: "model_manager"},
		{Timestamp: "2025-02-23 15:02:00", Level: models.LevelWarning, Message: "High GPU memory usage detected", Source: "resource_monitor"},
		{Timestamp: "2025-02-23 15:03:00", Level: models.LevelError, Message: "Failed to load LLaMA-2 model: insufficient memory", Source: "model_manager"},
		{Timestamp: "2025-02-23 15:04:00", Level: models.LevelError, Message: "Watchdog restart", Source: "ERRand_runner"},
	}
}

func TestFilterLogsEmptyQueryReturnsEverything(t *testing.T) {
	logs := sampleLogs()
	got := FilterLogs(logs, "")
	if !reflect.DeepEqual(got, logs) {
		t.Fatalf("empty query should return the full list")
	}
}

func TestFilterLogsCaseInsensitive(t *testing.T) {
	logs := sampleLogs()
	upper := FilterLogs(logs, "ERR")
	lower := FilterLogs(logs, "err")
	if !reflect.DeepEqual(upper, lower) {
		t.Fatalf("case should not matter: %v vs %v", upper, lower)
	}
	if len(lower) != 1 || lower[0].Source != "ERRand_runner" {
		t.Fatalf("unexpected matches: %+v", lower)
	}
}

func TestFilterLogsMatchesMessageOrSource(t *testing.T) {
	got := FilterLogs(sampleLogs(), "model_manager")
	if len(got) != 2 {
		t.Fatalf("expected source matches, got %+v", got)
	}
	got = FilterLogs(sampleLogs(), "memory")
	if len(got) != 2 {
		t.Fatalf("expected message matches, got %+v", got)
	}
}

func TestFilterLogsIsIdempotentAndPure(t *testing.T) {
	logs := sampleLogs()
	before := sampleLogs()
	once := FilterLogs(logs, "Mistral")
	twice := FilterLogs(once, "Mistral")
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("filter should be idempotent")
	}
	if !reflect.DeepEqual(logs, before) {
		t.Fatalf("input was mutated")
	}
}
