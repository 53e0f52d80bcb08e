package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prabalesh/aideck/internal/models"
)

// ErrUnknownModel is returned when a per-model configuration names a model
// that is not in the registry.
var ErrUnknownModel = errors.New("unknown model")

const logTimeLayout = "2006-01-02 15:04:05"

// State is the backend's in-memory view: one configuration document, the
// model registry and a bounded log buffer. Writers never merge; the last
// write wins.
type State struct {
	mu          sync.RWMutex
	config      models.Config
	registry    []models.Model
	logs        []models.LogEntry
	logLimit    int
	storagePath string
	now         func() time.Time
}

func NewState(logLimit int, storagePath string) (*State, error) {
	if logLimit <= 0 {
		logLimit = 500
	}
	s := &State{
		config:      seedConfig(),
		registry:    seedModels(),
		logs:        seedLogs(),
		logLimit:    logLimit,
		storagePath: storagePath,
		now:         time.Now,
	}
	if storagePath != "" {
		if err := s.load(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func seedConfig() models.Config {
	cfg := models.DefaultConfig()
	cfg.Model = "mistral"
	cfg.APIKeys = models.APIKeys{OpenAI: "****", Anthropic: "****"}
	return cfg
}

func seedModels() []models.Model {
	return []models.Model{
		{ID: "mistral", Name: "Mistral", Type: models.ModelLocal, Status: models.StatusActive},
		{ID: "llama2", Name: "LLaMA-2", Type: models.ModelLocal, Status: models.StatusInstalled},
		{ID: "gpt4", Name: "GPT-4", Type: models.ModelCloud, Status: models.StatusAvailable},
		{ID: "claude", Name: "Claude", Type: models.ModelCloud, Status: models.StatusAvailable},
	}
}

func seedLogs() []models.LogEntry {
	return []models.LogEntry{
		{Timestamp: "2025-02-23 15:00:00", Level: models.LevelInfo, Message: "System started successfully", Source: "system"},
		{Timestamp: "2025-02-23 15:01:00", Level: models.LevelInfo, Message: "Loaded Mistral model", Source: "model_manager"},
		{Timestamp: "2025-02-23 15:02:00", Level: models.LevelWarning, Message: "High GPU memory usage detected", Source: "resource_monitor"},
		{Timestamp: "2025-02-23 15:03:00", Level: models.LevelError, Message: "Failed to load LLaMA-2 model: insufficient memory", Source: "model_manager"},
	}
}

func (s *State) Config() models.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// ReplaceConfig overwrites the whole document and persists it when a
// storage path is configured.
func (s *State) ReplaceConfig(cfg models.Config) error {
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()

	s.AppendLog(models.LevelInfo, "config", "Configuration updated")
	return s.save(cfg)
}

func (s *State) Models() []models.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Model(nil), s.registry...)
}

// ConfigureModel applies a per-model configuration to the registry entry.
func (s *State) ConfigureModel(mc models.ModelConfig) error {
	s.mu.Lock()
	idx := -1
	for i, m := range s.registry {
		if m.ID == mc.Model {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownModel, mc.Model)
	}
	if mc.Name != "" {
		s.registry[idx].Name = mc.Name
	}
	s.registry[idx].Type = mc.Type
	name := s.registry[idx].Name
	s.mu.Unlock()

	s.AppendLog(models.LevelInfo, "model_manager", fmt.Sprintf("Configured %s as %s model", name, mc.Type))
	return nil
}

// ActiveModel returns the id of the first active model, or "".
func (s *State) ActiveModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.registry {
		if m.Status == models.StatusActive {
			return m.ID
		}
	}
	return ""
}

func (s *State) Logs() []models.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.LogEntry(nil), s.logs...)
}

// AppendLog adds an entry, evicting the oldest once the buffer is full.
func (s *State) AppendLog(level models.Level, source, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, models.LogEntry{
		Timestamp: s.now().Format(logTimeLayout),
		Level:     level,
		Message:   message,
		Source:    source,
	})
	if over := len(s.logs) - s.logLimit; over > 0 {
		s.logs = append([]models.LogEntry(nil), s.logs[over:]...)
	}
}

func (s *State) load() error {
	data, err := os.ReadFile(s.storagePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config document: %w", err)
	}
	var cfg models.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config document: %w", err)
	}
	s.config = cfg
	return nil
}

func (s *State) save(cfg models.Config) error {
	if s.storagePath == "" {
		return nil
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config document: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.storagePath), 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	tmp := s.storagePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write config document: %w", err)
	}
	if err := os.Rename(tmp, s.storagePath); err != nil {
		return fmt.Errorf("replace config document: %w", err)
	}
	return nil
}
