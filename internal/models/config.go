package models

type Backend string

const (
	BackendLocal  Backend = "local"
	BackendCloud  Backend = "cloud"
	BackendHybrid Backend = "hybrid"
)

// Backends lists the selectable AI backends in display order.
var Backends = []Backend{BackendLocal, BackendCloud, BackendHybrid}

type PerformanceMode string

const (
	ModeBalanced    PerformanceMode = "balanced"
	ModePerformance PerformanceMode = "performance"
	ModePowerSaving PerformanceMode = "power-saving"
)

// PerformanceModes lists the selectable modes in display order.
var PerformanceModes = []PerformanceMode{ModeBalanced, ModePerformance, ModePowerSaving}

// Config is the single global configuration document. It is always read and
// written whole.
type Config struct {
	AIBackend      Backend        `json:"ai_backend" validate:"oneof=local cloud hybrid"`
	Model          string         `json:"model,omitempty"`
	APIKeys        APIKeys        `json:"api_keys"`
	SystemSettings SystemSettings `json:"system_settings"`
}

type APIKeys struct {
	OpenAI    string `json:"openai"`
	Anthropic string `json:"anthropic"`
}

type SystemSettings struct {
	VoiceCommands   bool            `json:"voice_commands"`
	AutoSuggestions bool            `json:"auto_suggestions"`
	PerformanceMode PerformanceMode `json:"performance_mode" validate:"oneof=balanced performance power-saving"`
}

// DefaultConfig is the edit buffer shown before the first successful load.
func DefaultConfig() Config {
	return Config{
		AIBackend: BackendLocal,
		SystemSettings: SystemSettings{
			VoiceCommands:   true,
			AutoSuggestions: true,
			PerformanceMode: ModeBalanced,
		},
	}
}
