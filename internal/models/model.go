package models

type ModelType string

const (
	ModelLocal ModelType = "local"
	ModelCloud ModelType = "cloud"
)

type ModelStatus string

const (
	StatusActive    ModelStatus = "active"
	StatusInstalled ModelStatus = "installed"
	StatusAvailable ModelStatus = "available"
)

// Model is an entry of the backend-owned model registry.
type Model struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Type   ModelType   `json:"type" validate:"oneof=local cloud"`
	Status ModelStatus `json:"status"`
}

// ModelConfig is the per-model edit buffer submitted to POST /api/config.
type ModelConfig struct {
	Model  string    `json:"model" validate:"required"`
	Name   string    `json:"name"`
	Type   ModelType `json:"type" validate:"oneof=local cloud"`
	APIKey string    `json:"apiKey,omitempty"`
}

// Payload returns the body to submit. The API key only travels with cloud
// models.
func (c ModelConfig) Payload() ModelConfig {
	if c.Type != ModelCloud {
		c.APIKey = ""
	}
	return c
}
