package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Validate when a field is omitted.
const (
	DefaultRedisURL            = "localhost:6379"
	DefaultModelURL            = "http://localhost:11434"
	DefaultModel               = "llama3.1:8b"
	DefaultTemperature         = 0.7
	DefaultMaxRounds           = 4
	DefaultAgentTimeoutSeconds = 300
)

// MootConfig represents the top-level moot.yml configuration.
// Load returns a validated config with all defaults filled in; treat the
// result as read-only from then on.
type MootConfig struct {
	Version      string              `yaml:"version"`
	Redis        *RedisConfig        `yaml:"redis,omitempty"`
	Model        *ModelConfig        `yaml:"model,omitempty"`
	Orchestrator *OrchestratorConfig `yaml:"orchestrator,omitempty"`
	Validation   *ValidationConfig   `yaml:"validation,omitempty"`
	Agents       map[string]Agent    `yaml:"agents,omitempty"`
	Experts      *ExpertsConfig      `yaml:"experts,omitempty"`
}

// RedisConfig specifies the blackboard store connection.
type RedisConfig struct {
	URL string `yaml:"url,omitempty"` // host:port
}

// ModelConfig specifies the model backend and roster.
type ModelConfig struct {
	URL         string   `yaml:"url,omitempty"`         // Ollama-compatible base URL
	Models      []string `yaml:"models,omitempty"`      // roster, assigned to agents round-robin
	Temperature *float64 `yaml:"temperature,omitempty"` // sampling temperature, 0 is valid
}

// OrchestratorConfig specifies deliberation bounds.
type OrchestratorConfig struct {
	MaxRounds           int `yaml:"max_rounds,omitempty"`
	AgentTimeoutSeconds int `yaml:"agent_timeout_seconds,omitempty"`
}

// ValidationConfig specifies answer reconciliation behavior.
type ValidationConfig struct {
	// PreferStructured makes a decider's structured answer win over its own
	// free-text explanation when the two disagree. Default is the reverse:
	// the explanation usually carries the model's final reasoning.
	PreferStructured bool `yaml:"prefer_structured,omitempty"`
}

// ExpertsConfig controls expert role generation at session start.
type ExpertsConfig struct {
	Generate *bool  `yaml:"generate,omitempty"` // default true
	Model    string `yaml:"model,omitempty"`    // defaults to the first roster model
}

// Agent represents a single configured agent. When the agents map is empty
// the default pool (planner, decider, critic, cleaner, conflict_resolver) is
// used instead.
type Agent struct {
	Role        string `yaml:"role"`
	Description string `yaml:"description,omitempty"`
	Model       string `yaml:"model,omitempty"` // overrides roster assignment
}

// validRoles mirrors the closed role set enforced at pool construction.
// Checking here too surfaces typos at config load, before any Redis or model
// traffic happens.
var validRoles = map[string]bool{
	"planner":           true,
	"decider":           true,
	"critic":            true,
	"cleaner":           true,
	"conflict_resolver": true,
	"expert":            true,
}

// Validate performs strict validation and fills in defaults.
func (c *MootConfig) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.Redis == nil {
		c.Redis = &RedisConfig{}
	}
	if c.Redis.URL == "" {
		c.Redis.URL = DefaultRedisURL
	}

	if c.Model == nil {
		c.Model = &ModelConfig{}
	}
	if c.Model.URL == "" {
		c.Model.URL = DefaultModelURL
	}
	if len(c.Model.Models) == 0 {
		c.Model.Models = []string{DefaultModel}
	}
	for i, m := range c.Model.Models {
		if m == "" {
			return fmt.Errorf("model.models[%d] cannot be empty", i)
		}
	}
	if c.Model.Temperature == nil {
		temp := DefaultTemperature
		c.Model.Temperature = &temp
	}
	if *c.Model.Temperature < 0 || *c.Model.Temperature > 2 {
		return fmt.Errorf("model.temperature must be between 0 and 2, got %g", *c.Model.Temperature)
	}

	if c.Orchestrator == nil {
		c.Orchestrator = &OrchestratorConfig{}
	}
	if c.Orchestrator.MaxRounds == 0 {
		c.Orchestrator.MaxRounds = DefaultMaxRounds
	}
	if c.Orchestrator.MaxRounds < 1 {
		return fmt.Errorf("orchestrator.max_rounds must be >= 1, got %d", c.Orchestrator.MaxRounds)
	}
	if c.Orchestrator.AgentTimeoutSeconds == 0 {
		c.Orchestrator.AgentTimeoutSeconds = DefaultAgentTimeoutSeconds
	}
	if c.Orchestrator.AgentTimeoutSeconds < 1 {
		return fmt.Errorf("orchestrator.agent_timeout_seconds must be >= 1, got %d", c.Orchestrator.AgentTimeoutSeconds)
	}

	if c.Validation == nil {
		c.Validation = &ValidationConfig{}
	}

	if c.Experts == nil {
		c.Experts = &ExpertsConfig{}
	}
	if c.Experts.Generate == nil {
		generate := true
		c.Experts.Generate = &generate
	}

	for name, agent := range c.Agents {
		if err := agent.Validate(name); err != nil {
			return err
		}
	}

	return nil
}

// Validate performs validation on a single agent configuration.
func (a *Agent) Validate(name string) error {
	if name == "" {
		return fmt.Errorf("agent name cannot be empty")
	}
	if a.Role == "" {
		return fmt.Errorf("agent '%s': role is required", name)
	}
	if !validRoles[a.Role] {
		return fmt.Errorf("agent '%s': invalid role: %s (must be 'planner', 'decider', 'critic', 'cleaner', 'conflict_resolver', or 'expert')", name, a.Role)
	}
	return nil
}

// AgentTimeout returns the per-agent act timeout as a duration.
func (c *MootConfig) AgentTimeout() time.Duration {
	return time.Duration(c.Orchestrator.AgentTimeoutSeconds) * time.Second
}

// Temperature returns the configured sampling temperature.
func (c *MootConfig) Temperature() float64 {
	return *c.Model.Temperature
}

// GenerateExperts reports whether expert roles should be generated at
// session start.
func (c *MootConfig) GenerateExperts() bool {
	return *c.Experts.Generate
}

// Load reads and validates moot.yml from the specified path.
func Load(path string) (*MootConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config MootConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
