package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// Closure defines recurring dates the school is closed, such as holidays or training days
type Closure struct {
	RRule  string `yaml:"rrule" validate:"required"`
	Start  string `yaml:"start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Reason string `yaml:"reason,omitempty"`
}

// LoadLimit caps the periods a role can take. Zero means no cap, except maxPeriodsPerDay
// which falls back to 6.
type LoadLimit struct {
	MaxPeriodsPerDay      int `yaml:"maxPeriodsPerDay,omitempty" validate:"min=0"`
	MaxPeriodsPerWeek     int `yaml:"maxPeriodsPerWeek,omitempty" validate:"min=0"`
	MaxConsecutivePeriods int `yaml:"maxConsecutivePeriods,omitempty" validate:"min=0"`
	MaxCoveragePerWeek    int `yaml:"maxCoveragePerWeek,omitempty" validate:"min=0"`
}

// Config represents the application configuration
type Config struct {
	// DatabaseURL is a Postgres connection string. Either it or DataFile must be set.
	DatabaseURL string `yaml:"databaseURL,omitempty" validate:"required_without=DataFile"`

	// DataFile is a YAML dataset used instead of Postgres
	DataFile string `yaml:"dataFile,omitempty" validate:"required_without=DatabaseURL"`

	SchoolID string `yaml:"schoolID" validate:"required"`

	// RolePriority is the order candidate tiers are tried in
	RolePriority []string `yaml:"rolePriority,omitempty" validate:"dive,oneof=external_substitute paraprofessional internal_teacher"`

	// DefaultPeriods are used when the school has no period configuration stored
	DefaultPeriods []string `yaml:"defaultPeriods" validate:"required,min=1,dive,required"`

	LoadLimits map[string]LoadLimit `yaml:"loadLimits,omitempty" validate:"dive,keys,oneof=external_substitute paraprofessional internal_teacher,endkeys"`

	SubstituteDailyCap    int `yaml:"substituteDailyCap,omitempty" validate:"min=0,max=6"`
	PreferredTeacherBoost int `yaml:"preferredTeacherBoost,omitempty" validate:"min=0"`
	BoostBonus            int `yaml:"boostBonus,omitempty" validate:"min=0"`
	ScoringConcurrency    int `yaml:"scoringConcurrency,omitempty" validate:"min=0"`

	Closures []Closure `yaml:"closures,omitempty" validate:"dive"`

	// MetricsFile is where Prometheus metrics are written after each command, if set
	MetricsFile string `yaml:"metricsFile,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from staff_cover_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration for an environment from staff_cover_config.<env>.yaml
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(configFileName(env))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Relative data files are resolved against the config file
	if cfg.DataFile != "" && !filepath.IsAbs(cfg.DataFile) {
		cfg.DataFile = filepath.Join(filepath.Dir(path), cfg.DataFile)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Validate rrule syntax for each closure
	for i, closure := range cfg.Closures {
		if _, err := rrule.StrToRRule(closure.RRule); err != nil {
			return fmt.Errorf("invalid rrule in closures[%d]: %w", i, err)
		}
	}

	// A role listed twice would be tried twice
	seen := make(map[string]bool, len(cfg.RolePriority))
	for _, role := range cfg.RolePriority {
		if seen[role] {
			return fmt.Errorf("config validation failed: role %s appears twice in rolePriority", role)
		}
		seen[role] = true
	}

	return nil
}

func configFileName(env string) string {
	if env == "" {
		return "staff_cover_config.yaml"
	}
	return fmt.Sprintf("staff_cover_config.%s.yaml", env)
}

// findConfigFile searches for the config file in current directory and home directory
func findConfigFile(configFileName string) (string, error) {
	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file %s not found in current directory or home directory", configFileName)
}
