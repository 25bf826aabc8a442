package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SLAWATCH_"

// Config holds slawatch configuration.
type Config struct {
	EscalationThreshold  time.Duration
	EscalationTargetRole string
	DedupPending         bool
	StrictResolve        bool
	SweepInterval        time.Duration

	QueueCadence time.Duration
	MaxRetries   int
	BatchSize    int
	AssigneeRole string

	DBPath string // empty means ~/.slawatch/slawatch.db

	Log struct {
		Level string
		Dir   string // empty disables the log file
		JSON  bool
	}

	Kafka struct {
		Broker string // empty disables notifications
		Topic  string
	}
}

// fileConfig is the on-disk JSON shape. Pointers distinguish absent keys
// from zero values.
type fileConfig struct {
	EscalationThreshold  *string `json:"escalation_threshold,omitempty"`
	EscalationTargetRole *string `json:"escalation_target_role,omitempty"`
	DedupPending         *bool   `json:"dedup_pending,omitempty"`
	StrictResolve        *bool   `json:"strict_resolve,omitempty"`
	SweepInterval        *string `json:"sweep_interval,omitempty"`
	QueueCadence         *string `json:"queue_cadence,omitempty"`
	MaxRetries           *int    `json:"max_retries,omitempty"`
	BatchSize            *int    `json:"batch_size,omitempty"`
	AssigneeRole         *string `json:"assignee_role,omitempty"`
	DBPath               *string `json:"db_path,omitempty"`
	LogLevel             *string `json:"log_level,omitempty"`
	LogDir               *string `json:"log_dir,omitempty"`
	LogJSON              *bool   `json:"log_json,omitempty"`
	KafkaBroker          *string `json:"kafka_broker,omitempty"`
	KafkaTopic           *string `json:"kafka_topic,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		EscalationThreshold:  24 * time.Hour,
		EscalationTargetRole: "HEAD",
		DedupPending:         true,
		StrictResolve:        false,
		SweepInterval:        time.Hour,
		QueueCadence:         30 * time.Second,
		MaxRetries:           3,
		BatchSize:            10,
		AssigneeRole:         "AGENT",
	}
	cfg.Log.Level = "info"
	cfg.Kafka.Topic = "sla.escalations"
	return cfg
}

// ConfigPath returns the config file location under dir.
func ConfigPath(dir string) string {
	return filepath.Join(dir, ".slawatch", "config.json")
}

// Load builds the configuration for dir. Resolution order, later wins:
// defaults, .slawatch/config.json, .env, then SLAWATCH_* environment variables.
// Missing files are skipped; malformed ones are errors.
func Load(dir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ConfigPath(dir))
	switch {
	case err == nil:
		var fc fileConfig
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		if err := fc.apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// godotenv never overrides variables already set in the environment.
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes cfg to dir/.slawatch/config.json.
func SaveConfig(dir string, cfg *Config) error {
	configDir := filepath.Dir(ConfigPath(dir))
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create .slawatch dir: %w", err)
	}

	data, err := json.MarshalIndent(toFileConfig(cfg), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(dir), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.EscalationThreshold <= 0:
		return fmt.Errorf("escalation_threshold must be positive, got %s", c.EscalationThreshold)
	case strings.TrimSpace(c.EscalationTargetRole) == "":
		return fmt.Errorf("escalation_target_role must not be empty")
	case c.SweepInterval <= 0:
		return fmt.Errorf("sweep_interval must be positive, got %s", c.SweepInterval)
	case c.QueueCadence <= 0:
		return fmt.Errorf("queue_cadence must be positive, got %s", c.QueueCadence)
	case c.MaxRetries <= 0:
		return fmt.Errorf("max_retries must be positive, got %d", c.MaxRetries)
	case c.BatchSize <= 0:
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	case strings.TrimSpace(c.AssigneeRole) == "":
		return fmt.Errorf("assignee_role must not be empty")
	case c.Kafka.Broker != "" && c.Kafka.Topic == "":
		return fmt.Errorf("kafka_topic is required when kafka_broker is set")
	}
	return nil
}

func (fc *fileConfig) apply(cfg *Config) error {
	durations := []struct {
		key string
		src *string
		dst *time.Duration
	}{
		{"escalation_threshold", fc.EscalationThreshold, &cfg.EscalationThreshold},
		{"sweep_interval", fc.SweepInterval, &cfg.SweepInterval},
		{"queue_cadence", fc.QueueCadence, &cfg.QueueCadence},
	}
	for _, d := range durations {
		if d.src == nil {
			continue
		}
		v, err := time.ParseDuration(*d.src)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = v
	}

	setString(&cfg.EscalationTargetRole, fc.EscalationTargetRole)
	setString(&cfg.AssigneeRole, fc.AssigneeRole)
	setString(&cfg.DBPath, fc.DBPath)
	setString(&cfg.Log.Level, fc.LogLevel)
	setString(&cfg.Log.Dir, fc.LogDir)
	setString(&cfg.Kafka.Broker, fc.KafkaBroker)
	setString(&cfg.Kafka.Topic, fc.KafkaTopic)
	if fc.DedupPending != nil {
		cfg.DedupPending = *fc.DedupPending
	}
	if fc.StrictResolve != nil {
		cfg.StrictResolve = *fc.StrictResolve
	}
	if fc.LogJSON != nil {
		cfg.Log.JSON = *fc.LogJSON
	}
	if fc.MaxRetries != nil {
		cfg.MaxRetries = *fc.MaxRetries
	}
	if fc.BatchSize != nil {
		cfg.BatchSize = *fc.BatchSize
	}
	return nil
}

func toFileConfig(cfg *Config) fileConfig {
	str := func(s string) *string { return &s }
	b := func(v bool) *bool { return &v }
	i := func(v int) *int { return &v }

	fc := fileConfig{
		EscalationThreshold:  str(cfg.EscalationThreshold.String()),
		EscalationTargetRole: str(cfg.EscalationTargetRole),
		DedupPending:         b(cfg.DedupPending),
		StrictResolve:        b(cfg.StrictResolve),
		SweepInterval:        str(cfg.SweepInterval.String()),
		QueueCadence:         str(cfg.QueueCadence.String()),
		MaxRetries:           i(cfg.MaxRetries),
		BatchSize:            i(cfg.BatchSize),
		AssigneeRole:         str(cfg.AssigneeRole),
		LogLevel:             str(cfg.Log.Level),
		LogJSON:              b(cfg.Log.JSON),
		KafkaTopic:           str(cfg.Kafka.Topic),
	}
	if cfg.DBPath != "" {
		fc.DBPath = str(cfg.DBPath)
	}
	if cfg.Log.Dir != "" {
		fc.LogDir = str(cfg.Log.Dir)
	}
	if cfg.Kafka.Broker != "" {
		fc.KafkaBroker = str(cfg.Kafka.Broker)
	}
	return fc
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// applyEnv overrides cfg from SLAWATCH_* variables found by lookup.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for key, dst := range map[string]*time.Duration{
		"ESCALATION_THRESHOLD": &cfg.EscalationThreshold,
		"SWEEP_INTERVAL":       &cfg.SweepInterval,
		"QUEUE_CADENCE":        &cfg.QueueCadence,
	} {
		if v, ok := lookup(EnvPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = d
		}
	}

	for key, dst := range map[string]*int{
		"MAX_RETRIES": &cfg.MaxRetries,
		"BATCH_SIZE":  &cfg.BatchSize,
	} {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = n
		}
	}

	for key, dst := range map[string]*bool{
		"DEDUP_PENDING":  &cfg.DedupPending,
		"STRICT_RESOLVE": &cfg.StrictResolve,
		"LOG_JSON":       &cfg.Log.JSON,
	} {
		if v, ok := lookup(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = b
		}
	}

	for key, dst := range map[string]*string{
		"ESCALATION_TARGET_ROLE": &cfg.EscalationTargetRole,
		"ASSIGNEE_ROLE":          &cfg.AssigneeRole,
		"DB_PATH":                &cfg.DBPath,
		"LOG_LEVEL":              &cfg.Log.Level,
		"LOG_DIR":                &cfg.Log.Dir,
		"KAFKA_BROKER":           &cfg.Kafka.Broker,
		"KAFKA_TOPIC":            &cfg.Kafka.Topic,
	} {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	return nil
}
