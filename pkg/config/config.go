package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/lingopod/lingopod/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	// If no .lingopod/ directory was resolved, targetPath stays empty;
	// LoadConfig will return defaults and SaveConfig will error clearly.
	if target == "" {
		return cfger, nil
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Always set targetPath when the directory exists so SaveConfig
	// can create or overwrite the file.
	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns the sorted list of all supported configuration key names.
func ValidConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}

	// Return in a stable, logical order matching the TOML section layout.
	ordered := []string{
		"server.listen",
		"server.debug",
		"client.target",
		"llm.base_url",
		"llm.default_model",
		"llm.timeout_seconds",
		"llm.system_prompt",
		"constraint.word_min",
		"constraint.word_max",
		"constraint.retries",
		"translate.model",
		"translate.prompt",
		"translate.target_language",
		"grammar.model",
		"grammar.prompt",
		"dictionary.model",
		"dictionary.prompt",
		"speech.whisper_binary",
		"speech.whisper_model",
		"speech.language",
		"speech.threads",
		"speech.beam_size",
		"speech.best_of",
		"speech.piper_binary",
		"speech.piper_model",
		"speech.sample_rate",
		"speech.use_mock",
		"audio.dir",
		"audit.driver",
		"audit.sqlite_path",
		"audit.postgres_url",
	}

	// Sanity: only return keys that actually exist in the map.
	result := make([]string, 0, len(ordered))
	for _, k := range ordered {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
		}
	}

	// Append any keys in the map that we missed in the ordered list.
	seen := make(map[string]bool, len(result))
	for _, k := range result {
		seen[k] = true
	}
	for _, k := range keys {
		if !seen[k] {
			result = append(result, k)
		}
	}

	return result
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// LoadConfig loads the configuration from config.toml in the target
// .lingopod/ directory. If the file does not exist, returns
// NewDefaultConfig() so callers always receive a fully-populated Config with
// sane defaults. Fields explicitly set in the file override the defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	// Merge in defaults: fill in any zero-value fields from the loaded config
	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg with values from NewDefaultConfig().
func applyDefaults(cfg *Config) {
	defaults := NewDefaultConfig()

	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}

	if cfg.Server.Listen == "" {
		cfg.Server.Listen = defaults.Server.Listen
	}

	if cfg.Client.Target == "" {
		cfg.Client.Target = defaults.Client.Target
	}

	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = defaults.LLM.BaseURL
	}
	if cfg.LLM.TimeoutSeconds == 0 {
		cfg.LLM.TimeoutSeconds = defaults.LLM.TimeoutSeconds
	}
	if cfg.LLM.SystemPrompt == "" {
		cfg.LLM.SystemPrompt = defaults.LLM.SystemPrompt
	}

	if cfg.Constraint.WordMin == 0 {
		cfg.Constraint.WordMin = defaults.Constraint.WordMin
	}
	if cfg.Constraint.WordMax == 0 {
		cfg.Constraint.WordMax = defaults.Constraint.WordMax
	}
	if cfg.Constraint.Retries == 0 {
		cfg.Constraint.Retries = defaults.Constraint.Retries
	}

	if cfg.Translate.Prompt == "" {
		cfg.Translate.Prompt = defaults.Translate.Prompt
	}
	if cfg.Translate.TargetLanguage == "" {
		cfg.Translate.TargetLanguage = defaults.Translate.TargetLanguage
	}

	if cfg.Grammar.Prompt == "" {
		cfg.Grammar.Prompt = defaults.Grammar.Prompt
	}

	if cfg.Dictionary.Prompt == "" {
		cfg.Dictionary.Prompt = defaults.Dictionary.Prompt
	}

	if cfg.Speech.Language == "" {
		cfg.Speech.Language = defaults.Speech.Language
	}
	if cfg.Speech.Threads == 0 {
		cfg.Speech.Threads = defaults.Speech.Threads
	}
	if cfg.Speech.BeamSize == 0 {
		cfg.Speech.BeamSize = defaults.Speech.BeamSize
	}
	if cfg.Speech.BestOf == 0 {
		cfg.Speech.BestOf = defaults.Speech.BestOf
	}
	if cfg.Speech.SampleRate == 0 {
		cfg.Speech.SampleRate = defaults.Speech.SampleRate
	}

	if cfg.Audio.Dir == "" {
		cfg.Audio.Dir = defaults.Audio.Dir
	}

	if cfg.Audit.Driver == "" {
		cfg.Audit.Driver = defaults.Audit.Driver
	}
}

// SaveConfig persists the configuration to config.toml in the target
// .lingopod/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
// Returns an error if the key is not a valid config key.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// ParseConfigTOML parses raw TOML bytes into a Config.
// Returns an error if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	return cfg, nil
}
