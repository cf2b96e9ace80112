package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent lingopod configuration stored as
// config.toml in the .lingopod/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version    int              `toml:"version"`
	Server     ServerConfig     `toml:"server"`
	Client     ClientConfig     `toml:"client"`
	LLM        LLMConfig        `toml:"llm"`
	Constraint ConstraintConfig `toml:"constraint"`
	Translate  TranslateConfig  `toml:"translate"`
	Grammar    GrammarConfig    `toml:"grammar"`
	Dictionary DictionaryConfig `toml:"dictionary"`
	Speech     SpeechConfig     `toml:"speech"`
	Audio      AudioConfig      `toml:"audio"`
	Audit      AuditConfig      `toml:"audit"`
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Listen string `toml:"listen,omitempty"`
	Debug  bool   `toml:"debug,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to a running
// server (e.g. lingopod chat). Target is a full URL (scheme + host + port).
type ClientConfig struct {
	Target string `toml:"target,omitempty"`
}

// LLMConfig holds upstream model server settings.
type LLMConfig struct {
	BaseURL            string  `toml:"base_url,omitempty"`
	DefaultModel       string  `toml:"default_model,omitempty"`
	DefaultTemperature float64 `toml:"default_temperature,omitempty"`
	TimeoutSeconds     int     `toml:"timeout_seconds,omitempty"`
	SystemPrompt       string  `toml:"system_prompt,omitempty"`
}

// ConstraintConfig holds the speakable-reply constraint settings.
type ConstraintConfig struct {
	WordMin int `toml:"word_min,omitempty"`
	WordMax int `toml:"word_max,omitempty"`
	Retries int `toml:"retries,omitempty"`
}

// TranslateConfig holds translation task settings.
type TranslateConfig struct {
	Model          string `toml:"model,omitempty"`
	Prompt         string `toml:"prompt,omitempty"`
	TargetLanguage string `toml:"target_language,omitempty"`
}

// GrammarConfig holds grammar check task settings.
type GrammarConfig struct {
	Model  string `toml:"model,omitempty"`
	Prompt string `toml:"prompt,omitempty"`
}

// DictionaryConfig holds dictionary lookup task settings.
type DictionaryConfig struct {
	Model  string `toml:"model,omitempty"`
	Prompt string `toml:"prompt,omitempty"`
}

// SpeechConfig holds the whisper.cpp and piper collaborator settings.
type SpeechConfig struct {
	WhisperBinary string  `toml:"whisper_binary,omitempty"`
	WhisperModel  string  `toml:"whisper_model,omitempty"`
	Language      string  `toml:"language,omitempty"`
	Threads       int     `toml:"threads,omitempty"`
	BeamSize      int     `toml:"beam_size,omitempty"`
	BestOf        int     `toml:"best_of,omitempty"`
	Temperature   float64 `toml:"temperature,omitempty"`
	PiperBinary   string  `toml:"piper_binary,omitempty"`
	PiperModel    string  `toml:"piper_model,omitempty"`
	SampleRate    int     `toml:"sample_rate,omitempty"`
	UseMock       bool    `toml:"use_mock,omitempty"`
}

// AudioConfig holds audio artifact storage settings.
type AudioConfig struct {
	Dir string `toml:"dir,omitempty"`
}

// AuditConfig holds audit trail storage settings.
type AuditConfig struct {
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresURL string `toml:"postgres_url,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func intKey(get func(c *Config) *int) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if n := *get(c); n != 0 {
				return strconv.Itoa(n)
			}
			return ""
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid integer value %q: %w", v, err)
			}
			*get(c) = n
			return nil
		},
	}
}

func boolKey(get func(c *Config) *bool) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatBool(*get(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid boolean value %q: %w", v, err)
			}
			*get(c) = b
			return nil
		},
	}
}

func stringKey(get func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *get(c) },
		set: func(c *Config, v string) error { *get(c) = v; return nil },
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"server.listen":             stringKey(func(c *Config) *string { return &c.Server.Listen }),
	"server.debug":              boolKey(func(c *Config) *bool { return &c.Server.Debug }),
	"client.target":             stringKey(func(c *Config) *string { return &c.Client.Target }),
	"llm.base_url":              stringKey(func(c *Config) *string { return &c.LLM.BaseURL }),
	"llm.default_model":         stringKey(func(c *Config) *string { return &c.LLM.DefaultModel }),
	"llm.timeout_seconds":       intKey(func(c *Config) *int { return &c.LLM.TimeoutSeconds }),
	"llm.system_prompt":         stringKey(func(c *Config) *string { return &c.LLM.SystemPrompt }),
	"constraint.word_min":       intKey(func(c *Config) *int { return &c.Constraint.WordMin }),
	"constraint.word_max":       intKey(func(c *Config) *int { return &c.Constraint.WordMax }),
	"constraint.retries":        intKey(func(c *Config) *int { return &c.Constraint.Retries }),
	"translate.model":           stringKey(func(c *Config) *string { return &c.Translate.Model }),
	"translate.prompt":          stringKey(func(c *Config) *string { return &c.Translate.Prompt }),
	"translate.target_language": stringKey(func(c *Config) *string { return &c.Translate.TargetLanguage }),
	"grammar.model":             stringKey(func(c *Config) *string { return &c.Grammar.Model }),
	"grammar.prompt":            stringKey(func(c *Config) *string { return &c.Grammar.Prompt }),
	"dictionary.model":          stringKey(func(c *Config) *string { return &c.Dictionary.Model }),
	"dictionary.prompt":         stringKey(func(c *Config) *string { return &c.Dictionary.Prompt }),
	"speech.whisper_binary":     stringKey(func(c *Config) *string { return &c.Speech.WhisperBinary }),
	"speech.whisper_model":      stringKey(func(c *Config) *string { return &c.Speech.WhisperModel }),
	"speech.language":           stringKey(func(c *Config) *string { return &c.Speech.Language }),
	"speech.threads":            intKey(func(c *Config) *int { return &c.Speech.Threads }),
	"speech.beam_size":          intKey(func(c *Config) *int { return &c.Speech.BeamSize }),
	"speech.best_of":            intKey(func(c *Config) *int { return &c.Speech.BestOf }),
	"speech.piper_binary":       stringKey(func(c *Config) *string { return &c.Speech.PiperBinary }),
	"speech.piper_model":        stringKey(func(c *Config) *string { return &c.Speech.PiperModel }),
	"speech.sample_rate":        intKey(func(c *Config) *int { return &c.Speech.SampleRate }),
	"speech.use_mock":           boolKey(func(c *Config) *bool { return &c.Speech.UseMock }),
	"audio.dir":                 stringKey(func(c *Config) *string { return &c.Audio.Dir }),
	"audit.driver":              stringKey(func(c *Config) *string { return &c.Audit.Driver }),
	"audit.sqlite_path":         stringKey(func(c *Config) *string { return &c.Audit.SQLitePath }),
	"audit.postgres_url":        stringKey(func(c *Config) *string { return &c.Audit.PostgresURL }),
}
