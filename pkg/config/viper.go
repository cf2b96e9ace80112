package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/lingopod/lingopod/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the LINGOPOD_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (LINGOPOD_SERVER_LISTEN, LINGOPOD_LLM_BASE_URL, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: LINGOPOD_SERVER_LISTEN, LINGOPOD_AUDIT_DRIVER, etc.
	v.SetEnvPrefix("LINGOPOD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Server
	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.debug", d.Server.Debug)

	// Client
	v.SetDefault("client.target", d.Client.Target)

	// LLM
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.default_model", d.LLM.DefaultModel)
	v.SetDefault("llm.default_temperature", d.LLM.DefaultTemperature)
	v.SetDefault("llm.timeout_seconds", d.LLM.TimeoutSeconds)
	v.SetDefault("llm.system_prompt", d.LLM.SystemPrompt)

	// Constraint
	v.SetDefault("constraint.word_min", d.Constraint.WordMin)
	v.SetDefault("constraint.word_max", d.Constraint.WordMax)
	v.SetDefault("constraint.retries", d.Constraint.Retries)

	// Tasks
	v.SetDefault("translate.model", d.Translate.Model)
	v.SetDefault("translate.prompt", d.Translate.Prompt)
	v.SetDefault("translate.target_language", d.Translate.TargetLanguage)
	v.SetDefault("grammar.model", d.Grammar.Model)
	v.SetDefault("grammar.prompt", d.Grammar.Prompt)
	v.SetDefault("dictionary.model", d.Dictionary.Model)
	v.SetDefault("dictionary.prompt", d.Dictionary.Prompt)

	// Speech
	v.SetDefault("speech.whisper_binary", d.Speech.WhisperBinary)
	v.SetDefault("speech.whisper_model", d.Speech.WhisperModel)
	v.SetDefault("speech.language", d.Speech.Language)
	v.SetDefault("speech.threads", d.Speech.Threads)
	v.SetDefault("speech.beam_size", d.Speech.BeamSize)
	v.SetDefault("speech.best_of", d.Speech.BestOf)
	v.SetDefault("speech.temperature", d.Speech.Temperature)
	v.SetDefault("speech.piper_binary", d.Speech.PiperBinary)
	v.SetDefault("speech.piper_model", d.Speech.PiperModel)
	v.SetDefault("speech.sample_rate", d.Speech.SampleRate)
	v.SetDefault("speech.use_mock", d.Speech.UseMock)

	// Audio
	v.SetDefault("audio.dir", d.Audio.Dir)

	// Audit
	v.SetDefault("audit.driver", d.Audit.Driver)
	v.SetDefault("audit.sqlite_path", d.Audit.SQLitePath)
	v.SetDefault("audit.postgres_url", d.Audit.PostgresURL)
}
