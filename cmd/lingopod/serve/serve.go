// Package servecmder provides the serve command for running the lingopod
// API server.
package servecmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/lingopod/lingopod/pkg/audio"
	"github.com/lingopod/lingopod/pkg/audit"
	"github.com/lingopod/lingopod/pkg/audit/inmemory"
	"github.com/lingopod/lingopod/pkg/audit/postgres"
	"github.com/lingopod/lingopod/pkg/audit/sqlite"
	"github.com/lingopod/lingopod/pkg/config"
	"github.com/lingopod/lingopod/pkg/constraint"
	"github.com/lingopod/lingopod/pkg/llm"
	"github.com/lingopod/lingopod/pkg/logger"
	"github.com/lingopod/lingopod/pkg/speech"
	"github.com/lingopod/lingopod/server"
	"github.com/lingopod/lingopod/server/worker"
)

type ServeCommander struct {
	listen      string
	baseURL     string
	model       string
	auditDriver string
	audioDir    string
	useMock     bool
	retries     int
	debug       bool

	v      *viper.Viper
	logger *zap.Logger
}

const serveLongDesc string = `Run the lingopod API server.

The server fronts a local OpenAI-compatible model server (LM Studio, llama.cpp
server, vLLM) with language practice endpoints: constrained conversation,
translation, grammar checking, dictionary lookups, and speech in and out via
whisper.cpp and piper.

Examples:
  lingopod serve
  lingopod serve --listen :9000 --base-url http://localhost:8080/v1
  lingopod serve --audit-driver sqlite`

const serveShortDesc string = "Run the lingopod API server"

var serveFlags = config.FlagSet{
	config.FlagListen: {
		Name: "listen", Shorthand: "l",
		ViperKey:    "server.listen",
		Description: "Address for the API server to listen on",
	},
	config.FlagBaseURL: {
		Name: "base-url", Shorthand: "u",
		ViperKey:    "llm.base_url",
		Description: "Upstream OpenAI-compatible base URL",
	},
	config.FlagModel: {
		Name: "model", Shorthand: "m",
		ViperKey:    "llm.default_model",
		Description: "Default model name (empty lets the upstream choose)",
	},
	config.FlagAuditDriver: {
		Name:        "audit-driver",
		ViperKey:    "audit.driver",
		Description: "Audit store driver (none, memory, sqlite, postgres)",
	},
	config.FlagAudioDir: {
		Name:        "audio-dir",
		ViperKey:    "audio.dir",
		Description: "Directory for audio artifacts",
	},
	config.FlagUseMock: {
		Name:        "use-mock",
		ViperKey:    "speech.use_mock",
		Description: "Use mock speech services when binaries are missing",
	},
	config.FlagRetries: {
		Name:        "retries",
		ViperKey:    "constraint.retries",
		Description: "Retry attempts before falling back to a generated reply",
	},
}

var serveFlagKeys = []string{
	config.FlagListen,
	config.FlagBaseURL,
	config.FlagModel,
	config.FlagAuditDriver,
	config.FlagAudioDir,
	config.FlagUseMock,
	config.FlagRetries,
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("initializing config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, serveFlags, serveFlagKeys)
			cmder.v = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, serveFlags, config.FlagBaseURL, &cmder.baseURL)
	config.AddStringFlag(cmd, serveFlags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, serveFlags, config.FlagAuditDriver, &cmder.auditDriver)
	config.AddStringFlag(cmd, serveFlags, config.FlagAudioDir, &cmder.audioDir)
	config.AddBoolFlag(cmd, serveFlags, config.FlagUseMock, &cmder.useMock)
	config.AddIntFlag(cmd, serveFlags, config.FlagRetries, &cmder.retries)

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.New(c.debug)
	defer func() { _ = c.logger.Sync() }()

	v := c.v

	client := llm.NewClient(llm.Config{
		BaseURL:      v.GetString("llm.base_url"),
		DefaultModel: v.GetString("llm.default_model"),
		Timeout:      time.Duration(v.GetInt("llm.timeout_seconds")) * time.Second,
	}, c.logger)

	validator := constraint.Validator{
		MinWords: v.GetInt("constraint.word_min"),
		MaxWords: v.GetInt("constraint.word_max"),
	}
	orchestrator := constraint.NewOrchestrator(client, validator, v.GetInt("constraint.retries"), c.logger)

	store, err := audio.NewStore(v.GetString("audio.dir"))
	if err != nil {
		return fmt.Errorf("creating audio store: %w", err)
	}

	stt := speech.NewSTT(speech.STTConfig{
		Binary:      v.GetString("speech.whisper_binary"),
		Model:       v.GetString("speech.whisper_model"),
		Language:    v.GetString("speech.language"),
		Threads:     v.GetInt("speech.threads"),
		BeamSize:    v.GetInt("speech.beam_size"),
		BestOf:      v.GetInt("speech.best_of"),
		Temperature: v.GetFloat64("speech.temperature"),
		UseMock:     v.GetBool("speech.use_mock"),
	}, c.logger)

	tts := speech.NewTTS(speech.TTSConfig{
		Binary:     v.GetString("speech.piper_binary"),
		Model:      v.GetString("speech.piper_model"),
		SampleRate: v.GetInt("speech.sample_rate"),
		UseMock:    v.GetBool("speech.use_mock"),
	}, c.logger)

	auditDriver, err := c.newAuditDriver()
	if err != nil {
		return err
	}

	services := server.Services{
		Chatter:   client,
		Generator: orchestrator,
		STT:       stt,
		TTS:       tts,
		Audio:     store,
		Logger:    c.logger,
	}

	if auditDriver != nil {
		defer auditDriver.Close()

		pool, err := worker.NewPool(&worker.Config{
			Driver: auditDriver,
			Logger: c.logger,
		})
		if err != nil {
			return fmt.Errorf("creating worker pool: %w", err)
		}

		services.Audit = auditDriver
		services.Pool = pool
	}

	srv := server.NewServer(server.Config{
		ListenAddr:         v.GetString("server.listen"),
		SystemPrompt:       v.GetString("llm.system_prompt"),
		DefaultTemperature: v.GetFloat64("llm.default_temperature"),
		TranslatePrompt:    v.GetString("translate.prompt"),
		TranslateModel:     v.GetString("translate.model"),
		TargetLanguage:     v.GetString("translate.target_language"),
		GrammarPrompt:      v.GetString("grammar.prompt"),
		GrammarModel:       v.GetString("grammar.model"),
		DictionaryPrompt:   v.GetString("dictionary.prompt"),
		DictionaryModel:    v.GetString("dictionary.model"),
	}, services)
	defer srv.Close()

	c.logger.Info("starting lingopod",
		zap.String("listen", v.GetString("server.listen")),
		zap.String("base_url", v.GetString("llm.base_url")),
		zap.String("audit_driver", v.GetString("audit.driver")),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return nil
	}
}

// newAuditDriver builds the audit backend selected by audit.driver. A "none"
// driver disables auditing entirely.
func (c *ServeCommander) newAuditDriver() (audit.Driver, error) {
	v := c.v

	switch v.GetString("audit.driver") {
	case "none":
		c.logger.Info("auditing disabled")
		return nil, nil

	case "", "memory":
		c.logger.Info("using in-memory audit store")
		return inmemory.New(0), nil

	case "sqlite":
		path := v.GetString("audit.sqlite_path")
		if path == "" {
			return nil, fmt.Errorf("audit.sqlite_path required for the sqlite audit driver")
		}
		driver, err := sqlite.New(path)
		if err != nil {
			return nil, fmt.Errorf("creating sqlite audit store: %w", err)
		}
		c.logger.Info("using sqlite audit store", zap.String("path", path))
		return driver, nil

	case "postgres":
		url := v.GetString("audit.postgres_url")
		if url == "" {
			return nil, fmt.Errorf("audit.postgres_url required for the postgres audit driver")
		}
		driver, err := postgres.New(url)
		if err != nil {
			return nil, fmt.Errorf("connecting postgres audit store: %w", err)
		}
		c.logger.Info("using postgres audit store")
		return driver, nil

	default:
		return nil, fmt.Errorf("unknown audit driver: %q (available: none, memory, sqlite, postgres)", v.GetString("audit.driver"))
	}
}
