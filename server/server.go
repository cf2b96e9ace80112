// Package server is the lingopod HTTP API. It fronts a local OpenAI-style
// model server with language-practice endpoints: constrained chat,
// translation, grammar checking, dictionary lookups, and speech in and out.
package server

import (
	"context"
	"io"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lingopod/lingopod/pkg/audio"
	"github.com/lingopod/lingopod/pkg/audit"
	"github.com/lingopod/lingopod/pkg/constraint"
	"github.com/lingopod/lingopod/pkg/llm"
	"github.com/lingopod/lingopod/pkg/speech"
	"github.com/lingopod/lingopod/server/worker"
)

// Chatter is the upstream model client surface the handlers need.
// *llm.Client satisfies it.
type Chatter interface {
	Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResult, error)
	ChatStream(ctx context.Context, req llm.ChatRequest, w io.Writer) error
}

// Generator produces constraint-checked replies. *constraint.Orchestrator
// satisfies it.
type Generator interface {
	Generate(ctx context.Context, req llm.ChatRequest) (string, llm.ChatResult, error)
}

// Config holds the server's prompt and model settings, resolved from
// configuration before construction.
type Config struct {
	ListenAddr string

	SystemPrompt       string
	DefaultTemperature float64

	TranslatePrompt string
	TranslateModel  string
	TargetLanguage  string

	GrammarPrompt string
	GrammarModel  string

	DictionaryPrompt string
	DictionaryModel  string
}

// Services are the injected collaborators. Pool and Audit may be nil when
// auditing is disabled; STT, TTS and Audio may be nil when speech endpoints
// are not wanted.
type Services struct {
	Chatter   Chatter
	Generator Generator
	STT       *speech.STT
	TTS       *speech.TTS
	Audio     *audio.Store
	Audit     audit.Driver
	Pool      *worker.Pool
	Logger    *zap.Logger
}

// requestIDKey is where fiber's requestid middleware stores the generated id.
const requestIDKey = "requestid"

// Server is the lingopod API server.
type Server struct {
	config   Config
	services Services
	logger   *zap.Logger
	app      *fiber.App
}

// NewServer creates a new API server. Collaborators are injected so tests
// can run the full routing stack against stubs.
func NewServer(config Config, services Services) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(compress.New())

	s := &Server{
		config:   config,
		services: services,
		logger:   services.Logger,
		app:      app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/chat", s.handleChat)
	app.Post("/chat/stream", s.handleChatStream)
	app.Post("/chat/stream/raw", s.handleChatStreamRaw)
	app.Post("/translate", s.handleTranslate)
	app.Post("/grammar", s.handleGrammar)
	app.Post("/dictionary", s.handleDictionary)
	app.Post("/stt", s.handleSTT)
	app.Post("/tts", s.handleTTS)
	app.Get("/audit/recent", s.handleAuditRecent)

	return s
}

// Run starts the server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the server using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting API server",
		zap.String("listen", listener.Addr().String()),
	)
	return s.app.Listener(listener)
}

// Close gracefully shuts down the server and waits for the audit worker
// pool to drain.
func (s *Server) Close() error {
	if s.services.Pool != nil {
		s.services.Pool.Close()
	}
	return s.app.Shutdown()
}

// App exposes the fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

var _ Chatter = (*llm.Client)(nil)
var _ Generator = (*constraint.Orchestrator)(nil)
