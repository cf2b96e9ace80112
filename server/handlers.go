package server

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lingopod/lingopod/pkg/audit"
	"github.com/lingopod/lingopod/pkg/llm"
	"github.com/lingopod/lingopod/pkg/normalize"
	"github.com/lingopod/lingopod/pkg/prompt"
)

// ChatRequest is the request body for /chat and /chat/stream.
type ChatRequest struct {
	Messages    []llm.Message `json:"messages"`
	Model       string        `json:"model,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

// ChatResponse is the reply produced by the constrained chat pipeline.
type ChatResponse struct {
	Reply        string     `json:"reply"`
	Model        string     `json:"model,omitempty"`
	FinishReason string     `json:"finish_reason,omitempty"`
	Usage        *llm.Usage `json:"usage,omitempty"`
}

// TranslateRequest is the request body for /translate.
type TranslateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"target_language,omitempty"`
	Model          string `json:"model,omitempty"`
}

// TranslateResponse is the reply for /translate.
type TranslateResponse struct {
	Translation    string `json:"translation"`
	TargetLanguage string `json:"target_language"`
	Model          string `json:"model,omitempty"`
}

// GrammarRequest is the request body for /grammar.
type GrammarRequest struct {
	Text    string        `json:"text"`
	Context []llm.Message `json:"context,omitempty"`
	Model   string        `json:"model,omitempty"`
}

// GrammarResponse is the reply for /grammar.
type GrammarResponse struct {
	IsCorrect  bool   `json:"is_correct"`
	Feedback   string `json:"feedback"`
	Suggestion string `json:"suggestion,omitempty"`
	Model      string `json:"model,omitempty"`
}

// DictionaryRequest is the request body for /dictionary.
type DictionaryRequest struct {
	Word     string `json:"word"`
	Sentence string `json:"sentence,omitempty"`
	Model    string `json:"model,omitempty"`
}

// DictionaryResponse is the reply for /dictionary.
type DictionaryResponse struct {
	Headword     string   `json:"headword"`
	PartOfSpeech string   `json:"part_of_speech,omitempty"`
	Definition   string   `json:"definition"`
	Examples     []string `json:"examples,omitempty"`
	Phonetics    []string `json:"phonetics,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	Model        string   `json:"model,omitempty"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleChat runs the constrained generation pipeline over the posted
// conversation and returns a single speakable reply.
func (s *Server) handleChat(c *fiber.Ctx) error {
	start := time.Now()

	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}
	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "messages required"})
	}

	reply, result, err := s.services.Generator.Generate(c.UserContext(), llm.ChatRequest{
		Messages:    prompt.Chat(s.config.SystemPrompt, req.Messages),
		Model:       req.Model,
		Temperature: s.temperature(req.Temperature),
	})
	if err != nil {
		s.audit(c, "chat", req.Model, start, false)
		return s.upstreamError(c, err)
	}

	s.audit(c, "chat", result.Model, start, true)
	return c.JSON(ChatResponse{
		Reply:        reply,
		Model:        result.Model,
		FinishReason: result.FinishReason,
		Usage:        result.Usage,
	})
}

// handleTranslate translates the posted text into the configured (or
// requested) target language.
func (s *Server) handleTranslate(c *fiber.Ctx) error {
	start := time.Now()

	var req TranslateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "text required"})
	}

	target := req.TargetLanguage
	if target == "" {
		target = s.config.TargetLanguage
	}

	result, err := s.services.Chatter.Chat(c.UserContext(), llm.ChatRequest{
		Messages:    prompt.Translation(s.config.TranslatePrompt, target, req.Text),
		Model:       s.taskModel(req.Model, s.config.TranslateModel),
		Temperature: llm.Temperature(0),
	})
	if err != nil {
		s.audit(c, "translate", req.Model, start, false)
		return s.upstreamError(c, err)
	}

	s.audit(c, "translate", result.Model, start, true)
	return c.JSON(TranslateResponse{
		Translation:    strings.TrimSpace(result.Content),
		TargetLanguage: target,
		Model:          result.Model,
	})
}

// handleGrammar reviews the posted sentence and returns structured feedback.
func (s *Server) handleGrammar(c *fiber.Ctx) error {
	start := time.Now()

	var req GrammarRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "text required"})
	}

	result, err := s.services.Chatter.Chat(c.UserContext(), llm.ChatRequest{
		Messages:    prompt.Grammar(s.config.GrammarPrompt, req.Text, req.Context),
		Model:       s.taskModel(req.Model, s.config.GrammarModel),
		Temperature: llm.Temperature(0),
	})
	if err != nil {
		s.audit(c, "grammar", req.Model, start, false)
		return s.upstreamError(c, err)
	}

	feedback := normalize.Grammar(result.Content)

	s.audit(c, "grammar", result.Model, start, true)
	return c.JSON(GrammarResponse{
		IsCorrect:  feedback.IsCorrect,
		Feedback:   feedback.Feedback,
		Suggestion: feedback.Suggestion,
		Model:      result.Model,
	})
}

// handleDictionary looks up the posted word. An upstream failure degrades to
// a placeholder entry rather than an error, so the client always renders
// something.
func (s *Server) handleDictionary(c *fiber.Ctx) error {
	start := time.Now()

	var req DictionaryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	word := strings.TrimSpace(req.Word)
	if word == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "word required"})
	}

	result, err := s.services.Chatter.Chat(c.UserContext(), llm.ChatRequest{
		Messages:    prompt.Dictionary(s.config.DictionaryPrompt, word, req.Sentence),
		Model:       s.taskModel(req.Model, s.config.DictionaryModel),
		Temperature: llm.Temperature(0),
	})
	if err != nil {
		s.logger.Warn("dictionary lookup degraded to placeholder",
			zap.String("word", word),
			zap.Error(err),
		)
		s.audit(c, "dictionary", req.Model, start, false)

		return c.JSON(dictionaryResponse(normalize.Unavailable(word), ""))
	}

	entry := normalize.Dictionary(result.Content, word)

	s.audit(c, "dictionary", result.Model, start, true)
	return c.JSON(dictionaryResponse(entry, result.Model))
}

func dictionaryResponse(entry normalize.DictionaryResult, model string) DictionaryResponse {
	return DictionaryResponse{
		Headword:     entry.Headword,
		PartOfSpeech: entry.PartOfSpeech,
		Definition:   entry.Definition,
		Examples:     entry.Examples,
		Phonetics:    entry.Phonetics,
		Notes:        entry.Notes,
		Model:        model,
	}
}

// handleAuditRecent returns the newest audit records.
func (s *Server) handleAuditRecent(c *fiber.Ctx) error {
	if s.services.Audit == nil {
		return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "auditing disabled"})
	}

	records, err := s.services.Audit.List(c.UserContext(), c.QueryInt("limit", 50))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to list audit records"})
	}
	if records == nil {
		records = []audit.Record{}
	}

	return c.JSON(fiber.Map{
		"count":   len(records),
		"records": records,
	})
}

// temperature resolves the request temperature against the configured default.
func (s *Server) temperature(override *float64) *float64 {
	if override != nil {
		return override
	}
	if s.config.DefaultTemperature != 0 {
		return llm.Temperature(s.config.DefaultTemperature)
	}
	return nil
}

// taskModel resolves model precedence: request > per-task configured model.
// An empty result defers to the client's default model.
func (s *Server) taskModel(requested, configured string) string {
	if requested != "" {
		return requested
	}
	return configured
}

// upstreamError maps client errors onto HTTP responses: provider rejections
// keep their upstream status, transport failures become a 502.
func (s *Server) upstreamError(c *fiber.Ctx, err error) error {
	var provErr *llm.ProviderError
	if errors.As(err, &provErr) {
		s.logger.Warn("upstream rejected request",
			zap.Int("status", provErr.Status),
		)
		return c.Status(provErr.Status).JSON(llm.ErrorResponse{Error: provErr.Error()})
	}

	s.logger.Error("upstream request failed", zap.Error(err))
	return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: "upstream request failed"})
}

// audit enqueues a record for async persistence. A full queue drops the
// record; the response is never delayed.
func (s *Server) audit(c *fiber.Ctx, task, model string, start time.Time, ok bool) {
	requestID, _ := c.Locals(requestIDKey).(string)
	s.auditRecord(requestID, task, model, start, ok)
}

// auditRecord takes plain values only, so goroutines that outlive the
// request may call it after fiber has released the Ctx.
func (s *Server) auditRecord(requestID, task, model string, start time.Time, ok bool) {
	if s.services.Pool == nil {
		return
	}

	s.services.Pool.Enqueue(audit.Record{
		ID:         uuid.NewString(),
		Task:       task,
		Model:      model,
		RequestID:  requestID,
		DurationMS: time.Since(start).Milliseconds(),
		OK:         ok,
		CreatedAt:  time.Now().UTC(),
	})
}
