package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/lingopod/lingopod/pkg/llm"
	"github.com/lingopod/lingopod/pkg/prompt"
	"github.com/lingopod/lingopod/pkg/sse"
)

// handleChatStream runs the constrained pipeline and emits the result as a
// short SSE stream: exactly one content frame followed by the done sentinel.
// The reply is validated as a whole, so it cannot be streamed token by token;
// the SSE shape keeps the wire contract identical to the raw endpoint.
func (s *Server) handleChatStream(c *fiber.Ctx) error {
	start := time.Now()

	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}
	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "messages required"})
	}

	setStreamHeaders(c)

	var buf bytes.Buffer

	reply, result, err := s.services.Generator.Generate(c.UserContext(), llm.ChatRequest{
		Messages:    prompt.Chat(s.config.SystemPrompt, req.Messages),
		Model:       req.Model,
		Temperature: s.temperature(req.Temperature),
	})
	if err != nil {
		// The stream has nominally begun; failures are reported in-band so
		// the client never sees an error outside the frame protocol.
		s.logger.Error("constrained stream failed", zap.Error(err))
		s.audit(c, "chat_stream", req.Model, start, false)
		writeFrame(&buf, mustJSON(llm.ErrorResponse{Error: "upstream request failed"}))
		writeFrame(&buf, sse.Done)
		return c.Send(buf.Bytes())
	}

	s.audit(c, "chat_stream", result.Model, start, true)
	writeFrame(&buf, mustJSON(ChatResponse{
		Reply:        reply,
		Model:        result.Model,
		FinishReason: result.FinishReason,
		Usage:        result.Usage,
	}))
	writeFrame(&buf, sse.Done)
	return c.Send(buf.Bytes())
}

// handleChatStreamRaw proxies the upstream token stream through unvalidated.
// Frames are re-emitted one at a time as the upstream produces them.
func (s *Server) handleChatStreamRaw(c *fiber.Ctx) error {
	start := time.Now()

	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}
	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "messages required"})
	}

	setStreamHeaders(c)

	wireReq := llm.ChatRequest{
		Messages:    prompt.Chat(s.config.SystemPrompt, req.Messages),
		Model:       req.Model,
		Temperature: s.temperature(req.Temperature),
	}

	// io.Pipe rather than SetBodyStreamWriter: pw.Write blocks until the
	// client consumes the data, so frames are never batched in an internal
	// buffer and cancellation propagates promptly.
	pr, pw := io.Pipe()

	// Fiber releases the Ctx once the handler returns; anything the goroutine
	// needs is captured as a plain value here.
	ctx := c.UserContext()
	requestID, _ := c.Locals(requestIDKey).(string)
	model := req.Model

	go func() {
		err := s.services.Chatter.ChatStream(ctx, wireReq, pw)
		if err != nil {
			s.logger.Error("raw stream failed", zap.Error(err))
		}
		s.auditRecord(requestID, "chat_stream_raw", model, start, err == nil)
		pw.CloseWithError(err)
	}()

	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

func setStreamHeaders(c *fiber.Ctx) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
}

func writeFrame(w io.Writer, data string) {
	fmt.Fprintf(w, "data: %s\n\n", data)
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return strings.ReplaceAll(fmt.Sprintf("%v", v), "\n", " ")
	}
	return string(data)
}
