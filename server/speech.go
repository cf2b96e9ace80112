package server

import (
	"encoding/base64"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/lingopod/lingopod/pkg/llm"
	"github.com/lingopod/lingopod/pkg/speech"
)

// TTSRequest is the request body for /tts.
type TTSRequest struct {
	Text        string  `json:"text"`
	LengthScale float64 `json:"length_scale,omitempty"`
}

// TTSResponse is the reply for /tts.
type TTSResponse struct {
	AudioBase64 string `json:"audio_base64"`
	SampleRate  int    `json:"sample_rate"`
	Path        string `json:"path,omitempty"`
	Mock        bool   `json:"mock,omitempty"`
}

// STTResponse is the reply for /stt.
type STTResponse struct {
	Text            string  `json:"text"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	Mock            bool    `json:"mock,omitempty"`
}

// handleSTT accepts a multipart audio upload, persists it, and returns the
// transcript.
func (s *Server) handleSTT(c *fiber.Ctx) error {
	start := time.Now()

	if s.services.STT == nil || s.services.Audio == nil {
		return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "speech-to-text disabled"})
	}

	header, err := c.FormFile("audio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "audio file required"})
	}

	file, err := header.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "could not open audio file"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "could not read audio file"})
	}

	suffix := filepath.Ext(header.Filename)
	if suffix == "" {
		suffix = ".wav"
	}

	path, err := s.services.Audio.Save(data, suffix)
	if err != nil {
		s.logger.Error("saving uploaded audio failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "could not store audio"})
	}

	transcript, err := s.services.STT.Transcribe(c.UserContext(), path)
	if err != nil {
		s.audit(c, "stt", "", start, false)
		if errors.Is(err, speech.ErrUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(llm.ErrorResponse{Error: "transcription unavailable"})
		}
		s.logger.Error("transcription failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "transcription failed"})
	}

	s.audit(c, "stt", "", start, true)
	return c.JSON(STTResponse{
		Text:            transcript.Text,
		DurationSeconds: transcript.Duration.Seconds(),
		Mock:            transcript.Mock,
	})
}

// handleTTS synthesizes the posted text and returns the wav inline, plus the
// path it was archived at.
func (s *Server) handleTTS(c *fiber.Ctx) error {
	start := time.Now()

	if s.services.TTS == nil || s.services.Audio == nil {
		return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "text-to-speech disabled"})
	}

	var req TTSRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "text required"})
	}

	synthesis, err := s.services.TTS.Synthesize(c.UserContext(), req.Text, req.LengthScale)
	if err != nil {
		s.audit(c, "tts", "", start, false)
		if errors.Is(err, speech.ErrUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(llm.ErrorResponse{Error: "synthesis unavailable"})
		}
		s.logger.Error("synthesis failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "synthesis failed"})
	}

	path, err := s.services.Audio.Save(synthesis.Audio, ".wav")
	if err != nil {
		// The synthesis succeeded; losing the archive copy is not fatal.
		s.logger.Warn("archiving synthesized audio failed", zap.Error(err))
		path = ""
	}

	s.audit(c, "tts", "", start, true)
	return c.JSON(TTSResponse{
		AudioBase64: base64.StdEncoding.EncodeToString(synthesis.Audio),
		SampleRate:  synthesis.SampleRate,
		Path:        path,
		Mock:        synthesis.Mock,
	})
}
