package speech

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// STTConfig holds the whisper.cpp invocation parameters.
type STTConfig struct {
	Binary      string
	Model       string
	Language    string
	Threads     int
	BeamSize    int
	BestOf      int
	Temperature float64
	UseMock     bool
}

// Transcript is the result of a transcription run.
type Transcript struct {
	Text     string
	Duration time.Duration
	Mock     bool
}

// STT transcribes wav files by shelling out to whisper.cpp.
type STT struct {
	config STTConfig
	logger *zap.Logger
}

func NewSTT(config STTConfig, logger *zap.Logger) *STT {
	if config.Threads <= 0 {
		config.Threads = 4
	}
	if config.BeamSize <= 0 {
		config.BeamSize = 5
	}
	if config.BestOf <= 0 {
		config.BestOf = 5
	}
	if config.Language == "" {
		config.Language = "en"
	}
	return &STT{config: config, logger: logger}
}

// Available reports whether a real transcription run can be attempted.
func (s *STT) Available() bool {
	return binaryAvailable(s.config.Binary)
}

// Transcribe runs whisper.cpp against the wav at path. When the binary is
// missing it returns a mock transcript if mock mode is enabled, otherwise
// ErrUnavailable.
func (s *STT) Transcribe(ctx context.Context, path string) (Transcript, error) {
	if !s.Available() {
		if s.config.UseMock {
			return s.mockTranscript(path), nil
		}
		return Transcript{}, fmt.Errorf("whisper binary %q: %w", s.config.Binary, ErrUnavailable)
	}

	outDir, err := os.MkdirTemp("", "stt-*")
	if err != nil {
		return Transcript{}, fmt.Errorf("creating transcript directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	outBase := filepath.Join(outDir, "transcript")
	args := []string{
		"-m", s.config.Model,
		"-f", path,
		"-otxt",
		"-of", outBase,
		"-l", s.config.Language,
		"--threads", strconv.Itoa(s.config.Threads),
		"--beam-size", strconv.Itoa(s.config.BeamSize),
		"--best-of", strconv.Itoa(s.config.BestOf),
		"--temperature", strconv.FormatFloat(s.config.Temperature, 'f', -1, 64),
		"--no-timestamps",
		"--no-fallback",
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, s.config.Binary, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		s.logger.Error("whisper run failed",
			zap.Error(err),
			zap.String("output", strings.TrimSpace(string(output))))
		return Transcript{}, fmt.Errorf("running whisper: %w", err)
	}

	text, err := os.ReadFile(outBase + ".txt")
	if err != nil {
		return Transcript{}, fmt.Errorf("reading transcript: %w", err)
	}

	return Transcript{
		Text:     strings.TrimSpace(string(text)),
		Duration: time.Since(start),
	}, nil
}

func (s *STT) mockTranscript(path string) Transcript {
	name := filepath.Base(path)
	s.logger.Debug("using mock transcription", zap.String("file", name))
	return Transcript{
		Text: fmt.Sprintf("[mock-transcription] Detected speech from %s", name),
		Mock: true,
	}
}
