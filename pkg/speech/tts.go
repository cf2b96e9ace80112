package speech

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const DefaultSampleRate = 22050

// TTSConfig holds the piper invocation parameters.
type TTSConfig struct {
	Binary     string
	Model      string
	SampleRate int
	Speaker    int
	UseMock    bool
}

// Synthesis is the result of a text-to-speech run.
type Synthesis struct {
	Audio      []byte
	SampleRate int
	Mock       bool
}

// TTS synthesizes speech by shelling out to piper.
type TTS struct {
	config TTSConfig
	logger *zap.Logger
}

func NewTTS(config TTSConfig, logger *zap.Logger) *TTS {
	if config.SampleRate <= 0 {
		config.SampleRate = DefaultSampleRate
	}
	return &TTS{config: config, logger: logger}
}

// Available reports whether a real synthesis run can be attempted.
func (t *TTS) Available() bool {
	return binaryAvailable(t.config.Binary)
}

// Synthesize renders text to a wav. The text is passed on stdin, matching
// piper's line-oriented input mode. LengthScale stretches or compresses the
// speech rate; zero means piper's default.
func (t *TTS) Synthesize(ctx context.Context, text string, lengthScale float64) (Synthesis, error) {
	if !t.Available() {
		if t.config.UseMock {
			return t.mockSynthesis(), nil
		}
		return Synthesis{}, fmt.Errorf("piper binary %q: %w", t.config.Binary, ErrUnavailable)
	}

	outDir, err := os.MkdirTemp("", "tts-*")
	if err != nil {
		return Synthesis{}, fmt.Errorf("creating synthesis directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	outFile := filepath.Join(outDir, "speech.wav")
	args := []string{
		"--model", t.config.Model,
		"--output_file", outFile,
		"--speaker", strconv.Itoa(t.config.Speaker),
		"--noise_scale", "0.667",
		"--noise_w", "0.8",
	}
	if lengthScale > 0 {
		args = append(args, "--length_scale", strconv.FormatFloat(lengthScale, 'f', -1, 64))
	}

	cmd := exec.CommandContext(ctx, t.config.Binary, args...)
	cmd.Stdin = strings.NewReader(text)
	if output, err := cmd.CombinedOutput(); err != nil {
		t.logger.Error("piper run failed",
			zap.Error(err),
			zap.String("output", strings.TrimSpace(string(output))))
		return Synthesis{}, fmt.Errorf("running piper: %w", err)
	}

	audio, err := os.ReadFile(outFile)
	if err != nil {
		return Synthesis{}, fmt.Errorf("reading synthesized wav: %w", err)
	}

	return Synthesis{Audio: audio, SampleRate: t.config.SampleRate}, nil
}

func (t *TTS) mockSynthesis() Synthesis {
	t.logger.Debug("using mock synthesis")
	return Synthesis{
		Audio:      SineWav(t.config.SampleRate, 440, 1),
		SampleRate: t.config.SampleRate,
		Mock:       true,
	}
}
