package speech

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

// stubWhisper writes an executable script that mimics whisper.cpp's -of
// contract: it writes the transcript next to the requested output base.
func stubWhisper(dir, transcript string) string {
	script := `#!/bin/sh
out=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-of" ]; then out="$arg"; fi
  prev="$arg"
done
printf '%s' "` + transcript + `" > "$out.txt"
`
	path := filepath.Join(dir, "whisper")
	Expect(os.WriteFile(path, []byte(script), 0o755)).To(Succeed())
	return path
}

var _ = Describe("STT", func() {
	var logger *zap.Logger

	BeforeEach(func() {
		logger = zap.NewNop()
	})

	It("reads the transcript produced by the binary", func() {
		if runtime.GOOS == "windows" {
			Skip("shell stub requires a POSIX shell")
		}
		dir := GinkgoT().TempDir()
		stt := NewSTT(STTConfig{
			Binary: stubWhisper(dir, "  hello from whisper  "),
			Model:  "model.bin",
		}, logger)

		result, err := stt.Transcribe(context.Background(), filepath.Join(dir, "input.wav"))
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Text).To(Equal("hello from whisper"))
		Expect(result.Mock).To(BeFalse())
	})

	It("returns a deterministic mock transcript when the binary is missing", func() {
		stt := NewSTT(STTConfig{Binary: "/does/not/exist", UseMock: true}, logger)

		result, err := stt.Transcribe(context.Background(), "/tmp/recording.wav")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Mock).To(BeTrue())
		Expect(result.Text).To(Equal("[mock-transcription] Detected speech from recording.wav"))
	})

	It("fails when the binary is missing and mock mode is off", func() {
		stt := NewSTT(STTConfig{Binary: "/does/not/exist"}, logger)

		_, err := stt.Transcribe(context.Background(), "/tmp/recording.wav")
		Expect(err).To(MatchError(ErrUnavailable))
	})

	It("reports availability from the configured binary", func() {
		Expect(NewSTT(STTConfig{}, logger).Available()).To(BeFalse())
		Expect(NewSTT(STTConfig{Binary: "/does/not/exist"}, logger).Available()).To(BeFalse())
	})
})
