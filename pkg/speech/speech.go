// Package speech wraps the external whisper.cpp and piper binaries used for
// transcription and synthesis. Both services degrade to deterministic mocks
// when their binary is missing, so the server stays usable on machines
// without the models installed.
package speech

import (
	"errors"
	"os/exec"
)

// ErrUnavailable is returned when a speech binary is missing and mock mode
// is disabled.
var ErrUnavailable = errors.New("speech service unavailable")

func binaryAvailable(path string) bool {
	if path == "" {
		return false
	}
	_, err := exec.LookPath(path)
	return err == nil
}
