package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// ToWav converts an arbitrary uploaded container to a mono 16 kHz WAV
// at outPath using ffmpeg. Both the diarization and transcription
// engines expect this canonical waveform.
func ToWav(ctx context.Context, inPath, outPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-i", inPath,
		"-ac", "1", "-ar", "16000",
		"-f", "wav",
		outPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg convert: %w: %s", err, stderr.String())
	}
	return nil
}
