package transcribe

import (
	"context"

	"github.com/otoscribe/otoscribe/internal/align"
)

// Result is a normalized word stream plus the join convention its
// source uses. SpeakerTimeline is populated only by engines that label
// speakers themselves (a remote job run with speaker labels requested);
// it is empty when a local diarizer supplies the timeline.
type Result struct {
	Words           []align.Word
	Join            align.JoinStyle
	SpeakerTimeline []align.Interval
}

// Transcriber converts a normalized waveform file into a timed word
// stream.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (*Result, error)
	Name() string
}
