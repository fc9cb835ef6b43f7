package diarize

import (
	"context"

	"github.com/otoscribe/otoscribe/internal/align"
)

// Diarizer segments a waveform into speaker turns. Implementations
// must emit turns in temporal order without overlap; downstream
// speaker lookup assumes that ordering.
type Diarizer interface {
	Diarize(ctx context.Context, wavPath string) ([]align.Interval, error)
	Name() string
}
