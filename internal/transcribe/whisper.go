package transcribe

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/otoscribe/otoscribe/internal/align"
)

// WhisperConfig holds configuration for a whisper-compatible
// transcription endpoint (OpenAI, or a local whisper server speaking
// the same API).
type WhisperConfig struct {
	APIKey   string
	BaseURL  string // default: OpenAI
	Model    string // default: "whisper-1"
	Language string
}

// Whisper is the local-engine transcriber: one synchronous call with
// word-level timestamps requested, no job lifecycle.
type Whisper struct {
	cfg    WhisperConfig
	client *openai.Client
}

func NewWhisper(cfg WhisperConfig) *Whisper {
	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Whisper{cfg: cfg, client: openai.NewClientWithConfig(clientCfg)}
}

func (w *Whisper) Name() string { return "whisper" }

func (w *Whisper) Transcribe(ctx context.Context, wavPath string) (*Result, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.cfg.Model,
		FilePath: wavPath,
		Language: w.cfg.Language,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("whisper transcription: %w", err)
	}

	if len(resp.Words) > 0 {
		res := &Result{Join: align.JoinSpace}
		for _, word := range resp.Words {
			res.Words = append(res.Words, align.Word{
				Text:  word.Word,
				Start: word.Start,
				End:   word.End,
			})
		}
		return res, nil
	}

	// Engines without word granularity still return timed segments.
	// Segment texts carry their own leading spaces, so downstream
	// joining must concatenate rather than insert spaces.
	res := &Result{Join: align.JoinConcat}
	for _, seg := range resp.Segments {
		if seg.Text == "" {
			continue
		}
		res.Words = append(res.Words, align.Word{
			Text:  seg.Text,
			Start: seg.Start,
			End:   seg.End,
		})
	}
	return res, nil
}
