package transcribe

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/otoscribe/otoscribe/internal/align"
)

// Transcript document shape returned by the remote engine's result
// URI. Timestamps arrive as decimal strings.
type transcriptFile struct {
	Results struct {
		Items         []transcriptItem `json:"items"`
		SpeakerLabels *speakerLabels   `json:"speaker_labels"`
	} `json:"results"`
}

type transcriptItem struct {
	Type         string `json:"type"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	SpeakerLabel string `json:"speaker_label"`
	Alternatives []struct {
		Content string `json:"content"`
	} `json:"alternatives"`
}

type speakerLabels struct {
	Segments []struct {
		Items []struct {
			StartTime    string `json:"start_time"`
			SpeakerLabel string `json:"speaker_label"`
		} `json:"items"`
	} `json:"segments"`
}

// ParseResult converts a remote transcript document into a word
// stream. Only pronunciation items carry timing; everything else
// (punctuation) is dropped. When withSpeakers is set, provider
// speaker tags are canonicalized through a LabelMap and emitted as a
// per-word speaker timeline so alignment can run without a local
// diarization pass.
func ParseResult(data []byte, withSpeakers bool) (*Result, error) {
	var doc transcriptFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode transcript document: %w", err)
	}

	// Older documents only carry speaker tags in the speaker_labels
	// block, keyed by item start time.
	tagByStart := make(map[string]string)
	if doc.Results.SpeakerLabels != nil {
		for _, seg := range doc.Results.SpeakerLabels.Segments {
			for _, it := range seg.Items {
				tagByStart[it.StartTime] = it.SpeakerLabel
			}
		}
	}

	res := &Result{Join: align.JoinSpace}
	labels := align.NewLabelMap()

	for _, item := range doc.Results.Items {
		if item.Type != "pronunciation" {
			continue
		}
		if len(item.Alternatives) == 0 {
			continue
		}
		start, err := strconv.ParseFloat(item.StartTime, 64)
		if err != nil {
			return nil, fmt.Errorf("bad start_time %q: %w", item.StartTime, err)
		}
		end, err := strconv.ParseFloat(item.EndTime, 64)
		if err != nil {
			return nil, fmt.Errorf("bad end_time %q: %w", item.EndTime, err)
		}

		res.Words = append(res.Words, align.Word{
			Text:  item.Alternatives[0].Content,
			Start: start,
			End:   end,
		})

		if !withSpeakers {
			continue
		}
		tag := item.SpeakerLabel
		if tag == "" {
			tag = tagByStart[item.StartTime]
		}
		if tag == "" {
			continue
		}
		res.SpeakerTimeline = append(res.SpeakerTimeline, align.Interval{
			Start:   start,
			End:     end,
			Speaker: labels.Canonical(tag),
		})
	}

	return res, nil
}
