package transcribe

import (
	"testing"

	"github.com/otoscribe/otoscribe/internal/align"
)

const sampleTranscript = `{
	"results": {
		"items": [
			{"type": "pronunciation", "start_time": "0.04", "end_time": "0.49",
			 "speaker_label": "spk_0", "alternatives": [{"content": "Hello"}]},
			{"type": "punctuation", "alternatives": [{"content": ","}]},
			{"type": "pronunciation", "start_time": "0.55", "end_time": "0.92",
			 "speaker_label": "spk_1", "alternatives": [{"content": "there"}]}
		],
		"speaker_labels": {
			"segments": [
				{"items": [
					{"start_time": "0.04", "speaker_label": "spk_0"},
					{"start_time": "0.55", "speaker_label": "spk_1"}
				]}
			]
		}
	}
}`

func TestParseResult_KeepsOnlyPronunciationItems(t *testing.T) {
	res, err := ParseResult([]byte(sampleTranscript), false)
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if len(res.Words) != 2 {
		t.Fatalf("parsed %d words, want 2", len(res.Words))
	}
	want := align.Word{Text: "Hello", Start: 0.04, End: 0.49}
	if res.Words[0] != want {
		t.Errorf("word 0 = %+v, want %+v", res.Words[0], want)
	}
	if res.Join != align.JoinSpace {
		t.Errorf("join = %v, want JoinSpace", res.Join)
	}
	if res.SpeakerTimeline != nil {
		t.Errorf("timeline populated without speaker labels requested: %+v", res.SpeakerTimeline)
	}
}

func TestParseResult_SpeakerModeCanonicalizesLabels(t *testing.T) {
	res, err := ParseResult([]byte(sampleTranscript), true)
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if len(res.SpeakerTimeline) != 2 {
		t.Fatalf("timeline has %d intervals, want 2", len(res.SpeakerTimeline))
	}
	if res.SpeakerTimeline[0].Speaker != "SPEAKER_00" {
		t.Errorf("first speaker = %q, want SPEAKER_00", res.SpeakerTimeline[0].Speaker)
	}
	if res.SpeakerTimeline[1].Speaker != "SPEAKER_01" {
		t.Errorf("second speaker = %q, want SPEAKER_01", res.SpeakerTimeline[1].Speaker)
	}
	// word timings and interval timings coincide, so every word maps
	// onto its own provider label during alignment
	if res.SpeakerTimeline[0].Start != res.Words[0].Start || res.SpeakerTimeline[0].End != res.Words[0].End {
		t.Errorf("interval 0 %+v does not cover word 0 %+v", res.SpeakerTimeline[0], res.Words[0])
	}
}

func TestParseResult_FallsBackToSpeakerLabelsBlock(t *testing.T) {
	doc := `{
		"results": {
			"items": [
				{"type": "pronunciation", "start_time": "1.0", "end_time": "1.4",
				 "alternatives": [{"content": "yo"}]}
			],
			"speaker_labels": {
				"segments": [{"items": [{"start_time": "1.0", "speaker_label": "spk_3"}]}]
			}
		}
	}`
	res, err := ParseResult([]byte(doc), true)
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if len(res.SpeakerTimeline) != 1 || res.SpeakerTimeline[0].Speaker != "SPEAKER_00" {
		t.Errorf("timeline = %+v", res.SpeakerTimeline)
	}
}

func TestParseResult_BadTimestampIsAnError(t *testing.T) {
	doc := `{"results": {"items": [
		{"type": "pronunciation", "start_time": "oops", "end_time": "1.0",
		 "alternatives": [{"content": "x"}]}
	]}}`
	if _, err := ParseResult([]byte(doc), false); err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
}

func TestParseResult_EmptyDocument(t *testing.T) {
	res, err := ParseResult([]byte(`{"results": {"items": []}}`), false)
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if len(res.Words) != 0 {
		t.Errorf("words = %+v, want none", res.Words)
	}
}
