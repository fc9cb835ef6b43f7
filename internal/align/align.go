package align

// UnknownSpeaker is assigned to words that no diarization interval
// fully contains. A word straddling a turn boundary is never guessed
// onto either side.
const UnknownSpeaker = "UNKNOWN"

// MergeThreshold is the maximum gap in seconds between two words of
// the same speaker that still counts as one continuous utterance.
const MergeThreshold = 0.5

// Interval is one speaker turn from diarization. Intervals are
// expected in emission order, non-overlapping; the engine does not
// re-sort them.
type Interval struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Word is one timed token from transcription.
type Word struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is a merged run of same-speaker words.
type Segment struct {
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// JoinStyle controls how word texts are concatenated when a segment
// grows. Sources that emit bare tokens need a space inserted between
// them; sources that pre-tokenize with embedded leading spaces must be
// concatenated as-is or spacing doubles up.
type JoinStyle int

const (
	JoinSpace JoinStyle = iota
	JoinConcat
)

// Align attributes every word to a speaker and merges consecutive
// same-speaker, closely-spaced words into segments. Every input word
// appears in the output exactly once, in order. An empty word stream
// yields nil.
func Align(timeline []Interval, words []Word, join JoinStyle) []Segment {
	if len(words) == 0 {
		return nil
	}

	first := words[0]
	cur := Segment{
		Speaker: speakerFor(timeline, first),
		Text:    first.Text,
		Start:   first.Start,
		End:     first.End,
	}

	var out []Segment
	for _, w := range words[1:] {
		speaker := speakerFor(timeline, w)
		if speaker == cur.Speaker && w.Start-cur.End < MergeThreshold {
			cur.Text = joinText(cur.Text, w.Text, join)
			cur.End = w.End
			continue
		}
		out = append(out, cur)
		cur = Segment{Speaker: speaker, Text: w.Text, Start: w.Start, End: w.End}
	}
	return append(out, cur)
}

// speakerFor returns the speaker of the first interval that fully
// contains the word. Strict containment only: partial overlap is not a
// match. Linear scan; timelines are small per audio file.
func speakerFor(timeline []Interval, w Word) string {
	for _, iv := range timeline {
		if iv.Start <= w.Start && w.End <= iv.End {
			return iv.Speaker
		}
	}
	return UnknownSpeaker
}

func joinText(cur, next string, join JoinStyle) string {
	if join == JoinConcat {
		return cur + next
	}
	return cur + " " + next
}
