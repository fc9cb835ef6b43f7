package align

import "fmt"

// LabelMap canonicalizes provider-internal speaker tags into
// SPEAKER_NN labels, first seen gets index 0. Used when the remote
// transcription engine supplies its own speaker labels instead of a
// local diarization run.
type LabelMap struct {
	byProvider map[string]string
	order      []string
}

func NewLabelMap() *LabelMap {
	return &LabelMap{byProvider: make(map[string]string)}
}

// Canonical returns the canonical label for a provider tag, assigning
// the next index on first sight.
func (m *LabelMap) Canonical(provider string) string {
	if label, ok := m.byProvider[provider]; ok {
		return label
	}
	label := fmt.Sprintf("SPEAKER_%02d", len(m.order))
	m.byProvider[provider] = label
	m.order = append(m.order, provider)
	return label
}

// Len reports how many distinct provider tags have been seen.
func (m *LabelMap) Len() int { return len(m.order) }
