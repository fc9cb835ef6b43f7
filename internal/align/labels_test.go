package align

import "testing"

func TestLabelMap_FirstSeenGetsIndexZero(t *testing.T) {
	m := NewLabelMap()

	if got := m.Canonical("spk_1"); got != "SPEAKER_00" {
		t.Errorf("first label = %q, want SPEAKER_00", got)
	}
	if got := m.Canonical("spk_0"); got != "SPEAKER_01" {
		t.Errorf("second label = %q, want SPEAKER_01", got)
	}
	// repeat lookups are stable
	if got := m.Canonical("spk_1"); got != "SPEAKER_00" {
		t.Errorf("repeat lookup = %q, want SPEAKER_00", got)
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}
}
