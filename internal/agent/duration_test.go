package agent

import "testing"

func TestParseDurationMinutes(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"2 hours", 120},
		{"90 min", 90},
		{"1.5h", 90},
		{"1 hour", 60},
		{"45 minutes", 45},
		{"25m", 25},
		{"2hr", 120},
		{"90", 90},
		{"0.5 hours", 30},
		{"a while", 60},
		{"", 60},
		{"soonish", 60},
	}

	for _, tt := range tests {
		if got := ParseDurationMinutes(tt.text); got != tt.want {
			t.Errorf("ParseDurationMinutes(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
