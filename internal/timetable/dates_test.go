package timetable

import "testing"

// ----------------------------------------------------------------------------
// NormalizeDate Tests
// ----------------------------------------------------------------------------

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// ISO prefix
		{"iso", "2025-09-05", "2025-09-05"},
		{"iso with time", "2025-09-05T04:30:00", "2025-09-05"},
		{"iso with space time", "2025-09-05 00:00:00", "2025-09-05"},
		{"iso out of range passes through", "2025-13-40", "2025-13-40"},
		{"iso surrounded by whitespace", "  2025-09-05  ", "2025-09-05"},

		// D-MMM-YY
		{"d-mon-yy", "5-Sep-25", "2025-09-05"},
		{"dd-mon-yy", "05-Sep-25", "2025-09-05"},
		{"mon uppercase", "05-SEP-25", "2025-09-05"},
		{"bad month yy", "32-Foo-25", ""},

		// DD-MMM-YYYY
		{"dd-mon-yyyy", "05-Sep-2025", "2025-09-05"},
		{"d-mon-yyyy", "1-Jan-2026", "2026-01-01"},
		{"bad month yyyy", "05-Sip-2025", ""},

		// Numeric day-first
		{"slash", "5/9/2025", "2025-09-05"},
		{"slash padded", "05/09/2025", "2025-09-05"},
		{"dash", "5-9-2025", "2025-09-05"},
		{"slash two-digit year", "5/9/25", "2025-09-05"},
		{"day is always first", "12/1/2025", "2025-01-12"},
		{"no range validation", "40/13/2025", "2025-13-40"},
		{"mixed separators", "5/9-2025", ""},

		// MMM D, YYYY
		{"mon day year", "Sep 5, 2025", "2025-09-05"},
		{"mon day year no space", "Sep 05,2025", "2025-09-05"},
		{"mon day year lowercase", "sep 5, 2025", "2025-09-05"},
		{"mon day year bad month", "Sip 5, 2025", ""},

		// Unrecognised
		{"empty", "", ""},
		{"whitespace", "   ", ""},
		{"words", "not a date", ""},
		{"compact", "20250905", ""},
		{"full month name", "September 5, 2025", ""},
		{"three-digit year", "5/9/202", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDate(tt.input); got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeDate_EquivalentShapes(t *testing.T) {
	for _, input := range []string{"2025-09-05", "5-Sep-25", "05-Sep-2025", "5/9/2025", "Sep 5, 2025"} {
		if got := NormalizeDate(input); got != "2025-09-05" {
			t.Errorf("NormalizeDate(%q) = %q, want 2025-09-05", input, got)
		}
	}
}

func TestIsISODate(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"2025-09-05", true},
		{"2025-13-40", true},
		{"2025-09-05T00:00", false},
		{"5-Sep-25", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsISODate(tt.input); got != tt.want {
			t.Errorf("IsISODate(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// BenchmarkNormalizeDate runs once per row on every lookup.
func BenchmarkNormalizeDate(b *testing.B) {
	inputs := []string{"2025-09-05", "05-Sep-2025", "5/9/25", "Sep 5, 2025", "not a date"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, s := range inputs {
			NormalizeDate(s)
		}
	}
}
