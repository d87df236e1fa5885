package source

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ----------------------------------------------------------------------------
// Period and naming
// ----------------------------------------------------------------------------

func TestParsePeriod(t *testing.T) {
	for _, s := range []string{"week", "Month", " year ", "DURATION"} {
		p, err := ParsePeriod(s)
		require.NoError(t, err, s)
		assert.True(t, p.Valid())
	}

	_, err := ParsePeriod("fortnight")
	assert.Error(t, err)
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name    string
		period  Period
		start   string
		end     string
		wantErr bool
	}{
		{"month ignores dates", PeriodMonth, "", "", false},
		{"valid duration", PeriodDuration, "2025-09-01", "2025-09-10", false},
		{"single day", PeriodDuration, "2025-09-01", "2025-09-01", false},
		{"missing start", PeriodDuration, "", "2025-09-10", true},
		{"missing end", PeriodDuration, "2025-09-01", "", true},
		{"bad start shape", PeriodDuration, "01-09-2025", "2025-09-10", true},
		{"impossible date", PeriodDuration, "2025-02-30", "2025-03-01", true},
		{"end before start", PeriodDuration, "2025-09-10", "2025-09-01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange(tt.period, tt.start, tt.end)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRange)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileNames(t *testing.T) {
	day := time.Date(2025, time.September, 5, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "waktusolat_SGR01_month_2025-09.csv", FileName(DefaultPrefix, "SGR01", PeriodMonth, day, "csv"))
	assert.Equal(t, "waktusolat_SGR01_year_2025-09.xlsx", FileName(DefaultPrefix, "SGR01", PeriodYear, day, ".XLSX"))
	assert.Equal(t, "waktusolat_SGR01_2025-09-01_to_2025-09-10.csv",
		DurationFileName(DefaultPrefix, "SGR01", "2025-09-01", "2025-09-10", "csv"))

	start, end, ok := parseDurationName("waktusolat_SGR01_2025-09-01_to_2025-09-10.csv")
	require.True(t, ok)
	assert.Equal(t, "2025-09-01", start)
	assert.Equal(t, "2025-09-10", end)

	_, _, ok = parseDurationName("waktusolat_SGR01_month_2025-09.csv")
	assert.False(t, ok)

	assert.Equal(t, "waktusolat_WLY01_week_2025-09.csv",
		TableName(DefaultPrefix, Request{Zone: "WLY01", Period: PeriodWeek}, day, "csv"))
	assert.Equal(t, "waktusolat_WLY01_2025-09-01_to_2025-09-03.csv",
		TableName(DefaultPrefix, Request{Zone: "WLY01", Period: PeriodDuration, Start: "2025-09-01", End: "2025-09-03"}, day, "csv"))
}

func TestMonthBounds(t *testing.T) {
	first, last := MonthBounds(time.Date(2024, time.February, 14, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-02-01", first)
	assert.Equal(t, "2024-02-29", last)
}

// ----------------------------------------------------------------------------
// Readers
// ----------------------------------------------------------------------------

func TestReadText(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"plain", []byte("date,fajr"), "date,fajr"},
		{"bom", append([]byte{0xEF, 0xBB, 0xBF}, "date"...), "date"},
		{"only bom", []byte{0xEF, 0xBB, 0xBF}, ""},
		{"partial bom kept", []byte{0xEF, 0xBB, 'a'}, "??a"},
		{"invalid byte", []byte{'a', 0x80, 'b'}, "a?b"},
		{"multibyte kept", []byte("Isyak ☪"), "Isyak ☪"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadText(bytes.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUTF8Sanitizer_SmallBuffer(t *testing.T) {
	s := NewUTF8Sanitizer(strings.NewReader("a☪b"))

	var out []byte
	buf := make([]byte, 1)
	for {
		n, err := s.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, "a☪b", string(out))
}

func TestReadText_TooLarge(t *testing.T) {
	_, err := ReadText(io.LimitReader(fillReader{}, MaxTableBytes+10))
	assert.ErrorIs(t, err, ErrTableTooLarge)
}

type fillReader struct{}

func (fillReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 'x'
	}
	return len(p), nil
}

func TestFlattenRows(t *testing.T) {
	assert.Equal(t, "a,b\n1,2", FlattenRows([][]string{{"a", "b"}, {"1", "2"}}))
	assert.Equal(t, "a;b\n1,5;2", FlattenRows([][]string{{"a", "b"}, {"1,5", "2"}}))
	assert.Equal(t, "", FlattenRows(nil))

	// Header with a comma still yields a semicolon-detected first line.
	got := FlattenRows([][]string{{"Date, Masihi", "Fajr"}, {"2025-09-01", "05:50"}})
	first := strings.SplitN(got, "\n", 2)[0]
	assert.Greater(t, strings.Count(first, ";"), strings.Count(first, ","))
}

// ----------------------------------------------------------------------------
// CSV output
// ----------------------------------------------------------------------------

func TestSaveCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	records := []Record{
		{"date": "02-Sep-2025", "fajr": "05:54:00"},
		{"date": "01-Sep-2025", "fajr": "05:54:00"},
	}

	path, err := SaveCSV(dir, "out.csv", records)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(Columns, ","), lines[0])
	assert.Equal(t, "02-Sep-2025,,,,05:54:00,,,,,", lines[1])
}

func TestDateRange(t *testing.T) {
	records := []Record{
		{"date": "10-Sep-2025"},
		{"date": "01-Sep-2025"},
		{"date": "01-Sep-2025"},
		{"date": "garbage"},
		{"date": ""},
	}

	r := DateRange(records)
	assert.Equal(t, Range{First: "2025-09-01", Last: "2025-09-10", Days: 2}, r)
	assert.Equal(t, Range{}, DateRange(nil))
}
