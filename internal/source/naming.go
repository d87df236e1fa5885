package source

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultPrefix starts every timetable file name.
const DefaultPrefix = "waktusolat"

// Extensions lists the file types a DirLoader reads, in preference order.
var Extensions = []string{"csv", "txt", "xlsx"}

// FileName names a period table: <prefix>_<zone>_<period>_<YYYY-MM>.<ext>.
// The month stamp is the month of day for every period.
func FileName(prefix, zone string, period Period, day time.Time, ext string) string {
	return fmt.Sprintf("%s_%s_%s_%s.%s", prefix, zone, period, day.Format("2006-01"), cleanExt(ext))
}

// DurationFileName names an explicit date-range table:
// <prefix>_<zone>_<start>_to_<end>.<ext>.
func DurationFileName(prefix, zone, start, end, ext string) string {
	return fmt.Sprintf("%s_%s_%s_to_%s.%s", prefix, zone, start, end, cleanExt(ext))
}

var durationNameRegex = regexp.MustCompile(`_(\d{4}-\d{2}-\d{2})_to_(\d{4}-\d{2}-\d{2})\.([A-Za-z]+)$`)

// parseDurationName extracts the range from a DurationFileName.
func parseDurationName(name string) (start, end string, ok bool) {
	m := durationNameRegex.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

func cleanExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// TableName names the file a fetch of req is saved to. day stamps period
// tables; duration tables are named by their range.
func TableName(prefix string, req Request, day time.Time, ext string) string {
	if req.Period == PeriodDuration {
		return DurationFileName(prefix, req.Zone, req.Start, req.End, ext)
	}
	return FileName(prefix, req.Zone, req.Period, day, ext)
}
