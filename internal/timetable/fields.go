package timetable

// Logical field names exposed to callers.
const (
	FieldDate      = "date"
	FieldDay       = "day"
	FieldHijriDate = "hijri-date"
	FieldImsak     = "imsak"
	FieldFajr      = "fajr"
	FieldSunrise   = "sunrise"
	FieldDhuhr     = "dhuhr"
	FieldAsr       = "asr"
	FieldMaghrib   = "maghrib"
	FieldIsha      = "isha"
)

// Field is a logical column together with the header aliases that identify it
// across differently named source tables. Aliases are tried in order.
type Field struct {
	Name    string
	Aliases []string
}

// DateAliases identify the Gregorian date column.
var DateAliases = []string{"date", "tarikh", "gregorian", "tarikh masihi"}

// DefaultFields returns the fields published for a day, in display order.
// A new slice is returned on every call so callers may append their own.
func DefaultFields() []Field {
	return []Field{
		{Name: FieldDate, Aliases: append([]string(nil), DateAliases...)},
		{Name: FieldDay, Aliases: []string{"day", "hari"}},
		{Name: FieldHijriDate, Aliases: []string{"hijri", "hijri date", "hijri_date", "tarikh hijri"}},
		{Name: FieldImsak, Aliases: []string{"imsak"}},
		{Name: FieldFajr, Aliases: []string{"fajr", "subuh", "subh"}},
		{Name: FieldSunrise, Aliases: []string{"syuruk", "sunrise", "shuruk"}},
		{Name: FieldDhuhr, Aliases: []string{"dhuhr", "zohor", "zuhur", "zuhr"}},
		{Name: FieldAsr, Aliases: []string{"asr", "asar"}},
		{Name: FieldMaghrib, Aliases: []string{"maghrib", "maghreb", "magrib"}},
		{Name: FieldIsha, Aliases: []string{"isha", "isyak", "ishak"}},
	}
}

// FieldNames returns the names of fields in order.
func FieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}
