package preslist

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/linnemanlabs/preslist/internal/docstore"
)

// ErrBadDate marks a date field that is present but cannot be parsed.
var ErrBadDate = errors.New("invalid date")

// PartialDate is a calendar date whose month and day may be unknown (zero).
// A zero Year means the whole date is unknown.
type PartialDate struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`
	Day   int `json:"day,omitempty"`
}

// IsZero reports whether the date is unknown.
func (d PartialDate) IsZero() bool { return d.Year == 0 }

// Compare orders dates chronologically; unknown components sort first
// within their parent, and unknown dates before all known ones.
func (d PartialDate) Compare(o PartialDate) int {
	switch {
	case d.Year != o.Year:
		return cmp.Compare(d.Year, o.Year)
	case d.Month != o.Month:
		return cmp.Compare(d.Month, o.Month)
	default:
		return cmp.Compare(d.Day, o.Day)
	}
}

// Start returns the first instant the date could refer to.
func (d PartialDate) Start() time.Time {
	if d.IsZero() {
		return time.Time{}
	}
	m, day := d.Month, d.Day
	if m == 0 {
		m = 1
	}
	if day == 0 {
		day = 1
	}
	return time.Date(d.Year, time.Month(m), day, 0, 0, 0, 0, time.UTC)
}

// String renders the known components as YYYY, YYYY-MM or YYYY-MM-DD.
func (d PartialDate) String() string {
	switch {
	case d.IsZero():
		return ""
	case d.Month == 0:
		return fmt.Sprintf("%04d", d.Year)
	case d.Day == 0:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	default:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
}

// Dates is the begin/end pair extracted from a document.
type Dates struct {
	Begin PartialDate
	End   PartialDate
}

// GetDates extracts begin and end dates from doc.
//
// Begin is taken from begin_date, then begin_year/begin_month/begin_day,
// then date, then year/month/day. End is taken from end_date, then
// end_year/end_month/end_day with missing components inherited from Begin;
// with no end information at all End equals Begin.
//
// Unparseable values are skipped and reported through an ErrBadDate error;
// the returned Dates still hold whatever could be read.
func GetDates(doc docstore.Document) (Dates, error) {
	var errs []error
	var out Dates

	sources := []func() (PartialDate, bool, error){
		func() (PartialDate, bool, error) { return dateValue(doc, "begin_date") },
		func() (PartialDate, bool, error) { return partialValue(doc, "begin_") },
		func() (PartialDate, bool, error) { return dateValue(doc, "date") },
		func() (PartialDate, bool, error) { return partialValue(doc, "") },
	}
	for _, src := range sources {
		d, ok, err := src()
		if err != nil {
			errs = append(errs, err)
		}
		if ok {
			out.Begin = d
			break
		}
	}

	end, ok, err := dateValue(doc, "end_date")
	if err != nil {
		errs = append(errs, err)
	}
	if !ok {
		end, ok, err = endComponents(doc, out.Begin)
		if err != nil {
			errs = append(errs, err)
		}
	}
	if ok {
		out.End = end
	} else {
		out.End = out.Begin
	}
	return out, errors.Join(errs...)
}

func endComponents(doc docstore.Document, begin PartialDate) (PartialDate, bool, error) {
	if d, ok, err := partialValue(doc, "end_"); ok || err != nil {
		return d, ok, err
	}
	// end_month / end_day without end_year continue the begin year
	if begin.IsZero() || (!doc.Has("end_month") && !doc.Has("end_day")) {
		return PartialDate{}, false, nil
	}
	d := begin
	if doc.Has("end_month") {
		m, err := monthValue(doc["end_month"])
		if err != nil {
			return PartialDate{}, false, fmt.Errorf("end_month: %w", err)
		}
		d.Month = m
		d.Day = 0
	}
	if doc.Has("end_day") {
		day, ok := doc.Int("end_day")
		if !ok || day < 1 || day > 31 {
			return PartialDate{}, false, fmt.Errorf("%w: end_day %v", ErrBadDate, doc["end_day"])
		}
		d.Day = day
	}
	return d, true, nil
}

// partialValue reads <prefix>year, <prefix>month and <prefix>day.
func partialValue(doc docstore.Document, prefix string) (PartialDate, bool, error) {
	if !doc.Has(prefix + "year") {
		return PartialDate{}, false, nil
	}
	y, ok := doc.Int(prefix + "year")
	if !ok || y <= 0 {
		return PartialDate{}, false, fmt.Errorf("%w: %syear %v", ErrBadDate, prefix, doc[prefix+"year"])
	}
	d := PartialDate{Year: y}
	if doc.Has(prefix + "month") {
		m, err := monthValue(doc[prefix+"month"])
		if err != nil {
			return d, true, fmt.Errorf("%smonth: %w", prefix, err)
		}
		d.Month = m
	}
	if d.Month != 0 && doc.Has(prefix+"day") {
		day, ok := doc.Int(prefix + "day")
		if !ok || day < 1 || day > 31 {
			return d, true, fmt.Errorf("%w: %sday %v", ErrBadDate, prefix, doc[prefix+"day"])
		}
		d.Day = day
	}
	return d, true, nil
}

// dateValue reads a single date-valued field (time.Time or ISO string).
func dateValue(doc docstore.Document, key string) (PartialDate, bool, error) {
	switch v := doc[key].(type) {
	case nil:
		return PartialDate{}, false, nil
	case time.Time:
		return PartialDate{Year: v.Year(), Month: int(v.Month()), Day: v.Day()}, true, nil
	case string:
		d, err := ParseDate(v)
		if err != nil {
			return PartialDate{}, false, fmt.Errorf("%s: %w", key, err)
		}
		return d, true, nil
	case int, int64, float64:
		if y, ok := doc.Int(key); ok && y > 0 {
			return PartialDate{Year: y}, true, nil
		}
	}
	return PartialDate{}, false, fmt.Errorf("%w: %s %v", ErrBadDate, key, doc[key])
}

// ParseDate parses YYYY, YYYY-MM or YYYY-MM-DD (an RFC 3339 time suffix is
// ignored).
func ParseDate(s string) (PartialDate, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i > 0 {
		s = s[:i]
	}
	parts := strings.Split(s, "-")
	if len(parts) == 0 || len(parts) > 3 {
		return PartialDate{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return PartialDate{}, fmt.Errorf("%w: %q", ErrBadDate, s)
		}
		nums[i] = n
	}
	d := PartialDate{Year: nums[0], Month: nums[1], Day: nums[2]}
	if d.Year <= 0 || d.Month < 0 || d.Month > 12 || d.Day < 0 || d.Day > 31 {
		return PartialDate{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	return d, nil
}

var monthAbbrev = [...]string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// MonthToInt converts a month number or (possibly abbreviated) English month
// name to 1..12.
func MonthToInt(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		return n, n >= 1 && n <= 12
	}
	if len(s) < 3 {
		return 0, false
	}
	for i, abbr := range monthAbbrev {
		if strings.HasPrefix(s, abbr) {
			return i + 1, true
		}
	}
	return 0, false
}

func monthValue(v any) (int, error) {
	if s, ok := v.(string); ok {
		if m, ok := MonthToInt(s); ok {
			return m, nil
		}
		return 0, fmt.Errorf("%w: month %q", ErrBadDate, s)
	}
	m, ok := docstore.Document{"m": v}.Int("m")
	if !ok || m < 1 || m > 12 {
		return 0, fmt.Errorf("%w: month %v", ErrBadDate, v)
	}
	return m, nil
}

// NumberSuffix returns the English ordinal suffix for n ("st", "nd", "rd",
// "th"), or "" for non-positive n.
func NumberSuffix(n int) string {
	if n <= 0 {
		return ""
	}
	if r := n % 100; r >= 10 && r <= 20 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// MonthFullName maps 1..12 to the English month name; anything else maps to "".
func MonthFullName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return time.Month(m).String()
}
