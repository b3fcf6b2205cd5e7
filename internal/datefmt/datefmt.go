// Package datefmt formats log timestamps for display in the supported
// locales.
package datefmt

import (
	"fmt"
	"time"

	"github.com/goodsign/monday"

	"github.com/brads3290/ccviewer/internal/models"
)

// Locale selects a date pattern table.
type Locale string

const (
	LocaleEnglish  Locale = "en"
	LocaleJapanese Locale = "ja"
	LocaleChinese  Locale = "zh_CN"
)

// Target names the shape of the formatted string.
type Target string

const (
	TargetMonth    Target = "month"
	TargetDay      Target = "day"
	TargetTime     Target = "time"
	TargetFull     Target = "full"
	TargetTimeOnly Target = "timeOnly"
)

// Options controls FormatLocaleDate. A nil Location formats in local time.
type Options struct {
	Locale   Locale
	Target   Target
	Location *time.Location
}

type patternSet struct {
	month, day, time, full, timeOnly string
}

// Layouts use Go reference time. Full English dates are built separately
// because of the ordinal day.
var patterns = map[Locale]patternSet{
	LocaleEnglish: {
		month:    "01/2006",
		day:      "02/01/2006",
		time:     "02/01/2006 15:04",
		timeOnly: "15:04",
	},
	LocaleJapanese: {
		month:    "2006年1月",
		day:      "2006年1月2日",
		time:     "2006年1月2日 15:04",
		full:     "2006年1月2日 Monday",
		timeOnly: "15:04",
	},
	LocaleChinese: {
		month:    "2006年1月",
		day:      "2006年1月2日",
		time:     "2006年1月2日 15:04",
		full:     "2006年1月2日 Monday",
		timeOnly: "15:04",
	},
}

var defaultPatterns = patternSet{
	month:    "2006-01",
	day:      "2006-01-02",
	time:     "2006-01-02 15:04",
	full:     "Monday, 2006-01-02",
	timeOnly: "15:04",
}

var mondayLocales = map[Locale]monday.Locale{
	LocaleJapanese: monday.LocaleJaJP,
	LocaleChinese:  monday.LocaleZhCN,
}

// ParseTimestamp parses an ISO-8601 log timestamp.
func ParseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", ts, err)
	}
	return t, nil
}

// FormatLocaleDate formats an ISO timestamp. Unparseable input yields "".
func FormatLocaleDate(ts string, opts Options) string {
	t, err := ParseTimestamp(ts)
	if err != nil {
		return ""
	}
	return FormatTime(t, opts)
}

// FormatTime formats an already parsed time.
func FormatTime(t time.Time, opts Options) string {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)

	set, ok := patterns[opts.Locale]
	if !ok {
		set = defaultPatterns
	}

	switch opts.Target {
	case TargetMonth:
		return t.Format(set.month)
	case TargetDay:
		return t.Format(set.day)
	case TargetTimeOnly:
		return t.Format(set.timeOnly)
	case TargetFull:
		if opts.Locale == LocaleEnglish {
			return fmt.Sprintf("%s, %s %s, %d", t.Weekday(), Ordinal(t.Day()), t.Month(), t.Year())
		}
		if ml, ok := mondayLocales[opts.Locale]; ok {
			return monday.Format(t, set.full, ml)
		}
		return t.Format(set.full)
	default:
		return t.Format(set.time)
	}
}

// Ordinal renders a day of month with its English suffix.
func Ordinal(day int) string {
	suffix := "th"
	if day%100 < 11 || day%100 > 13 {
		switch day % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", day, suffix)
}

// DateFromTimestamp returns the UTC calendar date (YYYY-MM-DD), or "" when
// the timestamp does not parse.
func DateFromTimestamp(ts string) string {
	t, err := ParseTimestamp(ts)
	if err != nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

// IsSameDay reports whether two timestamps fall on the same UTC date.
// Two unparseable timestamps compare equal, both being "".
func IsSameDay(a, b string) bool {
	return DateFromTimestamp(a) == DateFromTimestamp(b)
}

// ConversationTimestamp returns the timestamp shown for an entry. Summaries
// have none; file-history snapshots carry theirs inside the snapshot.
func ConversationTimestamp(entry models.Entry) (string, bool) {
	switch e := entry.(type) {
	case *models.SummaryEntry, *models.UnknownEntry:
		return "", false
	case *models.FileHistorySnapshotEntry:
		return e.Snapshot.Timestamp, e.Snapshot.Timestamp != ""
	case *models.QueueOperationEntry:
		return e.Timestamp, e.Timestamp != ""
	case models.BaseProvider:
		ts := e.Base().Timestamp
		return ts, ts != ""
	}
	return "", false
}
