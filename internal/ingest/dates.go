package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// sheetEpochOffset is the serial day number of 1970-01-01 in spreadsheet exports.
const sheetEpochOffset = 25569

// minSerialText is the smallest text cell read as a serial day (1927-05-18).
// Shorter numbers such as a bare year are parsed as dates instead.
const minSerialText = 10000

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006",
	"2006-01",
	"2006",
}

// ParseSheetDate normalizes a spreadsheet cell into a timestamp. Unparsable input
// falls back to now instead of failing the row.
func ParseSheetDate(value any, now time.Time) time.Time {
	switch v := value.(type) {
	case time.Time:
		if !v.IsZero() {
			return v
		}
	case float64:
		if t, ok := fromSerial(v); ok {
			return t
		}
	case float32:
		if t, ok := fromSerial(float64(v)); ok {
			return t
		}
	case int:
		if t, ok := fromSerial(float64(v)); ok {
			return t
		}
	case int64:
		if t, ok := fromSerial(float64(v)); ok {
			return t
		}
	case string:
		if t, ok := parseDateString(v); ok {
			return t
		}
	}
	return now
}

func parseDateString(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil && f >= minSerialText {
		return fromSerial(f)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func fromSerial(days float64) (time.Time, bool) {
	if math.IsNaN(days) || math.IsInf(days, 0) {
		return time.Time{}, false
	}
	secs := (days - sheetEpochOffset) * 86400
	if math.Abs(secs) > 1e11 {
		return time.Time{}, false
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9))).UTC(), true
}
