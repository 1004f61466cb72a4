package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Field names one editable attribute of a weekly update.
type Field int

const (
	FieldTitle Field = iota + 1
	FieldSummary
	FieldCaptureURL
	FieldStatsCompletion
	FieldStatsWorkers
	FieldStatsWeather
	FieldWeek
	FieldDate
)

const dateLayout = "2006-01-02"

var fieldNames = map[Field]string{
	FieldTitle:           "title",
	FieldSummary:         "summary",
	FieldCaptureURL:      "capture_url",
	FieldStatsCompletion: "stats.completion",
	FieldStatsWorkers:    "stats.workers_on_site",
	FieldStatsWeather:    "stats.weather_conditions",
	FieldWeek:            "week",
	FieldDate:            "date",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// Numeric reports whether the field carries an integer value.
func (f Field) Numeric() bool {
	return f == FieldStatsCompletion || f == FieldStatsWorkers || f == FieldWeek
}

// ParseField maps a wire name such as "stats.completion" to a Field.
func ParseField(name string) (Field, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range fieldNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// FieldUpdate replaces exactly one field of a weekly update. Text is used by
// string fields, Number by numeric ones.
type FieldUpdate struct {
	Field  Field
	Text   string
	Number int
}

func SetTitle(v string) FieldUpdate { return FieldUpdate{Field: FieldTitle, Text: v} }
func SetSummary(v string) FieldUpdate { return FieldUpdate{Field: FieldSummary, Text: v} }
func SetCaptureURL(v string) FieldUpdate { return FieldUpdate{Field: FieldCaptureURL, Text: v} }
func SetCompletion(v int) FieldUpdate { return FieldUpdate{Field: FieldStatsCompletion, Number: v} }
func SetWorkersOnSite(v int) FieldUpdate { return FieldUpdate{Field: FieldStatsWorkers, Number: v} }
func SetWeather(v string) FieldUpdate { return FieldUpdate{Field: FieldStatsWeather, Text: v} }
func SetWeek(v int) FieldUpdate { return FieldUpdate{Field: FieldWeek, Number: v} }
func SetDate(v string) FieldUpdate { return FieldUpdate{Field: FieldDate, Text: v} }

// DecodeFieldUpdate builds a FieldUpdate from a wire field name and a raw JSON value.
func DecodeFieldUpdate(name string, raw json.RawMessage) (FieldUpdate, error) {
	f, err := ParseField(name)
	if err != nil {
		return FieldUpdate{}, err
	}
	if v := bytes.TrimSpace(raw); len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return FieldUpdate{}, fmt.Errorf("%w: %s requires a value", ErrInvalidValue, f)
	}
	op := FieldUpdate{Field: f}
	if f.Numeric() {
		if err := json.Unmarshal(raw, &op.Number); err != nil {
			return FieldUpdate{}, fmt.Errorf("%w: %s expects an integer", ErrInvalidValue, f)
		}
		return op, nil
	}
	if err := json.Unmarshal(raw, &op.Text); err != nil {
		return FieldUpdate{}, fmt.Errorf("%w: %s expects a string", ErrInvalidValue, f)
	}
	return op, nil
}

// Apply is the single reducer for weekly update edits. The input is not modified.
func (op FieldUpdate) Apply(u WeeklyUpdate) (WeeklyUpdate, error) {
	switch op.Field {
	case FieldTitle:
		u.Title = op.Text
	case FieldSummary:
		u.Summary = op.Text
	case FieldCaptureURL:
		u.CaptureURL = strings.TrimSpace(op.Text)
	case FieldStatsCompletion:
		if op.Number < 0 || op.Number > 100 {
			return u, ErrInvalidCompletion
		}
		u.Stats.Completion = op.Number
	case FieldStatsWorkers:
		if op.Number < 0 {
			return u, ErrInvalidWorkers
		}
		u.Stats.WorkersOnSite = op.Number
	case FieldStatsWeather:
		u.Stats.Weather = op.Text
	case FieldWeek:
		if op.Number < 1 {
			return u, ErrInvalidWeek
		}
		u.Week = op.Number
	case FieldDate:
		if _, err := time.Parse(dateLayout, op.Text); err != nil {
			return u, ErrInvalidDate
		}
		u.Date = op.Text
	default:
		return u, fmt.Errorf("%w: %s", ErrUnknownField, op.Field)
	}
	return u, nil
}
