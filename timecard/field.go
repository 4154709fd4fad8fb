/*
field.go - Field codec for single-field line patches

PURPOSE:
  Parses a named field's textual update into a typed value and applies it to
  one line. The set of recognized fields is closed: each entry carries its
  own parser and setter, replacing the stringly-typed branch-per-field
  dispatch of the system this was ported from.

FIELD TABLE:
  recorded          timestamp
  lineNumber        decimal
  recId             integer
  recVersion        integer
  uniqueIdentifier  uuid
  version           text
  week              integer
  year              integer
  day               day-of-week name
  hours             decimal
  project           text

  "workDate" is intentionally NOT in the table and always reports not-found,
  matching the behavior of the system of record this engine replaces.

ERROR SEMANTICS:
  Unrecognized field name -> ErrNotFound (not a generic bad-request)
  Unparsable value        -> FieldError wrapping ErrValidation

SEE ALSO:
  - timecard.go: PatchLineField guard (status must be Draft)
*/
package timecard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fieldSetter parses raw and mutates one field of the line.
type fieldSetter func(line *Line, raw string) error

// lineFields is the closed set of patchable fields.
var lineFields = map[string]fieldSetter{
	"recorded": func(line *Line, raw string) error {
		t, err := parseTimestamp(raw)
		if err != nil {
			return err
		}
		line.Recorded = t
		return nil
	},
	"lineNumber": func(line *Line, raw string) error {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return err
		}
		line.LineNumber = d
		return nil
	},
	"recId": func(line *Line, raw string) error {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		line.RecordIdentity = n
		return nil
	},
	"recVersion": func(line *Line, raw string) error {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		line.RecordVersion = n
		return nil
	},
	"uniqueIdentifier": func(line *Line, raw string) error {
		id, err := uuid.Parse(raw)
		if err != nil {
			return err
		}
		line.UniqueIdentifier = id
		return nil
	},
	"version": func(line *Line, raw string) error {
		line.Version = raw
		return nil
	},
	"week": func(line *Line, raw string) error {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		line.Week = n
		return nil
	},
	"year": func(line *Line, raw string) error {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		line.Year = n
		return nil
	},
	"day": func(line *Line, raw string) error {
		d, err := ParseWeekday(raw)
		if err != nil {
			return err
		}
		line.Day = d
		return nil
	},
	"hours": func(line *Line, raw string) error {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return err
		}
		line.Hours = d
		return nil
	},
	"project": func(line *Line, raw string) error {
		line.Project = raw
		return nil
	},
}

// SetField applies a raw textual update to the named field of a line.
// Unknown fields (including "workDate") report ErrNotFound; parse failures
// report a FieldError.
func SetField(line *Line, field, raw string) error {
	set, ok := lineFields[field]
	if !ok {
		return ErrNotFound
	}
	if err := set(line, raw); err != nil {
		return &FieldError{Field: field, Value: raw, Cause: err}
	}
	return nil
}

// RecognizedField reports whether the codec can patch the named field.
func RecognizedField(field string) bool {
	_, ok := lineFields[field]
	return ok
}

// timestampLayouts in order of preference for "recorded" patches.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// ParseWeekday parses an English day name ("Monday", case-insensitive).
func ParseWeekday(raw string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(raw, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unrecognized day %q", raw)
}
