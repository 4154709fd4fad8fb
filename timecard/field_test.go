package timecard_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timecard-engine/timecard"
)

// =============================================================================
// FIELD CODEC - Recognized fields
// =============================================================================

func TestSetField_AllRecognizedFields(t *testing.T) {
	newID := uuid.New()

	cases := []struct {
		field string
		raw   string
		check func(t *testing.T, line timecard.Line)
	}{
		{"recorded", "2026-03-02T10:30:00Z", func(t *testing.T, l timecard.Line) {
			assert.Equal(t, time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC), l.Recorded)
		}},
		{"lineNumber", "2.5", func(t *testing.T, l timecard.Line) {
			assert.Equal(t, "2.5", l.LineNumber.String())
		}},
		{"recId", "42", func(t *testing.T, l timecard.Line) {
			assert.Equal(t, 42, l.RecordIdentity)
		}},
		{"recVersion", "7", func(t *testing.T, l timecard.Line) {
			assert.Equal(t, 7, l.RecordVersion)
		}},
		{"uniqueIdentifier", newID.String(), func(t *testing.T, l timecard.Line) {
			assert.Equal(t, newID, l.UniqueIdentifier)
		}},
		{"version", "v2", func(t *testing.T, l timecard.Line) {
			assert.Equal(t, "v2", l.Version)
		}},
		{"week", "10", func(t *testing.T, l timecard.Line) {
			assert.Equal(t, 10, l.Week)
		}},
		{"year", "2026", func(t *testing.T, l timecard.Line) {
			assert.Equal(t, 2026, l.Year)
		}},
		{"day", "Wednesday", func(t *testing.T, l timecard.Line) {
			assert.Equal(t, time.Wednesday, l.Day)
		}},
		{"hours", "7.25", func(t *testing.T, l timecard.Line) {
			assert.Equal(t, "7.25", l.Hours.String())
		}},
		{"project", "migration", func(t *testing.T, l timecard.Line) {
			assert.Equal(t, "migration", l.Project)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			var line timecard.Line
			err := timecard.SetField(&line, tc.field, tc.raw)
			require.NoError(t, err)
			tc.check(t, line)
		})
	}
}

// =============================================================================
// FIELD CODEC - Error semantics
// =============================================================================

func TestSetField_UnknownFieldIsNotFound(t *testing.T) {
	// Unrecognized field names report not-found, not a validation error
	var line timecard.Line
	err := timecard.SetField(&line, "overtime", "1")
	assert.ErrorIs(t, err, timecard.ErrNotFound)
}

func TestSetField_WorkDateExcluded(t *testing.T) {
	// "workDate" is deliberately outside the patchable set
	var line timecard.Line
	err := timecard.SetField(&line, "workDate", "2026-03-02")
	assert.ErrorIs(t, err, timecard.ErrNotFound)
	assert.False(t, timecard.RecognizedField("workDate"))
}

func TestSetField_MalformedValuesAreValidationErrors(t *testing.T) {
	cases := []struct {
		field string
		raw   string
	}{
		{"recorded", "not-a-time"},
		{"lineNumber", "abc"},
		{"recId", "4.5"},
		{"recVersion", ""},
		{"uniqueIdentifier", "not-a-uuid"},
		{"week", "ten"},
		{"year", "20x6"},
		{"day", "Funday"},
		{"hours", "eight"},
	}

	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			var line timecard.Line
			err := timecard.SetField(&line, tc.field, tc.raw)

			assert.ErrorIs(t, err, timecard.ErrValidation)
			var fieldErr *timecard.FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tc.field, fieldErr.Field)
			assert.Equal(t, tc.raw, fieldErr.Value)
		})
	}
}

func TestSetField_FailedParseLeavesLineUntouched(t *testing.T) {
	// GIVEN: A line with hours already set
	var line timecard.Line
	require.NoError(t, timecard.SetField(&line, "hours", "8"))

	// WHEN: A malformed patch arrives
	err := timecard.SetField(&line, "hours", "bogus")

	// THEN: The previous value survives
	assert.Error(t, err)
	assert.Equal(t, "8", line.Hours.String())
}

func TestParseWeekday_CaseInsensitive(t *testing.T) {
	d, err := timecard.ParseWeekday("monday")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, d)

	d, err = timecard.ParseWeekday("SATURDAY")
	require.NoError(t, err)
	assert.Equal(t, time.Saturday, d)

	_, err = timecard.ParseWeekday("")
	assert.Error(t, err)
}
