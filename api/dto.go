/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - timecard/types.go: Domain model these map to
*/
package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/timecard-engine/timecard"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ActorRequest carries the identity performing a lifecycle operation
// (create, submit, cancel, reject, approve). Identity is supplied by the
// caller; there is no session-derived identity.
type ActorRequest struct {
	Resource string `json:"resource"`
}

// LineRequest is the request body for adding or replacing a line.
type LineRequest struct {
	UniqueIdentifier string  `json:"unique_identifier,omitempty"`
	Resource         string  `json:"resource,omitempty"`
	WorkDate         string  `json:"work_date"`
	Project          string  `json:"project"`
	Hours            float64 `json:"hours"`
	LineNumber       float64 `json:"line_number,omitempty"`
	RecordIdentity   int     `json:"rec_id,omitempty"`
	RecordVersion    int     `json:"rec_version,omitempty"`
	Version          string  `json:"version,omitempty"`
	Week             int     `json:"week,omitempty"`
	Year             int     `json:"year,omitempty"`
}

// PatchFieldRequest carries the raw textual value for a single-field patch.
type PatchFieldRequest struct {
	Value string `json:"value"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// TimecardDTO represents a timecard in API responses.
type TimecardDTO struct {
	ID          string          `json:"id"`
	Owner       string          `json:"owner"`
	Opened      string          `json:"opened"`
	Status      string          `json:"status"`
	Lines       []LineDTO       `json:"lines"`
	Transitions []TransitionDTO `json:"transitions"`
}

// LineDTO represents one time-entry line.
type LineDTO struct {
	UniqueIdentifier string  `json:"unique_identifier"`
	Resource         string  `json:"resource,omitempty"`
	WorkDate         string  `json:"work_date"`
	Recorded         string  `json:"recorded"`
	Project          string  `json:"project"`
	Hours            float64 `json:"hours"`
	LineNumber       float64 `json:"line_number"`
	RecordIdentity   int     `json:"rec_id"`
	RecordVersion    int     `json:"rec_version"`
	Version          string  `json:"version,omitempty"`
	Week             int     `json:"week"`
	Year             int     `json:"year"`
	Day              string  `json:"day"`
}

// TransitionDTO represents one status change.
type TransitionDTO struct {
	Kind           string `json:"kind"`
	Actor          string `json:"actor"`
	Resource       string `json:"resource"`
	OccurredAt     string `json:"occurred_at"`
	TransitionedTo string `json:"transitioned_to"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toTimecardDTO(tc *timecard.Timecard) TimecardDTO {
	return TimecardDTO{
		ID:          tc.ID.String(),
		Owner:       string(tc.Owner),
		Opened:      tc.Opened.Format(time.RFC3339),
		Status:      string(tc.Status()),
		Lines:       toLineDTOs(tc.Lines.PresentationOrder()),
		Transitions: toTransitionDTOs(tc.Transitions),
	}
}

func toTimecardDTOs(cards []*timecard.Timecard) []TimecardDTO {
	dtos := make([]TimecardDTO, len(cards))
	for i, tc := range cards {
		dtos[i] = toTimecardDTO(tc)
	}
	return dtos
}

func toLineDTO(line timecard.Line) LineDTO {
	hours, _ := line.Hours.Float64()
	lineNumber, _ := line.LineNumber.Float64()
	return LineDTO{
		UniqueIdentifier: line.UniqueIdentifier.String(),
		Resource:         string(line.Resource),
		WorkDate:         line.WorkDate.Format("2006-01-02"),
		Recorded:         line.Recorded.Format(time.RFC3339),
		Project:          line.Project,
		Hours:            hours,
		LineNumber:       lineNumber,
		RecordIdentity:   line.RecordIdentity,
		RecordVersion:    line.RecordVersion,
		Version:          line.Version,
		Week:             line.Week,
		Year:             line.Year,
		Day:              line.Day.String(),
	}
}

func toLineDTOs(lines []timecard.Line) []LineDTO {
	dtos := make([]LineDTO, len(lines))
	for i, line := range lines {
		dtos[i] = toLineDTO(line)
	}
	return dtos
}

func toTransitionDTO(tr timecard.Transition) TransitionDTO {
	return TransitionDTO{
		Kind:           string(tr.Kind),
		Actor:          string(tr.Actor),
		Resource:       string(tr.Resource),
		OccurredAt:     tr.OccurredAt.Format(time.RFC3339),
		TransitionedTo: string(tr.TransitionedTo),
	}
}

func toTransitionDTOs(trs []timecard.Transition) []TransitionDTO {
	dtos := make([]TransitionDTO, len(trs))
	for i, tr := range trs {
		dtos[i] = toTransitionDTO(tr)
	}
	return dtos
}

// toLine converts an incoming line body to the domain type. Unset
// identifiers stay uuid.Nil so the ledger assigns one at add time.
func toLine(req LineRequest) (timecard.Line, error) {
	line := timecard.Line{
		Resource:       timecard.Actor(req.Resource),
		Project:        req.Project,
		Hours:          decimal.NewFromFloat(req.Hours),
		LineNumber:     decimal.NewFromFloat(req.LineNumber),
		RecordIdentity: req.RecordIdentity,
		RecordVersion:  req.RecordVersion,
		Version:        req.Version,
		Week:           req.Week,
		Year:           req.Year,
	}

	if req.UniqueIdentifier != "" {
		id, err := uuid.Parse(req.UniqueIdentifier)
		if err != nil {
			return timecard.Line{}, err
		}
		line.UniqueIdentifier = id
	}
	if req.WorkDate != "" {
		wd, err := time.Parse("2006-01-02", req.WorkDate)
		if err != nil {
			return timecard.Line{}, err
		}
		line.WorkDate = wd
	}
	return line, nil
}
