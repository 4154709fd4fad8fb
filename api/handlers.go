/*
handlers.go - HTTP handlers for the timecard service

PURPOSE:
  Maps the timecard operation surface onto HTTP. Handlers parse the request,
  delegate to the service, and translate errors to status codes. All
  business rules live in the timecard package.

ENDPOINTS:
  GET    /api/timecards                             List (ordered by Opened)
  POST   /api/timecards                             Create
  GET    /api/timecards/{id}                        Fetch one
  DELETE /api/timecards/{id}                        Delete (Draft|Cancelled)
  GET    /api/timecards/{id}/lines                  Lines, presentation order
  POST   /api/timecards/{id}/lines                  Add line
  POST   /api/timecards/{id}/lines/{unique}         Replace line
  PATCH  /api/timecards/{id}/lines/{unique}/{field} Patch one field
  GET    /api/timecards/{id}/transitions            History
  POST   /api/timecards/{id}/submittal              Submit
  GET    /api/timecards/{id}/submittal              Latest submittal
  POST   /api/timecards/{id}/cancellation           Cancel
  GET    /api/timecards/{id}/cancellation           Latest cancellation
  POST   /api/timecards/{id}/rejection              Reject
  GET    /api/timecards/{id}/rejection              Latest rejection
  POST   /api/timecards/{id}/approval               Approve
  GET    /api/timecards/{id}/approval               Latest approval

ERROR HANDLING:
  - 400: Malformed body, bad UUID, failed field-value parse
  - 404: Unknown timecard/line/field, ownership mismatch on replace
  - 409: Status/actor guard violations, empty submit, status-gated
         transition queries, concurrent modification
  - 500: Everything else

SEE ALSO:
  - dto.go: Request/response structures
  - server.go: Router setup and middleware
  - timecard/service.go: Operations these handlers delegate to
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/timecard-engine/timecard"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *timecard.Service
}

// NewHandler creates a handler backed by the given service.
func NewHandler(svc *timecard.Service) *Handler {
	return &Handler{Service: svc}
}

// =============================================================================
// TIMECARD HANDLERS
// =============================================================================

// ListTimecards returns all timecards ordered by opening time.
func (h *Handler) ListTimecards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Service.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTimecardDTOs(cards))
}

// GetTimecard returns a single timecard.
func (h *Handler) GetTimecard(w http.ResponseWriter, r *http.Request) {
	id, ok := timecardID(w, r)
	if !ok {
		return
	}
	tc, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTimecardDTO(tc))
}

// CreateTimecard opens a new draft for the given worker.
func (h *Handler) CreateTimecard(w http.ResponseWriter, r *http.Request) {
	var req ActorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Resource == "" {
		writeError(w, http.StatusBadRequest, "resource is required", nil)
		return
	}

	tc, err := h.Service.Create(r.Context(), timecard.Actor(req.Resource))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTimecardDTO(tc))
}

// DeleteTimecard removes a draft or cancelled timecard.
func (h *Handler) DeleteTimecard(w http.ResponseWriter, r *http.Request) {
	id, ok := timecardID(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// =============================================================================
// LINE HANDLERS
// =============================================================================

// GetLines returns lines in presentation order (work date, then recorded).
func (h *Handler) GetLines(w http.ResponseWriter, r *http.Request) {
	id, ok := timecardID(w, r)
	if !ok {
		return
	}
	lines, err := h.Service.Lines(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLineDTOs(lines))
}

// AddLine appends a line to a draft timecard.
func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	id, ok := timecardID(w, r)
	if !ok {
		return
	}
	var req LineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	line, err := toLine(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid line", err)
		return
	}

	annotated, err := h.Service.AddLine(r.Context(), id, line)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLineDTO(annotated))
}

// ReplaceLine replaces a whole line, matched by unique identifier.
func (h *Handler) ReplaceLine(w http.ResponseWriter, r *http.Request) {
	id, ok := timecardID(w, r)
	if !ok {
		return
	}
	unique, err := uuid.Parse(chi.URLParam(r, "unique"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid line identifier", err)
		return
	}
	var req LineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	line, err := toLine(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid line", err)
		return
	}

	lines, err := h.Service.ReplaceLine(r.Context(), id, unique, line)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLineDTOs(lines))
}

// PatchLineField updates a single named field of one line.
func (h *Handler) PatchLineField(w http.ResponseWriter, r *http.Request) {
	id, ok := timecardID(w, r)
	if !ok {
		return
	}
	unique, err := uuid.Parse(chi.URLParam(r, "unique"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid line identifier", err)
		return
	}
	field := chi.URLParam(r, "field")

	var req PatchFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	lines, err := h.Service.PatchLineField(r.Context(), id, unique, field, req.Value)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLineDTOs(lines))
}

// =============================================================================
// TRANSITION HANDLERS
// =============================================================================

// GetTransitions returns the full transition history.
func (h *Handler) GetTransitions(w http.ResponseWriter, r *http.Request) {
	id, ok := timecardID(w, r)
	if !ok {
		return
	}
	trs, err := h.Service.Transitions(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransitionDTOs(trs))
}

// Submit moves a draft to Submitted.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.Service.Submit)
}

// Cancel moves a draft or submitted timecard to Cancelled.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.Service.Cancel)
}

// Reject moves a submitted timecard to Rejected.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.Service.Reject)
}

// Approve moves a submitted timecard to Approved.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.Service.Approve)
}

// GetSubmittal returns the latest submittal while the card is Submitted.
func (h *Handler) GetSubmittal(w http.ResponseWriter, r *http.Request) {
	h.transitionQuery(w, r, h.Service.Submittal)
}

// GetCancellation returns the latest cancellation while the card is Cancelled.
func (h *Handler) GetCancellation(w http.ResponseWriter, r *http.Request) {
	h.transitionQuery(w, r, h.Service.Cancellation)
}

// GetRejection returns the latest rejection while the card is Rejected.
func (h *Handler) GetRejection(w http.ResponseWriter, r *http.Request) {
	h.transitionQuery(w, r, h.Service.Rejection)
}

// GetApproval returns the latest approval while the card is Approved.
func (h *Handler) GetApproval(w http.ResponseWriter, r *http.Request) {
	h.transitionQuery(w, r, h.Service.Approval)
}

type lifecycleOp func(ctx context.Context, id timecard.ID, actor timecard.Actor) (timecard.Transition, error)

func (h *Handler) lifecycle(w http.ResponseWriter, r *http.Request, op lifecycleOp) {
	id, ok := timecardID(w, r)
	if !ok {
		return
	}
	var req ActorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tr, err := op(r.Context(), id, timecard.Actor(req.Resource))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransitionDTO(tr))
}

type transitionQuery func(ctx context.Context, id timecard.ID) (timecard.Transition, error)

func (h *Handler) transitionQuery(w http.ResponseWriter, r *http.Request, q transitionQuery) {
	id, ok := timecardID(w, r)
	if !ok {
		return
	}
	tr, err := q(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransitionDTO(tr))
}

// =============================================================================
// HELPERS
// =============================================================================

func timecardID(w http.ResponseWriter, r *http.Request) (timecard.ID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid timecard id", err)
		return timecard.ID{}, false
	}
	return id, true
}

// writeDomainError maps domain error kinds to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case timecard.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case timecard.IsConflict(err):
		writeError(w, http.StatusConflict, "Conflict", err)
	case errors.Is(err, timecard.ErrValidation):
		writeError(w, http.StatusBadRequest, "Validation failed", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
