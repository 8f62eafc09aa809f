/*
handlers.go - HTTP API handlers for the leave lifecycle engine

PURPOSE:
  Exposes the engine's three commands and the query surface over REST.
  Handlers parse HTTP, delegate to the engine/reporter, and translate
  the error taxonomy to status codes. All business rules live in the
  leave package.

ENDPOINTS:
  Commands:
    POST /api/leave                   Apply for leave
    POST /api/leave/{id}/cancel       Cancel a pending/approved request
    POST /api/leave/{id}/approve      Approve a pending request
    POST /api/leave/{id}/reject       Reject a pending request

  Queries:
    GET  /api/employees               Directory listing
    GET  /api/employees/{id}          One directory entry
    GET  /api/employees/{id}/balance  Remaining days per leave type
    GET  /api/employees/{id}/leave    Leave records, ?status= filter
    GET  /api/policies                All leave-type policies
    GET  /api/policies/{type}         One policy with description
    GET  /api/reports/leave           Company-wide leave report
    GET  /api/audit                   Audit trail, ?employee=&actor=

ERROR HANDLING:
  - 400: malformed body/date, invalid duration, notice or balance failure
  - 404: unknown employee/leave-type/record (also unauthorized actors,
         deliberately indistinguishable)
  - 409: conflicting active request
  - 500: internal errors

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine    *leave.Engine
	Reporter  *leave.Reporter
	Directory *leave.Directory
	Policies  *leave.PolicyStore
	Audit     leave.AuditLog // optional
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// ApplyLeave submits a new leave request.
func (h *Handler) ApplyLeave(w http.ResponseWriter, r *http.Request) {
	var req ApplyLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	id, err := h.Engine.Apply(r.Context(),
		leave.EmployeeID(req.Employee),
		leave.LeaveType(req.LeaveType),
		req.Start, req.End)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, MessageResponse{
		Message: fmt.Sprintf("Leave request submitted for %s (%s) from %s to %s.",
			req.Employee, req.LeaveType, req.Start, req.End),
		RecordID: int64(id),
	})
}

// CancelLeave cancels a pending or approved request.
func (h *Handler) CancelLeave(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	var req CancelLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Engine.Cancel(r.Context(), leave.EmployeeID(req.Employee), id); err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Leave ID %d cancelled.", id),
	})
}

// ApproveLeave approves a pending request.
func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	h.process(w, r, true)
}

// RejectLeave rejects a pending request.
func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	h.process(w, r, false)
}

func (h *Handler) process(w http.ResponseWriter, r *http.Request, approve bool) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	var req ProcessLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Engine.Process(r.Context(), leave.EmployeeID(req.Manager), id, approve); err != nil {
		writeEngineError(w, err)
		return
	}

	verdict := "approved"
	if !approve {
		verdict = "rejected"
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Leave %s.", verdict),
	})
}

// =============================================================================
// QUERY HANDLERS
// =============================================================================

// ListEmployees returns the directory.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees := h.Directory.All()
	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = employeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns one directory entry.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))
	emp, ok := h.Directory.Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, employeeDTO(emp))
}

// GetBalance returns an employee's remaining days per leave type.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))
	balances, err := h.Reporter.Balances(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read balance", err)
		return
	}
	writeJSON(w, http.StatusOK, balanceMap(balances))
}

// ListLeaveRecords returns an employee's records, optionally filtered by
// ?status=.
func (h *Handler) ListLeaveRecords(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))

	var filter *leave.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := leave.Status(raw)
		if !leave.ValidStatus(status) {
			writeError(w, http.StatusBadRequest, "Unknown status filter", nil)
			return
		}
		filter = &status
	}

	records, err := h.Reporter.RecordsByStatus(r.Context(), id, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave records", err)
		return
	}

	dtos := make([]LeaveRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = recordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListPolicies returns every leave-type policy.
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	policies := h.Policies.All()
	dtos := make([]PolicyDTO, len(policies))
	for i, p := range policies {
		dtos[i] = policyDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPolicy returns one leave-type policy with its description text.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	t := leave.LeaveType(chi.URLParam(r, "type"))
	policy, ok := h.Policies.Lookup(t)
	if !ok {
		writeError(w, http.StatusNotFound, "Leave type not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, policyDTO(policy))
}

// LeaveReport returns the company-wide report.
func (h *Handler) LeaveReport(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Reporter.Report(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build report", err)
		return
	}

	dtos := make([]ReportRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = ReportRowDTO{
			Employee:     string(row.Employee),
			Role:         string(row.Role),
			ApprovedDays: row.ApprovedDays,
			Balance:      balanceMap(row.Balances),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AuditTrail returns audit entries, filterable by ?employee= and ?actor=.
func (h *Handler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	if h.Audit == nil {
		writeError(w, http.StatusNotFound, "Audit trail not enabled", nil)
		return
	}

	var filter leave.AuditFilter
	if raw := r.URL.Query().Get("employee"); raw != "" {
		id := leave.EmployeeID(raw)
		filter.Employee = &id
	}
	if raw := r.URL.Query().Get("actor"); raw != "" {
		id := leave.EmployeeID(raw)
		filter.Actor = &id
	}

	entries, err := h.Audit.Query(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to query audit trail", err)
		return
	}

	dtos := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = AuditEntryDTO{
			ID:       e.ID,
			At:       e.At.Format("2006-01-02T15:04:05Z07:00"),
			Actor:    string(e.Actor),
			Action:   string(e.Action),
			RecordID: int64(e.Record),
			Employee: string(e.Employee),
			Type:     string(e.Type),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func policyDTO(p leave.Policy) PolicyDTO {
	return PolicyDTO{
		Type:          string(p.Type),
		MaxDays:       p.MaxDays,
		MinNoticeDays: p.MinNoticeDays,
		Description: fmt.Sprintf("%s leave: max %d days per year, minimum %d days advance notice",
			p.Type, p.MaxDays, p.MinNoticeDays),
	}
}

func recordID(w http.ResponseWriter, r *http.Request) (leave.RecordID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid leave record id", err)
		return 0, false
	}
	return leave.RecordID(id), true
}

// writeEngineError maps the error taxonomy to HTTP status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, leave.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, leave.ErrConflict):
		writeError(w, http.StatusConflict, "Conflicting leave request", err)
	case leave.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Request rejected", err)
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
