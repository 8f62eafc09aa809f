/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the HTTP surface. These decouple the internal
  domain model from the external contract; dates cross the wire as
  ISO-8601 strings (YYYY-MM-DD) and balances as whole-day integers.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ApplyLeaveRequest submits a new leave request.
type ApplyLeaveRequest struct {
	Employee  string `json:"employee"`
	LeaveType string `json:"leave_type"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// CancelLeaveRequest cancels a pending or approved request.
type CancelLeaveRequest struct {
	Employee string `json:"employee"`
}

// ProcessLeaveRequest identifies the acting manager.
type ProcessLeaveRequest struct {
	Manager string `json:"manager"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// MessageResponse carries the operation outcome message.
type MessageResponse struct {
	Message  string `json:"message"`
	RecordID int64  `json:"record_id,omitempty"`
}

// LeaveRecordDTO represents a leave record in API responses.
type LeaveRecordDTO struct {
	ID       int64  `json:"id"`
	Employee string `json:"employee"`
	Type     string `json:"type"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Days     int    `json:"days"`
	Status   string `json:"status"`
	Approver string `json:"approver,omitempty"`
}

func recordDTO(r leave.LeaveRecord) LeaveRecordDTO {
	dto := LeaveRecordDTO{
		ID:       int64(r.ID),
		Employee: string(r.Employee),
		Type:     string(r.Type),
		Start:    r.Start.String(),
		End:      r.End.String(),
		Days:     r.Duration(),
		Status:   string(r.Status),
	}
	if r.Approver != nil {
		dto.Approver = string(*r.Approver)
	}
	return dto
}

// EmployeeDTO represents a directory entry.
type EmployeeDTO struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Manager string `json:"manager,omitempty"`
}

func employeeDTO(e leave.Employee) EmployeeDTO {
	dto := EmployeeDTO{ID: string(e.ID), Role: string(e.Role)}
	if e.Manager != nil {
		dto.Manager = string(*e.Manager)
	}
	return dto
}

// PolicyDTO represents a leave-type policy.
type PolicyDTO struct {
	Type          string `json:"type"`
	MaxDays       int    `json:"max_days"`
	MinNoticeDays int    `json:"min_notice_days"`
	Description   string `json:"description"`
}

// ReportRowDTO is one line of the company leave report.
type ReportRowDTO struct {
	Employee     string         `json:"employee"`
	Role         string         `json:"role"`
	ApprovedDays int            `json:"approved_leave_days"`
	Balance      map[string]int `json:"leave_balance"`
}

// AuditEntryDTO represents one audit trail entry.
type AuditEntryDTO struct {
	ID       string `json:"id"`
	At       string `json:"at"`
	Actor    string `json:"actor"`
	Action   string `json:"action"`
	RecordID int64  `json:"record_id"`
	Employee string `json:"employee"`
	Type     string `json:"type"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func balanceMap(balances map[leave.LeaveType]leave.Days) map[string]int {
	out := make(map[string]int, len(balances))
	for t, d := range balances {
		out[string(t)] = d.Int()
	}
	return out
}
