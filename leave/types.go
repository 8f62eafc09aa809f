/*
Package leave implements the leave request lifecycle engine.

PURPOSE:
  This package contains the core domain for tracking employee leave
  requests against per-employee, per-leave-type balances. A leave record
  moves through a small state machine (pending, approved, rejected,
  cancelled) while the engine keeps the balance ledger and the record
  store consistent across every transition.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: directory entry with role and optional manager
  - Policy: per-leave-type rules (max annual days, minimum notice)
  - LeaveRecord: a single request with its lifecycle status
  - Status: the record state machine

DESIGN PRINCIPLES:
  1. Single owner: all mutable state lives behind the Store interfaces,
     mutated only through lifecycle operations
  2. History: records are never deleted; terminal records stay forever
  3. Type safety: strong typing for employee/leave-type/record identifiers
  4. Explicit absence: a missing manager is a nil Approver, never an
     empty-string sentinel

SEE ALSO:
  - engine.go: the lifecycle operations (Apply, Cancel, Process)
  - store.go: persistence interfaces (ledger, records, audit)
  - errors.go: the error taxonomy
*/
package leave

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string

type LeaveType string

// RecordID is issued by the record store on insert. IDs are monotonically
// increasing and never reused.
type RecordID int64

// =============================================================================
// EMPLOYEE - directory entry
// =============================================================================

type Role string

const (
	RoleEmployee Role = "Employee"
	RoleManager  Role = "Manager"
	RoleHR       Role = "HR"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	return r == RoleEmployee || r == RoleManager || r == RoleHR
}

// Employee is a directory entry. Manager is a back-reference used only for
// approver resolution; nil means top of the hierarchy.
type Employee struct {
	ID      EmployeeID
	Role    Role
	Manager *EmployeeID
}

// =============================================================================
// POLICY - per-leave-type rules
// =============================================================================

// Policy holds the rules for one leave type. MaxDays is the informational
// annual cap; it is not enforced per request. MinNoticeDays is enforced on
// every Apply. Policies are immutable after load.
type Policy struct {
	Type          LeaveType
	MaxDays       int
	MinNoticeDays int
}

// =============================================================================
// LEAVE RECORD - one request with lifecycle status
// =============================================================================

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// NonTerminalStatuses are the statuses still eligible for cancellation or
// balance reversal. Their records hold balance and block overlapping requests.
var NonTerminalStatuses = []Status{StatusPending, StatusApproved}

// ValidStatus reports whether s is one of the known statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// NonTerminal reports whether a record in this status can still transition.
// Approved counts as non-terminal because approved records may be cancelled.
func (s Status) NonTerminal() bool {
	return s == StatusPending || s == StatusApproved
}

// LeaveRecord is a single leave request. Start and End are inclusive
// calendar dates. Approver is resolved from the employee's manager at
// creation time and fixed for the record's lifetime, even if the org chart
// later changes; nil means the employee had no manager.
type LeaveRecord struct {
	ID       RecordID
	Employee EmployeeID
	Type     LeaveType
	Start    Date
	End      Date
	Status   Status
	Approver *EmployeeID
}

// Duration returns the number of days covered by the record, inclusive of
// both endpoints. Always >= 1 for a committed record.
func (r LeaveRecord) Duration() int {
	return r.End.DaysSince(r.Start) + 1
}

// Overlaps reports whether [r.Start, r.End] intersects [start, end].
func (r LeaveRecord) Overlaps(start, end Date) bool {
	return !start.After(r.End) && !end.Before(r.Start)
}
