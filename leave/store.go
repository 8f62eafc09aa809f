/*
store.go - Persistence interfaces for balances, records, and audit entries

PURPOSE:
  Defines the interface between the lifecycle engine and storage. The
  engine is the only writer; both stores are owned by it and guarded by
  its mutual-exclusion scope.

KEY INTERFACES:
  BalanceLedger: per-employee, per-leave-type remaining-day counters
  RecordStore:   the authoritative set of leave records
  Store:         the single logical owner of both
  TxStore:       optional atomic multi-write support
  AuditLog:      append-only who-did-what trail
  Seeder:        startup population (org files, demo data)

RECORD STORE CONTRACT:
  Append-only with in-place status mutation. Insert issues the next
  sequential RecordID atomically; there is no delete operation, so
  history is retained indefinitely and IDs are never reused.
  UpdateStatus is compare-and-set on the expected current status, which
  makes illegal state transitions unrepresentable at the store level.

LEDGER CONTRACT:
  Debit and Credit are plain integer-day adjustments with no validation
  of their own; the engine guarantees non-negativity before debiting.

IMPLEMENTATIONS:
  - store/memory: in-memory, for tests and development
  - store/sqlite: SQLite-backed, for production

SEE ALSO:
  - engine.go: the only caller of the mutating operations
*/
package leave

import (
	"context"
	"time"
)

// =============================================================================
// BALANCE LEDGER
// =============================================================================

type BalanceLedger interface {
	// Debit reduces the remaining balance. The engine checks sufficiency first.
	Debit(ctx context.Context, employee EmployeeID, leaveType LeaveType, amount Days) error

	// Credit restores days to the remaining balance.
	Credit(ctx context.Context, employee EmployeeID, leaveType LeaveType, amount Days) error

	// Read returns the remaining balance, zero for an unknown pair.
	Read(ctx context.Context, employee EmployeeID, leaveType LeaveType) (Days, error)

	// ReadAll returns all balances for an employee, keyed by leave type.
	// Unknown employees yield an empty map.
	ReadAll(ctx context.Context, employee EmployeeID) (map[LeaveType]Days, error)
}

// =============================================================================
// RECORD STORE
// =============================================================================

type RecordStore interface {
	// Insert assigns the next sequential RecordID and stores the record.
	Insert(ctx context.Context, record LeaveRecord) (RecordID, error)

	// FindByID returns the record, or nil if no such id exists.
	FindByID(ctx context.Context, id RecordID) (*LeaveRecord, error)

	// FindByEmployee returns the employee's records ordered by id.
	// A non-nil status restricts the result to that status.
	FindByEmployee(ctx context.Context, employee EmployeeID, status *Status) ([]LeaveRecord, error)

	// AllOverlapping returns the employee's records whose [Start, End] range
	// intersects [start, end] and whose status is in statuses.
	AllOverlapping(ctx context.Context, employee EmployeeID, start, end Date, statuses []Status) ([]LeaveRecord, error)

	// UpdateStatus transitions a record from `from` to `to`. Returns
	// ErrNotFound if the record does not exist or is not in `from`.
	UpdateStatus(ctx context.Context, id RecordID, from, to Status) error
}

// Store is the single logical owner of all mutable state.
type Store interface {
	BalanceLedger
	RecordStore
}

// TxStore extends Store with atomic multi-write support. The engine uses it
// when available so a balance adjustment and its record mutation commit as
// one unit.
type TxStore interface {
	Store

	// WithTx executes fn against a transactional view. If fn returns an
	// error the writes are rolled back.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// =============================================================================
// SEEDING - startup population only
// =============================================================================

// Seeder populates a store from org configuration at startup. Seeding is
// idempotent: rows that already exist win over seed data.
type Seeder interface {
	SeedBalance(ctx context.Context, employee EmployeeID, leaveType LeaveType, amount Days) error

	// SeedRecord stores a record under its preset ID. Later Inserts continue
	// above the highest seeded id.
	SeedRecord(ctx context.Context, record LeaveRecord) error
}

// =============================================================================
// AUDIT LOG - Separate from the stores, tracks who did what when
// =============================================================================

type AuditAction string

const (
	AuditApplied   AuditAction = "leave_applied"
	AuditApproved  AuditAction = "leave_approved"
	AuditRejected  AuditAction = "leave_rejected"
	AuditCancelled AuditAction = "leave_cancelled"
)

// AuditEntry records one lifecycle transition.
type AuditEntry struct {
	ID       string
	At       time.Time
	Actor    EmployeeID
	Action   AuditAction
	Record   RecordID
	Employee EmployeeID
	Type     LeaveType
}

// AuditLog stores audit entries. Append-only.
type AuditLog interface {
	Append(ctx context.Context, entry AuditEntry) error
	Query(ctx context.Context, filter AuditFilter) ([]AuditEntry, error)
}

type AuditFilter struct {
	Employee *EmployeeID
	Actor    *EmployeeID
	Actions  []AuditAction
}
