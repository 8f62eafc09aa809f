/*
engine.go - Leave request lifecycle engine

PURPOSE:
  Orchestrates the three state-transition operations and owns all
  cross-entity invariant enforcement:

    Apply:   validate -> debit balance -> insert pending record
    Cancel:  pending/approved -> cancelled, credit balance back
    Process: pending -> approved (balance untouched)
             pending -> rejected (credit balance back)

STATE MACHINE (per record):
  pending  -> approved | rejected | cancelled
  approved -> cancelled
  rejected, cancelled: terminal

PRECONDITION ORDER (Apply), first failure wins:
  1. employee and leave type exist          -> NotFound
  2. start and end parse as calendar dates  -> InvalidInput
  3. notice >= policy minimum               -> InsufficientNotice
  4. duration >= 1 day                      -> InvalidDuration
  5. duration <= remaining balance          -> InsufficientBalance
  6. no overlapping active request          -> Conflict

  Notice and balance run before the overlap scan: they are cheap and
  reject the common invalid case early. The overlap scan is O(records
  for that employee).

CONCURRENCY:
  One mutex held for the full duration of each lifecycle operation.
  Without it, two concurrent Applies could both pass the balance check
  and jointly overdraw it, or both insert overlapping records. Expected
  contention is small, so the lock is engine-wide rather than
  per-employee.

ATOMICITY:
  The balance adjustment and the record mutation of one operation commit
  as a single unit. When the store supports WithTx (SQLite), the writes
  share a database transaction; the in-memory store rolls back from a
  snapshot.

NOTIFICATIONS:
  Emitted only after the state transition has committed. Failures are
  logged and suppressed, never surfaced to the caller.

SEE ALSO:
  - store.go: the interfaces the engine drives
  - report.go: the read-only query surface
*/
package leave

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	directory *Directory
	policies  *PolicyStore
	store     Store
	clock     Clock
	notifier  Notifier
	audit     AuditLog
	logger    *zap.Logger

	// Held for the full duration of every lifecycle operation.
	mu sync.Mutex
}

// Config wires the engine's collaborators. Directory, Policies, and Store
// are required; the rest default to system clock, log notifier, and no
// audit trail.
type Config struct {
	Directory *Directory
	Policies  *PolicyStore
	Store     Store
	Clock     Clock
	Notifier  Notifier
	Audit     AuditLog
	Logger    *zap.Logger
}

func NewEngine(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Engine{
		directory: cfg.Directory,
		policies:  cfg.Policies,
		store:     cfg.Store,
		clock:     clock,
		notifier:  notifier,
		audit:     cfg.Audit,
		logger:    logger,
	}
}

// =============================================================================
// APPLY
// =============================================================================

// Apply submits a new leave request. Start and end are ISO-8601 calendar
// dates, inclusive. On success the balance is debited by the duration and a
// pending record is created with the employee's current manager as approver.
func (e *Engine) Apply(ctx context.Context, employee EmployeeID, leaveType LeaveType, start, end string) (RecordID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	emp, ok := e.directory.Lookup(employee)
	if !ok {
		return 0, &NotFoundError{Kind: "employee", ID: string(employee)}
	}
	policy, ok := e.policies.Lookup(leaveType)
	if !ok {
		return 0, &NotFoundError{Kind: "leave type", ID: string(leaveType)}
	}

	startDate, err := ParseDate(start)
	if err != nil {
		return 0, &InvalidDateError{Field: "start", Value: start, Err: err}
	}
	endDate, err := ParseDate(end)
	if err != nil {
		return 0, &InvalidDateError{Field: "end", Value: end, Err: err}
	}

	notice := startDate.DaysSince(e.clock.Today())
	if notice < policy.MinNoticeDays {
		return 0, &InsufficientNoticeError{Type: leaveType, Required: policy.MinNoticeDays, Given: notice}
	}

	duration := endDate.DaysSince(startDate) + 1
	if duration < 1 {
		return 0, &InvalidDurationError{Start: startDate, End: endDate}
	}
	requested := DaysOf(duration)

	available, err := e.store.Read(ctx, employee, leaveType)
	if err != nil {
		return 0, err
	}
	if requested.GreaterThan(available) {
		return 0, &InsufficientBalanceError{Type: leaveType, Available: available, Requested: requested}
	}

	overlapping, err := e.store.AllOverlapping(ctx, employee, startDate, endDate, NonTerminalStatuses)
	if err != nil {
		return 0, err
	}
	if len(overlapping) > 0 {
		other := overlapping[0]
		return 0, &ConflictError{Existing: other.ID, Start: other.Start, End: other.End}
	}

	record := LeaveRecord{
		Employee: employee,
		Type:     leaveType,
		Start:    startDate,
		End:      endDate,
		Status:   StatusPending,
		Approver: emp.Manager,
	}

	var id RecordID
	err = e.atomically(ctx, func(s Store) error {
		if err := s.Debit(ctx, employee, leaveType, requested); err != nil {
			return err
		}
		id, err = s.Insert(ctx, record)
		return err
	})
	if err != nil {
		return 0, err
	}

	e.recordAudit(ctx, employee, AuditApplied, id, employee, leaveType)
	if emp.Manager != nil {
		e.notify(ctx, *emp.Manager, fmt.Sprintf("%s requested %s leave from %s to %s",
			employee, leaveType, startDate, endDate))
	}
	return id, nil
}

// =============================================================================
// CANCEL
// =============================================================================

// Cancel withdraws a pending or approved request belonging to employee and
// credits the duration back. Cancellation is a one-shot transition: a second
// Cancel on the same id fails with NotFound because the status no longer
// matches.
func (e *Engine) Cancel(ctx context.Context, employee EmployeeID, id RecordID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	record, err := e.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if record == nil || record.Employee != employee || !record.Status.NonTerminal() {
		return &NotFoundError{Kind: "leave record", ID: strconv.FormatInt(int64(id), 10)}
	}

	err = e.atomically(ctx, func(s Store) error {
		if err := s.UpdateStatus(ctx, id, record.Status, StatusCancelled); err != nil {
			return err
		}
		return s.Credit(ctx, employee, record.Type, DaysOf(record.Duration()))
	})
	if err != nil {
		return err
	}

	e.recordAudit(ctx, employee, AuditCancelled, id, employee, record.Type)
	if record.Approver != nil {
		e.notify(ctx, *record.Approver, fmt.Sprintf("%s cancelled their leave (ID %d)", employee, id))
	}
	return nil
}

// =============================================================================
// PROCESS
// =============================================================================

// Process approves or rejects a pending request. Manager must be the
// approver that was fixed when the record was created; anything else is
// NotFound, so an unauthorized caller cannot tell whether the record
// exists. Approval leaves the balance untouched (it was debited at Apply
// time); rejection credits the duration back.
func (e *Engine) Process(ctx context.Context, manager EmployeeID, id RecordID, approve bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	record, err := e.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if record == nil || record.Status != StatusPending ||
		record.Approver == nil || *record.Approver != manager {
		return &NotFoundError{Kind: "leave record", ID: strconv.FormatInt(int64(id), 10)}
	}

	verdict := StatusApproved
	action := AuditApproved
	if !approve {
		verdict = StatusRejected
		action = AuditRejected
	}

	err = e.atomically(ctx, func(s Store) error {
		if err := s.UpdateStatus(ctx, id, StatusPending, verdict); err != nil {
			return err
		}
		if !approve {
			return s.Credit(ctx, record.Employee, record.Type, DaysOf(record.Duration()))
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.recordAudit(ctx, manager, action, id, record.Employee, record.Type)
	e.notify(ctx, record.Employee, fmt.Sprintf("Leave (ID %d) has been %s by %s", id, verdict, manager))
	return nil
}

// =============================================================================
// INTERNALS
// =============================================================================

// atomically runs fn inside a store transaction when the store supports it.
func (e *Engine) atomically(ctx context.Context, fn func(Store) error) error {
	if tx, ok := e.store.(TxStore); ok {
		return tx.WithTx(ctx, fn)
	}
	return fn(e.store)
}

// notify delivers best-effort; failures are logged, never surfaced.
func (e *Engine) notify(ctx context.Context, recipient EmployeeID, message string) {
	if err := e.notifier.Notify(ctx, recipient, message); err != nil {
		e.logger.Warn("notification failed",
			zap.String("recipient", string(recipient)),
			zap.Error(err))
	}
}

// recordAudit appends an audit entry best-effort.
func (e *Engine) recordAudit(ctx context.Context, actor EmployeeID, action AuditAction, id RecordID, employee EmployeeID, leaveType LeaveType) {
	if e.audit == nil {
		return
	}
	entry := AuditEntry{
		ID:       uuid.NewString(),
		At:       time.Now().UTC(),
		Actor:    actor,
		Action:   action,
		Record:   id,
		Employee: employee,
		Type:     leaveType,
	}
	if err := e.audit.Append(ctx, entry); err != nil {
		e.logger.Warn("audit append failed",
			zap.String("action", string(action)),
			zap.Int64("record", int64(id)),
			zap.Error(err))
	}
}
