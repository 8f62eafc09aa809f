/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements leave.Store, leave.TxStore, leave.Seeder, and leave.AuditLog
  on a single SQLite database. The same patterns apply to PostgreSQL with
  minor dialect changes.

KEY TABLES:
  balances:      (employee_id, leave_type) -> remaining days
  leave_records: the authoritative request set; rows are never deleted,
                 only their status column mutates
  audit_entries: append-only who-did-what trail

ID ISSUANCE:
  leave_records.id is INTEGER PRIMARY KEY AUTOINCREMENT, so the database
  is the single authority issuing monotonically increasing ids; with
  AUTOINCREMENT, SQLite never reuses an id even after deletes or crashes.

STATE TRANSITIONS:
  UpdateStatus runs UPDATE ... WHERE id = ? AND status = ? and checks
  RowsAffected, making the expected-from check atomic in the database.

CONCURRENCY:
  sync.RWMutex on top of WAL mode. The engine already serializes
  lifecycle operations; the store lock covers direct query traffic.

SEE ALSO:
  - leave/store.go: interface contracts
  - store/memory: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/leave-engine/leave"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ leave.TxStore  = (*Store)(nil)
	_ leave.Seeder   = (*Store)(nil)
	_ leave.AuditLog = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: the driver gives every pooled connection its own
	// ":memory:" database, and a single writer suits SQLite anyway.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Per-employee, per-leave-type remaining days
	CREATE TABLE IF NOT EXISTS balances (
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		remaining_days TEXT NOT NULL,
		PRIMARY KEY (employee_id, leave_type)
	);

	-- Leave records: rows are never deleted, ids never reused
	CREATE TABLE IF NOT EXISTS leave_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		approver_id TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_records_employee
		ON leave_records(employee_id);
	CREATE INDEX IF NOT EXISTS idx_leave_records_employee_status
		ON leave_records(employee_id, status);
	-- Overlap scan hot path
	CREATE INDEX IF NOT EXISTS idx_leave_records_employee_dates
		ON leave_records(employee_id, start_date, end_date);

	-- Audit trail (append-only)
	CREATE TABLE IF NOT EXISTS audit_entries (
		id TEXT PRIMARY KEY,
		at TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		action TEXT NOT NULL,
		record_id INTEGER NOT NULL,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_entries_employee
		ON audit_entries(employee_id);
	CREATE INDEX IF NOT EXISTS idx_audit_entries_actor
		ON audit_entries(actor_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// execer is satisfied by both *sql.DB and *sql.Tx so the same statement
// helpers serve direct and transactional calls.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// BALANCE LEDGER (leave.BalanceLedger)
// =============================================================================

func (s *Store) Debit(ctx context.Context, employee leave.EmployeeID, leaveType leave.LeaveType, amount leave.Days) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adjust(ctx, s.db, employee, leaveType, amount, true)
}

func (s *Store) Credit(ctx context.Context, employee leave.EmployeeID, leaveType leave.LeaveType, amount leave.Days) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adjust(ctx, s.db, employee, leaveType, amount, false)
}

func (s *Store) adjust(ctx context.Context, db execer, employee leave.EmployeeID, leaveType leave.LeaveType, amount leave.Days, debit bool) error {
	current, err := s.read(ctx, db, employee, leaveType)
	if err != nil {
		return err
	}

	next := current.Add(amount)
	if debit {
		next = current.Sub(amount)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO balances (employee_id, leave_type, remaining_days)
		VALUES (?, ?, ?)
		ON CONFLICT(employee_id, leave_type)
		DO UPDATE SET remaining_days = excluded.remaining_days
	`, employee, leaveType, next.String())
	if err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}
	return nil
}

func (s *Store) Read(ctx context.Context, employee leave.EmployeeID, leaveType leave.LeaveType) (leave.Days, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(ctx, s.db, employee, leaveType)
}

func (s *Store) read(ctx context.Context, db execer, employee leave.EmployeeID, leaveType leave.LeaveType) (leave.Days, error) {
	var raw string
	err := db.QueryRowContext(ctx, `
		SELECT remaining_days FROM balances
		WHERE employee_id = ? AND leave_type = ?
	`, employee, leaveType).Scan(&raw)
	if err == sql.ErrNoRows {
		return leave.DaysOf(0), nil
	}
	if err != nil {
		return leave.Days{}, fmt.Errorf("failed to read balance: %w", err)
	}
	return leave.ParseDays(raw)
}

func (s *Store) ReadAll(ctx context.Context, employee leave.EmployeeID) (map[leave.LeaveType]leave.Days, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readAll(ctx, s.db, employee)
}

func (s *Store) readAll(ctx context.Context, db execer, employee leave.EmployeeID) (map[leave.LeaveType]leave.Days, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT leave_type, remaining_days FROM balances
		WHERE employee_id = ?
	`, employee)
	if err != nil {
		return nil, fmt.Errorf("failed to read balances: %w", err)
	}
	defer rows.Close()

	out := make(map[leave.LeaveType]leave.Days)
	for rows.Next() {
		var leaveType leave.LeaveType
		var raw string
		if err := rows.Scan(&leaveType, &raw); err != nil {
			return nil, err
		}
		amount, err := leave.ParseDays(raw)
		if err != nil {
			return nil, err
		}
		out[leaveType] = amount
	}
	return out, rows.Err()
}

// =============================================================================
// RECORD STORE (leave.RecordStore)
// =============================================================================

func (s *Store) Insert(ctx context.Context, record leave.LeaveRecord) (leave.RecordID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(ctx, s.db, record)
}

func (s *Store) insert(ctx context.Context, db execer, record leave.LeaveRecord) (leave.RecordID, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	res, err := db.ExecContext(ctx, `
		INSERT INTO leave_records
		(employee_id, leave_type, start_date, end_date, status, approver_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.Employee,
		record.Type,
		record.Start.String(),
		record.End.String(),
		record.Status,
		approverValue(record.Approver),
		now,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert leave record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return leave.RecordID(id), nil
}

func (s *Store) FindByID(ctx context.Context, id leave.RecordID) (*leave.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findByID(ctx, s.db, id)
}

func (s *Store) findByID(ctx context.Context, db execer, id leave.RecordID) (*leave.LeaveRecord, error) {
	records, err := s.queryRecords(ctx, db, `
		SELECT id, employee_id, leave_type, start_date, end_date, status, approver_id
		FROM leave_records WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (s *Store) FindByEmployee(ctx context.Context, employee leave.EmployeeID, status *leave.Status) ([]leave.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findByEmployee(ctx, s.db, employee, status)
}

func (s *Store) findByEmployee(ctx context.Context, db execer, employee leave.EmployeeID, status *leave.Status) ([]leave.LeaveRecord, error) {
	if status != nil {
		return s.queryRecords(ctx, db, `
			SELECT id, employee_id, leave_type, start_date, end_date, status, approver_id
			FROM leave_records
			WHERE employee_id = ? AND status = ?
			ORDER BY id ASC
		`, employee, *status)
	}
	return s.queryRecords(ctx, db, `
		SELECT id, employee_id, leave_type, start_date, end_date, status, approver_id
		FROM leave_records
		WHERE employee_id = ?
		ORDER BY id ASC
	`, employee)
}

func (s *Store) AllOverlapping(ctx context.Context, employee leave.EmployeeID, start, end leave.Date, statuses []leave.Status) ([]leave.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allOverlapping(ctx, s.db, employee, start, end, statuses)
}

func (s *Store) allOverlapping(ctx context.Context, db execer, employee leave.EmployeeID, start, end leave.Date, statuses []leave.Status) ([]leave.LeaveRecord, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	// ISO dates compare correctly as strings.
	query := `
		SELECT id, employee_id, leave_type, start_date, end_date, status, approver_id
		FROM leave_records
		WHERE employee_id = ? AND start_date <= ? AND end_date >= ?
		  AND status IN (?` + repeatPlaceholder(len(statuses)-1) + `)
		ORDER BY id ASC
	`

	args := []any{employee, end.String(), start.String()}
	for _, st := range statuses {
		args = append(args, st)
	}
	return s.queryRecords(ctx, db, query, args...)
}

func (s *Store) UpdateStatus(ctx context.Context, id leave.RecordID, from, to leave.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateStatus(ctx, s.db, id, from, to)
}

func (s *Store) updateStatus(ctx context.Context, db execer, id leave.RecordID, from, to leave.Status) error {
	res, err := db.ExecContext(ctx, `
		UPDATE leave_records SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, to, time.Now().UTC().Format(time.RFC3339), id, from)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return leave.ErrNotFound
	}
	return nil
}

func (s *Store) queryRecords(ctx context.Context, db execer, query string, args ...any) ([]leave.LeaveRecord, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave records: %w", err)
	}
	defer rows.Close()

	var out []leave.LeaveRecord
	for rows.Next() {
		var (
			rec      leave.LeaveRecord
			start    string
			end      string
			approver sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Employee, &rec.Type, &start, &end, &rec.Status, &approver); err != nil {
			return nil, err
		}
		if rec.Start, err = leave.ParseDate(start); err != nil {
			return nil, err
		}
		if rec.End, err = leave.ParseDate(end); err != nil {
			return nil, err
		}
		if approver.Valid {
			id := leave.EmployeeID(approver.String)
			rec.Approver = &id
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// =============================================================================
// SEEDING (leave.Seeder)
// =============================================================================

// SeedBalance inserts a balance only if none exists yet, so restarting the
// server never clobbers live data.
func (s *Store) SeedBalance(ctx context.Context, employee leave.EmployeeID, leaveType leave.LeaveType, amount leave.Days) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO balances (employee_id, leave_type, remaining_days)
		VALUES (?, ?, ?)
	`, employee, leaveType, amount.String())
	return err
}

// SeedRecord inserts a record under its preset id; existing ids are left
// untouched. AUTOINCREMENT continues above the highest seeded id.
func (s *Store) SeedRecord(ctx context.Context, record leave.LeaveRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO leave_records
		(id, employee_id, leave_type, start_date, end_date, status, approver_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.Employee,
		record.Type,
		record.Start.String(),
		record.End.String(),
		record.Status,
		approverValue(record.Approver),
		now,
		now,
	)
	return err
}

// =============================================================================
// TRANSACTIONS (leave.TxStore)
// =============================================================================

// WithTx executes fn against a transactional view. If fn returns an error
// the database transaction is rolled back.
func (s *Store) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txView{store: s, tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txView routes every operation through the shared sql.Tx.
type txView struct {
	store *Store
	tx    *sql.Tx
}

func (tv *txView) Debit(ctx context.Context, employee leave.EmployeeID, leaveType leave.LeaveType, amount leave.Days) error {
	return tv.store.adjust(ctx, tv.tx, employee, leaveType, amount, true)
}

func (tv *txView) Credit(ctx context.Context, employee leave.EmployeeID, leaveType leave.LeaveType, amount leave.Days) error {
	return tv.store.adjust(ctx, tv.tx, employee, leaveType, amount, false)
}

func (tv *txView) Read(ctx context.Context, employee leave.EmployeeID, leaveType leave.LeaveType) (leave.Days, error) {
	return tv.store.read(ctx, tv.tx, employee, leaveType)
}

func (tv *txView) ReadAll(ctx context.Context, employee leave.EmployeeID) (map[leave.LeaveType]leave.Days, error) {
	return tv.store.readAll(ctx, tv.tx, employee)
}

func (tv *txView) Insert(ctx context.Context, record leave.LeaveRecord) (leave.RecordID, error) {
	return tv.store.insert(ctx, tv.tx, record)
}

func (tv *txView) FindByID(ctx context.Context, id leave.RecordID) (*leave.LeaveRecord, error) {
	return tv.store.findByID(ctx, tv.tx, id)
}

func (tv *txView) FindByEmployee(ctx context.Context, employee leave.EmployeeID, status *leave.Status) ([]leave.LeaveRecord, error) {
	return tv.store.findByEmployee(ctx, tv.tx, employee, status)
}

func (tv *txView) AllOverlapping(ctx context.Context, employee leave.EmployeeID, start, end leave.Date, statuses []leave.Status) ([]leave.LeaveRecord, error) {
	return tv.store.allOverlapping(ctx, tv.tx, employee, start, end, statuses)
}

func (tv *txView) UpdateStatus(ctx context.Context, id leave.RecordID, from, to leave.Status) error {
	return tv.store.updateStatus(ctx, tv.tx, id, from, to)
}

// =============================================================================
// AUDIT LOG (leave.AuditLog)
// =============================================================================

func (s *Store) Append(ctx context.Context, entry leave.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_entries (id, at, actor_id, action, record_id, employee_id, leave_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID,
		entry.At.Format(time.RFC3339),
		entry.Actor,
		entry.Action,
		entry.Record,
		entry.Employee,
		entry.Type,
	)
	return err
}

func (s *Store) Query(ctx context.Context, filter leave.AuditFilter) ([]leave.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, at, actor_id, action, record_id, employee_id, leave_type
		FROM audit_entries WHERE 1=1
	`
	var args []any
	if filter.Employee != nil {
		query += " AND employee_id = ?"
		args = append(args, *filter.Employee)
	}
	if filter.Actor != nil {
		query += " AND actor_id = ?"
		args = append(args, *filter.Actor)
	}
	if len(filter.Actions) > 0 {
		query += " AND action IN (?" + repeatPlaceholder(len(filter.Actions)-1) + ")"
		for _, a := range filter.Actions {
			args = append(args, a)
		}
	}
	query += " ORDER BY at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var out []leave.AuditEntry
	for rows.Next() {
		var entry leave.AuditEntry
		var at string
		if err := rows.Scan(&entry.ID, &at, &entry.Actor, &entry.Action, &entry.Record, &entry.Employee, &entry.Type); err != nil {
			return nil, err
		}
		if entry.At, err = time.Parse(time.RFC3339, at); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func approverValue(approver *leave.EmployeeID) any {
	if approver == nil {
		return nil
	}
	return string(*approver)
}

func repeatPlaceholder(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += ", ?"
	}
	return out
}
