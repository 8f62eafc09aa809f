// Package memory provides in-memory Store implementations for tests and
// development.
package memory

import (
	"context"
	"sync"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// MEMORY STORE - balances + records behind one RWMutex
// =============================================================================

type Store struct {
	mu       sync.RWMutex
	balances map[balanceKey]leave.Days
	records  []leave.LeaveRecord
	nextID   leave.RecordID
}

type balanceKey struct {
	Employee leave.EmployeeID
	Type     leave.LeaveType
}

func New() *Store {
	return &Store{
		balances: make(map[balanceKey]leave.Days),
		nextID:   1,
	}
}

// Compile-time check: *Store supports engine transactions.
var _ leave.TxStore = (*Store)(nil)
var _ leave.Seeder = (*Store)(nil)

// =============================================================================
// BALANCE LEDGER
// =============================================================================

func (s *Store) Debit(_ context.Context, employee leave.EmployeeID, leaveType leave.LeaveType, amount leave.Days) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debitLocked(employee, leaveType, amount)
}

func (s *Store) Credit(_ context.Context, employee leave.EmployeeID, leaveType leave.LeaveType, amount leave.Days) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creditLocked(employee, leaveType, amount)
}

func (s *Store) Read(_ context.Context, employee leave.EmployeeID, leaveType leave.LeaveType) (leave.Days, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[balanceKey{employee, leaveType}], nil
}

func (s *Store) ReadAll(_ context.Context, employee leave.EmployeeID) (map[leave.LeaveType]leave.Days, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[leave.LeaveType]leave.Days)
	for k, v := range s.balances {
		if k.Employee == employee {
			out[k.Type] = v
		}
	}
	return out, nil
}

func (s *Store) debitLocked(employee leave.EmployeeID, leaveType leave.LeaveType, amount leave.Days) error {
	k := balanceKey{employee, leaveType}
	s.balances[k] = s.balances[k].Sub(amount)
	return nil
}

func (s *Store) creditLocked(employee leave.EmployeeID, leaveType leave.LeaveType, amount leave.Days) error {
	k := balanceKey{employee, leaveType}
	s.balances[k] = s.balances[k].Add(amount)
	return nil
}

// =============================================================================
// RECORD STORE
// =============================================================================

func (s *Store) Insert(_ context.Context, record leave.LeaveRecord) (leave.RecordID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(record)
}

func (s *Store) insertLocked(record leave.LeaveRecord) (leave.RecordID, error) {
	record.ID = s.nextID
	s.nextID++
	s.records = append(s.records, record)
	return record.ID, nil
}

func (s *Store) FindByID(_ context.Context, id leave.RecordID) (*leave.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.ID == id {
			rec := r
			return &rec, nil
		}
	}
	return nil, nil
}

func (s *Store) FindByEmployee(_ context.Context, employee leave.EmployeeID, status *leave.Status) ([]leave.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []leave.LeaveRecord
	for _, r := range s.records {
		if r.Employee != employee {
			continue
		}
		if status != nil && r.Status != *status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) AllOverlapping(_ context.Context, employee leave.EmployeeID, start, end leave.Date, statuses []leave.Status) ([]leave.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []leave.LeaveRecord
	for _, r := range s.records {
		if r.Employee != employee || !r.Overlaps(start, end) {
			continue
		}
		for _, st := range statuses {
			if r.Status == st {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (s *Store) UpdateStatus(_ context.Context, id leave.RecordID, from, to leave.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateStatusLocked(id, from, to)
}

func (s *Store) updateStatusLocked(id leave.RecordID, from, to leave.Status) error {
	for i := range s.records {
		if s.records[i].ID == id && s.records[i].Status == from {
			s.records[i].Status = to
			return nil
		}
	}
	return leave.ErrNotFound
}

// =============================================================================
// SEEDING
// =============================================================================

func (s *Store) SeedBalance(_ context.Context, employee leave.EmployeeID, leaveType leave.LeaveType, amount leave.Days) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := balanceKey{employee, leaveType}
	if _, ok := s.balances[k]; ok {
		return nil // existing data wins
	}
	s.balances[k] = amount
	return nil
}

func (s *Store) SeedRecord(_ context.Context, record leave.LeaveRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.ID == record.ID {
			return nil // existing data wins
		}
	}
	s.records = append(s.records, record)
	if record.ID >= s.nextID {
		s.nextID = record.ID + 1
	}
	return nil
}

// =============================================================================
// TRANSACTIONS - snapshot + rollback
// =============================================================================

// WithTx executes fn against the store. On error the pre-transaction state
// is restored from a snapshot.
func (s *Store) WithTx(_ context.Context, fn func(leave.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&txView{parent: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type storeSnapshot struct {
	balances map[balanceKey]leave.Days
	records  []leave.LeaveRecord
	nextID   leave.RecordID
}

func (s *Store) snapshot() storeSnapshot {
	balances := make(map[balanceKey]leave.Days, len(s.balances))
	for k, v := range s.balances {
		balances[k] = v
	}
	records := append([]leave.LeaveRecord(nil), s.records...)
	return storeSnapshot{balances: balances, records: records, nextID: s.nextID}
}

func (s *Store) restore(snap storeSnapshot) {
	s.balances = snap.balances
	s.records = snap.records
	s.nextID = snap.nextID
}

// txView calls the locked variants directly; the parent's mutex is already
// held for the duration of WithTx.
type txView struct {
	parent *Store
}

func (tv *txView) Debit(_ context.Context, employee leave.EmployeeID, leaveType leave.LeaveType, amount leave.Days) error {
	return tv.parent.debitLocked(employee, leaveType, amount)
}

func (tv *txView) Credit(_ context.Context, employee leave.EmployeeID, leaveType leave.LeaveType, amount leave.Days) error {
	return tv.parent.creditLocked(employee, leaveType, amount)
}

func (tv *txView) Read(_ context.Context, employee leave.EmployeeID, leaveType leave.LeaveType) (leave.Days, error) {
	return tv.parent.balances[balanceKey{employee, leaveType}], nil
}

func (tv *txView) ReadAll(_ context.Context, employee leave.EmployeeID) (map[leave.LeaveType]leave.Days, error) {
	out := make(map[leave.LeaveType]leave.Days)
	for k, v := range tv.parent.balances {
		if k.Employee == employee {
			out[k.Type] = v
		}
	}
	return out, nil
}

func (tv *txView) Insert(_ context.Context, record leave.LeaveRecord) (leave.RecordID, error) {
	return tv.parent.insertLocked(record)
}

func (tv *txView) FindByID(_ context.Context, id leave.RecordID) (*leave.LeaveRecord, error) {
	for _, r := range tv.parent.records {
		if r.ID == id {
			rec := r
			return &rec, nil
		}
	}
	return nil, nil
}

func (tv *txView) FindByEmployee(ctx context.Context, employee leave.EmployeeID, status *leave.Status) ([]leave.LeaveRecord, error) {
	var out []leave.LeaveRecord
	for _, r := range tv.parent.records {
		if r.Employee != employee {
			continue
		}
		if status != nil && r.Status != *status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (tv *txView) AllOverlapping(_ context.Context, employee leave.EmployeeID, start, end leave.Date, statuses []leave.Status) ([]leave.LeaveRecord, error) {
	var out []leave.LeaveRecord
	for _, r := range tv.parent.records {
		if r.Employee != employee || !r.Overlaps(start, end) {
			continue
		}
		for _, st := range statuses {
			if r.Status == st {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (tv *txView) UpdateStatus(_ context.Context, id leave.RecordID, from, to leave.Status) error {
	return tv.parent.updateStatusLocked(id, from, to)
}
