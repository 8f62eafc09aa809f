package memory

import (
	"context"
	"sync"

	"github.com/warp/leave-engine/leave"
)

// AuditLog is an in-memory append-only audit trail.
type AuditLog struct {
	mu      sync.RWMutex
	entries []leave.AuditEntry
}

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

var _ leave.AuditLog = (*AuditLog)(nil)

func (l *AuditLog) Append(_ context.Context, entry leave.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

func (l *AuditLog) Query(_ context.Context, filter leave.AuditFilter) ([]leave.AuditEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []leave.AuditEntry
	for _, e := range l.entries {
		if filter.Employee != nil && e.Employee != *filter.Employee {
			continue
		}
		if filter.Actor != nil && e.Actor != *filter.Actor {
			continue
		}
		if len(filter.Actions) > 0 {
			match := false
			for _, a := range filter.Actions {
				if e.Action == a {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}
