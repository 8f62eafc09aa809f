/*
Package factory loads org configuration: employees, leave-type policies,
starting balances, and pre-existing leave records.

PURPOSE:
  Turns a declarative org file (YAML) into the runtime collaborators the
  engine needs - a Directory, a PolicyStore, and seed data for the store.
  Also ships a built-in demo org for development and tests.

ORG FILE FORMAT:
  employees:
    - id: alice
      role: Employee
      manager: david
  policies:
    - type: annual
      max_days: 30
      min_notice_days: 2
  balances:
    - employee: alice
      days:
        annual: 12
        sick: 5
  records:
    - id: 1
      employee: alice
      type: annual
      start: 2025-07-01
      end: 2025-07-03
      status: approved
      approver: david

VALIDATION:
  Parse validates the whole document up front: known roles and statuses,
  manager and approver references that exist, parseable dates, durations
  of at least one day. Seeding never runs against a half-valid org.

SEE ALSO:
  - leave/directory.go: the read-only runtime views built here
  - leave/store.go: the Seeder interface this package drives
*/
package factory

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// CONFIG TYPES
// =============================================================================

type OrgConfig struct {
	Employees []EmployeeConfig `yaml:"employees"`
	Policies  []PolicyConfig   `yaml:"policies"`
	Balances  []BalanceConfig  `yaml:"balances"`
	Records   []RecordConfig   `yaml:"records"`
}

type EmployeeConfig struct {
	ID      string `yaml:"id"`
	Role    string `yaml:"role"`
	Manager string `yaml:"manager,omitempty"` // empty = top of hierarchy
}

type PolicyConfig struct {
	Type          string `yaml:"type"`
	MaxDays       int    `yaml:"max_days"`
	MinNoticeDays int    `yaml:"min_notice_days"`
}

type BalanceConfig struct {
	Employee string         `yaml:"employee"`
	Days     map[string]int `yaml:"days"`
}

type RecordConfig struct {
	ID       int64  `yaml:"id"`
	Employee string `yaml:"employee"`
	Type     string `yaml:"type"`
	Start    string `yaml:"start"`
	End      string `yaml:"end"`
	Status   string `yaml:"status"`
	Approver string `yaml:"approver,omitempty"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads and validates an org file.
func Load(path string) (*OrgConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read org file: %w", err)
	}
	return Parse(data)
}

// Parse unmarshals and validates an org document.
func Parse(data []byte) (*OrgConfig, error) {
	var cfg OrgConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse org config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the whole document before any of it is used.
func (c *OrgConfig) Validate() error {
	employees := make(map[string]bool, len(c.Employees))
	for _, e := range c.Employees {
		if e.ID == "" {
			return fmt.Errorf("employee with empty id")
		}
		if employees[e.ID] {
			return fmt.Errorf("duplicate employee %q", e.ID)
		}
		if !leave.ValidRole(leave.Role(e.Role)) {
			return fmt.Errorf("employee %q has unknown role %q", e.ID, e.Role)
		}
		employees[e.ID] = true
	}
	for _, e := range c.Employees {
		if e.Manager != "" && !employees[e.Manager] {
			return fmt.Errorf("employee %q references unknown manager %q", e.ID, e.Manager)
		}
	}

	policies := make(map[string]bool, len(c.Policies))
	for _, p := range c.Policies {
		if p.Type == "" {
			return fmt.Errorf("policy with empty type")
		}
		if policies[p.Type] {
			return fmt.Errorf("duplicate policy %q", p.Type)
		}
		if p.MinNoticeDays < 0 || p.MaxDays < 0 {
			return fmt.Errorf("policy %q has negative limits", p.Type)
		}
		policies[p.Type] = true
	}

	for _, b := range c.Balances {
		if !employees[b.Employee] {
			return fmt.Errorf("balance for unknown employee %q", b.Employee)
		}
		for t, days := range b.Days {
			if !policies[t] {
				return fmt.Errorf("balance for unknown leave type %q (employee %q)", t, b.Employee)
			}
			if days < 0 {
				return fmt.Errorf("negative balance for employee %q type %q", b.Employee, t)
			}
		}
	}

	seen := make(map[int64]bool, len(c.Records))
	for _, r := range c.Records {
		if r.ID <= 0 {
			return fmt.Errorf("record with non-positive id %d", r.ID)
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate record id %d", r.ID)
		}
		seen[r.ID] = true
		if !employees[r.Employee] {
			return fmt.Errorf("record %d for unknown employee %q", r.ID, r.Employee)
		}
		if !policies[r.Type] {
			return fmt.Errorf("record %d for unknown leave type %q", r.ID, r.Type)
		}
		if !leave.ValidStatus(leave.Status(r.Status)) {
			return fmt.Errorf("record %d has unknown status %q", r.ID, r.Status)
		}
		if r.Approver != "" && !employees[r.Approver] {
			return fmt.Errorf("record %d references unknown approver %q", r.ID, r.Approver)
		}
		start, err := leave.ParseDate(r.Start)
		if err != nil {
			return fmt.Errorf("record %d: %w", r.ID, err)
		}
		end, err := leave.ParseDate(r.End)
		if err != nil {
			return fmt.Errorf("record %d: %w", r.ID, err)
		}
		if end.Before(start) {
			return fmt.Errorf("record %d ends before it starts", r.ID)
		}
	}
	return nil
}

// =============================================================================
// RUNTIME VIEWS
// =============================================================================

// Directory builds the read-only employee directory.
func (c *OrgConfig) Directory() *leave.Directory {
	employees := make([]leave.Employee, 0, len(c.Employees))
	for _, e := range c.Employees {
		emp := leave.Employee{
			ID:   leave.EmployeeID(e.ID),
			Role: leave.Role(e.Role),
		}
		if e.Manager != "" {
			manager := leave.EmployeeID(e.Manager)
			emp.Manager = &manager
		}
		employees = append(employees, emp)
	}
	return leave.NewDirectory(employees)
}

// PolicyStore builds the immutable policy store.
func (c *OrgConfig) PolicyStore() *leave.PolicyStore {
	policies := make([]leave.Policy, 0, len(c.Policies))
	for _, p := range c.Policies {
		policies = append(policies, leave.Policy{
			Type:          leave.LeaveType(p.Type),
			MaxDays:       p.MaxDays,
			MinNoticeDays: p.MinNoticeDays,
		})
	}
	return leave.NewPolicyStore(policies)
}

// Seed populates a store with the org's balances and pre-existing records.
// Safe to run on every startup; existing rows win.
func Seed(ctx context.Context, seeder leave.Seeder, cfg *OrgConfig) error {
	for _, b := range cfg.Balances {
		for t, days := range b.Days {
			err := seeder.SeedBalance(ctx,
				leave.EmployeeID(b.Employee),
				leave.LeaveType(t),
				leave.DaysOf(days))
			if err != nil {
				return fmt.Errorf("failed to seed balance for %q: %w", b.Employee, err)
			}
		}
	}

	for _, r := range cfg.Records {
		start, err := leave.ParseDate(r.Start)
		if err != nil {
			return err
		}
		end, err := leave.ParseDate(r.End)
		if err != nil {
			return err
		}
		record := leave.LeaveRecord{
			ID:       leave.RecordID(r.ID),
			Employee: leave.EmployeeID(r.Employee),
			Type:     leave.LeaveType(r.Type),
			Start:    start,
			End:      end,
			Status:   leave.Status(r.Status),
		}
		if r.Approver != "" {
			approver := leave.EmployeeID(r.Approver)
			record.Approver = &approver
		}
		if err := seeder.SeedRecord(ctx, record); err != nil {
			return fmt.Errorf("failed to seed record %d: %w", r.ID, err)
		}
	}
	return nil
}

// =============================================================================
// DEMO ORG
// =============================================================================

// DemoOrg returns the built-in sample org: a six-person company with one
// manager, an HR head, three leave types, and four pre-existing records.
// The balances already reflect the days held by the seeded records.
func DemoOrg() *OrgConfig {
	return &OrgConfig{
		Employees: []EmployeeConfig{
			{ID: "alice", Role: "Employee", Manager: "david"},
			{ID: "bob", Role: "Employee", Manager: "david"},
			{ID: "charlie", Role: "Employee", Manager: "david"},
			{ID: "david", Role: "Manager", Manager: "farah"},
			{ID: "erika", Role: "Employee", Manager: "david"},
			{ID: "farah", Role: "HR"},
		},
		Policies: []PolicyConfig{
			{Type: "annual", MaxDays: 30, MinNoticeDays: 2},
			{Type: "sick", MaxDays: 15, MinNoticeDays: 0},
			{Type: "casual", MaxDays: 7, MinNoticeDays: 0},
		},
		Balances: []BalanceConfig{
			{Employee: "alice", Days: map[string]int{"annual": 12, "sick": 5, "casual": 4}},
			{Employee: "bob", Days: map[string]int{"annual": 8, "sick": 2, "casual": 3}},
			{Employee: "charlie", Days: map[string]int{"annual": 15, "sick": 8, "casual": 2}},
			{Employee: "david", Days: map[string]int{"annual": 6, "sick": 6, "casual": 2}},
			{Employee: "erika", Days: map[string]int{"annual": 10, "sick": 5, "casual": 2}},
			{Employee: "farah", Days: map[string]int{"annual": 12, "sick": 3, "casual": 2}},
		},
		Records: []RecordConfig{
			{ID: 1, Employee: "alice", Type: "annual", Start: "2025-07-01", End: "2025-07-03", Status: "approved", Approver: "david"},
			{ID: 2, Employee: "bob", Type: "casual", Start: "2025-07-10", End: "2025-07-10", Status: "approved", Approver: "david"},
			{ID: 3, Employee: "charlie", Type: "sick", Start: "2025-07-05", End: "2025-07-06", Status: "pending", Approver: "david"},
			{ID: 4, Employee: "erika", Type: "annual", Start: "2025-07-02", End: "2025-07-04", Status: "rejected", Approver: "david"},
		},
	}
}
