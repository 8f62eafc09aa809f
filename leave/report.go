/*
report.go - Read-only projections over balances and records

PURPOSE:
  The query surface: per-employee balances, record listings, and the
  company-wide leave report. Everything here is derived on demand from
  the stores; nothing is cached, so there is no staleness to manage.

SEE ALSO:
  - engine.go: the mutating side
*/
package leave

import "context"

// Reporter answers the read-only queries. Safe to share; it never writes.
type Reporter struct {
	Directory *Directory
	Store     Store
}

// Balances returns the employee's remaining days per leave type. Unknown
// employees yield an empty map, mirroring the balance ledger contract.
func (r *Reporter) Balances(ctx context.Context, employee EmployeeID) (map[LeaveType]Days, error) {
	return r.Store.ReadAll(ctx, employee)
}

// Records returns all of the employee's leave records ordered by id.
func (r *Reporter) Records(ctx context.Context, employee EmployeeID) ([]LeaveRecord, error) {
	return r.Store.FindByEmployee(ctx, employee, nil)
}

// RecordsByStatus returns the employee's records, optionally restricted to
// one status.
func (r *Reporter) RecordsByStatus(ctx context.Context, employee EmployeeID, status *Status) ([]LeaveRecord, error) {
	return r.Store.FindByEmployee(ctx, employee, status)
}

// ReportRow is one employee's line in the company leave report.
type ReportRow struct {
	Employee     EmployeeID
	Role         Role
	ApprovedDays int
	Balances     map[LeaveType]Days
}

// Report computes the company-wide leave report: for every employee in the
// directory, the total days of approved leave and the current balances.
// Rows are ordered by employee id.
func (r *Reporter) Report(ctx context.Context) ([]ReportRow, error) {
	approved := StatusApproved
	employees := r.Directory.All()

	rows := make([]ReportRow, 0, len(employees))
	for _, emp := range employees {
		records, err := r.Store.FindByEmployee(ctx, emp.ID, &approved)
		if err != nil {
			return nil, err
		}
		total := 0
		for _, rec := range records {
			total += rec.Duration()
		}

		balances, err := r.Store.ReadAll(ctx, emp.ID)
		if err != nil {
			return nil, err
		}

		rows = append(rows, ReportRow{
			Employee:     emp.ID,
			Role:         emp.Role,
			ApprovedDays: total,
			Balances:     balances,
		})
	}
	return rows, nil
}
