package leave

import "sort"

// =============================================================================
// DIRECTORY - employee lookup and approver resolution
// =============================================================================

// Directory maps employees to their role and manager. It is populated at
// startup and read-only afterwards, so lookups need no locking.
type Directory struct {
	employees map[EmployeeID]Employee
}

func NewDirectory(employees []Employee) *Directory {
	m := make(map[EmployeeID]Employee, len(employees))
	for _, e := range employees {
		m[e.ID] = e
	}
	return &Directory{employees: m}
}

// Lookup returns the employee and whether it exists.
func (d *Directory) Lookup(id EmployeeID) (Employee, bool) {
	e, ok := d.employees[id]
	return e, ok
}

// All returns every employee ordered by id.
func (d *Directory) All() []Employee {
	out := make([]Employee, 0, len(d.employees))
	for _, e := range d.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// =============================================================================
// POLICY STORE - immutable leave-type policies
// =============================================================================

// PolicyStore maps leave types to their policy. Immutable after load.
type PolicyStore struct {
	policies map[LeaveType]Policy
}

func NewPolicyStore(policies []Policy) *PolicyStore {
	m := make(map[LeaveType]Policy, len(policies))
	for _, p := range policies {
		m[p.Type] = p
	}
	return &PolicyStore{policies: m}
}

// Lookup returns the policy and whether the leave type exists.
func (ps *PolicyStore) Lookup(t LeaveType) (Policy, bool) {
	p, ok := ps.policies[t]
	return p, ok
}

// All returns every policy ordered by leave type.
func (ps *PolicyStore) All() []Policy {
	out := make([]Policy, 0, len(ps.policies))
	for _, p := range ps.policies {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
