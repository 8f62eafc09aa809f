package factory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/factory"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/memory"
)

const sampleOrg = `
employees:
  - id: dana
    role: Manager
  - id: omar
    role: Employee
    manager: dana
policies:
  - type: annual
    max_days: 20
    min_notice_days: 3
balances:
  - employee: omar
    days:
      annual: 10
records:
  - id: 1
    employee: omar
    type: annual
    start: 2025-07-01
    end: 2025-07-02
    status: approved
    approver: dana
`

func TestParse_ValidDocument(t *testing.T) {
	cfg, err := factory.Parse([]byte(sampleOrg))
	require.NoError(t, err)

	require.Len(t, cfg.Employees, 2)
	assert.Equal(t, "dana", cfg.Employees[0].ID)
	assert.Equal(t, "dana", cfg.Employees[1].Manager)
	require.Len(t, cfg.Policies, 1)
	assert.Equal(t, 3, cfg.Policies[0].MinNoticeDays)
	require.Len(t, cfg.Records, 1)
	assert.Equal(t, "approved", cfg.Records[0].Status)
}

func TestParse_RejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown manager",
			doc: `
employees:
  - id: omar
    role: Employee
    manager: ghost
`,
			want: "unknown manager",
		},
		{
			name: "unknown role",
			doc: `
employees:
  - id: omar
    role: Wizard
`,
			want: "unknown role",
		},
		{
			name: "duplicate employee",
			doc: `
employees:
  - id: omar
    role: Employee
  - id: omar
    role: Employee
`,
			want: "duplicate employee",
		},
		{
			name: "balance for unknown leave type",
			doc: `
employees:
  - id: omar
    role: Employee
balances:
  - employee: omar
    days:
      sabbatical: 5
`,
			want: "unknown leave type",
		},
		{
			name: "record with unknown status",
			doc: `
employees:
  - id: omar
    role: Employee
policies:
  - type: annual
records:
  - id: 1
    employee: omar
    type: annual
    start: 2025-07-01
    end: 2025-07-02
    status: maybe
`,
			want: "unknown status",
		},
		{
			name: "record ends before it starts",
			doc: `
employees:
  - id: omar
    role: Employee
policies:
  - type: annual
records:
  - id: 1
    employee: omar
    type: annual
    start: 2025-07-05
    end: 2025-07-02
    status: pending
`,
			want: "ends before it starts",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDirectory_ResolvesManagers(t *testing.T) {
	cfg, err := factory.Parse([]byte(sampleOrg))
	require.NoError(t, err)

	dir := cfg.Directory()

	omar, ok := dir.Lookup("omar")
	require.True(t, ok)
	require.NotNil(t, omar.Manager)
	assert.Equal(t, leave.EmployeeID("dana"), *omar.Manager)

	dana, ok := dir.Lookup("dana")
	require.True(t, ok)
	assert.Nil(t, dana.Manager, "top of the hierarchy")
	assert.Equal(t, leave.RoleManager, dana.Role)

	_, ok = dir.Lookup("ghost")
	assert.False(t, ok)
}

func TestSeed_PopulatesStoreAndPreservesIDs(t *testing.T) {
	cfg, err := factory.Parse([]byte(sampleOrg))
	require.NoError(t, err)

	store := memory.New()
	ctx := context.Background()
	require.NoError(t, factory.Seed(ctx, store, cfg))

	days, err := store.Read(ctx, "omar", "annual")
	require.NoError(t, err)
	assert.Equal(t, 10, days.Int())

	rec, err := store.FindByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, leave.StatusApproved, rec.Status)
	require.NotNil(t, rec.Approver)
	assert.Equal(t, leave.EmployeeID("dana"), *rec.Approver)

	// New inserts continue above the seeded ids.
	id, err := store.Insert(ctx, leave.LeaveRecord{
		Employee: "omar", Type: "annual",
		Start: rec.Start, End: rec.End, Status: leave.StatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, leave.RecordID(2), id)
}

func TestDemoOrg_IsValidAndSeedsToNextIDFive(t *testing.T) {
	org := factory.DemoOrg()
	require.NoError(t, org.Validate())

	store := memory.New()
	ctx := context.Background()
	require.NoError(t, factory.Seed(ctx, store, org))

	id, err := store.Insert(ctx, leave.LeaveRecord{
		Employee: "farah", Type: "casual",
		Start: leave.NewDate(2025, 8, 1), End: leave.NewDate(2025, 8, 1),
		Status: leave.StatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, leave.RecordID(5), id)

	policies := org.PolicyStore()
	annual, ok := policies.Lookup("annual")
	require.True(t, ok)
	assert.Equal(t, 30, annual.MaxDays)
	assert.Equal(t, 2, annual.MinNoticeDays)
	assert.Len(t, policies.All(), 3)
}
