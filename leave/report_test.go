package leave_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/factory"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/memory"
)

func newTestReporter(t *testing.T) *leave.Reporter {
	t.Helper()

	org := factory.DemoOrg()
	store := memory.New()
	require.NoError(t, factory.Seed(context.Background(), store, org))
	return &leave.Reporter{Directory: org.Directory(), Store: store}
}

func TestReport_OneRowPerEmployeeOrderedByID(t *testing.T) {
	reporter := newTestReporter(t)

	rows, err := reporter.Report(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 6)

	ids := make([]leave.EmployeeID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.Employee)
	}
	assert.Equal(t, []leave.EmployeeID{"alice", "bob", "charlie", "david", "erika", "farah"}, ids)
}

func TestReport_ApprovedDaysCountOnlyApprovedRecords(t *testing.T) {
	// alice has a 3-day approved record, bob a 1-day one. charlie's record
	// is pending and erika's rejected, so both count zero.

	reporter := newTestReporter(t)

	rows, err := reporter.Report(context.Background())
	require.NoError(t, err)

	byEmployee := make(map[leave.EmployeeID]leave.ReportRow, len(rows))
	for _, row := range rows {
		byEmployee[row.Employee] = row
	}

	assert.Equal(t, 3, byEmployee["alice"].ApprovedDays)
	assert.Equal(t, 1, byEmployee["bob"].ApprovedDays)
	assert.Equal(t, 0, byEmployee["charlie"].ApprovedDays)
	assert.Equal(t, 0, byEmployee["erika"].ApprovedDays)
	assert.Equal(t, 0, byEmployee["farah"].ApprovedDays)

	assert.Equal(t, leave.RoleManager, byEmployee["david"].Role)
	assert.Equal(t, 12, byEmployee["alice"].Balances["annual"].Int())
}

func TestBalances_UnknownEmployeeYieldsEmptyMap(t *testing.T) {
	reporter := newTestReporter(t)

	balances, err := reporter.Balances(context.Background(), "mallory")
	require.NoError(t, err)
	assert.Empty(t, balances)
}

func TestRecordsByStatus_FiltersToOneStatus(t *testing.T) {
	reporter := newTestReporter(t)
	ctx := context.Background()

	pending := leave.StatusPending
	records, err := reporter.RecordsByStatus(ctx, "charlie", &pending)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, leave.RecordID(3), records[0].ID)

	approved := leave.StatusApproved
	records, err = reporter.RecordsByStatus(ctx, "charlie", &approved)
	require.NoError(t, err)
	assert.Empty(t, records)

	all, err := reporter.Records(ctx, "charlie")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
