package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/api"
	"github.com/warp/leave-engine/factory"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/memory"
)

// newTestServer wires the full stack against the demo org with a fixed
// clock, backed by the in-memory store.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	org := factory.DemoOrg()
	store := memory.New()
	require.NoError(t, factory.Seed(context.Background(), store, org))

	directory := org.Directory()
	policies := org.PolicyStore()
	audit := memory.NewAuditLog()

	engine := leave.NewEngine(leave.Config{
		Directory: directory,
		Policies:  policies,
		Store:     store,
		Clock:     leave.FixedClock{Date: leave.NewDate(2025, time.June, 25)},
		Audit:     audit,
	})

	return api.NewRouter(&api.Handler{
		Engine:    engine,
		Reporter:  &leave.Reporter{Directory: directory, Store: store},
		Directory: directory,
		Policies:  policies,
		Audit:     audit,
	})
}

func doJSON(t *testing.T, server http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// =============================================================================
// LIFECYCLE COMMANDS
// =============================================================================

func TestApplyLeave_Created(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/leave", api.ApplyLeaveRequest{
		Employee: "bob", LeaveType: "casual",
		Start: "2025-07-20", End: "2025-07-20",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decode[api.MessageResponse](t, rec)
	assert.Equal(t, int64(5), resp.RecordID)
	assert.Contains(t, resp.Message, "Leave request submitted for bob (casual)")
}

func TestApplyLeave_UnknownEmployeeIs404(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/leave", api.ApplyLeaveRequest{
		Employee: "mallory", LeaveType: "casual",
		Start: "2025-07-20", End: "2025-07-20",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApplyLeave_OverlapIs409(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/leave", api.ApplyLeaveRequest{
		Employee: "alice", LeaveType: "annual",
		Start: "2025-07-02", End: "2025-07-04",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	resp := decode[api.ErrorResponse](t, rec)
	assert.Equal(t, "Conflicting leave request", resp.Error)
}

func TestApplyLeave_InsufficientNoticeIs400(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/leave", api.ApplyLeaveRequest{
		Employee: "alice", LeaveType: "annual",
		Start: "2025-06-26", End: "2025-06-27",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplyLeave_MalformedBodyIs400(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/leave", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelLeave_ThenSecondCancelIs404(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/leave/1/cancel", api.CancelLeaveRequest{Employee: "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[api.MessageResponse](t, rec).Message, "Leave ID 1 cancelled.")

	rec = doJSON(t, server, http.MethodPost, "/api/leave/1/cancel", api.CancelLeaveRequest{Employee: "alice"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApproveLeave(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/leave/3/approve", api.ProcessLeaveRequest{Manager: "david"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Leave approved.", decode[api.MessageResponse](t, rec).Message)

	// The record now shows as approved.
	rec = doJSON(t, server, http.MethodGet, "/api/employees/charlie/leave?status=approved", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	records := decode[[]api.LeaveRecordDTO](t, rec)
	require.Len(t, records, 1)
	assert.Equal(t, int64(3), records[0].ID)
}

func TestRejectLeave_NotTheApproverIs404(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/leave/3/reject", api.ProcessLeaveRequest{Manager: "farah"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelLeave_NonNumericIDIs400(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/leave/abc/cancel", api.CancelLeaveRequest{Employee: "alice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// QUERIES
// =============================================================================

func TestListEmployees(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/employees", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	employees := decode[[]api.EmployeeDTO](t, rec)
	require.Len(t, employees, 6)
	assert.Equal(t, "alice", employees[0].ID)
	assert.Equal(t, "david", employees[0].Manager)
}

func TestGetEmployee_UnknownIs404(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/employees/mallory", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBalance(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/employees/bob/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	balances := decode[map[string]int](t, rec)
	assert.Equal(t, map[string]int{"annual": 8, "sick": 2, "casual": 3}, balances)
}

func TestListLeaveRecords_StatusFilter(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/employees/charlie/leave?status=pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	records := decode[[]api.LeaveRecordDTO](t, rec)
	require.Len(t, records, 1)
	assert.Equal(t, int64(3), records[0].ID)
	assert.Equal(t, 2, records[0].Days)
	assert.Equal(t, "david", records[0].Approver)

	// Unknown filter value.
	rec = doJSON(t, server, http.MethodGet, "/api/employees/charlie/leave?status=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPolicy(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/policies/annual", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	policy := decode[api.PolicyDTO](t, rec)
	assert.Equal(t, 30, policy.MaxDays)
	assert.Equal(t, 2, policy.MinNoticeDays)
	assert.Contains(t, policy.Description, "max 30 days per year")

	rec = doJSON(t, server, http.MethodGet, "/api/policies/sabbatical", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeaveReport(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/reports/leave", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rows := decode[[]api.ReportRowDTO](t, rec)
	require.Len(t, rows, 6)
	assert.Equal(t, "alice", rows[0].Employee)
	assert.Equal(t, 3, rows[0].ApprovedDays)
	assert.Equal(t, 12, rows[0].Balance["annual"])
}

func TestAuditTrail_FiltersByActor(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/leave", api.ApplyLeaveRequest{
		Employee: "bob", LeaveType: "casual",
		Start: "2025-07-20", End: "2025-07-20",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/audit?actor=bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	entries := decode[[]api.AuditEntryDTO](t, rec)
	require.Len(t, entries, 1)
	assert.Equal(t, "leave_applied", entries[0].Action)
	assert.Equal(t, int64(5), entries[0].RecordID)
}
