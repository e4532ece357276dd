package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
)

// ── helpers ──

type shiftEnv struct {
	*fixture
	svc     ShiftService
	storeA  *model.Store
	storeB  *model.Store
	morning *model.ShiftPattern
	evening *model.ShiftPattern
	staff   *model.User
}

func setupShiftService(t *testing.T) *shiftEnv {
	t.Helper()
	f := newFixture()
	env := &shiftEnv{fixture: f}
	env.storeA = f.store(t, "Shibuya")
	env.storeB = f.store(t, "Shinjuku")
	env.morning = f.pattern(t, "Morning", "09:00", "13:00")
	env.evening = f.pattern(t, "Evening", "17:00", "22:00")
	env.staff = f.user(t, model.RoleStaff, "sby-001", "Aiko", env.storeA, env.storeB)
	env.svc = NewShiftService(f.repo, f.notifier, "http://localhost:3000", time.UTC, zap.NewNop())
	return env
}

func (e *shiftEnv) createReq(store *model.Store, date, status string) *dto.CreateShiftRequest {
	return &dto.CreateShiftRequest{
		UserID:    e.staff.ID,
		StoreID:   store.ID,
		Date:      date,
		PatternID: e.morning.ID,
		Status:    status,
	}
}

func requireConflict(t *testing.T, err error, kind error, conflictType string) *ConflictError {
	t.Helper()
	var ce *ConflictError
	require.True(t, errors.As(err, &ce), "expected *ConflictError, got %v", err)
	assert.ErrorIs(t, err, kind)
	assert.Equal(t, conflictType, ce.ConflictType)
	return ce
}

// ── conflict resolution ──

func TestShiftService_Create_DefaultsToDraft(t *testing.T) {
	env := setupShiftService(t)

	resp, err := env.svc.Create(context.Background(), env.createReq(env.storeA, "2025-01-06", ""))
	require.NoError(t, err)

	assert.Equal(t, model.ShiftStatusDraft, resp.Status)
	assert.Equal(t, "2025-01-06", resp.Date)
	assert.Equal(t, 1, resp.Version)
	require.NotNil(t, resp.Pattern)
	assert.Equal(t, "09:00", resp.Pattern.StartTime)
	assert.Empty(t, env.notifier.sent(), "drafts are not announced")
	assert.Contains(t, env.db.locks, env.staff.ID+":2025-01-06")
}

func TestShiftService_Create_ConfirmedEvictsDraft(t *testing.T) {
	env := setupShiftService(t)
	draft := env.shift(t, env.staff, env.storeB, env.evening, "2025-01-06", model.ShiftStatusDraft)

	resp, err := env.svc.Create(context.Background(), env.createReq(env.storeA, "2025-01-06", model.ShiftStatusConfirmed))
	require.NoError(t, err)

	shifts := env.shiftsOn(t, env.staff, "2025-01-06")
	require.Len(t, shifts, 1)
	assert.Equal(t, resp.ID, shifts[0].ID)
	assert.Equal(t, model.ShiftStatusConfirmed, shifts[0].Status)
	assert.NotEqual(t, draft.ID, shifts[0].ID)

	sent := env.notifier.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{env.staff.Email}, sent[0].To)
	assert.Contains(t, sent[0].HTML, "Shibuya")
}

func TestShiftService_Create_DraftRejectedByConfirmed(t *testing.T) {
	env := setupShiftService(t)
	confirmed := env.shift(t, env.staff, env.storeB, env.evening, "2025-01-06", model.ShiftStatusConfirmed)

	_, err := env.svc.Create(context.Background(), env.createReq(env.storeA, "2025-01-06", model.ShiftStatusDraft))
	ce := requireConflict(t, err, ErrShiftConflict, "confirmed")
	assert.Equal(t, env.storeB.ID, ce.StoreID)
	assert.Equal(t, "Shinjuku", ce.StoreName)

	shifts := env.shiftsOn(t, env.staff, "2025-01-06")
	require.Len(t, shifts, 1, "existing rows must be untouched")
	assert.Equal(t, confirmed.ID, shifts[0].ID)
	assert.Equal(t, 1, shifts[0].Version)
}

func TestShiftService_Create_ConfirmedRejectedByConfirmed(t *testing.T) {
	env := setupShiftService(t)
	env.shift(t, env.staff, env.storeA, env.evening, "2025-01-06", model.ShiftStatusConfirmed)

	_, err := env.svc.Create(context.Background(), env.createReq(env.storeB, "2025-01-06", model.ShiftStatusConfirmed))
	requireConflict(t, err, ErrShiftConflict, "confirmed")

	confirmed := 0
	for _, sh := range env.shiftsOn(t, env.staff, "2025-01-06") {
		if sh.Status == model.ShiftStatusConfirmed {
			confirmed++
		}
	}
	assert.Equal(t, 1, confirmed)
}

func TestShiftService_Create_SecondDraftRejected(t *testing.T) {
	env := setupShiftService(t)
	env.shift(t, env.staff, env.storeB, env.evening, "2025-01-06", model.ShiftStatusDraft)

	_, err := env.svc.Create(context.Background(), env.createReq(env.storeA, "2025-01-06", model.ShiftStatusDraft))
	ce := requireConflict(t, err, ErrShiftConflict, "draft")
	assert.Equal(t, "Shinjuku", ce.StoreName)
	assert.Len(t, env.shiftsOn(t, env.staff, "2025-01-06"), 1)
}

func TestShiftService_Create_OtherDatesIndependent(t *testing.T) {
	env := setupShiftService(t)
	env.shift(t, env.staff, env.storeA, env.evening, "2025-01-06", model.ShiftStatusConfirmed)

	_, err := env.svc.Create(context.Background(), env.createReq(env.storeA, "2025-01-07", model.ShiftStatusDraft))
	assert.NoError(t, err)
}

func TestShiftService_Create_MissingReferences(t *testing.T) {
	env := setupShiftService(t)
	ctx := context.Background()

	req := env.createReq(env.storeA, "2025-01-06", "")
	req.UserID = "nope"
	_, err := env.svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrUserNotFound)

	req = env.createReq(env.storeA, "2025-01-06", "")
	req.StoreID = "nope"
	_, err = env.svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrStoreNotFound)

	req = env.createReq(env.storeA, "2025-01-06", "")
	req.PatternID = "nope"
	_, err = env.svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrPatternNotFound)
}

func TestShiftService_Create_BadDate(t *testing.T) {
	env := setupShiftService(t)

	_, err := env.svc.Create(context.Background(), env.createReq(env.storeA, "06/01/2025", ""))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// ── update ──

func TestShiftService_Update_ExcludesSelf(t *testing.T) {
	env := setupShiftService(t)
	sh := env.shift(t, env.staff, env.storeA, env.morning, "2025-01-06", model.ShiftStatusConfirmed)

	resp, err := env.svc.Update(context.Background(), sh.ID, &dto.UpdateShiftRequest{Notes: ptr("bring keys")})
	require.NoError(t, err)
	assert.Equal(t, "bring keys", resp.Notes)
	assert.Equal(t, 2, resp.Version)
}

func TestShiftService_Update_ConfirmEvictsOtherDraft(t *testing.T) {
	env := setupShiftService(t)
	mine := env.shift(t, env.staff, env.storeA, env.morning, "2025-01-06", model.ShiftStatusCompleted)
	other := env.shift(t, env.staff, env.storeB, env.evening, "2025-01-06", model.ShiftStatusDraft)

	_, err := env.svc.Update(context.Background(), mine.ID, &dto.UpdateShiftRequest{Status: ptr(model.ShiftStatusConfirmed)})
	require.NoError(t, err)

	_, err = env.repo.Shift.GetByID(context.Background(), other.ID)
	assert.Error(t, err, "draft must be evicted")
	assert.Len(t, env.notifier.sent(), 1)
}

func TestShiftService_Update_DraftOntoConfirmedDate(t *testing.T) {
	env := setupShiftService(t)
	env.shift(t, env.staff, env.storeB, env.evening, "2025-01-07", model.ShiftStatusConfirmed)
	draft := env.shift(t, env.staff, env.storeA, env.morning, "2025-01-06", model.ShiftStatusDraft)

	_, err := env.svc.Update(context.Background(), draft.ID, &dto.UpdateShiftRequest{Date: ptr("2025-01-07")})
	requireConflict(t, err, ErrShiftConflict, "confirmed")

	stored, err := env.repo.Shift.GetByID(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", stored.Date.Format("2006-01-02"))
	assert.ElementsMatch(t,
		[]string{env.staff.ID + ":2025-01-06", env.staff.ID + ":2025-01-07"},
		env.db.locks[len(env.db.locks)-2:],
	)
}

func TestShiftService_Update_StaleVersion(t *testing.T) {
	env := setupShiftService(t)
	sh := env.shift(t, env.staff, env.storeA, env.morning, "2025-01-06", model.ShiftStatusDraft)

	_, err := env.svc.Update(context.Background(), sh.ID, &dto.UpdateShiftRequest{Notes: ptr("x"), Version: ptr(1)})
	require.NoError(t, err)

	_, err = env.svc.Update(context.Background(), sh.ID, &dto.UpdateShiftRequest{Notes: ptr("y"), Version: ptr(1)})
	requireConflict(t, err, ErrShiftStale, "version")
}

func TestShiftService_Update_NotFound(t *testing.T) {
	env := setupShiftService(t)

	_, err := env.svc.Update(context.Background(), "missing", &dto.UpdateShiftRequest{})
	assert.ErrorIs(t, err, ErrShiftNotFound)
}

func TestShiftService_Delete(t *testing.T) {
	env := setupShiftService(t)
	sh := env.shift(t, env.staff, env.storeA, env.morning, "2025-01-06", model.ShiftStatusDraft)

	require.NoError(t, env.svc.Delete(context.Background(), sh.ID))
	assert.ErrorIs(t, env.svc.Delete(context.Background(), sh.ID), ErrShiftNotFound)
}

// ── at most one confirmed per user and day ──

func TestShiftService_AtMostOneConfirmedPerDay(t *testing.T) {
	env := setupShiftService(t)
	ctx := context.Background()
	stores := []*model.Store{env.storeA, env.storeB}
	statuses := []string{model.ShiftStatusDraft, model.ShiftStatusConfirmed, model.ShiftStatusConfirmed, model.ShiftStatusDraft}

	for i, status := range statuses {
		_, _ = env.svc.Create(ctx, env.createReq(stores[i%2], "2025-01-06", status))
	}

	confirmed := 0
	for _, sh := range env.shiftsOn(t, env.staff, "2025-01-06") {
		if sh.Status == model.ShiftStatusConfirmed {
			confirmed++
		}
	}
	assert.Equal(t, 1, confirmed)
}

// ── bulk week ──

func TestShiftService_BulkUpdateWeek(t *testing.T) {
	env := setupShiftService(t)
	other := env.user(t, model.RoleStaff, "sby-002", "Ren", env.storeA)
	env.shift(t, env.staff, env.storeA, env.morning, "2024-12-30", model.ShiftStatusDraft)
	env.shift(t, other, env.storeA, env.morning, "2025-01-05", model.ShiftStatusDraft)
	outside := env.shift(t, other, env.storeA, env.morning, "2025-01-06", model.ShiftStatusDraft)
	elsewhere := env.shift(t, env.staff, env.storeB, env.morning, "2025-01-02", model.ShiftStatusDraft)

	resp, err := env.svc.BulkUpdateWeek(context.Background(), &dto.BulkUpdateWeekRequest{
		StoreID:   env.storeA.ID,
		WeekStart: "2024-12-30",
		Status:    model.ShiftStatusConfirmed,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.UpdatedCount)

	week, err := env.svc.List(context.Background(), &dto.ShiftListRequest{StoreID: env.storeA.ID, DateFrom: "2024-12-30", DateTo: "2025-01-05"})
	require.NoError(t, err)
	for _, sh := range week {
		assert.Equal(t, model.ShiftStatusConfirmed, sh.Status)
	}

	for _, id := range []string{outside.ID, elsewhere.ID} {
		sh, err := env.repo.Shift.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, model.ShiftStatusDraft, sh.Status)
	}
}

func TestShiftService_BulkUpdateWeek_NoShifts(t *testing.T) {
	env := setupShiftService(t)

	_, err := env.svc.BulkUpdateWeek(context.Background(), &dto.BulkUpdateWeekRequest{
		StoreID:   env.storeA.ID,
		WeekStart: "2024-12-30",
		WeekEnd:   "2025-01-05",
		Status:    model.ShiftStatusConfirmed,
	})
	assert.ErrorIs(t, err, ErrNoShiftsInWindow)
}

func TestShiftService_BulkUpdateWeek_EndBeforeStart(t *testing.T) {
	env := setupShiftService(t)

	_, err := env.svc.BulkUpdateWeek(context.Background(), &dto.BulkUpdateWeekRequest{
		StoreID:   env.storeA.ID,
		WeekStart: "2025-01-05",
		WeekEnd:   "2024-12-30",
		Status:    model.ShiftStatusConfirmed,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestShiftService_BulkUpdateWeek_UniqueIndexConflict(t *testing.T) {
	env := setupShiftService(t)
	env.shift(t, env.staff, env.storeA, env.morning, "2025-01-01", model.ShiftStatusDraft)
	env.shift(t, env.staff, env.storeB, env.evening, "2025-01-01", model.ShiftStatusConfirmed)

	_, err := env.svc.BulkUpdateWeek(context.Background(), &dto.BulkUpdateWeekRequest{
		StoreID:   env.storeA.ID,
		WeekStart: "2024-12-30",
		Status:    model.ShiftStatusConfirmed,
	})
	requireConflict(t, err, ErrShiftConflict, model.ShiftStatusConfirmed)
}

// ── recurring ──

func TestShiftService_CreateRecurring_SkipsConflicts(t *testing.T) {
	env := setupShiftService(t)
	env.shift(t, env.staff, env.storeB, env.evening, "2025-01-08", model.ShiftStatusConfirmed)

	resp, err := env.svc.CreateRecurring(context.Background(), &dto.RecurringShiftRequest{
		UserID:    env.staff.ID,
		StoreID:   env.storeA.ID,
		PatternID: env.morning.ID,
		RRule:     "FREQ=WEEKLY;BYDAY=MO,WE",
		From:      "2025-01-06",
		Until:     "2025-01-19",
	})
	require.NoError(t, err)

	var created []string
	for _, sh := range resp.Created {
		created = append(created, sh.Date)
		assert.Equal(t, model.ShiftStatusDraft, sh.Status)
	}
	assert.Equal(t, []string{"2025-01-06", "2025-01-13", "2025-01-15"}, created)

	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, "2025-01-08", resp.Skipped[0].Date)
	assert.Equal(t, "confirmed", resp.Skipped[0].ConflictType)
	require.NotNil(t, resp.Skipped[0].Store)
	assert.Equal(t, "Shinjuku", resp.Skipped[0].Store.Name)
}

func TestShiftService_CreateRecurring_Validation(t *testing.T) {
	env := setupShiftService(t)
	base := dto.RecurringShiftRequest{
		UserID:    env.staff.ID,
		StoreID:   env.storeA.ID,
		PatternID: env.morning.ID,
		RRule:     "FREQ=DAILY",
		From:      "2025-01-01",
		Until:     "2025-01-31",
	}

	tests := []struct {
		name   string
		mutate func(r *dto.RecurringShiftRequest)
	}{
		{"unparsable rule", func(r *dto.RecurringShiftRequest) { r.RRule = "FREQ=SOMETIMES" }},
		{"sub-daily frequency", func(r *dto.RecurringShiftRequest) { r.RRule = "FREQ=HOURLY" }},
		{"until before from", func(r *dto.RecurringShiftRequest) { r.Until = "2024-12-31" }},
		{"too many dates", func(r *dto.RecurringShiftRequest) { r.Until = "2025-03-31" }},
		{"window over a year", func(r *dto.RecurringShiftRequest) { r.RRule = "FREQ=MONTHLY"; r.Until = "2026-06-01" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := env.svc.CreateRecurring(context.Background(), &req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Empty(t, env.db.shifts)
}

// ── export / calendar ──

func TestShiftService_ExportWeek(t *testing.T) {
	env := setupShiftService(t)
	env.shift(t, env.staff, env.storeA, env.morning, "2025-01-07", model.ShiftStatusConfirmed)

	buf, filename, err := env.svc.ExportWeek(context.Background(), &dto.ShiftExportRequest{StoreID: env.storeA.ID, WeekStart: "2025-01-06"})
	require.NoError(t, err)
	assert.Equal(t, "shifts_Shibuya_2025-01-06.xlsx", filename)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	login, err := f.GetCellValue("Roster", "A3")
	require.NoError(t, err)
	assert.Equal(t, "sby-001", login)

	monday, _ := f.GetCellValue("Roster", "C3")
	tuesday, _ := f.GetCellValue("Roster", "D3")
	assert.Equal(t, "-", monday)
	assert.Equal(t, "Morning 09:00-13:00 (confirmed)", tuesday)
}

func TestShiftService_ExportWeek_UnknownStore(t *testing.T) {
	env := setupShiftService(t)

	_, _, err := env.svc.ExportWeek(context.Background(), &dto.ShiftExportRequest{StoreID: "missing", WeekStart: "2025-01-06"})
	assert.ErrorIs(t, err, ErrStoreNotFound)
}

func TestShiftService_Calendar(t *testing.T) {
	env := setupShiftService(t)
	confirmed := env.shift(t, env.staff, env.storeA, env.morning, "2025-01-07", model.ShiftStatusConfirmed)
	env.shift(t, env.staff, env.storeA, env.morning, "2025-01-08", model.ShiftStatusDraft)

	body, err := env.svc.Calendar(context.Background(), env.staff.ID)
	require.NoError(t, err)

	ics := string(body)
	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Equal(t, 1, strings.Count(ics, "BEGIN:VEVENT"), "drafts are not published")
	assert.Contains(t, ics, confirmed.ID+"@shift-management")
	assert.Contains(t, ics, "20250107T090000Z")
	assert.Contains(t, ics, "LOCATION:Shibuya")
}

func TestShiftService_Calendar_UnknownUser(t *testing.T) {
	env := setupShiftService(t)

	_, err := env.svc.Calendar(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
