package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ren-jimpo/shift-management-app-sub000/config"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
)

func setupNotificationService(t *testing.T, sender *fakeSender, batch int) (*fixture, *notificationService) {
	t.Helper()
	f := newFixture()
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	svc := NewNotificationService(f.repo, sender, &config.MailConfig{BatchSize: batch, BatchDelay: time.Millisecond}, "http://localhost:3000", tokyo, zap.NewNop()).(*notificationService)
	// 2025-01-06 16:30 UTC is already the 7th in Tokyo
	svc.now = func() time.Time { return time.Date(2025, 1, 6, 16, 30, 0, 0, time.UTC) }
	return f, svc
}

func TestNotificationService_Daily_BatchesAndTallies(t *testing.T) {
	sender := &fakeSender{failFor: map[string]bool{}}
	f, svc := setupNotificationService(t, sender, 2)
	store := f.store(t, "Shibuya")
	p := f.pattern(t, "Morning", "09:00", "13:00")

	var users []*model.User
	for _, login := range []string{"sby-001", "sby-002", "sby-003", "sby-004", "sby-005"} {
		u := f.user(t, model.RoleStaff, login, login, store)
		users = append(users, u)
		f.shift(t, u, store, p, "2025-01-07", model.ShiftStatusConfirmed)
	}
	sender.failFor[users[2].Email] = true
	// not part of the run
	f.shift(t, users[0], store, p, "2025-01-08", model.ShiftStatusConfirmed)
	f.shift(t, f.user(t, model.RoleStaff, "sby-006", "draft only", store), store, p, "2025-01-07", model.ShiftStatusDraft)

	res, err := svc.SendDailyShiftNotifications(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &dto.DailyNotificationResult{Date: "2025-01-07", Total: 5, Sent: 4, Failed: 1}, res)

	require.Len(t, sender.msgs, 4)
	for _, msg := range sender.msgs {
		assert.Contains(t, msg.HTML, "Shibuya")
		assert.Contains(t, msg.HTML, "09:00")
		assert.NotEqual(t, []string{users[2].Email}, msg.To)
	}
}

func TestNotificationService_Daily_NothingToSend(t *testing.T) {
	sender := &fakeSender{}
	_, svc := setupNotificationService(t, sender, 0)

	res, err := svc.SendDailyShiftNotifications(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
	assert.Empty(t, sender.msgs)
}

func TestNotificationService_SendEmail(t *testing.T) {
	sender := &fakeSender{failFor: map[string]bool{"bounce@example.com": true}}
	_, svc := setupNotificationService(t, sender, 5)
	ctx := context.Background()

	_, err := svc.SendEmail(ctx, &dto.SendEmailRequest{To: []string{"a@example.com"}, Subject: "hi"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	resp, err := svc.SendEmail(ctx, &dto.SendEmailRequest{To: []string{"a@example.com", "b@example.com"}, Subject: "hi", Text: "body"})
	require.NoError(t, err)
	assert.Equal(t, &dto.EmailSentResponse{Sent: true, Recipients: 2}, resp)

	_, err = svc.SendEmail(ctx, &dto.SendEmailRequest{To: []string{"bounce@example.com"}, Subject: "hi", Text: "body"})
	assert.ErrorIs(t, err, ErrMailNotDeliverable)
}

func TestNotificationService_SendTest(t *testing.T) {
	sender := &fakeSender{}
	_, svc := setupNotificationService(t, sender, 5)

	resp, err := svc.SendTest(context.Background(), &dto.TestEmailRequest{To: "ops@example.com"})
	require.NoError(t, err)
	assert.True(t, resp.Sent)
	require.Len(t, sender.msgs, 1)
	assert.Equal(t, []string{"ops@example.com"}, sender.msgs[0].To)
}
