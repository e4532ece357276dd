package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/repository"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/mail"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/timeutil"
)

// ── test doubles ──

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []mail.Message
}

func (n *recordingNotifier) Notify(_ context.Context, msg mail.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *recordingNotifier) Close() error { return nil }

func (n *recordingNotifier) sent() []mail.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]mail.Message(nil), n.msgs...)
}

type fakeSender struct {
	mu      sync.Mutex
	msgs    []mail.Message
	failFor map[string]bool
}

func (s *fakeSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(msg.To) > 0 && s.failFor[msg.To[0]] {
		return errors.New("provider rejected the message")
	}
	s.msgs = append(s.msgs, msg)
	return nil
}

// ── fixture ──

type fixture struct {
	db       *memDB
	repo     *repository.Repository
	notifier *recordingNotifier
}

func newFixture() *fixture {
	db := newMemDB()
	return &fixture{db: db, repo: db.repository(), notifier: &recordingNotifier{}}
}

func (f *fixture) store(t *testing.T, name string) *model.Store {
	t.Helper()
	s := &model.Store{Name: name, RequiredStaff: model.RequiredStaff{}}
	require.NoError(t, f.repo.Store.Create(context.Background(), s))
	return s
}

func (f *fixture) pattern(t *testing.T, name, start, end string) *model.ShiftPattern {
	t.Helper()
	p := &model.ShiftPattern{Name: name, StartTime: start + ":00", EndTime: end + ":00", Color: "#3B82F6"}
	require.NoError(t, f.repo.ShiftPattern.Create(context.Background(), p))
	return p
}

// user creates an account whose password is "password123".
func (f *fixture) user(t *testing.T, role, loginID, name string, stores ...*model.Store) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		Name:         name,
		Email:        loginID + "@example.com",
		Role:         role,
		SkillLevel:   model.SkillRegular,
		LoginID:      loginID,
		PasswordHash: string(hash),
		IsFirstLogin: true,
	}
	ctx := context.Background()
	require.NoError(t, f.repo.User.Create(ctx, u))
	links := make([]model.UserStore, 0, len(stores))
	for _, s := range stores {
		links = append(links, model.UserStore{StoreID: s.ID})
	}
	require.NoError(t, f.repo.UserStore.ReplaceForUser(ctx, u.ID, links))
	return u
}

func (f *fixture) shift(t *testing.T, u *model.User, s *model.Store, p *model.ShiftPattern, date, status string) *model.Shift {
	t.Helper()
	sh := &model.Shift{
		UserID:    u.ID,
		StoreID:   s.ID,
		Date:      day(t, date),
		PatternID: p.ID,
		Status:    status,
		Version:   1,
	}
	require.NoError(t, f.repo.Shift.Create(context.Background(), sh))
	return sh
}

func (f *fixture) shiftsOn(t *testing.T, u *model.User, date string) []model.Shift {
	t.Helper()
	shifts, err := f.repo.Shift.ListByUserAndDate(context.Background(), u.ID, day(t, date))
	require.NoError(t, err)
	return shifts
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := timeutil.ParseDate(s)
	require.NoError(t, err)
	return d
}

func ptr[T any](v T) *T { return &v }
