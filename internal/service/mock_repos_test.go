package service

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/repository"
	pkgerrors "github.com/ren-jimpo/shift-management-app-sub000/pkg/errors"
)

// memDB is an in-memory stand-in for the database shared by every mock
// repository. It enforces the same unique constraints the schema does.
type memDB struct {
	seq         int
	users       map[string]*model.User
	links       []model.UserStore
	sequences   map[string]int
	stores      map[string]*model.Store
	patterns    map[string]*model.ShiftPattern
	slots       map[string]*model.TimeSlot
	shifts      map[string]*model.Shift
	timeOff     map[string]*model.TimeOffRequest
	emergencies map[string]*model.EmergencyRequest
	volunteers  map[string]*model.EmergencyVolunteer

	locks  []string
	txRuns int
}

func newMemDB() *memDB {
	return &memDB{
		users:       make(map[string]*model.User),
		sequences:   make(map[string]int),
		stores:      make(map[string]*model.Store),
		patterns:    make(map[string]*model.ShiftPattern),
		slots:       make(map[string]*model.TimeSlot),
		shifts:      make(map[string]*model.Shift),
		timeOff:     make(map[string]*model.TimeOffRequest),
		emergencies: make(map[string]*model.EmergencyRequest),
		volunteers:  make(map[string]*model.EmergencyVolunteer),
	}
}

func (db *memDB) nextID(prefix string) string {
	db.seq++
	return fmt.Sprintf("%s-%03d", prefix, db.seq)
}

func (db *memDB) now() time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(db.seq) * time.Second)
}

// repository builds the aggregate over db. The transactor runs fn against
// the same repositories and restores a snapshot when fn fails.
func (db *memDB) repository() *repository.Repository {
	repo := &repository.Repository{
		User:         &mockUserRepo{db: db},
		UserStore:    &mockUserStoreRepo{db: db},
		LoginID:      &mockLoginIDRepo{db: db},
		Store:        &mockStoreRepo{db: db},
		ShiftPattern: &mockPatternRepo{db: db},
		TimeSlot:     &mockTimeSlotRepo{db: db},
		Shift:        &mockShiftRepo{db: db},
		TimeOff:      &mockTimeOffRepo{db: db},
		Emergency:    &mockEmergencyRepo{db: db},
		Volunteer:    &mockVolunteerRepo{db: db},
	}
	repo.Tx = &mockTransactor{db: db, repo: repo}
	return repo
}

// ── Transactor ──

type mockTransactor struct {
	db   *memDB
	repo *repository.Repository
}

func (t *mockTransactor) WithinTx(_ context.Context, fn func(tx *repository.Repository) error) error {
	t.db.txRuns++
	snap := t.db.snapshot()
	if err := fn(t.repo); err != nil {
		t.db.restore(snap)
		return err
	}
	return nil
}

func cloneRows[T any](m map[string]*T) map[string]*T {
	out := make(map[string]*T, len(m))
	for k, v := range m {
		row := *v
		out[k] = &row
	}
	return out
}

// snapshot copies every table; rows are copied by value.
func (db *memDB) snapshot() *memDB {
	snap := *db
	snap.users = cloneRows(db.users)
	snap.links = append([]model.UserStore(nil), db.links...)
	snap.sequences = maps.Clone(db.sequences)
	snap.stores = cloneRows(db.stores)
	snap.patterns = cloneRows(db.patterns)
	snap.slots = cloneRows(db.slots)
	snap.shifts = cloneRows(db.shifts)
	snap.timeOff = cloneRows(db.timeOff)
	snap.emergencies = cloneRows(db.emergencies)
	snap.volunteers = cloneRows(db.volunteers)
	return &snap
}

// restore rolls the tables back to snap; the id sequence and the lock and
// transaction counters are kept.
func (db *memDB) restore(snap *memDB) {
	seq, locks, txRuns := db.seq, db.locks, db.txRuns
	*db = *snap
	db.seq, db.locks, db.txRuns = seq, locks, txRuns
}

// ── User ──

type mockUserRepo struct{ db *memDB }

func (m *mockUserRepo) load(u *model.User) *model.User {
	out := *u
	out.Stores = nil
	for _, link := range m.db.links {
		if link.UserID == u.ID {
			l := link
			l.Store = m.db.stores[l.StoreID]
			out.Stores = append(out.Stores, l)
		}
	}
	return &out
}

func (m *mockUserRepo) unique(u *model.User) error {
	for _, other := range m.db.users {
		if other.ID == u.ID {
			continue
		}
		if other.Email == u.Email || other.LoginID == u.LoginID {
			return gorm.ErrDuplicatedKey
		}
	}
	return nil
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = m.db.nextID("user")
	}
	if err := m.unique(user); err != nil {
		return err
	}
	user.CreatedAt, user.UpdatedAt = m.db.now(), m.db.now()
	stored := *user
	stored.Stores = nil
	m.db.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.db.users[id]; ok {
		return m.load(u), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByLoginID(_ context.Context, loginID string) (*model.User, error) {
	for _, u := range m.db.users {
		if u.LoginID == loginID {
			return m.load(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.db.users {
		if u.Email == email {
			return m.load(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter) ([]model.User, error) {
	var result []model.User
	for _, u := range m.db.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.LoginID != "" && u.LoginID != filter.LoginID {
			continue
		}
		if filter.StoreID != "" && !m.db.member(u.ID, filter.StoreID) {
			continue
		}
		result = append(result, *m.load(u))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Role != result[j].Role {
			return result[i].Role < result[j].Role
		}
		return result[i].LoginID < result[j].LoginID
	})
	return result, nil
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.db.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.db.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if err := m.unique(user); err != nil {
		return err
	}
	stored := *user
	stored.Stores = nil
	m.db.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	if u, ok := m.db.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := m.db.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = hash
	u.IsFirstLogin = false
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.db.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.db.users, id)
	kept := m.db.links[:0]
	for _, l := range m.db.links {
		if l.UserID != id {
			kept = append(kept, l)
		}
	}
	m.db.links = kept
	for sid, sh := range m.db.shifts {
		if sh.UserID == id {
			delete(m.db.shifts, sid)
		}
	}
	return nil
}

func (m *mockUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	var n int64
	for _, u := range m.db.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (m *mockUserRepo) CountStaffInStore(_ context.Context, storeID string) (int64, error) {
	var n int64
	for _, u := range m.db.users {
		if u.Role == model.RoleStaff && m.db.member(u.ID, storeID) {
			n++
		}
	}
	return n, nil
}

func (db *memDB) member(userID, storeID string) bool {
	for _, l := range db.links {
		if l.UserID == userID && l.StoreID == storeID {
			return true
		}
	}
	return false
}

// ── UserStore ──

type mockUserStoreRepo struct{ db *memDB }

func (m *mockUserStoreRepo) ReplaceForUser(_ context.Context, userID string, links []model.UserStore) error {
	kept := make([]model.UserStore, 0, len(m.db.links))
	for _, l := range m.db.links {
		if l.UserID != userID {
			kept = append(kept, l)
		}
	}
	for _, l := range links {
		l.UserID = userID
		l.Store = nil
		kept = append(kept, l)
	}
	m.db.links = kept
	return nil
}

func (m *mockUserStoreRepo) ListByStore(_ context.Context, storeID string) ([]model.UserStore, error) {
	var result []model.UserStore
	for _, l := range m.db.links {
		if l.StoreID == storeID {
			result = append(result, l)
		}
	}
	return result, nil
}

func (m *mockUserStoreRepo) ListByUser(_ context.Context, userID string) ([]model.UserStore, error) {
	var result []model.UserStore
	for _, l := range m.db.links {
		if l.UserID == userID {
			l.Store = m.db.stores[l.StoreID]
			result = append(result, l)
		}
	}
	return result, nil
}

func (m *mockUserStoreRepo) ListFlexible(_ context.Context) ([]model.UserStore, error) {
	var result []model.UserStore
	for _, l := range m.db.links {
		if l.IsFlexible {
			result = append(result, l)
		}
	}
	return result, nil
}

func (m *mockUserStoreRepo) ResetFlexible(_ context.Context, storeID string) error {
	for i := range m.db.links {
		if m.db.links[i].StoreID == storeID {
			m.db.links[i].IsFlexible = false
		}
	}
	return nil
}

func (m *mockUserStoreRepo) SetFlexible(_ context.Context, storeID string, userIDs []string) (int64, error) {
	var n int64
	for i := range m.db.links {
		if m.db.links[i].StoreID != storeID {
			continue
		}
		for _, id := range userIDs {
			if m.db.links[i].UserID == id {
				m.db.links[i].IsFlexible = true
				n++
			}
		}
	}
	return n, nil
}

// ── LoginIDSequence ──

type mockLoginIDRepo struct{ db *memDB }

func (m *mockLoginIDRepo) Next(_ context.Context, scope string, initial int) (int, error) {
	v, ok := m.db.sequences[scope]
	if !ok {
		m.db.sequences[scope] = initial
		return initial, nil
	}
	m.db.sequences[scope] = v + 1
	return v + 1, nil
}

// ── Store ──

type mockStoreRepo struct{ db *memDB }

func (m *mockStoreRepo) unique(s *model.Store) error {
	for _, other := range m.db.stores {
		if other.ID != s.ID && other.Name == s.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	return nil
}

func (m *mockStoreRepo) Create(_ context.Context, store *model.Store) error {
	if store.ID == "" {
		store.ID = m.db.nextID("store")
	}
	if err := m.unique(store); err != nil {
		return err
	}
	stored := *store
	m.db.stores[store.ID] = &stored
	return nil
}

func (m *mockStoreRepo) GetByID(_ context.Context, id string) (*model.Store, error) {
	if s, ok := m.db.stores[id]; ok {
		out := *s
		return &out, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStoreRepo) List(_ context.Context) ([]model.Store, error) {
	var result []model.Store
	for _, s := range m.db.stores {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockStoreRepo) Update(_ context.Context, store *model.Store) error {
	if err := m.unique(store); err != nil {
		return err
	}
	stored := *store
	m.db.stores[store.ID] = &stored
	return nil
}

func (m *mockStoreRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.db.stores[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.db.stores, id)
	return nil
}

// ── ShiftPattern ──

type mockPatternRepo struct{ db *memDB }

func (m *mockPatternRepo) Create(_ context.Context, p *model.ShiftPattern) error {
	if p.ID == "" {
		p.ID = m.db.nextID("pattern")
	}
	stored := *p
	m.db.patterns[p.ID] = &stored
	return nil
}

func (m *mockPatternRepo) GetByID(_ context.Context, id string) (*model.ShiftPattern, error) {
	if p, ok := m.db.patterns[id]; ok {
		out := *p
		return &out, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPatternRepo) List(_ context.Context) ([]model.ShiftPattern, error) {
	var result []model.ShiftPattern
	for _, p := range m.db.patterns {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime < result[j].StartTime })
	return result, nil
}

func (m *mockPatternRepo) Update(_ context.Context, p *model.ShiftPattern) error {
	stored := *p
	m.db.patterns[p.ID] = &stored
	return nil
}

func (m *mockPatternRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.db.patterns[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.db.patterns, id)
	return nil
}

// ── TimeSlot ──

type mockTimeSlotRepo struct{ db *memDB }

func (m *mockTimeSlotRepo) Create(_ context.Context, slot *model.TimeSlot) error {
	if slot.ID == "" {
		slot.ID = m.db.nextID("slot")
	}
	stored := *slot
	m.db.slots[slot.ID] = &stored
	return nil
}

func (m *mockTimeSlotRepo) GetByID(_ context.Context, id string) (*model.TimeSlot, error) {
	if s, ok := m.db.slots[id]; ok {
		out := *s
		return &out, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimeSlotRepo) List(_ context.Context, storeID string) ([]model.TimeSlot, error) {
	var result []model.TimeSlot
	for _, s := range m.db.slots {
		if storeID == "" || s.StoreID == storeID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DisplayOrder != result[j].DisplayOrder {
			return result[i].DisplayOrder < result[j].DisplayOrder
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockTimeSlotRepo) Update(_ context.Context, slot *model.TimeSlot) error {
	stored := *slot
	m.db.slots[slot.ID] = &stored
	return nil
}

func (m *mockTimeSlotRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.db.slots[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.db.slots, id)
	return nil
}

// ── Shift ──

type mockShiftRepo struct{ db *memDB }

func (m *mockShiftRepo) load(sh *model.Shift) model.Shift {
	out := *sh
	if u, ok := m.db.users[sh.UserID]; ok {
		cp := *u
		out.User = &cp
	}
	if s, ok := m.db.stores[sh.StoreID]; ok {
		cp := *s
		out.Store = &cp
	}
	if p, ok := m.db.patterns[sh.PatternID]; ok {
		cp := *p
		out.Pattern = &cp
	}
	return out
}

// unique mirrors the partial unique indexes on (user_id, date).
func (m *mockShiftRepo) unique(sh *model.Shift) error {
	if sh.Status != model.ShiftStatusConfirmed && sh.Status != model.ShiftStatusDraft {
		return nil
	}
	for _, other := range m.db.shifts {
		if other.ID != sh.ID && other.UserID == sh.UserID && other.Date.Equal(sh.Date) && other.Status == sh.Status {
			return gorm.ErrDuplicatedKey
		}
	}
	return nil
}

func (m *mockShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	if shift.ID == "" {
		shift.ID = m.db.nextID("shift")
	}
	if err := m.unique(shift); err != nil {
		return err
	}
	shift.CreatedAt, shift.UpdatedAt = m.db.now(), m.db.now()
	stored := *shift
	stored.User, stored.Store, stored.Pattern = nil, nil, nil
	m.db.shifts[shift.ID] = &stored
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	if sh, ok := m.db.shifts[id]; ok {
		out := m.load(sh)
		return &out, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) List(_ context.Context, f repository.ShiftFilter) ([]model.Shift, error) {
	var result []model.Shift
	for _, sh := range m.db.shifts {
		if f.StoreID != "" && sh.StoreID != f.StoreID {
			continue
		}
		if f.UserID != "" && sh.UserID != f.UserID {
			continue
		}
		if f.Status != "" && sh.Status != f.Status {
			continue
		}
		if f.PatternID != "" && sh.PatternID != f.PatternID {
			continue
		}
		if f.DateFrom != nil && sh.Date.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && sh.Date.After(*f.DateTo) {
			continue
		}
		result = append(result, m.load(sh))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockShiftRepo) ListByUserAndDate(_ context.Context, userID string, date time.Time) ([]model.Shift, error) {
	var result []model.Shift
	for _, sh := range m.db.shifts {
		if sh.UserID == userID && sh.Date.Equal(date) {
			result = append(result, m.load(sh))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockShiftRepo) Update(_ context.Context, shift *model.Shift) error {
	cur, ok := m.db.shifts[shift.ID]
	if !ok || cur.Version != shift.Version {
		return pkgerrors.ErrOptimisticLock
	}
	if err := m.unique(shift); err != nil {
		return err
	}
	shift.Version++
	stored := *shift
	stored.User, stored.Store, stored.Pattern = nil, nil, nil
	m.db.shifts[shift.ID] = &stored
	return nil
}

func (m *mockShiftRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.db.shifts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.db.shifts, id)
	return nil
}

func (m *mockShiftRepo) DeleteDrafts(_ context.Context, userID string, date time.Time, excludeID string) (int64, error) {
	var n int64
	for id, sh := range m.db.shifts {
		if id != excludeID && sh.UserID == userID && sh.Date.Equal(date) && sh.Status == model.ShiftStatusDraft {
			delete(m.db.shifts, id)
			n++
		}
	}
	return n, nil
}

func (m *mockShiftRepo) UpdateStatusByIDs(_ context.Context, ids []string, status string) (int64, error) {
	var n int64
	for _, id := range ids {
		sh, ok := m.db.shifts[id]
		if !ok {
			continue
		}
		next := *sh
		next.Status = status
		if err := m.unique(&next); err != nil {
			return 0, err
		}
		sh.Status = status
		sh.Version++
		n++
	}
	return n, nil
}

func (m *mockShiftRepo) CountByPattern(_ context.Context, patternID string) (int64, error) {
	var n int64
	for _, sh := range m.db.shifts {
		if sh.PatternID == patternID {
			n++
		}
	}
	return n, nil
}

func (m *mockShiftRepo) LockUserDate(_ context.Context, userID string, date time.Time) error {
	m.db.locks = append(m.db.locks, userID+":"+date.Format("2006-01-02"))
	return nil
}

// ── TimeOff ──

type mockTimeOffRepo struct{ db *memDB }

func (m *mockTimeOffRepo) load(r *model.TimeOffRequest) model.TimeOffRequest {
	out := *r
	if u, ok := m.db.users[r.UserID]; ok {
		cp := *u
		out.User = &cp
	}
	return out
}

func (m *mockTimeOffRepo) Create(_ context.Context, req *model.TimeOffRequest) error {
	if req.ID == "" {
		req.ID = m.db.nextID("timeoff")
	}
	req.CreatedAt = m.db.now()
	stored := *req
	stored.User = nil
	m.db.timeOff[req.ID] = &stored
	return nil
}

func (m *mockTimeOffRepo) GetByID(_ context.Context, id string) (*model.TimeOffRequest, error) {
	if r, ok := m.db.timeOff[id]; ok {
		out := m.load(r)
		return &out, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimeOffRepo) List(_ context.Context, f repository.TimeOffFilter) ([]model.TimeOffRequest, error) {
	var result []model.TimeOffRequest
	for _, r := range m.db.timeOff {
		if f.UserID != "" && r.UserID != f.UserID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.DateFrom != nil && r.Date.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && r.Date.After(*f.DateTo) {
			continue
		}
		result = append(result, m.load(r))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockTimeOffRepo) ListActiveByUserAndDate(_ context.Context, userID string, date time.Time) ([]model.TimeOffRequest, error) {
	var result []model.TimeOffRequest
	for _, r := range m.db.timeOff {
		if r.UserID == userID && r.Date.Equal(date) && r.Status != model.TimeOffRejected {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockTimeOffRepo) Respond(_ context.Context, ids []string, status, respondedBy string, at time.Time) (int64, error) {
	var n int64
	for _, id := range ids {
		r, ok := m.db.timeOff[id]
		if !ok || r.Status != model.TimeOffPending {
			continue
		}
		by := respondedBy
		when := at
		r.Status = status
		r.RespondedBy = &by
		r.RespondedAt = &when
		n++
	}
	return n, nil
}

func (m *mockTimeOffRepo) DeletePending(_ context.Context, id string) (int64, error) {
	r, ok := m.db.timeOff[id]
	if !ok || r.Status != model.TimeOffPending {
		return 0, nil
	}
	delete(m.db.timeOff, id)
	return 1, nil
}

// ── Emergency ──

type mockEmergencyRepo struct{ db *memDB }

func (m *mockEmergencyRepo) load(r *model.EmergencyRequest) model.EmergencyRequest {
	out := *r
	if u, ok := m.db.users[r.OriginalUserID]; ok {
		cp := *u
		out.OriginalUser = &cp
	}
	if s, ok := m.db.stores[r.StoreID]; ok {
		cp := *s
		out.Store = &cp
	}
	if p, ok := m.db.patterns[r.ShiftPatternID]; ok {
		cp := *p
		out.ShiftPattern = &cp
	}
	out.Volunteers = nil
	for _, v := range m.db.volunteers {
		if v.EmergencyRequestID == r.ID {
			out.Volunteers = append(out.Volunteers, (&mockVolunteerRepo{db: m.db}).load(v))
		}
	}
	sort.Slice(out.Volunteers, func(i, j int) bool { return out.Volunteers[i].ID < out.Volunteers[j].ID })
	return out
}

func (m *mockEmergencyRepo) Create(_ context.Context, req *model.EmergencyRequest) error {
	if req.ID == "" {
		req.ID = m.db.nextID("emergency")
	}
	req.CreatedAt = m.db.now()
	stored := *req
	stored.OriginalUser, stored.Store, stored.ShiftPattern, stored.Volunteers = nil, nil, nil, nil
	m.db.emergencies[req.ID] = &stored
	return nil
}

func (m *mockEmergencyRepo) GetByID(_ context.Context, id string) (*model.EmergencyRequest, error) {
	if r, ok := m.db.emergencies[id]; ok {
		out := m.load(r)
		return &out, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmergencyRepo) List(_ context.Context, f repository.EmergencyFilter) ([]model.EmergencyRequest, error) {
	var result []model.EmergencyRequest
	for _, r := range m.db.emergencies {
		if f.StoreID != "" && r.StoreID != f.StoreID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.DateFrom != nil && r.Date.Before(*f.DateFrom) {
			continue
		}
		result = append(result, m.load(r))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockEmergencyRepo) UpdateReason(_ context.Context, id, reason string) (int64, error) {
	r, ok := m.db.emergencies[id]
	if !ok || r.Status != model.EmergencyOpen {
		return 0, nil
	}
	r.Reason = reason
	return 1, nil
}

func (m *mockEmergencyRepo) Transition(_ context.Context, id, status string, filledBy *string) (int64, error) {
	r, ok := m.db.emergencies[id]
	if !ok || r.Status != model.EmergencyOpen {
		return 0, nil
	}
	r.Status = status
	r.FilledBy = filledBy
	return 1, nil
}

func (m *mockEmergencyRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.db.emergencies[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.db.emergencies, id)
	for vid, v := range m.db.volunteers {
		if v.EmergencyRequestID == id {
			delete(m.db.volunteers, vid)
		}
	}
	return nil
}

// ── Volunteer ──

type mockVolunteerRepo struct{ db *memDB }

func (m *mockVolunteerRepo) load(v *model.EmergencyVolunteer) model.EmergencyVolunteer {
	out := *v
	if u, ok := m.db.users[v.UserID]; ok {
		cp := *u
		out.User = &cp
	}
	return out
}

func (m *mockVolunteerRepo) Create(_ context.Context, v *model.EmergencyVolunteer) error {
	for _, other := range m.db.volunteers {
		if other.EmergencyRequestID == v.EmergencyRequestID && other.UserID == v.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	if v.ID == "" {
		v.ID = m.db.nextID("volunteer")
	}
	v.RespondedAt = m.db.now()
	stored := *v
	stored.User = nil
	m.db.volunteers[v.ID] = &stored
	return nil
}

func (m *mockVolunteerRepo) GetByID(_ context.Context, id string) (*model.EmergencyVolunteer, error) {
	if v, ok := m.db.volunteers[id]; ok {
		out := m.load(v)
		return &out, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVolunteerRepo) GetByRequestAndUser(_ context.Context, requestID, userID string) (*model.EmergencyVolunteer, error) {
	for _, v := range m.db.volunteers {
		if v.EmergencyRequestID == requestID && v.UserID == userID {
			out := *v
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVolunteerRepo) List(_ context.Context, f repository.VolunteerFilter) ([]model.EmergencyVolunteer, error) {
	var result []model.EmergencyVolunteer
	for _, v := range m.db.volunteers {
		if f.EmergencyRequestID != "" && v.EmergencyRequestID != f.EmergencyRequestID {
			continue
		}
		if f.UserID != "" && v.UserID != f.UserID {
			continue
		}
		result = append(result, m.load(v))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockVolunteerRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.db.volunteers[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.db.volunteers, id)
	return nil
}
