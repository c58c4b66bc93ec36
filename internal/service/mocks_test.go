package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/forgo/clubhub/api/internal/database"
	"github.com/forgo/clubhub/api/internal/model"
)

// ============================================================================
// In-memory repositories
// ============================================================================

type mockUserRepo struct {
	mu        sync.Mutex
	users     map[string]*model.User
	seq       int
	getErr    error
	createErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	user.ID = fmt.Sprintf("user:u%d", m.seq)
	if user.JoinedClubs == nil {
		user.JoinedClubs = []string{}
	}
	user.CreatedOn = time.Now()
	user.UpdatedOn = user.CreatedOn
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.users[id], nil
}

func (m *mockUserRepo) GetStudent(ctx context.Context, name, rollNumber string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Role == model.RoleStudent && u.Name == name && u.RollNumber != nil && *u.RollNumber == rollNumber {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetCouncilMember(ctx context.Context, name, clubName string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Role.IsCouncil() && u.Name == name && u.ClubName != nil && *u.ClubName == clubName {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, userID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.Hash = hash
		u.IsPasswordChanged = true
	}
	return nil
}

// mockClubRepo mirrors the conditional transitions of the Membership Store
// and keeps the users' joined_clubs in step.
type mockClubRepo struct {
	mu    sync.Mutex
	clubs map[string]*model.Club
	users *mockUserRepo
	seq   int
}

func newMockClubRepo(users *mockUserRepo) *mockClubRepo {
	return &mockClubRepo{clubs: make(map[string]*model.Club), users: users}
}

func (m *mockClubRepo) Create(ctx context.Context, club *model.Club) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clubs {
		if c.Name == club.Name {
			return fmt.Errorf("%w: club name already exists", database.ErrDuplicate)
		}
	}
	m.seq++
	club.ID = fmt.Sprintf("club:c%d", m.seq)
	club.IsActive = true
	if club.Members == nil {
		club.Members = []string{}
	}
	if club.PendingRequests == nil {
		club.PendingRequests = []model.PendingRequest{}
	}
	m.clubs[club.ID] = club
	return nil
}

func (m *mockClubRepo) GetByID(ctx context.Context, id string) (*model.Club, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clubs[id], nil
}

func (m *mockClubRepo) GetByName(ctx context.Context, name string) (*model.Club, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clubs {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockClubRepo) GetByHead(ctx context.Context, headID string) (*model.Club, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clubs {
		if c.IsActive && c.HeadID == headID {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockClubRepo) ListActive(ctx context.Context) ([]*model.Club, error) {
	return m.filter(func(c *model.Club) bool { return c.IsActive }), nil
}

func (m *mockClubRepo) ListActiveByMember(ctx context.Context, userID string) ([]*model.Club, error) {
	return m.filter(func(c *model.Club) bool { return c.IsActive && c.IsMember(userID) }), nil
}

func (m *mockClubRepo) AddJoinRequest(ctx context.Context, clubID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clubs[clubID]
	if !ok || !c.IsActive || c.StateOf(userID) != model.MembershipNone {
		return false, nil
	}
	c.PendingRequests = append(c.PendingRequests, model.PendingRequest{UserID: userID, RequestedOn: time.Now()})
	return true, nil
}

func (m *mockClubRepo) ApproveRequest(ctx context.Context, clubID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clubs[clubID]
	if !ok || !c.HasPendingRequest(userID) {
		return false, nil
	}
	c.PendingRequests = withoutRequest(c.PendingRequests, userID)
	c.Members = append(c.Members, userID)
	if u, ok := m.users.users[userID]; ok {
		u.JoinedClubs = append(u.JoinedClubs, clubID)
	}
	return true, nil
}

func (m *mockClubRepo) RejectRequest(ctx context.Context, clubID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clubs[clubID]
	if !ok || !c.HasPendingRequest(userID) {
		return false, nil
	}
	c.PendingRequests = withoutRequest(c.PendingRequests, userID)
	return true, nil
}

func (m *mockClubRepo) RemoveMember(ctx context.Context, clubID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clubs[clubID]
	if !ok || !c.IsMember(userID) {
		return false, nil
	}
	c.Members = without(c.Members, userID)
	if u, ok := m.users.users[userID]; ok {
		u.JoinedClubs = without(u.JoinedClubs, clubID)
	}
	return true, nil
}

func (m *mockClubRepo) filter(keep func(*model.Club) bool) []*model.Club {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Club{}
	for _, c := range m.clubs {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type mockEventRepo struct {
	mu     sync.Mutex
	events map[string]*model.Event
	seq    int
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[string]*model.Event)}
}

func (m *mockEventRepo) Create(ctx context.Context, event *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	event.ID = fmt.Sprintf("event:e%d", m.seq)
	event.RegisteredUsers = []string{}
	event.CreatedOn = time.Now()
	event.UpdatedOn = event.CreatedOn
	m.events[event.ID] = event
	return nil
}

func (m *mockEventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	cp.RegisteredUsers = append([]string{}, e.RegisteredUsers...)
	return &cp, nil
}

func (m *mockEventRepo) List(ctx context.Context, clubID *string) ([]*model.Event, error) {
	return m.filter(func(e *model.Event) bool { return clubID == nil || e.ClubID == *clubID }), nil
}

func (m *mockEventRepo) ListByDate(ctx context.Context, date string) ([]*model.Event, error) {
	return m.filter(func(e *model.Event) bool { return e.Date == date }), nil
}

func (m *mockEventRepo) Update(ctx context.Context, id string, upd model.EventUpdate) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, nil
	}
	if upd.MaxCapacity != nil && len(e.RegisteredUsers) > *upd.MaxCapacity {
		return nil, nil
	}
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Description != nil {
		e.Description = *upd.Description
	}
	if upd.Date != nil {
		e.Date = *upd.Date
	}
	if upd.StartTime != nil {
		e.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		e.EndTime = *upd.EndTime
	}
	if upd.Venue != nil {
		e.Venue = *upd.Venue
	}
	if upd.MaxCapacity != nil {
		e.MaxCapacity = *upd.MaxCapacity
	}
	cp := *e
	return &cp, nil
}

func (m *mockEventRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, id)
	return nil
}

func (m *mockEventRepo) Register(ctx context.Context, eventID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok || e.IsRegistered(userID) || e.IsFull() {
		return false, nil
	}
	e.RegisteredUsers = append(e.RegisteredUsers, userID)
	return true, nil
}

func (m *mockEventRepo) Unregister(ctx context.Context, eventID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok || !e.IsRegistered(userID) {
		return false, nil
	}
	e.RegisteredUsers = without(e.RegisteredUsers, userID)
	return true, nil
}

func (m *mockEventRepo) filter(keep func(*model.Event) bool) []*model.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Event{}
	for _, e := range m.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

type mockMessageRepo struct {
	mu       sync.Mutex
	messages []*model.Message
	clock    time.Time
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{clock: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Strictly increasing creation times keep newest-first ordering stable
	m.clock = m.clock.Add(time.Minute)
	msg.ID = fmt.Sprintf("message:m%d", len(m.messages)+1)
	msg.ReadBy = []model.ReadReceipt{}
	msg.CreatedOn = m.clock
	msg.UpdatedOn = m.clock
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockMessageRepo) GetByID(ctx context.Context, id string) (*model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if msg.ID == id {
			return msg, nil
		}
	}
	return nil, nil
}

func (m *mockMessageRepo) List(ctx context.Context, vis model.MessageVisibility, filter model.MessageFilter, page model.PageRequest) ([]*model.Message, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := []*model.Message{}
	for i := len(m.messages) - 1; i >= 0; i-- {
		msg := m.messages[i]
		if !visibleTo(vis, msg) {
			continue
		}
		if filter.TargetType != nil && msg.TargetType != *filter.TargetType {
			continue
		}
		if filter.ClubID != nil && (msg.TargetID == nil || *msg.TargetID != *filter.ClubID) {
			continue
		}
		if filter.Urgent != nil && msg.IsUrgent != *filter.Urgent {
			continue
		}
		matched = append(matched, msg)
	}

	start := page.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + page.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched), nil
}

func (m *mockMessageRepo) MarkRead(ctx context.Context, messageID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if msg.ID == messageID {
			if !msg.IsReadBy(userID) {
				msg.ReadBy = append(msg.ReadBy, model.ReadReceipt{UserID: userID, ReadOn: time.Now()})
			}
			return true, nil
		}
	}
	return false, nil
}

func visibleTo(vis model.MessageVisibility, msg *model.Message) bool {
	if msg.TargetType == model.TargetCollegeWide || vis.AllClubs {
		return true
	}
	for _, id := range vis.ClubIDs {
		if msg.TargetID != nil && *msg.TargetID == id {
			return true
		}
	}
	return false
}

type mockAchievementRepo struct {
	mu      sync.Mutex
	records map[string]*model.Achievement
	seq     int
}

func newMockAchievementRepo() *mockAchievementRepo {
	return &mockAchievementRepo{records: make(map[string]*model.Achievement)}
}

func (m *mockAchievementRepo) Create(ctx context.Context, a *model.Achievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	a.ID = fmt.Sprintf("achievement:a%d", m.seq)
	a.CreatedOn = time.Now()
	a.UpdatedOn = a.CreatedOn
	m.records[a.ID] = a
	return nil
}

func (m *mockAchievementRepo) GetByID(ctx context.Context, id string) (*model.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[id], nil
}

func (m *mockAchievementRepo) ListPublic(ctx context.Context, category *model.Category, limit int) ([]*model.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Achievement{}
	for _, a := range m.records {
		if a.IsPublic && (category == nil || a.Category == *category) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockAchievementRepo) Update(ctx context.Context, id string, upd model.AchievementUpdate) (*model.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	if upd.Title != nil {
		a.Title = *upd.Title
	}
	if upd.Category != nil {
		a.Category = *upd.Category
	}
	if upd.Achiever != nil {
		a.Achiever = *upd.Achiever
	}
	if upd.Date != nil {
		a.Date = *upd.Date
	}
	if upd.IsPublic != nil {
		a.IsPublic = *upd.IsPublic
	}
	return a, nil
}

func (m *mockAchievementRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func withoutRequest(reqs []model.PendingRequest, userID string) []model.PendingRequest {
	out := make([]model.PendingRequest, 0, len(reqs))
	for _, r := range reqs {
		if r.UserID != userID {
			out = append(out, r)
		}
	}
	return out
}
