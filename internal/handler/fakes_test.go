package handler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/forgo/clubhub/api/internal/access"
	"github.com/forgo/clubhub/api/internal/database"
	"github.com/forgo/clubhub/api/internal/model"
)

// ============================================================================
// In-memory stores backing the real services
// ============================================================================

// memStore keeps every collection behind one lock so the coupled club and
// user updates stay consistent.
type memStore struct {
	mu           sync.Mutex
	seq          int
	users        map[string]*model.User
	clubs        map[string]*model.Club
	events       map[string]*model.Event
	messages     []*model.Message
	achievements map[string]*model.Achievement
	pingErr      error
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[string]*model.User),
		clubs:        make(map[string]*model.Club),
		events:       make(map[string]*model.Event),
		achievements: make(map[string]*model.Achievement),
	}
}

func (s *memStore) nextID(table string) string {
	s.seq++
	return fmt.Sprintf("%s:r%d", table, s.seq)
}

func (s *memStore) Ping(ctx context.Context) error { return s.pingErr }

func remove(ids []string, id string) ([]string, bool) {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...), true
		}
	}
	return ids, false
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// ----- users -----

type memUsers struct{ *memStore }

func (s memUsers) Create(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.nextID(tableUser)
	if user.JoinedClubs == nil {
		user.JoinedClubs = []string{}
	}
	user.CreatedOn = time.Now()
	user.UpdatedOn = user.CreatedOn
	s.users[user.ID] = user
	return nil
}

func (s memUsers) GetByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id], nil
}

func (s memUsers) GetStudent(ctx context.Context, name, rollNumber string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Role == model.RoleStudent && u.Name == name && u.RollNumber != nil && *u.RollNumber == rollNumber {
			return u, nil
		}
	}
	return nil, nil
}

func (s memUsers) GetCouncilMember(ctx context.Context, name, clubName string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Role.IsCouncil() && u.Name == name && u.ClubName != nil && *u.ClubName == clubName {
			return u, nil
		}
	}
	return nil, nil
}

func (s memUsers) GetByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s memUsers) UpdatePassword(ctx context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return database.ErrNotFound
	}
	u.Hash = hash
	u.IsPasswordChanged = true
	return nil
}

// ----- clubs -----

type memClubs struct{ *memStore }

func (s memClubs) Create(ctx context.Context, club *model.Club) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clubs {
		if c.Name == club.Name {
			return database.ErrDuplicate
		}
	}
	club.ID = s.nextID(tableClub)
	club.Members = []string{}
	club.PendingRequests = []model.PendingRequest{}
	club.IsActive = true
	club.CreatedOn = time.Now()
	club.UpdatedOn = club.CreatedOn
	s.clubs[club.ID] = club
	return nil
}

func (s memClubs) GetByID(ctx context.Context, id string) (*model.Club, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clubs[id], nil
}

func (s memClubs) GetByName(ctx context.Context, name string) (*model.Club, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clubs {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, nil
}

func (s memClubs) GetByHead(ctx context.Context, headID string) (*model.Club, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clubs {
		if c.HeadID == headID && c.IsActive {
			return c, nil
		}
	}
	return nil, nil
}

func (s memClubs) list(keep func(*model.Club) bool) []*model.Club {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Club{}
	for _, c := range s.clubs {
		if c.IsActive && keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s memClubs) ListActive(ctx context.Context) ([]*model.Club, error) {
	return s.list(func(*model.Club) bool { return true }), nil
}

func (s memClubs) ListActiveByMember(ctx context.Context, userID string) ([]*model.Club, error) {
	return s.list(func(c *model.Club) bool { return c.IsMember(userID) }), nil
}

func (s memClubs) AddJoinRequest(ctx context.Context, clubID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clubs[clubID]
	if !ok || !c.IsActive || c.StateOf(userID) != model.MembershipNone {
		return false, nil
	}
	c.PendingRequests = append(c.PendingRequests, model.PendingRequest{UserID: userID, RequestedOn: time.Now()})
	return true, nil
}

func (s memClubs) dropRequest(c *model.Club, userID string) bool {
	for i, p := range c.PendingRequests {
		if p.UserID == userID {
			c.PendingRequests = append(c.PendingRequests[:i:i], c.PendingRequests[i+1:]...)
			return true
		}
	}
	return false
}

func (s memClubs) ApproveRequest(ctx context.Context, clubID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clubs[clubID]
	if !ok || !s.dropRequest(c, userID) {
		return false, nil
	}
	c.Members = append(c.Members, userID)
	if u, ok := s.users[userID]; ok {
		u.JoinedClubs = append(u.JoinedClubs, clubID)
	}
	return true, nil
}

func (s memClubs) RejectRequest(ctx context.Context, clubID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clubs[clubID]
	return ok && s.dropRequest(c, userID), nil
}

func (s memClubs) RemoveMember(ctx context.Context, clubID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clubs[clubID]
	if !ok {
		return false, nil
	}
	var removed bool
	if c.Members, removed = remove(c.Members, userID); !removed {
		return false, nil
	}
	if u, ok := s.users[userID]; ok {
		u.JoinedClubs, _ = remove(u.JoinedClubs, clubID)
	}
	return true, nil
}

// ----- events -----

type memEvents struct{ *memStore }

func copyEvent(e *model.Event) *model.Event {
	cp := *e
	cp.RegisteredUsers = append([]string{}, e.RegisteredUsers...)
	return &cp
}

func (s memEvents) Create(ctx context.Context, event *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.ID = s.nextID(tableEvent)
	event.RegisteredUsers = []string{}
	event.CreatedOn = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	event.UpdatedOn = event.CreatedOn
	s.events[event.ID] = copyEvent(event)
	return nil
}

func (s memEvents) GetByID(ctx context.Context, id string) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.events[id]; ok {
		return copyEvent(e), nil
	}
	return nil, nil
}

func (s memEvents) list(keep func(*model.Event) bool) []*model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Event{}
	for _, e := range s.events {
		if keep(e) {
			out = append(out, copyEvent(e))
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

func (s memEvents) List(ctx context.Context, clubID *string) ([]*model.Event, error) {
	return s.list(func(e *model.Event) bool { return clubID == nil || e.ClubID == *clubID }), nil
}

func (s memEvents) ListByDate(ctx context.Context, date string) ([]*model.Event, error) {
	return s.list(func(e *model.Event) bool { return e.Date == date }), nil
}

func (s memEvents) Update(ctx context.Context, id string, upd model.EventUpdate) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok || (upd.MaxCapacity != nil && *upd.MaxCapacity < len(e.RegisteredUsers)) {
		return nil, nil
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&e.Title, upd.Title)
	set(&e.Description, upd.Description)
	set(&e.Date, upd.Date)
	set(&e.StartTime, upd.StartTime)
	set(&e.EndTime, upd.EndTime)
	set(&e.Venue, upd.Venue)
	if upd.MaxCapacity != nil {
		e.MaxCapacity = *upd.MaxCapacity
	}
	return copyEvent(e), nil
}

func (s memEvents) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, id)
	return nil
}

func (s memEvents) Register(ctx context.Context, eventID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok || e.IsRegistered(userID) || e.IsFull() {
		return false, nil
	}
	e.RegisteredUsers = append(e.RegisteredUsers, userID)
	return true, nil
}

func (s memEvents) Unregister(ctx context.Context, eventID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok {
		return false, nil
	}
	var removed bool
	e.RegisteredUsers, removed = remove(e.RegisteredUsers, userID)
	return removed, nil
}

// ----- messages -----

type memMessages struct{ *memStore }

func (s memMessages) Create(ctx context.Context, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = s.nextID(tableMessage)
	msg.ReadBy = []model.ReadReceipt{}
	msg.CreatedOn = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(s.seq) * time.Minute)
	msg.UpdatedOn = msg.CreatedOn
	s.messages = append(s.messages, msg)
	return nil
}

func (s memMessages) GetByID(ctx context.Context, id string) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (s memMessages) List(ctx context.Context, vis model.MessageVisibility, filter model.MessageFilter, page model.PageRequest) ([]*model.Message, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := []*model.Message{}
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		switch {
		case !access.CanSeeMessage(vis, m),
			filter.TargetType != nil && m.TargetType != *filter.TargetType,
			filter.ClubID != nil && (m.TargetID == nil || *m.TargetID != *filter.ClubID),
			filter.Urgent != nil && m.IsUrgent != *filter.Urgent:
			continue
		}
		matched = append(matched, m)
	}
	start := min(page.Offset(), len(matched))
	end := min(start+page.Limit, len(matched))
	return matched[start:end], len(matched), nil
}

func (s memMessages) MarkRead(ctx context.Context, messageID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == messageID {
			if !m.IsReadBy(userID) {
				m.ReadBy = append(m.ReadBy, model.ReadReceipt{UserID: userID, ReadOn: time.Now()})
			}
			return true, nil
		}
	}
	return false, nil
}

// ----- achievements -----

type memAchievements struct{ *memStore }

func (s memAchievements) Create(ctx context.Context, a *model.Achievement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextID(tableAchievement)
	s.achievements[a.ID] = a
	return nil
}

func (s memAchievements) GetByID(ctx context.Context, id string) (*model.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.achievements[id], nil
}

func (s memAchievements) ListPublic(ctx context.Context, category *model.Category, limit int) ([]*model.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Achievement{}
	for _, a := range s.achievements {
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

func (s memAchievements) Update(ctx context.Context, id string, upd model.AchievementUpdate) (*model.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.achievements[id]
	if !ok {
		return nil, nil
	}
	if upd.Title != nil {
		a.Title = *upd.Title
	}
	if upd.Description != nil {
		a.Description = *upd.Description
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

func (s memAchievements) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.achievements, id)
	return nil
}
