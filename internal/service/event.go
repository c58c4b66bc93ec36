package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/skip2/go-qrcode"
	"github.com/xuri/excelize/v2"

	"github.com/forgo/clubhub/api/internal/access"
	"github.com/forgo/clubhub/api/internal/model"
)

// EventRepository defines the interface for the Event Store
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context, clubID *string) ([]*model.Event, error)
	ListByDate(ctx context.Context, date string) ([]*model.Event, error)
	Update(ctx context.Context, id string, upd model.EventUpdate) (*model.Event, error)
	Delete(ctx context.Context, id string) error
	Register(ctx context.Context, eventID, userID string) (bool, error)
	Unregister(ctx context.Context, eventID, userID string) (bool, error)
}

// EventService schedules club events and manages registrations
type EventService struct {
	events EventRepository
	clubs  ClubRepository
	users  UserRepository
	loc    *time.Location
}

// EventServiceConfig holds configuration for the event service
type EventServiceConfig struct {
	Events   EventRepository
	Clubs    ClubRepository
	Users    UserRepository
	Location *time.Location // event wall-clock zone, UTC when nil
}

// NewEventService creates a new event service
func NewEventService(cfg EventServiceConfig) *EventService {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &EventService{
		events: cfg.Events,
		clubs:  cfg.Clubs,
		users:  cfg.Users,
		loc:    loc,
	}
}

// CreateEventRequest represents a request to schedule an event
type CreateEventRequest struct {
	Title       string
	Description string
	Date        string
	StartTime   string
	EndTime     string
	Venue       string
	ClubID      string
	MaxCapacity int // 0 means DefaultEventCapacity
}

// List returns events ordered by date and start time, optionally for one club
func (s *EventService) List(ctx context.Context, clubID *string) ([]*model.Event, error) {
	return s.events.List(ctx, clubID)
}

// ListByDate returns the events on date (YYYY-MM-DD)
func (s *EventService) ListByDate(ctx context.Context, date string) ([]*model.Event, error) {
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}
	return s.events.ListByDate(ctx, date)
}

// Get returns an event by ID
func (s *EventService) Get(ctx context.Context, eventID string) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// Create schedules an event for a club the caller manages
func (s *EventService) Create(ctx context.Context, caller access.Caller, req CreateEventRequest) (*model.Event, error) {
	if req.MaxCapacity == 0 {
		req.MaxCapacity = model.DefaultEventCapacity
	}
	sched, err := validateSchedule(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if err := validateCapacity(req.MaxCapacity); err != nil {
		return nil, err
	}

	club, err := s.clubs.GetByID(ctx, req.ClubID)
	if err != nil {
		return nil, err
	}
	if club == nil || !club.IsActive {
		return nil, ErrClubNotFound
	}
	if !access.CanManageClub(caller, club) {
		return nil, ErrAccessDenied
	}

	event := &model.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Date:        sched.Date,
		StartTime:   sched.Start,
		EndTime:     sched.End,
		Venue:       strings.TrimSpace(req.Venue),
		ClubID:      club.ID,
		CreatedBy:   caller.UserID,
		MaxCapacity: req.MaxCapacity,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// Update applies a partial update to an event the caller manages
func (s *EventService) Update(ctx context.Context, caller access.Caller, eventID string, upd model.EventUpdate) (*model.Event, error) {
	event, err := s.manageable(ctx, caller, eventID)
	if err != nil {
		return nil, err
	}
	if upd.IsEmpty() {
		return event, nil
	}

	date, start, end := event.Date, event.StartTime, event.EndTime
	if upd.Date != nil {
		date = *upd.Date
	}
	if upd.StartTime != nil {
		start = *upd.StartTime
	}
	if upd.EndTime != nil {
		end = *upd.EndTime
	}
	sched, err := validateSchedule(date, start, end)
	if err != nil {
		return nil, err
	}
	if upd.Date != nil {
		upd.Date = &sched.Date
	}
	if upd.StartTime != nil {
		upd.StartTime = &sched.Start
	}
	if upd.EndTime != nil {
		upd.EndTime = &sched.End
	}
	if upd.MaxCapacity != nil {
		if err := validateCapacity(*upd.MaxCapacity); err != nil {
			return nil, err
		}
		if *upd.MaxCapacity < event.RegisteredCount() {
			return nil, ErrCapacityBelowCount
		}
	}

	updated, err := s.events.Update(ctx, eventID, upd)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if updated != nil {
		return updated, nil
	}

	// Nothing matched: either the event is gone or registrations outgrew
	// the new capacity since it was read
	current, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrEventNotFound
	}
	return nil, ErrCapacityBelowCount
}

// Delete removes an event the caller manages
func (s *EventService) Delete(ctx context.Context, caller access.Caller, eventID string) error {
	if _, err := s.manageable(ctx, caller, eventID); err != nil {
		return err
	}
	return s.events.Delete(ctx, eventID)
}

// Register takes a seat for the calling student and returns the new
// registrant count.
func (s *EventService) Register(ctx context.Context, caller access.Caller, eventID string) (int, error) {
	if caller.Role != model.RoleStudent {
		return 0, ErrInsufficientPermissions
	}

	added, err := s.events.Register(ctx, eventID, caller.UserID)
	if err != nil {
		return 0, err
	}

	event, err := s.Get(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if added {
		return event.RegisteredCount(), nil
	}
	if event.IsRegistered(caller.UserID) {
		return 0, ErrAlreadyRegistered
	}
	// A seat freed between the conditional write and this read still
	// counts as full: the write is not retried.
	return 0, ErrEventFull
}

// Unregister releases the calling student's seat and returns the new
// registrant count.
func (s *EventService) Unregister(ctx context.Context, caller access.Caller, eventID string) (int, error) {
	if caller.Role != model.RoleStudent {
		return 0, ErrInsufficientPermissions
	}

	removed, err := s.events.Unregister(ctx, eventID, caller.UserID)
	if err != nil {
		return 0, err
	}

	event, err := s.Get(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if !removed {
		return 0, ErrNotRegistered
	}
	return event.RegisteredCount(), nil
}

// Registrants returns the registered users of an event the caller manages
func (s *EventService) Registrants(ctx context.Context, caller access.Caller, eventID string) (*model.Event, []model.UserSummary, error) {
	event, err := s.manageable(ctx, caller, eventID)
	if err != nil {
		return nil, nil, err
	}

	users, err := s.users.GetByIDs(ctx, event.RegisteredUsers)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]model.UserSummary, len(users))
	for _, u := range users {
		byID[u.ID] = u.Summary()
	}
	return event, pick(byID, event.RegisteredUsers), nil
}

// Calendar renders events as an iCalendar feed, optionally for one club
func (s *EventService) Calendar(ctx context.Context, clubID *string) ([]byte, error) {
	events, err := s.events.List(ctx, clubID)
	if err != nil {
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//ClubHub//Campus Events//EN")
	cal.SetXWRCalName("ClubHub Events")
	cal.SetXWRTimezone(s.loc.String())

	for _, e := range events {
		start, err := e.StartsAt(s.loc)
		if err != nil {
			return nil, err
		}
		end, err := e.EndsAt(s.loc)
		if err != nil {
			return nil, err
		}

		ev := cal.AddEvent(e.ID + "@clubhub")
		ev.SetDtStampTime(e.UpdatedOn)
		ev.SetCreatedTime(e.CreatedOn)
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		ev.SetSummary(e.Title)
		ev.SetLocation(e.Venue)
		ev.SetDescription(e.Description)
	}

	return []byte(cal.Serialize()), nil
}

// Pass renders the calling student's QR entry pass as a PNG
func (s *EventService) Pass(ctx context.Context, caller access.Caller, eventID string) ([]byte, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsRegistered(caller.UserID) {
		return nil, ErrNotRegistered
	}

	png, err := qrcode.Encode(PassPayload(event.ID, caller.UserID), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode pass: %w", err)
	}
	return png, nil
}

// PassPayload is the content encoded in an entry pass
func PassPayload(eventID, userID string) string {
	return fmt.Sprintf("clubhub:event:%s:user:%s", eventID, userID)
}

// ExportRegistrations renders the registrants of an event the caller
// manages as an xlsx workbook.
func (s *EventService) ExportRegistrations(ctx context.Context, caller access.Caller, eventID string) ([]byte, error) {
	event, registrants, err := s.Registrants(ctx, caller, eventID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheetName := "Registrations"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{"Name", "Roll Number", "Role"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, err
		}
	}

	for row, r := range registrants {
		values := []interface{}{r.Name, stringValue(r.RollNumber), string(r.Role)}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	_ = f.SetDocProps(&excelize.DocProperties{Title: event.Title, Creator: "ClubHub"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// manageable loads an event and its club, then checks the caller may manage it
func (s *EventService) manageable(ctx context.Context, caller access.Caller, eventID string) (*model.Event, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	club, err := s.clubs.GetByID(ctx, event.ClubID)
	if err != nil {
		return nil, err
	}
	if club == nil || !access.CanManageEvent(caller, event, club) {
		return nil, ErrAccessDenied
	}
	return event, nil
}

// schedule is an event's date and clock times in canonical form. Stored
// times are zero-padded so the store's string ordering is chronological.
type schedule struct {
	Date, Start, End string
}

func validateSchedule(date, start, end string) (schedule, error) {
	day, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return schedule{}, NewValidationError("date", "must be YYYY-MM-DD")
	}
	from, err := time.Parse(model.ClockLayout, start)
	if err != nil {
		return schedule{}, NewValidationError("start_time", "must be HH:MM")
	}
	to, err := time.Parse(model.ClockLayout, end)
	if err != nil {
		return schedule{}, NewValidationError("end_time", "must be HH:MM")
	}
	if !to.After(from) {
		return schedule{}, NewValidationError("end_time", "must be after start_time")
	}
	return schedule{
		Date:  day.Format(model.DateLayout),
		Start: from.Format(model.ClockLayout),
		End:   to.Format(model.ClockLayout),
	}, nil
}

func validateCapacity(capacity int) error {
	if capacity < 1 || capacity > model.MaxEventCapacity {
		return NewValidationError("max_capacity", fmt.Sprintf("must be between 1 and %d", model.MaxEventCapacity))
	}
	return nil
}
