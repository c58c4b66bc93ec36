package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/forgo/clubhub/api/internal/model"
)

func eventRequest(clubID, date, start string, capacity int) CreateEventRequest {
	return CreateEventRequest{
		Title:       "Hack Night",
		Description: "Build something",
		Date:        date,
		StartTime:   start,
		EndTime:     "22:00",
		Venue:       "Lab 3",
		ClubID:      clubID,
		MaxCapacity: capacity,
	}
}

func TestEventService_Create_OwnClubOnly(t *testing.T) {
	c := newTestCampus(t)
	ctx := context.Background()
	sail, sailHead := c.club(t, "SAIL")
	vaan, _ := c.club(t, "VAAN")

	if _, err := c.eventSvc.Create(ctx, callerOf(sailHead), eventRequest(vaan.ID, "2025-03-10", "10:00", 0)); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	later, err := c.eventSvc.Create(ctx, callerOf(sailHead), eventRequest(sail.ID, "2025-03-12", "10:00", 0))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	earlier, err := c.eventSvc.Create(ctx, callerOf(sailHead), eventRequest(sail.ID, "2025-03-10", "18:00", 0))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if later.MaxCapacity != model.DefaultEventCapacity {
		t.Errorf("expected default capacity, got %d", later.MaxCapacity)
	}

	events, err := c.eventSvc.List(ctx, &sail.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(events) != 2 || events[0].ID != earlier.ID || events[1].ID != later.ID {
		t.Errorf("expected events sorted by date, got %+v", events)
	}

	vaanEvents, _ := c.eventSvc.List(ctx, &vaan.ID)
	if len(vaanEvents) != 0 {
		t.Errorf("expected no VAAN events, got %d", len(vaanEvents))
	}
}

func TestEventService_Create_Validation(t *testing.T) {
	c := newTestCampus(t)
	ctx := context.Background()
	sail, sailHead := c.club(t, "SAIL")
	pr := c.council(t, "PR Council Member", "PR COUNCIL", model.RolePRCouncil)

	tests := []struct {
		name  string
		req   CreateEventRequest
		field string
	}{
		{"bad date", eventRequest(sail.ID, "10/03/2025", "10:00", 0), "date"},
		{"bad start", eventRequest(sail.ID, "2025-03-10", "10am", 0), "start_time"},
		{"end before start", eventRequest(sail.ID, "2025-03-10", "23:00", 0), "end_time"},
		{"negative capacity", eventRequest(sail.ID, "2025-03-10", "10:00", -1), "max_capacity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.eventSvc.Create(ctx, callerOf(sailHead), tt.req)
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Fields[0].Field != tt.field {
				t.Errorf("expected validation error on %s, got %v", tt.field, err)
			}
		})
	}

	if _, err := c.eventSvc.Create(ctx, callerOf(pr), eventRequest("club:missing", "2025-03-10", "10:00", 0)); !errors.Is(err, ErrClubNotFound) {
		t.Errorf("expected ErrClubNotFound, got %v", err)
	}
	if _, err := c.eventSvc.Create(ctx, callerOf(pr), eventRequest(sail.ID, "2025-03-10", "10:00", 0)); err != nil {
		t.Errorf("PR council should create for any club, got %v", err)
	}
}

func TestEventService_Register_Capacity(t *testing.T) {
	c := newTestCampus(t)
	ctx := context.Background()
	sail, sailHead := c.club(t, "SAIL")
	john := c.student(t, "John Doe", "21A91A0501")
	jane := c.student(t, "Jane Smith", "21A91A0502")

	event, err := c.eventSvc.Create(ctx, callerOf(sailHead), eventRequest(sail.ID, "2025-03-10", "10:00", 1))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	count, err := c.eventSvc.Register(ctx, callerOf(john), event.ID)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	if _, err := c.eventSvc.Register(ctx, callerOf(jane), event.ID); !errors.Is(err, ErrEventFull) {
		t.Errorf("expected ErrEventFull, got %v", err)
	}
	if _, err := c.eventSvc.Register(ctx, callerOf(john), event.ID); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("expected ErrAlreadyRegistered, got %v", err)
	}

	count, err = c.eventSvc.Unregister(ctx, callerOf(john), event.ID)
	if err != nil || count != 0 {
		t.Fatalf("Unregister: expected count 0, got %d (%v)", count, err)
	}
	if _, err := c.eventSvc.Unregister(ctx, callerOf(john), event.ID); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("expected ErrNotRegistered, got %v", err)
	}

	if _, err := c.eventSvc.Register(ctx, callerOf(jane), event.ID); err != nil {
		t.Errorf("freed seat should be available, got %v", err)
	}
}

func TestEventService_Register_ConcurrentNeverOverfills(t *testing.T) {
	c := newTestCampus(t)
	ctx := context.Background()
	sail, sailHead := c.club(t, "SAIL")
	event, err := c.eventSvc.Create(ctx, callerOf(sailHead), eventRequest(sail.ID, "2025-03-10", "10:00", 3))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	const students = 10
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		full int
	)
	for i := 0; i < students; i++ {
		u := &model.User{ID: "user:s" + string(rune('a'+i)), Role: model.RoleStudent}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.eventSvc.Register(ctx, callerOf(u), event.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrEventFull):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 3 || full != students-3 {
		t.Errorf("expected 3 registrations and %d full, got %d and %d", students-3, ok, full)
	}
	stored, _ := c.eventSvc.Get(ctx, event.ID)
	if stored.RegisteredCount() != 3 {
		t.Errorf("expected 3 registrants, got %d", stored.RegisteredCount())
	}
}

func TestEventService_Register_StudentsOnly(t *testing.T) {
	c := newTestCampus(t)
	ctx := context.Background()
	sail, sailHead := c.club(t, "SAIL")
	event, err := c.eventSvc.Create(ctx, callerOf(sailHead), eventRequest(sail.ID, "2025-03-10", "10:00", 0))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := c.eventSvc.Register(ctx, callerOf(sailHead), event.ID); !errors.Is(err, ErrInsufficientPermissions) {
		t.Errorf("expected ErrInsufficientPermissions, got %v", err)
	}

	john := c.student(t, "John Doe", "21A91A0501")
	if _, err := c.eventSvc.Register(ctx, callerOf(john), "event:missing"); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
}

func TestEventService_Update(t *testing.T) {
	c := newTestCampus(t)
	ctx := context.Background()
	sail, sailHead := c.club(t, "SAIL")
	_, vaanHead := c.club(t, "VAAN")
	john := c.student(t, "John Doe", "21A91A0501")
	jane := c.student(t, "Jane Smith", "21A91A0502")

	event, err := c.eventSvc.Create(ctx, callerOf(sailHead), eventRequest(sail.ID, "2025-03-10", "10:00", 5))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for _, u := range []*model.User{john, jane} {
		if _, err := c.eventSvc.Register(ctx, callerOf(u), event.ID); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	title := "Hack Night II"
	if _, err := c.eventSvc.Update(ctx, callerOf(vaanHead), event.ID, model.EventUpdate{Title: &title}); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("foreign head: expected ErrAccessDenied, got %v", err)
	}

	one := 1
	if _, err := c.eventSvc.Update(ctx, callerOf(sailHead), event.ID, model.EventUpdate{MaxCapacity: &one}); !errors.Is(err, ErrCapacityBelowCount) {
		t.Errorf("expected ErrCapacityBelowCount, got %v", err)
	}

	two := 2
	updated, err := c.eventSvc.Update(ctx, callerOf(sailHead), event.ID, model.EventUpdate{Title: &title, MaxCapacity: &two})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != title || updated.MaxCapacity != 2 {
		t.Errorf("update not applied: %+v", updated)
	}

	early := "7:30"
	updated, err = c.eventSvc.Update(ctx, callerOf(sailHead), event.ID, model.EventUpdate{StartTime: &early})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.StartTime != "07:30" {
		t.Errorf("expected start_time stored as 07:30, got %q", updated.StartTime)
	}

	if err := c.eventSvc.Delete(ctx, callerOf(vaanHead), event.ID); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("foreign head delete: expected ErrAccessDenied, got %v", err)
	}
	if err := c.eventSvc.Delete(ctx, callerOf(sailHead), event.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.eventSvc.Get(ctx, event.ID); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
}

func TestEventService_ListByDate(t *testing.T) {
	c := newTestCampus(t)
	ctx := context.Background()
	sail, sailHead := c.club(t, "SAIL")
	if _, err := c.eventSvc.Create(ctx, callerOf(sailHead), eventRequest(sail.ID, "2025-03-10", "10:00", 0)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	events, err := c.eventSvc.ListByDate(ctx, "2025-03-10")
	if err != nil || len(events) != 1 {
		t.Errorf("expected 1 event, got %d (%v)", len(events), err)
	}
	if _, err := c.eventSvc.ListByDate(ctx, "March 10"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestEventService_ListByDate_SingleDigitHours(t *testing.T) {
	c := newTestCampus(t)
	ctx := context.Background()
	sail, sailHead := c.club(t, "SAIL")
	for _, start := range []string{"10:00", "9:00"} {
		if _, err := c.eventSvc.Create(ctx, callerOf(sailHead), eventRequest(sail.ID, "2025-03-10", start, 0)); err != nil {
			t.Fatalf("Create %s failed: %v", start, err)
		}
	}

	events, err := c.eventSvc.ListByDate(ctx, "2025-03-10")
	if err != nil {
		t.Fatalf("ListByDate failed: %v", err)
	}
	if len(events) != 2 || events[0].StartTime != "09:00" || events[1].StartTime != "10:00" {
		t.Errorf("expected 09:00 then 10:00, got %+v", events)
	}
}

func TestEventService_Calendar(t *testing.T) {
	c := newTestCampus(t)
	ctx := context.Background()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	c.eventSvc = NewEventService(EventServiceConfig{Events: c.events, Clubs: c.clubs, Users: c.users, Location: loc})

	sail, sailHead := c.club(t, "SAIL")
	if _, err := c.eventSvc.Create(ctx, callerOf(sailHead), eventRequest(sail.ID, "2025-03-10", "10:00", 0)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	feed, err := c.eventSvc.Calendar(ctx, nil)
	if err != nil {
		t.Fatalf("Calendar failed: %v", err)
	}
	text := string(feed)
	for _, want := range []string{"BEGIN:VCALENDAR", "BEGIN:VEVENT", "SUMMARY:Hack Night", "LOCATION:Lab 3", "DTSTART:20250310T043000Z"} {
		if !strings.Contains(text, want) {
			t.Errorf("calendar missing %q:\n%s", want, text)
		}
	}
}

func TestEventService_Pass(t *testing.T) {
	c := newTestCampus(t)
	ctx := context.Background()
	sail, sailHead := c.club(t, "SAIL")
	john := c.student(t, "John Doe", "21A91A0501")
	event, err := c.eventSvc.Create(ctx, callerOf(sailHead), eventRequest(sail.ID, "2025-03-10", "10:00", 0))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := c.eventSvc.Pass(ctx, callerOf(john), event.ID); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("expected ErrNotRegistered, got %v", err)
	}

	if _, err := c.eventSvc.Register(ctx, callerOf(john), event.ID); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	png, err := c.eventSvc.Pass(ctx, callerOf(john), event.ID)
	if err != nil {
		t.Fatalf("Pass failed: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("expected a PNG image")
	}
	if got := PassPayload(event.ID, john.ID); got != "clubhub:event:"+event.ID+":user:"+john.ID {
		t.Errorf("unexpected payload %q", got)
	}
}

func TestEventService_ExportRegistrations(t *testing.T) {
	c := newTestCampus(t)
	ctx := context.Background()
	sail, sailHead := c.club(t, "SAIL")
	john := c.student(t, "John Doe", "21A91A0501")
	event, err := c.eventSvc.Create(ctx, callerOf(sailHead), eventRequest(sail.ID, "2025-03-10", "10:00", 0))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := c.eventSvc.Register(ctx, callerOf(john), event.ID); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := c.eventSvc.ExportRegistrations(ctx, callerOf(john), event.ID); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("student export: expected ErrAccessDenied, got %v", err)
	}

	data, err := c.eventSvc.ExportRegistrations(ctx, callerOf(sailHead), event.ID)
	if err != nil {
		t.Fatalf("ExportRegistrations failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook did not open: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Registrations")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and one row, got %d rows", len(rows))
	}
	if rows[1][0] != "John Doe" || rows[1][1] != "21A91A0501" {
		t.Errorf("unexpected row %v", rows[1])
	}
}
