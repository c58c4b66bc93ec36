package model

import (
	"fmt"
	"time"
)

// Event scheduling formats
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"

	DefaultEventCapacity = 100
	MaxEventCapacity     = 10000
)

// Event is a scheduled club event with a bounded registrant set.
// len(RegisteredUsers) never exceeds MaxCapacity.
type Event struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Date            string    `json:"date"`       // YYYY-MM-DD
	StartTime       string    `json:"start_time"` // HH:MM
	EndTime         string    `json:"end_time"`   // HH:MM
	Venue           string    `json:"venue"`
	ClubID          string    `json:"club_id"`
	CreatedBy       string    `json:"created_by"`
	MaxCapacity     int       `json:"max_capacity"`
	RegisteredUsers []string  `json:"registered_users"`
	CreatedOn       time.Time `json:"created_on"`
	UpdatedOn       time.Time `json:"updated_on"`
}

// IsRegistered returns true if userID holds a registration
func (e *Event) IsRegistered(userID string) bool {
	for _, id := range e.RegisteredUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// RegisteredCount returns the number of registrations
func (e *Event) RegisteredCount() int {
	return len(e.RegisteredUsers)
}

// IsFull returns true when no seat is left
func (e *Event) IsFull() bool {
	return len(e.RegisteredUsers) >= e.MaxCapacity
}

// StartsAt combines Date and StartTime in loc
func (e *Event) StartsAt(loc *time.Location) (time.Time, error) {
	return combineDateClock(e.Date, e.StartTime, loc)
}

// EndsAt combines Date and EndTime in loc
func (e *Event) EndsAt(loc *time.Location) (time.Time, error) {
	return combineDateClock(e.Date, e.EndTime, loc)
}

func combineDateClock(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid event schedule %q %q: %w", date, clock, err)
	}
	return t, nil
}

// EventUpdate carries the fields of a partial event update; nil means unchanged
type EventUpdate struct {
	Title       *string
	Description *string
	Date        *string
	StartTime   *string
	EndTime     *string
	Venue       *string
	MaxCapacity *int
}

// IsEmpty returns true if no field is set
func (u EventUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Date == nil &&
		u.StartTime == nil && u.EndTime == nil && u.Venue == nil && u.MaxCapacity == nil
}
