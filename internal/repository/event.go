package repository

import (
	"context"
	"errors"

	"github.com/forgo/clubhub/api/internal/database"
	"github.com/forgo/clubhub/api/internal/model"
)

// EventRepository is the Event Store. Registration changes are single
// conditional updates: the capacity check and the write happen in the same
// statement, so two students can never both take the last seat.
type EventRepository struct {
	db database.Database
}

// NewEventRepository creates a new event repository
func NewEventRepository(db database.Database) *EventRepository {
	return &EventRepository{db: db}
}

// Create creates a new event with an empty registrant set
func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	query := `
		CREATE event CONTENT {
			title: $title,
			description: $description,
			date: $date,
			start_time: $start_time,
			end_time: $end_time,
			venue: $venue,
			club_id: $club_id,
			created_by: $created_by,
			max_capacity: $max_capacity,
			registered_users: [],
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"title":        event.Title,
		"description":  event.Description,
		"date":         event.Date,
		"start_time":   event.StartTime,
		"end_time":     event.EndTime,
		"venue":        event.Venue,
		"club_id":      event.ClubID,
		"created_by":   event.CreatedBy,
		"max_capacity": event.MaxCapacity,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	records := statementRecords(result, 0)
	if len(records) == 0 {
		return errors.New("no result returned")
	}
	created, err := parseEventRecord(records[0])
	if err != nil {
		return err
	}
	*event = *created
	return nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	result, err := r.db.QueryOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseEventRecord(result)
}

// List returns events ordered by date then start time, optionally limited to one club
func (r *EventRepository) List(ctx context.Context, clubID *string) ([]*model.Event, error) {
	query := `SELECT * FROM event ORDER BY date ASC, start_time ASC`
	vars := map[string]interface{}{}
	if clubID != nil {
		query = `SELECT * FROM event WHERE club_id = $club_id ORDER BY date ASC, start_time ASC`
		vars["club_id"] = *clubID
	}
	return r.list(ctx, query, vars)
}

// ListByDate returns the events on date (YYYY-MM-DD) ordered by start time
func (r *EventRepository) ListByDate(ctx context.Context, date string) ([]*model.Event, error) {
	query := `SELECT * FROM event WHERE date = $date ORDER BY start_time ASC`
	return r.list(ctx, query, map[string]interface{}{"date": date})
}

// Update applies a partial update. A capacity change only applies when the
// current registrant count still fits; nil is returned when nothing matched.
func (r *EventRepository) Update(ctx context.Context, id string, upd model.EventUpdate) (*model.Event, error) {
	query := `UPDATE type::record($id) SET updated_on = time::now()`
	vars := map[string]interface{}{"id": id}

	set := func(field string, value interface{}) {
		query += ", " + field + " = $" + field
		vars[field] = value
	}
	if upd.Title != nil {
		set("title", *upd.Title)
	}
	if upd.Description != nil {
		set("description", *upd.Description)
	}
	if upd.Date != nil {
		set("date", *upd.Date)
	}
	if upd.StartTime != nil {
		set("start_time", *upd.StartTime)
	}
	if upd.EndTime != nil {
		set("end_time", *upd.EndTime)
	}
	if upd.Venue != nil {
		set("venue", *upd.Venue)
	}
	if upd.MaxCapacity != nil {
		set("max_capacity", *upd.MaxCapacity)
		query += ` WHERE array::len(registered_users) <= $max_capacity`
	}
	query += ` RETURN AFTER`

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	records := statementRecords(result, 0)
	if len(records) == 0 {
		return nil, nil
	}
	return parseEventRecord(records[0])
}

// Delete deletes an event
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	return r.db.Execute(ctx, `DELETE type::record($id)`, map[string]interface{}{"id": id})
}

// Register adds userID to the registrant set iff it is absent and a seat is
// free. It reports whether the registration was recorded.
func (r *EventRepository) Register(ctx context.Context, eventID, userID string) (bool, error) {
	query := `
		UPDATE type::record($event_id) SET
			registered_users += $user_id,
			updated_on = time::now()
		WHERE $user_id NOTINSIDE registered_users
			AND array::len(registered_users) < max_capacity
		RETURN AFTER
	`
	return r.conditional(ctx, query, eventID, userID)
}

// Unregister removes userID from the registrant set iff present
func (r *EventRepository) Unregister(ctx context.Context, eventID, userID string) (bool, error) {
	query := `
		UPDATE type::record($event_id) SET
			registered_users -= $user_id,
			updated_on = time::now()
		WHERE $user_id INSIDE registered_users
		RETURN AFTER
	`
	return r.conditional(ctx, query, eventID, userID)
}

func (r *EventRepository) conditional(ctx context.Context, query, eventID, userID string) (bool, error) {
	result, err := r.db.Query(ctx, query, map[string]interface{}{
		"event_id": eventID,
		"user_id":  userID,
	})
	if err != nil {
		return false, err
	}
	return len(statementRecords(result, 0)) > 0, nil
}

func (r *EventRepository) list(ctx context.Context, query string, vars map[string]interface{}) ([]*model.Event, error) {
	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	records := statementRecords(result, 0)
	events := make([]*model.Event, 0, len(records))
	for _, rec := range records {
		event, err := parseEventRecord(rec)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func parseEventRecord(raw interface{}) (*model.Event, error) {
	var event model.Event
	if err := decodeRecord(raw, &event); err != nil {
		return nil, err
	}
	if event.RegisteredUsers == nil {
		event.RegisteredUsers = []string{}
	}
	return &event, nil
}
