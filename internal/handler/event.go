package handler

import (
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/forgo/clubhub/api/internal/middleware"
	"github.com/forgo/clubhub/api/internal/model"
	"github.com/forgo/clubhub/api/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// EventHandler handles event scheduling and registration requests
type EventHandler struct {
	svc *service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// EventResponse is an event with its registration count
type EventResponse struct {
	*model.Event
	RegisteredCount int  `json:"registered_count"`
	IsFull          bool `json:"is_full"`
}

func toEventResponse(e *model.Event) EventResponse {
	return EventResponse{Event: e, RegisteredCount: e.RegisteredCount(), IsFull: e.IsFull()}
}

func toEventResponses(events []*model.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	return out
}

// CreateEventRequest represents the create event request body
type CreateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Venue       string `json:"venue"`
	ClubID      string `json:"club_id"`
	MaxCapacity *int   `json:"max_capacity,omitempty"`
}

// Validate checks required fields and formats
func (r CreateEventRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Required, validation.Length(1, 5000)),
		validation.Field(&r.Date, validation.Required, validation.Date(model.DateLayout)),
		validation.Field(&r.StartTime, validation.Required, validation.Date(model.ClockLayout)),
		validation.Field(&r.EndTime, validation.Required, validation.Date(model.ClockLayout)),
		validation.Field(&r.Venue, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.ClubID, validation.Required, recordRule(tableClub)),
		validation.Field(&r.MaxCapacity, validation.Min(1), validation.Max(model.MaxEventCapacity)),
	)
}

// UpdateEventRequest represents a partial event update; omitted fields are
// left unchanged.
type UpdateEventRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	Venue       *string `json:"venue,omitempty"`
	MaxCapacity *int    `json:"max_capacity,omitempty"`
}

// Validate checks the formats of the fields present
func (r UpdateEventRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.NilOrNotEmpty, validation.Length(1, 5000)),
		validation.Field(&r.Date, validation.NilOrNotEmpty, validation.Date(model.DateLayout)),
		validation.Field(&r.StartTime, validation.NilOrNotEmpty, validation.Date(model.ClockLayout)),
		validation.Field(&r.EndTime, validation.NilOrNotEmpty, validation.Date(model.ClockLayout)),
		validation.Field(&r.Venue, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.MaxCapacity, validation.Min(1), validation.Max(model.MaxEventCapacity)),
	)
}

// List handles GET /v1/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	clubID, ok := queryID(w, r, "club_id", tableClub)
	if !ok {
		return
	}

	events, err := h.svc.List(r.Context(), clubID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteCollection(w, http.StatusOK, toEventResponses(events), nil, map[string]string{
		"calendar": "/v1/events/calendar.ics",
	})
}

// ListByDate handles GET /v1/events/date/{date}
func (h *EventHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListByDate(r.Context(), r.PathValue("date"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteCollection(w, http.StatusOK, toEventResponses(events), nil, nil)
}

// Get handles GET /v1/events/{eventId}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId", tableEvent)
	if !ok {
		return
	}

	event, err := h.svc.Get(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, toEventResponse(event), eventLinks(event))
}

// Create handles POST /v1/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !decodePayload(w, r, &req) {
		return
	}

	clubID, _ := recordID(tableClub, req.ClubID)
	create := service.CreateEventRequest{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Venue:       req.Venue,
		ClubID:      clubID,
	}
	if req.MaxCapacity != nil {
		create.MaxCapacity = *req.MaxCapacity
	}

	event, err := h.svc.Create(r.Context(), middleware.GetCaller(r.Context()), create)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusCreated, toEventResponse(event), eventLinks(event))
}

// Update handles PUT /v1/events/{eventId}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId", tableEvent)
	if !ok {
		return
	}

	var req UpdateEventRequest
	if !decodePayload(w, r, &req) {
		return
	}

	event, err := h.svc.Update(r.Context(), middleware.GetCaller(r.Context()), eventID, model.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Venue:       req.Venue,
		MaxCapacity: req.MaxCapacity,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, toEventResponse(event), eventLinks(event))
}

// Delete handles DELETE /v1/events/{eventId}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId", tableEvent)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), middleware.GetCaller(r.Context()), eventID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteNoContent(w)
}

// Register handles POST /v1/events/{eventId}/register
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId", tableEvent)
	if !ok {
		return
	}

	count, err := h.svc.Register(r.Context(), middleware.GetCaller(r.Context()), eventID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, map[string]interface{}{
		"message":          "registered",
		"event_id":         eventID,
		"registered_count": count,
	}, map[string]string{
		"pass": "/v1/events/" + eventID + "/pass",
	})
}

// Unregister handles DELETE /v1/events/{eventId}/register
func (h *EventHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId", tableEvent)
	if !ok {
		return
	}

	count, err := h.svc.Unregister(r.Context(), middleware.GetCaller(r.Context()), eventID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, map[string]interface{}{
		"message":          "unregistered",
		"event_id":         eventID,
		"registered_count": count,
	}, nil)
}

// Calendar handles GET /v1/events/calendar.ics
func (h *EventHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	clubID, ok := queryID(w, r, "club_id", tableClub)
	if !ok {
		return
	}

	feed, err := h.svc.Calendar(r.Context(), clubID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteFile(w, "text/calendar; charset=utf-8", "", feed)
}

// Pass handles GET /v1/events/{eventId}/pass
func (h *EventHandler) Pass(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId", tableEvent)
	if !ok {
		return
	}

	png, err := h.svc.Pass(r.Context(), middleware.GetCaller(r.Context()), eventID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteFile(w, "image/png", "", png)
}

// ExportRegistrations handles GET /v1/events/{eventId}/registrations.xlsx
func (h *EventHandler) ExportRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId", tableEvent)
	if !ok {
		return
	}

	book, err := h.svc.ExportRegistrations(r.Context(), middleware.GetCaller(r.Context()), eventID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteFile(w, xlsxContentType, exportFilename(eventID), book)
}

func exportFilename(eventID string) string {
	return "registrations-" + strings.TrimPrefix(eventID, tableEvent+":") + ".xlsx"
}

func eventLinks(e *model.Event) map[string]string {
	return map[string]string{
		"self":     "/v1/events/" + e.ID,
		"club":     "/v1/clubs/" + e.ClubID,
		"register": "/v1/events/" + e.ID + "/register",
	}
}
