package handler

import (
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/forgo/clubhub/api/internal/middleware"
	"github.com/forgo/clubhub/api/internal/model"
	"github.com/forgo/clubhub/api/internal/service"
)

// MessageHandler handles broadcast messaging requests
type MessageHandler struct {
	svc *service.MessageService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// MessageResponse is a message as seen by the caller
type MessageResponse struct {
	ID         string             `json:"id"`
	Content    string             `json:"content"`
	Sender     *model.UserSummary `json:"sender,omitempty"`
	TargetType model.TargetType   `json:"target_type"`
	TargetID   *string            `json:"target_id,omitempty"`
	IsUrgent   bool               `json:"is_urgent"`
	ReadCount  int                `json:"read_count"`
	IsRead     bool               `json:"is_read"`
	CreatedOn  time.Time          `json:"created_on"`
}

func toMessageResponse(v service.MessageView) MessageResponse {
	return MessageResponse{
		ID:         v.Message.ID,
		Content:    v.Message.Content,
		Sender:     v.Sender,
		TargetType: v.Message.TargetType,
		TargetID:   v.Message.TargetID,
		IsUrgent:   v.Message.IsUrgent,
		ReadCount:  v.ReadCount,
		IsRead:     v.IsRead,
		CreatedOn:  v.Message.CreatedOn,
	}
}

// SendMessageRequest represents the send message request body
type SendMessageRequest struct {
	Content    string           `json:"content"`
	TargetType model.TargetType `json:"target_type"`
	TargetID   *string          `json:"target_id,omitempty"`
	IsUrgent   bool             `json:"is_urgent"`
}

// Validate bounds the content and checks the target id shape. Missing
// fields and unknown target types are reported by the service.
func (r SendMessageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Length(0, model.MaxMessageLength)),
		validation.Field(&r.TargetID, recordRule(tableClub)),
	)
}

// Send handles POST /v1/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !decodePayload(w, r, &req) {
		return
	}

	targetID := req.TargetID
	if targetID != nil {
		if id, ok := recordID(tableClub, *targetID); ok {
			targetID = &id
		}
	}

	view, err := h.svc.Send(r.Context(), middleware.GetCaller(r.Context()), service.SendMessageRequest{
		Content:    req.Content,
		TargetType: req.TargetType,
		TargetID:   targetID,
		IsUrgent:   req.IsUrgent,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusCreated, toMessageResponse(*view), nil)
}

// List handles GET /v1/messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := messageFilter(w, r)
	if !ok {
		return
	}

	list, err := h.svc.List(r.Context(), middleware.GetCaller(r.Context()), filter, pageRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessageList(w, list)
}

// CollegeWide handles GET /v1/messages/college-wide
func (h *MessageHandler) CollegeWide(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.CollegeWide(r.Context(), middleware.GetCaller(r.Context()), pageRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessageList(w, list)
}

// Club handles GET /v1/messages/club/{clubId}
func (h *MessageHandler) Club(w http.ResponseWriter, r *http.Request) {
	clubID, ok := pathID(w, r, "clubId", tableClub)
	if !ok {
		return
	}

	list, err := h.svc.Club(r.Context(), middleware.GetCaller(r.Context()), clubID, pageRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessageList(w, list)
}

// MarkRead handles PUT /v1/messages/{messageId}/mark-read
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	messageID, ok := pathID(w, r, "messageId", tableMessage)
	if !ok {
		return
	}

	if err := h.svc.MarkRead(r.Context(), middleware.GetCaller(r.Context()), messageID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, map[string]interface{}{
		"message_id": messageID,
		"is_read":    true,
	}, nil)
}

// MyClubs handles GET /v1/messages/my-clubs
func (h *MessageHandler) MyClubs(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.svc.MyClubs(r.Context(), middleware.GetCaller(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]ClubResponse, 0, len(clubs))
	for _, c := range clubs {
		out = append(out, toClubResponse(c, nil))
	}
	WriteCollection(w, http.StatusOK, out, nil, nil)
}

func writeMessageList(w http.ResponseWriter, list *service.MessageList) {
	out := make([]MessageResponse, 0, len(list.Items))
	for _, v := range list.Items {
		out = append(out, toMessageResponse(v))
	}
	WriteCollection(w, http.StatusOK, out, newPaginationInfo(list.Page), nil)
}

// pageRequest reads page and limit. Values that do not parse fall back to
// the defaults applied by PageRequest.Normalize.
func pageRequest(r *http.Request) model.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return model.PageRequest{Page: page, Limit: limit}
}

// messageFilter reads the type, club_id and urgent query parameters
func messageFilter(w http.ResponseWriter, r *http.Request) (model.MessageFilter, bool) {
	var filter model.MessageFilter
	q := r.URL.Query()

	if raw := q.Get("type"); raw != "" {
		target := model.TargetType(raw)
		if !target.IsValid() {
			WriteError(w, MapServiceError(service.ErrInvalidTargetType))
			return filter, false
		}
		filter.TargetType = &target
	}

	clubID, ok := queryID(w, r, "club_id", tableClub)
	if !ok {
		return filter, false
	}
	filter.ClubID = clubID

	if raw := q.Get("urgent"); raw != "" {
		urgent, err := strconv.ParseBool(raw)
		if err != nil {
			WriteError(w, model.NewBadRequestError(model.ErrCodeInvalidRequest, "urgent must be true or false"))
			return filter, false
		}
		filter.Urgent = &urgent
	}
	return filter, true
}
