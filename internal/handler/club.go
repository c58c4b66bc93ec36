package handler

import (
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/forgo/clubhub/api/internal/middleware"
	"github.com/forgo/clubhub/api/internal/model"
	"github.com/forgo/clubhub/api/internal/service"
)

// ClubHandler handles club directory and membership requests
type ClubHandler struct {
	svc *service.ClubService
}

// NewClubHandler creates a new club handler
func NewClubHandler(svc *service.ClubService) *ClubHandler {
	return &ClubHandler{svc: svc}
}

// ClubResponse is a club without its raw id lists
type ClubResponse struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	Description          string             `json:"description"`
	Head                 *model.UserSummary `json:"head,omitempty"`
	MemberCount          int                `json:"member_count"`
	PendingRequestsCount *int               `json:"pending_requests_count,omitempty"`
	CanJoin              *bool              `json:"can_join,omitempty"`
	CreatedOn            time.Time          `json:"created_on"`
}

// ClubDetailResponse is a club with the sections visible to the caller
type ClubDetailResponse struct {
	ClubResponse
	Members         []model.UserSummary          `json:"members,omitempty"`
	PendingRequests []service.PendingRequestView `json:"pending_requests,omitempty"`
	UserStatus      service.UserStatus           `json:"user_status"`
}

// MemberActionRequest names the member a head acts on
type MemberActionRequest struct {
	UserID string               `json:"user_id"`
	Action model.ApprovalAction `json:"action,omitempty"`
}

// Validate checks the shape of the ids; missing values are reported by the
// service with their own codes.
func (r MemberActionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, recordRule(tableUser)),
		validation.Field(&r.Action, validation.In(model.ApprovalApprove, model.ApprovalReject)),
	)
}

func toClubResponse(c *model.Club, head *model.UserSummary) ClubResponse {
	return ClubResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Head:        head,
		MemberCount: len(c.Members),
		CreatedOn:   c.CreatedOn,
	}
}

// List handles GET /v1/clubs
func (h *ClubHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.svc.List(r.Context(), middleware.GetCaller(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]ClubResponse, 0, len(listings))
	for _, l := range listings {
		resp := toClubResponse(l.Club, l.Head)
		pending, canJoin := l.PendingRequestsCount, l.CanJoin
		resp.PendingRequestsCount = &pending
		resp.CanJoin = &canJoin
		out = append(out, resp)
	}
	WriteCollection(w, http.StatusOK, out, nil, nil)
}

// MyClubs handles GET /v1/clubs/my-clubs
func (h *ClubHandler) MyClubs(w http.ResponseWriter, r *http.Request) {
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

// Get handles GET /v1/clubs/{clubId}
func (h *ClubHandler) Get(w http.ResponseWriter, r *http.Request) {
	clubID, ok := pathID(w, r, "clubId", tableClub)
	if !ok {
		return
	}

	detail, err := h.svc.Get(r.Context(), middleware.GetCaller(r.Context()), clubID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, ClubDetailResponse{
		ClubResponse:    toClubResponse(detail.Club, detail.Head),
		Members:         detail.Members,
		PendingRequests: detail.PendingRequests,
		UserStatus:      detail.Status,
	}, map[string]string{
		"self":    "/v1/clubs/" + clubID,
		"members": "/v1/clubs/" + clubID + "/members",
		"events":  "/v1/events?club_id=" + clubID,
	})
}

// Members handles GET /v1/clubs/{clubId}/members
func (h *ClubHandler) Members(w http.ResponseWriter, r *http.Request) {
	clubID, ok := pathID(w, r, "clubId", tableClub)
	if !ok {
		return
	}

	club, members, err := h.svc.Members(r.Context(), middleware.GetCaller(r.Context()), clubID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, map[string]interface{}{
		"club_id":      club.ID,
		"club_name":    club.Name,
		"members":      members,
		"member_count": len(members),
	}, nil)
}

// RequestJoin handles POST /v1/clubs/{clubId}/join-request
func (h *ClubHandler) RequestJoin(w http.ResponseWriter, r *http.Request) {
	clubID, ok := pathID(w, r, "clubId", tableClub)
	if !ok {
		return
	}

	club, err := h.svc.RequestJoin(r.Context(), middleware.GetCaller(r.Context()), clubID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusCreated, map[string]interface{}{
		"message":   "join request sent",
		"club_id":   club.ID,
		"club_name": club.Name,
		"status":    model.MembershipPending,
	}, nil)
}

// ResolveRequest handles PUT /v1/clubs/{clubId}/approve-member
func (h *ClubHandler) ResolveRequest(w http.ResponseWriter, r *http.Request) {
	clubID, ok := pathID(w, r, "clubId", tableClub)
	if !ok {
		return
	}

	var req MemberActionRequest
	if !decodeMemberAction(w, r, &req) {
		return
	}

	userID := normalizedUserID(req.UserID)
	club, err := h.svc.ResolveRequest(r.Context(), middleware.GetCaller(r.Context()), clubID, userID, req.Action)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	state, message := model.MembershipNone, "request rejected"
	if req.Action == model.ApprovalApprove {
		state, message = model.MembershipMember, "request approved"
	}
	WriteData(w, http.StatusOK, map[string]interface{}{
		"message": message,
		"club_id": club.ID,
		"user_id": userID,
		"status":  state,
	}, nil)
}

// RemoveMember handles DELETE /v1/clubs/{clubId}/remove-member
func (h *ClubHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	clubID, ok := pathID(w, r, "clubId", tableClub)
	if !ok {
		return
	}

	var req MemberActionRequest
	if !decodeMemberAction(w, r, &req) {
		return
	}

	userID := normalizedUserID(req.UserID)
	club, err := h.svc.RemoveMember(r.Context(), middleware.GetCaller(r.Context()), clubID, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, map[string]interface{}{
		"message": "member removed",
		"club_id": club.ID,
		"user_id": userID,
		"status":  model.MembershipNone,
	}, nil)
}

// decodeMemberAction reports malformed ids and actions as INVALID_REQUEST
func decodeMemberAction(w http.ResponseWriter, r *http.Request, req *MemberActionRequest) bool {
	if err := DecodeJSON(r, req); err != nil {
		WriteError(w, invalidBody())
		return false
	}
	if err := req.Validate(); err != nil {
		problem := model.NewBadRequestError(model.ErrCodeInvalidRequest, "invalid member action")
		problem.Errors, _ = fieldErrors(err)
		WriteError(w, problem)
		return false
	}
	return true
}

// normalizedUserID prefixes a bare key; an empty id stays empty
func normalizedUserID(raw string) string {
	if id, ok := recordID(tableUser, raw); ok {
		return id
	}
	return raw
}
