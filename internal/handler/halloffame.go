package handler

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/forgo/clubhub/api/internal/middleware"
	"github.com/forgo/clubhub/api/internal/model"
	"github.com/forgo/clubhub/api/internal/service"
)

// HallOfFameHandler handles achievement records
type HallOfFameHandler struct {
	svc *service.HallOfFameService
}

// NewHallOfFameHandler creates a new hall of fame handler
func NewHallOfFameHandler(svc *service.HallOfFameService) *HallOfFameHandler {
	return &HallOfFameHandler{svc: svc}
}

// AchieverPayload is the credited subject of a record
type AchieverPayload struct {
	Name       string             `json:"name"`
	RollNumber *string            `json:"roll_number,omitempty"`
	ClubName   *string            `json:"club_name,omitempty"`
	Type       model.AchieverType `json:"type"`
}

// Validate checks the achiever fields
func (a AchieverPayload) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&a.Type, validation.Required,
			validation.In(model.AchieverStudent, model.AchieverClub, model.AchieverFaculty)),
	)
}

func (a AchieverPayload) toModel() model.Achiever {
	return model.Achiever{Name: a.Name, RollNumber: a.RollNumber, ClubName: a.ClubName, Type: a.Type}
}

// CreateAchievementRequest represents the create achievement request body
type CreateAchievementRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    model.Category  `json:"category"`
	Achiever    AchieverPayload `json:"achiever"`
	Date        string          `json:"date"`
	ImageURL    *string         `json:"image_url,omitempty"`
	IsPublic    *bool           `json:"is_public,omitempty"`
}

// Validate checks required fields; achiever errors are nested
func (r CreateAchievementRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Required, validation.Length(1, 5000)),
		validation.Field(&r.Category, validation.Required, validation.In(categoryValues()...)),
		validation.Field(&r.Achiever),
		validation.Field(&r.Date, validation.Required, validation.Date(model.DateLayout)),
		validation.Field(&r.ImageURL, validation.Length(0, 2048)),
	)
}

// UpdateAchievementRequest represents a partial update
type UpdateAchievementRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *model.Category  `json:"category,omitempty"`
	Achiever    *AchieverPayload `json:"achiever,omitempty"`
	Date        *string          `json:"date,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	IsPublic    *bool            `json:"is_public,omitempty"`
}

// Validate checks the fields present
func (r UpdateAchievementRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.NilOrNotEmpty, validation.Length(1, 5000)),
		validation.Field(&r.Category, validation.NilOrNotEmpty, validation.In(categoryValues()...)),
		validation.Field(&r.Achiever),
		validation.Field(&r.Date, validation.NilOrNotEmpty, validation.Date(model.DateLayout)),
		validation.Field(&r.ImageURL, validation.Length(0, 2048)),
	)
}

func categoryValues() []interface{} {
	out := make([]interface{}, 0, len(model.Categories))
	for _, c := range model.Categories {
		out = append(out, c)
	}
	return out
}

// Categories handles GET /v1/hall-of-fame/categories
func (h *HallOfFameHandler) Categories(w http.ResponseWriter, r *http.Request) {
	WriteCollection(w, http.StatusOK, h.svc.Categories(), nil, nil)
}

// List handles GET /v1/hall-of-fame
func (h *HallOfFameHandler) List(w http.ResponseWriter, r *http.Request) {
	var category *model.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		c := model.Category(raw)
		category = &c
	}

	records, err := h.svc.List(r.Context(), category)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteCollection(w, http.StatusOK, records, nil, nil)
}

// Get handles GET /v1/hall-of-fame/{achievementId}
func (h *HallOfFameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "achievementId", tableAchievement)
	if !ok {
		return
	}

	record, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, record, nil)
}

// Create handles POST /v1/hall-of-fame
func (h *HallOfFameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAchievementRequest
	if !decodePayload(w, r, &req) {
		return
	}

	record, err := h.svc.Create(r.Context(), middleware.GetCaller(r.Context()), service.CreateAchievementRequest{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Achiever:    req.Achiever.toModel(),
		Date:        req.Date,
		ImageURL:    req.ImageURL,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusCreated, record, map[string]string{
		"self": "/v1/hall-of-fame/" + record.ID,
	})
}

// Update handles PUT /v1/hall-of-fame/{achievementId}
func (h *HallOfFameHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "achievementId", tableAchievement)
	if !ok {
		return
	}

	var req UpdateAchievementRequest
	if !decodePayload(w, r, &req) {
		return
	}

	upd := model.AchievementUpdate{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Date:        req.Date,
		ImageURL:    req.ImageURL,
		IsPublic:    req.IsPublic,
	}
	if req.Achiever != nil {
		achiever := req.Achiever.toModel()
		upd.Achiever = &achiever
	}

	record, err := h.svc.Update(r.Context(), middleware.GetCaller(r.Context()), id, upd)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, record, nil)
}

// Delete handles DELETE /v1/hall-of-fame/{achievementId}
func (h *HallOfFameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "achievementId", tableAchievement)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), middleware.GetCaller(r.Context()), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteNoContent(w)
}
