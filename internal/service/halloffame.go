package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/forgo/clubhub/api/internal/access"
	"github.com/forgo/clubhub/api/internal/model"
)

// AchievementRepository defines the interface for the Achievement Store
type AchievementRepository interface {
	Create(ctx context.Context, a *model.Achievement) error
	GetByID(ctx context.Context, id string) (*model.Achievement, error)
	ListPublic(ctx context.Context, category *model.Category, limit int) ([]*model.Achievement, error)
	Update(ctx context.Context, id string, upd model.AchievementUpdate) (*model.Achievement, error)
	Delete(ctx context.Context, id string) error
}

// HallOfFameService manages achievement records. Reads are open, writes
// belong to the PR council.
type HallOfFameService struct {
	achievements AchievementRepository
}

// NewHallOfFameService creates a new hall of fame service
func NewHallOfFameService(achievements AchievementRepository) *HallOfFameService {
	return &HallOfFameService{achievements: achievements}
}

// CategoryOption is a category with its display label
type CategoryOption struct {
	Value model.Category `json:"value"`
	Label string         `json:"label"`
}

// CreateAchievementRequest represents a new record. IsPublic defaults to true.
type CreateAchievementRequest struct {
	Title       string
	Description string
	Category    model.Category
	Achiever    model.Achiever
	Date        string
	ImageURL    *string
	IsPublic    *bool
}

// Categories lists the categories in display order
func (s *HallOfFameService) Categories() []CategoryOption {
	out := make([]CategoryOption, 0, len(model.Categories))
	for _, c := range model.Categories {
		out = append(out, CategoryOption{Value: c, Label: c.Label()})
	}
	return out
}

// List returns public records, newest first, optionally for one category
func (s *HallOfFameService) List(ctx context.Context, category *model.Category) ([]*model.Achievement, error) {
	if category != nil && !category.IsValid() {
		return nil, NewValidationError("category", "unknown category")
	}
	return s.achievements.ListPublic(ctx, category, model.MaxAchievementsListed)
}

// Get returns a public record
func (s *HallOfFameService) Get(ctx context.Context, id string) (*model.Achievement, error) {
	a, err := s.achievements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil || !a.IsPublic {
		return nil, ErrAchievementNotFound
	}
	return a, nil
}

// Create adds a record
func (s *HallOfFameService) Create(ctx context.Context, caller access.Caller, req CreateAchievementRequest) (*model.Achievement, error) {
	if !access.CanEditHallOfFame(caller) {
		return nil, ErrInsufficientPermissions
	}

	var fields []model.FieldError
	if strings.TrimSpace(req.Title) == "" {
		fields = append(fields, model.FieldError{Field: "title", Message: "is required"})
	}
	if strings.TrimSpace(req.Description) == "" {
		fields = append(fields, model.FieldError{Field: "description", Message: "is required"})
	}
	if strings.TrimSpace(req.Achiever.Name) == "" {
		fields = append(fields, model.FieldError{Field: "achiever.name", Message: "is required"})
	}
	fields = append(fields, checkCategory(&req.Category)...)
	fields = append(fields, checkAchiever(&req.Achiever)...)
	fields = append(fields, checkDate(&req.Date)...)
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	a := &model.Achievement{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		Achiever:    req.Achiever,
		Date:        req.Date,
		ImageURL:    req.ImageURL,
		IsPublic:    req.IsPublic == nil || *req.IsPublic,
		AddedBy:     caller.UserID,
	}
	a.Achiever.Name = strings.TrimSpace(a.Achiever.Name)

	if err := s.achievements.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create achievement: %w", err)
	}
	return a, nil
}

// Update applies a partial update to a record
func (s *HallOfFameService) Update(ctx context.Context, caller access.Caller, id string, upd model.AchievementUpdate) (*model.Achievement, error) {
	if !access.CanEditHallOfFame(caller) {
		return nil, ErrInsufficientPermissions
	}

	var fields []model.FieldError
	if upd.Category != nil {
		fields = append(fields, checkCategory(upd.Category)...)
	}
	if upd.Achiever != nil {
		fields = append(fields, checkAchiever(upd.Achiever)...)
	}
	if upd.Date != nil {
		fields = append(fields, checkDate(upd.Date)...)
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	updated, err := s.achievements.Update(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("update achievement: %w", err)
	}
	if updated == nil {
		return nil, ErrAchievementNotFound
	}
	return updated, nil
}

// Delete removes a record
func (s *HallOfFameService) Delete(ctx context.Context, caller access.Caller, id string) error {
	if !access.CanEditHallOfFame(caller) {
		return ErrInsufficientPermissions
	}

	existing, err := s.achievements.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrAchievementNotFound
	}
	return s.achievements.Delete(ctx, id)
}

func checkCategory(c *model.Category) []model.FieldError {
	if !c.IsValid() {
		return []model.FieldError{{Field: "category", Message: "must be one of academic, sports, cultural, technical, leadership"}}
	}
	return nil
}

func checkAchiever(a *model.Achiever) []model.FieldError {
	if !a.Type.IsValid() {
		return []model.FieldError{{Field: "achiever.type", Message: "must be one of student, club, faculty"}}
	}
	return nil
}

func checkDate(date *string) []model.FieldError {
	if _, err := time.Parse(model.DateLayout, *date); err != nil {
		return []model.FieldError{{Field: "date", Message: "must be YYYY-MM-DD"}}
	}
	return nil
}
