package repository

import (
	"context"
	"errors"

	"github.com/forgo/clubhub/api/internal/database"
	"github.com/forgo/clubhub/api/internal/model"
)

// AchievementRepository is the Achievement Store behind the Hall of Fame
type AchievementRepository struct {
	db database.Database
}

// NewAchievementRepository creates a new achievement repository
func NewAchievementRepository(db database.Database) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// Create creates a new achievement
func (r *AchievementRepository) Create(ctx context.Context, a *model.Achievement) error {
	query := `
		CREATE achievement CONTENT {
			title: $title,
			description: $description,
			category: $category,
			achiever: $achiever,
			date: $date,
			image_url: $image_url,
			is_public: $is_public,
			added_by: $added_by,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"title":       a.Title,
		"description": a.Description,
		"category":    a.Category,
		"achiever":    achieverContent(a.Achiever),
		"date":        a.Date,
		"image_url":   ptrToNone(a.ImageURL),
		"is_public":   a.IsPublic,
		"added_by":    a.AddedBy,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	records := statementRecords(result, 0)
	if len(records) == 0 {
		return errors.New("no result returned")
	}
	created, err := parseAchievementRecord(records[0])
	if err != nil {
		return err
	}
	*a = *created
	return nil
}

// GetByID retrieves an achievement by ID
func (r *AchievementRepository) GetByID(ctx context.Context, id string) (*model.Achievement, error) {
	result, err := r.db.QueryOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseAchievementRecord(result)
}

// ListPublic returns public achievements, most recent first
func (r *AchievementRepository) ListPublic(ctx context.Context, category *model.Category, limit int) ([]*model.Achievement, error) {
	if limit <= 0 || limit > model.MaxAchievementsListed {
		limit = model.MaxAchievementsListed
	}

	query := `SELECT * FROM achievement WHERE is_public = true ORDER BY date DESC, created_on DESC LIMIT $limit`
	vars := map[string]interface{}{"limit": limit}
	if category != nil {
		query = `SELECT * FROM achievement WHERE is_public = true AND category = $category ORDER BY date DESC, created_on DESC LIMIT $limit`
		vars["category"] = *category
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	records := statementRecords(result, 0)
	out := make([]*model.Achievement, 0, len(records))
	for _, rec := range records {
		a, err := parseAchievementRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Update applies a partial update and returns the new record, or nil when
// the achievement does not exist.
func (r *AchievementRepository) Update(ctx context.Context, id string, upd model.AchievementUpdate) (*model.Achievement, error) {
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
	if upd.Category != nil {
		set("category", *upd.Category)
	}
	if upd.Achiever != nil {
		set("achiever", achieverContent(*upd.Achiever))
	}
	if upd.Date != nil {
		set("date", *upd.Date)
	}
	if upd.ImageURL != nil {
		set("image_url", *upd.ImageURL)
	}
	if upd.IsPublic != nil {
		set("is_public", *upd.IsPublic)
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
	return parseAchievementRecord(records[0])
}

// Delete deletes an achievement
func (r *AchievementRepository) Delete(ctx context.Context, id string) error {
	return r.db.Execute(ctx, `DELETE type::record($id)`, map[string]interface{}{"id": id})
}

// achieverContent keeps absent roll/club identifiers as NONE
func achieverContent(a model.Achiever) map[string]interface{} {
	content := map[string]interface{}{
		"name": a.Name,
		"type": a.Type,
	}
	if a.RollNumber != nil {
		content["roll_number"] = *a.RollNumber
	}
	if a.ClubName != nil {
		content["club_name"] = *a.ClubName
	}
	return content
}

func parseAchievementRecord(raw interface{}) (*model.Achievement, error) {
	var a model.Achievement
	if err := decodeRecord(raw, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
