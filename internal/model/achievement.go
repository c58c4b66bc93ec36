package model

import "time"

// Category is the Hall of Fame category
type Category string

const (
	CategoryAcademic   Category = "academic"
	CategorySports     Category = "sports"
	CategoryCultural   Category = "cultural"
	CategoryTechnical  Category = "technical"
	CategoryLeadership Category = "leadership"
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryAcademic,
	CategorySports,
	CategoryCultural,
	CategoryTechnical,
	CategoryLeadership,
}

var categoryLabels = map[Category]string{
	CategoryAcademic:   "Academic",
	CategorySports:     "Sports",
	CategoryCultural:   "Cultural",
	CategoryTechnical:  "Technical",
	CategoryLeadership: "Leadership",
}

// IsValid reports whether c is a known category
func (c Category) IsValid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the display label
func (c Category) Label() string {
	return categoryLabels[c]
}

// AchieverType is the kind of subject credited in a record
type AchieverType string

const (
	AchieverStudent AchieverType = "student"
	AchieverClub    AchieverType = "club"
	AchieverFaculty AchieverType = "faculty"
)

// IsValid reports whether t is a known achiever type
func (t AchieverType) IsValid() bool {
	switch t {
	case AchieverStudent, AchieverClub, AchieverFaculty:
		return true
	}
	return false
}

// MaxAchievementsListed bounds the public listing
const MaxAchievementsListed = 100

// Achiever is the subject of a Hall of Fame record
type Achiever struct {
	Name       string       `json:"name"`
	RollNumber *string      `json:"roll_number,omitempty"`
	ClubName   *string      `json:"club_name,omitempty"`
	Type       AchieverType `json:"type"`
}

// Achievement is a Hall of Fame record
type Achievement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Achiever    Achiever  `json:"achiever"`
	Date        string    `json:"date"` // YYYY-MM-DD
	ImageURL    *string   `json:"image_url,omitempty"`
	IsPublic    bool      `json:"is_public"`
	AddedBy     string    `json:"added_by"`
	CreatedOn   time.Time `json:"created_on"`
	UpdatedOn   time.Time `json:"updated_on"`
}

// AchievementUpdate carries a partial update; nil means unchanged
type AchievementUpdate struct {
	Title       *string
	Description *string
	Category    *Category
	Achiever    *Achiever
	Date        *string
	ImageURL    *string
	IsPublic    *bool
}
