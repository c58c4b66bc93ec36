package model

import "time"

// TargetType is the audience scope of a message
type TargetType string

const (
	TargetCollegeWide  TargetType = "college_wide"
	TargetClubSpecific TargetType = "club_specific"
)

// IsValid reports whether t is a known scope
func (t TargetType) IsValid() bool {
	return t == TargetCollegeWide || t == TargetClubSpecific
}

// Message pagination bounds
const (
	DefaultMessagePageSize = 20
	MaxMessagePageSize     = 50
	MaxMessagePage         = 1_000_000
	MaxMessageLength       = 2000
)

// Message is a broadcast. TargetID is set iff TargetType is club_specific.
// ReadBy holds at most one receipt per user.
type Message struct {
	ID         string        `json:"id"`
	Content    string        `json:"content"`
	SenderID   string        `json:"sender_id"`
	TargetType TargetType    `json:"target_type"`
	TargetID   *string       `json:"target_id,omitempty"`
	IsUrgent   bool          `json:"is_urgent"`
	ReadBy     []ReadReceipt `json:"read_by"`
	CreatedOn  time.Time     `json:"created_on"`
	UpdatedOn  time.Time     `json:"updated_on"`
}

// ReadReceipt records when a user read a message
type ReadReceipt struct {
	UserID string    `json:"user_id"`
	ReadOn time.Time `json:"read_on"`
}

// IsReadBy returns true if userID has a receipt
func (m *Message) IsReadBy(userID string) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// MessageVisibility describes what a caller may see. CollegeWide is always
// visible; AllClubs grants every club_specific message, otherwise only the
// listed clubs are visible.
type MessageVisibility struct {
	AllClubs bool
	ClubIDs  []string
}

// MessageFilter narrows a message listing after visibility is applied
type MessageFilter struct {
	TargetType *TargetType
	ClubID     *string
	Urgent     *bool
}

// PageRequest is a 1-based page of a listing
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize clamps the page to [1, MaxMessagePage] and the limit to
// [1, MaxMessagePageSize], so Offset never overflows.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxMessagePage {
		p.Page = MaxMessagePage
	}
	if p.Limit < 1 {
		p.Limit = DefaultMessagePageSize
	}
	if p.Limit > MaxMessagePageSize {
		p.Limit = MaxMessagePageSize
	}
	return p
}

// Offset returns the number of rows to skip
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// MessagePage is one page of messages with totals
type MessagePage struct {
	Messages   []*Message
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// HasNext returns true if a later page exists
func (p *MessagePage) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrev returns true if an earlier page exists
func (p *MessagePage) HasPrev() bool {
	return p.Page > 1
}

// NewMessagePage computes the page count for total rows
func NewMessagePage(messages []*Message, req PageRequest, total int) *MessagePage {
	pages := 0
	if total > 0 {
		pages = (total + req.Limit - 1) / req.Limit
	}
	return &MessagePage{
		Messages:   messages,
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: pages,
	}
}
