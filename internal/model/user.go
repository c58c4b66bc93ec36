package model

import "time"

// Role is the campus role of a user
type Role string

const (
	RoleStudent   Role = "student"
	RoleClubHead  Role = "club_head"
	RolePRCouncil Role = "pr_council"
)

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleClubHead, RolePRCouncil:
		return true
	}
	return false
}

// IsCouncil returns true for roles that sign in with a club name
func (r Role) IsCouncil() bool {
	return r == RoleClubHead || r == RolePRCouncil
}

// LoginType selects which identity fields a login uses
type LoginType string

const (
	LoginTypeStudent LoginType = "student"
	LoginTypeCouncil LoginType = "council"
)

// User is a credential record. Students are identified by name and roll
// number, council members by name and club name.
type User struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	RollNumber        *string   `json:"roll_number,omitempty"`
	ClubName          *string   `json:"club_name,omitempty"`
	Role              Role      `json:"role"`
	Hash              string    `json:"-"`
	IsPasswordChanged bool      `json:"is_password_changed"`
	JoinedClubs       []string  `json:"joined_clubs"`
	CreatedOn         time.Time `json:"created_on"`
	UpdatedOn         time.Time `json:"updated_on"`
}

// HasJoined returns true if clubID is in the user's joined-club set
func (u *User) HasJoined(clubID string) bool {
	for _, id := range u.JoinedClubs {
		if id == clubID {
			return true
		}
	}
	return false
}

// UserSummary is the public projection of a user embedded in other resources
type UserSummary struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	RollNumber *string `json:"roll_number,omitempty"`
	ClubName   *string `json:"club_name,omitempty"`
	Role       Role    `json:"role"`
}

// Summary projects the user to its public fields
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Name:       u.Name,
		RollNumber: u.RollNumber,
		ClubName:   u.ClubName,
		Role:       u.Role,
	}
}
