package access

import "github.com/forgo/clubhub/api/internal/model"

// Caller is an authenticated principal
type Caller struct {
	UserID string
	Role   model.Role
}

// IsPRCouncil reports whether the caller belongs to the PR council
func (c Caller) IsPRCouncil() bool {
	return c.Role == model.RolePRCouncil
}

// CanManageClub reports whether the caller may administer club: the PR
// council manages every club, a club head only the club they head.
func CanManageClub(c Caller, club *model.Club) bool {
	if club == nil {
		return false
	}
	switch c.Role {
	case model.RolePRCouncil:
		return true
	case model.RoleClubHead:
		return c.UserID != "" && club.HeadID == c.UserID
	}
	return false
}

// CanManageEvent reports whether the caller may administer event. Ownership
// is resolved through owner, the club the event belongs to.
func CanManageEvent(c Caller, event *model.Event, owner *model.Club) bool {
	if event == nil || owner == nil || event.ClubID != owner.ID {
		return false
	}
	return CanManageClub(c, owner)
}

// CanSendToClub reports whether the caller may message club members.
// Send authority mirrors management authority.
func CanSendToClub(c Caller, club *model.Club) bool {
	return CanManageClub(c, club)
}

// CanSendCollegeWide reports whether the caller may broadcast to everyone
func CanSendCollegeWide(c Caller) bool {
	return c.IsPRCouncil()
}

// CanViewClubDetail reports whether the caller may see club's member and
// request lists.
func CanViewClubDetail(c Caller, club *model.Club) bool {
	if club == nil {
		return false
	}
	return CanManageClub(c, club) || club.IsMember(c.UserID)
}

// CanEditHallOfFame reports whether the caller may write achievements
func CanEditHallOfFame(c Caller) bool {
	return c.IsPRCouncil()
}

// CanJoinClubs reports whether the caller may request membership or
// register for events.
func CanJoinClubs(c Caller) bool {
	return c.Role == model.RoleStudent
}

// MessageVisibility returns the club_specific scope visible to the caller.
// joinedClubs is used for students, headed for club heads (nil when the
// head has no active club).
func MessageVisibility(c Caller, joinedClubs []string, headed *model.Club) model.MessageVisibility {
	switch c.Role {
	case model.RolePRCouncil:
		return model.MessageVisibility{AllClubs: true}
	case model.RoleClubHead:
		if headed == nil {
			return model.MessageVisibility{ClubIDs: []string{}}
		}
		return model.MessageVisibility{ClubIDs: []string{headed.ID}}
	default:
		clubs := make([]string, len(joinedClubs))
		copy(clubs, joinedClubs)
		return model.MessageVisibility{ClubIDs: clubs}
	}
}

// CanSeeMessage applies the same visibility rule to a single message
func CanSeeMessage(vis model.MessageVisibility, msg *model.Message) bool {
	if msg == nil {
		return false
	}
	if msg.TargetType == model.TargetCollegeWide || vis.AllClubs {
		return true
	}
	if msg.TargetID == nil {
		return false
	}
	for _, id := range vis.ClubIDs {
		if id == *msg.TargetID {
			return true
		}
	}
	return false
}
