package model

import "time"

// Club is a membership record: one head, a member set and a queue of
// pending join requests. A user is never both a member and pending.
type Club struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	HeadID          string           `json:"head_id"`
	Members         []string         `json:"members"`
	PendingRequests []PendingRequest `json:"pending_requests"`
	IsActive        bool             `json:"is_active"`
	CreatedOn       time.Time        `json:"created_on"`
	UpdatedOn       time.Time        `json:"updated_on"`
}

// PendingRequest is a student's application to join a club
type PendingRequest struct {
	UserID      string    `json:"user_id"`
	RequestedOn time.Time `json:"requested_on"`
}

// MembershipState is the state of a (user, club) pair
type MembershipState string

const (
	MembershipNone    MembershipState = "none"
	MembershipPending MembershipState = "pending"
	MembershipMember  MembershipState = "member"
)

// IsMember returns true if userID is in the member set
func (c *Club) IsMember(userID string) bool {
	for _, id := range c.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// HasPendingRequest returns true if userID has a queued join request
func (c *Club) HasPendingRequest(userID string) bool {
	for _, req := range c.PendingRequests {
		if req.UserID == userID {
			return true
		}
	}
	return false
}

// StateOf returns the membership state of userID in this club
func (c *Club) StateOf(userID string) MembershipState {
	switch {
	case c.IsMember(userID):
		return MembershipMember
	case c.HasPendingRequest(userID):
		return MembershipPending
	default:
		return MembershipNone
	}
}

// ApprovalAction is the decision on a pending join request
type ApprovalAction string

const (
	ApprovalApprove ApprovalAction = "approve"
	ApprovalReject  ApprovalAction = "reject"
)

// IsValid reports whether a is approve or reject
func (a ApprovalAction) IsValid() bool {
	return a == ApprovalApprove || a == ApprovalReject
}
