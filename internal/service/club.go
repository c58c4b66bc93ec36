package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/forgo/clubhub/api/internal/access"
	"github.com/forgo/clubhub/api/internal/database"
	"github.com/forgo/clubhub/api/internal/model"
)

// ClubRepository defines the interface for the Membership Store. The
// transition methods report false when their precondition did not hold.
type ClubRepository interface {
	Create(ctx context.Context, club *model.Club) error
	GetByID(ctx context.Context, id string) (*model.Club, error)
	GetByName(ctx context.Context, name string) (*model.Club, error)
	GetByHead(ctx context.Context, headID string) (*model.Club, error)
	ListActive(ctx context.Context) ([]*model.Club, error)
	ListActiveByMember(ctx context.Context, userID string) ([]*model.Club, error)
	AddJoinRequest(ctx context.Context, clubID, userID string) (bool, error)
	ApproveRequest(ctx context.Context, clubID, userID string) (bool, error)
	RejectRequest(ctx context.Context, clubID, userID string) (bool, error)
	RemoveMember(ctx context.Context, clubID, userID string) (bool, error)
}

// ClubService runs the membership state machine
type ClubService struct {
	clubs ClubRepository
	users UserRepository
}

// ClubServiceConfig holds configuration for the club service
type ClubServiceConfig struct {
	Clubs ClubRepository
	Users UserRepository
}

// NewClubService creates a new club service
func NewClubService(cfg ClubServiceConfig) *ClubService {
	return &ClubService{clubs: cfg.Clubs, users: cfg.Users}
}

// ClubListing is a club as shown in the directory
type ClubListing struct {
	Club                 *model.Club
	Head                 *model.UserSummary
	MemberCount          int
	PendingRequestsCount int
	CanJoin              bool
}

// UserStatus is the caller's relation to a club
type UserStatus struct {
	IsMember          bool `json:"is_member"`
	CanManage         bool `json:"can_manage"`
	HasPendingRequest bool `json:"has_pending_request"`
}

// PendingRequestView is a pending request with its requester resolved
type PendingRequestView struct {
	User        model.UserSummary `json:"user"`
	RequestedOn time.Time         `json:"requested_on"`
}

// ClubDetail is a club with caller-dependent sections. Members is nil unless
// the caller may view club detail; PendingRequests is nil unless the caller
// manages the club.
type ClubDetail struct {
	Club            *model.Club
	Head            *model.UserSummary
	Status          UserStatus
	Members         []model.UserSummary
	PendingRequests []PendingRequestView
}

// List returns the active clubs sorted by name
func (s *ClubService) List(ctx context.Context, caller access.Caller) ([]ClubListing, error) {
	clubs, err := s.clubs.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	heads, err := s.summaries(ctx, headIDs(clubs))
	if err != nil {
		return nil, err
	}

	out := make([]ClubListing, 0, len(clubs))
	for _, c := range clubs {
		listing := ClubListing{
			Club:                 c,
			MemberCount:          len(c.Members),
			PendingRequestsCount: len(c.PendingRequests),
			CanJoin:              access.CanJoinClubs(caller) && c.StateOf(caller.UserID) == model.MembershipNone,
		}
		if h, ok := heads[c.HeadID]; ok {
			listing.Head = &h
		}
		out = append(out, listing)
	}
	return out, nil
}

// MyClubs returns the active clubs the caller is a member of
func (s *ClubService) MyClubs(ctx context.Context, caller access.Caller) ([]*model.Club, error) {
	return s.clubs.ListActiveByMember(ctx, caller.UserID)
}

// Get returns a club with the sections the caller may see
func (s *ClubService) Get(ctx context.Context, caller access.Caller, clubID string) (*ClubDetail, error) {
	club, err := s.load(ctx, clubID)
	if err != nil {
		return nil, err
	}

	detail := &ClubDetail{
		Club: club,
		Status: UserStatus{
			IsMember:          club.IsMember(caller.UserID),
			CanManage:         access.CanManageClub(caller, club),
			HasPendingRequest: club.HasPendingRequest(caller.UserID),
		},
	}

	ids := []string{club.HeadID}
	canView := access.CanViewClubDetail(caller, club)
	if canView {
		ids = append(ids, club.Members...)
	}
	if detail.Status.CanManage {
		for _, p := range club.PendingRequests {
			ids = append(ids, p.UserID)
		}
	}
	users, err := s.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	if h, ok := users[club.HeadID]; ok {
		detail.Head = &h
	}
	if canView {
		detail.Members = pick(users, club.Members)
	}
	if detail.Status.CanManage {
		detail.PendingRequests = make([]PendingRequestView, 0, len(club.PendingRequests))
		for _, p := range club.PendingRequests {
			if u, ok := users[p.UserID]; ok {
				detail.PendingRequests = append(detail.PendingRequests, PendingRequestView{User: u, RequestedOn: p.RequestedOn})
			}
		}
	}
	return detail, nil
}

// Members returns the member list when the caller may view club detail
func (s *ClubService) Members(ctx context.Context, caller access.Caller, clubID string) (*model.Club, []model.UserSummary, error) {
	club, err := s.load(ctx, clubID)
	if err != nil {
		return nil, nil, err
	}
	if !access.CanViewClubDetail(caller, club) {
		return nil, nil, ErrAccessDenied
	}

	users, err := s.summaries(ctx, club.Members)
	if err != nil {
		return nil, nil, err
	}
	return club, pick(users, club.Members), nil
}

// RequestJoin moves the caller from NONE to PENDING
func (s *ClubService) RequestJoin(ctx context.Context, caller access.Caller, clubID string) (*model.Club, error) {
	if !access.CanJoinClubs(caller) {
		return nil, ErrInsufficientPermissions
	}

	queued, err := s.clubs.AddJoinRequest(ctx, clubID, caller.UserID)
	if err != nil {
		return nil, err
	}

	club, err := s.load(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if queued {
		return club, nil
	}

	switch club.StateOf(caller.UserID) {
	case model.MembershipMember:
		return nil, ErrAlreadyMember
	case model.MembershipPending:
		return nil, ErrRequestExists
	}
	// Precondition failed for a reason other than membership: inactive club
	return nil, ErrClubNotFound
}

// ResolveRequest approves (PENDING to MEMBER) or rejects (PENDING to NONE)
// userID's pending request.
func (s *ClubService) ResolveRequest(ctx context.Context, caller access.Caller, clubID, userID string, action model.ApprovalAction) (*model.Club, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingFields
	}
	if !action.IsValid() {
		return nil, ErrInvalidAction
	}

	club, err := s.load(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if !access.CanManageClub(caller, club) {
		return nil, ErrAccessDenied
	}

	var applied bool
	if action == model.ApprovalApprove {
		applied, err = s.clubs.ApproveRequest(ctx, clubID, userID)
	} else {
		applied, err = s.clubs.RejectRequest(ctx, clubID, userID)
	}
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrRequestNotFound
	}
	return club, nil
}

// RemoveMember moves userID from MEMBER to NONE
func (s *ClubService) RemoveMember(ctx context.Context, caller access.Caller, clubID, userID string) (*model.Club, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingFields
	}

	club, err := s.load(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if !access.CanManageClub(caller, club) {
		return nil, ErrAccessDenied
	}

	removed, err := s.clubs.RemoveMember(ctx, clubID, userID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, ErrNotAMember
	}
	return club, nil
}

// CreateClub creates an active club headed by headID
func (s *ClubService) CreateClub(ctx context.Context, name, description, headID string) (*model.Club, error) {
	name = strings.TrimSpace(name)
	if name == "" || headID == "" {
		return nil, ErrMissingFields
	}

	club := &model.Club{Name: name, Description: strings.TrimSpace(description), HeadID: headID}
	if err := s.clubs.Create(ctx, club); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrClubNameExists
		}
		return nil, fmt.Errorf("create club: %w", err)
	}
	return club, nil
}

// HeadedClub returns the active club the caller heads, or nil
func (s *ClubService) HeadedClub(ctx context.Context, caller access.Caller) (*model.Club, error) {
	if caller.Role != model.RoleClubHead {
		return nil, nil
	}
	return s.clubs.GetByHead(ctx, caller.UserID)
}

// AddressableClubs returns the clubs the caller reads or writes messages for:
// every active club for the PR council, the headed club for a club head and
// the joined clubs for a student.
func (s *ClubService) AddressableClubs(ctx context.Context, caller access.Caller) ([]*model.Club, error) {
	switch caller.Role {
	case model.RolePRCouncil:
		return s.clubs.ListActive(ctx)
	case model.RoleClubHead:
		club, err := s.HeadedClub(ctx, caller)
		if err != nil || club == nil {
			return []*model.Club{}, err
		}
		return []*model.Club{club}, nil
	default:
		return s.clubs.ListActiveByMember(ctx, caller.UserID)
	}
}

func (s *ClubService) load(ctx context.Context, clubID string) (*model.Club, error) {
	club, err := s.clubs.GetByID(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if club == nil || !club.IsActive {
		return nil, ErrClubNotFound
	}
	return club, nil
}

func (s *ClubService) summaries(ctx context.Context, ids []string) (map[string]model.UserSummary, error) {
	users, err := s.users.GetByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.UserSummary, len(users))
	for _, u := range users {
		out[u.ID] = u.Summary()
	}
	return out, nil
}

func headIDs(clubs []*model.Club) []string {
	ids := make([]string, 0, len(clubs))
	for _, c := range clubs {
		ids = append(ids, c.HeadID)
	}
	return ids
}

// pick returns the summaries of ids in order, skipping unresolved ids
func pick(users map[string]model.UserSummary, ids []string) []model.UserSummary {
	out := make([]model.UserSummary, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			out = append(out, u)
		}
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
