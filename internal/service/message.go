package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/forgo/clubhub/api/internal/access"
	"github.com/forgo/clubhub/api/internal/model"
)

// MessageRepository defines the interface for the Message Store
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	GetByID(ctx context.Context, id string) (*model.Message, error)
	List(ctx context.Context, vis model.MessageVisibility, filter model.MessageFilter, page model.PageRequest) ([]*model.Message, int, error)
	MarkRead(ctx context.Context, messageID, userID string) (bool, error)
}

// MessageService sends broadcasts and filters them by audience
type MessageService struct {
	messages MessageRepository
	clubs    *ClubService
	users    UserRepository
}

// MessageServiceConfig holds configuration for the message service
type MessageServiceConfig struct {
	Messages MessageRepository
	Clubs    *ClubService
	Users    UserRepository
}

// NewMessageService creates a new message service
func NewMessageService(cfg MessageServiceConfig) *MessageService {
	return &MessageService{
		messages: cfg.Messages,
		clubs:    cfg.Clubs,
		users:    cfg.Users,
	}
}

// SendMessageRequest represents a broadcast to send
type SendMessageRequest struct {
	Content    string
	TargetType model.TargetType
	TargetID   *string
	IsUrgent   bool
}

// MessageView is a message as seen by one caller
type MessageView struct {
	Message   *model.Message
	Sender    *model.UserSummary
	ReadCount int
	IsRead    bool
}

// MessageList is one page of messages as seen by one caller
type MessageList struct {
	Page  *model.MessagePage
	Items []MessageView
}

// Send validates the audience and stores a broadcast
func (s *MessageService) Send(ctx context.Context, caller access.Caller, req SendMessageRequest) (*MessageView, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" || req.TargetType == "" {
		return nil, ErrMissingFields
	}
	if utf8.RuneCountInString(content) > model.MaxMessageLength {
		return nil, NewValidationError("content", fmt.Sprintf("must be at most %d characters", model.MaxMessageLength))
	}
	if !req.TargetType.IsValid() {
		return nil, ErrInvalidTargetType
	}

	msg := &model.Message{
		Content:    content,
		SenderID:   caller.UserID,
		TargetType: req.TargetType,
		IsUrgent:   req.IsUrgent,
	}

	switch req.TargetType {
	case model.TargetCollegeWide:
		if !access.CanSendCollegeWide(caller) {
			return nil, ErrInsufficientPermissions
		}
	case model.TargetClubSpecific:
		if req.TargetID == nil || strings.TrimSpace(*req.TargetID) == "" {
			return nil, ErrMissingTargetID
		}
		club, err := s.clubs.load(ctx, *req.TargetID)
		if err != nil {
			return nil, err
		}
		if !access.CanSendToClub(caller, club) {
			return nil, ErrAccessDenied
		}
		msg.TargetID = &club.ID
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	views, err := s.views(ctx, caller, []*model.Message{msg})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns the caller's visible messages, narrowed by filter
func (s *MessageService) List(ctx context.Context, caller access.Caller, filter model.MessageFilter, page model.PageRequest) (*MessageList, error) {
	vis, err := s.Visibility(ctx, caller)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, caller, vis, filter, page)
}

// CollegeWide returns the college_wide messages
func (s *MessageService) CollegeWide(ctx context.Context, caller access.Caller, page model.PageRequest) (*MessageList, error) {
	target := model.TargetCollegeWide
	return s.list(ctx, caller, model.MessageVisibility{ClubIDs: []string{}}, model.MessageFilter{TargetType: &target}, page)
}

// Club returns the messages targeted at one club. The PR council, the
// club's head and its student members may read them.
func (s *MessageService) Club(ctx context.Context, caller access.Caller, clubID string, page model.PageRequest) (*MessageList, error) {
	club, err := s.clubs.load(ctx, clubID)
	if err != nil {
		return nil, err
	}
	allowed := access.CanManageClub(caller, club) ||
		(caller.Role == model.RoleStudent && club.IsMember(caller.UserID))
	if !allowed {
		return nil, ErrAccessDenied
	}

	target := model.TargetClubSpecific
	vis := model.MessageVisibility{ClubIDs: []string{club.ID}}
	filter := model.MessageFilter{TargetType: &target, ClubID: &club.ID}
	return s.list(ctx, caller, vis, filter, page)
}

// MarkRead records that the caller read a visible message. Repeating it is
// a no-op.
func (s *MessageService) MarkRead(ctx context.Context, caller access.Caller, messageID string) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrMessageNotFound
	}

	vis, err := s.Visibility(ctx, caller)
	if err != nil {
		return err
	}
	if !access.CanSeeMessage(vis, msg) {
		return ErrAccessDenied
	}

	found, err := s.messages.MarkRead(ctx, messageID, caller.UserID)
	if err != nil {
		return err
	}
	if !found {
		return ErrMessageNotFound
	}
	return nil
}

// MyClubs returns the clubs the caller may read or address
func (s *MessageService) MyClubs(ctx context.Context, caller access.Caller) ([]*model.Club, error) {
	return s.clubs.AddressableClubs(ctx, caller)
}

// Visibility resolves the club_specific scope the caller may read
func (s *MessageService) Visibility(ctx context.Context, caller access.Caller) (model.MessageVisibility, error) {
	switch caller.Role {
	case model.RolePRCouncil:
		return access.MessageVisibility(caller, nil, nil), nil
	case model.RoleClubHead:
		headed, err := s.clubs.HeadedClub(ctx, caller)
		if err != nil {
			return model.MessageVisibility{}, err
		}
		return access.MessageVisibility(caller, nil, headed), nil
	default:
		user, err := s.users.GetByID(ctx, caller.UserID)
		if err != nil {
			return model.MessageVisibility{}, err
		}
		if user == nil {
			return model.MessageVisibility{}, ErrUserNotFound
		}
		return access.MessageVisibility(caller, user.JoinedClubs, nil), nil
	}
}

func (s *MessageService) list(ctx context.Context, caller access.Caller, vis model.MessageVisibility, filter model.MessageFilter, page model.PageRequest) (*MessageList, error) {
	page = page.Normalize()
	messages, total, err := s.messages.List(ctx, vis, filter, page)
	if err != nil {
		return nil, err
	}

	views, err := s.views(ctx, caller, messages)
	if err != nil {
		return nil, err
	}
	return &MessageList{
		Page:  model.NewMessagePage(messages, page, total),
		Items: views,
	}, nil
}

func (s *MessageService) views(ctx context.Context, caller access.Caller, messages []*model.Message) ([]MessageView, error) {
	ids := make([]string, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.SenderID)
	}
	senders, err := s.clubs.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		view := MessageView{
			Message:   m,
			ReadCount: len(m.ReadBy),
			IsRead:    m.IsReadBy(caller.UserID),
		}
		if u, ok := senders[m.SenderID]; ok {
			view.Sender = &u
		}
		out = append(out, view)
	}
	return out, nil
}
