package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/clubhub/api/internal/database"
	"github.com/forgo/clubhub/api/internal/model"
	"github.com/forgo/clubhub/api/internal/repository"
)

// DefaultPassword is the plaintext password given to fixture users
const DefaultPassword = "PR123$"

// Factory creates test entities in the database
type Factory struct {
	Users        *repository.UserRepository
	Clubs        *repository.ClubRepository
	Events       *repository.EventRepository
	Messages     *repository.MessageRepository
	Achievements *repository.AchievementRepository
}

// New creates a new fixture factory
func New(db database.Database) *Factory {
	return &Factory{
		Users:        repository.NewUserRepository(db),
		Clubs:        repository.NewClubRepository(db),
		Events:       repository.NewEventRepository(db),
		Messages:     repository.NewMessageRepository(db),
		Achievements: repository.NewAchievementRepository(db),
	}
}

func randomID() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

// ============================================================================
// User Fixtures
// ============================================================================

func (f *Factory) createUser(t *testing.T, user *model.User) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("fixtures: failed to hash password: %v", err)
	}
	user.Hash = string(hash)

	if err := f.Users.Create(ctx(t), user); err != nil {
		t.Fatalf("fixtures: failed to create user: %v", err)
	}
	return user
}

// CreateStudent creates a student with a random roll number
func (f *Factory) CreateStudent(t *testing.T) *model.User {
	t.Helper()
	roll := "21A91A" + randomID()
	return f.createUser(t, &model.User{
		Name:       "Student " + roll,
		RollNumber: &roll,
		Role:       model.RoleStudent,
	})
}

// CreateClubHead creates a club head for clubName
func (f *Factory) CreateClubHead(t *testing.T, clubName string) *model.User {
	t.Helper()
	return f.createUser(t, &model.User{
		Name:     clubName + " Head",
		ClubName: &clubName,
		Role:     model.RoleClubHead,
	})
}

// CreateCouncil creates a PR council member
func (f *Factory) CreateCouncil(t *testing.T) *model.User {
	t.Helper()
	club := "PR Council"
	return f.createUser(t, &model.User{
		Name:     "Council " + randomID(),
		ClubName: &club,
		Role:     model.RolePRCouncil,
	})
}

// ============================================================================
// Club Fixtures
// ============================================================================

// CreateClub creates an active club headed by head, named after head.ClubName
func (f *Factory) CreateClub(t *testing.T, head *model.User) *model.Club {
	t.Helper()

	name := "Club " + randomID()
	if head.ClubName != nil {
		name = *head.ClubName
	}
	club := &model.Club{
		Name:        name,
		Description: fmt.Sprintf("%s test club", name),
		HeadID:      head.ID,
	}
	if err := f.Clubs.Create(ctx(t), club); err != nil {
		t.Fatalf("fixtures: failed to create club: %v", err)
	}
	return club
}

// AddMember runs a join request and approval for user
func (f *Factory) AddMember(t *testing.T, club *model.Club, user *model.User) {
	t.Helper()
	c := ctx(t)
	if ok, err := f.Clubs.AddJoinRequest(c, club.ID, user.ID); err != nil || !ok {
		t.Fatalf("fixtures: join request failed: ok=%v err=%v", ok, err)
	}
	if ok, err := f.Clubs.ApproveRequest(c, club.ID, user.ID); err != nil || !ok {
		t.Fatalf("fixtures: approve failed: ok=%v err=%v", ok, err)
	}
}

// ============================================================================
// Event Fixtures
// ============================================================================

// EventOpts customizes event creation
type EventOpts struct {
	Date        string
	StartTime   string
	MaxCapacity int
}

// WithCapacity sets the event capacity
func WithCapacity(n int) func(*EventOpts) {
	return func(o *EventOpts) { o.MaxCapacity = n }
}

// WithDate sets the event date (YYYY-MM-DD)
func WithDate(date string) func(*EventOpts) {
	return func(o *EventOpts) { o.Date = date }
}

// WithStart sets the event start time (HH:MM)
func WithStart(clock string) func(*EventOpts) {
	return func(o *EventOpts) { o.StartTime = clock }
}

// CreateEvent creates an event for club
func (f *Factory) CreateEvent(t *testing.T, club *model.Club, creator *model.User, opts ...func(*EventOpts)) *model.Event {
	t.Helper()

	o := &EventOpts{
		Date:        time.Now().AddDate(0, 0, 7).Format(model.DateLayout),
		StartTime:   "10:00",
		MaxCapacity: model.DefaultEventCapacity,
	}
	for _, fn := range opts {
		fn(o)
	}

	event := &model.Event{
		Title:       "Event " + randomID(),
		Description: "Test event",
		Date:        o.Date,
		StartTime:   o.StartTime,
		EndTime:     "23:00",
		Venue:       "Main Auditorium",
		ClubID:      club.ID,
		CreatedBy:   creator.ID,
		MaxCapacity: o.MaxCapacity,
	}
	if err := f.Events.Create(ctx(t), event); err != nil {
		t.Fatalf("fixtures: failed to create event: %v", err)
	}
	return event
}

// ============================================================================
// Message Fixtures
// ============================================================================

// CreateMessage creates a message from sender. A nil club makes it college wide.
func (f *Factory) CreateMessage(t *testing.T, sender *model.User, club *model.Club, urgent bool) *model.Message {
	t.Helper()

	msg := &model.Message{
		Content:    "Notice " + randomID(),
		SenderID:   sender.ID,
		TargetType: model.TargetCollegeWide,
		IsUrgent:   urgent,
	}
	if club != nil {
		msg.TargetType = model.TargetClubSpecific
		msg.TargetID = &club.ID
	}
	if err := f.Messages.Create(ctx(t), msg); err != nil {
		t.Fatalf("fixtures: failed to create message: %v", err)
	}
	return msg
}

// ============================================================================
// Achievement Fixtures
// ============================================================================

// CreateAchievement creates a public achievement in category
func (f *Factory) CreateAchievement(t *testing.T, addedBy *model.User, category model.Category, public bool) *model.Achievement {
	t.Helper()

	a := &model.Achievement{
		Title:       "Award " + randomID(),
		Description: "Test achievement",
		Category:    category,
		Achiever:    model.Achiever{Name: "Test Achiever", Type: model.AchieverStudent},
		Date:        time.Now().Format(model.DateLayout),
		IsPublic:    public,
		AddedBy:     addedBy.ID,
	}
	if err := f.Achievements.Create(ctx(t), a); err != nil {
		t.Fatalf("fixtures: failed to create achievement: %v", err)
	}
	return a
}
