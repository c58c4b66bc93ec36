package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/clubhub/api/internal/access"
	"github.com/forgo/clubhub/api/internal/model"
	"github.com/forgo/clubhub/api/pkg/jwt"
)

const testPassword = "PR123$"

// testCampus wires every service over in-memory repositories
type testCampus struct {
	users        *mockUserRepo
	clubs        *mockClubRepo
	events       *mockEventRepo
	messages     *mockMessageRepo
	achievements *mockAchievementRepo

	tokens     *TokenService
	auth       *AuthService
	clubSvc    *ClubService
	eventSvc   *EventService
	messageSvc *MessageService
	hallOfFame *HallOfFameService
	seeder     *SeederService
}

func newTestCampus(t *testing.T) *testCampus {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate test RSA key: %v", err)
	}

	c := &testCampus{
		users:        newMockUserRepo(),
		events:       newMockEventRepo(),
		messages:     newMockMessageRepo(),
		achievements: newMockAchievementRepo(),
	}
	c.clubs = newMockClubRepo(c.users)

	c.tokens = NewTokenService(TokenServiceConfig{
		JWTService: jwt.NewTestService(privateKey, "clubhub-test", jwt.DefaultExpiration),
		Users:      c.users,
	})
	c.auth = NewAuthService(AuthServiceConfig{
		Users:        c.users,
		Hasher:       NewBcryptHasher(bcrypt.MinCost),
		TokenService: c.tokens,
	})
	c.clubSvc = NewClubService(ClubServiceConfig{Clubs: c.clubs, Users: c.users})
	c.eventSvc = NewEventService(EventServiceConfig{Events: c.events, Clubs: c.clubs, Users: c.users})
	c.messageSvc = NewMessageService(MessageServiceConfig{Messages: c.messages, Clubs: c.clubSvc, Users: c.users})
	c.hallOfFame = NewHallOfFameService(c.achievements)
	c.seeder = NewSeederService(SeederServiceConfig{Users: c.users, Clubs: c.clubs, Auth: c.auth})
	return c
}

func (c *testCampus) student(t *testing.T, name, roll string) *model.User {
	t.Helper()
	u := &model.User{Name: name, RollNumber: &roll, Role: model.RoleStudent}
	if err := c.auth.CreateUser(context.Background(), u, testPassword); err != nil {
		t.Fatalf("create student: %v", err)
	}
	return u
}

func (c *testCampus) council(t *testing.T, name, clubName string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{Name: name, ClubName: &clubName, Role: role}
	if err := c.auth.CreateUser(context.Background(), u, testPassword); err != nil {
		t.Fatalf("create council member: %v", err)
	}
	return u
}

// club creates a club and its head, returning both
func (c *testCampus) club(t *testing.T, name string) (*model.Club, *model.User) {
	t.Helper()
	head := c.council(t, name+" Club Head", name, model.RoleClubHead)
	club, err := c.clubSvc.CreateClub(context.Background(), name, name+" club", head.ID)
	if err != nil {
		t.Fatalf("create club: %v", err)
	}
	return club, head
}

// member makes user a member of club through the request/approve transitions
func (c *testCampus) member(t *testing.T, club *model.Club, head, user *model.User) {
	t.Helper()
	ctx := context.Background()
	if _, err := c.clubSvc.RequestJoin(ctx, callerOf(user), club.ID); err != nil {
		t.Fatalf("request join: %v", err)
	}
	if _, err := c.clubSvc.ResolveRequest(ctx, callerOf(head), club.ID, user.ID, model.ApprovalApprove); err != nil {
		t.Fatalf("approve: %v", err)
	}
}

func callerOf(u *model.User) access.Caller {
	return access.Caller{UserID: u.ID, Role: u.Role}
}
