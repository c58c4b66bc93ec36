package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/clubhub/api/internal/model"
	"github.com/forgo/clubhub/api/internal/service"
	"github.com/forgo/clubhub/api/internal/testing/helpers"
)

const testPassword = "PR123$"

// testAPI is the full router over in-memory stores
type testAPI struct {
	t      *testing.T
	store  *memStore
	jwt    *helpers.JWTHelper
	tokens *service.TokenService
	auth   *service.AuthService
	clubs  *service.ClubService
	router http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := newMemStore()
	users := memUsers{store}
	clubRepo := memClubs{store}
	jwtHelper := helpers.NewJWTHelper(t)

	tokens := service.NewTokenService(service.TokenServiceConfig{JWTService: jwtHelper.Service, Users: users})
	auth := service.NewAuthService(service.AuthServiceConfig{
		Users:        users,
		Hasher:       service.NewBcryptHasher(bcrypt.MinCost),
		TokenService: tokens,
	})
	clubs := service.NewClubService(service.ClubServiceConfig{Clubs: clubRepo, Users: users})
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Auth:   auth,
		Tokens: tokens,
		Clubs:  clubs,
		Events: service.NewEventService(service.EventServiceConfig{
			Events:   memEvents{store},
			Clubs:    clubRepo,
			Users:    users,
			Location: kolkata,
		}),
		Messages:   service.NewMessageService(service.MessageServiceConfig{Messages: memMessages{store}, Clubs: clubs, Users: users}),
		HallOfFame: service.NewHallOfFameService(memAchievements{store}),
		DB:         store,
	})

	return &testAPI{
		t:      t,
		store:  store,
		jwt:    jwtHelper,
		tokens: tokens,
		auth:   auth,
		clubs:  clubs,
		router: router,
	}
}

func (a *testAPI) student(name, roll string) *model.User {
	a.t.Helper()
	u := &model.User{Name: name, RollNumber: &roll, Role: model.RoleStudent}
	require.NoError(a.t, a.auth.CreateUser(context.Background(), u, testPassword))
	return u
}

func (a *testAPI) council(name, clubName string, role model.Role) *model.User {
	a.t.Helper()
	u := &model.User{Name: name, ClubName: &clubName, Role: role}
	require.NoError(a.t, a.auth.CreateUser(context.Background(), u, testPassword))
	return u
}

// club creates a club with its head
func (a *testAPI) club(name string) (*model.Club, *model.User) {
	a.t.Helper()
	head := a.council(name+" Club Head", name, model.RoleClubHead)
	club, err := a.clubs.CreateClub(context.Background(), name, name+" club", head.ID)
	require.NoError(a.t, err)
	return club, head
}

func (a *testAPI) token(u *model.User) string {
	a.t.Helper()
	return a.jwt.GenerateToken(a.t, u)
}

// do sends a request as user; a nil user sends it without a token
func (a *testAPI) do(method, path string, user *model.User, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	rb := helpers.NewRequest(a.t, method, path)
	if body != nil {
		rb = rb.WithBody(body)
	}
	if user != nil {
		rb = rb.WithToken(a.token(user))
	}
	return serve(a, rb.Build())
}

func serve(api *testAPI, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	api.router.ServeHTTP(rr, req)
	return rr
}
