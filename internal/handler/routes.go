package handler

import (
	"net/http"

	"github.com/forgo/clubhub/api/internal/middleware"
	"github.com/forgo/clubhub/api/internal/model"
	"github.com/forgo/clubhub/api/internal/service"
)

// RouterConfig holds the services behind the API routes
type RouterConfig struct {
	Auth       *service.AuthService
	Tokens     middleware.TokenVerifier
	Clubs      *service.ClubService
	Events     *service.EventService
	Messages   *service.MessageService
	HallOfFame *service.HallOfFameService
	DB         Pinger
}

// NewRouter registers every API route. Per-route middleware handles
// authentication and role guards; the global chain is applied by the caller.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	authed := middleware.Auth(cfg.Tokens)
	protect := func(h http.HandlerFunc, roles ...model.Role) http.Handler {
		if len(roles) == 0 {
			return authed(h)
		}
		return middleware.Chain(h, authed, middleware.RequireRole(roles...))
	}
	council := []model.Role{model.RoleClubHead, model.RolePRCouncil}

	if cfg.DB != nil {
		mux.HandleFunc("GET /health", NewHealthHandler(cfg.DB).Health)
	}

	// Auth
	auth := NewAuthHandler(cfg.Auth)
	mux.HandleFunc("POST /v1/auth/login", auth.Login)
	mux.Handle("POST /v1/auth/change-password", protect(auth.ChangePassword))
	mux.Handle("GET /v1/auth/verify-token", protect(auth.VerifyToken))

	// Clubs
	clubs := NewClubHandler(cfg.Clubs)
	mux.Handle("GET /v1/clubs", protect(clubs.List))
	mux.Handle("GET /v1/clubs/my-clubs", protect(clubs.MyClubs))
	mux.Handle("GET /v1/clubs/{clubId}", protect(clubs.Get))
	mux.Handle("GET /v1/clubs/{clubId}/members", protect(clubs.Members))
	mux.Handle("POST /v1/clubs/{clubId}/join-request", protect(clubs.RequestJoin, model.RoleStudent))
	mux.Handle("PUT /v1/clubs/{clubId}/approve-member", protect(clubs.ResolveRequest, council...))
	mux.Handle("DELETE /v1/clubs/{clubId}/remove-member", protect(clubs.RemoveMember, council...))

	// Events
	events := NewEventHandler(cfg.Events)
	mux.Handle("GET /v1/events", protect(events.List))
	mux.Handle("GET /v1/events/calendar.ics", protect(events.Calendar))
	mux.Handle("GET /v1/events/date/{date}", protect(events.ListByDate))
	mux.Handle("GET /v1/events/{eventId}", protect(events.Get))
	mux.Handle("POST /v1/events", protect(events.Create, council...))
	mux.Handle("PUT /v1/events/{eventId}", protect(events.Update, council...))
	mux.Handle("DELETE /v1/events/{eventId}", protect(events.Delete, council...))
	mux.Handle("POST /v1/events/{eventId}/register", protect(events.Register, model.RoleStudent))
	mux.Handle("DELETE /v1/events/{eventId}/register", protect(events.Unregister, model.RoleStudent))
	// date/{date} would conflict with two literal sub-resources, so they
	// share one pattern
	eventResources := map[string]http.Handler{
		"pass":               middleware.RequireRole(model.RoleStudent)(http.HandlerFunc(events.Pass)),
		"registrations.xlsx": middleware.RequireRole(council...)(http.HandlerFunc(events.ExportRegistrations)),
	}
	mux.Handle("GET /v1/events/{eventId}/{resource}", authed(subResources(eventResources)))

	// Messages
	messages := NewMessageHandler(cfg.Messages)
	mux.Handle("POST /v1/messages", protect(messages.Send, council...))
	mux.Handle("GET /v1/messages", protect(messages.List))
	mux.Handle("GET /v1/messages/college-wide", protect(messages.CollegeWide))
	mux.Handle("GET /v1/messages/my-clubs", protect(messages.MyClubs))
	mux.Handle("GET /v1/messages/club/{clubId}", protect(messages.Club))
	mux.Handle("PUT /v1/messages/{messageId}/mark-read", protect(messages.MarkRead))

	// Hall of Fame
	fame := NewHallOfFameHandler(cfg.HallOfFame)
	mux.Handle("GET /v1/hall-of-fame/categories", protect(fame.Categories))
	mux.Handle("GET /v1/hall-of-fame", protect(fame.List))
	mux.Handle("GET /v1/hall-of-fame/{achievementId}", protect(fame.Get))
	mux.Handle("POST /v1/hall-of-fame", protect(fame.Create, model.RolePRCouncil))
	mux.Handle("PUT /v1/hall-of-fame/{achievementId}", protect(fame.Update, model.RolePRCouncil))
	mux.Handle("DELETE /v1/hall-of-fame/{achievementId}", protect(fame.Delete, model.RolePRCouncil))

	return mux
}

// subResources dispatches on the {resource} path value
func subResources(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.PathValue("resource")]
		if !ok {
			WriteError(w, model.NewNotFoundError(model.ErrCodeNotFound, "resource"))
			return
		}
		h.ServeHTTP(w, r)
	})
}
