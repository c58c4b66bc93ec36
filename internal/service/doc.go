// Package service implements the business rules of the ClubHub API.
//
// Services sit between the HTTP handlers and the repositories. Each one is
// built from a config struct (NewXxxService), declares the repository
// interface it needs and receives the caller as an access.Caller.
//
// # Error Handling
//
// Failures the client can act on are sentinel errors from errors.go, for
// example ErrClubNotFound or ErrEventFull, and per-field problems are a
// *ValidationError. Store faults are wrapped with fmt.Errorf and surface
// as 500s.
//
// # Example Usage
//
//	clubs := NewClubService(ClubServiceConfig{
//	    Clubs: clubRepository,
//	    Users: userRepository,
//	})
//	club, err := clubs.RequestJoin(ctx, caller, "club:sail")
//	if errors.Is(err, ErrRequestExists) {
//	    // already queued
//	}
package service
