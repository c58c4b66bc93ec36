// Package fixtures provides test data factories for repository tests.
//
// Factory methods persist entities through the repositories with sensible
// defaults and accept option functions for customization:
//
//	f := fixtures.New(tdb.DB)
//	head := f.CreateClubHead(t, "SAIL")
//	club := f.CreateClub(t, head)
//	event := f.CreateEvent(t, club, head, fixtures.WithCapacity(1))
package fixtures
