package service

import (
	"context"
	"fmt"
	"time"

	"github.com/forgo/clubhub/api/internal/model"
)

// SeederService creates the demo campus used in development
type SeederService struct {
	users UserRepository
	clubs ClubRepository
	auth  *AuthService
}

// SeederServiceConfig holds configuration for the seeder
type SeederServiceConfig struct {
	Users UserRepository
	Clubs ClubRepository
	Auth  *AuthService
}

// NewSeederService creates a new seeder service
func NewSeederService(cfg SeederServiceConfig) *SeederService {
	return &SeederService{users: cfg.Users, clubs: cfg.Clubs, auth: cfg.Auth}
}

// SeedResult contains the results of a seeding operation
type SeedResult struct {
	Created  int      `json:"created"`
	Existing int      `json:"existing"`
	IDs      []string `json:"ids"`
	Duration int64    `json:"duration_ms"`
}

type seedStudent struct {
	name string
	roll string
}

type seedClub struct {
	name        string
	description string
}

// Demo campus
var (
	seedStudents = []seedStudent{
		{"John Doe", "21A91A0501"},
		{"Jane Smith", "21A91A0502"},
		{"Mike Johnson", "21A91A0503"},
		{"Sarah Wilson", "21A91A0504"},
		{"David Brown", "21A91A0505"},
	}
	seedClubs = []seedClub{
		{"SAIL", "Software and AI Learning Club - Focused on programming, AI, and software development"},
		{"VAAN", "Aerospace and Aviation Club - Dedicated to aerospace engineering and aviation"},
		{"LIFE", "Literary and Cultural Club - Promoting literature, arts, and cultural activities"},
		{"KRYPT", "Cybersecurity and Cryptography Club - Focused on security and cryptographic research"},
	}
)

const (
	seedCouncilName = "PR Council Member"
	seedCouncilClub = "PR COUNCIL"
)

// SeedCampus creates the demo students, club heads, PR council member and
// clubs. Records found by their login identity are left untouched, so the
// seed can be re-run.
func (s *SeederService) SeedCampus(ctx context.Context, password string) (*SeedResult, error) {
	start := time.Now()
	result := &SeedResult{IDs: []string{}}

	for _, st := range seedStudents {
		existing, err := s.users.GetStudent(ctx, st.name, st.roll)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			result.Existing++
			continue
		}
		roll := st.roll
		user := &model.User{Name: st.name, RollNumber: &roll, Role: model.RoleStudent}
		if err := s.create(ctx, result, user, password); err != nil {
			return nil, err
		}
	}

	council := &model.User{Name: seedCouncilName, Role: model.RolePRCouncil}
	if err := s.seedCouncilMember(ctx, result, council, seedCouncilClub, password); err != nil {
		return nil, err
	}

	for _, c := range seedClubs {
		head := &model.User{Name: c.name + " Club Head", Role: model.RoleClubHead}
		if err := s.seedCouncilMember(ctx, result, head, c.name, password); err != nil {
			return nil, err
		}

		existing, err := s.clubs.GetByName(ctx, c.name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			result.Existing++
			continue
		}
		club := &model.Club{Name: c.name, Description: c.description, HeadID: head.ID}
		if err := s.clubs.Create(ctx, club); err != nil {
			return nil, fmt.Errorf("seed club %s: %w", c.name, err)
		}
		result.Created++
		result.IDs = append(result.IDs, club.ID)
	}

	result.Duration = time.Since(start).Milliseconds()
	return result, nil
}

// seedCouncilMember creates user unless one with the same name and club
// exists; user.ID is set either way.
func (s *SeederService) seedCouncilMember(ctx context.Context, result *SeedResult, user *model.User, clubName, password string) error {
	existing, err := s.users.GetCouncilMember(ctx, user.Name, clubName)
	if err != nil {
		return err
	}
	if existing != nil {
		user.ID = existing.ID
		result.Existing++
		return nil
	}
	user.ClubName = &clubName
	return s.create(ctx, result, user, password)
}

func (s *SeederService) create(ctx context.Context, result *SeedResult, user *model.User, password string) error {
	if err := s.auth.CreateUser(ctx, user, password); err != nil {
		return fmt.Errorf("seed user %s: %w", user.Name, err)
	}
	result.Created++
	result.IDs = append(result.IDs, user.ID)
	return nil
}
