package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/clubhub/api/internal/database"
	"github.com/forgo/clubhub/api/internal/model"
)

// UserRepository is the Credential Store
type UserRepository struct {
	db database.Database
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Create persists a user. The hash must already be computed.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.Hash == "" {
		return errors.New("refusing to persist a user without a password hash")
	}

	query := `
		CREATE user CONTENT {
			name: $name,
			roll_number: $roll_number,
			club_name: $club_name,
			role: $role,
			hash: $hash,
			is_password_changed: false,
			joined_clubs: [],
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"name":        user.Name,
		"roll_number": ptrToNone(user.RollNumber),
		"club_name":   ptrToNone(user.ClubName),
		"role":        user.Role,
		"hash":        user.Hash,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: user identity already exists", database.ErrDuplicate)
		}
		return err
	}

	records := statementRecords(result, 0)
	if len(records) == 0 {
		return errors.New("no result returned")
	}
	created, err := parseUserRecord(records[0])
	if err != nil {
		return err
	}

	user.ID = created.ID
	user.JoinedClubs = []string{}
	user.CreatedOn = created.CreatedOn
	user.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT * FROM type::record($id)`
	return r.getOne(ctx, query, map[string]interface{}{"id": id})
}

// GetStudent finds a student by name and roll number
func (r *UserRepository) GetStudent(ctx context.Context, name, rollNumber string) (*model.User, error) {
	query := `SELECT * FROM user WHERE name = $name AND roll_number = $roll_number AND role = $role LIMIT 1`
	return r.getOne(ctx, query, map[string]interface{}{
		"name":        name,
		"roll_number": rollNumber,
		"role":        model.RoleStudent,
	})
}

// GetCouncilMember finds a club head or PR council member by name and club name
func (r *UserRepository) GetCouncilMember(ctx context.Context, name, clubName string) (*model.User, error) {
	query := `SELECT * FROM user WHERE name = $name AND club_name = $club_name AND role IN $roles LIMIT 1`
	return r.getOne(ctx, query, map[string]interface{}{
		"name":      name,
		"club_name": clubName,
		"roles":     []model.Role{model.RoleClubHead, model.RolePRCouncil},
	})
}

// GetByIDs retrieves users by ID, skipping ids that no longer resolve
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}

	query := `SELECT * FROM user WHERE <string> id IN $ids ORDER BY name ASC`
	result, err := r.db.Query(ctx, query, map[string]interface{}{"ids": ids})
	if err != nil {
		return nil, err
	}

	records := statementRecords(result, 0)
	users := make([]*model.User, 0, len(records))
	for _, rec := range records {
		user, err := parseUserRecord(rec)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// UpdatePassword stores a new hash and marks the password as changed
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, hash string) error {
	if hash == "" {
		return errors.New("refusing to persist an empty password hash")
	}
	query := `UPDATE type::record($id) SET hash = $hash, is_password_changed = true, updated_on = time::now()`
	return r.db.Execute(ctx, query, map[string]interface{}{
		"id":   userID,
		"hash": hash,
	})
}

func (r *UserRepository) getOne(ctx context.Context, query string, vars map[string]interface{}) (*model.User, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseUserRecord(result)
}

func parseUserRecord(raw interface{}) (*model.User, error) {
	data, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}

	var user model.User
	if err := decodeRecord(data, &user); err != nil {
		return nil, err
	}
	// json:"-" keeps the hash out of the round trip
	user.Hash = getString(data, "hash")
	if user.JoinedClubs == nil {
		user.JoinedClubs = []string{}
	}
	return &user, nil
}
