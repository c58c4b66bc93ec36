package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/clubhub/api/internal/database"
	"github.com/forgo/clubhub/api/internal/model"
)

// ClubRepository is the Membership Store. Every state transition is a single
// conditional statement or a guarded transaction, so concurrent requests can
// never leave a user both pending and a member.
type ClubRepository struct {
	db database.Database
}

// NewClubRepository creates a new club repository
func NewClubRepository(db database.Database) *ClubRepository {
	return &ClubRepository{db: db}
}

// Create creates a new club
func (r *ClubRepository) Create(ctx context.Context, club *model.Club) error {
	query := `
		CREATE club CONTENT {
			name: $name,
			description: $description,
			head_id: $head_id,
			members: [],
			pending_requests: [],
			is_active: true,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"name":        club.Name,
		"description": club.Description,
		"head_id":     club.HeadID,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: club name already exists", database.ErrDuplicate)
		}
		return err
	}

	records := statementRecords(result, 0)
	if len(records) == 0 {
		return errors.New("no result returned")
	}
	created, err := parseClubRecord(records[0])
	if err != nil {
		return err
	}
	*club = *created
	return nil
}

// GetByID retrieves a club by ID
func (r *ClubRepository) GetByID(ctx context.Context, id string) (*model.Club, error) {
	return r.getOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{"id": id})
}

// GetByName retrieves a club by its unique name
func (r *ClubRepository) GetByName(ctx context.Context, name string) (*model.Club, error) {
	return r.getOne(ctx, `SELECT * FROM club WHERE name = $name LIMIT 1`, map[string]interface{}{"name": name})
}

// GetByHead retrieves the active club headed by headID
func (r *ClubRepository) GetByHead(ctx context.Context, headID string) (*model.Club, error) {
	query := `SELECT * FROM club WHERE head_id = $head_id AND is_active = true ORDER BY name ASC LIMIT 1`
	return r.getOne(ctx, query, map[string]interface{}{"head_id": headID})
}

// ListActive returns active clubs sorted by name
func (r *ClubRepository) ListActive(ctx context.Context) ([]*model.Club, error) {
	return r.list(ctx, `SELECT * FROM club WHERE is_active = true ORDER BY name ASC`, nil)
}

// ListActiveByMember returns active clubs where userID is a member
func (r *ClubRepository) ListActiveByMember(ctx context.Context, userID string) ([]*model.Club, error) {
	query := `SELECT * FROM club WHERE is_active = true AND $user_id INSIDE members ORDER BY name ASC`
	return r.list(ctx, query, map[string]interface{}{"user_id": userID})
}

// AddJoinRequest queues a join request iff the user is neither a member nor
// already pending. It reports whether the request was queued.
func (r *ClubRepository) AddJoinRequest(ctx context.Context, clubID, userID string) (bool, error) {
	query := `
		UPDATE type::record($club_id) SET
			pending_requests += { user_id: $user_id, requested_on: time::now() },
			updated_on = time::now()
		WHERE is_active = true
			AND $user_id NOTINSIDE members
			AND $user_id NOTINSIDE pending_requests.user_id
		RETURN AFTER
	`
	result, err := r.db.Query(ctx, query, map[string]interface{}{
		"club_id": clubID,
		"user_id": userID,
	})
	if err != nil {
		return false, err
	}
	return len(statementRecords(result, 0)) > 0, nil
}

// ApproveRequest moves a pending user into the member set and adds the club
// to the user's joined clubs in one transaction. It reports false when the
// user had no pending request.
func (r *ClubRepository) ApproveRequest(ctx context.Context, clubID, userID string) (bool, error) {
	vars := map[string]interface{}{"club_id": clubID, "user_id": userID}

	tb := database.NewTxBuilder()
	tb.Add(`LET $moved = (UPDATE type::record($club_id) SET
			members = array::union(members, [$user_id]),
			pending_requests = pending_requests[WHERE user_id != $user_id],
			updated_on = time::now()
		WHERE $user_id INSIDE pending_requests.user_id
		RETURN AFTER)`, vars)
	tb.AbortIfEmpty("$moved")
	tb.Add(`UPDATE type::record($user_id) SET
			joined_clubs = array::union(joined_clubs, [$club_id]),
			updated_on = time::now()`, vars)

	return r.runGuarded(ctx, tb)
}

// RejectRequest drops a pending request without granting membership
func (r *ClubRepository) RejectRequest(ctx context.Context, clubID, userID string) (bool, error) {
	query := `
		UPDATE type::record($club_id) SET
			pending_requests = pending_requests[WHERE user_id != $user_id],
			updated_on = time::now()
		WHERE $user_id INSIDE pending_requests.user_id
		RETURN AFTER
	`
	result, err := r.db.Query(ctx, query, map[string]interface{}{
		"club_id": clubID,
		"user_id": userID,
	})
	if err != nil {
		return false, err
	}
	return len(statementRecords(result, 0)) > 0, nil
}

// RemoveMember removes a member from the club and the club from the user's
// joined clubs in one transaction. It reports false when the user was not a
// member.
func (r *ClubRepository) RemoveMember(ctx context.Context, clubID, userID string) (bool, error) {
	vars := map[string]interface{}{"club_id": clubID, "user_id": userID}

	tb := database.NewTxBuilder()
	tb.Add(`LET $removed = (UPDATE type::record($club_id) SET
			members -= $user_id,
			updated_on = time::now()
		WHERE $user_id INSIDE members
		RETURN AFTER)`, vars)
	tb.AbortIfEmpty("$removed")
	tb.Add(`UPDATE type::record($user_id) SET
			joined_clubs -= $club_id,
			updated_on = time::now()`, vars)

	return r.runGuarded(ctx, tb)
}

func (r *ClubRepository) runGuarded(ctx context.Context, tb *database.TxBuilder) (bool, error) {
	if _, err := database.ExecuteTransaction(ctx, r.db, tb); err != nil {
		if errors.Is(err, database.ErrConditionFailed) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *ClubRepository) getOne(ctx context.Context, query string, vars map[string]interface{}) (*model.Club, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseClubRecord(result)
}

func (r *ClubRepository) list(ctx context.Context, query string, vars map[string]interface{}) ([]*model.Club, error) {
	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	records := statementRecords(result, 0)
	clubs := make([]*model.Club, 0, len(records))
	for _, rec := range records {
		club, err := parseClubRecord(rec)
		if err != nil {
			return nil, err
		}
		clubs = append(clubs, club)
	}
	return clubs, nil
}

func parseClubRecord(raw interface{}) (*model.Club, error) {
	var club model.Club
	if err := decodeRecord(raw, &club); err != nil {
		return nil, err
	}
	if club.Members == nil {
		club.Members = []string{}
	}
	if club.PendingRequests == nil {
		club.PendingRequests = []model.PendingRequest{}
	}
	return &club, nil
}
