package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/forgo/clubhub/api/internal/database"
	"github.com/forgo/clubhub/api/internal/model"
)

// MessageRepository is the Message Store
type MessageRepository struct {
	db database.Database
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db database.Database) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create persists a new message with no read receipts
func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	query := `
		CREATE message CONTENT {
			content: $content,
			sender_id: $sender_id,
			target_type: $target_type,
			target_id: $target_id,
			is_urgent: $is_urgent,
			read_by: [],
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"content":     msg.Content,
		"sender_id":   msg.SenderID,
		"target_type": msg.TargetType,
		"target_id":   ptrToNone(msg.TargetID),
		"is_urgent":   msg.IsUrgent,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	records := statementRecords(result, 0)
	if len(records) == 0 {
		return errors.New("no result returned")
	}
	created, err := parseMessageRecord(records[0])
	if err != nil {
		return err
	}
	*msg = *created
	return nil
}

// GetByID retrieves a message by ID
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*model.Message, error) {
	result, err := r.db.QueryOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseMessageRecord(result)
}

// List returns one page of visible messages, newest first, with the total
// number of rows matching the same visibility and filter.
func (r *MessageRepository) List(ctx context.Context, vis model.MessageVisibility, filter model.MessageFilter, page model.PageRequest) ([]*model.Message, int, error) {
	page = page.Normalize()
	where, vars := messageConditions(vis, filter)
	vars["limit"] = page.Limit
	vars["start"] = page.Offset()

	query := `SELECT * FROM message WHERE ` + where + ` ORDER BY created_on DESC LIMIT $limit START $start;
		SELECT count() AS count FROM message WHERE ` + where + ` GROUP ALL;`

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, 0, err
	}

	records := statementRecords(result, 0)
	messages := make([]*model.Message, 0, len(records))
	for _, rec := range records {
		msg, err := parseMessageRecord(rec)
		if err != nil {
			return nil, 0, err
		}
		messages = append(messages, msg)
	}
	return messages, extractCount(result, 1), nil
}

// MarkRead appends a read receipt for userID unless one exists. It reports
// false only when the message does not exist.
func (r *MessageRepository) MarkRead(ctx context.Context, messageID, userID string) (bool, error) {
	query := `
		UPDATE type::record($id) SET
			read_by += { user_id: $user_id, read_on: time::now() }
		WHERE $user_id NOTINSIDE read_by.user_id
		RETURN AFTER
	`
	result, err := r.db.Query(ctx, query, map[string]interface{}{
		"id":      messageID,
		"user_id": userID,
	})
	if err != nil {
		return false, err
	}
	if len(statementRecords(result, 0)) > 0 {
		return true, nil
	}

	// Nothing matched: either already read or no such message
	existing, err := r.GetByID(ctx, messageID)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

// messageConditions builds the WHERE clause. Visibility is applied first and
// the filters only ever narrow it.
func messageConditions(vis model.MessageVisibility, filter model.MessageFilter) (string, map[string]interface{}) {
	vars := map[string]interface{}{
		"college_wide": model.TargetCollegeWide,
	}

	conditions := []string{}
	if !vis.AllClubs {
		clubs := vis.ClubIDs
		if clubs == nil {
			clubs = []string{}
		}
		vars["visible_clubs"] = clubs
		conditions = append(conditions, `(target_type = $college_wide OR target_id IN $visible_clubs)`)
	}
	if filter.TargetType != nil {
		conditions = append(conditions, `target_type = $target_type`)
		vars["target_type"] = *filter.TargetType
	}
	if filter.ClubID != nil {
		conditions = append(conditions, `target_id = $club_id`)
		vars["club_id"] = *filter.ClubID
	}
	if filter.Urgent != nil {
		conditions = append(conditions, `is_urgent = $urgent`)
		vars["urgent"] = *filter.Urgent
	}

	if len(conditions) == 0 {
		return "true", vars
	}
	return strings.Join(conditions, " AND "), vars
}

func parseMessageRecord(raw interface{}) (*model.Message, error) {
	var msg model.Message
	if err := decodeRecord(raw, &msg); err != nil {
		return nil, err
	}
	if msg.ReadBy == nil {
		msg.ReadBy = []model.ReadReceipt{}
	}
	return &msg, nil
}
