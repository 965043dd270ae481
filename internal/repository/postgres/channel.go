package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"channelwatch/internal/domain/channel"
	"channelwatch/pkg/errors"
)

// Compile-time check
var _ channel.Repository = (*ChannelRepository)(nil)

// ChannelRepository implements channel.Repository using sqlx. The current
// snapshot and the bounded history live in jsonb columns; scheduling fields
// stay relational so GetActive filters in SQL.
type ChannelRepository struct {
	db DBTX
}

// NewChannelRepository creates a new channel repository
func NewChannelRepository(db DBTX) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// channelRow is the database shape of a tracked channel
type channelRow struct {
	ID             string          `db:"id"`
	Title          string          `db:"title"`
	Tier           int             `db:"tier"`
	IsActive       bool            `db:"is_active"`
	LastPromotedAt time.Time       `db:"last_promoted_at"`
	LastPostedAt   time.Time       `db:"last_posted_at"`
	Current        json.RawMessage `db:"current"`
	History        json.RawMessage `db:"history"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (row *channelRow) toDomain() (*channel.Channel, error) {
	ch := &channel.Channel{
		ID:             row.ID,
		Title:          row.Title,
		Tier:           channel.Tier(row.Tier),
		IsActive:       row.IsActive,
		LastPromotedAt: row.LastPromotedAt,
		LastPostedAt:   row.LastPostedAt,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}

	if len(row.Current) > 0 {
		if err := json.Unmarshal(row.Current, &ch.Current); err != nil {
			return nil, errors.Wrapf(err, "decode current snapshot for channel %s", row.ID)
		}
	}
	if len(row.History) > 0 {
		if err := json.Unmarshal(row.History, &ch.History); err != nil {
			return nil, errors.Wrapf(err, "decode history for channel %s", row.ID)
		}
	}
	return ch, nil
}

func encodeSnapshots(ch *channel.Channel) (current, history []byte, err error) {
	current, err = json.Marshal(ch.Current)
	if err != nil {
		return nil, nil, errors.Wrap(err, "encode current snapshot")
	}

	hist := ch.History
	if hist == nil {
		hist = []channel.MetricSnapshot{}
	}
	history, err = json.Marshal(hist)
	if err != nil {
		return nil, nil, errors.Wrap(err, "encode history")
	}
	return current, history, nil
}

// GetActive retrieves all channels eligible for scheduling
func (r *ChannelRepository) GetActive(ctx context.Context) ([]*channel.Channel, error) {
	var rows []channelRow

	query := `
		SELECT * FROM channels
		WHERE is_active = true
		ORDER BY tier ASC, id ASC`

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	out := make([]*channel.Channel, 0, len(rows))
	for i := range rows {
		ch, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, nil
}

// GetByID retrieves a channel by id
func (r *ChannelRepository) GetByID(ctx context.Context, id string) (*channel.Channel, error) {
	var row channelRow

	query := `SELECT * FROM channels WHERE id = $1`

	err := r.db.GetContext(ctx, &row, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "channel %s", id)
	}
	if err != nil {
		return nil, err
	}

	return row.toDomain()
}

// Create inserts a new tracked channel
func (r *ChannelRepository) Create(ctx context.Context, ch *channel.Channel) error {
	current, history, err := encodeSnapshots(ch)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO channels (
			id, title, tier, is_active,
			last_promoted_at, last_posted_at,
			current, history,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)`

	_, err = r.db.ExecContext(ctx, query,
		ch.ID, ch.Title, int(ch.Tier), ch.IsActive,
		ch.LastPromotedAt, ch.LastPostedAt,
		current, history,
		ch.CreatedAt, ch.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return errors.Wrapf(errors.ErrAlreadyExists, "channel %s", ch.ID)
	}
	return err
}

// UpdateSnapshot replaces the current snapshot and pushes the previous one
// into the bounded history. The scheduler never issues concurrent writes for
// one channel id, so read-modify-write is safe here.
func (r *ChannelRepository) UpdateSnapshot(ctx context.Context, id string, snap channel.MetricSnapshot) (*channel.Channel, error) {
	ch, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ch.PushHistory(ch.Current)
	ch.Current = snap
	ch.UpdatedAt = time.Now().UTC()

	current, history, err := encodeSnapshots(ch)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE channels SET
			current = $2,
			history = $3,
			updated_at = $4
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, current, history, ch.UpdatedAt); err != nil {
		return nil, err
	}
	return ch, nil
}

// UpdateFields applies a partial update; nil fields are left untouched
func (r *ChannelRepository) UpdateFields(ctx context.Context, id string, fields channel.FieldUpdate) (*channel.Channel, error) {
	ch, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	set := []string{"updated_at = $2"}
	args := []interface{}{id, time.Now().UTC()}
	argIdx := 3

	add := func(col string, val interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, val)
		argIdx++
	}

	if fields.Title != nil {
		add("title", *fields.Title)
		ch.Title = *fields.Title
	}
	if fields.Tier != nil {
		add("tier", int(*fields.Tier))
		ch.Tier = *fields.Tier
	}
	if fields.IsActive != nil {
		add("is_active", *fields.IsActive)
		ch.IsActive = *fields.IsActive
	}
	if fields.LastPromotedAt != nil {
		add("last_promoted_at", *fields.LastPromotedAt)
		ch.LastPromotedAt = *fields.LastPromotedAt
	}
	if fields.LastPostedAt != nil {
		add("last_posted_at", *fields.LastPostedAt)
		ch.LastPostedAt = *fields.LastPostedAt
	}

	// Video pointer lives inside the current snapshot jsonb
	if fields.LastVideoID != nil || fields.LastVideoAt != nil {
		if fields.LastVideoID != nil {
			ch.Current.LastVideoID = *fields.LastVideoID
		}
		if fields.LastVideoAt != nil {
			ch.Current.LastVideoAt = *fields.LastVideoAt
		}
		current, err := json.Marshal(ch.Current)
		if err != nil {
			return nil, errors.Wrap(err, "encode current snapshot")
		}
		add("current", current)
	}

	ch.UpdatedAt = args[1].(time.Time)

	query := fmt.Sprintf("UPDATE channels SET %s WHERE id = $1", strings.Join(set, ", "))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}
	return ch, nil
}

// Count returns the number of tracked channels, active or not
func (r *ChannelRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM channels`); err != nil {
		return 0, err
	}
	return count, nil
}
