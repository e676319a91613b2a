package sqlstore

import (
	"context"
	"slices"
	"strings"

	"github.com/dkeye/Chat/internal/domain"
	"gorm.io/gorm"
)

type MessageStore struct {
	db *gorm.DB
}

func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

func (s *MessageStore) Append(ctx context.Context, msg domain.Message) error {
	row := messageRow{
		ID:        msg.ID,
		Room:      string(msg.Room),
		Author:    string(msg.Author),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return persistence("append message", err)
	}
	return nil
}

func (s *MessageStore) Recent(ctx context.Context, room domain.RoomName, limit int) ([]domain.Message, error) {
	var rows []messageRow
	q := s.newestFirst(ctx, room)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, persistence("recent messages", err)
	}
	slices.Reverse(rows)
	return toDomain(rows), nil
}

// Search matches query as a case-insensitive substring, newest first.
// SQLite's LOWER and LIKE fold ASCII only, so there the rows are
// streamed and matched in Go.
func (s *MessageStore) Search(ctx context.Context, room domain.RoomName, query string, limit int) ([]domain.Message, error) {
	q := s.newestFirst(ctx, room)
	if query != "" && s.db.Dialector.Name() != DriverPostgres {
		return s.scanMatching(q, strings.ToLower(query), limit)
	}
	if query != "" {
		q = q.Where(`content ILIKE ? ESCAPE '\'`, containsPattern(query))
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []messageRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, persistence("search messages", err)
	}
	return toDomain(rows), nil
}

func (s *MessageStore) scanMatching(q *gorm.DB, needle string, limit int) ([]domain.Message, error) {
	rows, err := q.Model(&messageRow{}).Rows()
	if err != nil {
		return nil, persistence("search messages", err)
	}
	defer rows.Close()

	out := make([]domain.Message, 0)
	for rows.Next() {
		if limit > 0 && len(out) == limit {
			break
		}
		var row messageRow
		if err := s.db.ScanRows(rows, &row); err != nil {
			return nil, persistence("search messages", err)
		}
		if strings.Contains(strings.ToLower(row.Content), needle) {
			out = append(out, row.toDomain())
		}
	}
	if err := rows.Err(); err != nil {
		return nil, persistence("search messages", err)
	}
	return out, nil
}

func (s *MessageStore) All(ctx context.Context, room domain.RoomName) ([]domain.Message, error) {
	var rows []messageRow
	err := s.db.WithContext(ctx).
		Where("room = ?", string(room)).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, persistence("all messages", err)
	}
	return toDomain(rows), nil
}

func (s *MessageStore) newestFirst(ctx context.Context, room domain.RoomName) *gorm.DB {
	return s.db.WithContext(ctx).
		Where("room = ?", string(room)).
		Order("created_at DESC").Order("id DESC")
}

func toDomain(rows []messageRow) []domain.Message {
	out := make([]domain.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}
