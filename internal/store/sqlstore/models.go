package sqlstore

import (
	"time"

	"github.com/dkeye/Chat/internal/domain"
)

type messageRow struct {
	ID        string    `gorm:"primarykey;size:26"`
	Room      string    `gorm:"size:64;not null;index:idx_messages_room_created,priority:1"`
	Author    string    `gorm:"size:36;not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_messages_room_created,priority:2"`
}

func (messageRow) TableName() string { return "messages" }

func (r messageRow) toDomain() domain.Message {
	return domain.Message{
		ID:        r.ID,
		Room:      domain.RoomName(r.Room),
		Author:    domain.Username(r.Author),
		Content:   r.Content,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type accountRow struct {
	Username     string `gorm:"primarykey;size:36"`
	PasswordHash string `gorm:"size:72"`
	CreatedAt    time.Time
}

func (accountRow) TableName() string { return "users" }

type favoriteRow struct {
	Username  string `gorm:"primarykey;size:36"`
	Room      string `gorm:"primarykey;size:64"`
	CreatedAt time.Time
}

func (favoriteRow) TableName() string { return "favorite_rooms" }
