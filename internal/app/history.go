package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
)

const (
	HistoryLimit = 100
	exportStamp  = "2006-01-02 15:04:05"
)

// HistoryEntry is a stored message as returned by the history API.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type History struct {
	messages core.MessageStore
	now      func() time.Time
}

func NewHistory(messages core.MessageStore) *History {
	return &History{messages: messages, now: time.Now}
}

// Search returns up to HistoryLimit messages of room, newest first,
// optionally filtered by a case-insensitive substring.
func (h *History) Search(ctx context.Context, rawRoom, query string) ([]HistoryEntry, error) {
	room, err := domain.NewRoomName(rawRoom)
	if err != nil {
		return nil, err
	}
	msgs, err := h.messages.Search(ctx, room, query, HistoryLimit)
	if err != nil {
		return nil, err
	}
	out := make([]HistoryEntry, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, HistoryEntry{
			ID:        m.ID,
			Room:      string(m.Room),
			Author:    string(m.Author),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

// Export writes the full transcript of room in chronological order and
// returns the suggested download file name.
func (h *History) Export(ctx context.Context, rawRoom string, w io.Writer) (string, error) {
	room, err := domain.NewRoomName(rawRoom)
	if err != nil {
		return "", err
	}
	msgs, err := h.messages.All(ctx, room)
	if err != nil {
		return "", err
	}
	now := h.now().UTC()

	var b strings.Builder
	fmt.Fprintf(&b, "Chat Export - Room: %s\n", room)
	fmt.Fprintf(&b, "Generated at: %s\n", now.Format(exportStamp))
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")
	for _, m := range msgs {
		fmt.Fprintf(&b, "[%s] %s: %s\n", m.CreatedAt.UTC().Format(exportStamp), m.Author, m.Content)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return "", err
	}
	return fmt.Sprintf("chat-%s-%d.txt", room, now.UnixMilli()), nil
}
