package domain

import (
	"regexp"
	"time"
)

// SystemAuthor is the author shown on join and departure notices.
// System notices are never persisted.
const SystemAuthor = "System"

const MaxMessageLen = 4000

// Message is an immutable, persisted chat line.
type Message struct {
	ID        string
	Room      RoomName
	Author    Username
	Content   string
	CreatedAt time.Time
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Sanitize strips anything that looks like a markup tag. It is not an HTML
// parser: a lone '<' without a closing '>' survives untouched. The result
// never contains '<' followed by '>', so Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(text string) string {
	return tagPattern.ReplaceAllString(text, "")
}
