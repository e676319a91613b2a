package domain

import (
	"fmt"
	"unicode/utf8"
)

const MaxRoomNameLen = 64

// RoomName is an opaque room identifier. Rooms are created on first join.
type RoomName string

func NewRoomName(raw string) (RoomName, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: room name empty", ErrValidation)
	}
	if len(raw) > MaxRoomNameLen {
		return "", fmt.Errorf("%w: room name too long", ErrValidation)
	}
	if !utf8.ValidString(raw) {
		return "", fmt.Errorf("%w: room name is not valid utf-8", ErrValidation)
	}
	return RoomName(raw), nil
}

func (r RoomName) String() string { return string(r) }

// Favorite marks a room for a user.
type Favorite struct {
	Username Username
	Room     RoomName
}
