package app

import (
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
)

type BackpressureAction int

const (
	// NoAction ignores the failed send.
	NoAction BackpressureAction = iota
	// DropFrame loses the frame but keeps the member in the room.
	DropFrame
	// KickMember closes the member's connection.
	KickMember
)

// Policy decides what happens to a member whose outbound queue is full.
type Policy interface {
	OnBackPressure(room domain.RoomName, member core.Member) BackpressureAction
}

// SimplePolicy kicks every slow member.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.RoomName, core.Member) BackpressureAction {
	return KickMember
}
