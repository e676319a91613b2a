package core

import "errors"

// Frame is a raw encoded event (one websocket text message).
type Frame []byte

// ErrBackpressure is returned by TrySend when the outbound queue is full.
var ErrBackpressure = errors.New("backpressure")

// ErrConnClosed is returned by TrySend after Close.
var ErrConnClosed = errors.New("connection closed")

// SignalConnection abstracts the bidirectional messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend enqueues without blocking. Delivery is best-effort.
	TrySend(Frame) error
	Close()
}
