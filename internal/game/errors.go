package game

import "errors"

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionClosed     = errors.New("session closed")
	ErrTooManySessions   = errors.New("too many active sessions")
	ErrInvalidRingCount  = errors.New("invalid ring count")
	ErrUnknownLayout     = errors.New("unknown layout")
	ErrUnknownDirection  = errors.New("unknown direction")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrInvalidTuning     = errors.New("invalid tuning")
	ErrInvalidBubbleArgs = errors.New("invalid bubble settings")
	ErrInvalidControl    = errors.New("invalid control")
	ErrCommandQueueFull  = errors.New("command queue full")
)
