package pipeline

import (
	"context"
	"time"
)

type Result struct {
	IsAllowed      bool
	Reason         string
	FilterName     string
	ShouldDelete   bool
	Action         string
	ActionDuration time.Duration

	// ShouldWarn asks the caller to record a warning against the sender;
	// set by the lock filter when the chat has lock warns enabled.
	ShouldWarn bool
	WarnReason string
}

type Filter interface {
	Name() string
	Process(ctx context.Context, payload Payload) (*Result, error)
}
