package stt

import (
	"context"
	"time"
)

// Transcriber is the one contract every provider adapter implements.
// Failures are always *Error. Adapters keep no state between calls.
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (*Result, error)
}

// Clock abstracts waiting so poll loops can be driven deterministically in
// tests. Sleep returns early with ctx.Err() when ctx is cancelled.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewClock returns the wall-clock implementation used outside tests.
func NewClock() Clock {
	return realClock{}
}
