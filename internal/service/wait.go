package service

import (
	"context"
	"time"
)

// WaitStrategy decides how long the dispatcher pauses between batches.
type WaitStrategy interface {
	Wait(ctx context.Context)
}

const DefaultBatchDelay = time.Second

// ConstantDelay waits the same fixed duration every time.
type ConstantDelay struct {
	Delay time.Duration
}

func (c ConstantDelay) Wait(ctx context.Context) {
	if c.Delay <= 0 {
		return
	}
	timer := time.NewTimer(c.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
