package retry

import (
	"context"
	"errors"
	"time"
)

// ErrBudgetExhausted is returned by Budget.Wait when no retries remain.
var ErrBudgetExhausted = errors.New("retry budget exhausted")

// Budget is a bounded number of fixed-delay retries shared by consecutive
// calls. Any successful call refills it through Reset.
type Budget struct {
	max       int
	remaining int
	delay     time.Duration
	sleep     SleepFunc
}

// NewBudget creates a budget of max retries, each preceded by delay.
// A nil sleep uses Sleep.
func NewBudget(maxRetries int, delay time.Duration, sleep SleepFunc) *Budget {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if sleep == nil {
		sleep = Sleep
	}
	return &Budget{max: maxRetries, remaining: maxRetries, delay: delay, sleep: sleep}
}

// Max returns the configured number of retries.
func (b *Budget) Max() int { return b.max }

// Remaining returns the retries left before the budget is exhausted.
func (b *Budget) Remaining() int { return b.remaining }

// Delay returns the wait before each retry.
func (b *Budget) Delay() time.Duration { return b.delay }

// Reset refills the budget.
func (b *Budget) Reset() { b.remaining = b.max }

// Wait consumes one retry and sleeps for the configured delay.
func (b *Budget) Wait(ctx context.Context) error {
	if b.remaining <= 0 {
		return ErrBudgetExhausted
	}
	if err := b.sleep(ctx, b.delay); err != nil {
		return err
	}
	b.remaining--
	return nil
}
