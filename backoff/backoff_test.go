package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

type hintedError struct{ wait time.Duration }

func (e hintedError) Error() string             { return "slow down" }
func (e hintedError) RetryAfter() time.Duration { return e.wait }

func fastPolicy(attempts int) Policy {
	return Policy{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	calls := 0
	var retries []int

	attempts, err := fastPolicy(5).Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	}, nil, func(attempt int, err error, wait time.Duration) {
		retries = append(retries, attempt)
		assert.ErrorIs(t, err, errFlaky)
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, retries)
}

func TestDoExhaustsAttempts(t *testing.T) {
	attempts, err := fastPolicy(3).Do(context.Background(), func() error {
		return errFlaky
	}, nil, nil)

	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	permanent := errors.New("permanent")

	attempts, err := fastPolicy(5).Do(context.Background(), func() error {
		return permanent
	}, func(err error) bool {
		return !errors.Is(err, permanent)
	}, nil)

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestDoSingleAttemptWhenUnset(t *testing.T) {
	attempts, err := Policy{}.Do(context.Background(), func() error {
		return errFlaky
	}, nil, nil)

	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 1, attempts)
}

func TestDoRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts, err := fastPolicy(3).Do(ctx, func() error {
		t.Fatal("fn must not run on a cancelled context")
		return nil
	}, nil, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, attempts)
}

func TestDoCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 3, BaseDelay: time.Minute, MaxDelay: time.Minute}

	start := time.Now()
	attempts, err := p.Do(ctx, func() error {
		cancel()
		return errFlaky
	}, nil, nil)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestWait(t *testing.T) {
	p := Policy{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}

	assert.Equal(t, 100*time.Millisecond, p.Wait(1, errFlaky))
	assert.Equal(t, 200*time.Millisecond, p.Wait(2, errFlaky))
	assert.Equal(t, 400*time.Millisecond, p.Wait(3, errFlaky))
	assert.Equal(t, 800*time.Millisecond, p.Wait(4, errFlaky))
	assert.Equal(t, time.Second, p.Wait(5, errFlaky))
	assert.Equal(t, time.Second, p.Wait(30, errFlaky))

	// a server hint wins over a shorter backoff
	assert.Equal(t, 3*time.Second, p.Wait(1, hintedError{wait: 3 * time.Second}))
	assert.Equal(t, 100*time.Millisecond, p.Wait(1, hintedError{wait: time.Millisecond}))

	// but never beyond three times the cap
	assert.Equal(t, 3*time.Second, p.HintLimit())
	assert.Equal(t, 3*time.Second, p.Wait(1, hintedError{wait: time.Hour}))

	uncapped := Policy{BaseDelay: 100 * time.Millisecond}
	assert.Zero(t, uncapped.HintLimit())
	assert.Equal(t, time.Hour, uncapped.Wait(1, hintedError{wait: time.Hour}))
}

func TestDoGivesUpOnLongRetryAfter(t *testing.T) {
	p := Policy{MaxAttempts: 4, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	start := time.Now()
	attempts, err := p.Do(context.Background(), func() error {
		return hintedError{wait: time.Hour}
	}, nil, nil)

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDoHonoursShortRetryAfter(t *testing.T) {
	p := Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 20 * time.Millisecond}

	calls := 0
	start := time.Now()
	attempts, err := p.Do(context.Background(), func() error {
		calls++
		if calls == 1 {
			return hintedError{wait: 50 * time.Millisecond}
		}
		return nil
	}, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}
