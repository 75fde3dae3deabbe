package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careagenda/internal/logging"
)

var (
	slotStart = time.Date(2025, time.March, 12, 14, 0, 0, 0, time.UTC)
	slotStop  = time.Date(2025, time.March, 12, 14, 30, 0, 0, time.UTC)
)

type scriptedChecker struct {
	busy    []bool
	errs    []error
	calls   int
	windows [][2]time.Time
}

func (c *scriptedChecker) IsBusy(_ context.Context, _ []string, start, stop time.Time) (bool, error) {
	idx := c.calls
	c.calls++
	c.windows = append(c.windows, [2]time.Time{start, stop})
	var err error
	if idx < len(c.errs) {
		err = c.errs[idx]
	}
	busy := false
	if idx < len(c.busy) {
		busy = c.busy[idx]
	}
	return busy, err
}

func newTestResolver(checker BusyChecker) *Resolver {
	return NewResolver(checker, time.Second, logging.Nop())
}

func TestEmptyParticipantsShortCircuits(t *testing.T) {
	checker := &scriptedChecker{}
	result := newTestResolver(checker).Resolve(context.Background(), nil, slotStart, slotStop, 5)

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.Attempts)
	assert.Equal(t, slotStart, result.FinalStart)
	assert.Equal(t, slotStop, result.FinalStop)
	assert.Equal(t, 0, checker.calls)
}

func TestFreeOnFirstAttempt(t *testing.T) {
	checker := &scriptedChecker{busy: []bool{false}}
	result := newTestResolver(checker).Resolve(context.Background(), []string{"1"}, slotStart, slotStop, 5)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, slotStart, result.FinalStart)
}

func TestBusyThenFree(t *testing.T) {
	checker := &scriptedChecker{busy: []bool{true, true, false}}
	result := newTestResolver(checker).Resolve(context.Background(), []string{"1"}, slotStart, slotStop, 3)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)

	// Window advanced by its own duration twice.
	assert.Equal(t, slotStart.Add(time.Hour), result.FinalStart)
	assert.Equal(t, slotStop.Add(time.Hour), result.FinalStop)
	assert.Equal(t, slotStart, result.RequestedStart)
}

func TestExhaustionIsBounded(t *testing.T) {
	checker := &scriptedChecker{busy: []bool{true, true, true, true, true, true, true, true}}
	result := newTestResolver(checker).Resolve(context.Background(), []string{"1"}, slotStart, slotStop, 3)

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, checker.calls)
	assert.NotEmpty(t, result.Message)
}

func TestAttemptsNeverExceedMaxAttempts(t *testing.T) {
	for _, maxAttempts := range []int{1, 2, 5} {
		checker := &scriptedChecker{busy: []bool{true, true, true, true, true}}
		result := newTestResolver(checker).Resolve(context.Background(), []string{"1"}, slotStart, slotStop, maxAttempts)
		assert.LessOrEqual(t, result.Attempts, maxAttempts)
	}
}

func TestTimeoutCountsAsConflict(t *testing.T) {
	checker := &scriptedChecker{
		busy: []bool{false, false},
		errs: []error{context.DeadlineExceeded, nil},
	}
	result := newTestResolver(checker).Resolve(context.Background(), []string{"1"}, slotStart, slotStop, 5)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Attempts)
	// The timed-out attempt shifted the window.
	assert.Equal(t, slotStart.Add(30*time.Minute), result.FinalStart)
}

func TestServiceErrorCountsAsConflict(t *testing.T) {
	checker := &scriptedChecker{
		busy: []bool{false, false},
		errs: []error{errors.New("boom"), nil},
	}
	result := newTestResolver(checker).Resolve(context.Background(), []string{"1"}, slotStart, slotStop, 5)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Attempts)
}

func TestWindowsTileForward(t *testing.T) {
	checker := &scriptedChecker{busy: []bool{true, true, false}}
	_ = newTestResolver(checker).Resolve(context.Background(), []string{"1"}, slotStart, slotStop, 5)

	require.Len(t, checker.windows, 3)
	assert.Equal(t, checker.windows[0][1], checker.windows[1][0])
	assert.Equal(t, checker.windows[1][1], checker.windows[2][0])
}

func TestCancelledContextStopsSearch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	checker := &scriptedChecker{busy: []bool{true, true, true}}
	result := newTestResolver(checker).Resolve(ctx, []string{"1"}, slotStart, slotStop, 5)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Attempts)
	assert.Equal(t, 0, checker.calls)
}
