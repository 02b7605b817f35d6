// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package waiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awslabs/aws-lambda-deploy/lambda/testdata/mockclock"
)

// scriptedPoll returns the scripted states in order, repeating the last
// one once the script is exhausted.
func scriptedPoll(polls *int, states ...string) PollFunc {
	return func(ctx context.Context, resource string) (string, error) {
		i := *polls
		*polls++
		if i >= len(states) {
			i = len(states) - 1
		}
		return states[i], nil
	}
}

// stuckClock never fires After. Used to exercise context cancellation.
type stuckClock struct {
	now time.Time
}

func (c stuckClock) Now() time.Time                       { return c.now }
func (c stuckClock) After(time.Duration) <-chan time.Time { return make(chan time.Time) }

func newTestWaiter(clock Clock) *Waiter {
	return &Waiter{
		Target:   "Active",
		Failure:  []string{"Failed"},
		Interval: 2 * time.Second,
		MaxWait:  10 * time.Second,
		Clock:    clock,
	}
}

func TestWaitReachesTarget(t *testing.T) {
	clock := mockclock.NewMockClock(time.Unix(1700000000, 0))
	polls := 0

	err := newTestWaiter(clock).Wait(context.Background(), "echo", scriptedPoll(&polls, "Pending", "Pending", "Active"))

	require.NoError(t, err)
	assert.Equal(t, 3, polls)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, clock.Sleeps)
}

func TestWaitTimesOut(t *testing.T) {
	clock := mockclock.NewMockClock(time.Unix(1700000000, 0))
	w := newTestWaiter(clock)
	w.MaxWait = 4 * time.Second
	polls := 0

	err := w.Wait(context.Background(), "echo", scriptedPoll(&polls, "Pending"))

	var timeout *TimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Equal(t, "echo", timeout.Resource)
	assert.Equal(t, 4*time.Second, timeout.MaxWait)
	// MaxWait/Interval+1 polls, never more
	assert.Equal(t, 3, polls)
}

func TestWaitZeroBudgetPollsOnce(t *testing.T) {
	clock := mockclock.NewMockClock(time.Unix(1700000000, 0))
	w := newTestWaiter(clock)
	w.MaxWait = 0
	polls := 0

	err := w.Wait(context.Background(), "echo", scriptedPoll(&polls, "Pending"))

	var timeout *TimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Equal(t, 1, polls)
}

func TestWaitFailureStateIsTerminal(t *testing.T) {
	clock := mockclock.NewMockClock(time.Unix(1700000000, 0))
	polls := 0

	err := newTestWaiter(clock).Wait(context.Background(), "echo", scriptedPoll(&polls, "Pending", "Failed"))

	require.True(t, errors.Is(err, ErrStateFailed))
	assert.Contains(t, err.Error(), "Failed")
	assert.Equal(t, 2, polls)
}

func TestWaitPollErrorPropagates(t *testing.T) {
	clock := mockclock.NewMockClock(time.Unix(1700000000, 0))
	pollErr := errors.New("AccessDenied")

	err := newTestWaiter(clock).Wait(context.Background(), "echo", func(ctx context.Context, resource string) (string, error) {
		return "", pollErr
	})

	assert.Equal(t, pollErr, err)
}

func TestWaitContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	polls := 0

	err := newTestWaiter(stuckClock{now: time.Unix(1700000000, 0)}).Wait(ctx, "echo", scriptedPoll(&polls, "Pending"))

	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 1, polls)
}

func TestWaitSystemClockDefault(t *testing.T) {
	w := &Waiter{Target: "Active", Interval: time.Millisecond, MaxWait: 50 * time.Millisecond}
	polls := 0

	err := w.Wait(context.Background(), "echo", scriptedPoll(&polls, "Pending", "Active"))

	require.NoError(t, err)
	assert.Equal(t, 2, polls)
}
