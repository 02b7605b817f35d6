// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package waiter polls a remote resource until it settles in a target state.
package waiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Clock abstracts time for the poll loop. Tests replace it to drive the
// loop without real sleeps.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock returns the wall clock.
func SystemClock() Clock {
	return systemClock{}
}

// PollFunc fetches the current state of the named resource.
type PollFunc func(ctx context.Context, resource string) (string, error)

// ErrStateFailed is returned when the resource settles in a state listed
// as a terminal failure.
var ErrStateFailed = errors.New("StateFailed")

// TimeoutError is returned when the resource does not reach the target
// state within MaxWait.
type TimeoutError struct {
	Resource string
	MaxWait  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("resource %s did not reach target state within %s", e.Resource, e.MaxWait)
}

// Waiter drives a poll loop until the resource reaches Target, settles
// in one of the Failure states, MaxWait elapses or the context is
// canceled. The zero Clock means wall time.
type Waiter struct {
	Target   string
	Failure  []string
	Interval time.Duration
	MaxWait  time.Duration
	Clock    Clock
}

// Wait polls the resource until it reaches the target state. The first
// poll is issued immediately. The deadline is weighed after every poll,
// so MaxWait bounds the total wait even when individual polls are slow;
// the number of polls never exceeds MaxWait/Interval+1.
func (w *Waiter) Wait(ctx context.Context, resource string, poll PollFunc) error {
	clock := w.Clock
	if clock == nil {
		clock = systemClock{}
	}
	deadline := clock.Now().Add(w.MaxWait)

	for {
		state, err := poll(ctx, resource)
		if err != nil {
			return err
		}
		if state == w.Target {
			return nil
		}
		for _, failed := range w.Failure {
			if state == failed {
				return fmt.Errorf("%w: %s settled in state %s", ErrStateFailed, resource, state)
			}
		}

		log.WithFields(log.Fields{
			"resource": resource,
			"state":    state,
			"target":   w.Target,
		}).Debug("Resource not ready")

		if !clock.Now().Before(deadline) {
			return &TimeoutError{Resource: resource, MaxWait: w.MaxWait}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(w.Interval):
		}
	}
}
