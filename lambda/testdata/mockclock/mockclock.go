// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mockclock

import "time"

// MockClock implements waiter.Clock but does not sleep: After advances
// the internal time by the full duration and fires immediately.
type MockClock struct {
	Current time.Time
	Sleeps  []time.Duration
}

// NewMockClock returns a clock frozen at start.
func NewMockClock(start time.Time) *MockClock {
	return &MockClock{Current: start}
}

// Now returns the mock time.
func (c *MockClock) Now() time.Time {
	return c.Current
}

// After records the requested sleep, advances the mock time and returns
// an already fired channel.
func (c *MockClock) After(d time.Duration) <-chan time.Time {
	c.Sleeps = append(c.Sleeps, d)
	c.Current = c.Current.Add(d)
	fired := make(chan time.Time, 1)
	fired <- c.Current
	return fired
}
