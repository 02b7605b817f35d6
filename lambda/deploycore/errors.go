// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package deploycore

import (
	"errors"
	"fmt"
)

// ErrDeployTimeout is returned when a created function does not become
// Active within the configured deploy wait budget.
var ErrDeployTimeout = errors.New("DeploymentTimeout")

// ErrUpdateTimeout is returned when a code update does not report
// Successful within the configured update wait budget.
var ErrUpdateTimeout = errors.New("UpdateTimeout")

// ErrMalformedResponse is returned when an invocation response cannot be
// decoded as JSON.
var ErrMalformedResponse = errors.New("MalformedResponse")

// OperationError ties a failure to the operation and function it
// interrupted. The cause is preserved for errors.Is and errors.As.
type OperationError struct {
	Op       string
	Function string
	Err      error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Function, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
