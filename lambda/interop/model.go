// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package interop

import (
	"context"
	"errors"
	"time"
)

// FunctionState describes the lifecycle state reported for a function.
// Values mirror the service vocabulary.
type FunctionState string

const (
	FunctionStatePending  FunctionState = "Pending"
	FunctionStateActive   FunctionState = "Active"
	FunctionStateInactive FunctionState = "Inactive"
	FunctionStateFailed   FunctionState = "Failed"
)

// UpdateStatus describes the progress of the most recent code or
// configuration update applied to a function.
type UpdateStatus string

const (
	UpdateStatusInProgress UpdateStatus = "InProgress"
	UpdateStatusSuccessful UpdateStatus = "Successful"
	UpdateStatusFailed     UpdateStatus = "Failed"
)

// Identity is an execution role resolved or created for a function.
type Identity struct {
	Name string
	ARN  string
}

// FunctionConfig carries everything needed to create a function,
// code excluded.
type FunctionConfig struct {
	Name        string
	Role        string // execution role ARN
	Runtime     string
	Handler     string
	MemorySize  int64 // MB
	Timeout     int64 // seconds
	Description string
	Environment map[string]string
}

// CodePackage points at deployable code: either inline archive bytes or
// an object already staged in a bucket. Exactly one form is set.
type CodePackage struct {
	ZipFile []byte
	Bucket  string
	Key     string
}

// IsInline reports whether the package carries the archive bytes directly.
func (c *CodePackage) IsInline() bool {
	return len(c.ZipFile) > 0
}

// FunctionDescription is the status view of a single function.
type FunctionDescription struct {
	Name             string
	ARN              string
	State            FunctionState
	StateReason      string
	LastUpdateStatus UpdateStatus
}

// FunctionSummary is a listing row for a deployed function.
type FunctionSummary struct {
	Name         string
	ARN          string
	Runtime      string
	Description  string
	LastModified time.Time
}

// ErrNotFound is returned when the named remote resource does not exist.
var ErrNotFound = errors.New("NotFound")

// ErrConflict is returned when the remote resource already exists or is
// being mutated concurrently.
var ErrConflict = errors.New("Conflict")

// ErrInvalidInput is returned on client-side validation failures, before
// any remote call is made.
var ErrInvalidInput = errors.New("InvalidInput")

// IdentityService manages execution roles on the provider side.
type IdentityService interface {
	// GetIdentity fetches an existing role.
	// Errors returned:
	//   ErrNotFound   - no role with this name exists
	//   Non-nil error - transport or service failure
	GetIdentity(ctx context.Context, name string) (*Identity, error)

	// CreateIdentity creates a role carrying the given trust policy document.
	// Errors returned:
	//   ErrConflict   - a role with this name already exists
	//   Non-nil error - transport or service failure
	CreateIdentity(ctx context.Context, name string, trustPolicy string) (*Identity, error)

	// AttachGrant attaches a managed policy to the role. Attaching a
	// policy that is already attached is not an error.
	AttachGrant(ctx context.Context, name string, grantARN string) error
}

// FunctionService manages functions on the provider side.
type FunctionService interface {
	// CreateFunction registers a new function with the given code.
	// Errors returned:
	//   ErrConflict   - a function with this name already exists
	//   Non-nil error - transport or service failure
	CreateFunction(ctx context.Context, config *FunctionConfig, code CodePackage) (*FunctionDescription, error)

	// UpdateFunctionCode replaces the code of an existing function.
	// Errors returned:
	//   ErrNotFound   - no function with this name exists
	//   ErrConflict   - another update is still in progress
	//   Non-nil error - transport or service failure
	UpdateFunctionCode(ctx context.Context, name string, code CodePackage) (*FunctionDescription, error)

	// GetFunctionStatus fetches the current lifecycle view of a function.
	GetFunctionStatus(ctx context.Context, name string) (*FunctionDescription, error)

	// Invoke runs the function synchronously and returns the raw
	// response payload. A failed execution still returns the payload
	// produced by the function.
	Invoke(ctx context.Context, name string, payload []byte) ([]byte, error)

	// DeleteFunction removes a function.
	// Errors returned:
	//   ErrNotFound - no function with this name exists
	DeleteFunction(ctx context.Context, name string) error

	// ListFunctions returns summaries for every deployed function.
	ListFunctions(ctx context.Context) ([]FunctionSummary, error)
}

// CodeStore stages code packages in an object bucket so that create and
// update calls can reference them instead of carrying inline bytes.
type CodeStore interface {
	PutObject(ctx context.Context, bucket string, key string, body []byte) error
}
