// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package deploycore drives the function deployment lifecycle: role
// resolution, code packaging, create and update calls, and the wait for
// the provider to report the function ready.
package deploycore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/awslabs/aws-lambda-deploy/lambda/identity"
	"github.com/awslabs/aws-lambda-deploy/lambda/interop"
	"github.com/awslabs/aws-lambda-deploy/lambda/logging"
	"github.com/awslabs/aws-lambda-deploy/lambda/packaging"
	"github.com/awslabs/aws-lambda-deploy/lambda/waiter"
)

// DeployOptions carries per-deployment overrides of the configured
// defaults. The zero value deploys with the defaults.
type DeployOptions struct {
	RoleName    string
	Runtime     string
	Handler     string
	Description string
	MemorySize  int64
	Timeout     int64
	Environment map[string]string
}

// Deployer owns the deployment workflow against a single provider
// account. It holds immutable configuration and stateless collaborators
// only, so concurrent operations on distinct functions are safe.
type Deployer struct {
	cfg       *Config
	identity  *identity.Resolver
	functions interop.FunctionService
	codeStore interop.CodeStore
	clock     waiter.Clock
}

// NewDeployer returns a Deployer wired to the given provider services.
func NewDeployer(cfg *Config, identities interop.IdentityService, functions interop.FunctionService) *Deployer {
	return &Deployer{
		cfg:       cfg,
		identity:  identity.NewResolver(identities),
		functions: functions,
		clock:     waiter.SystemClock(),
	}
}

// SetCodeStore makes deployments stage archives in cfg.CodeBucket
// instead of sending inline bytes.
func (d *Deployer) SetCodeStore(store interop.CodeStore) *Deployer {
	d.codeStore = store
	return d
}

// SetClock replaces the wall clock driving the activation waits.
func (d *Deployer) SetClock(clock waiter.Clock) *Deployer {
	d.clock = clock
	return d
}

// Deploy creates a function from source and returns its ARN once the
// provider reports it Active. The execution role is resolved first,
// created on demand. A deploy that times out waiting leaves the created
// resources in place; nothing is rolled back.
func (d *Deployer) Deploy(ctx context.Context, name string, source string, opts *DeployOptions) (string, error) {
	if opts == nil {
		opts = &DeployOptions{}
	}
	if err := validateName(name); err != nil {
		return "", opError("deploy", name, err)
	}

	logger := log.WithFields(log.Fields{
		"operation": "deploy",
		"function":  name,
		"id":        uuid.New().String(),
	})

	roleName := firstOf(opts.RoleName, d.cfg.RoleName)
	roleARN, err := d.identity.EnsureRole(ctx, roleName, d.cfg.TrustPolicy, d.cfg.GrantARN)
	if err != nil {
		return "", opError("deploy", name, err)
	}

	runtime := firstOf(opts.Runtime, d.cfg.Runtime)
	archive, err := packaging.Pack(source, runtime)
	if err != nil {
		return "", opError("deploy", name, err)
	}
	logger.WithField("sizeBytes", len(archive)).Debug("Packaged function code")

	code, err := d.stageCode(ctx, name, archive)
	if err != nil {
		return "", opError("deploy", name, err)
	}

	config := &interop.FunctionConfig{
		Name:        name,
		Role:        roleARN,
		Runtime:     runtime,
		Handler:     firstOf(opts.Handler, d.cfg.Handler),
		MemorySize:  firstPositive(opts.MemorySize, d.cfg.MemorySize),
		Timeout:     firstPositive(opts.Timeout, d.cfg.Timeout),
		Description: firstOf(opts.Description, d.cfg.Description),
		Environment: mergeEnvironment(d.cfg.Environment, opts.Environment),
	}

	logger.Info("Creating function")
	desc, err := d.functions.CreateFunction(ctx, config, code)
	if err != nil {
		return "", opError("deploy", name, err)
	}

	if err := d.stateWaiter().Wait(ctx, name, d.pollState); err != nil {
		var timeout *waiter.TimeoutError
		if errors.As(err, &timeout) {
			err = fmt.Errorf("%w: function did not become Active within %s", ErrDeployTimeout, timeout.MaxWait)
		}
		return "", opError("deploy", name, err)
	}

	logger.WithField("arn", desc.ARN).Info("Function is active")
	return desc.ARN, nil
}

// Update replaces the code of an existing function and returns its ARN
// once the provider reports the update Successful.
func (d *Deployer) Update(ctx context.Context, name string, source string) (string, error) {
	if err := validateName(name); err != nil {
		return "", opError("update", name, err)
	}

	logger := log.WithFields(log.Fields{
		"operation": "update",
		"function":  name,
		"id":        uuid.New().String(),
	})

	archive, err := packaging.Pack(source, d.cfg.Runtime)
	if err != nil {
		return "", opError("update", name, err)
	}

	code, err := d.stageCode(ctx, name, archive)
	if err != nil {
		return "", opError("update", name, err)
	}

	logger.Info("Updating function code")
	desc, err := d.functions.UpdateFunctionCode(ctx, name, code)
	if err != nil {
		return "", opError("update", name, err)
	}

	if err := d.updateWaiter().Wait(ctx, name, d.pollUpdateStatus); err != nil {
		var timeout *waiter.TimeoutError
		if errors.As(err, &timeout) {
			err = fmt.Errorf("%w: update did not complete within %s", ErrUpdateTimeout, timeout.MaxWait)
		}
		return "", opError("update", name, err)
	}

	logger.WithField("arn", desc.ARN).Info("Function code updated")
	return desc.ARN, nil
}

// Invoke runs the function synchronously. The payload is marshalled to
// JSON and the response payload is decoded into generic JSON values. An
// empty response body decodes to an empty object.
func (d *Deployer) Invoke(ctx context.Context, name string, payload interface{}) (interface{}, error) {
	if err := validateName(name); err != nil {
		return nil, opError("invoke", name, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, opError("invoke", name, fmt.Errorf("%w: payload: %s", interop.ErrInvalidInput, err))
	}

	response, err := d.functions.Invoke(ctx, name, body)
	if err != nil {
		return nil, opError("invoke", name, err)
	}
	if len(response) == 0 {
		return map[string]interface{}{}, nil
	}

	var decoded interface{}
	if err := json.Unmarshal(response, &decoded); err != nil {
		return nil, opError("invoke", name, fmt.Errorf("%w: %s", ErrMalformedResponse, err))
	}
	return decoded, nil
}

// Status fetches the current lifecycle view of a function.
func (d *Deployer) Status(ctx context.Context, name string) (*interop.FunctionDescription, error) {
	if err := validateName(name); err != nil {
		return nil, opError("status", name, err)
	}
	desc, err := d.functions.GetFunctionStatus(ctx, name)
	if err != nil {
		return nil, opError("status", name, err)
	}
	return desc, nil
}

// List returns summaries for every deployed function.
func (d *Deployer) List(ctx context.Context) ([]interop.FunctionSummary, error) {
	summaries, err := d.functions.ListFunctions(ctx)
	if err != nil {
		return nil, opError("list", "*", err)
	}
	return summaries, nil
}

// Delete removes a function. The execution role is left in place for
// future deployments.
func (d *Deployer) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return opError("delete", name, err)
	}
	if err := d.functions.DeleteFunction(ctx, name); err != nil {
		return opError("delete", name, err)
	}
	log.WithField("function", name).Info("Function deleted")
	return nil
}

func (d *Deployer) stateWaiter() *waiter.Waiter {
	return &waiter.Waiter{
		Target:   string(interop.FunctionStateActive),
		Failure:  []string{string(interop.FunctionStateFailed)},
		Interval: d.cfg.PollInterval,
		MaxWait:  d.cfg.DeployMaxWait,
		Clock:    d.clock,
	}
}

func (d *Deployer) updateWaiter() *waiter.Waiter {
	return &waiter.Waiter{
		Target:   string(interop.UpdateStatusSuccessful),
		Failure:  []string{string(interop.UpdateStatusFailed)},
		Interval: d.cfg.PollInterval,
		MaxWait:  d.cfg.UpdateMaxWait,
		Clock:    d.clock,
	}
}

func (d *Deployer) pollState(ctx context.Context, name string) (string, error) {
	desc, err := d.functions.GetFunctionStatus(ctx, name)
	if err != nil {
		return "", err
	}
	return string(desc.State), nil
}

func (d *Deployer) pollUpdateStatus(ctx context.Context, name string) (string, error) {
	desc, err := d.functions.GetFunctionStatus(ctx, name)
	if err != nil {
		return "", err
	}
	return string(desc.LastUpdateStatus), nil
}

// stageCode uploads the archive to the configured code bucket, falling
// back to inline bytes when no bucket is configured.
func (d *Deployer) stageCode(ctx context.Context, name string, archive []byte) (interop.CodePackage, error) {
	if d.cfg.CodeBucket == "" || d.codeStore == nil {
		return interop.CodePackage{ZipFile: archive}, nil
	}
	key := fmt.Sprintf("%s/%s.zip", name, uuid.New().String())
	if err := d.codeStore.PutObject(ctx, d.cfg.CodeBucket, key, archive); err != nil {
		return interop.CodePackage{}, err
	}
	log.WithFields(log.Fields{"bucket": d.cfg.CodeBucket, "key": key}).Debug("Staged function code")
	return interop.CodePackage{Bucket: d.cfg.CodeBucket, Key: key}, nil
}

func opError(op string, name string, err error) error {
	return &OperationError{Op: op, Function: name, Err: err}
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: function name is empty", interop.ErrInvalidInput)
	}
	return nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int64) int64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func mergeEnvironment(base map[string]string, overrides map[string]string) map[string]string {
	if len(base) == 0 && len(overrides) == 0 {
		return nil
	}
	merged := make(map[string]string, len(base)+len(overrides))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}
	return merged
}

// SetLogLevel sets the log level for internal logging. Needs to be
// called very early during startup to configure logs emitted during
// initialization.
func SetLogLevel(logLevel string) {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		log.WithError(err).Fatal("Failed to set log level. Valid log levels are:", log.AllLevels)
	}

	log.SetLevel(level)
	log.SetFormatter(&logging.InternalFormatter{})
}

// SetInternalLogOutput redirects the internal log stream.
func SetInternalLogOutput(w io.Writer) {
	logging.SetOutput(w)
}
