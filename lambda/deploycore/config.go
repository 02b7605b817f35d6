// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package deploycore

import (
	"time"

	"github.com/awslabs/aws-lambda-deploy/lambda/identity"
)

const (
	// DefaultRuntime is the runtime functions are created with unless
	// overridden per deployment.
	DefaultRuntime = "nodejs18.x"

	// DefaultHandler matches the entry file written by the packager.
	DefaultHandler = "index.handler"

	// DefaultMemorySize is the function memory allocation in MB.
	DefaultMemorySize = 128

	// DefaultTimeout is the function execution timeout in seconds.
	DefaultTimeout = 30

	// DefaultDeployMaxWait bounds the wait for a created function to
	// become Active.
	DefaultDeployMaxWait = 180 * time.Second

	// DefaultUpdateMaxWait bounds the wait for a code update to report
	// Successful.
	DefaultUpdateMaxWait = 120 * time.Second

	// DefaultPollInterval is the pause between status polls.
	DefaultPollInterval = 2 * time.Second
)

// Config carries the deployment defaults resolved once at startup and
// passed down explicitly. The core never reads process-global provider
// configuration.
type Config struct {
	Runtime     string
	Handler     string
	MemorySize  int64
	Timeout     int64
	Description string

	RoleName    string
	TrustPolicy string
	GrantARN    string

	DeployMaxWait time.Duration
	UpdateMaxWait time.Duration
	PollInterval  time.Duration

	// CodeBucket, when set, makes deployments stage archives in the
	// object store instead of sending inline bytes.
	CodeBucket string

	// Environment is applied to every function, merged under any
	// per-deployment variables.
	Environment map[string]string
}

// NewConfig returns a Config populated with the tool defaults.
func NewConfig() *Config {
	return &Config{
		Runtime:       DefaultRuntime,
		Handler:       DefaultHandler,
		MemorySize:    DefaultMemorySize,
		Timeout:       DefaultTimeout,
		RoleName:      identity.DefaultRoleName,
		TrustPolicy:   identity.DefaultTrustPolicy,
		GrantARN:      identity.DefaultGrantARN,
		DeployMaxWait: DefaultDeployMaxWait,
		UpdateMaxWait: DefaultUpdateMaxWait,
		PollInterval:  DefaultPollInterval,
	}
}
