// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package awsapi implements the provider contracts on the AWS SDK.
package awsapi

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
)

// ClientConfig selects the provider endpoint the adapters talk to. It
// is resolved by the caller and passed in explicitly; credentials come
// from the SDK's own chain.
type ClientConfig struct {
	Region string

	// Endpoint overrides the service endpoint, for local stacks.
	Endpoint string
}

// NewSession builds the shared SDK session for the service adapters.
func NewSession(cfg ClientConfig) (*session.Session, error) {
	awsConfig := aws.NewConfig()
	if cfg.Region != "" {
		awsConfig = awsConfig.WithRegion(cfg.Region)
	}
	if cfg.Endpoint != "" {
		// Path-style addressing keeps bucket URLs resolvable against
		// a single local endpoint.
		awsConfig = awsConfig.WithEndpoint(cfg.Endpoint).WithS3ForcePathStyle(true)
	}
	return session.NewSession(awsConfig)
}
