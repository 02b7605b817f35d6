// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package identity resolves the execution role functions run under.
package identity

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/awslabs/aws-lambda-deploy/lambda/interop"
)

const (
	// DefaultRoleName is used when the caller does not name a role.
	DefaultRoleName = "lambda-deploy-execution-role"

	// DefaultGrantARN lets function logs reach CloudWatch.
	DefaultGrantARN = "arn:aws:iam::aws:policy/service-role/AWSLambdaBasicExecutionRole"
)

// DefaultTrustPolicy lets the Lambda service assume the role.
const DefaultTrustPolicy = `{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Principal": {"Service": "lambda.amazonaws.com"},
      "Action": "sts:AssumeRole"
    }
  ]
}`

// Resolver ensures the execution role exists before a deployment.
type Resolver struct {
	Service interop.IdentityService
}

// NewResolver returns a Resolver backed by the given identity service.
func NewResolver(service interop.IdentityService) *Resolver {
	return &Resolver{Service: service}
}

// EnsureRole returns the ARN of the named role, creating it with the
// trust policy and attaching the grant when it does not exist yet. Only
// a NotFound lookup takes the create path; any other lookup error
// propagates unchanged. A Conflict on create means the role appeared
// concurrently: it is fetched again and the grant attach still runs,
// attach being idempotent on the provider side.
func (r *Resolver) EnsureRole(ctx context.Context, name string, trustPolicy string, grantARN string) (string, error) {
	identity, err := r.Service.GetIdentity(ctx, name)
	if err == nil {
		log.WithField("role", name).Debug("Execution role already exists")
		return identity.ARN, nil
	}
	if !errors.Is(err, interop.ErrNotFound) {
		return "", err
	}

	log.WithField("role", name).Info("Creating execution role")
	identity, err = r.Service.CreateIdentity(ctx, name, trustPolicy)
	if errors.Is(err, interop.ErrConflict) {
		identity, err = r.Service.GetIdentity(ctx, name)
	}
	if err != nil {
		return "", err
	}

	if err := r.Service.AttachGrant(ctx, name, grantARN); err != nil {
		return "", err
	}

	log.WithFields(log.Fields{"role": name, "arn": identity.ARN}).Info("Execution role ready")
	return identity.ARN, nil
}
