// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package awsapi

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/aws/aws-sdk-go/service/iam/iamiface"

	"github.com/awslabs/aws-lambda-deploy/lambda/interop"
)

// IdentityService implements interop.IdentityService on IAM roles.
type IdentityService struct {
	client iamiface.IAMAPI
}

var _ interop.IdentityService = (*IdentityService)(nil)

// NewIdentityService returns an IdentityService using the session's
// credentials and region.
func NewIdentityService(sess *session.Session) *IdentityService {
	return &IdentityService{client: iam.New(sess)}
}

// NewIdentityServiceWithClient returns an IdentityService on an existing
// IAM client.
func NewIdentityServiceWithClient(client iamiface.IAMAPI) *IdentityService {
	return &IdentityService{client: client}
}

func (s *IdentityService) GetIdentity(ctx context.Context, name string) (*interop.Identity, error) {
	resp, err := s.client.GetRoleWithContext(ctx, &iam.GetRoleInput{
		RoleName: aws.String(name),
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &interop.Identity{Name: name, ARN: aws.StringValue(resp.Role.Arn)}, nil
}

func (s *IdentityService) CreateIdentity(ctx context.Context, name string, trustPolicy string) (*interop.Identity, error) {
	resp, err := s.client.CreateRoleWithContext(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(name),
		AssumeRolePolicyDocument: aws.String(trustPolicy),
		Description:              aws.String("Execution role managed by aws-lambda-deploy"),
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &interop.Identity{Name: name, ARN: aws.StringValue(resp.Role.Arn)}, nil
}

func (s *IdentityService) AttachGrant(ctx context.Context, name string, grantARN string) error {
	_, err := s.client.AttachRolePolicyWithContext(ctx, &iam.AttachRolePolicyInput{
		RoleName:  aws.String(name),
		PolicyArn: aws.String(grantARN),
	})
	return translateError(err)
}
