// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package secretstore is a thin wrapper over the provider's secret
// storage. The CLI reads JSON-object secrets into function environment
// variables so deployments never carry credentials in config files.
package secretstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"

	"github.com/awslabs/aws-lambda-deploy/lambda/interop"
)

// Store wraps the secret storage API.
type Store struct {
	client secretsmanageriface.SecretsManagerAPI
}

// New returns a Store using the session's credentials and region.
func New(sess *session.Session) *Store {
	return &Store{client: secretsmanager.New(sess)}
}

// NewWithClient returns a Store on an existing client.
func NewWithClient(client secretsmanageriface.SecretsManagerAPI) *Store {
	return &Store{client: client}
}

// Put creates the named secret, or stores a new version when it already
// exists.
func (s *Store) Put(ctx context.Context, name string, value string) error {
	_, err := s.client.CreateSecretWithContext(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(name),
		SecretString: aws.String(value),
	})
	if err == nil {
		return nil
	}
	var apiErr awserr.Error
	if errors.As(err, &apiErr) && apiErr.Code() == secretsmanager.ErrCodeResourceExistsException {
		_, err = s.client.PutSecretValueWithContext(ctx, &secretsmanager.PutSecretValueInput{
			SecretId:     aws.String(name),
			SecretString: aws.String(value),
		})
	}
	return err
}

// Get returns the current secret string.
func (s *Store) Get(ctx context.Context, name string) (string, error) {
	resp, err := s.client.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		var apiErr awserr.Error
		if errors.As(err, &apiErr) && apiErr.Code() == secretsmanager.ErrCodeResourceNotFoundException {
			return "", fmt.Errorf("%w: secret %s", interop.ErrNotFound, name)
		}
		return "", err
	}
	return aws.StringValue(resp.SecretString), nil
}

// GetMap decodes a JSON-object secret into environment variables.
func (s *Store) GetMap(ctx context.Context, name string) (map[string]string, error) {
	value, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	vars := map[string]string{}
	if err := json.Unmarshal([]byte(value), &vars); err != nil {
		return nil, fmt.Errorf("secret %s is not a JSON object: %w", name, err)
	}
	return vars, nil
}

// Delete schedules the secret for deletion.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteSecretWithContext(ctx, &secretsmanager.DeleteSecretInput{
		SecretId: aws.String(name),
	})
	return err
}
