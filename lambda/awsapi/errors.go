// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package awsapi

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/aws/aws-sdk-go/service/lambda"

	"github.com/awslabs/aws-lambda-deploy/lambda/interop"
)

// translateError maps provider error codes onto the shared error kinds
// so callers branch with errors.Is instead of matching SDK codes.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr awserr.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Code() {
	case iam.ErrCodeNoSuchEntityException, lambda.ErrCodeResourceNotFoundException:
		return fmt.Errorf("%w: %s", interop.ErrNotFound, apiErr.Message())
	case iam.ErrCodeEntityAlreadyExistsException, lambda.ErrCodeResourceConflictException:
		return fmt.Errorf("%w: %s", interop.ErrConflict, apiErr.Message())
	case lambda.ErrCodeInvalidParameterValueException:
		return fmt.Errorf("%w: %s", interop.ErrInvalidInput, apiErr.Message())
	}
	return err
}
