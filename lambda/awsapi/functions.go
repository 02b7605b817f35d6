// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package awsapi

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/aws/aws-sdk-go/service/lambda/lambdaiface"
	log "github.com/sirupsen/logrus"

	"github.com/awslabs/aws-lambda-deploy/lambda/interop"
)

// Lambda reports LastModified as ISO8601 with milliseconds and a
// numeric zone, e.g. 2022-11-02T13:14:15.123+0000.
const lastModifiedFormat = "2006-01-02T15:04:05.999-0700"

// FunctionService implements interop.FunctionService on the Lambda API.
type FunctionService struct {
	client lambdaiface.LambdaAPI
}

var _ interop.FunctionService = (*FunctionService)(nil)

// NewFunctionService returns a FunctionService using the session's
// credentials and region.
func NewFunctionService(sess *session.Session) *FunctionService {
	return &FunctionService{client: lambda.New(sess)}
}

// NewFunctionServiceWithClient returns a FunctionService on an existing
// Lambda client.
func NewFunctionServiceWithClient(client lambdaiface.LambdaAPI) *FunctionService {
	return &FunctionService{client: client}
}

func (s *FunctionService) CreateFunction(ctx context.Context, config *interop.FunctionConfig, code interop.CodePackage) (*interop.FunctionDescription, error) {
	input := &lambda.CreateFunctionInput{
		FunctionName: aws.String(config.Name),
		Role:         aws.String(config.Role),
		Runtime:      aws.String(config.Runtime),
		Handler:      aws.String(config.Handler),
		MemorySize:   aws.Int64(config.MemorySize),
		Timeout:      aws.Int64(config.Timeout),
		Code:         functionCode(code),
	}
	if config.Description != "" {
		input.Description = aws.String(config.Description)
	}
	if len(config.Environment) > 0 {
		input.Environment = &lambda.Environment{Variables: aws.StringMap(config.Environment)}
	}

	resp, err := s.client.CreateFunctionWithContext(ctx, input)
	if err != nil {
		return nil, translateError(err)
	}
	return describeFunction(resp), nil
}

func (s *FunctionService) UpdateFunctionCode(ctx context.Context, name string, code interop.CodePackage) (*interop.FunctionDescription, error) {
	input := &lambda.UpdateFunctionCodeInput{
		FunctionName: aws.String(name),
	}
	if code.IsInline() {
		input.ZipFile = code.ZipFile
	} else {
		input.S3Bucket = aws.String(code.Bucket)
		input.S3Key = aws.String(code.Key)
	}

	resp, err := s.client.UpdateFunctionCodeWithContext(ctx, input)
	if err != nil {
		return nil, translateError(err)
	}
	return describeFunction(resp), nil
}

func (s *FunctionService) GetFunctionStatus(ctx context.Context, name string) (*interop.FunctionDescription, error) {
	resp, err := s.client.GetFunctionConfigurationWithContext(ctx, &lambda.GetFunctionConfigurationInput{
		FunctionName: aws.String(name),
	})
	if err != nil {
		return nil, translateError(err)
	}
	return describeFunction(resp), nil
}

// Invoke runs the function synchronously. A function-side failure is
// not a transport failure: the error payload is returned to the caller
// as the invocation result.
func (s *FunctionService) Invoke(ctx context.Context, name string, payload []byte) ([]byte, error) {
	resp, err := s.client.InvokeWithContext(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(name),
		Payload:      payload,
	})
	if err != nil {
		return nil, translateError(err)
	}
	if functionError := aws.StringValue(resp.FunctionError); functionError != "" {
		log.WithFields(log.Fields{
			"function":  name,
			"errorType": functionError,
		}).Warn("Function execution returned an error payload")
	}
	return resp.Payload, nil
}

func (s *FunctionService) DeleteFunction(ctx context.Context, name string) error {
	_, err := s.client.DeleteFunctionWithContext(ctx, &lambda.DeleteFunctionInput{
		FunctionName: aws.String(name),
	})
	return translateError(err)
}

func (s *FunctionService) ListFunctions(ctx context.Context) ([]interop.FunctionSummary, error) {
	var summaries []interop.FunctionSummary
	err := s.client.ListFunctionsPagesWithContext(ctx, &lambda.ListFunctionsInput{},
		func(page *lambda.ListFunctionsOutput, lastPage bool) bool {
			for _, fc := range page.Functions {
				summaries = append(summaries, interop.FunctionSummary{
					Name:         aws.StringValue(fc.FunctionName),
					ARN:          aws.StringValue(fc.FunctionArn),
					Runtime:      aws.StringValue(fc.Runtime),
					Description:  aws.StringValue(fc.Description),
					LastModified: parseLastModified(aws.StringValue(fc.LastModified)),
				})
			}
			return true
		})
	if err != nil {
		return nil, translateError(err)
	}
	return summaries, nil
}

func functionCode(code interop.CodePackage) *lambda.FunctionCode {
	if code.IsInline() {
		return &lambda.FunctionCode{ZipFile: code.ZipFile}
	}
	return &lambda.FunctionCode{
		S3Bucket: aws.String(code.Bucket),
		S3Key:    aws.String(code.Key),
	}
}

func describeFunction(fc *lambda.FunctionConfiguration) *interop.FunctionDescription {
	return &interop.FunctionDescription{
		Name:             aws.StringValue(fc.FunctionName),
		ARN:              aws.StringValue(fc.FunctionArn),
		State:            interop.FunctionState(aws.StringValue(fc.State)),
		StateReason:      aws.StringValue(fc.StateReason),
		LastUpdateStatus: interop.UpdateStatus(aws.StringValue(fc.LastUpdateStatus)),
	}
}

func parseLastModified(value string) time.Time {
	ts, err := time.Parse(lastModifiedFormat, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}
