// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package kvtable

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamoClient struct {
	dynamodbiface.DynamoDBAPI

	createInput *dynamodb.CreateTableInput
	createErr   error

	putInput *dynamodb.PutItemInput

	queryInput  *dynamodb.QueryInput
	queryOutput *dynamodb.QueryOutput
	queryErr    error
}

func (f *fakeDynamoClient) CreateTableWithContext(ctx aws.Context, input *dynamodb.CreateTableInput, opts ...request.Option) (*dynamodb.CreateTableOutput, error) {
	f.createInput = input
	return &dynamodb.CreateTableOutput{}, f.createErr
}

func (f *fakeDynamoClient) PutItemWithContext(ctx aws.Context, input *dynamodb.PutItemInput, opts ...request.Option) (*dynamodb.PutItemOutput, error) {
	f.putInput = input
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoClient) QueryWithContext(ctx aws.Context, input *dynamodb.QueryInput, opts ...request.Option) (*dynamodb.QueryOutput, error) {
	f.queryInput = input
	if f.queryOutput == nil {
		return &dynamodb.QueryOutput{}, f.queryErr
	}
	return f.queryOutput, f.queryErr
}

func marshalRecord(t *testing.T, record *Record) map[string]*dynamodb.AttributeValue {
	item, err := dynamodbattribute.MarshalMap(record)
	require.NoError(t, err)
	return item
}

func TestEnsureTableCreatesSchema(t *testing.T) {
	client := &fakeDynamoClient{}
	table := NewWithClient(client, "deployments")

	err := table.EnsureTable(context.Background())

	require.NoError(t, err)
	input := client.createInput
	require.NotNil(t, input)
	assert.Equal(t, "deployments", aws.StringValue(input.TableName))
	assert.Equal(t, dynamodb.BillingModePayPerRequest, aws.StringValue(input.BillingMode))
	require.Len(t, input.KeySchema, 2)
	assert.Equal(t, "function", aws.StringValue(input.KeySchema[0].AttributeName))
	assert.Equal(t, "deployed_at", aws.StringValue(input.KeySchema[1].AttributeName))
}

func TestEnsureTableExisting(t *testing.T) {
	client := &fakeDynamoClient{
		createErr: awserr.New(dynamodb.ErrCodeResourceInUseException, "table exists", nil),
	}

	err := NewWithClient(client, "deployments").EnsureTable(context.Background())

	assert.NoError(t, err)
}

func TestPutRecordMarshalsItem(t *testing.T) {
	client := &fakeDynamoClient{}
	table := NewWithClient(client, "deployments")

	err := table.PutRecord(context.Background(), &Record{
		Function:    "echo",
		DeployedAt:  time.Unix(1700000000, 0),
		Operation:   "deploy",
		ARN:         "arn:aws:lambda:us-east-1:123456789012:function:echo",
		Runtime:     "nodejs18.x",
		SourceBytes: 2048,
	})

	require.NoError(t, err)
	item := client.putInput.Item
	assert.Equal(t, "echo", aws.StringValue(item["function"].S))
	assert.Equal(t, "1700000000", aws.StringValue(item["deployed_at"].N))
	assert.Equal(t, "deploy", aws.StringValue(item["operation"].S))
}

func TestListRecordsUnmarshalsRows(t *testing.T) {
	first := &Record{Function: "echo", DeployedAt: time.Unix(1700000100, 0), Operation: "update"}
	second := &Record{Function: "echo", DeployedAt: time.Unix(1700000000, 0), Operation: "deploy"}
	client := &fakeDynamoClient{
		queryOutput: &dynamodb.QueryOutput{
			Items: []map[string]*dynamodb.AttributeValue{
				marshalRecord(t, first),
				marshalRecord(t, second),
			},
		},
	}

	records, err := NewWithClient(client, "deployments").ListRecords(context.Background(), "echo")

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "update", records[0].Operation)
	assert.Equal(t, "deploy", records[1].Operation)
	// newest-first ordering comes from the reversed index scan
	assert.False(t, aws.BoolValue(client.queryInput.ScanIndexForward))
	assert.Equal(t, "echo", aws.StringValue(client.queryInput.ExpressionAttributeValues[":function"].S))
}

func TestLatestReturnsNilWhenUnrecorded(t *testing.T) {
	client := &fakeDynamoClient{queryOutput: &dynamodb.QueryOutput{}}

	record, err := NewWithClient(client, "deployments").Latest(context.Background(), "echo")

	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestLatestLimitsToOneRow(t *testing.T) {
	client := &fakeDynamoClient{
		queryOutput: &dynamodb.QueryOutput{
			Items: []map[string]*dynamodb.AttributeValue{
				marshalRecord(t, &Record{Function: "echo", DeployedAt: time.Unix(1700000100, 0), Operation: "update"}),
			},
		},
	}

	record, err := NewWithClient(client, "deployments").Latest(context.Background(), "echo")

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "update", record.Operation)
	assert.Equal(t, int64(1), aws.Int64Value(client.queryInput.Limit))
}
