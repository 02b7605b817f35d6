// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package kvtable records deployment history in a DynamoDB table, one
// row per deploy or update.
package kvtable

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	log "github.com/sirupsen/logrus"
)

// Record is one deployment event.
type Record struct {
	Function   string    `dynamodbav:"function"`
	DeployedAt time.Time `dynamodbav:"deployed_at,unixtime"`
	Operation  string    `dynamodbav:"operation"`
	ARN        string    `dynamodbav:"arn"`
	Runtime    string    `dynamodbav:"runtime"`
	// SourceBytes is the size of the handler source that was packaged.
	SourceBytes int64 `dynamodbav:"source_bytes"`
}

// Table is the deployment registry.
type Table struct {
	client dynamodbiface.DynamoDBAPI
	name   string
}

// New returns a Table using the session's credentials and region.
func New(sess *session.Session, name string) *Table {
	return &Table{client: dynamodb.New(sess), name: name}
}

// NewWithClient returns a Table on an existing DynamoDB client.
func NewWithClient(client dynamodbiface.DynamoDBAPI, name string) *Table {
	return &Table{client: client, name: name}
}

// EnsureTable creates the registry table when missing. The table keys
// on function name with the deployment time as range key, so histories
// read back in order.
func (t *Table) EnsureTable(ctx context.Context) error {
	_, err := t.client.CreateTableWithContext(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(t.name),
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{AttributeName: aws.String("function"), AttributeType: aws.String(dynamodb.ScalarAttributeTypeS)},
			{AttributeName: aws.String("deployed_at"), AttributeType: aws.String(dynamodb.ScalarAttributeTypeN)},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{AttributeName: aws.String("function"), KeyType: aws.String(dynamodb.KeyTypeHash)},
			{AttributeName: aws.String("deployed_at"), KeyType: aws.String(dynamodb.KeyTypeRange)},
		},
	})
	if err != nil {
		var apiErr awserr.Error
		if errors.As(err, &apiErr) && apiErr.Code() == dynamodb.ErrCodeResourceInUseException {
			return nil
		}
		return err
	}
	log.WithField("table", t.name).Info("Created deployment registry table")
	return nil
}

// PutRecord appends a deployment event.
func (t *Table) PutRecord(ctx context.Context, record *Record) error {
	item, err := dynamodbattribute.MarshalMap(record)
	if err != nil {
		return err
	}
	_, err = t.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.name),
		Item:      item,
	})
	return err
}

// ListRecords returns the deployment events for a function, newest
// first.
func (t *Table) ListRecords(ctx context.Context, function string) ([]Record, error) {
	// "function" is a reserved word in the query language
	resp, err := t.client.QueryWithContext(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(t.name),
		KeyConditionExpression:   aws.String("#f = :function"),
		ExpressionAttributeNames: map[string]*string{"#f": aws.String("function")},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":function": {S: aws.String(function)},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(resp.Items))
	for _, item := range resp.Items {
		var record Record
		if err := dynamodbattribute.UnmarshalMap(item, &record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Latest returns the most recent deployment event for a function, or
// nil when the function has never been recorded.
func (t *Table) Latest(ctx context.Context, function string) (*Record, error) {
	resp, err := t.client.QueryWithContext(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(t.name),
		KeyConditionExpression:   aws.String("#f = :function"),
		ExpressionAttributeNames: map[string]*string{"#f": aws.String("function")},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":function": {S: aws.String(function)},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int64(1),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}

	var record Record
	if err := dynamodbattribute.UnmarshalMap(resp.Items[0], &record); err != nil {
		return nil, err
	}
	return &record, nil
}
