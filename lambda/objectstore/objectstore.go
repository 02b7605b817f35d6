// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package objectstore is a thin wrapper over the provider's object
// storage. Deployments use it to stage code archives that are too big
// to ship inline, or whenever a code bucket is configured.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	log "github.com/sirupsen/logrus"

	"github.com/awslabs/aws-lambda-deploy/lambda/interop"
)

// ObjectInfo is a listing row for a stored object.
type ObjectInfo struct {
	Key          string
	SizeBytes    int64
	LastModified time.Time
}

// Store implements interop.CodeStore on the S3 API.
type Store struct {
	client s3iface.S3API
}

var _ interop.CodeStore = (*Store)(nil)

// New returns a Store using the session's credentials and region.
func New(sess *session.Session) *Store {
	return &Store{client: s3.New(sess)}
}

// NewWithClient returns a Store on an existing S3 client.
func NewWithClient(client s3iface.S3API) *Store {
	return &Store{client: client}
}

// EnsureBucket creates the bucket when missing. A bucket this account
// already owns is not an error.
func (s *Store) EnsureBucket(ctx context.Context, bucket string) error {
	_, err := s.client.CreateBucketWithContext(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	})
	if err == nil {
		log.WithField("bucket", bucket).Info("Created code bucket")
		return nil
	}
	var apiErr awserr.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code() {
		case s3.ErrCodeBucketAlreadyOwnedByYou:
			return nil
		case s3.ErrCodeBucketAlreadyExists:
			return fmt.Errorf("%w: bucket %s is owned by another account", interop.ErrConflict, bucket)
		}
	}
	return err
}

// PutObject stores the body under bucket/key.
func (s *Store) PutObject(ctx context.Context, bucket string, key string, body []byte) error {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	return translateError(err)
}

// GetObject fetches the body stored under bucket/key.
func (s *Store) GetObject(ctx context.Context, bucket string, key string) ([]byte, error) {
	resp, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, translateError(err)
	}
	defer resp.Body.Close()
	return ioutil.ReadAll(resp.Body)
}

// ListObjects returns the objects under the key prefix.
func (s *Store) ListObjects(ctx context.Context, bucket string, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	err := s.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, object := range page.Contents {
			objects = append(objects, ObjectInfo{
				Key:          aws.StringValue(object.Key),
				SizeBytes:    aws.Int64Value(object.Size),
				LastModified: aws.TimeValue(object.LastModified),
			})
		}
		return true
	})
	if err != nil {
		return nil, translateError(err)
	}
	return objects, nil
}

// DeleteObject removes the object stored under bucket/key.
func (s *Store) DeleteObject(ctx context.Context, bucket string, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return translateError(err)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr awserr.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Code() {
	case s3.ErrCodeNoSuchBucket, s3.ErrCodeNoSuchKey:
		return fmt.Errorf("%w: %s", interop.ErrNotFound, apiErr.Message())
	}
	return err
}
