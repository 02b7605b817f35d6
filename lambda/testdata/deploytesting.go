// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package testdata

import (
	"context"
	"fmt"
	"time"

	"github.com/awslabs/aws-lambda-deploy/lambda/deploycore"
	"github.com/awslabs/aws-lambda-deploy/lambda/interop"
	"github.com/awslabs/aws-lambda-deploy/lambda/testdata/mockclock"
)

// MockIdentityService implements interop.IdentityService against an
// in-memory role table, recording every call.
type MockIdentityService struct {
	Roles     map[string]string
	LookupErr error
	CreateErr error

	Lookups  int
	Creates  int
	Attaches []string
}

var _ interop.IdentityService = (*MockIdentityService)(nil)

func NewMockIdentityService() *MockIdentityService {
	return &MockIdentityService{Roles: map[string]string{}}
}

func (m *MockIdentityService) GetIdentity(ctx context.Context, name string) (*interop.Identity, error) {
	m.Lookups++
	if m.LookupErr != nil {
		return nil, m.LookupErr
	}
	arn, ok := m.Roles[name]
	if !ok {
		return nil, fmt.Errorf("%w: role %s", interop.ErrNotFound, name)
	}
	return &interop.Identity{Name: name, ARN: arn}, nil
}

func (m *MockIdentityService) CreateIdentity(ctx context.Context, name string, trustPolicy string) (*interop.Identity, error) {
	m.Creates++
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	arn := "arn:aws:iam::123456789012:role/" + name
	m.Roles[name] = arn
	return &interop.Identity{Name: name, ARN: arn}, nil
}

func (m *MockIdentityService) AttachGrant(ctx context.Context, name string, grantARN string) error {
	m.Attaches = append(m.Attaches, grantARN)
	return nil
}

// MockFunctionService implements interop.FunctionService with scripted
// responses. StatusScript is played back by GetFunctionStatus in order,
// the last entry repeating once the script is exhausted.
type MockFunctionService struct {
	CreateResponse *interop.FunctionDescription
	CreateErr      error
	UpdateResponse *interop.FunctionDescription
	UpdateErr      error
	StatusScript   []interop.FunctionDescription
	StatusErr      error
	InvokeResponse []byte
	InvokeErr      error
	EchoInvoke     bool
	Summaries      []interop.FunctionSummary
	ListErr        error
	DeleteErr      error

	CreatedConfig  *interop.FunctionConfig
	CreatedCode    interop.CodePackage
	UpdatedName    string
	UpdatedCode    interop.CodePackage
	InvokedName    string
	InvokedPayload []byte
	DeletedName    string
	StatusCalls    int
}

var _ interop.FunctionService = (*MockFunctionService)(nil)

func (m *MockFunctionService) CreateFunction(ctx context.Context, config *interop.FunctionConfig, code interop.CodePackage) (*interop.FunctionDescription, error) {
	m.CreatedConfig = config
	m.CreatedCode = code
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.CreateResponse != nil {
		return m.CreateResponse, nil
	}
	return &interop.FunctionDescription{
		Name:  config.Name,
		ARN:   FunctionARN(config.Name),
		State: interop.FunctionStatePending,
	}, nil
}

func (m *MockFunctionService) UpdateFunctionCode(ctx context.Context, name string, code interop.CodePackage) (*interop.FunctionDescription, error) {
	m.UpdatedName = name
	m.UpdatedCode = code
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	if m.UpdateResponse != nil {
		return m.UpdateResponse, nil
	}
	return &interop.FunctionDescription{
		Name:             name,
		ARN:              FunctionARN(name),
		State:            interop.FunctionStateActive,
		LastUpdateStatus: interop.UpdateStatusInProgress,
	}, nil
}

func (m *MockFunctionService) GetFunctionStatus(ctx context.Context, name string) (*interop.FunctionDescription, error) {
	if m.StatusErr != nil {
		return nil, m.StatusErr
	}
	i := m.StatusCalls
	m.StatusCalls++
	if len(m.StatusScript) == 0 {
		return &interop.FunctionDescription{
			Name:             name,
			ARN:              FunctionARN(name),
			State:            interop.FunctionStateActive,
			LastUpdateStatus: interop.UpdateStatusSuccessful,
		}, nil
	}
	if i >= len(m.StatusScript) {
		i = len(m.StatusScript) - 1
	}
	desc := m.StatusScript[i]
	return &desc, nil
}

func (m *MockFunctionService) Invoke(ctx context.Context, name string, payload []byte) ([]byte, error) {
	m.InvokedName = name
	m.InvokedPayload = payload
	if m.InvokeErr != nil {
		return nil, m.InvokeErr
	}
	if m.EchoInvoke {
		return payload, nil
	}
	return m.InvokeResponse, nil
}

func (m *MockFunctionService) DeleteFunction(ctx context.Context, name string) error {
	m.DeletedName = name
	return m.DeleteErr
}

func (m *MockFunctionService) ListFunctions(ctx context.Context) ([]interop.FunctionSummary, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Summaries, nil
}

// MockCodeStore records staged archives keyed by bucket/key.
type MockCodeStore struct {
	Objects map[string][]byte
	PutErr  error
}

var _ interop.CodeStore = (*MockCodeStore)(nil)

func NewMockCodeStore() *MockCodeStore {
	return &MockCodeStore{Objects: map[string][]byte{}}
}

func (m *MockCodeStore) PutObject(ctx context.Context, bucket string, key string, body []byte) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	m.Objects[bucket+"/"+key] = body
	return nil
}

// FunctionARN builds the ARN the mock services hand out for a function.
func FunctionARN(name string) string {
	return "arn:aws:lambda:us-east-1:123456789012:function:" + name
}

// PendingStatus is a StatusScript entry for a function still creating.
func PendingStatus(name string) interop.FunctionDescription {
	return interop.FunctionDescription{
		Name:             name,
		ARN:              FunctionARN(name),
		State:            interop.FunctionStatePending,
		LastUpdateStatus: interop.UpdateStatusInProgress,
	}
}

// ActiveStatus is a StatusScript entry for a settled function.
func ActiveStatus(name string) interop.FunctionDescription {
	return interop.FunctionDescription{
		Name:             name,
		ARN:              FunctionARN(name),
		State:            interop.FunctionStateActive,
		LastUpdateStatus: interop.UpdateStatusSuccessful,
	}
}

// DeployTest provides a wired Deployer against scripted provider stubs
// for tests that walk full deployment flows.
type DeployTest struct {
	Config    *deploycore.Config
	Identity  *MockIdentityService
	Functions *MockFunctionService
	Clock     *mockclock.MockClock
	Deployer  *deploycore.Deployer
}

// NewDeployTest returns a new DeployTest configuration with a mock
// clock, so waits complete without real sleeps.
func NewDeployTest() *DeployTest {
	cfg := deploycore.NewConfig()
	identities := NewMockIdentityService()
	functions := &MockFunctionService{}
	clock := mockclock.NewMockClock(time.Unix(1700000000, 0))
	deployer := deploycore.NewDeployer(cfg, identities, functions).SetClock(clock)
	return &DeployTest{
		Config:    cfg,
		Identity:  identities,
		Functions: functions,
		Clock:     clock,
		Deployer:  deployer,
	}
}
