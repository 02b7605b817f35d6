// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package gateway implements the local HTTP facade over the deployment
// core, mirroring the provider's public function API surface.
package gateway

import (
	"context"
	"net/http"

	"github.com/awslabs/aws-lambda-deploy/lambda/interop"

	"github.com/go-chi/chi"
)

const apiVersion = "2015-03-31"

// FunctionAPI is the slice of the deployment core the gateway serves.
// It is implemented by deploycore.Deployer.
type FunctionAPI interface {
	Invoke(ctx context.Context, name string, payload interface{}) (interface{}, error)
	Status(ctx context.Context, name string) (*interop.FunctionDescription, error)
	List(ctx context.Context) ([]interop.FunctionSummary, error)
	Delete(ctx context.Context, name string) error
}

// NewRouter returns a new instance of chi router implementing
// the public function API.
func NewRouter(api FunctionAPI) http.Handler {
	router := chi.NewRouter()
	router.Use(AccessLogMiddleware())
	router.Use(RequestIDMiddleware())

	router.Get("/ping", NewPingHandler().ServeHTTP)

	router.Get("/"+apiVersion+"/functions", NewListHandler(api).ServeHTTP)
	router.Get("/"+apiVersion+"/functions/{name}", NewStatusHandler(api).ServeHTTP)
	router.Delete("/"+apiVersion+"/functions/{name}", NewDeleteHandler(api).ServeHTTP)
	router.Post("/"+apiVersion+"/functions/{name}/invocations", NewInvokeHandler(api).ServeHTTP)

	return router
}
