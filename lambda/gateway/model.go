// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"time"

	"github.com/awslabs/aws-lambda-deploy/lambda/interop"
)

// ErrorResponse is a standard API error body, providing information
// about the error.
type ErrorResponse struct {
	ErrorMessage string `json:"errorMessage"`
	ErrorType    string `json:"errorType"`
}

// FunctionView is the status body returned for a single function.
type FunctionView struct {
	Name             string `json:"name"`
	ARN              string `json:"arn"`
	State            string `json:"state"`
	StateReason      string `json:"stateReason,omitempty"`
	LastUpdateStatus string `json:"lastUpdateStatus,omitempty"`
}

// NewFunctionView builds the status body from the core's description.
func NewFunctionView(desc *interop.FunctionDescription) *FunctionView {
	return &FunctionView{
		Name:             desc.Name,
		ARN:              desc.ARN,
		State:            string(desc.State),
		StateReason:      desc.StateReason,
		LastUpdateStatus: string(desc.LastUpdateStatus),
	}
}

// FunctionSummaryView is one row of the listing body.
type FunctionSummaryView struct {
	Name         string `json:"name"`
	ARN          string `json:"arn"`
	Runtime      string `json:"runtime,omitempty"`
	Description  string `json:"description,omitempty"`
	LastModified string `json:"lastModified,omitempty"`
}

// FunctionListView is the listing body.
type FunctionListView struct {
	Functions []FunctionSummaryView `json:"functions"`
}

// NewFunctionListView builds the listing body from core summaries.
func NewFunctionListView(summaries []interop.FunctionSummary) *FunctionListView {
	view := &FunctionListView{Functions: make([]FunctionSummaryView, 0, len(summaries))}
	for _, summary := range summaries {
		row := FunctionSummaryView{
			Name:        summary.Name,
			ARN:         summary.ARN,
			Runtime:     summary.Runtime,
			Description: summary.Description,
		}
		if !summary.LastModified.IsZero() {
			row.LastModified = summary.LastModified.Format(time.RFC3339)
		}
		view.Functions = append(view.Functions, row)
	}
	return view
}
