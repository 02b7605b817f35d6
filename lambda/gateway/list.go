// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"net/http"

	"github.com/go-chi/render"
)

type listHandler struct {
	api FunctionAPI
}

func (h *listHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	summaries, err := h.api.List(request.Context())
	if err != nil {
		RenderServiceError(writer, request, err)
		return
	}

	render.Status(request, http.StatusOK)
	render.JSON(writer, request, NewFunctionListView(summaries))
}

// NewListHandler returns a new instance of http handler
// for serving /2015-03-31/functions.
func NewListHandler(api FunctionAPI) http.Handler {
	return &listHandler{api: api}
}
