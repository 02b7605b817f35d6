// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
)

type statusHandler struct {
	api FunctionAPI
}

func (h *statusHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	name := chi.URLParam(request, "name")

	desc, err := h.api.Status(request.Context(), name)
	if err != nil {
		RenderServiceError(writer, request, err)
		return
	}

	render.Status(request, http.StatusOK)
	render.JSON(writer, request, NewFunctionView(desc))
}

// NewStatusHandler returns a new instance of http handler
// for serving /2015-03-31/functions/{name}.
func NewStatusHandler(api FunctionAPI) http.Handler {
	return &statusHandler{api: api}
}
