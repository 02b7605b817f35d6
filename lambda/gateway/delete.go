// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"net/http"

	"github.com/go-chi/chi"
)

type deleteHandler struct {
	api FunctionAPI
}

func (h *deleteHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	name := chi.URLParam(request, "name")

	if err := h.api.Delete(request.Context(), name); err != nil {
		RenderServiceError(writer, request, err)
		return
	}

	writer.WriteHeader(http.StatusNoContent)
}

// NewDeleteHandler returns a new instance of http handler
// for serving DELETE on /2015-03-31/functions/{name}.
func NewDeleteHandler(api FunctionAPI) http.Handler {
	return &deleteHandler{api: api}
}
