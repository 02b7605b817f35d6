// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	log "github.com/sirupsen/logrus"
)

type invokeHandler struct {
	api FunctionAPI
}

func (h *invokeHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	name := chi.URLParam(request, "name")

	body, err := ioutil.ReadAll(request.Body)
	if err != nil {
		log.WithError(err).Error("Failed to read invoke payload")
		RenderInternalServerError(writer, request)
		return
	}

	// An empty body invokes the function with a null event.
	var payload interface{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			RenderErrorWithTypeMsg(writer, request, http.StatusBadRequest, ErrorTypeInvalidRequestContent,
				"Could not parse request body as json: %s", err)
			return
		}
	}

	result, err := h.api.Invoke(request.Context(), name, payload)
	if err != nil {
		RenderServiceError(writer, request, err)
		return
	}

	render.Status(request, http.StatusOK)
	render.JSON(writer, request, result)
}

// NewInvokeHandler returns a new instance of http handler
// for serving /2015-03-31/functions/{name}/invocations.
func NewInvokeHandler(api FunctionAPI) http.Handler {
	return &invokeHandler{api: api}
}
