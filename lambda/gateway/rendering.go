// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/awslabs/aws-lambda-deploy/lambda/interop"

	log "github.com/sirupsen/logrus"
)

const (
	// ErrorTypeServiceException error type for unclassified provider failures
	ErrorTypeServiceException = "ServiceException"
	// ErrorTypeResourceNotFound error type for unknown function names
	ErrorTypeResourceNotFound = "ResourceNotFoundException"
	// ErrorTypeResourceConflict error type for conflicting lifecycle operations
	ErrorTypeResourceConflict = "ResourceConflictException"
	// ErrorTypeInvalidParameter error type for rejected request parameters
	ErrorTypeInvalidParameter = "InvalidParameterValueException"
	// ErrorTypeInvalidRequestContent error type for unparseable payloads
	ErrorTypeInvalidRequestContent = "InvalidRequestContent"
)

// RenderJSON:
// - marshals 'v' to JSON, automatically escaping HTML
// - sets the Content-Type as application/json
// - sets the HTTP response status code
// - returns an error if it occurred before writing to response
func RenderJSON(status int, w http.ResponseWriter, r *http.Request, v interface{}) error {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(v); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.WithError(err).Warn("Error while writing response body")
	}

	return nil
}

// RenderErrorWithTypeMsg method for rendering error response
func RenderErrorWithTypeMsg(w http.ResponseWriter, r *http.Request, status int, errorType string, format string, args ...interface{}) {
	if err := RenderJSON(status, w, r, &ErrorResponse{
		ErrorType:    errorType,
		ErrorMessage: fmt.Sprintf(format, args...),
	}); err != nil {
		log.WithError(err).Warn("Error while rendering response")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// RenderInternalServerError method for rendering error response
func RenderInternalServerError(w http.ResponseWriter, r *http.Request) {
	RenderErrorWithTypeMsg(w, r, http.StatusInternalServerError, ErrorTypeServiceException, "Internal Server Error")
}

// RenderServiceError is a convenience method for interpreting deployment
// core errors as API responses.
func RenderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, interop.ErrNotFound):
		RenderErrorWithTypeMsg(w, r, http.StatusNotFound, ErrorTypeResourceNotFound, "%s", err)
	case errors.Is(err, interop.ErrConflict):
		RenderErrorWithTypeMsg(w, r, http.StatusConflict, ErrorTypeResourceConflict, "%s", err)
	case errors.Is(err, interop.ErrInvalidInput):
		RenderErrorWithTypeMsg(w, r, http.StatusBadRequest, ErrorTypeInvalidParameter, "%s", err)
	default:
		log.WithError(err).Error("Gateway operation failed")
		RenderErrorWithTypeMsg(w, r, http.StatusInternalServerError, ErrorTypeServiceException, "%s", err)
	}
}
