// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"net/http"

	"github.com/google/uuid"

	log "github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Amzn-RequestId"

// AccessLogMiddleware writes api access log.
func AccessLogMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			log.Debug("API request - ", r.Method, " ", r.URL)
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

// RequestIDMiddleware tags every response with a fresh request id,
// surfaced in the X-Amzn-RequestId header.
func RequestIDMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(requestIDHeader, uuid.New().String())
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
