// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package packaging builds deployment archives for function code.
package packaging

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/awslabs/aws-lambda-deploy/lambda/interop"
)

// EntryFile returns the archive entry name matching the default handler
// configuration of the runtime family.
func EntryFile(runtime string) string {
	switch {
	case strings.HasPrefix(runtime, "python"):
		return "index.py"
	case strings.HasPrefix(runtime, "ruby"):
		return "index.rb"
	default:
		return "index.js"
	}
}

// Pack wraps function source into a deployment archive with a single
// entry named for the runtime. Entry metadata carries no timestamps, so
// identical source yields identical archive bytes.
func Pack(source string, runtime string) ([]byte, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("%w: function source is empty", interop.ErrInvalidInput)
	}

	var buf bytes.Buffer
	archive := zip.NewWriter(&buf)

	entry, err := archive.CreateHeader(&zip.FileHeader{
		Name:   EntryFile(runtime),
		Method: zip.Deflate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create archive entry: %w", err)
	}
	if _, err := entry.Write([]byte(source)); err != nil {
		return nil, fmt.Errorf("failed to write archive entry: %w", err)
	}
	if err := archive.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	return buf.Bytes(), nil
}
