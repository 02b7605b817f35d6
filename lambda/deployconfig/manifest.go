// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package deployconfig

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/awslabs/aws-lambda-deploy/lambda/deploycore"
)

// fileFunction is the TOML key mapping for one [[function]] block.
type fileFunction struct {
	Name        string            `toml:"name"`
	Source      string            `toml:"source"`
	Runtime     string            `toml:"runtime"`
	Handler     string            `toml:"handler"`
	Description string            `toml:"description"`
	MemorySize  int64             `toml:"memory_size"`
	Timeout     int64             `toml:"timeout"`
	Environment map[string]string `toml:"environment"`
}

// FunctionSpec is one function block of a deployment manifest. Relative
// source paths are resolved against the manifest's directory at load
// time.
type FunctionSpec struct {
	Name        string
	Source      string
	Runtime     string
	Handler     string
	Description string
	MemorySize  int64
	Timeout     int64
	Environment map[string]string
}

// DeployOptions converts the manifest overrides into per-deployment
// options. Unset fields fall through to the configured defaults.
func (s *FunctionSpec) DeployOptions() *deploycore.DeployOptions {
	return &deploycore.DeployOptions{
		Runtime:     s.Runtime,
		Handler:     s.Handler,
		Description: s.Description,
		MemorySize:  s.MemorySize,
		Timeout:     s.Timeout,
		Environment: s.Environment,
	}
}

// ReadSource loads the function's handler source from disk.
func (s *FunctionSpec) ReadSource() (string, error) {
	data, err := ioutil.ReadFile(s.Source)
	if err != nil {
		return "", fmt.Errorf("read source for function %q: %w", s.Name, err)
	}
	return string(data), nil
}

func manifestFunctions(configPath string, raw []fileFunction) ([]FunctionSpec, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	baseDir := filepath.Dir(configPath)
	seen := make(map[string]bool, len(raw))
	specs := make([]FunctionSpec, 0, len(raw))

	for _, fn := range raw {
		name := strings.TrimSpace(fn.Name)
		if name == "" {
			return nil, fmt.Errorf("load deploy config: function block without a name")
		}
		if seen[name] {
			return nil, fmt.Errorf("load deploy config: duplicate function %q", name)
		}
		seen[name] = true

		source := strings.TrimSpace(fn.Source)
		if source == "" {
			return nil, fmt.Errorf("load deploy config: function %q has no source", name)
		}
		if !filepath.IsAbs(source) {
			source = filepath.Join(baseDir, source)
		}

		specs = append(specs, FunctionSpec{
			Name:        name,
			Source:      source,
			Runtime:     strings.TrimSpace(fn.Runtime),
			Handler:     strings.TrimSpace(fn.Handler),
			Description: fn.Description,
			MemorySize:  fn.MemorySize,
			Timeout:     fn.Timeout,
			Environment: fn.Environment,
		})
	}

	return specs, nil
}
