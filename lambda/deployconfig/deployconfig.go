// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package deployconfig loads deployment settings from TOML files,
// overlaying defined keys onto built-in defaults. A settings file may
// also carry a manifest of function blocks to deploy as a batch.
package deployconfig

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/awslabs/aws-lambda-deploy/lambda/deploycore"
)

const (
	// DefaultRegion is used when neither the settings file nor the
	// environment names a provider region.
	DefaultRegion = "us-east-1"
	// DefaultGatewayAddr is the local function API listen address.
	DefaultGatewayAddr = "127.0.0.1:9001"
	// DefaultLogLevel is the internal log level.
	DefaultLogLevel = "info"
)

// Settings is everything the command line needs to construct the
// deployment stack: provider connection details, deployment defaults
// and the optional function manifest.
type Settings struct {
	Region        string
	Endpoint      string
	RegistryTable string
	EnvSecret     string
	GatewayAddr   string
	LogLevel      string

	Deploy    *deploycore.Config
	Functions []FunctionSpec
}

// fileConfig is the TOML key mapping for a settings file.
type fileConfig struct {
	Region        string `toml:"region"`
	Endpoint      string `toml:"endpoint"`
	CodeBucket    string `toml:"code_bucket"`
	RegistryTable string `toml:"registry_table"`
	EnvSecret     string `toml:"env_secret"`
	GatewayAddr   string `toml:"gateway_addr"`
	LogLevel      string `toml:"log_level"`

	RoleName      string `toml:"role_name"`
	Runtime       string `toml:"runtime"`
	Handler       string `toml:"handler"`
	MemorySize    int64  `toml:"memory_size"`
	Timeout       int64  `toml:"timeout"`
	DeployMaxWait int64  `toml:"deploy_max_wait_seconds"`
	UpdateMaxWait int64  `toml:"update_max_wait_seconds"`
	PollInterval  int64  `toml:"poll_interval_seconds"`

	Functions []fileFunction `toml:"function"`
}

// DefaultSettings returns settings populated from built-in defaults and
// the conventional provider environment variables.
func DefaultSettings() *Settings {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = os.Getenv("AWS_DEFAULT_REGION")
	}
	if region == "" {
		region = DefaultRegion
	}

	return &Settings{
		Region:      region,
		Endpoint:    os.Getenv("AWS_ENDPOINT_URL"),
		GatewayAddr: DefaultGatewayAddr,
		LogLevel:    DefaultLogLevel,
		Deploy:      deploycore.NewConfig(),
	}
}

// Load reads a TOML settings file and overlays it onto the defaults.
// Keys absent from the file keep their default values.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load deploy config: %w", err)
	}

	if meta.IsDefined("region") {
		settings.Region = strings.TrimSpace(raw.Region)
	}
	if meta.IsDefined("endpoint") {
		settings.Endpoint = strings.TrimSpace(raw.Endpoint)
	}
	if meta.IsDefined("code_bucket") {
		settings.Deploy.CodeBucket = strings.TrimSpace(raw.CodeBucket)
	}
	if meta.IsDefined("registry_table") {
		settings.RegistryTable = strings.TrimSpace(raw.RegistryTable)
	}
	if meta.IsDefined("env_secret") {
		settings.EnvSecret = strings.TrimSpace(raw.EnvSecret)
	}
	if meta.IsDefined("gateway_addr") {
		settings.GatewayAddr = strings.TrimSpace(raw.GatewayAddr)
	}
	if meta.IsDefined("log_level") {
		settings.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("role_name") {
		settings.Deploy.RoleName = strings.TrimSpace(raw.RoleName)
	}
	if meta.IsDefined("runtime") {
		settings.Deploy.Runtime = strings.TrimSpace(raw.Runtime)
	}
	if meta.IsDefined("handler") {
		settings.Deploy.Handler = strings.TrimSpace(raw.Handler)
	}
	if meta.IsDefined("memory_size") {
		settings.Deploy.MemorySize = raw.MemorySize
	}
	if meta.IsDefined("timeout") {
		settings.Deploy.Timeout = raw.Timeout
	}
	if meta.IsDefined("deploy_max_wait_seconds") {
		settings.Deploy.DeployMaxWait = time.Duration(raw.DeployMaxWait) * time.Second
	}
	if meta.IsDefined("update_max_wait_seconds") {
		settings.Deploy.UpdateMaxWait = time.Duration(raw.UpdateMaxWait) * time.Second
	}
	if meta.IsDefined("poll_interval_seconds") {
		settings.Deploy.PollInterval = time.Duration(raw.PollInterval) * time.Second
	}

	functions, err := manifestFunctions(path, raw.Functions)
	if err != nil {
		return nil, err
	}
	settings.Functions = functions

	return settings, nil
}
