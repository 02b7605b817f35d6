// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/awslabs/aws-lambda-deploy/lambda/deployconfig"
	"github.com/awslabs/aws-lambda-deploy/lambda/deploycore"

	log "github.com/sirupsen/logrus"
)

const usage = "usage: aws-lambda-deploy [flags] <deploy|update|invoke|status|list|delete|history|serve> [args]"

type options struct {
	LogLevel      string `long:"log-level" description:"log level"`
	ConfigFile    string `long:"config" description:"path to a TOML settings file"`
	Region        string `long:"region" description:"provider region"`
	Endpoint      string `long:"endpoint" description:"provider endpoint override, e.g. a local emulator"`
	RoleName      string `long:"role" description:"execution role name"`
	Runtime       string `long:"runtime" description:"function runtime identifier"`
	Handler       string `long:"handler" description:"function handler"`
	MemorySize    int64  `long:"memory" description:"function memory size in MB"`
	Timeout       int64  `long:"timeout" description:"function timeout in seconds"`
	CodeBucket    string `long:"code-bucket" description:"stage code archives in this bucket instead of sending them inline"`
	RegistryTable string `long:"registry-table" description:"record deployments in this table"`
	EnvSecret     string `long:"env-secret" description:"merge the function environment from this secret"`
	GatewayAddr   string `long:"addr" description:"listen address for the serve command"`
}

func main() {
	opts, args := getCLIArgs()
	deploycore.SetLogLevel(firstOf(opts.LogLevel, deployconfig.DefaultLogLevel))

	settings, err := loadSettings(opts)
	if err != nil {
		log.WithError(err).Fatal("Failed to load deployment settings")
	}
	deploycore.SetLogLevel(settings.LogLevel)

	if len(args) < 2 {
		log.Fatal(usage)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runCommand(ctx, settings, args[1], args[2:]); err != nil {
		log.WithError(err).Fatalf("Command %s failed", args[1])
	}
}

func getCLIArgs() (options, []string) {
	var opts options
	parser := flags.NewParser(&opts, flags.IgnoreUnknown)
	args, err := parser.ParseArgs(os.Args)

	if err != nil {
		log.WithError(err).Fatal("Failed to parse command line arguments:", os.Args)
	}

	return opts, args
}

// loadSettings resolves the effective settings: built-in defaults,
// overlaid by the settings file, overlaid by command line flags.
func loadSettings(opts options) (*deployconfig.Settings, error) {
	settings := deployconfig.DefaultSettings()
	if opts.ConfigFile != "" {
		loaded, err := deployconfig.Load(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		settings = loaded
	}

	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}
	if opts.Region != "" {
		settings.Region = opts.Region
	}
	if opts.Endpoint != "" {
		settings.Endpoint = opts.Endpoint
	}
	if opts.RoleName != "" {
		settings.Deploy.RoleName = opts.RoleName
	}
	if opts.Runtime != "" {
		settings.Deploy.Runtime = opts.Runtime
	}
	if opts.Handler != "" {
		settings.Deploy.Handler = opts.Handler
	}
	if opts.MemorySize > 0 {
		settings.Deploy.MemorySize = opts.MemorySize
	}
	if opts.Timeout > 0 {
		settings.Deploy.Timeout = opts.Timeout
	}
	if opts.CodeBucket != "" {
		settings.Deploy.CodeBucket = opts.CodeBucket
	}
	if opts.RegistryTable != "" {
		settings.RegistryTable = opts.RegistryTable
	}
	if opts.EnvSecret != "" {
		settings.EnvSecret = opts.EnvSecret
	}
	if opts.GatewayAddr != "" {
		settings.GatewayAddr = opts.GatewayAddr
	}

	return settings, nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
