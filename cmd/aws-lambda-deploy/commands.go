// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/awslabs/aws-lambda-deploy/lambda/awsapi"
	"github.com/awslabs/aws-lambda-deploy/lambda/deployconfig"
	"github.com/awslabs/aws-lambda-deploy/lambda/deploycore"
	"github.com/awslabs/aws-lambda-deploy/lambda/gateway"
	"github.com/awslabs/aws-lambda-deploy/lambda/kvtable"
	"github.com/awslabs/aws-lambda-deploy/lambda/objectstore"
	"github.com/awslabs/aws-lambda-deploy/lambda/secretstore"

	log "github.com/sirupsen/logrus"
)

// stack wires the provider clients behind the deployment core for one
// command invocation. Optional collaborators stay nil unless the
// settings ask for them.
type stack struct {
	settings *deployconfig.Settings
	deployer *deploycore.Deployer
	store    *objectstore.Store
	registry *kvtable.Table
	secrets  *secretstore.Store
}

func newStack(settings *deployconfig.Settings) (*stack, error) {
	sess, err := awsapi.NewSession(awsapi.ClientConfig{Region: settings.Region, Endpoint: settings.Endpoint})
	if err != nil {
		return nil, err
	}

	deployer := deploycore.NewDeployer(settings.Deploy, awsapi.NewIdentityService(sess), awsapi.NewFunctionService(sess))
	s := &stack{settings: settings, deployer: deployer}

	if settings.Deploy.CodeBucket != "" {
		s.store = objectstore.New(sess)
		deployer.SetCodeStore(s.store)
	}
	if settings.RegistryTable != "" {
		s.registry = kvtable.New(sess, settings.RegistryTable)
	}
	if settings.EnvSecret != "" {
		s.secrets = secretstore.New(sess)
	}

	return s, nil
}

// prepare makes sure the supporting provider resources exist and the
// shared environment is resolved before a deployment starts.
func (s *stack) prepare(ctx context.Context) error {
	if s.store != nil {
		if err := s.store.EnsureBucket(ctx, s.settings.Deploy.CodeBucket); err != nil {
			return err
		}
	}
	if s.registry != nil {
		if err := s.registry.EnsureTable(ctx); err != nil {
			return err
		}
	}
	if s.secrets != nil {
		env, err := s.secrets.GetMap(ctx, s.settings.EnvSecret)
		if err != nil {
			return err
		}
		if s.settings.Deploy.Environment == nil {
			s.settings.Deploy.Environment = make(map[string]string, len(env))
		}
		for key, value := range env {
			s.settings.Deploy.Environment[key] = value
		}
		log.WithField("secret", s.settings.EnvSecret).Info("Merged function environment from secret")
	}
	return nil
}

// record writes a registry row for a completed deployment. Registry
// failures are logged, not fatal: the function is already deployed.
func (s *stack) record(ctx context.Context, operation string, name string, arn string, sourceBytes int) {
	if s.registry == nil {
		return
	}
	err := s.registry.PutRecord(ctx, &kvtable.Record{
		Function:    name,
		DeployedAt:  time.Now(),
		Operation:   operation,
		ARN:         arn,
		Runtime:     s.settings.Deploy.Runtime,
		SourceBytes: int64(sourceBytes),
	})
	if err != nil {
		log.WithError(err).Warn("Failed to record deployment in registry")
	}
}

func runCommand(ctx context.Context, settings *deployconfig.Settings, command string, args []string) error {
	s, err := newStack(settings)
	if err != nil {
		return err
	}

	switch command {
	case "deploy":
		return runDeploy(ctx, s, args)
	case "update":
		return runUpdate(ctx, s, args)
	case "invoke":
		return runInvoke(ctx, s, args)
	case "status":
		return runStatus(ctx, s, args)
	case "list":
		return runList(ctx, s)
	case "delete":
		return runDelete(ctx, s, args)
	case "history":
		return runHistory(ctx, s, args)
	case "serve":
		return runServe(ctx, s)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func runDeploy(ctx context.Context, s *stack, args []string) error {
	if err := s.prepare(ctx); err != nil {
		return err
	}

	if len(args) == 0 {
		return deployManifest(ctx, s)
	}
	if len(args) != 2 {
		return errors.New("usage: deploy <name> <source-file>, or deploy with --config pointing at a manifest")
	}

	source, err := ioutil.ReadFile(args[1])
	if err != nil {
		return err
	}

	arn, err := s.deployer.Deploy(ctx, args[0], string(source), nil)
	if err != nil {
		return err
	}

	s.record(ctx, "deploy", args[0], arn, len(source))
	fmt.Println(arn)
	return nil
}

// deployManifest deploys every function block of the settings file,
// fanning out across functions. Functions are independent resources, so
// a failure of one does not roll back the others.
func deployManifest(ctx context.Context, s *stack) error {
	functions := s.settings.Functions
	if len(functions) == 0 {
		return errors.New("deploy: no function name given and the settings file has no function blocks")
	}
	log.WithField("count", len(functions)).Info("Deploying manifest functions")

	group, groupCtx := errgroup.WithContext(ctx)
	for _, spec := range functions {
		spec := spec
		group.Go(func() error {
			source, err := spec.ReadSource()
			if err != nil {
				return err
			}
			arn, err := s.deployer.Deploy(groupCtx, spec.Name, source, spec.DeployOptions())
			if err != nil {
				return err
			}
			s.record(groupCtx, "deploy", spec.Name, arn, len(source))
			fmt.Printf("%s\t%s\n", spec.Name, arn)
			return nil
		})
	}

	return group.Wait()
}

func runUpdate(ctx context.Context, s *stack, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: update <name> <source-file>")
	}
	if err := s.prepare(ctx); err != nil {
		return err
	}

	source, err := ioutil.ReadFile(args[1])
	if err != nil {
		return err
	}

	arn, err := s.deployer.Update(ctx, args[0], string(source))
	if err != nil {
		return err
	}

	s.record(ctx, "update", args[0], arn, len(source))
	fmt.Println(arn)
	return nil
}

func runInvoke(ctx context.Context, s *stack, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: invoke <name> [payload-json | @payload-file]")
	}

	raw := "{}"
	if len(args) > 1 {
		raw = args[1]
		if strings.HasPrefix(raw, "@") {
			data, err := ioutil.ReadFile(strings.TrimPrefix(raw, "@"))
			if err != nil {
				return err
			}
			raw = string(data)
		}
	}

	var payload interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return fmt.Errorf("invoke payload is not valid JSON: %w", err)
	}

	result, err := s.deployer.Invoke(ctx, args[0], payload)
	if err != nil {
		return err
	}

	return printJSON(result)
}

func runStatus(ctx context.Context, s *stack, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: status <name>")
	}

	desc, err := s.deployer.Status(ctx, args[0])
	if err != nil {
		return err
	}

	return printJSON(gateway.NewFunctionView(desc))
}

func runList(ctx context.Context, s *stack) error {
	summaries, err := s.deployer.List(ctx)
	if err != nil {
		return err
	}

	return printJSON(gateway.NewFunctionListView(summaries))
}

func runDelete(ctx context.Context, s *stack, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <name>")
	}
	return s.deployer.Delete(ctx, args[0])
}

func runHistory(ctx context.Context, s *stack, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: history <name>")
	}
	if s.registry == nil {
		return errors.New("history requires a registry table (--registry-table or registry_table)")
	}

	records, err := s.registry.ListRecords(ctx, args[0])
	if err != nil {
		return err
	}

	for _, record := range records {
		fmt.Printf("%s  %-6s  %s  %d bytes\n",
			record.DeployedAt.Format(time.RFC3339), record.Operation, record.ARN, record.SourceBytes)
	}
	return nil
}

func runServe(ctx context.Context, s *stack) error {
	host, port, err := splitListenAddr(s.settings.GatewayAddr)
	if err != nil {
		return err
	}

	srv := gateway.NewServer(host, port, s.deployer)
	if err := srv.Listen(); err != nil {
		return err
	}
	log.Infof("Function API available at http://%s:%d", srv.Host(), srv.Port())

	err = srv.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info("Shutting down")
		return nil
	}
	return err
}

func splitListenAddr(addr string) (string, int, error) {
	host, portValue, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return "", 0, fmt.Errorf("invalid listen port %q: %w", portValue, err)
	}
	return host, port, nil
}

// printJSON writes command output to stdout; logs stay on stderr.
func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
