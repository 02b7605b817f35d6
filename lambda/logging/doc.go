// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

/*

The deploy tool emits two output streams:

1. Internal logs: the tool's own application logs into stderr for operational use
2. Command output: invoke payloads, listings and ARNs into stdout, machine-readable

Keeping the streams apart lets callers pipe stdout into other tooling
while log verbosity is tuned independently via the log level flag.

*/
package logging
