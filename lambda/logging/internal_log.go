// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// SetOutput configures logging output for standard loggers.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
	logrus.SetOutput(w)
}

// InternalFormatter renders internal log entries as
// '02 Jan 2006 15:04:05,000 [LEVEL] message key=value'.
type InternalFormatter struct{}

// Format renders a single log entry.
func (f *InternalFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	// time with comma separator for fraction of second
	time := entry.Time.Format("02 Jan 2006 15:04:05.000")
	time = strings.Replace(time, ".", ",", 1)
	fmt.Fprint(b, time)

	fmt.Fprintf(b, " [%s]", strings.ToUpper(entry.Level.String()))
	fmt.Fprintf(b, " %s", entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(b, " %s=%v", key, entry.Data[key])
	}

	fmt.Fprint(b, "\n")
	return b.Bytes(), nil
}
