// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package tracer

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu            sync.Mutex
	traceMessages []string
)

// Log just adds a message to the trace log.
func Log(msg string) {
	mu.Lock()
	traceMessages = append(traceMessages, msg)
	mu.Unlock()
}

// Len returns the number of buffered messages.
func Len() int {
	mu.Lock()
	defer mu.Unlock()
	return len(traceMessages)
}

// FlushTo writes the accumulated trace log to w and resets it.
func FlushTo(w io.Writer) error {
	mu.Lock()
	msgs := traceMessages
	// reset so the next run starts fresh
	traceMessages = nil
	mu.Unlock()

	for _, msg := range msgs {
		if _, err := fmt.Fprintln(w, msg); err != nil {
			return err
		}
	}
	return nil
}

// Flush prints the accumulated trace log to stdout and resets it.
func Flush() {
	_ = FlushTo(os.Stdout)
}
