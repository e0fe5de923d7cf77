// Package jq runs user-supplied jq filters over command output.
package jq

import (
	"context"
	"fmt"
	"time"

	"github.com/itchyny/gojq"
)

// DefaultTimeout bounds filter execution; jq programs can loop forever.
const DefaultTimeout = time.Second

// Executor compiles and runs jq filters against decoded JSON values.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an executor. A zero timeout means DefaultTimeout.
func NewExecutor(timeout time.Duration) *Executor {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Executor{timeout: timeout}
}

// Execute runs a jq filter over data, which must hold encoding/json value
// types (map[string]any, []any, string, float64, bool, nil). An empty
// filter is the identity. A filter producing one value returns it bare;
// several values come back as an array.
func (e *Executor) Execute(ctx context.Context, filter string, data any) (any, error) {
	if filter == "" {
		return data, nil
	}

	query, err := gojq.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compile error: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var results []any
	iter := code.RunWithContext(runCtx, data)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if runErr, isErr := v.(error); isErr {
			if runCtx.Err() != nil {
				return nil, fmt.Errorf("filter timed out after %v", e.timeout)
			}
			return nil, runErr
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}
