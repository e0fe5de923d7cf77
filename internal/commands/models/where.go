// Copyright 2025 The Switchboard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package models

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// whereEnv builds the expression environment for one catalog row.
// Field names match the JSON output of 'models list'.
func whereEnv(m modelRow) map[string]interface{} {
	return map[string]interface{}{
		"id":             m.ID,
		"provider":       m.Provider,
		"speed":          m.SpeedTier,
		"intelligence":   m.IntelligenceTier,
		"context_window": m.ContextWindow,
		"max_output":     m.MaxOutput,
		"cost_input":     m.CostInput,
		"cost_output":    m.CostOutput,
		"vision":         m.Vision,
		"thinking":       m.Thinking,
		"enabled":        m.Enabled,
		"default":        m.Default,
	}
}

// filterRows keeps the rows for which the expression evaluates true.
// The expression compiles once and runs against each row's environment.
func filterRows(rows []modelRow, expression string) ([]modelRow, error) {
	program, err := expr.Compile(expression,
		// The environment is passed per row at runtime
		expr.AllowUndefinedVariables(),
		// Expression must return boolean
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid --where expression: %w", err)
	}

	filtered := make([]modelRow, 0, len(rows))
	for _, row := range rows {
		result, err := expr.Run(program, whereEnv(row))
		if err != nil {
			return nil, fmt.Errorf("--where evaluation failed: %w", err)
		}
		keep, ok := result.(bool)
		if !ok {
			return nil, fmt.Errorf("--where expression must return a boolean, got %T", result)
		}
		if keep {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}
