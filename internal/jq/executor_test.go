package jq

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestExecutor_Execute(t *testing.T) {
	models := []interface{}{
		map[string]interface{}{"id": "claude-sonnet-4-5", "enabled": true, "cost_input": 3.0},
		map[string]interface{}{"id": "claude-haiku-4", "enabled": true, "cost_input": 0.8},
	}

	tests := []struct {
		name       string
		expression string
		data       interface{}
		want       interface{}
		wantErr    bool
	}{
		{
			name:       "empty expression returns data as-is",
			expression: "",
			data:       map[string]interface{}{"id": "claude-haiku-4"},
			want:       map[string]interface{}{"id": "claude-haiku-4"},
		},
		{
			name:       "simple field extraction",
			expression: ".id",
			data:       map[string]interface{}{"id": "claude-haiku-4"},
			want:       "claude-haiku-4",
		},
		{
			name:       "array map collapses to single result",
			expression: "map(.id)",
			data:       models,
			want:       []interface{}{"claude-sonnet-4-5", "claude-haiku-4"},
		},
		{
			name:       "iteration yields multiple results as array",
			expression: ".[].id",
			data:       models,
			want:       []interface{}{"claude-sonnet-4-5", "claude-haiku-4"},
		},
		{
			name:       "select filter",
			expression: "map(select(.cost_input < 1)) | .[0].id",
			data:       models,
			want:       "claude-haiku-4",
		},
		{
			name:       "invalid expression",
			expression: ".[",
			data:       map[string]interface{}{"id": "x"},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := NewExecutor(DefaultTimeout)
			got, err := executor.Execute(context.Background(), tt.expression, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("Execute() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Execute() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestExecutor_Timeout(t *testing.T) {
	executor := NewExecutor(50 * time.Millisecond)

	// until(false; ...) never terminates; the timeout must fire.
	_, err := executor.Execute(context.Background(), "until(false; . + 1)", 0)
	if err == nil {
		t.Fatal("expected timeout error for non-terminating expression")
	}
}

func TestExecutor_ZeroTimeoutUsesDefault(t *testing.T) {
	executor := NewExecutor(0)
	if executor.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", executor.timeout, DefaultTimeout)
	}
}
