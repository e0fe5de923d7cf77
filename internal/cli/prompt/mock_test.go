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

package prompt

import (
	"context"
	"testing"
)

func TestMockPrompter_Confirm(t *testing.T) {
	tests := []struct {
		name      string
		responses []bool
		def       bool
		want      bool
	}{
		{
			name:      "returns scripted answer",
			responses: []bool{true},
			def:       false,
			want:      true,
		},
		{
			name:      "returns default when script exhausted",
			responses: []bool{},
			def:       true,
			want:      true,
		},
		{
			name:      "scripted no overrides default yes",
			responses: []bool{false},
			def:       true,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mp := NewMockPrompter(true, tt.responses...)
			got, err := mp.Confirm(context.Background(), "Remove model?", tt.def)
			if err != nil {
				t.Fatalf("Confirm() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMockPrompter_ConfirmSequence(t *testing.T) {
	mp := NewMockPrompter(true, true, false)

	first, err := mp.Confirm(context.Background(), "first", false)
	if err != nil {
		t.Fatalf("first Confirm() error: %v", err)
	}
	second, err := mp.Confirm(context.Background(), "second", true)
	if err != nil {
		t.Fatalf("second Confirm() error: %v", err)
	}

	if !first || second {
		t.Errorf("expected (true, false), got (%v, %v)", first, second)
	}

	log := mp.GetCallLog()
	if len(log) != 2 {
		t.Fatalf("expected 2 logged calls, got %d", len(log))
	}
	if log[0] != "Confirm(first)" {
		t.Errorf("unexpected first log entry: %q", log[0])
	}
}

func TestMockPrompter_NonInteractive(t *testing.T) {
	mp := NewMockPrompter(false, true)

	if mp.IsInteractive() {
		t.Error("expected IsInteractive() to be false")
	}

	if _, err := mp.Confirm(context.Background(), "anything", false); err == nil {
		t.Error("expected error from non-interactive Confirm")
	}
}

func TestMockPrompter_Reset(t *testing.T) {
	mp := NewMockPrompter(true, false)

	if _, err := mp.Confirm(context.Background(), "q", true); err != nil {
		t.Fatalf("Confirm() error: %v", err)
	}

	mp.Reset()

	got, err := mp.Confirm(context.Background(), "q", true)
	if err != nil {
		t.Fatalf("Confirm() after Reset error: %v", err)
	}
	if got != false {
		t.Error("expected the scripted answer to replay after Reset")
	}
	if len(mp.GetCallLog()) != 1 {
		t.Errorf("expected call log reset, got %d entries", len(mp.GetCallLog()))
	}
}

func TestSurveyPrompter_NonInteractive(t *testing.T) {
	sp := NewSurveyPrompter(false)

	if sp.IsInteractive() {
		t.Error("expected IsInteractive() to be false")
	}

	if _, err := sp.Confirm(context.Background(), "Remove?", false); err == nil {
		t.Error("expected error from non-interactive Confirm")
	}
}
