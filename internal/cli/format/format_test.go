package format

import (
	"strings"
	"testing"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		want  string
	}{
		{name: "whole dollars", price: 3.0, want: "$3.00/1M"},
		{name: "sub-dollar", price: 0.8, want: "$0.80/1M"},
		{name: "frontier pricing", price: 75.0, want: "$75.00/1M"},
		{name: "free", price: 0, want: "$0.00/1M"},
		{name: "fractional cents", price: 0.25, want: "$0.25/1M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPrice(tt.price); got != tt.want {
				t.Errorf("FormatPrice(%v) = %q, want %q", tt.price, got, tt.want)
			}
		})
	}
}

func TestFormatTokens(t *testing.T) {
	tests := []struct {
		name   string
		tokens int
		want   string
	}{
		{name: "small count unchanged", tokens: 512, want: "512"},
		{name: "even thousands", tokens: 200000, want: "200K"},
		{name: "uneven thousands", tokens: 8192, want: "8.2K"},
		{name: "even millions", tokens: 1000000, want: "1M"},
		{name: "uneven millions", tokens: 1500000, want: "1.5M"},
		{name: "zero", tokens: 0, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTokens(tt.tokens); got != tt.want {
				t.Errorf("FormatTokens(%d) = %q, want %q", tt.tokens, got, tt.want)
			}
		})
	}
}

func TestFormatJSON(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantErr  bool
		contains string
	}{
		{
			name:     "compact object indented",
			content:  `{"model_id":"claude-sonnet-4-5","enabled":true}`,
			wantErr:  false,
			contains: "  \"model_id\"",
		},
		{
			name:     "array",
			content:  `[1,2,3]`,
			wantErr:  false,
			contains: "1",
		},
		{
			name:    "invalid JSON",
			content: `{"model_id":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatJSON(tt.content)
			if (err != nil) != tt.wantErr {
				t.Errorf("FormatJSON() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.contains != "" && !strings.Contains(got, tt.contains) {
				t.Errorf("FormatJSON() output should contain %q, got %q", tt.contains, got)
			}
		})
	}
}
