// Package format renders prices, token counts, and JSON for CLI output.
package format

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FormatPrice renders a per-million-token price as "$3.00/1M".
func FormatPrice(perMillion float64) string {
	return fmt.Sprintf("$%.2f/1M", perMillion)
}

// FormatTokens renders a token count in compact form.
// 200000 -> "200K", 8192 -> "8.2K", 1000000 -> "1M".
func FormatTokens(n int) string {
	switch {
	case n >= 1_000_000:
		if n%1_000_000 == 0 {
			return fmt.Sprintf("%dM", n/1_000_000)
		}
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		if n%1_000 == 0 {
			return fmt.Sprintf("%dK", n/1_000)
		}
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.Itoa(n)
	}
}

// FormatJSON pretty-prints JSON with 2-space indentation.
// Returns formatted JSON if valid, error otherwise.
func FormatJSON(content string) (string, error) {
	var obj interface{}
	if err := json.Unmarshal([]byte(content), &obj); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	formatted, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format JSON: %w", err)
	}

	return string(formatted), nil
}
