// Package secrets provides display masking for sensitive values.
package secrets

// MaskValue renders a secret for display, keeping just enough of the
// value to identify it. Values of eight characters or fewer mask
// completely so the output leaks neither content nor length.
func MaskValue(value string) string {
	if value == "" {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= 8 {
		return "****"
	}
	return string(runes[:4]) + "..." + string(runes[len(runes)-4:])
}
