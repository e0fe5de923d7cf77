package secrets

import "testing"

func TestMaskValue(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"empty", "", ""},
		{"single char", "x", "****"},
		{"exactly eight", "12345678", "****"},
		{"nine chars shows ends", "123456789", "1234...6789"},
		{"api key", "swb_a1b2c3d4e5f6", "swb_...e5f6"},
		{"provider key", "sk-ant-api03-xyzzy42", "sk-a...zy42"},
		{"multibyte runes", "pässwörd-geheim", "päss...heim"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskValue(tt.value); got != tt.want {
				t.Errorf("MaskValue(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
