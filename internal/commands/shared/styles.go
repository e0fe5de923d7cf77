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

package shared

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// styled reports whether stdout gets ANSI styling. Piped output, NO_COLOR,
// and dumb terminals all render plain so scripts never see escape codes.
var styled = detectStyling()

func detectStyling() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if t := os.Getenv("TERM"); t == "dumb" || t == "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// colorStyle builds a foreground style, or a no-op style when stdout is
// not a styling-capable terminal.
func colorStyle(color string) lipgloss.Style {
	if !styled {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func boldStyle() lipgloss.Style {
	if !styled {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Bold(true)
}

// CLI style colors using lipgloss
var (
	// StatusOK styles success indicators
	StatusOK = colorStyle("42") // green

	// StatusWarn styles warning indicators
	StatusWarn = colorStyle("214") // orange

	// StatusError styles error indicators
	StatusError = colorStyle("196") // red

	// StatusInfo styles informational text
	StatusInfo = colorStyle("39") // blue

	// Muted styles secondary/less important text
	Muted = colorStyle("245") // gray

	// Bold styles emphasized text
	Bold = boldStyle()

	// Header styles section headers
	Header = colorStyle("39").Bold(styled) // blue bold
)

// Symbols for status indicators
const (
	SymbolOK    = "✓"
	SymbolWarn  = "⚠"
	SymbolError = "✗"
	SymbolInfo  = "•"
)

// RenderOK renders a success message with green checkmark
func RenderOK(msg string) string {
	return StatusOK.Render(SymbolOK) + " " + msg
}

// RenderWarn renders a warning message with orange symbol
func RenderWarn(msg string) string {
	return StatusWarn.Render(SymbolWarn) + " " + msg
}

// RenderError renders an error message with red X
func RenderError(msg string) string {
	return StatusError.Render(SymbolError) + " " + msg
}

// RenderStatus renders a status label like [OK] or [FAIL]
func RenderStatus(ok bool, label string) string {
	if ok {
		return StatusOK.Render("[" + label + "]")
	}
	return StatusError.Render("[" + label + "]")
}

// RenderLabel renders a dim label (for key: value pairs)
func RenderLabel(label string) string {
	return Muted.Render(label)
}

// RenderEnabled renders a model's enabled state
func RenderEnabled(enabled bool) string {
	if enabled {
		return StatusOK.Render("enabled")
	}
	return Muted.Render("disabled")
}

// RenderDefault renders the default-model marker shown next to a model ID
func RenderDefault() string {
	return Bold.Render("(default)")
}
