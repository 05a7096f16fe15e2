package main

import (
	"fmt"
	"strings"

	"github.com/Hadidomena/inqwheel/cryptography"
	"github.com/Hadidomena/inqwheel/wheelcipher"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")).
			Italic(true)
)

// renderWheels prints the key header followed by the five wheel rows.
func renderWheels(ws *wheelcipher.WheelSet) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("Wheels for key " + cryptography.FormatKey(ws.Key())))
	sb.WriteString("\n")
	sb.WriteString(ws.Render())
	return sb.String()
}

// renderSkipped lists diagnostics one per line, or returns "" when there are none.
func renderSkipped(diags []wheelcipher.Diagnostic) string {
	if len(diags) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, d := range diags {
		sb.WriteString(warnStyle.Render(fmt.Sprintf("skipped %q at %d: %v", d.Token, d.Position, d.Kind)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderHint(s string) string {
	return hintStyle.Render(s)
}
