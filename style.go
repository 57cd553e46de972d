package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

const helpWidth = 78

var keywordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)

func keyword(s string) string {
	return keywordStyle.Render(s)
}

// paragraph wraps help text and indents it by two columns.
func paragraph(s string) string {
	return indent.String(wordwrap.String(s, helpWidth-2), 2)
}
