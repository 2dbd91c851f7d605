package ui

import (
	"fmt"
	"strings"

	"ammonit/internal/pager"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// RenderMarkdown renders md for the terminal, wrapped at width. It returns
// md unchanged if rendering fails.
func RenderMarkdown(md string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func helpMarkdown() string {
	var b strings.Builder
	b.WriteString("# Ayuda\n\n## Navegación\n\n")
	writeBindings(&b, appKeys.FullHelp())
	b.WriteString("\n## Tabla\n\n")
	writeBindings(&b, pager.Keys.FullHelp())
	b.WriteString("\nLa página de cada sección se guarda y se recupera al volver a abrir la consola.\n")
	return b.String()
}

func writeBindings(b *strings.Builder, groups [][]key.Binding) {
	for _, group := range groups {
		for _, k := range group {
			h := k.Help()
			fmt.Fprintf(b, "- `%s` %s\n", h.Key, h.Desc)
		}
	}
}

func (m AppModel) helpView() string {
	return helpStyle.Render(RenderMarkdown(helpMarkdown(), m.width)) + "\n" +
		footerStyle.Render("Pulsa cualquier tecla para volver")
}
