package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hongminglow/wayfarer/internal/session"
)

// Styles is the palette for one theme.
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
}

// NewStyles returns the palette for theme.
func NewStyles(theme session.Theme) Styles {
	if theme == session.ThemeLight {
		return Styles{
			Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
			Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
			Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
			Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
			Success: lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		}
	}
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("117")),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

// Printer writes themed output.
type Printer struct {
	W      io.Writer
	Styles Styles
}

// Title prints a heading.
func (p Printer) Title(text string) {
	fmt.Fprintln(p.W, p.Styles.Title.Render(text))
}

// Line prints a formatted line.
func (p Printer) Line(format string, args ...any) {
	fmt.Fprintf(p.W, format+"\n", args...)
}

// Field prints "label: value", skipping empty values.
func (p Printer) Field(label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(p.W, "  %s %s\n", p.Styles.Label.Render(label+":"), value)
}

// Muted prints secondary text.
func (p Printer) Muted(format string, args ...any) {
	fmt.Fprintln(p.W, p.Styles.Muted.Render(fmt.Sprintf(format, args...)))
}

// Success prints a confirmation.
func (p Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.W, p.Styles.Success.Render(fmt.Sprintf(format, args...)))
}

// Error prints an inline error.
func (p Printer) Error(text string) {
	if text == "" {
		return
	}
	fmt.Fprintln(p.W, p.Styles.Error.Render(text))
}
