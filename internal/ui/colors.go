package ui

import "github.com/charmbracelet/lipgloss"

var styles = newPalette()

// Palette is the stylesheet shared by every view.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
}

func newPalette() *Palette {
	return &Palette{
		title: NewBold("#7D56F4").MarginBottom(1),
		ok:    NewBold("#04B575"),
		err:   NewBold("#FF5F87"),
		warn:  NewStyle("#FFA500"),
	}
}

// NewStyle returns a style with only a foreground color set.
func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

// NewBold is [NewStyle] in bold.
func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}
