package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/schemax/internal/tasks"
)

// Each color has a light and a dark terminal variant.
var (
	accent   = lipgloss.AdaptiveColor{Light: "#0B5CAD", Dark: "#5FB3F9"}
	success  = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#3FB950"}
	danger   = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"}
	fallback = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#D29922"}
	muted    = lipgloss.AdaptiveColor{Light: "#6E7781", Dark: "#8B949E"}
)

var styles = newPalette()

// palette holds one style per tracker element.
type palette struct {
	title     lipgloss.Style
	completed lipgloss.Style
	failed    lipgloss.Style
	push      lipgloss.Style
	pull      lipgloss.Style
	tab       lipgloss.Style
	activeTab lipgloss.Style
}

func newPalette() palette {
	return palette{
		title:     lipgloss.NewStyle().Foreground(accent).Bold(true).MarginBottom(1),
		completed: lipgloss.NewStyle().Foreground(success).Bold(true),
		failed:    lipgloss.NewStyle().Foreground(danger).Bold(true),
		push:      lipgloss.NewStyle().Foreground(muted).Italic(true),
		pull:      lipgloss.NewStyle().Foreground(fallback).Italic(true),
		tab:       lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		activeTab: lipgloss.NewStyle().Foreground(accent).Bold(true).Underline(true).Padding(0, 1),
	}
}

// channelStyle marks the polling fallback apart from the push channel.
func (p palette) channelStyle(kind tasks.ChannelKind) lipgloss.Style {
	if kind == tasks.PullKind {
		return p.pull
	}
	return p.push
}
