package cmd

import (
	"fmt"
	"strings"

	"github.com/corey/notelink/internal/adapters/socket"
	"github.com/corey/notelink/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorGray    = "\033[90m"
)

// colorEnabled is resolved from --color before any command runs.
var colorEnabled = true

func paint(color, s string) string {
	if !colorEnabled {
		return s
	}
	return color + s + colorReset
}

// formatMatches formats raw title hits, one per line.
//
//	⚡ 3 hits │ 14µs
//	  0-3    baz    → a.md
func formatMatches(r *socket.MatchResult) string {
	var sb strings.Builder
	sb.WriteString(paint(colorBold, fmt.Sprintf("⚡ %d hits", r.Count)))
	if r.Elapsed != "" {
		sb.WriteString(" │ " + r.Elapsed)
	}
	sb.WriteString("\n")
	writeHits(&sb, r.Hits)
	return sb.String()
}

// formatLinks formats the selected links. With render set it returns the
// rewritten text only, so the output can be piped back into a file.
func formatLinks(r *socket.LinkResult, render bool) string {
	if render {
		return r.Rendered
	}
	var sb strings.Builder
	sb.WriteString(paint(colorBold, fmt.Sprintf("⚡ %d links", r.Count)))
	if r.Elapsed != "" {
		sb.WriteString(" │ " + r.Elapsed)
	}
	sb.WriteString("\n")
	writeHits(&sb, r.Links)
	return sb.String()
}

func writeHits(sb *strings.Builder, hits []socket.TitleHit) {
	for _, h := range hits {
		sb.WriteString(fmt.Sprintf("  %s  %s  → %s",
			paint(colorGray, fmt.Sprintf("%d-%d", h.Start, h.End)),
			paint(colorCyan, h.Text),
			paint(colorMagenta, h.NoteID)))
		if h.Text != h.Title {
			sb.WriteString(fmt.Sprintf(" (%s)", h.Title))
		}
		sb.WriteString("\n")
	}
}

// formatTitles formats the linkable titles.
func formatTitles(r *socket.TitlesResult) string {
	var sb strings.Builder
	sb.WriteString(paint(colorBold, fmt.Sprintf("⚡ %d titles", r.Count)))
	sb.WriteString(fmt.Sprintf(" │ longest %d\n", r.MaxLength))
	for _, n := range r.Notes {
		sb.WriteString(fmt.Sprintf("  %s  %s\n", paint(colorCyan, n.Title), paint(colorGray, n.ID)))
	}
	return sb.String()
}

// formatBacklinks formats the notes linking to a target.
func formatBacklinks(r *socket.BacklinksResult) string {
	var sb strings.Builder
	sb.WriteString(paint(colorBold, fmt.Sprintf("⚡ %d notes link to %s", r.Count, r.Target.Title)))
	sb.WriteString("\n")
	for _, n := range r.Notes {
		sb.WriteString(fmt.Sprintf("  %s  %s\n", paint(colorCyan, n.Title), paint(colorGray, n.ID)))
	}
	return sb.String()
}

// formatNotes formats a note listing.
func formatNotes(notes []*ports.Note) string {
	var sb strings.Builder
	sb.WriteString(paint(colorBold, fmt.Sprintf("⚡ %d notes", len(notes))))
	sb.WriteString("\n")
	for _, n := range notes {
		title := n.Title
		if title == "" {
			title = paint(colorYellow, "(untitled)")
		} else {
			title = paint(colorCyan, title)
		}
		sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", title, paint(colorGray, n.ID), n.Source))
	}
	return sb.String()
}

// formatHealth formats a HealthResult for terminal display.
func formatHealth(h *socket.HealthResult) string {
	var sb strings.Builder
	sb.WriteString(paint(colorBold, "⚡ notelink daemon") + "\n")
	sb.WriteString(fmt.Sprintf("  Status:   %s\n", paint(colorGreen, h.Status)))
	sb.WriteString(fmt.Sprintf("  Notes:    %d\n", h.NoteCount))
	sb.WriteString(fmt.Sprintf("  Titles:   %d (longest %d)\n", h.TitleCount, h.MaxLength))
	sb.WriteString(fmt.Sprintf("  Engine:   %s\n", h.Engine))
	sb.WriteString(fmt.Sprintf("  Version:  %d\n", h.Version))
	sb.WriteString(fmt.Sprintf("  Dir:      %s\n", h.NotesDir))
	sb.WriteString(fmt.Sprintf("  Uptime:   %s\n", h.Uptime))
	return sb.String()
}
