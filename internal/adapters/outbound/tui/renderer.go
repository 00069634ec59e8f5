package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ── warm palette ──
var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	success   = lipgloss.Color("#22C55E") // green
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	skipColor = lipgloss.Color("#4B5563") // dark gray
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle     = lipgloss.NewStyle().Foreground(dim)
	passStyle    = lipgloss.NewStyle().Foreground(success).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(danger).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(danger)
	revertStyle  = lipgloss.NewStyle().Foreground(warning)
	migrateStyle = lipgloss.NewStyle().Foreground(success)
	skipStyle    = lipgloss.NewStyle().Foreground(skipColor).Italic(true)
	classStyle   = lipgloss.NewStyle().Bold(true).Foreground(fg)
)

// LineKind classifies a line of command output for styling.
type LineKind int

const (
	PlainLine LineKind = iota
	PassedLine
	FailedLine
	SkippedLine
	HeaderLine
	ClassLine
	MessageLine
	MigratedLine
	RevertedLine
	DetailLine
)

// Classify decides how a command output line is styled. Indented lines carry
// class names and messages, so only top-level lines are matched on status
// keywords.
func Classify(line string) LineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "== "):
		return HeaderLine
	case strings.HasPrefix(trimmed, "++ "):
		return MigratedLine
	case strings.HasPrefix(trimmed, "-- "):
		return RevertedLine
	case strings.HasPrefix(trimmed, ">> "):
		return DetailLine
	case strings.HasPrefix(line, "    "):
		return MessageLine
	case strings.HasPrefix(line, "  "):
		return ClassLine
	case strings.HasPrefix(line, "Available commands"):
		return HeaderLine
	case strings.Contains(line, "PASSED"):
		return PassedLine
	case strings.Contains(line, "FAILED"):
		return FailedLine
	case strings.Contains(line, "SKIPPED"),
		strings.Contains(line, "not possible, the driver"),
		strings.Contains(line, "not available, the driver"):
		return SkippedLine
	}
	return PlainLine
}

// RenderLines renders command output, one line per entry. With plain set
// the lines are returned unstyled.
func RenderLines(lines []string, plain bool) string {
	if len(lines) == 0 {
		return ""
	}
	if plain {
		return strings.Join(lines, "\n") + "\n"
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(renderLine(line))
		b.WriteString("\n")
	}
	return b.String()
}

func renderLine(line string) string {
	switch Classify(line) {
	case PassedLine:
		return passStyle.Render(line)
	case FailedLine:
		return failStyle.Render(line)
	case SkippedLine:
		return skipStyle.Render(line)
	case HeaderLine:
		return headerStyle.Render(line)
	case ClassLine:
		return classStyle.Render(line)
	case MessageLine:
		return errorStyle.Render(line)
	case MigratedLine:
		return migrateStyle.Render(line)
	case RevertedLine:
		return revertStyle.Render(line)
	case DetailLine:
		return dimStyle.Render(line)
	}
	return line
}

// RenderError renders an error for stderr.
func RenderError(err error, plain bool) string {
	msg := "Error: " + err.Error()
	if plain {
		return msg + "\n"
	}
	return failStyle.Render(msg) + "\n"
}
