package ui

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/ashureev/restwell/internal/baseline"
	"github.com/ashureev/restwell/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, Styles.Success.Render("✓ "+fmt.Sprintf(format, args...)))
}

// PrintError prints an error message
func PrintError(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, Styles.Error.Render("✗ "+fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, Styles.Warning.Render("⚠ "+fmt.Sprintf(format, args...)))
}

// PrintInfo prints an info message
func PrintInfo(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, Styles.Info.Render("ℹ "+fmt.Sprintf(format, args...)))
}

// RenderReport formats an assessment as two boxed sections.
func RenderReport(r *baseline.Report) string {
	caffeineTitle := "☕ Caffeine"
	if r.Caffeine.Estimated {
		caffeineTitle += " " + Badge("EST", "yellow")
	}

	header := Styles.Muted.Render(fmt.Sprintf("Age group %s · %s", r.Assessment.Bucket, r.Assessment.Gender))
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		renderSection("😴 Sleep", r.Sleep),
		renderSection(caffeineTitle, r.Caffeine),
	)
}

func renderSection(title string, s baseline.Section) string {
	var b strings.Builder
	b.WriteString(Styles.Bold.Render(title))
	b.WriteString("  ")
	b.WriteString(Badge(s.Badge.Label, string(s.Badge.Tone)))
	b.WriteString("\n")
	b.WriteString(s.Summary)
	for _, tip := range s.Tips {
		b.WriteString("\n")
		b.WriteString(Styles.Tip.Render("→ " + tip))
	}
	if s.Congrats != "" {
		b.WriteString("\n")
		b.WriteString(Styles.Congrats.Render("🎉 " + s.Congrats))
	}
	return Styles.Box.Render(b.String())
}

// RenderBaselines formats the baseline table.
func RenderBaselines(rows []baseline.Baseline) string {
	var b strings.Builder
	b.WriteString(Styles.Bold.Render(fmt.Sprintf("%-7s %-7s %-16s %-14s", "AGE", "GENDER", "SLEEP avg/min/max", "CAFFEINE avg/max")))
	for _, row := range rows {
		fmt.Fprintf(&b, "\n%-7s %-7s %-17s %-14s",
			row.Bucket, row.Gender,
			fmt.Sprintf("%g/%g/%g h", row.Sleep.Avg, row.Sleep.Min, row.Sleep.Max),
			fmt.Sprintf("%g/%g mg", row.Caffeine.Avg, row.Caffeine.Max),
		)
	}
	return b.String()
}

// RenderStats formats the chat audit aggregate.
func RenderStats(s *domain.ChatStats) string {
	var b strings.Builder
	b.WriteString(Styles.Bold.Render("Chat requests since " + s.Since.Local().Format("2006-01-02 15:04")))
	fmt.Fprintf(&b, "\nTotal: %d", s.Total)
	fmt.Fprintf(&b, "\nAverage latency: %.0f ms", s.AvgLatencyMs)
	for _, outcome := range slices.Sorted(maps.Keys(s.ByOutcome)) {
		fmt.Fprintf(&b, "\n  %-20s %d", outcome, s.ByOutcome[outcome])
	}
	if len(s.Recent) > 0 {
		b.WriteString("\n" + Styles.Bold.Render("Recent"))
		for _, r := range s.Recent {
			fmt.Fprintf(&b, "\n  %s  %-4s %3d %-20s %d ms",
				r.CreatedAt.Local().Format("15:04:05"), r.Channel, r.Status, r.Outcome, r.LatencyMs)
		}
	}
	return Styles.Box.Render(b.String())
}

// ChatPrompt is printed before each user line.
func ChatPrompt() string {
	return Styles.User.Render("you › ")
}

// RenderReply formats an assistant reply.
func RenderReply(text string) string {
	return Styles.AI.Render("restwell › " + text)
}

// PrintChatWelcomeBanner prints the banner for chat mode.
func PrintChatWelcomeBanner(w io.Writer) {
	banner := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("86")).
		Padding(0, 2).
		Render(Styles.Bold.Render("RestWell chat") + "\n" + Styles.Muted.Render("Ask about sleep or caffeine. Type /exit to quit."))
	fmt.Fprintln(w, banner)
}
