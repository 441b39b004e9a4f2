package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mikey/email-classifier/internal/core"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	indexStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subjectStyle  = lipgloss.NewStyle().Bold(true)
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	priorityStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// PrintActionList writes the ranked action-required emails as a numbered list
func PrintActionList(w io.Writer, ranked []*core.Email) error {
	if len(ranked) == 0 {
		_, err := fmt.Fprintln(w, "No emails require action.")
		return err
	}

	lines := []string{headerStyle.Render("Emails requiring action")}
	for i, e := range ranked {
		lines = append(lines,
			fmt.Sprintf("%s %s %s",
				indexStyle.Render(fmt.Sprintf("%d.", i+1)),
				priorityStyle.Render(fmt.Sprintf("[%s]", priorityText(e))),
				subjectStyle.Render(subjectOrPlaceholder(e))),
			metaStyle.Render(fmt.Sprintf("   from %s, category %s", senderOrPlaceholder(e), e.CategoryLabel())),
		)
	}

	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, lines...))
	return err
}

// PrintSummary writes the mail total and the per-category counts
func PrintSummary(w io.Writer, summary *core.Summary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Total mails: %d\n", len(summary.Emails))
	counts := summary.Groups.Counts()
	for _, label := range summary.Groups.Labels() {
		fmt.Fprintf(&b, "  %-24s %d\n", label, counts[label])
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// FormatActionList renders the ranked list as plain text for e-mail
func FormatActionList(ranked []*core.Email) string {
	if len(ranked) == 0 {
		return "No emails require action.\n"
	}

	var b strings.Builder
	b.WriteString("Emails requiring action\n\n")
	for i, e := range ranked {
		fmt.Fprintf(&b, "%d. [%s] %s\n   from %s, category %s\n",
			i+1, priorityText(e), subjectOrPlaceholder(e), senderOrPlaceholder(e), e.CategoryLabel())
	}
	return b.String()
}

func priorityText(e *core.Email) string {
	if e.Priority == nil {
		return "priority ?"
	}
	return fmt.Sprintf("priority %d", *e.Priority)
}

func subjectOrPlaceholder(e *core.Email) string {
	if s := e.SubjectText(); s != "" {
		return s
	}
	return "(no subject)"
}

func senderOrPlaceholder(e *core.Email) string {
	if s := e.SenderText(); s != "" {
		return s
	}
	return "(unknown sender)"
}
