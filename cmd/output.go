package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// WriteStatements prints statements one per line between blank lines,
// wrapped in BEGIN/COMMIT when transactional. Notices are highlighted
// when w is a terminal; redirected output stays plain.
func WriteStatements(w io.Writer, statements []string, transactional bool) error {
	r := lipgloss.NewRenderer(w)
	noticeStyle := r.NewStyle().Foreground(lipgloss.Color("214"))
	keywordStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))

	var b strings.Builder
	if transactional {
		b.WriteString(keywordStyle.Render("BEGIN;") + "\n")
	}
	b.WriteString("\n")
	for _, s := range statements {
		if strings.HasPrefix(s, "--") {
			s = noticeStyle.Render(s)
		}
		b.WriteString(s + "\n")
	}
	b.WriteString("\n")
	if transactional {
		b.WriteString(keywordStyle.Render("COMMIT;") + "\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
