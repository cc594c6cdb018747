package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

const defaultTheme = "dracula"

func newListRenderer(theme string) *glamour.TermRenderer {
	if theme == "" {
		theme = defaultTheme
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return nil
	}
	return r
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "{", `\{`, "}", `\}`,
	"[", `\[`, "]", `\]`, "(", `\(`, ")", `\)`, "#", `\#`, "+", `\+`,
	"-", `\-`, ".", `\.`, "!", `\!`, "|", `\|`, "<", `\<`, ">", `\>`,
	"~", `\~`, ":", `\:`, "&", `\&`,
)

// markdownList formats tasks as a 1-indexed markdown ordered list.
// Task text is escaped so it renders literally.
func markdownList(tasks []string) string {
	var b strings.Builder
	for i, task := range tasks {
		fmt.Fprintf(&b, "%d. %s\n", i+1, markdownEscaper.Replace(task))
	}
	return b.String()
}

// renderList renders the task list through glamour, falling back to plain text
func renderList(tasks []string, theme string) string {
	if len(tasks) == 0 {
		return "No tasks found!\n"
	}

	var plain strings.Builder
	for i, task := range tasks {
		fmt.Fprintf(&plain, "%d. %s\n", i+1, task)
	}
	footer := fmt.Sprintf("\nTotal tasks: %d\n", len(tasks))

	r := newListRenderer(theme)
	if r == nil {
		return plain.String() + footer
	}

	rendered, err := r.Render(markdownList(tasks))
	if err != nil {
		return plain.String() + footer
	}

	return strings.TrimRight(rendered, "\n") + "\n" + footer
}
