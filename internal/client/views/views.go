// Package views renders the client screens to a terminal.
//
// Views hold no state. Each function writes one screen to w using the
// package styles.
package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/syllabify/internal/client/models"
)

// NavItem is one entry of the layout navigation bar.
type NavItem struct {
	Label  string
	Path   string
	Active bool
}

func writeln(w io.Writer, s string) {
	_, _ = fmt.Fprintln(w, s)
}

func Loading(w io.Writer) {
	writeln(w, mutedStyle.Render("Loading…"))
}

func Login(w io.Writer) {
	writeln(w, titleStyle.Render("Sign in to Syllabify"))
	writeln(w, mutedStyle.Render("Type `login` to enter your username and password."))
}

func SecuritySetup(w io.Writer, questions int) {
	writeln(w, titleStyle.Render("Security setup"))
	writeln(w, fmt.Sprintf("Choose %d security questions and answers to protect your account.", questions))
	writeln(w, mutedStyle.Render("Type `setup` to begin."))
}

// Layout renders the application header: navigation and the signed-in user.
// An empty username renders as a guest header.
func Layout(w io.Writer, username string, nav []NavItem) {
	items := make([]string, 0, len(nav))
	for _, n := range nav {
		if n.Active {
			items = append(items, navActiveStyle.Render(n.Label))
		} else {
			items = append(items, navStyle.Render(n.Label))
		}
	}

	who := "not signed in"
	if username != "" {
		who = "signed in as " + username
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Top, items...)
	writeln(w, lipgloss.JoinHorizontal(lipgloss.Top, bar, "  ", mutedStyle.Render(who)))
	writeln(w, "")
}

// CourseCard renders one course summary.
func CourseCard(c models.Course) string {
	head := lipgloss.NewStyle().Bold(true).Render(c.Name)
	if c.Term != "" {
		head += "\n" + mutedStyle.Render(c.Term)
	}
	badge := badgeStyle.Render(fmt.Sprintf("%d assignments", c.AssignmentCount))
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, head, badge))
}

func Dashboard(w io.Writer, courses []models.Course) {
	writeln(w, titleStyle.Render("Dashboard"))
	if len(courses) == 0 {
		writeln(w, mutedStyle.Render("No courses yet. Upload a syllabus to get started."))
		return
	}
	cards := make([]string, 0, len(courses))
	for _, c := range courses {
		cards = append(cards, CourseCard(c))
	}
	writeln(w, lipgloss.JoinVertical(lipgloss.Left, cards...))
}

func Upload(w io.Writer) {
	writeln(w, titleStyle.Render("Upload"))
	writeln(w, mutedStyle.Render("Upload a syllabus to extract its assignments."))
}

func Schedule(w io.Writer) {
	writeln(w, titleStyle.Render("Schedule"))
	writeln(w, mutedStyle.Render("Your study schedule will appear here."))
}

func Preferences(w io.Writer) {
	writeln(w, titleStyle.Render("Preferences"))
	writeln(w, mutedStyle.Render("Study hours and reminders."))
}

// Error renders a failure message, e.g. the message of an auth error.
func Error(w io.Writer, msg string) {
	writeln(w, errorStyle.Render("✗ "+strings.TrimSpace(msg)))
}

func Success(w io.Writer, msg string) {
	writeln(w, successStyle.Render("✓ "+strings.TrimSpace(msg)))
}
