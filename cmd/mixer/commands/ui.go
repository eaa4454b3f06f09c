package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/goblinsan/mixer/pkg/engine"
	"github.com/goblinsan/mixer/pkg/types"
)

var (
	colorPass   = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	colorWarn   = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	colorFail   = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
	colorAccent = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}

	passStyle    = lipgloss.NewStyle().Foreground(colorPass)
	warnStyle    = lipgloss.NewStyle().Foreground(colorWarn)
	failStyle    = lipgloss.NewStyle().Foreground(colorFail)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	idStyle      = lipgloss.NewStyle().Bold(true).Width(10)
	stateStyle   = lipgloss.NewStyle().Width(13)
)

func renderState(state string) string {
	switch types.Status(state) {
	case types.StatusDone:
		return passStyle.Inherit(stateStyle).Render(state)
	case types.StatusDoing:
		return warnStyle.Inherit(stateStyle).Render(state)
	case types.StatusCanceled:
		return failStyle.Inherit(stateStyle).Render(state)
	default:
		return mutedStyle.Inherit(stateStyle).Render(state)
	}
}

func printTickets(w io.Writer, heading string, tickets []types.Ticket) {
	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("%s (%d)", heading, len(tickets))))
	if len(tickets) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  none"))
		return
	}
	for _, t := range tickets {
		fmt.Fprintf(w, "  %s %s %s\n", idStyle.Render(t.Identifier), renderState(t.State), t.Title)
	}
}

func printTicket(w io.Writer, t *types.Ticket) {
	fmt.Fprintf(w, "%s %s\n", headingStyle.Render(t.Identifier), t.Title)
	fmt.Fprintf(w, "  State:  %s\n", renderState(t.State))
	if len(t.Labels) > 0 {
		fmt.Fprintf(w, "  Labels: %s\n", strings.Join(t.Labels, ", "))
	}
	if t.URL != "" {
		fmt.Fprintf(w, "  URL:    %s\n", mutedStyle.Render(t.URL))
	}
	if t.Parent != nil {
		fmt.Fprintf(w, "  Parent: %s %s\n", t.Parent.Identifier, t.Parent.Title)
	}
	if len(t.Children) > 0 {
		fmt.Fprintln(w, "  Children:")
		for _, c := range t.Children {
			fmt.Fprintf(w, "    ⎿ %s %s %s\n", idStyle.Render(c.Identifier), renderState(c.State), c.Title)
		}
	}
	if t.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, t.Description)
	}
}

func printBacklog(w io.Writer, items []types.BacklogItem) {
	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("Open backlog items (%d)", len(items))))
	for _, it := range items {
		line := fmt.Sprintf("  #%-5d %s", it.Number, it.Title)
		if len(it.Labels) > 0 {
			line += " " + mutedStyle.Render("["+strings.Join(it.Labels, ", ")+"]")
		}
		if !it.UpdatedAt.IsZero() {
			line += " " + mutedStyle.Render("updated "+humanize.Time(it.UpdatedAt))
		}
		fmt.Fprintln(w, line)
	}
}

func printBacklogItem(w io.Writer, it *types.BacklogItem) {
	fmt.Fprintf(w, "%s %s\n", headingStyle.Render(fmt.Sprintf("#%d", it.Number)), it.Title)
	fmt.Fprintf(w, "  State:   %s\n", it.State)
	if !it.CreatedAt.IsZero() {
		fmt.Fprintf(w, "  Opened:  %s\n", humanize.Time(it.CreatedAt))
	}
	if it.URL != "" {
		fmt.Fprintf(w, "  URL:     %s\n", mutedStyle.Render(it.URL))
	}
	if it.Body != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, it.Body)
	}
}

func printReport(w io.Writer, r *engine.Report) {
	if r.Ticket != nil {
		fmt.Fprintf(w, "%s %s %s\n", headingStyle.Render(r.Ticket.Identifier), renderState(r.Ticket.State), r.Ticket.Title)
	}
	for _, s := range r.Steps {
		switch s.Status {
		case types.PhaseOK:
			fmt.Fprintf(w, "  %s %s\n", passStyle.Render("✓"), s.Action)
		case types.PhaseFailed:
			fmt.Fprintf(w, "  %s %s: %v\n", failStyle.Render("✗"), s.Action, s.Err)
		default:
			fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("-"), s.Action)
		}
	}
	for _, msg := range r.Warnings {
		fmt.Fprintf(w, "  %s %s\n", warnStyle.Render("⚠"), msg)
	}
	fmt.Fprintln(w, r)
}

func printSuggestions(w io.Writer, goal *types.Ticket, suggestions []engine.Suggestion) {
	fmt.Fprintf(w, "%s %s\n", headingStyle.Render("Analysis of "+goal.Identifier), goal.Title)
	if len(suggestions) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  No specific implementation areas detected."))
	}
	for _, s := range suggestions {
		fmt.Fprintf(w, "\n  %s\n", lipgloss.NewStyle().Bold(true).Render(s.Area))
		for i, step := range s.Steps {
			fmt.Fprintf(w, "    %d. %s\n", i+1, step)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("Suggested plan structure"))
	for i, phase := range engine.PlanOutline {
		fmt.Fprintf(w, "  %d. %s: %s\n", i+1, phase.Area, strings.Join(phase.Steps, ", "))
	}
}
