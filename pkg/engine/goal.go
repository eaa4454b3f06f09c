package engine

import (
	"context"
	"fmt"

	"github.com/goblinsan/mixer/pkg/types"
)

// GoalInput describes a goal to create, usually parsed from a draft.
type GoalInput struct {
	Title       string
	Description string
	// State defaults to Draft. Operator words such as "todo" are accepted.
	State string
	// Backlog lists backlog item numbers the goal absorbs. Each is closed
	// with a comment pointing at the new goal.
	Backlog []int
}

// trackedComment is left on backlog items absorbed into a goal.
func trackedComment(goal *types.Ticket) string {
	return fmt.Sprintf("This issue has been included in goal %s and is being tracked there.\n\n%s", goal.Identifier, goal.URL)
}

// CreateGoal creates a goal ticket labeled "goal", then closes any backlog
// items it absorbs. Backlog failures are reported per step and do not undo
// the goal.
func (e *Engine) CreateGoal(ctx context.Context, in GoalInput) (*Report, error) {
	report := &Report{DryRun: e.opts.DryRun}
	state := types.StatusDraft
	if in.State != "" {
		s, ok := types.ParseStatus(in.State)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", in.State)
		}
		state = s
	}
	if len(in.Backlog) > 0 && e.backlog == nil {
		return nil, fmt.Errorf("backlog items given but no backlog client configured")
	}

	if e.opts.DryRun {
		report.skip(fmt.Sprintf("create goal %q in %s", in.Title, state))
		for _, n := range in.Backlog {
			report.skip(fmt.Sprintf("comment on backlog item #%d", n))
			report.skip(fmt.Sprintf("close backlog item #%d", n))
		}
		return report, nil
	}

	goal, err := e.tickets.Create(ctx, types.TicketInput{
		Title:       in.Title,
		Description: in.Description,
		Label:       types.LabelGoal,
		State:       string(state),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	report.Ticket = goal
	report.record("create goal "+goal.Identifier, nil)
	e.logger.Info("created goal", "identifier", goal.Identifier, "state", state)

	for _, n := range in.Backlog {
		res := e.backlog.Close(ctx, n, trackedComment(goal))
		report.phases(fmt.Sprintf("comment on backlog item #%d", n), fmt.Sprintf("close backlog item #%d", n), res)
		if res.Partial() {
			report.warn(e.logger, "backlog item #%d has the tracking comment but is still open", n)
		}
	}
	return report, nil
}

// UpdateGoal replaces a goal's title and description.
func (e *Engine) UpdateGoal(ctx context.Context, identifier, title, description string) (*Report, error) {
	report := &Report{DryRun: e.opts.DryRun}
	goal, err := e.tickets.Fetch(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to load goal: %w", err)
	}
	if !goal.HasLabel(types.LabelGoal) {
		report.warn(e.logger, "%s is not labeled %q", goal.Identifier, types.LabelGoal)
	}
	if e.opts.DryRun {
		report.Ticket = goal
		report.skip("update goal " + goal.Identifier)
		return report, nil
	}

	updated, err := e.tickets.Update(ctx, goal.Identifier, types.TicketUpdate{Title: &title, Description: &description})
	if err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}
	report.Ticket = updated
	report.record("update goal "+goal.Identifier, nil)
	return report, nil
}

// Load fetches one ticket with its parent and children.
func (e *Engine) Load(ctx context.Context, identifier string) (*types.Ticket, error) {
	t, err := e.tickets.Fetch(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", identifier, err)
	}
	return t, nil
}

// ListTickets lists tickets carrying label. An empty status lists Draft,
// Todo, In Progress and Done, in that order.
func (e *Engine) ListTickets(ctx context.Context, label, status string) ([]types.Ticket, error) {
	statuses := []string{status}
	if status == "" {
		statuses = statuses[:0]
		for _, s := range types.ListableStatuses {
			statuses = append(statuses, string(s))
		}
	}
	var out []types.Ticket
	for _, s := range statuses {
		tickets, err := e.tickets.ListByLabelAndState(ctx, label, s)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s tickets in %s: %w", label, types.MapStatus(s), err)
		}
		out = append(out, tickets...)
	}
	return out, nil
}

// Link makes parent the parent of child. Re-parenting only ever happens here.
func (e *Engine) Link(ctx context.Context, child, parent string) (*Report, error) {
	report := &Report{DryRun: e.opts.DryRun}
	c, err := e.tickets.Fetch(ctx, child)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", child, err)
	}
	report.Ticket = c
	if c.Parent != nil && (c.Parent.Identifier == parent || c.Parent.ID == parent) {
		report.warn(e.logger, "%s is already a child of %s", c.Identifier, c.Parent.Identifier)
		return report, nil
	}
	if c.Parent != nil {
		report.warn(e.logger, "%s moves from %s to %s", c.Identifier, c.Parent.Identifier, parent)
	}
	action := fmt.Sprintf("link %s under %s", c.Identifier, parent)
	if e.opts.DryRun {
		report.skip(action)
		return report, nil
	}
	if err := e.tickets.Link(ctx, c.Identifier, parent); err != nil {
		return nil, fmt.Errorf("failed to link: %w", err)
	}
	report.record(action, nil)
	return report, nil
}

// CancelTicket comments on a ticket and moves it to Canceled. A ticket
// already in a terminal state is left alone.
func (e *Engine) CancelTicket(ctx context.Context, identifier, reason string) (*Report, error) {
	report := &Report{DryRun: e.opts.DryRun}
	t, err := e.tickets.Fetch(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", identifier, err)
	}
	report.Ticket = t
	if t.Status().Terminal() {
		report.warn(e.logger, "%s is already %s; nothing to cancel", t.Identifier, t.State)
		return report, nil
	}

	comment := "Canceled"
	if reason != "" {
		comment = "Canceled: " + reason
	}
	if e.opts.DryRun {
		report.skip("comment on " + t.Identifier)
		report.skip(fmt.Sprintf("move %s to %s", t.Identifier, types.StatusCanceled))
		return report, nil
	}
	res := e.tickets.Cancel(ctx, t.Identifier, comment)
	report.phases("comment on "+t.Identifier, fmt.Sprintf("move %s to %s", t.Identifier, types.StatusCanceled), res)
	if err := res.Err(); err != nil {
		return report, fmt.Errorf("failed to cancel %s: %w", t.Identifier, err)
	}
	return report, nil
}
