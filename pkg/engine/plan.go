package engine

import (
	"context"
	"fmt"

	"github.com/goblinsan/mixer/pkg/types"
)

// PlanInput describes a plan to create under a goal.
type PlanInput struct {
	// Goal is the parent goal's identifier.
	Goal        string
	Title       string
	Description string
	// State defaults to Draft.
	State string
}

// CreatePlan creates a plan labeled "plan" under its goal. When the goal is
// in Todo it moves to In Progress and gets a comment naming the plan. From
// any other state the goal is left alone and a warning is reported; the plan
// is created either way.
func (e *Engine) CreatePlan(ctx context.Context, in PlanInput) (*Report, error) {
	report := &Report{DryRun: e.opts.DryRun}
	state := types.StatusDraft
	if in.State != "" {
		s, ok := types.ParseStatus(in.State)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", in.State)
		}
		state = s
	}

	goal, err := e.tickets.Fetch(ctx, in.Goal)
	if err != nil {
		return nil, fmt.Errorf("failed to load goal: %w", err)
	}
	report.Parent = goal
	if !goal.HasLabel(types.LabelGoal) {
		report.warn(e.logger, "%s is not labeled %q", goal.Identifier, types.LabelGoal)
	}
	advance := goal.Status() == types.StatusTodo
	if !advance {
		report.warn(e.logger, "goal %s is in '%s' (expected '%s'); goal status not updated",
			goal.Identifier, goal.State, types.StatusTodo)
	}

	if e.opts.DryRun {
		report.skip(fmt.Sprintf("create plan %q in %s under %s", in.Title, state, goal.Identifier))
		if advance {
			report.skip(fmt.Sprintf("move %s to %s", goal.Identifier, types.StatusDoing))
			report.skip("comment on " + goal.Identifier)
		}
		return report, nil
	}

	plan, err := e.tickets.Create(ctx, types.TicketInput{
		Title:       in.Title,
		Description: in.Description,
		Label:       types.LabelPlan,
		State:       string(state),
		Parent:      goal.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	report.Ticket = plan
	report.record("create plan "+plan.Identifier, nil)
	e.logger.Info("created plan", "identifier", plan.Identifier, "goal", goal.Identifier)

	if !advance {
		return report, nil
	}
	report.record(fmt.Sprintf("move %s to %s", goal.Identifier, types.StatusDoing),
		e.tickets.UpdateStatus(ctx, goal.Identifier, string(types.StatusDoing)))
	report.record("comment on "+goal.Identifier,
		e.tickets.AddComment(ctx, goal.Identifier, "Plan created: "+plan.Identifier))
	return report, nil
}

// CompletePlan moves a plan to Done and its parent goal with it, leaving a
// timestamped comment on each. Forcing either ticket to Done from a state
// other than In Progress needs the operator's confirmation; declining for
// the plan cancels the whole operation, declining for the goal only skips
// the goal. A plan or goal already Done or Canceled is left alone.
func (e *Engine) CompletePlan(ctx context.Context, identifier string) (*Report, error) {
	report := &Report{DryRun: e.opts.DryRun}
	plan, err := e.tickets.Fetch(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	report.Ticket = plan

	if plan.Status().Terminal() {
		report.warn(e.logger, "%s is already %s; nothing to complete", plan.Identifier, plan.State)
		return report, nil
	}
	if plan.Status() != types.StatusDoing {
		ok, err := e.confirm(ctx, unexpectedPrompt(plan, types.StatusDoing, "Mark as complete anyway?"))
		if err != nil {
			return nil, fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			return report, ErrCancelled
		}
	}

	var goal *types.Ticket
	completeGoal := false
	if plan.Parent == nil {
		report.warn(e.logger, "no parent goal found for %s", plan.Identifier)
	} else {
		goal, err = e.tickets.Fetch(ctx, plan.Parent.Identifier)
		if err != nil {
			return nil, fmt.Errorf("failed to load parent goal: %w", err)
		}
		report.Parent = goal
		switch {
		case goal.Status().Terminal():
			report.warn(e.logger, "goal %s is already %s; goal status not updated", goal.Identifier, goal.State)
		case goal.Status() == types.StatusDoing:
			completeGoal = true
		default:
			ok, err := e.confirm(ctx, unexpectedPrompt(goal, types.StatusDoing, "Mark the goal as done too?"))
			if err != nil {
				return nil, fmt.Errorf("confirmation failed: %w", err)
			}
			completeGoal = ok
			if !ok {
				report.warn(e.logger, "goal %s left in '%s'", goal.Identifier, goal.State)
			}
		}
	}

	planStep := fmt.Sprintf("move %s to %s", plan.Identifier, types.StatusDone)
	goalStep := ""
	if completeGoal {
		goalStep = fmt.Sprintf("move %s to %s", goal.Identifier, types.StatusDone)
	}
	if e.opts.DryRun {
		report.skip(planStep)
		report.skip("comment on " + plan.Identifier)
		if completeGoal {
			report.skip(goalStep)
			report.skip("comment on " + goal.Identifier)
		}
		return report, nil
	}

	ts := e.timestamp()
	if err := e.tickets.UpdateStatus(ctx, plan.Identifier, string(types.StatusDone)); err != nil {
		report.record(planStep, err)
		return report, fmt.Errorf("failed to complete plan: %w", err)
	}
	report.record(planStep, nil)
	report.record("comment on "+plan.Identifier,
		e.tickets.AddComment(ctx, plan.Identifier, "Implementation complete at "+ts))

	if !completeGoal {
		return report, nil
	}
	err = e.tickets.UpdateStatus(ctx, goal.Identifier, string(types.StatusDone))
	report.record(goalStep, err)
	if err != nil {
		report.warn(e.logger, "failed to update goal %s status", goal.Identifier)
		return report, nil
	}
	report.record("comment on "+goal.Identifier,
		e.tickets.AddComment(ctx, goal.Identifier, fmt.Sprintf("Goal complete. Plan %s implemented at %s", plan.Identifier, ts)))
	return report, nil
}

// SetPlanStatus moves a plan to status (operator words accepted) and
// comments on it. Done goes through CompletePlan so the parent goal follows;
// closed goes through CancelTicket. Leaving a terminal state, or reaching
// one by skipping a stage, needs the operator's confirmation.
func (e *Engine) SetPlanStatus(ctx context.Context, identifier, status string) (*Report, error) {
	target, ok := types.ParseStatus(status)
	if !ok {
		return nil, fmt.Errorf("unknown status %q (want draft, todo, doing, done or closed)", status)
	}
	if target == types.StatusDone {
		return e.CompletePlan(ctx, identifier)
	}

	report := &Report{DryRun: e.opts.DryRun}
	plan, err := e.tickets.Fetch(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	report.Ticket = plan
	current := plan.Status()
	if current == target {
		report.warn(e.logger, "%s is already %s", plan.Identifier, plan.State)
		return report, nil
	}
	if target == types.StatusCanceled {
		return e.CancelTicket(ctx, identifier, "")
	}
	if current.Terminal() {
		ok, err := e.confirm(ctx, unexpectedPrompt(plan, "", fmt.Sprintf("Move it back to '%s'?", target)))
		if err != nil {
			return nil, fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			return report, ErrCancelled
		}
	} else if !current.Expected(target) {
		report.warn(e.logger, "%s jumps from '%s' to '%s'", plan.Identifier, plan.State, target)
	}

	step := fmt.Sprintf("move %s to %s", plan.Identifier, target)
	if e.opts.DryRun {
		report.skip(step)
		report.skip("comment on " + plan.Identifier)
		return report, nil
	}
	if err := e.tickets.UpdateStatus(ctx, plan.Identifier, string(target)); err != nil {
		report.record(step, err)
		return report, fmt.Errorf("failed to update status: %w", err)
	}
	report.record(step, nil)
	report.record("comment on "+plan.Identifier,
		e.tickets.AddComment(ctx, plan.Identifier, fmt.Sprintf("Status updated to: %s", target)))
	return report, nil
}
