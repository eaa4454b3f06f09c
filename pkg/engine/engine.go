package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	ghclient "github.com/goblinsan/mixer/pkg/github"
	"github.com/goblinsan/mixer/pkg/linear"
	"github.com/goblinsan/mixer/pkg/logging"
	"github.com/goblinsan/mixer/pkg/types"
)

// TicketRepository defines the tracker operations needed by the engine.
type TicketRepository interface {
	Create(ctx context.Context, in types.TicketInput) (*types.Ticket, error)
	Fetch(ctx context.Context, identifier string) (*types.Ticket, error)
	Update(ctx context.Context, identifier string, upd types.TicketUpdate) (*types.Ticket, error)
	UpdateStatus(ctx context.Context, identifier, state string) error
	AddComment(ctx context.Context, identifier, body string) error
	ListByLabelAndState(ctx context.Context, label, state string) ([]types.Ticket, error)
	Link(ctx context.Context, child, parent string) error
	Cancel(ctx context.Context, identifier, comment string) types.TwoPhaseResult
}

// BacklogClient defines the backlog operations needed by the engine.
type BacklogClient interface {
	ListOpen(ctx context.Context) ([]types.BacklogItem, error)
	Fetch(ctx context.Context, number int) (*types.BacklogItem, error)
	Close(ctx context.Context, number int, comment string) types.TwoPhaseResult
}

// Ensure the real clients satisfy the interfaces at compile time.
var (
	_ TicketRepository = (*linear.Repository)(nil)
	_ BacklogClient    = (*ghclient.Client)(nil)
)

// ErrCancelled is returned when the operator declines a confirmation.
var ErrCancelled = errors.New("cancelled")

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AlwaysConfirm approves every prompt.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// Options configures the Engine.
type Options struct {
	// DryRun reports the writes an operation would make without making them.
	DryRun bool
	Logger *slog.Logger
	// Confirm is asked before forcing a ticket into a terminal state from an
	// unexpected one. Nil declines every prompt.
	Confirm Confirmer
	// Now stamps completion comments; defaults to time.Now.
	Now func() time.Time
}

// Engine drives the goal/plan lifecycle over a tracker and a backlog.
type Engine struct {
	tickets TicketRepository
	backlog BacklogClient
	opts    Options
	logger  *slog.Logger
}

// New returns an Engine. backlog may be nil when no backlog operation is used.
func New(tickets TicketRepository, backlog BacklogClient, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		tickets: tickets,
		backlog: backlog,
		opts:    opts,
		logger:  logging.OrDiscard(opts.Logger),
	}
}

func (e *Engine) confirm(ctx context.Context, prompt string) (bool, error) {
	if e.opts.Confirm == nil {
		e.logger.Warn("confirmation required but no confirmer configured", "prompt", prompt)
		return false, nil
	}
	return e.opts.Confirm.Confirm(ctx, prompt)
}

func (e *Engine) timestamp() string {
	return e.opts.Now().Format(time.RFC3339)
}

// Step is one remote write an operation made, or would make in a dry run.
type Step struct {
	Action string            `json:"action"`
	Status types.PhaseStatus `json:"status"`
	Err    error             `json:"-"`
}

// Report summarizes the results of an engine operation.
type Report struct {
	Ticket   *types.Ticket `json:"ticket,omitempty"`
	Parent   *types.Ticket `json:"parent,omitempty"`
	Steps    []Step        `json:"steps"`
	Warnings []string      `json:"warnings,omitempty"`
	DryRun   bool          `json:"dry_run,omitempty"`
}

func (r *Report) String() string {
	var ok, failed, skipped int
	for _, s := range r.Steps {
		switch s.Status {
		case types.PhaseOK:
			ok++
		case types.PhaseFailed:
			failed++
		default:
			skipped++
		}
	}
	prefix := "Summary"
	if r.DryRun {
		prefix = "[dry-run] Summary"
	}
	return fmt.Sprintf("%s: %d steps succeeded, %d failed, %d skipped, %d warnings",
		prefix, ok, failed, skipped, len(r.Warnings))
}

// Err joins the errors of every failed step, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, s := range r.Steps {
		if s.Status == types.PhaseFailed {
			errs = append(errs, fmt.Errorf("%s: %w", s.Action, s.Err))
		}
	}
	return errors.Join(errs...)
}

func (r *Report) record(action string, err error) {
	if err != nil {
		r.Steps = append(r.Steps, Step{Action: action, Status: types.PhaseFailed, Err: err})
		return
	}
	r.Steps = append(r.Steps, Step{Action: action, Status: types.PhaseOK})
}

func (r *Report) skip(action string) {
	r.Steps = append(r.Steps, Step{Action: action, Status: types.PhaseSkipped})
}

func (r *Report) phases(comment, transition string, res types.TwoPhaseResult) {
	for _, p := range []struct {
		action string
		phase  types.Phase
	}{{comment, res.Comment}, {transition, res.Transition}} {
		switch p.phase.Status {
		case types.PhaseOK:
			r.record(p.action, nil)
		case types.PhaseFailed:
			r.record(p.action, p.phase.Err)
		default:
			r.skip(p.action)
		}
	}
}

func (r *Report) warn(logger *slog.Logger, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Warn(msg)
	r.Warnings = append(r.Warnings, msg)
}

// unexpectedPrompt words the confirmation asked before a forced transition.
func unexpectedPrompt(t *types.Ticket, expected types.Status, question string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is in '%s'", t.Identifier, t.State)
	if expected != "" {
		fmt.Fprintf(&b, " (expected '%s')", expected)
	}
	b.WriteString(". " + question)
	return b.String()
}
