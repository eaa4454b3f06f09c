package linear

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/goblinsan/mixer/pkg/errs"
	"github.com/goblinsan/mixer/pkg/logging"
	"github.com/goblinsan/mixer/pkg/types"
	"github.com/shurcooL/graphql"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*-\d+$`)

// IsIdentifier reports whether s looks like a human ticket key such as "SYS-8".
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// Repository is the ticket store for one team.
type Repository struct {
	exec    *Executor
	resolve *Resolver
	teamKey string
	logger  *slog.Logger
}

// NewRepository returns a Repository scoped to the team with key teamKey.
func NewRepository(exec *Executor, teamKey string, logger *slog.Logger) *Repository {
	logger = logging.OrDiscard(logger)
	return &Repository{
		exec:    exec,
		resolve: NewResolver(exec, logger),
		teamKey: teamKey,
		logger:  logger,
	}
}

// Resolver exposes the repository's name resolver.
func (r *Repository) Resolver() *Resolver { return r.resolve }

// Create resolves team, label, state and parent, then creates the ticket.
// A team, label or parent that does not resolve fails the call before any
// write. A state that does not resolve is logged and the tracker's default
// state applies.
func (r *Repository) Create(ctx context.Context, in types.TicketInput) (*types.Ticket, error) {
	teamID, err := r.resolve.Team(ctx, r.teamKey)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve team: %w", err)
	}

	input := IssueCreateInput{
		TeamID:      teamID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    types.DefaultPriority,
	}
	if in.Priority != nil {
		input.Priority = *in.Priority
	}

	if in.Label != "" {
		labelID, err := r.resolve.Label(ctx, teamID, in.Label)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve label: %w", err)
		}
		input.LabelIDs = []string{labelID}
	}

	state := in.State
	if state == "" {
		state = string(types.StatusTodo)
	}
	stateID, err := r.resolve.State(ctx, teamID, types.MapStatus(state))
	switch {
	case err == nil:
		input.StateID = stateID
	case errs.IsNotFound(err):
		r.logger.Warn("workflow state not found, creating with tracker default", "state", state)
	default:
		return nil, fmt.Errorf("failed to resolve state: %w", err)
	}

	if in.Parent != "" {
		input.ParentID = in.Parent
		if IsIdentifier(in.Parent) {
			parent, err := r.Fetch(ctx, in.Parent)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve parent: %w", err)
			}
			input.ParentID = parent.ID
		}
	}

	var m issueCreateMutation
	if err := r.exec.Mutate(ctx, "issueCreate", &m, map[string]any{"input": input}); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}
	if !m.IssueCreate.Success {
		return nil, &errs.ApplicationError{Service: service, Op: "issueCreate", Message: "ticket creation was not successful"}
	}
	t := m.IssueCreate.Issue.ticket()
	r.logger.Info("created ticket", "identifier", t.Identifier)
	return t, nil
}

// Fetch returns the ticket with its parent and direct children.
func (r *Repository) Fetch(ctx context.Context, identifier string) (*types.Ticket, error) {
	var q issueQuery
	err := r.exec.Query(ctx, "issue", &q, map[string]any{
		"id": graphql.String(identifier),
	})
	if err != nil {
		return nil, asNotFound(err, "ticket", identifier)
	}
	if q.Issue.ID == "" {
		return nil, &errs.NotFoundError{Kind: "ticket", Key: identifier}
	}
	return q.Issue.ticket(), nil
}

// Update changes a ticket's title and/or description.
func (r *Repository) Update(ctx context.Context, identifier string, upd types.TicketUpdate) (*types.Ticket, error) {
	t, err := r.update(ctx, identifier, IssueUpdateInput{Title: upd.Title, Description: upd.Description})
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", identifier, err)
	}
	return t, nil
}

// UpdateStatus moves a ticket to the named state. The name goes through
// MapStatus first, so "doing" and "In Progress" are equivalent. An
// unresolvable name fails without touching the ticket.
func (r *Repository) UpdateStatus(ctx context.Context, identifier, state string) error {
	teamID, err := r.resolve.Team(ctx, r.teamKey)
	if err != nil {
		return fmt.Errorf("failed to resolve team: %w", err)
	}
	stateID, err := r.resolve.State(ctx, teamID, types.MapStatus(state))
	if err != nil {
		return fmt.Errorf("failed to resolve state: %w", err)
	}
	if _, err := r.update(ctx, identifier, IssueUpdateInput{StateID: stateID}); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", identifier, types.MapStatus(state), err)
	}
	return nil
}

// AddComment appends a markdown comment. identifier may be a human key or an internal ID.
func (r *Repository) AddComment(ctx context.Context, identifier, body string) error {
	var m commentCreateMutation
	err := r.exec.Mutate(ctx, "commentCreate", &m, map[string]any{
		"input": CommentCreateInput{IssueID: identifier, Body: body},
	})
	if err != nil {
		return fmt.Errorf("failed to comment on %s: %w", identifier, asNotFound(err, "ticket", identifier))
	}
	if !m.CommentCreate.Success {
		return &errs.ApplicationError{Service: service, Op: "commentCreate", Message: "comment was not created"}
	}
	return nil
}

// ListByLabelAndState lists the team's tickets carrying label in the given
// state. state is mapped through MapStatus, so "doing" lists "In Progress".
func (r *Repository) ListByLabelAndState(ctx context.Context, label, state string) ([]types.Ticket, error) {
	teamID, err := r.resolve.Team(ctx, r.teamKey)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve team: %w", err)
	}
	canonical := types.MapStatus(state)

	tickets := []types.Ticket{}
	var after *graphql.String
	for {
		var q issuesQuery
		err = r.exec.Query(ctx, "issues", &q, map[string]any{
			"teamId": teamID,
			"label":  graphql.String(label),
			"state":  graphql.String(canonical),
			"after":  after,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list tickets: %w", err)
		}
		for _, n := range q.Issues.Nodes {
			t := n.ticket()
			// Filtered server side; checked again so a loose filter cannot leak other tickets.
			if !t.HasLabel(label) || t.State != canonical {
				continue
			}
			tickets = append(tickets, *t)
		}
		page := q.Issues.PageInfo
		if !page.HasNextPage || page.EndCursor == "" {
			return tickets, nil
		}
		after = graphql.NewString(graphql.String(page.EndCursor))
	}
}

// Link sets child's parent. The parent is fetched first for its internal ID.
func (r *Repository) Link(ctx context.Context, child, parent string) error {
	p, err := r.Fetch(ctx, parent)
	if err != nil {
		return fmt.Errorf("failed to resolve parent: %w", err)
	}
	if _, err := r.update(ctx, child, IssueUpdateInput{ParentID: p.ID}); err != nil {
		return fmt.Errorf("failed to link %s to %s: %w", child, parent, err)
	}
	return nil
}

// Cancel comments on the ticket when comment is set, then moves it to
// Canceled. A failed comment skips the transition.
func (r *Repository) Cancel(ctx context.Context, identifier, comment string) types.TwoPhaseResult {
	res := types.TwoPhaseResult{Comment: types.Skipped(), Transition: types.Skipped()}
	if comment != "" {
		if err := r.AddComment(ctx, identifier, comment); err != nil {
			res.Comment = types.Failed(err)
			return res
		}
		res.Comment = types.Done()
	}
	if err := r.UpdateStatus(ctx, identifier, string(types.StatusCanceled)); err != nil {
		res.Transition = types.Failed(err)
		return res
	}
	res.Transition = types.Done()
	return res
}

// Viewer returns the account behind the API key.
func (r *Repository) Viewer(ctx context.Context) (*types.Viewer, error) {
	var q viewerQuery
	if err := r.exec.Query(ctx, "viewer", &q, nil); err != nil {
		return nil, fmt.Errorf("failed to fetch viewer: %w", err)
	}
	return &types.Viewer{ID: q.Viewer.ID, Name: q.Viewer.Name, Email: q.Viewer.Email}, nil
}

func (r *Repository) update(ctx context.Context, identifier string, input IssueUpdateInput) (*types.Ticket, error) {
	var m issueUpdateMutation
	err := r.exec.Mutate(ctx, "issueUpdate", &m, map[string]any{
		"id":    graphql.String(identifier),
		"input": input,
	})
	if err != nil {
		return nil, asNotFound(err, "ticket", identifier)
	}
	if !m.IssueUpdate.Success {
		return nil, &errs.ApplicationError{Service: service, Op: "issueUpdate", Message: "update was not successful"}
	}
	return m.IssueUpdate.Issue.ticket(), nil
}
