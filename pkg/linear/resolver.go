package linear

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goblinsan/mixer/pkg/errs"
	"github.com/goblinsan/mixer/pkg/logging"
	"github.com/shurcooL/graphql"
)

// State is a team's workflow state.
type State struct {
	ID   string
	Name string
	Type string
}

// Resolver translates team keys, label names and state names into tracker
// IDs. Every call queries the tracker again; nothing is memoized.
type Resolver struct {
	exec   *Executor
	logger *slog.Logger
}

func NewResolver(exec *Executor, logger *slog.Logger) *Resolver {
	return &Resolver{exec: exec, logger: logging.OrDiscard(logger)}
}

// Team resolves a team key (or ID) to the team's internal ID.
func (r *Resolver) Team(ctx context.Context, key string) (string, error) {
	var q teamQuery
	err := r.exec.Query(ctx, "team", &q, map[string]any{
		"teamId": graphql.String(key),
	})
	if err != nil {
		return "", asNotFound(err, "team", key)
	}
	if q.Team.ID == "" {
		return "", &errs.NotFoundError{Kind: "team", Key: key}
	}
	return q.Team.ID, nil
}

// Label returns the ID of the team label matching name case-insensitively,
// creating the label with name's exact casing when none matches. Two callers
// racing on the same new name can both create it.
func (r *Resolver) Label(ctx context.Context, teamID, name string) (string, error) {
	labels, err := r.labels(ctx, teamID)
	if err != nil {
		return "", err
	}
	for _, l := range labels {
		if strings.EqualFold(l.Name, name) {
			return l.ID, nil
		}
	}

	r.logger.Info("creating label", "label", name)
	var m labelCreateMutation
	err = r.exec.Mutate(ctx, "issueLabelCreate", &m, map[string]any{
		"input": IssueLabelCreateInput{Name: name, TeamID: teamID},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create label %q: %w", name, err)
	}
	if !m.IssueLabelCreate.Success || m.IssueLabelCreate.IssueLabel.ID == "" {
		return "", &errs.ApplicationError{Service: service, Op: "issueLabelCreate", Message: "label creation was not successful"}
	}
	return m.IssueLabelCreate.IssueLabel.ID, nil
}

// labels reads every page of the team's labels.
func (r *Resolver) labels(ctx context.Context, teamID string) ([]labelNode, error) {
	var (
		all   []labelNode
		after *graphql.String
	)
	for {
		var q teamLabelsQuery
		err := r.exec.Query(ctx, "labels", &q, map[string]any{
			"teamId": graphql.String(teamID),
			"after":  after,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list labels: %w", err)
		}
		all = append(all, q.Team.Labels.Nodes...)
		page := q.Team.Labels.PageInfo
		if !page.HasNextPage || page.EndCursor == "" {
			return all, nil
		}
		after = graphql.NewString(graphql.String(page.EndCursor))
	}
}

// States lists the team's workflow states.
func (r *Resolver) States(ctx context.Context, teamID string) ([]State, error) {
	var q teamStatesQuery
	err := r.exec.Query(ctx, "states", &q, map[string]any{
		"teamId": graphql.String(teamID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow states: %w", err)
	}
	states := make([]State, 0, len(q.Team.States.Nodes))
	for _, s := range q.Team.States.Nodes {
		states = append(states, State{ID: s.ID, Name: s.Name, Type: s.Type})
	}
	return states, nil
}

// State resolves a workflow state name case-insensitively. An unknown name
// is a NotFoundError; callers decide whether that is fatal.
func (r *Resolver) State(ctx context.Context, teamID, name string) (string, error) {
	states, err := r.States(ctx, teamID)
	if err != nil {
		return "", err
	}
	for _, s := range states {
		if strings.EqualFold(s.Name, name) {
			return s.ID, nil
		}
	}
	return "", &errs.NotFoundError{Kind: "workflow state", Key: name}
}
