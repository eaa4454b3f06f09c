package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/goblinsan/mixer/pkg/types"
)

var errNoBacklog = errors.New("no backlog client configured")

// ListBacklog returns the open backlog items, pull requests excluded.
func (e *Engine) ListBacklog(ctx context.Context) ([]types.BacklogItem, error) {
	if e.backlog == nil {
		return nil, errNoBacklog
	}
	items, err := e.backlog.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list backlog: %w", err)
	}
	return items, nil
}

// LoadBacklogItem fetches one backlog item.
func (e *Engine) LoadBacklogItem(ctx context.Context, number int) (*types.BacklogItem, error) {
	if e.backlog == nil {
		return nil, errNoBacklog
	}
	item, err := e.backlog.Fetch(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to load backlog item #%d: %w", number, err)
	}
	return item, nil
}

// CloseBacklog closes each item, commenting first when comment is set.
// Every item is attempted; failures are collected in the report.
func (e *Engine) CloseBacklog(ctx context.Context, numbers []int, comment string) (*Report, error) {
	if e.backlog == nil {
		return nil, errNoBacklog
	}
	report := &Report{DryRun: e.opts.DryRun}
	for _, n := range numbers {
		commentStep := fmt.Sprintf("comment on backlog item #%d", n)
		closeStep := fmt.Sprintf("close backlog item #%d", n)
		if e.opts.DryRun {
			if comment != "" {
				report.skip(commentStep)
			}
			report.skip(closeStep)
			continue
		}
		res := e.backlog.Close(ctx, n, comment)
		if comment != "" {
			report.phases(commentStep, closeStep, res)
		} else {
			report.record(closeStep, res.Transition.Err)
		}
		if res.Partial() {
			report.warn(e.logger, "backlog item #%d has the comment but is still open", n)
		}
	}
	return report, report.Err()
}
