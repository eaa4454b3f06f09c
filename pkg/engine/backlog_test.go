package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/goblinsan/mixer/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBacklogReads(t *testing.T) {
	e := New(newMockRepo(), newMockBacklog(1, 2), Options{})

	items, err := e.ListBacklog(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)

	item, err := e.LoadBacklogItem(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Issue 2", item.Title)

	_, err = e.LoadBacklogItem(context.Background(), 9)
	assert.True(t, errs.IsNotFound(err))
}

func TestBacklogRequiresClient(t *testing.T) {
	e := New(newMockRepo(), nil, Options{})
	_, err := e.ListBacklog(context.Background())
	assert.Error(t, err)
	_, err = e.CloseBacklog(context.Background(), []int{1}, "")
	assert.Error(t, err)
}

func TestCloseBacklog(t *testing.T) {
	backlog := newMockBacklog(1, 2, 3)
	backlog.failClose[2] = errors.New("locked")
	e := New(newMockRepo(), backlog, Options{})

	report, err := e.CloseBacklog(context.Background(), []int{1, 2, 3}, "Tracked in SYS-1")
	require.Error(t, err)
	assert.Equal(t, []int{1, 3}, backlog.closed, "every item is attempted")
	assert.Len(t, report.Steps, 6)
	assert.Equal(t, []string{"Tracked in SYS-1"}, backlog.comments[2])
	assert.Equal(t, "open", backlog.items[2].State)
	assert.Len(t, report.Warnings, 1)
}

func TestCloseBacklogWithoutComment(t *testing.T) {
	backlog := newMockBacklog(1)
	report, err := New(newMockRepo(), backlog, Options{}).CloseBacklog(context.Background(), []int{1}, "")
	require.NoError(t, err)
	assert.Len(t, report.Steps, 1)
	assert.Empty(t, backlog.comments[1])
}

func TestCloseBacklogDryRun(t *testing.T) {
	backlog := newMockBacklog(1)
	report, err := New(newMockRepo(), backlog, Options{DryRun: true}).CloseBacklog(context.Background(), []int{1}, "note")
	require.NoError(t, err)
	assert.Empty(t, backlog.closed)
	assert.Len(t, report.Steps, 2)
}
