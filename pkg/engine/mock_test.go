package engine

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/goblinsan/mixer/pkg/errs"
	"github.com/goblinsan/mixer/pkg/types"
)

// mockRepo implements TicketRepository in memory and records every write.
type mockRepo struct {
	tickets  map[string]*types.Ticket
	counter  int
	created  []types.TicketInput
	moves    []string
	comments map[string][]string
	updates  []string
	links    []string

	failStatus map[string]error
	failCreate error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		tickets:    map[string]*types.Ticket{},
		comments:   map[string][]string{},
		failStatus: map[string]error{},
	}
}

func (m *mockRepo) add(identifier, label, state string) *types.Ticket {
	t := &types.Ticket{
		ID:         "id-" + identifier,
		Identifier: identifier,
		Title:      label + " " + identifier,
		State:      state,
		Labels:     []string{label},
	}
	m.tickets[identifier] = t
	return t
}

func (m *mockRepo) setParent(child, parent string) {
	p := m.tickets[parent]
	m.tickets[child].Parent = &types.TicketRef{ID: p.ID, Identifier: p.Identifier, Title: p.Title}
}

func (m *mockRepo) find(key string) *types.Ticket {
	if t, ok := m.tickets[key]; ok {
		return t
	}
	for _, t := range m.tickets {
		if t.ID == key {
			return t
		}
	}
	return nil
}

func (m *mockRepo) Create(_ context.Context, in types.TicketInput) (*types.Ticket, error) {
	if m.failCreate != nil {
		return nil, m.failCreate
	}
	m.counter++
	m.created = append(m.created, in)
	id := fmt.Sprintf("NEW-%d", m.counter)
	t := m.add(id, in.Label, types.MapStatus(in.State))
	t.Title, t.Description = in.Title, in.Description
	if p := m.find(in.Parent); p != nil {
		m.setParent(id, p.Identifier)
	}
	cp := *t
	return &cp, nil
}

func (m *mockRepo) Fetch(_ context.Context, identifier string) (*types.Ticket, error) {
	t := m.find(identifier)
	if t == nil {
		return nil, &errs.NotFoundError{Kind: "ticket", Key: identifier}
	}
	cp := *t
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, identifier string, upd types.TicketUpdate) (*types.Ticket, error) {
	t := m.find(identifier)
	if t == nil {
		return nil, &errs.NotFoundError{Kind: "ticket", Key: identifier}
	}
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	m.updates = append(m.updates, identifier)
	cp := *t
	return &cp, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, identifier, state string) error {
	if err := m.failStatus[identifier]; err != nil {
		return err
	}
	t := m.find(identifier)
	if t == nil {
		return &errs.NotFoundError{Kind: "ticket", Key: identifier}
	}
	t.State = types.MapStatus(state)
	m.moves = append(m.moves, identifier+":"+t.State)
	return nil
}

func (m *mockRepo) AddComment(_ context.Context, identifier, body string) error {
	m.comments[identifier] = append(m.comments[identifier], body)
	return nil
}

func (m *mockRepo) ListByLabelAndState(_ context.Context, label, state string) ([]types.Ticket, error) {
	var out []types.Ticket
	for _, key := range slices.Sorted(maps.Keys(m.tickets)) {
		t := m.tickets[key]
		if t.HasLabel(label) && t.State == types.MapStatus(state) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockRepo) Link(_ context.Context, child, parent string) error {
	m.links = append(m.links, child+"->"+parent)
	m.setParent(child, parent)
	return nil
}

func (m *mockRepo) Cancel(ctx context.Context, identifier, comment string) types.TwoPhaseResult {
	res := types.TwoPhaseResult{Comment: types.Skipped()}
	if comment != "" {
		_ = m.AddComment(ctx, identifier, comment)
		res.Comment = types.Done()
	}
	if err := m.UpdateStatus(ctx, identifier, string(types.StatusCanceled)); err != nil {
		res.Transition = types.Failed(err)
		return res
	}
	res.Transition = types.Done()
	return res
}

func (m *mockRepo) writes() int {
	n := len(m.created) + len(m.moves) + len(m.updates) + len(m.links)
	for _, c := range m.comments {
		n += len(c)
	}
	return n
}

// mockBacklog implements BacklogClient.
type mockBacklog struct {
	items     map[int]*types.BacklogItem
	comments  map[int][]string
	closed    []int
	failClose map[int]error
}

func newMockBacklog(numbers ...int) *mockBacklog {
	b := &mockBacklog{items: map[int]*types.BacklogItem{}, comments: map[int][]string{}, failClose: map[int]error{}}
	for _, n := range numbers {
		b.items[n] = &types.BacklogItem{Number: n, Title: fmt.Sprintf("Issue %d", n), State: "open"}
	}
	return b
}

func (b *mockBacklog) ListOpen(context.Context) ([]types.BacklogItem, error) {
	var out []types.BacklogItem
	for n := 1; n <= 100; n++ {
		if it, ok := b.items[n]; ok && it.State == "open" {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (b *mockBacklog) Fetch(_ context.Context, number int) (*types.BacklogItem, error) {
	it, ok := b.items[number]
	if !ok {
		return nil, &errs.NotFoundError{Kind: "backlog item", Key: fmt.Sprintf("#%d", number)}
	}
	cp := *it
	return &cp, nil
}

func (b *mockBacklog) Close(_ context.Context, number int, comment string) types.TwoPhaseResult {
	res := types.TwoPhaseResult{Comment: types.Skipped()}
	if comment != "" {
		b.comments[number] = append(b.comments[number], comment)
		res.Comment = types.Done()
	}
	if err := b.failClose[number]; err != nil {
		res.Transition = types.Failed(err)
		return res
	}
	b.items[number].State = "closed"
	b.closed = append(b.closed, number)
	res.Transition = types.Done()
	return res
}

// recordingConfirmer answers every prompt with answer and remembers the prompts.
type recordingConfirmer struct {
	answer  bool
	prompts []string
}

func (c *recordingConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	c.prompts = append(c.prompts, prompt)
	return c.answer, nil
}
