package types

import (
	"slices"
	"strings"
	"time"
)

// Ticket is a unit of work in the workflow tracker: a goal or a plan.
type Ticket struct {
	ID          string      `json:"id"`
	Identifier  string      `json:"identifier"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	URL         string      `json:"url,omitempty"`
	State       string      `json:"state"`
	Labels      []string    `json:"labels,omitempty"`
	Parent      *TicketRef  `json:"parent,omitempty"`
	Children    []TicketRef `json:"children,omitempty"`
}

// TicketRef is a one-level reference to a parent or child ticket.
// State is only populated for children.
type TicketRef struct {
	ID         string `json:"id"`
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	State      string `json:"state,omitempty"`
}

// Status returns the ticket's state as a lifecycle status.
func (t *Ticket) Status() Status {
	return Status(MapStatus(t.State))
}

// HasLabel reports whether the ticket carries name, compared case-insensitively.
func (t *Ticket) HasLabel(name string) bool {
	return slices.ContainsFunc(t.Labels, func(l string) bool {
		return strings.EqualFold(l, name)
	})
}

// Ticket kinds, expressed as the label each one carries.
const (
	LabelGoal = "goal"
	LabelPlan = "plan"
)

// DefaultPriority is the tracker priority given to new tickets (3 = normal).
const DefaultPriority = 3

// TicketInput describes a ticket to create.
type TicketInput struct {
	Title       string
	Description string
	// Label is resolved by name and created when missing. Empty means no label.
	Label string
	// State is a workflow state name; empty means Todo.
	State string
	// Priority defaults to DefaultPriority when nil.
	Priority *int
	// Parent is a human identifier ("SYS-8") or an internal ID.
	Parent string
}

// TicketUpdate carries the fields to change on an existing ticket. Nil fields are left alone.
type TicketUpdate struct {
	Title       *string
	Description *string
}

// BacklogItem is an issue owned by the backlog tracker. It is read and closed, never created.
type BacklogItem struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	URL       string    `json:"url"`
	Labels    []string  `json:"labels,omitempty"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RepoInfo summarizes the backlog repository.
type RepoInfo struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	URL           string `json:"url"`
	DefaultBranch string `json:"default_branch,omitempty"`
	OpenIssues    int    `json:"open_issues"`
}

// Viewer is the account a tracker API key belongs to.
type Viewer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
