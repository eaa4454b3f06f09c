package linear

import (
	"github.com/goblinsan/mixer/pkg/types"
)

// Input objects are sent as JSON variables; their Go type names double as
// the GraphQL input type names in the operation signature.

type IssueCreateInput struct {
	TeamID      string   `json:"teamId"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    int      `json:"priority"`
	LabelIDs    []string `json:"labelIds,omitempty"`
	StateID     string   `json:"stateId,omitempty"`
	ParentID    string   `json:"parentId,omitempty"`
}

type IssueUpdateInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	StateID     string  `json:"stateId,omitempty"`
	ParentID    string  `json:"parentId,omitempty"`
}

type CommentCreateInput struct {
	IssueID string `json:"issueId"`
	Body    string `json:"body"`
}

type IssueLabelCreateInput struct {
	Name   string `json:"name"`
	TeamID string `json:"teamId"`
}

type pageInfo struct {
	HasNextPage bool
	EndCursor   string
}

type labelNode struct {
	ID   string
	Name string
}

type stateNode struct {
	ID   string
	Name string
	Type string
}

type issueNode struct {
	ID          string
	Identifier  string
	Title       string
	Description string
	URL         string
	State       struct {
		Name string
	}
	Labels struct {
		Nodes []struct {
			Name string
		}
	}
	Parent struct {
		ID         string
		Identifier string
		Title      string
	}
	Children struct {
		Nodes []struct {
			ID         string
			Identifier string
			Title      string
			State      struct {
				Name string
			}
		}
	}
}

func (n issueNode) ticket() *types.Ticket {
	t := &types.Ticket{
		ID:          n.ID,
		Identifier:  n.Identifier,
		Title:       n.Title,
		Description: n.Description,
		URL:         n.URL,
		State:       n.State.Name,
	}
	for _, l := range n.Labels.Nodes {
		t.Labels = append(t.Labels, l.Name)
	}
	if n.Parent.ID != "" {
		t.Parent = &types.TicketRef{ID: n.Parent.ID, Identifier: n.Parent.Identifier, Title: n.Parent.Title}
	}
	for _, c := range n.Children.Nodes {
		t.Children = append(t.Children, types.TicketRef{
			ID:         c.ID,
			Identifier: c.Identifier,
			Title:      c.Title,
			State:      c.State.Name,
		})
	}
	return t
}

type teamQuery struct {
	Team struct {
		ID   string
		Key  string
		Name string
	} `graphql:"team(id: $teamId)"`
}

type teamLabelsQuery struct {
	Team struct {
		Labels struct {
			Nodes    []labelNode
			PageInfo pageInfo
		} `graphql:"labels(first: 250, after: $after)"`
	} `graphql:"team(id: $teamId)"`
}

type teamStatesQuery struct {
	Team struct {
		States struct {
			Nodes []stateNode
		}
	} `graphql:"team(id: $teamId)"`
}

type labelCreateMutation struct {
	IssueLabelCreate struct {
		Success    bool
		IssueLabel labelNode
	} `graphql:"issueLabelCreate(input: $input)"`
}

type issueQuery struct {
	Issue issueNode `graphql:"issue(id: $id)"`
}

type issuesQuery struct {
	Issues struct {
		Nodes    []issueNode
		PageInfo pageInfo
	} `graphql:"issues(first: 250, after: $after, filter: {team: {id: {eq: $teamId}}, labels: {name: {eqIgnoreCase: $label}}, state: {name: {eq: $state}}})"`
}

type issueCreateMutation struct {
	IssueCreate struct {
		Success bool
		Issue   issueNode
	} `graphql:"issueCreate(input: $input)"`
}

type issueUpdateMutation struct {
	IssueUpdate struct {
		Success bool
		Issue   issueNode
	} `graphql:"issueUpdate(id: $id, input: $input)"`
}

type commentCreateMutation struct {
	CommentCreate struct {
		Success bool
		Comment struct {
			ID string
		}
	} `graphql:"commentCreate(input: $input)"`
}

type viewerQuery struct {
	Viewer struct {
		ID    string
		Name  string
		Email string
	}
}
