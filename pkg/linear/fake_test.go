package linear

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// fakeLinear is an in-memory tracker answering the operations this package
// sends. Responses carry exactly the fields the query structs select.
type fakeLinear struct {
	mu sync.Mutex

	teamKey string
	teamID  string
	labels  []fakeLabel
	states  []fakeState
	issues  []*fakeIssue
	nextID  int

	// pageSize caps connection pages; the real tracker serves 250.
	pageSize int

	ops      []string
	inputs   map[string][]map[string]any
	comments map[string][]string
	authSeen []string

	// failApp makes an operation answer with a GraphQL error message.
	failApp map[string]string
	// failStatus makes an operation answer with an HTTP status.
	failStatus map[string]int
}

type fakeLabel struct{ id, name string }

type fakeState struct{ id, name, typ string }

type fakeIssue struct {
	id, identifier, title, description, state string
	labels                                    []string
	parent                                    string
}

func newFakeLinear(t *testing.T) (*fakeLinear, *Executor) {
	t.Helper()
	f := &fakeLinear{
		teamKey:  "SYS",
		teamID:   "team-1",
		pageSize: 250,
		states: []fakeState{
			{"st-backlog", "Backlog", "backlog"},
			{"st-draft", "Draft", "unstarted"},
			{"st-todo", "Todo", "unstarted"},
			{"st-doing", "In Progress", "started"},
			{"st-done", "Done", "completed"},
			{"st-canceled", "Canceled", "canceled"},
		},
		inputs:     map[string][]map[string]any{},
		comments:   map[string][]string{},
		failApp:    map[string]string{},
		failStatus: map[string]int{},
	}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, NewExecutor("lin_api_test", nil).WithEndpoint(srv.URL)
}

func (f *fakeLinear) addLabel(name string) string {
	f.nextID++
	id := fmt.Sprintf("label-%d", f.nextID)
	f.labels = append(f.labels, fakeLabel{id: id, name: name})
	return id
}

func (f *fakeLinear) addIssue(identifier, title, state, parent string, labels ...string) *fakeIssue {
	f.nextID++
	is := &fakeIssue{
		id:          fmt.Sprintf("issue-%d", f.nextID),
		identifier:  identifier,
		title:       title,
		description: "# " + title,
		state:       state,
		labels:      labels,
		parent:      parent,
	}
	f.issues = append(f.issues, is)
	return is
}

// paginate returns the page of nodes after cursor and its pageInfo.
func (f *fakeLinear) paginate(nodes []map[string]any, cursor string) ([]map[string]any, map[string]any) {
	start, _ := strconv.Atoi(cursor)
	start = min(start, len(nodes))
	end := min(start+f.pageSize, len(nodes))
	return nodes[start:end], map[string]any{"hasNextPage": end < len(nodes), "endCursor": strconv.Itoa(end)}
}

func (f *fakeLinear) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, o := range f.ops {
		if o == op {
			n++
		}
	}
	return n
}

func (f *fakeLinear) lookup(key string) *fakeIssue {
	for _, is := range f.issues {
		if is.identifier == key || is.id == key {
			return is
		}
	}
	return nil
}

func (f *fakeLinear) stateByID(id string) string {
	for _, s := range f.states {
		if s.id == id {
			return s.name
		}
	}
	return ""
}

func (f *fakeLinear) labelByID(id string) string {
	for _, l := range f.labels {
		if l.id == id {
			return l.name
		}
	}
	return ""
}

func (f *fakeLinear) node(is *fakeIssue) map[string]any {
	labels := []map[string]any{}
	for _, l := range is.labels {
		labels = append(labels, map[string]any{"name": l})
	}
	var parent any
	if p := f.lookup(is.parent); p != nil {
		parent = map[string]any{"id": p.id, "identifier": p.identifier, "title": p.title}
	}
	children := []map[string]any{}
	for _, c := range f.issues {
		if c.parent == is.identifier {
			children = append(children, map[string]any{
				"id": c.id, "identifier": c.identifier, "title": c.title,
				"state": map[string]any{"name": c.state},
			})
		}
	}
	return map[string]any{
		"id":          is.id,
		"identifier":  is.identifier,
		"title":       is.title,
		"description": is.description,
		"url":         "https://linear.app/acme/issue/" + is.identifier,
		"state":       map[string]any{"name": is.state},
		"labels":      map[string]any{"nodes": labels},
		"parent":      parent,
		"children":    map[string]any{"nodes": children},
	}
}

func operationOf(query string) string {
	switch {
	case strings.Contains(query, "issueLabelCreate("):
		return "issueLabelCreate"
	case strings.Contains(query, "commentCreate("):
		return "commentCreate"
	case strings.Contains(query, "issueCreate("):
		return "issueCreate"
	case strings.Contains(query, "issueUpdate("):
		return "issueUpdate"
	case strings.Contains(query, "labels(first: 250, after: $after)"):
		return "labels"
	case strings.Contains(query, "states{"):
		return "states"
	case strings.Contains(query, "issues("):
		return "issues"
	case strings.Contains(query, "issue(id: $id)"):
		return "issue"
	case strings.Contains(query, "team(id: $teamId)"):
		return "team"
	case strings.Contains(query, "viewer{"):
		return "viewer"
	}
	return "unknown"
}

func (f *fakeLinear) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	op := operationOf(req.Query)
	f.ops = append(f.ops, op)
	f.authSeen = append(f.authSeen, r.Header.Get("Authorization"))
	if in, ok := req.Variables["input"].(map[string]any); ok {
		f.inputs[op] = append(f.inputs[op], in)
	}

	if code, ok := f.failStatus[op]; ok {
		http.Error(w, "upstream unavailable", code)
		return
	}
	if msg, ok := f.failApp[op]; ok {
		writeGraphQLError(w, msg)
		return
	}

	vars := req.Variables
	str := func(k string) string { s, _ := vars[k].(string); return s }
	input, _ := vars["input"].(map[string]any)
	in := func(k string) string { s, _ := input[k].(string); return s }

	var data map[string]any
	switch op {
	case "team":
		key := str("teamId")
		if key != f.teamKey && key != f.teamID {
			writeGraphQLError(w, "Entity not found: Team")
			return
		}
		data = map[string]any{"team": map[string]any{"id": f.teamID, "key": f.teamKey, "name": "Systems"}}

	case "labels":
		nodes := []map[string]any{}
		for _, l := range f.labels {
			nodes = append(nodes, map[string]any{"id": l.id, "name": l.name})
		}
		page, info := f.paginate(nodes, str("after"))
		data = map[string]any{"team": map[string]any{"labels": map[string]any{"nodes": page, "pageInfo": info}}}

	case "states":
		nodes := []map[string]any{}
		for _, s := range f.states {
			nodes = append(nodes, map[string]any{"id": s.id, "name": s.name, "type": s.typ})
		}
		data = map[string]any{"team": map[string]any{"states": map[string]any{"nodes": nodes}}}

	case "issueLabelCreate":
		id := f.addLabel(in("name"))
		data = map[string]any{"issueLabelCreate": map[string]any{
			"success":    true,
			"issueLabel": map[string]any{"id": id, "name": in("name")},
		}}

	case "issue":
		is := f.lookup(str("id"))
		if is == nil {
			writeGraphQLError(w, "Entity not found: Issue")
			return
		}
		data = map[string]any{"issue": f.node(is)}

	case "issues":
		nodes := []map[string]any{}
		for _, is := range f.issues {
			if is.state != str("state") {
				continue
			}
			for _, l := range is.labels {
				if strings.EqualFold(l, str("label")) {
					nodes = append(nodes, f.node(is))
					break
				}
			}
		}
		page, info := f.paginate(nodes, str("after"))
		data = map[string]any{"issues": map[string]any{"nodes": page, "pageInfo": info}}

	case "issueCreate":
		f.nextID++
		is := &fakeIssue{
			id:          fmt.Sprintf("issue-%d", f.nextID),
			identifier:  fmt.Sprintf("%s-%d", f.teamKey, 100+f.nextID),
			title:       in("title"),
			description: in("description"),
			state:       "Backlog",
		}
		if s := f.stateByID(in("stateId")); s != "" {
			is.state = s
		}
		if ids, ok := input["labelIds"].([]any); ok {
			for _, id := range ids {
				is.labels = append(is.labels, f.labelByID(id.(string)))
			}
		}
		if p := f.lookup(in("parentId")); p != nil {
			is.parent = p.identifier
		}
		f.issues = append(f.issues, is)
		data = map[string]any{"issueCreate": map[string]any{"success": true, "issue": f.node(is)}}

	case "issueUpdate":
		is := f.lookup(str("id"))
		if is == nil {
			writeGraphQLError(w, "Entity not found: Issue")
			return
		}
		if v, ok := input["title"].(string); ok {
			is.title = v
		}
		if v, ok := input["description"].(string); ok {
			is.description = v
		}
		if s := f.stateByID(in("stateId")); s != "" {
			is.state = s
		}
		if p := f.lookup(in("parentId")); p != nil {
			is.parent = p.identifier
		}
		data = map[string]any{"issueUpdate": map[string]any{"success": true, "issue": f.node(is)}}

	case "commentCreate":
		is := f.lookup(in("issueId"))
		if is == nil {
			writeGraphQLError(w, "Entity not found: Issue")
			return
		}
		f.comments[is.identifier] = append(f.comments[is.identifier], in("body"))
		data = map[string]any{"commentCreate": map[string]any{
			"success": true,
			"comment": map[string]any{"id": fmt.Sprintf("comment-%d", len(f.comments[is.identifier]))},
		}}

	case "viewer":
		data = map[string]any{"viewer": map[string]any{"id": "user-1", "name": "Ada", "email": "ada@example.com"}}

	default:
		writeGraphQLError(w, "unknown operation")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func writeGraphQLError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data":   nil,
		"errors": []map[string]any{{"message": msg}},
	})
}
