package engine

import (
	"strings"

	"github.com/goblinsan/mixer/pkg/types"
)

// Suggestion is an implementation area detected in a goal with the steps
// a plan for it usually needs.
type Suggestion struct {
	Area  string   `json:"area"`
	Steps []string `json:"steps"`
}

type areaRule struct {
	area        string
	title       []string
	description []string
	steps       []string
}

var areaRules = []areaRule{
	{
		area:        "Authentication",
		title:       []string{"auth", "login"},
		description: []string{"auth"},
		steps: []string{
			"Set up authentication module structure",
			"Implement JWT token generation",
			"Create login/logout endpoints",
			"Add password hashing",
			"Implement session management",
			"Write authentication tests",
		},
	},
	{
		area:        "API Development",
		title:       []string{"api", "endpoint"},
		description: []string{"api"},
		steps: []string{
			"Design API schema",
			"Set up routing structure",
			"Implement CRUD endpoints",
			"Add input validation",
			"Implement error handling",
			"Write API tests",
		},
	},
	{
		area:        "Frontend/UI",
		title:       []string{"ui", "frontend"},
		description: []string{"dashboard"},
		steps: []string{
			"Create component structure",
			"Implement UI layouts",
			"Add state management",
			"Connect to backend APIs",
			"Implement user interactions",
			"Write UI tests",
		},
	},
	{
		area:        "Database/Data Model",
		title:       []string{"database", "model"},
		description: []string{"schema"},
		steps: []string{
			"Design database schema",
			"Create migration files",
			"Implement models/entities",
			"Add data validation",
			"Create seed data",
			"Write database tests",
		},
	},
}

// PlanOutline is the phase structure every plan follows.
var PlanOutline = []Suggestion{
	{Area: "Setup Phase", Steps: []string{"Create module/component structure", "Set up configuration", "Install dependencies"}},
	{Area: "Core Implementation", Steps: []string{"Build main functionality", "Implement business logic", "Add data handling"}},
	{Area: "Integration", Steps: []string{"Connect components", "Add API endpoints/routes", "Implement error handling"}},
	{Area: "Testing", Steps: []string{"Write unit tests", "Add integration tests", "Perform manual testing"}},
	{Area: "Documentation", Steps: []string{"Add code comments", "Update README", "Document API/usage"}},
}

// Analyze matches keywords in a goal's title and description against known
// implementation areas. Matching is substring based and case-insensitive.
func Analyze(goal *types.Ticket) []Suggestion {
	title := strings.ToLower(goal.Title)
	description := strings.ToLower(goal.Description)

	var out []Suggestion
	for _, r := range areaRules {
		if containsAny(title, r.title) || containsAny(description, r.description) {
			out = append(out, Suggestion{Area: r.area, Steps: r.steps})
		}
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
