package types

import "strings"

// Status is a canonical workflow state name as the tracker spells it.
type Status string

const (
	StatusDraft    Status = "Draft"
	StatusTodo     Status = "Todo"
	StatusDoing    Status = "In Progress"
	StatusDone     Status = "Done"
	StatusCanceled Status = "Canceled"
)

// ListableStatuses are the statuses covered when listing without a filter.
var ListableStatuses = []Status{StatusDraft, StatusTodo, StatusDoing, StatusDone}

var statusVocabulary = map[string]Status{
	"draft":       StatusDraft,
	"todo":        StatusTodo,
	"doing":       StatusDoing,
	"done":        StatusDone,
	"closed":      StatusCanceled,
	"in progress": StatusDoing,
	"canceled":    StatusCanceled,
}

// MapStatus maps the operator vocabulary (draft, todo, doing, done, closed)
// onto canonical tracker names. Input is case-insensitive. Canonical names
// map to themselves and anything else is returned unchanged.
func MapStatus(name string) string {
	if s, ok := statusVocabulary[strings.ToLower(strings.TrimSpace(name))]; ok {
		return string(s)
	}
	return name
}

// ParseStatus is MapStatus with a flag telling whether name was known.
func ParseStatus(name string) (Status, bool) {
	s, ok := statusVocabulary[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// Terminal reports whether no further automatic transition starts from s.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusCanceled
}

func (s Status) next() (Status, bool) {
	switch s {
	case StatusDraft:
		return StatusTodo, true
	case StatusTodo:
		return StatusDoing, true
	case StatusDoing:
		return StatusDone, true
	}
	return "", false
}

// Expected reports whether moving from s to target follows the lifecycle:
// one step along Draft, Todo, In Progress, Done, or to Canceled from any
// non-terminal state. Staying put is always expected.
func (s Status) Expected(target Status) bool {
	if s == target {
		return true
	}
	if s.Terminal() {
		return false
	}
	if target == StatusCanceled {
		return true
	}
	n, ok := s.next()
	return ok && n == target
}

// Short returns the lowercase operator word for s, e.g. "doing".
func (s Status) Short() string {
	switch s {
	case StatusDoing:
		return "doing"
	case StatusCanceled:
		return "closed"
	}
	return strings.ToLower(string(s))
}
