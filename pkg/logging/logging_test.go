package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLevels(t *testing.T) {
	var quiet, loud bytes.Buffer

	New(&quiet, false).Info("hidden")
	New(&quiet, false).Warn("shown")
	New(&loud, true).Debug("debugging")

	assert.NotContains(t, quiet.String(), "hidden")
	assert.Contains(t, quiet.String(), "shown")
	assert.Contains(t, loud.String(), "debugging")
}

func TestAPICall(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, true)

	APICall(l, "linear", "issueCreate", nil)
	APICall(l, "github", "close", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "service=linear op=issueCreate status=success")
	assert.Contains(t, out, "service=github op=close status=error")
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))
	l := Discard()
	assert.Same(t, l, OrDiscard(l))
}
