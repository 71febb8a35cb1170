package printer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture redirects printer output into buffers for the duration of the test
func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	prevOut, prevErr, prevNoColor := Out, Err, color.NoColor
	Out, Err, color.NoColor = &out, &errOut, true
	t.Cleanup(func() {
		Out, Err, color.NoColor = prevOut, prevErr, prevNoColor
	})
	return &out, &errOut
}

func TestError(t *testing.T) {
	t.Run("returns error with title", func(t *testing.T) {
		_, errOut := capture(t)
		err := Error("Test Error", "This is a test error", []string{})
		require.Error(t, err)
		require.Equal(t, "Test Error", err.Error())
		assert.Contains(t, errOut.String(), "This is a test error")
	})

	t.Run("single suggestion is printed plainly", func(t *testing.T) {
		_, errOut := capture(t)
		err := Error("Test Error", "Explanation", []string{"Try this fix"})
		require.Equal(t, "Test Error", err.Error())
		assert.Contains(t, errOut.String(), "Try this fix")
		assert.NotContains(t, errOut.String(), "Either:")
	})

	t.Run("multiple suggestions are numbered", func(t *testing.T) {
		_, errOut := capture(t)
		err := Error("Test Error", "Explanation", []string{
			"First option",
			"Second option",
		})
		require.Equal(t, "Test Error", err.Error())
		assert.Contains(t, errOut.String(), "Either:\n  1. First option\n  2. Second option\n")
	})
}

func TestErrorWithContext(t *testing.T) {
	_, errOut := capture(t)
	context := map[string]string{
		"Target":       "24",
		"Module count": "9",
		"Stall":        "1001",
	}
	err := ErrorWithContext("Generation exhausted", "Explanation", context, []string{"Fix it"})
	require.Error(t, err)
	require.Equal(t, "Generation exhausted", err.Error())

	out := errOut.String()
	assert.Less(t, strings.Index(out, "Module count: 9"), strings.Index(out, "Stall: 1001"))
	assert.Less(t, strings.Index(out, "Stall: 1001"), strings.Index(out, "Target: 24"))
}

func TestSuccessAndWarning(t *testing.T) {
	out, _ := capture(t)
	Success("wrote %s\n", "patch.json")
	Warning("careful\n")
	Step("growing\n")

	assert.Equal(t, "✓ wrote patch.json\n⚠️  careful\n→ growing\n", out.String())
}
