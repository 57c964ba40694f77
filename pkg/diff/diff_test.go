package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderOptionsIdentical(t *testing.T) {
	t.Parallel()

	opts := map[string]string{"memory": "104857600", "image": "alpine"}
	assert.Equal(t, "", RenderOptions(opts, opts))
}

func TestRenderOptionsShowsChangedKeys(t *testing.T) {
	t.Parallel()

	before := map[string]string{"env": "{}"}
	after := map[string]string{"env": "{FOO: bar}"}

	out := RenderOptions(before, after)
	assert.Contains(t, out, "--- before")
	assert.Contains(t, out, "+++ after")
	assert.Contains(t, out, "env")
	assert.Contains(t, out, "FOO")
}

func TestRenderOptionsDeterministicOrder(t *testing.T) {
	t.Parallel()

	before := map[string]string{"b": "1", "a": "2", "c": "3"}
	after := map[string]string{"b": "9", "a": "2", "c": "3"}

	first := RenderOptions(before, after)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, RenderOptions(before, after))
	}
}

func TestUnifiedEmptyForEqualInput(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", Unified("same\n", "same\n", "a", "b"))
}

func TestUnifiedMarksInsertionsAndDeletions(t *testing.T) {
	t.Parallel()

	out := Unified("one\ntwo\n", "one\nthree\n", "current", "desired")
	assert.Contains(t, out, "--- current")
	assert.Contains(t, out, "+++ desired")
	assert.True(t, strings.Contains(out, "-") && strings.Contains(out, "+"))
}
