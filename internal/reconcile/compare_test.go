package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetComparatorIgnoresOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	set := Set()
	assert.True(t, set.Equal(ListValue("a", "b", "c"), ListValue("c", "b", "a")))
	assert.True(t, set.Equal(ListValue("a", "a", "b"), ListValue("b", "a")))
	assert.False(t, set.Equal(ListValue("a", "b"), ListValue("a")))
}

func TestExactComparatorIsOrderSensitive(t *testing.T) {
	t.Parallel()

	exact := Exact()
	assert.True(t, exact.Equal(ListValue("sh", "-c"), ListValue("sh", "-c")))
	assert.False(t, exact.Equal(ListValue("sh", "-c"), ListValue("-c", "sh")))
}

func TestCaselessComparatorFoldsCase(t *testing.T) {
	t.Parallel()

	caseless := Caseless()
	assert.True(t, caseless.Equal(StringValue("SIGTERM"), StringValue("sigterm")))
	assert.True(t, caseless.Equal(ListValue("Nginx", "-G"), ListValue("nginx", "-g")))
	assert.False(t, caseless.Equal(StringValue("a"), StringValue("b")))
}

func TestSemanticComparatorCanonicalizesBothSides(t *testing.T) {
	t.Parallel()

	devices := Semantic(canonDevice)
	assert.True(t, devices.Equal(ListValue("/dev/fuse"), ListValue("/dev/fuse:/dev/fuse")))
	assert.True(t, devices.Equal(ListValue("/dev/fuse:/dev/fuse"), ListValue("/dev/fuse")))

	publish := Semantic(canonPublish)
	assert.True(t, publish.Equal(ListValue("0.0.0.0:8080:80/tcp"), ListValue("8080:80")))

	signals := Semantic(canonSignal)
	assert.True(t, signals.Equal(StringValue("SIGTERM"), StringValue("15")))
	assert.True(t, signals.Equal(StringValue("KILL"), StringValue("9")))
}

// Every comparator must agree regardless of argument order and must
// accept a value as equal to itself.
func TestComparatorsAreSymmetricAndReflexive(t *testing.T) {
	t.Parallel()

	comparators := map[string]Comparator{
		"exact":    Exact(),
		"set":      Set(),
		"caseless": Caseless(),
		"device":   Semantic(canonDevice),
		"volume":   Semantic(canonVolume),
		"publish":  Semantic(canonPublish),
		"signal":   Semantic(canonSignal),
	}
	samples := []Value{
		StringValue("a"),
		StringValue("SIGKILL"),
		ListValue("b", "a", "a"),
		ListValue("/dev/fuse", "0.0.0.0:80:80/tcp"),
		MapValue(map[string]string{"K": "V"}),
		BoolValue(true),
		IntValue(9),
		Value{},
	}

	for name, c := range comparators {
		for _, a := range samples {
			assert.True(t, c.Equal(a, a), "%s not reflexive for %s", name, a)
			for _, b := range samples {
				assert.Equal(t, c.Equal(a, b), c.Equal(b, a), "%s not symmetric for %s / %s", name, a, b)
			}
		}
	}
}
