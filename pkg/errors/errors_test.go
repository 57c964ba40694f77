package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorIdentifiesKey(t *testing.T) {
	t.Parallel()

	err := NewValidationError("memory", "cannot parse size \"10xb\"", nil)
	assert.Contains(t, err.Error(), "memory")
	assert.Contains(t, err.Error(), "10xb")

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "memory", verr.Key)
}

func TestExecutionErrorCarriesOutputVerbatim(t *testing.T) {
	t.Parallel()

	err := NewExecutionError("podman container rm web", 125, "", "no such container")
	assert.Contains(t, err.Error(), "rc 125")
	assert.Contains(t, err.Error(), "no such container")

	var xerr *ExecutionError
	require.True(t, errors.As(err, &xerr))
	assert.Equal(t, 125, xerr.RC)
	assert.Equal(t, "no such container", xerr.Stderr)
}

func TestProbeErrorUnwraps(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("executable file not found in $PATH")
	err := NewProbeError("podman", "cannot run executable", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "podman")
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	err := NewNotFoundError("network", "backend")
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(fmt.Errorf("probe: %w", err)))
	assert.False(t, IsNotFound(errors.New("network backend not found")))
	assert.Contains(t, err.Error(), `network "backend" not found`)
}

func TestIsTimeout(t *testing.T) {
	t.Parallel()

	err := NewTimeoutError("podman pull alpine", 2*time.Second)
	assert.True(t, IsTimeout(err))
	assert.Contains(t, err.Error(), "2s")
	assert.False(t, IsTimeout(errors.New("deadline exceeded")))
}
