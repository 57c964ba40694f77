package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podtend/podtend/internal/reconcile"
	pterrors "github.com/podtend/podtend/pkg/errors"
)

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "podtend")
	assert.Contains(t, out.String(), "commit:")
}

func TestApplyFailsOnMissingManifest(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"apply", "-f", filepath.Join(t.TempDir(), "missing.yaml")})

	err := cmd.Execute()
	var perr *pterrors.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestShowRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"show", "machine", "x"})

	err := cmd.Execute()
	var verr *pterrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "kind", verr.Key)
}

func TestParseEnvFlags(t *testing.T) {
	t.Parallel()

	env, err := parseEnvFlags([]string{"A=1", "B=x=y"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1", "B": "x=y"}, env)

	_, err = parseEnvFlags([]string{"NOEQUALS"})
	require.Error(t, err)

	env, err = parseEnvFlags(nil)
	require.NoError(t, err)
	assert.Nil(t, env)
}

func TestSplitTarget(t *testing.T) {
	t.Parallel()

	target, path := splitTarget("web:/etc/app.conf")
	assert.Equal(t, "web", target)
	assert.Equal(t, "/etc/app.conf", path)

	target, path = splitTarget("/tmp/local.conf")
	assert.Empty(t, target)
	assert.Equal(t, "/tmp/local.conf", path)

	target, path = splitTarget("./dir:with:colons")
	assert.Empty(t, target)
	assert.Equal(t, "./dir:with:colons", path)
}

func TestRunSummaryCounts(t *testing.T) {
	t.Parallel()

	var s runSummary
	s.count(&reconcile.Result{Changed: true})
	s.count(&reconcile.Result{})
	s.count(&reconcile.Result{Failed: true})
	s.count(&reconcile.Result{})

	assert.Equal(t, 1, s.changed)
	assert.Equal(t, 2, s.unchanged)
	assert.Equal(t, 1, s.failed)
}

func TestRenderResultMarksOutcome(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	renderResult(out, &reconcile.Result{
		Kind:    reconcile.KindContainer,
		Name:    "web",
		Changed: true,
		Message: "create and start container web",
		Actions: []string{"podman container run -d --name web nginx"},
	}, true)

	assert.Contains(t, out.String(), "container/web")
	assert.Contains(t, out.String(), "create and start container web")
	assert.Contains(t, out.String(), "$ podman container run -d --name web nginx")
}
