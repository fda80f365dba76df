package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/stgcore/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simTOML = `toolboxes = ["FEM"]

[[components]]
name = "temperature"
type = "FeVariable"
params = { dofs = 1, initial = 0.5 }
refs = { mesh = "m1" }

[[components]]
name = "m1"
type = "Mesh"
params = { resolution = 4 }
refs = { geometry = "g1" }

[[components]]
name = "g1"
type = "BoxGeometry"
params = { dims = 2 }
`

const brokenTOML = `toolboxes = ["FEM"]

[[components]]
name = "m1"
type = "Mesh"
refs = { geometry = "nowhere" }
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRunCommand(t *testing.T) {
	sim := writeFile(t, "sim.toml", simTOML)

	t.Run("single rank", func(t *testing.T) {
		out, _, err := execute(t, "run", sim, "-n", "2", "--list-components", "-o", "text")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		assert.True(t, strings.HasPrefix(lines[0], "StGermain Framework"), "banner first, got %q", lines[0])
		assert.Contains(t, out, "25 nodes over 2 dimension(s)")
		assert.Contains(t, out, "step 1: 25 values")
		assert.Contains(t, out, "step 2: 25 values")
		assert.Contains(t, out, "temperature (FeVariable): executing, executed 2")
		assert.Contains(t, out, "g1 (BoxGeometry): executing, executed 2")
	})

	t.Run("local ranks", func(t *testing.T) {
		out, _, err := execute(t, "run", sim, "--size", "3", "--watch-rank", "2")
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(out, "StGermain Framework"))
		assert.Contains(t, out, "3 process(es)")
		assert.Equal(t, 1, strings.Count(out, "step 1: 25 values"))
	})

	t.Run("unwatched rank is quiet", func(t *testing.T) {
		out, _, err := execute(t, "run", sim, "--rank", "1")
		require.NoError(t, err)
		assert.NotContains(t, out, "StGermain Framework")
		assert.NotContains(t, out, "step 1")
	})

	t.Run("zero rounds", func(t *testing.T) {
		out, _, err := execute(t, "run", sim, "-n", "0", "--list-components", "-o", "text")
		require.NoError(t, err)
		assert.NotContains(t, out, "step 1")
		assert.Contains(t, out, "temperature (FeVariable): initialised")
	})
}

func TestRunCommandErrors(t *testing.T) {
	sim := writeFile(t, "sim.toml", simTOML)

	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"unresolved reference", []string{"run", writeFile(t, "broken.toml", brokenTOML)}, errors.ErrUnresolvedReference},
		{"unknown toolbox", []string{"run", writeFile(t, "tb.toml", `toolboxes = ["Nope"]`)}, errors.ErrUnknownToolbox},
		{"missing file", []string{"run", filepath.Join(t.TempDir(), "none.toml")}, errors.ErrConfigLoad},
		{"rank with size", []string{"run", sim, "--rank", "1", "--size", "2"}, errors.ErrInvalidInput},
		{"negative rounds", []string{"run", sim, "-n", "-1"}, errors.ErrInvalidInput},
		{"bad output", []string{"run", sim, "-o", "html"}, errors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), "expected %s, got %v", tt.code, err)
		})
	}
}

func TestTypesCommand(t *testing.T) {
	out, _, err := execute(t, "types", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Component (abstract, Base)\n  Counter (Base)\n  FeVariable (FEM)\n  Geometry (abstract, Domain)\n    BoxGeometry (Domain)\n  Mesh (Domain)")
	assert.Contains(t, out, "Stub (stub, Base)")
	assert.NotContains(t, out, "StGermain Framework")

	base := writeFile(t, "base.toml", `toolboxes = ["Base"]`)
	out, _, err = execute(t, "types", base, "-o", "text")
	require.NoError(t, err)
	assert.NotContains(t, out, "Mesh")
	assert.Contains(t, out, "Counter")
}

func TestToolboxesCommand(t *testing.T) {
	out, _, err := execute(t, "toolboxes", "-o", "text")
	require.NoError(t, err)
	assert.Equal(t, "0 Base\n1 Domain <- Base\n2 FEM <- Domain\n", out)

	sim := writeFile(t, "sim.toml", simTOML)
	out, _, err = execute(t, "toolboxes", sim, "-o", "text")
	require.NoError(t, err)
	assert.Equal(t, "0 Base [initialised 1]\n1 Domain <- Base [initialised 2]\n2 FEM <- Domain [initialised 3]\n", out)
}

func TestConfigCommand(t *testing.T) {
	sim := writeFile(t, "sim.toml", simTOML)

	out, _, err := execute(t, "config", sim, "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: temperature")
	assert.Contains(t, out, "geometry: g1")

	t.Setenv("STG_JOURNAL__WATCH_RANK", "3")
	out, _, err = execute(t, "config", sim)
	require.NoError(t, err)
	assert.Contains(t, out, "watch_rank = 3")

	out, _, err = execute(t, "config", sim, "--set", "journal.watch_rank=1", "--set", "params.dt=0.1")
	require.NoError(t, err)
	assert.Contains(t, out, "watch_rank = 1")
	assert.Regexp(t, `dt = ['"]0\.1['"]`, out)

	_, _, err = execute(t, "config", sim, "--format", "json")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "stgrun version dev")
}

func TestHelpTopics(t *testing.T) {
	out, _, err := execute(t, "help", "topics")
	require.NoError(t, err)
	for _, topic := range []string{"config", "journal", "lifecycle", "toolboxes", "--watch-rank", "--execute"} {
		assert.Contains(t, out, topic)
	}

	out, _, err = execute(t, "help", "watch-rank")
	require.NoError(t, err)
	assert.Contains(t, out, "Selects the rank")
}

func TestNoCommand(t *testing.T) {
	_, _, err := execute(t)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
