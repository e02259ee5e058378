package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/ownbox/internal/sqlite"
	"github.com/mesh-intelligence/ownbox/internal/walk"
	"github.com/mesh-intelligence/ownbox/pkg/types"
)

// cliEnv holds isolated config and data directories for one test.
type cliEnv struct {
	configDir string
	dataDir   string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	t.Setenv("OWNBOX_LOG_LEVEL", "")
	t.Setenv("OWNBOX_JOURNAL", "")
	root := t.TempDir()
	return cliEnv{
		configDir: filepath.Join(root, "config"),
		dataDir:   filepath.Join(root, "data"),
	}
}

// run executes the CLI with the env's directories and captures output.
func (e cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	env := newCLIEnv(t)
	out, _, err := env.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ownbox v"+Version)
	assert.Contains(t, out, modulePath)
}

func TestInit_CreatesConfigAndJournal(t *testing.T) {
	env := newCLIEnv(t)
	out, _, err := env.run(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "ownbox initialized successfully")

	data, err := os.ReadFile(filepath.Join(env.configDir, configFileExt))
	require.NoError(t, err)
	assert.Equal(t, defaultConfigYAML, string(data))

	_, err = os.Stat(filepath.Join(env.dataDir, sqlite.DatabaseFile))
	assert.NoError(t, err)
}

func TestInit_KeepsExistingConfig(t *testing.T) {
	env := newCLIEnv(t)
	require.NoError(t, os.MkdirAll(env.configDir, 0o755))
	custom := "backend: sqlite\njournal: false\n"
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, configFileExt), []byte(custom), 0o644))

	_, _, err := env.run(t, "init")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(env.configDir, configFileExt))
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))
}

func TestScenarios_JSON(t *testing.T) {
	env := newCLIEnv(t)
	out, _, err := env.run(t, "--json", "scenarios")
	require.NoError(t, err)

	var list []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, len(walk.Scenarios()))
	assert.Equal(t, "match-present", list[0]["name"])
}

func TestWalk_Text(t *testing.T) {
	env := newCLIEnv(t)
	out, _, err := env.run(t, "walk")
	require.NoError(t, err)

	assert.Contains(t, out, "it's an int: 4")
	assert.Contains(t, out, "different numbers: 15 32")
	assert.Contains(t, out, "now_its_mine = 7")
	assert.Contains(t, out, "var2 = Present(6)")
	assert.Contains(t, out, "Present(1)")
}

func TestWalk_JSONSelected(t *testing.T) {
	env := newCLIEnv(t)
	out, _, err := env.run(t, "--json", "walk", "shared-borrow", "exclusive-borrow")
	require.NoError(t, err)

	var results []walk.Result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "shared-borrow", results[0].Name)
	assert.Equal(t, float64(3), results[0].Values["var"])
	assert.Equal(t, float64(6), results[1].Values["var2"])
}

func TestWalk_UnknownScenario(t *testing.T) {
	env := newCLIEnv(t)
	_, _, err := env.run(t, "walk", "loop")
	assert.ErrorIs(t, err, walk.ErrUnknownScenario)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestWalk_RecordsJournal(t *testing.T) {
	env := newCLIEnv(t)
	_, _, err := env.run(t, "walk", "move")
	require.NoError(t, err)

	out, _, err := env.run(t, "--json", "journal", "--binding", "now_its_mine")
	require.NoError(t, err)

	var transitions []types.Transition
	require.NoError(t, json.Unmarshal([]byte(out), &transitions))
	ops := make([]string, len(transitions))
	for i, tr := range transitions {
		ops[i] = tr.Op
	}
	assert.Equal(t, []string{
		types.OpOwn, types.OpBorrowMut, types.OpWrite, types.OpReleaseMut, types.OpDrop,
	}, ops)
	assert.Equal(t, types.StateExclusive, transitions[1].To)

	out, _, err = env.run(t, "journal", "--rejected")
	require.NoError(t, err)
	assert.Contains(t, out, "refused: "+types.ErrMoved.Error())
	assert.Contains(t, out, "Total: 1 transition(s)")
}

func TestWalk_NoJournal(t *testing.T) {
	env := newCLIEnv(t)
	_, _, err := env.run(t, "walk", "--no-journal", "move")
	require.NoError(t, err)

	out, _, err := env.run(t, "journal")
	require.NoError(t, err)
	assert.Contains(t, out, "No transitions recorded.")
}

func TestWalk_JournalDisabledInConfig(t *testing.T) {
	env := newCLIEnv(t)
	t.Setenv("OWNBOX_JOURNAL", "false")
	_, _, err := env.run(t, "walk", "move")
	require.NoError(t, err)

	t.Setenv("OWNBOX_JOURNAL", "")
	out, _, err := env.run(t, "--json", "journal")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestWalk_VerboseLogsTransitions(t *testing.T) {
	env := newCLIEnv(t)
	_, stderr, err := env.run(t, "-v", "walk", "--no-journal", "borrow-conflict")
	require.NoError(t, err)
	assert.Contains(t, stderr, "transition")
	assert.Contains(t, stderr, "ownership violation")
}

func TestJournal_Clear(t *testing.T) {
	env := newCLIEnv(t)
	_, _, err := env.run(t, "walk", "match-present")
	require.NoError(t, err)

	out, _, err := env.run(t, "journal", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "journal cleared")

	out, _, err = env.run(t, "journal")
	require.NoError(t, err)
	assert.Contains(t, out, "No transitions recorded.")
}

func TestInvalidLogLevel(t *testing.T) {
	env := newCLIEnv(t)
	t.Setenv("OWNBOX_LOG_LEVEL", "loud")
	_, _, err := env.run(t, "scenarios")
	assert.ErrorIs(t, err, errInvalidLogLevel)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitUserError, exitCode(types.ErrInvalidFilter))
	assert.Equal(t, exitUserError, exitCode(types.ErrBackendUnknown))
	assert.Equal(t, exitSysError, exitCode(errors.New("disk full")))
}
