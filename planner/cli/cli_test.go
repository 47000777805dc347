package cli

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twitter/ditto/common/errors"
)

const twoServers = `{"Servers": {"Type": "explicit", "Slots": [16, 16]}}`

const diamondJobs = `{"jobs": [
	{"name": "diamond", "nslot": 8, "stages": [
		{"name": "A", "alpha": 1, "beta": 0, "children": [{"name": "B", "weight": 1}, {"name": "C", "weight": 1}]},
		{"name": "B", "alpha": 1, "beta": 0, "children": [{"name": "D", "weight": 1}]},
		{"name": "C", "alpha": 1, "beta": 0, "children": [{"name": "D", "weight": 1}]},
		{"name": "D", "alpha": 1, "beta": 0}
	]}
]}`

func writeJobs(t *testing.T, text string) (string, func()) {
	dir, err := ioutil.TempDir("", "dittoplan")
	require.NoError(t, err)
	path := filepath.Join(dir, "jobs.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(text), 0644))
	return path, func() { os.RemoveAll(dir) }
}

func execute(args ...string) (string, error) {
	out := &bytes.Buffer{}
	cl := NewPlannerCLI(out)
	cl.RootCmd.SetArgs(append([]string{"--log_level", "error"}, args...))
	err := cl.Exec()
	return out.String(), err
}

func TestPlanText(t *testing.T) {
	path, cleanup := writeJobs(t, diamondJobs)
	defer cleanup()

	out, err := execute("plan", "--config", twoServers, "--jobs", path)
	require.NoError(t, err)
	assert.Contains(t, out, "job diamond (budget 8")
	assert.Contains(t, out, "DITTO    jct 1.5000")
	assert.Contains(t, out, "AVERAGE  jct 3.5000")
	assert.Contains(t, out, "best: DITTO")
}

func TestPlanJSON(t *testing.T) {
	path, cleanup := writeJobs(t, diamondJobs)
	defer cleanup()

	out, err := execute("plan", "--config", twoServers, "--jobs", path, "--json", "--strategy", "ratio,ditto")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	result := jsonResult{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &result))
	assert.Equal(t, "diamond", result.Job)
	assert.Equal(t, "DITTO", result.Best)
	require.Len(t, result.Trials, 2)
	assert.Equal(t, "RATIO", result.Trials[0].Strategy)
	require.NotNil(t, result.Trials[1].JCT)
	assert.InDelta(t, 1.5, *result.Trials[1].JCT, 1e-9)
	assert.Equal(t, map[int]int{0: 1, 1: 1, 2: 1, 3: 1}, result.Trials[1].Assignment)
}

func TestPlanInfeasible(t *testing.T) {
	path, cleanup := writeJobs(t, strings.Replace(diamondJobs, `"nslot": 8`, `"nslot": 80`, 1))
	defer cleanup()

	out, err := execute("plan", "--config", twoServers, "--jobs", path)
	require.Error(t, err)
	assert.Equal(t, errors.InfeasibleExitCode, errors.ExitCodeOf(err))
	assert.Contains(t, out, "DITTO    infeasible")
}

func TestPlanWithRejectedJobs(t *testing.T) {
	text := `{"jobs": [
		{"name": "loop", "stages": [
			{"name": "A", "alpha": 1, "children": [{"name": "B", "weight": 1}]},
			{"name": "B", "alpha": 1, "children": [{"name": "A", "weight": 1}]}
		]},
		{"name": "single", "stages": [{"name": "A", "alpha": 4, "beta": 1}]}
	]}`
	path, cleanup := writeJobs(t, text)
	defer cleanup()

	out, err := execute("plan", "--config", twoServers, "--jobs", path, "--stats")
	require.Error(t, err)
	assert.Equal(t, errors.InvalidJobsExitCode, errors.ExitCodeOf(err))
	assert.Contains(t, out, "job single (budget 16")
	assert.NotContains(t, out, "job loop")
	assert.Contains(t, out, `"planner/jobsLoadedCounter": 1`)
	assert.Contains(t, out, `"planner/jobsRejectedCounter": 1`)
}

func TestPlanMissingFile(t *testing.T) {
	_, err := execute("plan", "--jobs", "/nonexistent/jobs.json")
	assert.Equal(t, errors.InvalidJobsExitCode, errors.ExitCodeOf(err))

	_, err = execute("plan")
	assert.Equal(t, errors.InvalidJobsExitCode, errors.ExitCodeOf(err))
}

func TestBadConfig(t *testing.T) {
	_, err := execute("show_config", "--config", "no.such.config")
	assert.Equal(t, errors.ConfigExitCode, errors.ExitCodeOf(err))

	_, err = execute("plan", "--config", `{"Servers": {"Type": "explicit"}}`, "--jobs", "x.json")
	assert.Equal(t, errors.ConfigExitCode, errors.ExitCodeOf(err))

	_, err = execute("plan", "--jobs", "x.json", "--strategy", "FASTEST")
	assert.Equal(t, errors.ConfigExitCode, errors.ExitCodeOf(err))

	_, err = execute("--log_level", "loud", "show_config")
	assert.Equal(t, errors.ConfigExitCode, errors.ExitCodeOf(err))
}

func TestValidate(t *testing.T) {
	path, cleanup := writeJobs(t, diamondJobs)
	defer cleanup()

	out, err := execute("validate", "--jobs", path)
	require.NoError(t, err)
	assert.Equal(t, "ok diamond: 4 stages, 4 edges, 8 slots\n", out)
}

func TestShowConfig(t *testing.T) {
	out, err := execute("show_config", "--config", "local.small")
	require.NoError(t, err)
	assert.Contains(t, out, `"Type": "explicit"`)
	assert.Contains(t, out, `"DefaultJobSlots": 16`)
}
