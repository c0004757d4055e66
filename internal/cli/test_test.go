package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioSpec = `type: Invoice: properties: {
	A: {}
	B: {}
	Total: depends_on: ["A", "B"]
}
`

const passingScenario = `name: invoice_total
description: "Total follows both inputs"
specs:
  - specs/invoice.cue
type: Invoice
initial:
  A: 1
steps:
  - set: { A: 2 }
    expect: [A, Total]
  - set: { A: 2 }
    expect: []
assertions:
  - type: notified_once
    property: Total
`

const failingScenario = `name: invoice_wrong
description: "Expects a notification that never fires"
specs:
  - specs/invoice.cue
type: Invoice
steps:
  - set: { B: 1 }
    expect: [B]
`

// writeScenarioDir lays out specs/invoice.cue and the given scenarios.
func writeScenarioDir(t *testing.T, scenarios map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "specs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "specs", "invoice.cue"), []byte(scenarioSpec), 0644))
	for name, content := range scenarios {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func newTestCmd(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestTestCommand_Passing(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{"invoice.yaml": passingScenario})

	buf, err := newTestCmd(t, "text", dir)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "✓ invoice_total")
	assert.Contains(t, output, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, output, "✓ All scenarios passed")
}

func TestTestCommand_Failing(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{
		"invoice.yaml": passingScenario,
		"wrong.yaml":   failingScenario,
	})

	buf, err := newTestCmd(t, "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Error  *CLIError  `json:"error"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Equal(t, 2, resp.Data.Total)

	for _, s := range resp.Data.Scenarios {
		if s.Name == "invoice_wrong" {
			assert.False(t, s.Pass)
			require.NotEmpty(t, s.Errors)
			assert.Contains(t, s.Errors[0], "expected notifications [B], got [B Total]")
		}
	}
}

func TestTestCommand_UpdateThenCompareGolden(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{"invoice.yaml": passingScenario})
	goldenPath := filepath.Join(dir, "golden", "invoice_total.golden")

	_, err := newTestCmd(t, "text", dir, "--update")
	require.NoError(t, err)
	require.FileExists(t, goldenPath)

	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name":"invoice_total"`)
	assert.Contains(t, string(golden), `"session_id":"test-session-default"`)

	// The golden directory is not scanned for scenarios.
	buf, err := newTestCmd(t, "text", dir)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "1 total")

	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"trace":[]}`), 0644))
	buf, err = newTestCmd(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "trace does not match golden file")
}

func TestTestCommand_SingleFileAndFilter(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{
		"invoice.yaml": passingScenario,
		"wrong.yaml":   failingScenario,
	})

	buf, err := newTestCmd(t, "text", filepath.Join(dir, "invoice.yaml"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "1 passed")

	buf, err = newTestCmd(t, "text", dir, "--filter", "inv*")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "1 passed, 0 failed, 1 total")
}

func TestTestCommand_InvalidScenario(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{"broken.yaml": "name: broken\nsteps: []\n"})

	buf, err := newTestCmd(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "✗ broken.yaml")
	assert.Contains(t, buf.String(), "failed to load scenario")
}

func TestTestCommand_NoScenarios(t *testing.T) {
	buf, err := newTestCmd(t, "json", t.TempDir())
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Total)
}

func TestTestCommand_MissingPath(t *testing.T) {
	_, err := newTestCmd(t, "text", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
