package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const invoiceSpec = `package test

type: Invoice: properties: {
	A: {}
	B: {}
	Total: depends_on: ["A", "B"]
}

type: TaxedInvoice: {
	extends: "Invoice"
	properties: {
		Tax: depends_on: ["Total"]
	}
}
`

// writeSpecDir writes CUE sources into a fresh directory, one file each.
func writeSpecDir(t *testing.T, sources ...string) string {
	t.Helper()
	dir := t.TempDir()
	for i, src := range sources {
		name := filepath.Join(dir, "spec"+string(rune('a'+i))+".cue")
		require.NoError(t, os.WriteFile(name, []byte(src), 0644))
	}
	return dir
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "propdeps", cmd.Use)
	assert.Contains(t, cmd.Long, "properties")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"compile", "validate", "query", "run", "test", "trace"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestCompileCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	compileCmd, _, err := cmd.Find([]string{"compile"})
	require.NoError(t, err)

	outputFlag := compileCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	for _, name := range []string{"type", "init", "set", "db", "record", "label"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), "run should have --%s", name)
	}
}

func TestQueryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	queryCmd, _, err := cmd.Find([]string{"query"})
	require.NoError(t, err)

	direction := queryCmd.Flags().Lookup("direction")
	require.NotNil(t, direction)
	assert.Equal(t, "d", direction.Shorthand)
	assert.Equal(t, DirectionDependents, direction.DefValue)
}

func TestRoot_InvalidFormat(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := writeSpecDir(t, invoiceSpec)

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "yaml", "validate", dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRoot_ConfigFormatApplies(t *testing.T) {
	work := t.TempDir()
	t.Chdir(work)
	require.NoError(t, os.WriteFile(filepath.Join(work, "propdeps.yaml"), []byte("format: json\n"), 0644))
	dir := writeSpecDir(t, invoiceSpec)

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"validate", dir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), `"status":"ok"`)
}

func TestRoot_FormatFlagOverridesConfig(t *testing.T) {
	work := t.TempDir()
	t.Chdir(work)
	require.NoError(t, os.WriteFile(filepath.Join(work, "propdeps.yaml"), []byte("format: json\n"), 0644))
	dir := writeSpecDir(t, invoiceSpec)

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "text", "validate", dir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "✓ All declarations valid")
}

func TestRoot_BadConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("colour: blue\n"), 0644))
	dir := writeSpecDir(t, invoiceSpec)

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "validate", dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "loading config")
}

func TestRoot_VerboseLogsToStderr(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := writeSpecDir(t, invoiceSpec)

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs([]string{"-v", "compile", dir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "✓ Compiled 2 type(s)")
	assert.Contains(t, errOut.String(), "compiled declarations")
}

func TestRoot_SpecsDirFromConfig(t *testing.T) {
	work := t.TempDir()
	t.Chdir(work)
	dir := writeSpecDir(t, invoiceSpec)
	require.NoError(t, os.WriteFile(filepath.Join(work, "propdeps.yaml"), []byte("specs_dir: "+dir+"\n"), 0644))

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"query", "-t", "Invoice", "-p", "A"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Invoice.A: 1 all dependents")
}

func TestSpecsDir(t *testing.T) {
	opts := &RootOptions{}
	assert.Equal(t, "specs", opts.specsDir(nil))
	assert.Equal(t, "mine", opts.specsDir([]string{"mine"}))

	opts.Config.SpecsDir = "decls"
	assert.Equal(t, "decls", opts.specsDir(nil))
}
