package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"llreminder/internal/notify"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags restores every flag to its default, cobra keeps parsed values
// between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func TestInteractiveAndHeadlessExclusive(t *testing.T) {
	_, err := execute(t, "-i", "-H")
	require.Error(t, err)
	require.Contains(t, err.Error(), "interactive")
	require.Contains(t, err.Error(), "headless")
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	submitted := filepath.Join(dir, "submitted.html")
	require.NoError(t, os.WriteFile(submitted, []byte(`<div>LearnedLeague</div><div class="no_sub" style="display:none"></div>`), 0600))
	pending := filepath.Join(dir, "pending.html")
	require.NoError(t, os.WriteFile(pending, []byte(`<div>LearnedLeague</div><div class="no_sub" style=""></div>`), 0600))

	out, err := execute(t, "inspect", "--file", submitted)
	require.NoError(t, err)
	require.Contains(t, out, "true")
	require.Contains(t, out, notify.MessageSubmitted)

	out, err = execute(t, "inspect", "--file", pending)
	require.NoError(t, err)
	require.Contains(t, out, "false")
	require.Contains(t, out, notify.MessageReminder)

	_, err = execute(t, "inspect", "--file", filepath.Join(dir, "missing.html"))
	require.Error(t, err)
}

func TestRunWithoutConfig(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SITE_URL", "")
	t.Setenv("USERNAME", "")
	t.Setenv("PASSWORD", "")

	_, err := execute(t, "--config", "config.json5")
	require.Error(t, err)
	require.Contains(t, err.Error(), "load config")
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
