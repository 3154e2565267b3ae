package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFlags(t *testing.T) {
	flags := DefaultFlags()
	assert.Equal(t, "logs", flags.OutputDir)
	assert.Empty(t, flags.Kubeconfig)
	assert.Empty(t, flags.ConfigFile)
	assert.Nil(t, flags.IgnoreNamespaces)
	assert.False(t, flags.Debug)
	assert.False(t, flags.NoProgress)
}

func TestRootCommand_Flags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{
		"output-dir",
		"kubeconfig",
		"config",
		"ignore-namespace",
		"debug",
		"no-progress",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}

	assert.Equal(t, "logs", cmd.Flags().Lookup("output-dir").DefValue)
}

func TestRootCommand_ParsesRepeatedIgnoreNamespace(t *testing.T) {
	cmd := NewRootCommand()
	err := cmd.ParseFlags([]string{
		"--ignore-namespace", "kube-system",
		"--ignore-namespace", "velero",
	})
	require.NoError(t, err)

	values, err := cmd.Flags().GetStringSlice("ignore-namespace")
	require.NoError(t, err)
	assert.Equal(t, []string{"kube-system", "velero"}, values)
}

func TestRootCommand_HasVersionSubcommand(t *testing.T) {
	cmd := NewRootCommand()

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "version")
}

func TestRootCommand_Help(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "workload cluster")
}
