package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"enrich", "generate", "categories", "runs", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "leadgen-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestEnrichCommand_Flags(t *testing.T) {
	f := enrichCmd.Flags()
	require.NotNil(t, f.Lookup("input"))
	require.NotNil(t, f.Lookup("output"))
	require.NotNil(t, f.Lookup("dry-run"))

	assert.Equal(t, "both", f.Lookup("format").DefValue)
	assert.Equal(t, "0", f.Lookup("limit").DefValue)
}

func TestGenerateCommand_Flags(t *testing.T) {
	f := generateCmd.Flags()
	require.NotNil(t, f.Lookup("category"))
	require.NotNil(t, f.Lookup("keyword"))
	require.NotNil(t, f.Lookup("location"))
	require.NotNil(t, f.Lookup("process"))

	assert.Equal(t, "20", f.Lookup("radius").DefValue)
	assert.Equal(t, "25", f.Lookup("max").DefValue)
	assert.Equal(t, "false", f.Lookup("process").DefValue)
}

func TestRunsCommand_HasShow(t *testing.T) {
	var found bool
	for _, c := range runsCmd.Commands() {
		if c.Name() == "show" {
			found = true
		}
	}
	assert.True(t, found)

	flag := runsCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "20", flag.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}
