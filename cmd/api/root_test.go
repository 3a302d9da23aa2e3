package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{"serve", "migrate"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
		assert.NotNil(t, sub.RunE)
	}
}

func TestServe_MissingSecretFails(t *testing.T) {
	t.Setenv("APP_SECRET", "")

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"serve"})
	err := cmd.Execute()
	assert.ErrorContains(t, err, "APP_SECRET")
}

func TestMigrate_MissingDSNFails(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"migrate"})
	assert.ErrorContains(t, cmd.Execute(), "POSTGRES_DSN")
}
