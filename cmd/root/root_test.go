package root_test

import (
	"testing"

	"fjacquet/statement-compare/cmd/root"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "statement-compare", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "compare bank statements")
	assert.Contains(t, root.Cmd.Long, "compares two statements category by category")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.NotNil(t, root.Cmd.PersistentPostRun)
}

func TestRootCommand_Flags(t *testing.T) {
	if root.Cmd.PersistentFlags().Lookup("config") == nil {
		root.Init()
	}
	configFlag := root.Cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestGetContainer_RequiresConfig(t *testing.T) {
	root.AppConfig = nil
	_, err := root.GetContainer(t.Context())
	assert.Error(t, err)
	root.CloseContainer()
}
