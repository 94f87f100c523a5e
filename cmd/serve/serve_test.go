package serve_test

import (
	"testing"

	"fjacquet/statement-compare/cmd/serve"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCommand_Metadata(t *testing.T) {
	assert.Equal(t, "serve", serve.Cmd.Use)
	assert.Contains(t, serve.Cmd.Short, "HTTP API")
	assert.Contains(t, serve.Cmd.Long, "gracefully")
	assert.NotNil(t, serve.Cmd.RunE)
	assert.Error(t, serve.Cmd.Args(serve.Cmd, []string{"extra"}))
}

func TestServeCommand_Flags(t *testing.T) {
	portFlag := serve.Cmd.Flags().Lookup("port")
	require.NotNil(t, portFlag)
	assert.Equal(t, "p", portFlag.Shorthand)
	assert.Equal(t, "0", portFlag.DefValue)
}
