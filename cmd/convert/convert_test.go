package convert_test

import (
	"testing"

	"fjacquet/statement-compare/cmd/convert"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertCommand_Metadata(t *testing.T) {
	assert.Equal(t, "convert <statement>", convert.Cmd.Use)
	assert.Contains(t, convert.Cmd.Short, "Convert a statement")
	assert.Contains(t, convert.Cmd.Long, "validation report")
	assert.NotNil(t, convert.Cmd.RunE)

	assert.Error(t, convert.Cmd.Args(convert.Cmd, nil))
	assert.NoError(t, convert.Cmd.Args(convert.Cmd, []string{"march.pdf"}))
}

func TestConvertCommand_Flags(t *testing.T) {
	formatFlag := convert.Cmd.Flags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "f", formatFlag.Shorthand)
	assert.Equal(t, "text", formatFlag.DefValue)

	outputFlag := convert.Cmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
	assert.Equal(t, "", outputFlag.DefValue)
}
