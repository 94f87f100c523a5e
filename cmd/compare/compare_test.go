package compare_test

import (
	"testing"
	"time"

	"fjacquet/statement-compare/cmd/compare"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareCommand_Metadata(t *testing.T) {
	assert.Equal(t, "compare <statement1> <statement2>", compare.Cmd.Use)
	assert.Contains(t, compare.Cmd.Short, "Compare two bank statements")
	assert.NotNil(t, compare.Cmd.RunE)

	assert.Error(t, compare.Cmd.Args(compare.Cmd, []string{"one.json"}))
	assert.NoError(t, compare.Cmd.Args(compare.Cmd, []string{"one.json", "two.json"}))
}

func TestCompareCommand_Flags(t *testing.T) {
	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"exclude", "", "[]"},
		{"include-only", "", "[]"},
		{"min-amount", "", ""},
		{"from", "", ""},
		{"to", "", ""},
		{"format", "f", "text"},
		{"output", "o", ""},
		{"narrate", "", "false"},
		{"no-history", "", "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := compare.Cmd.Flags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.defValue, flag.DefValue)
			assert.NotEmpty(t, flag.Usage)
		})
	}
}

func TestBuildOptions(t *testing.T) {
	opts, err := compare.BuildOptions(nil, nil, "", "", "")
	require.NoError(t, err)
	assert.Nil(t, opts)

	opts, err = compare.BuildOptions([]string{"transfers"}, []string{"groceries"}, "10.50", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.NotNil(t, opts)
	assert.Equal(t, []string{"transfers"}, opts.ExcludeCategories)
	assert.Equal(t, []string{"groceries"}, opts.IncludeOnlyCategories)
	require.NotNil(t, opts.MinimumAmount)
	assert.Equal(t, "10.5", opts.MinimumAmount.String())
	require.NotNil(t, opts.DateRange)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), opts.DateRange.Start)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), opts.DateRange.End)

	opts, err = compare.BuildOptions(nil, nil, "", "", "2024-02-01")
	require.NoError(t, err)
	assert.True(t, opts.DateRange.Start.IsZero())
	assert.Nil(t, opts.MinimumAmount)
}

func TestBuildOptions_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		minimum string
		from    string
		to      string
		wantErr string
	}{
		{"bad amount", "ten", "", "", "invalid minimum amount"},
		{"bad from", "", "yesterday", "", "invalid --from date"},
		{"bad to", "", "", "2024-13-45", "invalid --to date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compare.BuildOptions(nil, nil, tt.minimum, tt.from, tt.to)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
