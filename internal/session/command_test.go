package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySQL(t *testing.T) {
	t.Parallel()

	cmd, err := classify("SELECT * FROM users")
	require.NoError(t, err)
	assert.Equal(t, cmdSQL, cmd.kind)
	assert.Equal(t, "SELECT * FROM users", cmd.sql)
}

func TestClassifyMeta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line  string
		kind  commandKind
		args  []string
		force bool
	}{
		{".load data/*.csv", cmdLoad, []string{"data/*.csv"}, false},
		{".load! a.csv b.csv", cmdLoad, []string{"a.csv", "b.csv"}, true},
		{".tables", cmdTables, nil, false},
		{".tree sub", cmdTree, []string{"sub"}, false},
		{".mode tree", cmdMode, []string{"tree"}, false},
		{".export out.csv", cmdExport, []string{"out.csv"}, false},
		{".history", cmdHistory, nil, false},
		{".cd ..", cmdCD, []string{".."}, false},
		{".help", cmdHelp, nil, false},
		{".quit", cmdQuit, nil, false},
		{".exit", cmdQuit, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()
			cmd, err := classify(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, cmd.kind)
			assert.Equal(t, tt.force, cmd.force)
			if len(tt.args) > 0 {
				assert.Equal(t, tt.args, cmd.args)
			}
		})
	}
}

func TestClassifyUnknownMeta(t *testing.T) {
	t.Parallel()

	_, err := classify(".nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".nope")
	assert.Contains(t, err.Error(), ".help")
}
