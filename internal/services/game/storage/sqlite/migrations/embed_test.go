package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActionsMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(ActionsFS, "actions")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	require.Equal(t, "001_actions.sql", entries[0].Name())
}
