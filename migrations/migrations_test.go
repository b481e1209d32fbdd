package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFS_GooseAnnotated(t *testing.T) {
	files, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	require.Len(t, files, 3)

	for i, name := range files {
		require.True(t, strings.HasPrefix(name, "0000"), name)
		require.Equal(t, byte('1'+i), name[4], "migrations must be numbered sequentially")

		b, err := fs.ReadFile(FS, name)
		require.NoError(t, err)
		body := string(b)
		require.Contains(t, body, "-- +goose Up", name)
		require.Contains(t, body, "-- +goose Down", name)
	}
}

func TestFS_ConstraintNamesUsedByRepositories(t *testing.T) {
	keys, err := fs.ReadFile(FS, "00001_api_keys.sql")
	require.NoError(t, err)
	require.Contains(t, string(keys), "CONSTRAINT api_keys_email_key UNIQUE (email)")

	posts, err := fs.ReadFile(FS, "00002_posts.sql")
	require.NoError(t, err)
	require.Contains(t, string(posts), "CONSTRAINT posts_slug_key UNIQUE (slug)")
}
