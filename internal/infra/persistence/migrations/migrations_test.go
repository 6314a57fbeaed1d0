package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_ContainsOrderedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(FS(), ".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	assert.Equal(t, []string{
		"00001_create_users.sql",
		"00002_create_offers.sql",
		"00003_create_orders_reviews.sql",
	}, names)
}

func TestFS_EveryMigrationIsReversible(t *testing.T) {
	entries, err := fs.ReadDir(FS(), ".")
	require.NoError(t, err)

	for _, e := range entries {
		body, err := fs.ReadFile(FS(), e.Name())
		require.NoError(t, err)

		content := string(body)
		assert.True(t, strings.Contains(content, "-- +goose Up"), e.Name())
		assert.True(t, strings.Contains(content, "-- +goose Down"), e.Name())
	}
}
