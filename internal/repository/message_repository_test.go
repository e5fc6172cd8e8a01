package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

// newDryRunDB builds a gorm handle that only renders SQL, capturing
// each query so tests can assert on the generated statements.
func newDryRunDB(t *testing.T, queries *[]string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	require.NoError(t, err)
	err = db.Callback().Query().After("gorm:query").Register("capture_sql", func(tx *gorm.DB) {
		*queries = append(*queries, tx.Statement.SQL.String())
	})
	require.NoError(t, err)
	return db
}

func TestListPageByFileIDOrdersByKeyset(t *testing.T) {
	var queries []string
	repo := NewMessageRepository(newDryRunDB(t, &queries))

	_, _, err := repo.ListPageByFileID("file-1", 10, 42)
	require.NoError(t, err)

	require.Len(t, queries, 1)
	assert.Contains(t, queries[0], "id <= ?")
	assert.Contains(t, queries[0], "ORDER BY id DESC")
	// created_at must stay out of the ordering: the cursor filter is on
	// id, and a different sort key could skip or repeat rows
	assert.NotContains(t, queries[0], "created_at")
}

func TestListPageByFileIDFirstPageHasNoCursorFilter(t *testing.T) {
	var queries []string
	repo := NewMessageRepository(newDryRunDB(t, &queries))

	_, _, err := repo.ListPageByFileID("file-1", 10, 0)
	require.NoError(t, err)

	require.Len(t, queries, 1)
	assert.NotContains(t, queries[0], "id <= ?")
	assert.Contains(t, queries[0], "ORDER BY id DESC")
}

func TestListRecentByFileIDOrdersByKeyset(t *testing.T) {
	var queries []string
	repo := NewMessageRepository(newDryRunDB(t, &queries))

	_, err := repo.ListRecentByFileID("file-1", 6)
	require.NoError(t, err)

	require.Len(t, queries, 1)
	assert.Contains(t, queries[0], "ORDER BY id DESC")
	assert.NotContains(t, queries[0], "created_at")
}
