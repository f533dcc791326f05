package report

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntax-tree/unist-util-is/internal/index"
)

func TestSQLiteWriter(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "report.db")

	w, err := NewSQLiteWriter(dbPath)
	require.NoError(t, err)
	w.batchSize = 2 // force intermediate commits

	matches := []Match{
		{Rule: "heading", Ordinal: 1, Path: "$.children[0]", Type: "heading"},
		{Rule: "heading", Ordinal: 4, Path: "$.children[3]", Type: "heading"},
		{Rule: "strong", Ordinal: 2, Path: "$.children[1]", Type: "strong", Line: 3},
	}
	x := index.New()
	for _, m := range matches {
		require.NoError(t, w.Write(m))
		x.Add(m.Rule, uint32(m.Ordinal))
	}
	require.NoError(t, w.WriteIndex(x))
	require.NoError(t, w.Close())

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM matches WHERE rule = ?", "heading").Scan(&count))
	assert.Equal(t, 2, count)

	var path string
	var line int
	require.NoError(t, db.QueryRow("SELECT path, line FROM matches WHERE rule = ? AND ordinal = ?", "strong", 2).Scan(&path, &line))
	assert.Equal(t, "$.children[1]", path)
	assert.Equal(t, 3, line)

	loaded, err := LoadIndex(dbPath)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 4}, loaded.Matches("heading"))
	assert.Equal(t, []uint32{2}, loaded.Matches("strong"))
}

func TestSQLiteWriter_Rewrite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "report.db")

	for i := 0; i < 2; i++ {
		w, err := NewSQLiteWriter(dbPath)
		require.NoError(t, err)
		require.NoError(t, w.Write(Match{Rule: "r", Ordinal: 0, Path: "$"}))
		require.NoError(t, w.Close())
	}

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM matches").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSQLiteWriter_BeginFailure(t *testing.T) {
	w, err := NewSQLiteWriter(filepath.Join(t.TempDir(), "report.db"))
	require.NoError(t, err)
	w.batchSize = 1

	// The open batch keeps its connection; the next Begin fails.
	require.NoError(t, w.db.Close())

	err = w.Write(Match{Rule: "r", Ordinal: 0, Path: "$"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin")

	assert.ErrorIs(t, w.Write(Match{Rule: "r", Ordinal: 1, Path: "$.a"}), errNoTx)
	assert.ErrorIs(t, w.WriteIndex(index.New()), errNoTx)
	assert.NoError(t, w.Close(), "the committed batch is not committed twice")
}
