package manifest_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/polything/go-wpmigrate/content"
	"github.com/polything/go-wpmigrate/internal/manifest"
)

var dbCounter atomic.Int64

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:manifest_test_%d?mode=memory&cache=shared", dbCounter.Add(1))
	sqldb, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func repositories(t *testing.T) map[string]manifest.Repository {
	t.Helper()
	bunRepo := manifest.NewBunRepository(newTestDB(t))
	require.NoError(t, bunRepo.EnsureSchema(context.Background()))
	return map[string]manifest.Repository{
		"memory": manifest.NewMemoryRepository(),
		"bun":    bunRepo,
	}
}

func TestRepositoryContract(t *testing.T) {
	exportedAt := time.Date(2024, 3, 5, 10, 15, 0, 0, time.UTC)

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := repo.Get(ctx, "posts/a.mdx")
			assert.True(t, errors.Is(err, manifest.ErrEntryNotFound), "got %v", err)

			stored, err := repo.Upsert(ctx, manifest.Entry{
				Path:       "posts/a.mdx",
				Type:       content.TypePost,
				Slug:       "a",
				Checksum:   "abc",
				ExportedAt: exportedAt,
			})
			require.NoError(t, err)
			assert.Equal(t, "abc", stored.Checksum)
			assert.True(t, stored.ExportedAt.Equal(exportedAt), "got %v", stored.ExportedAt)

			_, err = repo.Upsert(ctx, manifest.Entry{Path: "pages/about.mdx", Type: content.TypePage, Slug: "about", Checksum: "p1"})
			require.NoError(t, err)

			updated, err := repo.Upsert(ctx, manifest.Entry{Path: "posts/a.mdx", Type: content.TypePost, Slug: "a", Checksum: "def", ExportedAt: exportedAt.Add(time.Hour)})
			require.NoError(t, err)
			assert.Equal(t, "def", updated.Checksum)

			entries, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, "pages/about.mdx", entries[0].Path)
			assert.False(t, entries[0].ExportedAt.IsZero(), "upsert should stamp ExportedAt")
			assert.Equal(t, content.TypePost, entries[1].Type)

			same, err := manifest.Unchanged(ctx, repo, "posts/a.mdx", "def")
			require.NoError(t, err)
			assert.True(t, same)
			same, err = manifest.Unchanged(ctx, repo, "posts/missing.mdx", "def")
			require.NoError(t, err)
			assert.False(t, same)

			require.NoError(t, repo.Delete(ctx, "posts/a.mdx"))
			assert.True(t, errors.Is(repo.Delete(ctx, "posts/a.mdx"), manifest.ErrEntryNotFound))

			_, err = repo.Upsert(ctx, manifest.Entry{Path: " "})
			assert.True(t, errors.Is(err, manifest.ErrPathRequired))
		})
	}
}

func TestBunRepositoryWithoutDatabase(t *testing.T) {
	repo := manifest.NewBunRepository(nil)
	_, err := repo.Get(context.Background(), "posts/a.mdx")
	assert.Error(t, err)
	assert.Error(t, repo.EnsureSchema(context.Background()))
}

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()
	repo, closeFn, err := manifest.OpenSQLite(ctx, "file:manifest_open_test?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	_, err = repo.Upsert(ctx, manifest.Entry{Path: "projects/p.mdx", Type: content.TypeProject, Slug: "p", Checksum: "x"})
	require.NoError(t, err)
	entry, err := repo.Get(ctx, "projects/p.mdx")
	require.NoError(t, err)
	assert.Equal(t, "p", entry.Slug)

	_, _, err = manifest.OpenSQLite(ctx, "")
	assert.Error(t, err)
}
