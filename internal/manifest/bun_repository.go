package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/polything/go-wpmigrate/content"
)

var errNoDatabase = errors.New("manifest: bun repository requires a database")

// BunRepository persists entries using a Bun-backed database.
type BunRepository struct {
	db  *bun.DB
	now func() time.Time
}

// NewBunRepository constructs a Bun-backed repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db, now: time.Now}
}

// OpenSQLite opens (or creates) a SQLite manifest at dsn and makes sure the
// table exists. The sqlite3 driver must be registered by the caller.
func OpenSQLite(ctx context.Context, dsn string) (*BunRepository, func() error, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, nil, errors.New("manifest: sqlite dsn is required")
	}
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("manifest: open sqlite: %w", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	repo := NewBunRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return repo, db.Close, nil
}

// EnsureSchema creates the manifest table when missing.
func (r *BunRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return errNoDatabase
	}
	if _, err := r.db.NewCreateTable().Model((*entryModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("manifest: create table: %w", err)
	}
	return nil
}

// Get returns the persisted entry for path.
func (r *BunRepository) Get(ctx context.Context, path string) (Entry, error) {
	if r.db == nil {
		return Entry{}, errNoDatabase
	}
	var model entryModel
	if err := r.db.NewSelect().Model(&model).Where("path = ?", path).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrEntryNotFound
		}
		return Entry{}, err
	}
	return modelToEntry(&model), nil
}

// Upsert creates or updates the entry for entry.Path.
func (r *BunRepository) Upsert(ctx context.Context, entry Entry) (Entry, error) {
	if r.db == nil {
		return Entry{}, errNoDatabase
	}
	if strings.TrimSpace(entry.Path) == "" {
		return Entry{}, ErrPathRequired
	}
	if entry.ExportedAt.IsZero() {
		entry.ExportedAt = r.now().UTC()
	}

	exists, err := r.db.NewSelect().Model((*entryModel)(nil)).Where("path = ?", entry.Path).Exists(ctx)
	if err != nil {
		return Entry{}, err
	}

	model := modelFromEntry(entry)
	if exists {
		if _, err := r.db.NewUpdate().
			Model(&model).
			Column("content_type", "slug", "checksum", "exported_at").
			WherePK().
			Exec(ctx); err != nil {
			return Entry{}, err
		}
	} else {
		if _, err := r.db.NewInsert().Model(&model).Exec(ctx); err != nil {
			return Entry{}, err
		}
	}
	return r.Get(ctx, entry.Path)
}

// Delete removes the entry for path.
func (r *BunRepository) Delete(ctx context.Context, path string) error {
	if r.db == nil {
		return errNoDatabase
	}
	res, err := r.db.NewDelete().Model((*entryModel)(nil)).Where("path = ?", path).Exec(ctx)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// List returns every entry ordered by path.
func (r *BunRepository) List(ctx context.Context) ([]Entry, error) {
	if r.db == nil {
		return nil, errNoDatabase
	}
	var models []entryModel
	if err := r.db.NewSelect().Model(&models).Order("path ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(models))
	for i := range models {
		out = append(out, modelToEntry(&models[i]))
	}
	return out, nil
}

type entryModel struct {
	bun.BaseModel `bun:"table:export_manifest"`

	Path        string    `bun:"path,pk"`
	ContentType string    `bun:"content_type,notnull"`
	Slug        string    `bun:"slug,notnull"`
	Checksum    string    `bun:"checksum,notnull"`
	ExportedAt  time.Time `bun:"exported_at,notnull"`
}

func modelFromEntry(entry Entry) entryModel {
	return entryModel{
		Path:        entry.Path,
		ContentType: string(entry.Type),
		Slug:        entry.Slug,
		Checksum:    entry.Checksum,
		ExportedAt:  entry.ExportedAt.UTC(),
	}
}

func modelToEntry(model *entryModel) Entry {
	if model == nil {
		return Entry{}
	}
	return Entry{
		Path:       model.Path,
		Type:       content.Type(model.ContentType),
		Slug:       model.Slug,
		Checksum:   model.Checksum,
		ExportedAt: model.ExportedAt.UTC(),
	}
}
