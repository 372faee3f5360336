package domain

import (
	"context"
)

// AnimeRepository defines the interface for anime persistence
type AnimeRepository interface {
	FindByID(ctx context.Context, malID int) (*Anime, error)
	FindAll(ctx context.Context) ([]Anime, error)
	FindByQuery(ctx context.Context, opts QueryOptions) ([]Anime, error)
	CountByQuery(ctx context.Context, opts QueryOptions) (int, error)
	CountAll(ctx context.Context) (int, error)
	Create(ctx context.Context, anime *Anime) (*Anime, error)
	Update(ctx context.Context, malID int, anime *Anime) (*Anime, error)
	Delete(ctx context.Context, malID int) (bool, error)
}

// AnimeService is the cache-aware entry point for anime reads and writes.
// It exposes the same operations as AnimeRepository.
type AnimeService interface {
	AnimeRepository
}

// ColumnInfo describes a single column of a live table
type ColumnInfo struct {
	Name string
	Type string
}

// SchemaIntrospector discovers the columns of a table at runtime
type SchemaIntrospector interface {
	Columns(ctx context.Context, table string) ([]ColumnInfo, error)
}

// ExportRepository writes snapshots of the mirrored catalog to disk
type ExportRepository interface {
	StoreJSON(ctx context.Context, path string, anime []Anime) error
	StoreYAML(ctx context.Context, path string, anime []Anime) error
}
