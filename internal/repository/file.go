package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/malmirror/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileRepository writes snapshots of the mirrored catalog to disk
type FileRepository struct {
	log zerolog.Logger
}

// NewFileRepository creates a new file-based repository
func NewFileRepository(log zerolog.Logger) *FileRepository {
	return &FileRepository{
		log: log.With().Str("module", "repository").Logger(),
	}
}

var _ domain.ExportRepository = (*FileRepository)(nil)

// yamlExport is the compact mapping written by StoreYAML
type yamlExport struct {
	Anime []domain.Anime `yaml:"anime"`
}

// StoreJSON saves the full anime records as an indented JSON list
func (r *FileRepository) StoreJSON(ctx context.Context, path string, anime []domain.Anime) error {
	if anime == nil {
		anime = []domain.Anime{}
	}

	j, err := json.MarshalIndent(anime, "", "   ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal anime data")
	}

	if err := write(path, j); err != nil {
		return err
	}

	r.log.Debug().Str("path", path).Int("count", len(anime)).Msg("stored anime data")
	return nil
}

// StoreYAML saves the id, title and type mapping of every anime, one
// blank line between entries
func (r *FileRepository) StoreYAML(ctx context.Context, path string, anime []domain.Anime) error {
	if anime == nil {
		anime = []domain.Anime{}
	}

	b, err := yaml.Marshal(yamlExport{Anime: anime})
	if err != nil {
		return errors.Wrap(err, "failed to marshal yaml")
	}

	lines := strings.Split(string(b), "\n")
	seen := false
	for i, line := range lines {
		if strings.Contains(line, "- malid:") {
			if seen {
				lines[i-1] += "\n"
			} else {
				seen = true
			}
		}
	}

	if err := write(path, []byte(strings.Join(lines, "\n"))); err != nil {
		return err
	}

	r.log.Debug().Str("path", path).Int("count", len(anime)).Msg("stored anime mapping")
	return nil
}

func write(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}

	if err := os.WriteFile(path, b, 0644); err != nil {
		return errors.Wrapf(err, "failed to write file %s", path)
	}
	return nil
}
