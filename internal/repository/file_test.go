package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varoOP/malmirror/internal/domain"
	"gopkg.in/yaml.v3"
)

var catalog = []domain.Anime{
	{MalID: 1, Title: "Cowboy Bebop", TitleEnglish: "Cowboy Bebop", Type: "TV", Episodes: 26, Year: 1998, Synopsis: "Crime is timeless."},
	{MalID: 5, Title: "Cowboy Bebop: Tengoku no Tobira", Type: "Movie", Episodes: 1, Year: 2001},
}

func TestFileRepository_StoreJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "anime.json")
	r := NewFileRepository(zerolog.Nop())

	require.NoError(t, r.StoreJSON(context.Background(), path, catalog))

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []domain.Anime
	require.NoError(t, json.Unmarshal(b, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Crime is timeless.", got[0].Synopsis)
}

func TestFileRepository_StoreJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anime.json")
	require.NoError(t, NewFileRepository(zerolog.Nop()).StoreJSON(context.Background(), path, nil))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestFileRepository_StoreYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anime.yaml")
	r := NewFileRepository(zerolog.Nop())

	require.NoError(t, r.StoreYAML(context.Background(), path, catalog))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(b)

	assert.Contains(t, text, "- malid: 1")
	assert.Contains(t, text, "enTitle: Cowboy Bebop")
	assert.Contains(t, text, "\n\n    - malid: 5")
	assert.NotContains(t, text, "synopsis")

	var got yamlExport
	require.NoError(t, yaml.Unmarshal(b, &got))
	require.Len(t, got.Anime, 2)
	assert.Equal(t, 5, got.Anime[1].MalID)
	assert.Equal(t, "Movie", got.Anime[1].Type)
}
