package database

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varoOP/malmirror/internal/domain"
)

func newTestRepo(t *testing.T) *AnimeRepo {
	t.Helper()
	return NewAnimeRepo(zerolog.Nop(), newTestDB(t))
}

func TestAnimeRepo_CreateAndFindByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := sampleAnime(1, "Cowboy Bebop")
	out, err := repo.Create(ctx, in)
	require.NoError(t, err)
	assert.Same(t, in, out)

	got, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, *in, *got)
}

func TestAnimeRepo_FindByID_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.FindByID(context.Background(), 404)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, domain.ErrRecordNotFound))
}

func TestAnimeRepo_CreateRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidEntity))

	_, err = repo.Create(ctx, &domain.Anime{MalID: 0, Title: "no id"})
	assert.True(t, errors.Is(err, domain.ErrInvalidEntity))
}

func TestAnimeRepo_FindAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	for _, id := range []int{30, 10, 20} {
		_, err := repo.Create(ctx, sampleAnime(id, "Title"))
		require.NoError(t, err)
	}

	all, err = repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{10, 20, 30}, []int{all[0].MalID, all[1].MalID, all[2].MalID})

	n, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestAnimeRepo_Update(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, sampleAnime(1, "Cowboy Bebop"))
	require.NoError(t, err)

	patch := sampleAnime(999, "Cowboy Bebop: Tengoku no Tobira")
	patch.Score = 8.38
	patch.Airing = true
	patch.Genres = []domain.Entity{{MalID: 24, Type: "anime", Name: "Sci-Fi"}}

	got, err := repo.Update(ctx, 1, patch)
	require.NoError(t, err)
	assert.Equal(t, 1, got.MalID, "key comes from the id argument")
	assert.Equal(t, "Cowboy Bebop: Tengoku no Tobira", got.Title)
	assert.Equal(t, 8.38, got.Score)
	assert.True(t, got.Airing)
	assert.Equal(t, patch.Genres, got.Genres)

	_, err = repo.FindByID(ctx, 999)
	assert.True(t, errors.Is(err, domain.ErrRecordNotFound))
}

func TestAnimeRepo_Update_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.Update(context.Background(), 5, sampleAnime(5, "Ghost"))
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, domain.ErrRecordNotFound))
}

func TestAnimeRepo_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, sampleAnime(1, "Cowboy Bebop"))
	require.NoError(t, err)

	removed, err := repo.Delete(ctx, 1)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, 1)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestAnimeRepo_FindByQueryMatchesCount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	fixtures := []struct {
		id    int
		title string
		typ   string
		year  int
	}{
		{1, "Cowboy Bebop", "TV", 1998},
		{5, "Cowboy Bebop: Tengoku no Tobira", "Movie", 2001},
		{6, "Trigun", "TV", 1998},
		{20, "Naruto", "TV", 2002},
		{30, "Neon Genesis Evangelion", "TV", 1995},
	}
	for _, f := range fixtures {
		a := sampleAnime(f.id, f.title)
		a.Type = f.typ
		a.Year = f.year
		a.TitleEnglish = ""
		_, err := repo.Create(ctx, a)
		require.NoError(t, err)
	}

	cases := []domain.QueryOptions{
		{},
		{Filters: map[string]any{"type": "TV"}},
		{Filters: map[string]any{"type": "TV", "year": 1998}},
		{Search: "bebop"},
		{Search: "bebop", Filters: map[string]any{"type": "Movie"}},
		{Filters: map[string]any{"not_a_column": "x"}},
		{Search: "no such title"},
	}

	for _, opts := range cases {
		rows, err := repo.FindByQuery(ctx, opts)
		require.NoError(t, err)
		n, err := repo.CountByQuery(ctx, opts)
		require.NoError(t, err)
		assert.Equal(t, len(rows), n, "%+v", opts)
	}

	tv, err := repo.FindByQuery(ctx, domain.QueryOptions{
		Filters:        map[string]any{"type": "TV"},
		OrderBy:        "year",
		OrderDirection: domain.SortDesc,
		Limit:          domain.IntPtr(2),
		Page:           domain.IntPtr(2),
	})
	require.NoError(t, err)
	require.Len(t, tv, 2)
	assert.Equal(t, 1998, tv[0].Year)
	assert.Equal(t, 1995, tv[1].Year)

	bebop, err := repo.FindByQuery(ctx, domain.QueryOptions{Search: "BEBOP", OrderBy: "mal_id"})
	require.NoError(t, err)
	require.Len(t, bebop, 2)
	assert.Equal(t, 1, bebop[0].MalID)
	assert.Equal(t, 5, bebop[1].MalID)
}

func TestAnimeRepo_ReadsRowsWithNulls(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnimeRepo(zerolog.Nop(), db)

	_, err := db.handler.Exec(`INSERT INTO anime (mal_id, title, genres, images) VALUES (7, 'Sparse', NULL, 'not json')`)
	require.NoError(t, err)

	got, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Sparse", got.Title)
	assert.Equal(t, 0, got.Episodes)
	assert.Equal(t, "", got.Synopsis)
	assert.Equal(t, domain.Images{}, got.Images)
	assert.NotNil(t, got.Genres)
	assert.Empty(t, got.Genres)
}
