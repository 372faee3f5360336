package database

import (
	"encoding/json"
	"reflect"

	"github.com/pkg/errors"
	"github.com/varoOP/malmirror/internal/domain"
)

// column describes how one anime column is written. The order of animeColumns
// is the column order of every INSERT and UPDATE.
type column struct {
	name  string
	value func(a *domain.Anime) (any, error)
}

func scalar(get func(a *domain.Anime) any) func(a *domain.Anime) (any, error) {
	return func(a *domain.Anime) (any, error) {
		return get(a), nil
	}
}

// jsonText serialises a nested field. Nil slices are stored as [] so a read
// never has to tell "no list" from "empty list".
func jsonText(get func(a *domain.Anime) any) func(a *domain.Anime) (any, error) {
	return func(a *domain.Anime) (any, error) {
		v := get(a)
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice && rv.IsNil() {
			return "[]", nil
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
}

var animeColumns = []column{
	{"mal_id", scalar(func(a *domain.Anime) any { return a.MalID })},
	{"url", scalar(func(a *domain.Anime) any { return a.URL })},
	{"images", jsonText(func(a *domain.Anime) any { return a.Images })},
	{"trailer", jsonText(func(a *domain.Anime) any { return a.Trailer })},
	{"approved", scalar(func(a *domain.Anime) any { return boolInt(a.Approved) })},
	{"titles", jsonText(func(a *domain.Anime) any { return a.Titles })},
	{"title", scalar(func(a *domain.Anime) any { return a.Title })},
	{"title_english", scalar(func(a *domain.Anime) any { return a.TitleEnglish })},
	{"title_japanese", scalar(func(a *domain.Anime) any { return a.TitleJapanese })},
	{"title_synonyms", jsonText(func(a *domain.Anime) any { return a.TitleSynonyms })},
	{"type", scalar(func(a *domain.Anime) any { return a.Type })},
	{"source", scalar(func(a *domain.Anime) any { return a.Source })},
	{"episodes", scalar(func(a *domain.Anime) any { return a.Episodes })},
	{"status", scalar(func(a *domain.Anime) any { return a.Status })},
	{"airing", scalar(func(a *domain.Anime) any { return boolInt(a.Airing) })},
	{"aired", jsonText(func(a *domain.Anime) any { return a.Aired })},
	{"duration", scalar(func(a *domain.Anime) any { return a.Duration })},
	{"rating", scalar(func(a *domain.Anime) any { return a.Rating })},
	{"score", scalar(func(a *domain.Anime) any { return a.Score })},
	{"scored_by", scalar(func(a *domain.Anime) any { return a.ScoredBy })},
	{"rank", scalar(func(a *domain.Anime) any { return a.Rank })},
	{"popularity", scalar(func(a *domain.Anime) any { return a.Popularity })},
	{"members", scalar(func(a *domain.Anime) any { return a.Members })},
	{"favorites", scalar(func(a *domain.Anime) any { return a.Favorites })},
	{"synopsis", scalar(func(a *domain.Anime) any { return a.Synopsis })},
	{"background", scalar(func(a *domain.Anime) any { return a.Background })},
	{"season", scalar(func(a *domain.Anime) any { return a.Season })},
	{"year", scalar(func(a *domain.Anime) any { return a.Year })},
	{"broadcast", jsonText(func(a *domain.Anime) any { return a.Broadcast })},
	{"producers", jsonText(func(a *domain.Anime) any { return a.Producers })},
	{"licensors", jsonText(func(a *domain.Anime) any { return a.Licensors })},
	{"studios", jsonText(func(a *domain.Anime) any { return a.Studios })},
	{"genres", jsonText(func(a *domain.Anime) any { return a.Genres })},
	{"explicit_genres", jsonText(func(a *domain.Anime) any { return a.ExplicitGenres })},
	{"themes", jsonText(func(a *domain.Anime) any { return a.Themes })},
	{"demographics", jsonText(func(a *domain.Anime) any { return a.Demographics })},
}

const keyColumn = "mal_id"

// writeValues evaluates every column of animeColumns for a, in order
func writeValues(a *domain.Anime) ([]string, []any, error) {
	if a == nil {
		return nil, nil, errors.Wrap(domain.ErrInvalidEntity, "anime is nil")
	}

	names := make([]string, 0, len(animeColumns))
	values := make([]any, 0, len(animeColumns))
	for _, c := range animeColumns {
		v, err := c.value(a)
		if err != nil {
			return nil, nil, errors.Wrapf(domain.ErrInvalidEntity, "column %s: %v", c.name, err)
		}
		names = append(names, c.name)
		values = append(values, v)
	}

	return names, values, nil
}

// ToInsertRow returns the row an INSERT of a would write, keyed by column name
func ToInsertRow(a *domain.Anime) (Row, error) {
	names, values, err := writeValues(a)
	if err != nil {
		return nil, err
	}

	row := make(Row, len(names))
	for i, n := range names {
		row[n] = values[i]
	}
	return row, nil
}
