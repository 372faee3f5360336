package database

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/varoOP/malmirror/internal/domain"
)

// Row is a raw result row keyed by column name
type Row map[string]any

// RowToAnime maps a raw row to an Anime. Missing or NULL columns become the
// zero value of the field, JSON columns that are empty or malformed become an
// empty structure.
func RowToAnime(row Row) *domain.Anime {
	a := &domain.Anime{
		MalID:         asInt(row["mal_id"]),
		URL:           asString(row["url"]),
		Approved:      asBool(row["approved"]),
		Title:         asString(row["title"]),
		TitleEnglish:  asString(row["title_english"]),
		TitleJapanese: asString(row["title_japanese"]),
		Type:          asString(row["type"]),
		Source:        asString(row["source"]),
		Episodes:      asInt(row["episodes"]),
		Status:        asString(row["status"]),
		Airing:        asBool(row["airing"]),
		Duration:      asString(row["duration"]),
		Rating:        asString(row["rating"]),
		Score:         asFloat(row["score"]),
		ScoredBy:      asInt(row["scored_by"]),
		Rank:          asInt(row["rank"]),
		Popularity:    asInt(row["popularity"]),
		Members:       asInt(row["members"]),
		Favorites:     asInt(row["favorites"]),
		Synopsis:      asString(row["synopsis"]),
		Background:    asString(row["background"]),
		Season:        asString(row["season"]),
		Year:          asInt(row["year"]),
	}

	asJSON(row["images"], &a.Images)
	asJSON(row["trailer"], &a.Trailer)
	asJSON(row["aired"], &a.Aired)
	asJSON(row["broadcast"], &a.Broadcast)
	a.Titles = asJSONList[domain.Title](row["titles"])
	a.TitleSynonyms = asJSONList[string](row["title_synonyms"])
	a.Producers = asJSONList[domain.Entity](row["producers"])
	a.Licensors = asJSONList[domain.Entity](row["licensors"])
	a.Studios = asJSONList[domain.Entity](row["studios"])
	a.Genres = asJSONList[domain.Entity](row["genres"])
	a.ExplicitGenres = asJSONList[domain.Entity](row["explicit_genres"])
	a.Themes = asJSONList[domain.Entity](row["themes"])
	a.Demographics = asJSONList[domain.Entity](row["demographics"])

	return a
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return ""
	}
}

func asInt(v any) int {
	switch t := v.(type) {
	case int64:
		return int(t)
	case int:
		return t
	case float64:
		return int(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case string, []byte:
		n, err := strconv.ParseFloat(strings.TrimSpace(asString(t)), 64)
		if err != nil {
			return 0
		}
		return int(n)
	default:
		return 0
	}
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case string, []byte:
		n, err := strconv.ParseFloat(strings.TrimSpace(asString(t)), 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case int:
		return t != 0
	case float64:
		return t != 0
	case string, []byte:
		b, err := strconv.ParseBool(strings.TrimSpace(asString(t)))
		if err != nil {
			return asInt(t) != 0
		}
		return b
	default:
		return false
	}
}

// asJSON decodes a JSON text column into dst, leaving dst untouched on failure
func asJSON(v any, dst any) {
	s := asString(v)
	if s == "" {
		return
	}
	_ = json.Unmarshal([]byte(s), dst)
}

// asJSONList decodes a JSON array column and never returns a nil slice
func asJSONList[T any](v any) []T {
	var out []T
	asJSON(v, &out)
	if out == nil {
		return []T{}
	}
	return out
}

// boolInt normalises booleans to the 0/1 integers sqlite stores
func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
