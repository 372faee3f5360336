package jikan

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/malmirror/internal/domain"
)

// DefaultIDSource is a community maintained list of every MAL anime id
const DefaultIDSource = "https://raw.githubusercontent.com/purarue/mal-id-cache/master/cache/anime_cache.json"

// IDSource loads the list of ids to sync from a URL or a local file. The
// document is either a flat JSON array or an object with sfw and nsfw arrays.
type IDSource struct {
	log      zerolog.Logger
	http     *http.Client
	location string
}

var _ domain.IDSource = (*IDSource)(nil)

func NewIDSource(log zerolog.Logger, location string) *IDSource {
	if location == "" {
		location = DefaultIDSource
	}

	return &IDSource{
		log:      log.With().Str("module", "ids").Logger(),
		http:     &http.Client{Transport: newUserAgentTransport(nil)},
		location: location,
	}
}

func (s *IDSource) Load(ctx context.Context) ([]int, error) {
	body, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := ParseIDs(body)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse id list from %s", s.location)
	}

	s.log.Info().Str("source", s.location).Int("ids", len(ids)).Msg("loaded id list")
	return ids, nil
}

func (s *IDSource) read(ctx context.Context) ([]byte, error) {
	if !strings.HasPrefix(s.location, "http://") && !strings.HasPrefix(s.location, "https://") {
		b, err := os.ReadFile(s.location)
		if err != nil {
			return nil, errors.Wrapf(err, "could not read %s", s.location)
		}
		return b, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: s.location}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	return b, nil
}

// ParseIDs normalises an id document into one ordered list. For the object
// form sfw ids come before nsfw ids. Entries that are not positive integers
// are dropped, duplicates are kept.
func ParseIDs(body []byte) ([]int, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	ids := []int{}
	switch v := doc.(type) {
	case []any:
		ids = appendIDs(ids, v)
	case map[string]any:
		for _, field := range []string{"sfw", "nsfw"} {
			if list, ok := v[field].([]any); ok {
				ids = appendIDs(ids, list)
			}
		}
	default:
		return nil, errors.Errorf("unexpected id document of type %T", doc)
	}

	return ids, nil
}

func appendIDs(ids []int, list []any) []int {
	for _, item := range list {
		var raw string
		switch t := item.(type) {
		case json.Number:
			raw = t.String()
		case string:
			raw = strings.TrimSpace(t)
		default:
			continue
		}

		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
