package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/malmirror/internal/domain"
)

// FileProgressStore keeps one checkpoint per sync kind in a local JSON file.
// A missing or unreadable file is treated as no checkpoints at all. Only one
// process may write the file at a time.
type FileProgressStore struct {
	log  zerolog.Logger
	path string
	now  func() time.Time

	mu sync.Mutex
}

var _ domain.ProgressStore = (*FileProgressStore)(nil)

func NewFileProgressStore(log zerolog.Logger, path string) *FileProgressStore {
	return &FileProgressStore{
		log:  log.With().Str("module", "progress").Logger(),
		path: path,
		now:  time.Now,
	}
}

func (s *FileProgressStore) Load(_ context.Context, kind string) (domain.SyncProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.read()[kind]
	return p, ok
}

// Save records lastIndex for kind, keeping the checkpoints of other kinds
func (s *FileProgressStore) Save(_ context.Context, kind string, lastIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.read()
	state[kind] = domain.SyncProgress{LastIndex: lastIndex, UpdatedAt: s.now().UTC()}

	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not encode progress")
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "could not create %s", dir)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return errors.Wrapf(err, "could not write %s", tmp)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrapf(err, "could not replace %s", s.path)
	}

	return nil
}

func (s *FileProgressStore) read() map[string]domain.SyncProgress {
	state := map[string]domain.SyncProgress{}

	b, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Debug().Err(err).Str("path", s.path).Msg("could not read progress file")
		}
		return state
	}

	if err := json.Unmarshal(b, &state); err != nil || state == nil {
		s.log.Warn().Str("path", s.path).Msg("progress file is corrupt, starting from empty state")
		return map[string]domain.SyncProgress{}
	}

	return state
}
