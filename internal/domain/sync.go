package domain

import (
	"context"
	"time"
)

// AnimeFetcher retrieves the authoritative record for an id from upstream
type AnimeFetcher interface {
	FetchAnime(ctx context.Context, malID int) (*Anime, error)
}

// IDSource provides the ordered list of ids a sync walks over
type IDSource interface {
	Load(ctx context.Context) ([]int, error)
}

// ProgressStore persists the last attempted index per sync kind
type ProgressStore interface {
	Load(ctx context.Context, kind string) (SyncProgress, bool)
	Save(ctx context.Context, kind string, lastIndex int) error
}

// SyncProgress is the durable resumption checkpoint for one sync kind
type SyncProgress struct {
	LastIndex int       `json:"lastIndex"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SyncOptions controls a single pipeline run
type SyncOptions struct {
	Kind        string
	FromIndex   int
	Limit       int
	ForceUpdate bool
	Resume      bool
}

// ItemOutcome classifies how a single id was handled
type ItemOutcome string

const (
	OutcomeCreated ItemOutcome = "created"
	OutcomeUpdated ItemOutcome = "updated"
	OutcomeSkipped ItemOutcome = "skipped"
	OutcomeFailed  ItemOutcome = "failed"
)

// SyncReport holds the final counters for a pipeline run.
// Processed counts every attempted id, failed ones included.
type SyncReport struct {
	RunID      string
	Kind       string
	Total      int
	StartIndex int
	LastIndex  int
	Processed  int
	Created    int
	Updated    int
	Skipped    int
	Failed     int
	Duration   time.Duration
}

// Record bumps the counter matching outcome
func (r *SyncReport) Record(outcome ItemOutcome) {
	r.Processed++
	switch outcome {
	case OutcomeCreated:
		r.Created++
	case OutcomeUpdated:
		r.Updated++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}
