package ingest

import (
	"context"
	_ "embed"
	"encoding/json"
	"log"
	"time"

	"github.com/ianwelles/NihonGo-sub000/internal/trip"
)

//go:embed fallback.json
var fallbackJSON []byte

// Fallback parses the bundled static snapshot. It ships with the binary so
// the filter core always has a valid, non-empty store even when every
// remote source is down.
func Fallback() (*trip.Snapshot, error) {
	var snap trip.Snapshot
	if err := json.Unmarshal(fallbackJSON, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Loader resolves a snapshot from the configured source, falling back to
// the bundled snapshot after a timeout or error.
type Loader struct {
	source  Source
	timeout time.Duration
}

func NewLoader(source Source, timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Loader{source: source, timeout: timeout}
}

// Load never returns partial data: the source's snapshot, or the fallback.
// An error means even the fallback path failed, which is fatal for the
// caller to surface.
func (l *Loader) Load(ctx context.Context) (*trip.Snapshot, error) {
	if l.source == nil {
		return Fallback()
	}

	loadCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	snap, err := l.source.Load(loadCtx)
	if err != nil {
		log.Printf("snapshot source failed, using fallback: %v", err)
		return Fallback()
	}
	return snap, nil
}
