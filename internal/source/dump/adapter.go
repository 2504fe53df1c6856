package dump

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/greentrails/trail-importer/internal/domain"
	"github.com/greentrails/trail-importer/internal/source"
	"github.com/greentrails/trail-importer/internal/storage"
)

const (
	SourceID   = "usgs_dump"
	SourceName = "USGS bulk dump"
)

// Adapter reads trail candidates from a newline-delimited JSON dump stored
// in object storage. Bulk trail datasets are distributed as flat files;
// the dump is loaded once per run and paged through by line index.
type Adapter struct {
	store  storage.ObjectStorage
	key    string
	items  []domain.TrailCandidate
	loaded bool
}

// NewAdapter creates a dump-file source.
// Parameters:
//   - store: object storage holding the dump.
//   - key: object key of the NDJSON dump file.
// Returns:
//   - *Adapter: initialized adapter.
func NewAdapter(store storage.ObjectStorage, key string) *Adapter {
	return &Adapter{
		store: store,
		key:   key,
	}
}

// Name returns the unique identifier for this source
func (a *Adapter) Name() string {
	return SourceID
}

// DisplayName returns a human-readable name for this source
func (a *Adapter) DisplayName() string {
	return SourceName
}

// FetchBatch returns a slice of the dump. Cursor is the line index encoded
// as a decimal string; an empty next cursor signals the end of the file.
func (a *Adapter) FetchBatch(ctx context.Context, loc *source.Location, cursor string, limit int) ([]domain.TrailCandidate, string, error) {
	if !a.loaded {
		if err := a.load(ctx); err != nil {
			return nil, "", fmt.Errorf("failed to load dump: %w", err)
		}
		a.loaded = true
	}

	startIndex := 0
	if cursor != "" {
		var err error
		startIndex, err = strconv.Atoi(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", err)
		}
	}

	if startIndex >= len(a.items) {
		return []domain.TrailCandidate{}, "", nil
	}

	endIndex := startIndex + limit
	if endIndex > len(a.items) {
		endIndex = len(a.items)
	}

	nextCursor := ""
	if endIndex < len(a.items) {
		nextCursor = strconv.Itoa(endIndex)
	}

	return a.items[startIndex:endIndex], nextCursor, nil
}

// load streams the dump object and decodes one candidate per line. Blank
// lines are skipped; a malformed line fails the whole load so a truncated
// upload is noticed instead of silently importing half a dataset.
func (a *Adapter) load(ctx context.Context) error {
	reader, err := a.store.Download(ctx, a.key)
	if err != nil {
		return err
	}
	defer reader.Close()

	a.items = []domain.TrailCandidate{}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var c domain.TrailCandidate
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if c.Source == "" {
			c.Source = SourceID
		}
		if c.SourceID == "" {
			c.SourceID = fmt.Sprintf("%s-%d", SourceID, lineNo)
		}
		a.items = append(a.items, c)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read dump: %w", err)
	}

	return nil
}
