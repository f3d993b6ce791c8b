package agents

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/rahul/campaigner/internal/dataset"
)

// DataLoader loads the unified agent-persona CSV and caches the frame for
// the lifetime of the loader. The summary it returns carries only counts,
// columns and a small sample; downstream stages reach the bulk rows through
// the handle.
type DataLoader struct {
	Dir       string
	File      string
	Delimiter rune

	mu    sync.Mutex
	cache *dataset.Frame
}

func NewDataLoader(dir, file string, delimiter rune) *DataLoader {
	return &DataLoader{Dir: dir, File: file, Delimiter: delimiter}
}

func (d *DataLoader) Load(ctx context.Context) (*DatasetSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cache == nil {
		frame, err := dataset.LoadCSV(filepath.Join(d.Dir, d.File), d.Delimiter)
		if err != nil {
			return nil, fmt.Errorf("data loading failed: %w", err)
		}
		d.cache = frame
	}

	return &DatasetSummary{
		Success:  true,
		RowCount: d.cache.Len(),
		Columns:  d.cache.Columns,
		Sample:   d.cache.Head(3),
		Handle:   d.cache,
	}, nil
}
