package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golfwatch/internal/forecast"
)

// FileFeed reads a locally maintained forecast JSON. Used when the scraper
// and the monitor share a working directory instead of a published URL.
type FileFeed struct {
	path string
}

func NewFileFeed(path string) *FileFeed {
	return &FileFeed{path: path}
}

func (f *FileFeed) Name() string {
	return "forecast-file"
}

func (f *FileFeed) Fetch(ctx context.Context) ([]forecast.RawDay, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read forecast file: %w", err)
	}

	var days []forecast.RawDay
	if err := json.Unmarshal(data, &days); err != nil {
		return nil, fmt.Errorf("decode forecast file %s: %w", f.path, err)
	}

	if len(days) == 0 {
		return nil, fmt.Errorf("forecast file %s contains no days", f.path)
	}

	return days, nil
}
