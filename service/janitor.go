package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Janitor removes combined-video artifacts past their retention, and any
// staging directory orphaned by a crash mid-pipeline.
type Janitor struct {
	outputDir string
	retention time.Duration
	interval  time.Duration
}

func NewJanitor(outputDir string, retention, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Janitor{outputDir: outputDir, retention: retention, interval: interval}
}

// Run blocks until ctx is cancelled. A zero retention disables sweeping.
func (j *Janitor) Run(ctx context.Context) {
	if j.retention <= 0 {
		zerolog.Ctx(ctx).Info().Msg("artifact retention disabled")
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep(ctx)
	for {
		select {
		case <-ticker.C:
			j.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	entries, err := os.ReadDir(j.outputDir)
	if err != nil {
		if !os.IsNotExist(err) {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("janitor read output dir failed")
		}
		return
	}

	cutoff := time.Now().Add(-j.retention)
	removed := 0
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(j.outputDir, entry.Name())
		if entry.IsDir() {
			if !strings.HasPrefix(entry.Name(), "staging-") {
				continue
			}
			err = os.RemoveAll(path)
		} else {
			err = os.Remove(path)
		}
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("janitor remove failed")
			continue
		}
		removed++
	}
	if removed > 0 {
		zerolog.Ctx(ctx).Info().Int("removed", removed).Msg("swept expired combined artifacts")
	}
}
