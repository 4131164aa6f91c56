// Package backup writes periodic JSON snapshots of the live list to disk
// and prunes old ones. Snapshots use the same shape as the export endpoint,
// so a backup file can be fed straight back through the import API.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mkarlin/gimmie/internal/services"
)

const (
	// filePrefix and fileExt bound which files in the backup directory the
	// pruner will touch; anything else is left alone.
	filePrefix = "gimmie_backup_"
	fileExt    = ".json"
)

// Exporter produces the snapshot a backup writes. Satisfied by
// services.TransferService.
type Exporter interface {
	Export(ctx context.Context) (*services.Snapshot, error)
}

// Scheduler writes one snapshot per interval into Dir and deletes snapshots
// older than Retention.
type Scheduler struct {
	Exporter  Exporter
	Dir       string
	Interval  time.Duration
	Retention time.Duration
}

// New constructs a Scheduler.
func New(exporter Exporter, dir string, interval, retention time.Duration) *Scheduler {
	return &Scheduler{Exporter: exporter, Dir: dir, Interval: interval, Retention: retention}
}

// Run takes a snapshot immediately, then on every interval tick, until ctx
// is canceled. Failures are logged and the next tick tries again; a backup
// that fails must never take the API down with it.
func (s *Scheduler) Run(ctx context.Context) {
	if err := s.RunOnce(ctx); err != nil {
		log.Error().Err(err).Msg("initial backup failed")
	}

	t := time.NewTicker(s.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.RunOnce(ctx); err != nil {
				log.Error().Err(err).Msg("scheduled backup failed")
			}
		}
	}
}

// RunOnce writes one snapshot and prunes expired ones. The file for today is
// overwritten if it already exists, so restarts do not pile up duplicates.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating backup dir: %w", err)
	}

	snap, err := s.Exporter.Export(ctx)
	if err != nil {
		return fmt.Errorf("exporting snapshot: %w", err)
	}
	snap.BackupType = "automatic"

	name := filePrefix + time.Now().UTC().Format("2006-01-02") + fileExt
	path := filepath.Join(s.Dir, name)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	// Write-then-rename so a crash mid-write never leaves a torn file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("publishing snapshot: %w", err)
	}

	pruned, err := s.Prune()
	if err != nil {
		return err
	}

	log.Info().
		Str("file", path).
		Int("items", len(snap.Items)).
		Int("pruned", pruned).
		Msg("backup written")
	return nil
}

// Prune deletes backup files older than the retention window, judged by the
// date embedded in the filename. Returns the number of files removed.
func (s *Scheduler) Prune() (int, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return 0, fmt.Errorf("reading backup dir: %w", err)
	}

	cutoff := time.Now().UTC().Add(-s.Retention)
	pruned := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileExt) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt)
		day, err := time.Parse("2006-01-02", stamp)
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			if err := os.Remove(filepath.Join(s.Dir, name)); err != nil {
				return pruned, fmt.Errorf("pruning %s: %w", name, err)
			}
			pruned++
		}
	}
	return pruned, nil
}
